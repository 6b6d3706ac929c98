package sync

// DiscoveredAttributes is the pure view of every option name and the distinct
// option values observed across variable products. Names and term lists keep
// insertion order.
type DiscoveredAttributes struct {
	Names []string
	Terms map[string][]string
}

// ResolvedAttributes carries the WooCommerce ids assigned to discovered
// attributes and terms during upsert. Discovery and resolution stay separate
// values joined by attribute name.
type ResolvedAttributes struct {
	IDs     map[string]int
	TermIDs map[string]map[string]int
}

// DiscoverAttributes walks every variant of every variable product and
// collects each option name with its distinct option values. Single products
// carry no attributes.
func DiscoverAttributes(c Classification) DiscoveredAttributes {
	discovered := DiscoveredAttributes{
		Terms: make(map[string][]string),
	}
	seen := make(map[string]map[string]bool)

	for _, handle := range c.VariableHandles {
		for _, variant := range c.Variables[handle] {
			name := variant.OptionName
			if seen[name] == nil {
				seen[name] = make(map[string]bool)
				discovered.Names = append(discovered.Names, name)
			}
			if seen[name][variant.OptionValue] {
				continue
			}
			seen[name][variant.OptionValue] = true
			discovered.Terms[name] = append(discovered.Terms[name], variant.OptionValue)
		}
	}
	return discovered
}
