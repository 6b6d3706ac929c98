package loyverse

// Item represents a Loyverse item
type Item struct {
	ID          string    `json:"id"`
	Name        string    `json:"item_name"`
	Handle      string    `json:"handle"`
	CategoryID  string    `json:"category_id"`
	ImageURL    string    `json:"image_url"`
	Option1Name string    `json:"option1_name"`
	Variants    []Variant `json:"variants"`

	// Category is attached after extraction for items that reference one.
	Category *Category `json:"category,omitempty"`
}

// Variant represents one variant of an item
type Variant struct {
	VariantID    string  `json:"variant_id"`
	ItemID       string  `json:"item_id"`
	SKU          string  `json:"sku"`
	Option1Value string  `json:"option1_value"`
	Cost         float64 `json:"cost"`
	DefaultPrice float64 `json:"default_price"`
}

// Category represents a Loyverse category
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// ItemsResponse represents one page of the items listing
type ItemsResponse struct {
	Items  []Item `json:"items"`
	Cursor string `json:"cursor"`
}

// CategoriesResponse represents one page of the categories listing
type CategoriesResponse struct {
	Categories []Category `json:"categories"`
	Cursor     string     `json:"cursor"`
}
