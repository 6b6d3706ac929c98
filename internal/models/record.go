package models

// VariantRecord is one flattened product variant, the unit staged in Redis
// between the extract and insert phases. The JSON field names are the staging
// wire format, so both phases can run as separate processes.
type VariantRecord struct {
	Handle        string  `json:"handle"`
	SKU           string  `json:"SKU"`
	Name          string  `json:"name"`
	CategoryName  *string `json:"category_name"`
	CategoryColor *string `json:"category_color"`
	OptionName    string  `json:"option_1_name"`
	OptionValue   string  `json:"option_1_value"`
	Price         float64 `json:"price"`
	ImageURL      string  `json:"image_url"`
}
