package woocommerce

// Category represents a WooCommerce product category
type Category struct {
	ID   int    `json:"id,omitempty"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Attribute represents a WooCommerce product attribute
type Attribute struct {
	ID          int    `json:"id,omitempty"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Type        string `json:"type,omitempty"`
	OrderBy     string `json:"order_by,omitempty"`
	HasArchives bool   `json:"has_archives,omitempty"`
}

// AttributeTerm represents one term of an attribute
type AttributeTerm struct {
	ID   int    `json:"id,omitempty"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// CategoryRef links a product to a category by id
type CategoryRef struct {
	ID int `json:"id"`
}

// ProductAttribute is the attribute block on a product. A variable parent
// carries the full option list with Variation set; a variation carries a
// single Option.
type ProductAttribute struct {
	ID        int      `json:"id"`
	Option    string   `json:"option,omitempty"`
	Options   []string `json:"options,omitempty"`
	Variation bool     `json:"variation,omitempty"`
	Visible   bool     `json:"visible,omitempty"`
}

// DefaultAttribute selects the pre-selected option on a variable product
type DefaultAttribute struct {
	ID     int    `json:"id"`
	Option string `json:"option"`
}

// Image represents a product image
type Image struct {
	Src  string `json:"src"`
	Name string `json:"name,omitempty"`
	Alt  string `json:"alt,omitempty"`
}

// Product represents a WooCommerce product
type Product struct {
	ID                int                `json:"id,omitempty"`
	Name              string             `json:"name"`
	Slug              string             `json:"slug"`
	Type              string             `json:"type"`
	Status            string             `json:"status,omitempty"`
	SKU               string             `json:"sku,omitempty"`
	RegularPrice      string             `json:"regular_price,omitempty"`
	ManageStock       bool               `json:"manage_stock"`
	Categories        []CategoryRef      `json:"categories,omitempty"`
	Images            []Image            `json:"images,omitempty"`
	Attributes        []ProductAttribute `json:"attributes,omitempty"`
	DefaultAttributes []DefaultAttribute `json:"default_attributes,omitempty"`
}

// Variation represents one variation under a variable product
type Variation struct {
	ID           int                `json:"id,omitempty"`
	SKU          string             `json:"sku"`
	Status       string             `json:"status,omitempty"`
	RegularPrice string             `json:"regular_price,omitempty"`
	ManageStock  bool               `json:"manage_stock"`
	Attributes   []ProductAttribute `json:"attributes,omitempty"`
	Image        *Image             `json:"image,omitempty"`
}

// errorPayload is the body WooCommerce returns on rejected creates.
type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Status     int `json:"status"`
		ResourceID int `json:"resource_id"`
	} `json:"data"`
}
