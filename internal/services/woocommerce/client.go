package woocommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/logger"
)

// Conflict codes WooCommerce returns when a create hits an existing entity.
const (
	CodeCannotCreate = "woocommerce_rest_cannot_create"
	CodeTermExists   = "term_exists"
	CodeInvalidSKU   = "product_invalid_sku"
)

// ConflictError is a rejected create whose target already exists, keyed by
// slug (categories, attributes, terms) or SKU (products, variations). The
// caller resolves it by looking up the pre-existing entity.
type ConflictError struct {
	Code       string
	Message    string
	ResourceID int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("woocommerce: %s: %s (resource %d)", e.Code, e.Message, e.ResourceID)
}

type Client struct {
	baseURL        string
	consumerKey    string
	consumerSecret string
	httpClient     *http.Client
	logger         *logger.Logger
}

func NewClient(baseURL, consumerKey, consumerSecret string, logger *logger.Logger) *Client {
	return &Client{
		baseURL:        strings.TrimSuffix(baseURL, "/"),
		consumerKey:    consumerKey,
		consumerSecret: consumerSecret,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// ListAttributes fetches every attribute defined in the store
func (c *Client) ListAttributes(ctx context.Context) ([]Attribute, error) {
	var attributes []Attribute
	params := url.Values{"context": {"edit"}}
	if err := c.do(ctx, "GET", "products/attributes", params, nil, &attributes); err != nil {
		return nil, err
	}
	return attributes, nil
}

func (c *Client) CreateAttribute(ctx context.Context, attribute Attribute) (*Attribute, error) {
	var created Attribute
	if err := c.do(ctx, "POST", "products/attributes", nil, attribute, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) GetAttributeTerm(ctx context.Context, attributeID, termID int) (*AttributeTerm, error) {
	var term AttributeTerm
	found, err := c.doMaybe(ctx, fmt.Sprintf("products/attributes/%d/terms/%d", attributeID, termID), &term)
	if err != nil || !found {
		return nil, err
	}
	return &term, nil
}

func (c *Client) CreateAttributeTerm(ctx context.Context, attributeID int, term AttributeTerm) (*AttributeTerm, error) {
	var created AttributeTerm
	path := fmt.Sprintf("products/attributes/%d/terms", attributeID)
	if err := c.do(ctx, "POST", path, nil, term, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) GetCategory(ctx context.Context, id int) (*Category, error) {
	var category Category
	found, err := c.doMaybe(ctx, fmt.Sprintf("products/categories/%d", id), &category)
	if err != nil || !found {
		return nil, err
	}
	return &category, nil
}

// FindCategoryBySlug searches the category listing for a slug. Returns nil
// when no category matches.
func (c *Client) FindCategoryBySlug(ctx context.Context, slug string) (*Category, error) {
	var categories []Category
	params := url.Values{"slug": {slug}}
	if err := c.do(ctx, "GET", "products/categories", params, nil, &categories); err != nil {
		return nil, err
	}
	if len(categories) == 0 {
		return nil, nil
	}
	return &categories[0], nil
}

func (c *Client) CreateCategory(ctx context.Context, category Category) (*Category, error) {
	var created Category
	if err := c.do(ctx, "POST", "products/categories", nil, category, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) GetProduct(ctx context.Context, id int) (*Product, error) {
	var product Product
	found, err := c.doMaybe(ctx, fmt.Sprintf("products/%d", id), &product)
	if err != nil || !found {
		return nil, err
	}
	return &product, nil
}

// FindProductBySlug searches the product listing for a slug. Returns nil when
// no product matches.
func (c *Client) FindProductBySlug(ctx context.Context, slug string) (*Product, error) {
	var products []Product
	params := url.Values{"slug": {slug}}
	if err := c.do(ctx, "GET", "products", params, nil, &products); err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, nil
	}
	return &products[0], nil
}

func (c *Client) CreateProduct(ctx context.Context, product Product) (*Product, error) {
	var created Product
	if err := c.do(ctx, "POST", "products", nil, product, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) GetVariation(ctx context.Context, productID, variationID int) (*Variation, error) {
	var variation Variation
	found, err := c.doMaybe(ctx, fmt.Sprintf("products/%d/variations/%d", productID, variationID), &variation)
	if err != nil || !found {
		return nil, err
	}
	return &variation, nil
}

func (c *Client) CreateVariation(ctx context.Context, productID int, variation Variation) (*Variation, error) {
	var created Variation
	path := fmt.Sprintf("products/%d/variations", productID)
	if err := c.do(ctx, "POST", path, nil, variation, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// doMaybe is do for single-resource GETs where 404 means "not found" rather
// than failure. The bool reports whether the resource existed.
func (c *Client) doMaybe(ctx context.Context, path string, out interface{}) (bool, error) {
	err := c.do(ctx, "GET", path, nil, nil, out)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// APIError is a non-success, non-conflict response from WooCommerce.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("woocommerce: API request failed: %d - %s", e.StatusCode, e.Body)
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body, out interface{}) error {
	endpoint := fmt.Sprintf("%s/wp-json/wc/v3/%s", c.baseURL, path)

	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		payload = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, payload)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.SetBasicAuth(c.consumerKey, c.consumerSecret)
	req.Header.Set("Content-Type", "application/json")
	if params != nil {
		req.URL.RawQuery = params.Encode()
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var rejected errorPayload
		if json.Unmarshal(raw, &rejected) == nil {
			switch rejected.Code {
			case CodeCannotCreate, CodeTermExists, CodeInvalidSKU:
				return &ConflictError{
					Code:       rejected.Code,
					Message:    rejected.Message,
					ResourceID: rejected.Data.ResourceID,
				}
			}
		}
		return &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// ProductImages builds the image block for a product. WooCommerce rejects
// image URLs without a file extension, so a .png suffix is forced on.
func ProductImages(productName string, imageURLs []string) []Image {
	if len(imageURLs) == 0 {
		return nil
	}
	images := make([]Image, 0, len(imageURLs))
	for i, imageURL := range imageURLs {
		images = append(images, Image{
			Src:  imageURL + ".png",
			Name: fmt.Sprintf("%s Image %d", productName, i+1),
			Alt:  productName,
		})
	}
	return images
}
