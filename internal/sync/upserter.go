package sync

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/logger"
	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/models"
	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/services/woocommerce"
)

// Upserter pushes staged records into WooCommerce with create-or-find
// semantics. Slugs are the idempotency keys, so reruns retrieve the entities
// created by earlier runs instead of duplicating them.
type Upserter struct {
	wc     *woocommerce.Client
	logger *logger.Logger
}

func NewUpserter(wc *woocommerce.Client, logger *logger.Logger) *Upserter {
	return &Upserter{wc: wc, logger: logger}
}

// Result carries the remote ids assigned during one upsert run.
type Result struct {
	CategoryIDs  map[string]int
	Attributes   ResolvedAttributes
	ProductIDs   map[string]int
	VariationIDs map[string]int
}

// Run executes the five upsert steps in dependency order: categories,
// attributes with their terms, single products, variable parents, variations.
// Per-entity failures go on the report and everything depending on a failed
// entity is skipped.
func (u *Upserter) Run(ctx context.Context, records []models.VariantRecord) (*Result, *Report) {
	classification := Classify(records)
	discovered := DiscoverAttributes(classification)
	report := &Report{}

	result := &Result{
		ProductIDs:   make(map[string]int),
		VariationIDs: make(map[string]int),
	}
	result.CategoryIDs = u.ensureCategories(ctx, CategoryNames(records), report)
	result.Attributes = u.ensureAttributes(ctx, discovered, report)
	u.createSingles(ctx, classification, result, report)
	u.createVariables(ctx, classification, result, report)
	u.createVariations(ctx, classification, result, report)

	return result, report
}

func (u *Upserter) ensureCategories(ctx context.Context, names []string, report *Report) map[string]int {
	ids := make(map[string]int, len(names))
	for _, name := range names {
		id, err := u.ensureCategory(ctx, name)
		if err != nil {
			report.Add("category", name, err)
			continue
		}
		ids[name] = id
		u.logger.Info("Created/Retrieved category: %s", name)
	}
	return ids
}

func (u *Upserter) ensureCategory(ctx context.Context, name string) (int, error) {
	slug := woocommerce.Slug(woocommerce.EntityCategory, name)
	created, err := u.wc.CreateCategory(ctx, woocommerce.Category{Name: name, Slug: slug})
	if err == nil {
		return created.ID, nil
	}

	var conflict *woocommerce.ConflictError
	if !errors.As(err, &conflict) {
		return 0, err
	}

	if conflict.ResourceID > 0 {
		existing, err := u.wc.GetCategory(ctx, conflict.ResourceID)
		if err != nil {
			return 0, err
		}
		if existing != nil {
			return existing.ID, nil
		}
	}

	existing, err := u.wc.FindCategoryBySlug(ctx, slug)
	if err != nil {
		return 0, err
	}
	if existing == nil {
		return 0, fmt.Errorf("category slug %q conflicted but was not found", slug)
	}
	return existing.ID, nil
}

func (u *Upserter) ensureAttributes(ctx context.Context, discovered DiscoveredAttributes, report *Report) ResolvedAttributes {
	resolved := ResolvedAttributes{
		IDs:     make(map[string]int),
		TermIDs: make(map[string]map[string]int),
	}

	for _, name := range discovered.Names {
		attributeID, err := u.ensureAttribute(ctx, name)
		if err != nil {
			report.Add("attribute", name, err)
			continue
		}
		resolved.IDs[name] = attributeID
		resolved.TermIDs[name] = make(map[string]int)
		u.logger.Info("Created/Retrieved attribute: %s", name)

		for _, value := range discovered.Terms[name] {
			termID, err := u.ensureTerm(ctx, attributeID, value)
			if err != nil {
				report.Add("attribute_term", name+"/"+value, err)
				continue
			}
			resolved.TermIDs[name][value] = termID
			u.logger.Info("Created/Retrieved attribute term: %s", value)
		}
	}
	return resolved
}

func (u *Upserter) ensureAttribute(ctx context.Context, name string) (int, error) {
	slug := woocommerce.Slug(woocommerce.EntityAttribute, name)
	created, err := u.wc.CreateAttribute(ctx, woocommerce.Attribute{
		Name:        name,
		Slug:        slug,
		Type:        "select",
		OrderBy:     "menu_order",
		HasArchives: true,
	})
	if err == nil {
		return created.ID, nil
	}

	var conflict *woocommerce.ConflictError
	if !errors.As(err, &conflict) {
		return 0, err
	}

	// The attribute listing is the only lookup path here; the rejection
	// payload carries no resource id for attributes. WooCommerce treats
	// "slug" and "pa_slug" as the same slug.
	attributes, err := u.wc.ListAttributes(ctx)
	if err != nil {
		return 0, err
	}
	for _, attribute := range attributes {
		if attribute.Slug == slug || attribute.Slug == "pa_"+slug {
			return attribute.ID, nil
		}
	}
	return 0, fmt.Errorf("attribute slug %q conflicted but was not found", slug)
}

func (u *Upserter) ensureTerm(ctx context.Context, attributeID int, value string) (int, error) {
	created, err := u.wc.CreateAttributeTerm(ctx, attributeID, woocommerce.AttributeTerm{
		Name: value,
		Slug: woocommerce.Slug(woocommerce.EntityAttributeTerm, value),
	})
	if err == nil {
		return created.ID, nil
	}

	var conflict *woocommerce.ConflictError
	if !errors.As(err, &conflict) {
		return 0, err
	}
	if conflict.ResourceID == 0 {
		return 0, err
	}

	existing, err := u.wc.GetAttributeTerm(ctx, attributeID, conflict.ResourceID)
	if err != nil {
		return 0, err
	}
	if existing == nil {
		return 0, fmt.Errorf("attribute term %q conflicted but was not found", value)
	}
	return existing.ID, nil
}

func (u *Upserter) createSingles(ctx context.Context, c Classification, result *Result, report *Report) {
	for _, handle := range c.SingleHandles {
		record := c.Singles[handle]

		categories, ok := u.categoryRefs(record, result)
		if !ok {
			report.Add("product", handle, fmt.Errorf("category %q unresolved", *record.CategoryName))
			continue
		}

		product := woocommerce.Product{
			Name:         record.Name,
			Slug:         woocommerce.ProductSlug(handle),
			Type:         "simple",
			Status:       "publish",
			SKU:          record.SKU,
			RegularPrice: formatPrice(record.Price),
			ManageStock:  false,
			Categories:   categories,
			Images:       recordImages(record),
		}

		id, existed, err := u.createProduct(ctx, product)
		if err != nil {
			report.Add("product", handle, err)
			continue
		}
		result.ProductIDs[handle] = id
		u.logger.Info("Created product: %s. Already existed: %t", handle, existed)
	}
}

func (u *Upserter) createVariables(ctx context.Context, c Classification, result *Result, report *Report) {
	for _, handle := range c.VariableHandles {
		variants := c.Variables[handle]
		first := variants[0]

		attributeID, ok := result.Attributes.IDs[first.OptionName]
		if !ok {
			report.Add("product", handle, fmt.Errorf("attribute %q unresolved", first.OptionName))
			continue
		}

		categories, ok := u.categoryRefs(first, result)
		if !ok {
			report.Add("product", handle, fmt.Errorf("category %q unresolved", *first.CategoryName))
			continue
		}

		options := distinctOptionValues(variants)
		product := woocommerce.Product{
			Name:        first.Name,
			Slug:        woocommerce.ProductSlug(handle),
			Type:        "variable",
			Status:      "publish",
			ManageStock: false,
			Categories:  categories,
			Images:      recordImages(first),
			Attributes: []woocommerce.ProductAttribute{{
				ID:        attributeID,
				Options:   options,
				Variation: true,
				Visible:   true,
			}},
			DefaultAttributes: []woocommerce.DefaultAttribute{{
				ID:     attributeID,
				Option: options[0],
			}},
		}

		id, existed, err := u.createProduct(ctx, product)
		if err != nil {
			report.Add("product", handle, err)
			continue
		}
		result.ProductIDs[handle] = id
		u.logger.Info("Created variable product: %s. Already existed: %t", handle, existed)
	}
}

func (u *Upserter) createVariations(ctx context.Context, c Classification, result *Result, report *Report) {
	for _, handle := range c.VariableHandles {
		parentID, ok := result.ProductIDs[handle]
		if !ok {
			for _, variant := range c.Variables[handle] {
				report.Add("product_variation", variant.SKU, fmt.Errorf("parent product %q unresolved", handle))
			}
			continue
		}

		for _, variant := range c.Variables[handle] {
			attributeID, ok := result.Attributes.IDs[variant.OptionName]
			if !ok {
				report.Add("product_variation", variant.SKU, fmt.Errorf("attribute %q unresolved", variant.OptionName))
				continue
			}

			variation := woocommerce.Variation{
				SKU:          variant.SKU,
				Status:       "publish",
				RegularPrice: formatPrice(variant.Price),
				ManageStock:  false,
				Attributes: []woocommerce.ProductAttribute{{
					ID:     attributeID,
					Option: variant.OptionValue,
				}},
			}
			if variant.ImageURL != "" {
				images := woocommerce.ProductImages(variant.Name, []string{variant.ImageURL})
				variation.Image = &images[0]
			}

			id, existed, err := u.createVariation(ctx, parentID, variation)
			if err != nil {
				report.Add("product_variation", variant.SKU, err)
				continue
			}
			result.VariationIDs[variant.SKU] = id
			u.logger.Info("Created product variation: %s. Already existed: %t", variant.SKU, existed)
		}
	}
}

// createProduct searches the slug before creating, then falls back to the SKU
// conflict payload. The bool reports whether the product pre-existed.
func (u *Upserter) createProduct(ctx context.Context, product woocommerce.Product) (int, bool, error) {
	existing, err := u.wc.FindProductBySlug(ctx, product.Slug)
	if err != nil {
		return 0, false, err
	}
	if existing != nil {
		return existing.ID, true, nil
	}

	created, err := u.wc.CreateProduct(ctx, product)
	if err == nil {
		return created.ID, false, nil
	}

	var conflict *woocommerce.ConflictError
	if errors.As(err, &conflict) && conflict.Code == woocommerce.CodeInvalidSKU && conflict.ResourceID > 0 {
		existing, err := u.wc.GetProduct(ctx, conflict.ResourceID)
		if err != nil {
			return 0, false, err
		}
		if existing != nil {
			return existing.ID, true, nil
		}
	}
	return 0, false, err
}

func (u *Upserter) createVariation(ctx context.Context, parentID int, variation woocommerce.Variation) (int, bool, error) {
	created, err := u.wc.CreateVariation(ctx, parentID, variation)
	if err == nil {
		return created.ID, false, nil
	}

	var conflict *woocommerce.ConflictError
	if errors.As(err, &conflict) && conflict.Code == woocommerce.CodeInvalidSKU && conflict.ResourceID > 0 {
		existing, err := u.wc.GetVariation(ctx, parentID, conflict.ResourceID)
		if err != nil {
			return 0, false, err
		}
		if existing != nil {
			return existing.ID, true, nil
		}
	}
	return 0, false, err
}

// categoryRefs resolves a record's category to a reference list. A record
// with no category is fine; a record whose category failed to upsert is not.
func (u *Upserter) categoryRefs(record models.VariantRecord, result *Result) ([]woocommerce.CategoryRef, bool) {
	if record.CategoryName == nil || *record.CategoryName == "" {
		return nil, true
	}
	id, ok := result.CategoryIDs[*record.CategoryName]
	if !ok {
		return nil, false
	}
	return []woocommerce.CategoryRef{{ID: id}}, true
}

func recordImages(record models.VariantRecord) []woocommerce.Image {
	if record.ImageURL == "" {
		return nil
	}
	return woocommerce.ProductImages(record.Name, []string{record.ImageURL})
}

func distinctOptionValues(variants []models.VariantRecord) []string {
	var values []string
	seen := make(map[string]bool)
	for _, variant := range variants {
		if seen[variant.OptionValue] {
			continue
		}
		seen[variant.OptionValue] = true
		values = append(values, variant.OptionValue)
	}
	return values
}

func formatPrice(price float64) string {
	return strconv.FormatFloat(price, 'f', -1, 64)
}
