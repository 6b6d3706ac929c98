package loyverse

import (
	"context"
	"fmt"
	"time"

	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/logger"
	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/models"
)

// Extractor pulls the full catalog out of Loyverse and flattens it into
// variant records for staging.
type Extractor struct {
	client *Client
	logger *logger.Logger

	pageSize int
	policy   retryPolicy
}

func NewExtractor(client *Client, logger *logger.Logger, pageSize, maxRetries int, baseDelay time.Duration) *Extractor {
	return &Extractor{
		client:   client,
		logger:   logger,
		pageSize: pageSize,
		policy: retryPolicy{
			MaxRetries: maxRetries,
			BaseDelay:  baseDelay,
		},
	}
}

// FetchCatalog fetches every item, then only the categories those items
// actually reference, and attaches each category to its items.
func (e *Extractor) FetchCatalog(ctx context.Context) ([]Item, error) {
	items, err := fetchAll(ctx, func(ctx context.Context, cursor string) ([]Item, string, error) {
		page, err := e.client.ListItems(ctx, e.pageSize, cursor)
		if err != nil {
			return nil, "", err
		}
		return page.Items, page.Cursor, nil
	}, e.policy)
	if err != nil {
		return nil, fmt.Errorf("fetch items: %w", err)
	}
	e.logger.Info("Fetched %d items from Loyverse", len(items))

	ids := CategoryIDs(items)
	if len(ids) == 0 {
		return items, nil
	}

	categories, err := fetchAll(ctx, func(ctx context.Context, cursor string) ([]Category, string, error) {
		page, err := e.client.ListCategories(ctx, ids, e.pageSize, cursor)
		if err != nil {
			return nil, "", err
		}
		return page.Categories, page.Cursor, nil
	}, e.policy)
	if err != nil {
		return nil, fmt.Errorf("fetch categories: %w", err)
	}
	e.logger.Info("Fetched %d categories from Loyverse", len(categories))

	byID := make(map[string]Category, len(categories))
	for _, category := range categories {
		byID[category.ID] = category
	}

	return MergeCategories(items, byID), nil
}

// CategoryIDs collects the distinct non-empty category ids referenced by the
// items, in first-seen order.
func CategoryIDs(items []Item) []string {
	var ids []string
	seen := make(map[string]bool)
	for _, item := range items {
		if item.CategoryID == "" || seen[item.CategoryID] {
			continue
		}
		seen[item.CategoryID] = true
		ids = append(ids, item.CategoryID)
	}
	return ids
}

// MergeCategories attaches the matching category record to every item that
// carries a category id.
func MergeCategories(items []Item, categories map[string]Category) []Item {
	for i := range items {
		if items[i].CategoryID == "" {
			continue
		}
		if category, ok := categories[items[i].CategoryID]; ok {
			items[i].Category = &category
		}
	}
	return items
}

// Flatten emits one VariantRecord per variant, copying the parent item's
// handle, name, image and category alongside the variant's SKU, option value
// and price. Item order and variant order are preserved.
func Flatten(items []Item) []models.VariantRecord {
	var records []models.VariantRecord
	for _, item := range items {
		for _, variant := range item.Variants {
			record := models.VariantRecord{
				Handle:      item.Handle,
				SKU:         variant.SKU,
				Name:        item.Name,
				OptionName:  item.Option1Name,
				OptionValue: variant.Option1Value,
				Price:       variant.Cost,
				ImageURL:    item.ImageURL,
			}
			if item.Category != nil {
				record.CategoryName = &item.Category.Name
				record.CategoryColor = &item.Category.Color
			}
			records = append(records, record)
		}
	}
	return records
}
