package sync

import (
	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/models"
)

// Classification splits staged records into single products and variable
// products. Handle slices keep first-seen order so the upsert steps are
// deterministic for a given input order.
type Classification struct {
	SingleHandles   []string
	Singles         map[string]models.VariantRecord
	VariableHandles []string
	Variables       map[string][]models.VariantRecord
}

// Classify groups records by handle. A handle with exactly one record is a
// single product; two or more records sharing a handle are the variants of a
// variable product. Every input record lands in exactly one group.
func Classify(records []models.VariantRecord) Classification {
	counts := make(map[string]int)
	for _, record := range records {
		counts[record.Handle]++
	}

	c := Classification{
		Singles:   make(map[string]models.VariantRecord),
		Variables: make(map[string][]models.VariantRecord),
	}
	for _, record := range records {
		if counts[record.Handle] == 1 {
			c.SingleHandles = append(c.SingleHandles, record.Handle)
			c.Singles[record.Handle] = record
			continue
		}
		if _, seen := c.Variables[record.Handle]; !seen {
			c.VariableHandles = append(c.VariableHandles, record.Handle)
		}
		c.Variables[record.Handle] = append(c.Variables[record.Handle], record)
	}
	return c
}

// CategoryNames collects the distinct category names referenced by any record,
// in first-seen order.
func CategoryNames(records []models.VariantRecord) []string {
	var names []string
	seen := make(map[string]bool)
	for _, record := range records {
		if record.CategoryName == nil || *record.CategoryName == "" {
			continue
		}
		if seen[*record.CategoryName] {
			continue
		}
		seen[*record.CategoryName] = true
		names = append(names, *record.CategoryName)
	}
	return names
}
