package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/models"
)

func TestDiscoverAttributes(t *testing.T) {
	records := []models.VariantRecord{
		variantRecord("tee", "T1", "Size", "S"),
		variantRecord("tee", "T2", "Size", "M"),
		variantRecord("hoodie", "H1", "Size", "M"),
		variantRecord("hoodie", "H2", "Size", "L"),
		variantRecord("poster", "P1", "Format", "A2"),
		variantRecord("poster", "P2", "Format", "A1"),
	}

	discovered := DiscoverAttributes(Classify(records))

	assert.Equal(t, []string{"Size", "Format"}, discovered.Names)
	// Distinct values in insertion order, duplicates ignored.
	assert.Equal(t, []string{"S", "M", "L"}, discovered.Terms["Size"])
	assert.Equal(t, []string{"A2", "A1"}, discovered.Terms["Format"])
}

func TestDiscoverAttributesIgnoresSingles(t *testing.T) {
	records := []models.VariantRecord{
		variantRecord("solo", "S1", "Size", "M"),
		variantRecord("tee", "T1", "Size", "S"),
		variantRecord("tee", "T2", "Size", "M"),
	}

	discovered := DiscoverAttributes(Classify(records))

	// The single product's option does not create an attribute; only the
	// variable group's values are collected.
	assert.Equal(t, []string{"Size"}, discovered.Names)
	assert.Equal(t, []string{"S", "M"}, discovered.Terms["Size"])
}

func TestDiscoverAttributesScenario(t *testing.T) {
	// Two items: one single-variant product and one two-variant tee.
	records := []models.VariantRecord{
		variantRecord("shirt-single", "A1", "", ""),
		variantRecord("tee", "T1", "Size", "S"),
		variantRecord("tee", "T2", "Size", "M"),
	}

	discovered := DiscoverAttributes(Classify(records))

	assert.Equal(t, []string{"Size"}, discovered.Names)
	assert.Equal(t, []string{"S", "M"}, discovered.Terms["Size"])
}
