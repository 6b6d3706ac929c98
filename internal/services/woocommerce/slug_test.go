package woocommerce

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugIsDeterministic(t *testing.T) {
	assert.Equal(t, Slug(EntityCategory, "Bikes"), Slug(EntityCategory, "Bikes"))
	assert.Equal(t, "wcapi_cat_bikes", Slug(EntityCategory, "Bikes"))
}

func TestSlugPrefixes(t *testing.T) {
	assert.Equal(t, "wcapi_cat_bikes", Slug(EntityCategory, "Bikes"))
	assert.Equal(t, "wcapi_attribute_size", Slug(EntityAttribute, "Size"))
	assert.Equal(t, "wcapi_attribute_term_small", Slug(EntityAttributeTerm, "Small"))
	assert.Equal(t, "wcapi_prod_city-bike", ProductSlug("city-bike"))
}

func TestSlugStripsAndCollapses(t *testing.T) {
	assert.Equal(t, "wcapi_cat_road-bikes", Slug(EntityCategory, "Road   Bikes"))
	assert.Equal(t, "wcapi_cat_road-bikes", Slug(EntityCategory, "Road - Bikes!"))
}

func TestSlugKeepsEdgeHyphensFromPadding(t *testing.T) {
	// Padded names are not trimmed; their slugs carry edge hyphens so reruns
	// keep resolving the entities earlier runs created under the same keys.
	assert.Equal(t, "wcapi_cat_-mugs-", Slug(EntityCategory, " Mugs "))
	assert.Equal(t, "wcapi_cat_-mugs-cups-", Slug(EntityCategory, " Mugs & Cups "))
}

func TestSlugCollidesOnCaseAndPunctuation(t *testing.T) {
	// Names differing only in case, digits or punctuation map to one slug;
	// the upserter dedupes them to one destination entity.
	assert.Equal(t, Slug(EntityCategory, "Bikes"), Slug(EntityCategory, "BIKES!!!"))
	assert.Equal(t, Slug(EntityCategory, "Bikes"), Slug(EntityCategory, "bikes 2"))
}
