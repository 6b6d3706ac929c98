package woocommerce

import (
	"regexp"
	"strings"
)

// EntityType selects the slug prefix for each kind of destination entity.
type EntityType string

const (
	EntityCategory         EntityType = "category"
	EntityAttribute        EntityType = "attribute"
	EntityAttributeTerm    EntityType = "attribute_term"
	EntityProduct          EntityType = "product"
	EntityProductVariation EntityType = "product_variation"
)

var slugPrefixes = map[EntityType]string{
	EntityCategory:         "wcapi_cat_",
	EntityAttribute:        "wcapi_attribute_",
	EntityAttributeTerm:    "wcapi_attribute_term_",
	EntityProduct:          "wcapi_prod_",
	EntityProductVariation: "wcapi_prod_var_",
}

var (
	nonAlpha   = regexp.MustCompile(`[^a-z ]`)
	whitespace = regexp.MustCompile(`\s+`)
)

// ProductSlug builds a product slug straight from the item handle. Handles
// are already stable slugs in Loyverse, so they are prefixed as-is.
func ProductSlug(handle string) string {
	return slugPrefixes[EntityProduct] + handle
}

// Slug derives the deterministic idempotency key WooCommerce dedupes on:
// lower-cased, non-alphabetic characters stripped, whitespace collapsed to
// hyphens, prefixed per entity type. Names differing only in case, digits or
// punctuation intentionally collide and resolve to one destination entity.
// Leading and trailing whitespace is NOT trimmed: a padded name keeps its
// edge hyphens, so slugs stay byte-compatible with stores populated by
// earlier runs.
func Slug(entity EntityType, name string) string {
	slug := strings.ToLower(name)
	slug = nonAlpha.ReplaceAllString(slug, "")
	slug = whitespace.ReplaceAllString(slug, "-")
	return slugPrefixes[entity] + slug
}
