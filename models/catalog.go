package models

import "encoding/json"

// CatalogVariant is one purchasable variant of a catalog group, normalized from
// either upstream response shape. Optional URLs are empty when the upstream has no media.
type CatalogVariant struct {
	ID              int64  `json:"id"`
	DocumentToken   string `json:"documentToken,omitempty"` // Only present in the flattened shape
	Name            string `json:"name"`
	Slug            string `json:"slug"`
	InStock         bool   `json:"inStock"`
	HeroImageURL    string `json:"heroImageUrl,omitempty"`
	IOSAssetURL     string `json:"iosAssetUrl,omitempty"`
	AndroidAssetURL string `json:"androidAssetUrl,omitempty"`
}

// CatalogGroup represents a top-level catalog entry with its variants
type CatalogGroup struct {
	ID       int64            `json:"id"`
	Name     string           `json:"name"`
	Variants []CatalogVariant `json:"variants"`
}

// CatalogPage is the canonical model returned by GET /catalog.
// Meta is the upstream pagination metadata, passed through untouched.
type CatalogPage struct {
	Data []CatalogGroup  `json:"data"`
	Meta json.RawMessage `json:"meta"`
}

// Pagination mirrors meta.pagination of the upstream response
type Pagination struct {
	Page      int `json:"page"`
	PageSize  int `json:"pageSize"`
	PageCount int `json:"pageCount"`
	Total     int `json:"total"`
}

// Pagination decodes meta.pagination. A missing or malformed block yields the zero value.
func (p CatalogPage) Pagination() Pagination {
	var meta struct {
		Pagination Pagination `json:"pagination"`
	}
	if len(p.Meta) == 0 {
		return Pagination{}
	}
	if err := json.Unmarshal(p.Meta, &meta); err != nil {
		return Pagination{}
	}
	return meta.Pagination
}

// VariantCount returns the number of variants across all groups of the page
func (p CatalogPage) VariantCount() int {
	n := 0
	for _, g := range p.Data {
		n += len(g.Variants)
	}
	return n
}
