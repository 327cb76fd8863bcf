package catalog

import (
	"github.com/rmoralesf/vitalstack-backend/pkg/db/models"
	"github.com/rmoralesf/vitalstack-backend/pkg/enums"
)

// ProductListFilters describe the supported filter knobs for the browse endpoint.
type ProductListFilters struct {
	Category      *enums.ProductCategory `json:"category,omitempty"`
	Brand         string                 `json:"brand,omitempty"`
	PriceMinCents *int                   `json:"price_min_cents,omitempty"`
	PriceMaxCents *int                   `json:"price_max_cents,omitempty"`
	InStockOnly   bool                   `json:"in_stock_only,omitempty"`
	IncludeHidden bool                   `json:"-"`
	Query         string                 `json:"q,omitempty"`
}

// ProductList wraps the paginated products plus the next page cursor.
type ProductList struct {
	Products   []models.Product `json:"products"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

// CreateProductInput carries the admin payload for a new listing.
type CreateProductInput struct {
	Name        string
	Brand       string
	Category    enums.ProductCategory
	Subcategory *string
	Description *string
	Ingredients *string
	Directions  *string
	Tags        []string
	ImageURLs   []string
	PriceCents  int
	Stock       int
	IsActive    *bool
	Variants    []VariantInput
}

// UpdateProductInput patches only the supplied fields.
type UpdateProductInput struct {
	Name        *string
	Brand       *string
	Category    *enums.ProductCategory
	Subcategory *string
	Description *string
	Ingredients *string
	Directions  *string
	Tags        []string
	ImageURLs   []string
	PriceCents  *int
	Stock       *int
	IsActive    *bool
}

// VariantInput carries one purchasable configuration.
type VariantInput struct {
	Label      string
	Flavor     *string
	Size       *string
	PriceCents int
	Stock      int
}
