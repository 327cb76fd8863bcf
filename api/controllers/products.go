package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/rmoralesf/vitalstack-backend/api/responses"
	"github.com/rmoralesf/vitalstack-backend/api/validators"
	"github.com/rmoralesf/vitalstack-backend/internal/catalog"
	"github.com/rmoralesf/vitalstack-backend/pkg/enums"
	pkgerrors "github.com/rmoralesf/vitalstack-backend/pkg/errors"
	"github.com/rmoralesf/vitalstack-backend/pkg/logger"
)

type createProductRequest struct {
	Name        string           `json:"name" validate:"required"`
	Brand       string           `json:"brand" validate:"required"`
	Category    string           `json:"category" validate:"required"`
	Subcategory *string          `json:"subcategory,omitempty"`
	Description *string          `json:"description,omitempty"`
	Ingredients *string          `json:"ingredients,omitempty"`
	Directions  *string          `json:"directions,omitempty"`
	Tags        []string         `json:"tags,omitempty"`
	ImageURLs   []string         `json:"image_urls,omitempty"`
	PriceCents  int              `json:"price_cents" validate:"required,gt=0"`
	Stock       int              `json:"stock" validate:"gte=0"`
	IsActive    *bool            `json:"is_active,omitempty"`
	Variants    []variantRequest `json:"variants,omitempty"`
}

type updateProductRequest struct {
	Name        *string  `json:"name,omitempty"`
	Brand       *string  `json:"brand,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Subcategory *string  `json:"subcategory,omitempty"`
	Description *string  `json:"description,omitempty"`
	Ingredients *string  `json:"ingredients,omitempty"`
	Directions  *string  `json:"directions,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	ImageURLs   []string `json:"image_urls,omitempty"`
	PriceCents  *int     `json:"price_cents,omitempty"`
	Stock       *int     `json:"stock,omitempty"`
	IsActive    *bool    `json:"is_active,omitempty"`
}

type variantRequest struct {
	Label      string  `json:"label" validate:"required"`
	Flavor     *string `json:"flavor,omitempty"`
	Size       *string `json:"size,omitempty"`
	PriceCents int     `json:"price_cents" validate:"required,gt=0"`
	Stock      int     `json:"stock" validate:"gte=0"`
}

func (v variantRequest) toInput() catalog.VariantInput {
	return catalog.VariantInput{
		Label:      v.Label,
		Flavor:     v.Flavor,
		Size:       v.Size,
		PriceCents: v.PriceCents,
		Stock:      v.Stock,
	}
}

func productFiltersFromQuery(r *http.Request, includeHidden bool) (catalog.ProductListFilters, error) {
	filters := catalog.ProductListFilters{
		Brand:         strings.TrimSpace(r.URL.Query().Get("brand")),
		Query:         strings.TrimSpace(r.URL.Query().Get("q")),
		IncludeHidden: includeHidden,
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("category")); raw != "" {
		category, err := enums.ParseProductCategory(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
		}
		filters.Category = &category
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("price_min")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value < 0 {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "price_min must be a non-negative integer")
		}
		filters.PriceMinCents = &value
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("price_max")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value < 0 {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "price_max must be a non-negative integer")
		}
		filters.PriceMaxCents = &value
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("in_stock")); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "in_stock must be a boolean")
		}
		filters.InStockOnly = value
	}
	return filters, nil
}

// ListProducts returns the paginated storefront catalog.
func ListProducts(svc catalog.Service, logg *logger.Logger, includeHidden bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		filters, err := productFiltersFromQuery(r, includeHidden)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		list, err := svc.ListProducts(ctx, params, filters)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// GetProduct returns one product with its variants.
func GetProduct(svc catalog.Service, logg *logger.Logger, includeHidden bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		productID, err := urlUUID(r, "productId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		product, err := svc.GetProduct(ctx, productID, includeHidden)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// CreateProduct adds a catalog listing.
func CreateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		category, err := enums.ParseProductCategory(payload.Category)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category"))
			return
		}

		input := catalog.CreateProductInput{
			Name:        payload.Name,
			Brand:       payload.Brand,
			Category:    category,
			Subcategory: payload.Subcategory,
			Description: payload.Description,
			Ingredients: payload.Ingredients,
			Directions:  payload.Directions,
			Tags:        payload.Tags,
			ImageURLs:   payload.ImageURLs,
			PriceCents:  payload.PriceCents,
			Stock:       payload.Stock,
			IsActive:    payload.IsActive,
		}
		for _, variant := range payload.Variants {
			input.Variants = append(input.Variants, variant.toInput())
		}

		product, err := svc.CreateProduct(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// UpdateProduct patches a catalog listing.
func UpdateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		productID, err := urlUUID(r, "productId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input := catalog.UpdateProductInput{
			Name:        payload.Name,
			Brand:       payload.Brand,
			Subcategory: payload.Subcategory,
			Description: payload.Description,
			Ingredients: payload.Ingredients,
			Directions:  payload.Directions,
			Tags:        payload.Tags,
			ImageURLs:   payload.ImageURLs,
			PriceCents:  payload.PriceCents,
			Stock:       payload.Stock,
			IsActive:    payload.IsActive,
		}
		if payload.Category != nil {
			category, err := enums.ParseProductCategory(*payload.Category)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category"))
				return
			}
			input.Category = &category
		}

		product, err := svc.UpdateProduct(ctx, productID, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// DeleteProduct removes a catalog listing.
func DeleteProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		productID, err := urlUUID(r, "productId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.DeleteProduct(ctx, productID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

// AddVariant attaches a purchasable configuration to a product.
func AddVariant(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		productID, err := urlUUID(r, "productId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload variantRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		variant, err := svc.AddVariant(ctx, productID, payload.toInput())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, variant)
	}
}

// UpdateVariant replaces a variant's label, flavor, size, price and stock.
func UpdateVariant(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		productID, err := urlUUID(r, "productId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		variantID, err := urlUUID(r, "variantId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload variantRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		variant, err := svc.UpdateVariant(ctx, productID, variantID, payload.toInput())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, variant)
	}
}

// DeleteVariant removes a variant from a product.
func DeleteVariant(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		productID, err := urlUUID(r, "productId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		variantID, err := urlUUID(r, "variantId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.DeleteVariant(ctx, productID, variantID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}
