package catalog

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/rmoralesf/vitalstack-backend/pkg/db/models"
	pkgerrors "github.com/rmoralesf/vitalstack-backend/pkg/errors"
	"github.com/rmoralesf/vitalstack-backend/pkg/pagination"
)

// Service defines catalog operations for storefront and admin surfaces.
type Service interface {
	ListProducts(ctx context.Context, params pagination.Params, filters ProductListFilters) (*ProductList, error)
	GetProduct(ctx context.Context, productID uuid.UUID, includeHidden bool) (*models.Product, error)
	CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, productID uuid.UUID) error
	AddVariant(ctx context.Context, productID uuid.UUID, input VariantInput) (*models.ProductVariant, error)
	UpdateVariant(ctx context.Context, productID, variantID uuid.UUID, input VariantInput) (*models.ProductVariant, error)
	DeleteVariant(ctx context.Context, productID, variantID uuid.UUID) error
}

type service struct {
	repo Repository
}

// NewService builds a catalog service with the required dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListProducts(ctx context.Context, params pagination.Params, filters ProductListFilters) (*ProductList, error) {
	list, err := s.repo.ListProducts(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return list, nil
}

func (s *service) GetProduct(ctx context.Context, productID uuid.UUID, includeHidden bool) (*models.Product, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	product, err := s.repo.FindProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.IsActive && !includeHidden {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name required")
	}
	if !input.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid product category")
	}
	if input.PriceCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}
	for _, v := range input.Variants {
		if strings.TrimSpace(v.Label) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant label required")
		}
		if v.PriceCents < 0 || v.Stock < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant price and stock cannot be negative")
		}
	}

	slug, err := s.uniqueSlug(ctx, name)
	if err != nil {
		return nil, err
	}

	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}

	product := &models.Product{
		Name:        name,
		Slug:        slug,
		Brand:       strings.TrimSpace(input.Brand),
		Category:    input.Category,
		Subcategory: input.Subcategory,
		Description: input.Description,
		Ingredients: input.Ingredients,
		Directions:  input.Directions,
		Tags:        pq.StringArray(input.Tags),
		ImageURLs:   pq.StringArray(input.ImageURLs),
		PriceCents:  input.PriceCents,
		Stock:       input.Stock,
		IsActive:    active,
	}
	for _, v := range input.Variants {
		product.Variants = append(product.Variants, models.ProductVariant{
			Label:      strings.TrimSpace(v.Label),
			Flavor:     v.Flavor,
			Size:       v.Size,
			PriceCents: v.PriceCents,
			Stock:      v.Stock,
		})
	}

	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return created, nil
}

func (s *service) UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*models.Product, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if _, err := s.loadProduct(ctx, productID); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name cannot be empty")
		}
		updates["name"] = name
	}
	if input.Brand != nil {
		updates["brand"] = strings.TrimSpace(*input.Brand)
	}
	if input.Category != nil {
		if !input.Category.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid product category")
		}
		updates["category"] = *input.Category
	}
	if input.Subcategory != nil {
		updates["subcategory"] = *input.Subcategory
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Ingredients != nil {
		updates["ingredients"] = *input.Ingredients
	}
	if input.Directions != nil {
		updates["directions"] = *input.Directions
	}
	if input.Tags != nil {
		updates["tags"] = pq.StringArray(input.Tags)
	}
	if input.ImageURLs != nil {
		updates["image_urls"] = pq.StringArray(input.ImageURLs)
	}
	if input.PriceCents != nil {
		if *input.PriceCents < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
		}
		updates["price_cents"] = *input.PriceCents
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
		}
		updates["stock"] = *input.Stock
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}

	if len(updates) > 0 {
		if err := s.repo.UpdateProduct(ctx, productID, updates); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
		}
	}
	return s.loadProduct(ctx, productID)
}

// DeleteProduct removes the row outright. Bundles are deactivated instead;
// catalog listings have always been hard-deleted and dependent rows cascade.
func (s *service) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if _, err := s.loadProduct(ctx, productID); err != nil {
		return err
	}
	if err := s.repo.DeleteProduct(ctx, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

func (s *service) AddVariant(ctx context.Context, productID uuid.UUID, input VariantInput) (*models.ProductVariant, error) {
	if _, err := s.loadProduct(ctx, productID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Label) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant label required")
	}
	if input.PriceCents < 0 || input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant price and stock cannot be negative")
	}

	variant := &models.ProductVariant{
		ProductID:  productID,
		Label:      strings.TrimSpace(input.Label),
		Flavor:     input.Flavor,
		Size:       input.Size,
		PriceCents: input.PriceCents,
		Stock:      input.Stock,
	}
	created, err := s.repo.CreateVariant(ctx, variant)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create variant")
	}
	return created, nil
}

func (s *service) UpdateVariant(ctx context.Context, productID, variantID uuid.UUID, input VariantInput) (*models.ProductVariant, error) {
	variant, err := s.loadVariant(ctx, productID, variantID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Label) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant label required")
	}
	if input.PriceCents < 0 || input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant price and stock cannot be negative")
	}

	updates := map[string]any{
		"label":       strings.TrimSpace(input.Label),
		"flavor":      input.Flavor,
		"size":        input.Size,
		"price_cents": input.PriceCents,
		"stock":       input.Stock,
	}
	if err := s.repo.UpdateVariant(ctx, variant.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update variant")
	}
	updated, err := s.repo.FindVariantByID(ctx, variant.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload variant")
	}
	return updated, nil
}

func (s *service) DeleteVariant(ctx context.Context, productID, variantID uuid.UUID) error {
	variant, err := s.loadVariant(ctx, productID, variantID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteVariant(ctx, variant.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete variant")
	}
	return nil
}

func (s *service) loadProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) loadVariant(ctx context.Context, productID, variantID uuid.UUID) (*models.ProductVariant, error) {
	if productID == uuid.Nil || variantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product and variant ids required")
	}
	variant, err := s.repo.FindVariantByID(ctx, variantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variant")
	}
	if variant.ProductID != productID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
	}
	return variant, nil
}

var slugStripRe = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugStripRe.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

func (s *service) uniqueSlug(ctx context.Context, name string) (string, error) {
	slug := slugify(name)
	if slug == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "product name must contain letters or digits")
	}

	_, err := s.repo.FindProductBySlug(ctx, slug)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return slug, nil
	case err != nil:
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check slug")
	default:
		// suffix with a short random fragment to avoid the collision
		return fmt.Sprintf("%s-%s", slug, uuid.NewString()[:8]), nil
	}
}
