package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmoralesf/vitalstack-backend/pkg/db/models"
	"github.com/rmoralesf/vitalstack-backend/pkg/pagination"
)

// Repository defines persistence operations for the catalog tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	UpdateProduct(ctx context.Context, productID uuid.UUID, updates map[string]any) error
	DeleteProduct(ctx context.Context, productID uuid.UUID) error
	FindProductByID(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	FindProductBySlug(ctx context.Context, slug string) (*models.Product, error)
	ListProducts(ctx context.Context, params pagination.Params, filters ProductListFilters) (*ProductList, error)
	CreateVariant(ctx context.Context, variant *models.ProductVariant) (*models.ProductVariant, error)
	UpdateVariant(ctx context.Context, variantID uuid.UUID, updates map[string]any) error
	DeleteVariant(ctx context.Context, variantID uuid.UUID) error
	FindVariantByID(ctx context.Context, variantID uuid.UUID) (*models.ProductVariant, error)
	UpdateRating(ctx context.Context, productID uuid.UUID, avg float64, count int) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func (r *repository) UpdateProduct(ctx context.Context, productID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Updates(updates).Error
}

func (r *repository) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", productID).
		Delete(&models.Product{}).Error
}

func (r *repository) FindProductByID(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Variants").
		Where("id = ?", productID).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Variants").
		Where("slug = ?", slug).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) ListProducts(ctx context.Context, params pagination.Params, filters ProductListFilters) (*ProductList, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{}).Preload("Variants")

	if !filters.IncludeHidden {
		query = query.Where("is_active = ?", true)
	}
	if filters.Category != nil {
		query = query.Where("category = ?", *filters.Category)
	}
	if brand := strings.TrimSpace(filters.Brand); brand != "" {
		query = query.Where("LOWER(brand) = LOWER(?)", brand)
	}
	if filters.PriceMinCents != nil {
		query = query.Where("price_cents >= ?", *filters.PriceMinCents)
	}
	if filters.PriceMaxCents != nil {
		query = query.Where("price_cents <= ?", *filters.PriceMaxCents)
	}
	if filters.InStockOnly {
		query = query.Where("stock > 0")
	}
	if q := strings.TrimSpace(filters.Query); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(brand) LIKE ?", pattern, pattern)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	limit := pagination.NormalizeLimit(params.Limit)
	var products []models.Product
	err = query.
		Order("created_at DESC, id DESC").
		Limit(limit + 1).
		Find(&products).Error
	if err != nil {
		return nil, err
	}

	list := &ProductList{}
	if len(products) > limit {
		last := products[limit-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
		products = products[:limit]
	}
	list.Products = products
	return list, nil
}

func (r *repository) CreateVariant(ctx context.Context, variant *models.ProductVariant) (*models.ProductVariant, error) {
	if err := r.db.WithContext(ctx).Create(variant).Error; err != nil {
		return nil, err
	}
	return variant, nil
}

func (r *repository) UpdateVariant(ctx context.Context, variantID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.ProductVariant{}).
		Where("id = ?", variantID).
		Updates(updates).Error
}

func (r *repository) DeleteVariant(ctx context.Context, variantID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", variantID).
		Delete(&models.ProductVariant{}).Error
}

func (r *repository) FindVariantByID(ctx context.Context, variantID uuid.UUID) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	err := r.db.WithContext(ctx).
		Where("id = ?", variantID).
		First(&variant).Error
	if err != nil {
		return nil, err
	}
	return &variant, nil
}

func (r *repository) UpdateRating(ctx context.Context, productID uuid.UUID, avg float64, count int) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Updates(map[string]any{"rating_avg": avg, "rating_count": count}).Error
}
