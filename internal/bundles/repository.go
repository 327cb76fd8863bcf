package bundles

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmoralesf/vitalstack-backend/pkg/db/models"
)

// Repository persists bundles and their member products.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, bundle *models.Bundle) (*models.Bundle, error)
	FindByID(ctx context.Context, bundleID uuid.UUID) (*models.Bundle, error)
	List(ctx context.Context, activeOnly bool) ([]models.Bundle, error)
	Update(ctx context.Context, bundleID uuid.UUID, updates map[string]any) error
	ReplaceItems(ctx context.Context, bundleID uuid.UUID, items []models.BundleItem) error
	FindProductByID(ctx context.Context, productID uuid.UUID) (*models.Product, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, bundle *models.Bundle) (*models.Bundle, error) {
	if err := r.db.WithContext(ctx).Omit("Items.Product").Create(bundle).Error; err != nil {
		return nil, err
	}
	return bundle, nil
}

func (r *repository) FindByID(ctx context.Context, bundleID uuid.UUID) (*models.Bundle, error) {
	var bundle models.Bundle
	err := r.db.WithContext(ctx).
		Preload("Items.Product").
		First(&bundle, "id = ?", bundleID).Error
	if err != nil {
		return nil, err
	}
	return &bundle, nil
}

func (r *repository) List(ctx context.Context, activeOnly bool) ([]models.Bundle, error) {
	query := r.db.WithContext(ctx).
		Preload("Items.Product").
		Order("created_at DESC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var bundles []models.Bundle
	if err := query.Find(&bundles).Error; err != nil {
		return nil, err
	}
	return bundles, nil
}

func (r *repository) Update(ctx context.Context, bundleID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Bundle{}).
		Where("id = ?", bundleID).
		Updates(updates).Error
}

func (r *repository) ReplaceItems(ctx context.Context, bundleID uuid.UUID, items []models.BundleItem) error {
	if err := r.db.WithContext(ctx).
		Where("bundle_id = ?", bundleID).
		Delete(&models.BundleItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit("Product").Create(&items).Error
}

func (r *repository) FindProductByID(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).First(&product, "id = ?", productID).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}
