package banners

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmoralesf/vitalstack-backend/pkg/db/models"
)

// Repository defines persistence operations for storefront banners.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, banner *models.Banner) (*models.Banner, error)
	FindByID(ctx context.Context, bannerID uuid.UUID) (*models.Banner, error)
	List(ctx context.Context, activeOnly bool) ([]models.Banner, error)
	Update(ctx context.Context, bannerID uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, bannerID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a banner repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, banner *models.Banner) (*models.Banner, error) {
	if err := r.db.WithContext(ctx).Create(banner).Error; err != nil {
		return nil, err
	}
	return banner, nil
}

func (r *repository) FindByID(ctx context.Context, bannerID uuid.UUID) (*models.Banner, error) {
	var banner models.Banner
	err := r.db.WithContext(ctx).
		Where("id = ?", bannerID).
		First(&banner).Error
	if err != nil {
		return nil, err
	}
	return &banner, nil
}

func (r *repository) List(ctx context.Context, activeOnly bool) ([]models.Banner, error) {
	query := r.db.WithContext(ctx).Model(&models.Banner{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var banners []models.Banner
	err := query.
		Order("position ASC, created_at DESC").
		Find(&banners).Error
	if err != nil {
		return nil, err
	}
	return banners, nil
}

func (r *repository) Update(ctx context.Context, bannerID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Banner{}).
		Where("id = ?", bannerID).
		Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, bannerID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", bannerID).
		Delete(&models.Banner{}).Error
}
