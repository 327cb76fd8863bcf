package wishlist

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmoralesf/vitalstack-backend/pkg/db/models"
)

// Repository defines persistence operations for wishlist items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, item *models.WishlistItem) (*models.WishlistItem, error)
	Find(ctx context.Context, userID, productID uuid.UUID) (*models.WishlistItem, error)
	Delete(ctx context.Context, userID, productID uuid.UUID) (int64, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.WishlistItem, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a wishlist repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, item *models.WishlistItem) (*models.WishlistItem, error) {
	if err := r.db.WithContext(ctx).Omit("Product").Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (r *repository) Find(ctx context.Context, userID, productID uuid.UUID) (*models.WishlistItem, error) {
	var item models.WishlistItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) Delete(ctx context.Context, userID, productID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.WishlistItem{})
	return res.RowsAffected, res.Error
}

func (r *repository) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.WishlistItem, error) {
	var items []models.WishlistItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
