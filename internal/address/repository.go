package address

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmoralesf/vitalstack-backend/pkg/db/models"
)

// Repository defines persistence operations for shipping addresses.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, address *models.Address) (*models.Address, error)
	Update(ctx context.Context, addressID uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, addressID uuid.UUID) error
	FindForUser(ctx context.Context, addressID, userID uuid.UUID) (*models.Address, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Address, error)
	ClearDefaultForUser(ctx context.Context, userID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an address repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, address *models.Address) (*models.Address, error) {
	if err := r.db.WithContext(ctx).Create(address).Error; err != nil {
		return nil, err
	}
	return address, nil
}

func (r *repository) Update(ctx context.Context, addressID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Address{}).
		Where("id = ?", addressID).
		Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, addressID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", addressID).
		Delete(&models.Address{}).Error
}

func (r *repository) FindForUser(ctx context.Context, addressID, userID uuid.UUID) (*models.Address, error) {
	var address models.Address
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", addressID, userID).
		First(&address).Error
	if err != nil {
		return nil, err
	}
	return &address, nil
}

func (r *repository) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	var addresses []models.Address
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, created_at DESC").
		Find(&addresses).Error
	if err != nil {
		return nil, err
	}
	return addresses, nil
}

func (r *repository) ClearDefaultForUser(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Address{}).
		Where("user_id = ? AND is_default = ?", userID, true).
		Update("is_default", false).Error
}
