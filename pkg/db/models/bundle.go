package models

import (
	"time"

	"github.com/google/uuid"
)

// Bundle groups several products under one discounted price. Bundles are
// soft-deactivated rather than deleted so historical orders keep a valid
// reference.
type Bundle struct {
	ID          uuid.UUID    `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string       `gorm:"column:name;not null"`
	Description *string      `gorm:"column:description"`
	PriceCents  int          `gorm:"column:price_cents;not null"`
	ImageURL    *string      `gorm:"column:image_url"`
	IsActive    bool         `gorm:"column:is_active;not null"`
	Items       []BundleItem `gorm:"foreignKey:BundleID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time    `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time    `gorm:"column:updated_at;autoUpdateTime"`
}

// BundleItem links a bundle to one member product.
type BundleItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BundleID  uuid.UUID `gorm:"column:bundle_id;type:uuid;not null;index"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Qty       int       `gorm:"column:qty;not null;default:1"`
	Product   *Product  `gorm:"foreignKey:ProductID"`
}
