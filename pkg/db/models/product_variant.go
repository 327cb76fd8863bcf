package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductVariant is one purchasable configuration (size/flavor) of a product
// with its own price and stock.
type ProductVariant struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID  uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	Label      string    `gorm:"column:label;not null"`
	Flavor     *string   `gorm:"column:flavor"`
	Size       *string   `gorm:"column:size"`
	PriceCents int       `gorm:"column:price_cents;not null"`
	Stock      int       `gorm:"column:stock;not null;default:0"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
