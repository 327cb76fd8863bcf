package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderItem captures the snapshot of each line within an order. The unit
// price is frozen at order creation and never recomputed from the catalog.
type OrderItem struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID      uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	VariantID      *uuid.UUID      `gorm:"column:variant_id;type:uuid"`
	Name           string          `gorm:"column:name;not null"`
	VariantLabel   *string         `gorm:"column:variant_label"`
	UnitPriceCents int             `gorm:"column:unit_price_cents;not null"`
	Qty            int             `gorm:"column:qty;not null"`
	TotalCents     int             `gorm:"column:total_cents;not null"`
	Product        *Product        `gorm:"foreignKey:ProductID"`
	Variant        *ProductVariant `gorm:"foreignKey:VariantID"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
}
