package models

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is one line in a user's cart. Unlike order items the price is not
// snapshotted; the catalog price applies at checkout.
type CartItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID       `gorm:"column:user_id;type:uuid;not null;index:idx_cart_user_product,unique"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null;index:idx_cart_user_product,unique"`
	VariantID *uuid.UUID      `gorm:"column:variant_id;type:uuid;index:idx_cart_user_product,unique"`
	Qty       int             `gorm:"column:qty;not null;default:1"`
	Product   *Product        `gorm:"foreignKey:ProductID"`
	Variant   *ProductVariant `gorm:"foreignKey:VariantID"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
