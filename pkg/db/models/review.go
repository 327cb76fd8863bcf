package models

import (
	"time"

	"github.com/google/uuid"
)

// Review holds one customer rating for a product.
type Review struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;index:idx_review_product_user,unique"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index:idx_review_product_user,unique"`
	Rating    int       `gorm:"column:rating;not null"`
	Comment   *string   `gorm:"column:comment"`
	User      *User     `gorm:"foreignKey:UserID"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
