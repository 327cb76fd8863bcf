package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/rmoralesf/vitalstack-backend/pkg/enums"
)

// Product represents one catalog listing.
type Product struct {
	ID            uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name          string                `gorm:"column:name;not null"`
	Slug          string                `gorm:"column:slug;not null;uniqueIndex"`
	Brand         string                `gorm:"column:brand;not null"`
	Category      enums.ProductCategory `gorm:"column:category;type:product_category;not null"`
	Subcategory   *string               `gorm:"column:subcategory"`
	Description   *string               `gorm:"column:description"`
	Ingredients   *string               `gorm:"column:ingredients"`
	Directions    *string               `gorm:"column:directions"`
	Tags          pq.StringArray        `gorm:"column:tags;type:text[];not null;default:ARRAY[]::text[]"`
	ImageURLs     pq.StringArray        `gorm:"column:image_urls;type:text[];not null;default:ARRAY[]::text[]"`
	PriceCents    int                   `gorm:"column:price_cents;not null"`
	Stock         int                   `gorm:"column:stock;not null;default:0"`
	RatingAvg     float64               `gorm:"column:rating_avg;type:numeric(3,1);not null;default:0"`
	RatingCount   int                   `gorm:"column:rating_count;not null;default:0"`
	IsActive      bool                  `gorm:"column:is_active;not null"`
	Variants      []ProductVariant      `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
