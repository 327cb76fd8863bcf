package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/rmoralesf/vitalstack-backend/pkg/enums"
)

// Order is the checkout result: header plus snapshot line items.
type Order struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID        uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	AddressID     uuid.UUID           `gorm:"column:address_id;type:uuid;not null"`
	TotalCents    int                 `gorm:"column:total_cents;not null"`
	PaymentMethod enums.PaymentMethod `gorm:"column:payment_method;type:payment_method;not null"`
	PaymentStatus enums.PaymentStatus `gorm:"column:payment_status;type:payment_status;not null;default:'PENDING'"`
	ReceiptURL    *string             `gorm:"column:receipt_url"`
	Status        enums.OrderStatus   `gorm:"column:status;type:order_status;not null;default:'PENDING'"`
	Items         []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	User          *User               `gorm:"foreignKey:UserID"`
	Address       *Address            `gorm:"foreignKey:AddressID"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
