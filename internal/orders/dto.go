package orders

import (
	"github.com/google/uuid"

	"github.com/rmoralesf/vitalstack-backend/pkg/db/models"
	"github.com/rmoralesf/vitalstack-backend/pkg/enums"
)

// OrderLineInput is one requested line in a checkout payload.
type OrderLineInput struct {
	ProductID uuid.UUID  `json:"product_id"`
	VariantID *uuid.UUID `json:"variant_id,omitempty"`
	Qty       int        `json:"qty"`
}

// ReceiptUpload carries the decoded payment receipt attached to an online order.
type ReceiptUpload struct {
	Data        []byte
	ContentType string
}

// PlaceOrderInput captures everything needed to create an order.
type PlaceOrderInput struct {
	AddressID     uuid.UUID
	PaymentMethod enums.PaymentMethod
	Items         []OrderLineInput
	Receipt       *ReceiptUpload
}

// OrderListFilters narrows admin and customer order listings.
type OrderListFilters struct {
	UserID        *uuid.UUID
	Status        *enums.OrderStatus
	PaymentStatus *enums.PaymentStatus
}

// OrderList wraps the paginated orders plus the next page cursor.
type OrderList struct {
	Orders     []models.Order `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// UpdateOrderInput patches the admin-controlled order fields.
type UpdateOrderInput struct {
	Status        *enums.OrderStatus
	PaymentStatus *enums.PaymentStatus
}
