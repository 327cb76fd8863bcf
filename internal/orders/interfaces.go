package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmoralesf/vitalstack-backend/pkg/db/models"
	"github.com/rmoralesf/vitalstack-backend/pkg/enums"
	"github.com/rmoralesf/vitalstack-backend/pkg/pagination"
)

// Repository defines persistence operations for orders and the catalog rows
// checkout reads inside its transaction.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindByIDForUser(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error)
	List(ctx context.Context, params pagination.Params, filters OrderListFilters) (*OrderList, error)
	UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error
	FindUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error)
	FindProductByID(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	FindVariantByID(ctx context.Context, variantID uuid.UUID) (*models.ProductVariant, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// AddressReader resolves a shipping address owned by the ordering user.
type AddressReader interface {
	FindForUser(ctx context.Context, addressID, userID uuid.UUID) (*models.Address, error)
}

// ReceiptStore persists payment receipts and returns their public URL.
type ReceiptStore interface {
	UploadReceipt(ctx context.Context, data []byte, contentType string) (string, error)
}

// Notifier records an admin notification inside the order transaction so the
// alert and the order commit or roll back together.
type Notifier interface {
	Notify(ctx context.Context, tx *gorm.DB, notificationType enums.NotificationType, message string, orderID *uuid.UUID) error
}

// StockAdjuster moves catalog stock while an order transaction is open.
type StockAdjuster interface {
	DecrementProduct(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error
	DecrementVariant(ctx context.Context, tx *gorm.DB, variantID uuid.UUID, qty int) error
	RestoreProduct(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error
	RestoreVariant(ctx context.Context, tx *gorm.DB, variantID uuid.UUID, qty int) error
}
