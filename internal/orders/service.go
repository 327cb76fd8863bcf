package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rmoralesf/vitalstack-backend/pkg/db/models"
	"github.com/rmoralesf/vitalstack-backend/pkg/enums"
	pkgerrors "github.com/rmoralesf/vitalstack-backend/pkg/errors"
	"github.com/rmoralesf/vitalstack-backend/pkg/pagination"
)

// Service defines checkout plus the customer and admin order surfaces.
type Service interface {
	PlaceOrder(ctx context.Context, userID uuid.UUID, input PlaceOrderInput) (*models.Order, error)
	GetOrderForUser(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error)
	ListOrdersForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderList, error)
	CancelOrderForUser(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, params pagination.Params, filters OrderListFilters) (*OrderList, error)
	UpdateOrder(ctx context.Context, orderID uuid.UUID, input UpdateOrderInput) (*models.Order, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	addresses AddressReader
	receipts  ReceiptStore
	notifier  Notifier
	stock     StockAdjuster
}

// NewService builds an order service with the required dependencies.
func NewService(repo Repository, tx txRunner, addresses AddressReader, receipts ReceiptStore, notifier Notifier, stock StockAdjuster) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if addresses == nil {
		return nil, fmt.Errorf("address reader required")
	}
	if receipts == nil {
		return nil, fmt.Errorf("receipt store required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if stock == nil {
		return nil, fmt.Errorf("stock adjuster required")
	}
	return &service{
		repo:      repo,
		tx:        tx,
		addresses: addresses,
		receipts:  receipts,
		notifier:  notifier,
		stock:     stock,
	}, nil
}

// PlaceOrder runs the checkout. The receipt upload happens before the
// transaction opens since object storage cannot participate in the rollback.
// Everything else, including the admin notification, commits atomically:
// stock decrements, the order row, its line items, and the NEW_ORDER alert
// either all land or none do.
func (s *service) PlaceOrder(ctx context.Context, userID uuid.UUID, input PlaceOrderInput) (*models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if input.AddressID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address id required")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}
	for _, line := range input.Items {
		if line.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required on every item")
		}
		if line.Qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
	}

	purchaser, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	address, err := s.addresses.FindForUser(ctx, input.AddressID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load address")
	}

	paymentStatus := enums.PaymentStatusPending
	var receiptURL *string
	switch input.PaymentMethod {
	case enums.PaymentMethodOnline:
		if input.Receipt == nil || len(input.Receipt.Data) == 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "online payment requires a receipt")
		}
		url, err := s.receipts.UploadReceipt(ctx, input.Receipt.Data, input.Receipt.ContentType)
		if err != nil {
			return nil, err
		}
		receiptURL = &url
		paymentStatus = enums.PaymentStatusPaid
	case enums.PaymentMethodCOD:
		if input.Receipt != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "receipt is only accepted for online payments")
		}
	}

	var order *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		totalCents := 0
		items := make([]models.OrderItem, 0, len(input.Items))
		for _, line := range input.Items {
			item, err := s.buildLine(ctx, tx, repo, line)
			if err != nil {
				return err
			}
			totalCents += item.TotalCents
			items = append(items, *item)
		}

		created, err := repo.CreateOrder(ctx, &models.Order{
			UserID:        userID,
			AddressID:     address.ID,
			TotalCents:    totalCents,
			PaymentMethod: input.PaymentMethod,
			PaymentStatus: paymentStatus,
			ReceiptURL:    receiptURL,
			Status:        enums.OrderStatusPending,
			Items:         items,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		message := fmt.Sprintf(
			"New order #%s from %s %s: %d item(s), $%s total",
			shortOrderRef(created.ID), purchaser.FirstName, purchaser.LastName,
			len(created.Items), formatCents(created.TotalCents),
		)
		if err := s.notifier.Notify(ctx, tx, enums.NotificationTypeNewOrder, message, &created.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record order notification")
		}

		order = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Reload so the response carries the relations the INSERT omitted:
	// product and variant rows per line, the address, and the purchaser.
	full, err := s.repo.FindByID(ctx, order.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
	}
	return scrubOrderUser(full), nil
}

// shortOrderRef is the human-facing handle used in admin alerts. Eight hex
// chars of the UUID are enough to find the row without quoting the whole id.
func shortOrderRef(id uuid.UUID) string {
	ref := id.String()
	if len(ref) > 8 {
		ref = ref[:8]
	}
	return ref
}

func formatCents(cents int) string {
	return decimal.NewFromInt(int64(cents)).Div(decimal.NewFromInt(100)).StringFixed(2)
}

// scrubOrderUser blanks the credential hash on the preloaded purchaser. The
// copy keeps the caller from mutating a row GORM may still hold.
func scrubOrderUser(order *models.Order) *models.Order {
	if order != nil && order.User != nil {
		sanitized := *order.User
		sanitized.PasswordHash = ""
		order.User = &sanitized
	}
	return order
}

// buildLine resolves one requested line against the catalog and decrements
// stock. Variant lines decrement both the variant and its parent product so
// the product-level count stays the sum of its configurations.
func (s *service) buildLine(ctx context.Context, tx *gorm.DB, repo Repository, line OrderLineInput) (*models.OrderItem, error) {
	product, err := repo.FindProductByID(ctx, line.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("product %q is not available", product.Name))
	}

	unitPrice := product.PriceCents
	var variantLabel *string
	if line.VariantID != nil {
		variant, err := repo.FindVariantByID(ctx, *line.VariantID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variant")
		}
		if variant.ProductID != product.ID {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
		}
		unitPrice = variant.PriceCents
		label := variant.Label
		variantLabel = &label

		if err := s.stock.DecrementVariant(ctx, tx, variant.ID, line.Qty); err != nil {
			return nil, err
		}
	}
	if err := s.stock.DecrementProduct(ctx, tx, product.ID, line.Qty); err != nil {
		return nil, err
	}

	return &models.OrderItem{
		ProductID:      product.ID,
		VariantID:      line.VariantID,
		Name:           product.Name,
		VariantLabel:   variantLabel,
		UnitPriceCents: unitPrice,
		Qty:            line.Qty,
		TotalCents:     unitPrice * line.Qty,
	}, nil
}

func (s *service) GetOrderForUser(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil || userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order and user ids required")
	}
	order, err := s.repo.FindByIDForUser(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return scrubOrderUser(order), nil
}

func (s *service) ListOrdersForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderList, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	list, err := s.repo.List(ctx, params, OrderListFilters{UserID: &userID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return list, nil
}

// CancelOrderForUser lets a customer back out of an order that has not been
// picked up by fulfillment yet.
func (s *service) CancelOrderForUser(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	order, err := s.GetOrderForUser(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	if order.Status != enums.OrderStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "only pending orders can be cancelled")
	}
	return s.cancel(ctx, order)
}

func (s *service) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return scrubOrderUser(order), nil
}

func (s *service) ListOrders(ctx context.Context, params pagination.Params, filters OrderListFilters) (*OrderList, error) {
	if filters.Status != nil && !filters.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status filter")
	}
	if filters.PaymentStatus != nil && !filters.PaymentStatus.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment status filter")
	}
	list, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return list, nil
}

// UpdateOrder applies admin status changes. Cancelling restores the stock
// every line item consumed, in the same transaction as the status flip.
func (s *service) UpdateOrder(ctx context.Context, orderID uuid.UUID, input UpdateOrderInput) (*models.Order, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if input.Status == nil && input.PaymentStatus == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no changes provided")
	}

	updates := map[string]any{}
	if input.Status != nil {
		next := *input.Status
		if !next.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
		}
		if order.Status.IsTerminal() && next != order.Status {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "order already finalized")
		}
		if next == enums.OrderStatusCancelled {
			return s.cancel(ctx, order)
		}
		updates["status"] = next
	}
	if input.PaymentStatus != nil {
		next := *input.PaymentStatus
		if !next.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment status")
		}
		if order.PaymentStatus == enums.PaymentStatusPaid && next == enums.PaymentStatusPending {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "paid orders cannot revert to pending")
		}
		updates["payment_status"] = next
	}

	if len(updates) > 0 {
		if err := s.repo.UpdateOrder(ctx, order.ID, updates); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
		}
	}
	return s.GetOrder(ctx, order.ID)
}

func (s *service) cancel(ctx context.Context, order *models.Order) (*models.Order, error) {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		for _, item := range order.Items {
			if item.VariantID != nil {
				if err := s.stock.RestoreVariant(ctx, tx, *item.VariantID, item.Qty); err != nil {
					return err
				}
			}
			if err := s.stock.RestoreProduct(ctx, tx, item.ProductID, item.Qty); err != nil {
				return err
			}
		}
		if err := repo.UpdateOrder(ctx, order.ID, map[string]any{"status": enums.OrderStatusCancelled}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetOrder(ctx, order.ID)
}
