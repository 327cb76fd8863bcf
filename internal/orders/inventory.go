package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/rmoralesf/vitalstack-backend/pkg/errors"
)

type stockAdjusterImpl struct{}

// NewStockAdjuster exposes the default stock adjustment implementation.
func NewStockAdjuster() StockAdjuster {
	return stockAdjusterImpl{}
}

// DecrementProduct takes qty units off the product row. The WHERE clause
// guards the invariant that stock never goes negative: zero rows affected
// means there was not enough stock and the caller must roll back.
func (stockAdjusterImpl) DecrementProduct(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	return decrement(ctx, tx, "products", productID, qty)
}

func (stockAdjusterImpl) DecrementVariant(ctx context.Context, tx *gorm.DB, variantID uuid.UUID, qty int) error {
	return decrement(ctx, tx, "product_variants", variantID, qty)
}

func (stockAdjusterImpl) RestoreProduct(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	return restore(ctx, tx, "products", productID, qty)
}

func (stockAdjusterImpl) RestoreVariant(ctx context.Context, tx *gorm.DB, variantID uuid.UUID, qty int) error {
	return restore(ctx, tx, "product_variants", variantID, qty)
}

func decrement(ctx context.Context, tx *gorm.DB, table string, id uuid.UUID, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock adjustment")
	}

	res := tx.WithContext(ctx).Exec(`
		UPDATE `+table+`
		SET stock = stock - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND stock >= ?
	`, qty, id, qty)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "decrement stock")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock")
	}
	return nil
}

func restore(ctx context.Context, tx *gorm.DB, table string, id uuid.UUID, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock adjustment")
	}

	res := tx.WithContext(ctx).Exec(`
		UPDATE `+table+`
		SET stock = stock + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, qty, id)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "restore stock")
	}
	return nil
}
