package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmoralesf/vitalstack-backend/pkg/db/models"
	pkgerrors "github.com/rmoralesf/vitalstack-backend/pkg/errors"
)

const maxQtyPerLine = 99

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CatalogReader resolves the product rows cart mutations validate against.
type CatalogReader interface {
	FindProductByID(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	FindVariantByID(ctx context.Context, variantID uuid.UUID) (*models.ProductVariant, error)
}

// Cart is the assembled view with a subtotal from current catalog prices.
type Cart struct {
	Items         []models.CartItem `json:"items"`
	SubtotalCents int               `json:"subtotal_cents"`
}

// AddItemInput adds qty of a product (or one of its variants) to the cart.
type AddItemInput struct {
	ProductID uuid.UUID
	VariantID *uuid.UUID
	Qty       int
}

// Service defines the cart operations.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*Cart, error)
	AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*models.CartItem, error)
	UpdateItemQty(ctx context.Context, itemID, userID uuid.UUID, qty int) (*models.CartItem, error)
	RemoveItem(ctx context.Context, itemID, userID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	repo    Repository
	catalog CatalogReader
	tx      txRunner
}

// NewService builds a cart service with the required dependencies.
func NewService(repo Repository, catalog CatalogReader, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog reader required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, catalog: catalog, tx: tx}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*Cart, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	items, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart items")
	}

	cart := &Cart{Items: items}
	for _, item := range items {
		unit := 0
		if item.Variant != nil {
			unit = item.Variant.PriceCents
		} else if item.Product != nil {
			unit = item.Product.PriceCents
		}
		cart.SubtotalCents += unit * item.Qty
	}
	return cart, nil
}

// AddItem merges quantities when the same product/variant pair is already in
// the cart instead of creating a duplicate line.
func (s *service) AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*models.CartItem, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if input.Qty <= 0 || input.Qty > maxQtyPerLine {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("quantity must be between 1 and %d", maxQtyPerLine))
	}

	product, err := s.catalog.FindProductByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is not available")
	}
	if input.VariantID != nil {
		variant, err := s.catalog.FindVariantByID(ctx, *input.VariantID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variant")
		}
		if variant.ProductID != product.ID {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
		}
	}

	var result *models.CartItem
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, err := repo.FindItem(ctx, userID, input.ProductID, input.VariantID)
		switch {
		case err == nil:
			merged := existing.Qty + input.Qty
			if merged > maxQtyPerLine {
				merged = maxQtyPerLine
			}
			if err := repo.UpdateQty(ctx, existing.ID, merged); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "merge cart item")
			}
			existing.Qty = merged
			result = existing
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			item, err := repo.Create(ctx, &models.CartItem{
				UserID:    userID,
				ProductID: input.ProductID,
				VariantID: input.VariantID,
				Qty:       input.Qty,
			})
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart item")
			}
			result = item
			return nil
		default:
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find cart item")
		}
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) UpdateItemQty(ctx context.Context, itemID, userID uuid.UUID, qty int) (*models.CartItem, error) {
	if qty <= 0 || qty > maxQtyPerLine {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("quantity must be between 1 and %d", maxQtyPerLine))
	}
	item, err := s.load(ctx, itemID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateQty(ctx, item.ID, qty); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
	}
	item.Qty = qty
	return item, nil
}

func (s *service) RemoveItem(ctx context.Context, itemID, userID uuid.UUID) error {
	item, err := s.load(ctx, itemID, userID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, item.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart item")
	}
	return nil
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if _, err := s.repo.DeleteForUser(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

func (s *service) load(ctx context.Context, itemID, userID uuid.UUID) (*models.CartItem, error) {
	if itemID == uuid.Nil || userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item and user ids required")
	}
	item, err := s.repo.FindByID(ctx, itemID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}
	return item, nil
}
