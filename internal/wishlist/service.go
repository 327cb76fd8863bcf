package wishlist

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmoralesf/vitalstack-backend/pkg/db/models"
	pkgerrors "github.com/rmoralesf/vitalstack-backend/pkg/errors"
)

// ProductReader resolves products wishlist mutations validate against.
type ProductReader interface {
	FindProductByID(ctx context.Context, productID uuid.UUID) (*models.Product, error)
}

// Service defines the wishlist operations.
type Service interface {
	List(ctx context.Context, userID uuid.UUID) ([]models.WishlistItem, error)
	Add(ctx context.Context, userID, productID uuid.UUID) (*models.WishlistItem, error)
	Remove(ctx context.Context, userID, productID uuid.UUID) error
}

type service struct {
	repo    Repository
	catalog ProductReader
}

// NewService builds a wishlist service with the required dependencies.
func NewService(repo Repository, catalog ProductReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("wishlist repository required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("product reader required")
	}
	return &service{repo: repo, catalog: catalog}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]models.WishlistItem, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	items, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wishlist")
	}
	return items, nil
}

// Add is idempotent: adding a product twice returns the existing entry.
func (s *service) Add(ctx context.Context, userID, productID uuid.UUID) (*models.WishlistItem, error) {
	if userID == uuid.Nil || productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user and product ids required")
	}

	product, err := s.catalog.FindProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is not available")
	}

	existing, err := s.repo.Find(ctx, userID, productID)
	switch {
	case err == nil:
		return existing, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		item, err := s.repo.Create(ctx, &models.WishlistItem{UserID: userID, ProductID: productID})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create wishlist item")
		}
		return item, nil
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find wishlist item")
	}
}

func (s *service) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	if userID == uuid.Nil || productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user and product ids required")
	}
	deleted, err := s.repo.Delete(ctx, userID, productID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove wishlist item")
	}
	if deleted == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "wishlist item not found")
	}
	return nil
}
