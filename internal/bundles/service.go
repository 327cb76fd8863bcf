package bundles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmoralesf/vitalstack-backend/pkg/db/models"
	pkgerrors "github.com/rmoralesf/vitalstack-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// BundleItemInput names one member product of a bundle.
type BundleItemInput struct {
	ProductID uuid.UUID
	Qty       int
}

// CreateBundleInput carries a new curated bundle.
type CreateBundleInput struct {
	Name        string
	Description *string
	PriceCents  int
	ImageURL    *string
	Items       []BundleItemInput
}

// UpdateBundleInput patches only the supplied fields. Items, when present,
// replaces the full member list.
type UpdateBundleInput struct {
	Name        *string
	Description *string
	PriceCents  *int
	ImageURL    *string
	IsActive    *bool
	Items       []BundleItemInput
}

// Service defines the bundle operations.
type Service interface {
	List(ctx context.Context, activeOnly bool) ([]models.Bundle, error)
	Get(ctx context.Context, bundleID uuid.UUID) (*models.Bundle, error)
	Create(ctx context.Context, input CreateBundleInput) (*models.Bundle, error)
	Update(ctx context.Context, bundleID uuid.UUID, input UpdateBundleInput) (*models.Bundle, error)
	Deactivate(ctx context.Context, bundleID uuid.UUID) error
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds a bundle service with the required dependencies.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("bundle repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) List(ctx context.Context, activeOnly bool) ([]models.Bundle, error) {
	bundles, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list bundles")
	}
	return bundles, nil
}

func (s *service) Get(ctx context.Context, bundleID uuid.UUID) (*models.Bundle, error) {
	return s.load(ctx, bundleID)
}

func (s *service) Create(ctx context.Context, input CreateBundleInput) (*models.Bundle, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bundle name required")
	}
	if input.PriceCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bundle price must be positive")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bundle needs at least one product")
	}
	items, err := s.buildItems(ctx, input.Items)
	if err != nil {
		return nil, err
	}

	bundle := &models.Bundle{
		Name:        name,
		Description: input.Description,
		PriceCents:  input.PriceCents,
		ImageURL:    input.ImageURL,
		IsActive:    true,
		Items:       items,
	}
	created, err := s.repo.Create(ctx, bundle)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create bundle")
	}
	return s.load(ctx, created.ID)
}

func (s *service) Update(ctx context.Context, bundleID uuid.UUID, input UpdateBundleInput) (*models.Bundle, error) {
	bundle, err := s.load(ctx, bundleID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "bundle name cannot be empty")
		}
		updates["name"] = name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.PriceCents != nil {
		if *input.PriceCents <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "bundle price must be positive")
		}
		updates["price_cents"] = *input.PriceCents
	}
	if input.ImageURL != nil {
		updates["image_url"] = *input.ImageURL
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}

	var items []models.BundleItem
	if input.Items != nil {
		if len(input.Items) == 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "bundle needs at least one product")
		}
		items, err = s.buildItems(ctx, input.Items)
		if err != nil {
			return nil, err
		}
		for i := range items {
			items[i].BundleID = bundle.ID
		}
	}

	if len(updates) == 0 && items == nil {
		return bundle, nil
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if len(updates) > 0 {
			if err := repo.Update(ctx, bundle.ID, updates); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update bundle")
			}
		}
		if items != nil {
			if err := repo.ReplaceItems(ctx, bundle.ID, items); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace bundle items")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.load(ctx, bundleID)
}

// Deactivate hides the bundle from the storefront. Bundles are never hard
// deleted so past promotions stay resolvable.
func (s *service) Deactivate(ctx context.Context, bundleID uuid.UUID) error {
	bundle, err := s.load(ctx, bundleID)
	if err != nil {
		return err
	}
	if err := s.repo.Update(ctx, bundle.ID, map[string]any{"is_active": false}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate bundle")
	}
	return nil
}

func (s *service) load(ctx context.Context, bundleID uuid.UUID) (*models.Bundle, error) {
	if bundleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bundle id required")
	}
	bundle, err := s.repo.FindByID(ctx, bundleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "bundle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load bundle")
	}
	return bundle, nil
}

func (s *service) buildItems(ctx context.Context, inputs []BundleItemInput) ([]models.BundleItem, error) {
	seen := map[uuid.UUID]bool{}
	items := make([]models.BundleItem, 0, len(inputs))
	for _, item := range inputs {
		if item.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "bundle item product id required")
		}
		if item.Qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "bundle item qty must be positive")
		}
		if seen[item.ProductID] {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "bundle lists the same product twice")
		}
		seen[item.ProductID] = true

		product, err := s.repo.FindProductByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound,
					fmt.Sprintf("product %s not found", item.ProductID))
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load bundle product")
		}
		if !product.IsActive {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("product %q is not available", product.Name))
		}
		items = append(items, models.BundleItem{ProductID: product.ID, Qty: item.Qty})
	}
	return items, nil
}
