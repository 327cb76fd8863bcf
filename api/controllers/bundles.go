package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/rmoralesf/vitalstack-backend/api/responses"
	"github.com/rmoralesf/vitalstack-backend/api/validators"
	"github.com/rmoralesf/vitalstack-backend/internal/bundles"
	pkgerrors "github.com/rmoralesf/vitalstack-backend/pkg/errors"
	"github.com/rmoralesf/vitalstack-backend/pkg/logger"
)

type bundleItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Qty       int    `json:"qty" validate:"required,gt=0"`
}

type createBundleRequest struct {
	Name        string              `json:"name" validate:"required"`
	Description *string             `json:"description,omitempty"`
	PriceCents  int                 `json:"price_cents" validate:"required,gt=0"`
	ImageURL    *string             `json:"image_url,omitempty"`
	Items       []bundleItemRequest `json:"items" validate:"required,min=1,dive"`
}

type updateBundleRequest struct {
	Name        *string             `json:"name,omitempty"`
	Description *string             `json:"description,omitempty"`
	PriceCents  *int                `json:"price_cents,omitempty"`
	ImageURL    *string             `json:"image_url,omitempty"`
	IsActive    *bool               `json:"is_active,omitempty"`
	Items       []bundleItemRequest `json:"items,omitempty" validate:"omitempty,dive"`
}

func bundleItemsToInput(items []bundleItemRequest) ([]bundles.BundleItemInput, error) {
	if items == nil {
		return nil, nil
	}
	converted := make([]bundles.BundleItemInput, 0, len(items))
	for _, item := range items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid product id")
		}
		converted = append(converted, bundles.BundleItemInput{ProductID: productID, Qty: item.Qty})
	}
	return converted, nil
}

// ListBundles returns bundles. Admin callers see deactivated rows too.
func ListBundles(svc bundles.Service, logg *logger.Logger, activeOnly bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bundles service unavailable"))
			return
		}

		list, err := svc.List(ctx, activeOnly)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"bundles": list})
	}
}

// GetBundle returns one bundle with its member products.
func GetBundle(svc bundles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bundles service unavailable"))
			return
		}

		bundleID, err := urlUUID(r, "bundleId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		bundle, err := svc.Get(ctx, bundleID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, bundle)
	}
}

// CreateBundle creates a curated bundle with its member list.
func CreateBundle(svc bundles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bundles service unavailable"))
			return
		}

		var payload createBundleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		items, err := bundleItemsToInput(payload.Items)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		bundle, err := svc.Create(ctx, bundles.CreateBundleInput{
			Name:        payload.Name,
			Description: payload.Description,
			PriceCents:  payload.PriceCents,
			ImageURL:    payload.ImageURL,
			Items:       items,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, bundle)
	}
}

// UpdateBundle patches bundle fields. A supplied item list replaces the
// members wholesale.
func UpdateBundle(svc bundles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bundles service unavailable"))
			return
		}

		bundleID, err := urlUUID(r, "bundleId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload updateBundleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		items, err := bundleItemsToInput(payload.Items)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		bundle, err := svc.Update(ctx, bundleID, bundles.UpdateBundleInput{
			Name:        payload.Name,
			Description: payload.Description,
			PriceCents:  payload.PriceCents,
			ImageURL:    payload.ImageURL,
			IsActive:    payload.IsActive,
			Items:       items,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, bundle)
	}
}

// DeactivateBundle hides the bundle from the storefront without deleting it.
func DeactivateBundle(svc bundles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bundles service unavailable"))
			return
		}

		bundleID, err := urlUUID(r, "bundleId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Deactivate(ctx, bundleID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deactivated": true})
	}
}
