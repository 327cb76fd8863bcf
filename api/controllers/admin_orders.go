package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/rmoralesf/vitalstack-backend/api/responses"
	"github.com/rmoralesf/vitalstack-backend/api/validators"
	"github.com/rmoralesf/vitalstack-backend/internal/orders"
	"github.com/rmoralesf/vitalstack-backend/pkg/db/models"
	"github.com/rmoralesf/vitalstack-backend/pkg/enums"
	pkgerrors "github.com/rmoralesf/vitalstack-backend/pkg/errors"
	"github.com/rmoralesf/vitalstack-backend/pkg/logger"
)

type updateOrderRequest struct {
	Status        *string `json:"status,omitempty"`
	PaymentStatus *string `json:"payment_status,omitempty"`
}

// ReceiptSigner mints short-lived download links for stored receipts.
type ReceiptSigner interface {
	SignedReceiptURL(objectURL string) (string, error)
}

// adminOrderResponse decorates an order with a time-limited receipt link
// so the console can show the payment proof without a public object URL.
type adminOrderResponse struct {
	*models.Order
	ReceiptDownloadURL string `json:"receipt_download_url,omitempty"`
}

// AdminListOrders returns every order, optionally filtered by user, status
// or payment status.
func AdminListOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var filters orders.OrderListFilters
		if raw := strings.TrimSpace(r.URL.Query().Get("user_id")); raw != "" {
			userID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid user_id"))
				return
			}
			filters.UserID = &userID
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseOrderStatus(raw)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			filters.Status = &status
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("payment_status")); raw != "" {
			status, err := enums.ParsePaymentStatus(raw)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment_status"))
				return
			}
			filters.PaymentStatus = &status
		}

		list, err := svc.ListOrders(ctx, params, filters)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AdminGetOrder returns any order by id, with a signed receipt download
// link when the order carries an uploaded receipt.
func AdminGetOrder(svc orders.Service, signer ReceiptSigner, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := urlUUID(r, "orderId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		order, err := svc.GetOrder(ctx, orderID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		resp := adminOrderResponse{Order: order}
		if signer != nil && order.ReceiptURL != nil && *order.ReceiptURL != "" {
			signed, err := signer.SignedReceiptURL(*order.ReceiptURL)
			if err != nil {
				// The order itself is still useful without the link.
				logg.Warn(logg.WithOrderID(ctx, order.ID.String()), "sign receipt url: "+err.Error())
			} else {
				resp.ReceiptDownloadURL = signed
			}
		}
		responses.WriteSuccess(w, resp)
	}
}

// AdminUpdateOrder moves an order through its fulfilment lifecycle. Setting
// status to CANCELLED restores the reserved stock.
func AdminUpdateOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := urlUUID(r, "orderId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload updateOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if payload.Status == nil && payload.PaymentStatus == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "nothing to update"))
			return
		}

		var input orders.UpdateOrderInput
		if payload.Status != nil {
			status, err := enums.ParseOrderStatus(*payload.Status)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			input.Status = &status
		}
		if payload.PaymentStatus != nil {
			status, err := enums.ParsePaymentStatus(*payload.PaymentStatus)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment_status"))
				return
			}
			input.PaymentStatus = &status
		}

		order, err := svc.UpdateOrder(ctx, orderID, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
