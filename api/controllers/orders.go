package controllers

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/rmoralesf/vitalstack-backend/api/responses"
	"github.com/rmoralesf/vitalstack-backend/api/validators"
	"github.com/rmoralesf/vitalstack-backend/internal/orders"
	"github.com/rmoralesf/vitalstack-backend/pkg/config"
	"github.com/rmoralesf/vitalstack-backend/pkg/enums"
	pkgerrors "github.com/rmoralesf/vitalstack-backend/pkg/errors"
	"github.com/rmoralesf/vitalstack-backend/pkg/logger"
)

type orderLineRequest struct {
	ProductID string  `json:"product_id" validate:"required,uuid"`
	VariantID *string `json:"variant_id,omitempty"`
	Qty       int     `json:"qty" validate:"required,gt=0"`
}

type placeOrderRequest struct {
	AddressID     string             `json:"address_id" validate:"required,uuid"`
	PaymentMethod string             `json:"payment_method" validate:"required"`
	Receipt       *string            `json:"receipt,omitempty"`
	Items         []orderLineRequest `json:"items" validate:"required,min=1,dive"`
}

// parseReceiptDataURL decodes an RFC 2397 data URL such as
// "data:image/png;base64,iVBOR...". Receipts are binary, so only the
// base64 form is accepted.
func parseReceiptDataURL(value string) (*orders.ReceiptUpload, error) {
	rest, ok := strings.CutPrefix(value, "data:")
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "receipt must be a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "receipt data URL missing payload")
	}
	mediaType, encoded := strings.CutSuffix(meta, ";base64")
	if !encoded {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "receipt data URL must be base64 encoded")
	}
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid receipt encoding")
	}
	if len(data) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "receipt payload is empty")
	}
	return &orders.ReceiptUpload{Data: data, ContentType: mediaType}, nil
}

func (p placeOrderRequest) toInput() (orders.PlaceOrderInput, error) {
	addressID, err := uuid.Parse(p.AddressID)
	if err != nil {
		return orders.PlaceOrderInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid address id")
	}
	method, err := enums.ParsePaymentMethod(strings.TrimSpace(p.PaymentMethod))
	if err != nil {
		return orders.PlaceOrderInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method")
	}

	input := orders.PlaceOrderInput{
		AddressID:     addressID,
		PaymentMethod: method,
	}
	if p.Receipt != nil && *p.Receipt != "" {
		receipt, err := parseReceiptDataURL(*p.Receipt)
		if err != nil {
			return orders.PlaceOrderInput{}, err
		}
		input.Receipt = receipt
	}
	for _, line := range p.Items {
		productID, err := uuid.Parse(line.ProductID)
		if err != nil {
			return orders.PlaceOrderInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid product id")
		}
		item := orders.OrderLineInput{ProductID: productID, Qty: line.Qty}
		if line.VariantID != nil && *line.VariantID != "" {
			variantID, err := uuid.Parse(*line.VariantID)
			if err != nil {
				return orders.PlaceOrderInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid variant id")
			}
			item.VariantID = &variantID
		}
		input.Items = append(input.Items, item)
	}
	return input, nil
}

// decodePlaceOrder accepts either a JSON body or a multipart form with a
// "payload" JSON part and an optional "receipt" file part.
func decodePlaceOrder(r *http.Request, maxUploadBytes int64) (orders.PlaceOrderInput, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var payload placeOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return orders.PlaceOrderInput{}, err
		}
		input, err := payload.toInput()
		if err != nil {
			return orders.PlaceOrderInput{}, err
		}
		if input.Receipt != nil && int64(len(input.Receipt.Data)) > maxUploadBytes {
			return orders.PlaceOrderInput{}, pkgerrors.New(pkgerrors.CodeValidation, "receipt exceeds the upload size limit")
		}
		return input, nil
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return orders.PlaceOrderInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}

	var payload placeOrderRequest
	raw := r.FormValue("payload")
	if raw == "" {
		return orders.PlaceOrderInput{}, pkgerrors.New(pkgerrors.CodeValidation, "payload part required")
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return orders.PlaceOrderInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payload json")
	}
	if err := validators.ValidateStruct(&payload); err != nil {
		return orders.PlaceOrderInput{}, err
	}
	input, err := payload.toInput()
	if err != nil {
		return orders.PlaceOrderInput{}, err
	}

	if input.Receipt != nil && int64(len(input.Receipt.Data)) > maxUploadBytes {
		return orders.PlaceOrderInput{}, pkgerrors.New(pkgerrors.CodeValidation, "receipt exceeds the upload size limit")
	}

	// A file part wins over a data URL in the payload JSON.
	file, header, err := r.FormFile("receipt")
	if err == http.ErrMissingFile {
		return input, nil
	}
	if err != nil {
		return orders.PlaceOrderInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid receipt part")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		return orders.PlaceOrderInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read receipt")
	}
	input.Receipt = &orders.ReceiptUpload{
		Data:        data,
		ContentType: header.Header.Get("Content-Type"),
	}
	return input, nil
}

// PlaceOrder creates an order for the authenticated customer.
func PlaceOrder(svc orders.Service, uploadCfg config.UploadConfig, logg *logger.Logger) http.HandlerFunc {
	maxUploadBytes := int64(uploadCfg.MaxUploadMB) * 1024 * 1024
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 * 1024 * 1024
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input, err := decodePlaceOrder(r, maxUploadBytes)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		order, err := svc.PlaceOrder(ctx, userID, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// ListMyOrders returns the caller's order history.
func ListMyOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		list, err := svc.ListOrdersForUser(ctx, userID, params)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// GetMyOrder returns one of the caller's orders.
func GetMyOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		orderID, err := urlUUID(r, "orderId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		order, err := svc.GetOrderForUser(ctx, orderID, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// CancelMyOrder cancels a pending order and restores its stock.
func CancelMyOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		orderID, err := urlUUID(r, "orderId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		order, err := svc.CancelOrderForUser(ctx, orderID, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
