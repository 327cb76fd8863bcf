package controllers

import (
	"bytes"
	"context"
	"encoding/base64"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/rmoralesf/vitalstack-backend/internal/orders"
	"github.com/rmoralesf/vitalstack-backend/pkg/config"
	"github.com/rmoralesf/vitalstack-backend/pkg/db/models"
	"github.com/rmoralesf/vitalstack-backend/pkg/enums"
	"github.com/rmoralesf/vitalstack-backend/pkg/pagination"
)

type testOrdersService struct {
	placeOrderFn        func(ctx context.Context, userID uuid.UUID, input orders.PlaceOrderInput) (*models.Order, error)
	getOrderForUserFn   func(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error)
	listOrdersForUserFn func(ctx context.Context, userID uuid.UUID, params pagination.Params) (*orders.OrderList, error)
	cancelFn            func(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error)
	getOrderFn          func(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	listOrdersFn        func(ctx context.Context, params pagination.Params, filters orders.OrderListFilters) (*orders.OrderList, error)
	updateOrderFn       func(ctx context.Context, orderID uuid.UUID, input orders.UpdateOrderInput) (*models.Order, error)
}

func (s *testOrdersService) PlaceOrder(ctx context.Context, userID uuid.UUID, input orders.PlaceOrderInput) (*models.Order, error) {
	if s.placeOrderFn != nil {
		return s.placeOrderFn(ctx, userID, input)
	}
	return nil, nil
}

func (s *testOrdersService) GetOrderForUser(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	if s.getOrderForUserFn != nil {
		return s.getOrderForUserFn(ctx, orderID, userID)
	}
	return nil, nil
}

func (s *testOrdersService) ListOrdersForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*orders.OrderList, error) {
	if s.listOrdersForUserFn != nil {
		return s.listOrdersForUserFn(ctx, userID, params)
	}
	return &orders.OrderList{}, nil
}

func (s *testOrdersService) CancelOrderForUser(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	if s.cancelFn != nil {
		return s.cancelFn(ctx, orderID, userID)
	}
	return nil, nil
}

func (s *testOrdersService) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if s.getOrderFn != nil {
		return s.getOrderFn(ctx, orderID)
	}
	return nil, nil
}

func (s *testOrdersService) ListOrders(ctx context.Context, params pagination.Params, filters orders.OrderListFilters) (*orders.OrderList, error) {
	if s.listOrdersFn != nil {
		return s.listOrdersFn(ctx, params, filters)
	}
	return &orders.OrderList{}, nil
}

func (s *testOrdersService) UpdateOrder(ctx context.Context, orderID uuid.UUID, input orders.UpdateOrderInput) (*models.Order, error) {
	if s.updateOrderFn != nil {
		return s.updateOrderFn(ctx, orderID, input)
	}
	return nil, nil
}

func TestPlaceOrderJSON(t *testing.T) {
	userID := uuid.New()
	addressID := uuid.New()
	productID := uuid.New()
	var got orders.PlaceOrderInput
	svc := &testOrdersService{
		placeOrderFn: func(ctx context.Context, uid uuid.UUID, input orders.PlaceOrderInput) (*models.Order, error) {
			if uid != userID {
				t.Fatalf("unexpected user %s", uid)
			}
			got = input
			return &models.Order{ID: uuid.New(), UserID: uid}, nil
		},
	}

	body := `{"address_id":"` + addressID.String() + `","payment_method":"COD","items":[{"product_id":"` + productID.String() + `","qty":2}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	req = asUser(req, userID)
	resp := httptest.NewRecorder()
	PlaceOrder(svc, config.UploadConfig{MaxUploadMB: 10}, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if got.AddressID != addressID {
		t.Fatalf("unexpected address %s", got.AddressID)
	}
	if got.PaymentMethod != enums.PaymentMethodCOD {
		t.Fatalf("unexpected method %s", got.PaymentMethod)
	}
	if len(got.Items) != 1 || got.Items[0].ProductID != productID || got.Items[0].Qty != 2 {
		t.Fatalf("unexpected items %+v", got.Items)
	}
	if got.Receipt != nil {
		t.Fatal("json order must not carry a receipt")
	}
}

func TestPlaceOrderJSONWithReceiptDataURL(t *testing.T) {
	userID := uuid.New()
	addressID := uuid.New()
	productID := uuid.New()
	var got orders.PlaceOrderInput
	svc := &testOrdersService{
		placeOrderFn: func(ctx context.Context, uid uuid.UUID, input orders.PlaceOrderInput) (*models.Order, error) {
			got = input
			return &models.Order{ID: uuid.New(), UserID: uid}, nil
		},
	}

	receipt := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png-bytes"))
	body := `{"address_id":"` + addressID.String() + `","payment_method":"ONLINE","receipt":"` + receipt + `","items":[{"product_id":"` + productID.String() + `","qty":1}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	req = asUser(req, userID)
	resp := httptest.NewRecorder()
	PlaceOrder(svc, config.UploadConfig{MaxUploadMB: 10}, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if got.Receipt == nil {
		t.Fatal("expected receipt decoded from data URL")
	}
	if string(got.Receipt.Data) != "png-bytes" {
		t.Fatalf("unexpected receipt data %q", got.Receipt.Data)
	}
	if got.Receipt.ContentType != "image/png" {
		t.Fatalf("unexpected content type %q", got.Receipt.ContentType)
	}
}

func TestPlaceOrderRejectsMalformedReceipt(t *testing.T) {
	userID := uuid.New()
	line := `"items":[{"product_id":"` + uuid.NewString() + `","qty":1}]`
	cases := map[string]string{
		"not a data url": `{"address_id":"` + uuid.NewString() + `","payment_method":"ONLINE","receipt":"https://example.com/r.png",` + line + `}`,
		"no payload":     `{"address_id":"` + uuid.NewString() + `","payment_method":"ONLINE","receipt":"data:image/png;base64",` + line + `}`,
		"not base64":     `{"address_id":"` + uuid.NewString() + `","payment_method":"ONLINE","receipt":"data:image/png,plain",` + line + `}`,
		"bad base64":     `{"address_id":"` + uuid.NewString() + `","payment_method":"ONLINE","receipt":"data:image/png;base64,@@@",` + line + `}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
			req = asUser(req, userID)
			resp := httptest.NewRecorder()
			PlaceOrder(&testOrdersService{}, config.UploadConfig{MaxUploadMB: 10}, testLogger())(resp, req)
			if resp.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 got %d: %s", resp.Code, resp.Body.String())
			}
		})
	}
}

func TestPlaceOrderMultipartWithReceipt(t *testing.T) {
	userID := uuid.New()
	addressID := uuid.New()
	productID := uuid.New()
	var got orders.PlaceOrderInput
	svc := &testOrdersService{
		placeOrderFn: func(ctx context.Context, uid uuid.UUID, input orders.PlaceOrderInput) (*models.Order, error) {
			got = input
			return &models.Order{ID: uuid.New(), UserID: uid}, nil
		},
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	payload := `{"address_id":"` + addressID.String() + `","payment_method":"ONLINE","items":[{"product_id":"` + productID.String() + `","qty":1}]}`
	if err := writer.WriteField("payload", payload); err != nil {
		t.Fatalf("write payload: %v", err)
	}
	part, err := writer.CreateFormFile("receipt", "receipt.png")
	if err != nil {
		t.Fatalf("create receipt part: %v", err)
	}
	if _, err := part.Write([]byte("png-bytes")); err != nil {
		t.Fatalf("write receipt: %v", err)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req = asUser(req, userID)
	resp := httptest.NewRecorder()
	PlaceOrder(svc, config.UploadConfig{MaxUploadMB: 10}, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if got.PaymentMethod != enums.PaymentMethodOnline {
		t.Fatalf("unexpected method %s", got.PaymentMethod)
	}
	if got.Receipt == nil {
		t.Fatal("expected receipt upload")
	}
	if string(got.Receipt.Data) != "png-bytes" {
		t.Fatalf("unexpected receipt data %q", got.Receipt.Data)
	}
}

func TestPlaceOrderValidation(t *testing.T) {
	userID := uuid.New()
	cases := map[string]string{
		"no items":       `{"address_id":"` + uuid.NewString() + `","payment_method":"COD","items":[]}`,
		"zero qty":       `{"address_id":"` + uuid.NewString() + `","payment_method":"COD","items":[{"product_id":"` + uuid.NewString() + `","qty":0}]}`,
		"bad method":     `{"address_id":"` + uuid.NewString() + `","payment_method":"CRYPTO","items":[{"product_id":"` + uuid.NewString() + `","qty":1}]}`,
		"bad address id": `{"address_id":"nope","payment_method":"COD","items":[{"product_id":"` + uuid.NewString() + `","qty":1}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
			req = asUser(req, userID)
			resp := httptest.NewRecorder()
			PlaceOrder(&testOrdersService{}, config.UploadConfig{MaxUploadMB: 10}, testLogger())(resp, req)
			if resp.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 got %d", resp.Code)
			}
		})
	}
}

func TestPlaceOrderRequiresAuth(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()
	PlaceOrder(&testOrdersService{}, config.UploadConfig{MaxUploadMB: 10}, testLogger())(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCancelMyOrderScopesToCaller(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()
	called := false
	svc := &testOrdersService{
		cancelFn: func(ctx context.Context, oid, uid uuid.UUID) (*models.Order, error) {
			called = true
			if oid != orderID || uid != userID {
				t.Fatalf("unexpected ids %s %s", oid, uid)
			}
			return &models.Order{ID: oid, Status: enums.OrderStatusCancelled}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/cancel", nil)
	req = asUser(req, userID)
	req = addRouteParam(req, "orderId", orderID.String())
	resp := httptest.NewRecorder()
	CancelMyOrder(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if !called {
		t.Fatal("expected service called")
	}
}

type stubReceiptSigner struct {
	signedFn func(objectURL string) (string, error)
}

func (s stubReceiptSigner) SignedReceiptURL(objectURL string) (string, error) {
	return s.signedFn(objectURL)
}

func TestAdminGetOrderSignsReceiptLink(t *testing.T) {
	orderID := uuid.New()
	receiptURL := "https://storage.googleapis.com/vitalstack-media/receipts/r1.png"
	svc := &testOrdersService{
		getOrderFn: func(ctx context.Context, oid uuid.UUID) (*models.Order, error) {
			return &models.Order{ID: oid, ReceiptURL: &receiptURL}, nil
		},
	}
	signer := stubReceiptSigner{
		signedFn: func(objectURL string) (string, error) {
			if objectURL != receiptURL {
				t.Fatalf("unexpected object url %q", objectURL)
			}
			return receiptURL + "?Expires=123&Signature=abc", nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders/"+orderID.String(), nil)
	req = addRouteParam(req, "orderId", orderID.String())
	resp := httptest.NewRecorder()
	AdminGetOrder(svc, signer, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), "Signature=abc") {
		t.Fatalf("expected signed receipt link in response: %s", resp.Body.String())
	}
}

func TestAdminGetOrderWithoutReceiptSkipsSigning(t *testing.T) {
	orderID := uuid.New()
	svc := &testOrdersService{
		getOrderFn: func(ctx context.Context, oid uuid.UUID) (*models.Order, error) {
			return &models.Order{ID: oid}, nil
		},
	}
	signer := stubReceiptSigner{
		signedFn: func(objectURL string) (string, error) {
			t.Fatal("signer must not run without a receipt")
			return "", nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders/"+orderID.String(), nil)
	req = addRouteParam(req, "orderId", orderID.String())
	resp := httptest.NewRecorder()
	AdminGetOrder(svc, signer, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if strings.Contains(resp.Body.String(), "receipt_download_url") {
		t.Fatalf("no receipt link expected: %s", resp.Body.String())
	}
}

func TestAdminUpdateOrderRequiresChange(t *testing.T) {
	orderID := uuid.New()
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/admin/orders/"+orderID.String(), strings.NewReader(`{}`))
	req = addRouteParam(req, "orderId", orderID.String())
	resp := httptest.NewRecorder()
	AdminUpdateOrder(&testOrdersService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAdminListOrdersParsesFilters(t *testing.T) {
	targetUser := uuid.New()
	var got orders.OrderListFilters
	svc := &testOrdersService{
		listOrdersFn: func(ctx context.Context, params pagination.Params, filters orders.OrderListFilters) (*orders.OrderList, error) {
			got = filters
			return &orders.OrderList{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders?user_id="+targetUser.String()+"&status=PENDING&payment_status=PAID", nil)
	resp := httptest.NewRecorder()
	AdminListOrders(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if got.UserID == nil || *got.UserID != targetUser {
		t.Fatalf("unexpected user filter %v", got.UserID)
	}
	if got.Status == nil || *got.Status != enums.OrderStatusPending {
		t.Fatalf("unexpected status filter %v", got.Status)
	}
	if got.PaymentStatus == nil || *got.PaymentStatus != enums.PaymentStatusPaid {
		t.Fatalf("unexpected payment filter %v", got.PaymentStatus)
	}
}
