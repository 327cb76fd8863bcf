package controllers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/rmoralesf/vitalstack-backend/internal/banners"
	"github.com/rmoralesf/vitalstack-backend/pkg/config"
	"github.com/rmoralesf/vitalstack-backend/pkg/db/models"
)

type testBannersService struct {
	listFn   func(ctx context.Context, activeOnly bool) ([]models.Banner, error)
	createFn func(ctx context.Context, input banners.CreateBannerInput) (*models.Banner, error)
	updateFn func(ctx context.Context, bannerID uuid.UUID, input banners.UpdateBannerInput) (*models.Banner, error)
	deleteFn func(ctx context.Context, bannerID uuid.UUID) error
}

func (s *testBannersService) List(ctx context.Context, activeOnly bool) ([]models.Banner, error) {
	if s.listFn != nil {
		return s.listFn(ctx, activeOnly)
	}
	return nil, nil
}

func (s *testBannersService) Create(ctx context.Context, input banners.CreateBannerInput) (*models.Banner, error) {
	if s.createFn != nil {
		return s.createFn(ctx, input)
	}
	return nil, nil
}

func (s *testBannersService) Update(ctx context.Context, bannerID uuid.UUID, input banners.UpdateBannerInput) (*models.Banner, error) {
	if s.updateFn != nil {
		return s.updateFn(ctx, bannerID, input)
	}
	return nil, nil
}

func (s *testBannersService) Delete(ctx context.Context, bannerID uuid.UUID) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, bannerID)
	}
	return nil
}

func bannerForm(t *testing.T, payload string, withImage bool) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if payload != "" {
		if err := writer.WriteField("payload", payload); err != nil {
			t.Fatalf("write payload: %v", err)
		}
	}
	if withImage {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="image"; filename="hero.png"`)
		header.Set("Content-Type", "image/png")
		part, err := writer.CreatePart(header)
		if err != nil {
			t.Fatalf("create image part: %v", err)
		}
		if _, err := part.Write([]byte("png-bytes")); err != nil {
			t.Fatalf("write image: %v", err)
		}
	}
	writer.Close()
	return &buf, writer.FormDataContentType()
}

func TestListBannersActiveOnly(t *testing.T) {
	var got bool
	svc := &testBannersService{
		listFn: func(ctx context.Context, activeOnly bool) ([]models.Banner, error) {
			got = activeOnly
			return []models.Banner{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/banners", nil)
	resp := httptest.NewRecorder()
	ListBanners(svc, testLogger(), true)(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if !got {
		t.Fatal("storefront listing must request active banners only")
	}
}

func TestCreateBannerMultipart(t *testing.T) {
	var got banners.CreateBannerInput
	svc := &testBannersService{
		createFn: func(ctx context.Context, input banners.CreateBannerInput) (*models.Banner, error) {
			got = input
			return &models.Banner{ID: uuid.New(), Title: input.Title}, nil
		},
	}

	body, contentType := bannerForm(t, `{"title":"Summer Sale","position":1}`, true)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/banners", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	CreateBanner(svc, config.UploadConfig{MaxUploadMB: 10}, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if got.Title != "Summer Sale" || got.Position != 1 {
		t.Fatalf("unexpected input %+v", got)
	}
	if string(got.Image.Data) != "png-bytes" || got.Image.ContentType != "image/png" {
		t.Fatalf("unexpected image %+v", got.Image)
	}
}

func TestCreateBannerMissingImage(t *testing.T) {
	body, contentType := bannerForm(t, `{"title":"Summer Sale","position":1}`, false)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/banners", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	CreateBanner(&testBannersService{}, config.UploadConfig{MaxUploadMB: 10}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCreateBannerMissingPayload(t *testing.T) {
	body, contentType := bannerForm(t, "", true)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/banners", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	CreateBanner(&testBannersService{}, config.UploadConfig{MaxUploadMB: 10}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestUpdateBannerJSONPatch(t *testing.T) {
	bannerID := uuid.New()
	var got banners.UpdateBannerInput
	svc := &testBannersService{
		updateFn: func(ctx context.Context, id uuid.UUID, input banners.UpdateBannerInput) (*models.Banner, error) {
			if id != bannerID {
				t.Fatalf("unexpected banner %s", id)
			}
			got = input
			return &models.Banner{ID: id}, nil
		},
	}

	body := `{"position":3,"is_active":false}`
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/admin/banners/"+bannerID.String(), strings.NewReader(body))
	req = addRouteParam(req, "bannerId", bannerID.String())
	resp := httptest.NewRecorder()
	UpdateBanner(svc, config.UploadConfig{MaxUploadMB: 10}, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if got.Position == nil || *got.Position != 3 {
		t.Fatalf("unexpected position %v", got.Position)
	}
	if got.IsActive == nil || *got.IsActive {
		t.Fatalf("unexpected is_active %v", got.IsActive)
	}
	if got.Image != nil {
		t.Fatal("json patch must not carry an image")
	}
}
