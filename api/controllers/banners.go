package controllers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/rmoralesf/vitalstack-backend/api/responses"
	"github.com/rmoralesf/vitalstack-backend/api/validators"
	"github.com/rmoralesf/vitalstack-backend/internal/banners"
	"github.com/rmoralesf/vitalstack-backend/pkg/config"
	pkgerrors "github.com/rmoralesf/vitalstack-backend/pkg/errors"
	"github.com/rmoralesf/vitalstack-backend/pkg/logger"
)

type createBannerRequest struct {
	Title    string  `json:"title" validate:"required"`
	LinkURL  *string `json:"link_url,omitempty"`
	Position int     `json:"position" validate:"gte=0"`
}

type updateBannerRequest struct {
	Title    *string `json:"title,omitempty"`
	LinkURL  *string `json:"link_url,omitempty"`
	Position *int    `json:"position,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

func bannerImageFromForm(r *http.Request, maxUploadBytes int64) (*banners.ImageUpload, error) {
	file, header, err := r.FormFile("image")
	if err == http.ErrMissingFile {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid image part")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read image")
	}
	return &banners.ImageUpload{
		Data:        data,
		ContentType: header.Header.Get("Content-Type"),
	}, nil
}

// ListBanners returns storefront banners. Admin callers see inactive rows too.
func ListBanners(svc banners.Service, logg *logger.Logger, activeOnly bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "banners service unavailable"))
			return
		}

		list, err := svc.List(ctx, activeOnly)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"banners": list})
	}
}

// CreateBanner creates a banner from a multipart form with a "payload" JSON
// part and a required "image" file part.
func CreateBanner(svc banners.Service, uploadCfg config.UploadConfig, logg *logger.Logger) http.HandlerFunc {
	maxUploadBytes := int64(uploadCfg.MaxUploadMB) * 1024 * 1024
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 * 1024 * 1024
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "banners service unavailable"))
			return
		}

		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form"))
			return
		}

		var payload createBannerRequest
		raw := r.FormValue("payload")
		if raw == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "payload part required"))
			return
		}
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payload json"))
			return
		}
		if err := validators.ValidateStruct(&payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		image, err := bannerImageFromForm(r, maxUploadBytes)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if image == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "image part required"))
			return
		}

		banner, err := svc.Create(ctx, banners.CreateBannerInput{
			Title:    payload.Title,
			LinkURL:  payload.LinkURL,
			Position: payload.Position,
			Image:    *image,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, banner)
	}
}

// UpdateBanner patches banner fields and optionally replaces the image. It
// accepts either a JSON body or a multipart form like CreateBanner.
func UpdateBanner(svc banners.Service, uploadCfg config.UploadConfig, logg *logger.Logger) http.HandlerFunc {
	maxUploadBytes := int64(uploadCfg.MaxUploadMB) * 1024 * 1024
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 * 1024 * 1024
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "banners service unavailable"))
			return
		}

		bannerID, err := urlUUID(r, "bannerId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload updateBannerRequest
		var image *banners.ImageUpload
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form"))
				return
			}
			if raw := r.FormValue("payload"); raw != "" {
				if err := json.Unmarshal([]byte(raw), &payload); err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payload json"))
					return
				}
			}
			image, err = bannerImageFromForm(r, maxUploadBytes)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
		} else if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		banner, err := svc.Update(ctx, bannerID, banners.UpdateBannerInput{
			Title:    payload.Title,
			LinkURL:  payload.LinkURL,
			Position: payload.Position,
			IsActive: payload.IsActive,
			Image:    image,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, banner)
	}
}

// DeleteBanner removes a banner and its stored image.
func DeleteBanner(svc banners.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "banners service unavailable"))
			return
		}

		bannerID, err := urlUUID(r, "bannerId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Delete(ctx, bannerID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}
