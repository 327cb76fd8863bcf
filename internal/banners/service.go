package banners

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmoralesf/vitalstack-backend/pkg/config"
	"github.com/rmoralesf/vitalstack-backend/pkg/db/models"
	pkgerrors "github.com/rmoralesf/vitalstack-backend/pkg/errors"
	"github.com/rmoralesf/vitalstack-backend/pkg/logger"
)

var bannerExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

// ObjectStorage is the slice of the GCS client banners need.
type ObjectStorage interface {
	Upload(ctx context.Context, objectName, contentType string, payload []byte) (string, error)
	Delete(ctx context.Context, objectName string) error
	DefaultBucket() string
}

// ImageUpload carries the decoded banner artwork.
type ImageUpload struct {
	Data        []byte
	ContentType string
}

// CreateBannerInput carries a new storefront banner.
type CreateBannerInput struct {
	Title    string
	LinkURL  *string
	Position int
	Image    ImageUpload
}

// UpdateBannerInput patches only the supplied fields.
type UpdateBannerInput struct {
	Title    *string
	LinkURL  *string
	Position *int
	IsActive *bool
	Image    *ImageUpload
}

// Service defines the banner operations.
type Service interface {
	List(ctx context.Context, activeOnly bool) ([]models.Banner, error)
	Create(ctx context.Context, input CreateBannerInput) (*models.Banner, error)
	Update(ctx context.Context, bannerID uuid.UUID, input UpdateBannerInput) (*models.Banner, error)
	Delete(ctx context.Context, bannerID uuid.UUID) error
}

type service struct {
	repo     Repository
	storage  ObjectStorage
	folder   string
	maxBytes int
	logg     *logger.Logger
}

// NewService builds a banner service with the required dependencies.
func NewService(repo Repository, storage ObjectStorage, gcsCfg config.GCSConfig, uploadCfg config.UploadConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("banner repository required")
	}
	if storage == nil {
		return nil, fmt.Errorf("object storage required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	maxMB := uploadCfg.MaxUploadMB
	if maxMB <= 0 {
		maxMB = 10
	}
	folder := strings.Trim(gcsCfg.BannerFolder, "/")
	if folder == "" {
		folder = "banners"
	}
	return &service{
		repo:     repo,
		storage:  storage,
		folder:   folder,
		maxBytes: maxMB * 1024 * 1024,
		logg:     logg,
	}, nil
}

func (s *service) List(ctx context.Context, activeOnly bool) ([]models.Banner, error) {
	banners, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list banners")
	}
	return banners, nil
}

func (s *service) Create(ctx context.Context, input CreateBannerInput) (*models.Banner, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "banner title required")
	}
	if input.Position < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "position cannot be negative")
	}
	if input.LinkURL != nil {
		if _, err := url.ParseRequestURI(*input.LinkURL); err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid link url")
		}
	}

	imageURL, err := s.uploadImage(ctx, input.Image)
	if err != nil {
		return nil, err
	}

	banner, err := s.repo.Create(ctx, &models.Banner{
		Title:    title,
		ImageURL: imageURL,
		LinkURL:  input.LinkURL,
		Position: input.Position,
		IsActive: true,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create banner")
	}
	return banner, nil
}

func (s *service) Update(ctx context.Context, bannerID uuid.UUID, input UpdateBannerInput) (*models.Banner, error) {
	banner, err := s.load(ctx, bannerID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "banner title cannot be empty")
		}
		updates["title"] = title
	}
	if input.LinkURL != nil {
		if *input.LinkURL == "" {
			updates["link_url"] = nil
		} else {
			if _, err := url.ParseRequestURI(*input.LinkURL); err != nil {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid link url")
			}
			updates["link_url"] = *input.LinkURL
		}
	}
	if input.Position != nil {
		if *input.Position < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "position cannot be negative")
		}
		updates["position"] = *input.Position
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}

	var previousImage string
	if input.Image != nil {
		imageURL, err := s.uploadImage(ctx, *input.Image)
		if err != nil {
			return nil, err
		}
		updates["image_url"] = imageURL
		previousImage = banner.ImageURL
	}

	if len(updates) > 0 {
		if err := s.repo.Update(ctx, banner.ID, updates); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update banner")
		}
	}
	if previousImage != "" {
		s.deleteObject(ctx, previousImage)
	}
	return s.load(ctx, bannerID)
}

func (s *service) Delete(ctx context.Context, bannerID uuid.UUID) error {
	banner, err := s.load(ctx, bannerID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, banner.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete banner")
	}
	s.deleteObject(ctx, banner.ImageURL)
	return nil
}

func (s *service) load(ctx context.Context, bannerID uuid.UUID) (*models.Banner, error) {
	if bannerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "banner id required")
	}
	banner, err := s.repo.FindByID(ctx, bannerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "banner not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load banner")
	}
	return banner, nil
}

func (s *service) uploadImage(ctx context.Context, image ImageUpload) (string, error) {
	if len(image.Data) == 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "banner image required")
	}
	if len(image.Data) > s.maxBytes {
		return "", pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("banner image exceeds the %dMB upload limit", s.maxBytes/(1024*1024)))
	}
	ct := strings.ToLower(strings.TrimSpace(image.ContentType))
	if idx := strings.Index(ct, ";"); idx >= 0 {
		ct = strings.TrimSpace(ct[:idx])
	}
	ext, ok := bannerExtensions[ct]
	if !ok {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "unsupported banner image type")
	}

	objectName := path.Join(s.folder, uuid.NewString()+ext)
	url, err := s.storage.Upload(ctx, objectName, ct, image.Data)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload banner image")
	}
	return url, nil
}

// deleteObject is best effort: a dangling object is preferable to failing
// the banner mutation after the row already changed.
func (s *service) deleteObject(ctx context.Context, objectURL string) {
	marker := "/" + s.storage.DefaultBucket() + "/"
	idx := strings.Index(objectURL, marker)
	if idx < 0 {
		return
	}
	object := objectURL[idx+len(marker):]
	if err := s.storage.Delete(ctx, object); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "object", object), "banner image cleanup failed")
	}
}
