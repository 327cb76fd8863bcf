package receipts

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rmoralesf/vitalstack-backend/pkg/config"
	pkgerrors "github.com/rmoralesf/vitalstack-backend/pkg/errors"
)

// allowed receipt content types, keyed to their object name extension
var receiptExtensions = map[string]string{
	"image/png":       ".png",
	"image/jpeg":      ".jpg",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

// ObjectStorage is the slice of the GCS client receipts need.
type ObjectStorage interface {
	Upload(ctx context.Context, objectName, contentType string, payload []byte) (string, error)
	SignedReadURL(bucket, object string, expiry time.Duration) (string, error)
	DefaultBucket() string
}

// Store uploads payment receipts under the configured folder prefix.
type Store struct {
	storage  ObjectStorage
	folder   string
	maxBytes int
	expiry   time.Duration
}

// NewStore builds a receipt store from the GCS and upload configuration.
func NewStore(storage ObjectStorage, gcsCfg config.GCSConfig, uploadCfg config.UploadConfig) (*Store, error) {
	if storage == nil {
		return nil, fmt.Errorf("object storage required")
	}
	maxMB := uploadCfg.MaxUploadMB
	if maxMB <= 0 {
		maxMB = 10
	}
	folder := strings.Trim(gcsCfg.ReceiptFolder, "/")
	if folder == "" {
		folder = "receipts"
	}
	return &Store{
		storage:  storage,
		folder:   folder,
		maxBytes: maxMB * 1024 * 1024,
		expiry:   gcsCfg.DownloadURLExpiry,
	}, nil
}

// UploadReceipt validates and stores the payload, returning the object URL.
func (s *Store) UploadReceipt(ctx context.Context, data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "receipt payload is empty")
	}
	if len(data) > s.maxBytes {
		return "", pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("receipt exceeds the %dMB upload limit", s.maxBytes/(1024*1024)))
	}
	ext, ok := receiptExtensions[normalizeContentType(contentType)]
	if !ok {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "unsupported receipt content type")
	}

	objectName := path.Join(s.folder, uuid.NewString()+ext)
	url, err := s.storage.Upload(ctx, objectName, normalizeContentType(contentType), data)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload receipt")
	}
	return url, nil
}

// SignedReceiptURL returns a short-lived download link for an admin viewing
// the receipt of an online order.
func (s *Store) SignedReceiptURL(objectURL string) (string, error) {
	object, err := s.objectName(objectURL)
	if err != nil {
		return "", err
	}
	url, err := s.storage.SignedReadURL(s.storage.DefaultBucket(), object, s.expiry)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign receipt url")
	}
	return url, nil
}

func (s *Store) objectName(objectURL string) (string, error) {
	marker := "/" + s.storage.DefaultBucket() + "/"
	idx := strings.Index(objectURL, marker)
	if idx < 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "receipt url does not belong to the configured bucket")
	}
	object := objectURL[idx+len(marker):]
	if object == "" || !strings.HasPrefix(object, s.folder+"/") {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "malformed receipt url")
	}
	return object, nil
}

func normalizeContentType(contentType string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if idx := strings.Index(ct, ";"); idx >= 0 {
		ct = strings.TrimSpace(ct[:idx])
	}
	return ct
}
