package gcs

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// SignedURL produces a V2 signed PUT URL for direct browser uploads.
func (c *Client) SignedURL(bucket, object, contentType string, expiry time.Duration) (string, error) {
	return c.signURL("PUT", bucket, object, contentType, expiry)
}

// SignedReadURL produces a V2 signed GET URL for time-limited downloads.
func (c *Client) SignedReadURL(bucket, object string, expiry time.Duration) (string, error) {
	return c.signURL("GET", bucket, object, "", expiry)
}

func (c *Client) signURL(method, bucket, object, contentType string, expiry time.Duration) (string, error) {
	if c == nil || c.serviceAccount == nil || c.serviceAccount.privateKey == nil {
		return "", errors.New("signing requires service account credentials")
	}
	if bucket == "" {
		bucket = c.defaultBucket
	}
	object = strings.TrimLeft(strings.TrimSpace(object), "/")
	if object == "" {
		return "", errors.New("object name is required")
	}
	if expiry <= 0 {
		return "", errors.New("expiry must be positive")
	}

	expires := time.Now().Add(expiry).Unix()
	toSign := fmt.Sprintf("%s\n\n%s\n%d\n/%s/%s", method, contentType, expires, bucket, object)

	hash := sha256.Sum256([]byte(toSign))
	sig, err := rsa.SignPKCS1v15(rand.Reader, c.serviceAccount.privateKey, crypto.SHA256, hash[:])
	if err != nil {
		return "", fmt.Errorf("signing url: %w", err)
	}

	query := url.Values{}
	query.Set("GoogleAccessId", c.serviceAccount.clientEmail)
	query.Set("Expires", fmt.Sprintf("%d", expires))
	query.Set("Signature", base64.StdEncoding.EncodeToString(sig))

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s?%s", bucket, object, query.Encode()), nil
}
