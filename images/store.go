package images

import (
	"context"
	"fmt"
)

// Store is the product image backend. Upload accepts whatever the
// cloudinary SDK accepts: a multipart file header, an io.Reader, a URL
// or a base64 data URI.
type Store interface {
	Upload(ctx context.Context, file interface{}) (url, publicID string, err error)
	Destroy(ctx context.Context, publicID string) error
}

// NoopStore is used when no image backend is configured. Uploads fail
// loudly; destroys succeed so product deletion still works.
type NoopStore struct{}

func (NoopStore) Upload(ctx context.Context, file interface{}) (string, string, error) {
	return "", "", fmt.Errorf("image store not configured")
}

func (NoopStore) Destroy(ctx context.Context, publicID string) error {
	return nil
}
