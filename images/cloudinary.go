package images

import (
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go"
	"github.com/cloudinary/cloudinary-go/api/uploader"
	"github.com/google/uuid"
)

const uploadFolder = "commerce/products"

type CloudinaryStore struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryStore builds a store from a CLOUDINARY_URL-style URL.
func NewCloudinaryStore(cloudinaryURL string) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("cloudinary init error: %w", err)
	}
	return &CloudinaryStore{cld: cld}, nil
}

func (s *CloudinaryStore) Upload(ctx context.Context, file interface{}) (string, string, error) {
	publicID := fmt.Sprintf("product_img_%s", uuid.NewString())
	resp, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID: publicID,
		Folder:   uploadFolder,
	})
	if err != nil {
		return "", "", fmt.Errorf("cloudinary upload failed: %w", err)
	}
	return resp.SecureURL, resp.PublicID, nil
}

func (s *CloudinaryStore) Destroy(ctx context.Context, publicID string) error {
	if _, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
		return fmt.Errorf("cloudinary destroy failed: %w", err)
	}
	return nil
}
