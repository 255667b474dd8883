package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"roloApp/internal/shared/apperrors"
)

// CloudinaryStorage implements Uploader against the Cloudinary CDN.
type CloudinaryStorage struct {
	client *cloudinary.Cloudinary
}

func NewCloudinaryStorage(cloudName, apiKey, apiSecret string) (*CloudinaryStorage, error) {
	client, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary init: %w", err)
	}
	return &CloudinaryStorage{client: client}, nil
}

func (s *CloudinaryStorage) Upload(ctx context.Context, localPath, folder string) (*UploadResult, error) {
	resp, err := s.client.Upload.Upload(ctx, localPath, uploader.UploadParams{Folder: folder})
	if err != nil {
		return nil, apperrors.Upstreamf(err, "image upload to folder %q", folder)
	}
	if resp.Error.Message != "" {
		return nil, apperrors.Upstreamf(fmt.Errorf("%s", resp.Error.Message), "image upload to folder %q", folder)
	}
	slog.Info("image uploaded", slog.String("publicId", resp.PublicID), slog.String("folder", folder))
	return &UploadResult{
		URL:      resp.SecureURL,
		PublicID: resp.PublicID,
		Width:    resp.Width,
		Height:   resp.Height,
	}, nil
}

func (s *CloudinaryStorage) Destroy(ctx context.Context, publicID string) error {
	if strings.TrimSpace(publicID) == "" {
		return nil
	}
	resp, err := s.client.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return apperrors.Upstreamf(err, "image destroy %q", publicID)
	}
	if resp.Result != "" && resp.Result != "ok" && resp.Result != "not found" {
		return apperrors.Upstreamf(fmt.Errorf("result %q", resp.Result), "image destroy %q", publicID)
	}
	return nil
}
