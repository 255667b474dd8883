package storage

import "context"

// UploadResult describes one stored image.
type UploadResult struct {
	URL      string
	PublicID string
	Width    int
	Height   int
}

// Uploader is the narrow contract against the object-storage collaborator.
// Destroy failures are logged by callers and never block the surrounding
// mutation.
type Uploader interface {
	Upload(ctx context.Context, localPath, folder string) (*UploadResult, error)
	Destroy(ctx context.Context, publicID string) error
}
