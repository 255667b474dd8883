package uploads

import (
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"roloApp/internal/shared/apperrors"
)

// Stager writes incoming multipart images into a local staging directory so
// they can be handed to the object-storage collaborator as file paths. Staged
// files are removed after the upload attempt, success or not.
type Stager struct {
	dir      string
	maxBytes int64
}

func NewStager(dir string, maxBytes int64) (*Stager, error) {
	if strings.TrimSpace(dir) == "" {
		dir = "uploads"
	}
	if maxBytes <= 0 {
		maxBytes = 5 << 20
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	return &Stager{dir: dir, maxBytes: maxBytes}, nil
}

// Stage validates the file header and copies the upload into the staging
// directory under a timestamped name. Only image/* content is accepted.
func (s *Stager) Stage(fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", apperrors.Validationf("missing file")
	}
	if fh.Size > s.maxBytes {
		return "", apperrors.Validationf("file %q exceeds %d bytes", fh.Filename, s.maxBytes)
	}
	contentType := fh.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return "", apperrors.Validationf("file %q is not an image", fh.Filename)
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	name := fmt.Sprintf("%d-%s", time.Now().UnixNano(), filepath.Base(fh.Filename))
	path := filepath.Join(s.dir, name)
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create staged file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, io.LimitReader(src, s.maxBytes+1)); err != nil {
		s.Remove(path)
		return "", fmt.Errorf("write staged file: %w", err)
	}
	return path, nil
}

// Remove deletes a staged file, logging instead of failing when it is already gone.
func (s *Stager) Remove(path string) {
	if strings.TrimSpace(path) == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.Warn("staged file cleanup failed", slog.String("path", path), slog.Any("error", err))
	}
}
