// Package upload stages multipart files on local disk before processing and
// sweeps staged files that were never picked up.
package upload

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/juniorseniors/users-api/internal/core/domain"
	"github.com/juniorseniors/users-api/internal/core/ports"
)

// Stager copies uploaded files into a temp directory under collision-free names.
type Stager struct {
	dir      string
	maxBytes int64
}

func NewStager(dir string, maxBytes int64) (*Stager, error) {
	if dir == "" {
		return nil, fmt.Errorf("upload: temp dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("upload: create %s: %w", dir, err)
	}
	return &Stager{dir: dir, maxBytes: maxBytes}, nil
}

func (s *Stager) Dir() string {
	return s.dir
}

// Stage writes fh to the temp directory. The staged name keeps the original
// extension so the image decoder and encoder agree on the format.
func (s *Stager) Stage(fh *multipart.FileHeader) (ports.AvatarUpload, error) {
	if s.maxBytes > 0 && fh.Size > s.maxBytes {
		return ports.AvatarUpload{}, domain.NewValidationError(
			fmt.Sprintf("avatar must not exceed %d bytes", s.maxBytes))
	}

	src, err := fh.Open()
	if err != nil {
		return ports.AvatarUpload{}, fmt.Errorf("upload: open %s: %w", fh.Filename, err)
	}
	defer src.Close()

	original := filepath.Base(fh.Filename)
	staged := filepath.Join(s.dir, uuid.NewString()+strings.ToLower(filepath.Ext(original)))

	dst, err := os.OpenFile(staged, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return ports.AvatarUpload{}, fmt.Errorf("upload: create staged file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(staged)
		return ports.AvatarUpload{}, fmt.Errorf("upload: write staged file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(staged)
		return ports.AvatarUpload{}, fmt.Errorf("upload: write staged file: %w", err)
	}

	return ports.AvatarUpload{TempPath: staged, OriginalName: original}, nil
}
