// Package storage holds the permanent homes for processed avatars.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"syscall"
)

// LocalStore keeps avatars in a directory served as static files.
type LocalStore struct {
	dir        string
	publicPath string
}

func NewLocalStore(dir, publicPath string) (*LocalStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("storage: local avatar dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create %s: %w", dir, err)
	}
	if publicPath == "" {
		publicPath = "/avatars"
	}
	return &LocalStore{dir: dir, publicPath: "/" + strings.Trim(publicPath, "/")}, nil
}

// Store moves srcPath to dir/name, replacing any earlier avatar of the same
// name, and returns the public path.
func (s *LocalStore) Store(_ context.Context, name, srcPath string) (string, error) {
	if err := validKey(name); err != nil {
		return "", err
	}

	dst := filepath.Join(s.dir, name)
	if err := os.Rename(srcPath, dst); err != nil {
		if !errors.Is(err, syscall.EXDEV) {
			return "", fmt.Errorf("storage: move avatar: %w", err)
		}
		if err := copyThenRemove(srcPath, dst); err != nil {
			return "", err
		}
	}
	return path.Join(s.publicPath, name), nil
}

// copyThenRemove covers temp and avatar dirs living on different devices.
// The copy lands next to dst first so readers never see a partial file.
func copyThenRemove(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("storage: open staged avatar: %w", err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".avatar-*")
	if err != nil {
		return fmt.Errorf("storage: create avatar: %w", err)
	}
	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("storage: copy avatar: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("storage: copy avatar: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("storage: move avatar: %w", err)
	}
	return os.Remove(src)
}

func validKey(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("storage: invalid avatar name %q", name)
	}
	return nil
}
