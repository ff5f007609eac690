package ports

import "context"

// AvatarUpload describes an image already staged in temporary storage.
type AvatarUpload struct {
	TempPath     string
	OriginalName string
}

// AvatarStore moves a processed image into permanent storage and returns the
// public URL it is reachable at. The source file no longer exists on success.
type AvatarStore interface {
	Store(ctx context.Context, name, srcPath string) (string, error)
}

// ImageResizer rewrites the image at path in place at the given dimensions.
type ImageResizer interface {
	Resize(path string, width, height int) error
}
