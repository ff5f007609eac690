// Package imaging resizes staged avatar images.
package imaging

import (
	"fmt"

	"github.com/disintegration/imaging"
)

// Resizer stretches images to exact dimensions with Lanczos resampling.
type Resizer struct{}

func NewResizer() *Resizer {
	return &Resizer{}
}

// Resize decodes the image at path, whatever its extension, and writes the
// resized image back to path in the format implied by the extension.
func (r *Resizer) Resize(path string, width, height int) error {
	format, err := imaging.FormatFromFilename(path)
	if err != nil {
		return fmt.Errorf("resize %s: %w", path, err)
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("resize: decode: %w", err)
	}

	resized := imaging.Resize(img, width, height, imaging.Lanczos)
	if err := imaging.Save(resized, path, imaging.JPEGQuality(90)); err != nil {
		return fmt.Errorf("resize: encode %s: %w", format, err)
	}
	return nil
}
