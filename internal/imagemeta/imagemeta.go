// Package imagemeta resolves image files to their pixel dimensions and
// converts record sets between normalized (0-1) and pixel coordinates.
// Only image headers are decoded; pixel data is never loaded.
package imagemeta

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"marker-migrate/internal/marker"
)

// Dimensions returns the pixel width and height of the image at path.
func Dimensions(path string) (width, height int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("decode %s: %w", path, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, fmt.Errorf("%s: invalid %s dimensions %dx%d", path, format, cfg.Width, cfg.Height)
	}
	return cfg.Width, cfg.Height, nil
}

// Denormalize returns a copy of rs with marker coordinates scaled from the
// 0-1 normalized space to pixels for an image of the given size.
func Denormalize(rs marker.RecordSet, width, height int) marker.RecordSet {
	out := rs.Clone()
	for i := range out.Markers {
		out.Markers[i].X *= float64(width)
		out.Markers[i].Y *= float64(height)
	}
	return out
}

// Normalize returns a copy of rs with marker pixel coordinates scaled into
// the 0-1 space for an image of the given size.
func Normalize(rs marker.RecordSet, width, height int) (marker.RecordSet, error) {
	if width <= 0 || height <= 0 {
		return marker.RecordSet{}, fmt.Errorf("invalid image size %dx%d", width, height)
	}
	out := rs.Clone()
	for i := range out.Markers {
		out.Markers[i].X /= float64(width)
		out.Markers[i].Y /= float64(height)
	}
	return out, nil
}
