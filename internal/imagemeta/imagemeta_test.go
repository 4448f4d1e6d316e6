package imagemeta

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marker-migrate/internal/marker"
)

func writeTestPNG(t *testing.T, w, h int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))))
	require.NoError(t, f.Close())
	return path
}

func TestDimensions(t *testing.T) {
	path := writeTestPNG(t, 640, 480)
	w, h, err := Dimensions(path)
	require.NoError(t, err)
	assert.Equal(t, 640, w)
	assert.Equal(t, 480, h)
}

func TestDimensionsMissingFile(t *testing.T) {
	_, _, err := Dimensions(filepath.Join(t.TempDir(), "nope.png"))
	assert.Error(t, err)
}

func TestDimensionsNotAnImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.png")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0644))
	_, _, err := Dimensions(path)
	assert.Error(t, err)
}

func TestNormalizeDenormalizeRoundTrip(t *testing.T) {
	rs := marker.RecordSet{
		Markers: []marker.Marker{{ID: "m1", X: 320, Y: 120}},
	}

	norm, err := Normalize(rs, 640, 480)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, norm.Markers[0].X, 1e-9)
	assert.InDelta(t, 0.25, norm.Markers[0].Y, 1e-9)

	back := Denormalize(norm, 640, 480)
	assert.InDelta(t, 320, back.Markers[0].X, 1e-9)
	assert.InDelta(t, 120, back.Markers[0].Y, 1e-9)

	// Inputs untouched.
	assert.Equal(t, 320.0, rs.Markers[0].X)
}

func TestNormalizeInvalidSize(t *testing.T) {
	_, err := Normalize(marker.RecordSet{}, 0, 100)
	assert.Error(t, err)
}
