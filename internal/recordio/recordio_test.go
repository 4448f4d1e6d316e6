package recordio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marker-migrate/internal/marker"
	"marker-migrate/internal/transform"
	"marker-migrate/pkg/geometry"
)

func TestSetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "set.json")
	rs := marker.RecordSet{
		Markers: []marker.Marker{
			{ID: "m1", X: 12.5, Y: 40, Label: "gate", PhotoRefs: []string{"p1"}},
		},
		Photos: []marker.Photo{
			{ID: "p1", Filename: "gate.jpg", MarkerID: "m1", ContentHash: "abc123"},
		},
	}

	require.NoError(t, SaveSet(path, "site-7", rs))

	loaded, err := LoadSet(path)
	require.NoError(t, err)
	assert.Equal(t, rs.Markers, loaded.Markers)
	assert.Equal(t, rs.Photos, loaded.Photos)
}

func TestLoadSetRejectsBrokenReferences(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	data := `{"version":1,"markers":[{"id":"m1","x":0,"y":0,"photo_refs":["ghost"],"created_at":"2026-01-01T00:00:00Z","updated_at":"2026-01-01T00:00:00Z"}],"photos":[]}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	_, err := LoadSet(path)
	assert.Error(t, err)
}

func TestLoadSetMissingFile(t *testing.T) {
	_, err := LoadSet(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestPairsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pairs.json")
	pairs := []transform.Pair{
		{Source: geometry.Point2D{X: 0, Y: 0}, Target: geometry.Point2D{X: 5, Y: 5}},
		{Source: geometry.Point2D{X: 10, Y: 0}, Target: geometry.Point2D{X: 15, Y: 5}},
		{Source: geometry.Point2D{X: 0, Y: 10}, Target: geometry.Point2D{X: 5, Y: 15}},
	}

	require.NoError(t, SavePairs(path, pairs))

	loaded, err := LoadPairs(path)
	require.NoError(t, err)
	assert.Equal(t, pairs, loaded)
}

func TestTransformRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transform.json")
	tr := geometry.AffineTransform{A: 1.02, B: -0.01, TX: 42.5, C: 0.01, D: 0.98, TY: -17}

	require.NoError(t, SaveTransform(path, tr))

	loaded, err := LoadTransform(path)
	require.NoError(t, err)
	assert.Equal(t, tr, loaded)
}

func TestLoadPairsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0644))

	_, err := LoadPairs(path)
	assert.Error(t, err)
}
