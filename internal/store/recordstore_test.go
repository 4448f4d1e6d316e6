package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marker-migrate/internal/marker"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, db.Close()) })
	return db
}

func sampleSet() marker.RecordSet {
	now := time.Date(2026, 5, 2, 8, 0, 0, 0, time.UTC)
	return marker.RecordSet{
		Markers: []marker.Marker{
			{ID: "m1", X: 10, Y: 20, Label: "well", PhotoRefs: []string{"p1"}, CreatedAt: now, UpdatedAt: now},
			{ID: "m2", X: 30, Y: 40, CreatedAt: now, UpdatedAt: now},
		},
		Photos: []marker.Photo{
			{ID: "p1", Filename: "well.jpg", MarkerID: "m1", ContentHash: "deadbeef"},
		},
	}
}

func TestMigrationsApply(t *testing.T) {
	db := openTestDB(t)

	for _, table := range []string{"record_sets", "markers", "photos"} {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		require.NoError(t, err)
		assert.Equal(t, table, name)
	}
}

func TestOpenEnablesPragmas(t *testing.T) {
	db := openTestDB(t)

	var journalMode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	assert.Equal(t, "wal", strings.ToLower(journalMode))

	var foreignKeys int
	require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&foreignKeys))
	assert.Equal(t, 1, foreignKeys)
}

func TestSaveAndLoadSet(t *testing.T) {
	s := NewRecordStore(openTestDB(t))
	ctx := context.Background()
	rs := sampleSet()

	require.NoError(t, s.SaveSet(ctx, "site-a", rs))

	loaded, err := s.LoadSet(ctx, "site-a")
	require.NoError(t, err)
	assert.Equal(t, rs.Markers, loaded.Markers)
	assert.Equal(t, rs.Photos, loaded.Photos)
	assert.NoError(t, loaded.Validate())
}

func TestSaveSetReplaces(t *testing.T) {
	s := NewRecordStore(openTestDB(t))
	ctx := context.Background()

	require.NoError(t, s.SaveSet(ctx, "site-a", sampleSet()))

	smaller := marker.RecordSet{
		Markers: []marker.Marker{{ID: "only", X: 1, Y: 2,
			CreatedAt: time.Unix(0, 0).UTC(), UpdatedAt: time.Unix(0, 0).UTC()}},
	}
	require.NoError(t, s.SaveSet(ctx, "site-a", smaller))

	loaded, err := s.LoadSet(ctx, "site-a")
	require.NoError(t, err)
	require.Len(t, loaded.Markers, 1)
	assert.Equal(t, "only", loaded.Markers[0].ID)
	assert.Empty(t, loaded.Photos)
}

func TestSaveSetRejectsInvalid(t *testing.T) {
	s := NewRecordStore(openTestDB(t))
	bad := marker.RecordSet{
		Markers: []marker.Marker{{ID: "m1", PhotoRefs: []string{"missing"}}},
	}
	assert.Error(t, s.SaveSet(context.Background(), "bad", bad))
}

func TestLoadSetNotFound(t *testing.T) {
	s := NewRecordStore(openTestDB(t))
	_, err := s.LoadSet(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrSetNotFound)
}

func TestListSets(t *testing.T) {
	s := NewRecordStore(openTestDB(t))
	ctx := context.Background()

	names, err := s.ListSets(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)

	require.NoError(t, s.SaveSet(ctx, "beta", sampleSet()))
	require.NoError(t, s.SaveSet(ctx, "alpha", sampleSet()))

	names, err = s.ListSets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, names)
}

func TestDeleteSet(t *testing.T) {
	s := NewRecordStore(openTestDB(t))
	ctx := context.Background()

	require.NoError(t, s.SaveSet(ctx, "gone", sampleSet()))
	require.NoError(t, s.DeleteSet(ctx, "gone"))

	_, err := s.LoadSet(ctx, "gone")
	assert.ErrorIs(t, err, ErrSetNotFound)

	assert.ErrorIs(t, s.DeleteSet(ctx, "gone"), ErrSetNotFound)
}
