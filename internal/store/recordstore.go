package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"marker-migrate/internal/marker"
)

// ErrSetNotFound indicates no record set is stored under the given name.
var ErrSetNotFound = errors.New("record set not found")

// RecordStore reads and writes named record sets.
type RecordStore struct {
	db *sql.DB
}

// NewRecordStore wraps an open database.
func NewRecordStore(db *sql.DB) *RecordStore {
	return &RecordStore{db: db}
}

// SaveSet stores rs under name, replacing any previous contents,
// transactionally. The set is validated before anything is written.
func (s *RecordStore) SaveSet(ctx context.Context, name string, rs marker.RecordSet) error {
	if name == "" {
		return fmt.Errorf("record set name must not be empty")
	}
	if err := rs.Validate(); err != nil {
		return fmt.Errorf("record set %q: %w", name, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.Error("rollback failed", "error", err)
		}
	}()

	// Explicit child deletes so a replace works even without the
	// foreign-key pragma.
	for _, stmt := range []string{
		`DELETE FROM photos WHERE set_name = ?`,
		`DELETE FROM markers WHERE set_name = ?`,
		`DELETE FROM record_sets WHERE name = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, name); err != nil {
			return fmt.Errorf("clear previous set: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO record_sets (name, saved_at) VALUES (?, ?)`,
		name, time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("insert set: %w", err)
	}

	for i, m := range rs.Markers {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO markers (set_name, id, x, y, label, created_at, updated_at, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, name, m.ID, m.X, m.Y, m.Label,
			m.CreatedAt.UTC().Format(time.RFC3339Nano),
			m.UpdatedAt.UTC().Format(time.RFC3339Nano), i); err != nil {
			return fmt.Errorf("insert marker %q: %w", m.ID, err)
		}
	}
	for i, p := range rs.Photos {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO photos (set_name, id, filename, marker_id, content_hash, position)
			VALUES (?, ?, ?, ?, ?, ?)
		`, name, p.ID, p.Filename, p.MarkerID, p.ContentHash, i); err != nil {
			return fmt.Errorf("insert photo %q: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// LoadSet returns the record set stored under name, with photo references
// rebuilt from photo ownership.
func (s *RecordStore) LoadSet(ctx context.Context, name string) (marker.RecordSet, error) {
	var exists int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM record_sets WHERE name = ?`, name).Scan(&exists); err != nil {
		return marker.RecordSet{}, fmt.Errorf("look up set: %w", err)
	}
	if exists == 0 {
		return marker.RecordSet{}, fmt.Errorf("%w: %q", ErrSetNotFound, name)
	}

	var rs marker.RecordSet

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, x, y, label, created_at, updated_at FROM markers
		WHERE set_name = ? ORDER BY position
	`, name)
	if err != nil {
		return marker.RecordSet{}, fmt.Errorf("query markers: %w", err)
	}
	defer closeRows(rows)

	for rows.Next() {
		var m marker.Marker
		var created, updated string
		if err := rows.Scan(&m.ID, &m.X, &m.Y, &m.Label, &created, &updated); err != nil {
			return marker.RecordSet{}, fmt.Errorf("scan marker: %w", err)
		}
		if m.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return marker.RecordSet{}, fmt.Errorf("marker %q created_at: %w", m.ID, err)
		}
		if m.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
			return marker.RecordSet{}, fmt.Errorf("marker %q updated_at: %w", m.ID, err)
		}
		rs.Markers = append(rs.Markers, m)
	}
	if err := rows.Err(); err != nil {
		return marker.RecordSet{}, fmt.Errorf("iterate markers: %w", err)
	}

	prows, err := s.db.QueryContext(ctx, `
		SELECT id, filename, marker_id, content_hash FROM photos
		WHERE set_name = ? ORDER BY position
	`, name)
	if err != nil {
		return marker.RecordSet{}, fmt.Errorf("query photos: %w", err)
	}
	defer closeRows(prows)

	refs := make(map[string][]string)
	for prows.Next() {
		var p marker.Photo
		if err := prows.Scan(&p.ID, &p.Filename, &p.MarkerID, &p.ContentHash); err != nil {
			return marker.RecordSet{}, fmt.Errorf("scan photo: %w", err)
		}
		rs.Photos = append(rs.Photos, p)
		refs[p.MarkerID] = append(refs[p.MarkerID], p.ID)
	}
	if err := prows.Err(); err != nil {
		return marker.RecordSet{}, fmt.Errorf("iterate photos: %w", err)
	}

	for i := range rs.Markers {
		rs.Markers[i].PhotoRefs = refs[rs.Markers[i].ID]
	}

	return rs, nil
}

// ListSets returns the stored set names in alphabetical order.
func (s *RecordStore) ListSets(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM record_sets ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list sets: %w", err)
	}
	defer closeRows(rows)

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan set name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sets: %w", err)
	}
	return names, nil
}

// DeleteSet removes a stored set and its markers and photos.
func (s *RecordStore) DeleteSet(ctx context.Context, name string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.Error("rollback failed", "error", err)
		}
	}()

	for _, stmt := range []string{
		`DELETE FROM photos WHERE set_name = ?`,
		`DELETE FROM markers WHERE set_name = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, name); err != nil {
			return fmt.Errorf("delete set contents: %w", err)
		}
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM record_sets WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete set: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", ErrSetNotFound, name)
	}
	return tx.Commit()
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		slog.Error("failed to close rows", "error", err)
	}
}
