// Package marker defines the annotation domain records exchanged with the
// reconciliation engine: markers, their photos, and record sets.
package marker

import (
	"fmt"
	"time"

	"marker-migrate/pkg/geometry"
)

// Marker is one point annotation on an image.
type Marker struct {
	ID        string    `json:"id"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Label     string    `json:"label,omitempty"`
	PhotoRefs []string  `json:"photo_refs,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Position returns the marker's coordinate as a point.
func (m Marker) Position() geometry.Point2D {
	return geometry.Point2D{X: m.X, Y: m.Y}
}

// Photo is an image attached to exactly one marker.
type Photo struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	MarkerID    string `json:"marker_id"`
	ContentHash string `json:"content_hash,omitempty"`
}

// RecordSet is the paired collection of markers and photos that the
// reconciliation engine consumes and produces.
type RecordSet struct {
	Markers []Marker `json:"markers"`
	Photos  []Photo  `json:"photos"`
}

// Clone returns a deep copy. Engine operations never mutate their inputs;
// they clone and work on the copy.
func (rs RecordSet) Clone() RecordSet {
	out := RecordSet{
		Markers: make([]Marker, len(rs.Markers)),
		Photos:  make([]Photo, len(rs.Photos)),
	}
	copy(out.Photos, rs.Photos)
	for i, m := range rs.Markers {
		c := m
		if m.PhotoRefs != nil {
			c.PhotoRefs = make([]string, len(m.PhotoRefs))
			copy(c.PhotoRefs, m.PhotoRefs)
		}
		out.Markers[i] = c
	}
	return out
}

// Validate checks the referential invariants: unique marker and photo ids,
// every photo ref resolving to a photo whose MarkerID points back, and no
// photo claiming a missing marker.
func (rs RecordSet) Validate() error {
	markerByID := make(map[string]*Marker, len(rs.Markers))
	for i := range rs.Markers {
		m := &rs.Markers[i]
		if m.ID == "" {
			return fmt.Errorf("marker at index %d has empty id", i)
		}
		if _, dup := markerByID[m.ID]; dup {
			return fmt.Errorf("duplicate marker id %q", m.ID)
		}
		markerByID[m.ID] = m
	}

	photoByID := make(map[string]*Photo, len(rs.Photos))
	for i := range rs.Photos {
		p := &rs.Photos[i]
		if p.ID == "" {
			return fmt.Errorf("photo at index %d has empty id", i)
		}
		if _, dup := photoByID[p.ID]; dup {
			return fmt.Errorf("duplicate photo id %q", p.ID)
		}
		if _, ok := markerByID[p.MarkerID]; !ok {
			return fmt.Errorf("photo %q references missing marker %q", p.ID, p.MarkerID)
		}
		photoByID[p.ID] = p
	}

	for _, m := range rs.Markers {
		for _, ref := range m.PhotoRefs {
			p, ok := photoByID[ref]
			if !ok {
				return fmt.Errorf("marker %q references missing photo %q", m.ID, ref)
			}
			if p.MarkerID != m.ID {
				return fmt.Errorf("photo %q belongs to marker %q but is referenced by %q",
					ref, p.MarkerID, m.ID)
			}
		}
	}

	return nil
}

// PhotosFor returns the photos attached to a marker, in record-set order.
func (rs RecordSet) PhotosFor(markerID string) []Photo {
	var out []Photo
	for _, p := range rs.Photos {
		if p.MarkerID == markerID {
			out = append(out, p)
		}
	}
	return out
}

// ApplyTransform returns a copy of the record set with every marker
// coordinate mapped through tr. Photos and all other fields are unchanged;
// the receiver is not modified.
func (rs RecordSet) ApplyTransform(tr geometry.AffineTransform) RecordSet {
	out := rs.Clone()
	for i := range out.Markers {
		p := tr.Apply(out.Markers[i].Position())
		out.Markers[i].X = p.X
		out.Markers[i].Y = p.Y
	}
	return out
}
