// Package recordio reads and writes the JSON interchange files: marker
// record sets and correspondence-pair files. The engines themselves never
// touch the filesystem; this package is the boundary.
package recordio

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"marker-migrate/internal/marker"
	"marker-migrate/internal/transform"
	"marker-migrate/pkg/geometry"
)

// setVersion is the interchange envelope version this build writes.
const setVersion = 1

// SetFile is the on-disk envelope for a record set.
type SetFile struct {
	Version int             `json:"version"`
	Name    string          `json:"name,omitempty"`
	Saved   time.Time       `json:"saved"`
	Markers []marker.Marker `json:"markers"`
	Photos  []marker.Photo  `json:"photos"`
}

// PairsFile is the on-disk envelope for a correspondence-pair session.
type PairsFile struct {
	Version int              `json:"version"`
	Saved   time.Time        `json:"saved"`
	Pairs   []transform.Pair `json:"pairs"`
}

// LoadSet reads and validates a record set from path.
func LoadSet(path string) (marker.RecordSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return marker.RecordSet{}, err
	}

	var file SetFile
	if err := json.Unmarshal(data, &file); err != nil {
		return marker.RecordSet{}, fmt.Errorf("parse %s: %w", path, err)
	}

	rs := marker.RecordSet{Markers: file.Markers, Photos: file.Photos}
	if err := rs.Validate(); err != nil {
		return marker.RecordSet{}, fmt.Errorf("%s: %w", path, err)
	}
	return rs, nil
}

// SaveSet writes a record set to path.
func SaveSet(path, name string, rs marker.RecordSet) error {
	file := SetFile{
		Version: setVersion,
		Name:    name,
		Saved:   time.Now(),
		Markers: rs.Markers,
		Photos:  rs.Photos,
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// TransformFile is the on-disk envelope for a fitted transform matrix.
type TransformFile struct {
	Version int                      `json:"version"`
	Saved   time.Time                `json:"saved"`
	Matrix  geometry.AffineTransform `json:"matrix"`
}

// LoadTransform reads a fitted transform from path.
func LoadTransform(path string) (geometry.AffineTransform, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return geometry.AffineTransform{}, err
	}

	var file TransformFile
	if err := json.Unmarshal(data, &file); err != nil {
		return geometry.AffineTransform{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return file.Matrix, nil
}

// SaveTransform writes a fitted transform to path.
func SaveTransform(path string, tr geometry.AffineTransform) error {
	file := TransformFile{
		Version: setVersion,
		Saved:   time.Now(),
		Matrix:  tr,
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadPairs reads a correspondence-pair file from path.
func LoadPairs(path string) ([]transform.Pair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file PairsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return file.Pairs, nil
}

// SavePairs writes a correspondence-pair file to path.
func SavePairs(path string, pairs []transform.Pair) error {
	file := PairsFile{
		Version: setVersion,
		Saved:   time.Now(),
		Pairs:   pairs,
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
