// Package reconcile merges a transformed source record set into a target
// record set, classifying each incoming marker as new or as a duplicate of
// an existing one.
package reconcile

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Strategy selects the duplicate-detection rule.
type Strategy string

const (
	// StrategyNone treats every source marker as new.
	StrategyNone Strategy = "none"
	// StrategyLabel matches on case-insensitive label equality.
	StrategyLabel Strategy = "label"
	// StrategyPhotos matches on shared photo filenames.
	StrategyPhotos Strategy = "photos"
	// StrategyCoordinates matches on Euclidean proximity.
	StrategyCoordinates Strategy = "coordinates"
	// StrategySmart cascades photos, then label, then coordinates; the
	// first rule producing any candidate wins.
	StrategySmart Strategy = "smart"
)

// PhotoConflictPolicy decides what happens to a source photo whose filename
// already exists on the matched target marker.
type PhotoConflictPolicy string

const (
	// PhotoConflictSkip drops the colliding source photo.
	PhotoConflictSkip PhotoConflictPolicy = "skip"
	// PhotoConflictKeepBoth keeps the source photo under a fresh id.
	PhotoConflictKeepBoth PhotoConflictPolicy = "keep-both"
)

// ErrInvalidOptions indicates merge options that cannot be executed.
var ErrInvalidOptions = errors.New("invalid merge options")

// Options configures one merge call.
type Options struct {
	// Strategy is the duplicate-detection rule. Default: coordinates.
	Strategy Strategy

	// CoordinateTolerance is the maximum marker distance, in pixels, for
	// the coordinates rule. Default 5. Callers migrating markers through a
	// fitted transform should pass the validator's recommended tolerance
	// (rmse x 2.5) instead of the default.
	CoordinateTolerance float64

	// PhotoMatchThreshold is the minimum shared-filename fraction for the
	// photos rule, in (0, 1]. Default 0.7.
	PhotoMatchThreshold float64

	// PhotoConflicts selects handling of filename collisions on matched
	// markers. Default: skip.
	PhotoConflicts PhotoConflictPolicy

	// PreserveTimestamps keeps original UpdatedAt values instead of
	// stamping merge time on touched markers.
	PreserveTimestamps bool

	// NewID mints ids for newly created markers and photos. Defaults to
	// uuid.NewString. Durable uniqueness across sessions is the caller's
	// concern.
	NewID func() string

	// Now supplies the merge timestamp. Defaults to time.Now.
	Now func() time.Time
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		Strategy:            StrategyCoordinates,
		CoordinateTolerance: 5,
		PhotoMatchThreshold: 0.7,
		PhotoConflicts:      PhotoConflictSkip,
		NewID:               uuid.NewString,
		Now:                 time.Now,
	}
}

// Validate reports whether the options are executable.
func (o Options) Validate() error {
	switch o.Strategy {
	case StrategyNone, StrategyLabel, StrategyPhotos, StrategyCoordinates, StrategySmart:
	default:
		return fmt.Errorf("%w: unknown strategy %q", ErrInvalidOptions, o.Strategy)
	}

	switch o.PhotoConflicts {
	case PhotoConflictSkip, PhotoConflictKeepBoth:
	default:
		return fmt.Errorf("%w: unknown photo conflict policy %q", ErrInvalidOptions, o.PhotoConflicts)
	}

	needsTolerance := o.Strategy == StrategyCoordinates || o.Strategy == StrategySmart
	if needsTolerance && o.CoordinateTolerance <= 0 {
		return fmt.Errorf("%w: coordinate tolerance must be positive, got %g",
			ErrInvalidOptions, o.CoordinateTolerance)
	}

	needsThreshold := o.Strategy == StrategyPhotos || o.Strategy == StrategySmart
	if needsThreshold && (o.PhotoMatchThreshold <= 0 || o.PhotoMatchThreshold > 1) {
		return fmt.Errorf("%w: photo match threshold must be in (0, 1], got %g",
			ErrInvalidOptions, o.PhotoMatchThreshold)
	}

	return nil
}

// withDefaults fills the injectable callbacks so merge code can call them
// unconditionally.
func (o Options) withDefaults() Options {
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}
