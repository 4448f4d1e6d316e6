package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, StrategyCoordinates, opts.Strategy)
	assert.Equal(t, 5.0, opts.CoordinateTolerance)
	assert.Equal(t, 0.7, opts.PhotoMatchThreshold)
	assert.Equal(t, PhotoConflictSkip, opts.PhotoConflicts)
	assert.False(t, opts.PreserveTimestamps)
	assert.NotNil(t, opts.NewID)
	assert.NotNil(t, opts.Now)
	assert.NoError(t, opts.Validate())
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr bool
	}{
		{"defaults", func(o *Options) {}, false},
		{"unknown strategy", func(o *Options) { o.Strategy = "guess" }, true},
		{"unknown photo policy", func(o *Options) { o.PhotoConflicts = "rename" }, true},
		{"zero tolerance with coordinates", func(o *Options) { o.CoordinateTolerance = 0 }, true},
		{"zero tolerance with label is fine", func(o *Options) {
			o.Strategy = StrategyLabel
			o.CoordinateTolerance = 0
		}, false},
		{"threshold above one", func(o *Options) {
			o.Strategy = StrategyPhotos
			o.PhotoMatchThreshold = 1.01
		}, true},
		{"threshold zero with smart", func(o *Options) {
			o.Strategy = StrategySmart
			o.PhotoMatchThreshold = 0
		}, true},
		{"threshold exactly one", func(o *Options) {
			o.Strategy = StrategyPhotos
			o.PhotoMatchThreshold = 1
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mutate(&opts)
			err := opts.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidOptions)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
