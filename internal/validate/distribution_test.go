package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"marker-migrate/pkg/geometry"
)

func TestValidatePointDistributionGoodSpread(t *testing.T) {
	d := ValidatePointDistribution([]geometry.Point2D{
		{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 0, Y: 100}, {X: 100, Y: 100},
	})
	assert.True(t, d.IsValid)
	assert.InDelta(t, 1, d.AreaRatio, 1e-9)
	assert.Empty(t, d.Reason)
}

func TestValidatePointDistributionCollinear(t *testing.T) {
	d := ValidatePointDistribution([]geometry.Point2D{
		{X: 0, Y: 0}, {X: 5, Y: 5}, {X: 10, Y: 10},
	})
	assert.False(t, d.IsValid)
	assert.NotEmpty(t, d.Reason)
}

func TestValidatePointDistributionNearCollinear(t *testing.T) {
	// Thin sliver: bounding box 100x100 but triangle area ~50.
	d := ValidatePointDistribution([]geometry.Point2D{
		{X: 0, Y: 0}, {X: 100, Y: 99}, {X: 99, Y: 100},
	})
	assert.False(t, d.IsValid)
	assert.Less(t, d.AreaRatio, 0.1)
	assert.NotEmpty(t, d.Reason)
}

func TestValidatePointDistributionTooFew(t *testing.T) {
	d := ValidatePointDistribution([]geometry.Point2D{{X: 0, Y: 0}, {X: 10, Y: 10}})
	assert.False(t, d.IsValid)
	assert.NotEmpty(t, d.Reason)
}

func TestSuggestAdditionalPointsEmptyQuadrants(t *testing.T) {
	bounds := geometry.NewRect(0, 0, 1000, 800)

	// One point in the top-left quadrant: expect three suggestions.
	suggestions := SuggestAdditionalPoints([]geometry.Point2D{{X: 100, Y: 100}}, bounds)
	assert.Len(t, suggestions, 3)
	for _, s := range suggestions {
		assert.True(t, bounds.Contains(s))
	}
}

func TestSuggestAdditionalPointsAllOccupied(t *testing.T) {
	bounds := geometry.NewRect(0, 0, 1000, 800)
	current := []geometry.Point2D{
		{X: 100, Y: 100}, {X: 900, Y: 100}, {X: 100, Y: 700}, {X: 900, Y: 700},
	}
	assert.Empty(t, SuggestAdditionalPoints(current, bounds))
}

func TestSuggestAdditionalPointsIgnoresOutOfBounds(t *testing.T) {
	bounds := geometry.NewRect(0, 0, 100, 100)
	suggestions := SuggestAdditionalPoints([]geometry.Point2D{{X: -50, Y: -50}, {X: 500, Y: 500}}, bounds)
	assert.Len(t, suggestions, 4)
}
