package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvexHullSquare(t *testing.T) {
	points := []Point2D{
		{0, 0}, {10, 0}, {10, 10}, {0, 10},
		{5, 5}, {3, 7}, // interior points excluded from hull
	}
	hull := ConvexHull(points)
	assert.Len(t, hull, 4)
	assert.InDelta(t, 100, PolygonArea(hull), 1e-9)
}

func TestConvexHullCollinear(t *testing.T) {
	points := []Point2D{{0, 0}, {5, 5}, {10, 10}}
	hull := ConvexHull(points)
	assert.InDelta(t, 0, PolygonArea(hull), 1e-9)
}

func TestPolygonAreaTriangle(t *testing.T) {
	tri := []Point2D{{0, 0}, {10, 0}, {0, 10}}
	assert.InDelta(t, 50, PolygonArea(tri), 1e-9)

	// Orientation does not change the unsigned area
	rev := []Point2D{{0, 10}, {10, 0}, {0, 0}}
	assert.InDelta(t, 50, PolygonArea(rev), 1e-9)
}

func TestTriangleArea(t *testing.T) {
	assert.InDelta(t, 50, TriangleArea(Point2D{0, 0}, Point2D{10, 0}, Point2D{0, 10}), 1e-9)
	assert.InDelta(t, 0, TriangleArea(Point2D{0, 0}, Point2D{1, 1}, Point2D{2, 2}), 1e-9)
}
