package validate

import (
	"fmt"

	"marker-migrate/pkg/geometry"
)

// minAreaRatio is the hull-to-bounding-box area ratio below which a point
// configuration is considered too close to a line to constrain a reliable
// fit.
const minAreaRatio = 0.1

// Distribution reports whether a correspondence point set spans enough area
// for a well-conditioned fit. An invalid distribution is advisory: the fit
// may still be numerically solvable, just unreliable away from the points.
type Distribution struct {
	IsValid   bool    `json:"is_valid"`
	AreaRatio float64 `json:"area_ratio"`
	Reason    string  `json:"reason,omitempty"`
}

// ValidatePointDistribution flags near-collinear configurations by comparing
// the area spanned by the points (triangle for three, convex hull beyond)
// against their bounding-box area.
func ValidatePointDistribution(points []geometry.Point2D) Distribution {
	if len(points) < 3 {
		return Distribution{
			Reason: fmt.Sprintf("need at least 3 points, got %d", len(points)),
		}
	}

	var spanned float64
	if len(points) == 3 {
		spanned = geometry.TriangleArea(points[0], points[1], points[2])
	} else {
		spanned = geometry.PolygonArea(geometry.ConvexHull(points))
	}

	box := geometry.BoundingBox(points)
	boxArea := box.Area()
	if boxArea <= 0 {
		return Distribution{
			Reason: "points are collinear (zero bounding-box area)",
		}
	}

	ratio := spanned / boxArea
	if ratio < minAreaRatio {
		return Distribution{
			AreaRatio: ratio,
			Reason: fmt.Sprintf("points span only %.0f%% of their bounding box; spread them out or add points off the line",
				ratio*100),
		}
	}

	return Distribution{IsValid: true, AreaRatio: ratio}
}

// SuggestAdditionalPoints returns candidate locations for new correspondence
// points: the corners of unoccupied quadrants of bounds, inset slightly so
// suggestions land inside the image. Quadrants already holding a point are
// skipped.
func SuggestAdditionalPoints(current []geometry.Point2D, bounds geometry.Rect) []geometry.Point2D {
	center := bounds.Center()

	var occupied [4]bool
	for _, p := range current {
		if !bounds.Contains(p) {
			continue
		}
		occupied[quadrant(p, center)] = true
	}

	// Inset 10% from the edges so the suggestion is clickable on screen.
	insetX := bounds.Width * 0.1
	insetY := bounds.Height * 0.1
	corners := [4]geometry.Point2D{
		{X: bounds.X + insetX, Y: bounds.Y + insetY},                               // top-left
		{X: bounds.X + bounds.Width - insetX, Y: bounds.Y + insetY},                // top-right
		{X: bounds.X + insetX, Y: bounds.Y + bounds.Height - insetY},               // bottom-left
		{X: bounds.X + bounds.Width - insetX, Y: bounds.Y + bounds.Height - insetY}, // bottom-right
	}

	var suggestions []geometry.Point2D
	for q, corner := range corners {
		if !occupied[q] {
			suggestions = append(suggestions, corner)
		}
	}
	return suggestions
}

// quadrant maps a point to 0..3: top-left, top-right, bottom-left,
// bottom-right relative to center.
func quadrant(p, center geometry.Point2D) int {
	q := 0
	if p.X >= center.X {
		q++
	}
	if p.Y >= center.Y {
		q += 2
	}
	return q
}
