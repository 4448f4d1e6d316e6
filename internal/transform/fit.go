// Package transform fits 2D affine transforms from point correspondences
// using least squares and applies them to marker coordinates.
package transform

import (
	"fmt"
	"math"

	"marker-migrate/pkg/geometry"
)

// MinPairs is the minimum number of correspondence pairs needed to constrain
// the six affine parameters.
const MinPairs = 3

// Pair is one user-selected correspondence between a point in the source
// image and the equivalent point in the target image.
type Pair struct {
	Source geometry.Point2D `json:"source"`
	Target geometry.Point2D `json:"target"`
}

// Fit computes the least-squares affine transform mapping each pair's source
// point onto its target point.
//
// The x' and y' outputs are fitted as two independent 3-parameter linear
// regressions sharing one normal-equations matrix; the affine model has no
// cross terms coupling the axes, so this is equivalent to the joint 6x6
// solve at half the problem size. With exactly 3 pairs the solution is
// exact; with more it is least-squares optimal.
//
// A degenerate result (near-zero determinant) is not an error: the matrix is
// returned and callers decide via IsDegenerate. Only an unsolvable system —
// all source points collinear — fails, with ErrSingularSystem.
func Fit(pairs []Pair) (geometry.AffineTransform, error) {
	if len(pairs) < MinPairs {
		return geometry.AffineTransform{}, fmt.Errorf("%w: need at least %d, got %d",
			ErrInsufficientPoints, MinPairs, len(pairs))
	}

	sys := buildNormalSystem(pairs)

	xParams, err := sys.solve(rhs(pairs, func(p Pair) float64 { return p.Target.X }))
	if err != nil {
		return geometry.AffineTransform{}, err
	}
	yParams, err := sys.solve(rhs(pairs, func(p Pair) float64 { return p.Target.Y }))
	if err != nil {
		return geometry.AffineTransform{}, err
	}

	tr := geometry.AffineTransform{
		A: xParams[0], B: xParams[1], TX: xParams[2],
		C: yParams[0], D: yParams[1], TY: yParams[2],
	}

	// A solved system can still produce non-finite parameters when the
	// inputs are pathological; treat that as unsolvable rather than
	// returning garbage coefficients.
	for _, v := range []float64{tr.A, tr.B, tr.TX, tr.C, tr.D, tr.TY} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return geometry.AffineTransform{}, fmt.Errorf("%w: non-finite solution", ErrSingularSystem)
		}
	}

	return tr, nil
}

// Apply transforms a single point.
func Apply(tr geometry.AffineTransform, p geometry.Point2D) geometry.Point2D {
	return tr.Apply(p)
}

// ApplyBatch transforms points element-wise. The result is identical to
// repeated Apply calls; there is no batching shortcut that would change
// rounding.
func ApplyBatch(tr geometry.AffineTransform, points []geometry.Point2D) []geometry.Point2D {
	out := make([]geometry.Point2D, len(points))
	for i, p := range points {
		out[i] = tr.Apply(p)
	}
	return out
}

// Invert returns the exact algebraic inverse of tr, or ErrSingularMatrix
// when the determinant magnitude is below geometry.DegenerateEpsilon.
func Invert(tr geometry.AffineTransform) (geometry.AffineTransform, error) {
	inv, ok := tr.Inverse()
	if !ok {
		return geometry.AffineTransform{}, fmt.Errorf("%w: determinant %.3g",
			ErrSingularMatrix, tr.Det())
	}
	return inv, nil
}
