package transform

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// normalSystem holds the 3x3 normal-equations matrix A^T*A shared by both
// regression axes, built from the source points of a correspondence set.
//
//	[Σx²  Σxy  Σx]
//	[Σxy  Σy²  Σy]
//	[Σx   Σy   n ]
type normalSystem struct {
	sxx, sxy, sx float64
	syy, sy      float64
	n            float64
}

func buildNormalSystem(pairs []Pair) normalSystem {
	var s normalSystem
	for _, p := range pairs {
		x, y := p.Source.X, p.Source.Y
		s.sxx += x * x
		s.sxy += x * y
		s.sx += x
		s.syy += y * y
		s.sy += y
	}
	s.n = float64(len(pairs))
	return s
}

// rhs builds the right-hand side A^T*b for one output axis, where pick
// selects the target coordinate being regressed.
func rhs(pairs []Pair, pick func(Pair) float64) [3]float64 {
	var b [3]float64
	for _, p := range pairs {
		v := pick(p)
		b[0] += p.Source.X * v
		b[1] += p.Source.Y * v
		b[2] += v
	}
	return b
}

// solve solves the normal equations for one axis using dense LU with partial
// pivoting. A singular system (all source points collinear) is reported as
// ErrSingularSystem; an ill-conditioned but solvable system is accepted and
// left for the validator to flag.
func (s normalSystem) solve(b [3]float64) ([3]float64, error) {
	m := mat.NewDense(3, 3, []float64{
		s.sxx, s.sxy, s.sx,
		s.sxy, s.syy, s.sy,
		s.sx, s.sy, s.n,
	})
	v := mat.NewVecDense(3, []float64{b[0], b[1], b[2]})

	var params mat.VecDense
	if err := params.SolveVec(m, v); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return [3]float64{}, fmt.Errorf("%w: %v", ErrSingularSystem, err)
		}
		// An infinite condition number means the matrix is exactly
		// singular: gonum bails out before solving and leaves params
		// zeroed, so there is no solution to keep.
		if math.IsInf(float64(cond), 1) {
			return [3]float64{}, fmt.Errorf("%w: collinear source points", ErrSingularSystem)
		}
		// Near-singular but solved; keep the solution.
	}

	return [3]float64{params.AtVec(0), params.AtVec(1), params.AtVec(2)}, nil
}
