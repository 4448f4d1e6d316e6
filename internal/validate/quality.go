// Package validate scores fitted transforms: residual error, anomaly
// detection, and correspondence-distribution checks. Everything here is
// advisory; only the transform package produces hard errors.
package validate

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"marker-migrate/internal/transform"
	"marker-migrate/pkg/geometry"
)

// Warning identifies one advisory anomaly on a fitted transform.
type Warning string

const (
	// WarnScaleMismatch fires when the axis scale factors differ by more
	// than ScaleMismatchRatio.
	WarnScaleMismatch Warning = "scale-mismatch"
	// WarnShear fires when the shear factor magnitude exceeds ShearLimit.
	WarnShear Warning = "shear"
	// WarnReflection fires when the transform mirrors the plane.
	WarnReflection Warning = "reflection"
	// WarnDegenerate fires when the determinant is near zero.
	WarnDegenerate Warning = "degenerate"
)

// Tunable warning thresholds. These are advisory cutoffs, not invariants.
const (
	ScaleMismatchRatio = 0.10
	ShearLimit         = 0.10
)

// toleranceFactor converts a fit residual into a recommended duplicate
// coordinate tolerance; minTolerance keeps exact fits from recommending a
// zero-pixel tolerance.
const (
	toleranceFactor = 2.5
	minTolerance    = 1.0
)

// Anomalies describes the geometric character of a fitted transform.
type Anomalies struct {
	ScaleX        float64   `json:"scale_x"`
	ScaleY        float64   `json:"scale_y"`
	Shear         float64   `json:"shear"`
	HasReflection bool      `json:"has_reflection"`
	IsDegenerate  bool      `json:"is_degenerate"`
	Warnings      []Warning `json:"warnings,omitempty"`
}

// Report bundles every quality signal for one fitted transform.
type Report struct {
	RMSE         float64      `json:"rmse"`
	PairCount    int          `json:"pair_count"`
	Anomalies    Anomalies    `json:"anomalies"`
	Distribution Distribution `json:"distribution"`
}

// RMSE returns the root-mean-square Euclidean residual between each pair's
// transformed source point and its target point.
//
// This is a fit residual: the same correspondences are used to fit and to
// score. For the 3-10 point interactive workflow this serves, that is the
// intended behavior, not a stand-in for cross-validation.
func RMSE(pairs []transform.Pair, tr geometry.AffineTransform) float64 {
	if len(pairs) == 0 {
		return 0
	}

	residuals := make([]float64, len(pairs))
	for i, p := range pairs {
		residuals[i] = tr.Apply(p.Source).Distance(p.Target)
	}
	return floats.Norm(residuals, 2) / math.Sqrt(float64(len(pairs)))
}

// DetectAnomalies derives scale, shear, and orientation signals from the
// linear part of a transform and collects threshold warnings.
func DetectAnomalies(tr geometry.AffineTransform) Anomalies {
	a := Anomalies{
		ScaleX:        math.Sqrt(tr.A*tr.A + tr.C*tr.C),
		ScaleY:        math.Sqrt(tr.B*tr.B + tr.D*tr.D),
		HasReflection: tr.Det() < 0,
		IsDegenerate:  tr.IsDegenerate(),
	}
	if a.ScaleX > 0 && a.ScaleY > 0 {
		a.Shear = (tr.A*tr.B + tr.C*tr.D) / (a.ScaleX * a.ScaleY)
	}

	if a.ScaleX > 0 && a.ScaleY > 0 {
		ratio := a.ScaleX / a.ScaleY
		if ratio < 1 {
			ratio = 1 / ratio
		}
		if ratio > 1+ScaleMismatchRatio {
			a.Warnings = append(a.Warnings, WarnScaleMismatch)
		}
	}
	if math.Abs(a.Shear) > ShearLimit {
		a.Warnings = append(a.Warnings, WarnShear)
	}
	if a.HasReflection {
		a.Warnings = append(a.Warnings, WarnReflection)
	}
	if a.IsDegenerate {
		a.Warnings = append(a.Warnings, WarnDegenerate)
	}
	return a
}

// Score produces a full quality report for a fitted transform.
func Score(pairs []transform.Pair, tr geometry.AffineTransform) Report {
	src := make([]geometry.Point2D, len(pairs))
	for i, p := range pairs {
		src[i] = p.Source
	}

	return Report{
		RMSE:         RMSE(pairs, tr),
		PairCount:    len(pairs),
		Anomalies:    DetectAnomalies(tr),
		Distribution: ValidatePointDistribution(src),
	}
}

// RecommendedTolerance derives a duplicate-coordinate tolerance from the fit
// residual (rmse x 2.5, floored at one pixel). This is an exposed policy for
// the merge caller, not something the reconciliation engine enforces.
func (r Report) RecommendedTolerance() float64 {
	return math.Max(minTolerance, r.RMSE*toleranceFactor)
}
