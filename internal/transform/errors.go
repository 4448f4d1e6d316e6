package transform

import "errors"

// Fit and inversion failures. These are input problems the caller can fix;
// no partial result is ever returned alongside them.
var (
	// ErrInsufficientPoints indicates fewer than the three correspondence
	// pairs required to constrain an affine transform.
	ErrInsufficientPoints = errors.New("insufficient correspondence points")

	// ErrSingularSystem indicates the normal equations could not be solved
	// because all correspondence points are collinear.
	ErrSingularSystem = errors.New("singular system: points are collinear")

	// ErrSingularMatrix indicates a transform with near-zero determinant
	// cannot be inverted.
	ErrSingularMatrix = errors.New("singular matrix: transform is not invertible")
)
