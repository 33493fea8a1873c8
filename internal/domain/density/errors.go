package density

import "errors"

// Sentinel errors for density estimation.
var (
	ErrTooFewPoints = errors.New("at least two points are required for a density fit")
	ErrDegenerate   = errors.New("point cloud has a degenerate covariance")
	ErrUnknownRule  = errors.New("unknown bandwidth rule")
)
