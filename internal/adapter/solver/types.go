package solver

import (
	"errors"
	"time"
)

var (
	// ErrDimensionMismatch reports an objective or term that does not match
	// the declared number of variables.
	ErrDimensionMismatch = errors.New("solver: dimension mismatch")
	// ErrUnsupportedProblem reports a problem outside the packing class:
	// negative or non-finite coefficients.
	ErrUnsupportedProblem = errors.New("solver: unsupported problem")
	// ErrInfeasible reports a constraint that even the all-zero point violates.
	ErrInfeasible = errors.New("solver: infeasible problem")
	// ErrTimeLimit is reported in port.Solution.Limit when the time budget
	// ran out before the gap was closed.
	ErrTimeLimit = errors.New("solver: time limit reached")
	// ErrNodeLimit is reported in port.Solution.Limit when the node budget
	// ran out before the gap was closed.
	ErrNodeLimit = errors.New("solver: node limit reached")
)

// Options bound the search.
type Options struct {
	// MaxNodes caps the number of search nodes; 0 means unlimited.
	MaxNodes int
	// TimeLimit is a soft wall-clock budget; 0 means unlimited. A time limit
	// makes results depend on machine speed.
	TimeLimit time.Duration
	// Eps is the absolute tolerance on objective comparisons and constraint
	// checks.
	Eps float64
}

// DefaultOptions returns the options used when none are configured. The node
// cap keeps runs reproducible, unlike a time limit.
func DefaultOptions() Options {
	return Options{MaxNodes: 50_000, Eps: 1e-9}
}
