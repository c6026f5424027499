package configs

import "time"

// Solver bounds the branch-and-bound search used by the exact allocator. At
// either limit the best assignment found so far is used.
type Solver struct {
	MaxNodes  int           `env:"MAX_NODES" envDefault:"50000"`
	TimeLimit time.Duration `env:"TIME_LIMIT" envDefault:"0s"`
}
