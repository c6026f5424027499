package configs

// Auction selects the auction variant and the seeds of a run. The seeds have
// no default: a run without both seeds is not reproducible and is rejected.
type Auction struct {
	Weighted    bool    `env:"WEIGHTED" envDefault:"false"`
	Extended    bool    `env:"EXTENDED" envDefault:"false"`
	NonTruthful bool    `env:"NON_TRUTHFUL" envDefault:"false"`
	Iterations  int     `env:"ITERATIONS" envDefault:"1"`
	Tolerance   float64 `env:"TOLERANCE" envDefault:"0.05"`
	// GroupSeed drives the partition of advertisers into groups.
	GroupSeed *int64 `env:"GROUP_SEED"`
	// AllocationSeed drives the randomized allocator.
	AllocationSeed *int64 `env:"ALLOCATION_SEED"`
	// DegradeOnSolverError records failed exact allocations as zero
	// results instead of aborting the run.
	DegradeOnSolverError bool `env:"DEGRADE_ON_SOLVER_ERROR" envDefault:"false"`
}
