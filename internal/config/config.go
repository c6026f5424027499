package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/caarlos0/env/v11"

	"seeding-auction/internal/config/configs"
)

var (
	// ErrMissingSeed is returned when a run lacks a group or allocation seed.
	ErrMissingSeed = errors.New("both the group seed and the random allocation seed are required")
	// ErrInvalidIterations is returned for fewer than one iteration.
	ErrInvalidIterations = errors.New("iterations must be at least 1")
	// ErrInvalidTolerance is returned for a negative optimality gap.
	ErrInvalidTolerance = errors.New("tolerance must not be negative")
	// ErrUnknownSink is returned for an output sink other than csv or postgres.
	ErrUnknownSink = errors.New("unknown output sink")
)

// usageOutput receives the flag usage and parse errors.
var usageOutput io.Writer = os.Stderr

// Config aggregates all configuration sections for the application. Fields
// are populated from environment variables using the caarlos0/env library and
// may then be overridden by command-line flags. The nested structs are tagged
// with envPrefix so their fields are parsed with the given prefix. See the
// individual types in the configs package for default values and options. Use
// Load to construct a Config.
type Config struct {
	// Log configures the structured logger. Environment variables prefixed
	// with LOG_ will populate this struct.
	Log configs.Logger `envPrefix:"LOG_"`

	// Input locates the advertiser and spread tables.
	Input configs.Input `envPrefix:"INPUT_"`

	// Auction selects the variant, the iteration count and the seeds.
	Auction configs.Auction `envPrefix:"AUCTION_"`

	// Solver bounds the exact allocator's search.
	Solver configs.Solver `envPrefix:"SOLVER_"`

	// Output selects the results sink.
	Output configs.Output `envPrefix:"OUTPUT_"`

	// Psql configures the PostgreSQL connection used by the postgres sink.
	Psql configs.Postgres `envPrefix:"PSQL_"`
}

// Load reads configuration from environment variables, then applies the
// command-line flags in args (without the program name). The result is
// validated. -h and -help print the usage and return flag.ErrHelp.
func Load(args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.parseFlags(args); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// parseFlags registers every flag with its env-derived default. Short and
// long spellings share one variable.
func (c *Config) parseFlags(args []string) error {
	fs := flag.NewFlagSet("seeding-auction", flag.ContinueOnError)
	fs.SetOutput(usageOutput)

	str := func(p *string, short, long, usage string) {
		fs.StringVar(p, short, *p, usage)
		fs.StringVar(p, long, *p, usage)
	}
	boolean := func(p *bool, short, long, usage string) {
		fs.BoolVar(p, short, *p, usage)
		fs.BoolVar(p, long, *p, usage)
	}

	str(&c.Input.Path, "p", "path", "directory of the input tables")
	str(&c.Input.Spread, "s", "spread", "spread table file name")
	str(&c.Input.Advertisers, "a", "advertisers", "advertiser table file name")
	str(&c.Output.File, "o", "output", "results file")
	boolean(&c.Auction.Weighted, "w", "weighted", "price from aggregate group values")
	boolean(&c.Auction.Extended, "e", "extended", "extended monopoly search with exact allocation")
	boolean(&c.Auction.NonTruthful, "n", "nontruthful", "price from the advertiser's own group")
	boolean(&c.Input.CountSeeder, "c", "countseeder", "add one engagement per seeder")
	fs.IntVar(&c.Auction.Iterations, "i", c.Auction.Iterations, "number of trials")
	fs.IntVar(&c.Auction.Iterations, "iterations", c.Auction.Iterations, "number of trials")
	fs.Float64Var(&c.Auction.Tolerance, "t", c.Auction.Tolerance, "relative optimality gap")
	fs.Float64Var(&c.Auction.Tolerance, "tolerance", c.Auction.Tolerance, "relative optimality gap")
	fs.IntVar(&c.Input.Generate, "generate", c.Input.Generate, "write a synthetic data set of this size first")
	fs.Func("g", "group partition seed", seedFlag(&c.Auction.GroupSeed))
	fs.Func("groupseed", "group partition seed", seedFlag(&c.Auction.GroupSeed))
	fs.Func("r", "random allocation seed", seedFlag(&c.Auction.AllocationSeed))
	fs.Func("randomallocationseed", "random allocation seed", seedFlag(&c.Auction.AllocationSeed))

	return fs.Parse(args)
}

func seedFlag(dst **int64) func(string) error {
	return func(s string) error {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid seed %q: %w", s, err)
		}
		*dst = &v
		return nil
	}
}

// Validate reports configuration errors that make a run impossible.
func (c Config) Validate() error {
	if c.Auction.GroupSeed == nil || c.Auction.AllocationSeed == nil {
		return ErrMissingSeed
	}
	if c.Auction.Iterations < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidIterations, c.Auction.Iterations)
	}
	if c.Auction.Tolerance < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidTolerance, c.Auction.Tolerance)
	}
	switch c.Output.SinkName() {
	case configs.SinkCSV, configs.SinkPostgres:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSink, c.Output.Sink)
	}
	return nil
}
