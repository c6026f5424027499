package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"slices"
	"time"

	"github.com/GaryBoone/GoStats/stats"
	"github.com/google/uuid"

	"seeding-auction/internal/core/domain"
	"seeding-auction/internal/core/port"
)

// Options selects the variant of the auction.
type Options struct {
	// Weighted prices from aggregate group values instead of per-engagement
	// prices.
	Weighted bool
	// Extended uses the extended monopoly search and the exact allocator;
	// otherwise the closed-form search and the randomized allocator run.
	Extended bool
	// NonTruthful prices every advertiser from its own group.
	NonTruthful bool
	// Tolerance is the relative optimality gap handed to the solver.
	Tolerance float64
	// DegradeOnSolverError records a failed exact allocation as a zero
	// result instead of aborting the run.
	DegradeOnSolverError bool
}

// Mode returns the pricing mode of the run.
func (o Options) Mode() domain.Mode {
	return domain.Mode{Weighted: o.Weighted, NonTruthful: o.NonTruthful}
}

// AuctionUseCase drives repeated trials: split the advertisers into two
// groups, price each group, clear the market between them and log the result.
type AuctionUseCase struct {
	solver  port.Solver
	results port.ResultWriter
	opts    Options
	logger  *slog.Logger
}

// NewAuctionUseCase creates a usecase. The solver is only used in extended
// mode.
func NewAuctionUseCase(solver port.Solver, results port.ResultWriter, opts Options, logger *slog.Logger) *AuctionUseCase {
	return &AuctionUseCase{solver: solver, results: results, opts: opts, logger: logger}
}

// runEngines holds the monopoly search and the allocator of one run. exact is
// nil unless the run solves assignments.
type runEngines struct {
	pricer    port.MonopolyPricer
	allocator port.Allocator
	exact     *ExactAllocator
}

func (u *AuctionUseCase) engines(allocationRand port.Rand) runEngines {
	if u.opts.Extended {
		exact := NewExactAllocator(u.solver, u.opts.Mode(), u.opts.Tolerance, u.logger)
		return runEngines{
			pricer:    NewExtendedSearch(exact, u.opts.DegradeOnSolverError),
			allocator: exact,
			exact:     exact,
		}
	}
	var pricer port.MonopolyPricer = monopolyFunc(UnweightedMonopolyPrice)
	if u.opts.Weighted {
		pricer = monopolyFunc(WeightedMonopolyPrice)
	}
	return runEngines{pricer: pricer, allocator: NewRandomAllocator(allocationRand, u.opts.Mode())}
}

// failures reports the failed solves so far.
func (e runEngines) failures() int {
	if e.exact == nil {
		return 0
	}
	return e.exact.Failures()
}

// Run implements port.AuctionUseCase.
func (u *AuctionUseCase) Run(ctx context.Context, pool *domain.Pool, req port.RunReq) (*domain.Summary, error) {
	if pool.Len() == 0 {
		return nil, port.ErrNoAdvertisers
	}
	if req.Iterations < 1 {
		return nil, fmt.Errorf("iterations must be positive, got %d", req.Iterations)
	}

	// The two generators must never share state.
	groupRand := rand.New(rand.NewSource(req.GroupSeed))
	allocationRand := rand.New(rand.NewSource(req.AllocationSeed))
	eng := u.engines(allocationRand)

	runID := uuid.New()
	logger := u.logger.With(slog.String("run_id", runID.String()))
	label := domain.Label(u.opts.Extended, u.opts.NonTruthful)
	advertisers := pool.Advertisers()
	records := make([]domain.TrialRecord, 0, req.Iterations)

	start := time.Now()
	for i := 0; i < req.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, degraded, err := u.trial(ctx, advertisers, groupRand, eng, logger)
		if err != nil {
			return nil, fmt.Errorf("trial %d: %w", i, err)
		}
		records = append(records, domain.TrialRecord{
			RunID:            runID,
			AdvertiserSource: req.AdvertiserSource,
			Iterations:       req.Iterations,
			SpreadSource:     req.SpreadSource,
			Weighted:         u.opts.Weighted,
			Mode:             label,
			Revenue:          res.Revenue,
			SocialWelfare:    res.SocialWelfare,
			Elapsed:          time.Since(start),
			GroupSeed:        req.GroupSeed,
			AllocationSeed:   req.AllocationSeed,
			Degraded:         degraded,
		})
		logger.Debug("trial finished",
			slog.Int("trial", i),
			slog.Float64("revenue", res.Revenue),
			slog.Float64("social_welfare", res.SocialWelfare),
			slog.Duration("elapsed", records[i].Elapsed),
			slog.Bool("degraded", degraded))
	}
	mean := time.Since(start) / time.Duration(req.Iterations)
	for i := range records {
		records[i].MeanElapsed = mean
	}

	if err := u.results.WriteTrials(ctx, records); err != nil {
		return nil, fmt.Errorf("write results: %w", err)
	}
	return summarize(runID, records, mean), nil
}

// trial runs one partition, pricing and allocation. degraded is set when any
// solve of the trial failed and the usecase is configured to tolerate it.
func (u *AuctionUseCase) trial(
	ctx context.Context,
	advertisers []*domain.Advertiser,
	groupRand port.Rand,
	eng runEngines,
	logger *slog.Logger,
) (domain.Result, bool, error) {
	a, b := SplitGroups(advertisers, groupRand)
	failuresBefore := eng.failures()

	refA, err := eng.pricer.MonopolyPrice(ctx, a)
	if err != nil {
		return u.degrade(err, logger)
	}
	refB, err := eng.pricer.MonopolyPrice(ctx, b)
	if err != nil {
		return u.degrade(err, logger)
	}
	logger.Debug("groups priced",
		slog.Int("size_a", len(a)),
		slog.Int("size_b", len(b)),
		slog.Float64("price_a", refA.ValuePerEngagement),
		slog.Float64("value_a", refA.Value),
		slog.Float64("price_b", refB.ValuePerEngagement),
		slog.Float64("value_b", refB.Value))

	res, err := eng.allocator.Allocate(ctx, domain.Market{A: a, B: b, RefA: refA, RefB: refB})
	if err != nil {
		return u.degrade(err, logger)
	}
	return res, eng.failures() > failuresBefore, nil
}

func (u *AuctionUseCase) degrade(err error, logger *slog.Logger) (domain.Result, bool, error) {
	if u.opts.DegradeOnSolverError && errors.Is(err, port.ErrSolverFailure) {
		logger.Warn("solver failed, recording zero result", slog.Any("error", err))
		return domain.Result{}, true, nil
	}
	return domain.Result{}, false, err
}

// SplitGroups shuffles advertisers in place with rng and cuts the list in two
// contiguous halves. A coin drawn from the same generator decides which half
// becomes group A, so the side taking the extra advertiser of an odd count is
// random. The groups are copies and may be reordered freely.
func SplitGroups(advertisers []*domain.Advertiser, rng port.Rand) (a, b domain.Group) {
	rng.Shuffle(len(advertisers), func(i, j int) { advertisers[i], advertisers[j] = advertisers[j], advertisers[i] })
	half := len(advertisers) / 2
	first := domain.Group(slices.Clone(advertisers[:half]))
	second := domain.Group(slices.Clone(advertisers[half:]))
	if rng.Float64() < 0.5 {
		return first, second
	}
	return second, first
}

func summarize(runID uuid.UUID, records []domain.TrialRecord, mean time.Duration) *domain.Summary {
	revenues := make([]float64, len(records))
	welfare := make([]float64, len(records))
	degraded := 0
	for i, r := range records {
		revenues[i] = r.Revenue
		welfare[i] = r.SocialWelfare
		if r.Degraded {
			degraded++
		}
	}
	return &domain.Summary{
		RunID:               runID,
		Trials:              len(records),
		Degraded:            degraded,
		MeanRevenue:         stats.StatsMean(revenues),
		StdDevRevenue:       stats.StatsPopulationStandardDeviation(revenues),
		MinRevenue:          stats.StatsMin(revenues),
		MaxRevenue:          stats.StatsMax(revenues),
		MeanSocialWelfare:   stats.StatsMean(welfare),
		StdDevSocialWelfare: stats.StatsPopulationStandardDeviation(welfare),
		MeanElapsed:         mean,
	}
}

var _ port.AuctionUseCase = (*AuctionUseCase)(nil)
