package port

import (
	"context"
	"errors"

	"seeding-auction/internal/core/domain"
)

// ErrNoAdvertisers is returned when a run is started on an empty pool.
var ErrNoAdvertisers = errors.New("no advertisers")

// MonopolyPricer computes a group's monopoly figures.
type MonopolyPricer interface {
	MonopolyPrice(ctx context.Context, group domain.Group) (domain.Reference, error)
}

// Allocator clears a market and returns revenue and social welfare. Every
// call starts by resetting the remaining budgets of all advertisers involved.
type Allocator interface {
	Allocate(ctx context.Context, market domain.Market) (domain.Result, error)
}

// RunReq describes one simulation run.
type RunReq struct {
	AdvertiserSource string
	SpreadSource     string
	Iterations       int
	GroupSeed        int64
	AllocationSeed   int64
}

// AuctionUseCase runs repeated trials of the two-sided auction.
type AuctionUseCase interface {
	// Run executes req.Iterations trials on the pool, appends one record per
	// trial to the results log and returns the run summary.
	Run(ctx context.Context, pool *domain.Pool, req RunReq) (*domain.Summary, error)
}
