package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"seeding-auction/internal/core/domain"
)

// resultColumns matches the auction_results table created by the migrations.
var resultColumns = []string{
	"run_id",
	"trial",
	"advertisers",
	"iterations",
	"spread",
	"weighted",
	"mode",
	"revenue",
	"sw",
	"runtime_accumulated",
	"runtime_mean",
	"group_seed",
	"random_allocation_seed",
	"degraded",
}

// copier is the subset of *pgxpool.Pool used by ResultRepository.
type copier interface {
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// ResultRepository implements port.ResultWriter on top of PostgreSQL. Rows
// are only ever inserted.
type ResultRepository struct {
	pool copier
}

// NewResultRepository returns a new repository instance. pool is usually a
// *pgxpool.Pool.
func NewResultRepository(pool copier) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// WriteTrials copies all records of a run in one round trip.
func (r *ResultRepository) WriteTrials(ctx context.Context, records []domain.TrialRecord) error {
	if len(records) == 0 {
		return nil
	}
	src := pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
		rec := records[i]
		return []any{
			rec.RunID,
			i + 1,
			rec.AdvertiserSource,
			rec.Iterations,
			rec.SpreadSource,
			rec.Weighted,
			rec.Mode,
			rec.Revenue,
			rec.SocialWelfare,
			rec.Elapsed.Seconds(),
			rec.MeanElapsed.Seconds(),
			rec.GroupSeed,
			rec.AllocationSeed,
			rec.Degraded,
		}, nil
	})
	n, err := r.pool.CopyFrom(ctx, pgx.Identifier{"auction_results"}, resultColumns, src)
	if err != nil {
		return fmt.Errorf("copy auction results: %w", err)
	}
	if n != int64(len(records)) {
		return fmt.Errorf("copy auction results: wrote %d of %d rows", n, len(records))
	}
	return nil
}
