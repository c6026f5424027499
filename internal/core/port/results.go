package port

import (
	"context"

	"seeding-auction/internal/core/domain"
)

// ResultWriter is the append-only results log. Implementations append the
// records of one run in order and never rewrite earlier rows.
type ResultWriter interface {
	WriteTrials(ctx context.Context, records []domain.TrialRecord) error
}

// AdvertiserLoader builds the advertiser pool from the input tables.
type AdvertiserLoader interface {
	Load(ctx context.Context) (*domain.Pool, error)
}

//go:generate mockery --name=ResultWriter --output=mocks --outpkg=mocks --with-expecter
//go:generate mockery --name=Solver --output=mocks --outpkg=mocks --with-expecter
