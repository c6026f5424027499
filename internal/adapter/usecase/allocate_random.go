package usecase

import (
	"context"

	"seeding-auction/internal/core/domain"
	"seeding-auction/internal/core/port"
)

// RandomAllocator clears a market in one pass: seeders are visited in random
// order and each goes to the first advertiser, in a fresh random order, that
// has a positive acceptable price and can still pay for it.
type RandomAllocator struct {
	rng  port.Rand
	mode domain.Mode
}

// NewRandomAllocator creates an allocator drawing all of its randomness from
// rng, which must not be shared with the group partitioning.
func NewRandomAllocator(rng port.Rand, mode domain.Mode) *RandomAllocator {
	return &RandomAllocator{rng: rng, mode: mode}
}

// Allocate implements port.Allocator.
func (r *RandomAllocator) Allocate(ctx context.Context, m domain.Market) (domain.Result, error) {
	m.ResetBudgets()
	advertisers := m.Advertisers()
	if len(advertisers) == 0 {
		return domain.Result{}, nil
	}

	priceOf := make(map[*domain.Advertiser]float64, len(advertisers))
	for i, price := range prices(advertisers, m, r.mode) {
		priceOf[advertisers[i]] = price
	}

	seeders := domain.Seeders(advertisers)
	r.rng.Shuffle(len(seeders), func(i, j int) { seeders[i], seeders[j] = seeders[j], seeders[i] })

	var res domain.Result
	for _, seeder := range seeders {
		if err := ctx.Err(); err != nil {
			return domain.Result{}, err
		}
		r.rng.Shuffle(len(advertisers), func(i, j int) { advertisers[i], advertisers[j] = advertisers[j], advertisers[i] })

		for _, a := range advertisers {
			price := priceOf[a]
			if price <= 0 {
				continue
			}
			quantity := a.Spread[seeder]
			payment := price * quantity
			if !Eligible(price, a.ValuePerEngagement) || payment > a.RemainingBudget {
				continue
			}
			a.RemainingBudget -= payment
			res.Revenue += payment
			res.SocialWelfare += a.ValuePerEngagement * quantity
			break
		}
	}
	return res, nil
}

var _ port.Allocator = (*RandomAllocator)(nil)
