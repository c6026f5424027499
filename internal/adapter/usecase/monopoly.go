package usecase

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"seeding-auction/internal/core/domain"
	"seeding-auction/internal/core/port"
)

// WeightedMonopolyPrice walks the group in descending order of value and stops
// at the first advertiser whose half value is covered by the budgets of the
// advertisers before it. The figures of the advertiser preceding that cutoff
// are returned. An empty group has zero figures.
func WeightedMonopolyPrice(group domain.Group) domain.Reference {
	if len(group) == 0 {
		return domain.Reference{}
	}
	sorted, values := sortDescending(group, (*domain.Advertiser).Value)

	var (
		index       int
		totalBudget float64
	)
	for index < len(sorted) && totalBudget < values[index]/2 {
		index++
		totalBudget += sorted[index-1].Budget
	}
	return referenceOf(sorted[max(index-1, 0)])
}

// UnweightedMonopolyPrice walks the group in descending order of value per
// engagement. The candidate at index i is compared against the budgets before
// it and half the average spread of the first i+1 advertisers. The last
// advertiser is never a candidate.
func UnweightedMonopolyPrice(group domain.Group) domain.Reference {
	if len(group) == 0 {
		return domain.Reference{}
	}
	sorted, _ := sortDescending(group, func(a *domain.Advertiser) float64 { return a.ValuePerEngagement })
	spreads := make([]float64, len(sorted))
	for i, a := range sorted {
		spreads[i] = a.TotalSpread()
	}

	var (
		index       int
		totalBudget float64
	)
	halfSpread := halfAverageSpread(spreads[:1])
	for index < len(sorted)-1 && totalBudget < sorted[index].ValuePerEngagement*halfSpread {
		index++
		totalBudget += sorted[index-1].Budget
		halfSpread = halfAverageSpread(spreads[:index+1])
	}
	return referenceOf(sorted[max(index-1, 0)])
}

// halfAverageSpread is recomputed over the whole prefix at every step: it
// tracks the average footprint of the population under consideration.
func halfAverageSpread(spreads []float64) float64 {
	var sum float64
	for _, s := range spreads {
		sum += s
	}
	return sum / (2.0 * float64(len(spreads)))
}

// ExtendedSearch finds a group's monopoly figures by scoring every candidate
// cutoff of the doubled, sorted group with an exact self-priced allocation.
type ExtendedSearch struct {
	exact    *ExactAllocator
	weighted bool
	// degrade scores a cutoff whose solve failed as zero revenue and keeps
	// searching instead of returning the error.
	degrade bool
}

// NewExtendedSearch returns a search that scores cutoffs with exact. The
// search always prices non-truthfully; weighted is taken from exact's mode.
func NewExtendedSearch(exact *ExactAllocator, degrade bool) *ExtendedSearch {
	return &ExtendedSearch{exact: exact, weighted: exact.mode.Weighted, degrade: degrade}
}

// Cutoff is one scored candidate of the extended search.
type Cutoff struct {
	Index   int
	Ref     domain.Reference
	Revenue float64
}

// MonopolyPrice implements port.MonopolyPricer.
func (s *ExtendedSearch) MonopolyPrice(ctx context.Context, group domain.Group) (domain.Reference, error) {
	best, _, err := s.Search(ctx, group)
	if err != nil {
		return domain.Reference{}, err
	}
	return best.Ref, nil
}

// Search returns the selected cutoff together with every scored cutoff. The
// group is doubled with clones carrying negative ids, so clone ids never
// collide with pool ids. Ties keep the earliest cutoff.
func (s *ExtendedSearch) Search(ctx context.Context, group domain.Group) (Cutoff, []Cutoff, error) {
	if len(group) == 0 {
		return Cutoff{}, nil, nil
	}
	doubled := make(domain.Group, 0, 2*len(group))
	doubled = append(doubled, group...)
	for _, a := range group {
		doubled = append(doubled, a.Clone(-(a.ID + 1)))
	}

	key := func(a *domain.Advertiser) float64 { return a.ValuePerEngagement }
	if s.weighted {
		key = (*domain.Advertiser).Value
	}
	doubled, _ = sortDescending(doubled, key)

	mode := domain.Mode{Weighted: s.weighted, NonTruthful: true}
	scored := make([]Cutoff, 0, len(doubled)/2)
	best := -1
	for index := 1; index < len(doubled); index += 2 {
		ref := referenceOf(doubled[index])
		market := domain.Market{A: doubled[:index+1], RefA: ref, RefB: ref}
		res, err := s.exact.allocate(ctx, market, mode)
		if err != nil {
			if !s.degrade || !errors.Is(err, port.ErrSolverFailure) {
				return Cutoff{}, nil, fmt.Errorf("score cutoff %d: %w", index, err)
			}
			s.exact.logger.Warn("cutoff solve failed, scoring zero",
				slog.Int("cutoff", index),
				slog.Any("error", err))
			res = domain.Result{}
		}
		scored = append(scored, Cutoff{Index: index, Ref: ref, Revenue: res.Revenue})
		if best < 0 || res.Revenue > scored[best].Revenue {
			best = len(scored) - 1
		}
	}
	return scored[best], scored, nil
}

var _ port.MonopolyPricer = (*ExtendedSearch)(nil)

// monopolyFunc adapts the closed-form searches to port.MonopolyPricer.
type monopolyFunc func(domain.Group) domain.Reference

func (f monopolyFunc) MonopolyPrice(_ context.Context, group domain.Group) (domain.Reference, error) {
	return f(group), nil
}

func referenceOf(a *domain.Advertiser) domain.Reference {
	return domain.Reference{ValuePerEngagement: a.ValuePerEngagement, Value: a.Value()}
}

// sortDescending returns a copy of group stably sorted by key, highest first,
// together with the keys in the same order.
func sortDescending(group domain.Group, key func(*domain.Advertiser) float64) (domain.Group, []float64) {
	type keyed struct {
		a *domain.Advertiser
		k float64
	}
	entries := make([]keyed, len(group))
	for i, a := range group {
		entries[i] = keyed{a: a, k: key(a)}
	}
	slices.SortStableFunc(entries, func(x, y keyed) int { return cmp.Compare(y.k, x.k) })

	sorted := make(domain.Group, len(entries))
	keys := make([]float64, len(entries))
	for i, e := range entries {
		sorted[i], keys[i] = e.a, e.k
	}
	return sorted, keys
}
