package usecase

import "seeding-auction/internal/core/domain"

// Epsilon is the numerical tolerance used for the individual-rationality test
// and for reading binary decisions from a solution.
const Epsilon = 0.00001

// Price returns the per-engagement price charged to a in market m. Truthful
// modes price from the opposing group's reference, non-truthful modes from
// the advertiser's own group. Advertisers without any engagement pay nothing.
func Price(a *domain.Advertiser, m domain.Market, mode domain.Mode) float64 {
	totalSpread := a.TotalSpread()
	if totalSpread <= 0 {
		return 0
	}

	own, other := m.RefB, m.RefA
	if m.A.Contains(a) {
		own, other = m.RefA, m.RefB
	}
	ref := other
	if mode.NonTruthful {
		ref = own
	}

	if mode.Weighted {
		return ref.Value / totalSpread
	}
	return ref.ValuePerEngagement
}

// Eligible reports whether an advertiser valuing an engagement at
// valuePerEngagement accepts price.
func Eligible(price, valuePerEngagement float64) bool {
	return price <= valuePerEngagement+Epsilon
}

// prices computes the price of every advertiser once; prices do not change
// while a market clears.
func prices(advertisers []*domain.Advertiser, m domain.Market, mode domain.Mode) []float64 {
	out := make([]float64, len(advertisers))
	for i, a := range advertisers {
		out[i] = Price(a, m, mode)
	}
	return out
}
