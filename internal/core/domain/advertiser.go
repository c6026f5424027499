package domain

import "slices"

// SeederID identifies a seeder. A seeder is not an object of its own, only a
// key shared by the spread mappings of all advertisers.
type SeederID int

// Advertiser is a bidder holding a per-engagement valuation, a budget and the
// engagement every seeder would deliver to it. Advertisers are owned by a Pool
// which assigns the ID; only RemainingBudget changes during an allocation run.
type Advertiser struct {
	ID                 int
	ValuePerEngagement float64
	Budget             float64
	RemainingBudget    float64
	Spread             map[SeederID]float64
}

// NewAdvertiser copies spread so the caller may reuse its map.
func NewAdvertiser(id int, valuePerEngagement, budget float64, spread map[SeederID]float64) *Advertiser {
	a := &Advertiser{
		ID:                 id,
		ValuePerEngagement: valuePerEngagement,
		Budget:             budget,
		Spread:             make(map[SeederID]float64, len(spread)),
	}
	for s, q := range spread {
		a.Spread[s] = q
	}
	a.ResetRemainingBudget()
	return a
}

// ResetRemainingBudget restores the full budget before an allocation run.
func (a *Advertiser) ResetRemainingBudget() {
	a.RemainingBudget = a.Budget
}

// TotalSpread sums the engagement over all seeders. Seeders are summed in
// ascending order so the result does not depend on map iteration.
func (a *Advertiser) TotalSpread() float64 {
	var total float64
	for _, s := range a.Seeders() {
		total += a.Spread[s]
	}
	return total
}

// Value is the aggregate value of the advertiser over all seeders.
func (a *Advertiser) Value() float64 {
	return a.ValuePerEngagement * a.TotalSpread()
}

// Seeders returns the advertiser's seeder keys in ascending order.
func (a *Advertiser) Seeders() []SeederID {
	seeders := make([]SeederID, 0, len(a.Spread))
	for s := range a.Spread {
		seeders = append(seeders, s)
	}
	slices.Sort(seeders)
	return seeders
}

// Clone returns an advertiser with identical parameters under a new id.
func (a *Advertiser) Clone(id int) *Advertiser {
	return NewAdvertiser(id, a.ValuePerEngagement, a.Budget, a.Spread)
}
