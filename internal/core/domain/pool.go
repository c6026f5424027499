package domain

import "slices"

// Pool owns every advertiser of a run and hands out their ids. An advertiser's
// id is its index in the pool.
type Pool struct {
	advertisers []*Advertiser
}

// Add creates an advertiser with the next free id.
func (p *Pool) Add(valuePerEngagement, budget float64, spread map[SeederID]float64) *Advertiser {
	a := NewAdvertiser(len(p.advertisers), valuePerEngagement, budget, spread)
	p.advertisers = append(p.advertisers, a)
	return a
}

// Len returns the number of advertisers.
func (p *Pool) Len() int { return len(p.advertisers) }

// At returns the advertiser with the given id.
func (p *Pool) At(id int) *Advertiser { return p.advertisers[id] }

// Advertisers returns a copy of the advertiser list. Reordering the copy does
// not affect the pool.
func (p *Pool) Advertisers() []*Advertiser {
	return slices.Clone(p.advertisers)
}

// Seeders returns the seeder universe of the given advertisers, i.e. the union
// of their spread keys, in ascending order.
func Seeders(advertisers []*Advertiser) []SeederID {
	seen := make(map[SeederID]struct{})
	var seeders []SeederID
	for _, a := range advertisers {
		for s := range a.Spread {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			seeders = append(seeders, s)
		}
	}
	slices.Sort(seeders)
	return seeders
}
