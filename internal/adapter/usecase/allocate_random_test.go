package usecase

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"seeding-auction/internal/core/domain"
)

func randomMarket(refA, refB domain.Reference) domain.Market {
	return domain.Market{
		A:    domain.Group{two(0, 4, 400, 100, 100), two(1, 2, 200, 100, 100)},
		B:    domain.Group{two(2, 3, 300, 100, 100), two(3, 1, 100, 100, 100)},
		RefA: refA,
		RefB: refB,
	}
}

func TestRandomAllocate(t *testing.T) {
	tests := []struct {
		name       string
		mode       domain.Mode
		refA, refB domain.Reference
		want       float64
	}{
		{
			name: "weighted",
			mode: domain.Mode{Weighted: true},
			refA: domain.Reference{ValuePerEngagement: 2.5, Value: 400},
			refB: domain.Reference{ValuePerEngagement: 3.5, Value: 600},
			want: 500,
		},
		{
			name: "unweighted",
			mode: domain.Mode{},
			refA: domain.Reference{ValuePerEngagement: 2.5, Value: 400},
			refB: domain.Reference{ValuePerEngagement: 3.5, Value: 600},
			want: 600,
		},
		{
			name: "weighted non-truthful",
			mode: domain.Mode{Weighted: true, NonTruthful: true},
			refA: domain.Reference{ValuePerEngagement: 3.5, Value: 600},
			refB: domain.Reference{ValuePerEngagement: 2.5, Value: 400},
			want: 500,
		},
		{
			name: "unweighted non-truthful",
			mode: domain.Mode{NonTruthful: true},
			refA: domain.Reference{ValuePerEngagement: 3.5, Value: 600},
			refB: domain.Reference{ValuePerEngagement: 2.5, Value: 400},
			want: 600,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Only one advertiser per side is eligible and each can pay for
			// a single seeder, so every order gives the same revenue.
			for seed := int64(0); seed < 20; seed++ {
				alloc := NewRandomAllocator(rand.New(rand.NewSource(seed)), tt.mode)
				res, err := alloc.Allocate(context.Background(), randomMarket(tt.refA, tt.refB))
				require.NoError(t, err)
				assert.InDelta(t, tt.want, res.Revenue, 1e-4, "seed %d", seed)
				assert.InDelta(t, 700, res.SocialWelfare, 1e-4, "seed %d", seed)
			}
		})
	}
}

func TestRandomAllocateIsReproducible(t *testing.T) {
	market := func() domain.Market {
		return domain.Market{
			A: domain.Group{
				three(0, 1, 200, 300, 100, 10),
				three(1, 2, 150, 100, 300, 10),
			},
			B: domain.Group{
				three(2, 3, 200, 115, 100, 60),
				three(3, 4, 150, 100, 100, 75),
			},
			RefA: domain.Reference{ValuePerEngagement: 1},
			RefB: domain.Reference{ValuePerEngagement: 0.5},
		}
	}
	m := market()

	first, err := NewRandomAllocator(rand.New(rand.NewSource(42)), domain.Mode{}).Allocate(context.Background(), m)
	require.NoError(t, err)
	// Budgets are reset by the second call.
	second, err := NewRandomAllocator(rand.New(rand.NewSource(42)), domain.Mode{}).Allocate(context.Background(), m)
	require.NoError(t, err)
	third, err := NewRandomAllocator(rand.New(rand.NewSource(42)), domain.Mode{}).Allocate(context.Background(), market())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, first, third)
}

func TestRandomAllocateEmptyMarket(t *testing.T) {
	res, err := NewRandomAllocator(rand.New(rand.NewSource(1)), domain.Mode{}).Allocate(context.Background(), domain.Market{})
	require.NoError(t, err)
	assert.Equal(t, domain.Result{}, res)
}

func TestRandomAllocateCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := randomMarket(domain.Reference{ValuePerEngagement: 1}, domain.Reference{ValuePerEngagement: 1})
	_, err := NewRandomAllocator(rand.New(rand.NewSource(1)), domain.Mode{}).Allocate(ctx, m)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProperty_RandomAllocationRespectsBudgets(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		const seeders = 4
		n := rapid.IntRange(1, 6).Draw(t, "advertisers")
		half := rapid.IntRange(0, n).Draw(t, "half")
		var all []*domain.Advertiser
		for i := 0; i < n; i++ {
			spread := make(map[domain.SeederID]float64, seeders)
			for s := 0; s < seeders; s++ {
				spread[domain.SeederID(s)] = rapid.Float64Range(0, 300).Draw(t, "spread")
			}
			all = append(all, domain.NewAdvertiser(i,
				rapid.Float64Range(0.1, 5).Draw(t, "vpe"),
				rapid.Float64Range(0, 1000).Draw(t, "budget"),
				spread))
		}
		mode := domain.Mode{
			Weighted:    rapid.Bool().Draw(t, "weighted"),
			NonTruthful: rapid.Bool().Draw(t, "nonTruthful"),
		}
		market := domain.Market{
			A:    all[:half],
			B:    all[half:],
			RefA: domain.Reference{ValuePerEngagement: rapid.Float64Range(0, 5).Draw(t, "priceA"), Value: rapid.Float64Range(0, 2000).Draw(t, "valueA")},
			RefB: domain.Reference{ValuePerEngagement: rapid.Float64Range(0, 5).Draw(t, "priceB"), Value: rapid.Float64Range(0, 2000).Draw(t, "valueB")},
		}
		seed := rapid.Int64().Draw(t, "seed")

		res, err := NewRandomAllocator(rand.New(rand.NewSource(seed)), mode).Allocate(context.Background(), market)
		if err != nil {
			t.Fatalf("allocate: %v", err)
		}
		var spent float64
		for _, a := range all {
			if a.RemainingBudget < 0 || a.RemainingBudget > a.Budget {
				t.Fatalf("advertiser %d remaining %v of %v", a.ID, a.RemainingBudget, a.Budget)
			}
			spent += a.Budget - a.RemainingBudget
		}
		if math.Abs(spent-res.Revenue) > 1e-6 {
			t.Fatalf("revenue %v, budgets spent %v", res.Revenue, spent)
		}
	})
}
