package usecase

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"seeding-auction/internal/adapter/csvio"
	"seeding-auction/internal/adapter/solver"
	"seeding-auction/internal/core/domain"
	"seeding-auction/internal/core/port"
	"seeding-auction/internal/core/port/mocks"
)

func three(id int, valuePerEngagement, budget, s1, s2, s3 float64) *domain.Advertiser {
	return domain.NewAdvertiser(id, valuePerEngagement, budget, map[domain.SeederID]float64{1: s1, 2: s2, 3: s3})
}

func exactMarket(refA, refB domain.Reference) domain.Market {
	return domain.Market{
		A:    domain.Group{three(0, 1, 200, 300, 100, 10), three(1, 2, 150, 100, 300, 10)},
		B:    domain.Group{three(2, 3, 200, 115, 100, 60), three(3, 4, 150, 100, 100, 75)},
		RefA: refA,
		RefB: refB,
	}
}

func TestExactAllocate(t *testing.T) {
	tests := []struct {
		name       string
		mode       domain.Mode
		refA, refB domain.Reference
	}{
		{"unweighted", domain.Mode{}, domain.Reference{ValuePerEngagement: 2}, domain.Reference{ValuePerEngagement: 1}},
		{"weighted", domain.Mode{Weighted: true}, domain.Reference{Value: 550}, domain.Reference{Value: 410}},
		{"unweighted non-truthful", domain.Mode{NonTruthful: true}, domain.Reference{ValuePerEngagement: 1}, domain.Reference{ValuePerEngagement: 2}},
		{"weighted non-truthful", domain.Mode{Weighted: true, NonTruthful: true}, domain.Reference{Value: 410}, domain.Reference{Value: 550}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exact := NewExactAllocator(solver.NewBranchAndBound(solver.DefaultOptions()), tt.mode, 0, discard)

			res, err := exact.Allocate(context.Background(), exactMarket(tt.refA, tt.refB))
			require.NoError(t, err)
			assert.InDelta(t, 450, res.Revenue, 1e-4)
			// s1 → a2, s2 → b1, s3 → b2 is the only assignment reaching 450.
			assert.InDelta(t, 800, res.SocialWelfare, 1e-4)
		})
	}
}

func TestExactAllocateIsRepeatable(t *testing.T) {
	exact := NewExactAllocator(solver.NewBranchAndBound(solver.DefaultOptions()), domain.Mode{}, 0, discard)
	market := exactMarket(domain.Reference{ValuePerEngagement: 2}, domain.Reference{ValuePerEngagement: 1})

	first, err := exact.Allocate(context.Background(), market)
	require.NoError(t, err)
	second, err := exact.Allocate(context.Background(), market)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestExactAllocateEmptyMarket(t *testing.T) {
	// The solver must not be consulted.
	exact := NewExactAllocator(mocks.NewMockSolver(t), domain.Mode{}, 0, discard)

	res, err := exact.Allocate(context.Background(), domain.Market{})
	require.NoError(t, err)
	assert.Equal(t, domain.Result{}, res)
}

func TestExactAllocateNoEligibleAdvertiser(t *testing.T) {
	exact := NewExactAllocator(mocks.NewMockSolver(t), domain.Mode{}, 0, discard)
	market := domain.Market{
		A:    domain.Group{three(0, 1, 200, 300, 100, 10)},
		B:    domain.Group{three(1, 1, 200, 300, 100, 10)},
		RefA: domain.Reference{ValuePerEngagement: 5},
		RefB: domain.Reference{ValuePerEngagement: 5},
	}

	res, err := exact.Allocate(context.Background(), market)
	require.NoError(t, err)
	assert.Equal(t, domain.Result{}, res)
}

func TestExactAllocateSolverFailure(t *testing.T) {
	s := mocks.NewMockSolver(t)
	s.EXPECT().Solve(mock.Anything, mock.Anything).Return(nil, errors.New("out of memory"))
	exact := NewExactAllocator(s, domain.Mode{}, 0.05, discard)
	market := exactMarket(domain.Reference{ValuePerEngagement: 2}, domain.Reference{ValuePerEngagement: 1})

	res, err := exact.Allocate(context.Background(), market)
	assert.ErrorIs(t, err, port.ErrSolverFailure)
	assert.Equal(t, domain.Result{}, res)
	for _, a := range market.Advertisers() {
		assert.Equal(t, a.Budget, a.RemainingBudget)
	}
}

func TestExactAllocatePassesGapAndShape(t *testing.T) {
	s := mocks.NewMockSolver(t)
	s.EXPECT().Solve(mock.Anything, mock.Anything).
		RunAndReturn(func(_ context.Context, p *port.Problem) (*port.Solution, error) {
			// 3 seeders × 4 eligible advertisers, one row per seeder and
			// one per advertiser.
			assert.Equal(t, 12, p.NumVars)
			assert.Len(t, p.Constraints, 7)
			assert.Equal(t, 0.25, p.RelativeGap)
			return &port.Solution{Values: make([]float64, p.NumVars)}, nil
		})
	exact := NewExactAllocator(s, domain.Mode{}, 0.25, discard)

	res, err := exact.Allocate(context.Background(), exactMarket(domain.Reference{ValuePerEngagement: 2}, domain.Reference{ValuePerEngagement: 1}))
	require.NoError(t, err)
	assert.Equal(t, domain.Result{}, res)
}

func TestExactAllocateLogsSearchStatistics(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	exact := NewExactAllocator(solver.NewBranchAndBound(solver.DefaultOptions()), domain.Mode{}, 0, logger)

	_, err := exact.Allocate(context.Background(), exactMarket(domain.Reference{ValuePerEngagement: 2}, domain.Reference{ValuePerEngagement: 1}))
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, `msg="assignment solved"`)
	for _, key := range []string{"objective=", "bound=", "gap=", "nodes=", "limit="} {
		assert.Contains(t, out, key)
	}
}

func TestExactAllocateRejectsShortSolution(t *testing.T) {
	s := mocks.NewMockSolver(t)
	s.EXPECT().Solve(mock.Anything, mock.Anything).Return(&port.Solution{Values: []float64{1}}, nil)
	exact := NewExactAllocator(s, domain.Mode{}, 0, discard)
	market := exactMarket(domain.Reference{ValuePerEngagement: 2}, domain.Reference{ValuePerEngagement: 1})

	res, err := exact.Allocate(context.Background(), market)
	assert.ErrorIs(t, err, port.ErrSolverFailure)
	assert.ErrorContains(t, err, "1 values for 12 variables")
	assert.Equal(t, domain.Result{}, res)
	assert.Equal(t, 1, exact.Failures())
	for _, a := range market.Advertisers() {
		assert.Equal(t, a.Budget, a.RemainingBudget)
	}
}

// syntheticMarket loads a generated data set of n advertisers and n seeders
// and splits it into two groups priced by the closed-form search.
func syntheticMarket(t *testing.T, n int, seed int64, weighted bool) domain.Market {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, csvio.Generate(dir, "spread.csv", "adv.csv", csvio.DefaultSynthetic(n, seed)))
	pool, err := csvio.NewLoader(dir, "spread.csv", "adv.csv", false).Load(context.Background())
	require.NoError(t, err)

	a, b := SplitGroups(pool.Advertisers(), rand.New(rand.NewSource(seed)))
	price := UnweightedMonopolyPrice
	if weighted {
		price = WeightedMonopolyPrice
	}
	return domain.Market{A: a, B: b, RefA: price(a), RefB: price(b)}
}

func TestExactAllocateSyntheticMarketClosesGap(t *testing.T) {
	for _, n := range []int{24, 40} {
		for _, mode := range []domain.Mode{{Weighted: true}, {}, {Weighted: true, NonTruthful: true}, {NonTruthful: true}} {
			market := syntheticMarket(t, n, int64(n), mode.Weighted)

			var (
				problem *port.Problem
				last    *port.Solution
			)
			bb := solver.NewBranchAndBound(solver.DefaultOptions())
			s := mocks.NewMockSolver(t)
			s.EXPECT().Solve(mock.Anything, mock.Anything).
				RunAndReturn(func(ctx context.Context, p *port.Problem) (*port.Solution, error) {
					sol, err := bb.Solve(ctx, p)
					problem, last = p, sol
					return sol, err
				}).Maybe()

			res, err := NewExactAllocator(s, mode, 0.05, discard).Allocate(context.Background(), market)
			require.NoError(t, err, "n=%d mode=%+v", n, mode)

			var spent float64
			for _, a := range market.Advertisers() {
				assert.GreaterOrEqual(t, a.RemainingBudget, -1e-6, "advertiser %d", a.ID)
				spent += a.Budget - a.RemainingBudget
			}
			assert.InDelta(t, res.Revenue, spent, 1e-6)
			if last == nil {
				assert.Zero(t, res.Revenue)
				continue
			}
			assert.NoError(t, last.Limit, "n=%d mode=%+v", n, mode)
			assert.LessOrEqual(t, last.Bound, last.Objective*1.05+1e-6)
			assert.InDelta(t, last.Objective, res.Revenue, 1e-6)

			seeders := len(domain.Seeders(market.Advertisers()))
			bidders := problem.NumVars / seeders
			for seeder := 0; seeder < seeders; seeder++ {
				var assigned int
				for b := 0; b < bidders; b++ {
					if math.Abs(last.Values[assignmentVar(seeder, b, bidders)]-1) <= Epsilon {
						assigned++
					}
				}
				assert.LessOrEqual(t, assigned, 1, "seeder %d", seeder)
			}
		}
	}
}

func TestProperty_ExactAllocationRespectsBudgetsAndSeeders(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		const seeders = 3
		n := rapid.IntRange(1, 4).Draw(t, "advertisers")
		half := rapid.IntRange(0, n).Draw(t, "half")
		var all []*domain.Advertiser
		for i := 0; i < n; i++ {
			spread := make(map[domain.SeederID]float64, seeders)
			for s := 0; s < seeders; s++ {
				spread[domain.SeederID(s)] = float64(rapid.IntRange(0, 300).Draw(t, "spread"))
			}
			all = append(all, domain.NewAdvertiser(i,
				float64(rapid.IntRange(1, 5).Draw(t, "vpe")),
				float64(rapid.IntRange(0, 1000).Draw(t, "budget")),
				spread))
		}
		mode := domain.Mode{
			Weighted:    rapid.Bool().Draw(t, "weighted"),
			NonTruthful: rapid.Bool().Draw(t, "nonTruthful"),
		}
		market := domain.Market{
			A: all[:half],
			B: all[half:],
			RefA: domain.Reference{
				ValuePerEngagement: float64(rapid.IntRange(0, 5).Draw(t, "priceA")),
				Value:              float64(rapid.IntRange(0, 2000).Draw(t, "valueA")),
			},
			RefB: domain.Reference{
				ValuePerEngagement: float64(rapid.IntRange(0, 5).Draw(t, "priceB")),
				Value:              float64(rapid.IntRange(0, 2000).Draw(t, "valueB")),
			},
		}

		var values []float64
		bb := solver.NewBranchAndBound(solver.DefaultOptions())
		exact := NewExactAllocator(recordingSolver{bb, &values}, mode, 0, discard)
		res, err := exact.Allocate(context.Background(), market)
		if err != nil {
			t.Fatalf("allocate: %v", err)
		}

		var spent float64
		for _, a := range all {
			if a.RemainingBudget < -1e-6 {
				t.Fatalf("advertiser %d overspent: remaining %v", a.ID, a.RemainingBudget)
			}
			spent += a.Budget - a.RemainingBudget
		}
		if math.Abs(spent-res.Revenue) > 1e-6 {
			t.Fatalf("revenue %v, budgets spent %v", res.Revenue, spent)
		}
		if len(values) == 0 {
			return
		}
		bidders := len(values) / seeders
		for s := 0; s < seeders; s++ {
			var assigned int
			for b := 0; b < bidders; b++ {
				if math.Abs(values[assignmentVar(s, b, bidders)]-1) <= Epsilon {
					assigned++
				}
			}
			if assigned > 1 {
				t.Fatalf("seeder %d assigned %d times", s, assigned)
			}
		}
	})
}

// recordingSolver keeps the values of the last solution.
type recordingSolver struct {
	port.Solver
	values *[]float64
}

func (r recordingSolver) Solve(ctx context.Context, p *port.Problem) (*port.Solution, error) {
	sol, err := r.Solver.Solve(ctx, p)
	if err == nil {
		*r.values = sol.Values
	}
	return sol, err
}
