package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"seeding-auction/internal/core/domain"
	"seeding-auction/internal/core/port"
)

// ExactAllocator clears a market by solving the revenue-maximising assignment
// of seeders to eligible advertisers as a binary integer program.
type ExactAllocator struct {
	solver port.Solver
	mode   domain.Mode
	// gap is the accepted relative distance from the optimum.
	gap    float64
	logger *slog.Logger
	// failures counts solves that ended in ErrSolverFailure.
	failures int
}

// NewExactAllocator creates an allocator pricing with mode and solving with
// solver up to the relative optimality gap.
func NewExactAllocator(solver port.Solver, mode domain.Mode, gap float64, logger *slog.Logger) *ExactAllocator {
	return &ExactAllocator{solver: solver, mode: mode, gap: gap, logger: logger}
}

// Allocate implements port.Allocator. A solver error yields a zero result and
// an error wrapping port.ErrSolverFailure; budgets are then left as reset.
func (e *ExactAllocator) Allocate(ctx context.Context, m domain.Market) (domain.Result, error) {
	return e.allocate(ctx, m, e.mode)
}

// bidder is an eligible advertiser with its price.
type bidder struct {
	adv   *domain.Advertiser
	price float64
}

func (e *ExactAllocator) allocate(ctx context.Context, m domain.Market, mode domain.Mode) (domain.Result, error) {
	m.ResetBudgets()
	advertisers := m.Advertisers()
	if len(advertisers) == 0 {
		return domain.Result{}, nil
	}

	var eligible []bidder
	for i, price := range prices(advertisers, m, mode) {
		if Eligible(price, advertisers[i].ValuePerEngagement) {
			eligible = append(eligible, bidder{adv: advertisers[i], price: price})
		}
	}
	seeders := domain.Seeders(advertisers)
	if len(eligible) == 0 || len(seeders) == 0 {
		return domain.Result{}, nil
	}

	problem := buildAssignment(seeders, eligible, e.gap)
	sol, err := e.solver.Solve(ctx, problem)
	if err == nil && len(sol.Values) != problem.NumVars {
		err = fmt.Errorf("%d values for %d variables", len(sol.Values), problem.NumVars)
	}
	if err != nil {
		e.failures++
		e.logger.Error("solver reported an error",
			slog.Int("advertisers", len(advertisers)),
			slog.Int("eligible", len(eligible)),
			slog.Int("seeders", len(seeders)),
			slog.Any("error", err))
		return domain.Result{}, fmt.Errorf("%w: %w", port.ErrSolverFailure, err)
	}
	e.logger.Debug("assignment solved",
		slog.Int("eligible", len(eligible)),
		slog.Int("seeders", len(seeders)),
		slog.Float64("objective", sol.Objective),
		slog.Float64("bound", sol.Bound),
		slog.Float64("gap", relativeGap(sol.Objective, sol.Bound)),
		slog.Int("nodes", sol.Nodes),
		slog.Any("limit", sol.Limit))

	var res domain.Result
	for s, seeder := range seeders {
		for b, bd := range eligible {
			if math.Abs(sol.Values[assignmentVar(s, b, len(eligible))]-1) > Epsilon {
				continue
			}
			quantity := bd.adv.Spread[seeder]
			payment := bd.price * quantity
			bd.adv.RemainingBudget -= payment
			res.Revenue += payment
			res.SocialWelfare += bd.adv.ValuePerEngagement * quantity
		}
	}
	return res, nil
}

// Failures returns the number of solves that failed so far.
func (e *ExactAllocator) Failures() int { return e.failures }

// relativeGap is the distance between objective and bound relative to the
// objective; zero when both are zero.
func relativeGap(objective, bound float64) float64 {
	if bound <= objective {
		return 0
	}
	if objective == 0 {
		return math.Inf(1)
	}
	return (bound - objective) / math.Abs(objective)
}

// assignmentVar is the variable deciding whether seeder s goes to bidder b.
func assignmentVar(s, b, bidders int) int {
	return s*bidders + b
}

// buildAssignment formulates: every seeder goes to at most one bidder, no
// bidder pays more than its budget, and revenue is maximised.
func buildAssignment(seeders []domain.SeederID, bidders []bidder, gap float64) *port.Problem {
	p := port.NewProblem(len(seeders)*len(bidders), gap)

	for s := range seeders {
		terms := make([]port.Term, len(bidders))
		for b := range bidders {
			terms[b] = port.Term{Var: assignmentVar(s, b, len(bidders)), Coef: 1}
		}
		p.AddConstraint(terms, 1)
	}

	for b, bd := range bidders {
		terms := make([]port.Term, 0, len(seeders))
		for s, seeder := range seeders {
			payment := bd.price * bd.adv.Spread[seeder]
			v := assignmentVar(s, b, len(bidders))
			p.SetObjective(v, payment)
			terms = append(terms, port.Term{Var: v, Coef: payment})
		}
		p.AddConstraint(terms, bd.adv.Budget)
	}
	return p
}

var _ port.Allocator = (*ExactAllocator)(nil)
