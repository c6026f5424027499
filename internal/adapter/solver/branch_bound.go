// Package solver provides a branch-and-bound backend for port.Solver.
//
// The search handles packing programs: maximise c·x subject to A·x ≤ b with
// c, A ≥ 0 and x binary. The seeder assignment problem is of this form.
//
//  1. Validation rejects negative or non-finite data and maps every
//     constraint to a row with duplicate terms merged.
//  2. The rows are split into a kept family of pairwise disjoint rows and
//     the dualized rest. Multipliers for the dualized rows are tuned at the
//     root by subgradient steps on the Lagrangian of the LP relaxation.
//  3. Greedy passes (by objective, then by reduced cost) seed the incumbent.
//  4. DFS fixes variables by descending reduced cost, trying x=1 before
//     x=0. Variables that can no longer be set are skipped without a node.
//  5. Bound: with the root multipliers, every kept row is a fractional
//     knapsack over reduced costs and every other open variable counts its
//     positive reduced cost. A second family of disjoint rows, taken from
//     the dualized ones, gives a knapsack bound over the plain objective.
//     The smaller one is used and a node is pruned when
//     bound ≤ incumbent + gap·|incumbent| + eps.
//  6. Limits (nodes, wall clock) stop the search with the incumbent; context
//     cancellation aborts it. Limits and context are checked sparsely.
package solver

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"seeding-auction/internal/core/port"
)

// BranchAndBound solves packing integer programs exactly up to the requested
// relative gap.
type BranchAndBound struct {
	opts Options
}

// NewBranchAndBound creates a solver bounded by opts.
func NewBranchAndBound(opts Options) *BranchAndBound {
	if opts.Eps <= 0 {
		opts.Eps = DefaultOptions().Eps
	}
	return &BranchAndBound{opts: opts}
}

var _ port.Solver = (*BranchAndBound)(nil)

// entry is one non-zero coefficient: variable or row index plus coefficient.
type entry struct {
	idx  int
	coef float64
}

type row struct {
	terms    []entry // merged; kept rows are sorted by reduced ratio
	residual float64
}

type bbEngine struct {
	n    int
	obj  []float64
	rows []row
	cols [][]entry // per variable: (row, coef)

	order []int // branching order
	pos   []int // pos[v] = index of v in order

	kept      []int     // pairwise disjoint rows solved inside the bound
	dual      []int     // rows moved into the objective
	keptRow   []int     // keptRow[v] = kept row holding v, or -1
	second    []int     // disjoint dualized rows, bounded as knapsacks
	secondRow []int     // secondRow[v] = second-family row holding v, or -1
	y         []float64 // multiplier per row, zero for kept rows
	rc        []float64 // reduced objective c - yᵀA
	root      float64   // bound at the root

	x     []bool
	value float64

	best      []bool
	bestValue float64
	maxPruned float64

	gap float64
	eps float64

	ctx         context.Context
	maxNodes    int
	nodes       int
	useDeadline bool
	deadline    time.Time
	stop        error
}

// Solve implements port.Solver.
func (s *BranchAndBound) Solve(ctx context.Context, p *port.Problem) (*port.Solution, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e := &bbEngine{
		ctx:      ctx,
		gap:      math.Max(p.RelativeGap, 0),
		eps:      s.opts.Eps,
		maxNodes: s.opts.MaxNodes,
	}
	if s.opts.TimeLimit > 0 {
		e.useDeadline = true
		e.deadline = time.Now().Add(s.opts.TimeLimit)
	}
	if err := e.load(p); err != nil {
		return nil, err
	}
	e.buildOrder(e.obj)
	e.greedy()
	e.tuneMultipliers()
	e.buildOrder(e.rc)
	e.greedy()

	e.dfs(0)
	var limit error
	switch {
	case e.stop == nil:
	case errors.Is(e.stop, ErrNodeLimit), errors.Is(e.stop, ErrTimeLimit):
		limit = e.stop
	default:
		return nil, e.stop
	}

	values := make([]float64, e.n)
	for v, set := range e.best {
		if set {
			values[v] = 1
		}
	}
	bound := math.Max(e.bestValue, e.maxPruned)
	if limit != nil {
		bound = math.Max(e.bestValue, e.root)
	}
	return &port.Solution{
		Values:    values,
		Objective: e.bestValue,
		Bound:     bound,
		Nodes:     e.nodes,
		Limit:     limit,
	}, nil
}

// load validates p and builds rows and columns.
func (e *bbEngine) load(p *port.Problem) error {
	if p.NumVars < 0 || len(p.Objective) != p.NumVars {
		return fmt.Errorf("%w: %d objective coefficients for %d variables", ErrDimensionMismatch, len(p.Objective), p.NumVars)
	}
	e.n = p.NumVars
	e.obj = make([]float64, e.n)
	for v, c := range p.Objective {
		if !finiteNonNegative(c) {
			return fmt.Errorf("%w: objective coefficient %v of variable %d", ErrUnsupportedProblem, c, v)
		}
		e.obj[v] = c
	}

	e.cols = make([][]entry, e.n)
	e.rows = make([]row, 0, len(p.Constraints))
	for k, c := range p.Constraints {
		if math.IsNaN(c.Bound) || math.IsInf(c.Bound, -1) {
			return fmt.Errorf("%w: bound %v of constraint %d", ErrUnsupportedProblem, c.Bound, k)
		}
		if c.Bound < -e.eps {
			return fmt.Errorf("%w: constraint %d has bound %v", ErrInfeasible, k, c.Bound)
		}
		merged := make(map[int]float64, len(c.Terms))
		for _, t := range c.Terms {
			if t.Var < 0 || t.Var >= e.n {
				return fmt.Errorf("%w: constraint %d references variable %d", ErrDimensionMismatch, k, t.Var)
			}
			if !finiteNonNegative(t.Coef) {
				return fmt.Errorf("%w: coefficient %v in constraint %d", ErrUnsupportedProblem, t.Coef, k)
			}
			merged[t.Var] += t.Coef
		}
		r := row{residual: c.Bound, terms: make([]entry, 0, len(merged))}
		for v, coef := range merged {
			r.terms = append(r.terms, entry{idx: v, coef: coef})
		}
		slices.SortFunc(r.terms, func(a, b entry) int { return cmp.Compare(a.idx, b.idx) })
		for _, t := range r.terms {
			e.cols[t.idx] = append(e.cols[t.idx], entry{idx: len(e.rows), coef: t.coef})
		}
		e.rows = append(e.rows, r)
	}
	e.splitRows()
	return nil
}

// buildOrder sorts variables by descending key, then descending objective,
// then index.
func (e *bbEngine) buildOrder(key []float64) {
	if e.order == nil {
		e.order = make([]int, e.n)
		e.pos = make([]int, e.n)
		e.x = make([]bool, e.n)
		e.best = make([]bool, e.n)
	}
	for v := range e.order {
		e.order[v] = v
	}
	slices.SortFunc(e.order, func(a, b int) int {
		if c := cmp.Compare(key[b], key[a]); c != 0 {
			return c
		}
		if c := cmp.Compare(e.obj[b], e.obj[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	for i, v := range e.order {
		e.pos[v] = i
	}
}

// greedy sets variables in branching order while they fit, keeps the result
// if it beats the incumbent and leaves the state cleared.
func (e *bbEngine) greedy() {
	for _, v := range e.order {
		if e.obj[v] > 0 && e.fits(v) {
			e.set(v)
		}
	}
	if e.value > e.bestValue+e.eps {
		e.commit()
	}
	for _, v := range e.order {
		if e.x[v] {
			e.unset(v)
		}
	}
	e.value = 0
}

func (e *bbEngine) fits(v int) bool {
	for _, c := range e.cols[v] {
		if c.coef > e.rows[c.idx].residual+e.eps {
			return false
		}
	}
	return true
}

func (e *bbEngine) set(v int) {
	e.x[v] = true
	e.value += e.obj[v]
	for _, c := range e.cols[v] {
		e.rows[c.idx].residual -= c.coef
	}
}

func (e *bbEngine) unset(v int) {
	e.x[v] = false
	e.value -= e.obj[v]
	for _, c := range e.cols[v] {
		e.rows[c.idx].residual += c.coef
	}
}

func (e *bbEngine) commit() {
	copy(e.best, e.x)
	e.bestValue = e.value
}

// open reports whether v is still free at depth and could be set to 1.
func (e *bbEngine) open(v, depth int) bool {
	return e.pos[v] >= depth && e.obj[v] > 0 && e.fits(v)
}

// bound is an upper bound on every completion of the current node.
func (e *bbEngine) bound(depth int) float64 {
	var free float64
	for _, v := range e.order[depth:] {
		if e.obj[v] > 0 && e.fits(v) {
			free += e.obj[v]
		}
	}
	b := math.Min(e.value+free, e.lagrangian(depth, nil))
	if len(e.second) > 0 {
		b = math.Min(b, e.familyBound(depth))
	}
	return b
}

// pruneLevel is the bound at or below which a node cannot improve the
// incumbent by more than the accepted gap.
func (e *bbEngine) pruneLevel() float64 {
	return e.bestValue + e.gap*math.Abs(e.bestValue) + e.eps
}

// checkpoint counts the node and tests limits; limit tests other than the
// node cap run every 4096 nodes.
func (e *bbEngine) checkpoint() bool {
	e.nodes++
	if e.maxNodes > 0 && e.nodes > e.maxNodes {
		e.stop = ErrNodeLimit
		return true
	}
	if e.nodes&4095 != 0 {
		return false
	}
	if err := e.ctx.Err(); err != nil {
		e.stop = err
		return true
	}
	if e.useDeadline && time.Now().After(e.deadline) {
		e.stop = ErrTimeLimit
		return true
	}
	return false
}

func (e *bbEngine) dfs(depth int) {
	for depth < e.n && !e.open(e.order[depth], depth) {
		depth++
	}
	if e.stop != nil || e.checkpoint() {
		return
	}
	if e.value > e.bestValue+e.eps {
		e.commit()
	}
	if depth == e.n {
		return
	}
	if b := e.bound(depth); b <= e.pruneLevel() {
		if b > e.maxPruned {
			e.maxPruned = b
		}
		return
	}

	v := e.order[depth]
	e.set(v)
	e.dfs(depth + 1)
	e.unset(v)
	if e.stop != nil {
		return
	}
	e.dfs(depth + 1)
}

func finiteNonNegative(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0) && x >= 0
}
