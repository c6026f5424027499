package solver

import (
	"cmp"
	"math"
	"slices"
)

// Subgradient schedule for the root multipliers.
const (
	subgradientIterations = 200
	subgradientStall      = 5
	minStepScale          = 1e-4
	roundingEvery         = 10
)

// splitRows keeps rows in input order while they share no variable with an
// already kept row; every other row is dualized. The dualized rows get the
// same first-fit split into a second disjoint family, bounded on its own
// without multipliers.
func (e *bbEngine) splitRows() {
	e.keptRow = make([]int, e.n)
	for v := range e.keptRow {
		e.keptRow[v] = -1
	}
	e.y = make([]float64, len(e.rows))
	e.rc = slices.Clone(e.obj)
	e.kept, e.dual = e.kept[:0], e.dual[:0]

	for k := range e.rows {
		disjoint := true
		for _, t := range e.rows[k].terms {
			if e.keptRow[t.idx] >= 0 {
				disjoint = false
				break
			}
		}
		if !disjoint {
			e.dual = append(e.dual, k)
			continue
		}
		for _, t := range e.rows[k].terms {
			e.keptRow[t.idx] = k
		}
		e.kept = append(e.kept, k)
	}

	e.secondRow = make([]int, e.n)
	for v := range e.secondRow {
		e.secondRow[v] = -1
	}
	e.second = e.second[:0]
	for _, k := range e.dual {
		disjoint := true
		for _, t := range e.rows[k].terms {
			if e.secondRow[t.idx] >= 0 {
				disjoint = false
				break
			}
		}
		if !disjoint {
			continue
		}
		for _, t := range e.rows[k].terms {
			e.secondRow[t.idx] = k
		}
		e.second = append(e.second, k)
	}
	for _, k := range e.second {
		slices.SortFunc(e.rows[k].terms, func(a, b entry) int {
			if c := cmp.Compare(e.objectiveRatio(b), e.objectiveRatio(a)); c != 0 {
				return c
			}
			return cmp.Compare(a.idx, b.idx)
		})
	}
}

func (e *bbEngine) objectiveRatio(t entry) float64 {
	if t.coef <= e.eps {
		return math.Inf(1)
	}
	return e.obj[t.idx] / t.coef
}

// familyBound returns value plus a fractional knapsack over the objective in
// every row of the second family and the objective of every other open
// variable.
func (e *bbEngine) familyBound(depth int) float64 {
	total := e.value
	for _, k := range e.second {
		r := &e.rows[k]
		capacity := r.residual
		for _, t := range r.terms {
			if !e.open(t.idx, depth) {
				continue
			}
			switch {
			case t.coef <= e.eps:
				total += e.obj[t.idx]
			case capacity <= 0:
			case t.coef <= capacity:
				total += e.obj[t.idx]
				capacity -= t.coef
			default:
				total += e.obj[t.idx] * capacity / t.coef
				capacity = 0
			}
		}
	}
	for _, v := range e.order[depth:] {
		if e.secondRow[v] < 0 && e.open(v, depth) {
			total += e.obj[v]
		}
	}
	return total
}

// applyMultipliers recomputes reduced costs from y and re-sorts the kept rows
// by reduced cost per unit of capacity.
func (e *bbEngine) applyMultipliers() {
	copy(e.rc, e.obj)
	for _, k := range e.dual {
		if e.y[k] == 0 {
			continue
		}
		for _, t := range e.rows[k].terms {
			e.rc[t.idx] -= e.y[k] * t.coef
		}
	}
	for _, k := range e.kept {
		slices.SortFunc(e.rows[k].terms, func(a, b entry) int {
			if c := cmp.Compare(e.reducedRatio(b), e.reducedRatio(a)); c != 0 {
				return c
			}
			return cmp.Compare(a.idx, b.idx)
		})
	}
}

// reducedRatio orders kept-row terms; zero-capacity terms with a positive
// reduced cost come first and non-positive reduced costs come last.
func (e *bbEngine) reducedRatio(t entry) float64 {
	rc := e.rc[t.idx]
	switch {
	case rc <= 0:
		return math.Inf(-1)
	case t.coef <= e.eps:
		return math.Inf(1)
	default:
		return rc / t.coef
	}
}

// lagrangian returns value + L(y) over the variables still open at depth:
// Σ y·residual over dualized rows, a fractional knapsack over reduced costs
// in every kept row, and the positive reduced cost of every other open
// variable. It bounds every completion for any y ≥ 0. When xs is not nil it
// receives the maximising fractional point.
func (e *bbEngine) lagrangian(depth int, xs []float64) float64 {
	total := e.value
	for _, k := range e.dual {
		total += e.y[k] * e.rows[k].residual
	}

	for _, k := range e.kept {
		r := &e.rows[k]
		capacity := r.residual
		for _, t := range r.terms {
			rc := e.rc[t.idx]
			if rc <= 0 {
				break
			}
			if !e.open(t.idx, depth) {
				continue
			}
			switch {
			case t.coef <= e.eps:
				total += rc
				setFraction(xs, t.idx, 1)
			case capacity <= 0:
			case t.coef <= capacity:
				total += rc
				capacity -= t.coef
				setFraction(xs, t.idx, 1)
			default:
				total += rc * capacity / t.coef
				setFraction(xs, t.idx, capacity/t.coef)
				capacity = 0
			}
		}
	}

	for _, v := range e.order[depth:] {
		if e.keptRow[v] >= 0 || e.rc[v] <= 0 || !e.open(v, depth) {
			continue
		}
		total += e.rc[v]
		setFraction(xs, v, 1)
	}
	return total
}

func setFraction(xs []float64, v int, f float64) {
	if xs != nil {
		xs[v] = f
	}
}

// tuneMultipliers runs Polyak subgradient steps on the dualized rows at the
// root, keeps the multipliers of the lowest bound and rounds the relaxation
// into incumbents along the way.
func (e *bbEngine) tuneMultipliers() {
	e.applyMultipliers()
	e.root = e.lagrangian(0, nil)
	if len(e.second) > 0 {
		e.root = math.Min(e.root, e.familyBound(0))
	}
	if len(e.dual) == 0 || e.root <= e.pruneLevel() {
		return
	}

	bestY := slices.Clone(e.y)
	xs := make([]float64, e.n)
	g := make([]float64, len(e.rows))
	scale := 2.0
	stall := 0

	for it := 0; it < subgradientIterations; it++ {
		clear(xs)
		l := e.lagrangian(0, xs)
		if l < e.root-e.eps {
			e.root = l
			copy(bestY, e.y)
			stall = 0
		} else {
			stall++
			if stall >= subgradientStall {
				scale /= 2
				stall = 0
			}
		}
		if it%roundingEvery == roundingEvery-1 {
			e.buildOrder(e.rc)
			e.greedy()
		}
		if e.root <= e.pruneLevel() || scale < minStepScale {
			break
		}

		var norm float64
		for _, k := range e.dual {
			lhs := 0.0
			for _, t := range e.rows[k].terms {
				lhs += t.coef * xs[t.idx]
			}
			g[k] = e.rows[k].residual - lhs
			if g[k] < 0 || e.y[k] > 0 {
				norm += g[k] * g[k]
			}
		}
		if norm <= e.eps {
			break
		}
		step := scale * (l - e.bestValue) / norm
		for _, k := range e.dual {
			e.y[k] = math.Max(0, e.y[k]-step*g[k])
		}
		e.applyMultipliers()
	}

	copy(e.y, bestY)
	e.applyMultipliers()
}
