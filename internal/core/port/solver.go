package port

import (
	"context"
	"errors"
)

// ErrSolverFailure wraps any error reported by a Solver.
var ErrSolverFailure = errors.New("solver failure")

// Term is one coefficient of a linear expression over binary variables.
type Term struct {
	Var  int
	Coef float64
}

// Constraint is the linear inequality Σ Coef·x[Var] ≤ Bound.
type Constraint struct {
	Terms []Term
	Bound float64
}

// Problem is a binary integer program: maximise Objective·x subject to every
// constraint, x ∈ {0,1}^NumVars. RelativeGap is the accepted relative distance
// between the returned objective and the best bound.
type Problem struct {
	NumVars     int
	Objective   []float64
	Constraints []Constraint
	RelativeGap float64
}

// NewProblem returns a problem with numVars variables and a zero objective.
func NewProblem(numVars int, relativeGap float64) *Problem {
	return &Problem{
		NumVars:     numVars,
		Objective:   make([]float64, numVars),
		RelativeGap: relativeGap,
	}
}

// SetObjective sets the objective coefficient of variable v.
func (p *Problem) SetObjective(v int, coef float64) {
	p.Objective[v] = coef
}

// AddConstraint appends Σ terms ≤ bound. Empty constraints are dropped.
func (p *Problem) AddConstraint(terms []Term, bound float64) {
	if len(terms) == 0 {
		return
	}
	p.Constraints = append(p.Constraints, Constraint{Terms: terms, Bound: bound})
}

// Solution is a solver's answer. Values are in [0,1]; a value within numerical
// tolerance of 1 means the variable is set.
type Solution struct {
	Values    []float64
	Objective float64
	// Bound is the best proven upper bound on the optimum.
	Bound float64
	Nodes int
	// Limit is set when the search stopped at a node or time limit before
	// closing the gap; Values then hold the best assignment found.
	Limit error
}

// Solver solves binary integer programs. It is the boundary to whatever
// optimisation backend the exact allocation engine runs on.
type Solver interface {
	Solve(ctx context.Context, p *Problem) (*Solution, error)
}
