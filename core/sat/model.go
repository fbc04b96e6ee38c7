package sat

import (
	"context"
	"fmt"
)

// Var is a boolean decision variable of one model.
type Var int

// Lit is a variable or its negation.
type Lit struct {
	Var Var
	Neg bool
}

// Pos returns the positive literal of v.
func (v Var) Pos() Lit { return Lit{Var: v} }

// Neg returns the negative literal of v.
func (v Var) Neg() Lit { return Lit{Var: v, Neg: true} }

// Not returns the opposite literal.
func (l Lit) Not() Lit { return Lit{Var: l.Var, Neg: !l.Neg} }

func (l Lit) String() string {
	if l.Neg {
		return fmt.Sprintf("-x%d", int(l.Var))
	}
	return fmt.Sprintf("x%d", int(l.Var))
}

// Term is a weighted literal of the objective.
type Term struct {
	Lit    Lit
	Weight int
}

// Status is the outcome of Solve.
type Status int

const (
	StatusUnknown Status = iota
	StatusOptimal
	StatusFeasible
	StatusInfeasible
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "OPTIMAL"
	case StatusFeasible:
		return "FEASIBLE"
	case StatusInfeasible:
		return "INFEASIBLE"
	}
	return "UNKNOWN"
}

// Solved reports whether an assignment is available.
func (s Status) Solved() bool { return s == StatusOptimal || s == StatusFeasible }

// Model is the modelling surface consumed by the planner.
type Model interface {
	// NewBool creates a named variable.
	NewBool(name string) Var
	ExactlyOne(vars ...Var)
	// Clause requires at least one literal to hold. An empty clause makes
	// the model infeasible.
	Clause(lits ...Lit)
	Implies(a, b Lit)
	Equal(a, b Lit)
	Fix(v Var, value bool)
	// Minimize sets the objective to the weighted count of true literals.
	Minimize(terms ...Term)
	// Solve blocks until the model is decided. The context is checked
	// between improvement rounds; on cancellation the best assignment found
	// so far is kept and StatusFeasible returned.
	Solve(ctx context.Context) (Status, error)
	Value(v Var) bool
	// Name returns the name given to v.
	Name(v Var) string
	// Stats reports the size of the model.
	Stats() Stats
}

// Stats describes a model.
type Stats struct {
	Vars    int
	Clauses int
	Terms   int
}
