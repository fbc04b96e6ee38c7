package sat

import (
	"context"
	"fmt"

	"github.com/go-air/gini"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
)

// Gini implements Model with github.com/go-air/gini. Constraints are
// recorded and handed to a fresh solver on every Solve call, so a model can
// be solved more than once.
type Gini struct {
	c       *logic.C
	lits    []z.Lit
	names   []string
	clauses [][]z.Lit
	obj     []Term
	values  []bool
	solved  bool
}

// NewGini returns an empty model.
func NewGini() *Gini {
	return &Gini{c: logic.NewC()}
}

func (m *Gini) NewBool(name string) Var {
	m.lits = append(m.lits, m.c.Lit())
	m.names = append(m.names, name)
	return Var(len(m.lits) - 1)
}

func (m *Gini) Name(v Var) string {
	if int(v) < 0 || int(v) >= len(m.names) {
		return ""
	}
	return m.names[v]
}

func (m *Gini) lit(l Lit) z.Lit {
	x := m.lits[l.Var]
	if l.Neg {
		return x.Not()
	}
	return x
}

func (m *Gini) Clause(lits ...Lit) {
	cl := make([]z.Lit, len(lits))
	for i, l := range lits {
		cl[i] = m.lit(l)
	}
	m.clauses = append(m.clauses, cl)
}

func (m *Gini) ExactlyOne(vars ...Var) {
	at := make([]Lit, len(vars))
	for i, v := range vars {
		at[i] = v.Pos()
	}
	m.Clause(at...)
	for i := 0; i < len(vars); i++ {
		for j := i + 1; j < len(vars); j++ {
			m.Clause(vars[i].Neg(), vars[j].Neg())
		}
	}
}

func (m *Gini) Implies(a, b Lit) { m.Clause(a.Not(), b) }

func (m *Gini) Equal(a, b Lit) {
	m.Implies(a, b)
	m.Implies(b, a)
}

func (m *Gini) Fix(v Var, value bool) {
	if value {
		m.Clause(v.Pos())
		return
	}
	m.Clause(v.Neg())
}

func (m *Gini) Minimize(terms ...Term) { m.obj = append([]Term(nil), terms...) }

func (m *Gini) Stats() Stats {
	return Stats{Vars: len(m.lits), Clauses: len(m.clauses), Terms: len(m.obj)}
}

func (m *Gini) Value(v Var) bool {
	if !m.solved || int(v) < 0 || int(v) >= len(m.values) {
		return false
	}
	return m.values[v]
}

func (m *Gini) Solve(ctx context.Context) (Status, error) {
	m.solved = false
	if err := ctx.Err(); err != nil {
		return StatusUnknown, err
	}
	for _, cl := range m.clauses {
		if len(cl) == 0 {
			return StatusInfeasible, nil
		}
	}
	var objLits []z.Lit
	for _, t := range m.obj {
		if t.Weight < 0 {
			return StatusUnknown, fmt.Errorf("negative objective weight %d on %s", t.Weight, t.Lit)
		}
		for i := 0; i < t.Weight; i++ {
			objLits = append(objLits, m.lit(t.Lit))
		}
	}
	var card *logic.CardSort
	if len(objLits) > 0 {
		card = m.c.CardSort(objLits)
	}

	g := gini.New()
	m.c.ToCnf(g)
	// Variables absent from every clause still need a slot in the solver.
	for _, l := range m.lits {
		g.Add(l)
		g.Add(l.Not())
		g.Add(z.LitNull)
	}
	for _, cl := range m.clauses {
		for _, l := range cl {
			g.Add(l)
		}
		g.Add(z.LitNull)
	}

	switch g.Solve() {
	case 1:
	case -1:
		return StatusInfeasible, nil
	default:
		return StatusUnknown, nil
	}
	m.capture(g)
	if card == nil {
		return StatusOptimal, nil
	}
	best := m.cost()
	for best > 0 {
		if ctx.Err() != nil {
			return StatusFeasible, nil
		}
		g.Assume(card.Leq(best - 1))
		switch g.Solve() {
		case 1:
			m.capture(g)
			best = m.cost()
		case -1:
			return StatusOptimal, nil
		default:
			return StatusFeasible, nil
		}
	}
	return StatusOptimal, nil
}

func (m *Gini) capture(g *gini.Gini) {
	if len(m.values) != len(m.lits) {
		m.values = make([]bool, len(m.lits))
	}
	for i, l := range m.lits {
		m.values[i] = g.Value(l)
	}
	m.solved = true
}

// cost evaluates the objective on the captured assignment.
func (m *Gini) cost() int {
	total := 0
	for _, t := range m.obj {
		v := m.values[t.Lit.Var]
		if t.Lit.Neg {
			v = !v
		}
		if v {
			total += t.Weight
		}
	}
	return total
}

var _ Model = (*Gini)(nil)
