package planner

import (
	"fmt"

	"github.com/kilianp07/railplan/core/sat"
)

// encoding maps (slot, platform) cells to model variables.
type encoding struct {
	m sat.Model
	x [][]sat.Var
}

// encode posts one variable per cell, pins infeasible cells to false, adds
// the one-hot constraint of every train and forbids every pair of cells of
// different trains whose occupation windows overlap on a shared edge.
func encode(m sat.Model, pr *problem) *encoding {
	enc := &encoding{m: m, x: make([][]sat.Var, len(pr.slots))}
	for i, s := range pr.slots {
		enc.x[i] = make([]sat.Var, len(pr.platforms))
		var feasible []sat.Var
		for j := range pr.platforms {
			v := m.NewBool(fmt.Sprintf("x[%s,%d]", s.train.ID, j))
			enc.x[i][j] = v
			if s.cell(j) == nil {
				m.Fix(v, false)
				continue
			}
			feasible = append(feasible, v)
		}
		m.ExactlyOne(feasible...)
	}
	for i := 0; i < len(pr.slots); i++ {
		for k := i + 1; k < len(pr.slots); k++ {
			for _, a := range pr.slots[i].cells {
				for _, b := range pr.slots[k].cells {
					if _, hit := a.claims.Conflicts(b.claims); hit {
						m.Clause(enc.x[i][a.platform].Neg(), enc.x[k][b.platform].Neg())
					}
				}
			}
		}
	}
	return enc
}

// stabilize mirrors the previous platform of every train in pinned y
// variables, derives a changed indicator per feasible cell and minimises
// their sum. Trains without a usable previous platform are left free.
func (enc *encoding) stabilize(pr *problem) {
	var terms []sat.Term
	for i, s := range pr.slots {
		if s.prev < 0 {
			continue
		}
		for _, c := range s.cells {
			x := enc.x[i][c.platform]
			y := enc.m.NewBool(fmt.Sprintf("y[%s,%d]", s.train.ID, c.platform))
			enc.m.Fix(y, c.platform == s.prev)
			changed := enc.m.NewBool(fmt.Sprintf("c[%s,%d]", s.train.ID, c.platform))
			// x and not y implies changed.
			enc.m.Clause(x.Neg(), y.Pos(), changed.Pos())
			terms = append(terms, sat.Term{Lit: changed.Pos(), Weight: 1})
		}
	}
	if len(terms) > 0 {
		enc.m.Minimize(terms...)
	}
}

// pin forces the target cell of every slot.
func (enc *encoding) pin(pr *problem) {
	for i, s := range pr.slots {
		if s.target >= 0 {
			enc.m.Fix(enc.x[i][s.target], true)
		}
	}
}

// selected returns the chosen cell of slot i.
func (enc *encoding) selected(pr *problem, i int) *cell {
	for _, c := range pr.slots[i].cells {
		if enc.m.Value(enc.x[i][c.platform]) {
			return c
		}
	}
	return nil
}
