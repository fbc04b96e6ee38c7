// Package sat exposes the declarative boolean modelling surface used by the
// planner and a backend built on the gini SAT solver.
//
// A model is a set of boolean variables, clauses over literals and an
// optional objective counting true literals. Solve returns an assignment
// minimising the objective.
package sat
