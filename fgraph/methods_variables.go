// File: methods_variables.go
// Role: Variable lifecycle & queries.
//
// Determinism:
//   - Variables() returns IDs sorted lexicographically ascending.
//
// Concurrency:
//   - Variable catalog protected by muVar.
package fgraph

import (
	"fmt"
	"sort"

	"github.com/katalvlaran/factorplan/domain"
)

// AddVariable registers a variable (idempotent for an equal domain).
//
// Implementation:
//   - Stage 1: Validate non-empty ID and non-nil domain.
//   - Stage 2: Under muVar write lock, accept an existing equal registration
//     or reject a conflicting one; otherwise insert.
//
// Errors:
//   - ErrEmptyID, ErrNilDomain, ErrVariableConflict.
//
// Complexity:
//   - Time O(1) amortized, plus O(d) for the equality check of a re-add.
func (g *Graph) AddVariable(id string, d *domain.Discrete) error {
	if id == "" {
		return ErrEmptyID
	}
	if d == nil {
		return fmt.Errorf("AddVariable(%q): %w", id, ErrNilDomain)
	}

	g.muVar.Lock()
	defer g.muVar.Unlock()
	if v, ok := g.variables[id]; ok {
		if v.Domain.Equal(d) {
			return nil
		}

		return fmt.Errorf("AddVariable(%q): %w", id, ErrVariableConflict)
	}
	g.variables[id] = &Variable{ID: id, Domain: d}

	return nil
}

// HasVariable reports whether the variable exists (empty ID ⇒ false).
func (g *Graph) HasVariable(id string) bool {
	if id == "" {
		return false
	}
	g.muVar.RLock()
	defer g.muVar.RUnlock()
	_, ok := g.variables[id]

	return ok
}

// Variable returns a copy of the variable record.
// Errors: ErrVariableNotFound.
func (g *Graph) Variable(id string) (Variable, error) {
	g.muVar.RLock()
	defer g.muVar.RUnlock()
	v, ok := g.variables[id]
	if !ok {
		return Variable{}, fmt.Errorf("Variable(%q): %w", id, ErrVariableNotFound)
	}

	return *v, nil
}

// Variables returns the variable IDs in ascending order.
// Complexity: O(V log V).
func (g *Graph) Variables() []string {
	g.muVar.RLock()
	defer g.muVar.RUnlock()

	ids := make([]string, 0, len(g.variables))
	for id := range g.variables {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids
}

// VariableCount returns the number of variables.
func (g *Graph) VariableCount() int {
	g.muVar.RLock()
	defer g.muVar.RUnlock()

	return len(g.variables)
}

// FactorsOf returns the IDs of the factors touching variable id, ascending.
// Errors: ErrVariableNotFound.
// Complexity: O(k log k) for k incident factors.
func (g *Graph) FactorsOf(id string) ([]string, error) {
	if !g.HasVariable(id) {
		return nil, fmt.Errorf("FactorsOf(%q): %w", id, ErrVariableNotFound)
	}
	g.muFac.RLock()
	defer g.muFac.RUnlock()

	ids := make([]string, 0, len(g.incidence[id]))
	for fid := range g.incidence[id] {
		ids = append(ids, fid)
	}
	sort.Strings(ids)

	return ids, nil
}
