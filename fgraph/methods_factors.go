// File: methods_factors.go
// Role: Factor lifecycle & queries, table enumeration. Also: nextFactorID().
//
// Determinism:
//   - Factors() and Tables() follow Factor.ID ascending.
//   - nextFactorID() is monotonic ("f" + decimal).
//
// Concurrency:
//   - Variables are resolved under muVar read lock, then factors are
//     mutated under muFac write lock (lock order muVar → muFac).
package fgraph

import (
	"fmt"
	"sort"
	"strconv"
	"sync/atomic"

	"github.com/katalvlaran/factorplan/factortable"
)

const factorIDPrefix = 'f'

// AddFactor attaches table to vars and returns the factor ID. An empty id
// asks for a generated one.
//
// Steps:
//  1. Validate table and arity (one distinct variable per dimension).
//  2. Under muVar read lock, resolve every variable and compare its domain
//     size with the table's dimension size.
//  3. Under muFac write lock, reject a taken ID, store the factor and link
//     the incidence.
//
// Errors: ErrNilTable, ErrArity, ErrVariableNotFound, ErrDomainSize,
// ErrFactorExists.
// Complexity: O(n) for n variables.
func (g *Graph) AddFactor(id string, table *factortable.Table, vars ...string) (string, error) {
	if table == nil {
		return "", fmt.Errorf("AddFactor(%q): %w", id, ErrNilTable)
	}
	if len(vars) != table.Dimensions() {
		return "", fmt.Errorf("AddFactor(%q): %d variables for %d dimensions: %w", id, len(vars), table.Dimensions(), ErrArity)
	}
	seen := make(map[string]bool, len(vars))
	for _, v := range vars {
		if seen[v] {
			return "", fmt.Errorf("AddFactor(%q): variable %q repeated: %w", id, v, ErrArity)
		}
		seen[v] = true
	}

	g.muVar.RLock()
	defer g.muVar.RUnlock()
	for k, vid := range vars {
		v, ok := g.variables[vid]
		if !ok {
			return "", fmt.Errorf("AddFactor(%q): %q: %w", id, vid, ErrVariableNotFound)
		}
		if got, want := table.Domains().Size(k), v.Domain.Size(); got != want {
			return "", fmt.Errorf("AddFactor(%q): dimension %d size %d, variable %q size %d: %w",
				id, k, got, vid, want, ErrDomainSize)
		}
	}

	g.muFac.Lock()
	defer g.muFac.Unlock()
	if id == "" {
		id = nextFactorID(g)
	}
	if _, ok := g.factors[id]; ok {
		return "", fmt.Errorf("AddFactor(%q): %w", id, ErrFactorExists)
	}
	g.factors[id] = &Factor{ID: id, Table: table, Variables: append([]string(nil), vars...)}
	for _, vid := range vars {
		if g.incidence[vid] == nil {
			g.incidence[vid] = make(map[string]struct{})
		}
		g.incidence[vid][id] = struct{}{}
	}

	return id, nil
}

// RemoveFactor deletes a factor and its incidence links.
// Errors: ErrFactorNotFound.
func (g *Graph) RemoveFactor(id string) error {
	g.muFac.Lock()
	defer g.muFac.Unlock()
	f, ok := g.factors[id]
	if !ok {
		return fmt.Errorf("RemoveFactor(%q): %w", id, ErrFactorNotFound)
	}
	delete(g.factors, id)
	for _, vid := range f.Variables {
		delete(g.incidence[vid], id)
		if len(g.incidence[vid]) == 0 {
			delete(g.incidence, vid)
		}
	}

	return nil
}

// Factor returns a copy of the factor record; the table is shared.
// Errors: ErrFactorNotFound.
func (g *Graph) Factor(id string) (Factor, error) {
	g.muFac.RLock()
	defer g.muFac.RUnlock()
	f, ok := g.factors[id]
	if !ok {
		return Factor{}, fmt.Errorf("Factor(%q): %w", id, ErrFactorNotFound)
	}

	return Factor{ID: f.ID, Table: f.Table, Variables: append([]string(nil), f.Variables...)}, nil
}

// Factors returns copies of every factor in ID order.
// Complexity: O(F log F).
func (g *Graph) Factors() []Factor {
	g.muFac.RLock()
	defer g.muFac.RUnlock()

	out := make([]Factor, 0, len(g.factors))
	for _, f := range g.factors {
		out = append(out, Factor{ID: f.ID, Table: f.Table, Variables: append([]string(nil), f.Variables...)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}

// FactorCount returns the number of factors.
func (g *Graph) FactorCount() int {
	g.muFac.RLock()
	defer g.muFac.RUnlock()

	return len(g.factors)
}

// Tables returns the distinct factor tables in the order of their first
// factor ID. Factors may share a table.
func (g *Graph) Tables() []*factortable.Table {
	factors := g.Factors()
	seen := make(map[*factortable.Table]bool, len(factors))
	out := make([]*factortable.Table, 0, len(factors))
	for _, f := range factors {
		if !seen[f.Table] {
			seen[f.Table] = true
			out = append(out, f.Table)
		}
	}

	return out
}

// Freeze freezes every table for an iteration of plan replays.
func (g *Graph) Freeze() {
	for _, t := range g.Tables() {
		t.Freeze()
	}
}

// Thaw re-enables mutation of every table.
func (g *Graph) Thaw() {
	for _, t := range g.Tables() {
		t.Thaw()
	}
}

// nextFactorID returns "f1", "f2", ...; callers hold muFac.
func nextFactorID(g *Graph) string {
	for {
		n := atomic.AddUint64(&g.nextFactorID, 1)
		buf := make([]byte, 0, 1+20)
		buf = append(buf, factorIDPrefix)
		buf = strconv.AppendUint(buf, n, 10)
		if _, taken := g.factors[string(buf)]; !taken {
			return string(buf)
		}
	}
}
