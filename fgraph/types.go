// File: types.go
// Role: Variable, Factor and Graph types, sentinel errors, NewGraph.
package fgraph

import (
	"errors"
	"sync"

	"github.com/katalvlaran/factorplan/domain"
	"github.com/katalvlaran/factorplan/factortable"
)

// Sentinel errors for registry operations.
var (
	// ErrEmptyID indicates an empty variable ID.
	ErrEmptyID = errors.New("fgraph: empty ID")

	// ErrNilDomain indicates a variable without a domain.
	ErrNilDomain = errors.New("fgraph: nil domain")

	// ErrVariableConflict indicates a variable re-added with another domain.
	ErrVariableConflict = errors.New("fgraph: variable exists with a different domain")

	// ErrVariableNotFound indicates a reference to an unknown variable.
	ErrVariableNotFound = errors.New("fgraph: variable not found")

	// ErrFactorExists indicates a factor ID that is already taken.
	ErrFactorExists = errors.New("fgraph: factor already exists")

	// ErrFactorNotFound indicates a reference to an unknown factor.
	ErrFactorNotFound = errors.New("fgraph: factor not found")

	// ErrNilTable indicates a factor without a table.
	ErrNilTable = errors.New("fgraph: nil factor table")

	// ErrArity indicates a factor whose variable count differs from its
	// table's dimensions, or that lists a variable twice.
	ErrArity = errors.New("fgraph: factor arity mismatch")

	// ErrDomainSize indicates a table dimension whose size differs from the
	// domain of the variable bound to it.
	ErrDomainSize = errors.New("fgraph: table dimension does not match variable domain")
)

// Variable is a discrete random variable.
type Variable struct {
	ID     string
	Domain *domain.Discrete
}

// Factor binds a table to variables; dimension k of Table is Variables[k].
type Factor struct {
	ID        string
	Table     *factortable.Table
	Variables []string
}

// Graph is the factor-graph registry.
type Graph struct {
	muVar sync.RWMutex // guards variables
	muFac sync.RWMutex // guards factors and incidence

	nextFactorID uint64                         // atomic factor ID generator
	variables    map[string]*Variable           // variable ID → Variable
	factors      map[string]*Factor             // factor ID → Factor
	incidence    map[string]map[string]struct{} // variable ID → factor IDs
}

// NewGraph returns an empty registry.
// Complexity: O(1)
func NewGraph() *Graph {
	return &Graph{
		variables: make(map[string]*Variable),
		factors:   make(map[string]*Factor),
		incidence: make(map[string]map[string]struct{}),
	}
}
