// SPDX-License-Identifier: MIT

package factortable

import (
	"math"
	"strings"
)

// Representation is a bit set naming the stores a table holds.
type Representation uint8

const (
	// DenseWeight stores weights indexed by joint index.
	DenseWeight Representation = 1 << iota
	// DenseEnergy stores energies indexed by joint index.
	DenseEnergy
	// SparseWeight stores weights indexed by sparse index.
	SparseWeight
	// SparseEnergy stores energies indexed by sparse index.
	SparseEnergy
)

const (
	// Dense is both dense stores.
	Dense = DenseWeight | DenseEnergy
	// Sparse is both sparse stores.
	Sparse = SparseWeight | SparseEnergy
	// Weights is both weight stores.
	Weights = DenseWeight | SparseWeight
	// Energies is both energy stores.
	Energies = DenseEnergy | SparseEnergy
	// AllRepresentations is every store.
	AllRepresentations = Dense | Sparse
)

// Has reports whether every bit of other is set in r.
func (r Representation) Has(other Representation) bool { return r&other == other }

// Any reports whether any bit of other is set in r.
func (r Representation) Any(other Representation) bool { return r&other != 0 }

// Valid reports whether r names at least one store and nothing else.
func (r Representation) Valid() bool { return r != 0 && r&^AllRepresentations == 0 }

// String implements fmt.Stringer, e.g. "DenseWeight|SparseEnergy".
func (r Representation) String() string {
	if r == 0 {
		return "None"
	}
	names := []string{"DenseWeight", "DenseEnergy", "SparseWeight", "SparseEnergy"}
	var parts []string
	for i, name := range names {
		if r&(1<<i) != 0 {
			parts = append(parts, name)
		}
	}

	return strings.Join(parts, "|")
}

// WeightToEnergy returns −ln(w); zero weight maps to +∞.
func WeightToEnergy(w float64) float64 { return -math.Log(w) }

// EnergyToWeight returns exp(−e); +∞ maps to exactly zero.
func EnergyToWeight(e float64) float64 { return math.Exp(-e) }

func validWeight(w float64) bool { return w >= 0 && !math.IsInf(w, 1) && !math.IsNaN(w) }

func validEnergy(e float64) bool { return !math.IsNaN(e) && !math.IsInf(e, -1) }
