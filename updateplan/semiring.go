package updateplan

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/factorplan/factortable"
)

// Semiring selects the message algebra.
type Semiring int

const (
	// SumProduct combines weights by product and marginalizes by sum.
	SumProduct Semiring = iota
	// MinSum combines energies by sum and marginalizes by minimum.
	MinSum
)

// String implements fmt.Stringer.
func (s Semiring) String() string {
	switch s {
	case SumProduct:
		return "sum-product"
	case MinSum:
		return "min-sum"
	}

	return fmt.Sprintf("Semiring(%d)", int(s))
}

// ParseSemiring maps "sum-product" or "min-sum" to its Semiring.
func ParseSemiring(s string) (Semiring, error) {
	for _, sr := range []Semiring{SumProduct, MinSum} {
		if sr.String() == s {
			return sr, nil
		}
	}

	return SumProduct, fmt.Errorf("ParseSemiring(%q): %w", s, ErrUnknownSemiring)
}

// Zero is the marginalization identity: 0 for SumProduct, +∞ for MinSum.
func (s Semiring) Zero() float64 {
	if s == MinSum {
		return math.Inf(1)
	}

	return 0
}

// One is the combination identity: 1 for SumProduct, 0 for MinSum.
func (s Semiring) One() float64 {
	if s == MinSum {
		return 0
	}

	return 1
}

// Times combines two values.
func (s Semiring) Times(a, b float64) float64 {
	if s == MinSum {
		return a + b
	}

	return a * b
}

// Plus marginalizes two values.
func (s Semiring) Plus(a, b float64) float64 {
	if s == MinSum {
		return math.Min(a, b)
	}

	return a + b
}

// valueStore is the table store the semiring reads.
func (s Semiring) valueStore(sparse bool) factortable.Representation {
	switch {
	case s == MinSum && sparse:
		return factortable.SparseEnergy
	case s == MinSum:
		return factortable.DenseEnergy
	case sparse:
		return factortable.SparseWeight
	default:
		return factortable.DenseWeight
	}
}

// NormalizeMessage rescales a message in place: SumProduct divides by the
// sum, MinSum subtracts the minimum. All-zero (or all-infinite) messages are
// left unchanged.
func (s Semiring) NormalizeMessage(msg []float64) {
	if len(msg) == 0 {
		return
	}
	if s == MinSum {
		m := floats.Min(msg)
		if !math.IsInf(m, 0) {
			floats.AddConst(-m, msg)
		}

		return
	}
	sum := floats.Sum(msg)
	if sum > 0 && !math.IsInf(sum, 1) {
		floats.Scale(1/sum, msg)
	}
}

func fill(dst []float64, v float64) {
	for i := range dst {
		dst[i] = v
	}
}
