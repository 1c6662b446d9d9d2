// SPDX-License-Identifier: MIT

package costmodel

import (
	"fmt"
	"math"

	"github.com/hashicorp/go-multierror"
)

// Feature names one input of a Model.
type Feature string

const (
	// NonZero is the number of stored entries of the factor table.
	NonZero Feature = "non_zero"
	// DimsTimesNonZero is Dimensions × NonZero.
	DimsTimesNonZero Feature = "dims_x_non_zero"
	// DenseMarginalization is the summed source size of dense marginalization steps.
	DenseMarginalization Feature = "dense_marginalization"
	// SparseMarginalization is the summed source size of sparse marginalization steps.
	SparseMarginalization Feature = "sparse_marginalization"
	// Output is the summed source size of output steps.
	Output Feature = "output"
)

// Features lists every known feature.
func Features() []Feature {
	return []Feature{NonZero, DimsTimesNonZero, DenseMarginalization, SparseMarginalization, Output}
}

// Statistics describes one update strategy for one table.
type Statistics struct {
	NonZero                   int64 `yaml:"non_zero"`
	Dimensions                int64 `yaml:"dimensions"`
	DenseMarginalizationSize  int64 `yaml:"dense_marginalization"`
	SparseMarginalizationSize int64 `yaml:"sparse_marginalization"`
	OutputSize                int64 `yaml:"output"`
	Memory                    int64 `yaml:"memory"` // bytes the strategy allocates
	Steps                     int   `yaml:"steps"`
}

// Value returns the value of feature f.
func (s Statistics) Value(f Feature) (float64, error) {
	switch f {
	case NonZero:
		return float64(s.NonZero), nil
	case DimsTimesNonZero:
		return float64(s.Dimensions) * float64(s.NonZero), nil
	case DenseMarginalization:
		return float64(s.DenseMarginalizationSize), nil
	case SparseMarginalization:
		return float64(s.SparseMarginalizationSize), nil
	case Output:
		return float64(s.OutputSize), nil
	}

	return 0, fmt.Errorf("Statistics.Value(%q): %w", f, ErrUnknownFeature)
}

// Term is one standardized linear term.
type Term struct {
	Feature Feature `yaml:"feature"`
	Weight  float64 `yaml:"weight"`
	Mean    float64 `yaml:"mean"`
	Scale   float64 `yaml:"scale"`
}

// Model is a linear execution-time model.
type Model struct {
	Intercept float64 `yaml:"intercept"`
	Terms     []Term  `yaml:"terms"`
}

// Evaluate returns the predicted execution time. The model must be valid;
// terms with unknown features contribute nothing.
// Complexity: O(len(Terms)).
func (m Model) Evaluate(s Statistics) float64 {
	t := m.Intercept
	for _, term := range m.Terms {
		x, err := s.Value(term.Feature)
		if err != nil {
			continue
		}
		t += term.Weight * (x - term.Mean) / term.Scale
	}

	return t
}

// Validate reports every problem of the model at once.
func (m Model) Validate() error { return m.validate("", nil).ErrorOrNil() }

func (m Model) validate(prefix string, result *multierror.Error) *multierror.Error {
	if !finite(m.Intercept) {
		result = multierror.Append(result, fmt.Errorf("%sintercept %v: %w", prefix, m.Intercept, ErrInvalidCoefficients))
	}
	for i, term := range m.Terms {
		if _, err := (Statistics{}).Value(term.Feature); err != nil {
			result = multierror.Append(result, fmt.Errorf("%sterm %d: feature %q: %w", prefix, i, term.Feature, ErrInvalidCoefficients))
		}
		if !finite(term.Weight) || !finite(term.Mean) {
			result = multierror.Append(result, fmt.Errorf("%sterm %d: weight %v mean %v: %w", prefix, i, term.Weight, term.Mean, ErrInvalidCoefficients))
		}
		if !finite(term.Scale) || term.Scale == 0 {
			result = multierror.Append(result, fmt.Errorf("%sterm %d: scale %v: %w", prefix, i, term.Scale, ErrInvalidCoefficients))
		}
	}

	return result
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
