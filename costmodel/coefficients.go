// SPDX-License-Identifier: MIT

package costmodel

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCoefficients indicates a model with a non-finite value, a
	// zero scale or an unknown feature.
	ErrInvalidCoefficients = errors.New("costmodel: invalid coefficients")

	// ErrUnknownFeature indicates a feature name no Statistics field maps to.
	ErrUnknownFeature = errors.New("costmodel: unknown feature")

	// ErrUnknownStrategy indicates a Strategy other than Normal or Optimized.
	ErrUnknownStrategy = errors.New("costmodel: unknown strategy")
)

// Strategy is an update strategy the model can price.
type Strategy int

const (
	// Normal is the brute-force per-port update.
	Normal Strategy = iota
	// Optimized is the replay of an update plan.
	Optimized
)

// String implements fmt.Stringer.
func (s Strategy) String() string {
	switch s {
	case Normal:
		return "normal"
	case Optimized:
		return "optimized"
	}

	return fmt.Sprintf("Strategy(%d)", int(s))
}

// Coefficients holds one model per strategy.
type Coefficients struct {
	Normal    Model `yaml:"normal"`
	Optimized Model `yaml:"optimized"`
}

// DefaultCoefficients returns a reference min-sum calibration. Times are in
// the calibration's arbitrary unit and can be negative for very small tables;
// only comparisons between strategies are meaningful.
func DefaultCoefficients() Coefficients {
	return Coefficients{
		Normal: Model{
			Intercept: 3.30461648566,
			Terms: []Term{
				{Feature: NonZero, Weight: 1.51472189501, Mean: 2397282.13878, Scale: 4990159.0},
				{Feature: DimsTimesNonZero, Weight: 12.0304854157, Mean: 24636832.1724, Scale: 114805021.0},
			},
		},
		Optimized: Model{
			Intercept: 1.29764000525,
			Terms: []Term{
				{Feature: DenseMarginalization, Weight: 6.92791055163, Mean: 3705266.58065, Scale: 25293812.93},
				{Feature: SparseMarginalization, Weight: 4.29121266133, Mean: 3224351.19011, Scale: 14900000.0},
				{Feature: Output, Weight: -0.330453110368, Mean: 12588.026109, Scale: 724853.0},
				{Feature: NonZero, Weight: -1.36970402596, Mean: 2397282.13878, Scale: 4990159.0},
			},
		},
	}
}

// Validate checks both models and aggregates their problems.
func (c Coefficients) Validate() error {
	result := c.Normal.validate("normal: ", nil)
	result = c.Optimized.validate("optimized: ", result)

	return result.ErrorOrNil()
}

// Model returns the model of strategy s.
func (c Coefficients) Model(s Strategy) (Model, error) {
	switch s {
	case Normal:
		return c.Normal, nil
	case Optimized:
		return c.Optimized, nil
	}

	return Model{}, fmt.Errorf("Coefficients.Model(%v): %w", s, ErrUnknownStrategy)
}

// Estimate is the predicted cost of one strategy.
type Estimate struct {
	Strategy      Strategy
	ExecutionTime float64
	Memory        int64 // bytes
	Stats         Statistics
}

// Cost combines time and memory with the automatic-mode scaling factors.
func (e Estimate) Cost(timeScale, memoryScale float64) float64 {
	return e.ExecutionTime*timeScale + float64(e.Memory)*memoryScale
}

// Estimate prices strategy s. Memory is taken from the statistics.
// Errors: ErrUnknownStrategy.
func (c Coefficients) Estimate(s Strategy, stats Statistics) (Estimate, error) {
	m, err := c.Model(s)
	if err != nil {
		return Estimate{}, err
	}

	return Estimate{Strategy: s, ExecutionTime: m.Evaluate(stats), Memory: stats.Memory, Stats: stats}, nil
}
