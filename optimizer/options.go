// SPDX-License-Identifier: MIT

package optimizer

import (
	"fmt"
	"io"
	"math"
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/katalvlaran/factorplan/costmodel"
	"github.com/katalvlaran/factorplan/updateplan"
)

// Approach is the update strategy state of one factor table.
type Approach int

const (
	// Undecided tables have not been planned yet.
	Undecided Approach = iota
	// Normal updates every port by brute-force marginalization.
	Normal
	// Optimized replays an elimination-tree plan.
	Optimized
	// Automatic chooses between Normal and Optimized with the cost model.
	Automatic
)

// String implements fmt.Stringer.
func (a Approach) String() string {
	switch a {
	case Undecided:
		return "undecided"
	case Normal:
		return "normal"
	case Optimized:
		return "optimized"
	case Automatic:
		return "automatic"
	}

	return fmt.Sprintf("Approach(%d)", int(a))
}

// ParseApproach maps "normal", "optimized" or "automatic" to its Approach.
func ParseApproach(s string) (Approach, error) {
	for _, a := range []Approach{Normal, Optimized, Automatic} {
		if a.String() == s {
			return a, nil
		}
	}

	return Undecided, fmt.Errorf("ParseApproach(%q): %w", s, ErrUnknownApproach)
}

// ---------- Defaults ----------

const (
	// DefaultApproach prices both strategies.
	DefaultApproach = Automatic

	// DefaultExecutionTimeScale weighs the estimated execution time.
	DefaultExecutionTimeScale = 1.0

	// DefaultMemoryScale weighs estimated memory; zero compares time only.
	DefaultMemoryScale = 0.0
)

const (
	panicApproachInvalid = "optimizer: WithApproach: approach must be normal, optimized or automatic"
	panicBudgetNegative  = "optimizer: WithMemoryBudget: budget must be ≥ 0"
	panicScaleInvalid    = "optimizer: WithScaling: scales must be finite and ≥ 0"
	panicWorkersInvalid  = "optimizer: WithWorkers: workers must be ≥ 1"
)

// Option configures an Optimizer.
type Option func(*Options)

// Options is the effective optimizer configuration.
type Options struct {
	approach     Approach
	budget       int64 // bytes; 0 ⇒ unlimited
	coefficients costmodel.Coefficients
	timeScale    float64
	memoryScale  float64
	workers      int
	logger       logrus.FieldLogger
	registerer   prometheus.Registerer
	plan         []updateplan.Option
}

// DefaultOptions returns the documented defaults: automatic approach, no
// memory budget, DefaultCoefficients, one worker per CPU and a discarding
// logger.
func DefaultOptions() Options {
	return Options{
		approach:     DefaultApproach,
		coefficients: costmodel.DefaultCoefficients(),
		timeScale:    DefaultExecutionTimeScale,
		memoryScale:  DefaultMemoryScale,
		workers:      runtime.GOMAXPROCS(0),
		logger:       discardLogger(),
	}
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)

	return l
}

func gatherOptions(opts []Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}

// Approach returns the configured approach.
func (o Options) Approach() Approach { return o.approach }

// MemoryBudget returns the budget in bytes; 0 means unlimited.
func (o Options) MemoryBudget() int64 { return o.budget }

// Coefficients returns the cost-model coefficients.
func (o Options) Coefficients() costmodel.Coefficients { return o.coefficients }

// Workers returns the planning concurrency.
func (o Options) Workers() int { return o.workers }

// WithApproach overrides the automatic choice. Normal and Optimized skip
// cost estimation entirely.
// Panics on Undecided or an unknown approach.
func WithApproach(a Approach) Option {
	if a != Normal && a != Optimized && a != Automatic {
		panic(panicApproachInvalid)
	}

	return func(o *Options) { o.approach = a }
}

// WithMemoryBudget rejects candidates whose estimated memory exceeds bytes.
// 0 disables the budget.
func WithMemoryBudget(bytes int64) Option {
	if bytes < 0 {
		panic(panicBudgetNegative)
	}

	return func(o *Options) { o.budget = bytes }
}

// WithCoefficients replaces the cost-model coefficients. They are
// validated by New.
func WithCoefficients(c costmodel.Coefficients) Option {
	return func(o *Options) { o.coefficients = c }
}

// WithScaling sets the automatic-mode weights of execution time and memory:
// cost = time·timeScale + memory·memoryScale.
func WithScaling(timeScale, memoryScale float64) Option {
	for _, v := range []float64{timeScale, memoryScale} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			panic(panicScaleInvalid)
		}
	}

	return func(o *Options) { o.timeScale, o.memoryScale = timeScale, memoryScale }
}

// WithWorkers bounds the number of tables planned concurrently.
func WithWorkers(n int) Option {
	if n < 1 {
		panic(panicWorkersInvalid)
	}

	return func(o *Options) { o.workers = n }
}

// WithLogger routes warnings and decisions to logger. nil restores the
// discarding logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *Options) {
		if logger == nil {
			logger = discardLogger()
		}
		o.logger = logger
	}
}

// WithRegisterer registers the optimizer's collectors with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *Options) { o.registerer = reg }
}

// WithPlanOptions forwards options to the plan builder: semiring, sparse
// threshold, elimination order, output normalization and ports. Every
// forwarded option is honored; without updateplan.WithPorts a plan serves
// every dimension.
func WithPlanOptions(opts ...updateplan.Option) Option {
	p := append([]updateplan.Option(nil), opts...)

	return func(o *Options) { o.plan = append(o.plan, p...) }
}
