// SPDX-License-Identifier: MIT

package optimizer

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/factorplan/costmodel"
	"github.com/katalvlaran/factorplan/factortable"
	"github.com/katalvlaran/factorplan/updateplan"
)

// TableSource lists the factor tables of a graph.
type TableSource interface {
	Tables() []*factortable.Table
}

// Settings is the decision record of one table.
type Settings struct {
	Approach   Approach         // Normal or Optimized
	Plan       *updateplan.Plan // non-nil iff Approach == Optimized
	Estimated  bool             // Normal and Optimized below are set
	Normal     costmodel.Estimate
	Optimized  costmodel.Estimate
	Warning    error  // wraps ErrPlanInfeasible after a budget fallback
	Version    uint64 // table structure version at decision time
	Dimensions int
}

// stale reports whether t changed under the settings: its sparse structure
// or dimensionality moved, or the store an optimized plan reads was dropped.
func (s *Settings) stale(t *factortable.Table) bool {
	if s.Version != t.StructureVersion() || s.Dimensions != t.Dimensions() {
		return true
	}

	return s.Plan != nil && !t.Representation().Has(s.Plan.RootStore())
}

// Decision tells the update routine how to compute a table's messages.
type Decision struct {
	Approach Approach
	Plan     *updateplan.Plan

	opts []updateplan.Option
}

// Update computes the port messages of table with the decided strategy.
// scratch is only used by Optimized decisions and may be nil.
// Errors: ErrUnknownApproach, plus those of updateplan.NormalUpdate and
// Plan.Execute.
func (d Decision) Update(table *factortable.Table, inputs, outputs [][]float64, scratch *updateplan.Scratch) error {
	switch d.Approach {
	case Normal:
		return updateplan.NormalUpdate(table, inputs, outputs, d.opts...)
	case Optimized:
		return d.Plan.Execute(table, inputs, outputs, scratch)
	}

	return fmt.Errorf("Decision.Update: %v: %w", d.Approach, ErrUnknownApproach)
}

// Report summarizes one Optimize pass.
type Report struct {
	Tables    int // distinct tables
	Normal    int
	Optimized int
	Reused    int // tables whose fresh settings were kept

	warnings *multierror.Error
}

// Warnings returns the aggregated non-fatal warnings, or nil.
// Each wraps ErrPlanInfeasible.
func (r *Report) Warnings() error { return r.warnings.ErrorOrNil() }

// WarningList returns the warnings one by one.
func (r *Report) WarningList() []error {
	if r.warnings == nil {
		return nil
	}

	return r.warnings.WrappedErrors()
}

// Optimizer owns the per-table settings.
// It is safe for concurrent use.
type Optimizer struct {
	opts    Options
	builder *updateplan.Builder
	metrics *Metrics

	mu       sync.RWMutex
	settings map[*factortable.Table]*Settings

	plansMu sync.Mutex
	plans   map[factortable.Fingerprint]*updateplan.Plan
}

// New validates the options and returns an optimizer with no settings.
// Errors: costmodel.ErrInvalidCoefficients.
func New(opts ...Option) (*Optimizer, error) {
	o := gatherOptions(opts)
	if err := o.coefficients.Validate(); err != nil {
		return nil, fmt.Errorf("New: %w", err)
	}

	return &Optimizer{
		opts:     o,
		builder:  updateplan.NewBuilder(o.plan...),
		metrics:  NewMetrics(o.registerer),
		settings: make(map[*factortable.Table]*Settings),
		plans:    make(map[factortable.Fingerprint]*updateplan.Plan),
	}, nil
}

// Options returns the resolved options.
func (o *Optimizer) Options() Options { return o.opts }

// Metrics returns the collectors, or nil without a registerer.
func (o *Optimizer) Metrics() *Metrics { return o.metrics }

// Optimize decides every table of source that has no fresh settings.
// Stage 1 (Collect): distinct tables in source order.
// Stage 2 (Plan): one errgroup task per table, at most Workers at a time;
// the context is checked before each table.
// Stage 3 (Report): counts and budget warnings.
// Budget shortfalls never fail the pass.
// Errors: ErrNilSource, updateplan.ErrNilTable, ctx.Err(), and planning errors.
func (o *Optimizer) Optimize(ctx context.Context, source TableSource) (*Report, error) {
	if source == nil {
		return nil, fmt.Errorf("Optimize: %w", ErrNilSource)
	}
	tables := distinct(source.Tables())
	results := make([]*Settings, len(tables))
	reused := make([]bool, len(tables))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.opts.workers)
	for i, t := range tables {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if s, ok := o.fresh(t); ok {
				results[i], reused[i] = s, true
				return nil
			}
			s, err := o.decide(t)
			if err != nil {
				return fmt.Errorf("table %d: %w", i, err)
			}
			o.store(t, s)
			results[i] = s

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("Optimize: %w", err)
	}

	r := &Report{Tables: len(tables)}
	for i, s := range results {
		if reused[i] {
			r.Reused++
		}
		if s.Approach == Optimized {
			r.Optimized++
		} else {
			r.Normal++
		}
		if s.Warning != nil && !reused[i] {
			r.warnings = multierror.Append(r.warnings, fmt.Errorf("table %d: %w", i, s.Warning))
		}
	}

	return r, nil
}

// Lookup returns the decision for table, deciding it first when it has no
// settings or its settings are stale. A stale optimized decision prepares
// the table again, so the table must not be frozen then.
// Errors: updateplan.ErrNilTable and planning errors.
func (o *Optimizer) Lookup(table *factortable.Table) (Decision, error) {
	if table == nil {
		return Decision{}, fmt.Errorf("Lookup: %w", updateplan.ErrNilTable)
	}
	s, ok := o.fresh(table)
	if !ok {
		var err error
		if s, err = o.decide(table); err != nil {
			return Decision{}, fmt.Errorf("Lookup: %w", err)
		}
		o.store(table, s)
	}

	return Decision{Approach: s.Approach, Plan: s.Plan, opts: o.opts.plan}, nil
}

// Settings returns a copy of the table's settings, stale or not.
func (o *Optimizer) Settings(table *factortable.Table) (Settings, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	s, ok := o.settings[table]
	if !ok {
		return Settings{}, false
	}

	return *s, true
}

// Invalidate forgets the table's settings; the next Lookup or Optimize
// decides it again.
func (o *Optimizer) Invalidate(table *factortable.Table) {
	o.mu.Lock()
	delete(o.settings, table)
	o.mu.Unlock()
}

func (o *Optimizer) fresh(t *factortable.Table) (*Settings, bool) {
	if t == nil {
		return nil, false
	}
	o.mu.RLock()
	s := o.settings[t]
	o.mu.RUnlock()

	return s, s != nil && !s.stale(t)
}

func (o *Optimizer) store(t *factortable.Table, s *Settings) {
	o.mu.Lock()
	o.settings[t] = s
	o.mu.Unlock()
}

// decide runs the state machine of one table: an override skips estimation,
// Automatic prices both strategies under the memory budget.
func (o *Optimizer) decide(t *factortable.Table) (*Settings, error) {
	if t == nil {
		return nil, updateplan.ErrNilTable
	}
	s := &Settings{Version: t.StructureVersion(), Dimensions: t.Dimensions()}
	log := o.opts.logger.WithField("table", t.Fingerprint().String())

	switch o.opts.approach {
	case Normal, Optimized:
		s.Approach = o.opts.approach
	default:
		if err := o.estimate(t, s); err != nil {
			return nil, err
		}
		s.Approach = o.choose(s, log)
	}
	if s.Approach == Optimized {
		plan, err := o.plan(t)
		if err != nil {
			return nil, err
		}
		s.Plan = plan
	}

	o.metrics.decided(s.Approach)
	log.WithField("approach", s.Approach.String()).Debug("update approach decided")

	return s, nil
}

func (o *Optimizer) estimate(t *factortable.Table, s *Settings) error {
	normal, err := updateplan.NormalStatistics(t, o.opts.plan...)
	if err != nil {
		return err
	}
	optimized, err := o.builder.Estimate(t)
	if err != nil {
		return err
	}
	if s.Normal, err = o.opts.coefficients.Estimate(costmodel.Normal, normal); err != nil {
		return err
	}
	if s.Optimized, err = o.opts.coefficients.Estimate(costmodel.Optimized, optimized); err != nil {
		return err
	}
	s.Estimated = true
	o.metrics.estimated(costmodel.Normal.String(), s.Normal.ExecutionTime, s.Normal.Memory)
	o.metrics.estimated(costmodel.Optimized.String(), s.Optimized.ExecutionTime, s.Optimized.Memory)

	return nil
}

// choose picks the cheaper candidate that fits the budget. Normal wins ties
// and is the fallback when the optimized plan does not fit.
func (o *Optimizer) choose(s *Settings, log logrus.FieldLogger) Approach {
	budget := o.opts.budget
	fits := func(e costmodel.Estimate) bool { return budget == 0 || e.Memory <= budget }
	normalFits, optimizedFits := fits(s.Normal), fits(s.Optimized)

	if optimizedFits {
		if !normalFits || s.Optimized.Cost(o.opts.timeScale, o.opts.memoryScale) < s.Normal.Cost(o.opts.timeScale, o.opts.memoryScale) {
			return Optimized
		}

		return Normal
	}

	if normalFits {
		s.Warning = fmt.Errorf("optimized plan needs %d bytes, budget %d: %w", s.Optimized.Memory, budget, ErrPlanInfeasible)
	} else {
		s.Warning = fmt.Errorf("normal needs %d bytes, optimized %d, budget %d: %w",
			s.Normal.Memory, s.Optimized.Memory, budget, ErrPlanInfeasible)
	}
	o.metrics.infeasible()
	log.WithFields(logrus.Fields{
		"approach": Normal.String(),
		"memory":   s.Optimized.Memory,
		"budget":   budget,
	}).WithError(s.Warning).Warn("optimized update plan exceeds the memory budget, using normal updates")

	return Normal
}

// plan prepares t and returns the plan shared by every table with t's
// fingerprint, building it on first use.
func (o *Optimizer) plan(t *factortable.Table) (*updateplan.Plan, error) {
	if err := updateplan.PrepareTable(t, o.builder.Options().Semiring()); err != nil {
		return nil, err
	}
	fp := t.Fingerprint()
	o.plansMu.Lock()
	p, ok := o.plans[fp]
	o.plansMu.Unlock()
	if ok {
		return p, nil
	}

	p, err := o.builder.Build(t)
	if err != nil {
		return nil, err
	}
	o.plansMu.Lock()
	defer o.plansMu.Unlock()
	if prev, ok := o.plans[fp]; ok {
		return prev, nil
	}
	o.plans[fp] = p

	return p, nil
}

func distinct(tables []*factortable.Table) []*factortable.Table {
	seen := make(map[*factortable.Table]bool, len(tables))
	out := make([]*factortable.Table, 0, len(tables))
	for _, t := range tables {
		if t != nil && seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}

	return out
}
