package optimizer_test

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/factorplan/costmodel"
	"github.com/katalvlaran/factorplan/factorgen"
	"github.com/katalvlaran/factorplan/factortable"
	"github.com/katalvlaran/factorplan/optimizer"
	"github.com/katalvlaran/factorplan/updateplan"
)

type tables []*factortable.Table

func (ts tables) Tables() []*factortable.Table { return ts }

// optimizedWins makes the plan always cheaper than brute force.
func optimizedWins() costmodel.Coefficients {
	return costmodel.Coefficients{
		Normal:    costmodel.Model{Intercept: 10},
		Optimized: costmodel.Model{Intercept: 1},
	}
}

func mustTable(t *testing.T, sizes []int, density float64, seed int64) *factortable.Table {
	t.Helper()
	tbl, err := factorgen.RandomTable(sizes, density, factorgen.WithSeed(seed))
	require.NoError(t, err)

	return tbl
}

// TestBudgetFallback sets the budget just below the optimized plan's memory:
// the table falls back to normal updates with a warning and no error.
func TestBudgetFallback(t *testing.T) {
	tbl := mustTable(t, []int{4, 4, 4, 4}, 1, 5)
	stats, err := updateplan.Estimate(tbl)
	require.NoError(t, err)

	logger, hook := test.NewNullLogger()
	reg := prometheus.NewPedanticRegistry()
	opt, err := optimizer.New(
		optimizer.WithCoefficients(optimizedWins()),
		optimizer.WithMemoryBudget(stats.Memory-1),
		optimizer.WithLogger(logger),
		optimizer.WithRegisterer(reg),
	)
	require.NoError(t, err)

	report, err := opt.Optimize(context.Background(), tables{tbl})
	require.NoError(t, err)
	require.Equal(t, 1, report.Tables)
	require.Equal(t, 1, report.Normal)
	require.Zero(t, report.Optimized)
	require.ErrorIs(t, report.Warnings(), optimizer.ErrPlanInfeasible)

	s, ok := opt.Settings(tbl)
	require.True(t, ok)
	require.Equal(t, optimizer.Normal, s.Approach)
	require.Nil(t, s.Plan)
	require.True(t, s.Estimated)
	require.Equal(t, stats.Memory, s.Optimized.Memory)
	require.ErrorIs(t, s.Warning, optimizer.ErrPlanInfeasible)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	require.Equal(t, logrus.WarnLevel, entry.Level)
	require.Equal(t, stats.Memory-1, entry.Data["budget"])
	require.Equal(t, "normal", entry.Data["approach"])

	m := opt.Metrics()
	require.Equal(t, 1.0, testutil.ToFloat64(m.Warnings))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Decisions.WithLabelValues("normal")))
	require.Equal(t, 2, testutil.CollectAndCount(m.EstimatedMemory))

	// With room for the plan the same table is optimized.
	roomy, err := optimizer.New(optimizer.WithCoefficients(optimizedWins()), optimizer.WithMemoryBudget(stats.Memory))
	require.NoError(t, err)
	d, err := roomy.Lookup(tbl)
	require.NoError(t, err)
	require.Equal(t, optimizer.Optimized, d.Approach)
	require.NotNil(t, d.Plan)
}

// TestNothingFits falls back to normal when even brute force exceeds the budget.
func TestNothingFits(t *testing.T) {
	tbl := mustTable(t, []int{3, 3}, 1, 1)
	opt, err := optimizer.New(optimizer.WithMemoryBudget(1))
	require.NoError(t, err)

	d, err := opt.Lookup(tbl)
	require.NoError(t, err)
	require.Equal(t, optimizer.Normal, d.Approach)
	s, _ := opt.Settings(tbl)
	require.ErrorIs(t, s.Warning, optimizer.ErrPlanInfeasible)
	require.Contains(t, s.Warning.Error(), "normal needs")
}

// TestOverrideSkipsEstimation checks both overrides.
func TestOverrideSkipsEstimation(t *testing.T) {
	tbl := mustTable(t, []int{3, 2, 4}, 0.5, 2)

	forced, err := optimizer.New(optimizer.WithApproach(optimizer.Optimized), optimizer.WithMemoryBudget(1))
	require.NoError(t, err)
	d, err := forced.Lookup(tbl)
	require.NoError(t, err)
	require.Equal(t, optimizer.Optimized, d.Approach)
	require.NotNil(t, d.Plan)
	s, _ := forced.Settings(tbl)
	require.False(t, s.Estimated)
	require.NoError(t, s.Warning)

	normal, err := optimizer.New(optimizer.WithApproach(optimizer.Normal))
	require.NoError(t, err)
	d, err = normal.Lookup(tbl)
	require.NoError(t, err)
	require.Equal(t, optimizer.Normal, d.Approach)
	require.Nil(t, d.Plan)
	s, _ = normal.Settings(tbl)
	require.False(t, s.Estimated)
}

// TestDecisionUpdateMatchesNormal replays decided plans under min-sum.
func TestDecisionUpdateMatchesNormal(t *testing.T) {
	minSum := updateplan.WithSemiring(updateplan.MinSum)
	opt, err := optimizer.New(
		optimizer.WithCoefficients(optimizedWins()),
		optimizer.WithPlanOptions(minSum, updateplan.WithSparseThreshold(0.5)),
	)
	require.NoError(t, err)

	tbl := mustTable(t, []int{3, 4, 2, 3}, 0.4, 9)
	d, err := opt.Lookup(tbl)
	require.NoError(t, err)
	require.Equal(t, optimizer.Optimized, d.Approach)
	require.True(t, tbl.HasSparseEnergies())

	msgs, err := factorgen.RandomMessages(tbl.Domains().Sizes(), factorgen.WithSeed(4))
	require.NoError(t, err)
	inputs := factorgen.ToEnergies(msgs)
	want := factorgen.Messages(tbl.Domains().Sizes())
	got := factorgen.Messages(tbl.Domains().Sizes())
	require.NoError(t, updateplan.NormalUpdate(tbl, inputs, want, minSum))
	require.NoError(t, d.Update(tbl, inputs, got, nil))
	for p := range want {
		for i := range want[p] {
			if math.IsInf(want[p][i], 1) {
				require.True(t, math.IsInf(got[p][i], 1))
				continue
			}
			require.InDelta(t, want[p][i], got[p][i], 1e-9)
		}
	}

	require.ErrorIs(t, optimizer.Decision{}.Update(tbl, inputs, got, nil), optimizer.ErrUnknownApproach)
}

func TestForwardedPorts(t *testing.T) {
	ports := updateplan.WithPorts(2, 0)
	opt, err := optimizer.New(
		optimizer.WithCoefficients(optimizedWins()),
		optimizer.WithPlanOptions(ports),
	)
	require.NoError(t, err)

	tbl := mustTable(t, []int{3, 4, 2}, 1, 21)
	d, err := opt.Lookup(tbl)
	require.NoError(t, err)
	require.Equal(t, optimizer.Optimized, d.Approach)
	require.Equal(t, []int{0, 2}, d.Plan.Ports())

	msgs, err := factorgen.RandomMessages(tbl.Domains().Sizes(), factorgen.WithSeed(6))
	require.NoError(t, err)
	want := factorgen.Messages(tbl.Domains().Sizes())
	got := factorgen.Messages(tbl.Domains().Sizes())
	got[1] = nil
	require.NoError(t, updateplan.NormalUpdate(tbl, msgs, want, ports))
	require.NoError(t, d.Update(tbl, msgs, got, nil))
	require.Nil(t, got[1])
	for _, p := range []int{0, 2} {
		require.InDeltaSlice(t, want[p], got[p], 1e-9)
	}
}

// TestStaleSettings re-plans after a sparsity change only.
func TestStaleSettings(t *testing.T) {
	tbl := mustTable(t, []int{3, 3, 3}, 0.4, 11)
	opt, err := optimizer.New(optimizer.WithCoefficients(optimizedWins()))
	require.NoError(t, err)

	first, err := opt.Lookup(tbl)
	require.NoError(t, err)

	present, absent := -1, -1
	for e := range tbl.All() {
		if e.Sparse >= 0 && present < 0 {
			present = e.Joint
		}
		if e.Sparse < 0 && absent < 0 {
			absent = e.Joint
		}
	}
	require.GreaterOrEqual(t, present, 0)
	require.GreaterOrEqual(t, absent, 0)

	require.NoError(t, tbl.SetWeightForJointIndex(present, 0.25))
	same, err := opt.Lookup(tbl)
	require.NoError(t, err)
	require.Same(t, first.Plan, same.Plan)

	require.NoError(t, tbl.SetWeightForJointIndex(absent, 0.5))
	s, _ := opt.Settings(tbl)
	require.NotEqual(t, tbl.StructureVersion(), s.Version)

	again, err := opt.Lookup(tbl)
	require.NoError(t, err)
	require.NotSame(t, first.Plan, again.Plan)
	require.Equal(t, tbl.Fingerprint(), again.Plan.Fingerprint())
	s, _ = opt.Settings(tbl)
	require.Equal(t, tbl.StructureVersion(), s.Version)

	opt.Invalidate(tbl)
	_, ok := opt.Settings(tbl)
	require.False(t, ok)
}

// TestDroppedStoreRedecides: replacing the values of a min-sum table drops
// the energy store its plan reads without changing the structure; the next
// Lookup prepares the table again instead of returning an unusable decision.
func TestDroppedStoreRedecides(t *testing.T) {
	tbl := mustTable(t, []int{3, 2, 3}, 1, 17)
	opts := []updateplan.Option{updateplan.WithSemiring(updateplan.MinSum)}
	opt, err := optimizer.New(optimizer.WithCoefficients(optimizedWins()), optimizer.WithPlanOptions(opts...))
	require.NoError(t, err)

	first, err := opt.Lookup(tbl)
	require.NoError(t, err)
	require.Equal(t, optimizer.Optimized, first.Approach)
	require.True(t, tbl.HasDenseEnergies())

	for _, drop := range []func() error{
		func() error {
			w := make([]float64, tbl.JointSize())
			for j := range w {
				w[j] = float64(j%4) + 0.5
			}
			return tbl.SetDenseWeights(w)
		},
		func() error {
			if err := updateplan.PrepareTable(tbl, updateplan.MinSum); err != nil {
				return err
			}
			return tbl.SetRepresentation(factortable.DenseWeight)
		},
	} {
		version := tbl.StructureVersion()
		require.NoError(t, drop())
		require.Equal(t, version, tbl.StructureVersion())
		require.False(t, tbl.HasDenseEnergies())

		d, err := opt.Lookup(tbl)
		require.NoError(t, err)
		require.Equal(t, optimizer.Optimized, d.Approach)
		require.Same(t, first.Plan, d.Plan)
		require.True(t, tbl.HasDenseEnergies())

		sizes := tbl.Domains().Sizes()
		inputs, err := factorgen.RandomMessages(sizes, factorgen.WithSeed(3))
		require.NoError(t, err)
		inputs = factorgen.ToEnergies(inputs)
		got, want := factorgen.Messages(sizes), factorgen.Messages(sizes)
		require.NoError(t, d.Update(tbl, inputs, got, nil))
		require.NoError(t, updateplan.NormalUpdate(tbl, inputs, want, opts...))
		for p := range want {
			require.InDeltaSlice(t, want[p], got[p], 1e-9)
		}
	}
}

// TestPlansShared gives structurally equal tables one plan and reuses fresh
// settings on the next pass.
func TestPlansShared(t *testing.T) {
	a := mustTable(t, []int{4, 3, 3}, 0.5, 21)
	b := mustTable(t, []int{4, 3, 3}, 0.5, 21)
	c := mustTable(t, []int{4, 3, 3}, 0.5, 22)
	opt, err := optimizer.New(optimizer.WithCoefficients(optimizedWins()), optimizer.WithWorkers(2))
	require.NoError(t, err)

	report, err := opt.Optimize(context.Background(), tables{a, b, a, c})
	require.NoError(t, err)
	require.Equal(t, 3, report.Tables)
	require.Equal(t, 3, report.Optimized)
	require.NoError(t, report.Warnings())

	sa, _ := opt.Settings(a)
	sb, _ := opt.Settings(b)
	sc, _ := opt.Settings(c)
	require.Same(t, sa.Plan, sb.Plan)
	require.NotSame(t, sa.Plan, sc.Plan)

	report, err = opt.Optimize(context.Background(), tables{a, b, c})
	require.NoError(t, err)
	require.Equal(t, 3, report.Reused)
}

// TestConcurrentPlanningAndReplay plans many tables in parallel and replays
// them from several goroutines.
func TestConcurrentPlanningAndReplay(t *testing.T) {
	ts := make(tables, 16)
	rngs := factorgen.Streams(77, len(ts))
	for i := range ts {
		tbl, err := factorgen.RandomTable([]int{2 + i%3, 3, 2, 2}, 0.3+0.04*float64(i), factorgen.WithRand(rngs[i]))
		require.NoError(t, err)
		ts[i] = tbl
	}
	opt, err := optimizer.New(optimizer.WithCoefficients(optimizedWins()), optimizer.WithWorkers(4))
	require.NoError(t, err)
	_, err = opt.Optimize(context.Background(), ts)
	require.NoError(t, err)
	for _, tbl := range ts {
		tbl.Freeze()
	}

	var wg sync.WaitGroup
	errs := make([]error, len(ts))
	for i, tbl := range ts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := opt.Lookup(tbl)
			if err != nil {
				errs[i] = err
				return
			}
			sizes := tbl.Domains().Sizes()
			inputs, _ := factorgen.RandomMessages(sizes, factorgen.WithSeed(int64(i+1)))
			got := factorgen.Messages(sizes)
			want := factorgen.Messages(sizes)
			if errs[i] = d.Update(tbl, inputs, got, d.Plan.NewScratch()); errs[i] != nil {
				return
			}
			if errs[i] = updateplan.NormalUpdate(tbl, inputs, want); errs[i] != nil {
				return
			}
			for p := range want {
				for k := range want[p] {
					if math.Abs(want[p][k]-got[p][k]) > 1e-9 {
						errs[i] = fmt.Errorf("port %d index %d: plan %v, normal %v", p, k, got[p][k], want[p][k])
						return
					}
				}
			}
		}()
	}
	wg.Wait()
	for i, err := range errs {
		require.NoError(t, err, "table %d", i)
	}
}

// TestOptimizeErrors covers the fatal paths.
func TestOptimizeErrors(t *testing.T) {
	opt, err := optimizer.New()
	require.NoError(t, err)

	_, err = opt.Optimize(context.Background(), nil)
	require.ErrorIs(t, err, optimizer.ErrNilSource)

	_, err = opt.Optimize(context.Background(), tables{nil})
	require.ErrorIs(t, err, updateplan.ErrNilTable)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = opt.Optimize(ctx, tables{mustTable(t, []int{2, 2}, 1, 1)})
	require.ErrorIs(t, err, context.Canceled)

	_, err = opt.Lookup(nil)
	require.ErrorIs(t, err, updateplan.ErrNilTable)

	_, err = optimizer.New(optimizer.WithCoefficients(costmodel.Coefficients{
		Normal: costmodel.Model{Intercept: math.NaN()},
	}))
	require.ErrorIs(t, err, costmodel.ErrInvalidCoefficients)

	// A frozen table without energies cannot be prepared for min-sum.
	frozen := mustTable(t, []int{2, 3}, 1, 3)
	frozen.Freeze()
	ms, err := optimizer.New(
		optimizer.WithApproach(optimizer.Optimized),
		optimizer.WithPlanOptions(updateplan.WithSemiring(updateplan.MinSum)),
	)
	require.NoError(t, err)
	_, err = ms.Lookup(frozen)
	require.ErrorIs(t, err, factortable.ErrFrozen)
}

// TestOptionValidation covers the panicking constructors and ParseApproach.
func TestOptionValidation(t *testing.T) {
	require.Panics(t, func() { optimizer.WithApproach(optimizer.Undecided) })
	require.Panics(t, func() { optimizer.WithMemoryBudget(-1) })
	require.Panics(t, func() { optimizer.WithScaling(-1, 0) })
	require.Panics(t, func() { optimizer.WithScaling(1, math.Inf(1)) })
	require.Panics(t, func() { optimizer.WithWorkers(0) })

	for _, a := range []optimizer.Approach{optimizer.Normal, optimizer.Optimized, optimizer.Automatic} {
		got, err := optimizer.ParseApproach(a.String())
		require.NoError(t, err)
		require.Equal(t, a, got)
	}
	_, err := optimizer.ParseApproach("undecided")
	require.ErrorIs(t, err, optimizer.ErrUnknownApproach)

	o := optimizer.DefaultOptions()
	require.Equal(t, optimizer.Automatic, o.Approach())
	require.Zero(t, o.MemoryBudget())
	require.Positive(t, o.Workers())
}
