package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/factorplan/costmodel"
	"github.com/katalvlaran/factorplan/domain"
	"github.com/katalvlaran/factorplan/factorgen"
	"github.com/katalvlaran/factorplan/fgraph"
	"github.com/katalvlaran/factorplan/optimizer"
	"github.com/katalvlaran/factorplan/updateplan"
)

// planFlags are shared by plan and optimize.
func planFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Int64Flag{Name: "seed", Value: 1, Usage: "generator seed"},
		&cli.StringFlag{Name: "semiring", Value: updateplan.SumProduct.String(), Usage: "sum-product or min-sum"},
		&cli.Float64Flag{Name: "threshold", Value: updateplan.DefaultSparseThreshold, Usage: "density at or above which intermediates are dense"},
		&cli.StringFlag{Name: "order", Value: "largest", Usage: "elimination order: largest, smallest or random"},
		&cli.StringFlag{Name: "coefficients", Usage: "cost-model coefficients YAML (default: built-in calibration)"},
	}
}

func planOptions(c *cli.Context) ([]updateplan.Option, error) {
	sr, err := updateplan.ParseSemiring(c.String("semiring"))
	if err != nil {
		return nil, err
	}

	var order updateplan.Order
	switch c.String("order") {
	case "largest":
		order = updateplan.OrderLargestFirst
	case "smallest":
		order = updateplan.OrderSmallestFirst
	case "random":
		order = updateplan.OrderRandom(rand.New(rand.NewSource(c.Int64("seed"))))
	default:
		return nil, fmt.Errorf("unknown order %q", c.String("order"))
	}

	threshold := c.Float64("threshold")
	if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("threshold %v not in [0,1]", threshold)
	}

	return []updateplan.Option{
		updateplan.WithSemiring(sr),
		updateplan.WithOrder(order),
		updateplan.WithSparseThreshold(threshold),
	}, nil
}

func loadCoefficients(c *cli.Context) (costmodel.Coefficients, error) {
	path := c.String("coefficients")
	if path == "" {
		return costmodel.DefaultCoefficients(), nil
	}
	coef, err := costmodel.LoadCoefficients(path)
	if err != nil {
		return costmodel.Coefficients{}, errors.Wrap(err, "coefficients")
	}

	return coef, nil
}

type estimateReport struct {
	ExecutionTime float64 `yaml:"execution_time"`
	Memory        int64   `yaml:"memory"`
	Steps         int     `yaml:"steps"`
}

func toReport(e costmodel.Estimate) estimateReport {
	return estimateReport{ExecutionTime: e.ExecutionTime, Memory: e.Memory, Steps: e.Stats.Steps}
}

type planReport struct {
	Sizes       []int                `yaml:"sizes"`
	SparseSize  int                  `yaml:"sparse_size"`
	Fingerprint string               `yaml:"fingerprint"`
	Semiring    string               `yaml:"semiring"`
	Steps       []string             `yaml:"steps,omitempty"`
	Stats       costmodel.Statistics `yaml:"stats"`
	Normal      estimateReport       `yaml:"normal"`
	Optimized   estimateReport       `yaml:"optimized"`
	Cheaper     string               `yaml:"cheaper"`
}

func planCommand() *cli.Command {
	return &cli.Command{
		Name:  "plan",
		Usage: "build the update plan of one random table",
		Flags: append(planFlags(),
			&cli.IntSliceFlag{Name: "sizes", Value: cli.NewIntSlice(4, 3, 5, 2), Usage: "domain size per dimension"},
			&cli.Float64Flag{Name: "density", Value: 1, Usage: "probability that an entry is stored"},
			&cli.IntSliceFlag{Name: "ports", Usage: "output ports (default: every dimension)"},
			&cli.BoolFlag{Name: "steps", Usage: "list the plan's steps"},
		),
		Action: func(c *cli.Context) error {
			opts, err := planOptions(c)
			if err != nil {
				return err
			}
			if c.IsSet("ports") {
				opts = append(opts, updateplan.WithPorts(c.IntSlice("ports")...))
			}
			coef, err := loadCoefficients(c)
			if err != nil {
				return err
			}
			tbl, err := factorgen.RandomTable(c.IntSlice("sizes"), c.Float64("density"), factorgen.WithSeed(c.Int64("seed")))
			if err != nil {
				return err
			}
			plan, err := updateplan.Build(tbl, opts...)
			if err != nil {
				return err
			}
			normalStats, err := updateplan.NormalStatistics(tbl, opts...)
			if err != nil {
				return err
			}
			normal, err := coef.Estimate(costmodel.Normal, normalStats)
			if err != nil {
				return err
			}
			optimized, err := coef.Estimate(costmodel.Optimized, plan.Stats())
			if err != nil {
				return err
			}

			r := planReport{
				Sizes:       tbl.Domains().Sizes(),
				SparseSize:  tbl.SparseSize(),
				Fingerprint: plan.Fingerprint().String(),
				Semiring:    plan.Semiring().String(),
				Stats:       plan.Stats(),
				Normal:      toReport(normal),
				Optimized:   toReport(optimized),
				Cheaper:     costmodel.Normal.String(),
			}
			if optimized.ExecutionTime < normal.ExecutionTime {
				r.Cheaper = costmodel.Optimized.String()
			}
			if c.Bool("steps") {
				for _, s := range plan.Steps() {
					r.Steps = append(r.Steps, s.String())
				}
			}

			return writeYAML(c, r)
		},
	}
}

type optimizeReport struct {
	Tables       int      `yaml:"tables"`
	Normal       int      `yaml:"normal"`
	Optimized    int      `yaml:"optimized"`
	Warnings     []string `yaml:"warnings,omitempty"`
	MaxDeviation *float64 `yaml:"max_deviation,omitempty"`
}

func optimizeCommand(logger logrus.FieldLogger) *cli.Command {
	return &cli.Command{
		Name:  "optimize",
		Usage: "decide the update approach of a generated factor graph",
		Flags: append(planFlags(),
			&cli.IntFlag{Name: "tables", Value: 8, Usage: "number of factor tables"},
			&cli.IntFlag{Name: "max-dims", Value: 5, Usage: "largest table dimensionality"},
			&cli.IntFlag{Name: "max-size", Value: 4, Usage: "largest domain size"},
			&cli.Float64Flag{Name: "density", Value: 0.5, Usage: "probability that an entry is stored"},
			&cli.StringFlag{Name: "approach", Value: optimizer.Automatic.String(), Usage: "normal, optimized or automatic"},
			&cli.Int64Flag{Name: "budget", Usage: "memory budget in bytes (0: unlimited)"},
			&cli.IntFlag{Name: "workers", Value: 4, Usage: "tables planned concurrently"},
			&cli.BoolFlag{Name: "verify", Usage: "compare every decision against brute force"},
			&cli.BoolFlag{Name: "metrics", Usage: "print the optimizer's metrics"},
		),
		Action: func(c *cli.Context) error {
			opts, err := planOptions(c)
			if err != nil {
				return err
			}
			coef, err := loadCoefficients(c)
			if err != nil {
				return err
			}
			approach, err := optimizer.ParseApproach(c.String("approach"))
			if err != nil {
				return err
			}
			if c.Int64("budget") < 0 || c.Int("workers") < 1 || c.Int("max-dims") < 1 || c.Int("max-size") < 1 {
				return fmt.Errorf("budget, workers, max-dims and max-size must be positive")
			}
			g, err := generateGraph(c)
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			opt, err := optimizer.New(
				optimizer.WithApproach(approach),
				optimizer.WithMemoryBudget(c.Int64("budget")),
				optimizer.WithCoefficients(coef),
				optimizer.WithWorkers(c.Int("workers")),
				optimizer.WithLogger(logger),
				optimizer.WithRegisterer(reg),
				optimizer.WithPlanOptions(opts...),
			)
			if err != nil {
				return err
			}
			report, err := opt.Optimize(context.Background(), g)
			if err != nil {
				return err
			}

			r := optimizeReport{Tables: report.Tables, Normal: report.Normal, Optimized: report.Optimized}
			for _, w := range report.WarningList() {
				r.Warnings = append(r.Warnings, w.Error())
			}
			if c.Bool("verify") {
				dev, err := verify(c, g, opt, opts)
				if err != nil {
					return err
				}
				r.MaxDeviation = &dev
			}
			if err := writeYAML(c, r); err != nil {
				return err
			}
			if c.Bool("metrics") {
				return writeMetrics(c, reg)
			}

			return nil
		},
	}
}

// generateGraph builds a factor graph of random tables, each over its own
// variables "t<i>.x<k>".
func generateGraph(c *cli.Context) (*fgraph.Graph, error) {
	n := c.Int("tables")
	rngs := factorgen.Streams(c.Int64("seed"), n)
	g := fgraph.NewGraph()
	for i, rng := range rngs {
		sizes := make([]int, 1+rng.Intn(c.Int("max-dims")))
		vars := make([]string, len(sizes))
		for k := range sizes {
			sizes[k] = 1 + rng.Intn(c.Int("max-size"))
			vars[k] = fmt.Sprintf("t%d.x%d", i, k)
			d, err := domain.NewRange(0, sizes[k]-1)
			if err != nil {
				return nil, err
			}
			if err := g.AddVariable(vars[k], d); err != nil {
				return nil, err
			}
		}
		tbl, err := factorgen.RandomTable(sizes, c.Float64("density"), factorgen.WithRand(rng))
		if err != nil {
			return nil, err
		}
		if _, err := g.AddFactor("", tbl, vars...); err != nil {
			return nil, err
		}
	}

	return g, nil
}

// verify replays every decision with random inputs and returns the largest
// deviation from the brute-force messages.
func verify(c *cli.Context, g *fgraph.Graph, opt *optimizer.Optimizer, opts []updateplan.Option) (float64, error) {
	sr, err := updateplan.ParseSemiring(c.String("semiring"))
	if err != nil {
		return 0, err
	}
	g.Freeze()
	defer g.Thaw()

	worst := 0.0
	for i, tbl := range g.Tables() {
		d, err := opt.Lookup(tbl)
		if err != nil {
			return 0, err
		}
		sizes := tbl.Domains().Sizes()
		inputs, err := factorgen.RandomMessages(sizes, factorgen.WithSeed(c.Int64("seed")+int64(i)))
		if err != nil {
			return 0, err
		}
		if sr == updateplan.MinSum {
			inputs = factorgen.ToEnergies(inputs)
		}
		got, want := factorgen.Messages(sizes), factorgen.Messages(sizes)
		if err := d.Update(tbl, inputs, got, nil); err != nil {
			return 0, err
		}
		if err := updateplan.NormalUpdate(tbl, inputs, want, opts...); err != nil {
			return 0, err
		}
		worst = math.Max(worst, deviation(got, want))
	}

	return worst, nil
}

func deviation(a, b [][]float64) float64 {
	worst := 0.0
	for p := range a {
		for i := range a[p] {
			if a[p][i] == b[p][i] {
				continue // equal infinities included
			}
			worst = math.Max(worst, math.Abs(a[p][i]-b[p][i]))
		}
	}

	return worst
}

func coefficientsCommand() *cli.Command {
	return &cli.Command{
		Name:  "coefficients",
		Usage: "print the cost-model coefficients as YAML",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "coefficients", Usage: "validate and re-print this YAML file instead of the defaults"},
		},
		Action: func(c *cli.Context) error {
			coef, err := loadCoefficients(c)
			if err != nil {
				return err
			}
			data, err := costmodel.MarshalCoefficients(coef)
			if err != nil {
				return err
			}
			_, err = c.App.Writer.Write(data)

			return err
		},
	}
}

func writeYAML(c *cli.Context, v any) error {
	enc := yaml.NewEncoder(c.App.Writer)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(err, "encode report")
	}

	return enc.Close()
}

func writeMetrics(c *cli.Context, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return errors.Wrap(err, "gather metrics")
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(c.App.Writer, mf); err != nil {
			return errors.Wrap(err, "write metrics")
		}
	}

	return nil
}
