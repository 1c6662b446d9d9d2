package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/factorplan/costmodel"
	"github.com/katalvlaran/factorplan/updateplan"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := newApp(&stdout, &stderr).Run(append([]string{"ftplan"}, args...))

	return stdout.String(), stderr.String(), err
}

// TestPlanCommand plans a dense 3×2 table and lists its steps.
func TestPlanCommand(t *testing.T) {
	out, _, err := run(t, "plan", "--sizes", "3,2", "--steps")
	require.NoError(t, err)

	var r planReport
	require.NoError(t, yaml.Unmarshal([]byte(out), &r))
	require.Equal(t, []int{3, 2}, r.Sizes)
	require.Equal(t, 6, r.SparseSize)
	require.Len(t, r.Steps, 4)
	require.Equal(t, 4, r.Stats.Steps)
	require.Equal(t, 4, r.Optimized.Steps)
	require.Equal(t, 4, r.Normal.Steps)
	require.Len(t, r.Fingerprint, 32)
}

// TestOptimizeVerify replays every decision against brute force.
func TestOptimizeVerify(t *testing.T) {
	for _, sr := range []string{"sum-product", "min-sum"} {
		out, _, err := run(t, "optimize", "--tables", "6", "--approach", "optimized", "--semiring", sr, "--verify")
		require.NoError(t, err, sr)

		var r optimizeReport
		require.NoError(t, yaml.Unmarshal([]byte(out), &r))
		require.Equal(t, 6, r.Tables)
		require.Equal(t, 6, r.Optimized)
		require.NotNil(t, r.MaxDeviation)
		require.Less(t, *r.MaxDeviation, 1e-9)
	}
}

// TestOptimizeBudgetWarnings: a one-byte budget fits nothing.
func TestOptimizeBudgetWarnings(t *testing.T) {
	out, logs, err := run(t, "--log-level", "warn", "optimize", "--tables", "3", "--budget", "1")
	require.NoError(t, err)

	var r optimizeReport
	require.NoError(t, yaml.Unmarshal([]byte(out), &r))
	require.Equal(t, 3, r.Normal)
	require.Len(t, r.Warnings, 3)
	require.Contains(t, logs, "memory budget")
}

// TestOptimizeMetrics prints the collectors after the report.
func TestOptimizeMetrics(t *testing.T) {
	out, _, err := run(t, "optimize", "--tables", "2", "--metrics")
	require.NoError(t, err)
	require.Contains(t, out, "factorplan_optimizer_decisions_total")
	require.Contains(t, out, "factorplan_optimizer_estimated_memory_bytes_bucket")
}

// TestCoefficientsCommand prints the defaults as loadable YAML.
func TestCoefficientsCommand(t *testing.T) {
	out, _, err := run(t, "coefficients")
	require.NoError(t, err)
	c, err := costmodel.ParseCoefficients([]byte(out))
	require.NoError(t, err)
	require.Equal(t, costmodel.DefaultCoefficients(), c)

	_, _, err = run(t, "coefficients", "--coefficients", t.TempDir()+"/missing.yaml")
	require.Error(t, err)
}

// TestBadFlags rejects unknown values.
func TestBadFlags(t *testing.T) {
	_, _, err := run(t, "plan", "--semiring", "max-product")
	require.ErrorIs(t, err, updateplan.ErrUnknownSemiring)
	_, _, err = run(t, "plan", "--order", "sideways")
	require.Error(t, err)
	_, _, err = run(t, "optimize", "--approach", "undecided")
	require.Error(t, err)
	_, _, err = run(t, "--log-level", "loud", "plan")
	require.Error(t, err)
}
