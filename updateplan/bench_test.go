package updateplan_test

import (
	"testing"

	"github.com/katalvlaran/factorplan/factorgen"
	"github.com/katalvlaran/factorplan/updateplan"
)

func benchTable(b *testing.B, density float64) ([]int, [][]float64, func() error, func() error) {
	b.Helper()
	sizes := []int{6, 5, 4, 6, 5, 4}
	tbl, err := factorgen.RandomTable(sizes, density, factorgen.WithSeed(1))
	if err != nil {
		b.Fatal(err)
	}
	inputs, _ := factorgen.RandomMessages(sizes, factorgen.WithSeed(2))
	plan, err := updateplan.Build(tbl)
	if err != nil {
		b.Fatal(err)
	}
	scratch := plan.NewScratch()
	out := factorgen.Messages(sizes)
	optimized := func() error { return plan.Execute(tbl, inputs, out, scratch) }
	normal := func() error { return updateplan.NormalUpdate(tbl, inputs, out) }

	return sizes, inputs, optimized, normal
}

// BenchmarkOptimizedDense replays a plan over a dense six-dimensional table.
func BenchmarkOptimizedDense(b *testing.B) {
	_, _, optimized, _ := benchTable(b, 1)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := optimized(); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkNormalDense runs the brute-force update on the same table.
func BenchmarkNormalDense(b *testing.B) {
	_, _, _, normal := benchTable(b, 1)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := normal(); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkOptimizedSparse replays a plan over a 10% dense table.
func BenchmarkOptimizedSparse(b *testing.B) {
	_, _, optimized, _ := benchTable(b, 0.1)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := optimized(); err != nil {
			b.Fatal(err)
		}
	}
}
