package optimizer_test

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/factorplan/domain"
	"github.com/katalvlaran/factorplan/factortable"
	"github.com/katalvlaran/factorplan/optimizer"
)

// ExampleOptimizer_Lookup shows the memory-budget fallback: the optimized
// plan of a dense 3×3×3 table needs 1584 bytes, brute force 72.
func ExampleOptimizer_Lookup() {
	l, _ := domain.NewListFromSizes(3, 3, 3)
	w := make([]float64, l.Cardinality())
	for j := range w {
		w[j] = 1
	}
	tbl, _ := factortable.NewDense(l, w)

	opt, _ := optimizer.New(optimizer.WithMemoryBudget(256))
	d, err := opt.Lookup(tbl)
	if err != nil {
		fmt.Println(err)
		return
	}
	s, _ := opt.Settings(tbl)
	fmt.Println(d.Approach, s.Normal.Memory, s.Optimized.Memory)
	fmt.Println(errors.Is(s.Warning, optimizer.ErrPlanInfeasible))
	// Output:
	// normal 72 1584
	// true
}
