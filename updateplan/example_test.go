package updateplan_test

import (
	"fmt"

	"github.com/katalvlaran/factorplan/domain"
	"github.com/katalvlaran/factorplan/factortable"
	"github.com/katalvlaran/factorplan/updateplan"
)

// ExamplePlan_Execute plans a 2×2 table and replays it with uniform inputs.
func ExamplePlan_Execute() {
	l, _ := domain.NewListFromSizes(2, 2)
	tbl, _ := factortable.NewDense(l, []float64{1, 2, 3, 4})

	plan, _ := updateplan.Build(tbl, updateplan.WithNormalizeOutputs(false))
	for _, s := range plan.Steps() {
		fmt.Println(s)
	}

	inputs := [][]float64{{1, 1}, {1, 1}}
	outputs := [][]float64{make([]float64, 2), make([]float64, 2)}
	if err := plan.Execute(tbl, inputs, outputs, nil); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(outputs)
	// Output:
	// node 1 ← eliminate dim 1 from node 0 (4 → 2 entries, dense=true)
	// output port 0 ← node 1 (2 entries, dense=true)
	// node 2 ← eliminate dim 0 from node 0 (4 → 2 entries, dense=true)
	// output port 1 ← node 2 (2 entries, dense=true)
	// [[3 7] [4 6]]
}
