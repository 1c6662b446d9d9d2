package factortable_test

import (
	"fmt"

	"github.com/katalvlaran/factorplan/domain"
	"github.com/katalvlaran/factorplan/factortable"
)

// ExampleTable_EvalDeterministic evaluates a directed XOR factor.
func ExampleTable_EvalDeterministic() {
	b := domain.NewBoolean()
	l, _ := domain.NewDirectedList([]int{0, 1}, b, b, b)
	tbl, _ := factortable.New(l)
	for _, x := range []bool{false, true} {
		for _, y := range []bool{false, true} {
			_ = tbl.SetWeightForArguments(1, x, y, x != y)
		}
	}

	args := []any{true, false, nil}
	_ = tbl.EvalDeterministic(args)
	fmt.Println(tbl.IsDeterministicDirected(), args)
	// Output: true [true false true]
}

// ExampleTable_Compact shows a zeroed entry leaving the sparse store.
func ExampleTable_Compact() {
	l, _ := domain.NewListFromSizes(3, 2)
	tbl, _ := factortable.NewDense(l, []float64{1, 1, 1, 1, 1, 1})
	_ = tbl.SetWeightForIndices(0, 1, 1)

	removed, _ := tbl.Compact()
	s, _ := tbl.SparseIndexFromIndices(1, 1)
	fmt.Printf("density=%.3f removed=%d sparse=%d slot=%d\n", tbl.Density(), removed, tbl.SparseSize(), s)
	// Output: density=0.833 removed=1 sparse=5 slot=-4
}
