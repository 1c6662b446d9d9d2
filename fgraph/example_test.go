package fgraph_test

import (
	"fmt"

	"github.com/katalvlaran/factorplan/domain"
	"github.com/katalvlaran/factorplan/factorgen"
	"github.com/katalvlaran/factorplan/fgraph"
)

// ExampleGraph_AddFactor builds a two-variable graph and lists its factors.
func ExampleGraph_AddFactor() {
	g := fgraph.NewGraph()
	_ = g.AddVariable("rain", domain.NewBoolean())
	_ = g.AddVariable("wet", domain.NewBoolean())

	prior, _ := factorgen.UniformTable([]int{2})
	cpt, _ := factorgen.UniformTable([]int{2, 2}, factorgen.WithInputs(0))
	_, _ = g.AddFactor("prior", prior, "rain")
	id, _ := g.AddFactor("", cpt, "rain", "wet")

	for _, f := range g.Factors() {
		fmt.Println(f.ID, f.Variables, f.Table.IsDirected())
	}
	fmt.Println(id)
	// Output:
	// f1 [rain wet] true
	// prior [rain] false
	// f1
}
