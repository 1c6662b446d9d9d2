// SPDX-License-Identifier: MIT

package updateplan

import (
	"fmt"

	"github.com/katalvlaran/factorplan/costmodel"
	"github.com/katalvlaran/factorplan/factortable"
)

// StepKind distinguishes the two step types.
type StepKind int

const (
	// Marginalization eliminates one dimension of an intermediate.
	Marginalization StepKind = iota
	// OutputStep writes a single-dimension intermediate to an output message.
	OutputStep
)

// String implements fmt.Stringer.
func (k StepKind) String() string {
	if k == OutputStep {
		return "output"
	}

	return "marginalize"
}

// Step is one instruction of a plan. Node 0 is the factor table itself.
type Step struct {
	Kind          StepKind
	Source        int  // node read
	Target        int  // node written; -1 for output steps
	Dim           int  // eliminated dimension, or the port written
	DenseSource   bool // source holds every joint index of its dimensions
	DenseTarget   bool // target is dense (marginalization only)
	SourceEntries int
	TargetEntries int

	toTarget []int // source entry → target entry
	elimIdx  []int // source entry → index of Dim
	portIdx  []int // source entry → port index; unused when the source is dense
}

// String renders the step for plan dumps.
func (s Step) String() string {
	if s.Kind == OutputStep {
		return fmt.Sprintf("output port %d ← node %d (%d entries, dense=%t)", s.Dim, s.Source, s.SourceEntries, s.DenseSource)
	}

	return fmt.Sprintf("node %d ← eliminate dim %d from node %d (%d → %d entries, dense=%t)",
		s.Target, s.Dim, s.Source, s.SourceEntries, s.TargetEntries, s.DenseTarget)
}

// Plan is an immutable update plan for every table with the fingerprint it
// was built from. It is safe for concurrent replay with distinct scratches.
type Plan struct {
	semiring    Semiring
	normalize   bool
	sizes       []int
	ports       []int // ascending
	rootSparse  bool
	rootJoints  []int // root sparse structure; nil when rootSparse is false
	rootEntries int
	nodeEntries []int // per node; [0] is the root
	steps       []Step
	stats       costmodel.Statistics
	fingerprint factortable.Fingerprint
}

// Steps returns the steps in execution order.
func (p *Plan) Steps() []Step { return append([]Step(nil), p.steps...) }

// StepCount returns the number of steps.
func (p *Plan) StepCount() int { return len(p.steps) }

// Ports returns the output ports in ascending order.
func (p *Plan) Ports() []int { return append([]int(nil), p.ports...) }

// Stats returns the statistics the cost model prices.
func (p *Plan) Stats() costmodel.Statistics { return p.stats }

// Semiring returns the plan's algebra.
func (p *Plan) Semiring() Semiring { return p.semiring }

// RootSparse reports whether the plan reads the table's sparse store.
func (p *Plan) RootSparse() bool { return p.rootSparse }

// RootStore returns the table store the plan reads.
func (p *Plan) RootStore() factortable.Representation { return p.semiring.valueStore(p.rootSparse) }

// Fingerprint returns the structure fingerprint of the table the plan was built for.
func (p *Plan) Fingerprint() factortable.Fingerprint { return p.fingerprint }

// Scratch holds the intermediate tables of one plan invocation.
// A Scratch must not be shared between concurrent invocations.
type Scratch struct {
	values [][]float64 // per node; [0] unused
}

// NewScratch allocates every intermediate of the plan.
// Complexity: O(Σ intermediate entries).
func (p *Plan) NewScratch() *Scratch {
	s := &Scratch{values: make([][]float64, len(p.nodeEntries))}
	for id := 1; id < len(p.nodeEntries); id++ {
		s.values[id] = make([]float64, p.nodeEntries[id])
	}

	return s
}

func (p *Plan) scratchFits(s *Scratch) bool {
	if s == nil || len(s.values) != len(p.nodeEntries) {
		return false
	}
	for id := 1; id < len(p.nodeEntries); id++ {
		if len(s.values[id]) != p.nodeEntries[id] {
			return false
		}
	}

	return true
}
