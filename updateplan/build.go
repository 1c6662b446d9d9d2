// SPDX-License-Identifier: MIT

package updateplan

import (
	"fmt"
	"sort"

	"github.com/katalvlaran/factorplan/costmodel"
	"github.com/katalvlaran/factorplan/factortable"
	"github.com/katalvlaran/factorplan/jointindex"
)

const bytesPerValue = 8

// Builder builds and estimates plans with fixed options.
// A Builder is safe for concurrent use.
type Builder struct {
	opts Options
}

// NewBuilder resolves opts over the defaults.
func NewBuilder(opts ...Option) *Builder { return &Builder{opts: gatherOptions(opts)} }

// Options returns the resolved options.
func (b *Builder) Options() Options { return b.opts }

// Build constructs the plan for table.
func Build(table *factortable.Table, opts ...Option) (*Plan, error) {
	return NewBuilder(opts...).Build(table)
}

// Estimate returns the statistics of the plan Build would produce.
func Estimate(table *factortable.Table, opts ...Option) (costmodel.Statistics, error) {
	return NewBuilder(opts...).Estimate(table)
}

// Build constructs the elimination-tree plan for table.
// Stage 1 (Validate): ports and elimination order.
// Stage 2 (Walk): eliminate non-port dimensions, then split ports recursively.
// Stage 3 (Finalize): record node sizes and statistics.
// Errors: ErrNilTable, ErrBadPort, ErrBadOrder.
// Complexity: O(S·n·steps) time, O(Σ intermediate entries) memory.
func (b *Builder) Build(table *factortable.Table) (*Plan, error) {
	w, err := b.walk(table, true)
	if err != nil {
		return nil, fmt.Errorf("Build: %w", err)
	}
	p := &Plan{
		semiring:    b.opts.semiring,
		normalize:   b.opts.normalize,
		sizes:       table.Domains().Sizes(),
		ports:       append([]int(nil), w.portsAsc...),
		rootSparse:  w.nodes[0].joints != nil,
		rootEntries: w.nodes[0].entries(),
		nodeEntries: make([]int, len(w.nodes)),
		steps:       w.steps,
		stats:       w.stats,
		fingerprint: table.Fingerprint(),
	}
	for id, n := range w.nodes {
		p.nodeEntries[id] = n.entries()
	}
	if p.rootSparse {
		p.rootJoints = make([]int, len(w.nodes[0].joints))
		copy(p.rootJoints, w.nodes[0].joints)
	}

	return p, nil
}

// Estimate is a dry run of Build: same walk and statistics, no index arrays.
// Errors: as Build.
func (b *Builder) Estimate(table *factortable.Table) (costmodel.Statistics, error) {
	w, err := b.walk(table, false)
	if err != nil {
		return costmodel.Statistics{}, fmt.Errorf("Estimate: %w", err)
	}

	return w.stats, nil
}

// node is an intermediate table during the walk.
type node struct {
	dims   []int // table dimensions held, ascending
	codec  *jointindex.Codec
	joints []int // present joint indices, ascending; nil when dense
}

func (n *node) entries() int {
	if n.joints == nil {
		return n.codec.JointSize()
	}

	return len(n.joints)
}

func (n *node) joint(e int) int {
	if n.joints == nil {
		return e
	}

	return n.joints[e]
}

type walker struct {
	threshold   float64
	materialize bool
	isPort      []bool // per dimension
	portsAsc    []int
	nodes       []*node
	steps       []Step
	stats       costmodel.Statistics
}

func (b *Builder) walk(table *factortable.Table, materialize bool) (*walker, error) {
	if table == nil {
		return nil, ErrNilTable
	}
	sizes := table.Domains().Sizes()
	n := len(sizes)

	ranking := b.opts.order(sizes)
	if !isPermutation(ranking, n) {
		return nil, fmt.Errorf("order %v for %d dimensions: %w", ranking, n, ErrBadOrder)
	}
	isPort, portsAsc, err := resolvePorts(b.opts.ports, n)
	if err != nil {
		return nil, err
	}

	w := &walker{
		threshold:   b.opts.threshold,
		materialize: materialize,
		isPort:      isPort,
		portsAsc:    portsAsc,
	}
	root := &node{dims: make([]int, n), codec: table.Codec()}
	for d := range root.dims {
		root.dims[d] = d
	}
	if table.HasSparseRepresentation() {
		root.joints = table.UnsafeSparseToJoint()
	}
	w.nodes = append(w.nodes, root)
	w.stats.NonZero = int64(root.entries())
	w.stats.Dimensions = int64(n)

	cur := 0
	for _, dim := range ranking {
		if !isPort[dim] {
			cur = w.marginalize(cur, dim)
		}
	}
	ports := make([]int, 0, len(portsAsc))
	for _, dim := range ranking {
		if isPort[dim] {
			ports = append(ports, dim)
		}
	}
	w.split(cur, ports)
	w.stats.Steps = len(w.steps)

	return w, nil
}

// split emits the subtree computing every port in ports (rank order) from
// node id, whose dimensions are exactly ports.
func (w *walker) split(id int, ports []int) {
	if len(ports) == 1 {
		w.output(id, ports[0])
		return
	}
	half := len(ports) / 2
	for _, side := range [2][2][]int{{ports[:half], ports[half:]}, {ports[half:], ports[:half]}} {
		keep, drop := side[0], side[1]
		cur := id
		for _, dim := range drop {
			cur = w.marginalize(cur, dim)
		}
		w.split(cur, keep)
	}
}

// marginalize emits the step eliminating dim from node id and returns the
// new node.
func (w *walker) marginalize(id, dim int) int {
	src := w.nodes[id]
	pos := sort.SearchInts(src.dims, dim)
	keep := make([]int, 0, len(src.dims)-1)
	dstDims := make([]int, 0, len(src.dims)-1)
	for k, d := range src.dims {
		if k != pos {
			keep = append(keep, k)
			dstDims = append(dstDims, d)
		}
	}
	proj, err := jointindex.NewProjection(src.codec, keep)
	if err != nil {
		// keep is a valid non-empty subset of src's dimensions.
		panic(err)
	}
	dst := &node{dims: dstDims, codec: proj.Target()}

	n := src.entries()
	targets := make([]int, n)
	for e := 0; e < n; e++ {
		targets[e] = proj.Project(src.joint(e))
	}

	dense := src.joints == nil
	if !dense {
		present := uniqueSorted(targets)
		density := float64(len(present)) / float64(dst.codec.JointSize())
		if density >= w.threshold {
			dense = true
		} else {
			dst.joints = present
			for e, t := range targets {
				targets[e] = sort.SearchInts(present, t)
			}
		}
	}

	step := Step{
		Kind:          Marginalization,
		Source:        id,
		Target:        len(w.nodes),
		Dim:           dim,
		DenseSource:   src.joints == nil,
		DenseTarget:   dense,
		SourceEntries: n,
		TargetEntries: dst.entries(),
	}
	if w.materialize {
		step.toTarget = targets
		step.elimIdx = make([]int, n)
		for e := 0; e < n; e++ {
			step.elimIdx[e] = src.codec.IndexAt(src.joint(e), pos)
		}
	}
	if dense {
		w.stats.DenseMarginalizationSize += int64(n)
	} else {
		w.stats.SparseMarginalizationSize += int64(n)
	}
	w.stats.Memory += int64(bytesPerValue * (step.TargetEntries + 2*n))
	w.nodes = append(w.nodes, dst)
	w.steps = append(w.steps, step)

	return step.Target
}

// output emits the step writing port dim from the single-dimension node id.
func (w *walker) output(id, dim int) {
	src := w.nodes[id]
	step := Step{
		Kind:          OutputStep,
		Source:        id,
		Target:        -1,
		Dim:           dim,
		DenseSource:   src.joints == nil,
		SourceEntries: src.entries(),
	}
	if w.materialize && src.joints != nil {
		step.portIdx = make([]int, len(src.joints))
		copy(step.portIdx, src.joints) // a one-dimensional joint index is the port index
	}
	w.stats.OutputSize += int64(step.SourceEntries)
	w.stats.Memory += int64(bytesPerValue * src.codec.JointSize())
	w.steps = append(w.steps, step)
}

func resolvePorts(ports []int, n int) ([]bool, []int, error) {
	isPort := make([]bool, n)
	if ports == nil {
		asc := make([]int, n)
		for d := range asc {
			isPort[d], asc[d] = true, d
		}

		return isPort, asc, nil
	}
	if len(ports) == 0 {
		return nil, nil, fmt.Errorf("no ports: %w", ErrBadPort)
	}
	for _, p := range ports {
		if p < 0 || p >= n || isPort[p] {
			return nil, nil, fmt.Errorf("port %d of %d dimensions: %w", p, n, ErrBadPort)
		}
		isPort[p] = true
	}
	asc := append([]int(nil), ports...)
	sort.Ints(asc)

	return isPort, asc, nil
}

func isPermutation(perm []int, n int) bool {
	if len(perm) != n {
		return false
	}
	seen := make([]bool, n)
	for _, d := range perm {
		if d < 0 || d >= n || seen[d] {
			return false
		}
		seen[d] = true
	}

	return true
}

// uniqueSorted never returns nil: a nil joints slice marks a dense node.
func uniqueSorted(values []int) []int {
	out := make([]int, len(values))
	copy(out, values)
	sort.Ints(out)
	k := 0
	for i, v := range out {
		if i == 0 || v != out[k-1] {
			out[k] = v
			k++
		}
	}

	return out[:k]
}
