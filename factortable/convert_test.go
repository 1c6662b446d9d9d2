package factortable_test

import (
	"testing"

	"github.com/katalvlaran/factorplan/domain"
	"github.com/katalvlaran/factorplan/factortable"
	"github.com/stretchr/testify/require"
)

func ramp(t *testing.T, sizes ...int) *factortable.Table {
	t.Helper()
	l := mustList(t, sizes...)
	w := make([]float64, l.Cardinality())
	for j := range w {
		w[j] = float64(j + 1)
	}
	tbl, err := factortable.NewDense(l, w)
	require.NoError(t, err)

	return tbl
}

func total(tbl *factortable.Table) float64 {
	sum := 0.0
	for e := range tbl.Entries() {
		sum += e.Weight
	}

	return sum
}

// TestPermuteConverter swaps the two dimensions of a [2,3] table.
func TestPermuteConverter(t *testing.T) {
	tbl := ramp(t, 2, 3)
	c, err := factortable.NewPermuteConverter(tbl.Domains(), []int{1, 0})
	require.NoError(t, err)

	out, err := tbl.Convert(c)
	require.NoError(t, err)
	require.Equal(t, []int{3, 2}, out.Domains().Sizes())
	for i := 0; i < 2; i++ {
		for j := 0; j < 3; j++ {
			want, _ := tbl.WeightForIndices(i, j)
			got, _ := out.WeightForIndices(j, i)
			require.Equal(t, want, got)
		}
	}

	_, err = factortable.NewPermuteConverter(tbl.Domains(), []int{0, 0})
	require.ErrorIs(t, err, factortable.ErrOutOfRange)
}

// TestPermuteKeepsDirection maps the input set through the permutation.
func TestPermuteKeepsDirection(t *testing.T) {
	b := domain.NewBoolean()
	l, _ := domain.NewDirectedList([]int{0}, b, domain.MustRange(0, 2))
	c, err := factortable.NewPermuteConverter(l, []int{1, 0})
	require.NoError(t, err)
	require.Equal(t, []int{1}, c.TargetDomains().InputSet())
}

// TestMarginalizeConverter sums out the middle dimension and keeps the mass.
func TestMarginalizeConverter(t *testing.T) {
	tbl := ramp(t, 2, 3, 2)
	c, err := factortable.NewMarginalizeConverter(tbl.Domains(), 1)
	require.NoError(t, err)

	out, err := tbl.Convert(c)
	require.NoError(t, err)
	require.Equal(t, []int{2, 2}, out.Domains().Sizes())
	require.InDelta(t, total(tbl), total(out), 1e-9)

	// (0,·,0) holds joints 0, 2, 4 → weights 1 + 3 + 5.
	w, _ := out.WeightForIndices(0, 0)
	require.Equal(t, 9.0, w)

	_, err = factortable.NewMarginalizeConverter(tbl.Domains(), 0, 1, 2)
	require.ErrorIs(t, err, factortable.ErrOutOfRange)
}

// TestJoinAndSplitConverters merges two dimensions and splits them back.
func TestJoinAndSplitConverters(t *testing.T) {
	tbl := ramp(t, 2, 3)
	join, err := factortable.NewJoinConverter(tbl.Domains(), []int{0, 1})
	require.NoError(t, err)
	joined, err := tbl.Convert(join)
	require.NoError(t, err)
	require.Equal(t, []int{6}, joined.Domains().Sizes())

	split, err := factortable.NewSplitConverter(joined.Domains(), 0, 2, 3)
	require.NoError(t, err)
	back, err := joined.Convert(split)
	require.NoError(t, err)
	require.Equal(t, collect(tbl), collect(back))

	_, err = factortable.NewSplitConverter(joined.Domains(), 0, 4, 2)
	require.ErrorIs(t, err, factortable.ErrDimensionMismatch)
}

// TestJoinAppendsMergedDimension joins the outer dimensions of a [2,3,2] table.
func TestJoinAppendsMergedDimension(t *testing.T) {
	tbl := ramp(t, 2, 3, 2)
	join, err := factortable.NewJoinConverter(tbl.Domains(), []int{2, 0})
	require.NoError(t, err)
	out, err := tbl.Convert(join)
	require.NoError(t, err)
	require.Equal(t, []int{3, 4}, out.Domains().Sizes())

	// Source (1,2,0) is joint 10 (weight 11); merged index = 0*2 + 1 = 1.
	w, _ := out.WeightForIndices(2, 1)
	require.Equal(t, 11.0, w)
}

// TestConverterRoutes checks the domain lists and the emitted targets of
// every converter on one [2,3,2] source tuple.
func TestConverterRoutes(t *testing.T) {
	l := mustList(t, 2, 3, 2)
	permute, err := factortable.NewPermuteConverter(l, []int{2, 0, 1})
	require.NoError(t, err)
	join, err := factortable.NewJoinConverter(l, []int{0, 1})
	require.NoError(t, err)
	split, err := factortable.NewSplitConverter(mustList(t, 6), 0, 2, 3)
	require.NoError(t, err)
	marg, err := factortable.NewMarginalizeConverter(l, 1)
	require.NoError(t, err)

	cases := []struct {
		name    string
		c       factortable.Converter
		source  []int
		sizes   []int
		targets [][]int
	}{
		{"permute", permute, []int{1, 2, 0}, []int{2, 2, 3}, [][]int{{0, 1, 2}}},
		{"join", join, []int{1, 2, 0}, []int{2, 6}, [][]int{{0, 5}}},
		{"split", split, []int{4}, []int{2, 3}, [][]int{{1, 1}}},
		{"marginalize", marg, []int{1, 2, 0}, []int{2, 2}, [][]int{{1, 0}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.sizes, tc.c.TargetDomains().Sizes())
			var got [][]int
			tc.c.Route(tc.source, func(target []int, share float64) {
				require.Equal(t, 1.0, share)
				got = append(got, append([]int(nil), target...))
			})
			require.Equal(t, tc.targets, got)
		})
	}
	require.Same(t, l, permute.SourceDomains())
	require.Same(t, l, join.SourceDomains())
	require.Same(t, l, marg.SourceDomains())
	require.Equal(t, []int{6}, split.SourceDomains().Sizes())
}

// TestConvertSparseAndErrors keeps sparse storage and rejects mismatched converters.
func TestConvertSparseAndErrors(t *testing.T) {
	tbl, err := factortable.NewSparse(mustList(t, 3, 3), [][]int{{0, 2}, {2, 0}}, []float64{0.4, 0.6})
	require.NoError(t, err)
	require.NoError(t, tbl.Normalize())

	c, _ := factortable.NewPermuteConverter(tbl.Domains(), []int{1, 0})
	out, err := tbl.Convert(c)
	require.NoError(t, err)
	require.False(t, out.HasDenseRepresentation())
	require.Equal(t, []int{2, 6}, out.UnsafeSparseToJoint())
	require.True(t, out.IsNormalized())

	other, _ := factortable.NewPermuteConverter(mustList(t, 2, 2), []int{1, 0})
	_, err = tbl.Convert(other)
	require.ErrorIs(t, err, factortable.ErrDimensionMismatch)
	_, err = tbl.Convert(nil)
	require.ErrorIs(t, err, factortable.ErrNilConverter)
}
