package domain_test

import (
	"testing"

	"github.com/katalvlaran/factorplan/domain"
	"github.com/stretchr/testify/require"
)

// TestNewDiscreteValidation covers the construction failures.
func TestNewDiscreteValidation(t *testing.T) {
	_, err := domain.NewDiscrete()
	require.ErrorIs(t, err, domain.ErrEmptyDomain)

	_, err = domain.NewDiscrete(1, nil)
	require.ErrorIs(t, err, domain.ErrNilElement)

	_, err = domain.NewDiscrete("a", "b", "a")
	require.ErrorIs(t, err, domain.ErrDuplicateElement)

	_, err = domain.NewDiscrete([]int{1})
	require.ErrorIs(t, err, domain.ErrNotComparable)

	_, err = domain.NewRange(3, 2)
	require.ErrorIs(t, err, domain.ErrEmptyDomain)
}

// TestDiscreteIndexOf verifies the value→index map and its inverse.
func TestDiscreteIndexOf(t *testing.T) {
	d, err := domain.NewDiscrete("red", "green", "blue")
	require.NoError(t, err)
	require.Equal(t, 3, d.Size())

	i, ok := d.IndexOf("blue")
	require.True(t, ok)
	require.Equal(t, 2, i)

	_, ok = d.IndexOf("purple")
	require.False(t, ok)

	_, ok = d.IndexOf([]string{"red"}) // not comparable, must not panic
	require.False(t, ok)

	e, err := d.ElementAt(1)
	require.NoError(t, err)
	require.Equal(t, "green", e)

	_, err = d.ElementAt(3)
	require.ErrorIs(t, err, domain.ErrOutOfRange)
}

// TestDirectedListSets checks the input/output partition and its validation.
func TestDirectedListSets(t *testing.T) {
	b := domain.NewBoolean()
	r := domain.MustRange(0, 2)

	l, err := domain.NewDirectedList([]int{2, 0}, b, r, b)
	require.NoError(t, err)
	require.True(t, l.IsDirected())
	require.Equal(t, []int{0, 2}, l.InputSet())
	require.Equal(t, []int{1}, l.OutputSet())
	require.True(t, l.IsInput(0))
	require.False(t, l.IsInput(1))
	require.Equal(t, []int{2, 3, 2}, l.Sizes())
	require.Equal(t, 12, l.Cardinality())

	_, err = domain.NewDirectedList(nil, b, b)
	require.ErrorIs(t, err, domain.ErrInvalidInputSet)
	_, err = domain.NewDirectedList([]int{0, 1}, b, b)
	require.ErrorIs(t, err, domain.ErrInvalidInputSet)
	_, err = domain.NewDirectedList([]int{0, 0}, b, b, b)
	require.ErrorIs(t, err, domain.ErrInvalidInputSet)
	_, err = domain.NewDirectedList([]int{5}, b, b)
	require.ErrorIs(t, err, domain.ErrInvalidInputSet)
}

// TestArgumentsRoundTrip maps arguments to indices and back.
func TestArgumentsRoundTrip(t *testing.T) {
	colors, _ := domain.NewDiscrete("r", "g")
	l, err := domain.NewList(domain.NewBoolean(), colors, domain.MustRange(5, 7))
	require.NoError(t, err)

	idx, err := l.IndicesFromArguments([]any{true, "g", 6}, nil)
	require.NoError(t, err)
	require.Equal(t, []int{1, 1, 1}, idx)

	args, err := l.ArgumentsFromIndices(idx, nil)
	require.NoError(t, err)
	require.Equal(t, []any{true, "g", 6}, args)

	_, err = l.IndicesFromArguments([]any{true, "b", 6}, nil)
	require.ErrorIs(t, err, domain.ErrDomainMismatch)

	_, err = l.IndicesFromArguments([]any{true}, nil)
	require.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

// TestListEqual compares elements, shape and direction.
func TestListEqual(t *testing.T) {
	a, _ := domain.NewListFromSizes(2, 3)
	b, _ := domain.NewListFromSizes(2, 3)
	c, _ := domain.NewDirectedList([]int{0}, domain.MustRange(0, 1), domain.MustRange(0, 2))

	require.True(t, a.Equal(b))
	require.False(t, a.Equal(c))
	require.True(t, a.SameShape(c))
}
