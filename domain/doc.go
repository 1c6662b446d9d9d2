// Package domain describes the discrete value spaces a factor table is
// defined over.
//
// A Discrete domain is an ordered, duplicate-free list of comparable
// elements; the position of an element is its index. A List is an ordered
// sequence of domains, one per table dimension, optionally split into an
// input set and an output set for directed factors.
//
// Lists are immutable after construction and safe for concurrent reads.
//
//	bits := domain.NewBoolean()
//	list, _ := domain.NewDirectedList([]int{0}, bits, bits) // dim 0 → dim 1
//	idx, _ := list.IndicesFromArguments([]any{true, false}, nil)
//	// idx == []int{1, 0}
package domain
