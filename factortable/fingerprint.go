// SPDX-License-Identifier: MIT

package factortable

import (
	"encoding/binary"
	"fmt"

	"github.com/spaolacci/murmur3"
)

// Fingerprint is a 128-bit murmur3 digest of a table's structure.
type Fingerprint [2]uint64

// String renders the digest as 32 hex digits.
func (f Fingerprint) String() string { return fmt.Sprintf("%016x%016x", f[0], f[1]) }

// Fingerprint hashes the dimension sizes, the input set and the sparse
// structure (or a dense marker). Values are not hashed: two tables with
// equal fingerprints accept the same update plan.
// Complexity: O(n + S).
func (t *Table) Fingerprint() Fingerprint {
	h := murmur3.New128()
	var buf [8]byte
	put := func(v int) {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		_, _ = h.Write(buf[:])
	}

	put(t.codec.Dimensions())
	for _, s := range t.domains.Sizes() {
		put(s)
	}
	inputs := t.domains.InputSet()
	put(len(inputs))
	for _, dim := range inputs {
		put(dim)
	}
	if t.sparseToJoint == nil {
		put(-1)
	} else {
		put(len(t.sparseToJoint))
		for _, j := range t.sparseToJoint {
			put(j)
		}
	}
	h1, h2 := h.Sum128()

	return Fingerprint{h1, h2}
}
