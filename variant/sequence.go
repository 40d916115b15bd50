// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package variant

// Base returns the base at a position of the evolved sequence.
func (c *Chrom) Base(pos int) byte {
	i := c.precedingMutation(pos)
	if i == len(c.muts) {
		return c.ref.At(pos)
	}
	return c.base(pos, i)
}

// Base returns the base at a position of the evolved sequence
// using the index of the nearest preceding mutation as a hint.
func (c *Chrom) base(pos, mutI int) byte {
	m := c.muts[mutI]
	ind := pos - m.New
	if ind <= m.SizeMod {
		return m.Seq[ind]
	}
	return c.ref.At(ind + m.Old - m.SizeMod)
}

// RefPos returns the position on the reference
// that contributes the base
// at a position of the evolved sequence.
// For a base inserted by a mutation,
// it returns the reference position
// where the mutation is anchored.
func (c *Chrom) RefPos(pos int) int {
	i := c.precedingMutation(pos)
	if i == len(c.muts) {
		return pos
	}
	m := c.muts[i]
	ind := pos - m.New
	if ind <= m.SizeMod {
		return m.Old
	}
	return ind + m.Old - m.SizeMod
}

// Region materializes a part of the evolved sequence,
// walking the mutation list and the reference in parallel.
// A region that runs past the end of the sequence
// is truncated.
// This is the interface used to extract sequences
// without ever building the whole evolved string.
func (c *Chrom) Region(start, size int) string {
	if start >= c.size || size <= 0 {
		return ""
	}
	if start+size > c.size {
		size = c.size - start
	}

	buf := make([]byte, 0, size)

	i := c.precedingMutation(start)
	if i == len(c.muts) {
		i = -1
	}
	for pos := start; pos < start+size; pos++ {
		for i+1 < len(c.muts) && c.muts[i+1].New <= pos {
			i++
		}
		if i < 0 {
			buf = append(buf, c.ref.At(pos))
			continue
		}
		buf = append(buf, c.base(pos, i))
	}
	return string(buf)
}

// Sequence materializes the whole evolved sequence.
func (c *Chrom) Sequence() string {
	return c.Region(0, c.size)
}
