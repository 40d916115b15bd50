// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package variant

import "slices"

// AddSubstitution places a single base substitution
// at a position of the evolved sequence.
// The position must be smaller than the sequence size.
func (c *Chrom) AddSubstitution(base byte, pos int) {
	i := c.precedingMutation(pos)

	if i == len(c.muts) {
		// no mutation precedes the position:
		// old and new positions are the same
		c.muts = slices.Insert(c.muts, 0, Mutation{
			Old: pos,
			New: pos,
			Seq: string(base),
		})
		return
	}

	m := &c.muts[i]
	ind := pos - m.New
	if ind <= m.SizeMod {
		// inside the replacement string of the mutation
		b := []byte(m.Seq)
		b[ind] = base
		m.Seq = string(b)
		return
	}

	// on the reference segment that follows the mutation
	old := ind + m.Old - m.SizeMod
	c.muts = slices.Insert(c.muts, i+1, Mutation{
		Old: old,
		New: pos,
		Seq: string(base),
	})
}

// AddInsertion inserts bases at a position of the evolved sequence.
// The first base of seq replaces the base at the position,
// so an insertion of net size L carries L+1 bases.
// The position must be smaller than the sequence size.
func (c *Chrom) AddInsertion(seq string, pos int) {
	i := c.precedingMutation(pos)
	size := len(seq) - 1

	if i == len(c.muts) {
		c.muts = slices.Insert(c.muts, 0, Mutation{
			Old:     pos,
			New:     pos,
			SizeMod: size,
			Seq:     seq,
		})
		c.shift(1, size)
		return
	}

	m := &c.muts[i]
	ind := pos - m.New
	if ind <= m.SizeMod {
		// splice into the replacement string of the mutation
		m.Seq = m.Seq[:ind] + seq + m.Seq[ind+1:]
		m.SizeMod += size
		c.shift(i+1, size)
		return
	}

	old := ind + m.Old - m.SizeMod
	c.muts = slices.Insert(c.muts, i+1, Mutation{
		Old:     old,
		New:     pos,
		SizeMod: size,
		Seq:     seq,
	})
	c.shift(i+2, size)
}

// AddDeletion deletes up to size bases
// starting at a position of the evolved sequence.
// A deletion past the end of the sequence is clamped.
func (c *Chrom) AddDeletion(size, pos int) {
	if size <= 0 || pos >= c.size {
		return
	}

	delStart := pos
	delEnd := delStart + size - 1
	if delEnd > c.size-1 {
		delEnd = c.size - 1
	}
	sizeMod := delStart - delEnd - 1

	if len(c.muts) == 0 {
		c.muts = slices.Insert(c.muts, 0, Mutation{
			Old:     pos,
			New:     delStart,
			SizeMod: sizeMod,
		})
		c.size += sizeMod
		return
	}

	// net change for the records after the deletion,
	// regardless of how much of it insertions absorb
	subMod := sizeMod

	i := c.precedingMutation(delStart)
	i = c.deletionBlowup(i, delStart, delEnd, &sizeMod)

	if sizeMod == 0 {
		// the deletion was fully absorbed by insertions
		c.shift(i, subMod)
		return
	}

	old := delStart
	if i > 0 {
		m := c.muts[i-1]
		old = delStart - m.New + m.Old - m.SizeMod
	}

	// merge with a deletion that starts right after the deleted range
	// or that shares its start
	if i < len(c.muts) && c.muts[i].IsDeletion() && c.muts[i].New == delEnd+1 {
		sizeMod += c.muts[i].SizeMod
		c.muts = slices.Delete(c.muts, i, i+1)
	}
	if i > 0 && c.muts[i-1].IsDeletion() && c.muts[i-1].New == delStart {
		i--
		old = c.muts[i].Old
		sizeMod += c.muts[i].SizeMod
		c.muts = slices.Delete(c.muts, i, i+1)
	}

	c.shift(i, subMod)
	c.muts = slices.Insert(c.muts, i, Mutation{
		Old:     old,
		New:     delStart,
		SizeMod: sizeMod,
	})
}

// Shift adds a modifier to the new position
// of every record from the given index on,
// and updates the sequence size.
func (c *Chrom) shift(from, mod int) {
	for i := from; i < len(c.muts); i++ {
		c.muts[i].New += mod
	}
	c.size += mod
}

// DeletionBlowup reconciles a new deletion
// with the mutations it overlaps:
// substitutions covered by the deletion are erased,
// insertions are absorbed
// (fully or partially)
// into the deletion size modifier,
// and adjacent deletions are merged.
// It returns the index where the deletion record
// should be placed.
func (c *Chrom) deletionBlowup(i, delStart, delEnd int, sizeMod *int) int {
	if i == len(c.muts) {
		i = 0
	} else if c.muts[i].SizeMod == 0 {
		if c.muts[i].New < delStart {
			i++
		} else if c.muts[i].New > delStart {
			panic("variant: index past the deletion start in blow-up")
		}
	} else if c.muts[i].SizeMod > 0 {
		i = c.mergeDelIns(i, delStart, delEnd, sizeMod)
	} else {
		if c.muts[i].New == delStart {
			*sizeMod += c.muts[i].SizeMod
			c.muts = slices.Delete(c.muts, i, i+1)
		} else {
			i++
		}
	}

	if i >= len(c.muts) {
		return i
	}
	if c.muts[i].New > delEnd || *sizeMod == 0 {
		return i
	}

	rangeBegin := i
	for i < len(c.muts) {
		if c.muts[i].New > delEnd {
			break
		}
		if c.muts[i].SizeMod == 0 {
			i++
		} else if c.muts[i].SizeMod > 0 {
			i = c.mergeDelIns(i, delStart, delEnd, sizeMod)
			if *sizeMod == 0 {
				break
			}
		} else {
			// a deletion inside the deleted range:
			// fold it into the new deletion
			*sizeMod += c.muts[i].SizeMod
			i++
		}
	}

	c.muts = slices.Delete(c.muts, rangeBegin, i)
	return rangeBegin
}

// MergeDelIns merges a deletion with the insertion at index i.
// Bases of the insertion covered by the deletion are removed
// and absorbed into the deletion size modifier
// (making it less negative).
// It returns the index of the next mutation to visit.
func (c *Chrom) mergeDelIns(i, delStart, delEnd int, sizeMod *int) int {
	m := &c.muts[i]
	insStart := m.New
	insEnd := insStart + m.SizeMod

	// no overlap
	if delStart > insEnd || delEnd < insStart {
		return i + 1
	}

	// the whole insertion is covered
	if delStart <= insStart && delEnd >= insEnd {
		*sizeMod += m.SizeMod
		c.muts = slices.Delete(c.muts, i, i+1)
		return i
	}

	// partial overlap: remove the covered substring
	erase0 := delStart - insStart
	if erase0 < 0 {
		erase0 = 0
	}
	erase1 := delEnd - insStart + 1
	if erase1 > len(m.Seq) {
		erase1 = len(m.Seq)
	}

	*sizeMod += erase1 - erase0
	m.Seq = m.Seq[:erase0] + m.Seq[erase1:]
	m.SizeMod = len(m.Seq) - 1

	if delStart <= insStart && delEnd < insEnd {
		// the deletion removes the head of the insertion
		// but not its tail:
		// the anchor on the reference is unchanged,
		// so the new position moves forward instead
		m.New += erase1 - erase0
		return i
	}
	return i + 1
}

// PrecedingMutation returns the index of the last mutation
// at or before a position of the evolved sequence,
// or the number of records
// when no mutation precedes the position.
//
// When a deletion and another record share a new position,
// the search returns the non-deletion:
// the deletion carries no bases,
// so the record owning the base at the position
// is the one that follows it in the list.
// The search runs backward from the tail
// to keep that property.
func (c *Chrom) precedingMutation(pos int) int {
	if len(c.muts) == 0 {
		return len(c.muts)
	}
	if pos >= c.size {
		panic("variant: position beyond the sequence size")
	}
	if pos < c.muts[0].New {
		return len(c.muts)
	}
	if pos >= c.muts[len(c.muts)-1].New {
		return len(c.muts) - 1
	}

	i := len(c.muts) - 1
	for c.muts[i].New > pos {
		i--
	}
	return i
}
