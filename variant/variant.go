// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package variant implements variant chromosomes,
// evolved descendants of a reference chromosome.
//
// A variant chromosome never stores its full sequence.
// It keeps a pointer to the immutable reference
// and an ordered list of mutations,
// each mutation recording its position on the reference
// (the old position),
// its position on the evolved sequence
// (the new position),
// and the net change in sequence size it produces.
// The reference must outlive any variant built on it.
package variant

import "github.com/js-arias/evogen/genome"

// A Mutation is a single mutation record.
//
// At the new position,
// the first byte of Seq replaces the base
// that the reference would have contributed there,
// and any further bytes are inserted immediately after it.
// For substitutions SizeMod is 0 and Seq has one base;
// for insertions SizeMod is len(Seq)-1;
// for deletions SizeMod is negative and Seq is empty.
type Mutation struct {
	// Position of the mutation on the reference chromosome
	Old int

	// Position of the mutation on the evolved sequence
	New int

	// Net change in sequence size
	SizeMod int

	// Replacement and inserted bases
	Seq string
}

// IsDeletion reports whether the mutation is a deletion.
func (m Mutation) IsDeletion() bool {
	return m.SizeMod < 0
}

// A Chrom is a variant chromosome:
// a reference chromosome
// plus an ordered list of mutations.
type Chrom struct {
	ref  *genome.Chromosome
	muts []Mutation
	size int // current size of the evolved sequence
}

// NewChrom creates a variant chromosome
// identical to the given reference chromosome.
func NewChrom(ref *genome.Chromosome) *Chrom {
	return &Chrom{
		ref:  ref,
		size: ref.Len(),
	}
}

// Clone returns an independent copy of a variant chromosome.
// The copy shares the reference.
func (c *Chrom) Clone() *Chrom {
	nc := &Chrom{
		ref:  c.ref,
		size: c.size,
	}
	if len(c.muts) > 0 {
		nc.muts = make([]Mutation, len(c.muts))
		copy(nc.muts, c.muts)
	}
	return nc
}

// Ref returns the reference chromosome.
func (c *Chrom) Ref() *genome.Chromosome {
	return c.ref
}

// Len returns the current size of the evolved sequence.
func (c *Chrom) Len() int {
	return c.size
}

// Count returns the number of mutation records.
func (c *Chrom) Count() int {
	return len(c.muts)
}

// Mutations returns a copy of the mutation records,
// ordered by position on the evolved sequence.
func (c *Chrom) Mutations() []Mutation {
	ms := make([]Mutation, len(c.muts))
	copy(ms, c.muts)
	return ms
}
