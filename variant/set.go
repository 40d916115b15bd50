// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package variant

import (
	"fmt"

	"github.com/js-arias/evogen/genome"
)

// A Set is a collection of variant genomes:
// one variant chromosome
// per tip label
// per reference chromosome.
//
// Slots for different chromosomes can be written
// from different goroutines,
// as writes are disjoint by design.
type Set struct {
	ref    *genome.Genome
	labels []string
	tips   map[string]int

	// chroms[tip][chromosome]
	chroms [][]*Chrom
}

// NewSet creates a variant set
// for the given tip labels,
// with every variant chromosome starting
// as an unmutated copy of the reference.
func NewSet(ref *genome.Genome, labels []string) (*Set, error) {
	s := &Set{
		ref:    ref,
		labels: make([]string, 0, len(labels)),
		tips:   make(map[string]int, len(labels)),
		chroms: make([][]*Chrom, 0, len(labels)),
	}
	for _, l := range labels {
		if _, dup := s.tips[l]; dup {
			return nil, fmt.Errorf("variant: tip label %q repeated", l)
		}
		s.tips[l] = len(s.labels)
		s.labels = append(s.labels, l)

		vc := make([]*Chrom, ref.Len())
		for i := 0; i < ref.Len(); i++ {
			vc[i] = NewChrom(ref.Chromosome(i))
		}
		s.chroms = append(s.chroms, vc)
	}
	return s, nil
}

// Ref returns the reference genome of the set.
func (s *Set) Ref() *genome.Genome {
	return s.ref
}

// Labels returns the tip labels of the set,
// in the order used to create it.
func (s *Set) Labels() []string {
	ls := make([]string, len(s.labels))
	copy(ls, s.labels)
	return ls
}

// Tip returns the index of a tip label,
// or -1 if the label is not in the set.
func (s *Set) Tip(label string) int {
	i, ok := s.tips[label]
	if !ok {
		return -1
	}
	return i
}

// Chrom returns the variant chromosome
// of a tip for a reference chromosome index.
func (s *Set) Chrom(tip, chrom int) *Chrom {
	return s.chroms[tip][chrom]
}

// Replace stores a variant chromosome
// in the slot of a tip for a reference chromosome index.
func (s *Set) Replace(tip, chrom int, c *Chrom) {
	s.chroms[tip][chrom] = c
}
