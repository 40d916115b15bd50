// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package genome implements a reference genome
// as a collection of named chromosomes.
//
// A reference genome is read-only after construction:
// evolved descendants never modify it,
// and store their changes as overlays
// (see package variant).
package genome

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// Valid unmasked nucleotides.
const bases = "TCAG"

// A Chromosome is an immutable nucleotide sequence
// with a name.
type Chromosome struct {
	name string
	seq  []byte
}

// Name returns the name of the chromosome.
func (c *Chromosome) Name() string {
	return c.name
}

// Len returns the number of bases in the chromosome.
func (c *Chromosome) Len() int {
	return len(c.seq)
}

// At returns the base at a given position.
func (c *Chromosome) At(pos int) byte {
	return c.seq[pos]
}

// Seq returns the sequence of the chromosome
// as a string.
func (c *Chromosome) Seq() string {
	return string(c.seq)
}

// A Genome is an ordered collection of chromosomes.
// Chromosome order is significant:
// phylogenies are matched to chromosomes by index.
type Genome struct {
	chroms []*Chromosome
	names  map[string]int
}

// New creates a new empty genome.
func New() *Genome {
	return &Genome{
		names: make(map[string]int),
	}
}

// Add appends a chromosome to the genome.
// The sequence is filtered:
// any character that is not a valid nucleotide
// (A, C, G, T, N, in either case)
// is replaced by N.
func (g *Genome) Add(name, seq string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("genome: empty chromosome name")
	}
	if _, dup := g.names[name]; dup {
		return fmt.Errorf("genome: chromosome %q already added", name)
	}

	nt := make([]byte, len(seq))
	for i := 0; i < len(seq); i++ {
		nt[i] = filterChar(seq[i])
	}
	g.names[name] = len(g.chroms)
	g.chroms = append(g.chroms, &Chromosome{name: name, seq: nt})
	return nil
}

// Len returns the number of chromosomes in the genome.
func (g *Genome) Len() int {
	return len(g.chroms)
}

// Total returns the added size of all chromosomes.
func (g *Genome) Total() int {
	var t int
	for _, c := range g.chroms {
		t += len(c.seq)
	}
	return t
}

// Chromosome returns the chromosome at a given index.
func (g *Genome) Chromosome(i int) *Chromosome {
	return g.chroms[i]
}

// Names returns the names of the chromosomes
// in genome order.
func (g *Genome) Names() []string {
	ns := make([]string, len(g.chroms))
	for i, c := range g.chroms {
		ns[i] = c.name
	}
	return ns
}

// Unmask removes soft masking,
// replacing lowercase nucleotides
// with their uppercase form.
func (g *Genome) Unmask() {
	for _, c := range g.chroms {
		for i, b := range c.seq {
			if b >= 'a' && b <= 'z' {
				c.seq[i] = b - 'a' + 'A'
			}
		}
	}
}

func filterChar(b byte) byte {
	switch b {
	case 'A', 'C', 'G', 'T', 'N', 'a', 'c', 'g', 't', 'n':
		return b
	}
	return 'N'
}

// Merge merges all chromosomes into a single one,
// shuffling them first,
// so repeated merges of the same genome
// produce different arrangements.
// The merged chromosome is named "merged".
// It returns the names of the chromosomes
// in the merged order.
func (g *Genome) Merge(rng *rand.Rand) []string {
	rng.Shuffle(len(g.chroms), func(i, j int) {
		g.chroms[i], g.chroms[j] = g.chroms[j], g.chroms[i]
	})

	old := make([]string, 0, len(g.chroms))
	var seq []byte
	for _, c := range g.chroms {
		old = append(old, c.name)
		seq = append(seq, c.seq...)
	}
	g.chroms = []*Chromosome{{name: "merged", seq: seq}}
	g.names = map[string]int{"merged": 0}
	return old
}

// FilterSize removes all chromosomes
// smaller than the indicated size.
// It returns an error if no chromosome is large enough.
func (g *Genome) FilterSize(min int) error {
	kept := make([]*Chromosome, 0, len(g.chroms))
	for _, c := range g.chroms {
		if len(c.seq) >= min {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		return fmt.Errorf("genome: no chromosome of size %d or larger", min)
	}
	g.reindex(kept)
	return nil
}

// FilterProp keeps the largest chromosomes
// that together hold at least the indicated proportion
// of the total genome size.
// The proportion must be in (0, 1].
func (g *Genome) FilterProp(prop float64) error {
	if prop <= 0 || prop > 1 {
		return fmt.Errorf("genome: invalid proportion %.6f", prop)
	}

	ord := make([]*Chromosome, len(g.chroms))
	copy(ord, g.chroms)
	for i := 0; i < len(ord); i++ {
		for j := i + 1; j < len(ord); j++ {
			if len(ord[j].seq) > len(ord[i].seq) {
				ord[i], ord[j] = ord[j], ord[i]
			}
		}
	}

	total := float64(g.Total())
	var acc float64
	kept := make([]*Chromosome, 0, len(ord))
	for _, c := range ord {
		if acc/total >= prop {
			break
		}
		kept = append(kept, c)
		acc += float64(len(c.seq))
	}
	g.reindex(kept)
	return nil
}

func (g *Genome) reindex(chroms []*Chromosome) {
	g.chroms = chroms
	g.names = make(map[string]int, len(chroms))
	for i, c := range chroms {
		g.names[c.name] = i
	}
}

// Random creates a genome of random chromosomes
// with the given sizes,
// drawing each base from the equilibrium frequencies pi
// (for T, C, A, and G, in that order).
func Random(rng *rand.Rand, sizes []int, pi [4]float64) *Genome {
	var sum float64
	for _, p := range pi {
		sum += p
	}

	g := New()
	for i, sz := range sizes {
		seq := make([]byte, sz)
		for j := range seq {
			u := rng.Float64() * sum
			var acc float64
			b := byte('G')
			for k := 0; k < 4; k++ {
				acc += pi[k]
				if u < acc {
					b = bases[k]
					break
				}
			}
			seq[j] = b
		}
		name := fmt.Sprintf("chr-%d", i+1)
		g.names[name] = len(g.chroms)
		g.chroms = append(g.chroms, &Chromosome{name: name, seq: seq})
	}
	return g
}
