// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package mutate implements sampling of mutation events
// on a variant chromosome.
//
// A sampler composes a weighted location sampler
// (which site mutates next),
// an event type sampler per source nucleotide
// (which substitution target or indel length),
// and a generator of random inserted sequences
// from the equilibrium frequencies.
// Every mutation returns the signed change
// of the total outgoing rate of the chromosome,
// so a caller running a Gillespie simulation
// can update its clock without rescanning.
package mutate

import (
	"fmt"
	"math/rand/v2"

	"github.com/js-arias/evogen/rate"
	"github.com/js-arias/evogen/sampler"
	"github.com/js-arias/evogen/sitevar"
	"github.com/js-arias/evogen/variant"
)

// size of the windows used by the location sampler
const defaultChunk = 128

// A Sampler draws mutation events
// for a single variant chromosome.
type Sampler struct {
	chrom *variant.Chrom
	ev    *rate.Events
	sites *sitevar.Rates

	types   [4]sampler.Sampler // event sampler per source base
	insBase *sampler.Table     // base sampler for inserted sequences

	chunk int
	total float64
}

// New creates a mutation sampler
// for a variant chromosome.
// The site variation must cover the reference
// of the chromosome.
func New(c *variant.Chrom, m *rate.Model, ev *rate.Events, sites *sitevar.Rates, rng *rand.Rand) (*Sampler, error) {
	if sites.Size() != c.Ref().Len() {
		return nil, fmt.Errorf("mutate: site variation for %d sites, chromosome %q has %d", sites.Size(), c.Ref().Name(), c.Ref().Len())
	}

	pi := m.Pi()
	s := &Sampler{
		chrom:   c,
		ev:      ev,
		sites:   sites,
		insBase: sampler.NewTable(pi[:], rng),
		chunk:   defaultChunk,
	}
	for i := 0; i < 4; i++ {
		s.types[i] = sampler.NewTable(ev.Probs(i), rng)
	}
	s.total = s.scanTotal()
	return s, nil
}

// Chrom returns the variant chromosome of the sampler.
func (s *Sampler) Chrom() *variant.Chrom {
	return s.chrom
}

// TotalRate returns the current total outgoing rate
// of the chromosome.
func (s *Sampler) TotalRate() float64 {
	return s.total
}

// Mutate adds a single mutation to the chromosome
// and returns the signed change of the total rate.
func (s *Sampler) Mutate(rng *rand.Rand) float64 {
	d, _ := s.MutateRegion(rng, 0, s.chrom.Len()-1)
	return d
}

// MutateRegion adds a single mutation
// at a site inside [start, end]
// (both inclusive, on the evolved sequence),
// and returns the signed change of the total rate
// and the updated end position:
// indels inside the region move the end
// by their net size.
// A deletion that would run past the end is clamped.
func (s *Sampler) MutateRegion(rng *rand.Rand, start, end int) (delta float64, newEnd int) {
	if s.chrom.Len() == 0 || start >= s.chrom.Len() {
		return 0, end
	}
	if end >= s.chrom.Len() {
		end = s.chrom.Len() - 1
	}
	if end < start {
		return 0, end
	}

	pos := s.pickSite(rng, start, end)
	if pos < 0 {
		return 0, end
	}
	b := rate.BaseIndex(s.chrom.Base(pos))
	if b < 0 {
		// an N never mutates
		return 0, end
	}
	mult := s.sites.Mult(s.chrom.RefPos(pos))

	k := s.types[b].Sample(rng)
	size := s.ev.Length(k)
	switch {
	case size == 0:
		// substitution
		delta = mult * (s.ev.Rate(k) - s.ev.Rate(b))
		s.chrom.AddSubstitution(rate.Bases[k], pos)
	case size > 0:
		// insertion:
		// the record keeps the current base
		// followed by the new random bases
		nt := make([]byte, size+1)
		nt[0] = s.chrom.Base(pos)
		for i := 1; i <= size; i++ {
			bi := s.insBase.Sample(rng)
			nt[i] = rate.Bases[bi]
			delta += mult * s.ev.Rate(bi)
		}
		s.chrom.AddInsertion(string(nt), pos)
		end += size
	default:
		// deletion, clamped at the end of the region
		sz := -size
		if pos+sz-1 > end {
			sz = end - pos + 1
		}
		for q := pos; q < pos+sz; q++ {
			bi := rate.BaseIndex(s.chrom.Base(q))
			if bi < 0 {
				continue
			}
			delta -= s.sites.Mult(s.chrom.RefPos(q)) * s.ev.Rate(bi)
		}
		s.chrom.AddDeletion(sz, pos)
		end -= sz
	}
	s.total += delta
	return delta, end
}

// PickSite returns a site inside [start, end]
// weighted by the current mutation rate of each site,
// or -1 if no site in the region can mutate.
// For a region larger than the chunk size
// a random window of chunk sites is drawn first,
// and the weighted choice is made inside the window.
func (s *Sampler) pickSite(rng *rand.Rand, start, end int) int {
	n := end - start + 1
	if n <= s.chunk {
		return s.weightedIn(rng, start, end)
	}

	for range 128 {
		o := start + rng.IntN(n-s.chunk+1)
		if p := s.weightedIn(rng, o, o+s.chunk-1); p >= 0 {
			return p
		}
	}
	// the windows keep falling on dead sites:
	// make an exact draw over the whole region
	return s.weightedIn(rng, start, end)
}

// WeightedIn makes an exact weighted draw
// among the sites of [start, end].
func (s *Sampler) weightedIn(rng *rand.Rand, start, end int) int {
	w := make([]float64, end-start+1)
	var sum float64
	for i := range w {
		w[i] = s.siteRate(start + i)
		sum += w[i]
	}
	if sum == 0 {
		return -1
	}

	u := rng.Float64() * sum
	var acc float64
	for i, v := range w {
		acc += v
		if u < acc {
			return start + i
		}
	}
	return end
}

// SiteRate returns the current mutation rate of a site:
// the rate multiplier of the site
// times the outgoing rate of its base.
func (s *Sampler) siteRate(pos int) float64 {
	b := rate.BaseIndex(s.chrom.Base(pos))
	if b < 0 {
		return 0
	}
	mult := s.sites.Mult(s.chrom.RefPos(pos))
	return mult * s.ev.Rate(b)
}

// ScanTotal computes the total outgoing rate
// of the chromosome
// walking the mutation list and the reference in parallel.
func (s *Sampler) scanTotal() float64 {
	muts := s.chrom.Mutations()
	ref := s.chrom.Ref()

	var total float64
	mi := -1
	for pos := 0; pos < s.chrom.Len(); pos++ {
		for mi+1 < len(muts) && muts[mi+1].New <= pos {
			mi++
		}

		var b byte
		var rp int
		if mi < 0 {
			b = ref.At(pos)
			rp = pos
		} else {
			m := muts[mi]
			ind := pos - m.New
			if ind <= m.SizeMod {
				b = m.Seq[ind]
				rp = m.Old
			} else {
				rp = ind + m.Old - m.SizeMod
				b = ref.At(rp)
			}
		}
		bi := rate.BaseIndex(b)
		if bi < 0 {
			continue
		}
		total += s.sites.Mult(rp) * s.ev.Rate(bi)
	}
	return total
}
