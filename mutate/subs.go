// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package mutate

import (
	"fmt"
	"math/rand/v2"

	"github.com/js-arias/evogen/rate"
	"github.com/js-arias/evogen/sampler"
	"github.com/js-arias/evogen/sitevar"
	"github.com/js-arias/evogen/variant"
	"gonum.org/v1/gonum/mat"
)

// A SubPass draws substitutions for whole chromosomes
// with a single transition probability draw per site,
// instead of Gillespie jumps.
// Indels are never produced by this pass.
type SubPass struct {
	pm    *rate.ProbMatrix
	sites *sitevar.Rates
}

// NewSubPass creates a substitution pass
// for a model and the site variation of a chromosome.
func NewSubPass(m *rate.Model, sites *sitevar.Rates) *SubPass {
	return &SubPass{
		pm:    rate.NewProbMatrix(m),
		sites: sites,
	}
}

// Apply walks the sites of the chromosome
// in [begin, end)
// (on the evolved sequence),
// drawing a target base for each site
// from P(t) at the branch length
// scaled by the rate category of the site,
// and records a substitution
// when the target differs from the current base.
// Invariant sites and sites with an N are skipped.
func (sp *SubPass) Apply(rng *rand.Rand, c *variant.Chrom, blen float64, begin, end int) error {
	if blen < 0 {
		return fmt.Errorf("mutate: negative branch length %.6f", blen)
	}
	if sp.sites.Size() != c.Ref().Len() {
		return fmt.Errorf("mutate: site variation for %d sites, chromosome %q has %d", sp.sites.Size(), c.Ref().Name(), c.Ref().Len())
	}
	if end > c.Len() {
		end = c.Len()
	}
	if blen == 0 || begin >= end {
		return nil
	}

	// one P(t) and four alias samplers per rate category
	nCats := sp.sites.NumCats()
	samp := make([][4]*sampler.Alias, nCats)
	for cat := 0; cat < nCats; cat++ {
		pt := sp.pm.At(blen * sp.sites.CatMult(cat))
		samp[cat] = rowSamplers(pt)
	}

	// Substitutions never move positions,
	// so the sites are read from a snapshot
	// of the mutation list
	// while the new records go to the chromosome.
	muts := c.Mutations()
	ref := c.Ref()

	mi := -1
	for pos := begin; pos < end; pos++ {
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

		cat := sp.sites.Category(rp)
		if cat == nCats {
			// invariant site
			continue
		}
		bi := rate.BaseIndex(b)
		if bi < 0 {
			continue
		}

		nt := samp[cat][bi].Sample(rng)
		if nt != bi {
			c.AddSubstitution(rate.Bases[nt], pos)
		}
	}
	return nil
}

func rowSamplers(pt *mat.Dense) [4]*sampler.Alias {
	var s [4]*sampler.Alias
	for i := 0; i < 4; i++ {
		row := make([]float64, 4)
		for j := 0; j < 4; j++ {
			row[j] = pt.At(i, j)
		}
		s[i] = sampler.NewAlias(row)
	}
	return s
}
