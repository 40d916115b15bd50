// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package sitevar implements among-site variation
// of the mutation rate.
//
// A chromosome is divided in regions,
// each with a rate multiplier
// drawn from a Gamma distribution,
// and normalized so the size-weighted mean multiplier
// across the whole genome is exactly one.
// Individual sites can also be marked as invariant,
// and then never mutate.
package sitevar

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/js-arias/evogen/cats"
	"gonum.org/v1/gonum/stat/distuv"
)

// A Region is a run of sites
// sharing a rate multiplier.
// The end position is 1-based and inclusive,
// so a region covers the 0-based sites
// from the end of the previous region
// up to End-1.
type Region struct {
	End  int
	Mult float64
}

// Rates is the site rate variation of a chromosome.
type Rates struct {
	size    int
	regions []Region
	inv     []bool // invariant sites
}

// Uniform returns a site variation
// in which every site has rate one.
func Uniform(size int) *Rates {
	return &Rates{
		size:    size,
		regions: []Region{{End: size, Mult: 1}},
	}
}

// FromRegions creates a site variation
// from an explicit list of regions
// for a chromosome of the given size.
//
// The regions are validated:
// end positions must be positive increasing integers
// without duplicates,
// the last end position must be equal
// to the chromosome size,
// and multipliers can not be negative.
func FromRegions(regions []Region, size int) (*Rates, error) {
	if len(regions) == 0 {
		return nil, fmt.Errorf("sitevar: empty region list")
	}
	prev := 0
	for i, r := range regions {
		if r.End <= 0 {
			return nil, fmt.Errorf("sitevar: region %d: end position %d, want > 0", i, r.End)
		}
		if r.End <= prev {
			return nil, fmt.Errorf("sitevar: region %d: end position %d out of order", i, r.End)
		}
		if r.Mult < 0 {
			return nil, fmt.Errorf("sitevar: region %d: negative multiplier %.6f", i, r.Mult)
		}
		prev = r.End
	}
	if prev != size {
		return nil, fmt.Errorf("sitevar: last end position %d, want chromosome size %d", prev, size)
	}

	rs := make([]Region, len(regions))
	copy(rs, regions)
	return &Rates{
		size:    size,
		regions: rs,
	}, nil
}

// FromMatrix creates a site variation
// from a matrix of end positions and multipliers,
// one row per region,
// as read from an external file.
// Rows must have exactly two columns,
// and end positions must be whole numbers.
func FromMatrix(m [][]float64, size int) (*Rates, error) {
	if len(m) == 0 {
		return nil, fmt.Errorf("sitevar: empty matrix")
	}
	regions := make([]Region, 0, len(m))
	for i, row := range m {
		if len(row) != 2 {
			return nil, fmt.Errorf("sitevar: row %d: got %d columns, want 2", i, len(row))
		}
		if row[0] != math.Trunc(row[0]) {
			return nil, fmt.Errorf("sitevar: row %d: end position %.3f is not a whole number", i, row[0])
		}
		regions = append(regions, Region{
			End:  int(row[0]),
			Mult: row[1],
		})
	}
	return FromRegions(regions, size)
}

// Size returns the chromosome size
// covered by the site variation.
func (r *Rates) Size() int {
	return r.size
}

// NumCats returns the number of rate categories
// (the number of regions).
func (r *Rates) NumCats() int {
	return len(r.regions)
}

// Category returns the rate category
// (the region index)
// of a site,
// or NumCats for an invariant site.
func (r *Rates) Category(pos int) int {
	if r.Invariant(pos) {
		return len(r.regions)
	}
	return r.region(pos)
}

// CatMult returns the multiplier of a rate category.
func (r *Rates) CatMult(cat int) float64 {
	return r.regions[cat].Mult
}

// Mult returns the rate multiplier of a site.
// Invariant sites have multiplier zero.
func (r *Rates) Mult(pos int) float64 {
	if r.Invariant(pos) {
		return 0
	}
	return r.regions[r.region(pos)].Mult
}

// Invariant reports whether a site is invariant.
func (r *Rates) Invariant(pos int) bool {
	if r.inv == nil {
		return false
	}
	return r.inv[pos]
}

// Region returns the index of the region
// that contains a 0-based site.
func (r *Rates) region(pos int) int {
	return sort.Search(len(r.regions), func(i int) bool {
		return pos < r.regions[i].End
	})
}

// SetInvariant marks a fraction of the sites
// as invariant,
// each site independently with the given probability.
// The fraction must be in [0, 1).
func (r *Rates) SetInvariant(rng *rand.Rand, fraction float64) error {
	if fraction < 0 || fraction >= 1 {
		return fmt.Errorf("sitevar: invalid invariant fraction %.6f", fraction)
	}
	if fraction == 0 {
		r.inv = nil
		return nil
	}
	r.inv = make([]bool, r.size)
	for i := range r.inv {
		if rng.Float64() < fraction {
			r.inv[i] = true
		}
	}
	return nil
}

// Generate creates the site variation
// for a set of chromosomes with the given sizes.
// Each chromosome is tiled with regions
// of regionSize sites
// (the last region of a chromosome can be shorter),
// and each region receives a multiplier
// drawn from a Gamma distribution
// with the given shape
// (and rate equal to the shape).
//
// All multipliers are then divided
// by their size-weighted mean,
// so the mean multiplier across the genome
// is exactly one.
//
// A shape of zero or less disables the variation:
// every chromosome gets a single region
// with multiplier one.
func Generate(rng *rand.Rand, sizes []int, regionSize int, shape float64) ([]*Rates, error) {
	if regionSize <= 0 {
		return nil, fmt.Errorf("sitevar: invalid region size %d", regionSize)
	}

	all := make([]*Rates, len(sizes))
	if shape <= 0 {
		for i, sz := range sizes {
			all[i] = Uniform(sz)
		}
		return all, nil
	}

	gd := distuv.Gamma{
		Alpha: shape,
		Beta:  shape,
		Src:   randSource{rng},
	}
	for i, sz := range sizes {
		all[i] = tile(sz, regionSize, gd.Rand)
	}
	normalize(all)
	return all, nil
}

// randSource adapts a math/rand/v2 Rand
// to the golang.org/x/exp/rand.Source interface
// required by gonum's distuv distributions.
type randSource struct {
	rng *rand.Rand
}

func (s randSource) Uint64() uint64   { return s.rng.Uint64() }
func (s randSource) Seed(seed uint64) {}

// GenerateDiscrete is like Generate,
// but the multipliers are drawn
// from a Gamma distribution discretized
// in numCats equal-probability categories.
func GenerateDiscrete(rng *rand.Rand, sizes []int, regionSize int, shape float64, numCats int) ([]*Rates, error) {
	if regionSize <= 0 {
		return nil, fmt.Errorf("sitevar: invalid region size %d", regionSize)
	}
	if numCats < 1 {
		return nil, fmt.Errorf("sitevar: invalid number of categories %d", numCats)
	}

	all := make([]*Rates, len(sizes))
	if shape <= 0 {
		for i, sz := range sizes {
			all[i] = Uniform(sz)
		}
		return all, nil
	}

	cv := cats.Gamma{Shape: shape, NumCat: numCats}.Cats()
	for i, sz := range sizes {
		all[i] = tile(sz, regionSize, func() float64 {
			return cv[rng.IntN(len(cv))]
		})
	}
	normalize(all)
	return all, nil
}

func tile(size, regionSize int, draw func() float64) *Rates {
	n := (size + regionSize - 1) / regionSize
	regions := make([]Region, 0, n)
	for end := regionSize; ; end += regionSize {
		if end > size {
			end = size
		}
		regions = append(regions, Region{
			End:  end,
			Mult: draw(),
		})
		if end == size {
			break
		}
	}
	return &Rates{
		size:    size,
		regions: regions,
	}
}

// Normalize scales all multipliers
// so the size-weighted mean across all chromosomes
// is exactly one.
func normalize(all []*Rates) {
	var total, weighted float64
	for _, r := range all {
		total += float64(r.size)
		prev := 0
		for _, rg := range r.regions {
			weighted += float64(rg.End-prev) * rg.Mult
			prev = rg.End
		}
	}
	mean := weighted / total
	if mean == 0 {
		return
	}
	for _, r := range all {
		for i := range r.regions {
			r.regions[i].Mult /= mean
		}
	}
}
