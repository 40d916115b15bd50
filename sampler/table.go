// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package sampler

import (
	"math"
	"math/rand/v2"
)

// A Table is a sampler using the table method
// of Marsaglia, Tsang, and Wang.
//
// The probabilities are converted to integer counts
// summing to 2^32,
// and the base-256 digits of each count
// fill four lookup tables of decreasing resolution.
// A single 32 bit draw picks the table
// and the entry within the table.
type Table struct {
	t [3]uint64   // cumulative thresholds
	v [4][]uint32 // lookup tables

	// index of the only category with mass,
	// or -1
	single int
}

// NewTable creates a table sampler
// from a vector of probabilities.
// The probabilities will be normalized to sum 1.
// The random number generator is used to decide
// which counts absorb the rounding error.
func NewTable(probs []float64, rng *rand.Rand) *Table {
	ints := fillInts(probs, rng)

	ts := &Table{single: -1}

	// a count of 2^32 can not be decomposed
	// in base-256 digits of a 32 bit value
	for i, n := range ints {
		if n == 1<<32 {
			ts.single = i
			return ts
		}
	}

	var sizes [4]uint64
	for _, n := range ints {
		for k := 1; k <= 4; k++ {
			sizes[k-1] += digit(n, k)
		}
	}
	for k := 0; k < 3; k++ {
		ts.t[k] = sizes[k] << (32 - 8*(k+1))
		if k > 0 {
			ts.t[k] += ts.t[k-1]
		}
	}

	for k := 1; k <= 4; k++ {
		tab := make([]uint32, 0, sizes[k-1])
		for i, n := range ints {
			z := digit(n, k)
			for j := uint64(0); j < z; j++ {
				tab = append(tab, uint32(i))
			}
		}
		ts.v[k-1] = tab
	}
	return ts
}

// Sample returns an index
// sampled from the probabilities used to build the table.
func (ts *Table) Sample(rng *rand.Rand) int {
	if ts.single >= 0 {
		return ts.single
	}
	j := uint64(rng.Uint32())
	if j < ts.t[0] {
		return int(ts.v[0][j>>24])
	}
	if j < ts.t[1] {
		return int(ts.v[1][(j-ts.t[0])>>16])
	}
	if j < ts.t[2] {
		return int(ts.v[2][(j-ts.t[1])>>8])
	}
	return int(ts.v[3][j-ts.t[2]])
}

// Digit returns the k-th base 256 digit of n,
// counting from the most significant digit
// of a 32 bit value.
func digit(n uint64, k int) uint64 {
	return (n >> (32 - 8*k)) & 0xFF
}

// FillInts converts a vector of probabilities
// to integer counts summing exactly 2^32.
// Counts are first rounded,
// and then the deficit or surplus is assigned
// by weighted draws from the probabilities themselves,
// so large probabilities absorb most of the rounding error.
func fillInts(probs []float64, rng *rand.Rand) []uint64 {
	var sum float64
	for _, p := range probs {
		sum += p
	}

	total := uint64(1) << 32
	ints := make([]uint64, len(probs))
	var iSum uint64
	for i, p := range probs {
		ints[i] = uint64(math.Round(p / sum * float64(total)))
		iSum += ints[i]
	}
	d := int64(total) - int64(iSum)

	// cumulative distribution for the adjustment draws,
	// ignoring probabilities smaller than the threshold
	z := 1 / math.Pow(2, 8)
	for {
		all := true
		for _, p := range probs {
			if p/sum >= z {
				all = false
				break
			}
		}
		if !all {
			break
		}
		z /= math.Pow(2, 8)
	}
	var cSum float64
	for _, p := range probs {
		if p/sum < z {
			continue
		}
		cSum += p / sum
	}
	cum := make([]float64, len(probs))
	var acc float64
	for i, p := range probs {
		if p/sum >= z {
			acc += p / sum / cSum
		}
		cum[i] = acc
	}

	pick := func() int {
		u := rng.Float64()
		for i, c := range cum {
			if c >= u {
				return i
			}
		}
		return len(cum) - 1
	}
	for d < 0 {
		i := pick()
		if ints[i] > 0 {
			ints[i]--
			d++
		}
	}
	for d > 0 {
		ints[pick()]++
		d--
	}
	return ints
}
