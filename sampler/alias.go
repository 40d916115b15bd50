// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package sampler

import "math/rand/v2"

// tolerance for treating a scaled probability as exactly one
const aliasTol = 1e-8

// An Alias is a sampler using the alias method of Walker.
//
// For n categories it keeps a cutoff table F
// and an alias table L.
// A draw picks a slot k uniformly,
// and returns k if the fractional part of the draw
// is below F[k],
// or the alias L[k] otherwise.
type Alias struct {
	f []float64
	l []int
}

// NewAlias creates an alias sampler
// from a vector of probabilities.
// The probabilities will be normalized to sum 1.
func NewAlias(probs []float64) *Alias {
	n := len(probs)
	var sum float64
	for _, p := range probs {
		sum += p
	}

	a := &Alias{
		f: make([]float64, n),
		l: make([]int, n),
	}

	q := make([]float64, n)
	small := make([]int, 0, n)
	large := make([]int, 0, n)
	for i, p := range probs {
		q[i] = p / sum * float64(n)
		if q[i] < 1-aliasTol {
			small = append(small, i)
		} else if q[i] > 1+aliasTol {
			large = append(large, i)
		} else {
			a.f[i] = 1
			a.l[i] = i
		}
	}

	for len(small) > 0 && len(large) > 0 {
		s := small[len(small)-1]
		small = small[:len(small)-1]
		g := large[len(large)-1]

		a.f[s] = q[s]
		a.l[s] = g

		q[g] = (q[g] + q[s]) - 1
		if q[g] < 1-aliasTol {
			large = large[:len(large)-1]
			small = append(small, g)
		} else if q[g] <= 1+aliasTol {
			large = large[:len(large)-1]
			a.f[g] = 1
			a.l[g] = g
		}
	}

	// numerical leftovers are treated as exact
	for _, i := range small {
		a.f[i] = 1
		a.l[i] = i
	}
	for _, i := range large {
		a.f[i] = 1
		a.l[i] = i
	}
	return a
}

// Sample returns an index
// sampled from the probabilities used to build the tables.
func (a *Alias) Sample(rng *rand.Rand) int {
	u := rng.Float64() * float64(len(a.f))
	k := int(u)
	if k == len(a.f) {
		k--
	}
	if u-float64(k) < a.f[k] {
		return k
	}
	return a.l[k]
}
