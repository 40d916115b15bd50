// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package sampler implements constant-time samplers
// for fixed discrete probability distributions.
//
// Two methods are provided:
// the table method of Marsaglia, Tsang, and Wang
// (2004, J. Stat. Soft. 11),
// and the alias method of Walker
// (1977, ACM Trans. Math. Soft. 3).
// Both return a category index in constant time,
// and are deterministic for a given random number source.
package sampler

import "math/rand/v2"

// A Sampler is a sampler for a discrete probability distribution.
// The returned value is the index of the sampled category.
type Sampler interface {
	Sample(rng *rand.Rand) int
}
