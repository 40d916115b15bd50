// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package sampler_test

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/js-arias/evogen/sampler"
)

var distributions = []struct {
	name  string
	probs []float64
}{
	{"uniform", []float64{0.25, 0.25, 0.25, 0.25}},
	{"skewed", []float64{0.7, 0.2, 0.05, 0.05}},
	{"rare", []float64{0.989, 0.01, 0.001}},
	{"unnormalized", []float64{3, 1, 1, 1, 2}},
	{"two", []float64{0.5, 0.5}},
}

func TestTable(t *testing.T) {
	for _, d := range distributions {
		rng := rand.New(rand.NewPCG(101, 17))
		ts := sampler.NewTable(d.probs, rng)
		testSampler(t, "table "+d.name, ts, d.probs, rng)
	}
}

func TestAlias(t *testing.T) {
	for _, d := range distributions {
		rng := rand.New(rand.NewPCG(101, 17))
		a := sampler.NewAlias(d.probs)
		testSampler(t, "alias "+d.name, a, d.probs, rng)
	}
}

func TestSingleCategory(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 5))
	ts := sampler.NewTable([]float64{1}, rng)
	a := sampler.NewAlias([]float64{1})
	for i := 0; i < 100; i++ {
		if g := ts.Sample(rng); g != 0 {
			t.Fatalf("table single category: got %d, want 0", g)
		}
		if g := a.Sample(rng); g != 0 {
			t.Fatalf("alias single category: got %d, want 0", g)
		}
	}
}

func TestDeterministic(t *testing.T) {
	probs := []float64{0.1, 0.2, 0.3, 0.4}

	first := draws(sampler.NewAlias(probs), 100)
	second := draws(sampler.NewAlias(probs), 100)
	for i, v := range first {
		if second[i] != v {
			t.Errorf("alias draw %d: got %d, want %d", i, second[i], v)
		}
	}

	bRng := rand.New(rand.NewPCG(33, 66))
	ts1 := sampler.NewTable(probs, bRng)
	bRng = rand.New(rand.NewPCG(33, 66))
	ts2 := sampler.NewTable(probs, bRng)
	f := draws(ts1, 100)
	s := draws(ts2, 100)
	for i, v := range f {
		if s[i] != v {
			t.Errorf("table draw %d: got %d, want %d", i, s[i], v)
		}
	}
}

func draws(s sampler.Sampler, n int) []int {
	rng := rand.New(rand.NewPCG(7, 13))
	d := make([]int, n)
	for i := range d {
		d[i] = s.Sample(rng)
	}
	return d
}

// TestSampler checks that the empirical distribution of the draws
// converges to the input probabilities
// within the order of 1/sqrt(N) in total variation.
func testSampler(t testing.TB, name string, s sampler.Sampler, probs []float64, rng *rand.Rand) {
	t.Helper()

	var sum float64
	for _, p := range probs {
		sum += p
	}

	const n = 1_000_000
	counts := make([]int, len(probs))
	for i := 0; i < n; i++ {
		k := s.Sample(rng)
		if k < 0 || k >= len(probs) {
			t.Fatalf("%s: index out of range: %d", name, k)
		}
		counts[k]++
	}

	var tv float64
	for i, c := range counts {
		tv += math.Abs(float64(c)/n - probs[i]/sum)
	}
	tv /= 2

	// 10 standard errors over the binomial bound
	limit := 10.0 / math.Sqrt(n)
	if tv > limit {
		t.Errorf("%s: total variation %.6f over limit %.6f (counts %v)", name, tv, limit, counts)
	}
}
