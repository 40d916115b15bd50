// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package cats implements discrete rate categories
// from a continuous probability distribution function.
// Each category is expected to have the same probability.
package cats

import (
	"fmt"

	"gonum.org/v1/gonum/stat/distuv"
)

// Discrete is a discrete category distribution.
type Discrete interface {
	// Cats returns the values of the different categories.
	Cats() []float64

	// String output for the function name and parameters.
	String() string
}

// Gamma is a discretized Gamma distribution
// with equal shape and rate parameters,
// the usual distribution
// for among-site rate heterogeneity.
type Gamma struct {
	// Shape parameter of the gamma distribution.
	// The rate parameter takes the same value,
	// so the distribution has mean 1.
	Shape float64

	// Number of categories
	NumCat int
}

// Cats returns the values for a Gamma distribution
// discretized in equal probability categories,
// using the median of each category.
func (g Gamma) Cats() []float64 {
	d := distuv.Gamma{
		Alpha: g.Shape,
		Beta:  g.Shape,
	}
	return getCats(d, g.NumCat)
}

// String output for the function name and parameters.
func (g Gamma) String() string {
	return fmt.Sprintf("gamma=%.6f", g.Shape)
}

// LogNormal is a discretized LogNormal distribution
// with median 1,
// an alternative for among-site rate heterogeneity
// with a heavier tail than the Gamma.
type LogNormal struct {
	// Sigma parameter of the log normal distribution.
	// The mu parameter is always zero,
	// so the distribution has median 1.
	Sigma float64

	// Number of categories
	NumCat int
}

// Cats returns the values for a log Normal distribution
// discretized in equal probability categories,
// using the median of each category.
func (ln LogNormal) Cats() []float64 {
	d := distuv.LogNormal{
		Mu:    0,
		Sigma: ln.Sigma,
	}
	return getCats(d, ln.NumCat)
}

// String output for the function name and parameters.
func (ln LogNormal) String() string {
	return fmt.Sprintf("logNormal=%.6f", ln.Sigma)
}

// Quantiler is an interface for distributions
// with a Quantile function
// (the inverse of the CDF function).
type quantiler interface {
	Quantile(p float64) float64
}

func getCats(q quantiler, n int) []float64 {
	cats := make([]float64, n)
	for i := range cats {
		p := (float64(i) + 0.5) / float64(n)
		cats[i] = q.Quantile(p)
	}
	return cats
}

// Mean returns the average of the category values.
func Mean(d Discrete) float64 {
	cats := d.Cats()
	if len(cats) == 0 {
		return 0
	}
	var sum float64
	for _, c := range cats {
		sum += c
	}
	return sum / float64(len(cats))
}
