// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package rate

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// terms of the power series expansion
// used for non-reversible models
const seriesTerms = 30

// A ProbMatrix computes transition probability matrices
// P(t) = exp(Qt) for a model.
//
// For a reversible model
// the matrix is diagonalized once
// through its symmetric similarity transform,
// and each P(t) is a product with the stored eigenvectors.
// For an unrestricted model
// P(t) is computed with a truncated power series.
type ProbMatrix struct {
	m *Model

	// eigendecomposition:
	// q = u diag(l) ui
	u, ui *mat.Dense
	l     []float64
}

// NewProbMatrix prepares the computation of P(t)
// for the given model.
func NewProbMatrix(m *Model) *ProbMatrix {
	p := &ProbMatrix{m: m}
	if !m.reversible {
		return p
	}

	// the similarity transform
	// s = diag(sqrt(pi)) q diag(1/sqrt(pi))
	// is symmetric for a reversible model
	d := make([]float64, 4)
	di := make([]float64, 4)
	for i, f := range m.pi {
		d[i] = math.Sqrt(f)
		di[i] = 1 / d[i]
	}
	s := mat.NewSymDense(4, nil)
	for i := 0; i < 4; i++ {
		for j := i; j < 4; j++ {
			v := d[i] * m.q.At(i, j) * di[j]
			w := d[j] * m.q.At(j, i) * di[i]
			s.SetSym(i, j, (v+w)/2)
		}
	}

	var es mat.EigenSym
	if !es.Factorize(s, true) {
		// fall back to the power series
		return p
	}
	p.l = es.Values(nil)
	var vecs mat.Dense
	es.VectorsTo(&vecs)

	p.u = mat.NewDense(4, 4, nil)
	p.ui = mat.NewDense(4, 4, nil)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			p.u.Set(i, j, di[i]*vecs.At(i, j))
			p.ui.Set(i, j, vecs.At(j, i)*d[j])
		}
	}
	return p
}

// At returns the transition probability matrix
// for a given time
// (branch length).
// Entries made negative by rounding
// are clamped to zero
// and the rows renormalized.
func (p *ProbMatrix) At(t float64) *mat.Dense {
	var pt *mat.Dense
	if p.u != nil {
		pt = p.eigenAt(t)
	} else {
		pt = p.seriesAt(t)
	}

	for i := 0; i < 4; i++ {
		var sum float64
		for j := 0; j < 4; j++ {
			v := pt.At(i, j)
			if v < 0 {
				v = 0
				pt.Set(i, j, 0)
			}
			sum += v
		}
		if sum == 0 {
			continue
		}
		for j := 0; j < 4; j++ {
			pt.Set(i, j, pt.At(i, j)/sum)
		}
	}
	return pt
}

func (p *ProbMatrix) eigenAt(t float64) *mat.Dense {
	e := make([]float64, 4)
	for i, l := range p.l {
		e[i] = math.Exp(l * t)
	}

	pt := mat.NewDense(4, 4, nil)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += p.u.At(i, k) * e[k] * p.ui.At(k, j)
			}
			pt.Set(i, j, sum)
		}
	}
	return pt
}

func (p *ProbMatrix) seriesAt(t float64) *mat.Dense {
	qt := mat.NewDense(4, 4, nil)
	qt.Scale(t, p.m.q)

	pt := mat.NewDense(4, 4, nil)
	term := mat.NewDense(4, 4, nil)
	for i := 0; i < 4; i++ {
		pt.Set(i, i, 1)
		term.Set(i, i, 1)
	}

	for k := 1; k <= seriesTerms; k++ {
		var next mat.Dense
		next.Mul(term, qt)
		next.Scale(1/float64(k), &next)
		term.Copy(&next)
		pt.Add(pt, term)
	}
	return pt
}
