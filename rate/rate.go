// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package rate implements nucleotide substitution models
// as continuous-time rate matrices.
//
// A model is a 4x4 rate matrix Q
// over the nucleotides T, C, A, and G
// (in that order),
// with rows summing to zero
// and non-negative off-diagonal entries,
// plus the equilibrium frequencies of the nucleotides.
// The JC69, K80, F81, and HKY85 models are built
// as special cases of the TN93 model;
// the GTR model is built from its six exchangeabilities.
package rate

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Nucleotides in model order.
const Bases = "TCAG"

// BaseIndex returns the model index of a nucleotide
// (accepting both cases),
// or -1 for any other character.
func BaseIndex(b byte) int {
	switch b {
	case 'T', 't':
		return 0
	case 'C', 'c':
		return 1
	case 'A', 'a':
		return 2
	case 'G', 'g':
		return 3
	}
	return -1
}

// A Model is a substitution model:
// a rate matrix
// and its equilibrium frequencies.
type Model struct {
	q          *mat.Dense
	pi         [4]float64
	reversible bool
}

// TN93 returns the model of Tamura and Nei
// (1993, Mol. Biol. Evol. 10:512-526),
// with equilibrium frequencies pi
// (for T, C, A, and G),
// transition rates alpha1 (T-C) and alpha2 (A-G),
// and transversion rate beta.
func TN93(pi [4]float64, alpha1, alpha2, beta float64) (*Model, error) {
	if err := checkFreqs(pi); err != nil {
		return nil, err
	}
	if alpha1 < 0 || alpha2 < 0 || beta < 0 {
		return nil, fmt.Errorf("rate: negative substitution rate")
	}

	q := mat.NewDense(4, 4, nil)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if i == j {
				continue
			}
			r := beta
			if (i == 0 && j == 1) || (i == 1 && j == 0) {
				r = alpha1
			}
			if (i == 2 && j == 3) || (i == 3 && j == 2) {
				r = alpha2
			}
			q.Set(i, j, r*pi[j])
		}
	}
	setDiagonal(q)

	return &Model{
		q:          q,
		pi:         pi,
		reversible: true,
	}, nil
}

// JC69 returns the model of Jukes and Cantor
// with substitution rate lambda.
func JC69(lambda float64) (*Model, error) {
	u := [4]float64{0.25, 0.25, 0.25, 0.25}
	return TN93(u, 4*lambda, 4*lambda, 4*lambda)
}

// K80 returns the model of Kimura
// with transition rate alpha
// and transversion rate beta.
func K80(alpha, beta float64) (*Model, error) {
	u := [4]float64{0.25, 0.25, 0.25, 0.25}
	return TN93(u, 4*alpha, 4*alpha, 4*beta)
}

// F81 returns the model of Felsenstein
// with equilibrium frequencies pi.
func F81(pi [4]float64) (*Model, error) {
	return TN93(pi, 1, 1, 1)
}

// HKY85 returns the model of Hasegawa, Kishino, and Yano
// with equilibrium frequencies pi,
// transition rate alpha,
// and transversion rate beta.
func HKY85(pi [4]float64, alpha, beta float64) (*Model, error) {
	return TN93(pi, alpha, alpha, beta)
}

// GTR returns the general time reversible model
// with equilibrium frequencies pi
// and the six exchangeability rates
// in the order TC, TA, TG, CA, CG, AG.
func GTR(pi [4]float64, rates [6]float64) (*Model, error) {
	if err := checkFreqs(pi); err != nil {
		return nil, err
	}
	for _, r := range rates {
		if r < 0 {
			return nil, fmt.Errorf("rate: negative substitution rate")
		}
	}

	q := mat.NewDense(4, 4, nil)
	k := 0
	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			q.Set(i, j, rates[k]*pi[j])
			q.Set(j, i, rates[k]*pi[i])
			k++
		}
	}
	setDiagonal(q)

	return &Model{
		q:          q,
		pi:         pi,
		reversible: true,
	}, nil
}

// UNREST returns an unrestricted
// (not necessarily reversible)
// model from an arbitrary rate matrix.
// The matrix must be 4x4
// with non-negative off-diagonal entries;
// the diagonal is set so rows sum to zero.
// The equilibrium frequencies are found
// by solving the stationary distribution of the matrix.
func UNREST(q *mat.Dense) (*Model, error) {
	r, c := q.Dims()
	if r != 4 || c != 4 {
		return nil, fmt.Errorf("rate: invalid matrix dimensions: %d x %d", r, c)
	}
	nq := mat.NewDense(4, 4, nil)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if i == j {
				continue
			}
			v := q.At(i, j)
			if v < 0 {
				return nil, fmt.Errorf("rate: negative rate at %d,%d", i, j)
			}
			nq.Set(i, j, v)
		}
	}
	setDiagonal(nq)

	pi, err := stationary(nq)
	if err != nil {
		return nil, err
	}
	return &Model{
		q:  nq,
		pi: pi,
	}, nil
}

// Q returns a copy of the rate matrix of the model.
func (m *Model) Q() *mat.Dense {
	q := mat.NewDense(4, 4, nil)
	q.Copy(m.q)
	return q
}

// Pi returns the equilibrium frequencies of the model.
func (m *Model) Pi() [4]float64 {
	return m.pi
}

// Rate returns the total substitution rate
// out of a given nucleotide.
func (m *Model) Rate(i int) float64 {
	return -m.q.At(i, i)
}

// Scale divides all rates of the model
// by the mean substitution rate at equilibrium,
// so branch lengths are measured
// in expected substitutions per site.
func (m *Model) Scale() {
	var mean float64
	for i := 0; i < 4; i++ {
		mean += m.pi[i] * m.Rate(i)
	}
	if mean <= 0 {
		return
	}
	m.q.Scale(1/mean, m.q)
}

func setDiagonal(q *mat.Dense) {
	for i := 0; i < 4; i++ {
		var sum float64
		for j := 0; j < 4; j++ {
			if i == j {
				continue
			}
			sum += q.At(i, j)
		}
		q.Set(i, i, -sum)
	}
}

func checkFreqs(pi [4]float64) error {
	var sum float64
	for _, p := range pi {
		if p <= 0 {
			return fmt.Errorf("rate: invalid equilibrium frequency %.6f", p)
		}
		sum += p
	}
	if sum < 0.999999 || sum > 1.000001 {
		return fmt.Errorf("rate: equilibrium frequencies sum %.6f, want 1", sum)
	}
	return nil
}

// Stationary solves pi Q = 0
// with the frequencies summing to one,
// as a least squares problem.
func stationary(q *mat.Dense) ([4]float64, error) {
	// rows: the four columns of Q
	// plus the normalization constraint
	a := mat.NewDense(5, 4, nil)
	for j := 0; j < 4; j++ {
		for i := 0; i < 4; i++ {
			a.Set(j, i, q.At(i, j))
		}
	}
	for i := 0; i < 4; i++ {
		a.Set(4, i, 1)
	}
	b := mat.NewVecDense(5, []float64{0, 0, 0, 0, 1})

	var x mat.VecDense
	if err := x.SolveVec(a, b); err != nil {
		return [4]float64{}, fmt.Errorf("rate: can not solve equilibrium: %v", err)
	}

	var pi [4]float64
	var sum float64
	for i := 0; i < 4; i++ {
		v := x.AtVec(i)
		if v < 0 {
			v = 0
		}
		pi[i] = v
		sum += v
	}
	if sum == 0 {
		return pi, fmt.Errorf("rate: degenerate equilibrium")
	}
	for i := range pi {
		pi[i] /= sum
	}
	return pi, nil
}
