// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package rate

import "fmt"

// Events holds the distribution of mutation events
// for each source nucleotide:
// the three substitution targets,
// the insertion lengths,
// and the deletion lengths,
// normalized by the total outgoing rate of the nucleotide.
type Events struct {
	// probs[i] is the event distribution
	// when the current base is i;
	// the first four entries are the target bases
	// (the source base itself with probability zero)
	probs [4][]float64

	// net size change of each event
	lengths []int

	// total outgoing rate per nucleotide
	rates [4]float64
}

// NewEvents builds the event distributions for a model.
// The total indel rate is xi,
// and psi is the insertion to deletion ratio.
// The relative rate vectors give the rates
// of insertions and deletions of length 1, 2, ...
// and are normalized internally.
// If xi is positive,
// at least one relative rate must be given.
func NewEvents(m *Model, xi, psi float64, insRates, delRates []float64) (*Events, error) {
	if xi < 0 {
		return nil, fmt.Errorf("rate: negative indel rate %.6f", xi)
	}
	if xi > 0 {
		if psi <= 0 {
			return nil, fmt.Errorf("rate: invalid insertion-deletion ratio %.6f", psi)
		}
		if len(insRates)+len(delRates) == 0 {
			return nil, fmt.Errorf("rate: indel rate %.6f without relative length rates", xi)
		}
	}
	for _, r := range insRates {
		if r < 0 {
			return nil, fmt.Errorf("rate: negative relative insertion rate")
		}
	}
	for _, r := range delRates {
		if r < 0 {
			return nil, fmt.Errorf("rate: negative relative deletion rate")
		}
	}

	ins := normalize(insRates)
	del := normalize(delRates)
	if xi > 0 {
		// overall insertion and deletion rates
		xiI := xi / (1 + 1/psi)
		xiD := xi / (1 + psi)
		for i := range ins {
			ins[i] *= xiI
		}
		for i := range del {
			del[i] *= xiD
		}
	} else {
		ins = nil
		del = nil
	}

	n := 4 + len(ins) + len(del)
	ev := &Events{
		lengths: make([]int, n),
	}
	for i := range ins {
		ev.lengths[4+i] = i + 1
	}
	for i := range del {
		ev.lengths[4+len(ins)+i] = -(i + 1)
	}

	// the realized indel rate:
	// equal to xi when both length vectors are given
	var xiSum float64
	for _, r := range ins {
		xiSum += r
	}
	for _, r := range del {
		xiSum += r
	}

	for i := 0; i < 4; i++ {
		qi := m.Rate(i) + xiSum
		ev.rates[i] = qi

		p := make([]float64, n)
		for j := 0; j < 4; j++ {
			if j == i {
				continue
			}
			p[j] = m.q.At(i, j) / qi
		}
		for j, r := range ins {
			p[4+j] = r / qi
		}
		for j, r := range del {
			p[4+len(ins)+j] = r / qi
		}
		ev.probs[i] = p
	}
	return ev, nil
}

// Probs returns the event distribution
// for a given source nucleotide.
func (ev *Events) Probs(i int) []float64 {
	return ev.probs[i]
}

// Length returns the net size change
// of the event with a given index:
// zero for substitutions,
// positive for insertions,
// and negative for deletions.
func (ev *Events) Length(k int) int {
	return ev.lengths[k]
}

// Rate returns the total outgoing rate
// of a given source nucleotide,
// including the indel rate.
func (ev *Events) Rate(i int) float64 {
	return ev.rates[i]
}

func normalize(v []float64) []float64 {
	var sum float64
	for _, x := range v {
		sum += x
	}
	n := make([]float64, len(v))
	if sum == 0 {
		return n
	}
	for i, x := range v {
		n[i] = x / sum
	}
	return n
}
