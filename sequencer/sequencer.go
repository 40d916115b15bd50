// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package sequencer implements the simulation
// of short sequencing reads
// from variant chromosomes,
// with position and base dependent qualities
// and quality dependent mismatch errors.
//
// Reads are extracted through the chunked read-out
// of the variant chromosomes,
// so the full evolved sequence is never materialized.
// Writing of the reads is left to the caller.
package sequencer

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/js-arias/evogen/rate"
	"github.com/js-arias/evogen/sampler"
	"github.com/js-arias/evogen/variant"
	"gonum.org/v1/gonum/stat/distuv"
)

// quality given to an N in a read
const nQual = 2

// A QualProfile samples a quality score
// for each read position,
// conditioned on the true nucleotide.
type QualProfile struct {
	readLen  int
	maxQual  byte
	samplers [4][]*sampler.Alias
	quals    [4][][]byte
}

// NewQualProfile creates a quality profile
// from per-nucleotide, per-position quality values
// and their probabilities.
// For nucleotide b at read position p,
// quals[b][p] lists the possible quality scores
// and probs[b][p] their probabilities.
// All nucleotides must cover the same read length.
func NewQualProfile(probs [4][][]float64, quals [4][][]byte) (*QualProfile, error) {
	readLen := len(quals[0])
	if readLen == 0 {
		return nil, fmt.Errorf("sequencer: empty quality profile")
	}

	qp := &QualProfile{readLen: readLen}
	for b := 0; b < 4; b++ {
		if len(probs[b]) != readLen || len(quals[b]) != readLen {
			return nil, fmt.Errorf("sequencer: nucleotide %c: profile length does not match read length %d", rate.Bases[b], readLen)
		}
		qp.samplers[b] = make([]*sampler.Alias, readLen)
		qp.quals[b] = make([][]byte, readLen)
		for p := 0; p < readLen; p++ {
			if len(probs[b][p]) != len(quals[b][p]) || len(quals[b][p]) == 0 {
				return nil, fmt.Errorf("sequencer: nucleotide %c, position %d: bad quality list", rate.Bases[b], p)
			}
			qp.samplers[b][p] = sampler.NewAlias(probs[b][p])
			qp.quals[b][p] = quals[b][p]
			for _, q := range quals[b][p] {
				if q > qp.maxQual {
					qp.maxQual = q
				}
			}
		}
	}
	return qp, nil
}

// FlatProfile creates a quality profile
// with a single quality score
// for every nucleotide and position.
func FlatProfile(readLen int, qual byte) *QualProfile {
	var probs [4][][]float64
	var quals [4][][]byte
	for b := 0; b < 4; b++ {
		probs[b] = make([][]float64, readLen)
		quals[b] = make([][]byte, readLen)
		for p := 0; p < readLen; p++ {
			probs[b][p] = []float64{1}
			quals[b][p] = []byte{qual}
		}
	}
	qp, err := NewQualProfile(probs, quals)
	if err != nil {
		panic(err)
	}
	return qp
}

// ReadLen returns the read length of the profile.
func (qp *QualProfile) ReadLen() int {
	return qp.readLen
}

// MaxQual returns the largest quality score
// the profile can produce.
func (qp *QualProfile) MaxQual() byte {
	return qp.maxQual
}

// Sample returns a quality score
// for a nucleotide index
// at a read position.
func (qp *QualProfile) Sample(rng *rand.Rand, nt, pos int) byte {
	k := qp.samplers[nt][pos].Sample(rng)
	return qp.quals[nt][pos][k]
}

// A Read is a simulated sequencing read:
// the read sequence,
// its quality scores,
// and the position of the fragment
// on the evolved chromosome.
type Read struct {
	Seq     []byte
	Qual    []byte
	Start   int  // fragment start on the evolved sequence
	FragLen int  // fragment length
	Reverse bool // read taken from the reverse strand
}

// Param is a collection of parameters
// for a short read sequencer.
type Param struct {
	// Profiles for the first and second read.
	// The second profile is only used for paired reads;
	// if nil, the first profile is used for both.
	Profile1 *QualProfile
	Profile2 *QualProfile

	// Paired end reads
	Paired bool

	// Gamma distributed fragment lengths
	FragMean  float64
	FragShape float64
}

// A Sequencer simulates short reads
// from variant chromosomes.
type Sequencer struct {
	p Param

	// mismatch probability per quality score,
	// sized to the largest quality of the profiles
	mmProb []float64
}

// New creates a sequencer.
func New(p Param) (*Sequencer, error) {
	if p.Profile1 == nil {
		return nil, fmt.Errorf("sequencer: undefined quality profile")
	}
	if p.Paired && p.Profile2 == nil {
		p.Profile2 = p.Profile1
	}
	if p.FragMean < float64(p.Profile1.ReadLen()) {
		return nil, fmt.Errorf("sequencer: mean fragment length %.2f shorter than the read length %d", p.FragMean, p.Profile1.ReadLen())
	}
	if p.FragShape <= 0 {
		return nil, fmt.Errorf("sequencer: invalid fragment shape %.6f", p.FragShape)
	}

	maxQual := p.Profile1.MaxQual()
	if p.Profile2 != nil && p.Profile2.MaxQual() > maxQual {
		maxQual = p.Profile2.MaxQual()
	}

	s := &Sequencer{
		p:      p,
		mmProb: make([]float64, int(maxQual)+1),
	}
	s.mmProb[0] = 1
	for q := 1; q < len(s.mmProb); q++ {
		s.mmProb[q] = math.Pow(10, float64(q)/-10)
	}
	return s, nil
}

// Fragment draws a fragment position and length
// on a variant chromosome.
func (s *Sequencer) Fragment(rng *rand.Rand, c *variant.Chrom) (start, size int) {
	gd := distuv.Gamma{
		Alpha: s.p.FragShape,
		Beta:  s.p.FragShape / s.p.FragMean,
		Src:   randSource{rng},
	}
	size = int(gd.Rand())
	if size < s.p.Profile1.ReadLen() {
		size = s.p.Profile1.ReadLen()
	}
	if size > c.Len() {
		size = c.Len()
	}
	start = rng.IntN(c.Len() - size + 1)
	return start, size
}

// randSource adapts a math/rand/v2 Rand
// to the golang.org/x/exp/rand.Source interface
// required by gonum's distuv distributions.
type randSource struct {
	rng *rand.Rand
}

func (s randSource) Uint64() uint64   { return s.rng.Uint64() }
func (s randSource) Seed(seed uint64) {}

// Reads simulates the reads of a single fragment
// drawn from a variant chromosome:
// one read for single end sequencing,
// two for paired end
// (the second on the reverse strand).
func (s *Sequencer) Reads(rng *rand.Rand, c *variant.Chrom) []Read {
	start, size := s.Fragment(rng, c)

	r1 := s.read(rng, c, s.p.Profile1, start, size, false)
	if !s.p.Paired {
		return []Read{r1}
	}
	r2 := s.read(rng, c, s.p.Profile2, start, size, true)
	return []Read{r1, r2}
}

func (s *Sequencer) read(rng *rand.Rand, c *variant.Chrom, qp *QualProfile, start, size int, rev bool) Read {
	n := qp.ReadLen()
	if n > size {
		n = size
	}

	var seq []byte
	if rev {
		seq = revComp(c.Region(start+size-n, n))
	} else {
		seq = []byte(c.Region(start, n))
	}

	qual := make([]byte, n)
	for p := 0; p < n; p++ {
		bi := rate.BaseIndex(seq[p])
		if bi < 0 {
			seq[p] = 'N'
			qual[p] = nQual
			continue
		}
		q := qp.Sample(rng, bi, p)
		qual[p] = q

		// a mismatch error with probability 10^(-q/10)
		if rng.Float64() < s.mmProb[q] {
			seq[p] = mismatch(rng, bi)
		}
	}
	return Read{
		Seq:     seq,
		Qual:    qual,
		Start:   start,
		FragLen: size,
		Reverse: rev,
	}
}

// Mismatch returns a uniform draw
// from the three nucleotides
// other than the true one.
func mismatch(rng *rand.Rand, bi int) byte {
	k := rng.IntN(3)
	if k >= bi {
		k++
	}
	return rate.Bases[k]
}

func revComp(seq string) []byte {
	rc := make([]byte, len(seq))
	for i := 0; i < len(seq); i++ {
		var c byte
		switch seq[len(seq)-1-i] {
		case 'T', 't':
			c = 'A'
		case 'C', 'c':
			c = 'G'
		case 'A', 'a':
			c = 'T'
		case 'G', 'g':
			c = 'C'
		default:
			c = 'N'
		}
		rc[i] = c
	}
	return rc
}
