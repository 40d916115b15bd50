// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package sequencer_test

import (
	"math"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/js-arias/evogen/genome"
	"github.com/js-arias/evogen/sequencer"
	"github.com/js-arias/evogen/variant"
)

func testChrom(t testing.TB, seq string) *variant.Chrom {
	t.Helper()

	g := genome.New()
	if err := g.Add("chr-test", seq); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return variant.NewChrom(g.Chromosome(0))
}

func TestSingleEnd(t *testing.T) {
	rng := rand.New(rand.NewPCG(12, 34))
	c := testChrom(t, strings.Repeat("TCAG", 500))

	// a very high quality:
	// mismatches are nearly impossible
	s, err := sequencer.New(sequencer.Param{
		Profile1:  sequencer.FlatProfile(100, 60),
		FragMean:  300,
		FragShape: 10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := c.Sequence()
	for i := 0; i < 100; i++ {
		reads := s.Reads(rng, c)
		if len(reads) != 1 {
			t.Fatalf("reads: got %d, want 1", len(reads))
		}
		r := reads[0]
		if len(r.Seq) != 100 || len(r.Qual) != 100 {
			t.Fatalf("read length: got %d, want 100", len(r.Seq))
		}
		if got := want[r.Start : r.Start+100]; got != string(r.Seq) {
			t.Errorf("read at %d: got %q, want %q", r.Start, r.Seq, got)
		}
		for p, q := range r.Qual {
			if q != 60 {
				t.Fatalf("quality at %d: got %d, want 60", p, q)
			}
		}
	}
}

func TestPairedEnd(t *testing.T) {
	rng := rand.New(rand.NewPCG(56, 78))
	c := testChrom(t, strings.Repeat("TTTTCCCC", 250))

	s, err := sequencer.New(sequencer.Param{
		Profile1:  sequencer.FlatProfile(50, 60),
		Paired:    true,
		FragMean:  200,
		FragShape: 10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := c.Sequence()
	reads := s.Reads(rng, c)
	if len(reads) != 2 {
		t.Fatalf("reads: got %d, want 2", len(reads))
	}
	r1, r2 := reads[0], reads[1]
	if r1.Reverse {
		t.Errorf("first read on the reverse strand")
	}
	if !r2.Reverse {
		t.Errorf("second read on the forward strand")
	}
	if got := want[r1.Start : r1.Start+50]; got != string(r1.Seq) {
		t.Errorf("first read: got %q, want %q", r1.Seq, got)
	}

	// the second read is the reverse complement
	// of the end of the fragment
	tail := want[r2.Start+r2.FragLen-50 : r2.Start+r2.FragLen]
	comp := map[byte]byte{'T': 'A', 'A': 'T', 'C': 'G', 'G': 'C'}
	wantRC := make([]byte, 50)
	for i := 0; i < 50; i++ {
		wantRC[i] = comp[tail[49-i]]
	}
	if string(r2.Seq) != string(wantRC) {
		t.Errorf("second read: got %q, want %q", r2.Seq, wantRC)
	}
}

func TestMismatchRate(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 81))
	c := testChrom(t, strings.Repeat("A", 5000))

	// quality 10 means a 10% error rate
	s, err := sequencer.New(sequencer.Param{
		Profile1:  sequencer.FlatProfile(100, 10),
		FragMean:  500,
		FragShape: 5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var bases, errs int
	for i := 0; i < 500; i++ {
		r := s.Reads(rng, c)[0]
		for _, b := range r.Seq {
			bases++
			if b != 'A' {
				errs++
			}
		}
	}
	got := float64(errs) / float64(bases)
	if math.Abs(got-0.1) > 0.01 {
		t.Errorf("mismatch rate: got %.4f, want 0.10", got)
	}
}

func TestHighQuality(t *testing.T) {
	rng := rand.New(rand.NewPCG(27, 54))
	c := testChrom(t, strings.Repeat("TCAG", 500))

	// a quality past the usual phred range:
	// its mismatch probability must still be computed
	qp := sequencer.FlatProfile(100, 80)
	if got := qp.MaxQual(); got != 80 {
		t.Fatalf("max quality: got %d, want 80", got)
	}

	s, err := sequencer.New(sequencer.Param{
		Profile1:  qp,
		FragMean:  300,
		FragShape: 10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := c.Sequence()
	for i := 0; i < 200; i++ {
		r := s.Reads(rng, c)[0]
		if got := want[r.Start : r.Start+len(r.Seq)]; got != string(r.Seq) {
			t.Fatalf("read at %d: got %q, want %q", r.Start, r.Seq, got)
		}
		for p, q := range r.Qual {
			if q != 80 {
				t.Fatalf("quality at %d: got %d, want 80", p, q)
			}
		}
	}
}

func TestReadWithN(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 33))
	c := testChrom(t, strings.Repeat("N", 200))

	s, err := sequencer.New(sequencer.Param{
		Profile1:  sequencer.FlatProfile(50, 40),
		FragMean:  100,
		FragShape: 5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r := s.Reads(rng, c)[0]
	for p, b := range r.Seq {
		if b != 'N' {
			t.Fatalf("base at %d: got %c, want N", p, b)
		}
		if r.Qual[p] != 2 {
			t.Fatalf("quality at %d: got %d, want 2", p, r.Qual[p])
		}
	}
}

func TestParamErrors(t *testing.T) {
	if _, err := sequencer.New(sequencer.Param{FragMean: 100, FragShape: 1}); err == nil {
		t.Errorf("expecting error: undefined profile")
	}
	if _, err := sequencer.New(sequencer.Param{
		Profile1: sequencer.FlatProfile(100, 40), FragMean: 50, FragShape: 1,
	}); err == nil {
		t.Errorf("expecting error: fragment shorter than the read")
	}
	if _, err := sequencer.New(sequencer.Param{
		Profile1: sequencer.FlatProfile(100, 40), FragMean: 300, FragShape: 0,
	}); err == nil {
		t.Errorf("expecting error: invalid fragment shape")
	}
}
