// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package variant_test

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/js-arias/evogen/genome"
	"github.com/js-arias/evogen/variant"
)

func refChrom(t testing.TB, seq string) *genome.Chromosome {
	t.Helper()

	g := genome.New()
	if err := g.Add("chr-test", seq); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return g.Chromosome(0)
}

func TestSubstitution(t *testing.T) {
	c := variant.NewChrom(refChrom(t, "TCAGTCAG"))

	c.AddSubstitution('A', 1)
	if got, want := c.Sequence(), "TAAGTCAG"; got != want {
		t.Errorf("sequence: got %q, want %q", got, want)
	}
	wantMuts(t, c, []variant.Mutation{
		{Old: 1, New: 1, SizeMod: 0, Seq: "A"},
	})
	if c.Len() != 8 {
		t.Errorf("size: got %d, want 8", c.Len())
	}

	// a substitution to the same base
	// does not change the sequence
	c.AddSubstitution('G', 3)
	if got, want := c.Sequence(), "TAAGTCAG"; got != want {
		t.Errorf("sequence: got %q, want %q", got, want)
	}
}

func TestInsertion(t *testing.T) {
	c := variant.NewChrom(refChrom(t, "TCAGTCAG"))
	c.AddSubstitution('A', 1)

	// "GT" at position 3:
	// the G replaces the reference base,
	// the T is the net new base
	c.AddInsertion("GT", 3)
	if got, want := c.Sequence(), "TAAGTTCAG"; got != want {
		t.Errorf("sequence: got %q, want %q", got, want)
	}
	wantMuts(t, c, []variant.Mutation{
		{Old: 1, New: 1, SizeMod: 0, Seq: "A"},
		{Old: 3, New: 3, SizeMod: 1, Seq: "GT"},
	})
	if c.Len() != 9 {
		t.Errorf("size: got %d, want 9", c.Len())
	}
}

func TestInsertionAtHead(t *testing.T) {
	c := variant.NewChrom(refChrom(t, "TCAGTCAG"))

	c.AddInsertion("AAT", 0)
	if got, want := c.Sequence(), "AATCAGTCAG"; got != want {
		t.Errorf("sequence: got %q, want %q", got, want)
	}
	if c.Len() != 10 {
		t.Errorf("size: got %d, want 10", c.Len())
	}
}

func TestSubstitutionInsideInsertion(t *testing.T) {
	c := variant.NewChrom(refChrom(t, "TCAGTCAG"))

	c.AddInsertion("GTT", 3)
	c.AddSubstitution('C', 4)
	if got, want := c.Sequence(), "TCAGCTTCAG"; got != want {
		t.Errorf("sequence: got %q, want %q", got, want)
	}
	// the substitution modifies the insertion record,
	// it does not add a new one
	wantMuts(t, c, []variant.Mutation{
		{Old: 3, New: 3, SizeMod: 2, Seq: "GCT"},
	})
}

func TestDeletion(t *testing.T) {
	c := variant.NewChrom(refChrom(t, "TCAGTCAG"))

	c.AddDeletion(3, 2)
	if got, want := c.Sequence(), "TCCAG"; got != want {
		t.Errorf("sequence: got %q, want %q", got, want)
	}
	wantMuts(t, c, []variant.Mutation{
		{Old: 2, New: 2, SizeMod: -3, Seq: ""},
	})
	if c.Len() != 5 {
		t.Errorf("size: got %d, want 5", c.Len())
	}
}

func TestDeletionAbsorbsInsertion(t *testing.T) {
	c := variant.NewChrom(refChrom(t, "TCAGTCAG"))

	c.AddInsertion("CAAA", 2)
	if got, want := c.Sequence(), "TCCAAAGTCAG"; got != want {
		t.Errorf("sequence after insertion: got %q, want %q", got, want)
	}

	// the deletion first absorbs the three inserted bases,
	// leaving two reference bases to delete
	c.AddDeletion(5, 2)
	if got, want := c.Sequence(), "TCTCAG"; got != want {
		t.Errorf("sequence after deletion: got %q, want %q", got, want)
	}
	wantMuts(t, c, []variant.Mutation{
		{Old: 2, New: 2, SizeMod: -2, Seq: ""},
	})
	if c.Len() != 6 {
		t.Errorf("size: got %d, want 6", c.Len())
	}
}

func TestDeletionFullyAbsorbed(t *testing.T) {
	c := variant.NewChrom(refChrom(t, "TCAGTCAG"))

	c.AddInsertion("CAAA", 2)
	c.AddDeletion(3, 3)
	if got, want := c.Sequence(), "TCCGTCAG"; got != want {
		t.Errorf("sequence: got %q, want %q", got, want)
	}
	if c.Len() != 8 {
		t.Errorf("size: got %d, want 8", c.Len())
	}
}

func TestDeletionClamped(t *testing.T) {
	c := variant.NewChrom(refChrom(t, "TCAGTCAG"))

	c.AddDeletion(100, 5)
	if got, want := c.Sequence(), "TCAGT"; got != want {
		t.Errorf("sequence: got %q, want %q", got, want)
	}
	if c.Len() != 5 {
		t.Errorf("size: got %d, want 5", c.Len())
	}
}

func TestDeletionMerge(t *testing.T) {
	c := variant.NewChrom(refChrom(t, "TCAGTCAGTCAG"))

	c.AddDeletion(2, 4)
	c.AddDeletion(2, 4)
	if got, want := c.Sequence(), "TCAGTCAG"; got != want {
		t.Errorf("sequence: got %q, want %q", got, want)
	}
	// adjacent deletions must merge into a single record
	wantMuts(t, c, []variant.Mutation{
		{Old: 4, New: 4, SizeMod: -4, Seq: ""},
	})
}

func TestDeletionReinsertion(t *testing.T) {
	ref := "TCAGTCAGTCAG"
	c := variant.NewChrom(refChrom(t, ref))

	c.AddDeletion(4, 3)
	c.AddInsertion(ref[2:7], 2)
	if got := c.Sequence(); got != ref {
		t.Errorf("sequence: got %q, want %q", got, ref)
	}
	if c.Len() != len(ref) {
		t.Errorf("size: got %d, want %d", c.Len(), len(ref))
	}
}

func TestBaseAndRegion(t *testing.T) {
	ref := "TCAGTCAGTCAG"
	c := variant.NewChrom(refChrom(t, ref))
	c.AddSubstitution('T', 2)
	c.AddInsertion("GAA", 7)
	c.AddDeletion(2, 4)

	want := c.Sequence()
	for i := 0; i < c.Len(); i++ {
		if got := c.Base(i); got != want[i] {
			t.Errorf("base at %d: got %c, want %c", i, got, want[i])
		}
	}

	for start := 0; start < c.Len(); start++ {
		for size := 1; size <= c.Len()-start; size++ {
			if got := c.Region(start, size); got != want[start:start+size] {
				t.Fatalf("region (%d, %d): got %q, want %q", start, size, got, want[start:start+size])
			}
		}
	}

	if got := c.Region(2, 1000); got != want[2:] {
		t.Errorf("truncated region: got %q, want %q", got, want[2:])
	}
	if got := c.Region(c.Len(), 10); got != "" {
		t.Errorf("region past the end: got %q, want empty", got)
	}
}

// An eagerChrom is a naive variant
// that materializes the string on every edit.
type eagerChrom struct {
	seq string
}

func (e *eagerChrom) addSubstitution(base byte, pos int) {
	e.seq = e.seq[:pos] + string(base) + e.seq[pos+1:]
}

func (e *eagerChrom) addInsertion(seq string, pos int) {
	e.seq = e.seq[:pos] + seq + e.seq[pos+1:]
}

func (e *eagerChrom) addDeletion(size, pos int) {
	end := pos + size
	if end > len(e.seq) {
		end = len(e.seq)
	}
	e.seq = e.seq[:pos] + e.seq[end:]
}

func TestRandomEdits(t *testing.T) {
	const bases = "TCAG"

	rng := rand.New(rand.NewPCG(1984, 2001))
	for rep := 0; rep < 50; rep++ {
		ref := make([]byte, 200)
		for i := range ref {
			ref[i] = bases[rng.IntN(4)]
		}
		c := variant.NewChrom(refChrom(t, string(ref)))
		e := &eagerChrom{seq: string(ref)}

		for n := 0; n < 300 && c.Len() > 0; n++ {
			pos := rng.IntN(c.Len())
			switch k := rng.IntN(4); k {
			case 0, 1:
				b := bases[rng.IntN(4)]
				c.AddSubstitution(b, pos)
				e.addSubstitution(b, pos)
			case 2:
				sz := rng.IntN(8) + 1
				nt := make([]byte, sz+1)
				for i := range nt {
					nt[i] = bases[rng.IntN(4)]
				}
				c.AddInsertion(string(nt), pos)
				e.addInsertion(string(nt), pos)
			case 3:
				sz := rng.IntN(8) + 1
				c.AddDeletion(sz, pos)
				e.addDeletion(sz, pos)
			}
			if c.Len() != len(e.seq) {
				t.Fatalf("rep %d, edit %d: size: got %d, want %d", rep, n, c.Len(), len(e.seq))
			}
			checkInvariants(t, c, len(ref))
		}
		if got := c.Sequence(); got != e.seq {
			t.Fatalf("rep %d: sequence: got %q, want %q", rep, got, e.seq)
		}
	}
}

// wantMuts checks that a variant chromosome
// has the given mutation records.
func wantMuts(t testing.TB, c *variant.Chrom, want []variant.Mutation) {
	t.Helper()

	got := c.Mutations()
	if len(got) != len(want) {
		t.Fatalf("mutations: got %d records %v, want %d records %v", len(got), got, len(want), want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("mutation %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

// CheckInvariants verifies the structural invariants
// of the mutation list.
func checkInvariants(t testing.TB, c *variant.Chrom, refSize int) {
	t.Helper()

	muts := c.Mutations()

	var mod int
	prevDel := false
	for i, m := range muts {
		// only a deletion may share its new position
		// with the record that follows it
		if i > 0 && (m.New < muts[i-1].New || (m.New == muts[i-1].New && !muts[i-1].IsDeletion())) {
			t.Fatalf("records %d and %d not ordered by new position: %d, %d", i-1, i, muts[i-1].New, m.New)
		}
		if m.New-m.Old != mod {
			t.Fatalf("record %d: new - old = %d, want %d", i, m.New-m.Old, mod)
		}
		if m.IsDeletion() {
			if m.Seq != "" {
				t.Fatalf("record %d: deletion with bases %q", i, m.Seq)
			}
			if prevDel && muts[i-1].New == m.New {
				t.Fatalf("records %d and %d: unmerged adjacent deletions", i-1, i)
			}
		} else if m.SizeMod != len(m.Seq)-1 {
			t.Fatalf("record %d: size modifier %d does not match bases %q", i, m.SizeMod, m.Seq)
		}
		prevDel = m.IsDeletion()
		mod += m.SizeMod
	}
	if c.Len() != refSize+mod {
		t.Fatalf("size: got %d, want %d", c.Len(), refSize+mod)
	}
}

func TestClone(t *testing.T) {
	c := variant.NewChrom(refChrom(t, "TCAGTCAG"))
	c.AddSubstitution('A', 1)

	nc := c.Clone()
	nc.AddDeletion(2, 0)

	if got, want := c.Sequence(), "TAAGTCAG"; got != want {
		t.Errorf("parent sequence: got %q, want %q", got, want)
	}
	if got, want := nc.Sequence(), "AGTCAG"; got != want {
		t.Errorf("clone sequence: got %q, want %q", got, want)
	}
}

func TestSet(t *testing.T) {
	g := genome.New()
	g.Add("chr-1", strings.Repeat("TCAG", 4))
	g.Add("chr-2", strings.Repeat("ACGT", 2))

	s, err := variant.NewSet(g, []string{"tip-A", "tip-B"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := s.Tip("tip-B"); got != 1 {
		t.Errorf("tip index: got %d, want 1", got)
	}
	if got := s.Tip("no-tip"); got != -1 {
		t.Errorf("unknown tip index: got %d, want -1", got)
	}

	c := s.Chrom(1, 0).Clone()
	c.AddSubstitution('A', 0)
	s.Replace(1, 0, c)
	if got, want := s.Chrom(1, 0).Sequence(), "ACAGTCAGTCAGTCAG"; got != want {
		t.Errorf("variant sequence: got %q, want %q", got, want)
	}
	if got, want := s.Chrom(0, 0).Sequence(), strings.Repeat("TCAG", 4); got != want {
		t.Errorf("untouched variant: got %q, want %q", got, want)
	}

	if _, err := variant.NewSet(g, []string{"a", "a"}); err == nil {
		t.Errorf("expecting error for repeated labels")
	}
}
