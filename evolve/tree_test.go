// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package evolve_test

import (
	"slices"
	"testing"

	"github.com/js-arias/evogen/evolve"
	"github.com/js-arias/timetree/simulate"
)

func TestNewTree(t *testing.T) {
	// ((A,B),C)
	labels := []string{"A", "B", "C"}
	edges := [][2]int{{3, 4}, {4, 0}, {4, 1}, {3, 2}}
	lens := []float64{0.1, 0.2, 0.3, 0.4}

	tr, err := evolve.NewTree("test", labels, edges, lens)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := tr.NumTips(); got != 3 {
		t.Errorf("tips: got %d, want 3", got)
	}
	if got := tr.NumNodes(); got != 5 {
		t.Errorf("nodes: got %d, want 5", got)
	}
	if got := tr.NumEdges(); got != 4 {
		t.Errorf("edges: got %d, want 4", got)
	}
	if got := tr.Root(); got != 3 {
		t.Errorf("root: got %d, want 3", got)
	}
	p, c, bl := tr.Edge(1)
	if p != 4 || c != 0 || bl != 0.2 {
		t.Errorf("edge 1: got (%d, %d, %.2f), want (4, 0, 0.20)", p, c, bl)
	}

	if s, e := tr.Range(); s != 0 || e != -1 {
		t.Errorf("default range: got [%d, %d], want [0, -1]", s, e)
	}
	if err := tr.SetRange(10, 100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s, e := tr.Range(); s != 10 || e != 100 {
		t.Errorf("range: got [%d, %d], want [10, 100]", s, e)
	}
	if err := tr.SetRange(100, 10); err == nil {
		t.Errorf("expecting error: inverted range")
	}
}

func TestNewTreeErrors(t *testing.T) {
	labels := []string{"A", "B"}
	tests := []struct {
		name  string
		edges [][2]int
		lens  []float64
	}{
		{"no edges", nil, nil},
		{"bad lengths", [][2]int{{2, 0}, {2, 1}}, []float64{1}},
		{"negative length", [][2]int{{2, 0}, {2, 1}}, []float64{1, -1}},
		{"two parents", [][2]int{{2, 0}, {2, 1}, {0, 1}}, []float64{1, 1, 1}},
		{"orphan tip", [][2]int{{2, 1}, {1, 3}}, []float64{1, 1}},
		{"out of order", [][2]int{{3, 0}, {2, 3}, {2, 1}}, []float64{1, 1, 1}},
	}
	for _, test := range tests {
		if _, err := evolve.NewTree(test.name, labels, test.edges, test.lens); err == nil {
			t.Errorf("%s: expecting error", test.name)
		}
	}
}

func TestFromTimetree(t *testing.T) {
	ages := make([]int64, 5)
	tt := simulate.Uniform("sim-tree", 10_000_000, 0, ages)

	tr, err := evolve.FromTimetree(tt, 0.01)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := tr.NumTips(); got != 5 {
		t.Errorf("tips: got %d, want 5", got)
	}
	if got := tr.NumEdges(); got != tr.NumNodes()-1 {
		t.Errorf("edges: got %d, want %d", got, tr.NumNodes()-1)
	}

	labels := tr.Tips()
	sorted := slices.Clone(labels)
	slices.Sort(sorted)
	terms := slices.Clone(tt.Terms())
	slices.Sort(terms)
	if !slices.Equal(sorted, terms) {
		t.Errorf("tips: got %v, want %v", sorted, terms)
	}

	// branch lengths are age differences
	// scaled by the substitution rate
	var sum float64
	for i := 0; i < tr.NumEdges(); i++ {
		_, _, bl := tr.Edge(i)
		if bl < 0 {
			t.Errorf("edge %d: negative branch length %.6f", i, bl)
		}
		sum += bl
	}
	if sum <= 0 {
		t.Errorf("total tree length: got %.6f, want > 0", sum)
	}

	if _, err := evolve.FromTimetree(tt, 0); err == nil {
		t.Errorf("expecting error: invalid scale")
	}
}
