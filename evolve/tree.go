// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package evolve

import (
	"fmt"

	"github.com/js-arias/timetree"
)

// A Tree is a phylogeny for a single chromosome,
// stored as an edge list.
//
// Nodes are identified by indices:
// tips take the indices 0 to NumTips-1,
// internal nodes take the remaining indices,
// and the root is the only node
// without an incoming edge.
// Edges are stored in tree order:
// the parent of an edge is either the root
// or the child of an earlier edge.
// Branch lengths are measured
// in expected substitutions per site.
type Tree struct {
	name   string
	labels []string
	edges  [][2]int
	lens   []float64
	nNodes int

	// optional chromosome subrange
	start, end int
}

// NewTree creates a tree from an edge list.
// The labels are the tip names,
// ordered by tip index.
func NewTree(name string, labels []string, edges [][2]int, lens []float64) (*Tree, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("evolve: tree %q: no tip labels", name)
	}
	if len(edges) == 0 {
		return nil, fmt.Errorf("evolve: tree %q: no edges", name)
	}
	if len(edges) != len(lens) {
		return nil, fmt.Errorf("evolve: tree %q: %d edges with %d branch lengths", name, len(edges), len(lens))
	}

	nNodes := 0
	for _, e := range edges {
		for _, n := range e {
			if n < 0 {
				return nil, fmt.Errorf("evolve: tree %q: negative node index", name)
			}
			if n >= nNodes {
				nNodes = n + 1
			}
		}
	}
	if nNodes < len(labels)+1 {
		return nil, fmt.Errorf("evolve: tree %q: %d nodes for %d tips", name, nNodes, len(labels))
	}

	// every node but the root
	// must have exactly one incoming edge,
	// and parents must appear in tree order
	in := make([]int, nNodes)
	seen := make([]bool, nNodes)
	roots := 0
	for i, e := range edges {
		p, c := e[0], e[1]
		if in[p] == 0 && !seen[p] {
			roots++
			if roots > 1 {
				return nil, fmt.Errorf("evolve: tree %q: edge %d: parent %d not yet derived", name, i, p)
			}
		}
		seen[p] = true
		in[c]++
		if in[c] > 1 {
			return nil, fmt.Errorf("evolve: tree %q: node %d with multiple parents", name, c)
		}
		seen[c] = true
		if lens[i] < 0 {
			return nil, fmt.Errorf("evolve: tree %q: edge %d: negative branch length", name, i)
		}
	}
	for t := 0; t < len(labels); t++ {
		if in[t] == 0 {
			return nil, fmt.Errorf("evolve: tree %q: tip %q without an incoming edge", name, labels[t])
		}
	}

	ls := make([]string, len(labels))
	copy(ls, labels)
	es := make([][2]int, len(edges))
	copy(es, edges)
	bl := make([]float64, len(lens))
	copy(bl, lens)

	return &Tree{
		name:   name,
		labels: ls,
		edges:  es,
		lens:   bl,
		nNodes: nNodes,
		end:    -1,
	}, nil
}

// millionYears scales the ages of a time tree.
const millionYears = 1_000_000

// FromTimetree creates a tree from a time calibrated tree.
// Branch lengths are the age differences
// between parent and child nodes,
// in million years,
// multiplied by scale
// (the substitution rate per million years).
func FromTimetree(t *timetree.Tree, scale float64) (*Tree, error) {
	if scale <= 0 {
		return nil, fmt.Errorf("evolve: tree %q: invalid rate scale %.6f", t.Name(), scale)
	}

	// tips first, in preorder
	ids := preorder(t, t.Root())
	index := make(map[int]int, len(ids))
	var labels []string
	for _, id := range ids {
		if !t.IsTerm(id) {
			continue
		}
		index[id] = len(labels)
		labels = append(labels, t.Taxon(id))
	}
	next := len(labels)
	for _, id := range ids {
		if t.IsTerm(id) {
			continue
		}
		index[id] = next
		next++
	}

	var edges [][2]int
	var lens []float64
	for _, id := range ids {
		if id == t.Root() {
			continue
		}
		p := t.Parent(id)
		edges = append(edges, [2]int{index[p], index[id]})
		age := t.Age(p) - t.Age(id)
		lens = append(lens, float64(age)/millionYears*scale)
	}

	return NewTree(t.Name(), labels, edges, lens)
}

func preorder(t *timetree.Tree, id int) []int {
	ids := []int{id}
	for _, c := range t.Children(id) {
		ids = append(ids, preorder(t, c)...)
	}
	return ids
}

// Name returns the name of the tree.
func (t *Tree) Name() string {
	return t.name
}

// Tips returns the tip labels of the tree,
// ordered by tip index.
func (t *Tree) Tips() []string {
	ls := make([]string, len(t.labels))
	copy(ls, t.labels)
	return ls
}

// NumTips returns the number of tips.
func (t *Tree) NumTips() int {
	return len(t.labels)
}

// NumNodes returns the number of nodes,
// tips included.
func (t *Tree) NumNodes() int {
	return t.nNodes
}

// NumEdges returns the number of edges.
func (t *Tree) NumEdges() int {
	return len(t.edges)
}

// Edge returns the parent and child nodes
// and the branch length
// of the edge at a given index.
func (t *Tree) Edge(i int) (parent, child int, blen float64) {
	return t.edges[i][0], t.edges[i][1], t.lens[i]
}

// Root returns the root node of the tree.
func (t *Tree) Root() int {
	return t.edges[0][0]
}

// SetRange restricts the evolution
// to a chromosome subrange
// (both positions inclusive,
// on the evolved sequence).
func (t *Tree) SetRange(start, end int) error {
	if start < 0 || end < start {
		return fmt.Errorf("evolve: tree %q: invalid range [%d, %d]", t.name, start, end)
	}
	t.start = start
	t.end = end
	return nil
}

// Range returns the chromosome subrange of the tree.
// An end of -1 means the whole chromosome.
func (t *Tree) Range() (start, end int) {
	return t.start, t.end
}

// UsedAfter reports whether a node is used as a parent
// by any edge after the given edge index.
func (t *Tree) usedAfter(node, edge int) bool {
	for i := edge + 1; i < len(t.edges); i++ {
		if t.edges[i][0] == node {
			return true
		}
	}
	return false
}
