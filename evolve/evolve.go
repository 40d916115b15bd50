// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package evolve implements the simulation
// of molecular evolution along phylogenetic trees.
//
// Each chromosome evolves independently along its own tree
// with a Gillespie simulation:
// exponentially distributed time jumps between mutations,
// with the clock parameterized
// by the current total mutation rate of the chromosome.
// Chromosomes run in parallel,
// one worker per chromosome,
// each with its own deterministic random number stream.
package evolve

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"runtime"
	"slices"
	"sync/atomic"

	"github.com/js-arias/evogen/genome"
	"github.com/js-arias/evogen/mutate"
	"github.com/js-arias/evogen/rate"
	"github.com/js-arias/evogen/sitevar"
	"github.com/js-arias/evogen/variant"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat/distuv"
)

// number of mutation jumps between abort checks
const abortJumps = 128

// ErrCancelled is returned by Evolve
// after a cooperative cancellation.
// The chromosomes finished before the cancel
// are fully populated in the returned variant set.
var ErrCancelled = errors.New("evolve: cancelled by the user")

// A Progress reports the state of a simulation
// shared between the caller and the workers.
// The zero value is ready to use.
type Progress struct {
	sites atomic.Int64
	abort atomic.Bool
}

// Sites returns the number of reference sites
// fully evolved so far.
func (p *Progress) Sites() int64 {
	return p.sites.Load()
}

// Abort asks the workers to stop.
// Workers poll the flag at every tree edge
// and every few mutation jumps.
func (p *Progress) Abort() {
	p.abort.Store(true)
}

func (p *Progress) aborted() bool {
	if p == nil {
		return false
	}
	return p.abort.Load()
}

func (p *Progress) add(n int64) {
	if p == nil {
		return
	}
	p.sites.Add(n)
}

// Param is a collection of parameters
// for the simulation of a genome.
type Param struct {
	// Reference genome
	Genome *genome.Genome

	// One tree per chromosome,
	// in chromosome order.
	// All trees must share the same tip labels.
	Trees []*Tree

	// Substitution model
	Model *rate.Model

	// Event distributions of the model
	Events *rate.Events

	// Site rate variation per chromosome
	Sites []*sitevar.Rates

	// Seed of the master random number generator.
	// Each worker derives its own stream
	// from this seed and the chromosome index.
	Seed uint64

	// Number of parallel workers.
	// The default (zero) uses all available CPU.
	CPU int
}

// Evolve simulates the evolution of a genome:
// each chromosome is evolved along its tree,
// and the mutated chromosomes of the tree tips
// are collected in a variant set.
//
// On cancellation it returns ErrCancelled
// and the partial variant set.
func Evolve(p Param, prog *Progress) (*variant.Set, error) {
	if p.Genome == nil || p.Genome.Len() == 0 {
		return nil, fmt.Errorf("evolve: undefined reference genome")
	}
	if len(p.Trees) != p.Genome.Len() {
		return nil, fmt.Errorf("evolve: %d trees for %d chromosomes", len(p.Trees), p.Genome.Len())
	}
	if len(p.Sites) != p.Genome.Len() {
		return nil, fmt.Errorf("evolve: site variation for %d chromosomes, want %d", len(p.Sites), p.Genome.Len())
	}
	if p.Model == nil || p.Events == nil {
		return nil, fmt.Errorf("evolve: undefined substitution model")
	}

	tips := p.Trees[0].Tips()
	sorted := slices.Clone(tips)
	slices.Sort(sorted)
	for _, t := range p.Trees[1:] {
		ts := t.Tips()
		slices.Sort(ts)
		if !slices.Equal(ts, sorted) {
			return nil, fmt.Errorf("evolve: tree %q with different tip labels", t.Name())
		}
	}

	set, err := variant.NewSet(p.Genome, tips)
	if err != nil {
		return nil, err
	}

	cpu := p.CPU
	if cpu == 0 {
		cpu = runtime.GOMAXPROCS(0)
	}

	var g errgroup.Group
	g.SetLimit(cpu)
	for i := 0; i < p.Genome.Len(); i++ {
		g.Go(func() error {
			if prog.aborted() {
				return nil
			}
			rng := rand.New(rand.NewPCG(p.Seed, uint64(i)+1))
			return evolveChrom(p, i, set, rng, prog)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if prog.aborted() {
		return set, ErrCancelled
	}
	return set, nil
}

// EvolveChrom walks the tree of a single chromosome:
// for each edge the child starts as a copy of its parent
// and accumulates mutations
// with exponential time jumps
// until the branch length is exhausted.
func evolveChrom(p Param, ci int, set *variant.Set, rng *rand.Rand, prog *Progress) error {
	tree := p.Trees[ci]
	ref := p.Genome.Chromosome(ci)

	tmp := make([]*variant.Chrom, tree.NumNodes())
	tmp[tree.Root()] = variant.NewChrom(ref)

	start, end := tree.Range()
	ranged := end >= 0
	ends := make([]int, tree.NumNodes())
	if ranged {
		e := end
		if e > ref.Len()-1 {
			e = ref.Len() - 1
		}
		ends[tree.Root()] = e
	}

	for ei := 0; ei < tree.NumEdges(); ei++ {
		if prog.aborted() {
			return nil
		}

		b1, b2, blen := tree.Edge(ei)
		tmp[b2] = tmp[b1].Clone()

		ms, err := mutate.New(tmp[b2], p.Model, p.Events, p.Sites[ci], rng)
		if err != nil {
			return err
		}
		rho := ms.TotalRate()

		if ranged {
			ends[b2] = ends[b1]
		}
		if rho > 0 {
			clock := distuv.Exponential{Rate: rho, Src: randSource{rng}}
			jumped := clock.Rand()
			jumps := 0

			if ranged {
				e := ends[b2]
				for jumped <= blen && e >= start {
					var d float64
					d, e = ms.MutateRegion(rng, start, e)
					rho += d
					if rho <= 0 {
						break
					}
					clock.Rate = rho
					jumped += clock.Rand()

					jumps++
					if jumps%abortJumps == 0 && prog.aborted() {
						return nil
					}
				}
				ends[b2] = e
			} else {
				for jumped <= blen && tmp[b2].Len() > 0 {
					rho += ms.Mutate(rng)
					if rho <= 0 {
						break
					}
					clock.Rate = rho
					jumped += clock.Rand()

					jumps++
					if jumps%abortJumps == 0 && prog.aborted() {
						return nil
					}
				}
			}
		}

		// release the parent storage
		// when no more edges descend from it
		if !tree.usedAfter(b1, ei) {
			tmp[b1] = nil
		}
	}

	for ti := 0; ti < tree.NumTips(); ti++ {
		slot := set.Tip(tree.Tips()[ti])
		if slot < 0 {
			return fmt.Errorf("evolve: tree %q: tip %q not in the variant set", tree.Name(), tree.Tips()[ti])
		}
		set.Replace(slot, ci, tmp[ti])
	}
	prog.add(int64(ref.Len()))
	return nil
}

// randSource adapts a math/rand/v2 Rand
// to the golang.org/x/exp/rand.Source interface
// required by gonum's distuv distributions.
type randSource struct {
	rng *rand.Rand
}

func (s randSource) Uint64() uint64   { return s.rng.Uint64() }
func (s randSource) Seed(seed uint64) {}
