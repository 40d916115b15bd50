// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package sim implements a command to run
// a molecular evolution simulation.
package sim

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"time"

	"github.com/js-arias/command"
	"github.com/js-arias/evogen/evolve"
	"github.com/js-arias/evogen/genome"
	"github.com/js-arias/evogen/param"
	"github.com/js-arias/evogen/project"
	"github.com/js-arias/evogen/sequencer"
	"github.com/js-arias/evogen/sitevar"
	"github.com/js-arias/evogen/variant"
	"github.com/js-arias/timetree"
)

var Command = &command.Command{
	Usage: `sim [--seed <number>] [--cpu <number>]
	[--seqs] [--reads <number>] [--read-len <sites>] [--paired]
	[-o|--output <prefix>] <project-file>`,
	Short: "run a molecular evolution simulation",
	Long: `
Command sim reads an evogen project and evolves the reference genome along
the trees of the project, one independent lineage per tree tip. The output
is a tab-delimited file with the mutations of each tip chromosome.

The argument of the command is the name of the project file. The project
must define a genome, a tree file, and a model file; see 'evogen help
projects'.

Each chromosome evolves along the tree with its chromosome name, or, if the
tree file contains a single tree, all chromosomes use that tree. The model
file defines the substitution and indel model, the among-site rate
variation, and the scaling of tree ages into branch lengths. If the project
defines a siterates file, the rate regions are read from that file instead
of being generated, and every chromosome must be covered.

The flag --seed sets the seed of the random number generator; every worker
derives its own deterministic stream from it. By default, all available CPUs
are used in the simulation; set the flag --cpu to use a different number.

The prefix of the output file names is the name of the project file; use the
flag --output, or -o, to set a different prefix. The mutations are written
to the file "<prefix>-mutations.tab". With the flag --seqs, the evolved
sequence of every tip is materialized into the genome file
"<prefix>-<tip>-genome.tab". With the flag --reads, the indicated number of
short reads is simulated from each tip genome into the file
"<prefix>-reads.tab"; the flags --read-len and --paired control the read
length (100 by default) and paired-end reads.

The simulation can be interrupted with the interrupt signal (Ctrl-C); the
chromosomes finished before the interruption are written, and a warning is
printed.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var seed int64
var numCPU int
var writeSeqs bool
var numReads int
var readLen int
var paired bool
var output string

func setFlags(c *command.Command) {
	c.Flags().Int64Var(&seed, "seed", 0, "")
	c.Flags().IntVar(&numCPU, "cpu", runtime.GOMAXPROCS(0), "")
	c.Flags().BoolVar(&writeSeqs, "seqs", false, "")
	c.Flags().IntVar(&numReads, "reads", 0, "")
	c.Flags().IntVar(&readLen, "read-len", 100, "")
	c.Flags().BoolVar(&paired, "paired", false, "")
	c.Flags().StringVar(&output, "output", "", "")
	c.Flags().StringVar(&output, "o", "", "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}

	g, err := p.Genome()
	if err != nil {
		return err
	}
	tc, err := p.Trees()
	if err != nil {
		return err
	}
	pm, err := p.Params()
	if err != nil {
		return err
	}

	m, err := pm.Model()
	if err != nil {
		return err
	}
	ev, err := pm.Events(m)
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)+1))
	sites, err := siteRates(p, g, pm, rng)
	if err != nil {
		return err
	}

	trees, err := chromTrees(g, tc, pm.Scale())
	if err != nil {
		return err
	}

	ep := evolve.Param{
		Genome: g,
		Trees:  trees,
		Model:  m,
		Events: ev,
		Sites:  sites,
		Seed:   uint64(seed),
		CPU:    numCPU,
	}

	var prog evolve.Progress
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	done := make(chan struct{})
	go func() {
		select {
		case <-stop:
			prog.Abort()
		case <-done:
		}
	}()

	set, err := evolve.Evolve(ep, &prog)
	close(done)
	signal.Stop(stop)
	if err != nil {
		if !errors.Is(err, evolve.ErrCancelled) {
			return err
		}
		fmt.Fprintf(c.Stderr(), "warning: simulation interrupted: results are partial\n")
	}

	if output == "" {
		output = args[0]
	}
	if err := writeMutations(set, g, output+"-mutations.tab"); err != nil {
		return err
	}
	if writeSeqs {
		if err := writeTipGenomes(set, g, output); err != nil {
			return err
		}
	}
	if numReads > 0 {
		if err := writeReads(set, g, rng, output+"-reads.tab"); err != nil {
			return err
		}
	}
	return nil
}

// SiteRates builds the site rate variation
// of every chromosome:
// from the siterates file of the project
// if defined,
// or generated from the model parameters.
func siteRates(p *project.Project, g *genome.Genome, pm *param.Params, rng *rand.Rand) ([]*sitevar.Rates, error) {
	var all []*sitevar.Rates
	if sf := p.Path(project.SiteRates); sf != "" {
		f, err := os.Open(sf)
		if err != nil {
			return nil, err
		}
		mats, err := sitevar.ReadTSV(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("on file %q: %v", sf, err)
		}

		all = make([]*sitevar.Rates, g.Len())
		for i := 0; i < g.Len(); i++ {
			ch := g.Chromosome(i)
			mat, ok := mats[ch.Name()]
			if !ok {
				return nil, fmt.Errorf("on file %q: no regions for chromosome %q", sf, ch.Name())
			}
			r, err := sitevar.FromMatrix(mat, ch.Len())
			if err != nil {
				return nil, fmt.Errorf("on file %q: chromosome %q: %v", sf, ch.Name(), err)
			}
			all[i] = r
		}
	} else {
		sizes := make([]int, g.Len())
		for i := range sizes {
			sizes[i] = g.Chromosome(i).Len()
		}
		var err error
		all, err = sitevar.Generate(rng, sizes, pm.RegionSize(), pm.Shape())
		if err != nil {
			return nil, err
		}
	}

	if inv := pm.Invariant(); inv > 0 {
		for _, r := range all {
			if err := r.SetInvariant(rng, inv); err != nil {
				return nil, err
			}
		}
	}
	return all, nil
}

func chromTrees(g *genome.Genome, tc *timetree.Collection, scale float64) ([]*evolve.Tree, error) {
	names := tc.Names()
	single := ""
	if len(names) == 1 {
		single = names[0]
	}

	trees := make([]*evolve.Tree, g.Len())
	for i := 0; i < g.Len(); i++ {
		name := g.Chromosome(i).Name()
		tt := tc.Tree(name)
		if tt == nil {
			if single == "" {
				return nil, fmt.Errorf("no tree for chromosome %q", name)
			}
			tt = tc.Tree(single)
		}
		t, err := evolve.FromTimetree(tt, scale)
		if err != nil {
			return nil, err
		}
		trees[i] = t
	}
	return trees, nil
}

func writeMutations(set *variant.Set, g *genome.Genome, name string) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		e := f.Close()
		if e != nil && err == nil {
			err = e
		}
	}()

	bw := bufio.NewWriter(f)
	fmt.Fprintf(bw, "# simulated mutations\n")
	fmt.Fprintf(bw, "# data save on: %s\n", time.Now().Format(time.RFC3339))
	tsv := csv.NewWriter(bw)
	tsv.Comma = '\t'
	tsv.UseCRLF = true

	header := []string{"tip", "chromosome", "old_pos", "new_pos", "size_mod", "nucleotides"}
	if err := tsv.Write(header); err != nil {
		return fmt.Errorf("on file %q: while writing header: %v", name, err)
	}

	for _, l := range set.Labels() {
		ti := set.Tip(l)
		for ci := 0; ci < g.Len(); ci++ {
			vc := set.Chrom(ti, ci)
			if vc == nil {
				continue
			}
			for _, mut := range vc.Mutations() {
				row := []string{
					l,
					g.Chromosome(ci).Name(),
					strconv.Itoa(mut.Old),
					strconv.Itoa(mut.New),
					strconv.Itoa(mut.SizeMod),
					mut.Seq,
				}
				if err := tsv.Write(row); err != nil {
					return fmt.Errorf("on file %q: %v", name, err)
				}
			}
		}
	}

	tsv.Flush()
	if err := tsv.Error(); err != nil {
		return fmt.Errorf("on file %q: while writing data: %v", name, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("on file %q: while writing data: %v", name, err)
	}
	return nil
}

// chunk size for the read-out of evolved sequences
const chunkSize = 1 << 16

func writeTipGenomes(set *variant.Set, g *genome.Genome, prefix string) error {
	for _, l := range set.Labels() {
		ti := set.Tip(l)
		tg := genome.New()
		for ci := 0; ci < g.Len(); ci++ {
			vc := set.Chrom(ti, ci)
			if vc == nil {
				continue
			}
			var seq []byte
			for start := 0; start < vc.Len(); start += chunkSize {
				seq = append(seq, vc.Region(start, chunkSize)...)
			}
			if err := tg.Add(g.Chromosome(ci).Name(), string(seq)); err != nil {
				return err
			}
		}

		name := fmt.Sprintf("%s-%s-genome.tab", prefix, l)
		if err := writeGenomeFile(tg, name); err != nil {
			return err
		}
	}
	return nil
}

func writeGenomeFile(g *genome.Genome, name string) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		e := f.Close()
		if e != nil && err == nil {
			err = e
		}
	}()

	if err := g.TSV(f); err != nil {
		return fmt.Errorf("on file %q: %v", name, err)
	}
	return nil
}

// phred scores are written with an offset of 33
const phredOffset = 33

func writeReads(set *variant.Set, g *genome.Genome, rng *rand.Rand, name string) (err error) {
	sq, err := sequencer.New(sequencer.Param{
		Profile1:  sequencer.FlatProfile(readLen, 35),
		Paired:    paired,
		FragMean:  float64(readLen) * 3,
		FragShape: 6,
	})
	if err != nil {
		return err
	}

	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		e := f.Close()
		if e != nil && err == nil {
			err = e
		}
	}()

	bw := bufio.NewWriter(f)
	fmt.Fprintf(bw, "# simulated reads\n")
	fmt.Fprintf(bw, "# data save on: %s\n", time.Now().Format(time.RFC3339))
	tsv := csv.NewWriter(bw)
	tsv.Comma = '\t'
	tsv.UseCRLF = true

	header := []string{"tip", "chromosome", "read", "sequence", "quality"}
	if err := tsv.Write(header); err != nil {
		return fmt.Errorf("on file %q: while writing header: %v", name, err)
	}

	for _, l := range set.Labels() {
		ti := set.Tip(l)
		for r := 0; r < numReads; r++ {
			ci := rng.IntN(g.Len())
			vc := set.Chrom(ti, ci)
			if vc == nil || vc.Len() == 0 {
				continue
			}
			for mate, rd := range sq.Reads(rng, vc) {
				qual := make([]byte, len(rd.Qual))
				for i, q := range rd.Qual {
					qual[i] = q + phredOffset
				}
				row := []string{
					l,
					g.Chromosome(ci).Name(),
					fmt.Sprintf("read-%d.%d", r+1, mate+1),
					string(rd.Seq),
					string(qual),
				}
				if err := tsv.Write(row); err != nil {
					return fmt.Errorf("on file %q: %v", name, err)
				}
			}
		}
	}

	tsv.Flush()
	if err := tsv.Error(); err != nil {
		return fmt.Errorf("on file %q: while writing data: %v", name, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("on file %q: while writing data: %v", name, err)
	}
	return nil
}
