// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package gen implements a command to create
// a random reference genome.
package gen

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/js-arias/command"
	"github.com/js-arias/evogen/genome"
	"github.com/js-arias/evogen/project"
)

var Command = &command.Command{
	Usage: `gen [--chroms <number>] [--size <sites>]
	[--pit <freq>] [--pic <freq>] [--pia <freq>] [--pig <freq>]
	[--seed <number>] [-o|--output <file>] <project-file>`,
	Short: "create a random reference genome",
	Long: `
Command gen creates a random reference genome, writes it to a genome file,
and registers the file in a project.

The argument of the command is the name of the project file. If the project
file does not exist, it will be created.

By default, the genome will have a single chromosome of a million sites. Use
the flags --chroms and --size to change the number of chromosomes and the
size of each chromosome.

The bases are drawn independently from the equilibrium frequencies given
with the flags --pit, --pic, --pia, and --pig, for T, C, A, and G. By
default, all frequencies are 0.25. The frequencies must sum to one.

By default, the genome is written to a file named after the project, with
the suffix "genome.tab". Use the flag --output, or -o, to set a different
file name.

The flag --seed sets the seed of the random number generator.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var numChroms int
var chromSize int
var piT, piC, piA, piG float64
var seed int64
var output string

func setFlags(c *command.Command) {
	c.Flags().IntVar(&numChroms, "chroms", 1, "")
	c.Flags().IntVar(&chromSize, "size", 1_000_000, "")
	c.Flags().Float64Var(&piT, "pit", 0.25, "")
	c.Flags().Float64Var(&piC, "pic", 0.25, "")
	c.Flags().Float64Var(&piA, "pia", 0.25, "")
	c.Flags().Float64Var(&piG, "pig", 0.25, "")
	c.Flags().Int64Var(&seed, "seed", 0, "")
	c.Flags().StringVar(&output, "output", "", "")
	c.Flags().StringVar(&output, "o", "", "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}
	if numChroms < 1 {
		return c.UsageError("invalid --chroms value")
	}
	if chromSize < 1 {
		return c.UsageError("invalid --size value")
	}
	pi := [4]float64{piT, piC, piA, piG}
	var sum float64
	for _, p := range pi {
		if p <= 0 {
			return c.UsageError("frequencies must be positive")
		}
		sum += p
	}
	if sum < 0.999999 || sum > 1.000001 {
		return c.UsageError("frequencies must sum to one")
	}

	p, err := project.Read(args[0])
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		p = project.New()
		p.SetName(args[0])
	}

	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)+1))
	sizes := make([]int, numChroms)
	for i := range sizes {
		sizes[i] = chromSize
	}
	g := genome.Random(rng, sizes, pi)

	if output == "" {
		output = args[0] + "-genome.tab"
	}
	if err := writeGenome(g, output); err != nil {
		return err
	}

	p.Add(project.Genome, output)
	if err := p.Write(); err != nil {
		return err
	}

	fmt.Fprintf(c.Stdout(), "%d chromosomes, %d sites\n", g.Len(), g.Total())
	return nil
}

func writeGenome(g *genome.Genome, name string) (err error) {
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
