// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package tree implements a command to add
// time calibrated trees to a project,
// simulating them if necessary.
package tree

import (
	"errors"
	"fmt"
	"os"

	"github.com/js-arias/command"
	"github.com/js-arias/evogen/project"
	"github.com/js-arias/timetree"
	"github.com/js-arias/timetree/simulate"
)

var Command = &command.Command{
	Usage: `tree [--terms <number>] [--max <age>]
	[--coalescent <number>] [--file <tree-file>]
	[-o|--output <file>] <project-file>`,
	Short: "add trees to a project",
	Long: `
Command tree adds a tree file to a project. The trees can be read from an
existing file in timetree TSV format, or simulated.

The argument of the command is the name of the project file. If the project
file does not exist, it will be created.

If the flag --file is given, the indicated tree file is validated and
registered in the project. Otherwise, a single tree is simulated: the flag
--terms indicates the number of tips (it is required), and the flag --max
the age of the root in million years (also required). By default, a uniform
tree is created; use the flag --coalescent with the "size of the population"
to create a coalescent tree.

Each chromosome of the genome is evolved on the tree named after it. If the
tree file contains a single tree, that tree is used for every chromosome;
otherwise a chromosome without a tree of its name is an error.

By default, simulated trees are written to a file named after the project,
with the suffix "trees.tab". Use the flag --output, or -o, to set a
different file name.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var numTerms int
var maxAge float64
var coalescent float64
var treeFile string
var output string

func setFlags(c *command.Command) {
	c.Flags().IntVar(&numTerms, "terms", 0, "")
	c.Flags().Float64Var(&maxAge, "max", 0, "")
	c.Flags().Float64Var(&coalescent, "coalescent", 0, "")
	c.Flags().StringVar(&treeFile, "file", "", "")
	c.Flags().StringVar(&output, "output", "", "")
	c.Flags().StringVar(&output, "o", "", "")
}

const millionYears = 1_000_000

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}

	p, err := project.Read(args[0])
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		p = project.New()
		p.SetName(args[0])
	}

	if treeFile != "" {
		if _, err := readTreeFile(treeFile); err != nil {
			return err
		}
		p.Add(project.Trees, treeFile)
		return p.Write()
	}

	if numTerms <= 0 {
		return c.UsageError("flag --terms must be defined")
	}
	if maxAge <= 0 {
		return c.UsageError("flag --max must be defined")
	}
	max := int64(maxAge * millionYears)
	if max < 2 {
		max = 2
	}

	coll := timetree.NewCollection()
	var t *timetree.Tree
	if coalescent > 0 {
		t = simulate.Coalescent("sim-tree", coalescent*millionYears, max, numTerms)
	} else {
		ages := make([]int64, numTerms)
		t = simulate.Uniform("sim-tree", max, 0, ages)
	}
	t.Format()
	if err := coll.Add(t); err != nil {
		return err
	}

	if output == "" {
		output = args[0] + "-trees.tab"
	}
	if err := writeTrees(coll, output); err != nil {
		return err
	}

	p.Add(project.Trees, output)
	return p.Write()
}

func readTreeFile(name string) (*timetree.Collection, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := timetree.ReadTSV(f)
	if err != nil {
		return nil, fmt.Errorf("on file %q: %v", name, err)
	}
	return c, nil
}

func writeTrees(tc *timetree.Collection, name string) (err error) {
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

	if err := tc.TSV(f); err != nil {
		return fmt.Errorf("while writing to %q: %v", name, err)
	}
	return nil
}
