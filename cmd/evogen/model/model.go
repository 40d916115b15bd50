// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package model implements a command to define
// the evolution model of a project.
package model

import (
	"errors"
	"os"

	"github.com/js-arias/command"
	"github.com/js-arias/evogen/param"
	"github.com/js-arias/evogen/project"
)

var Command = &command.Command{
	Usage: `model [--model <name>]
	[--xi <rate>] [--psi <ratio>]
	[--shape <value>] [--invariant <fraction>]
	[--scale <rate>]
	[-o|--output <file>] <project-file>`,
	Short: "define the evolution model of a project",
	Long: `
Command model writes a model parameter file with the indicated parameters
and registers it in a project. Parameters not covered by the flags of the
command can be edited directly in the resulting file; see 'evogen help
models' for the description of all parameters.

The argument of the command is the name of the project file. If the project
file does not exist, it will be created.

The flag --model sets the substitution model; valid models are jc69 (the
default), k80, f81, hky85, tn93, and gtr.

The flag --xi sets the total indel rate, and the flag --psi the insertion to
deletion ratio (1 by default).

The flag --shape sets the gamma shape for among-site rate variation (zero,
the default, disables the variation), and the flag --invariant the fraction
of invariant sites.

The flag --scale sets the substitution rate per million years used to
transform tree ages into branch lengths (0.01 by default).

By default, the model is written to a file named after the project, with the
suffix "model.tab". Use the flag --output, or -o, to set a different file
name.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var modelName string
var xi float64
var psi float64
var shape float64
var invariant float64
var scale float64
var output string

func setFlags(c *command.Command) {
	c.Flags().StringVar(&modelName, "model", "jc69", "")
	c.Flags().Float64Var(&xi, "xi", 0, "")
	c.Flags().Float64Var(&psi, "psi", 1, "")
	c.Flags().Float64Var(&shape, "shape", 0, "")
	c.Flags().Float64Var(&invariant, "invariant", 0, "")
	c.Flags().Float64Var(&scale, "scale", 0.01, "")
	c.Flags().StringVar(&output, "output", "", "")
	c.Flags().StringVar(&output, "o", "", "")
}

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

	if output == "" {
		output = args[0] + "-model.tab"
	}

	pm := param.New(output)
	if err := pm.SetModel(modelName); err != nil {
		return c.UsageError(err.Error())
	}
	if err := pm.SetIndels(xi, psi); err != nil {
		return c.UsageError(err.Error())
	}
	if err := pm.SetSiteVar(shape, pm.RegionSize(), invariant); err != nil {
		return c.UsageError(err.Error())
	}
	if err := pm.SetScale(scale); err != nil {
		return c.UsageError(err.Error())
	}

	// validate the model before writing
	m, err := pm.Model()
	if err != nil {
		return err
	}
	if _, err := pm.Events(m); err != nil {
		return err
	}

	if err := pm.Write(); err != nil {
		return err
	}

	p.Add(project.Model, output)
	return p.Write()
}
