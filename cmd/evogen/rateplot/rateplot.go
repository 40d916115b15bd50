// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package rateplot implements a command to plot
// the distribution of the site rate multipliers.
package rateplot

import (
	"fmt"

	"github.com/js-arias/blind"
	"github.com/js-arias/command"
	"github.com/js-arias/evogen/cats"
	"gonum.org/v1/gonum/stat/distuv"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var Command = &command.Command{
	Usage: `rateplot [--shape <value>] [--cats <number>]
	[-o|--output <file>]`,
	Short: "plot the distribution of site rate multipliers",
	Long: `
Command rateplot draws the density of the gamma distribution used for the
among-site rate variation, together with the values of its discretization in
equal-probability categories.

The flag --shape sets the shape of the gamma distribution (1 by default).
The rate parameter always takes the same value as the shape, so the mean of
the distribution is one.

The flag --cats sets the number of discrete categories (8 by default).

By default, the plot is written to the file "rate-plot.png". Use the flag
--output, or -o, to set a different file name; the format is taken from the
file extension.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var shape float64
var numCats int
var output string

func setFlags(c *command.Command) {
	c.Flags().Float64Var(&shape, "shape", 1, "")
	c.Flags().IntVar(&numCats, "cats", 8, "")
	c.Flags().StringVar(&output, "output", "rate-plot.png", "")
	c.Flags().StringVar(&output, "o", "rate-plot.png", "")
}

// points used to draw the density curve
const curvePoints = 256

func run(c *command.Command, args []string) error {
	if shape <= 0 {
		return c.UsageError("flag --shape must be positive")
	}
	if numCats < 1 {
		return c.UsageError("flag --cats must be positive")
	}

	gd := distuv.Gamma{
		Alpha: shape,
		Beta:  shape,
	}
	cv := cats.Gamma{Shape: shape, NumCat: numCats}.Cats()
	max := cv[len(cv)-1] * 1.25

	p := plot.New()
	p.Title.Text = fmt.Sprintf("gamma rates, shape %.3f", shape)
	p.X.Label.Text = "rate multiplier"
	p.Y.Label.Text = "density"

	density := make(plotter.XYs, curvePoints)
	for i := range density {
		x := (float64(i) + 0.5) / curvePoints * max
		density[i].X = x
		density[i].Y = gd.Prob(x)
	}
	curve, err := plotter.NewLine(density)
	if err != nil {
		return err
	}
	curve.Color = blind.Sequential(blind.Iridescent, 0.2)
	p.Add(curve)

	for i, v := range cv {
		xy := plotter.XYs{
			{X: v, Y: 0},
			{X: v, Y: gd.Prob(v)},
		}
		ln, err := plotter.NewLine(xy)
		if err != nil {
			return err
		}
		pos := (float64(i) + 0.5) / float64(len(cv))
		ln.Color = blind.Sequential(blind.RainbowPurpleToRed, pos)
		p.Add(ln)
	}

	if err := p.Save(6*vg.Inch, 4*vg.Inch, output); err != nil {
		return fmt.Errorf("while writing %q: %v", output, err)
	}
	fmt.Fprintf(c.Stdout(), "%s\n", output)
	return nil
}
