// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// EvoGen is a tool to simulate molecular evolution
// along phylogenetic trees.
package main

import (
	"github.com/js-arias/command"
	"github.com/js-arias/evogen/cmd/evogen/gen"
	"github.com/js-arias/evogen/cmd/evogen/model"
	"github.com/js-arias/evogen/cmd/evogen/rateplot"
	"github.com/js-arias/evogen/cmd/evogen/sim"
	"github.com/js-arias/evogen/cmd/evogen/tree"
)

var app = &command.Command{
	Usage: "evogen <command> [<argument>...]",
	Short: "a tool to simulate molecular evolution",
}

func init() {
	app.Add(gen.Command)
	app.Add(model.Command)
	app.Add(rateplot.Command)
	app.Add(sim.Command)
	app.Add(tree.Command)
}

func main() {
	app.Main()
}
