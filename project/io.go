// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package project

import (
	"fmt"
	"os"

	"github.com/js-arias/evogen/genome"
	"github.com/js-arias/evogen/param"
	"github.com/js-arias/timetree"
)

// Genome reads the reference genome file
// as defined in a project.
func (p *Project) Genome() (*genome.Genome, error) {
	name := p.Path(Genome)
	if name == "" {
		return nil, fmt.Errorf("genome not defined in project %q", p.name)
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	g, err := genome.Read(f)
	if err != nil {
		return nil, fmt.Errorf("on file %q: %v", name, err)
	}
	return g, nil
}

// Trees reads the tree file
// as defined in a project.
func (p *Project) Trees() (*timetree.Collection, error) {
	name := p.Path(Trees)
	if name == "" {
		return nil, fmt.Errorf("trees not defined in project %q", p.name)
	}

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

// Params reads the model parameter file
// as defined in a project.
func (p *Project) Params() (*param.Params, error) {
	name := p.Path(Model)
	if name == "" {
		return nil, fmt.Errorf("model not defined in project %q", p.name)
	}
	return param.Read(name)
}
