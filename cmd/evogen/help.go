// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package main

import "github.com/js-arias/command"

func init() {
	app.Add(projectsGuide)
	app.Add(genomesGuide)
	app.Add(modelsGuide)
}

var projectsGuide = &command.Command{
	Usage: "projects",
	Short: "about project files",
	Long: `
EvoGen requires several files to run a simulation. To reduce the burden of
keeping track of many files, a single project file is used to hold the
reference of all files required in the simulation. This guide explains the
structure of the file, but most of the time, the best and most secure way to
edit or view this file is by using evogen commands.

A project file is a tab-delimited file with the following fields:

	- dataset  for the kind of file
	- path     for the path of the file

Here is an example file:

	# evogen project files
	dataset	path
	genome	reference.tab
	trees	trees.tab
	model	model.tab

The valid file types are:

- Reference genomes. Defined by the dataset keyword "genome". This file
  contains the chromosomes of the reference genome in the form of a
  tab-delimited file. The recommended way to add a genome is by using the
  command 'evogen gen'.
- Time-calibrated trees. Defined by the dataset keyword "trees". This file
  contains one or more trees in the form of a tab-delimited file. The
  recommended way to add a tree file is by using the command 'evogen tree'.
- Model parameters. Defined by the dataset keyword "model". This file
  contains the parameters of the substitution and indel model in the form of
  a tab-delimited file. The recommended way to add a model file is by using
  the command 'evogen model'.
- Site rate regions. Defined by the dataset keyword "siterates". This file
  contains custom regions and rate multipliers for among-site rate
  variation. This file is optional; by default the regions are generated
  from the gamma shape defined in the model file.
	`,
}

var genomesGuide = &command.Command{
	Usage: "genomes",
	Short: "about genome files",
	Long: `
A genome file stores the chromosomes of a reference genome as a tab-delimited
file with the following fields:

	- chromosome  for the name of the chromosome
	- sequence    for the nucleotide sequence

Here is an example file:

	# reference genome
	chromosome	sequence
	chr-1	TCAGTCAGNNTCAG
	chr-2	ACGTACGT

At reading time, any character that is not a valid nucleotide (A, C, G, T, or
N, in either case) is replaced by N. Lowercase nucleotides are accepted and
preserved, so soft-masked regions survive a round-trip.

The simulated genomes of the tree tips are never stored as full sequences:
each tip chromosome is a list of mutations over the reference. Use the flag
--seqs of the command 'evogen sim' to materialize the sequences of the tips.
	`,
}

var modelsGuide = &command.Command{
	Usage: "models",
	Short: "about substitution models",
	Long: `
The evolution model of a simulation is defined in a tab-delimited file of
parameter-value pairs. The substitution component is one of the classical
nucleotide models: jc69, k80, f81, hky85, tn93, or gtr. All of them are
special cases of a reversible rate matrix over the nucleotides T, C, A, and
G, defined by the equilibrium frequencies (parameters pit, pic, pia, pig),
the transition rates (alpha1 for T-C, alpha2 for A-G), the transversion rate
(beta), and, for the gtr model, the six exchangeability rates (rtc, rta, rtg,
rca, rcg, rag).

Indels are controlled by the total indel rate (xi) and the
insertion-deletion ratio (psi). Indel lengths follow a power law: the
relative rate of an indel of length i is i raised to a negative exponent
(insalpha, delalpha), up to a maximum length (insmax, delmax).

Among-site rate variation divides each chromosome in regions of a fixed
number of sites (regionsize); each region has a rate multiplier drawn from a
gamma distribution (with the shape parameter), normalized so the mean
multiplier across the genome is exactly one. A fraction of the sites
(invariant) never mutates. A shape of zero or less disables the variation.

Branch lengths are taken from the ages of the time-calibrated trees, scaled
by the substitution rate per million years (scale).
	`,
}
