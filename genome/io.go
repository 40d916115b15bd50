// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package genome

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

var header = []string{
	"chromosome",
	"sequence",
}

// Read reads a genome from a TSV file.
//
// The TSV must contain the following fields:
//
//   - chromosome, the name of the chromosome
//   - sequence, the nucleotide sequence
//
// Here is an example file:
//
//	# reference genome
//	chromosome	sequence
//	chr-1	TCAGTCAGNNTCAG
//	chr-2	ACGTACGT
func Read(r io.Reader) (*Genome, error) {
	tsv := csv.NewReader(r)
	tsv.Comma = '\t'
	tsv.Comment = '#'

	head, err := tsv.Read()
	if err != nil {
		return nil, fmt.Errorf("header: %v", err)
	}
	fields := make(map[string]int, len(head))
	for i, h := range head {
		h = strings.ToLower(h)
		fields[h] = i
	}
	for _, h := range header {
		if _, ok := fields[h]; !ok {
			return nil, fmt.Errorf("expecting field %q", h)
		}
	}

	g := New()
	for {
		row, err := tsv.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tsv.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on row %d: %v", ln, err)
		}

		name := row[fields["chromosome"]]
		seq := row[fields["sequence"]]
		if err := g.Add(name, seq); err != nil {
			return nil, fmt.Errorf("on row %d: %v", ln, err)
		}
	}
	if g.Len() == 0 {
		return nil, fmt.Errorf("while reading genome: %v", io.ErrUnexpectedEOF)
	}
	return g, nil
}

// TSV writes a genome as a TSV file.
func (g *Genome) TSV(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# reference genome\n")
	fmt.Fprintf(bw, "# data save on: %s\n", time.Now().Format(time.RFC3339))
	tsv := csv.NewWriter(bw)
	tsv.Comma = '\t'
	tsv.UseCRLF = true

	if err := tsv.Write(header); err != nil {
		return fmt.Errorf("while writing header: %v", err)
	}
	for _, c := range g.chroms {
		row := []string{c.name, string(c.seq)}
		if err := tsv.Write(row); err != nil {
			return fmt.Errorf("while writing chromosome %q: %v", c.name, err)
		}
	}

	tsv.Flush()
	if err := tsv.Error(); err != nil {
		return fmt.Errorf("while writing data: %v", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("while writing data: %v", err)
	}
	return nil
}
