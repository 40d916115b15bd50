// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package sitevar

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

var header = []string{
	"chromosome",
	"end",
	"multiplier",
}

// ReadTSV reads raw site rate regions from a TSV file,
// as a matrix of end positions and multipliers
// per chromosome.
// Use FromMatrix to validate each matrix
// against its chromosome size.
//
// The TSV must contain the following fields:
//
//   - chromosome, the name of the chromosome
//   - end, the end position of a region
//     (1-based, inclusive)
//   - multiplier, the rate multiplier of the region
//
// Here is an example file:
//
//	# site rate regions
//	chromosome	end	multiplier
//	chr-1	1000	0.25
//	chr-1	2000	1.75
//	chr-2	500	1.0
func ReadTSV(r io.Reader) (map[string][][]float64, error) {
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

	mats := make(map[string][][]float64)
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
		end, err := strconv.ParseFloat(row[fields["end"]], 64)
		if err != nil {
			return nil, fmt.Errorf("on row %d: field \"end\": %v", ln, err)
		}
		mult, err := strconv.ParseFloat(row[fields["multiplier"]], 64)
		if err != nil {
			return nil, fmt.Errorf("on row %d: field \"multiplier\": %v", ln, err)
		}
		mats[name] = append(mats[name], []float64{end, mult})
	}
	if len(mats) == 0 {
		return nil, fmt.Errorf("while reading site rates: %v", io.ErrUnexpectedEOF)
	}
	return mats, nil
}

// TSV writes the regions of a set of chromosomes
// as a TSV file.
func TSV(w io.Writer, names []string, all []*Rates) error {
	if len(names) != len(all) {
		return fmt.Errorf("sitevar: %d names for %d chromosomes", len(names), len(all))
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# site rate regions\n")
	fmt.Fprintf(bw, "# data save on: %s\n", time.Now().Format(time.RFC3339))
	tsv := csv.NewWriter(bw)
	tsv.Comma = '\t'
	tsv.UseCRLF = true

	if err := tsv.Write(header); err != nil {
		return fmt.Errorf("while writing header: %v", err)
	}
	for i, r := range all {
		for _, rg := range r.regions {
			row := []string{
				names[i],
				strconv.Itoa(rg.End),
				strconv.FormatFloat(rg.Mult, 'f', 6, 64),
			}
			if err := tsv.Write(row); err != nil {
				return fmt.Errorf("while writing chromosome %q: %v", names[i], err)
			}
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
