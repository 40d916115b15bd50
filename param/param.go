// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package param implements reading and writing
// of the parameters of an evolution model.
package param

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/js-arias/evogen/rate"
)

// Param is a keyword to identify
// the type of parameter in a model file.
type Param string

// Valid parameters.
const (
	// Model is the name of the substitution model.
	Model Param = "model"

	// Equilibrium frequencies of the nucleotides.
	PiT Param = "pit"
	PiC Param = "pic"
	PiA Param = "pia"
	PiG Param = "pig"

	// Alpha1 and Alpha2 are the transition rates
	// (T-C and A-G),
	// and Beta the transversion rate.
	Alpha1 Param = "alpha1"
	Alpha2 Param = "alpha2"
	Beta   Param = "beta"

	// Exchangeability rates of the GTR model.
	RateTC Param = "rtc"
	RateTA Param = "rta"
	RateTG Param = "rtg"
	RateCA Param = "rca"
	RateCG Param = "rcg"
	RateAG Param = "rag"

	// Xi is the total indel rate,
	// and Psi the insertion to deletion ratio.
	Xi  Param = "xi"
	Psi Param = "psi"

	// Maximum lengths and length exponents
	// for insertions and deletions.
	// The relative rate of an indel of length i
	// is i to the negative exponent.
	InsMax   Param = "insmax"
	InsAlpha Param = "insalpha"
	DelMax   Param = "delmax"
	DelAlpha Param = "delalpha"

	// Shape is the gamma shape
	// for among-site rate variation
	// (zero or less disables the variation),
	// RegionSize the number of sites
	// sharing a rate multiplier,
	// and Invariant the fraction of invariant sites.
	Shape      Param = "shape"
	RegionSize Param = "regionsize"
	Invariant  Param = "invariant"

	// Scale is the substitution rate
	// per million years,
	// used to transform tree ages
	// into branch lengths.
	Scale Param = "scale"
)

// Valid substitution model names.
var models = map[string]bool{
	"jc69":  true,
	"k80":   true,
	"f81":   true,
	"hky85": true,
	"tn93":  true,
	"gtr":   true,
}

// Params is a collection of evolution model parameters.
type Params struct {
	name string // file name

	model string
	pi    [4]float64

	alpha1, alpha2, beta float64
	gtr                  [6]float64

	xi, psi            float64
	insMax, delMax     int
	insAlpha, delAlpha float64

	shape      float64
	regionSize int
	invariant  float64

	scale float64
}

// New creates a new parameter collection
// with default values.
func New(name string) *Params {
	return &Params{
		name:       name,
		model:      "jc69",
		pi:         [4]float64{0.25, 0.25, 0.25, 0.25},
		alpha1:     1,
		alpha2:     1,
		beta:       1,
		gtr:        [6]float64{1, 1, 1, 1, 1, 1},
		psi:        1,
		insMax:     10,
		delMax:     10,
		insAlpha:   1.7,
		delAlpha:   1.7,
		regionSize: 1000,
		scale:      0.01,
	}
}

var header = []string{
	"parameter",
	"value",
}

// Read reads model parameters from a TSV file.
//
// The TSV must contain the following fields:
//
//   - parameter, the name of the parameter
//   - value, the value of the parameter
//
// Here is an example file:
//
//	# evogen model parameters
//	parameter	value
//	model	hky85
//	pit	0.3
//	pic	0.2
//	pia	0.3
//	pig	0.2
//	alpha1	2.0
//	beta	1.0
//	xi	0.1
//	psi	1.0
//	shape	0.5
func Read(name string) (*Params, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p, err := read(f, name)
	if err != nil {
		return nil, fmt.Errorf("on file %q: %v", name, err)
	}
	return p, nil
}

func read(r io.Reader, name string) (*Params, error) {
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

	p := New(name)
	for {
		row, err := tsv.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tsv.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on row %d: %v", ln, err)
		}

		kw := Param(strings.ToLower(row[fields["parameter"]]))
		v := row[fields["value"]]
		if err := p.set(kw, v); err != nil {
			return nil, fmt.Errorf("on row %d: %v", ln, err)
		}
	}
	return p, nil
}

func (p *Params) set(kw Param, v string) error {
	if kw == Model {
		return p.SetModel(v)
	}

	switch kw {
	case InsMax, DelMax, RegionSize:
		i, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parameter %q: %v", kw, err)
		}
		switch kw {
		case InsMax:
			p.insMax = i
		case DelMax:
			p.delMax = i
		case RegionSize:
			if i <= 0 {
				return fmt.Errorf("parameter %q: invalid size %d", kw, i)
			}
			p.regionSize = i
		}
		return nil
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("parameter %q: %v", kw, err)
	}
	switch kw {
	case PiT:
		p.pi[0] = f
	case PiC:
		p.pi[1] = f
	case PiA:
		p.pi[2] = f
	case PiG:
		p.pi[3] = f
	case Alpha1:
		p.alpha1 = f
	case Alpha2:
		p.alpha2 = f
	case Beta:
		p.beta = f
	case RateTC:
		p.gtr[0] = f
	case RateTA:
		p.gtr[1] = f
	case RateTG:
		p.gtr[2] = f
	case RateCA:
		p.gtr[3] = f
	case RateCG:
		p.gtr[4] = f
	case RateAG:
		p.gtr[5] = f
	case Xi:
		if f < 0 {
			return fmt.Errorf("parameter %q: negative rate", kw)
		}
		p.xi = f
	case Psi:
		if f <= 0 {
			return fmt.Errorf("parameter %q: invalid ratio", kw)
		}
		p.psi = f
	case InsAlpha:
		p.insAlpha = f
	case DelAlpha:
		p.delAlpha = f
	case Shape:
		p.shape = f
	case Invariant:
		if f < 0 || f >= 1 {
			return fmt.Errorf("parameter %q: invalid fraction %.6f", kw, f)
		}
		p.invariant = f
	case Scale:
		if f <= 0 {
			return fmt.Errorf("parameter %q: invalid scale", kw)
		}
		p.scale = f
	default:
		return fmt.Errorf("unknown parameter %q", kw)
	}
	return nil
}

// Name returns the file name of the parameter collection.
func (p *Params) Name() string {
	return p.name
}

// SetName sets the file name of the parameter collection.
func (p *Params) SetName(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	p.name = name
}

// ModelName returns the name of the substitution model.
func (p *Params) ModelName() string {
	return p.model
}

// SetModel sets the substitution model by name.
func (p *Params) SetModel(name string) error {
	name = strings.ToLower(strings.TrimSpace(name))
	if !models[name] {
		return fmt.Errorf("unknown model %q", name)
	}
	p.model = name
	return nil
}

// Shape returns the gamma shape
// for among-site rate variation.
func (p *Params) Shape() float64 {
	return p.shape
}

// RegionSize returns the number of sites
// sharing a rate multiplier.
func (p *Params) RegionSize() int {
	return p.regionSize
}

// Invariant returns the fraction of invariant sites.
func (p *Params) Invariant() float64 {
	return p.invariant
}

// Scale returns the substitution rate per million years.
func (p *Params) Scale() float64 {
	return p.scale
}

// Model builds the substitution model
// from the parameters.
func (p *Params) Model() (*rate.Model, error) {
	switch p.model {
	case "jc69":
		return rate.JC69(p.beta)
	case "k80":
		return rate.K80(p.alpha1, p.beta)
	case "f81":
		return rate.F81(p.pi)
	case "hky85":
		return rate.HKY85(p.pi, p.alpha1, p.beta)
	case "tn93":
		return rate.TN93(p.pi, p.alpha1, p.alpha2, p.beta)
	case "gtr":
		return rate.GTR(p.pi, p.gtr)
	}
	return nil, fmt.Errorf("unknown model %q", p.model)
}

// Events builds the event distributions
// from the parameters.
func (p *Params) Events(m *rate.Model) (*rate.Events, error) {
	var ins, del []float64
	if p.xi > 0 {
		ins = lengthRates(p.insMax, p.insAlpha)
		del = lengthRates(p.delMax, p.delAlpha)
	}
	return rate.NewEvents(m, p.xi, p.psi, ins, del)
}

// LengthRates returns the relative rates
// of indels of lengths 1 to max,
// decaying as a power law.
func lengthRates(max int, alpha float64) []float64 {
	if max <= 0 {
		return nil
	}
	r := make([]float64, max)
	for i := range r {
		r[i] = math.Pow(float64(i+1), -alpha)
	}
	return r
}

// Write writes a parameter collection into a file.
func (p *Params) Write() (err error) {
	f, err := os.Create(p.name)
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
	fmt.Fprintf(bw, "# evogen model parameters\n")
	fmt.Fprintf(bw, "# data save on: %s\n", time.Now().Format(time.RFC3339))
	tsv := csv.NewWriter(bw)
	tsv.Comma = '\t'
	tsv.UseCRLF = true

	if err := tsv.Write(header); err != nil {
		return fmt.Errorf("on file %q: while writing header: %v", p.name, err)
	}

	rows := [][2]string{
		{string(Model), p.model},
		{string(PiT), strconv.FormatFloat(p.pi[0], 'f', -1, 64)},
		{string(PiC), strconv.FormatFloat(p.pi[1], 'f', -1, 64)},
		{string(PiA), strconv.FormatFloat(p.pi[2], 'f', -1, 64)},
		{string(PiG), strconv.FormatFloat(p.pi[3], 'f', -1, 64)},
		{string(Alpha1), strconv.FormatFloat(p.alpha1, 'f', -1, 64)},
		{string(Alpha2), strconv.FormatFloat(p.alpha2, 'f', -1, 64)},
		{string(Beta), strconv.FormatFloat(p.beta, 'f', -1, 64)},
		{string(RateTC), strconv.FormatFloat(p.gtr[0], 'f', -1, 64)},
		{string(RateTA), strconv.FormatFloat(p.gtr[1], 'f', -1, 64)},
		{string(RateTG), strconv.FormatFloat(p.gtr[2], 'f', -1, 64)},
		{string(RateCA), strconv.FormatFloat(p.gtr[3], 'f', -1, 64)},
		{string(RateCG), strconv.FormatFloat(p.gtr[4], 'f', -1, 64)},
		{string(RateAG), strconv.FormatFloat(p.gtr[5], 'f', -1, 64)},
		{string(Xi), strconv.FormatFloat(p.xi, 'f', -1, 64)},
		{string(Psi), strconv.FormatFloat(p.psi, 'f', -1, 64)},
		{string(InsMax), strconv.Itoa(p.insMax)},
		{string(InsAlpha), strconv.FormatFloat(p.insAlpha, 'f', -1, 64)},
		{string(DelMax), strconv.Itoa(p.delMax)},
		{string(DelAlpha), strconv.FormatFloat(p.delAlpha, 'f', -1, 64)},
		{string(Shape), strconv.FormatFloat(p.shape, 'f', -1, 64)},
		{string(RegionSize), strconv.Itoa(p.regionSize)},
		{string(Invariant), strconv.FormatFloat(p.invariant, 'f', -1, 64)},
		{string(Scale), strconv.FormatFloat(p.scale, 'f', -1, 64)},
	}
	for _, r := range rows {
		if err := tsv.Write(r[:]); err != nil {
			return fmt.Errorf("on file %q: %v", p.name, err)
		}
	}

	tsv.Flush()
	if err := tsv.Error(); err != nil {
		return fmt.Errorf("on file %q: while writing data: %v", p.name, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("on file %q: while writing data: %v", p.name, err)
	}
	return nil
}

// SetPi sets the equilibrium frequencies.
func (p *Params) SetPi(pi [4]float64) error {
	var sum float64
	for _, f := range pi {
		if f <= 0 {
			return fmt.Errorf("invalid frequency %.6f", f)
		}
		sum += f
	}
	if math.Abs(sum-1) > 1e-6 {
		return fmt.Errorf("frequencies sum %.6f, want 1", sum)
	}
	p.pi = pi
	return nil
}

// Pi returns the equilibrium frequencies.
func (p *Params) Pi() [4]float64 {
	return p.pi
}

// SetRates sets the substitution rates:
// the transition rates alpha1 and alpha2,
// and the transversion rate beta.
func (p *Params) SetRates(alpha1, alpha2, beta float64) error {
	if alpha1 < 0 || alpha2 < 0 || beta < 0 {
		return fmt.Errorf("negative substitution rate")
	}
	p.alpha1 = alpha1
	p.alpha2 = alpha2
	p.beta = beta
	return nil
}

// SetIndels sets the indel parameters:
// the total rate xi
// and the insertion to deletion ratio psi.
func (p *Params) SetIndels(xi, psi float64) error {
	if xi < 0 {
		return fmt.Errorf("negative indel rate")
	}
	if psi <= 0 {
		return fmt.Errorf("invalid insertion-deletion ratio")
	}
	p.xi = xi
	p.psi = psi
	return nil
}

// IndelRate returns the total indel rate.
func (p *Params) IndelRate() float64 {
	return p.xi
}

// SetSiteVar sets the among-site variation parameters.
func (p *Params) SetSiteVar(shape float64, regionSize int, invariant float64) error {
	if regionSize <= 0 {
		return fmt.Errorf("invalid region size %d", regionSize)
	}
	if invariant < 0 || invariant >= 1 {
		return fmt.Errorf("invalid invariant fraction %.6f", invariant)
	}
	p.shape = shape
	p.regionSize = regionSize
	p.invariant = invariant
	return nil
}

// SetScale sets the substitution rate per million years.
func (p *Params) SetScale(scale float64) error {
	if scale <= 0 {
		return fmt.Errorf("invalid scale value %.6f", scale)
	}
	p.scale = scale
	return nil
}
