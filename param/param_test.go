// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package param_test

import (
	"math"
	"os"
	"testing"

	"github.com/js-arias/evogen/param"
)

func TestParams(t *testing.T) {
	name := "tmp-model-parameters-for-test.tab"
	p := param.New(name)
	testParams(t, p, nil, name)

	if err := p.SetModel("hky85"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.SetPi([4]float64{0.3, 0.2, 0.3, 0.2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.SetRates(2, 2, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.SetIndels(0.1, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.SetSiteVar(0.5, 500, 0.1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.SetScale(0.02); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	defer os.Remove(name)
	if err := p.Write(); err != nil {
		t.Fatalf("error when writing data: %v", err)
	}

	np, err := param.Read(name)
	if err != nil {
		t.Fatalf("error when reading data: %v", err)
	}
	testParams(t, np, p, name)
}

func testParams(t testing.TB, p, want *param.Params, name string) {
	t.Helper()

	if want == nil {
		want = param.New(name)
	}

	if p.Name() != want.Name() {
		t.Errorf("name: got %q, want %q", p.Name(), want.Name())
	}
	if p.ModelName() != want.ModelName() {
		t.Errorf("model: got %q, want %q", p.ModelName(), want.ModelName())
	}
	if p.Pi() != want.Pi() {
		t.Errorf("frequencies: got %v, want %v", p.Pi(), want.Pi())
	}
	if p.IndelRate() != want.IndelRate() {
		t.Errorf("indel rate: got %.6f, want %.6f", p.IndelRate(), want.IndelRate())
	}
	if p.Shape() != want.Shape() {
		t.Errorf("shape: got %.6f, want %.6f", p.Shape(), want.Shape())
	}
	if p.RegionSize() != want.RegionSize() {
		t.Errorf("region size: got %d, want %d", p.RegionSize(), want.RegionSize())
	}
	if p.Invariant() != want.Invariant() {
		t.Errorf("invariant: got %.6f, want %.6f", p.Invariant(), want.Invariant())
	}
	if p.Scale() != want.Scale() {
		t.Errorf("scale: got %.6f, want %.6f", p.Scale(), want.Scale())
	}
}

func TestParamsModel(t *testing.T) {
	p := param.New("test")
	if err := p.SetModel("tn93"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.SetPi([4]float64{0.3, 0.2, 0.3, 0.2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.SetRates(2, 3, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m, err := p.Model()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pi := m.Pi()
	if pi != p.Pi() {
		t.Errorf("model frequencies: got %v, want %v", pi, p.Pi())
	}

	if err := p.SetIndels(0.2, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ev, err := p.Events(m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 4; i++ {
		if want := m.Rate(i) + 0.2; math.Abs(ev.Rate(i)-want) > 1e-9 {
			t.Errorf("base %d: total rate %.9f, want %.9f", i, ev.Rate(i), want)
		}
	}
}

func TestParamsErrors(t *testing.T) {
	p := param.New("test")
	if err := p.SetModel("not-a-model"); err == nil {
		t.Errorf("expecting error: unknown model")
	}
	if err := p.SetPi([4]float64{1, 1, 1, 1}); err == nil {
		t.Errorf("expecting error: frequencies do not sum to 1")
	}
	if err := p.SetRates(-1, 1, 1); err == nil {
		t.Errorf("expecting error: negative rate")
	}
	if err := p.SetIndels(0.1, 0); err == nil {
		t.Errorf("expecting error: invalid ratio")
	}
	if err := p.SetSiteVar(1, 0, 0); err == nil {
		t.Errorf("expecting error: invalid region size")
	}
	if err := p.SetScale(0); err == nil {
		t.Errorf("expecting error: invalid scale")
	}
}
