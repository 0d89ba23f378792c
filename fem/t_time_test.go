// Copyright 2017 The OpenIFEM Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func TestTime01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("time01. clock and event predicates")

	tm, err := NewTime(0.1, 1.0, 2, 0, 5)
	if err != nil {
		tst.Errorf("NewTime failed:\n%v", err)
		return
	}

	nout, nsav, nref := 0, 0, 0
	for !tm.End() {
		tm.Increment()
		if tm.TimeToOutput() {
			nout++
		}
		if tm.TimeToSave() {
			nsav++
		}
		if tm.TimeToRefine() {
			nref++
		}
	}
	chk.Ints(tst, "steps", []int{tm.Step()}, []int{10})
	chk.Float64(tst, "t final", 1e-12, tm.Current(), 1.0)
	chk.Ints(tst, "outputs", []int{nout}, []int{5})
	chk.Ints(tst, "saves", []int{nsav}, []int{2})
	chk.Ints(tst, "refines (disabled)", []int{nref}, []int{0})
}

func TestTime02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("time02. step size changes")

	tm, err := NewTime(0.1, 1.0, 0, 0, 0)
	if err != nil {
		tst.Errorf("NewTime failed:\n%v", err)
		return
	}
	tm.Increment()
	tm.SetDt(0.4)
	tm.Increment()
	chk.Float64(tst, "t", 1e-15, tm.Current(), 0.5)
	chk.Ints(tst, "step", []int{tm.Step()}, []int{2})

	// invalid input
	if _, err := NewTime(0, 1, 0, 0, 0); err == nil {
		tst.Errorf("zero step size must be rejected\n")
	}
	if _, err := NewTime(0.1, 0, 0, 0, 0); err == nil {
		tst.Errorf("zero final time must be rejected\n")
	}
}

func TestDynCoefs01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("dyncoefs01. integration parameters")

	var dc DynCoefs
	if err := dc.Init(0); err != nil {
		tst.Errorf("Init failed:\n%v", err)
		return
	}
	chk.Float64(tst, "γ (α=0)", 1e-15, dc.Gamma(), 0.5)
	chk.Float64(tst, "β (α=0)", 1e-15, dc.Beta(), 0.25)

	if err := dc.Init(-0.1); err != nil {
		tst.Errorf("Init failed:\n%v", err)
		return
	}
	chk.Float64(tst, "γ (α=-0.1)", 1e-15, dc.Gamma(), 0.6)
	chk.Float64(tst, "β (α=-0.1)", 1e-15, dc.Beta(), 0.3025)

	if err := dc.Init(0.6); err == nil {
		tst.Errorf("α > 1/2 must be rejected\n")
	}
}

func TestDynCoefs02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("dyncoefs02. predictor/corrector under constant acceleration")

	// with a constant acceleration the scheme reproduces the exact
	// kinematics for any admissible parameters
	var dc DynCoefs
	if err := dc.Init(-0.05); err != nil {
		tst.Errorf("Init failed:\n%v", err)
		return
	}
	Δt, g := 0.01, -9.81
	u, v, a := 0.0, 0.0, g
	t := 0.0
	up := make([]float64, 1)
	vp := make([]float64, 1)
	uv := []float64{u}
	vv := []float64{v}
	av := []float64{a}
	for n := 0; n < 100; n++ {
		dc.Predict(up, vp, uv, vv, av, Δt)
		av[0] = g // the solve would return this for a free mass
		dc.Correct(uv, vv, up, vp, av, Δt)
		t += Δt
	}
	chk.Float64(tst, "u", 1e-12, uv[0], 0.5*g*t*t)
	chk.Float64(tst, "v", 1e-12, vv[0], g*t)
}

func TestMode01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("mode01. run mode parsing")

	for _, tc := range []struct {
		str  string
		mode RunMode
	}{
		{"", StandAlone},
		{"standalone", StandAlone},
		{"fsi", SharedMesh},
		{"external", ExternalSolver},
	} {
		m, err := ModeFromString(tc.str)
		if err != nil {
			tst.Errorf("ModeFromString(%q) failed:\n%v", tc.str, err)
			return
		}
		if m != tc.mode {
			tst.Errorf("ModeFromString(%q) = %v, want %v\n", tc.str, m, tc.mode)
		}
	}
	if _, err := ModeFromString("bogus"); err == nil {
		tst.Errorf("unknown mode must be rejected\n")
	}
}
