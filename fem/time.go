// Copyright 2017 The OpenIFEM Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import "github.com/cpmech/gosl/chk"

// endTol is the tolerance for detecting the end of the simulation
const endTol = 1e-12

// Time owns the simulation clock: current time, step counter, step size
// and the output, refinement and checkpoint intervals (in steps)
type Time struct {
	current float64 // current time
	step    int     // step counter
	Δt      float64 // step size
	tf      float64 // final time
	nOut    int     // steps between outputs; zero or negative disables
	nRef    int     // steps between mesh refinements; zero or negative disables
	nSav    int     // steps between checkpoints; zero or negative disables
}

// NewTime returns a clock starting at zero
func NewTime(Δt, tf float64, nOut, nRef, nSav int) (o *Time, err error) {
	if Δt <= 0 {
		return nil, chk.Err("step size must be positive. dt = %g is invalid", Δt)
	}
	if tf <= 0 {
		return nil, chk.Err("final time must be positive. tf = %g is invalid", tf)
	}
	o = &Time{Δt: Δt, tf: tf, nOut: nOut, nRef: nRef, nSav: nSav}
	return
}

// Increment advances the clock by one step
func (o *Time) Increment() {
	o.current += o.Δt
	o.step++
}

// Current returns the current time
func (o *Time) Current() float64 { return o.current }

// Step returns the step counter
func (o *Time) Step() int { return o.step }

// Dt returns the step size
func (o *Time) Dt() float64 { return o.Δt }

// Tf returns the final time
func (o *Time) Tf() float64 { return o.tf }

// SetDt overrides the step size. Used when the step size is dictated by
// an external solver.
func (o *Time) SetDt(Δt float64) {
	if Δt > 0 {
		o.Δt = Δt
	}
}

// End reports whether the final time has been reached
func (o *Time) End() bool {
	return o.current > o.tf-endTol
}

// every reports whether the step counter hits a multiple of n
func (o *Time) every(n int) bool {
	if n <= 0 {
		return false
	}
	return o.step%n == 0
}

// TimeToOutput reports whether results should be written at this step
func (o *Time) TimeToOutput() bool { return o.every(o.nOut) }

// TimeToRefine reports whether the mesh should be adapted at this step
func (o *Time) TimeToRefine() bool { return o.every(o.nRef) }

// TimeToSave reports whether a checkpoint should be written at this step
func (o *Time) TimeToSave() bool { return o.every(o.nSav) }
