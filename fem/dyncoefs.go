// Copyright 2017 The OpenIFEM Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import "github.com/cpmech/gosl/chk"

// DynCoefs holds the Newmark integration constants derived from the
// single damping parameter α. α = 0 recovers the undamped trapezoidal
// scheme; α < 0 damps spurious high frequency modes.
type DynCoefs struct {
	α float64 // damping parameter
	γ float64 // velocity weight
	β float64 // displacement weight
}

// Init computes γ and β from the damping parameter
func (o *DynCoefs) Init(α float64) error {
	if α > 0.5 {
		return chk.Err("damping parameter must not exceed 0.5. alpha = %g is invalid", α)
	}
	o.α = α
	o.γ = 0.5 - α
	o.β = (1.0 - α) * (1.0 - α) / 4.0
	return nil
}

// Gamma returns γ
func (o *DynCoefs) Gamma() float64 { return o.γ }

// Beta returns β
func (o *DynCoefs) Beta() float64 { return o.β }

// Predict computes the Newmark predictors from the previous state:
//  up = u + Δt v + Δt² (1/2 − β) a
//  vp = v + Δt (1 − γ) a
func (o *DynCoefs) Predict(up, vp, u, v, a []float64, Δt float64) {
	for i := range u {
		up[i] = u[i] + Δt*v[i] + Δt*Δt*(0.5-o.β)*a[i]
		vp[i] = v[i] + Δt*(1.0-o.γ)*a[i]
	}
}

// Correct combines the predictors with the new acceleration:
//  u = up + β Δt² a
//  v = vp + γ Δt a
func (o *DynCoefs) Correct(u, v, up, vp, a []float64, Δt float64) {
	for i := range u {
		u[i] = up[i] + o.β*Δt*Δt*a[i]
		v[i] = vp[i] + o.γ*Δt*a[i]
	}
}
