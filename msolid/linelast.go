// Copyright 2017 The OpenIFEM Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package msolid implements constitutive models for solids
package msolid

import "github.com/cpmech/gosl/chk"

// LinElast implements linear elasticity for plane strain problems
type LinElast struct {

	// parameters
	E   float64 // Young's modulus
	Nu  float64 // Poisson's coefficient
	Rho float64 // density
	Eta float64 // mass proportional damping coefficient

	// derived
	Lam float64 // Lamé's first parameter λ
	Mu  float64 // shear modulus μ
}

// NewLinElast returns a new linear elastic model after validating parameters
func NewLinElast(e, ν, ρ, η float64) (o *LinElast, err error) {
	if e <= 0 {
		return nil, chk.Err("Young's modulus must be positive. E = %g is invalid", e)
	}
	if ν < 0 || ν >= 0.5 {
		return nil, chk.Err("Poisson's coefficient must be in [0, 0.5). nu = %g is invalid", ν)
	}
	if ρ <= 0 {
		return nil, chk.Err("density must be positive. rho = %g is invalid", ρ)
	}
	o = &LinElast{E: e, Nu: ν, Rho: ρ, Eta: η}
	o.Lam = e * ν / ((1.0 + ν) * (1.0 - 2.0*ν))
	o.Mu = e / (2.0 * (1.0 + ν))
	return
}

// Stress computes the Cauchy stress from the small strain tensor.
// Plane strain storage: ε = {εxx, εyy, γxy} and σ = {σxx, σyy, σxy}
func (o *LinElast) Stress(σ, ε []float64) {
	trε := ε[0] + ε[1]
	σ[0] = o.Lam*trε + 2.0*o.Mu*ε[0]
	σ[1] = o.Lam*trε + 2.0*o.Mu*ε[1]
	σ[2] = o.Mu * ε[2]
}

// StrainEnergy computes the strain energy density for the given strain
func (o *LinElast) StrainEnergy(ε []float64) float64 {
	σ := make([]float64, 3)
	o.Stress(σ, ε)
	return 0.5 * (σ[0]*ε[0] + σ[1]*ε[1] + σ[2]*ε[2])
}
