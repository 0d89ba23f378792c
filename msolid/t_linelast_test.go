// Copyright 2017 The OpenIFEM Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package msolid

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func TestLinElast01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("linelast01. Lamé parameters and uniaxial strain")

	o, err := NewLinElast(1e6, 0.3, 1000, 0)
	if err != nil {
		tst.Errorf("NewLinElast failed:\n%v", err)
		return
	}
	chk.Float64(tst, "lam", 1e-8, o.Lam, 1e6*0.3/(1.3*0.4))
	chk.Float64(tst, "mu", 1e-8, o.Mu, 1e6/2.6)

	// uniaxial strain
	σ := make([]float64, 3)
	o.Stress(σ, []float64{1e-3, 0, 0})
	chk.Float64(tst, "sx", 1e-8, σ[0], (o.Lam+2.0*o.Mu)*1e-3)
	chk.Float64(tst, "sy", 1e-8, σ[1], o.Lam*1e-3)
	chk.Float64(tst, "sxy", 1e-15, σ[2], 0)

	// pure shear
	o.Stress(σ, []float64{0, 0, 2e-3})
	chk.Float64(tst, "sxy", 1e-8, σ[2], o.Mu*2e-3)

	// energy of uniaxial strain
	w := o.StrainEnergy([]float64{1e-3, 0, 0})
	chk.Float64(tst, "W", 1e-12, w, 0.5*(o.Lam+2.0*o.Mu)*1e-6)
}

func TestLinElast02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("linelast02. invalid parameters")

	if _, err := NewLinElast(-1, 0.3, 1000, 0); err == nil {
		tst.Errorf("negative E must be rejected\n")
	}
	if _, err := NewLinElast(1e6, 0.5, 1000, 0); err == nil {
		tst.Errorf("nu == 0.5 must be rejected\n")
	}
	if _, err := NewLinElast(1e6, 0.3, 0, 0); err == nil {
		tst.Errorf("zero density must be rejected\n")
	}
}
