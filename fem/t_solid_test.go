// Copyright 2017 The OpenIFEM Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/shenchen0414/OpenIFEM/inp"
	"github.com/shenchen0414/OpenIFEM/msolid"
)

// testSolidSim returns input data for a small solid-only run
func testSolidSim(dirout string) *inp.Simulation {
	sim := &inp.Simulation{}
	sim.Data.DirOut = dirout
	sim.Data.Encoder = "gob"
	sim.Time.Dt = 0.01
	sim.Time.Tf = 1.0
	sim.LinSol.Rtol = 1e-12
	sim.LinSol.ItFactor = 50
	sim.LinSol.PrecInner = 30
	sim.Solid.E = []float64{100}
	sim.Solid.Nu = []float64{0.3}
	sim.Solid.Eta = []float64{0}
	sim.Solid.Rho = 2.0
	return sim
}

func TestSolid01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("solid01. free fall under gravity")

	sim := testSolidSim(tst.TempDir())
	sim.Gravity = []float64{0, -10}
	msh := inp.GenQuadMesh(1, 1, 2, 2)
	sol, err := NewSolid(sim, msh, StandAlone, NewComm(nil), false)
	if err != nil {
		tst.Errorf("NewSolid failed:\n%v", err)
		return
	}

	Δt := sim.Time.Dt
	if err = sol.SolveInitial(Δt); err != nil {
		tst.Errorf("SolveInitial failed:\n%v", err)
		return
	}
	for vid := range msh.Verts {
		chk.Float64(tst, io.Sf("a0 x (vert %d)", vid), 1e-12, sol.A[sol.Dof(vid, 0)], 0)
		chk.Float64(tst, io.Sf("a0 y (vert %d)", vid), 1e-12, sol.A[sol.Dof(vid, 1)], -10)
	}

	// a rigid translation produces no elastic forces, so the body
	// falls with the exact kinematics
	t := 0.0
	for n := 0; n < 20; n++ {
		t += Δt
		if err = sol.Advance(t, Δt); err != nil {
			tst.Errorf("Advance failed:\n%v", err)
			return
		}
	}
	for vid := range msh.Verts {
		chk.Float64(tst, io.Sf("v y (vert %d)", vid), 1e-8, sol.V[sol.Dof(vid, 1)], -10*t)
		chk.Float64(tst, io.Sf("u y (vert %d)", vid), 1e-8, sol.U[sol.Dof(vid, 1)], -5*t*t)
		chk.Float64(tst, io.Sf("u x (vert %d)", vid), 1e-8, sol.U[sol.Dof(vid, 0)], 0)
	}

	// kinetic energy of the whole body: 1/2 rho V v²
	ke := sol.KineticEnergy()
	chk.Float64(tst, "kinetic energy", 1e-6, ke, 0.5*2.0*1.0*(10*t)*(10*t))
	sol.Flush()
}

func TestSolid02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("solid02. stress recovery of a homogeneous strain state")

	sim := testSolidSim(tst.TempDir())
	msh := inp.GenQuadMesh(2, 1, 4, 2)
	sol, err := NewSolid(sim, msh, StandAlone, NewComm(nil), false)
	if err != nil {
		tst.Errorf("NewSolid failed:\n%v", err)
		return
	}

	// impose uniform uniaxial strain: ux = a x
	a := 0.01
	for _, v := range msh.Verts {
		sol.U[sol.Dof(v.Id, 0)] = a * v.C[0]
	}
	if err = sol.RecoverStress(); err != nil {
		tst.Errorf("RecoverStress failed:\n%v", err)
		return
	}

	mdl, _ := msolid.NewLinElast(100, 0.3, 2.0, 0)
	want := make([]float64, Nsig)
	mdl.Stress(want, []float64{a, 0, 0})
	for vid := range msh.Verts {
		chk.Float64(tst, io.Sf("sxx (vert %d)", vid), 1e-12, sol.Sig[0][vid], want[0])
		chk.Float64(tst, io.Sf("syy (vert %d)", vid), 1e-12, sol.Sig[1][vid], want[1])
		chk.Float64(tst, io.Sf("sxy (vert %d)", vid), 1e-12, sol.Sig[2][vid], want[2])
	}

	// the recovered field matches the raw field exactly, so the error
	// estimate vanishes everywhere
	η := sol.Estimate()
	for ci := range msh.Cells {
		if math.Abs(η[ci]) > 1e-20 {
			tst.Errorf("estimate of cell %d must vanish for a homogeneous state: %g\n", ci, η[ci])
			return
		}
	}

	// the per-cell mean matches the homogeneous state
	σc := sol.CellStress(0)
	chk.Float64(tst, "cell sxx", 1e-12, σc[0], want[0])
}

func TestSolid03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("solid03. essential boundary conditions")

	// fix the bottom edge (tag 10) in both directions
	sim := testSolidSim(tst.TempDir())
	sim.Solid.EbcTags = []int{10}
	sim.Solid.EbcFlag = []int{3}
	msh := inp.GenQuadMesh(1, 1, 2, 2)
	msh.TagBoundaryFaces(func(c []float64) int {
		if c[1] < 1e-12 {
			return 10
		}
		return 0
	})
	sol, err := NewSolid(sim, msh, StandAlone, NewComm(nil), false)
	if err != nil {
		tst.Errorf("NewSolid failed:\n%v", err)
		return
	}

	// three bottom vertices, two directions each
	chk.Ints(tst, "prescribed", []int{sol.Constraints().NumPrescribed()}, []int{6})
	for _, v := range msh.Verts {
		want := v.C[1] < 1e-12
		got := sol.Constraints().IsConstrained(sol.Dof(v.Id, 1))
		if got != want {
			tst.Errorf("wrong constraint state at vertex %d\n", v.Id)
			return
		}
	}

	// a point constraint away from any vertex is fatal
	sim2 := testSolidSim(tst.TempDir())
	sim2.Solid.PtConsC = [][]float64{{9, 9}}
	sim2.Solid.PtConsD = []int{3}
	if _, err := NewSolid(sim2, inp.GenQuadMesh(1, 1, 2, 2), StandAlone, NewComm(nil), false); err == nil {
		tst.Errorf("missing constrained point must be fatal\n")
	}
}

func TestSolid04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("solid04. boundary pressure pulls the body inward")

	// uniform pressure on the right edge of a bar fixed on the left
	sim := testSolidSim(tst.TempDir())
	sim.Solid.EbcTags = []int{10}
	sim.Solid.EbcFlag = []int{3}
	sim.Solid.NbcType = "pressure"
	sim.Solid.NbcTags = []int{20}
	sim.Solid.NbcVals = [][]float64{{1.0}}
	msh := inp.GenQuadMesh(2, 1, 4, 2)
	msh.TagBoundaryFaces(func(c []float64) int {
		switch {
		case c[0] < 1e-12:
			return 10
		case c[0] > 2-1e-12:
			return 20
		}
		return 0
	})
	sol, err := NewSolid(sim, msh, StandAlone, NewComm(nil), false)
	if err != nil {
		tst.Errorf("NewSolid failed:\n%v", err)
		return
	}

	Δt := sim.Time.Dt
	if err = sol.SolveInitial(Δt); err != nil {
		tst.Errorf("SolveInitial failed:\n%v", err)
		return
	}
	t := 0.0
	for n := 0; n < 10; n++ {
		t += Δt
		if err = sol.Advance(t, Δt); err != nil {
			tst.Errorf("Advance failed:\n%v", err)
			return
		}
	}

	// compression: the loaded edge moves towards the support
	moved := false
	for _, v := range msh.Verts {
		if v.C[0] > 2-1e-12 {
			ux := sol.U[sol.Dof(v.Id, 0)]
			if ux >= 0 {
				tst.Errorf("vertex %d on the loaded edge must move in -x: u = %g\n", v.Id, ux)
				return
			}
			moved = true
		}
		// the support does not move
		if v.C[0] < 1e-12 {
			chk.Float64(tst, io.Sf("support ux (vert %d)", v.Id), 1e-15, sol.U[sol.Dof(v.Id, 0)], 0)
		}
	}
	if !moved {
		tst.Errorf("no vertex found on the loaded edge\n")
	}
}
