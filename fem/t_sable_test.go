// Copyright 2017 The OpenIFEM Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/shenchen0414/OpenIFEM/inp"
)

func TestSable01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("sable01. liveness, counts and step synchronization")

	tm, _ := NewTime(0.1, 1.0, 0, 0, 0)
	sb := NewSable(NewComm(nil), tm, false)

	sb.SyncCounts(120, 44)
	chk.Ints(tst, "nodes", []int{sb.NNodes}, []int{120})
	chk.Ints(tst, "elems", []int{sb.NElems}, []int{44})

	if !sb.Alive(true) {
		tst.Errorf("active side must keep the pair alive\n")
	}
	if sb.Alive(false) {
		tst.Errorf("an inactive side must shut the pair down\n")
	}

	Δt := sb.SyncDt(0.05)
	chk.Float64(tst, "synced dt", 1e-15, Δt, 0.05)
	chk.Float64(tst, "clock dt", 1e-15, tm.Dt(), 0.05)

	// the next increment must advance the clock by the synced size
	tm.Increment()
	chk.Float64(tst, "synced step", 1e-15, tm.Current(), 0.05)
}

func TestSable02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("sable02. structured interior classification")

	// a 3D block sheds its one-layer shell
	nodes, elems := InteriorCounts(3, []int{5, 4, 3}, []int{6, 5, 4})
	chk.Ints(tst, "3d nodes", []int{nodes}, []int{3 * 2 * 1})
	chk.Ints(tst, "3d elems", []int{elems}, []int{4 * 3 * 2})

	// 2D external meshes carry no ghost shell
	nodes, elems = InteriorCounts(2, []int{5, 3}, []int{4, 2})
	chk.Ints(tst, "2d nodes", []int{nodes}, []int{15})
	chk.Ints(tst, "2d elems", []int{elems}, []int{8})

	// the classification must match the local mesh exactly
	tm, _ := NewTime(0.1, 1.0, 0, 0, 0)
	sb := NewSable(NewComm(nil), tm, false)
	msh := inp.GenQuadMesh(2, 1, 4, 2)
	if err := sb.ValidateGhosts(msh, []int{5, 3}, []int{4, 2}); err != nil {
		tst.Errorf("valid layout rejected:\n%v", err)
		return
	}
	if err := sb.ValidateGhosts(msh, []int{6, 3}, []int{5, 2}); err == nil {
		tst.Errorf("mismatched layout must be rejected\n")
	}
}

func TestSable03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("sable03. external-solver run with the matched exchange")

	tm, _ := NewTime(0.1, 1.0, 0, 0, 0)
	sb := NewSable(NewComm(nil), tm, false)

	// a lone processor has no peer; the exchange degenerates to a no-op
	maps := sb.Maps(10)
	chk.Ints(tst, "serial maps", []int{len(maps)}, []int{0})
	sb.Exchange(nil, nil)

	// a full external-mode run steps the fluid to the final time
	dir := tst.TempDir()
	sim := &inp.Simulation{}
	sim.Data.DirOut = dir
	sim.Data.Mode = "external"
	sim.Time.Dt = 0.05
	sim.Time.Tf = 0.1
	sim.LinSol.Rtol = 1e-8
	sim.LinSol.ItFactor = 500
	sim.LinSol.PrecInner = 30
	sim.Fluid.MshFile = writeJSON(tst, dir, "fluid.msh", inp.GenQuad8Mesh(2, 1, 4, 2))
	sim.Fluid.Mu = 1
	sim.Fluid.Rho = 1
	sim.Fluid.Theta = 0.5
	sim.Fluid.Uin = 1
	sim.Fluid.RefPoint = []float64{2, 1}
	sim.Solid.Rho = 4

	run, err := NewFSI(sim, NewComm(nil), false)
	if err != nil {
		tst.Errorf("NewFSI failed:\n%v", err)
		return
	}
	if err = run.Run(); err != nil {
		tst.Errorf("Run failed:\n%v", err)
		return
	}
	chk.Ints(tst, "steps", []int{run.TimeLoop().Step()}, []int{2})

	// without a peer the received records stay fluid
	for _, c := range run.FluidSolver().Mesh().Cells {
		if run.FluidSolver().Store.Get(c.Id).Ind != 0 {
			tst.Errorf("cell %d must stay a fluid cell without a peer\n", c.Id)
			return
		}
	}
}

func TestCellStore01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("cellstore01. record arena")

	st := NewCellStore(2, 4)
	r := st.Get(5)
	chk.Float64(tst, "fresh indicator", 1e-15, r.Ind, 0)
	chk.Ints(tst, "faces", []int{len(r.Traction)}, []int{4})
	chk.Ints(tst, "stress comps", []int{len(r.Stress)}, []int{Nsig})

	r.Ind = 1
	r.Traction[2][1] = -3
	again := st.Get(5)
	chk.Float64(tst, "persisted indicator", 1e-15, again.Ind, 1)
	chk.Float64(tst, "persisted traction", 1e-15, again.Traction[2][1], -3)
	chk.Ints(tst, "len", []int{st.Len()}, []int{1})

	// after a remesh nothing survives
	st.Rebuild()
	chk.Ints(tst, "len after rebuild", []int{st.Len()}, []int{0})
	chk.Float64(tst, "fresh again", 1e-15, st.Get(5).Ind, 0)
}
