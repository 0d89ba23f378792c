// Copyright 2017 The OpenIFEM Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/sirupsen/logrus"

	"github.com/shenchen0414/OpenIFEM/inp"
)

// FSI sequences the coupled time loop: indicator prediction, solid
// solve, projection to the shared mesh, fluid solve, traction
// extraction, diagnostics, and the conditional output, refinement and
// checkpoint events
type FSI struct {
	sim     *inp.Simulation
	comm    *Comm
	mode    RunMode
	verbose bool

	tm     *Time
	solid  *Solid
	fluid  *Fluid
	forest *Forest
	cp     *Checkpoint
	sable  *Sable
	ssend  []ContactMap // outgoing nodal velocities per contact map
	srecv  []ContactMap // incoming per-cell indicator/stress/acceleration

	log *logrus.Entry
}

// NewFSI builds the simulation from the input data: meshes, solvers,
// clock, refinement forest and checkpoint subsystem
func NewFSI(sim *inp.Simulation, comm *Comm, verbose bool) (o *FSI, err error) {
	o = &FSI{sim: sim, comm: comm, verbose: verbose}
	o.log = NewLogger(comm, "fsi", verbose)
	o.mode, err = ModeFromString(sim.Data.Mode)
	if err != nil {
		return nil, err
	}
	o.tm, err = NewTime(sim.Time.Dt, sim.Time.Tf, sim.Time.DtOut, sim.Time.DtRefine, sim.Time.DtSave)
	if err != nil {
		return nil, err
	}

	needSolid := o.mode == SharedMesh || (o.mode == StandAlone && sim.Solid.MshFile != "")
	needFluid := o.mode != StandAlone || sim.Fluid.MshFile != ""

	if needSolid {
		var smsh *inp.Mesh
		smsh, err = inp.ReadMsh(sim.Solid.MshFile)
		if err != nil {
			return nil, err
		}
		o.forest = NewForest(smsh)
		o.solid, err = NewSolid(sim, smsh, o.mode, comm, verbose)
		if err != nil {
			return nil, err
		}
		o.cp = NewCheckpoint(sim.Data.DirOut, sim.Data.Encoder, comm)
	}
	if needFluid {
		var fmsh *inp.Mesh
		fmsh, err = inp.ReadMsh(sim.Fluid.MshFile)
		if err != nil {
			return nil, err
		}
		o.fluid, err = NewFluid(sim, fmsh, o.mode, comm, verbose)
		if err != nil {
			return nil, err
		}
	}
	if o.mode == SharedMesh && (o.solid == nil || o.fluid == nil) {
		return nil, chk.Err("coupled runs need both a solid and a fluid mesh")
	}
	if o.mode == ExternalSolver {
		if o.fluid == nil {
			return nil, chk.Err("external-solver runs need a fluid mesh")
		}
		o.sable = NewSable(comm, o.tm, verbose)
		o.ssend = o.sable.Maps(2 * len(o.fluid.msh.Verts))
		o.srecv = o.sable.Maps(RecRate * len(o.fluid.msh.Cells))
	}
	return
}

// Run executes the simulation until the final time, honoring restart,
// output, refinement and checkpoint events
func (o *FSI) Run() (err error) {

	// restart from the newest checkpoint when one exists
	if o.solid != nil {
		step, found, lerr := o.cp.Load(o.solid.U, o.solid.V, o.solid.A)
		if lerr != nil {
			return lerr
		}
		if found {
			copy(o.solid.Uo, o.solid.U)
			copy(o.solid.Vo, o.solid.V)
			copy(o.solid.Ao, o.solid.A)
			for o.tm.Step() < step {
				o.tm.Increment()
			}
			o.log.WithField("step", step).Info("restarted from checkpoint")
		}
	}

	// initial state
	if o.mode == SharedMesh {
		o.predictIndicator()
		o.setAddedMass()
	}
	if o.solid != nil && o.tm.Step() == 0 {
		if err = o.solid.SolveInitial(o.tm.Dt()); err != nil {
			return
		}
	}

	for !o.tm.End() {

		// the external pair agrees on liveness and on the step size
		// before the clock advances
		if o.mode == ExternalSolver {
			nn, ne := len(o.fluid.msh.Verts), len(o.fluid.msh.Cells)
			o.sable.SyncCounts(nn, ne)
			if !o.sable.Alive(true) {
				o.log.Info("external solver reported inactive; stopping")
				o.flush()
				return nil
			}
			o.sable.SyncDt(o.tm.Dt())
		}

		o.tm.Increment()
		t := o.tm.Current()

		switch o.mode {
		case StandAlone:
			if o.solid != nil {
				if err = o.solid.Advance(t, o.tm.Dt()); err != nil {
					return
				}
			}
			if o.fluid != nil {
				if err = o.fluid.Solve(t, o.tm.Dt()); err != nil {
					return
				}
			}

		case SharedMesh:
			o.predictIndicator()
			o.interpInterfaceVelocity()
			if err = o.solid.Advance(t, o.tm.Dt()); err != nil {
				return
			}
			o.transferToFluid()
			if err = o.fluid.Solve(t, o.tm.Dt()); err != nil {
				return
			}
			o.transferToSolid()

		case ExternalSolver:
			o.exchangeSableFields()
			if err = o.fluid.Solve(t, o.tm.Dt()); err != nil {
				return
			}
		}

		if o.tm.TimeToOutput() {
			o.log.WithFields(logrus.Fields{"step": o.tm.Step(), "t": t}).Info("step done")
			o.flush()
		}
		if o.solid != nil && o.tm.TimeToRefine() {
			if err = o.refineSolid(); err != nil {
				return
			}
		}
		if o.solid != nil && o.tm.TimeToSave() {
			if err = o.cp.Save(o.tm.Step(), o.solid.U, o.solid.V, o.solid.A); err != nil {
				return
			}
			o.log.WithField("step", o.tm.Step()).Info("checkpoint saved")
		}
	}
	o.flush()
	return
}

// exchangeSableFields runs the per-step field transfer with the
// external side: the fluid's nodal velocities go out, and per-cell
// indicator, stress and acceleration records come back into the
// interface store. Unpaired processors skip the transfer.
func (o *FSI) exchangeSableFields() {
	if len(o.ssend) == 0 {
		return
	}
	for i := range o.ssend {
		buf := o.ssend[i].Data
		for vid := range o.fluid.msh.Verts {
			buf[2*vid] = o.fluid.U[o.fluid.vdof(vid, 0)]
			buf[2*vid+1] = o.fluid.U[o.fluid.vdof(vid, 1)]
		}
	}
	o.sable.Exchange(o.ssend, o.srecv)
	for i := range o.srecv {
		buf := o.srecv[i].Data
		for ci := range o.fluid.msh.Cells {
			rec := o.fluid.Store.Get(ci)
			rec.Ind = buf[RecRate*ci]
			copy(rec.Stress, buf[RecRate*ci+1:RecRate*ci+4])
			rec.Acc[0] = buf[RecRate*ci+4]
			rec.Acc[1] = buf[RecRate*ci+5]
		}
	}
}

// flush saves every pending report
func (o *FSI) flush() {
	if o.solid != nil {
		o.solid.Flush()
	}
	if o.fluid != nil {
		o.fluid.Flush()
	}
}

// solidOffset returns the displacement of a solid vertex
func (o *FSI) solidOffset(vid int) []float64 {
	return []float64{
		o.solid.U[o.solid.Dof(vid, 0)],
		o.solid.U[o.solid.Dof(vid, 1)],
	}
}

// predictIndicator re-derives the indicator of every fluid cell from
// the solid's displaced extent: a cell whose centre lies inside the
// deformed solid is solid-indicated. The arena is regenerated
// wholesale so no stale record survives.
func (o *FSI) predictIndicator() {
	loc := NewLocator(o.solid.Mesh(), o.solidOffset)
	o.fluid.Store.Rebuild()
	for _, c := range o.fluid.msh.Cells {
		centre := o.fluid.msh.CellCentre(c.Id)
		rec := o.fluid.Store.Get(c.Id)
		if loc.Contains(centre) {
			rec.Ind = 1
		}
	}
}

// setAddedMass augments the interface inertia of the solid: boundary
// vertices receive the penalty-scaled fluid share of their nodal mass
func (o *FSI) setAddedMass() {
	o.solid.AddedMass.Fill(0)
	θ := o.sim.Fluid.Theta
	ρf := o.sim.Fluid.Rho
	ρs := o.sim.Solid.Rho
	for _, fr := range o.solid.BoundaryFaces() {
		c := o.solid.Mesh().Cells[fr.Cell]
		for _, lv := range o.solid.Shape().FaceLocalVerts[fr.Face] {
			vid := c.Verts[lv]
			for i := 0; i < 2; i++ {
				I := o.solid.Dof(vid, i)
				o.solid.AddedMass[I] = θ * ρf / ρs * o.solid.Mass[I]
			}
		}
	}
}

// interpInterfaceVelocity samples the fluid velocity at the displaced
// solid vertices for the velocity-difference penalty
func (o *FSI) interpInterfaceVelocity() {
	loc := NewLocator(o.fluid.msh, nil)
	r := make([]float64, 3)
	o.solid.Vfsi.Fill(0)
	for _, v := range o.solid.Mesh().Verts {
		y := []float64{
			v.C[0] + o.solid.U[o.solid.Dof(v.Id, 0)],
			v.C[1] + o.solid.U[o.solid.Dof(v.Id, 1)],
		}
		ci := loc.Locate(r, y)
		if ci < 0 {
			continue
		}
		for i := 0; i < 2; i++ {
			comp := i
			o.solid.Vfsi[o.solid.Dof(v.Id, i)] = loc.Interp(ci, r, func(vid int) float64 {
				return o.fluid.U[o.fluid.Vdof(vid, comp)]
			})
		}
	}
}

// transferToFluid projects the solid stress and acceleration onto the
// solid-indicated cells of the shared mesh by point location at the
// cell centres
func (o *FSI) transferToFluid() {
	loc := NewLocator(o.solid.Mesh(), o.solidOffset)
	r := make([]float64, 3)
	for _, c := range o.fluid.msh.Cells {
		rec := o.fluid.Store.Get(c.Id)
		if rec.Ind < 0.5 {
			continue
		}
		centre := o.fluid.msh.CellCentre(c.Id)
		sc := loc.Locate(r, centre)
		if sc < 0 {
			rec.Ind = 0
			continue
		}
		copy(rec.Stress, o.solid.CellStress(sc))
		copy(rec.Acc, o.solid.CellAcc(sc))
	}
}

// transferToSolid extracts the fluid traction sigma.n at the displaced
// centres of the solid boundary faces and writes it into the solid's
// interface records
func (o *FSI) transferToSolid() {
	loc := NewLocator(o.fluid.msh, nil)
	r := make([]float64, 3)
	μ := o.sim.Fluid.Mu
	for _, fr := range o.solid.BoundaryFaces() {
		c := o.solid.Mesh().Cells[fr.Cell]
		lvs := o.solid.Shape().FaceLocalVerts[fr.Face]
		a := o.displacedVert(c.Verts[lvs[0]])
		b := o.displacedVert(c.Verts[lvs[1]])
		centre := []float64{0.5 * (a[0] + b[0]), 0.5 * (a[1] + b[1])}

		// outward normal of the displaced face
		nx := b[1] - a[1]
		ny := a[0] - b[0]
		ln := math.Hypot(nx, ny)
		if ln > 0 {
			nx /= ln
			ny /= ln
		}

		rec := o.solid.Store.Get(fr.Cell)
		ci := loc.Locate(r, centre)
		if ci < 0 {
			rec.Traction[fr.Face][0] = 0
			rec.Traction[fr.Face][1] = 0
			continue
		}
		σ := o.fluidStressAt(ci, r, μ)
		rec.Traction[fr.Face][0] = σ[0]*nx + σ[2]*ny
		rec.Traction[fr.Face][1] = σ[2]*nx + σ[1]*ny
	}
}

// displacedVert returns the deformed position of a solid vertex
func (o *FSI) displacedVert(vid int) []float64 {
	v := o.solid.Mesh().Verts[vid]
	return []float64{
		v.C[0] + o.solid.U[o.solid.Dof(vid, 0)],
		v.C[1] + o.solid.U[o.solid.Dof(vid, 1)],
	}
}

// fluidStressAt evaluates sigma = -p I + 2 mu eps(u) at natural
// coordinates r of a fluid cell; components {sxx, syy, sxy}
func (o *FSI) fluidStressAt(cellId int, r []float64, μ float64) (σ []float64) {
	σ = make([]float64, Nsig)
	c := o.fluid.msh.Cells[cellId]
	x := o.fluid.msh.ExtractCellCoords(cellId)
	xc := cornerCoords(x)
	o.fluid.uShape.CalcAtIp(x, r, true)
	o.fluid.pShape.CalcAtIp(xc, r, true)
	var e00, e11, e01, pr float64
	for m, vid := range c.Verts {
		u0 := o.fluid.U[o.fluid.Vdof(vid, 0)]
		u1 := o.fluid.U[o.fluid.Vdof(vid, 1)]
		e00 += o.fluid.uShape.G[m][0] * u0
		e11 += o.fluid.uShape.G[m][1] * u1
		e01 += 0.5 * (o.fluid.uShape.G[m][1]*u0 + o.fluid.uShape.G[m][0]*u1)
	}
	for a, vid := range c.Verts[:4] {
		pr += o.fluid.pShape.S[a] * o.fluid.U[o.fluid.pdofOf(vid)]
	}
	σ[0] = -pr + 2*μ*e00
	σ[1] = -pr + 2*μ*e11
	σ[2] = 2 * μ * e01
	return
}

// refineSolid adapts the solid mesh: estimate, mark, refine/coarsen
// with 2:1 balance, rebuild the solver, transfer the three history
// vectors, and re-apply the constraints to the transferred state
func (o *FSI) refineSolid() (err error) {
	η := o.solid.Estimate()
	if !o.forest.Adapt(η) {
		return nil
	}
	oldMsh := o.solid.Mesh()
	oldU, oldV, oldA := o.solid.U, o.solid.V, o.solid.A
	oldDof := o.solid.Dof
	reports := o.solid.repEnergy

	newMsh := o.forest.BuildMesh()
	if err = newMsh.CheckIds(); err != nil {
		return
	}
	newSolid, err := NewSolid(o.sim, newMsh, o.mode, o.comm, o.verbose)
	if err != nil {
		return chk.Err("cannot rebuild the solid solver after refinement:\n%v", err)
	}
	newSolid.repEnergy = reports // keep appending to the same series

	// hanging vertices: the interpolation constraint u = (ua+ub)/2
	for _, hv := range o.forest.HangingVertices(newMsh) {
		for i := 0; i < 2; i++ {
			newSolid.cons.AddLinear(newSolid.Dof(hv.Slave, i),
				[]int{newSolid.Dof(hv.Masters[0], i), newSolid.Dof(hv.Masters[1], i)},
				[]float64{0.5, 0.5})
		}
	}

	// transfer displacement, velocity and acceleration through the
	// mesh change by interpolation on the old mesh
	loc := NewLocator(oldMsh, nil)
	r := make([]float64, 3)
	for _, v := range newMsh.Verts {
		ci := loc.Locate(r, v.C[:2])
		if ci < 0 {
			continue
		}
		for i := 0; i < 2; i++ {
			comp := i
			newSolid.U[newSolid.Dof(v.Id, i)] = loc.Interp(ci, r, func(vid int) float64 { return oldU[oldDof(vid, comp)] })
			newSolid.V[newSolid.Dof(v.Id, i)] = loc.Interp(ci, r, func(vid int) float64 { return oldV[oldDof(vid, comp)] })
			newSolid.A[newSolid.Dof(v.Id, i)] = loc.Interp(ci, r, func(vid int) float64 { return oldA[oldDof(vid, comp)] })
		}
	}
	newSolid.cons.Distribute(newSolid.U)
	newSolid.cons.Distribute(newSolid.V)
	newSolid.cons.Distribute(newSolid.A)
	copy(newSolid.Uo, newSolid.U)
	copy(newSolid.Vo, newSolid.V)
	copy(newSolid.Ao, newSolid.A)
	if err = newSolid.RecoverStress(); err != nil {
		return
	}

	o.solid = newSolid
	if o.mode == SharedMesh {
		o.setAddedMass()
		o.fluid.Store.Rebuild()
		o.predictIndicator()
	}
	o.log.WithFields(logrus.Fields{
		"cells": len(newMsh.Cells), "verts": len(newMsh.Verts),
	}).Info("solid mesh adapted")
	return
}

// TimeLoop returns the clock, mainly for tests and tools
func (o *FSI) TimeLoop() *Time { return o.tm }

// SolidSolver returns the solid integrator (nil when absent)
func (o *FSI) SolidSolver() *Solid { return o.solid }

// FluidSolver returns the fluid solver (nil when absent)
func (o *FSI) FluidSolver() *Fluid { return o.fluid }
