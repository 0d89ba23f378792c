// Copyright 2017 The OpenIFEM Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
	"github.com/sirupsen/logrus"

	"github.com/shenchen0414/OpenIFEM/inp"
	"github.com/shenchen0414/OpenIFEM/out"
	"github.com/shenchen0414/OpenIFEM/part"
	"github.com/shenchen0414/OpenIFEM/shp"
)

// boundary tags assigned by coordinates when the mesh carries none
const (
	TagInlet  = 1
	TagOutlet = 2
	TagWall   = 3
)

// Fluid solves the indicator-blended velocity/pressure system on the
// shared Eulerian mesh. Velocity uses the quadratic serendipity space,
// pressure the bilinear corner subset; the saddle-point system is
// solved by block-preconditioned minimum residuals.
type Fluid struct {

	// input
	sim  *inp.Simulation
	msh  *inp.Mesh
	mode RunMode
	comm *Comm

	// partition and constraints
	lay  *part.Layout
	dofs *part.IndexSet
	cons *Constraints

	// discretization
	uShape *shp.Shape
	pShape *shp.Shape
	ips    []shp.Ipoint
	fips   []shp.Ipoint
	nverts int
	pidx   []int // vertex => pressure index, -1 for midside vertices
	pvids  []int // pressure index => vertex
	ndof   int
	bfaces []inp.FaceRef

	// state (replicated): velocity block then pressure block
	U, Uo la.Vector

	// system and preconditioner
	kt    *la.Triplet
	pt    *la.Triplet
	diagP la.Vector
	rhs   la.Vector

	// separately accumulated coupling sources
	FAccel  la.Vector
	FStress la.Vector

	// coupling records keyed by fluid cell id: indicator, projected
	// solid stress and acceleration, written by the orchestrator
	Store *CellStore

	pinned int // pinned pressure dof

	repEnergy *out.Report
	repNorms  *out.Report
	repForce  *out.Report
	log       *logrus.Entry
}

// NewFluid allocates the fluid solver on the shared mesh. Faces without
// tags are classified by their centre coordinates: minimum x is the
// inlet, maximum x the outlet, everything else a wall.
func NewFluid(sim *inp.Simulation, msh *inp.Mesh, mode RunMode, comm *Comm, verbose bool) (o *Fluid, err error) {
	o = &Fluid{sim: sim, msh: msh, mode: mode, comm: comm}
	o.log = NewLogger(comm, "fluid", verbose)

	if sim.Fluid.Mu <= 0 || sim.Fluid.Rho <= 0 {
		return nil, chk.Err("fluid viscosity and density must be positive. mu=%g rho=%g", sim.Fluid.Mu, sim.Fluid.Rho)
	}

	o.uShape = shp.Get("qua8")
	o.pShape = shp.Get("qua4")
	o.ips = shp.IpsByName("qua8", 0)
	o.fips = shp.FaceIps("qua8")
	o.nverts = len(msh.Verts)

	// pressure space: corner vertices only
	o.pidx = make([]int, o.nverts)
	for i := range o.pidx {
		o.pidx[i] = -1
	}
	for _, c := range msh.Cells {
		if c.Type != "qua8" {
			return nil, chk.Err("fluid mesh must contain qua8 cells. cell %d is %q", c.Id, c.Type)
		}
		for _, vid := range c.Verts[:4] {
			if o.pidx[vid] < 0 {
				o.pidx[vid] = len(o.pvids)
				o.pvids = append(o.pvids, vid)
			}
		}
	}
	o.ndof = 2*o.nverts + len(o.pvids)

	// boundary classification
	o.tagBoundary()
	o.bfaces = msh.BoundaryFaces()

	// partition
	o.lay = part.NewLayout(len(msh.Cells), comm.Size(), comm.Rank())
	cellDofs := make([][]int, len(msh.Cells))
	for _, c := range msh.Cells {
		cellDofs[c.Id] = o.cellDofs(c)
	}
	o.dofs = part.NewIndexSet(o.ndof, o.lay, cellDofs)

	// vectors and triplets
	o.U = la.NewVector(o.ndof)
	o.Uo = la.NewVector(o.ndof)
	o.rhs = la.NewVector(o.ndof)
	o.FAccel = la.NewVector(o.ndof)
	o.FStress = la.NewVector(o.ndof)
	o.diagP = la.NewVector(o.ndof)
	nnz := len(o.lay.Owned)*400 + 2*o.ndof
	o.kt = la.NewTriplet(o.ndof, o.ndof, nnz)
	o.pt = la.NewTriplet(o.ndof, o.ndof, nnz)

	o.Store = NewCellStore(msh.Ndim, len(o.uShape.FaceLocalVerts))
	o.pinned = o.selectPinnedPressure()

	o.repEnergy = out.NewReport(sim.Data.DirOut, "fluid_energy.txt", comm.Root(),
		"time", "kin", "visc", "pdiv", "alg", "bpower", "art_kin", "art_visc", "art_pdiv", "art_alg")
	o.repNorms = out.NewReport(sim.Data.DirOut, "fluid_norms.txt", comm.Root(),
		"time", "unorm", "divnorm", "gradpnorm", "ind_unorm", "ind_umax")
	o.repForce = out.NewReport(sim.Data.DirOut, "fluid_force.txt", comm.Root(),
		"time", "drag", "lift", "cd", "cl")

	o.log.WithFields(logrus.Fields{
		"cells": len(msh.Cells), "verts": o.nverts, "pdofs": len(o.pvids), "ndof": o.ndof,
	}).Info("fluid solver ready")
	return
}

// vdof returns the equation of a velocity component
func (o *Fluid) vdof(vid, comp int) int { return 2*vid + comp }

// pdofOf returns the equation of the pressure at a corner vertex
func (o *Fluid) pdofOf(vid int) int { return 2*o.nverts + o.pidx[vid] }

// cellDofs lists the equations of one cell: velocity then pressure
func (o *Fluid) cellDofs(c *inp.Cell) (dofs []int) {
	for _, vid := range c.Verts {
		dofs = append(dofs, o.vdof(vid, 0), o.vdof(vid, 1))
	}
	for _, vid := range c.Verts[:4] {
		dofs = append(dofs, o.pdofOf(vid))
	}
	return
}

// tagBoundary assigns inlet/outlet/wall tags when the mesh has none
func (o *Fluid) tagBoundary() {
	for _, fr := range o.msh.BoundaryFaces() {
		if fr.Tag != 0 {
			return // mesh already tagged
		}
	}
	xmin, xmax := math.MaxFloat64, -math.MaxFloat64
	for _, v := range o.msh.Verts {
		if v.C[0] < xmin {
			xmin = v.C[0]
		}
		if v.C[0] > xmax {
			xmax = v.C[0]
		}
	}
	tol := 1e-8 * (xmax - xmin)
	o.msh.TagBoundaryFaces(func(c []float64) int {
		switch {
		case math.Abs(c[0]-xmin) < tol:
			return TagInlet
		case math.Abs(c[0]-xmax) < tol:
			return TagOutlet
		}
		return TagWall
	})
}

// selectPinnedPressure elects the pressure dof nearest the configured
// reference point: each processor reduces the distance over its owned
// pressure dofs, the minimum is joined, and the holder of the minimum
// is elected by a maximum reduction over candidate equations
func (o *Fluid) selectPinnedPressure() int {
	ref := o.sim.Fluid.RefPoint
	if len(ref) < 2 {
		ref = []float64{0, 0}
	}
	best := math.MaxFloat64
	bestDof := -1
	for _, vid := range o.pvids {
		I := o.pdofOf(vid)
		if !o.dofs.Owns(I, o.comm.Rank()) {
			continue
		}
		v := o.msh.Verts[vid]
		d := math.Hypot(v.C[0]-ref[0], v.C[1]-ref[1])
		if d < best {
			best = d
			bestDof = I
		}
	}
	dmin := o.comm.MinScalar(best)
	cand := -1
	if bestDof >= 0 && best <= dmin+1e-14 {
		cand = bestDof
	}
	return o.comm.MaxInt(cand)
}

// MassCoef returns the blended mass coefficient of a cell:
// ρf/Δt for fluid cells, (1+θ)ρs/Δt for solid-indicated cells
func (o *Fluid) MassCoef(ind, Δt float64) float64 {
	if ind > 0.5 {
		return (1.0 + o.sim.Fluid.Theta) * o.sim.Solid.Rho / Δt
	}
	return o.sim.Fluid.Rho / Δt
}

// rampFactor scales the inlet velocity during the start-up ramp
func (o *Fluid) rampFactor(t float64) float64 {
	if o.sim.Fluid.Ramp <= 0 {
		return 1.0
	}
	if t >= o.sim.Fluid.Ramp {
		return 1.0
	}
	return t / o.sim.Fluid.Ramp
}

// setBCs rebuilds the constraints for the current time: ramped inlet
// velocity, no-slip walls and the pinned pressure. Walls are applied
// after the inlet so no-slip wins at corner vertices shared by both.
func (o *Fluid) setBCs(t float64) {
	o.cons = NewConstraints()
	uin := o.sim.Fluid.Uin * o.rampFactor(t)
	for _, fr := range o.bfaces {
		if fr.Tag != TagInlet {
			continue
		}
		c := o.msh.Cells[fr.Cell]
		for _, lv := range o.uShape.FaceLocalVerts[fr.Face] {
			vid := c.Verts[lv]
			o.cons.SetPrescribed(o.vdof(vid, 0), uin)
			o.cons.SetPrescribed(o.vdof(vid, 1), 0)
		}
	}
	for _, fr := range o.bfaces {
		if fr.Tag != TagWall {
			continue
		}
		c := o.msh.Cells[fr.Cell]
		for _, lv := range o.uShape.FaceLocalVerts[fr.Face] {
			vid := c.Verts[lv]
			o.cons.SetPrescribed(o.vdof(vid, 0), 0)
			o.cons.SetPrescribed(o.vdof(vid, 1), 0)
		}
	}
	o.cons.SetPrescribed(o.pinned, 0)
}

// assemble builds the system matrix, the preconditioner matrix and the
// right-hand side over owned cells. In solid-indicated cells the solid
// stress divergence and acceleration enter as separately tracked
// source terms.
func (o *Fluid) assemble(Δt float64) {
	nloc := 20 // 16 velocity + 4 pressure equations per cell
	k := allocMat(nloc, nloc)
	p := allocMat(nloc, nloc)
	f := make([]float64, nloc)
	faPart := la.NewVector(o.ndof)
	fsPart := la.NewVector(o.ndof)
	fPart := la.NewVector(o.ndof)

	o.kt.Start()
	o.pt.Start()
	o.diagP.Fill(0)
	μ := o.sim.Fluid.Mu
	ρs := o.sim.Solid.Rho

	for _, ci := range o.lay.Owned {
		c := o.msh.Cells[ci]
		x := o.msh.ExtractCellCoords(ci)
		xc := cornerCoords(x)
		rec := o.Store.Get(ci)
		cm := o.MassCoef(rec.Ind, Δt)
		solid := rec.Ind > 0.5
		dofs := o.cellDofs(c)

		for i := 0; i < nloc; i++ {
			f[i] = 0
			for j := 0; j < nloc; j++ {
				k[i][j] = 0
				p[i][j] = 0
			}
		}

		for _, ip := range o.ips {
			if err := o.uShape.CalcAtIp(x, ip, true); err != nil {
				chk.Panic("fluid assembly failed on cell %d:\n%v", ci, err)
			}
			o.pShape.CalcAtIp(xc, ip, true)
			cf := o.uShape.J * ip[3]
			S, G := o.uShape.S, o.uShape.G
			Sp := o.pShape.S

			// previous velocity at the integration point
			var uo0, uo1 float64
			for m, vid := range c.Verts {
				uo0 += S[m] * o.Uo[o.vdof(vid, 0)]
				uo1 += S[m] * o.Uo[o.vdof(vid, 1)]
			}

			for n := 0; n < 8; n++ {
				for m := 0; m < 8; m++ {
					gg := G[n][0]*G[m][0] + G[n][1]*G[m][1]
					mass := cm * S[n] * S[m]
					for i := 0; i < 2; i++ {
						for j := 0; j < 2; j++ {
							v := μ * G[n][j] * G[m][i]
							if i == j {
								v += μ*gg + mass
							}
							k[2*n+i][2*m+j] += cf * v
							if i == j {
								p[2*n+i][2*m+j] += cf * (mass + μ*gg)
							}
						}
					}
				}
				// pressure coupling: -q div(u) and its transpose
				for a := 0; a < 4; a++ {
					for j := 0; j < 2; j++ {
						b := -cf * Sp[a] * G[n][j]
						k[16+a][2*n+j] += b
						k[2*n+j][16+a] += b
					}
				}
				// time term
				f[2*n+0] += cf * cm * S[n] * uo0
				f[2*n+1] += cf * cm * S[n] * uo1

				// solid sources
				if solid {
					σ := rec.Stress
					fs0 := -cf * (σ[0]*G[n][0] + σ[2]*G[n][1])
					fs1 := -cf * (σ[2]*G[n][0] + σ[1]*G[n][1])
					fa0 := -cf * ρs * rec.Acc[0] * S[n]
					fa1 := -cf * ρs * rec.Acc[1] * S[n]
					f[2*n+0] += fs0 + fa0
					f[2*n+1] += fs1 + fa1
					fsPart[dofs[2*n+0]] += fs0
					fsPart[dofs[2*n+1]] += fs1
					faPart[dofs[2*n+0]] += fa0
					faPart[dofs[2*n+1]] += fa1
				}
			}
			// pressure mass block of the preconditioner, scaled by 1/μ
			for a := 0; a < 4; a++ {
				for b := 0; b < 4; b++ {
					p[16+a][16+b] += cf * Sp[a] * Sp[b] / μ
				}
			}
		}

		o.cons.Assemble(o.kt, fPart, nil, k, f, dofs)
		o.cons.Assemble(o.pt, nil, o.diagP, p, nil, dofs)
	}

	// prescribed normal traction on tagged faces (stand-alone runs)
	o.assembleNeumann(fPart)

	o.comm.JoinSum(o.rhs, fPart)
	o.comm.JoinSum(o.FAccel, faPart)
	o.comm.JoinSum(o.FStress, fsPart)
	o.cons.FinalizeMatrix(o.kt, nil, func(I int) bool { return o.dofs.Owns(I, o.comm.Rank()) })
	o.cons.FinalizeMatrix(o.pt, o.diagP, func(I int) bool { return o.dofs.Owns(I, o.comm.Rank()) })
	o.cons.CondenseRHS(o.rhs)
}

// assembleNeumann integrates prescribed boundary pressure on tagged faces
func (o *Fluid) assembleNeumann(fPart la.Vector) {
	if len(o.sim.Fluid.NbcTags) == 0 {
		return
	}
	for _, fr := range o.bfaces {
		if !o.lay.OwnsCell(fr.Cell) {
			continue
		}
		press, found := 0.0, false
		for kk, tag := range o.sim.Fluid.NbcTags {
			if fr.Tag == tag {
				press = o.sim.Fluid.NbcVals[kk]
				found = true
			}
		}
		if !found {
			continue
		}
		c := o.msh.Cells[fr.Cell]
		x := o.msh.ExtractCellCoords(fr.Cell)
		for _, ip := range o.fips {
			o.uShape.CalcAtFaceIp(x, ip, fr.Face)
			for kf, lv := range o.uShape.FaceLocalVerts[fr.Face] {
				for i := 0; i < 2; i++ {
					I := o.vdof(c.Verts[lv], i)
					fPart[I] -= press * o.uShape.Fnvec[i] * ip[3] * o.uShape.Sf[kf]
				}
			}
		}
	}
}

// Solve advances the fluid by one step: assemble, eliminate constraints,
// run the block-preconditioned minimum residual solve, redistribute the
// constrained values and compute the step diagnostics
func (o *Fluid) Solve(t, Δt float64) (err error) {
	o.setBCs(t)
	o.assemble(Δt)

	op := OpFunc(func(y, x la.Vector) {
		part := la.NewVector(o.ndof)
		la.SpTriMatVecMul(part, o.kt, x)
		o.comm.JoinSum(y, part)
	})
	precOp := o.blockPreconditioner()

	maxit := o.sim.LinSol.ItFactor * o.ndof
	st, err := SolveMinRes(op, precOp, o.U, o.rhs, o.sim.LinSol.Rtol, maxit)
	if err != nil {
		return chk.Err("fluid solve at t=%g failed:\n%v", t, err)
	}
	o.cons.Distribute(o.U)
	o.log.WithFields(logrus.Fields{"t": t, "iterations": st.Iterations, "residual": st.Residual}).Debug("fluid step")

	o.writeDiagnostics(t, Δt)
	copy(o.Uo, o.U)
	return
}

// blockPreconditioner applies the block-diagonal preconditioner matrix
// approximately, with a fixed number of damped Jacobi sweeps on the
// assembled mass+viscous / scaled pressure-mass blocks. The sweep count
// is fixed so the operation stays linear and symmetric positive
// definite, as the outer minimum residual solver requires.
func (o *Fluid) blockPreconditioner() Operator {
	diag := la.NewVector(o.ndof)
	o.comm.JoinSum(diag, o.diagP)
	inner := o.sim.LinSol.PrecInner
	const ω = 0.5
	part := la.NewVector(o.ndof)
	pz := la.NewVector(o.ndof)
	return OpFunc(func(z, r la.Vector) {
		z.Fill(0)
		for k := 0; k < inner; k++ {
			la.SpTriMatVecMul(part, o.pt, z)
			o.comm.JoinSum(pz, part)
			for I := 0; I < o.ndof; I++ {
				z[I] += ω * (r[I] - pz[I]) / diag[I]
			}
		}
	})
}

// faceToCellNat maps a face parametric coordinate to cell natural
// coordinates
func faceToCellNat(face int, ξ float64) (r, s float64) {
	switch face {
	case 0:
		return ξ, -1
	case 1:
		return 1, ξ
	case 2:
		return -ξ, 1
	}
	return -1, -ξ
}

// cornerCoords extracts the corner columns of a qua8 coordinate matrix
func cornerCoords(x [][]float64) (xc [][]float64) {
	xc = make([][]float64, len(x))
	for i := range x {
		xc[i] = x[i][:4]
	}
	return
}

// writeDiagnostics reduces the energy estimates, the restricted norms
// and the drag/lift integrals and appends them to the logs. The order
// of the rows is fixed; downstream consumers are order sensitive.
func (o *Fluid) writeDiagnostics(t, Δt float64) {
	μ := o.sim.Fluid.Mu

	var kin, visc, pdiv, alg float64
	var aKin, aVisc, aPdiv, aAlg float64
	var un2, dn2, gp2, iun2, iumax float64

	εv := make([]float64, 3)
	for _, ci := range o.lay.Owned {
		c := o.msh.Cells[ci]
		x := o.msh.ExtractCellCoords(ci)
		xc := cornerCoords(x)
		rec := o.Store.Get(ci)
		solid := rec.Ind > 0.5
		ρc := o.sim.Fluid.Rho
		if solid {
			ρc = (1.0 + o.sim.Fluid.Theta) * o.sim.Solid.Rho
		}
		for _, ip := range o.ips {
			o.uShape.CalcAtIp(x, ip, true)
			o.pShape.CalcAtIp(xc, ip, true)
			cf := o.uShape.J * ip[3]
			S, G := o.uShape.S, o.uShape.G
			var u0, u1, uo0, uo1, div float64
			εv[0], εv[1], εv[2] = 0, 0, 0
			for m, vid := range c.Verts {
				a0 := o.U[o.vdof(vid, 0)]
				a1 := o.U[o.vdof(vid, 1)]
				u0 += S[m] * a0
				u1 += S[m] * a1
				uo0 += S[m] * o.Uo[o.vdof(vid, 0)]
				uo1 += S[m] * o.Uo[o.vdof(vid, 1)]
				div += G[m][0]*a0 + G[m][1]*a1
				εv[0] += G[m][0] * a0
				εv[1] += G[m][1] * a1
				εv[2] += G[m][1]*a0 + G[m][0]*a1
			}
			var pr, gp0, gp1 float64
			for a, vid := range c.Verts[:4] {
				pv := o.U[o.pdofOf(vid)]
				pr += o.pShape.S[a] * pv
				gp0 += o.pShape.G[a][0] * pv
				gp1 += o.pShape.G[a][1] * pv
			}
			kinQ := cf * ρc * ((u0-uo0)*u0 + (u1-uo1)*u1) / Δt
			viscQ := cf * μ * (2*εv[0]*εv[0] + 2*εv[1]*εv[1] + εv[2]*εv[2])
			pdivQ := -cf * pr * div
			algQ := cf * ρc * ((u0-uo0)*(u0-uo0) + (u1-uo1)*(u1-uo1)) / (2 * Δt)
			kin += kinQ
			visc += viscQ
			pdiv += pdivQ
			alg += algQ
			if solid {
				aKin += kinQ
				aVisc += viscQ
				aPdiv += pdivQ
				aAlg += algQ
				iun2 += cf * (u0*u0 + u1*u1)
				um := math.Sqrt(u0*u0 + u1*u1)
				if um > iumax {
					iumax = um
				}
			} else {
				un2 += cf * (u0*u0 + u1*u1)
				dn2 += cf * div * div
				gp2 += cf * (gp0*gp0 + gp1*gp1)
			}
		}
	}

	bp := o.boundaryPower()
	drag, lift := o.dragLift()

	kin = o.comm.SumScalar(kin)
	visc = o.comm.SumScalar(visc)
	pdiv = o.comm.SumScalar(pdiv)
	alg = o.comm.SumScalar(alg)
	aKin = o.comm.SumScalar(aKin)
	aVisc = o.comm.SumScalar(aVisc)
	aPdiv = o.comm.SumScalar(aPdiv)
	aAlg = o.comm.SumScalar(aAlg)
	un2 = o.comm.SumScalar(un2)
	dn2 = o.comm.SumScalar(dn2)
	gp2 = o.comm.SumScalar(gp2)
	iun2 = o.comm.SumScalar(iun2)
	iumax = o.comm.MaxScalar(iumax)
	drag = o.comm.SumScalar(drag)
	lift = o.comm.SumScalar(lift)

	o.repEnergy.Write(t, kin, visc, pdiv, alg, bp, aKin, aVisc, aPdiv, aAlg)
	o.repNorms.Write(t, math.Sqrt(un2), math.Sqrt(dn2), math.Sqrt(gp2), math.Sqrt(iun2), iumax)

	cd, cl := 0.0, 0.0
	den := 0.5 * o.sim.Fluid.Rho * o.sim.Fluid.DragUref * o.sim.Fluid.DragUref * o.sim.Fluid.DragLen
	if den > 0 {
		cd = drag / den
		cl = lift / den
	}
	o.repForce.Write(t, drag, lift, cd, cl)
}

// boundaryPower integrates -p (u.n) over the inlet and outlet
func (o *Fluid) boundaryPower() float64 {
	bp := 0.0
	for _, fr := range o.bfaces {
		if !o.lay.OwnsCell(fr.Cell) {
			continue
		}
		if fr.Tag != TagInlet && fr.Tag != TagOutlet {
			continue
		}
		bp += o.faceFlux(fr, func(pr float64, u, fn []float64) float64 {
			return -pr * (u[0]*fn[0] + u[1]*fn[1])
		})
	}
	return o.comm.SumScalar(bp)
}

// dragLift integrates the traction sigma.n over the tagged surface
func (o *Fluid) dragLift() (drag, lift float64) {
	if o.sim.Fluid.DragTag == 0 {
		return
	}
	μ := o.sim.Fluid.Mu
	for _, fr := range o.bfaces {
		if !o.lay.OwnsCell(fr.Cell) || fr.Tag != o.sim.Fluid.DragTag {
			continue
		}
		c := o.msh.Cells[fr.Cell]
		x := o.msh.ExtractCellCoords(fr.Cell)
		xc := cornerCoords(x)
		for _, ip := range o.fips {
			o.uShape.CalcAtFaceIp(x, ip, fr.Face)
			fn := []float64{o.uShape.Fnvec[0], o.uShape.Fnvec[1]}
			r, s := faceToCellNat(fr.Face, ip[0])
			nat := shp.Ipoint{r, s, 0, 0}
			o.uShape.CalcAtIp(x, nat, true)
			o.pShape.CalcAtIp(xc, nat, true)
			var e00, e11, e01, pr float64
			for m, vid := range c.Verts {
				a0 := o.U[o.vdof(vid, 0)]
				a1 := o.U[o.vdof(vid, 1)]
				e00 += o.uShape.G[m][0] * a0
				e11 += o.uShape.G[m][1] * a1
				e01 += 0.5 * (o.uShape.G[m][1]*a0 + o.uShape.G[m][0]*a1)
			}
			for a, vid := range c.Verts[:4] {
				pr += o.pShape.S[a] * o.U[o.pdofOf(vid)]
			}
			// sigma.n with the face Jacobian folded into fn
			tx := (-pr+2*μ*e00)*fn[0] + 2*μ*e01*fn[1]
			ty := 2*μ*e01*fn[0] + (-pr+2*μ*e11)*fn[1]
			drag += tx * ip[3]
			lift += ty * ip[3]
		}
	}
	return
}

// faceFlux integrates a pointwise quantity over one boundary face
func (o *Fluid) faceFlux(fr inp.FaceRef, fn func(pr float64, u, fnvec []float64) float64) float64 {
	c := o.msh.Cells[fr.Cell]
	x := o.msh.ExtractCellCoords(fr.Cell)
	xc := cornerCoords(x)
	res := 0.0
	for _, ip := range o.fips {
		o.uShape.CalcAtFaceIp(x, ip, fr.Face)
		nvec := []float64{o.uShape.Fnvec[0], o.uShape.Fnvec[1]}
		r, s := faceToCellNat(fr.Face, ip[0])
		nat := shp.Ipoint{r, s, 0, 0}
		o.uShape.CalcAtIp(x, nat, false)
		o.pShape.CalcAtIp(xc, nat, false)
		var u0, u1, pr float64
		for m, vid := range c.Verts {
			u0 += o.uShape.S[m] * o.U[o.vdof(vid, 0)]
			u1 += o.uShape.S[m] * o.U[o.vdof(vid, 1)]
		}
		for a, vid := range c.Verts[:4] {
			pr += o.pShape.S[a] * o.U[o.pdofOf(vid)]
		}
		res += fn(pr, []float64{u0, u1}, nvec) * ip[3]
	}
	return res
}

// Mesh returns the shared mesh
func (o *Fluid) Mesh() *inp.Mesh { return o.msh }

// Vdof returns the equation of a velocity component
func (o *Fluid) Vdof(vid, comp int) int { return o.vdof(vid, comp) }

// Flush saves the pending report rows
func (o *Fluid) Flush() {
	o.repEnergy.Flush()
	o.repNorms.Flush()
	o.repForce.Flush()
}
