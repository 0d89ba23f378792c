// Copyright 2017 The OpenIFEM Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"github.com/shenchen0414/OpenIFEM/inp"
	"github.com/shenchen0414/OpenIFEM/msolid"
	"github.com/shenchen0414/OpenIFEM/out"
	"github.com/shenchen0414/OpenIFEM/part"
	"github.com/shenchen0414/OpenIFEM/shp"
)

// ptTol is the tolerance for matching constrained point coordinates
const ptTol = 1e-8

// Solid advances the immersed body by Newmark integration with numerical
// damping. Vectors are replicated on every processor; assembly runs over
// owned cells only and partial results are sum-joined.
type Solid struct {

	// input
	sim  *inp.Simulation
	msh  *inp.Mesh
	mode RunMode
	comm *Comm
	mdl  []*msolid.LinElast // one per material region

	// partition and constraints
	lay  *part.Layout
	dofs *part.IndexSet
	cons *Constraints
	dc   DynCoefs

	// discretization
	ndof   int
	shape  *shp.Shape
	ips    []shp.Ipoint // full rule
	ipsRed []shp.Ipoint // one-point rule for the volumetric stiffness
	fips   []shp.Ipoint // face rule
	extrap *mat.Dense   // quadrature-point to node projection
	bfaces []inp.FaceRef

	// state (replicated)
	U, V, A    la.Vector // current displacement, velocity, acceleration
	Uo, Vo, Ao la.Vector // previous step
	up, vp     la.Vector // Newmark predictors

	// operators
	Mass      la.Vector   // lumped mass diagonal
	Cdamp     la.Vector   // mass proportional damping diagonal
	AddedMass la.Vector   // interface added mass diagonal; zero in stand-alone runs
	Vfsi      la.Vector   // interface velocity for the penalty force
	Fgrav     la.Vector   // gravity load
	Ftrac     la.Vector   // traction part of the coupling force
	Fpen      la.Vector   // penalty part of the coupling force
	kraw      *la.Triplet // raw stiffness over owned cells
	ksys      *la.Triplet // eliminated Newmark system matrix
	diagSys   la.Vector

	// nodal averaged stress per component
	Sig [Nsig]la.Vector

	// coupling records of the solid mesh: traction written by the
	// orchestrator, read during force assembly
	Store *CellStore

	repEnergy *out.Report
	log       *logrus.Entry
}

// NewSolid allocates the solid solver over its own mesh
func NewSolid(sim *inp.Simulation, msh *inp.Mesh, mode RunMode, comm *Comm, verbose bool) (o *Solid, err error) {
	o = &Solid{sim: sim, msh: msh, mode: mode, comm: comm}
	o.log = NewLogger(comm, "solid", verbose)

	// materials
	for i := range sim.Solid.E {
		m, err := msolid.NewLinElast(sim.Solid.E[i], sim.Solid.Nu[i], sim.Solid.Rho, etaOf(sim.Solid.Eta, i))
		if err != nil {
			return nil, err
		}
		o.mdl = append(o.mdl, m)
	}
	if len(o.mdl) == 0 {
		return nil, chk.Err("at least one solid material region is required")
	}
	if err = o.dc.Init(-sim.Solid.Damping); err != nil {
		return nil, err
	}

	// discretization
	o.shape = shp.Get("qua4")
	if o.shape == nil {
		return nil, chk.Err("solid mesh must contain qua4 cells")
	}
	o.ips = shp.IpsByName("qua4", 0)
	o.ipsRed = shp.IpsByName("qua4", 1)
	o.fips = shp.FaceIps("qua4")
	o.extrap, err = o.shape.Extrapolator(o.ips)
	if err != nil {
		return nil, err
	}
	o.bfaces = msh.BoundaryFaces()
	o.ndof = msh.Ndim * len(msh.Verts)

	// partition
	o.lay = part.NewLayout(len(msh.Cells), comm.Size(), comm.Rank())
	cellDofs := make([][]int, len(msh.Cells))
	for _, c := range msh.Cells {
		for _, vid := range c.Verts {
			cellDofs[c.Id] = append(cellDofs[c.Id], o.dof(vid, 0), o.dof(vid, 1))
		}
	}
	o.dofs = part.NewIndexSet(o.ndof, o.lay, cellDofs)

	// vectors
	for _, v := range []*la.Vector{&o.U, &o.V, &o.A, &o.Uo, &o.Vo, &o.Ao, &o.up, &o.vp,
		&o.Mass, &o.Cdamp, &o.AddedMass, &o.Vfsi, &o.Fgrav, &o.Ftrac, &o.Fpen, &o.diagSys} {
		*v = la.NewVector(o.ndof)
	}
	for s := 0; s < Nsig; s++ {
		o.Sig[s] = la.NewVector(len(msh.Verts))
	}
	// 64 raw couplings per cell; a hanging slave scatters each coupling
	// to two masters per side, up to 4x after elimination
	nnzK := len(o.lay.Owned)*256 + o.ndof
	o.kraw = la.NewTriplet(o.ndof, o.ndof, nnzK)
	o.ksys = la.NewTriplet(o.ndof, o.ndof, nnzK+o.ndof)

	// constraints, operators, initial state
	if err = o.applyEssentialBCs(); err != nil {
		return nil, err
	}
	o.assembleMassAndDamping()
	o.assembleRawStiffness()
	for i := 0; i < msh.Ndim; i++ {
		g := 0.0
		if i < len(sim.Gravity) {
			g = sim.Gravity[i]
		}
		for vid := range msh.Verts {
			I := o.dof(vid, i)
			o.Fgrav[I] = o.Mass[I] * g
		}
	}
	for vid := range msh.Verts {
		for i := 0; i < msh.Ndim && i < len(sim.Solid.Vini); i++ {
			o.V[o.dof(vid, i)] = sim.Solid.Vini[i]
		}
	}
	o.cons.Distribute(o.V)
	copy(o.Vo, o.V)

	o.Store = NewCellStore(msh.Ndim, len(o.shape.FaceLocalVerts))
	o.repEnergy = out.NewReport(sim.Data.DirOut, "solid_energy.txt", comm.Root(),
		"time", "ke", "dke", "dpe")

	o.log.WithFields(logrus.Fields{
		"cells": len(msh.Cells), "verts": len(msh.Verts), "ndof": o.ndof,
		"constrained": o.cons.NumPrescribed(),
	}).Info("solid solver ready")
	return
}

func etaOf(eta []float64, i int) float64 {
	if i < len(eta) {
		return eta[i]
	}
	return 0
}

// dof returns the global equation number of a vertex component
func (o *Solid) dof(vid, comp int) int { return o.msh.Ndim*vid + comp }

// region returns the material region index of a cell
func (o *Solid) region(c *inp.Cell) int {
	if c.Tag >= 0 && c.Tag < len(o.mdl) {
		return c.Tag
	}
	return 0
}

// applyEssentialBCs builds the prescribed constraints: face-tagged
// homogeneous supports and user point constraints. A constrained point
// absent from the mesh is fatal since the boundary condition cannot be
// honored.
func (o *Solid) applyEssentialBCs() (err error) {
	o.cons = NewConstraints()
	for _, fr := range o.bfaces {
		for k, tag := range o.sim.Solid.EbcTags {
			if fr.Tag != tag {
				continue
			}
			c := o.msh.Cells[fr.Cell]
			for _, lv := range o.shape.FaceLocalVerts[fr.Face] {
				for _, dir := range dirsFromFlag(o.sim.Solid.EbcFlag[k]) {
					if dir < o.msh.Ndim {
						o.cons.SetPrescribed(o.dof(c.Verts[lv], dir), 0)
					}
				}
			}
		}
	}
	for k, pc := range o.sim.Solid.PtConsC {
		vid := -1
		for _, v := range o.msh.Verts {
			d := 0.0
			for i := 0; i < o.msh.Ndim; i++ {
				d += (v.C[i] - pc[i]) * (v.C[i] - pc[i])
			}
			if math.Sqrt(d) < ptTol {
				vid = v.Id
				break
			}
		}
		if vid < 0 {
			return chk.Err("constrained point %v not found in the solid mesh", pc)
		}
		for _, dir := range dirsFromFlag(o.sim.Solid.PtConsD[k]) {
			if dir < o.msh.Ndim {
				o.cons.SetPrescribed(o.dof(vid, dir), 0)
			}
		}
	}
	return
}

// dirsFromFlag decodes the per-direction constraint flag:
// 1-x 2-y 3-xy 4-z 5-xz 6-yz 7-xyz
func dirsFromFlag(flag int) (dirs []int) {
	switch flag {
	case 1:
		dirs = []int{0}
	case 2:
		dirs = []int{1}
	case 3:
		dirs = []int{0, 1}
	case 4:
		dirs = []int{2}
	case 5:
		dirs = []int{0, 2}
	case 6:
		dirs = []int{1, 2}
	case 7:
		dirs = []int{0, 1, 2}
	}
	return
}

// assembleMassAndDamping builds the lumped mass and the mass
// proportional damping diagonals, sum-joined so every processor holds
// the full diagonal
func (o *Solid) assembleMassAndDamping() {
	mPart := la.NewVector(o.ndof)
	cPart := la.NewVector(o.ndof)
	for _, ci := range o.lay.Owned {
		c := o.msh.Cells[ci]
		x := o.msh.ExtractCellCoords(ci)
		mdl := o.mdl[o.region(c)]
		for _, ip := range o.ips {
			o.shape.CalcAtIp(x, ip, true)
			cf := o.shape.J * ip[3]
			for n, vid := range c.Verts {
				for i := 0; i < o.msh.Ndim; i++ {
					I := o.dof(vid, i)
					mPart[I] += mdl.Rho * o.shape.S[n] * cf
					cPart[I] += mdl.Rho * mdl.Eta * o.shape.S[n] * cf
				}
			}
		}
	}
	o.comm.JoinSum(o.Mass, mPart)
	o.comm.JoinSum(o.Cdamp, cPart)
}

// elemStiffness computes the local stiffness with selective reduced
// integration: the shear term uses the full rule, the volumetric term a
// separate one-point pass merged into the same local matrix
func (o *Solid) elemStiffness(k [][]float64, x [][]float64, mdl *msolid.LinElast) (err error) {
	nv := o.shape.Nverts
	nd := o.msh.Ndim
	for i := 0; i < nv*nd; i++ {
		for j := 0; j < nv*nd; j++ {
			k[i][j] = 0
		}
	}
	for _, ip := range o.ips {
		if err = o.shape.CalcAtIp(x, ip, true); err != nil {
			return
		}
		cf := o.shape.J * ip[3]
		G := o.shape.G
		for n := 0; n < nv; n++ {
			for m := 0; m < nv; m++ {
				gg := G[n][0]*G[m][0] + G[n][1]*G[m][1]
				for i := 0; i < nd; i++ {
					for j := 0; j < nd; j++ {
						v := mdl.Mu * G[n][j] * G[m][i]
						if i == j {
							v += mdl.Mu * gg
						}
						k[nd*n+i][nd*m+j] += cf * v
					}
				}
			}
		}
	}
	for _, ip := range o.ipsRed {
		if err = o.shape.CalcAtIp(x, ip, true); err != nil {
			return
		}
		cf := o.shape.J * ip[3]
		G := o.shape.G
		for n := 0; n < nv; n++ {
			for m := 0; m < nv; m++ {
				for i := 0; i < nd; i++ {
					for j := 0; j < nd; j++ {
						k[nd*n+i][nd*m+j] += cf * mdl.Lam * G[n][i] * G[m][j]
					}
				}
			}
		}
	}
	return
}

// assembleRawStiffness builds the unconstrained stiffness over owned
// cells, used for the K u term of the right-hand side
func (o *Solid) assembleRawStiffness() {
	nloc := o.shape.Nverts * o.msh.Ndim
	k := allocMat(nloc, nloc)
	o.kraw.Start()
	for _, ci := range o.lay.Owned {
		c := o.msh.Cells[ci]
		x := o.msh.ExtractCellCoords(ci)
		if err := o.elemStiffness(k, x, o.mdl[o.region(c)]); err != nil {
			chk.Panic("solid stiffness assembly failed on cell %d:\n%v", ci, err)
		}
		for a, via := range c.Verts {
			for i := 0; i < o.msh.Ndim; i++ {
				for b, vib := range c.Verts {
					for j := 0; j < o.msh.Ndim; j++ {
						o.kraw.Put(o.dof(via, i), o.dof(vib, j), k[o.msh.Ndim*a+i][o.msh.Ndim*b+j])
					}
				}
			}
		}
	}
}

// buildSystem assembles the eliminated Newmark operator
//  A = M (I + γ Δt η) + M_added + β Δt² K
func (o *Solid) buildSystem(Δt float64) {
	nd := o.msh.Ndim
	nloc := o.shape.Nverts * nd
	k := allocMat(nloc, nloc)
	ksys := allocMat(nloc, nloc)
	o.ksys.Start()
	o.diagSys.Fill(0)
	β := o.dc.Beta()
	for _, ci := range o.lay.Owned {
		c := o.msh.Cells[ci]
		x := o.msh.ExtractCellCoords(ci)
		if err := o.elemStiffness(k, x, o.mdl[o.region(c)]); err != nil {
			chk.Panic("solid stiffness assembly failed on cell %d:\n%v", ci, err)
		}
		dofs := make([]int, 0, nloc)
		for _, vid := range c.Verts {
			for i := 0; i < nd; i++ {
				dofs = append(dofs, o.dof(vid, i))
			}
		}
		for i := 0; i < nloc; i++ {
			for j := 0; j < nloc; j++ {
				ksys[i][j] = β * Δt * Δt * k[i][j]
			}
		}
		o.cons.Assemble(o.ksys, nil, o.diagSys, ksys, nil, dofs)
	}
	// diagonal mass, damping and added mass terms, counted once by the
	// owner processor
	γ := o.dc.Gamma()
	for I := 0; I < o.ndof; I++ {
		if o.dofs.Owns(I, o.comm.Rank()) {
			o.cons.PutDiag(o.ksys, o.diagSys, I, o.Mass[I]+γ*Δt*o.Cdamp[I]+o.AddedMass[I])
		}
	}
	o.cons.FinalizeMatrix(o.ksys, o.diagSys, func(I int) bool { return o.dofs.Owns(I, o.comm.Rank()) })
}

// assembleCouplingForces recomputes the traction and penalty parts of
// the right-hand side. In stand-alone runs the traction is the
// user-prescribed Neumann data; in coupled runs it comes from the
// interface records written by the orchestrator.
func (o *Solid) assembleCouplingForces(Δt float64) {
	ftPart := la.NewVector(o.ndof)
	for _, fr := range o.bfaces {
		if !o.lay.OwnsCell(fr.Cell) {
			continue
		}
		c := o.msh.Cells[fr.Cell]
		x := o.msh.ExtractCellCoords(fr.Cell)
		var trac []float64
		var press float64
		usePress := false
		if o.mode == StandAlone {
			for k, tag := range o.sim.Solid.NbcTags {
				if fr.Tag == tag {
					if o.sim.Solid.NbcType == "pressure" {
						press = o.sim.Solid.NbcVals[k][0]
						usePress = true
					} else {
						trac = o.sim.Solid.NbcVals[k]
					}
				}
			}
		} else {
			trac = o.Store.Get(fr.Cell).Traction[fr.Face]
		}
		if trac == nil && !usePress {
			continue
		}
		for _, ip := range o.fips {
			o.shape.CalcAtFaceIp(x, ip, fr.Face)
			for kf, lv := range o.shape.FaceLocalVerts[fr.Face] {
				for i := 0; i < o.msh.Ndim; i++ {
					I := o.dof(c.Verts[lv], i)
					if usePress {
						ftPart[I] -= press * o.shape.Fnvec[i] * ip[3] * o.shape.Sf[kf]
					} else {
						fj := math.Sqrt(o.shape.Fnvec[0]*o.shape.Fnvec[0] + o.shape.Fnvec[1]*o.shape.Fnvec[1])
						ftPart[I] += trac[i] * fj * ip[3] * o.shape.Sf[kf]
					}
				}
			}
		}
	}
	o.comm.JoinSum(o.Ftrac, ftPart)

	// velocity-difference penalty against the interface velocity
	for I := 0; I < o.ndof; I++ {
		o.Fpen[I] = o.AddedMass[I] * (o.Vfsi[I] - o.vp[I]) / Δt
	}
}

// SolveInitial computes the initial acceleration from the lumped mass,
// the added mass and the loads at time zero
func (o *Solid) SolveInitial(Δt float64) (err error) {
	copy(o.up, o.U)
	copy(o.vp, o.V)
	o.assembleCouplingForces(Δt)
	rhs := o.rightHandSide()
	for I := 0; I < o.ndof; I++ {
		if o.cons.IsConstrained(I) {
			o.A[I] = 0
			continue
		}
		o.A[I] = rhs[I] / (o.Mass[I] + o.AddedMass[I])
	}
	o.cons.Distribute(o.A)
	copy(o.Ao, o.A)
	if err = o.RecoverStress(); err != nil {
		return
	}
	return
}

// rightHandSide assembles F = Fgrav + Ftrac + Fpen − K up − C vp,
// sum-joined so every processor holds the same vector
func (o *Solid) rightHandSide() la.Vector {
	ku := la.NewVector(o.ndof)
	kuPart := la.NewVector(o.ndof)
	la.SpTriMatVecMul(kuPart, o.kraw, o.up)
	o.comm.JoinSum(ku, kuPart)
	rhs := la.NewVector(o.ndof)
	for I := 0; I < o.ndof; I++ {
		rhs[I] = o.Fgrav[I] + o.Ftrac[I] + o.Fpen[I] - ku[I] - o.Cdamp[I]*o.vp[I]
	}
	return rhs
}

// Advance performs one Newmark step: predict, solve for acceleration,
// correct, roll the history and recover stress
func (o *Solid) Advance(t, Δt float64) (err error) {

	// predictors
	o.dc.Predict(o.up, o.vp, o.U, o.V, o.A, Δt)

	// system and right-hand side
	o.buildSystem(Δt)
	o.assembleCouplingForces(Δt)
	rhs := o.rightHandSide()
	o.cons.CondenseRHS(rhs)

	// solve for the new acceleration
	op := OpFunc(func(y, x la.Vector) {
		part := la.NewVector(o.ndof)
		la.SpTriMatVecMul(part, o.ksys, x)
		o.comm.JoinSum(y, part)
	})
	diag := la.NewVector(o.ndof)
	o.comm.JoinSum(diag, o.diagSys)
	maxit := o.sim.LinSol.ItFactor * o.ndof
	st, err := SolveCG(op, JacobiPrec(diag), o.A, rhs, o.sim.LinSol.Rtol, maxit)
	if err != nil {
		return chk.Err("solid solve at t=%g failed:\n%v", t, err)
	}
	o.cons.Distribute(o.A)
	o.log.WithFields(logrus.Fields{"t": t, "iterations": st.Iterations, "residual": st.Residual}).Debug("solid step")

	// correctors and history roll
	copy(o.Uo, o.U)
	copy(o.Vo, o.V)
	o.dc.Correct(o.U, o.V, o.up, o.vp, o.A, Δt)
	o.cons.Distribute(o.U)
	o.cons.Distribute(o.V)
	copy(o.Ao, o.A)

	if err = o.RecoverStress(); err != nil {
		return
	}
	o.writeEnergies(t, Δt)
	return
}

// RecoverStress recomputes the nodal averaged stress: per-cell
// quadrature stresses projected to the vertices and averaged over the
// cells sharing each vertex
func (o *Solid) RecoverStress() (err error) {
	nverts := len(o.msh.Verts)
	sums := make([]la.Vector, Nsig)
	for s := range sums {
		sums[s] = la.NewVector(nverts)
	}
	cnt := la.NewVector(nverts)
	σip := make([][]float64, len(o.ips))
	for i := range σip {
		σip[i] = make([]float64, Nsig)
	}
	ε := make([]float64, Nsig)
	for _, ci := range o.lay.Owned {
		c := o.msh.Cells[ci]
		x := o.msh.ExtractCellCoords(ci)
		mdl := o.mdl[o.region(c)]
		for q, ip := range o.ips {
			if err = o.shape.CalcAtIp(x, ip, true); err != nil {
				return
			}
			G := o.shape.G
			ε[0], ε[1], ε[2] = 0, 0, 0
			for n, vid := range c.Verts {
				ux := o.U[o.dof(vid, 0)]
				uy := o.U[o.dof(vid, 1)]
				ε[0] += G[n][0] * ux
				ε[1] += G[n][1] * uy
				ε[2] += G[n][1]*ux + G[n][0]*uy
			}
			mdl.Stress(σip[q], ε)
		}
		for n, vid := range c.Verts {
			for s := 0; s < Nsig; s++ {
				v := 0.0
				for q := range o.ips {
					v += o.extrap.At(n, q) * σip[q][s]
				}
				sums[s][vid] += v
			}
			cnt[vid] += 1.0
		}
	}
	cntAll := la.NewVector(nverts)
	o.comm.JoinSum(cntAll, cnt)
	for s := 0; s < Nsig; s++ {
		o.comm.JoinSum(o.Sig[s], sums[s])
		for vid := 0; vid < nverts; vid++ {
			if cntAll[vid] > 0 {
				o.Sig[s][vid] /= cntAll[vid]
			}
		}
	}
	return
}

// Estimate computes a gradient-recovery error estimate per cell: the L2
// difference between the raw quadrature stress and the recovered nodal
// stress field, sum-joined so marking is identical on every processor
func (o *Solid) Estimate() la.Vector {
	ηPart := la.NewVector(len(o.msh.Cells))
	ε := make([]float64, Nsig)
	σ := make([]float64, Nsig)
	for _, ci := range o.lay.Owned {
		c := o.msh.Cells[ci]
		x := o.msh.ExtractCellCoords(ci)
		mdl := o.mdl[o.region(c)]
		for _, ip := range o.ips {
			if err := o.shape.CalcAtIp(x, ip, true); err != nil {
				continue
			}
			G := o.shape.G
			S := o.shape.S
			cf := o.shape.J * ip[3]
			ε[0], ε[1], ε[2] = 0, 0, 0
			for n, vid := range c.Verts {
				ux := o.U[o.dof(vid, 0)]
				uy := o.U[o.dof(vid, 1)]
				ε[0] += G[n][0] * ux
				ε[1] += G[n][1] * uy
				ε[2] += G[n][1]*ux + G[n][0]*uy
			}
			mdl.Stress(σ, ε)
			for s := 0; s < Nsig; s++ {
				rec := 0.0
				for n, vid := range c.Verts {
					rec += S[n] * o.Sig[s][vid]
				}
				d := rec - σ[s]
				ηPart[ci] += cf * d * d
			}
		}
	}
	η := la.NewVector(len(o.msh.Cells))
	o.comm.JoinSum(η, ηPart)
	return η
}

// CellStress returns the mean stress of a cell from the nodal field
func (o *Solid) CellStress(cellId int) (σ []float64) {
	σ = make([]float64, Nsig)
	c := o.msh.Cells[cellId]
	for _, vid := range c.Verts {
		for s := 0; s < Nsig; s++ {
			σ[s] += o.Sig[s][vid]
		}
	}
	for s := 0; s < Nsig; s++ {
		σ[s] /= float64(len(c.Verts))
	}
	return
}

// CellAcc returns the mean acceleration of a cell
func (o *Solid) CellAcc(cellId int) (a []float64) {
	a = make([]float64, o.msh.Ndim)
	c := o.msh.Cells[cellId]
	for _, vid := range c.Verts {
		for i := 0; i < o.msh.Ndim; i++ {
			a[i] += o.A[o.dof(vid, i)]
		}
	}
	for i := 0; i < o.msh.Ndim; i++ {
		a[i] /= float64(len(c.Verts))
	}
	return
}

// writeEnergies reduces the kinetic energy, its rate and the gravity
// potential rate over owned dofs and appends them to the energy log
func (o *Solid) writeEnergies(t, Δt float64) {
	ke, dke, pg := 0.0, 0.0, 0.0
	for I := 0; I < o.ndof; I++ {
		if !o.dofs.Owns(I, o.comm.Rank()) {
			continue
		}
		ke += 0.5 * o.Mass[I] * o.V[I] * o.V[I]
		dke += o.Mass[I] * o.V[I] * (o.V[I] - o.Vo[I]) / Δt
		pg += o.Fgrav[I] * o.V[I]
	}
	ke = o.comm.SumScalar(ke)
	dke = o.comm.SumScalar(dke)
	pg = o.comm.SumScalar(pg)
	o.repEnergy.Write(t, ke, dke, -pg)
}

// KineticEnergy reduces the current kinetic energy over the process group
func (o *Solid) KineticEnergy() float64 {
	ke := 0.0
	for I := 0; I < o.ndof; I++ {
		if o.dofs.Owns(I, o.comm.Rank()) {
			ke += 0.5 * o.Mass[I] * o.V[I] * o.V[I]
		}
	}
	return o.comm.SumScalar(ke)
}

// Mesh returns the solid mesh
func (o *Solid) Mesh() *inp.Mesh { return o.msh }

// Dof returns the global equation of a vertex component
func (o *Solid) Dof(vid, comp int) int { return o.dof(vid, comp) }

// BoundaryFaces returns the boundary faces of the solid mesh
func (o *Solid) BoundaryFaces() []inp.FaceRef { return o.bfaces }

// Shape returns the cell shape structure
func (o *Solid) Shape() *shp.Shape { return o.shape }

// Constraints returns the essential constraints
func (o *Solid) Constraints() *Constraints { return o.cons }

// Flush saves the pending report rows
func (o *Solid) Flush() { o.repEnergy.Flush() }

func allocMat(m, n int) (res [][]float64) {
	res = make([][]float64, m)
	for i := 0; i < m; i++ {
		res[i] = make([]float64, n)
	}
	return
}
