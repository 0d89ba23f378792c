// Copyright 2017 The OpenIFEM Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"github.com/cpmech/gosl/la"
)

// conEntry is one master of a linearly constrained dof
type conEntry struct {
	master int
	coeff  float64
}

// Constraints eliminates constrained degrees of freedom during assembly
// and redistributes their values after the solve. Two kinds are handled:
// prescribed values (boundary conditions) and linear combinations of
// master dofs (hanging nodes).
type Constraints struct {
	presc map[int]float64    // dof => prescribed value
	lin   map[int][]conEntry // dof => masters
}

// NewConstraints returns an empty set
func NewConstraints() *Constraints {
	return &Constraints{
		presc: make(map[int]float64),
		lin:   make(map[int][]conEntry),
	}
}

// SetPrescribed constrains dof I to the given value
func (o *Constraints) SetPrescribed(I int, value float64) {
	o.presc[I] = value
	delete(o.lin, I)
}

// AddLinear constrains dof I to a linear combination of master dofs
func (o *Constraints) AddLinear(I int, masters []int, coeffs []float64) {
	if _, ok := o.presc[I]; ok {
		return // prescribed wins over hanging
	}
	entries := make([]conEntry, len(masters))
	for k, m := range masters {
		entries[k] = conEntry{m, coeffs[k]}
	}
	o.lin[I] = entries
}

// IsConstrained reports whether dof I is constrained
func (o *Constraints) IsConstrained(I int) bool {
	if _, ok := o.presc[I]; ok {
		return true
	}
	_, ok := o.lin[I]
	return ok
}

// NumPrescribed returns the number of prescribed dofs
func (o *Constraints) NumPrescribed() int { return len(o.presc) }

// targets expands dof I into the rows it contributes to: itself if
// unconstrained, its masters if hanging, nothing if prescribed
func (o *Constraints) targets(I int) []conEntry {
	if _, ok := o.presc[I]; ok {
		return nil
	}
	if masters, ok := o.lin[I]; ok {
		return masters
	}
	return []conEntry{{I, 1.0}}
}

// Assemble scatters a local matrix and vector into the global triplet
// and right-hand side, eliminating constrained dofs on the fly.
// Couplings with prescribed dofs move their inhomogeneity to the
// right-hand side; hanging dofs redistribute to their masters. When
// diag is not nil it accumulates the diagonal of the scattered matrix
// so that a Jacobi-style preconditioner needs no sparse extraction.
func (o *Constraints) Assemble(K *la.Triplet, F, diag la.Vector, k [][]float64, f []float64, dofs []int) {
	for i, I := range dofs {
		rows := o.targets(I)
		if rows == nil {
			continue
		}
		if f != nil {
			for _, ri := range rows {
				F[ri.master] += ri.coeff * f[i]
			}
		}
		if k == nil {
			continue
		}
		for j, J := range dofs {
			v := k[i][j]
			if v == 0 {
				continue
			}
			if val, ok := o.presc[J]; ok {
				if val != 0 && F != nil {
					for _, ri := range rows {
						F[ri.master] -= ri.coeff * v * val
					}
				}
				continue
			}
			for _, ri := range rows {
				for _, cj := range o.targets(J) {
					K.Put(ri.master, cj.master, ri.coeff*cj.coeff*v)
					if diag != nil && ri.master == cj.master {
						diag[ri.master] += ri.coeff * cj.coeff * v
					}
				}
			}
		}
	}
}

// PutDiag adds a value to an unconstrained diagonal entry. Constrained
// entries are skipped since their rows were eliminated.
func (o *Constraints) PutDiag(K *la.Triplet, diag la.Vector, I int, v float64) {
	if o.IsConstrained(I) {
		return
	}
	K.Put(I, I, v)
	if diag != nil {
		diag[I] += v
	}
}

// FinalizeMatrix closes the eliminated rows with a unit diagonal. Must
// run on exactly one processor per dof; the owns callback decides
// which, so that the distributed sum-join counts each entry once.
func (o *Constraints) FinalizeMatrix(K *la.Triplet, diag la.Vector, owns func(I int) bool) {
	for I := range o.presc {
		if owns(I) {
			K.Put(I, I, 1.0)
			if diag != nil {
				diag[I] += 1.0
			}
		}
	}
	for I := range o.lin {
		if owns(I) {
			K.Put(I, I, 1.0)
			if diag != nil {
				diag[I] += 1.0
			}
		}
	}
}

// CondenseRHS folds constrained rows of a globally assembled right-hand
// side into their masters and plants the prescribed values, matching
// the eliminated matrix. The vector must already be sum-joined; run on
// all processors so the replicated copies stay identical.
func (o *Constraints) CondenseRHS(F la.Vector) {
	for I, masters := range o.lin {
		for _, m := range masters {
			F[m.master] += m.coeff * F[I]
		}
		F[I] = 0
	}
	for I, val := range o.presc {
		F[I] = val
	}
}

// Distribute overwrites constrained entries of x with their constrained
// values. Called after the linear solve.
func (o *Constraints) Distribute(x la.Vector) {
	for I, val := range o.presc {
		x[I] = val
	}
	for I, masters := range o.lin {
		x[I] = 0
		for _, m := range masters {
			x[I] += m.coeff * x[m.master]
		}
	}
}

// ZeroPrescribed keeps the constrained pattern but sets every prescribed
// value to zero. Used when solving for acceleration increments where the
// boundary motion is already accounted for.
func (o *Constraints) ZeroPrescribed() {
	for I := range o.presc {
		o.presc[I] = 0
	}
}
