// Copyright 2017 The OpenIFEM Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

// Operator applies a linear operator: y := A x. Implementations over
// distributed matrices join the partial products internally, so every
// processor sees the full result and the solver iterations stay in
// lockstep without further communication.
type Operator interface {
	Apply(y, x la.Vector)
}

// OpFunc adapts a function to the Operator interface
type OpFunc func(y, x la.Vector)

// Apply calls f(y, x)
func (f OpFunc) Apply(y, x la.Vector) { f(y, x) }

// SolveStats reports the work done by an iterative solve
type SolveStats struct {
	Iterations int
	Residual   float64
}

// SolveCG solves A x = b by preconditioned conjugate gradients.
// A must be symmetric positive definite; M approximates A⁻¹ and may be
// nil. Exceeding maxit iterations is a fatal convergence error.
func SolveCG(A, M Operator, x, b la.Vector, rtol float64, maxit int) (st SolveStats, err error) {
	n := len(b)
	r := la.NewVector(n)
	z := la.NewVector(n)
	p := la.NewVector(n)
	q := la.NewVector(n)

	A.Apply(r, x)
	for i := 0; i < n; i++ {
		r[i] = b[i] - r[i]
	}
	bnorm := math.Sqrt(la.VecDot(b, b))
	if bnorm == 0 {
		x.Fill(0)
		return
	}
	applyPrec(M, z, r)
	copy(p, z)
	rz := la.VecDot(r, z)

	for st.Iterations = 0; st.Iterations < maxit; st.Iterations++ {
		st.Residual = math.Sqrt(la.VecDot(r, r)) / bnorm
		if st.Residual < rtol {
			return
		}
		A.Apply(q, p)
		pq := la.VecDot(p, q)
		if pq <= 0 {
			return st, chk.Err("conjugate gradients broke down: operator is not positive definite (p.q = %g)", pq)
		}
		α := rz / pq
		for i := 0; i < n; i++ {
			x[i] += α * p[i]
			r[i] -= α * q[i]
		}
		applyPrec(M, z, r)
		rzNew := la.VecDot(r, z)
		β := rzNew / rz
		rz = rzNew
		for i := 0; i < n; i++ {
			p[i] = z[i] + β*p[i]
		}
	}
	return st, chk.Err("conjugate gradients did not converge after %d iterations. residual = %g, tolerance = %g", maxit, st.Residual, rtol)
}

// SolveMinRes solves the symmetric (possibly indefinite) system A x = b
// by the preconditioned minimum residual method. M must be symmetric
// positive definite and approximate A⁻¹; it may be nil. Exceeding maxit
// iterations is a fatal convergence error.
func SolveMinRes(A, M Operator, x, b la.Vector, rtol float64, maxit int) (st SolveStats, err error) {
	n := len(b)
	r1 := la.NewVector(n)
	r2 := la.NewVector(n)
	y := la.NewVector(n)
	v := la.NewVector(n)
	w := la.NewVector(n)
	w1 := la.NewVector(n)
	w2 := la.NewVector(n)

	// r1 = b - A x
	A.Apply(r1, x)
	for i := 0; i < n; i++ {
		r1[i] = b[i] - r1[i]
	}
	applyPrec(M, y, r1)
	β1sq := la.VecDot(r1, y)
	if β1sq < 0 {
		return st, chk.Err("minres preconditioner is not positive definite (r.My = %g)", β1sq)
	}
	β1 := math.Sqrt(β1sq)
	if β1 == 0 {
		return
	}
	copy(r2, r1)

	// Lanczos recurrence with on-the-fly Givens rotations
	var oldb, β, dbar, epsln, oldeps, δ, gbar, γ, cs, sn, φ, φbar float64
	β = β1
	φbar = β1
	cs = -1.0
	for st.Iterations = 1; st.Iterations <= maxit; st.Iterations++ {
		s := 1.0 / β
		for i := 0; i < n; i++ {
			v[i] = s * y[i]
		}
		A.Apply(y, v)
		if st.Iterations >= 2 {
			c := β / oldb
			for i := 0; i < n; i++ {
				y[i] -= c * r1[i]
			}
		}
		alfa := la.VecDot(v, y)
		c := alfa / β
		for i := 0; i < n; i++ {
			y[i] -= c * r2[i]
		}
		copy(r1, r2)
		copy(r2, y)
		applyPrec(M, y, r2)
		oldb = β
		βsq := la.VecDot(r2, y)
		if βsq < 0 {
			return st, chk.Err("minres preconditioner is not positive definite (r.My = %g)", βsq)
		}
		β = math.Sqrt(βsq)

		oldeps = epsln
		δ = cs*dbar + sn*alfa
		gbar = sn*dbar - cs*alfa
		epsln = sn * β
		dbar = -cs * β
		γ = math.Sqrt(gbar*gbar + β*β)
		if γ < 1e-300 {
			γ = 1e-300
		}
		cs = gbar / γ
		sn = β / γ
		φ = cs * φbar
		φbar = sn * φbar

		copy(w1, w2)
		copy(w2, w)
		for i := 0; i < n; i++ {
			w[i] = (v[i] - oldeps*w1[i] - δ*w2[i]) / γ
			x[i] += φ * w[i]
		}

		st.Residual = φbar / β1
		if st.Residual < rtol {
			return
		}
	}
	return st, chk.Err("minres did not converge after %d iterations. residual = %g, tolerance = %g", maxit, st.Residual, rtol)
}

// applyPrec applies the preconditioner or copies when there is none
func applyPrec(M Operator, z, r la.Vector) {
	if M == nil {
		copy(z, r)
		return
	}
	M.Apply(z, r)
}

// JacobiPrec builds a diagonal preconditioner from the inverse of the
// given diagonal. Zero diagonal entries pass through unscaled.
func JacobiPrec(diag la.Vector) Operator {
	inv := la.NewVector(len(diag))
	for i, d := range diag {
		if d != 0 {
			inv[i] = 1.0 / d
		} else {
			inv[i] = 1.0
		}
	}
	return OpFunc(func(z, r la.Vector) {
		for i := range r {
			z[i] = inv[i] * r[i]
		}
	})
}
