// Copyright 2017 The OpenIFEM Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/la"
)

// denseOp wraps a small dense matrix as an Operator
func denseOp(a [][]float64) Operator {
	return OpFunc(func(y, x la.Vector) {
		for i := range a {
			y[i] = 0
			for j := range a[i] {
				y[i] += a[i][j] * x[j]
			}
		}
	})
}

func TestKrylov01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("krylov01. conjugate gradients on a positive definite system")

	a := [][]float64{
		{4, 1, 0},
		{1, 3, 1},
		{0, 1, 2},
	}
	xref := la.Vector{1, -2, 3}
	b := la.NewVector(3)
	denseOp(a).Apply(b, xref)

	x := la.NewVector(3)
	st, err := SolveCG(denseOp(a), nil, x, b, 1e-12, 100)
	if err != nil {
		tst.Errorf("SolveCG failed:\n%v", err)
		return
	}
	io.Pf("iterations = %d, residual = %g\n", st.Iterations, st.Residual)
	for i := range xref {
		chk.Float64(tst, io.Sf("x%d", i), 1e-10, x[i], xref[i])
	}

	// the diagonal preconditioner must not change the answer
	diag := la.Vector{4, 3, 2}
	x.Fill(0)
	if _, err = SolveCG(denseOp(a), JacobiPrec(diag), x, b, 1e-12, 100); err != nil {
		tst.Errorf("preconditioned SolveCG failed:\n%v", err)
		return
	}
	for i := range xref {
		chk.Float64(tst, io.Sf("x%d (prec)", i), 1e-10, x[i], xref[i])
	}
}

func TestKrylov02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("krylov02. conjugate gradients failure modes")

	// indefinite operator must be reported
	a := [][]float64{
		{1, 0},
		{0, -1},
	}
	x := la.NewVector(2)
	b := la.Vector{1, 1}
	if _, err := SolveCG(denseOp(a), nil, x, b, 1e-12, 100); err == nil {
		tst.Errorf("indefinite operator must break conjugate gradients\n")
	}

	// exceeding the iteration budget is an error
	spd := [][]float64{
		{4, 1, 0},
		{1, 3, 1},
		{0, 1, 2},
	}
	x3 := la.NewVector(3)
	b3 := la.Vector{1, 2, 3}
	if _, err := SolveCG(denseOp(spd), nil, x3, b3, 1e-14, 1); err == nil {
		tst.Errorf("exhausted iteration budget must be an error\n")
	}

	// zero right-hand side yields the zero solution immediately
	x3[0], x3[1], x3[2] = 9, 9, 9
	st, err := SolveCG(denseOp(spd), nil, x3, la.NewVector(3), 1e-12, 10)
	if err != nil {
		tst.Errorf("zero rhs failed:\n%v", err)
		return
	}
	chk.Ints(tst, "iterations", []int{st.Iterations}, []int{0})
	chk.Float64(tst, "x0", 1e-15, x3[0], 0)
}

func TestKrylov03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("krylov03. minimum residual on an indefinite system")

	// symmetric saddle-point like matrix (one negative eigenvalue)
	a := [][]float64{
		{2, 1, 0},
		{1, -1, 1},
		{0, 1, 3},
	}
	xref := la.Vector{0.5, 2, -1.5}
	b := la.NewVector(3)
	denseOp(a).Apply(b, xref)

	x := la.NewVector(3)
	st, err := SolveMinRes(denseOp(a), nil, x, b, 1e-12, 200)
	if err != nil {
		tst.Errorf("SolveMinRes failed:\n%v", err)
		return
	}
	io.Pf("iterations = %d, residual = %g\n", st.Iterations, st.Residual)
	for i := range xref {
		chk.Float64(tst, io.Sf("x%d", i), 1e-9, x[i], xref[i])
	}

	// with a positive definite diagonal preconditioner
	x.Fill(0)
	if _, err = SolveMinRes(denseOp(a), JacobiPrec(la.Vector{2, 1, 3}), x, b, 1e-12, 200); err != nil {
		tst.Errorf("preconditioned SolveMinRes failed:\n%v", err)
		return
	}
	for i := range xref {
		chk.Float64(tst, io.Sf("x%d (prec)", i), 1e-9, x[i], xref[i])
	}

	// exceeding the iteration budget is an error
	x.Fill(0)
	if _, err = SolveMinRes(denseOp(a), nil, x, b, 1e-14, 1); err == nil {
		tst.Errorf("exhausted iteration budget must be an error\n")
	}
}
