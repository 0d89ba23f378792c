// Copyright 2017 The OpenIFEM Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"github.com/cpmech/gosl/la"
	"github.com/cpmech/gosl/mpi"
)

// Comm wraps the message passing communicator so that serial runs
// (message passing not started) short-circuit every collective.
type Comm struct {
	mpi *mpi.Communicator
}

// NewComm returns a wrapper; pass nil for serial runs
func NewComm(c *mpi.Communicator) *Comm {
	return &Comm{mpi: c}
}

// Active reports whether more than one processor participates
func (o *Comm) Active() bool {
	return o.mpi != nil && o.mpi.Size() > 1
}

// Rank returns this processor's rank (0 in serial runs)
func (o *Comm) Rank() int {
	if o.mpi == nil {
		return 0
	}
	return o.mpi.Rank()
}

// Size returns the number of processors (1 in serial runs)
func (o *Comm) Size() int {
	if o.mpi == nil {
		return 1
	}
	return o.mpi.Size()
}

// Root reports whether this is the coordinating processor
func (o *Comm) Root() bool { return o.Rank() == 0 }

// JoinSum sums the partial vectors of all processors into dest
func (o *Comm) JoinSum(dest, orig la.Vector) {
	if !o.Active() {
		copy(dest, orig)
		return
	}
	o.mpi.AllReduceSum(dest, orig)
}

// SumScalar returns the sum of x over all processors
func (o *Comm) SumScalar(x float64) float64 {
	if !o.Active() {
		return x
	}
	dest := make([]float64, 1)
	o.mpi.AllReduceSum(dest, []float64{x})
	return dest[0]
}

// MaxScalar returns the maximum of x over all processors
func (o *Comm) MaxScalar(x float64) float64 {
	if !o.Active() {
		return x
	}
	dest := make([]float64, 1)
	o.mpi.AllReduceMax(dest, []float64{x})
	return dest[0]
}

// MinScalar returns the minimum of x over all processors
func (o *Comm) MinScalar(x float64) float64 {
	if !o.Active() {
		return x
	}
	dest := make([]float64, 1)
	o.mpi.AllReduceMin(dest, []float64{x})
	return dest[0]
}

// MaxInt returns the maximum of i over all processors
func (o *Comm) MaxInt(i int) int {
	if !o.Active() {
		return i
	}
	dest := make([]int, 1)
	o.mpi.AllReduceMaxI(dest, []int{i})
	return dest[0]
}

// Send transfers a buffer to another processor
func (o *Comm) Send(vals []float64, to int) {
	if o.Active() {
		o.mpi.Send(vals, to)
	}
}

// Recv receives a buffer from another processor
func (o *Comm) Recv(vals []float64, from int) {
	if o.Active() {
		o.mpi.Recv(vals, from)
	}
}

// Barrier synchronizes all processors
func (o *Comm) Barrier() {
	if o.Active() {
		o.mpi.Barrier()
	}
}
