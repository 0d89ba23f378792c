// Copyright 2017 The OpenIFEM Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"github.com/cpmech/gosl/chk"
	"github.com/sirupsen/logrus"

	"github.com/shenchen0414/OpenIFEM/inp"
)

// Sable synchronizes with an external solid solver sharing the process
// group: mesh-size metadata and the step size travel by collective
// maximum reductions, liveness by a negated-or reduction, and the
// per-contact-map field buffers by matched point-to-point transfers.
type Sable struct {
	comm *Comm
	tm   *Time
	log  *logrus.Entry

	// external mesh metadata from the last synchronization
	NNodes int
	NElems int
}

// ContactMap is one buffer exchanged with a matched peer rank
type ContactMap struct {
	Peer int       // peer processor rank
	Data []float64 // stress/velocity payload
}

// NewSable returns the synchronization protocol bound to the clock
func NewSable(comm *Comm, tm *Time, verbose bool) *Sable {
	return &Sable{comm: comm, tm: tm, log: NewLogger(comm, "sable", verbose)}
}

// SyncCounts exchanges the external mesh's node and element counts.
// Both sides contribute their local knowledge; the maximum reduction
// leaves every processor with the external values.
func (o *Sable) SyncCounts(localNodes, localElems int) {
	o.NNodes = o.comm.MaxInt(localNodes)
	o.NElems = o.comm.MaxInt(localElems)
}

// Alive decides whether the coupled pair keeps running: any processor
// reporting inactive makes the collective result inactive
func (o *Sable) Alive(selfActive bool) bool {
	notActive := 0
	if !selfActive {
		notActive = 1
	}
	anyDown := o.comm.MaxInt(notActive)
	return anyDown == 0
}

// SyncDt obtains the coupling step size from the external side by a
// maximum reduction and applies it to the clock
func (o *Sable) SyncDt(localDt float64) float64 {
	Δt := o.comm.MaxScalar(localDt)
	o.tm.SetDt(Δt)
	return Δt
}

// RecRate is the per-cell payload of a field exchange: the indicator,
// three stress components and two acceleration components
const RecRate = 6

// Maps builds the contact maps of the matched pairing: processor r
// exchanges with processor size-1-r, one buffer of n float64 each way.
// Unpaired processors (serial runs, the middle rank of an odd group)
// get no map.
func (o *Sable) Maps(n int) []ContactMap {
	peer := o.comm.Size() - 1 - o.comm.Rank()
	if peer == o.comm.Rank() {
		return nil
	}
	return []ContactMap{{Peer: peer, Data: make([]float64, n)}}
}

// Exchange runs the matched buffer transfer of every contact map on
// the calling thread, completing the transfers in posted order. The
// lower rank of each pair sends first so the blocking calls cannot
// deadlock.
func (o *Sable) Exchange(send, recv []ContactMap) {
	for i := range send {
		if o.comm.Rank() < send[i].Peer {
			o.comm.Send(send[i].Data, send[i].Peer)
			o.comm.Recv(recv[i].Data, recv[i].Peer)
		} else {
			o.comm.Recv(recv[i].Data, recv[i].Peer)
			o.comm.Send(send[i].Data, send[i].Peer)
		}
	}
}

// InteriorCounts computes how many nodes and elements of a structured
// external mesh are interior, excluding the one-layer outer shell in
// 3D. 2D external meshes carry no ghost shell.
func InteriorCounts(ndim int, nodeDims, elemDims []int) (nodes, elems int) {
	nodes, elems = 1, 1
	for i := 0; i < ndim; i++ {
		nodes *= nodeDims[i]
		elems *= elemDims[i]
	}
	if ndim == 3 {
		nodes, elems = 1, 1
		for i := 0; i < ndim; i++ {
			nodes *= nodeDims[i] - 2
			elems *= elemDims[i] - 2
		}
	}
	return
}

// ValidateGhosts checks the structured interior classification against
// the local mesh. A mismatch means the assumed external layout does not
// match the actual topology and is fatal.
func (o *Sable) ValidateGhosts(msh *inp.Mesh, nodeDims, elemDims []int) error {
	nodes, elems := InteriorCounts(msh.Ndim, nodeDims, elemDims)
	if nodes != len(msh.Verts) || elems != len(msh.Cells) {
		return chk.Err("ghost classification mismatch: interior %d nodes / %d elements, local mesh has %d / %d",
			nodes, elems, len(msh.Verts), len(msh.Cells))
	}
	o.log.WithFields(logrus.Fields{"nodes": nodes, "elems": elems}).Debug("ghost classification validated")
	return nil
}
