// Copyright 2017 The OpenIFEM Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

// Nsig is the number of independent stress components in 2D plane strain
const Nsig = 3

// CellRecord caches the coupling state of one cell of the shared mesh:
// the fluid/solid indicator, the interface traction at each face, the
// solid acceleration and the solid stress components. It is written by
// one solver and read by the other, never shared by reference.
type CellRecord struct {
	Ind      float64     // indicator: 0 = fluid, 1 = solid
	Traction [][]float64 // [nfaces][ndim] interface traction per face
	Acc      []float64   // [ndim] solid acceleration
	Stress   []float64   // [Nsig] solid stress components {σxx, σyy, σxy}
}

// CellStore is the arena of coupling records, keyed by stable cell id.
// After any change of mesh topology the whole arena must be rebuilt;
// records from a previous mesh generation must never be read.
type CellStore struct {
	ndim   int
	nfaces int
	recs   map[int]*CellRecord
}

// NewCellStore returns an empty arena
func NewCellStore(ndim, nfaces int) *CellStore {
	return &CellStore{ndim: ndim, nfaces: nfaces, recs: make(map[int]*CellRecord)}
}

// Get returns the record of a cell, creating a zero-initialized one on
// first access
func (o *CellStore) Get(cellId int) *CellRecord {
	r, ok := o.recs[cellId]
	if !ok {
		r = &CellRecord{
			Traction: make([][]float64, o.nfaces),
			Acc:      make([]float64, o.ndim),
			Stress:   make([]float64, Nsig),
		}
		for f := 0; f < o.nfaces; f++ {
			r.Traction[f] = make([]float64, o.ndim)
		}
		o.recs[cellId] = r
	}
	return r
}

// Len returns the number of active records
func (o *CellStore) Len() int { return len(o.recs) }

// Rebuild discards every record. Called after a remesh so that stale
// records cannot leak into the next solve.
func (o *CellStore) Rebuild() {
	o.recs = make(map[int]*CellRecord)
}
