// Copyright 2017 The OpenIFEM Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package part distributes cells and degrees of freedom among processors.
// Cells are split into contiguous blocks; a degree of freedom is owned by
// the lowest rank whose cells reference it.
package part

// Layout holds the cell distribution of one processor
type Layout struct {
	Nproc    int   // number of processors
	Rank     int   // this processor
	Ncells   int   // total number of cells
	CellRank []int // [ncells] owner rank of each cell
	Owned    []int // cells owned by this processor
}

// NewLayout splits ncells into nproc contiguous blocks. The first
// ncells mod nproc blocks get one extra cell.
func NewLayout(ncells, nproc, rank int) (o *Layout) {
	o = &Layout{Nproc: nproc, Rank: rank, Ncells: ncells}
	o.CellRank = make([]int, ncells)
	base := ncells / nproc
	rem := ncells % nproc
	start := 0
	for r := 0; r < nproc; r++ {
		n := base
		if r < rem {
			n++
		}
		for i := start; i < start+n; i++ {
			o.CellRank[i] = r
		}
		if r == rank {
			o.Owned = make([]int, n)
			for i := 0; i < n; i++ {
				o.Owned[i] = start + i
			}
		}
		start += n
	}
	return
}

// OwnsCell reports whether this processor owns cell id
func (o *Layout) OwnsCell(id int) bool {
	return o.CellRank[id] == o.Rank
}

// IndexSet records which degrees of freedom this processor owns.
// A dof touched by cells of several ranks is owned by the lowest one.
type IndexSet struct {
	Ndof    int
	DofRank []int // [ndof] owner rank; -1 for unused dofs
}

// NewIndexSet computes dof ownership from the cell-to-dof map
func NewIndexSet(ndof int, layout *Layout, cellDofs [][]int) (o *IndexSet) {
	o = &IndexSet{Ndof: ndof}
	o.DofRank = make([]int, ndof)
	for i := range o.DofRank {
		o.DofRank[i] = -1
	}
	for c, dofs := range cellDofs {
		r := layout.CellRank[c]
		for _, I := range dofs {
			if o.DofRank[I] < 0 || r < o.DofRank[I] {
				o.DofRank[I] = r
			}
		}
	}
	return
}

// Owns reports whether rank owns dof I
func (o *IndexSet) Owns(I, rank int) bool {
	return o.DofRank[I] == rank
}

// NumOwned counts the dofs owned by rank
func (o *IndexSet) NumOwned(rank int) (n int) {
	for _, r := range o.DofRank {
		if r == rank {
			n++
		}
	}
	return
}
