// Copyright 2017 The OpenIFEM Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package part

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func TestLayout01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("layout01. block distribution of 10 cells over 3 procs")

	// 10 = 4 + 3 + 3
	l0 := NewLayout(10, 3, 0)
	l1 := NewLayout(10, 3, 1)
	l2 := NewLayout(10, 3, 2)
	chk.Ints(tst, "owned(0)", l0.Owned, []int{0, 1, 2, 3})
	chk.Ints(tst, "owned(1)", l1.Owned, []int{4, 5, 6})
	chk.Ints(tst, "owned(2)", l2.Owned, []int{7, 8, 9})
	chk.Ints(tst, "cellrank", l0.CellRank, []int{0, 0, 0, 0, 1, 1, 1, 2, 2, 2})

	// every cell owned by exactly one processor
	count := make([]int, 10)
	for _, l := range []*Layout{l0, l1, l2} {
		for _, c := range l.Owned {
			count[c]++
		}
	}
	chk.Ints(tst, "count", count, []int{1, 1, 1, 1, 1, 1, 1, 1, 1, 1})
	if !l1.OwnsCell(5) || l1.OwnsCell(3) {
		tst.Errorf("OwnsCell is wrong\n")
	}
}

func TestIndexSet01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("indexset01. shared dofs go to the lowest rank")

	// 3 cells in a row sharing dofs at the junctions:
	//   cell0: {0,1}  cell1: {1,2}  cell2: {2,3}
	cellDofs := [][]int{{0, 1}, {1, 2}, {2, 3}}
	layout := NewLayout(3, 3, 0)
	is := NewIndexSet(4, layout, cellDofs)
	chk.Ints(tst, "dofrank", is.DofRank, []int{0, 0, 1, 2})
	if !is.Owns(1, 0) || is.Owns(1, 1) {
		tst.Errorf("ownership of shared dof is wrong\n")
	}
	if is.NumOwned(0) != 2 || is.NumOwned(1) != 1 || is.NumOwned(2) != 1 {
		tst.Errorf("NumOwned is wrong\n")
	}
}
