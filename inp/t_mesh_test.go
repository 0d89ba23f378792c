// Copyright 2017 The OpenIFEM Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/cpmech/gosl/chk"
)

func TestMesh01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("mesh01. structured generation")

	msh := GenQuadMesh(2, 1, 4, 2)
	chk.Ints(tst, "nverts", []int{len(msh.Verts)}, []int{15})
	chk.Ints(tst, "ncells", []int{len(msh.Cells)}, []int{8})
	if err := msh.CheckIds(); err != nil {
		tst.Errorf("CheckIds failed:\n%v", err)
		return
	}

	// counter clockwise connectivity
	x := msh.ExtractCellCoords(0)
	chk.Float64(tst, "x0", 1e-15, x[0][0], 0.0)
	chk.Float64(tst, "x1", 1e-15, x[0][1], 0.5)
	chk.Float64(tst, "y2", 1e-15, x[1][2], 0.5)

	c := msh.CellCentre(0)
	chk.Float64(tst, "centre x", 1e-15, c[0], 0.25)
	chk.Float64(tst, "centre y", 1e-15, c[1], 0.25)

	// 12 boundary faces on a 4x2 grid
	chk.Ints(tst, "boundary faces", []int{len(msh.BoundaryFaces())}, []int{12})

	// qua8 upgrade shares midside vertices
	m8 := GenQuad8Mesh(2, 1, 4, 2)
	chk.Ints(tst, "qua8 nverts", []int{len(m8.Verts)}, []int{15 + 22})
	for _, cell := range m8.Cells {
		chk.Ints(tst, "qua8 nverts per cell", []int{len(cell.Verts)}, []int{8})
	}
}

func TestMesh02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("mesh02. face tagging and file round trip")

	msh := GenQuadMesh(1, 1, 2, 2)
	msh.TagBoundaryFaces(func(c []float64) int {
		if c[0] < 1e-12 {
			return 7
		}
		return 0
	})
	n7 := 0
	for _, fr := range msh.BoundaryFaces() {
		if fr.Tag == 7 {
			n7++
		}
	}
	chk.Ints(tst, "tagged faces", []int{n7}, []int{2})

	// write and read back
	dir := tst.TempDir()
	fn := filepath.Join(dir, "square.msh")
	b, err := json.Marshal(msh)
	if err != nil {
		tst.Errorf("marshal failed:\n%v", err)
		return
	}
	if err := os.WriteFile(fn, b, 0644); err != nil {
		tst.Errorf("write failed:\n%v", err)
		return
	}
	rd, err := ReadMsh(fn)
	if err != nil {
		tst.Errorf("ReadMsh failed:\n%v", err)
		return
	}
	chk.Ints(tst, "ndim", []int{rd.Ndim}, []int{2})
	chk.Ints(tst, "nverts", []int{len(rd.Verts)}, []int{9})
	chk.Float64(tst, "coordinate", 1e-15, rd.Verts[4].C[0], msh.Verts[4].C[0])

	// missing file
	if _, err := ReadMsh(filepath.Join(dir, "absent.msh")); err == nil {
		tst.Errorf("missing mesh file must be an error\n")
	}
}
