// Copyright 2017 The OpenIFEM Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"encoding/json"
	"os"

	"github.com/cpmech/gosl/chk"
)

// Vert holds vertex data
type Vert struct {
	Id  int       `json:"i"` // id
	Tag int       `json:"t"` // tag
	C   []float64 `json:"c"` // coordinates
}

// Cell holds cell data
type Cell struct {
	Id    int    `json:"i"`    // id
	Tag   int    `json:"t"`    // tag; corresponds to material region
	Type  string `json:"type"` // geometry type: "qua4" or "qua8"
	Verts []int  `json:"verts"` // vertices
	FTags []int  `json:"ftags"` // face tags; 0 means untagged
	Level int    `json:"-"`     // refinement level
}

// Mesh holds a mesh. One instance describes either the solid sub-mesh or the
// shared Eulerian mesh, depending on who reads it.
type Mesh struct {
	Ndim  int     `json:"ndim"`  // space dimension
	Verts []*Vert `json:"verts"` // vertices
	Cells []*Cell `json:"cells"` // cells
}

// edgeLocalVerts holds the local corner vertices of each face of a
// quadrilateral. qua8 cells append one midside vertex per face.
var edgeLocalVerts = [][]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}}

// ReadMsh reads a mesh file
func ReadMsh(fn string) (o *Mesh, err error) {
	b, err := os.ReadFile(fn)
	if err != nil {
		return nil, chk.Err("cannot read mesh file %q:\n%v", fn, err)
	}
	o = new(Mesh)
	err = json.Unmarshal(b, o)
	if err != nil {
		return nil, chk.Err("cannot decode mesh file %q:\n%v", fn, err)
	}
	err = o.CheckIds()
	if err != nil {
		return nil, err
	}
	return
}

// CheckIds verifies that vertex and cell ids equal their positions
func (o *Mesh) CheckIds() (err error) {
	for i, v := range o.Verts {
		if v.Id != i {
			return chk.Err("vertex ids must coincide with positions in the list. %d != %d", v.Id, i)
		}
	}
	for i, c := range o.Cells {
		if c.Id != i {
			return chk.Err("cell ids must coincide with positions in the list. %d != %d", c.Id, i)
		}
	}
	return
}

// ExtractCellCoords returns the coordinates matrix x[ndim][nverts] of a cell
func (o *Mesh) ExtractCellCoords(cellId int) (x [][]float64) {
	c := o.Cells[cellId]
	x = make([][]float64, o.Ndim)
	for i := 0; i < o.Ndim; i++ {
		x[i] = make([]float64, len(c.Verts))
		for j, v := range c.Verts {
			x[i][j] = o.Verts[v].C[i]
		}
	}
	return
}

// CellCentre returns the average of the corner coordinates of a cell
func (o *Mesh) CellCentre(cellId int) (c []float64) {
	cell := o.Cells[cellId]
	c = make([]float64, o.Ndim)
	for _, v := range cell.Verts[:4] {
		for i := 0; i < o.Ndim; i++ {
			c[i] += o.Verts[v].C[i] / 4.0
		}
	}
	return
}

// FaceRef refers to one face of one cell
type FaceRef struct {
	Cell int // cell id
	Face int // local face index
	Tag  int // face tag
}

// BoundaryFaces returns the faces used by exactly one cell
func (o *Mesh) BoundaryFaces() (faces []FaceRef) {
	type fkey struct{ a, b int }
	count := make(map[fkey]int)
	mk := func(c *Cell, f int) fkey {
		a := c.Verts[edgeLocalVerts[f][0]]
		b := c.Verts[edgeLocalVerts[f][1]]
		if a > b {
			a, b = b, a
		}
		return fkey{a, b}
	}
	for _, c := range o.Cells {
		for f := 0; f < len(edgeLocalVerts); f++ {
			count[mk(c, f)]++
		}
	}
	for _, c := range o.Cells {
		for f := 0; f < len(edgeLocalVerts); f++ {
			if count[mk(c, f)] == 1 {
				tag := 0
				if f < len(c.FTags) {
					tag = c.FTags[f]
				}
				faces = append(faces, FaceRef{c.Id, f, tag})
			}
		}
	}
	return
}

// FaceCentre returns the centre of a face of a cell
func (o *Mesh) FaceCentre(cellId, face int) (c []float64) {
	cell := o.Cells[cellId]
	a := o.Verts[cell.Verts[edgeLocalVerts[face][0]]].C
	b := o.Verts[cell.Verts[edgeLocalVerts[face][1]]].C
	c = make([]float64, o.Ndim)
	for i := 0; i < o.Ndim; i++ {
		c[i] = 0.5 * (a[i] + b[i])
	}
	return
}

// TagBoundaryFaces sets face tags of all boundary faces from their centre
// coordinates. Used when the mesh file does not carry face tags; e.g. the
// shared Eulerian mesh whose sides are classified by position.
func (o *Mesh) TagBoundaryFaces(classify func(centre []float64) int) {
	for _, fr := range o.BoundaryFaces() {
		c := o.Cells[fr.Cell]
		for len(c.FTags) < 4 {
			c.FTags = append(c.FTags, 0)
		}
		c.FTags[fr.Face] = classify(o.FaceCentre(fr.Cell, fr.Face))
	}
}

// GenQuadMesh generates a structured mesh of qua4 cells over the rectangle
// [0,lx] x [0,ly] with nx by ny cells
func GenQuadMesh(lx, ly float64, nx, ny int) (o *Mesh) {
	o = &Mesh{Ndim: 2}
	dx, dy := lx/float64(nx), ly/float64(ny)
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			o.Verts = append(o.Verts, &Vert{Id: len(o.Verts), C: []float64{float64(i) * dx, float64(j) * dy}})
		}
	}
	nvx := nx + 1
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			v0 := j*nvx + i
			o.Cells = append(o.Cells, &Cell{
				Id:    len(o.Cells),
				Tag:   1,
				Type:  "qua4",
				Verts: []int{v0, v0 + 1, v0 + 1 + nvx, v0 + nvx},
				FTags: []int{0, 0, 0, 0},
			})
		}
	}
	return
}

// GenQuad8Mesh generates a structured mesh of qua8 cells (corner plus
// midside vertices) over [0,lx] x [0,ly] with nx by ny cells. Corner
// vertices come first so that a lower-order space can use their subset.
func GenQuad8Mesh(lx, ly float64, nx, ny int) (o *Mesh) {
	o = GenQuadMesh(lx, ly, nx, ny)
	type ekey struct{ a, b int }
	mids := make(map[ekey]int)
	midOf := func(a, b int) int {
		if a > b {
			a, b = b, a
		}
		k := ekey{a, b}
		if id, ok := mids[k]; ok {
			return id
		}
		va, vb := o.Verts[a], o.Verts[b]
		id := len(o.Verts)
		o.Verts = append(o.Verts, &Vert{Id: id, C: []float64{
			0.5 * (va.C[0] + vb.C[0]),
			0.5 * (va.C[1] + vb.C[1]),
		}})
		mids[k] = id
		return id
	}
	for _, c := range o.Cells {
		c.Type = "qua8"
		v := c.Verts
		c.Verts = []int{v[0], v[1], v[2], v[3],
			midOf(v[0], v[1]), midOf(v[1], v[2]), midOf(v[2], v[3]), midOf(v[3], v[0])}
	}
	return
}
