// Copyright 2017 The OpenIFEM Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"github.com/shenchen0414/OpenIFEM/inp"
	"github.com/shenchen0414/OpenIFEM/shp"
)

// locTol is the natural-coordinate tolerance for point location
const locTol = 1e-8

// Locator finds the cell containing a point, with an optional nodal
// displacement applied to the mesh, and interpolates nodal fields there.
// A bounding box per cell filters candidates before the inverse mapping.
type Locator struct {
	msh    *inp.Mesh
	coords [][]float64   // [nverts][ndim] possibly displaced coordinates
	shapes []*shp.Shape  // [ncells]
	xcell  [][][]float64 // [ncells][ndim][cellnverts]
	bboxes [][4]float64  // [ncells] {xmin, xmax, ymin, ymax}
}

// NewLocator builds a locator over the mesh. The offset callback, when
// not nil, returns the displacement of a vertex; the locator then works
// on the displaced geometry.
func NewLocator(msh *inp.Mesh, offset func(vertId int) []float64) (o *Locator) {
	o = &Locator{msh: msh}
	o.coords = make([][]float64, len(msh.Verts))
	for _, v := range msh.Verts {
		c := make([]float64, msh.Ndim)
		copy(c, v.C[:msh.Ndim])
		if offset != nil {
			u := offset(v.Id)
			for i := 0; i < msh.Ndim; i++ {
				c[i] += u[i]
			}
		}
		o.coords[v.Id] = c
	}
	o.shapes = make([]*shp.Shape, len(msh.Cells))
	o.xcell = make([][][]float64, len(msh.Cells))
	o.bboxes = make([][4]float64, len(msh.Cells))
	for _, c := range msh.Cells {
		s := shp.Get(c.Type)
		o.shapes[c.Id] = s
		x := make([][]float64, msh.Ndim)
		for i := 0; i < msh.Ndim; i++ {
			x[i] = make([]float64, len(c.Verts))
		}
		bb := [4]float64{o.coords[c.Verts[0]][0], o.coords[c.Verts[0]][0], o.coords[c.Verts[0]][1], o.coords[c.Verts[0]][1]}
		for n, vid := range c.Verts {
			for i := 0; i < msh.Ndim; i++ {
				x[i][n] = o.coords[vid][i]
			}
			if o.coords[vid][0] < bb[0] {
				bb[0] = o.coords[vid][0]
			}
			if o.coords[vid][0] > bb[1] {
				bb[1] = o.coords[vid][0]
			}
			if o.coords[vid][1] < bb[2] {
				bb[2] = o.coords[vid][1]
			}
			if o.coords[vid][1] > bb[3] {
				bb[3] = o.coords[vid][1]
			}
		}
		o.xcell[c.Id] = x
		o.bboxes[c.Id] = bb
	}
	return
}

// Locate finds the cell containing point y and fills r with its natural
// coordinates there. Returns -1 when no cell contains the point.
func (o *Locator) Locate(r, y []float64) (cellId int) {
	tol := locTol
	for _, c := range o.msh.Cells {
		bb := o.bboxes[c.Id]
		pad := 1e-10 + tol*(bb[1]-bb[0])
		if y[0] < bb[0]-pad || y[0] > bb[1]+pad || y[1] < bb[2]-pad || y[1] > bb[3]+pad {
			continue
		}
		s := o.shapes[c.Id]
		if err := s.InvMap(r, y, o.xcell[c.Id]); err != nil {
			continue
		}
		if s.Contains(r, tol) {
			return c.Id
		}
	}
	return -1
}

// Contains reports whether the (possibly displaced) mesh contains point y
func (o *Locator) Contains(y []float64) bool {
	r := make([]float64, 3)
	return o.Locate(r, y) >= 0
}

// Interp evaluates nodal values at natural coordinates r of a cell.
// vals returns the nodal value of one vertex.
func (o *Locator) Interp(cellId int, r []float64, vals func(vertId int) float64) float64 {
	s := o.shapes[cellId]
	s.Func(s.S, s.DSdR, r, false)
	res := 0.0
	for n, vid := range o.msh.Cells[cellId].Verts {
		res += s.S[n] * vals(vid)
	}
	return res
}
