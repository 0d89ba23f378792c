// Copyright 2017 The OpenIFEM Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"math"
	"sort"

	"github.com/cpmech/gosl/io"

	"github.com/shenchen0414/OpenIFEM/inp"
)

// adaptivity controls
const (
	MaxRefineLevel = 3    // maximum subdivision depth
	RefineFrac     = 0.3  // fraction of cells refined per adaptation
	CoarsenFrac    = 0.05 // fraction of cells considered for coarsening
	geomTol        = 1e-9 // geometric coincidence tolerance
)

// qcell is one node of the refinement forest. Leaves are the active
// cells of the current solid mesh.
type qcell struct {
	tag      int            // material region, inherited from the root
	level    int
	x        [4][2]float64  // corner coordinates
	ftags    [4]int         // boundary face tags, inherited on outer faces
	children *[4]*qcell     // nil for leaves
	parent   *qcell

	mark int // -1 coarsen, 0 keep, +1 refine
}

// Forest is the quadtree refinement hierarchy over the initial solid
// mesh. The active mesh is rebuilt from the leaves after every
// adaptation; refinement keeps a 2:1 level balance between edge
// neighbors so hanging vertices have exactly two masters.
type Forest struct {
	roots []*qcell
}

// NewForest roots the forest at the cells of the initial mesh
func NewForest(msh *inp.Mesh) (o *Forest) {
	o = &Forest{}
	for _, c := range msh.Cells {
		q := &qcell{tag: c.Tag}
		for n, vid := range c.Verts {
			q.x[n][0] = msh.Verts[vid].C[0]
			q.x[n][1] = msh.Verts[vid].C[1]
		}
		for f := 0; f < 4 && f < len(c.FTags); f++ {
			q.ftags[f] = c.FTags[f]
		}
		o.roots = append(o.roots, q)
	}
	return
}

// Leaves lists the active cells in stable depth-first order
func (o *Forest) Leaves() (leaves []*qcell) {
	var walk func(q *qcell)
	walk = func(q *qcell) {
		if q.children == nil {
			leaves = append(leaves, q)
			return
		}
		for _, ch := range q.children {
			walk(ch)
		}
	}
	for _, r := range o.roots {
		walk(r)
	}
	return
}

// split subdivides a leaf into four children by bilinear subdivision
func (q *qcell) split() {
	mid := func(a, b [2]float64) [2]float64 {
		return [2]float64{0.5 * (a[0] + b[0]), 0.5 * (a[1] + b[1])}
	}
	m01 := mid(q.x[0], q.x[1])
	m12 := mid(q.x[1], q.x[2])
	m23 := mid(q.x[2], q.x[3])
	m30 := mid(q.x[3], q.x[0])
	ctr := [2]float64{
		0.25 * (q.x[0][0] + q.x[1][0] + q.x[2][0] + q.x[3][0]),
		0.25 * (q.x[0][1] + q.x[1][1] + q.x[2][1] + q.x[3][1]),
	}
	corners := [4][4][2]float64{
		{q.x[0], m01, ctr, m30},
		{m01, q.x[1], m12, ctr},
		{ctr, m12, q.x[2], m23},
		{m30, ctr, m23, q.x[3]},
	}
	var ch [4]*qcell
	for c := 0; c < 4; c++ {
		ch[c] = &qcell{tag: q.tag, level: q.level + 1, x: corners[c], parent: q}
		// outer faces c and (c+3)%4 inherit the parent's boundary tags
		ch[c].ftags[c] = q.ftags[c]
		ch[c].ftags[(c+3)%4] = q.ftags[(c+3)%4]
	}
	q.children = &ch
}

// merge collapses the four children of a cell back into it
func (q *qcell) merge() {
	q.children = nil
}

// edge returns the endpoints of a local face
func (q *qcell) edge(f int) (a, b [2]float64) {
	return q.x[f], q.x[(f+1)%4]
}

// neighbors reports whether two leaves share an edge portion of
// positive length
func leavesAdjacent(p, q *qcell) bool {
	for fp := 0; fp < 4; fp++ {
		a1, b1 := p.edge(fp)
		for fq := 0; fq < 4; fq++ {
			a2, b2 := q.edge(fq)
			if segOverlap(a1, b1, a2, b2) {
				return true
			}
		}
	}
	return false
}

// segOverlap reports whether two collinear segments overlap over a
// positive length
func segOverlap(a1, b1, a2, b2 [2]float64) bool {
	d1 := [2]float64{b1[0] - a1[0], b1[1] - a1[1]}
	l1 := math.Hypot(d1[0], d1[1])
	if l1 < geomTol {
		return false
	}
	cross := func(p [2]float64) float64 {
		return d1[0]*(p[1]-a1[1]) - d1[1]*(p[0]-a1[0])
	}
	if math.Abs(cross(a2)) > geomTol*l1 || math.Abs(cross(b2)) > geomTol*l1 {
		return false
	}
	dot := func(p [2]float64) float64 {
		return (d1[0]*(p[0]-a1[0]) + d1[1]*(p[1]-a1[1])) / l1
	}
	t1, t2 := dot(a2), dot(b2)
	if t1 > t2 {
		t1, t2 = t2, t1
	}
	lo := math.Max(0, t1)
	hi := math.Min(l1, t2)
	return hi-lo > geomTol+geomTol*l1
}

// Adapt marks the worst fraction of leaves for refinement and the best
// fraction for coarsening, enforces the 2:1 balance, and carries out
// the changes. η holds one estimate per leaf in Leaves() order.
// Reports whether the forest changed.
func (o *Forest) Adapt(η []float64) bool {
	leaves := o.Leaves()
	n := len(leaves)
	if n == 0 || len(η) != n {
		return false
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return η[order[a]] > η[order[b]] })

	for _, lf := range leaves {
		lf.mark = 0
	}
	nref := int(RefineFrac * float64(n))
	for _, i := range order[:nref] {
		if leaves[i].level < MaxRefineLevel {
			leaves[i].mark = 1
		}
	}
	ncrs := int(CoarsenFrac * float64(n))
	for _, i := range order[n-ncrs:] {
		if leaves[i].level > 0 && leaves[i].mark == 0 {
			leaves[i].mark = -1
		}
	}

	// 2:1 balance: a refined cell may not border a neighbor more than
	// one level coarser
	for changed := true; changed; {
		changed = false
		for _, p := range leaves {
			if p.mark != 1 {
				continue
			}
			for _, q := range leaves {
				if q == p || q.level >= p.level || q.mark == 1 {
					continue
				}
				if leavesAdjacent(p, q) {
					q.mark = 1
					changed = true
				}
			}
		}
	}

	// coarsen only complete sibling groups whose removal keeps balance
	didSomething := false
	byParent := make(map[*qcell]int)
	for _, lf := range leaves {
		if lf.mark == -1 && lf.parent != nil {
			byParent[lf.parent]++
		}
	}
	for par, cnt := range byParent {
		if cnt != 4 {
			continue
		}
		ok := true
		for _, ch := range par.children {
			if ch.children != nil || ch.mark == 1 {
				ok = false
			}
		}
		if !ok {
			continue
		}
		// the merged cell may not border leaves two levels deeper
		for _, q := range leaves {
			if q.parent == par || q.level <= par.level+1 {
				continue
			}
			for _, ch := range par.children {
				if leavesAdjacent(ch, q) {
					ok = false
				}
			}
		}
		if ok {
			par.merge()
			didSomething = true
		}
	}

	for _, lf := range leaves {
		if lf.mark == 1 && lf.children == nil {
			lf.split()
			didSomething = true
		}
	}
	return didSomething
}

// BuildMesh assembles the active mesh from the leaves, deduplicating
// shared vertices by coordinates
func (o *Forest) BuildMesh() (msh *inp.Mesh) {
	msh = &inp.Mesh{Ndim: 2}
	key := func(p [2]float64) string {
		return io.Sf("%.9f_%.9f", p[0], p[1])
	}
	vids := make(map[string]int)
	for _, lf := range o.Leaves() {
		cell := &inp.Cell{Id: len(msh.Cells), Tag: lf.tag, Type: "qua4", Level: lf.level}
		for n := 0; n < 4; n++ {
			k := key(lf.x[n])
			vid, ok := vids[k]
			if !ok {
				vid = len(msh.Verts)
				vids[k] = vid
				msh.Verts = append(msh.Verts, &inp.Vert{Id: vid, C: []float64{lf.x[n][0], lf.x[n][1]}})
			}
			cell.Verts = append(cell.Verts, vid)
		}
		cell.FTags = []int{lf.ftags[0], lf.ftags[1], lf.ftags[2], lf.ftags[3]}
		msh.Cells = append(msh.Cells, cell)
	}
	return
}

// HangingVertex is one vertex sitting on the midpoint of a coarser
// neighbor's edge; its value is the mean of the two masters
type HangingVertex struct {
	Slave   int
	Masters [2]int
}

// HangingVertices finds the hanging vertices of a mesh built from the
// forest: a vertex coinciding with the midpoint of another cell's edge
// without belonging to that cell
func (o *Forest) HangingVertices(msh *inp.Mesh) (res []HangingVertex) {
	key := func(x, y float64) string { return io.Sf("%.9f_%.9f", x, y) }
	byPos := make(map[string]int)
	for _, v := range msh.Verts {
		byPos[key(v.C[0], v.C[1])] = v.Id
	}
	seen := make(map[int]bool)
	for _, c := range msh.Cells {
		for f := 0; f < 4; f++ {
			a := msh.Verts[c.Verts[f]]
			b := msh.Verts[c.Verts[(f+1)%4]]
			mx := 0.5 * (a.C[0] + b.C[0])
			my := 0.5 * (a.C[1] + b.C[1])
			mid, ok := byPos[key(mx, my)]
			if !ok || seen[mid] {
				continue
			}
			// the midpoint vertex belongs to finer neighbors, not to
			// this cell: it hangs on this edge
			isOwn := false
			for _, vid := range c.Verts {
				if vid == mid {
					isOwn = true
				}
			}
			if isOwn {
				continue
			}
			seen[mid] = true
			res = append(res, HangingVertex{Slave: mid, Masters: [2]int{a.Id, b.Id}})
		}
	}
	return
}
