// Copyright 2017 The OpenIFEM Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package shp implements the shape function and quadrature capability
// consumed by the solvers: given a cell and an integration rule, produce
// shape values, gradients and Jacobian-weighted quadrature weights.
package shp

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"gonum.org/v1/gonum/mat"
)

// constants
const (
	MINDET     = 1.0e-14 // minimum determinant allowed for dxdR
	INVMAP_TOL = 1.0e-10 // tolerance for inverse mapping
	INVMAP_NIT = 25      // maximum number of iterations for inverse mapping
)

// Ipoint holds integration point data: natural coordinates and weight,
// as in {r, s, t, w}
type Ipoint []float64

// ShpFunc is the shape functions callback
type ShpFunc func(S []float64, dSdR [][]float64, r []float64, derivs bool)

// Shape holds geometry data and a per-instance scratchpad
type Shape struct {

	// geometry
	Type           string  // name; e.g. "qua4"
	Gndim          int     // geometry dimension
	Nverts         int     // number of vertices
	FaceNverts     int     // number of vertices on each face
	FaceLocalVerts [][]int // face local vertices [nfaces][FaceNverts]
	Func           ShpFunc // shape/derivs callback
	FaceFunc       ShpFunc // face shape/derivs callback

	// scratchpad: volume
	S    []float64   // [nverts] shape functions
	DSdR [][]float64 // [nverts][gndim] derivatives of S w.r.t natural coordinates
	G    [][]float64 // [nverts][gndim] G == dSdx
	DxdR [][]float64 // [gndim][gndim]
	DRdx [][]float64 // [gndim][gndim] == inverse(DxdR)
	J    float64     // determinant of DxdR

	// scratchpad: face
	Sf     []float64   // [FaceNverts] face shape functions
	DSfdRf [][]float64 // [FaceNverts][gndim-1]
	DxfdRf [][]float64 // [gndim][gndim-1]
	Fnvec  []float64   // [gndim] face normal vector multiplied by face Jacobian
}

// Get returns a new Shape structure with its own scratchpad. Returns nil for
// unknown geometry types.
func Get(geoType string) (o *Shape) {
	switch geoType {
	case "qua4":
		o = &Shape{Type: "qua4", Gndim: 2, Nverts: 4, FaceNverts: 2,
			FaceLocalVerts: [][]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}},
			Func:           Qua4Func, FaceFunc: Lin2Func}
	case "qua8":
		o = &Shape{Type: "qua8", Gndim: 2, Nverts: 8, FaceNverts: 3,
			FaceLocalVerts: [][]int{{0, 1, 4}, {1, 2, 5}, {2, 3, 6}, {3, 0, 7}},
			Func:           Qua8Func, FaceFunc: Lin3Func}
	default:
		return nil
	}
	o.S = make([]float64, o.Nverts)
	o.DSdR = alloc(o.Nverts, o.Gndim)
	o.G = alloc(o.Nverts, o.Gndim)
	o.DxdR = alloc(o.Gndim, o.Gndim)
	o.DRdx = alloc(o.Gndim, o.Gndim)
	o.Sf = make([]float64, o.FaceNverts)
	o.DSfdRf = alloc(o.FaceNverts, o.Gndim-1)
	o.DxfdRf = alloc(o.Gndim, o.Gndim-1)
	o.Fnvec = make([]float64, o.Gndim)
	return
}

func alloc(m, n int) (res [][]float64) {
	res = make([][]float64, m)
	for i := 0; i < m; i++ {
		res[i] = make([]float64, n)
	}
	return
}

// CalcAtIp calculates S, G and J at the natural coordinates of ip
//  Input:
//   x[ndim][nverts] -- coordinates matrix of the cell
func (o *Shape) CalcAtIp(x [][]float64, ip Ipoint, derivs bool) (err error) {

	// S and dSdR
	o.Func(o.S, o.DSdR, ip, derivs)
	if !derivs {
		return
	}

	// dxdR := x * dSdR
	for i := 0; i < o.Gndim; i++ {
		for j := 0; j < o.Gndim; j++ {
			o.DxdR[i][j] = 0.0
			for n := 0; n < o.Nverts; n++ {
				o.DxdR[i][j] += x[i][n] * o.DSdR[n][j]
			}
		}
	}

	// dRdx := inv(dxdR)
	o.J = o.DxdR[0][0]*o.DxdR[1][1] - o.DxdR[0][1]*o.DxdR[1][0]
	if math.Abs(o.J) < MINDET {
		return chk.Err("cannot invert cell mapping. determinant %g is too small", o.J)
	}
	o.DRdx[0][0] = o.DxdR[1][1] / o.J
	o.DRdx[1][1] = o.DxdR[0][0] / o.J
	o.DRdx[0][1] = -o.DxdR[0][1] / o.J
	o.DRdx[1][0] = -o.DxdR[1][0] / o.J

	// G == dSdx := dSdR * dRdx
	for n := 0; n < o.Nverts; n++ {
		for j := 0; j < o.Gndim; j++ {
			o.G[n][j] = 0.0
			for k := 0; k < o.Gndim; k++ {
				o.G[n][j] += o.DSdR[n][k] * o.DRdx[k][j]
			}
		}
	}
	return
}

// CalcAtFaceIp calculates Sf and Fnvec at a face integration point
func (o *Shape) CalcAtFaceIp(x [][]float64, ipf Ipoint, idxface int) (err error) {
	o.FaceFunc(o.Sf, o.DSfdRf, ipf, true)

	// dxfdRf := xf * dSfdRf
	for i := 0; i < o.Gndim; i++ {
		for j := 0; j < o.Gndim-1; j++ {
			o.DxfdRf[i][j] = 0.0
			for k, n := range o.FaceLocalVerts[idxface] {
				o.DxfdRf[i][j] += x[i][n] * o.DSfdRf[k][j]
			}
		}
	}

	// face normal vector scaled by the face Jacobian
	o.Fnvec[0] = o.DxfdRf[1][0]
	o.Fnvec[1] = -o.DxfdRf[0][0]
	return
}

// IpRealCoords returns the real coordinates of an integration point
func (o *Shape) IpRealCoords(x [][]float64, ip Ipoint) (y []float64) {
	y = make([]float64, o.Gndim)
	o.Func(o.S, o.DSdR, ip, false)
	for i := 0; i < o.Gndim; i++ {
		for m := 0; m < o.Nverts; m++ {
			y[i] += o.S[m] * x[i][m]
		}
	}
	return
}

// FaceIpRealCoords returns the real coordinates of a face integration point
func (o *Shape) FaceIpRealCoords(x [][]float64, ipf Ipoint, idxface int) (y []float64) {
	y = make([]float64, o.Gndim)
	o.FaceFunc(o.Sf, o.DSfdRf, ipf, false)
	for i := 0; i < o.Gndim; i++ {
		for k, n := range o.FaceLocalVerts[idxface] {
			y[i] += o.Sf[k] * x[i][n]
		}
	}
	return
}

// InvMap computes the natural coordinates r of the real coordinates y by
// Newton iterations
func (o *Shape) InvMap(r, y []float64, x [][]float64) (err error) {
	e := make([]float64, o.Gndim)
	r[0], r[1] = 0, 0
	for it := 0; it < INVMAP_NIT; it++ {

		// residual: e = y - x * S
		o.Func(o.S, o.DSdR, r, true)
		for i := 0; i < o.Gndim; i++ {
			e[i] = y[i]
			for n := 0; n < o.Nverts; n++ {
				e[i] -= x[i][n] * o.S[n]
			}
		}

		// Jacobian dxdR and correction δr = inv(dxdR) * e
		for i := 0; i < o.Gndim; i++ {
			for j := 0; j < o.Gndim; j++ {
				o.DxdR[i][j] = 0.0
				for n := 0; n < o.Nverts; n++ {
					o.DxdR[i][j] += x[i][n] * o.DSdR[n][j]
				}
			}
		}
		det := o.DxdR[0][0]*o.DxdR[1][1] - o.DxdR[0][1]*o.DxdR[1][0]
		if math.Abs(det) < MINDET {
			return chk.Err("inverse mapping failed. determinant %g is too small", det)
		}
		δr0 := (o.DxdR[1][1]*e[0] - o.DxdR[0][1]*e[1]) / det
		δr1 := (o.DxdR[0][0]*e[1] - o.DxdR[1][0]*e[0]) / det
		r[0] += δr0
		r[1] += δr1
		if math.Sqrt(δr0*δr0+δr1*δr1) < INVMAP_TOL {
			return
		}
	}
	return chk.Err("inverse mapping did not converge after %d iterations", INVMAP_NIT)
}

// Contains reports whether natural coordinates r lie inside the reference
// cell, within tolerance tol
func (o *Shape) Contains(r []float64, tol float64) bool {
	for i := 0; i < o.Gndim; i++ {
		if r[i] < -1-tol || r[i] > 1+tol {
			return false
		}
	}
	return true
}

// Extrapolator computes the extrapolation matrix E[nverts][nip] mapping
// integration point values to nodal values. For rules with nip == nverts
// this is the inverse of the shape matrix at the integration points.
func (o *Shape) Extrapolator(ips []Ipoint) (E *mat.Dense, err error) {
	nip := len(ips)
	if nip != o.Nverts {
		return nil, chk.Err("extrapolator requires nip == nverts. %d != %d", nip, o.Nverts)
	}
	N := mat.NewDense(nip, o.Nverts, nil)
	for i := 0; i < nip; i++ {
		o.Func(o.S, o.DSdR, ips[i], false)
		for j := 0; j < o.Nverts; j++ {
			N.Set(i, j, o.S[j])
		}
	}
	E = mat.NewDense(o.Nverts, nip, nil)
	err = E.Inverse(N)
	if err != nil {
		return nil, chk.Err("cannot invert shape matrix for extrapolation:\n%v", err)
	}
	return
}
