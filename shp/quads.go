// Copyright 2017 The OpenIFEM Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package shp

import "math"

// sq3 is the square root of three, used by the Gauss rules
var sq3 = math.Sqrt(3.0)

// integration point rules
var (
	// one-point rule (reduced integration)
	IpsQuaReduced = []Ipoint{
		{0, 0, 0, 4},
	}

	// 2x2 Gauss rule
	IpsQua4 = []Ipoint{
		{-sq3 / 3.0, -sq3 / 3.0, 0, 1},
		{sq3 / 3.0, -sq3 / 3.0, 0, 1},
		{-sq3 / 3.0, sq3 / 3.0, 0, 1},
		{sq3 / 3.0, sq3 / 3.0, 0, 1},
	}

	// 3x3 Gauss rule
	IpsQua9 = gaussQua(3)

	// face rules
	IpsLin2 = []Ipoint{
		{-sq3 / 3.0, 0, 0, 1},
		{sq3 / 3.0, 0, 0, 1},
	}
	IpsLin3 = []Ipoint{
		{-math.Sqrt(3.0 / 5.0), 0, 0, 5.0 / 9.0},
		{0, 0, 0, 8.0 / 9.0},
		{math.Sqrt(3.0 / 5.0), 0, 0, 5.0 / 9.0},
	}
)

// gaussQua builds an n x n tensor-product Gauss rule on the quad
func gaussQua(n int) (ips []Ipoint) {
	var pts, wts []float64
	switch n {
	case 2:
		g := sq3 / 3.0
		pts = []float64{-g, g}
		wts = []float64{1, 1}
	case 3:
		g := math.Sqrt(3.0 / 5.0)
		pts = []float64{-g, 0, g}
		wts = []float64{5.0 / 9.0, 8.0 / 9.0, 5.0 / 9.0}
	}
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			ips = append(ips, Ipoint{pts[i], pts[j], 0, wts[i] * wts[j]})
		}
	}
	return
}

// IpsByName returns an integration rule given the cell type and the number
// of points; nip == 0 selects the default rule
func IpsByName(geoType string, nip int) []Ipoint {
	switch geoType {
	case "qua4":
		if nip == 1 {
			return IpsQuaReduced
		}
		return IpsQua4
	case "qua8":
		if nip == 1 {
			return IpsQuaReduced
		}
		if nip == 4 {
			return IpsQua4
		}
		return IpsQua9
	}
	return nil
}

// FaceIps returns the face integration rule of a cell type
func FaceIps(geoType string) []Ipoint {
	if geoType == "qua8" {
		return IpsLin3
	}
	return IpsLin2
}

// Lin2Func computes shape functions and derivatives for a 2-node line
//
//   -1     0    +1
//    0-----------1-->r
func Lin2Func(S []float64, dSdR [][]float64, r []float64, derivs bool) {
	S[0] = 0.5 * (1.0 - r[0])
	S[1] = 0.5 * (1.0 + r[0])
	if !derivs {
		return
	}
	dSdR[0][0] = -0.5
	dSdR[1][0] = 0.5
}

// Lin3Func computes shape functions and derivatives for a 3-node line
//
//   -1     0    +1
//    0-----2-----1-->r
func Lin3Func(S []float64, dSdR [][]float64, r []float64, derivs bool) {
	S[0] = 0.5 * r[0] * (r[0] - 1.0)
	S[1] = 0.5 * r[0] * (r[0] + 1.0)
	S[2] = 1.0 - r[0]*r[0]
	if !derivs {
		return
	}
	dSdR[0][0] = r[0] - 0.5
	dSdR[1][0] = r[0] + 0.5
	dSdR[2][0] = -2.0 * r[0]
}

// Qua4Func computes shape functions and derivatives for a 4-node quad
//
//   3-----------2
//   |     s     |
//   |     |     |
//   |     +--r  |
//   |           |
//   |           |
//   0-----------1
func Qua4Func(S []float64, dSdR [][]float64, r []float64, derivs bool) {
	s := r[1]
	S[0] = 0.25 * (1.0 - r[0]) * (1.0 - s)
	S[1] = 0.25 * (1.0 + r[0]) * (1.0 - s)
	S[2] = 0.25 * (1.0 + r[0]) * (1.0 + s)
	S[3] = 0.25 * (1.0 - r[0]) * (1.0 + s)
	if !derivs {
		return
	}
	dSdR[0][0] = -0.25 * (1.0 - s)
	dSdR[1][0] = 0.25 * (1.0 - s)
	dSdR[2][0] = 0.25 * (1.0 + s)
	dSdR[3][0] = -0.25 * (1.0 + s)
	dSdR[0][1] = -0.25 * (1.0 - r[0])
	dSdR[1][1] = -0.25 * (1.0 + r[0])
	dSdR[2][1] = 0.25 * (1.0 + r[0])
	dSdR[3][1] = 0.25 * (1.0 - r[0])
}

// Qua8Func computes shape functions and derivatives for an 8-node
// serendipity quad
//
//   3-----6-----2
//   |     s     |
//   |     |     |
//   7     +--r  5
//   |           |
//   |           |
//   0-----4-----1
func Qua8Func(S []float64, dSdR [][]float64, r []float64, derivs bool) {
	s := r[1]
	S[0] = 0.25 * (1.0 - r[0]) * (1.0 - s) * (-r[0] - s - 1.0)
	S[1] = 0.25 * (1.0 + r[0]) * (1.0 - s) * (r[0] - s - 1.0)
	S[2] = 0.25 * (1.0 + r[0]) * (1.0 + s) * (r[0] + s - 1.0)
	S[3] = 0.25 * (1.0 - r[0]) * (1.0 + s) * (-r[0] + s - 1.0)
	S[4] = 0.5 * (1.0 - r[0]*r[0]) * (1.0 - s)
	S[5] = 0.5 * (1.0 + r[0]) * (1.0 - s*s)
	S[6] = 0.5 * (1.0 - r[0]*r[0]) * (1.0 + s)
	S[7] = 0.5 * (1.0 - r[0]) * (1.0 - s*s)
	if !derivs {
		return
	}
	dSdR[0][0] = 0.25 * (1.0 - s) * (2.0*r[0] + s)
	dSdR[1][0] = 0.25 * (1.0 - s) * (2.0*r[0] - s)
	dSdR[2][0] = 0.25 * (1.0 + s) * (2.0*r[0] + s)
	dSdR[3][0] = 0.25 * (1.0 + s) * (2.0*r[0] - s)
	dSdR[4][0] = -r[0] * (1.0 - s)
	dSdR[5][0] = 0.5 * (1.0 - s*s)
	dSdR[6][0] = -r[0] * (1.0 + s)
	dSdR[7][0] = -0.5 * (1.0 - s*s)
	dSdR[0][1] = 0.25 * (1.0 - r[0]) * (r[0] + 2.0*s)
	dSdR[1][1] = 0.25 * (1.0 + r[0]) * (2.0*s - r[0])
	dSdR[2][1] = 0.25 * (1.0 + r[0]) * (r[0] + 2.0*s)
	dSdR[3][1] = 0.25 * (1.0 - r[0]) * (2.0*s - r[0])
	dSdR[4][1] = -0.5 * (1.0 - r[0]*r[0])
	dSdR[5][1] = -s * (1.0 + r[0])
	dSdR[6][1] = 0.5 * (1.0 - r[0]*r[0])
	dSdR[7][1] = -s * (1.0 - r[0])
}
