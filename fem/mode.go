// Copyright 2017 The OpenIFEM Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fem implements the coupled fluid-structure solvers: the solid
// Newmark integrator, the indicator-blended fluid solver, the coupling
// orchestrator and the external-solver backend.
package fem

import "github.com/cpmech/gosl/chk"

// RunMode selects how the solid side of the coupling is computed
type RunMode int

const (

	// StandAlone runs a single solver without coupling
	StandAlone RunMode = iota

	// SharedMesh couples the internal solid integrator with the fluid
	// solver through the indicator field on one mesh
	SharedMesh

	// ExternalSolver delegates solid dynamics to an external program
	// synchronized over the same process group
	ExternalSolver
)

// ModeFromString parses the run mode keyword from the simulation file
func ModeFromString(s string) (RunMode, error) {
	switch s {
	case "standalone", "":
		return StandAlone, nil
	case "fsi":
		return SharedMesh, nil
	case "external":
		return ExternalSolver, nil
	}
	return StandAlone, chk.Err("unknown run mode %q. options are: standalone, fsi, external", s)
}

// String returns the keyword of the run mode
func (o RunMode) String() string {
	switch o {
	case SharedMesh:
		return "fsi"
	case ExternalSolver:
		return "external"
	}
	return "standalone"
}
