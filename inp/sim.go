// Copyright 2017 The OpenIFEM Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package inp implements the input data read from a (.sim) JSON or YAML file
// and the finite element mesh read from a (.msh) JSON file.
package inp

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/cpmech/gosl/chk"
	"gopkg.in/yaml.v3"
)

// Data holds global data for simulations
type Data struct {
	Desc    string `json:"desc" yaml:"desc"`       // description of simulation
	DirOut  string `json:"dirout" yaml:"dirout"`   // directory for output; e.g. /tmp/openifem
	Encoder string `json:"encoder" yaml:"encoder"` // checkpoint encoder name: "gob" or "json"
	Mode    string `json:"mode" yaml:"mode"`       // run mode: "standalone", "fsi" or "external"
}

// TimeData holds time stepping control data
type TimeData struct {
	Dt       float64 `json:"dt" yaml:"dt"`             // time step size
	Tf       float64 `json:"tf" yaml:"tf"`             // final time
	DtOut    int     `json:"dtout" yaml:"dtout"`       // output interval in number of steps
	DtRefine int     `json:"dtrefine" yaml:"dtrefine"` // mesh refinement interval in number of steps; 0 disables
	DtSave   int     `json:"dtsave" yaml:"dtsave"`     // checkpoint interval in number of steps; 0 disables
}

// LinSolData holds data for the iterative linear solvers
type LinSolData struct {
	Rtol      float64 `json:"rtol" yaml:"rtol"`           // relative residual tolerance
	ItFactor  int     `json:"itfactor" yaml:"itfactor"`   // iteration budget = ItFactor * ndof
	PrecInner int     `json:"precinner" yaml:"precinner"` // inner iterations when applying the block preconditioner
}

// SolidData holds the solid sub-problem data
type SolidData struct {
	MshFile string      `json:"msh" yaml:"msh"`         // mesh filename
	E       []float64   `json:"E" yaml:"E"`             // Young's modulus per material region
	Nu      []float64   `json:"nu" yaml:"nu"`           // Poisson's ratio per material region
	Eta     []float64   `json:"eta" yaml:"eta"`         // viscosity (damping) per material region
	Rho     float64     `json:"rho" yaml:"rho"`         // solid density
	Damping float64     `json:"damping" yaml:"damping"` // numerical damping: alpha = -Damping
	Vini    []float64   `json:"vini" yaml:"vini"`       // initial velocity components
	EbcTags []int       `json:"ebctags" yaml:"ebctags"` // essential BC face tags
	EbcFlag []int       `json:"ebcflags" yaml:"ebcflags"` // per-tag direction flags: 1-x 2-y 3-xy 4-z 5-xz 6-yz 7-xyz
	NbcType string      `json:"nbctype" yaml:"nbctype"` // Neumann BC type for stand-alone runs: "traction" or "pressure"
	NbcTags []int       `json:"nbctags" yaml:"nbctags"` // Neumann BC face tags
	NbcVals [][]float64 `json:"nbcvals" yaml:"nbcvals"` // prescribed traction components or pressure per tag
	PtConsC [][]float64 `json:"ptconsc" yaml:"ptconsc"` // constrained point coordinates
	PtConsD []int       `json:"ptconsd" yaml:"ptconsd"` // constrained point directions
}

// FluidData holds the fluid sub-problem data
type FluidData struct {
	MshFile  string    `json:"msh" yaml:"msh"`           // mesh filename (shared Eulerian mesh)
	Mu       float64   `json:"mu" yaml:"mu"`             // dynamic viscosity
	Rho      float64   `json:"rho" yaml:"rho"`           // fluid density
	Theta    float64   `json:"theta" yaml:"theta"`       // penalty scale factor for added-mass stabilisation
	Udeg     int       `json:"udeg" yaml:"udeg"`         // velocity interpolation degree
	Pdeg     int       `json:"pdeg" yaml:"pdeg"`         // pressure interpolation degree
	RefPoint []float64 `json:"refpoint" yaml:"refpoint"` // reference point for pinning the pressure
	Uin      float64   `json:"uin" yaml:"uin"`           // inlet velocity magnitude
	Ramp     float64   `json:"ramp" yaml:"ramp"`         // inlet ramp time; <=0 means no ramp
	NbcTags  []int     `json:"nbctags" yaml:"nbctags"`   // Neumann (prescribed normal traction) face tags
	NbcVals  []float64 `json:"nbcvals" yaml:"nbcvals"`   // prescribed boundary pressure per tag
	DragTag  int       `json:"dragtag" yaml:"dragtag"`   // face tag of the surface for drag/lift integrals
	DragLen  float64   `json:"draglen" yaml:"draglen"`   // reference length for drag/lift coefficients
	DragUref float64   `json:"draguref" yaml:"draguref"` // reference velocity for drag/lift coefficients
}

// Simulation holds all simulation data
type Simulation struct {
	Data    Data       `json:"data" yaml:"data"`       // global information
	Time    TimeData   `json:"time" yaml:"time"`       // time control
	LinSol  LinSolData `json:"linsol" yaml:"linsol"`   // linear solver control
	Solid   SolidData  `json:"solid" yaml:"solid"`     // solid data
	Fluid   FluidData  `json:"fluid" yaml:"fluid"`     // fluid data
	Gravity []float64  `json:"gravity" yaml:"gravity"` // gravity vector

	// derived
	Key string `json:"-" yaml:"-"` // simulation key == filename without extension
}

// ReadSim reads a simulation file. JSON and YAML files are distinguished by
// the filename extension.
func ReadSim(simfilepath string) (o *Simulation, err error) {

	// read file
	b, err := os.ReadFile(simfilepath)
	if err != nil {
		return nil, chk.Err("cannot read simulation file %q:\n%v", simfilepath, err)
	}

	// decode
	o = new(Simulation)
	ext := filepath.Ext(simfilepath)
	switch ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, o)
	default:
		err = json.Unmarshal(b, o)
	}
	if err != nil {
		return nil, chk.Err("cannot decode simulation file %q:\n%v", simfilepath, err)
	}

	// derived data and defaults
	fn := filepath.Base(simfilepath)
	o.Key = fn[:len(fn)-len(ext)]
	o.SetDefaults()

	// check
	err = o.Check()
	if err != nil {
		return nil, err
	}
	return
}

// SetDefaults fills unset fields with default values
func (o *Simulation) SetDefaults() {
	if o.Data.Encoder == "" {
		o.Data.Encoder = "gob"
	}
	if o.Data.DirOut == "" {
		o.Data.DirOut = "/tmp/openifem/" + o.Key
	}
	if o.Data.Mode == "" {
		o.Data.Mode = "standalone"
	}
	if o.LinSol.Rtol <= 0 {
		o.LinSol.Rtol = 1e-8
	}
	if o.LinSol.ItFactor <= 0 {
		o.LinSol.ItFactor = 2
	}
	if o.LinSol.PrecInner <= 0 {
		o.LinSol.PrecInner = 10
	}
	if o.Fluid.Udeg == 0 {
		o.Fluid.Udeg = 2
	}
	if o.Fluid.Pdeg == 0 {
		o.Fluid.Pdeg = 1
	}
	if o.Time.DtOut <= 0 {
		o.Time.DtOut = 1
	}
}

// Check validates parameter combinations. Configuration errors are fatal at
// setup and must carry a descriptive message.
func (o *Simulation) Check() (err error) {
	if o.Time.Dt <= 0 {
		return chk.Err("time step size must be positive. dt=%g is invalid", o.Time.Dt)
	}
	if o.Time.Tf < 0 {
		return chk.Err("final time must be non-negative. tf=%g is invalid", o.Time.Tf)
	}
	switch o.Data.Mode {
	case "standalone", "fsi", "external":
	default:
		return chk.Err("unknown run mode %q. must be standalone, fsi or external", o.Data.Mode)
	}
	if o.Fluid.Udeg-o.Fluid.Pdeg != 1 {
		return chk.Err("velocity element degree must be one order higher than pressure: udeg=%d pdeg=%d", o.Fluid.Udeg, o.Fluid.Pdeg)
	}
	if len(o.Solid.PtConsC) != len(o.Solid.PtConsD) {
		return chk.Err("number of constrained points (%d) and directions (%d) must match", len(o.Solid.PtConsC), len(o.Solid.PtConsD))
	}
	if len(o.Solid.E) != len(o.Solid.Nu) {
		return chk.Err("number of E (%d) and nu (%d) values must match", len(o.Solid.E), len(o.Solid.Nu))
	}
	if len(o.Solid.EbcTags) != len(o.Solid.EbcFlag) {
		return chk.Err("number of essential BC tags (%d) and flags (%d) must match", len(o.Solid.EbcTags), len(o.Solid.EbcFlag))
	}
	if len(o.Solid.NbcTags) != len(o.Solid.NbcVals) {
		return chk.Err("number of Neumann BC tags (%d) and values (%d) must match", len(o.Solid.NbcTags), len(o.Solid.NbcVals))
	}
	if len(o.Fluid.NbcTags) != len(o.Fluid.NbcVals) {
		return chk.Err("number of fluid Neumann BC tags (%d) and values (%d) must match", len(o.Fluid.NbcTags), len(o.Fluid.NbcVals))
	}
	return
}
