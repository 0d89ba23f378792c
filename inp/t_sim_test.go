// Copyright 2017 The OpenIFEM Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cpmech/gosl/chk"
)

func TestSim01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("sim01. reading and defaults")

	dir := tst.TempDir()
	fn := filepath.Join(dir, "bar.sim")
	data := `{
		"data": {"desc": "falling bar"},
		"time": {"dt": 0.01, "tf": 1.0},
		"solid": {"msh": "bar.msh", "E": [100], "nu": [0.3], "rho": 2},
		"gravity": [0, -10]
	}`
	if err := os.WriteFile(fn, []byte(data), 0644); err != nil {
		tst.Errorf("cannot write file:\n%v", err)
		return
	}
	sim, err := ReadSim(fn)
	if err != nil {
		tst.Errorf("ReadSim failed:\n%v", err)
		return
	}
	if sim.Key != "bar" {
		tst.Errorf("key must derive from the filename: %q\n", sim.Key)
		return
	}
	if sim.Data.Encoder != "gob" || sim.Data.Mode != "standalone" {
		tst.Errorf("defaults not applied: encoder=%q mode=%q\n", sim.Data.Encoder, sim.Data.Mode)
		return
	}
	chk.Float64(tst, "rtol default", 1e-15, sim.LinSol.Rtol, 1e-8)
	chk.Ints(tst, "udeg default", []int{sim.Fluid.Udeg}, []int{2})
	chk.Ints(tst, "pdeg default", []int{sim.Fluid.Pdeg}, []int{1})
	chk.Float64(tst, "gravity", 1e-15, sim.Gravity[1], -10)
}

func TestSim02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("sim02. yaml variant")

	dir := tst.TempDir()
	fn := filepath.Join(dir, "channel.yaml")
	data := `
data:
  desc: channel flow
  mode: standalone
time:
  dt: 0.1
  tf: 10.0
fluid:
  msh: channel.msh
  mu: 0.001
  rho: 1.0
  uin: 1.5
  ramp: 2.0
`
	if err := os.WriteFile(fn, []byte(data), 0644); err != nil {
		tst.Errorf("cannot write file:\n%v", err)
		return
	}
	sim, err := ReadSim(fn)
	if err != nil {
		tst.Errorf("ReadSim failed:\n%v", err)
		return
	}
	if sim.Key != "channel" {
		tst.Errorf("key must derive from the filename: %q\n", sim.Key)
		return
	}
	chk.Float64(tst, "mu", 1e-15, sim.Fluid.Mu, 0.001)
	chk.Float64(tst, "uin", 1e-15, sim.Fluid.Uin, 1.5)
	chk.Float64(tst, "ramp", 1e-15, sim.Fluid.Ramp, 2.0)
}

func TestSim03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("sim03. validation")

	dir := tst.TempDir()
	write := func(name, content string) string {
		fn := filepath.Join(dir, name)
		os.WriteFile(fn, []byte(content), 0644)
		return fn
	}

	// bad step size
	if _, err := ReadSim(write("a.sim", `{"time": {"dt": 0, "tf": 1}}`)); err == nil {
		tst.Errorf("zero step size must be rejected\n")
	}

	// unknown mode
	if _, err := ReadSim(write("b.sim", `{"data": {"mode": "bogus"}, "time": {"dt": 0.1, "tf": 1}}`)); err == nil {
		tst.Errorf("unknown mode must be rejected\n")
	}

	// mismatched material arrays
	if _, err := ReadSim(write("c.sim", `{"time": {"dt": 0.1, "tf": 1}, "solid": {"E": [1, 2], "nu": [0.3]}}`)); err == nil {
		tst.Errorf("mismatched material arrays must be rejected\n")
	}

	// incompatible interpolation degrees
	if _, err := ReadSim(write("d.sim", `{"time": {"dt": 0.1, "tf": 1}, "fluid": {"udeg": 2, "pdeg": 2}}`)); err == nil {
		tst.Errorf("equal element degrees must be rejected\n")
	}

	// broken json
	if _, err := ReadSim(write("e.sim", `{"time": `)); err == nil {
		tst.Errorf("malformed input must be rejected\n")
	}
}
