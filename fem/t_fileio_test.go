// Copyright 2017 The OpenIFEM Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"os"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/la"
)

func TestFileIO01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("fileio01. checkpoint round trip and retention")

	for _, enctype := range []string{"gob", "json"} {
		dir := tst.TempDir()
		cp := NewCheckpoint(dir, enctype, NewComm(nil))

		U := la.Vector{1, 2, 3}
		V := la.Vector{4, 5, 6}
		A := la.Vector{7, 8, 9}

		// absence of checkpoints is a fresh start, not an error
		u2 := la.NewVector(3)
		step, found, err := cp.Load(u2, u2, u2)
		if err != nil {
			tst.Errorf("[%s] Load on empty dir failed:\n%v", enctype, err)
			return
		}
		if found || step != 0 {
			tst.Errorf("[%s] empty dir must report no checkpoint\n", enctype)
			return
		}

		if err := cp.Save(3, U, V, A); err != nil {
			tst.Errorf("[%s] Save failed:\n%v", enctype, err)
			return
		}
		if err := cp.Save(7, U, V, A); err != nil {
			tst.Errorf("[%s] Save failed:\n%v", enctype, err)
			return
		}

		// only the newest generation survives
		entries, _ := os.ReadDir(dir)
		chk.Ints(tst, io.Sf("[%s] files kept", enctype), []int{len(entries)}, []int{3})

		u3 := la.NewVector(3)
		v3 := la.NewVector(3)
		a3 := la.NewVector(3)
		step, found, err = cp.Load(u3, v3, a3)
		if err != nil {
			tst.Errorf("[%s] Load failed:\n%v", enctype, err)
			return
		}
		if !found {
			tst.Errorf("[%s] checkpoint must be found\n", enctype)
			return
		}
		chk.Ints(tst, io.Sf("[%s] step", enctype), []int{step}, []int{7})
		chk.Float64(tst, "U0", 1e-15, u3[0], 1)
		chk.Float64(tst, "V1", 1e-15, v3[1], 5)
		chk.Float64(tst, "A2", 1e-15, a3[2], 9)

		// a size mismatch after refinement is fatal
		wrong := la.NewVector(5)
		if _, _, err := cp.Load(wrong, wrong, wrong); err == nil {
			tst.Errorf("[%s] size mismatch must be an error\n", enctype)
		}
	}
}

func TestFileIO02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("fileio02. encoder selection")

	dir := tst.TempDir()
	fn := dir + "/x.json"
	f, err := os.Create(fn)
	if err != nil {
		tst.Errorf("cannot create file:\n%v", err)
		return
	}
	enc := GetEncoder(f, "json")
	if err := enc.Encode([]float64{1.5, 2.5}); err != nil {
		tst.Errorf("encode failed:\n%v", err)
		return
	}
	f.Close()

	g, err := os.Open(fn)
	if err != nil {
		tst.Errorf("cannot open file:\n%v", err)
		return
	}
	defer g.Close()
	var vals []float64
	if err := GetDecoder(g, "json").Decode(&vals); err != nil {
		tst.Errorf("decode failed:\n%v", err)
		return
	}
	chk.Float64(tst, "v0", 1e-15, vals[0], 1.5)
	chk.Float64(tst, "v1", 1e-15, vals[1], 2.5)
}
