// Copyright 2017 The OpenIFEM Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"encoding/gob"
	"encoding/json"
	goio "io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/la"
)

// file extensions of one checkpoint generation
var cpExts = []string{
	"solid_checkpoint_displacement",
	"solid_checkpoint_velocity",
	"solid_checkpoint_acceleration",
}

// Encoder encodes values to a stream
type Encoder interface {
	Encode(v interface{}) error
}

// Decoder decodes values from a stream
type Decoder interface {
	Decode(v interface{}) error
}

// GetEncoder returns a new encoder of the configured kind
func GetEncoder(w goio.Writer, enctype string) Encoder {
	if enctype == "json" {
		return json.NewEncoder(w)
	}
	return gob.NewEncoder(w)
}

// GetDecoder returns a new decoder of the configured kind
func GetDecoder(r goio.Reader, enctype string) Decoder {
	if enctype == "json" {
		return json.NewDecoder(r)
	}
	return gob.NewDecoder(r)
}

// Checkpoint persists the three solid state vectors. Only the
// coordinating processor writes; exactly one generation is retained.
type Checkpoint struct {
	dirout  string
	enctype string
	comm    *Comm
}

// NewCheckpoint returns the checkpoint subsystem
func NewCheckpoint(dirout, enctype string, comm *Comm) *Checkpoint {
	return &Checkpoint{dirout: dirout, enctype: enctype, comm: comm}
}

// stem returns the fixed-width file stem of a step
func cpStem(step int) string { return io.Sf("%06d", step) }

// Save writes the checkpoint triple of one step and deletes any older
// generation
func (o *Checkpoint) Save(step int, U, V, A la.Vector) (err error) {
	if o.comm.Root() {
		if err = os.MkdirAll(o.dirout, 0777); err != nil {
			return chk.Err("cannot create checkpoint directory %q:\n%v", o.dirout, err)
		}
		stem := cpStem(step)
		for i, vec := range []la.Vector{U, V, A} {
			fn := filepath.Join(o.dirout, stem+"."+cpExts[i])
			f, ferr := os.Create(fn)
			if ferr != nil {
				return chk.Err("cannot create checkpoint file %q:\n%v", fn, ferr)
			}
			enc := GetEncoder(f, o.enctype)
			if err = enc.Encode([]float64(vec)); err != nil {
				f.Close()
				return chk.Err("cannot encode checkpoint file %q:\n%v", fn, err)
			}
			f.Close()
		}
		// retention: remove every other generation
		for _, s := range o.scanStems() {
			if s == stem {
				continue
			}
			for _, ext := range cpExts {
				os.Remove(filepath.Join(o.dirout, s+"."+ext))
			}
		}
	}
	o.comm.Barrier()
	return
}

// scanStems lists the stems with a complete checkpoint triple, sorted
func (o *Checkpoint) scanStems() (stems []string) {
	entries, err := os.ReadDir(o.dirout)
	if err != nil {
		return
	}
	count := make(map[string]int)
	for _, e := range entries {
		name := e.Name()
		for _, ext := range cpExts {
			if strings.HasSuffix(name, "."+ext) {
				count[strings.TrimSuffix(name, "."+ext)]++
			}
		}
	}
	for s, n := range count {
		if n == len(cpExts) {
			stems = append(stems, s)
		}
	}
	sort.Strings(stems)
	return
}

// Load restores the newest checkpoint. Absence of any checkpoint is not
// an error; it signals a fresh start.
func (o *Checkpoint) Load(U, V, A la.Vector) (step int, found bool, err error) {
	stems := o.scanStems()
	if len(stems) == 0 {
		return 0, false, nil
	}
	stem := stems[len(stems)-1]
	step = io.Atoi(stem)
	for i, vec := range []la.Vector{U, V, A} {
		fn := filepath.Join(o.dirout, stem+"."+cpExts[i])
		f, ferr := os.Open(fn)
		if ferr != nil {
			return 0, false, chk.Err("cannot open checkpoint file %q:\n%v", fn, ferr)
		}
		var vals []float64
		dec := GetDecoder(f, o.enctype)
		if err = dec.Decode(&vals); err != nil {
			f.Close()
			return 0, false, chk.Err("cannot decode checkpoint file %q:\n%v", fn, err)
		}
		f.Close()
		if len(vals) != len(vec) {
			return 0, false, chk.Err("checkpoint %q has %d values but %d degrees of freedom are active", fn, len(vals), len(vec))
		}
		copy(vec, vals)
	}
	return step, true, nil
}
