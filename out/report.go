// Copyright 2017 The OpenIFEM Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package out writes time series reports produced during a simulation
package out

import (
	"bytes"
	"path/filepath"

	"github.com/cpmech/gosl/io"
)

// Report collects rows of scalar quantities and saves them to a tab
// separated file. Only the root processor writes; on other processors
// every method is a no-op so callers need no rank guards.
type Report struct {
	root   bool
	dirout string
	name   string
	buf    bytes.Buffer
}

// NewReport creates a report with the given header row
func NewReport(dirout, name string, root bool, columns ...string) (o *Report) {
	o = &Report{root: root, dirout: dirout, name: name}
	if !root {
		return
	}
	for i, c := range columns {
		if i > 0 {
			io.Ff(&o.buf, "\t")
		}
		io.Ff(&o.buf, "%s", c)
	}
	io.Ff(&o.buf, "\n")
	return
}

// Write appends one row of values
func (o *Report) Write(values ...float64) {
	if !o.root {
		return
	}
	for i, v := range values {
		if i > 0 {
			io.Ff(&o.buf, "\t")
		}
		io.Ff(&o.buf, "%g", v)
	}
	io.Ff(&o.buf, "\n")
}

// Flush saves the collected rows to dirout/name
func (o *Report) Flush() {
	if !o.root {
		return
	}
	io.WriteFileVD(o.dirout, o.name, &o.buf)
}

// Path returns the location of the report file
func (o *Report) Path() string {
	return filepath.Join(o.dirout, o.name)
}
