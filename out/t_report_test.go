// Copyright 2017 The OpenIFEM Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package out

import (
	"os"
	"strings"
	"testing"

	"github.com/cpmech/gosl/chk"
)

func TestReport01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("report01. header, rows and non-root no-op")

	dir := tst.TempDir()
	r := NewReport(dir, "energy.txt", true, "time", "ke", "pe")
	r.Write(0.0, 0.0, 9.81)
	r.Write(0.1, 1.5, 8.3)
	r.Flush()

	b, err := os.ReadFile(r.Path())
	if err != nil {
		tst.Errorf("cannot read report:\n%v", err)
		return
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 3 {
		tst.Errorf("wrong number of lines: %d\n", len(lines))
		return
	}
	if lines[0] != "time\tke\tpe" {
		tst.Errorf("wrong header: %q\n", lines[0])
	}
	if lines[2] != "0.1\t1.5\t8.3" {
		tst.Errorf("wrong row: %q\n", lines[2])
	}

	// non-root writes nothing
	q := NewReport(dir, "ignored.txt", false, "a")
	q.Write(1.0)
	q.Flush()
	if _, err := os.Stat(q.Path()); err == nil {
		tst.Errorf("non-root report must not create files\n")
	}
}
