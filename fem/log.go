// Copyright 2017 The OpenIFEM Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	stdio "io"

	"github.com/sirupsen/logrus"
)

// NewLogger returns a logger for one solver. Only the coordinating
// processor emits messages; the others get a discarded writer so call
// sites need no rank guards.
func NewLogger(comm *Comm, solver string, verbose bool) *logrus.Entry {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	}
	if !comm.Root() {
		l.SetOutput(stdio.Discard)
	}
	return l.WithField("solver", solver)
}
