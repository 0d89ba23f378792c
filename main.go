// Copyright 2017 The OpenIFEM Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"github.com/shenchen0414/OpenIFEM/cmd"
)

func main() {
	cmd.Execute()
}
