// Copyright 2017 The OpenIFEM Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmd

import (
	"os"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/mpi"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/shenchen0414/OpenIFEM/fem"
	"github.com/shenchen0414/OpenIFEM/inp"
)

var (
	verbose  bool // print progress messages
	parallel bool // start the message passing runtime
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "openifem",
	Short: "Immersed finite element solver for fluid-structure interaction",
}

// runCmd reads an input file and runs the simulation to the final time
var runCmd = &cobra.Command{
	Use:   "run <file.sim>",
	Short: "Run a simulation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSimulation(args[0])
	},
}

func runSimulation(fnamepath string) (err error) {

	// message passing lifecycle with a panic trap, so every processor
	// shuts the runtime down even on errors
	comm := fem.NewComm(nil)
	if parallel {
		defer func() {
			if r := recover(); r != nil {
				if mpi.WorldRank() == 0 {
					io.PfRed("ERROR: %v\n", r)
				}
				err = chk.Err("run failed: %v", r)
			}
			mpi.Stop()
		}()
		mpi.Start()
		comm = fem.NewComm(mpi.NewCommunicator(nil))
	}

	sim, err := inp.ReadSim(fnamepath)
	if err != nil {
		return err
	}
	if comm.Root() && verbose {
		logrus.WithFields(logrus.Fields{
			"file": fnamepath, "desc": sim.Data.Desc, "nproc": comm.Size(),
		}).Info("starting")
	}

	analysis, err := fem.NewFSI(sim, comm, verbose)
	if err != nil {
		return err
	}
	return analysis.Run()
}

// Execute runs the CLI and exits nonzero on failure
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	runCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print progress messages")
	runCmd.Flags().BoolVarP(&parallel, "parallel", "p", false, "start the message passing runtime")
	rootCmd.AddCommand(runCmd)
}
