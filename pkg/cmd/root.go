// Package cmd implements the zinc command-line toolchain: the thin cobra
// shell around the compile/run/setup/prove/verify boundary operations a
// circuit author drives from a shell, wrapping pkg/parser, pkg/semantic,
// pkg/vm and pkg/ir directly rather than reimplementing any of their logic.
package cmd

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags, matching the teacher's own
// build-stamped version convention.
var Version string

var rootCmd = &cobra.Command{
	Use:   "zinc",
	Short: "Compiler and toolchain for the Zinc circuit language.",
	Long:  "zinc lexes, parses, analyzes and runs Zinc circuits against the bn254 scalar field, and drives the Groth16 proving pipeline around them.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if GetFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}
	},
}

// Execute runs the root command, exiting non-zero on failure. Called once
// from cmd/zinc's main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
}
