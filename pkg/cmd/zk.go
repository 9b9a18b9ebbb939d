package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// ErrNotImplemented is returned by the Groth16-backed boundary operations
// this toolchain does not yet perform. pkg/vm/constraint's Builder already
// synthesizes the rank-1 constraint system and checks witness satisfaction
// (see `run --check`/`test`); trusted setup, proof generation, proof
// verification and on-chain publication each need a Groth16 backend wired
// against that same constraint.System, which is future work.
var ErrNotImplemented = errors.New("zinc: not yet implemented")

func stubRun(op string) func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		fmt.Printf("zinc %s: %s\n", op, ErrNotImplemented)
		os.Exit(6)
	}
}

var setupCmd = &cobra.Command{
	Use:   "setup [flags] file1.zn file2.zn ...",
	Short: "generate a Groth16 proving/verifying key pair for a circuit.",
	Long:  "Compile the given circuit and run the Groth16 trusted setup, producing a proving key and a verifying key.",
	Run:   stubRun("setup"),
}

var proveCmd = &cobra.Command{
	Use:   "prove [flags] input.json file1.zn file2.zn ...",
	Short: "produce a Groth16 proof for a set of inputs.",
	Long:  "Execute the circuit against the given inputs and produce a Groth16 proof against a previously generated proving key.",
	Run:   stubRun("prove"),
}

var verifyCmd = &cobra.Command{
	Use:   "verify [flags] proof.bin",
	Short: "verify a Groth16 proof against its public inputs.",
	Long:  "Verify a previously produced Groth16 proof against a verifying key and its declared public inputs.",
	Run:   stubRun("verify"),
}

var proofCheckCmd = &cobra.Command{
	Use:   "proof-check [flags] input.json file1.zn file2.zn ...",
	Short: "check witness satisfiability without generating a proof.",
	Long:  "Synthesize the constraint system for the given inputs and report whether it is satisfiable, without running the (unimplemented) Groth16 prover.",
	Args:  cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		// `check` defaults to true on runCmd itself, so proof-check is simply
		// run without generating a proof.
		runCmd.Run(runCmd, args)
	},
}

var publishCmd = &cobra.Command{
	Use:   "publish [flags] proof.bin",
	Short: "publish a proof and its verifying key to a zkSync contract.",
	Long:  "Submit a previously generated proof, together with its verifying key, to a deployed verifier contract.",
	Run:   stubRun("publish"),
}

func init() {
	rootCmd.AddCommand(setupCmd, proveCmd, verifyCmd, proofCheckCmd, publishCmd)
}
