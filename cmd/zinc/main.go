// Command zinc is the toolchain entrypoint: build, run, setup, prove,
// verify, proof-check, test and publish all live in pkg/cmd; main only
// wires process exit codes.
package main

import "github.com/zinclang/zinc/pkg/cmd"

func main() {
	cmd.Execute()
}
