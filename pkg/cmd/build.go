package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zinclang/zinc/pkg/ir"
)

var buildCmd = &cobra.Command{
	Use:   "build [flags] file1.zn file2.zn ...",
	Short: "compile Zinc source files into a bytecode unit.",
	Long:  "Lex, parse and analyze the given source file(s), emitting a single bytecode unit.",
	Run: func(cmd *cobra.Command, args []string) {
		unit := compileSourceFiles(args)

		if GetFlag(cmd, "ir") {
			writeDisassembly(unit)
		}

		out := GetString(cmd, "output")
		if out == "" {
			return
		}

		data, err := ir.Encode(*unit)
		if err != nil {
			fmt.Println(err)
			os.Exit(5)
		}

		if err := os.WriteFile(out, data, 0o644); err != nil {
			fmt.Println(err)
			os.Exit(5)
		}
	},
}

// writeDisassembly prints one flat listing per entry point: its name,
// parameter/return scalar shape, and instruction stream with addresses —
// the zinc analogue of the teacher's own AST/IR dump flags, simplified to
// match the flat, address-based (rather than register-named) shape of this
// IR.
func writeDisassembly(unit *ir.Unit) {
	for i, prog := range unit.Entries {
		if i != 0 {
			fmt.Println()
		}

		fmt.Printf("fn %s (memory: %d slots)\n", prog.Name, prog.MemorySize)

		for pc, inst := range prog.Body {
			fmt.Printf("  [%d]\t%s\n", pc, disassembleOp(inst))
		}
	}
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().Bool("ir", false, "print the compiled instruction stream")
	buildCmd.Flags().StringP("output", "o", "", "write the encoded bytecode unit to this path")
}
