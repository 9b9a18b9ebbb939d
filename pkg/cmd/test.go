package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/zinclang/zinc/pkg/hasher"
	"github.com/zinclang/zinc/pkg/ir"
	"github.com/zinclang/zinc/pkg/util/termio"
	"github.com/zinclang/zinc/pkg/vm"
	"github.com/zinclang/zinc/pkg/vm/constraint"
	"github.com/zinclang/zinc/pkg/vm/merkle"
)

// isTTY decides whether pass/fail results get ANSI coloring.
var isTTY = term.IsTerminal(int(os.Stdout.Fd()))

func colorize(col uint, text string) string {
	if !isTTY {
		return text
	}

	on := termio.NewAnsiEscape().FgColour(col).Build()
	off := termio.ResetAnsiEscape().Build()

	return fmt.Sprintf("%s%s%s", on, text, off)
}

var testCmd = &cobra.Command{
	Use:   "test [flags] file1.zn file2.zn ...",
	Short: "run every #[test]-attributed entry point.",
	Long:  "Compile the given source file(s) and run each #[test] entry point with no inputs, honoring #[should_panic] and #[ignore].",
	Run: func(cmd *cobra.Command, args []string) {
		unit := compileSourceFiles(args)

		if len(unit.Tests) == 0 {
			fmt.Println("no tests found")
			return
		}

		passed, failed, skipped := 0, 0, 0

		for _, tc := range unit.Tests {
			if tc.Ignore {
				fmt.Printf("test %s ... ignored\n", tc.Name)
				skipped++

				continue
			}

			if runOneTest(unit, tc) {
				fmt.Printf("test %s ... %s\n", tc.Name, colorize(termio.TERM_GREEN, "ok"))
				passed++
			} else {
				fmt.Printf("test %s ... %s\n", tc.Name, colorize(termio.TERM_RED, "FAILED"))
				failed++
			}
		}

		fmt.Printf("\n%d passed, %d failed, %d ignored\n", passed, failed, skipped)

		if failed > 0 {
			os.Exit(1)
		}
	},
}

// runOneTest executes one test entry point fresh (its own machine, own
// constraint system), reporting pass/fail per the #[should_panic] contract:
// the entry point must error iff it is expected to.
func runOneTest(unit *ir.Unit, tc ir.TestCase) bool {
	sys := constraint.NewBuilder(constraint.ModeProve)
	tree := merkle.NewTree(hasher.SHA256Hasher{}, merkle.Depth)
	machine := vm.New(sys, hasher.SHA256Hasher{}, tree, unit)

	_, err := machine.Run(tc.Name, nil)

	return (err != nil) == tc.ShouldPanic
}

func init() {
	rootCmd.AddCommand(testCmd)
}
