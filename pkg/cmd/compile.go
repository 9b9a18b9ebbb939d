package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/zinclang/zinc/pkg/errors"
	"github.com/zinclang/zinc/pkg/ir"
	"github.com/zinclang/zinc/pkg/parser"
	"github.com/zinclang/zinc/pkg/semantic"
	"github.com/zinclang/zinc/pkg/source"
)

// compileSourceFiles reads, lexes, parses and analyzes each named file in
// turn, reporting every accumulated diagnostic and exiting non-zero the
// moment a stage fails. Multiple files compile independently — the module
// system doesn't yet span file boundaries — so a one-file invocation is the
// common case, but the loop keeps the door open for an eventual multi-file
// program.
func compileSourceFiles(filenames []string) *ir.Unit {
	if len(filenames) == 0 {
		fmt.Println("zinc: no source files given")
		os.Exit(2)
	}

	// Only the final file's unit is kept; compiling several files as one
	// linked program is future work (see DESIGN.md).
	var unit *ir.Unit

	for _, name := range filenames {
		log.Debugf("compiling %s", name)

		fileID, err := source.Default.RegisterFromDisk(name)
		if err != nil {
			fmt.Println(err)
			os.Exit(3)
		}

		module, errs := parser.ParseModule(fileID, source.Default.Contents(fileID))
		if errs.HasErrors() {
			reportDiagnostics(errs)
			os.Exit(4)
		}

		u, errs := semantic.Analyze(module)
		if errs.HasErrors() {
			reportDiagnostics(errs)
			os.Exit(4)
		}

		unit = u
	}

	return unit
}

// reportDiagnostics prints the full caret-style rendering of every
// diagnostic in errs against the shared source registry.
func reportDiagnostics(errs errors.List) {
	for i, d := range errs {
		if i > 0 {
			fmt.Println()
		}

		fmt.Print(d.Render(source.Default))
	}
}
