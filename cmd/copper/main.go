// Command copper runs one or more .cop source files: each file is macro
// expanded, parsed, and generated in argument order into a single Chunk,
// then interpreted by the VM.
package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/copperlang/copper/internal/codegen"
	"github.com/copperlang/copper/internal/config"
	"github.com/copperlang/copper/internal/diagnostics"
	"github.com/copperlang/copper/internal/macro"
	"github.com/copperlang/copper/internal/natives"
	"github.com/copperlang/copper/internal/parser"
	"github.com/copperlang/copper/internal/pipeline"
	"github.com/copperlang/copper/internal/vm"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: copper <file.cop> [file2.cop ...]")
		return 1
	}

	reporter := diagnostics.NewReporter(os.Stderr)

	cfg := config.Default()
	if configPath, err := config.Find("."); err == nil && configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "copper: %s\n", err)
			return 1
		}
		cfg = loaded
	}

	// One RunID correlates every diagnostic emitted across every file in
	// this invocation, in stderr output shared by concurrent CLI runs.
	runID := uuid.NewString()

	gen := codegenProcessor(args[0])
	stages := pipeline.New(&macro.ExpandProcessor{}, &parser.ParseProcessor{}, gen)

	hadErrors := false
	for _, path := range args {
		source, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "copper: %s\n", err)
			return 1
		}

		ctx := pipeline.NewPipelineContext(path, string(source))
		ctx.RunID = runID
		ctx = stages.Run(ctx)

		for _, ce := range ctx.Errors {
			reporter.ReportCompileError(ctx.RunID, ce)
			hadErrors = true
		}
	}

	if hadErrors {
		return 1
	}

	machine := vm.NewWithConfig(gen.Gen.Chunk, cfg)
	natives.BindAll(machine.Chunk.BindNativeFunction, natives.IO{
		Out: os.Stdout,
		In:  stdinReader(),
	})

	if err := machine.Interpret(); err != nil {
		if fe, ok := err.(*diagnostics.FatalError); ok {
			reporter.ReportFatal(runID, fe)
		} else {
			fmt.Fprintf(os.Stderr, "copper: %s\n", err)
		}
		return 1
	}

	return 0
}

// codegenProcessor builds the single Generator shared across every file
// argument, so later files see functions and structs declared by earlier
// ones. basePath seeds relative import resolution for the first file;
// GenerateProcessor retargets it per file before each Generate call.
func codegenProcessor(basePath string) *codegen.GenerateProcessor {
	return codegen.NewGenerateProcessor(basePath, readImportFile, macro.Expand)
}

func readImportFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func stdinReader() *bufio.Reader {
	return bufio.NewReader(os.Stdin)
}
