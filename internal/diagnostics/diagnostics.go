// Package diagnostics holds the two error strata of the language: compile
// errors accumulated by the parser, and the single fatal error that
// terminates the VM.
package diagnostics

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
)

// CompileError is one parser-reported error: "[Line N] Error at '<lexeme>': <msg>".
type CompileError struct {
	Line    int
	Lexeme  string
	AtEnd   bool
	Message string
}

func (e *CompileError) Error() string {
	if e.AtEnd {
		return fmt.Sprintf("[Line %d] Error at end: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("[Line %d] Error at '%s': %s", e.Line, e.Lexeme, e.Message)
}

// FatalError is raised by the VM on any unrecoverable runtime condition:
// type mismatches, missing names, arity mismatches, disallowed arithmetic.
// There is no user-visible recovery mechanism once one occurs.
type FatalError struct {
	Message string
	// StackDepth is non-zero when the fatal condition was a value-stack or
	// call-depth overflow, recording the depth observed at the moment the
	// configured ceiling was hit, formatted with humanize.Comma for
	// readability on large programs.
	StackDepth int
}

func (e *FatalError) Error() string {
	if e.StackDepth > 0 {
		return fmt.Sprintf("%s (stack depth %s)", e.Message, humanize.Comma(int64(e.StackDepth)))
	}
	return e.Message
}

// Reporter writes diagnostics to a stream, coloring output red when the
// stream is a terminal.
type Reporter struct {
	w      io.Writer
	isTerm bool
}

// NewReporter returns a Reporter writing to w, detecting terminal-ness via
// go-isatty when w is an *os.File.
func NewReporter(w io.Writer) *Reporter {
	isTerm := false
	if f, ok := w.(*os.File); ok {
		isTerm = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Reporter{w: w, isTerm: isTerm}
}

const (
	ansiRed   = "\x1b[31m"
	ansiReset = "\x1b[0m"
)

// ReportCompileError prints one accumulated parse error, prefixed with runID
// so errors from different files in the same multi-file run (or different
// runs entirely, if stderr is shared) can be told apart.
func (r *Reporter) ReportCompileError(runID string, err *CompileError) {
	if r.isTerm {
		fmt.Fprintf(r.w, "%s[%s] %s%s\n", ansiRed, runID, err.Error(), ansiReset)
		return
	}
	fmt.Fprintf(r.w, "[%s] %s\n", runID, err.Error())
}

// ReportFatal prints the terminal VM error, prefixed with runID.
func (r *Reporter) ReportFatal(runID string, err *FatalError) {
	if r.isTerm {
		fmt.Fprintf(r.w, "%s[%s] fatal: %s%s\n", ansiRed, runID, err.Error(), ansiReset)
		return
	}
	fmt.Fprintf(r.w, "[%s] fatal: %s\n", runID, err.Error())
}
