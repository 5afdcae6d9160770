package pipeline

import (
	"github.com/google/uuid"

	"github.com/copperlang/copper/internal/ast"
	"github.com/copperlang/copper/internal/chunk"
	"github.com/copperlang/copper/internal/diagnostics"
)

// PipelineContext carries one source file through macro expansion, parsing,
// and code generation. RunID correlates every log line and diagnostic
// emitted while processing this file, including across imported files
// generated into the same Chunk.
type PipelineContext struct {
	RunID string

	FilePath string
	Source   string

	ExpandedSource string
	Stmts          []ast.Stmt

	Chunk *chunk.Chunk

	Errors []*diagnostics.CompileError
	Fatal  error
}

// NewPipelineContext starts a fresh context for source read from filePath.
func NewPipelineContext(filePath, source string) *PipelineContext {
	return &PipelineContext{
		RunID:    uuid.NewString(),
		FilePath: filePath,
		Source:   source,
	}
}

// AddError appends a compile error without halting the pipeline; later
// stages still run so every stage's diagnostics get collected in one pass.
func (c *PipelineContext) AddError(err *diagnostics.CompileError) {
	c.Errors = append(c.Errors, err)
}

// OK reports whether the context is free of both compile errors and a fatal
// condition so far.
func (c *PipelineContext) OK() bool {
	return len(c.Errors) == 0 && c.Fatal == nil
}
