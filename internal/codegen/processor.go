package codegen

import (
	"github.com/copperlang/copper/internal/pipeline"
)

// GenerateProcessor emits ctx.Stmts into a shared Generator, so multiple
// files processed through successive Run calls accumulate into one Chunk —
// the CLI's "concatenate files in argument order" behavior.
type GenerateProcessor struct {
	Gen *Generator
}

func NewGenerateProcessor(basePath string, readFile FileReader, expandMacros MacroExpander) *GenerateProcessor {
	gen := New(basePath)
	gen.ReadFile = readFile
	gen.ExpandMacros = expandMacros
	return &GenerateProcessor{Gen: gen}
}

func (gp *GenerateProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if !ctx.OK() {
		return ctx
	}

	gp.Gen.SetBasePath(ctx.FilePath)
	gp.Gen.Generate(ctx.Stmts)

	ctx.Chunk = gp.Gen.Chunk
	ctx.Errors = append(ctx.Errors, gp.Gen.Errors...)
	return ctx
}
