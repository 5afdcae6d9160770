package macro

import (
	"github.com/copperlang/copper/internal/diagnostics"
	"github.com/copperlang/copper/internal/pipeline"
)

// ExpandProcessor runs the defmacro/call pre-pass over ctx.Source, filling
// ctx.ExpandedSource for the parser stage that follows it.
type ExpandProcessor struct{}

func (ep *ExpandProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	expanded, err := Expand(ctx.Source)
	if err != nil {
		ctx.AddError(&diagnostics.CompileError{Message: err.Error()})
		ctx.ExpandedSource = ctx.Source
		return ctx
	}
	ctx.ExpandedSource = expanded
	return ctx
}
