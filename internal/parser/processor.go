package parser

import (
	"github.com/copperlang/copper/internal/ast"
	"github.com/copperlang/copper/internal/pipeline"
)

// ParseProcessor parses ctx.ExpandedSource into ctx.Stmts, appending any
// accumulated parse errors to ctx.Errors.
type ParseProcessor struct{}

func (pp *ParseProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	p := New(ctx.ExpandedSource)

	var stmts []ast.Stmt
	for {
		s, ok := p.Parse()
		if s != nil {
			stmts = append(stmts, s)
		}
		if !ok {
			break
		}
	}

	ctx.Stmts = stmts
	ctx.Errors = append(ctx.Errors, p.Errors...)
	return ctx
}
