// Package pipeline chains macro expansion, parsing, and code generation into
// one ordered sequence of Processor stages, threading a single
// PipelineContext through all of them.
package pipeline

// Processor is one pipeline stage: it consumes a context and returns the
// (possibly mutated) context for the next stage.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// Pipeline is an ordered sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

// New returns a Pipeline that runs processors in order.
func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes every stage in order, always proceeding to the next stage
// even after one records an error — later stages may still add diagnostics
// or need a best-effort context (e.g. reporting every accumulated parse
// error in one pass rather than stopping at the first).
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
	}
	return ctx
}
