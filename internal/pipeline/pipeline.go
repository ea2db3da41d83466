// Package pipeline wires the compiler passes (resolve, check,
// monomorphize, lower, interpret) into an ordered sequence of stages.
package pipeline

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the pipeline.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
		// A stage that records an error still lets later stages run,
		// unless it also sets Stop.
		if ctx.Stop {
			break
		}
	}
	return ctx
}
