package pipeline

import (
	"github.com/cobra-lang/cobra/internal/ast"
	"github.com/cobra-lang/cobra/internal/diag"
	"github.com/cobra-lang/cobra/internal/llir"
)

// PipelineContext threads the module and accumulated diagnostics
// through each processing stage.
type PipelineContext struct {
	Module *ast.Module
	LLIR   *llir.Module
	Err    *diag.Error
	// Stop tells Pipeline.Run not to run any later stage; set once a
	// stage hits an error a later stage has no hope of working around
	// (e.g. the checker failing means lowering can't run at all).
	Stop bool
}

func NewContext(module *ast.Module) *PipelineContext {
	return &PipelineContext{Module: module}
}

// AddError merges err into the context's accumulated diagnostics.
func (ctx *PipelineContext) AddError(err *diag.Error) {
	ctx.Err = diag.Append(ctx.Err, err)
}

func (ctx *PipelineContext) HasErrors() bool {
	return ctx.Err != nil
}

// Processor is a single pipeline stage: resolve, check, monomorphize,
// lower, etc.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// ProcessorFunc adapts a plain function to the Processor interface.
type ProcessorFunc func(ctx *PipelineContext) *PipelineContext

func (f ProcessorFunc) Process(ctx *PipelineContext) *PipelineContext { return f(ctx) }
