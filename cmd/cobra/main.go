// Command cobra drives the compiler pipeline end to end: load a
// module description, resolve and check it, lower it to LLIR, then
// either interpret it directly or step it under the debugger.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/cobra-lang/cobra/internal/checker"
	"github.com/cobra-lang/cobra/internal/config"
	"github.com/cobra-lang/cobra/internal/diag"
	"github.com/cobra-lang/cobra/internal/interp"
	"github.com/cobra-lang/cobra/internal/llir"
	"github.com/cobra-lang/cobra/internal/loader"
	"github.com/cobra-lang/cobra/internal/pipeline"
)

func main() {
	entry := flag.String("entry", "main", "function to run once the module is compiled")
	debug := flag.Bool("debug", false, "step the entry function under the interactive debugger")
	version := flag.Bool("version", false, "print the compiler version and exit")
	flag.Parse()

	if *version {
		fmt.Println(config.Version)
		return
	}
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: cobra [-entry name] [-debug] <module.cobra>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	color := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())

	mod, err := loader.Load(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx := pipeline.NewContext(mod)
	ctx = pipeline.New(
		pipeline.ProcessorFunc(checkStage),
		pipeline.ProcessorFunc(lowerStage),
	).Run(ctx)

	if ctx.HasErrors() {
		sources := diag.NewSources()
		if data, rerr := os.ReadFile(path); rerr == nil {
			sources.Add(path, string(data))
		}
		diag.NewFormatter(sources, color).Format(os.Stderr, ctx.Err)
		os.Exit(1)
	}

	if *debug {
		if err := interp.RunDebuggerCLI(ctx.LLIR, *entry, nil, os.Stdin, os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	it := interp.New(ctx.LLIR)
	result, err := it.Run(*entry, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "runtime error:", err)
		os.Exit(1)
	}
	fmt.Println(result.String())
}

func checkStage(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if err := checker.CheckModule(ctx.Module); err != nil {
		ctx.AddError(asDiagError(err))
		ctx.Stop = true
	}
	return ctx
}

func lowerStage(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	ctx.LLIR = llir.CompileModule(ctx.Module)
	return ctx
}

func asDiagError(err error) *diag.Error {
	if de, ok := err.(*diag.Error); ok {
		return de
	}
	return diag.NewOther(err.Error())
}
