package main

import (
	"context"
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"go.uber.org/zap"

	"mock-generator/internal/analyze"
	"mock-generator/internal/gen"
)

// pipelineOptions tune a single run.
type pipelineOptions struct {
	debug            bool
	debugUnformatted bool
}

// runPipeline loads the configured packages and generates their mocks.
func runPipeline(ctx context.Context, opts *options, po pipelineOptions) (*gen.Result, error) {
	analyzer := analyze.NewAnalyzer(analyze.LoadConfig{
		Dir:             opts.dir,
		Tags:            opts.cfg.Tags,
		GeneratedPrefix: opts.cfg.Output,
	})

	graph, err := analyzer.LoadPackages(ctx, opts.cfg.Patterns...)
	if err != nil {
		return nil, err
	}

	opts.log.Debug("loaded packages", zap.Strings("packages", graph.Order))

	if po.debug {
		dumpGraph(graph)
	}

	generator := gen.NewGenerator(gen.GeneratorConfig{
		Prefix:           opts.cfg.Output,
		Runtime:          opts.cfg.Runtime,
		Jobs:             opts.cfg.Jobs,
		DebugUnformatted: po.debugUnformatted,
		Logger:           opts.log,
	})

	res, err := generator.Generate(ctx, graph)
	if err != nil {
		return nil, fmt.Errorf("generating: %w", err)
	}

	if po.debug {
		spew.Dump(res.Diagnostics)
	}

	return res, nil
}

// dumpGraph prints the declarations of every package, skipping the type
// checker objects that would drown the output.
func dumpGraph(graph *analyze.TypeGraph) {
	cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, MaxDepth: 4}

	for _, path := range graph.Order {
		pkg := graph.Packages[path]
		fmt.Printf("=== %s (%s) ===\n", pkg.Path, pkg.Dir)

		for _, decl := range pkg.Types {
			cfg.Dump(struct {
				ID          analyze.TypeID
				Kind        string
				Annotations []analyze.Annotation
				Variants    int
				Constraint  string
			}{decl.ID, decl.Kind.String(), decl.Annotations, len(decl.Variants), decl.Constraint})
		}
	}
}
