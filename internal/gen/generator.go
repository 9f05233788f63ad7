package gen

import (
	"bytes"
	"context"
	"fmt"
	"go/format"
	"runtime"
	"slices"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"mock-generator/internal/analyze"
	"mock-generator/internal/diagnostic"
	"mock-generator/internal/scan"
	"mock-generator/internal/synth"
)

// DefaultPrefix is the base name of generated files.
const DefaultPrefix = "zz_generated.mock"

// GeneratorConfig holds configuration for code generation.
type GeneratorConfig struct {
	// Prefix names the generated files: <Prefix>.go and <Prefix>.<slug>.go.
	Prefix string
	// Runtime is the import path of the mock runtime package.
	Runtime string
	// Jobs limits how many packages are generated concurrently.
	// Zero means GOMAXPROCS.
	Jobs int
	// DebugUnformatted writes the raw template output next to the package
	// when it does not format.
	DebugUnformatted bool
	// Logger receives progress messages. Nil disables logging.
	Logger *zap.Logger
}

// DefaultGeneratorConfig returns the default generator configuration.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Prefix:  DefaultPrefix,
		Runtime: synth.DefaultRuntime,
	}
}

// Generator generates mock constructors for a type graph.
type Generator struct {
	config GeneratorConfig
	log    *zap.Logger
}

// NewGenerator creates a new Generator with the given configuration.
func NewGenerator(config GeneratorConfig) *Generator {
	if config.Prefix == "" {
		config.Prefix = DefaultPrefix
	}

	if config.Runtime == "" {
		config.Runtime = synth.DefaultRuntime
	}

	if config.Jobs <= 0 {
		config.Jobs = runtime.GOMAXPROCS(0)
	}

	log := config.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Generator{config: config, log: log}
}

// GeneratedFile represents a generated Go source file.
type GeneratedFile struct {
	// Filename is the base name, e.g. "zz_generated.mock.go".
	Filename string
	// Dir is the directory of the package the file belongs to.
	Dir string
	// Constraint is the file's //go:build expression, or "".
	Constraint string
	// Content is the formatted Go source code.
	Content []byte
}

// PackageResult is the outcome for one package.
type PackageResult struct {
	Path string
	Dir  string
	// Files is empty when Diagnostics has errors.
	Files []GeneratedFile
	// Built lists the base names of the package files the current build
	// context includes. Generated files outside it belong to other tags.
	Built       []string
	Diagnostics diagnostic.Diagnostics
}

// Result is the outcome of a run, packages in load order.
type Result struct {
	Packages    []PackageResult
	Diagnostics diagnostic.Diagnostics
}

// Files returns every generated file of the run.
func (r *Result) Files() []GeneratedFile {
	var files []GeneratedFile
	for _, p := range r.Packages {
		files = append(files, p.Files...)
	}

	return files
}

// Generate derives every requested type of the graph. Derivation errors are
// reported as diagnostics; the returned error is reserved for cancellation.
func (g *Generator) Generate(ctx context.Context, graph *analyze.TypeGraph) (*Result, error) {
	env := synth.Env{
		Runtime: g.config.Runtime,
		Derived: DerivedSet(graph),
	}

	results := make([]PackageResult, len(graph.Order))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(max(1, min(g.config.Jobs, len(graph.Order))))

	for i, path := range graph.Order {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			results[i] = g.generatePackage(graph.Packages[path], env)

			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	res := &Result{Packages: results}
	for _, p := range results {
		res.Diagnostics.Merge(p.Diagnostics)
	}

	res.Diagnostics.Sort()

	return res, nil
}

// DerivedSet lists every type of the graph that asks for a mock. Field
// expressions refer to these before their implementations exist.
func DerivedSet(graph *analyze.TypeGraph) map[analyze.TypeID]analyze.TypeKind {
	derived := make(map[analyze.TypeID]analyze.TypeKind)
	for _, path := range graph.Order {
		for _, decl := range graph.Packages[path].Types {
			if _, ok, err := scan.ScanRequest(decl.Annotations); ok && err == nil {
				derived[decl.ID] = decl.Kind
			}
		}
	}

	return derived
}

// fileBuilder collects the implementations sharing one constraint.
type fileBuilder struct {
	constraint string
	imports    *synth.Imports
	impls      []*synth.Implementation
}

func (g *Generator) generatePackage(pkg *analyze.PackageInfo, env synth.Env) PackageResult {
	res := PackageResult{Path: pkg.Path, Dir: pkg.Dir, Built: pkg.Files}
	log := g.log.With(zap.String("package", pkg.Path))

	builders := make(map[string]*fileBuilder)

	var order []string

	for _, decl := range pkg.Types {
		req, ok, err := scan.ScanRequest(decl.Annotations)
		if err != nil {
			res.Diagnostics.AddError(decl.ID.Name, err)
			continue
		}

		if !ok {
			continue
		}

		if req.Explicit && req.Gate != nil {
			res.Diagnostics.AddWarning(req.Gate.Pos, decl.ID.Name,
				fmt.Sprintf("//%s is redundant: the //%s gate already requests a mock", scan.DirectiveDerive, scan.DirectiveIf))
		}

		key, err := effectiveConstraint(decl.Constraint, req.Gate)
		if err != nil {
			res.Diagnostics.AddError(decl.ID.Name, err)
			continue
		}

		fb, ok := builders[key]
		if !ok {
			fb = &fileBuilder{constraint: key, imports: synth.NewImports(pkg.Path, scopeNames(pkg)...)}
			builders[key] = fb
			order = append(order, key)
		}

		impl, err := synth.Derive(decl, env, fb.imports)
		if err != nil {
			res.Diagnostics.AddError(decl.ID.Name, err)
			continue
		}

		fb.impls = append(fb.impls, &impl)
		res.Diagnostics.AddInfo(decl.Pos, decl.ID.Name, "derived "+impl.Name())
		log.Debug("derived", zap.String("type", decl.ID.Name), zap.String("constraint", key))
	}

	if res.Diagnostics.HasErrors() {
		log.Info("skipping package with errors", zap.Int("errors", len(res.Diagnostics.Errors)))
		return res
	}

	slices.Sort(order)

	used := make(map[string]bool)
	for _, key := range order {
		fb := builders[key]
		if len(fb.impls) == 0 {
			continue
		}

		file, err := g.render(pkg, fb, g.filename(key, used))
		if err != nil {
			res.Diagnostics.AddError("", err)
			res.Files = nil

			return res
		}

		res.Files = append(res.Files, file)
	}

	log.Info("generated", zap.Int("files", len(res.Files)))

	return res
}

// scopeNames lists the package-level identifiers an import name must not
// shadow.
func scopeNames(pkg *analyze.PackageInfo) []string {
	if pkg.Pkg == nil {
		return nil
	}

	return pkg.Pkg.Scope().Names()
}

// filename picks a name unique within the package for a constraint. The go
// command treats every *_test.go file as a test file, so such a slug gets
// a "_gen" suffix.
func (g *Generator) filename(constraint string, used map[string]bool) string {
	if constraint == "" {
		used[""] = true
		return g.config.Prefix + ".go"
	}

	base := slug(constraint)
	if strings.HasSuffix(base, "_test") {
		base += "_gen"
	}

	name := base
	for i := 2; used[name]; i++ {
		name = fmt.Sprintf("%s_%d", base, i)
	}

	used[name] = true

	return g.config.Prefix + "." + name + ".go"
}

func (g *Generator) render(pkg *analyze.PackageInfo, fb *fileBuilder, filename string) (GeneratedFile, error) {
	data := &templateData{
		PackageName: pkg.Name,
		Constraint:  fb.constraint,
		Imports:     fb.imports.Specs(),
		Impls:       fb.impls,
	}

	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, data); err != nil {
		return GeneratedFile{}, fmt.Errorf("executing template for %s: %w", filename, err)
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		if g.config.DebugUnformatted {
			_ = writeDebugUnformatted(pkg.Dir, filename, buf.Bytes())
		}

		return GeneratedFile{}, fmt.Errorf("formatting %s: %w", filename, err)
	}

	return GeneratedFile{
		Filename:   filename,
		Dir:        pkg.Dir,
		Constraint: fb.constraint,
		Content:    formatted,
	}, nil
}
