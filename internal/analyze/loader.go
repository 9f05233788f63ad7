package analyze

import (
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/tools/go/packages"
)

// LoadMode specifies what information to load from packages.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedImports

// LoadConfig controls how packages are loaded.
type LoadConfig struct {
	// Dir is the working directory patterns are resolved against.
	Dir string
	// Tags are extra build tags, so gated declarations can be analyzed.
	Tags []string
	// GeneratedPrefix names files written by previous runs. Their contents
	// are dropped before type checking, and errors the build reports
	// against them are ignored, so stale output never takes part.
	GeneratedPrefix string
}

// Analyzer loads Go packages and builds a type graph.
type Analyzer struct {
	cfg   LoadConfig
	graph *TypeGraph
}

// NewAnalyzer creates a new Analyzer.
func NewAnalyzer(cfg LoadConfig) *Analyzer {
	return &Analyzer{
		cfg:   cfg,
		graph: NewTypeGraph(),
	}
}

// LoadPackages loads the specified packages and builds the type graph.
// Patterns are standard Go package patterns (e.g., "./...", "mock-generator/examples/shapes").
func (a *Analyzer) LoadPackages(ctx context.Context, patterns ...string) (*TypeGraph, error) {
	cfg := &packages.Config{
		Context:   ctx,
		Mode:      LoadMode,
		Dir:       a.cfg.Dir,
		ParseFile: a.parseFile,
	}
	if len(a.cfg.Tags) > 0 {
		cfg.BuildFlags = []string{"-tags=" + strings.Join(a.cfg.Tags, ",")}
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	// Check for package errors
	var errs []error
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			if a.staleOnly(e) {
				continue
			}

			errs = append(errs, e)
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors: %w", errors.Join(errs...))
	}

	for _, pkg := range pkgs {
		if len(pkg.GoFiles) == 0 {
			continue
		}

		a.graph.Add(BuildPackage(pkg.Fset, pkg.Types, pkg.TypesInfo, pkg.Syntax, filepath.Dir(pkg.GoFiles[0])))
	}

	return a.graph, nil
}

// Graph returns the current type graph.
func (a *Analyzer) Graph() *TypeGraph {
	return a.graph
}

// isGenerated reports whether filename was written by a previous run.
func (a *Analyzer) isGenerated(filename string) bool {
	return a.cfg.GeneratedPrefix != "" && strings.HasPrefix(filepath.Base(filename), a.cfg.GeneratedPrefix)
}

// staleOnly reports whether every position e carries points at a file
// written by a previous run. Compile errors the go command reports come
// without Pos, as lines of "file:line:col: message" in Msg.
func (a *Analyzer) staleOnly(e packages.Error) bool {
	if e.Pos != "" {
		return a.isGenerated(positionFile(e.Pos))
	}

	found := false
	for line := range strings.Lines(e.Msg) {
		if strings.HasPrefix(line, "#") {
			continue
		}

		pos, _, ok := strings.Cut(line, ": ")
		if !ok {
			continue
		}

		if !a.isGenerated(positionFile(pos)) {
			return false
		}

		found = true
	}

	return found
}

// positionFile strips the line and column from a "file:line:col" position.
func positionFile(pos string) string {
	for range 2 {
		i := strings.LastIndexByte(pos, ':')
		if i < 0 {
			break
		}

		if _, err := strconv.Atoi(pos[i+1:]); err != nil {
			break
		}

		pos = pos[:i]
	}

	return pos
}

// parseFile parses a source file, keeping only the package clause of
// previously generated files.
func (a *Analyzer) parseFile(fset *token.FileSet, filename string, src []byte) (*ast.File, error) {
	if a.isGenerated(filename) {
		return parser.ParseFile(fset, filename, src, parser.PackageClauseOnly)
	}

	return parser.ParseFile(fset, filename, src, parser.AllErrors|parser.ParseComments|parser.SkipObjectResolution)
}

// LoadSource type-checks a single in-memory file as package pkgPath. Imports
// are resolved from source, which keeps it usable for standard library
// dependencies without a build cache.
func LoadSource(pkgPath, filename, src string) (*PackageInfo, error) {
	fset := token.NewFileSet()

	file, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}

	info := &types.Info{
		Types: make(map[ast.Expr]types.TypeAndValue),
		Defs:  make(map[*ast.Ident]types.Object),
		Uses:  make(map[*ast.Ident]types.Object),
	}

	conf := types.Config{Importer: importer.ForCompiler(fset, "source", nil)}

	pkg, err := conf.Check(pkgPath, fset, []*ast.File{file}, info)
	if err != nil {
		return nil, fmt.Errorf("type-checking %s: %w", pkgPath, err)
	}

	return BuildPackage(fset, pkg, info, []*ast.File{file}, filepath.Dir(filename)), nil
}
