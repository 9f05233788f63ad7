package gen

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mock-generator/internal/analyze"
	"mock-generator/internal/diagnostic"
	"mock-generator/internal/scan"
)

const shapesSource = `package shapes

//mock:derive
type Point struct {
	X, Y int
}

//mock:derive
type Shape interface {
	Area() float64
}

type Circle struct{ R float64 }

func (c Circle) Area() float64 { return c.R }

//mock:variant
type Square struct{ Side float64 }

func (s Square) Area() float64 { return s.Side }

//derive:if(mockdata) mock
type Palette struct {
	Colors []string
	Origin Point
}

//mock:derive
//derive:if(mockdata) mock
type Swatch struct {
	Name string
}

type Plain struct{ A int }
`

const brokenSource = `package broken

//mock:derive
type Fine struct{ A int }

//mock:derive
type Body interface{ isBody() }

//mock:variant
type Sphere struct{ R float64 }

func (Sphere) isBody() {}

//mock:variant
type Cube struct{ Side float64 }

func (Cube) isBody() {}
`

const linuxSource = `//go:build linux

package sys

//mock:derive
type Handle struct{ FD int }

//derive:if(test) mock
type Sensor struct{ Name string }
`

func graphOf(t *testing.T, path, source string) *analyze.TypeGraph {
	t.Helper()

	pkg, err := analyze.LoadSource(path, filepath.Join(t.TempDir(), "types.go"), source)
	require.NoError(t, err)

	graph := analyze.NewTypeGraph()
	graph.Add(pkg)

	return graph
}

func generate(t *testing.T, graph *analyze.TypeGraph) *Result {
	t.Helper()

	res, err := NewGenerator(DefaultGeneratorConfig()).Generate(context.Background(), graph)
	require.NoError(t, err)

	return res
}

func filesByName(files []GeneratedFile) map[string]string {
	m := make(map[string]string, len(files))
	for _, f := range files {
		m[f.Filename] = string(f.Content)
	}

	return m
}

func TestGenerate_UngatedAndGatedFiles(t *testing.T) {
	res := generate(t, graphOf(t, "example.com/shapes", shapesSource))

	require.False(t, res.Diagnostics.HasErrors(), res.Diagnostics.Error())

	files := filesByName(res.Files())
	require.Len(t, files, 2)

	plain := files["zz_generated.mock.go"]
	assert.True(t, strings.HasPrefix(plain, "// Code generated by mock-generator. DO NOT EDIT."))
	assert.Contains(t, plain, "package shapes")
	assert.Contains(t, plain, `"mock-generator/mock"`)
	assert.Contains(t, plain, "func (Point) Mock() Point {\n\treturn Point{\n\t\tX: mock.Scalar[int](),\n\t\tY: mock.Scalar[int](),\n\t}\n}")
	assert.Contains(t, plain, "func MockShape() Shape {\n\treturn Square{\n\t\tSide: mock.Scalar[float64](),\n\t}\n}")
	assert.NotContains(t, plain, "Palette")
	assert.NotContains(t, plain, "Plain")

	gated := files["zz_generated.mock.mockdata.go"]
	assert.True(t, strings.HasPrefix(gated, "//go:build mockdata\n\n// Code generated by mock-generator. DO NOT EDIT."))
	assert.Contains(t, gated, "func (Palette) Mock() Palette {")
	assert.Contains(t, gated, "Origin: mock.Of[Point](),")
	assert.Contains(t, gated, "func (Swatch) Mock() Swatch {")
	assert.NotContains(t, gated, "func (Point)")
}

func TestGenerate_RedundantDeriveWarns(t *testing.T) {
	res := generate(t, graphOf(t, "example.com/shapes", shapesSource))

	require.Len(t, res.Diagnostics.Warnings, 1)
	assert.Equal(t, "Swatch", res.Diagnostics.Warnings[0].TypeName)
	assert.Contains(t, res.Diagnostics.Warnings[0].Message, "redundant")
}

func TestGenerate_ErrorSkipsPackage(t *testing.T) {
	res := generate(t, graphOf(t, "example.com/broken", brokenSource))

	assert.Empty(t, res.Files())
	require.Len(t, res.Diagnostics.Errors, 1)

	d := res.Diagnostics.Errors[0]
	assert.Equal(t, diagnostic.CodeAmbiguousVariantSelection, d.Code)
	assert.Equal(t, "Body", d.TypeName)
	assert.Equal(t, 7, d.Pos.Line)
}

func TestGenerate_FileConstraint(t *testing.T) {
	res := generate(t, graphOf(t, "example.com/sys", linuxSource))
	require.False(t, res.Diagnostics.HasErrors(), res.Diagnostics.Error())

	files := filesByName(res.Files())
	require.Len(t, files, 2)

	assert.True(t, strings.HasPrefix(files["zz_generated.mock.linux.go"], "//go:build linux\n"))
	assert.True(t, strings.HasPrefix(files["zz_generated.mock.linux_and_test_gen.go"], "//go:build linux && test\n"))
}

func TestGenerate_Deterministic(t *testing.T) {
	first := filesByName(generate(t, graphOf(t, "example.com/shapes", shapesSource)).Files())
	second := filesByName(generate(t, graphOf(t, "example.com/shapes", shapesSource)).Files())

	assert.Equal(t, first, second)
}

func TestGenerate_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewGenerator(DefaultGeneratorConfig()).Generate(ctx, graphOf(t, "example.com/shapes", shapesSource))
	require.ErrorIs(t, err, context.Canceled)
}

func TestDerivedSet(t *testing.T) {
	set := DerivedSet(graphOf(t, "example.com/shapes", shapesSource))

	assert.Len(t, set, 4)
	assert.Equal(t, analyze.TypeKindUnion, set[analyze.TypeID{PkgPath: "example.com/shapes", Name: "Shape"}])
	assert.NotContains(t, set, analyze.TypeID{PkgPath: "example.com/shapes", Name: "Plain"})
}

func TestEffectiveConstraint(t *testing.T) {
	gate, err := scan.ScanGate([]analyze.Annotation{{Name: scan.DirectiveIf, Args: "(a || b) mock"}})
	require.NoError(t, err)

	cases := []struct {
		file string
		gate *scan.Gate
		want string
	}{
		{"", nil, ""},
		{"linux", nil, "linux"},
		{"", gate, "a || b"},
		{"linux", gate, "linux && (a || b)"},
		{"a || b", gate, "a || b"},
	}

	for _, tc := range cases {
		got, err := effectiveConstraint(tc.file, tc.gate)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}

	_, err = effectiveConstraint("linux &&", nil)
	require.Error(t, err)
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "mockdata", slug("mockdata"))
	assert.Equal(t, "test_and_not_race", slug("test && !race"))
	assert.Equal(t, "a_or_b_and_c", slug("(a || b) && c"))
	assert.Equal(t, "go1_22", slug("go1.22"))
}

func TestFilename_Collision(t *testing.T) {
	g := NewGenerator(DefaultGeneratorConfig())
	used := make(map[string]bool)

	assert.Equal(t, "zz_generated.mock.go", g.filename("", used))
	assert.Equal(t, "zz_generated.mock.a_b.go", g.filename("a_b", used))
	assert.Equal(t, "zz_generated.mock.a_b_2.go", g.filename("a.b", used))
}

func TestFilename_TestSuffix(t *testing.T) {
	g := NewGenerator(DefaultGeneratorConfig())
	used := make(map[string]bool)

	assert.Equal(t, "zz_generated.mock.integration_test_gen.go", g.filename("integration_test", used))
	assert.Equal(t, "zz_generated.mock.linux_and_test_gen.go", g.filename("linux && test", used))
	assert.Equal(t, "zz_generated.mock.test.go", g.filename("test", used))
	assert.Equal(t, "zz_generated.mock.integration_test_gen_2.go", g.filename("integration.test", used))
}

const scopeSource = `package clash

var mock = 1

func mock2() int { return mock }

//mock:derive
type Point struct {
	X, Y int
}
`

func TestGenerate_AvoidsPackageScopeNames(t *testing.T) {
	res := generate(t, graphOf(t, "example.com/clash", scopeSource))
	require.False(t, res.Diagnostics.HasErrors(), res.Diagnostics.Error())

	out := filesByName(res.Files())["zz_generated.mock.go"]
	assert.Contains(t, out, `mock3 "mock-generator/mock"`)
	assert.Contains(t, out, "X: mock3.Scalar[int](),")
	assert.NotContains(t, out, "mock.Scalar")
}

func TestWrite_RemovesStale(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"zz_generated.mock.old.go", "zz_generated.mockery.go", "types.go", "zz_generated.mock.extra.go"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("package p\n"), filePerm))
	}

	res := &Result{Packages: []PackageResult{{
		Dir:   dir,
		Files: []GeneratedFile{{Filename: "zz_generated.mock.go", Dir: dir, Content: []byte("package p\n")}},
		Built: []string{"types.go", "zz_generated.mock.go", "zz_generated.mock.old.go", "zz_generated.mockery.go"},
	}}}

	removed, err := Write(res, DefaultPrefix)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "zz_generated.mock.old.go")}, removed)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}

	assert.ElementsMatch(t, []string{
		"types.go", "zz_generated.mock.go", "zz_generated.mockery.go", "zz_generated.mock.extra.go",
	}, names)
}

func TestWrite_SkipsPackagesWithErrors(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, "zz_generated.mock.go")
	require.NoError(t, os.WriteFile(stale, []byte("package p\n"), filePerm))

	res := &Result{Packages: []PackageResult{{Dir: dir}}}
	res.Packages[0].Diagnostics.AddError("T", assert.AnError)

	removed, err := Write(res, DefaultPrefix)
	require.NoError(t, err)
	assert.Empty(t, removed)
	assert.FileExists(t, stale)
}
