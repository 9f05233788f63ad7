package analyze

import (
	"context"
	"go/types"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/go/packages"
)

const shapesPkg = "mock-generator/examples/shapes"

func loadShapes(t *testing.T, tags ...string) *PackageInfo {
	t.Helper()

	analyzer := NewAnalyzer(LoadConfig{Tags: tags, GeneratedPrefix: "zz_generated.mock"})
	graph, err := analyzer.LoadPackages(context.Background(), shapesPkg)
	require.NoError(t, err)
	require.Contains(t, graph.Packages, shapesPkg)

	return graph.Packages[shapesPkg]
}

func TestAnalyzer_LoadPackages(t *testing.T) {
	pkg := loadShapes(t)

	assert.Equal(t, "shapes", pkg.Name)
	assert.NotEmpty(t, pkg.Dir)

	kinds := map[string]TypeKind{
		"Point":   TypeKindStruct,
		"Marker":  TypeKindStruct,
		"Celsius": TypeKindDefined,
		"Shape":   TypeKindUnion,
		"Layer":   TypeKindUnion,
		"Canvas":  TypeKindStruct,
	}

	for name, kind := range kinds {
		decl := pkg.Lookup(name)
		require.NotNil(t, decl, name)
		assert.Equal(t, kind, decl.Kind, name)
	}
}

func TestAnalyzer_DeclarationOrder(t *testing.T) {
	pkg := loadShapes(t)

	var names []string
	for _, d := range pkg.Types {
		names = append(names, d.ID.Name)
	}

	assert.Equal(t, []string{
		"Point", "Wrapped", "Marker", "Celsius", "Shape", "Circle", "Square",
		"Layer", "Raster", "Vector", "Canvas", "Palette",
	}, names)
}

func TestAnalyzer_Fields(t *testing.T) {
	canvas := loadShapes(t).Lookup("Canvas")
	require.NotNil(t, canvas)
	require.Len(t, canvas.Fields, 9)

	created := canvas.Fields[7]
	assert.Equal(t, "Created", created.Name)
	assert.Equal(t, "time.Time", created.Type.String())
	assert.Equal(t, "default", created.Tag.Get("mock"))

	notes := canvas.Fields[8]
	assert.Equal(t, "notes", notes.Name)
	assert.Equal(t, 8, notes.Index)
}

func TestAnalyzer_Variants(t *testing.T) {
	pkg := loadShapes(t)

	shape := pkg.Lookup("Shape")
	require.Len(t, shape.Variants, 2)
	assert.Equal(t, "Circle", shape.Variants[0].Decl.ID.Name)
	assert.Equal(t, "Square", shape.Variants[1].Decl.ID.Name)
	assert.False(t, shape.Variants[1].ByPointer)

	layer := pkg.Lookup("Layer")
	require.Len(t, layer.Variants, 2)
	assert.True(t, layer.Variants[0].ByPointer)
	assert.True(t, layer.Variants[1].ByPointer)
}

func TestAnalyzer_Annotations(t *testing.T) {
	pkg := loadShapes(t)

	wrapped := pkg.Lookup("Wrapped")
	require.Len(t, wrapped.Annotations, 2)
	assert.Equal(t, "mock:derive", wrapped.Annotations[0].Name)
	assert.Equal(t, "mock:positional", wrapped.Annotations[1].Name)

	palette := pkg.Lookup("Palette")
	require.Len(t, palette.Annotations, 1)
	assert.Equal(t, "derive:if", palette.Annotations[0].Name)
	assert.Equal(t, "(mockdata) mock", palette.Annotations[0].Args)
	assert.Empty(t, palette.Constraint)
}

func TestAnalyzer_Tags(t *testing.T) {
	pkg := loadShapes(t, "mockdata")
	assert.NotNil(t, pkg.Lookup("Palette"))
}

func TestAnalyzer_BadPattern(t *testing.T) {
	_, err := NewAnalyzer(LoadConfig{}).LoadPackages(context.Background(), "mock-generator/does/not/exist")
	require.Error(t, err)
}

const buildSource = `//go:build linux && !race

package sample

// Documented is derived.
//
//mock:derive
// mock:ignored has a space and is prose.
//derive:if(test)   mock
type Documented struct {
	_ int
	A string ` + "`mock:\"default\"`" + `
}

type (
	//mock:derive
	Grouped int

	Other string
)

//mock:derive
type (
	First  int
	Second int
)

type Alias = Documented

type Box[T any] struct{ V T }

type Number interface{ ~int | ~float64 }

type Union interface{ isUnion() }
`

func TestLoadSource(t *testing.T) {
	pkg, err := LoadSource("example.com/sample", "sample.go", buildSource)
	require.NoError(t, err)

	doc := pkg.Lookup("Documented")
	require.NotNil(t, doc)
	assert.Equal(t, "linux && !race", doc.Constraint)
	require.Len(t, doc.Annotations, 2)
	assert.Equal(t, Annotation{Name: "derive:if", Args: "(test)   mock", Pos: doc.Annotations[1].Pos}, doc.Annotations[1])
	assert.Equal(t, 9, doc.Annotations[1].Pos.Line)
	assert.True(t, doc.Fields[0].IsBlank())
	assert.False(t, doc.Fields[1].IsBlank())
	assert.Equal(t, 10, doc.KeywordPos.Line)
	assert.Equal(t, 17, doc.KeywordPos.Column)

	grouped := pkg.Lookup("Grouped")
	require.Len(t, grouped.Annotations, 1)
	assert.Equal(t, TypeKindDefined, grouped.Kind)
	assert.Equal(t, "int", grouped.Underlying.String())
	assert.Empty(t, pkg.Lookup("Other").Annotations)

	// A group doc comment is not attached to any of several specs.
	assert.Empty(t, pkg.Lookup("First").Annotations)
	assert.Empty(t, pkg.Lookup("Second").Annotations)

	assert.Equal(t, TypeKindAlias, pkg.Lookup("Alias").Kind)
	assert.Equal(t, TypeKindGeneric, pkg.Lookup("Box").Kind)
	assert.Equal(t, TypeKindTypeSet, pkg.Lookup("Number").Kind)
	assert.Equal(t, TypeKindUnion, pkg.Lookup("Union").Kind)
	assert.Empty(t, pkg.Lookup("Union").Variants)
}

func TestAnalyzer_StaleOnly(t *testing.T) {
	a := NewAnalyzer(LoadConfig{GeneratedPrefix: "zz_generated.mock"})

	cases := []struct {
		name string
		err  packages.Error
		want bool
	}{
		{"typed", packages.Error{Pos: "/src/p/zz_generated.mock.go:10:7", Msg: "undefined: Point"}, true},
		{"source", packages.Error{Pos: "/src/p/types.go:3:1", Msg: "undefined: Point"}, false},
		{"listed", packages.Error{Msg: "# example.com/p\n./zz_generated.mock.go:10:7: undefined: Point\n"}, true},
		{"mixed", packages.Error{Msg: "./zz_generated.mock.go:10:7: undefined: Point\n./types.go:4:2: x declared and not used\n"}, false},
		{"no position", packages.Error{Msg: "no required module provides package example.com/q"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, a.staleOnly(tc.err))
		})
	}

	assert.False(t, NewAnalyzer(LoadConfig{}).staleOnly(cases[0].err))
}

func TestPositionFile(t *testing.T) {
	assert.Equal(t, "/src/p/a.go", positionFile("/src/p/a.go:10:7"))
	assert.Equal(t, "/src/p/a.go", positionFile("/src/p/a.go:10"))
	assert.Equal(t, "/src/p/a.go", positionFile("/src/p/a.go"))
	assert.Equal(t, `C:\src\a.go`, positionFile(`C:\src\a.go:3:4`))
}

const foreignSource = `package sample

import "time"

type Stamp time.Time

type Local struct{ secret int }
`

func TestLoadSource_ForeignFields(t *testing.T) {
	pkg, err := LoadSource("example.com/sample", "stamp.go", foreignSource)
	require.NoError(t, err)

	assert.Equal(t, []string{"stamp.go"}, pkg.Files)

	stamp := pkg.Lookup("Stamp")
	require.Equal(t, TypeKindStruct, stamp.Kind)
	require.NotEmpty(t, stamp.Fields)
	assert.Equal(t, "wall", stamp.Fields[0].Name)
	assert.Equal(t, "time", stamp.Fields[0].PkgPath)
	assert.False(t, stamp.Fields[0].Accessible("example.com/sample"))

	named, ok := stamp.Source.(*types.Named)
	require.True(t, ok)
	assert.Equal(t, "time.Time", named.String())

	local := pkg.Lookup("Local")
	assert.True(t, local.Fields[0].Accessible("example.com/sample"))
}

func TestTypeGraph(t *testing.T) {
	pkg, err := LoadSource("example.com/sample", "sample.go", buildSource)
	require.NoError(t, err)

	g := NewTypeGraph()
	g.Add(pkg)
	g.Add(&PackageInfo{Path: "example.com/sample"})

	assert.Equal(t, []string{"example.com/sample"}, g.Order)
	assert.Same(t, pkg, g.Packages["example.com/sample"])
	assert.NotNil(t, g.GetType(TypeID{PkgPath: "example.com/sample", Name: "Grouped"}))
	assert.Nil(t, g.GetType(TypeID{PkgPath: "example.com/other", Name: "Grouped"}))
}

func TestTypeID_String(t *testing.T) {
	assert.Equal(t, "example.com/sample.Point", TypeID{PkgPath: "example.com/sample", Name: "Point"}.String())
	assert.Equal(t, "int", TypeID{Name: "int"}.String())
}

func TestTypeKind_String(t *testing.T) {
	assert.Equal(t, "struct", TypeKindStruct.String())
	assert.Equal(t, "union", TypeKindUnion.String())
	assert.Equal(t, "type set", TypeKindTypeSet.String())
	assert.Equal(t, "unknown", TypeKind(42).String())
}
