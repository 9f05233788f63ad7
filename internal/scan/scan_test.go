package scan

import (
	"go/token"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mock-generator/internal/analyze"
	"mock-generator/internal/diagnostic"
)

func ann(name, args string, line int) analyze.Annotation {
	return analyze.Annotation{
		Name: name,
		Args: args,
		Pos:  token.Position{Filename: "types.go", Line: line, Column: 1},
	}
}

func TestScanFieldDirective(t *testing.T) {
	cases := []struct {
		tag  reflect.StructTag
		want FieldDirective
	}{
		{``, UseMockRecursion},
		{`json:"x"`, UseMockRecursion},
		{`mock:""`, UseMockRecursion},
		{`mock:"default"`, UseDefaultValue},
		{`mock:"default,default"`, UseDefaultValue},
		{`json:"x" mock:" other , default"`, UseDefaultValue},
		{`mock:"other"`, UseMockRecursion},
	}

	for _, tc := range cases {
		t.Run(string(tc.tag), func(t *testing.T) {
			assert.Equal(t, tc.want, ScanFieldDirective(tc.tag))
		})
	}
}

func TestFieldDirective_String(t *testing.T) {
	assert.Equal(t, "UseMockRecursion", UseMockRecursion.String())
	assert.Equal(t, "UseDefaultValue", UseDefaultValue.String())
	assert.Equal(t, "FieldDirective(7)", FieldDirective(7).String())
}

func TestScanGate_None(t *testing.T) {
	gate, err := ScanGate(nil)
	require.NoError(t, err)
	assert.Nil(t, gate)

	gate, err = ScanGate([]analyze.Annotation{ann(DirectiveDerive, "", 1)})
	require.NoError(t, err)
	assert.Nil(t, gate)
	assert.Equal(t, "", gate.String())
}

func TestScanGate_FirstQualifyingWins(t *testing.T) {
	annotations := []analyze.Annotation{
		ann(DirectiveIf, "(linux) stringer", 1),
		ann(DirectiveIf, "(test && !race) stringer, mock", 2),
		ann(DirectiveIf, "(integration) mock", 3),
	}

	gate, err := ScanGate(annotations)
	require.NoError(t, err)
	require.NotNil(t, gate)

	assert.Equal(t, "test && !race", gate.String())
	assert.Equal(t, 2, gate.Pos.Line)
}

func TestScanGate_OtherCapabilitiesOnly(t *testing.T) {
	gate, err := ScanGate([]analyze.Annotation{ann(DirectiveIf, "(test) stringer, deepcopy", 1)})
	require.NoError(t, err)
	assert.Nil(t, gate)
}

func TestScanGate_NestedPredicate(t *testing.T) {
	gate, err := ScanGate([]analyze.Annotation{ann(DirectiveIf, "((a || b) && c) mock", 1)})
	require.NoError(t, err)
	require.NotNil(t, gate)
	assert.Equal(t, "(a || b) && c", gate.String())
}

func TestScanGate_Malformed(t *testing.T) {
	cases := map[string]string{
		"no parenthesis":     "test mock",
		"unbalanced":         "(test mock",
		"empty predicate":    "() mock",
		"bad expression":     "(test &&) mock",
		"no capabilities":    "(test)",
		"empty capability":   "(test) mock,",
		"invalid capability": "(test) (mock)",
	}

	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			gate, err := ScanGate([]analyze.Annotation{ann(DirectiveIf, args, 5)})
			require.Error(t, err)
			assert.Nil(t, gate)
			assert.ErrorIs(t, err, diagnostic.CodeMalformedGateAnnotation)

			var ce *diagnostic.CodeError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, 5, ce.Pos.Line)
		})
	}
}

func TestScanGate_MalformedAfterMatchIsIgnored(t *testing.T) {
	gate, err := ScanGate([]analyze.Annotation{
		ann(DirectiveIf, "(test) mock", 1),
		ann(DirectiveIf, "broken", 2),
	})
	require.NoError(t, err)
	require.NotNil(t, gate)
	assert.Equal(t, "test", gate.String())
}

func TestScanRequest(t *testing.T) {
	req, ok, err := ScanRequest([]analyze.Annotation{ann(DirectiveDerive, "", 1), ann(DirectivePositional, "", 2)})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, req.Explicit)
	assert.True(t, req.Positional)
	assert.Nil(t, req.Gate)

	req, ok, err = ScanRequest([]analyze.Annotation{ann(DirectiveIf, "(test) mock", 1)})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, req.Explicit)
	assert.Equal(t, "test", req.Gate.String())

	_, ok, err = ScanRequest([]analyze.Annotation{ann(DirectiveVariant, "", 1)})
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = ScanRequest([]analyze.Annotation{ann(DirectiveIf, "(", 1)})
	require.ErrorIs(t, err, diagnostic.CodeMalformedGateAnnotation)
	assert.False(t, ok)
}

const unionSource = `package shapes

// Shape has no selected variant.
//
//mock:derive
type Shape interface {
	isShape()
}

type Circle struct{ R float64 }

func (Circle) isShape() {}

type Square struct{ Side float64 }

func (Square) isShape() {}

// Figure has exactly one.
//
//mock:derive
type Figure interface {
	isFigure()
}

//mock:variant Figure
type Triangle struct{ Base, Height float64 }

func (*Triangle) isFigure() {}

type Line struct{ Length float64 }

func (Line) isFigure() {}

// Body has two.
//
//mock:derive
type Body interface {
	isBody()
}

//mock:variant
type Sphere struct{ R float64 }

func (Sphere) isBody() {}

//mock:variant
type Cube struct{ Side float64 }

func (Cube) isBody() {}
`

func loadUnions(t *testing.T) *analyze.PackageInfo {
	t.Helper()

	pkg, err := analyze.LoadSource("example.com/shapes", "shapes.go", unionSource)
	require.NoError(t, err)

	return pkg
}

func TestScanVariantSelection_Exactly(t *testing.T) {
	pkg := loadUnions(t)

	v, err := ScanVariantSelection(pkg.Lookup("Figure"))
	require.NoError(t, err)
	assert.Equal(t, "Triangle", v.Decl.ID.Name)
	assert.True(t, v.ByPointer)
}

func TestScanVariantSelection_None(t *testing.T) {
	pkg := loadUnions(t)

	_, err := ScanVariantSelection(pkg.Lookup("Shape"))
	require.ErrorIs(t, err, diagnostic.CodeNoVariantSelected)
	assert.Contains(t, err.Error(), "no //mock:variant directive found in any of the 2 variants of Shape")

	// The marker on Triangle names Figure only.
	assert.NotContains(t, err.Error(), "Triangle")
}

func TestScanVariantSelection_Ambiguous(t *testing.T) {
	pkg := loadUnions(t)

	_, err := ScanVariantSelection(pkg.Lookup("Body"))
	require.ErrorIs(t, err, diagnostic.CodeAmbiguousVariantSelection)
	assert.Contains(t, err.Error(), "found Sphere, Cube; unable to infer which one to use")

	var ce *diagnostic.CodeError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, pkg.Lookup("Body").KeywordPos, ce.Pos)
}
