package synth

import (
	"fmt"
	"go/token"
	"go/types"
	"strings"

	"mock-generator/internal/analyze"
	"mock-generator/internal/diagnostic"
	"mock-generator/internal/scan"
)

//go:generate go tool stringer -type=Shape -trimprefix=Shape -output=shape_string.go

// Shape is the literal form a constructor body takes.
type Shape int

const (
	ShapeRecord Shape = iota // keyed literal, T{A: a, B: b}
	ShapeTuple               // positional literal T{a, b}, or conversion T(a)
	ShapeUnit                // T{}
)

// Field is a slot of a literal together with its directive.
type Field struct {
	Name      string
	Type      types.Type
	Directive scan.FieldDirective
	Pos       token.Position
	// Path names the field in diagnostics, e.g. "Canvas.Origin".
	Path string
	// PkgPath is the package declaring the field.
	PkgPath string
}

// accessible reports whether a literal written in package self may set f.
func (f Field) accessible(self string) bool {
	return f.Name == "" || token.IsExported(f.Name) || f.PkgPath == "" || f.PkgPath == self
}

// FieldsOf turns the fields of a struct declaration into literal slots.
// Positional slots are named by index in diagnostics.
func FieldsOf(path *analyze.TypePath, shape Shape, infos []analyze.FieldInfo) []Field {
	fields := make([]Field, 0, len(infos))
	for _, info := range infos {
		p := path.Field(info.Name)
		if shape == ShapeTuple {
			p = path.Slot(info.Index)
		}

		fields = append(fields, Field{
			Name:      info.Name,
			Type:      info.Type,
			Directive: scan.ScanFieldDirective(info.Tag),
			Pos:       info.Pos,
			Path:      p.String(),
			PkgPath:   info.PkgPath,
		})
	}

	return fields
}

// ShapeOf picks the literal form of a struct. A blank field can only be
// filled positionally.
func ShapeOf(infos []analyze.FieldInfo, positional bool) Shape {
	if len(infos) == 0 {
		return ShapeUnit
	}

	for i := range infos {
		if infos[i].IsBlank() {
			return ShapeTuple
		}
	}

	if positional {
		return ShapeTuple
	}

	return ShapeRecord
}

// Initializer is one element of a literal. Key is empty for positional slots.
type Initializer struct {
	Key  string
	Expr string
}

// SynthesizeFields produces one initializer per field, in declaration order.
// A Record field must be named; anything else is a bug in the caller.
func SynthesizeFields(shape Shape, fields []Field, r *Resolver) ([]Initializer, error) {
	inits := make([]Initializer, 0, len(fields))
	for _, f := range fields {
		if !f.accessible(r.imports.self) {
			return nil, diagnostic.Errorf(diagnostic.CodeFieldNotMockable, f.Pos,
				"field %s is unexported in package %s and cannot be set from %s", f.Path, f.PkgPath, r.imports.self)
		}

		var init Initializer
		if shape == ShapeRecord {
			if f.Name == "" {
				panic("encountered named field without an identifier")
			}

			init.Key = f.Name
		}

		switch f.Directive {
		case scan.UseDefaultValue:
			init.Expr = r.ZeroExpr(f.Type)

		default:
			expr, err := r.MockExpr(f.Type)
			if err != nil {
				return nil, diagnostic.Errorf(diagnostic.CodeFieldNotMockable, f.Pos,
					"field %s: %v; derive a mock for its type or tag it `mock:\"default\"`", f.Path, err)
			}

			init.Expr = expr
		}

		inits = append(inits, init)
	}

	return inits, nil
}

// Body is the value a constructor returns.
type Body struct {
	Shape Shape
	// Type is the literal's type as written in the generated file.
	Type string
	// Conversion builds a defined non-struct type as Type(<slot>).
	Conversion bool
	// Addr takes the address of the literal, for pointer-implemented variants.
	Addr bool
	// Ref wraps a conversion that needs an address, e.g. "mock.Ref".
	Ref   string
	Inits []Initializer
}

// String renders the body as a Go expression. The output is meant to be
// passed through go/format.
func (b Body) String() string {
	var sb strings.Builder

	switch {
	case b.Conversion:
		expr := b.Type + "(" + b.Inits[0].Expr + ")"
		if b.Ref != "" {
			expr = b.Ref + "(" + expr + ")"
		}

		return expr

	case b.Addr:
		sb.WriteString("&")
	}

	sb.WriteString(b.Type)

	switch b.Shape {
	case ShapeUnit:
		sb.WriteString("{}")

	case ShapeTuple:
		exprs := make([]string, len(b.Inits))
		for i, init := range b.Inits {
			exprs[i] = init.Expr
		}

		sb.WriteString("{" + strings.Join(exprs, ", ") + "}")

	default:
		sb.WriteString("{\n")
		for _, init := range b.Inits {
			sb.WriteString(init.Key + ": " + init.Expr + ",\n")
		}
		sb.WriteString("}")
	}

	return sb.String()
}

// SynthesizeBody builds the body for decl. A union is built as its selected
// variant.
func SynthesizeBody(decl *analyze.TypeDecl, r *Resolver) (Body, error) {
	path := analyze.NewTypePath(decl.ID.Name)

	switch decl.Kind {
	case analyze.TypeKindStruct, analyze.TypeKindDefined:
		return plainBody(decl, path, r)

	case analyze.TypeKindUnion:
		variant, err := scan.ScanVariantSelection(decl)
		if err != nil {
			return Body{}, err
		}

		body, err := plainBody(variant.Decl, path.Field(variant.Decl.ID.Name), r)
		if err != nil {
			return Body{}, err
		}

		if variant.ByPointer {
			if body.Conversion {
				body.Ref = r.runtime("Ref")
			} else {
				body.Addr = true
			}
		}

		return body, nil

	case analyze.TypeKindTypeSet:
		return Body{}, diagnostic.Errorf(diagnostic.CodeUnsupportedShape, decl.KeywordPos,
			"%s is a type-set interface and has no values of its own", decl.ID.Name)

	case analyze.TypeKindAlias:
		return Body{}, diagnostic.Errorf(diagnostic.CodeUnsupportedShape, decl.Pos,
			"%s is an alias; derive the mock on the aliased type", decl.ID.Name)

	case analyze.TypeKindGeneric:
		return Body{}, diagnostic.Errorf(diagnostic.CodeUnsupportedShape, decl.Pos,
			"%s has type parameters", decl.ID.Name)

	default:
		return Body{}, diagnostic.Errorf(diagnostic.CodeUnsupportedShape, decl.Pos,
			"%s cannot be mocked", decl.ID.Name)
	}
}

// plainBody builds the literal of a struct or defined type.
func plainBody(decl *analyze.TypeDecl, path *analyze.TypePath, r *Resolver) (Body, error) {
	typeName := r.TypeString(decl.Type())

	if decl.Kind == analyze.TypeKindDefined {
		switch decl.Underlying.(type) {
		case *types.Signature, *types.Chan:
			return Body{}, diagnostic.Errorf(diagnostic.CodeUnsupportedShape, decl.Pos,
				"%s is a %s type", decl.ID.Name, kindWord(decl.Underlying))
		}

		field := Field{Type: decl.Underlying, Pos: decl.Pos, Path: path.Slot(0).String()}

		inits, err := SynthesizeFields(ShapeTuple, []Field{field}, r)
		if err != nil {
			return Body{}, err
		}

		return Body{Shape: ShapeTuple, Type: typeName, Conversion: true, Inits: inits}, nil
	}

	if decl.Kind != analyze.TypeKindStruct {
		return Body{}, diagnostic.Errorf(diagnostic.CodeUnsupportedShape, decl.Pos,
			"%s is a %s and cannot be built as a literal", decl.ID.Name, decl.Kind)
	}

	if f, ok := foreignField(decl); ok {
		return foreignBody(decl, f, typeName, r)
	}

	shape := ShapeOf(decl.Fields, scan.Positional(decl.Annotations))

	inits, err := SynthesizeFields(shape, FieldsOf(path, shape, decl.Fields), r)
	if err != nil {
		return Body{}, err
	}

	return Body{Shape: shape, Type: typeName, Inits: inits}, nil
}

// foreignField returns the first field of decl that its own package cannot
// name, as in `type Mine other.Inner` when Inner has unexported fields.
func foreignField(decl *analyze.TypeDecl) (analyze.FieldInfo, bool) {
	for _, f := range decl.Fields {
		if !f.Accessible(decl.ID.PkgPath) {
			return f, true
		}
	}

	return analyze.FieldInfo{}, false
}

// foreignBody converts the mock of the named type decl is declared over,
// the only way to build a value with fields of another package.
func foreignBody(decl *analyze.TypeDecl, f analyze.FieldInfo, typeName string, r *Resolver) (Body, error) {
	source, ok := types.Unalias(decl.Source).(*types.Named)
	if !ok || types.Identical(source, decl.Type()) {
		return Body{}, diagnostic.Errorf(diagnostic.CodeUnsupportedShape, decl.Pos,
			"%s has field %s unexported in package %s and cannot be built as a literal", decl.ID.Name, f.Name, f.PkgPath)
	}

	expr, err := r.MockExpr(source)
	if err != nil {
		return Body{}, diagnostic.Errorf(diagnostic.CodeUnsupportedShape, decl.Pos,
			"%s has field %s unexported in package %s: %v", decl.ID.Name, f.Name, f.PkgPath, err)
	}

	return Body{Shape: ShapeTuple, Type: typeName, Conversion: true, Inits: []Initializer{{Expr: expr}}}, nil
}

func kindWord(t types.Type) string {
	if _, ok := t.(*types.Chan); ok {
		return "channel"
	}

	return "func"
}

// Implementation is the mock constructor of one type.
type Implementation struct {
	ID analyze.TypeID
	// Func is the constructor name of a union. Empty for the Mock method.
	Func string
	// Type is the declared type as written in the generated file.
	Type string
	Body Body
	Gate *scan.Gate
}

// IsMethod reports whether the implementation is a Mock method.
func (impl *Implementation) IsMethod() bool {
	return impl.Func == ""
}

// Name returns the function or method name.
func (impl *Implementation) Name() string {
	if impl.IsMethod() {
		return "Mock"
	}

	return impl.Func
}

// Source renders the declaration, doc comment included.
func (impl *Implementation) Source() string {
	var sb strings.Builder
	if impl.IsMethod() {
		fmt.Fprintf(&sb, "// Mock returns a deterministic %s for tests.\n", impl.Type)
		fmt.Fprintf(&sb, "func (%s) Mock() %s {\n", impl.Type, impl.Type)
	} else {
		fmt.Fprintf(&sb, "// %s returns a deterministic %s for tests.\n", impl.Func, impl.Type)
		fmt.Fprintf(&sb, "func %s() %s {\n", impl.Func, impl.Type)
	}

	sb.WriteString("return " + impl.Body.String() + "\n}\n")

	return sb.String()
}

// SynthesizeImpl wraps a body into the constructor of decl. The gate is
// carried along; the file it ends up in is conditioned on it.
func SynthesizeImpl(decl *analyze.TypeDecl, gate *scan.Gate, body Body, r *Resolver) Implementation {
	impl := Implementation{
		ID:   decl.ID,
		Type: r.TypeString(decl.Type()),
		Body: body,
		Gate: gate,
	}

	if decl.Kind == analyze.TypeKindUnion {
		impl.Func = ConstructorName(decl.ID.Name)
	}

	return impl
}

// Derive runs scanning and synthesis for one requested declaration. The
// imports are only extended when the derivation succeeds.
func Derive(decl *analyze.TypeDecl, env Env, imports *Imports) (Implementation, error) {
	req, _, err := scan.ScanRequest(decl.Annotations)
	if err != nil {
		return Implementation{}, err
	}

	fork := imports.Fork()
	r := NewResolver(env, fork)

	body, err := SynthesizeBody(decl, r)
	if err != nil {
		return Implementation{}, err
	}

	impl := SynthesizeImpl(decl, req.Gate, body, r)
	imports.Commit(fork)

	return impl, nil
}
