package synth

import (
	"errors"
	"fmt"
	"go/token"
	"go/types"

	"mock-generator/internal/analyze"
	"mock-generator/internal/common"
)

// DefaultRuntime is the import path of the mock runtime package.
const DefaultRuntime = "mock-generator/mock"

// Env is shared by every derivation of a run.
type Env struct {
	// Runtime is the import path of the mock runtime package.
	Runtime string
	// Derived holds every type that gets an implementation in this run.
	Derived map[analyze.TypeID]analyze.TypeKind
}

// Resolver turns field types into expressions of the generated file.
type Resolver struct {
	env      Env
	imports  *Imports
	visiting map[*types.Named]bool
}

// NewResolver creates a Resolver writing qualifiers into imports.
func NewResolver(env Env, imports *Imports) *Resolver {
	if env.Runtime == "" {
		env.Runtime = DefaultRuntime
	}

	return &Resolver{
		env:      env,
		imports:  imports,
		visiting: make(map[*types.Named]bool),
	}
}

// Imports returns the import set the resolver writes to.
func (r *Resolver) Imports() *Imports {
	return r.imports
}

// TypeString renders t as written in the generated file.
func (r *Resolver) TypeString(t types.Type) string {
	return types.TypeString(t, r.imports.Qualifier)
}

// runtime returns a qualified identifier of the runtime package.
func (r *Resolver) runtime(name string) string {
	return r.imports.Add(r.env.Runtime, common.PkgAlias(r.env.Runtime)) + "." + name
}

// qualified returns a package-level identifier as written in the generated file.
func (r *Resolver) qualified(pkg *types.Package, name string) string {
	if q := r.imports.Qualifier(pkg); q != "" {
		return q + "." + name
	}

	return name
}

// MockExpr returns an expression producing the mock value of t.
func (r *Resolver) MockExpr(t types.Type) (string, error) {
	switch tt := t.(type) {
	case *types.Alias:
		return r.MockExpr(types.Unalias(tt))

	case *types.Named:
		return r.namedExpr(tt)

	case *types.Basic:
		if !isScalar(tt) {
			return "", fmt.Errorf("%s has no mock value", tt)
		}

		return r.runtime("Scalar") + "[" + r.TypeString(tt) + "]()", nil

	case *types.Pointer:
		elem, err := r.MockExpr(tt.Elem())
		if err != nil {
			return "", err
		}

		return r.runtime("Ref") + "(" + elem + ")", nil

	case *types.Slice:
		elem, err := r.MockExpr(tt.Elem())
		if err != nil {
			return "", err
		}

		return r.TypeString(tt) + "{" + elem + "}", nil

	case *types.Array:
		if tt.Len() == 0 {
			return r.TypeString(tt) + "{}", nil
		}

		elem, err := r.MockExpr(tt.Elem())
		if err != nil {
			return "", err
		}

		return fmt.Sprintf("func() (a %s) {\nfor i := range a {\na[i] = %s\n}\nreturn a\n}()",
			r.TypeString(tt), elem), nil

	case *types.Map:
		key, err := r.MockExpr(tt.Key())
		if err != nil {
			return "", err
		}

		elem, err := r.MockExpr(tt.Elem())
		if err != nil {
			return "", err
		}

		return r.TypeString(tt) + "{" + key + ": " + elem + "}", nil

	case *types.Struct:
		return r.structExpr(tt)

	case *types.Signature:
		return "", errors.New("func values cannot be mocked")

	case *types.Chan:
		return "", errors.New("channels cannot be mocked")

	case *types.Interface:
		return "", errors.New("anonymous interfaces have no variants to choose from")

	default:
		return "", fmt.Errorf("%s cannot be mocked", r.TypeString(t))
	}
}

func (r *Resolver) namedExpr(n *types.Named) (string, error) {
	obj := n.Obj()
	if obj.Pkg() == nil {
		return "", fmt.Errorf("%s cannot be mocked", obj.Name())
	}

	if kind, ok := r.env.Derived[analyze.IDOf(obj)]; ok {
		if kind == analyze.TypeKindUnion {
			return r.qualified(obj.Pkg(), ConstructorName(obj.Name())) + "()", nil
		}

		return r.runtime("Of") + "[" + r.TypeString(n) + "]()", nil
	}

	if hasMockMethod(n) {
		return r.runtime("Of") + "[" + r.TypeString(n) + "]()", nil
	}

	switch u := n.Underlying().(type) {
	case *types.Interface:
		if fn := r.lookupConstructor(n); fn != nil {
			return r.qualified(obj.Pkg(), fn.Name()) + "()", nil
		}

		return "", fmt.Errorf("%s has no %s constructor", r.TypeString(n), ConstructorName(obj.Name()))

	case *types.Struct:
		return "", fmt.Errorf("%s does not implement Mock() %s", r.TypeString(n), r.TypeString(n))

	default:
		if r.visiting[n] {
			return "", fmt.Errorf("%s refers to itself", r.TypeString(n))
		}

		r.visiting[n] = true
		defer delete(r.visiting, n)

		inner, err := r.MockExpr(u)
		if err != nil {
			return "", fmt.Errorf("%s: %w", r.TypeString(n), err)
		}

		return r.TypeString(n) + "(" + inner + ")", nil
	}
}

// structExpr builds a literal of an anonymous struct type.
func (r *Resolver) structExpr(st *types.Struct) (string, error) {
	infos := analyze.StructFields(nil, st)
	shape := ShapeOf(infos, false)

	inits, err := SynthesizeFields(shape, FieldsOf(analyze.NewTypePath("struct"), shape, infos), r)
	if err != nil {
		return "", err
	}

	return Body{Shape: shape, Type: r.TypeString(st), Inits: inits}.String(), nil
}

// ZeroExpr returns the zero value of t.
func (r *Resolver) ZeroExpr(t types.Type) string {
	switch u := types.Unalias(t).Underlying().(type) {
	case *types.Basic:
		switch info := u.Info(); {
		case info&types.IsBoolean != 0:
			return "false"
		case info&types.IsString != 0:
			return `""`
		case info&types.IsNumeric != 0:
			return "0"
		default:
			return "nil"
		}

	case *types.Struct, *types.Array:
		return r.TypeString(t) + "{}"

	default:
		return "nil"
	}
}

// ConstructorName returns the name of a union's constructor function.
func ConstructorName(union string) string {
	if token.IsExported(union) {
		return "Mock" + union
	}

	return "mock" + common.UpperFirst(union)
}

func isScalar(b *types.Basic) bool {
	info := b.Info()

	return info&types.IsUntyped == 0 && info&(types.IsBoolean|types.IsNumeric|types.IsString) != 0
}

// hasMockMethod reports whether the value method set of t has Mock() t.
func hasMockMethod(t types.Type) bool {
	obj, _, _ := types.LookupFieldOrMethod(t, false, nil, "Mock")

	fn, ok := obj.(*types.Func)
	if !ok {
		return false
	}

	return returnsOnly(fn, t)
}

// lookupConstructor finds a hand-written constructor of union n in its
// package, if the generated file can call it.
func (r *Resolver) lookupConstructor(n *types.Named) *types.Func {
	obj := n.Obj()

	fn, ok := obj.Pkg().Scope().Lookup(ConstructorName(obj.Name())).(*types.Func)
	if !ok || !returnsOnly(fn, n) {
		return nil
	}

	if !fn.Exported() && obj.Pkg().Path() != r.imports.self {
		return nil
	}

	return fn
}

// returnsOnly reports whether fn takes no arguments and returns exactly t.
func returnsOnly(fn *types.Func, t types.Type) bool {
	sig, ok := fn.Type().(*types.Signature)
	if !ok {
		return false
	}

	return sig.Params().Len() == 0 && sig.Results().Len() == 1 && types.Identical(sig.Results().At(0).Type(), t)
}
