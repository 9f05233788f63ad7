package analyze

import (
	"go/token"
	"go/types"
	"reflect"

	"mock-generator/internal/common"
)

// TypeID uniquely identifies a type by its package path and name.
type TypeID struct {
	PkgPath string // e.g., "mock-generator/examples/shapes"
	Name    string // e.g., "Point"
}

// String returns a human-readable representation of the TypeID.
func (t TypeID) String() string {
	if t.PkgPath == "" {
		return t.Name
	}

	return t.PkgPath + "." + t.Name
}

// IDOf returns the TypeID of a named type object.
func IDOf(obj *types.TypeName) TypeID {
	if obj.Pkg() == nil {
		return TypeID{Name: obj.Name()}
	}

	return TypeID{PkgPath: obj.Pkg().Path(), Name: obj.Name()}
}

// TypeKind represents the kind of a declaration.
type TypeKind int

const (
	TypeKindUnknown TypeKind = iota
	TypeKindStruct           // struct type
	TypeKindDefined          // defined type over a non-struct, non-interface type
	TypeKindUnion            // method-set interface, a tagged union of its implementers
	TypeKindTypeSet          // constraint interface (type set, no storage of its own)
	TypeKindAlias            // alias declaration (type A = B)
	TypeKindGeneric          // declaration with type parameters
)

// String returns a human-readable representation of the TypeKind.
func (k TypeKind) String() string {
	switch k {
	case TypeKindStruct:
		return "struct"
	case TypeKindDefined:
		return "defined"
	case TypeKindUnion:
		return "union"
	case TypeKindTypeSet:
		return "type set"
	case TypeKindAlias:
		return "alias"
	case TypeKindGeneric:
		return "generic"
	default:
		return common.UnknownStr
	}
}

// Annotation is a directive comment such as "//mock:derive" or
// "//derive:if(test) mock". Name is the part before the first space or
// parenthesis; Args is everything after it, trimmed.
type Annotation struct {
	Name string
	Args string
	Pos  token.Position
}

// FieldInfo describes a struct field.
type FieldInfo struct {
	Name     string            // Go field name; the type name for embedded fields
	Type     types.Type        // Field type
	Tag      reflect.StructTag // Raw struct tag
	Embedded bool              // Whether the field is embedded (anonymous)
	Index    int               // Field index in the struct
	Pos      token.Position    // Field position
	PkgPath  string            // Package declaring the field
}

// Accessible reports whether code in package pkgPath may name the field.
func (f *FieldInfo) Accessible(pkgPath string) bool {
	return token.IsExported(f.Name) || f.PkgPath == "" || f.PkgPath == pkgPath
}

// IsBlank reports whether the field is a blank (_) field. Blank fields cannot
// be named in a keyed composite literal.
func (f *FieldInfo) IsBlank() bool {
	return f.Name == "_"
}

// Variant is a union member together with the way it satisfies the union.
type Variant struct {
	Decl *TypeDecl
	// ByPointer is set when only *T implements the union.
	ByPointer bool
}

// TypeDecl describes a named type declaration.
type TypeDecl struct {
	ID   TypeID
	Kind TypeKind
	// Pos is the position of the type name.
	Pos token.Position
	// KeywordPos is the position of the struct or interface keyword, when the
	// declaration spells one out. It falls back to Pos.
	KeywordPos token.Position
	// Annotations are the directive comments in declaration order.
	Annotations []Annotation
	// Fields are the struct fields in declaration order.
	Fields []FieldInfo
	// Underlying is the underlying type of a TypeKindDefined declaration.
	Underlying types.Type
	// Source is the right-hand side of the declaration, as written.
	Source types.Type
	// Variants are the union members in declaration order (TypeKindUnion only).
	Variants []Variant
	// Constraint is the //go:build expression of the declaring file, if any.
	Constraint string
	// Obj is the type-checked object.
	Obj *types.TypeName
}

// Type returns the declared type.
func (d *TypeDecl) Type() types.Type {
	return d.Obj.Type()
}

// Annotated returns the annotations with the given name in declaration order.
func (d *TypeDecl) Annotated(name string) []Annotation {
	var found []Annotation
	for _, a := range d.Annotations {
		if a.Name == name {
			found = append(found, a)
		}
	}

	return found
}

// PackageInfo holds information about a loaded package.
type PackageInfo struct {
	Path  string         // Import path
	Name  string         // Package name
	Dir   string         // Directory holding the package sources
	Files []string       // Base names of the files in this build
	Types []*TypeDecl    // Named types in declaration order
	Pkg   *types.Package // Type-checked package
}

// Lookup returns the declaration of the named type, or nil.
func (p *PackageInfo) Lookup(name string) *TypeDecl {
	for _, d := range p.Types {
		if d.ID.Name == name {
			return d
		}
	}

	return nil
}

// TypeGraph holds all analyzed declarations from loaded packages.
type TypeGraph struct {
	// Packages maps package paths to their package info.
	Packages map[string]*PackageInfo
	// Order lists package paths in load order.
	Order []string
}

// NewTypeGraph creates a new empty TypeGraph.
func NewTypeGraph() *TypeGraph {
	return &TypeGraph{
		Packages: make(map[string]*PackageInfo),
	}
}

// Add registers a package, keeping the first registration of a path.
func (g *TypeGraph) Add(pkg *PackageInfo) {
	if _, ok := g.Packages[pkg.Path]; ok {
		return
	}

	g.Packages[pkg.Path] = pkg
	g.Order = append(g.Order, pkg.Path)
}

// GetType returns the declaration for a given TypeID, or nil if not found.
func (g *TypeGraph) GetType(id TypeID) *TypeDecl {
	pkg, ok := g.Packages[id.PkgPath]
	if !ok {
		return nil
	}

	return pkg.Lookup(id.Name)
}
