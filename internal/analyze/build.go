package analyze

import (
	"cmp"
	"go/ast"
	"go/build/constraint"
	"go/token"
	"go/types"
	"path/filepath"
	"reflect"
	"regexp"
	"slices"
	"strings"
)

// directiveRe matches directive comments: no space after "//", a lower-case
// namespace, a colon and a name.
var directiveRe = regexp.MustCompile(`^//([a-z][a-z0-9]*:[a-z][a-z0-9-]*)(.*)$`)

// BuildPackage extracts every named type declared at package level in files.
func BuildPackage(fset *token.FileSet, pkg *types.Package, info *types.Info, files []*ast.File, dir string) *PackageInfo {
	pkgInfo := &PackageInfo{
		Path: pkg.Path(),
		Name: pkg.Name(),
		Dir:  dir,
		Pkg:  pkg,
	}

	for _, file := range files {
		pkgInfo.Files = append(pkgInfo.Files, filepath.Base(fset.Position(file.Package).Filename))
		fileConstraint := buildConstraint(file)

		for _, decl := range file.Decls {
			genDecl, ok := decl.(*ast.GenDecl)
			if !ok || genDecl.Tok != token.TYPE {
				continue
			}

			for _, spec := range genDecl.Specs {
				typeSpec, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}

				obj, ok := info.Defs[typeSpec.Name].(*types.TypeName)
				if !ok {
					continue
				}

				docs := []*ast.CommentGroup{typeSpec.Doc}
				if len(genDecl.Specs) == 1 {
					docs = []*ast.CommentGroup{genDecl.Doc, typeSpec.Doc}
				}

				d := newTypeDecl(fset, obj, typeSpec)
				d.Source = info.TypeOf(typeSpec.Type)
				d.Annotations = extractAnnotations(fset, docs...)
				d.Constraint = fileConstraint
				pkgInfo.Types = append(pkgInfo.Types, d)
			}
		}
	}

	slices.SortStableFunc(pkgInfo.Types, func(a, b *TypeDecl) int {
		return cmp.Or(
			cmp.Compare(a.Pos.Filename, b.Pos.Filename),
			cmp.Compare(a.Pos.Offset, b.Pos.Offset),
		)
	})

	resolveVariants(pkgInfo)

	return pkgInfo
}

// newTypeDecl classifies a type spec.
func newTypeDecl(fset *token.FileSet, obj *types.TypeName, spec *ast.TypeSpec) *TypeDecl {
	d := &TypeDecl{
		ID:  IDOf(obj),
		Pos: fset.Position(spec.Name.Pos()),
		Obj: obj,
	}
	d.KeywordPos = d.Pos

	switch t := spec.Type.(type) {
	case *ast.StructType:
		d.KeywordPos = fset.Position(t.Struct)
	case *ast.InterfaceType:
		d.KeywordPos = fset.Position(t.Interface)
	}

	if spec.Assign.IsValid() {
		d.Kind = TypeKindAlias
		return d
	}

	named, ok := obj.Type().(*types.Named)
	if !ok {
		return d
	}

	if named.TypeParams().Len() > 0 {
		d.Kind = TypeKindGeneric
		return d
	}

	switch u := named.Underlying().(type) {
	case *types.Struct:
		d.Kind = TypeKindStruct
		d.Fields = StructFields(fset, u)

	case *types.Interface:
		if u.IsMethodSet() {
			d.Kind = TypeKindUnion
		} else {
			d.Kind = TypeKindTypeSet
		}

	default:
		d.Kind = TypeKindDefined
		d.Underlying = u
	}

	return d
}

// StructFields lists all fields of st, exported or not. Unexported fields
// keep the package that declares them, which differs from the declaring
// package of the type for `type T other.S`. Positions are left empty
// without a file set.
func StructFields(fset *token.FileSet, st *types.Struct) []FieldInfo {
	fields := make([]FieldInfo, 0, st.NumFields())
	for i := range st.NumFields() {
		field := st.Field(i)

		var pkgPath string
		if field.Pkg() != nil {
			pkgPath = field.Pkg().Path()
		}

		var pos token.Position
		if fset != nil {
			pos = fset.Position(field.Pos())
		}

		fields = append(fields, FieldInfo{
			Name:     field.Name(),
			Type:     field.Type(),
			Tag:      reflect.StructTag(st.Tag(i)),
			Embedded: field.Embedded(),
			Index:    i,
			Pos:      pos,
			PkgPath:  pkgPath,
		})
	}

	return fields
}

// resolveVariants fills the variants of every union with the package's
// concrete named types implementing it, in declaration order.
func resolveVariants(pkgInfo *PackageInfo) {
	for _, union := range pkgInfo.Types {
		if union.Kind != TypeKindUnion {
			continue
		}

		iface, ok := union.Type().Underlying().(*types.Interface)
		if !ok {
			continue
		}

		for _, candidate := range pkgInfo.Types {
			if candidate.Kind != TypeKindStruct && candidate.Kind != TypeKindDefined {
				continue
			}

			switch {
			case types.Implements(candidate.Type(), iface):
				union.Variants = append(union.Variants, Variant{Decl: candidate})
			case types.Implements(types.NewPointer(candidate.Type()), iface):
				union.Variants = append(union.Variants, Variant{Decl: candidate, ByPointer: true})
			}
		}
	}
}

// extractAnnotations collects directive comments from the given groups.
func extractAnnotations(fset *token.FileSet, groups ...*ast.CommentGroup) []Annotation {
	var annotations []Annotation
	for _, g := range groups {
		if g == nil {
			continue
		}

		for _, c := range g.List {
			m := directiveRe.FindStringSubmatch(c.Text)
			if m == nil {
				continue
			}

			annotations = append(annotations, Annotation{
				Name: m[1],
				Args: strings.TrimSpace(m[2]),
				Pos:  fset.Position(c.Slash),
			})
		}
	}

	return annotations
}

// buildConstraint returns the file's //go:build expression, or "".
func buildConstraint(file *ast.File) string {
	for _, g := range file.Comments {
		if g.Pos() >= file.Package {
			break
		}

		for _, c := range g.List {
			if !constraint.IsGoBuild(c.Text) {
				continue
			}

			expr, err := constraint.Parse(c.Text)
			if err != nil {
				continue
			}

			return expr.String()
		}
	}

	return ""
}
