// Package analyze provides package loading and declaration extraction.
//
// It uses golang.org/x/tools/go/packages with AST and go/types to build an
// in-memory model of every named type declared in the loaded packages,
// together with the directive comments attached to it.
//
// Key types:
//   - TypeID: package import path + type name
//   - TypeDecl: a declaration's kind, fields, union variants and directives
//   - Annotation: a "//name:sub args" directive comment
//   - FieldInfo: field name, type, struct tag and position
package analyze
