// Package gen assembles mock constructors into generated Go files.
//
// Generation approach uses text/template + go/format, one file per package and
// build constraint:
//
//   - zz_generated.mock.go holds every unconditional constructor
//   - zz_generated.mock.<slug>.go holds the constructors gated by one
//     //derive:if predicate, with that predicate as its //go:build line
//
// A declaration in a file that already carries a //go:build line is emitted
// under the conjunction of both constraints. Packages are processed in
// parallel; a package with any error produces no files at all.
package gen
