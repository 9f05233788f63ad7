// Package synth synthesizes mock constructors from scanned declarations.
//
// For a plain type the constructor is a value-receiver method:
//
//	func (Point) Mock() Point {
//		return Point{
//			X: mock.Scalar[int](),
//			Y: mock.Scalar[int](),
//		}
//	}
//
// Go interfaces cannot carry methods of their own, so a union gets a package
// function building its selected variant:
//
//	func MockShape() Shape {
//		return Square{
//			Side: mock.Scalar[float64](),
//		}
//	}
//
// Every field expression is chosen statically from the field's type; nothing
// is looked up at run time. A derivation either yields a complete
// [Implementation] or an error, never a partial body.
package synth
