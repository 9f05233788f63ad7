// Package mock is the runtime half of mock-generator.
//
// Generated constructors only ever call into this package, so every function
// here is total: no error returns, no panics, no randomness.
//
// A type opts into derivation with a doc-comment directive:
//
//	//mock:derive
//	type Point struct {
//		X, Y int
//	}
//
// and mock-generator emits a value-receiver method satisfying [Mocker]:
//
//	func (Point) Mock() Point {
//		return Point{
//			X: mock.Scalar[int](),
//			Y: mock.Scalar[int](),
//		}
//	}
package mock

import "reflect"

// Mocker is implemented by types that produce a non-random test value of
// themselves. It is similar to a zero value, but meant for fixtures.
type Mocker[T any] interface {
	Mock() T
}

// OtherMocker is a second, distinct fixture for the same type. Implementations
// are expected to satisfy T.Mock() != T.MockOther().
type OtherMocker[T any] interface {
	MockOther() T
}

// Basic is the set of kinds that have a built-in baseline.
type Basic interface {
	~bool | ~string |
		~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr |
		~float32 | ~float64 |
		~complex64 | ~complex128
}

// Of returns T's mock value.
func Of[T Mocker[T]]() T {
	var zero T
	return zero.Mock()
}

// OtherOf returns T's alternate mock value.
func OtherOf[T OtherMocker[T]]() T {
	var zero T
	return zero.MockOther()
}

// Ptr returns a pointer to T's mock value. A pointer is the optional-value
// wrapper of Go, so the mock of "maybe T" is "some T".
func Ptr[T Mocker[T]]() *T {
	v := Of[T]()
	return &v
}

// Ref returns a pointer to a copy of v.
func Ref[T any](v T) *T {
	return &v
}

// Scalar returns the baseline for a basic kind: the zero value.
func Scalar[T Basic]() T {
	var zero T
	return zero
}

// OtherScalar returns a baseline distinct from [Scalar]: true, 1 or "other".
func OtherScalar[T Basic]() T {
	var v T

	rv := reflect.ValueOf(&v).Elem()
	switch rv.Kind() {
	case reflect.Bool:
		rv.SetBool(true)
	case reflect.String:
		rv.SetString("other")
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		rv.SetInt(1)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		rv.SetUint(1)
	case reflect.Float32, reflect.Float64:
		rv.SetFloat(1)
	case reflect.Complex64, reflect.Complex128:
		rv.SetComplex(1)
	}

	return v
}
