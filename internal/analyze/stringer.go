package analyze

import (
	"strconv"
	"strings"
)

// TypePath builds a readable path string for diagnostics.
// Examples:
//   - "Point" for a type
//   - "Point.X" for a field
//   - "Shape.Square.Side" for a field of a union variant
//   - "Wrapped.0" for a positional slot
type TypePath struct {
	parts []string
}

// NewTypePath creates a new TypePath from a root type name.
func NewTypePath(root string) *TypePath {
	return &TypePath{
		parts: []string{root},
	}
}

// Field appends a field name to the path.
func (p *TypePath) Field(name string) *TypePath {
	return &TypePath{
		parts: append(append([]string{}, p.parts...), name),
	}
}

// Slot appends a positional index to the path.
func (p *TypePath) Slot(i int) *TypePath {
	return p.Field(strconv.Itoa(i))
}

// String returns the full path string.
func (p *TypePath) String() string {
	return strings.Join(p.parts, ".")
}
