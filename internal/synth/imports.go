package synth

import (
	"fmt"
	"go/types"
	"maps"
	"slices"
	"strings"
)

// ImportSpec represents an import statement.
type ImportSpec struct {
	Alias string // empty when the package name is used as is
	Path  string
}

// Imports tracks the packages one generated file refers to and the local
// name each is known by.
type Imports struct {
	self     string
	byPath   map[string]string // import path -> local name
	byName   map[string]string // local name -> import path
	declared map[string]string // import path -> declared package name
}

// NewImports creates an empty set for a file in package self. Reserved
// names are identifiers of the package scope that no import may shadow.
func NewImports(self string, reserved ...string) *Imports {
	im := &Imports{
		self:     self,
		byPath:   make(map[string]string),
		byName:   make(map[string]string, len(reserved)),
		declared: make(map[string]string),
	}

	for _, name := range reserved {
		im.byName[name] = ""
	}

	return im
}

// Add records an import and returns its local name. A name already taken by
// another path or reserved by the package gets a numeric suffix.
func (im *Imports) Add(path, name string) string {
	if local, ok := im.byPath[path]; ok {
		return local
	}

	local := name
	for i := 2; ; i++ {
		if _, taken := im.byName[local]; !taken {
			break
		}
		local = fmt.Sprintf("%s%d", name, i)
	}

	im.byPath[path] = local
	im.byName[local] = path
	im.declared[path] = name

	return local
}

// Qualifier is a types.Qualifier that records every package it is asked
// about, except the file's own.
func (im *Imports) Qualifier(pkg *types.Package) string {
	if pkg == nil || pkg.Path() == im.self {
		return ""
	}

	return im.Add(pkg.Path(), pkg.Name())
}

// Fork returns a copy that can be discarded if a derivation fails.
func (im *Imports) Fork() *Imports {
	return &Imports{
		self:     im.self,
		byPath:   maps.Clone(im.byPath),
		byName:   maps.Clone(im.byName),
		declared: maps.Clone(im.declared),
	}
}

// Commit replaces the receiver's content with a fork's.
func (im *Imports) Commit(fork *Imports) {
	im.byPath = fork.byPath
	im.byName = fork.byName
	im.declared = fork.declared
}

// Len returns the number of imports.
func (im *Imports) Len() int {
	return len(im.byPath)
}

// Specs returns the imports sorted by path.
func (im *Imports) Specs() []ImportSpec {
	specs := make([]ImportSpec, 0, len(im.byPath))
	for _, path := range slices.Sorted(maps.Keys(im.byPath)) {
		spec := ImportSpec{Path: path}
		if local := im.byPath[path]; local != im.declared[path] {
			spec.Alias = local
		}

		specs = append(specs, spec)
	}

	return specs
}

// String renders the specs one per line, for logs and tests.
func (im *Imports) String() string {
	var sb strings.Builder
	for _, spec := range im.Specs() {
		if spec.Alias != "" {
			sb.WriteString(spec.Alias + " ")
		}
		sb.WriteString(fmt.Sprintf("%q\n", spec.Path))
	}

	return sb.String()
}
