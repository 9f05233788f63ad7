package scan

import (
	"errors"
	"fmt"
	"go/build/constraint"
	"go/token"
	"reflect"
	"slices"
	"strings"

	"mock-generator/internal/analyze"
	"mock-generator/internal/common"
	"mock-generator/internal/diagnostic"
)

// Directive names and the capability this generator answers to.
const (
	DirectiveDerive     = "mock:derive"
	DirectiveVariant    = "mock:variant"
	DirectivePositional = "mock:positional"
	DirectiveIf         = "derive:if"

	Capability = "mock"

	TagKey     = "mock"
	TagDefault = "default"
)

//go:generate go tool stringer -type=FieldDirective -output=directive_string.go

// FieldDirective selects how a single field is initialized.
type FieldDirective int

const (
	UseMockRecursion FieldDirective = iota // derive the field's own mock
	UseDefaultValue                        // zero value of the field type
)

// ScanFieldDirective reads the mock struct tag. Repeating "default" is the
// same as giving it once; unknown entries are ignored.
func ScanFieldDirective(tag reflect.StructTag) FieldDirective {
	value, ok := tag.Lookup(TagKey)
	if !ok {
		return UseMockRecursion
	}

	if slices.Contains(common.SplitList(value), TagDefault) {
		return UseDefaultValue
	}

	return UseMockRecursion
}

// Gate is a build constraint the generated implementation must live under.
type Gate struct {
	Expr constraint.Expr
	Pos  token.Position
}

// String returns the constraint in //go:build syntax, or "" for a nil gate.
func (g *Gate) String() string {
	if g == nil {
		return ""
	}

	return g.Expr.String()
}

// ScanGate returns the predicate of the first //derive:if directive whose
// capability list names mock. Later directives are not consulted, even if
// they also name mock: only one gate is ever honored. A nil gate means the
// implementation is unconditional.
func ScanGate(annotations []analyze.Annotation) (*Gate, error) {
	for _, a := range annotations {
		if a.Name != DirectiveIf {
			continue
		}

		expr, capabilities, err := parseGate(a.Args)
		if err != nil {
			return nil, diagnostic.Errorf(diagnostic.CodeMalformedGateAnnotation, a.Pos,
				"//%s%s: %v", a.Name, a.Args, err)
		}

		if slices.Contains(capabilities, Capability) {
			return &Gate{Expr: expr, Pos: a.Pos}, nil
		}
	}

	return nil, nil
}

// parseGate parses "(<build expression>) cap[, cap...]".
func parseGate(args string) (constraint.Expr, []string, error) {
	if !strings.HasPrefix(args, "(") {
		return nil, nil, errors.New(`expected "(" followed by a build expression`)
	}

	end, depth := -1, 0
	for i, r := range args {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		}

		if depth == 0 {
			end = i
			break
		}
	}

	if end < 0 {
		return nil, nil, errors.New("unbalanced parentheses")
	}

	predicate := strings.TrimSpace(args[1:end])
	if predicate == "" {
		return nil, nil, errors.New("empty build expression")
	}

	expr, err := constraint.Parse("//go:build " + predicate)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid build expression %q: %w", predicate, err)
	}

	capabilities := common.SplitList(args[end+1:])
	if common.IsEmpty(capabilities) {
		return nil, nil, errors.New("missing capability list")
	}

	for _, c := range capabilities {
		if !token.IsIdentifier(c) {
			return nil, nil, fmt.Errorf("invalid capability %q", c)
		}
	}

	return expr, capabilities, nil
}

// Request is what a type's own directives ask of the generator.
type Request struct {
	// Explicit is set by //mock:derive.
	Explicit bool
	// Gate is the first qualifying //derive:if predicate.
	Gate *Gate
	// Positional is set by //mock:positional.
	Positional bool
}

// ScanRequest reports whether the type asks for derivation, and how.
func ScanRequest(annotations []analyze.Annotation) (Request, bool, error) {
	gate, err := ScanGate(annotations)
	if err != nil {
		return Request{}, false, err
	}

	req := Request{Gate: gate, Positional: Positional(annotations)}
	for _, a := range annotations {
		if a.Name == DirectiveDerive {
			req.Explicit = true
		}
	}

	return req, req.Explicit || req.Gate != nil, nil
}

// Positional reports whether //mock:positional is present.
func Positional(annotations []analyze.Annotation) bool {
	return slices.ContainsFunc(annotations, func(a analyze.Annotation) bool {
		return a.Name == DirectivePositional
	})
}

// ScanVariantSelection returns the one variant of union carrying
// //mock:variant. A marker with arguments only counts for the unions it names.
func ScanVariantSelection(union *analyze.TypeDecl) (analyze.Variant, error) {
	var selected []analyze.Variant
	for _, v := range union.Variants {
		if selects(v.Decl, union.ID.Name) {
			selected = append(selected, v)
		}
	}

	switch {
	case common.IsEmpty(selected):
		return analyze.Variant{}, diagnostic.Errorf(diagnostic.CodeNoVariantSelected, union.KeywordPos,
			"no //%s directive found in any of the %d variants of %s",
			DirectiveVariant, len(union.Variants), union.ID.Name)

	case common.IsMultiple(selected):
		names := make([]string, len(selected))
		for i, v := range selected {
			names[i] = v.Decl.ID.Name
		}

		return analyze.Variant{}, diagnostic.Errorf(diagnostic.CodeAmbiguousVariantSelection, union.KeywordPos,
			"expected only one //%s variant of %s, found %s; unable to infer which one to use",
			DirectiveVariant, union.ID.Name, strings.Join(names, ", "))
	}

	v, _ := common.First(selected)

	return v, nil
}

func selects(decl *analyze.TypeDecl, union string) bool {
	for _, a := range decl.Annotated(DirectiveVariant) {
		if a.Args == "" || slices.Contains(common.SplitList(a.Args), union) {
			return true
		}
	}

	return false
}
