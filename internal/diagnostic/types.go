package diagnostic

import (
	"cmp"
	"errors"
	"fmt"
	"go/token"
	"slices"
	"strings"

	"mock-generator/internal/common"
)

// Code is a unique identifier for a kind of diagnostic. It implements error so
// it can be matched with errors.Is.
type Code string

const (
	// CodeUnsupportedShape is reported for types whose storage cannot be
	// mocked: type-set interfaces, aliases, generic types, func or chan types.
	CodeUnsupportedShape Code = "UnsupportedShape"
	// CodeNoVariantSelected is reported for a union without a //mock:variant.
	CodeNoVariantSelected Code = "NoVariantSelected"
	// CodeAmbiguousVariantSelection is reported for a union with several
	// //mock:variant markers.
	CodeAmbiguousVariantSelection Code = "AmbiguousVariantSelection"
	// CodeMalformedGateAnnotation is reported for a //derive:if directive
	// that is not "(<build expression>) <capability>[, <capability>...]".
	CodeMalformedGateAnnotation Code = "MalformedGateAnnotation"
	// CodeFieldNotMockable is reported for a field whose type has neither a
	// mock implementation nor a structural mock.
	CodeFieldNotMockable Code = "FieldNotMockable"
)

func (c Code) Error() string { return string(c) }

// CodeError is an error located in the user's source code.
type CodeError struct {
	Code    Code
	Pos     token.Position
	Message string
}

// Errorf formats a CodeError for the given position.
func Errorf(code Code, pos token.Position, format string, args ...any) error {
	return &CodeError{
		Code:    code,
		Pos:     pos,
		Message: fmt.Sprintf(format, args...),
	}
}

// Error implements the error interface. The position is prepended when valid.
func (e *CodeError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if !e.Pos.IsValid() {
		return msg
	}

	return e.Pos.String() + ": " + msg
}

// Unwrap returns the code so errors.Is matches it.
func (e *CodeError) Unwrap() error { return e.Code }

// Diagnostics holds all diagnostic information from a generation run.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	// Severity of the diagnostic.
	Severity DiagnosticSeverity
	// Code is a unique identifier for this type of diagnostic.
	Code Code
	// Message is the human-readable description.
	Message string
	// Pos points at the construct responsible.
	Pos token.Position
	// TypeName identifies which type derivation this relates to (if any).
	TypeName string
}

// DiagnosticSeverity represents the severity level of a diagnostic.
type DiagnosticSeverity int

const (
	DiagnosticInfo DiagnosticSeverity = iota
	DiagnosticWarning
	DiagnosticError
)

// String returns a human-readable severity name.
func (s DiagnosticSeverity) String() string {
	switch s {
	case DiagnosticInfo:
		return "info"
	case DiagnosticWarning:
		return "warning"
	case DiagnosticError:
		return "error"
	default:
		return common.UnknownStr
	}
}

// AddError adds an error diagnostic for typeName. CodeErrors keep their code
// and position; any other error is recorded without either.
func (d *Diagnostics) AddError(typeName string, err error) {
	diag := Diagnostic{
		Severity: DiagnosticError,
		Message:  err.Error(),
		TypeName: typeName,
	}

	var ce *CodeError
	if errors.As(err, &ce) {
		diag.Code = ce.Code
		diag.Message = ce.Message
		diag.Pos = ce.Pos
	}

	d.Errors = append(d.Errors, diag)
}

// AddWarning adds a warning diagnostic.
func (d *Diagnostics) AddWarning(pos token.Position, typeName, message string) {
	d.Warnings = append(d.Warnings, Diagnostic{
		Severity: DiagnosticWarning,
		Message:  message,
		Pos:      pos,
		TypeName: typeName,
	})
}

// AddInfo adds an info diagnostic.
func (d *Diagnostics) AddInfo(pos token.Position, typeName, message string) {
	d.Infos = append(d.Infos, Diagnostic{
		Severity: DiagnosticInfo,
		Message:  message,
		Pos:      pos,
		TypeName: typeName,
	})
}

// HasErrors returns true if there are any error diagnostics.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// Merge merges another Diagnostics instance into this one.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
	d.Infos = append(d.Infos, other.Infos...)
}

// Sort orders every severity bucket by file, line and column.
func (d *Diagnostics) Sort() {
	byPos := func(a, b Diagnostic) int {
		return cmp.Or(
			cmp.Compare(a.Pos.Filename, b.Pos.Filename),
			cmp.Compare(a.Pos.Line, b.Pos.Line),
			cmp.Compare(a.Pos.Column, b.Pos.Column),
			cmp.Compare(a.TypeName, b.TypeName),
		)
	}

	slices.SortStableFunc(d.Errors, byPos)
	slices.SortStableFunc(d.Warnings, byPos)
	slices.SortStableFunc(d.Infos, byPos)
}

// All returns errors, warnings and infos in that order.
func (d *Diagnostics) All() []Diagnostic {
	all := make([]Diagnostic, 0, len(d.Errors)+len(d.Warnings)+len(d.Infos))
	all = append(all, d.Errors...)
	all = append(all, d.Warnings...)

	return append(all, d.Infos...)
}

// IsValid returns true if there are no errors.
func (d *Diagnostics) IsValid() bool {
	return len(d.Errors) == 0
}

// Error returns a combined error from all error diagnostics, or nil if valid.
func (d *Diagnostics) Error() error {
	if d.IsValid() {
		return nil
	}

	var parts []string
	for _, e := range d.Errors {
		parts = append(parts, e.String())
	}

	return errors.New(strings.Join(parts, "\n"))
}

// String returns a formatted diagnostic string:
//
//	shapes.go:12:6: Shape: [AmbiguousVariantSelection] expected only one ...
func (d Diagnostic) String() string {
	var prefix []string
	if d.Pos.IsValid() {
		prefix = append(prefix, d.Pos.String()+":")
	}

	if d.TypeName != "" {
		prefix = append(prefix, d.TypeName+":")
	}

	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if len(prefix) > 0 {
		return strings.Join(prefix, " ") + " " + msg
	}

	return msg
}
