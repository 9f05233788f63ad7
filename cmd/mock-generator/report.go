package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"mock-generator/internal/diagnostic"
)

// reporter prints diagnostics in "pos: severity: Type: [Code] message" form.
type reporter struct {
	w       io.Writer
	verbose bool

	errorColor   *color.Color
	warningColor *color.Color
	infoColor    *color.Color
	posColor     *color.Color
}

func newReporter(w io.Writer, useColor, verbose bool) *reporter {
	r := &reporter{
		w:            w,
		verbose:      verbose,
		errorColor:   color.New(color.FgRed, color.Bold),
		warningColor: color.New(color.FgYellow, color.Bold),
		infoColor:    color.New(color.FgCyan),
		posColor:     color.New(color.Bold),
	}

	for _, c := range []*color.Color{r.errorColor, r.warningColor, r.infoColor, r.posColor} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	return r
}

// Diagnostics prints errors and warnings, and infos when verbose.
func (r *reporter) Diagnostics(d *diagnostic.Diagnostics) {
	for _, diag := range d.Errors {
		r.print(r.errorColor, diag)
	}

	for _, diag := range d.Warnings {
		r.print(r.warningColor, diag)
	}

	if r.verbose {
		for _, diag := range d.Infos {
			r.print(r.infoColor, diag)
		}
	}

	if n := len(d.Errors); n > 0 {
		fmt.Fprintf(r.w, "%s\n", r.errorColor.Sprintf("%d error(s)", n))
	}
}

// Outdated reports a generated file that does not match.
func (r *reporter) Outdated(path string) {
	fmt.Fprintf(r.w, "%s: %s generated file is out of date\n", r.posColor.Sprint(path), r.errorColor.Sprint("error:"))
}

func (r *reporter) print(c *color.Color, d diagnostic.Diagnostic) {
	if d.Pos.IsValid() {
		fmt.Fprintf(r.w, "%s: ", r.posColor.Sprint(d.Pos.String()))
	}

	fmt.Fprintf(r.w, "%s ", c.Sprint(d.Severity.String()+":"))

	if d.TypeName != "" {
		fmt.Fprintf(r.w, "%s: ", d.TypeName)
	}

	if d.Code != "" {
		fmt.Fprintf(r.w, "[%s] ", d.Code)
	}

	fmt.Fprintln(r.w, d.Message)
}
