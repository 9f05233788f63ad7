package gen

import (
	"text/template"

	"mock-generator/internal/synth"
)

// templateData holds all data needed for one generated file.
type templateData struct {
	PackageName string
	Constraint  string
	Imports     []synth.ImportSpec
	Impls       []*synth.Implementation
}

var fileTemplate = template.Must(template.New("mock").Parse(`
{{- if .Constraint}}//go:build {{.Constraint}}

{{end -}}
// Code generated by mock-generator. DO NOT EDIT.

package {{.PackageName}}
{{if .Imports}}
import (
{{range .Imports}}	{{if .Alias}}{{.Alias}} {{end}}"{{.Path}}"
{{end}})
{{end}}
{{- range .Impls}}
{{.Source}}
{{- end}}
`))
