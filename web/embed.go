package web

import (
	"embed"
	"fmt"
	"html/template"
	"strconv"
)

// TemplatesFS embeds HTML templates for server-side rendering.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// OpenAPI is the API description served at /openapi.yaml.
//
//go:embed openapi.yaml
var OpenAPI []byte

// Templates parses the embedded templates with the dashboard helpers.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{"cell": Cell}).ParseFS(TemplatesFS, "templates/*.html")
}

// Cell formats a table value for display. NULL renders empty.
func Cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
