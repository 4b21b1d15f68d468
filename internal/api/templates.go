package api

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"math"
)

//go:embed templates/*
var templateFS embed.FS

type templateSet struct {
	t *template.Template
}

// newTemplates creates and parses the HTML templates with custom functions.
func newTemplates() *templateSet {
	funcs := template.FuncMap{
		"tenth": func(f float64) string {
			if math.IsNaN(f) {
				return "–"
			}
			return fmt.Sprintf("%.1f", f)
		},
		"whole": func(f float64) string {
			if math.IsNaN(f) {
				return "–"
			}
			return fmt.Sprintf("%.0f", f)
		},
		"signed": func(f float64) string {
			if math.IsNaN(f) {
				return "–"
			}
			return fmt.Sprintf("%+.1f", f)
		},
	}
	t := template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
	return &templateSet{t: t}
}

func (ts *templateSet) render(w io.Writer, name string, data any) error {
	return ts.t.ExecuteTemplate(w, name, data)
}
