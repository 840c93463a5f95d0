package view

import (
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/fruitexport/portal/internal/format"
	"github.com/fruitexport/portal/web"
)

// Engine renders HTML templates.
type Engine struct {
	templates *template.Template
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	Toasts      template.HTML
	CurrentPath string
	Data        any
}

// FuncMap exposes the portal formatters to templates.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"formatNumber":   format.Number,
		"formatCurrency": format.Currency,
		"formatDate": func(v any) string {
			switch t := v.(type) {
			case time.Time:
				if t.IsZero() {
					return ""
				}
				return format.DateOf(t)
			case string:
				return format.Date(t)
			}
			return ""
		},
	}
}

// NewEngine parses the embedded templates.
func NewEngine() (*Engine, error) {
	tpl, err := template.New("root").Funcs(FuncMap()).ParseFS(web.Templates, "templates/layouts/*.html", "templates/partials/*.html", "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	return &Engine{templates: tpl}, nil
}

// Render executes a named template with TemplateData.
func (e *Engine) Render(w http.ResponseWriter, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return e.templates.ExecuteTemplate(w, name, data)
}
