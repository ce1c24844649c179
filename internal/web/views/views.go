package views

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Shared templates parsed into every page
var sharedTemplates = []string{"templates/layout.html", "templates/partials.html"}

// Engine renders the embedded HTML templates
type Engine struct {
	templates map[string]*template.Template
}

// New parses the layout and partials once and clones them for each page
func New() (*Engine, error) {
	e := &Engine{
		templates: make(map[string]*template.Template),
	}

	base, err := template.New("").ParseFS(templatesFS, sharedTemplates...)
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	entries, err := fs.ReadDir(templatesFS, "templates")
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		name := "templates/" + entry.Name()
		if entry.IsDir() || isShared(name) {
			continue
		}

		tmpl, err := base.Clone()
		if err != nil {
			return nil, err
		}

		if _, err := tmpl.ParseFS(templatesFS, name); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}

		pageName := strings.TrimSuffix(entry.Name(), path.Ext(entry.Name()))
		e.templates[pageName] = tmpl
	}

	return e, nil
}

func isShared(name string) bool {
	for _, s := range sharedTemplates {
		if s == name {
			return true
		}
	}
	return false
}

// Render renders a full page inside the layout
func (e *Engine) Render(w io.Writer, name string, data any) error {
	tmpl, ok := e.templates[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	return tmpl.ExecuteTemplate(w, "layout", data)
}

// RenderPartial renders one block of a page without the layout (for
// htmx responses)
func (e *Engine) RenderPartial(w io.Writer, name, block string, data any) error {
	tmpl, ok := e.templates[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	return tmpl.ExecuteTemplate(w, block, data)
}
