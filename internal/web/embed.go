package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
)

//go:embed static templates
var content embed.FS

// StaticFS returns the embedded static files.
func StaticFS() (fs.FS, error) {
	return fs.Sub(content, "static")
}

var funcMap = template.FuncMap{
	"add": func(a, b int) int { return a + b },
}

// parseTemplates builds one template set per page, each combining the base
// layout, the shared partials and the page itself.
func parseTemplates(pages ...string) (map[string]*template.Template, error) {
	out := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		tmpl, err := template.New(page).Funcs(funcMap).ParseFS(content,
			"templates/base.html",
			"templates/partials.html",
			"templates/"+page+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parsing %s template: %w", page, err)
		}
		out[page] = tmpl
	}
	return out, nil
}
