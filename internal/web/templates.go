package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

type Templates struct {
	all *template.Template
}

func MustParseTemplates() *Templates {
	t := template.New("").Funcs(template.FuncMap{
		"dict": func(values ...any) (map[string]any, error) {
			if len(values)%2 != 0 {
				return nil, fmt.Errorf("dict requires even number of arguments")
			}
			out := make(map[string]any, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict keys must be strings")
				}
				out[key] = values[i+1]
			}
			return out, nil
		},
		"tagURL":  tagSearchURL,
		"dateURL": dateSearchURL,
	})
	t = template.Must(t.ParseFS(templateFS, "templates/*.html"))
	return &Templates{all: t}
}

// RenderPageStatus renders data.ContentTemplate inside the base layout. The
// page is rendered fully before the status is written.
func (t *Templates) RenderPageStatus(w http.ResponseWriter, status int, data ViewData) {
	var content bytes.Buffer
	if err := t.all.ExecuteTemplate(&content, data.ContentTemplate, data); err != nil {
		slog.Error("render content", "template", data.ContentTemplate, "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pageData := data
	pageData.ContentHTML = template.HTML(content.String())
	var page bytes.Buffer
	if err := t.all.ExecuteTemplate(&page, "base", pageData); err != nil {
		slog.Error("render layout", "template", data.ContentTemplate, "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = page.WriteTo(w)
}
