package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"portfolio/internal/application/forms"
	"portfolio/internal/domain/experience"
	"portfolio/internal/domain/project"
	"portfolio/internal/domain/record"
)

//go:embed templates/*.html
var templateFS embed.FS

// mdRenderer is a goldmark instance configured for safe HTML output:
// raw HTML in the source is omitted, not passed through.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// Field is one labelled form input with its current value and inline error.
type Field struct {
	Name  string
	Label string
	Type  string // text, email, url, number, month, textarea
	Value string
	Error string
}

var funcs = template.FuncMap{
	"markdown": renderMarkdown,
	"tags":     project.SplitTags,
	"period":   func(e experience.Experience) string { return e.Period() },
	"date":     func(t time.Time) string { return t.Format("Jan 2, 2006") },
	"field": func(form url.Values, errs forms.Errors, name, label, typ string) Field {
		return Field{Name: name, Label: label, Type: typ, Value: form.Get(name), Error: errs[name]}
	},
	"catTitle": forms.CategoryTitleField,
	"catTags":  forms.CategoryTagsField,
}

var fragmentNames = map[record.Collection]string{
	record.Projects:   "fragment_projects",
	record.Skills:     "fragment_skills",
	record.Experience: "fragment_experience",
	record.Messages:   "fragment_messages",
}

// Renderer turns records into HTML. Every interpolated field is escaped by
// html/template; long-form descriptions go through goldmark.
type Renderer struct {
	tpl *template.Template
}

// NewRenderer parses the embedded template set.
func NewRenderer() (*Renderer, error) {
	tpl, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tpl: tpl}, nil
}

// Fragment renders the list markup for a collection. It depends only on items;
// an empty or nil list renders the empty-state message.
// PRE: items is the typed entity slice for c
func (r *Renderer) Fragment(c record.Collection, items any) (template.HTML, error) {
	name, ok := fragmentNames[c]
	if !ok {
		return "", fmt.Errorf("%w: no fragment for %s", record.ErrInvalidCollection, c)
	}
	var buf bytes.Buffer
	if err := r.tpl.ExecuteTemplate(&buf, name, items); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}

// Page renders a full page template with the given status.
func (r *Renderer) Page(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := r.tpl.ExecuteTemplate(&buf, name, data); err != nil {
		slog.Error("render_error", "template", name, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
