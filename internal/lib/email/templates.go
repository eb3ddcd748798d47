package email

import (
	"bytes"
	"embed"
	htmltemplate "html/template"
	texttemplate "text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/pkg/errors"
)

// Template names a pair of files under templates/: <name>.html and
// <name>.txt.
type Template string

const (
	TemplateVerification  Template = "verification"
	TemplatePasswordReset Template = "password_reset"
	TemplateWelcome       Template = "welcome"
	TemplateCustom        Template = "custom"
)

// Templates lists every template, for previews and tests.
var Templates = []Template{
	TemplateVerification,
	TemplatePasswordReset,
	TemplateWelcome,
	TemplateCustom,
}

//go:embed templates/*
var templateFS embed.FS

// Renderer parses the embedded templates once.
type Renderer struct {
	html *htmltemplate.Template
	text *texttemplate.Template
}

func NewRenderer() (*Renderer, error) {
	html, err := htmltemplate.New("").Funcs(sprig.FuncMap()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse html email templates")
	}

	text, err := texttemplate.New("").Funcs(sprig.TxtFuncMap()).ParseFS(templateFS, "templates/*.txt")
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse text email templates")
	}

	return &Renderer{html: html, text: text}, nil
}

// Render returns the HTML and plain text bodies of tmpl.
func (r *Renderer) Render(tmpl Template, data map[string]any) (string, string, error) {
	var html, text bytes.Buffer

	if err := r.html.ExecuteTemplate(&html, string(tmpl)+".html", data); err != nil {
		return "", "", errors.Wrapf(err, "failed to execute email template %s.html", tmpl)
	}
	if err := r.text.ExecuteTemplate(&text, string(tmpl)+".txt", data); err != nil {
		return "", "", errors.Wrapf(err, "failed to execute email template %s.txt", tmpl)
	}

	return html.String(), text.String(), nil
}
