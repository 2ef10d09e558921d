package report

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

// defaultTemplate is the built-in Slack-markdown report layout, used when
// no template directory is configured.
//
//go:embed templates/tps_report.tmpl
var defaultTemplate string

// templateName is the file looked up inside a custom template directory.
const templateName = "tps_report.tmpl"

// Renderer turns a Context into the delivery-ready report text.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the report template. An empty dir selects the
// embedded default; otherwise tps_report.tmpl is loaded from dir.
func NewRenderer(dir string) (*Renderer, error) {
	text := defaultTemplate
	if dir != "" {
		data, err := os.ReadFile(filepath.Join(dir, templateName))
		if err != nil {
			return nil, fmt.Errorf("reading report template: %w", err)
		}
		text = string(data)
	}
	tmpl, err := template.New(templateName).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing report template: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render executes the template against the context.
func (r *Renderer) Render(ctx Context) (string, error) {
	var sb strings.Builder
	if err := r.tmpl.Execute(&sb, ctx); err != nil {
		return "", fmt.Errorf("rendering report: %w", err)
	}
	return sb.String(), nil
}
