// Package prompt renders the instruction text added around user queries.
package prompt

import (
	"fmt"
	"strings"
	"text/template"
)

// Template represents a prompt template with variables
type Template struct {
	Name     string
	Content  string
	template *template.Template
}

// NewTemplate creates a new prompt template
func NewTemplate(name, content string) (*Template, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	return &Template{
		Name:     name,
		Content:  content,
		template: tmpl,
	}, nil
}

// MustTemplate is NewTemplate that panics, for package-level templates.
func MustTemplate(name, content string) *Template {
	t, err := NewTemplate(name, content)
	if err != nil {
		panic(err)
	}
	return t
}

// Render renders the template with given variables
func (t *Template) Render(vars map[string]any) (string, error) {
	var buf strings.Builder
	if err := t.template.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", t.Name, err)
	}
	return buf.String(), nil
}

// LanguageInstruction prefixes a query to choose the answer language. Variables:
// Language.
var LanguageInstruction = MustTemplate("language",
	"The default language is {{.Language}}. Respond in this language.\n\n")

// Builder concatenates prompt parts.
type Builder struct {
	parts []string
}

// NewBuilder creates a new prompt builder
func NewBuilder() *Builder {
	return &Builder{}
}

// Add adds a part to the prompt
func (b *Builder) Add(part string) *Builder {
	b.parts = append(b.parts, part)
	return b
}

// AddTemplate renders t and adds the result; on error nothing is added.
func (b *Builder) AddTemplate(t *Template, vars map[string]any) error {
	s, err := t.Render(vars)
	if err != nil {
		return err
	}
	b.parts = append(b.parts, s)
	return nil
}

// Build returns the final prompt string
func (b *Builder) Build() string {
	return strings.Join(b.parts, "")
}
