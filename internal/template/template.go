// Package template provides per-target command templating for sshfan.
package template

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Context carries the per-target values a command template may reference.
type Context struct {
	Host string // Host alias the command runs on
	User string // Login user, empty when the transport default applies
}

// IsTemplate checks if a command contains template syntax.
func IsTemplate(command string) bool {
	return strings.Contains(command, "{{") && strings.Contains(command, "}}")
}

// Expand renders a command template against the target context, so one
// command string can vary per host, e.g. "echo {{.Host}} as {{.User}}".
func Expand(command string, ctx Context) (string, error) {
	tmpl, err := template.New("command").Funcs(templateFuncs()).Parse(command)
	if err != nil {
		return "", fmt.Errorf("failed to parse command template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return "", fmt.Errorf("failed to expand command template: %w", err)
	}

	return buf.String(), nil
}

// templateFuncs returns the helper functions available inside templates.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"upper": strings.ToUpper,
		"lower": strings.ToLower,
		"title": func(s string) string {
			return cases.Title(language.English).String(s)
		},
	}
}
