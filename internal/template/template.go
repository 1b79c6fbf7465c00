// Package template renders prompt templates with the standard library's
// text/template engine, the way Tangerg-lynx's pkg/strings.TextTemplate does.
package template

import (
	"fmt"
	"strings"
	"text/template"
)

// MissingVariableError is wrapped into the error Render returns whenever
// template execution fails, which includes a reference to a variable that
// was not supplied.
type MissingVariableError struct {
	Template string
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("template: missing variable while rendering %q", e.Template)
}

// Render substitutes vars (keys wrapped in {{.Key}}) into content and returns
// the rendered text. Missing variables are a hard error, per the invocation
// contract: "missing variables are an error."
func Render(content string, vars map[string]any) (string, error) {
	tp, err := template.New("prompt").Option("missingkey=error").Parse(content)
	if err != nil {
		return "", fmt.Errorf("template: parse: %w", err)
	}

	var sb strings.Builder
	if err := tp.Execute(&sb, vars); err != nil {
		return "", fmt.Errorf("template: execute: %w: %w", err, &MissingVariableError{Template: content})
	}
	return sb.String(), nil
}
