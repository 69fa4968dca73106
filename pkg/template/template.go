// Package template renders dynamic strings inside step configuration against
// the running execution context.
package template

import (
	"crypto/rand"
	"fmt"
	"strings"
	"text/template"
	"time"
)

// Render executes the given template string against data and returns the
// rendered text. Template functions: now (UTC RFC3339 timestamp) and
// rand (bounded random int).
func Render(templateStr string, data any) (string, error) {
	tmpl, err := template.
		New("step").
		Funcs(template.FuncMap{
			"now": func() string {
				return time.Now().UTC().Format(time.RFC3339)
			},
			"rand": func(maxValue int) int {
				if maxValue <= 0 {
					return 0
				}

				num := make([]byte, 1)

				_, err := rand.Read(num)
				if err != nil {
					return 0
				}

				return int(num[0]) % maxValue
			},
		}).Parse(templateStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse template '%s': %w", templateStr, err)
	}

	var buf strings.Builder

	err = tmpl.Execute(&buf, data)
	if err != nil {
		return "", fmt.Errorf("failed to execute template '%s': %w", templateStr, err)
	}

	return strings.TrimSpace(buf.String()), nil
}

// RenderWithContext renders a template against an execution-data context.
// Plain strings without template markers pass through untouched.
func RenderWithContext(input string, executionData map[string]any) (string, error) {
	if !strings.Contains(input, "{{") {
		return input, nil
	}

	return Render(input, executionData)
}
