// Package template implements the engine's flat, deterministic
// render(text, vars) -> text contract: no conditionals, no nesting, no
// expressions, just {{name}} substitution. It is hand-rolled rather
// than built on html/template because the contract's exact edge-case
// behavior — unknown names render empty, malformed tokens pass
// through verbatim, only a same-line unclosed "{{" is an error — has
// no clean expression in Go's template engine, which fails the whole
// parse on any of those.
package template

import (
	"fmt"
	"strings"
)

// SyntaxError reports an opening "{{" with no matching "}}" on the
// same line. The Step Executor surfaces this as the
// TemplateSyntaxError taxonomy entry; in a production send it
// classifies the step as a permanent failure, while render/preview
// surfaces it directly.
type SyntaxError struct {
	Field string
	Line  int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("template syntax error in %s: unclosed \"{{\" on line %d", e.Field, e.Line)
}

// Rendered is the output of rendering one step's content.
type Rendered struct {
	Subject string
	Body    string
}

// Render substitutes {{name}} tokens in subject and body using
// fields. Unknown names render as empty string; tokens whose inner
// content isn't a bare run of letters/digits/underscores are left in
// the output exactly as written.
func Render(subjectSrc, bodySrc string, fields map[string]string) (Rendered, error) {
	subject, line, ok := render(subjectSrc, fields)
	if !ok {
		return Rendered{}, &SyntaxError{Field: "subject", Line: line}
	}
	body, line, ok := render(bodySrc, fields)
	if !ok {
		return Rendered{}, &SyntaxError{Field: "body", Line: line}
	}
	return Rendered{Subject: subject, Body: body}, nil
}

// render applies the token contract to one piece of text, line by
// line, since the unclosed-"{{" error is scoped to a single line.
func render(text string, fields map[string]string) (string, int, bool) {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		rendered, ok := renderLine(line, fields)
		if !ok {
			return "", i + 1, false
		}
		lines[i] = rendered
	}
	return strings.Join(lines, "\n"), 0, true
}

func renderLine(line string, fields map[string]string) (string, bool) {
	var out strings.Builder
	rest := line

	for {
		open := strings.Index(rest, "{{")
		if open == -1 {
			out.WriteString(rest)
			return out.String(), true
		}
		out.WriteString(rest[:open])

		afterOpen := rest[open+2:]
		closeIdx := strings.Index(afterOpen, "}}")
		if closeIdx == -1 {
			return "", false
		}

		inner := afterOpen[:closeIdx]
		if isValidFieldName(inner) {
			out.WriteString(fields[inner])
		} else {
			out.WriteString("{{" + inner + "}}")
		}
		rest = afterOpen[closeIdx+2:]
	}
}

func isValidFieldName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_'
		if !isAlnum {
			return false
		}
	}
	return true
}

// RequiredFields returns the set of valid field names referenced by
// src, so callers can validate a recipient has every field a template
// needs before attempting a send.
func RequiredFields(src string) []string {
	seen := make(map[string]struct{})
	var out []string

	for _, line := range strings.Split(src, "\n") {
		rest := line
		for {
			open := strings.Index(rest, "{{")
			if open == -1 {
				break
			}
			afterOpen := rest[open+2:]
			closeIdx := strings.Index(afterOpen, "}}")
			if closeIdx == -1 {
				break
			}
			inner := afterOpen[:closeIdx]
			if isValidFieldName(inner) {
				if _, ok := seen[inner]; !ok {
					seen[inner] = struct{}{}
					out = append(out, inner)
				}
			}
			rest = afterOpen[closeIdx+2:]
		}
	}
	return out
}
