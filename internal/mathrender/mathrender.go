// Package mathrender typesets LaTeX formula bodies for display.
//
// Formula bodies are wrapped in inline-math delimiters with [Inline] before
// they are handed to a [Renderer]:
//
//	r := mathrender.NewUnicode()
//	out := r.Render(mathrender.Inline(`\vec{p} = m \vec{v}`)) // p⃗ = m v⃗
//
// [Unicode] targets terminals. [HTML] escapes the markup and leaves the
// delimiters in place for MathJax to typeset in a browser.
package mathrender

import (
	"html"
	"strings"
)

const (
	InlineOpen  = `\(`
	InlineClose = `\)`
)

// Renderer turns a delimited LaTeX string into displayable output.
type Renderer interface {
	Render(expr string) string
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(expr string) string

func (f RendererFunc) Render(expr string) string { return f(expr) }

// Inline wraps latex in inline-math delimiters.
func Inline(latex string) string {
	return InlineOpen + latex + InlineClose
}

// StripInline removes one pair of inline-math delimiters, if present.
func StripInline(expr string) string {
	s := strings.TrimSpace(expr)
	if strings.HasPrefix(s, InlineOpen) && strings.HasSuffix(s, InlineClose) && len(s) >= len(InlineOpen)+len(InlineClose) {
		return s[len(InlineOpen) : len(s)-len(InlineClose)]
	}
	return expr
}

// HTML leaves typesetting to MathJax in the browser.
type HTML struct{}

func (HTML) Render(expr string) string {
	return html.EscapeString(expr)
}
