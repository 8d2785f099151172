// Package markdown turns note content into HTML for the preview pane and into
// styled terminal output for the TUI.
package markdown

import (
	"bytes"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// Renderer converts markdown to HTML. It never fails: malformed input degrades
// the way CommonMark parsing does, and an internal conversion error falls back
// to the escaped source.
type Renderer struct {
	md goldmark.Markdown
}

func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		),
	}
}

func (r *Renderer) Render(source string) string {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(source), &buf); err != nil {
		return "<pre>" + html.EscapeString(source) + "</pre>"
	}
	return buf.String()
}

var defaultRenderer = NewRenderer()

// Render converts source with the shared default renderer.
func Render(source string) string {
	return defaultRenderer.Render(source)
}
