// Package markdown renders admin-authored markdown to HTML.
package markdown

import (
	"bytes"
	"html/template"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// renderer escapes raw HTML in the input (WithUnsafe is not set).
var renderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// Render converts markdown to HTML.
func Render(md string) (string, error) {
	var buf bytes.Buffer
	if err := renderer.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// HTML renders md for templates, falling back to the escaped source.
func HTML(md string) template.HTML {
	out, err := Render(md)
	if err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(out)
}
