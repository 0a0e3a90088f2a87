package render

import (
	"bytes"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"rich-text-bridge/pkg/richtext"
)

// md is the configured goldmark instance, reused across calls. Raw HTML is
// let through because underline and embed placeholders are emitted as tags;
// the output is sanitized afterwards.
var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

var htmlPolicy = newHTMLPolicy()

func newHTMLPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("u")
	p.AllowAttrs("data-entry-id").OnElements("div", "span")
	p.AllowAttrs("data-asset-id").OnElements("div")
	return p
}

// HTML renders doc with the default renderer.
func HTML(doc *richtext.SourceNode) (string, error) {
	return defaultRenderer.HTML(doc)
}

// HTML converts a source document to sanitized HTML by way of Markdown.
func (r *Renderer) HTML(doc *richtext.SourceNode) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(r.Markdown(doc)), &buf); err != nil {
		return "", fmt.Errorf("failed to render html: %w", err)
	}
	return htmlPolicy.Sanitize(buf.String()), nil
}
