// Package markdown renders post and comment text to safe HTML.
package markdown

import (
	"bytes"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldhtml "github.com/yuin/goldmark/renderer/html"
)

const ellipsis = "…"

// Renderer turns user-written markdown into HTML that is safe to embed.
// It is safe for concurrent use.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	strip  *bluemonday.Policy
}

func New() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(extension.Strikethrough, extension.Linkify),
		goldmark.WithRendererOptions(goldhtml.WithHardWraps()),
	)

	p := bluemonday.UGCPolicy()
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.AllowRelativeURLs(true)

	return &Renderer{md: md, policy: p, strip: bluemonday.StrictPolicy()}
}

// Render converts text to sanitized HTML. Raw HTML in the input never
// survives; text that fails to convert is returned escaped.
func (r *Renderer) Render(text string) string {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(text), &buf); err != nil {
		return html.EscapeString(text)
	}
	return strings.TrimSpace(r.policy.Sanitize(buf.String()))
}

// Excerpt is the plain text of text cut to at most n characters, with an
// ellipsis when something was cut. n <= 0 means no limit.
func (r *Renderer) Excerpt(text string, n int) string {
	plain := html.UnescapeString(r.strip.Sanitize(r.Render(text)))
	plain = strings.Join(strings.Fields(plain), " ")
	if n <= 0 || utf8.RuneCountInString(plain) <= n {
		return plain
	}
	runes := []rune(plain)
	return strings.TrimSpace(string(runes[:n])) + ellipsis
}

// HasPayload reports whether text renders to anything visible.
func (r *Renderer) HasPayload(text string) bool {
	return r.Excerpt(text, 0) != ""
}
