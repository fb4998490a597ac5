// Package renderer provides the Markdown-to-HTML collaborator consumed by
// the bridge. The contract is deliberately narrow: a render function must
// never panic across the boundary; on internal failure it yields a visible
// inline placeholder instead of propagating.
package renderer

import (
	"bytes"
	stdhtml "html"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
)

// ErrorPlaceholder is what a failed render yields. It matches the bundle's
// own in-page failure markup so both failure paths look identical.
const ErrorPlaceholder = `<p class="streamdown-error">Content could not be rendered.</p>`

// Func converts raw Markdown to an HTML fragment. Implementations reachable
// from the bridge must be wrapped with Safe.
type Func func(markdown string) string

// HighlightFunc highlights source code for a language tag, best effort.
type HighlightFunc func(code, lang string) string

// NewGoldmark builds the default Markdown collaborator: GFM tables,
// strikethrough, autolinks, with raw HTML passed through since the content
// originates from the host, not the network.
func NewGoldmark() Func {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			goldmarkhtml.WithUnsafe(),
		),
	)
	return func(markdown string) string {
		var buf bytes.Buffer
		if err := md.Convert([]byte(markdown), &buf); err != nil {
			return ErrorPlaceholder
		}
		return buf.String()
	}
}

// Safe wraps f so a panic inside the collaborator degrades to the inline
// placeholder instead of crashing the host.
func Safe(f Func) Func {
	return func(markdown string) (out string) {
		defer func() {
			if r := recover(); r != nil {
				out = ErrorPlaceholder
			}
		}()
		return f(markdown)
	}
}

// Highlight renders code with chroma classes for the given language tag.
// Unknown or missing tags fall back to content-based detection, then to
// plain escaped text. Never panics; html escaping is the worst case.
func Highlight(code, lang string) string {
	lexer := lexers.Get(lang)
	if lexer == nil && strings.TrimSpace(code) != "" {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		return stdhtml.EscapeString(code)
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return stdhtml.EscapeString(code)
	}

	var buf bytes.Buffer
	formatter := chromahtml.New(
		chromahtml.WithClasses(true),
		chromahtml.PreventSurroundingPre(true),
	)
	if err := formatter.Format(&buf, styles.Get("github"), iterator); err != nil {
		return stdhtml.EscapeString(code)
	}
	return buf.String()
}
