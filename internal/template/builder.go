// Package template synthesizes the bootstrap document loaded into a
// web-content instance: markup shell, base styling for both color schemes,
// the bridge handshake prelude, and the renderer bundle itself.
package template

import (
	"fmt"
	"strings"

	"github.com/bnema/streamview/internal/bundle"
)

// ColorScheme is the host's color-scheme hint. The document themes itself
// through a prefers-color-scheme media query; the hint only constrains which
// schemes the engine may resolve, the host never recomputes colors.
type ColorScheme string

const (
	ColorSchemeAuto  ColorScheme = "auto"
	ColorSchemeLight ColorScheme = "light"
	ColorSchemeDark  ColorScheme = "dark"
)

func (c ColorScheme) metaContent() string {
	switch c {
	case ColorSchemeLight:
		return "light"
	case ColorSchemeDark:
		return "dark"
	default:
		return "light dark"
	}
}

// Options parameterize one bootstrap document.
type Options struct {
	// InitialContent is pre-registered before the bundle script executes,
	// so content is available the instant the script's entry point runs.
	InitialContent string
	// Animating is the streaming-animation flag paired with the content.
	Animating bool
	// ScrollEnabled selects standalone mode (the document scrolls itself)
	// over embedded mode (overflow hidden, height reported for an external
	// scroll container).
	ScrollEnabled bool
	// ColorScheme is the host hint; empty means auto.
	ColorScheme ColorScheme
	// InlineFullStyle inlines the entry's companion stylesheet as a second
	// style block. The pooled path leaves this off and defers the stylesheet
	// to after the first contentReady signal.
	InlineFullStyle bool
}

// Build produces the self-contained bootstrap document for the given cached
// bundle entry.
func Build(entry bundle.Entry, opts Options) string {
	var b strings.Builder
	b.Grow(len(entry.Script) + len(baseStyle) + len(opts.InitialContent) + 1024)

	overflow := "hidden"
	if opts.ScrollEnabled {
		overflow = "auto"
	}

	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	b.WriteString(`<meta charset="utf-8">` + "\n")
	b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">` + "\n")
	fmt.Fprintf(&b, "<meta name=\"color-scheme\" content=\"%s\">\n", opts.ColorScheme.metaContent())

	b.WriteString("<style>\n")
	fmt.Fprintf(&b, "html { overflow: %s; }\n", overflow)
	b.WriteString(baseStyle)
	b.WriteString("</style>\n")

	// Component-specific rules win over the base block by source order, not
	// specificity tricks.
	if opts.InlineFullStyle && entry.Style != "" {
		b.WriteString("<style>\n")
		b.WriteString(entry.Style)
		b.WriteString("</style>\n")
	}

	b.WriteString("</head>\n<body>\n")

	// Handshake prelude: a stash-only setInitialMarkdown exists before the
	// bundle runs, so the initial content is registered with no race against
	// the bundle's entry point. The bundle replaces it with the live one.
	b.WriteString("<script>\n")
	b.WriteString("window.__streamviewInitial = null;\n")
	b.WriteString("window.setInitialMarkdown = function (content, animating) {\n")
	b.WriteString("  window.__streamviewInitial = { content: content, animating: !!animating };\n")
	b.WriteString("};\n")
	b.WriteString("</script>\n")

	fmt.Fprintf(&b, "<script>setInitialMarkdown(`%s`, %t);</script>\n",
		EscapeForScriptLiteral(opts.InitialContent), opts.Animating)

	if entry.Script != "" {
		b.WriteString("<script>\n")
		b.WriteString(entry.Script)
		b.WriteString("\n</script>\n")
	} else {
		// Absent script text means "load externally" relative to the base
		// anchor.
		fmt.Fprintf(&b, "<script src=\"streamdown.%s.js\"></script>\n", entry.Variant)
	}

	b.WriteString("</body>\n</html>\n")
	return b.String()
}

// EmptyDocument is the warm-up and recycle document: the variant's bootstrap
// with no content, embedded-mode scroll policy.
func EmptyDocument(entry bundle.Entry) string {
	return Build(entry, Options{})
}

// baseStyle covers base typography, tables, code blocks and blockquotes,
// themed for both color schemes via a media-query switch.
const baseStyle = `:root {
  --sd-fg: #1f2328;
  --sd-bg: transparent;
  --sd-muted: #59636e;
  --sd-border: #d1d9e0;
  --sd-code-bg: #f6f8fa;
  --sd-link: #0969da;
}
@media (prefers-color-scheme: dark) {
  :root {
    --sd-fg: #f0f6fc;
    --sd-muted: #9198a1;
    --sd-border: #3d444d;
    --sd-code-bg: #151b23;
    --sd-link: #4493f8;
  }
}
body {
  margin: 0;
  padding: 0;
  color: var(--sd-fg);
  background: var(--sd-bg);
  font: 16px/1.5 -apple-system, system-ui, "Segoe UI", Roboto, sans-serif;
  word-wrap: break-word;
}
h1, h2, h3, h4, h5, h6 {
  margin: 1em 0 0.5em;
  line-height: 1.25;
}
h1 { font-size: 1.75em; }
h2 { font-size: 1.4em; }
h3 { font-size: 1.15em; }
p { margin: 0.5em 0; }
a { color: var(--sd-link); text-decoration: none; }
a:hover { text-decoration: underline; }
code {
  font-family: ui-monospace, SFMono-Regular, Menlo, Consolas, monospace;
  font-size: 0.875em;
  background: var(--sd-code-bg);
  border-radius: 4px;
  padding: 0.15em 0.35em;
}
pre {
  background: var(--sd-code-bg);
  border-radius: 6px;
  padding: 12px;
  overflow-x: auto;
}
pre code {
  background: none;
  padding: 0;
}
blockquote {
  margin: 0.5em 0;
  padding: 0 1em;
  color: var(--sd-muted);
  border-left: 3px solid var(--sd-border);
}
table {
  border-collapse: collapse;
  margin: 0.5em 0;
}
th, td {
  border: 1px solid var(--sd-border);
  padding: 6px 12px;
}
th { font-weight: 600; }
hr {
  border: 0;
  border-top: 1px solid var(--sd-border);
  margin: 1.5em 0;
}
ul, ol { padding-left: 1.5em; }
img { max-width: 100%; }
`
