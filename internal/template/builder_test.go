package template

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bnema/streamview/internal/bundle"
)

func testEntry() bundle.Entry {
	return bundle.Entry{
		Variant: bundle.VariantBalanced,
		Script:  "window.initStreamdown = function () {};",
	}
}

func TestEscapeForScriptLiteral(t *testing.T) {
	cases := map[string]string{
		"plain":         "plain",
		"back\\slash":   `back\\slash`,
		"tick`tock":     "tick\\`tock",
		"cost $5":       `cost \$5`,
		"line\nbreak":   `line\nbreak`,
		"car\rreturn":   `car\rreturn`,
		"\\`$\n\r":      `\\` + "\\`" + `\$\n\r`,
		"# Hi\n\n*bold": `# Hi\n\n*bold`,
	}
	for in, want := range cases {
		assert.Equal(t, want, EscapeForScriptLiteral(in), "input %q", in)
	}
}

func TestBuildEmbedsInitialContentBeforeBundle(t *testing.T) {
	doc := Build(testEntry(), Options{InitialContent: "# Hello", Animating: true})

	stash := strings.Index(doc, "window.__streamviewInitial")
	call := strings.Index(doc, "setInitialMarkdown(`# Hello`, true)")
	entry := strings.Index(doc, "window.initStreamdown")

	assert.Greater(t, stash, -1, "prelude stash missing")
	assert.Greater(t, call, stash, "initial-content call must follow the stash definition")
	assert.Greater(t, entry, call, "bundle must execute after content registration")
}

func TestBuildScrollPolicy(t *testing.T) {
	embedded := Build(testEntry(), Options{})
	assert.Contains(t, embedded, "html { overflow: hidden; }")

	standalone := Build(testEntry(), Options{ScrollEnabled: true})
	assert.Contains(t, standalone, "html { overflow: auto; }")
}

func TestBuildColorSchemeHint(t *testing.T) {
	assert.Contains(t, Build(testEntry(), Options{}),
		`<meta name="color-scheme" content="light dark">`)
	assert.Contains(t, Build(testEntry(), Options{ColorScheme: ColorSchemeDark}),
		`<meta name="color-scheme" content="dark">`)
	// Theming stays in the media query: the hint never rewrites colors.
	assert.Contains(t, Build(testEntry(), Options{ColorScheme: ColorSchemeDark}),
		"@media (prefers-color-scheme: dark)")
}

func TestBuildFullStyleLayeredAfterBase(t *testing.T) {
	entry := testEntry()
	entry.Style = ".tok-keyword { color: red; }"

	withoutInline := Build(entry, Options{})
	assert.NotContains(t, withoutInline, ".tok-keyword")

	doc := Build(entry, Options{InlineFullStyle: true})
	base := strings.Index(doc, "blockquote {")
	component := strings.Index(doc, ".tok-keyword")
	assert.Greater(t, base, -1)
	assert.Greater(t, component, base, "component styles must follow base styles in source order")
}

func TestBuildExternalScriptReference(t *testing.T) {
	entry := testEntry()
	entry.Script = ""

	doc := Build(entry, Options{})
	assert.Contains(t, doc, `<script src="streamdown.balanced.js"></script>`)
}

func TestEmptyDocumentRegistersEmptyContent(t *testing.T) {
	doc := EmptyDocument(testEntry())
	assert.Contains(t, doc, "setInitialMarkdown(``, false)")
}
