package renderer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGoldmarkRendersCommonConstructs(t *testing.T) {
	render := NewGoldmark()

	out := render("# Title\n\nSome *emphasis* and `code`.")
	assert.Contains(t, out, "<h1")
	assert.Contains(t, out, "<em>emphasis</em>")
	assert.Contains(t, out, "<code>code</code>")
}

func TestGoldmarkRendersGFMTables(t *testing.T) {
	render := NewGoldmark()

	out := render("| a | b |\n|---|---|\n| 1 | 2 |")
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<td>1</td>")
}

func TestSafeRecoversPanicToPlaceholder(t *testing.T) {
	render := Safe(func(string) string {
		panic("collaborator blew up")
	})

	assert.Equal(t, ErrorPlaceholder, render("# anything"))
}

func TestSafePassesThroughOnSuccess(t *testing.T) {
	render := Safe(func(md string) string { return "<p>" + md + "</p>" })
	assert.Equal(t, "<p>hi</p>", render("hi"))
}

func TestHighlightKnownLanguage(t *testing.T) {
	out := Highlight(`fmt.Println("hi")`, "go")
	assert.Contains(t, out, "fmt")
	// chroma emits class-annotated spans when it recognises the language
	assert.Contains(t, out, "<span")
}

func TestHighlightUnknownLanguageFallsBack(t *testing.T) {
	code := "<tag> & text"
	out := Highlight(code, "definitely-not-a-language")
	// Either auto-detection produced spans or we got escaped text; in both
	// cases the raw markup must not survive unescaped.
	assert.NotContains(t, out, "<tag>")
	assert.True(t, strings.Contains(out, "&lt;tag&gt;") || strings.Contains(out, "<span"))
}

func TestHighlightEmptyCode(t *testing.T) {
	assert.Equal(t, "", Highlight("", ""))
}
