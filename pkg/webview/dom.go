package webview

import (
	"math"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Layout constants for the headless height model. The numbers approximate the
// bundle's base stylesheet (16px type on a 24px line, 80-column measure) so
// heights reported headless are in the same ballpark as a real engine.
const (
	lineHeight     = 24.0
	codeLineHeight = 20.0
	blockSpacing   = 16.0
	charsPerLine   = 80
	tableRowHeight = 28.0
	imageHeight    = 150.0
)

// measureContentHeight estimates the rendered height of a body fragment.
// It is deterministic and monotone in content: appending markup never shrinks
// the result, which is what the height-settle protocol relies on.
func measureContentHeight(fragment string) float64 {
	if strings.TrimSpace(fragment) == "" {
		return 0
	}

	ctxNode := &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), ctxNode)
	if err != nil {
		// Unparseable markup still occupies space; fall back to a plain
		// text-wrap estimate.
		return wrapHeight(fragment, lineHeight)
	}

	var total float64
	for _, n := range nodes {
		total += nodeHeight(n)
	}
	return total
}

func nodeHeight(n *html.Node) float64 {
	switch n.Type {
	case html.TextNode:
		if strings.TrimSpace(n.Data) == "" {
			return 0
		}
		return wrapHeight(n.Data, lineHeight)
	case html.ElementNode:
		// handled below
	default:
		return 0
	}

	switch n.DataAtom {
	case atom.H1:
		return 40 + blockSpacing
	case atom.H2:
		return 32 + blockSpacing
	case atom.H3, atom.H4, atom.H5, atom.H6:
		return 28 + blockSpacing
	case atom.P, atom.Li, atom.Dt, atom.Dd:
		return wrapHeight(textContent(n), lineHeight) + blockSpacing/2
	case atom.Pre:
		lines := strings.Count(textContent(n), "\n") + 1
		return float64(lines)*codeLineHeight + blockSpacing
	case atom.Table:
		return float64(countRows(n))*tableRowHeight + blockSpacing
	case atom.Hr:
		return 2 + blockSpacing
	case atom.Img:
		return imageHeight
	case atom.Br:
		return lineHeight
	case atom.Script, atom.Style, atom.Head:
		return 0
	}

	// Container elements (div, ul, ol, blockquote, section, ...): sum the
	// children.
	var total float64
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		total += nodeHeight(c)
	}
	return total
}

func wrapHeight(text string, perLine float64) float64 {
	runes := len([]rune(strings.TrimSpace(text)))
	if runes == 0 {
		return 0
	}
	lines := math.Ceil(float64(runes) / charsPerLine)
	return lines * perLine
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func countRows(table *html.Node) int {
	rows := 0
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Tr {
			rows++
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(table)
	if rows == 0 {
		rows = 1
	}
	return rows
}

// collectInlineScripts returns the text of every inline <script> element in
// document order. Scripts with a src attribute are skipped; headless pages
// cannot fetch.
func collectInlineScripts(doc *html.Node) []string {
	var scripts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Script {
			external := false
			for _, attr := range n.Attr {
				if attr.Key == "src" {
					external = true
					break
				}
			}
			if !external {
				scripts = append(scripts, textContent(n))
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return scripts
}
