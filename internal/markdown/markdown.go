// Package markdown turns author-supplied markdown into HTML that is safe to
// embed directly in a page. Conversion and sanitization are separate stages:
// goldmark emits HTML (raw inline HTML passes through), bluemonday strips
// everything outside the allow-lists, and a final pass hardens anchors.
package markdown

import (
	"bytes"
	"regexp"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Renderer is safe for concurrent use; build one and share it.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func NewRenderer() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.Table,
			extension.Linkify,
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
			),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithUnsafe(),
		),
	)

	p := bluemonday.NewPolicy()
	p.AllowElements(
		"a", "abbr", "acronym", "b", "blockquote", "br", "code", "div", "em",
		"h1", "h2", "h3", "h4", "h5", "h6", "hr", "i", "img", "li", "ol", "p",
		"pre", "span", "strong", "table", "tbody", "td", "th", "thead", "tr", "ul",
	)
	p.AllowAttrs("class", "id").Globally()
	p.AllowAttrs("href", "title", "target", "rel").OnElements("a")
	p.AllowAttrs("src", "alt", "title", "width", "height").OnElements("img")
	p.AllowAttrs("title").OnElements("abbr", "acronym")
	p.AllowURLSchemes("http", "https", "mailto")
	p.AllowRelativeURLs(true)
	p.RequireParseableURLs(true)
	p.SkipElementsContent("script", "style")

	return &Renderer{md: md, policy: p}
}

// Render converts markdown to sanitized HTML. Empty input yields empty
// output. Malformed markdown never errors; whatever parses is rendered and
// anything unsafe is stripped.
func (r *Renderer) Render(text string) string {
	if text == "" {
		return ""
	}

	// A <script> or <style> element at a line start opens a raw HTML block
	// that swallows the rest of the line, so trailing markdown would never
	// be parsed. Drop those elements before conversion; the sanitizer still
	// catches anything unclosed.
	text = reScriptStyle.ReplaceAllString(text, "")

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(text), &buf); err != nil {
		// conversion failure degrades to sanitizing the raw input
		return r.policy.Sanitize(text)
	}

	clean := r.policy.Sanitize(buf.String())
	hardened, err := hardenLinks(clean)
	if err != nil {
		return clean
	}
	return hardened
}

// hardenLinks forces target="_blank" and rel="noopener noreferrer" on every
// anchor outside preformatted/code context. Anchors inside <pre> or <code>
// are left untouched.
func hardenLinks(fragment string) (string, error) {
	body := &xhtml.Node{Type: xhtml.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := xhtml.ParseFragment(strings.NewReader(fragment), body)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	for _, n := range nodes {
		hardenNode(n, 0)
		if err := xhtml.Render(&buf, n); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func hardenNode(n *xhtml.Node, codeDepth int) {
	if n.Type == xhtml.ElementNode {
		switch n.DataAtom {
		case atom.Pre, atom.Code:
			codeDepth++
		case atom.A:
			if codeDepth == 0 {
				setAttr(n, "target", "_blank")
				setAttr(n, "rel", "noopener noreferrer")
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		hardenNode(c, codeDepth)
	}
}

func setAttr(n *xhtml.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, xhtml.Attribute{Key: key, Val: val})
}

var (
	reScriptStyle = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)\s*>`)

	reTag        = regexp.MustCompile(`<[^>]+>`)
	reBold       = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reItalic     = regexp.MustCompile(`\*(.+?)\*`)
	reCode       = regexp.MustCompile("`(.+?)`")
	reHeading    = regexp.MustCompile(`#{1,6}\s*`)
	reLink       = regexp.MustCompile(`\[(.+?)\]\(.+?\)`)
	reWhitespace = regexp.MustCompile(`\s+`)
)

// PlainText strips HTML tags and markdown formatting, collapsing whitespace.
// Used for short text previews on challenge cards.
func PlainText(text string) string {
	if text == "" {
		return ""
	}
	clean := reTag.ReplaceAllString(text, "")
	clean = reBold.ReplaceAllString(clean, "$1")
	clean = reItalic.ReplaceAllString(clean, "$1")
	clean = reCode.ReplaceAllString(clean, "$1")
	clean = reHeading.ReplaceAllString(clean, "")
	clean = reLink.ReplaceAllString(clean, "$1")
	return strings.TrimSpace(reWhitespace.ReplaceAllString(clean, " "))
}
