package scripture

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// AnchorClass is the class attribute carried by every canonical citation link.
const AnchorClass = "scripture-ref"

// anchorPrefix is the literal opening of every canonical anchor. Rendering
// relies on the attribute order being fixed.
const anchorPrefix = `<a class="` + AnchorClass + `"`

// DefaultSnippetRadius is the number of characters of context kept on each
// side of a citation.
const DefaultSnippetRadius = 60

// AnchorOpen returns the opening tag of the canonical anchor for ref.
func AnchorOpen(ref Reference) string {
	return anchorPrefix + ` data-ref="` + ref.Locator() + `">`
}

// Anchor renders ref as a canonical link around the given inner HTML.
func Anchor(ref Reference, inner string) string {
	return AnchorOpen(ref) + inner + "</a>"
}

var linkedAnchorRe = regexp.MustCompile(`(?s)<a class="` + AnchorClass + `" data-ref="([^"]+)">(.*?)</a>`)

// Linked returns every canonical citation already present in content, in
// document order, with text and snippet filled in.
func Linked(content string, radius int) []Reference {
	var refs []Reference
	for _, m := range linkedAnchorRe.FindAllStringSubmatchIndex(content, -1) {
		ref, ok := ParseLocator(content[m[2]:m[3]])
		if !ok {
			continue
		}
		ref.Text = PlainText(content[m[4]:m[5]])
		ref.Snippet = snippet(content, m[0], m[1], radius)
		refs = append(refs, ref)
	}
	return refs
}

// NormalizeAnchors rewrites the structured citation anchors of an HTML
// fragment into canonical markup. Anchors whose locator resolves get the
// canonical class and data-ref; Bible links that cannot be resolved are
// unwrapped so only their visible text remains. Other links are untouched.
// The returned slice lists the resolved citations in document order.
func NormalizeAnchors(fragment string, r *Resolver) (string, []Reference, error) {
	if !strings.Contains(fragment, "<a") {
		return fragment, nil, nil
	}
	ctx := &xhtml.Node{Type: xhtml.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := xhtml.ParseFragment(strings.NewReader(fragment), ctx)
	if err != nil {
		return fragment, nil, err
	}

	var refs []Reference
	var walk func(n *xhtml.Node)
	walk = func(n *xhtml.Node) {
		for c := n.FirstChild; c != nil; {
			next := c.NextSibling
			if c.Type == xhtml.ElementNode && c.DataAtom == atom.A {
				if ref, handled := rewriteAnchor(c, r); handled {
					if ref != nil {
						refs = append(refs, *ref)
					} else {
						unwrap(c)
					}
					c = next
					continue
				}
			}
			walk(c)
			c = next
		}
	}
	root := &xhtml.Node{Type: xhtml.ElementNode, Data: "div", DataAtom: atom.Div}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	walk(root)

	var b strings.Builder
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if err := xhtml.Render(&b, c); err != nil {
			return fragment, nil, err
		}
	}
	return b.String(), refs, nil
}

// rewriteAnchor handles a single <a> element. handled is false for links that
// carry no citation at all. A nil ref with handled true means the link is a
// citation that could not be resolved.
func rewriteAnchor(a *xhtml.Node, r *Resolver) (*Reference, bool) {
	var href, dataRef, class string
	for _, attr := range a.Attr {
		switch attr.Key {
		case "href":
			href = attr.Val
		case "data-ref", "data-reference", "data-datatype-ref":
			if dataRef == "" {
				dataRef = attr.Val
			}
		case "class":
			class = attr.Val
		}
	}

	var ref *Reference
	isCitation := false
	if dataRef != "" {
		isCitation = true
		if canonical, ok := ParseLocator(dataRef); ok {
			ref = &canonical
		} else {
			ref = ParseStructured(dataRef, r)
		}
	}
	if ref == nil && href != "" {
		if loc, ok := LocatorFromHref(href); ok {
			isCitation = true
			ref = ParseStructured(loc, r)
		}
	}
	if !isCitation && strings.Contains(class, AnchorClass) {
		isCitation = true
	}
	if !isCitation {
		return nil, false
	}
	if ref == nil {
		return nil, true
	}

	a.Attr = []xhtml.Attribute{
		{Key: "class", Val: AnchorClass},
		{Key: "data-ref", Val: ref.Locator()},
	}
	ref.Text = nodeText(a)
	return ref, true
}

// unwrap replaces n with its children.
func unwrap(n *xhtml.Node) {
	parent := n.Parent
	if parent == nil {
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		parent.InsertBefore(c, n)
		c = next
	}
	parent.RemoveChild(n)
}

func nodeText(n *xhtml.Node) string {
	var b strings.Builder
	var walk func(*xhtml.Node)
	walk = func(n *xhtml.Node) {
		if n.Type == xhtml.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}

// PlainText strips markup from an HTML fragment and decodes entities.
// Whitespace runs are collapsed to single spaces.
func PlainText(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return collapseSpace(fragment)
	}
	if !strings.Contains(fragment, "<") {
		return collapseSpace(html.UnescapeString(fragment))
	}
	z := xhtml.NewTokenizer(strings.NewReader(fragment))
	var b strings.Builder
	for {
		switch z.Next() {
		case xhtml.ErrorToken:
			return collapseSpace(b.String())
		case xhtml.TextToken:
			b.Write(z.Text())
		case xhtml.StartTagToken, xhtml.EndTagToken, xhtml.SelfClosingTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "br", "p", "div", "li":
				b.WriteByte(' ')
			}
		}
	}
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// snippet returns the plain text around content[start:end], keeping up to
// radius characters on each side.
func snippet(content string, start, end, radius int) string {
	if radius <= 0 {
		radius = DefaultSnippetRadius
	}
	before := PlainText(content[:start])
	middle := PlainText(content[start:end])
	after := PlainText(content[end:])

	if utf8.RuneCountInString(before) > radius {
		rs := []rune(before)
		before = string(rs[len(rs)-radius:])
	}
	if utf8.RuneCountInString(after) > radius {
		rs := []rune(after)
		after = string(rs[:radius])
	}
	return strings.TrimSpace(before + " " + middle + " " + after)
}
