package source

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/jward/stindex/internal/outline"
)

// bodyExpr selects the document body of XHTML exports, falling back to the
// document element for bare XML fragments.
var bodyExpr = xpath.MustCompile(`//*[local-name()='body']`)

// XHTMLParser reads well-formed XHTML and XML exports with xmlquery.
type XHTMLParser struct{}

func NewXHTMLParser() *XHTMLParser { return &XHTMLParser{} }

func (p *XHTMLParser) Extensions() []string { return []string{".xhtml", ".xml"} }

func (p *XHTMLParser) Parse(ctx context.Context, content []byte, opts Options) ([]outline.Paragraph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := xmlquery.Parse(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("xml parse failed: %w", err)
	}
	top := xmlquery.QuerySelector(doc, bodyExpr)
	if top == nil {
		top = doc
	}
	root := &node{tag: "#document"}
	if top.Type == xmlquery.ElementNode {
		root.children = append(root.children, convertXML(top))
	} else {
		for c := top.FirstChild; c != nil; c = c.NextSibling {
			if n := convertXML(c); n != nil {
				root.children = append(root.children, n)
			}
		}
	}
	return collect(root, opts), nil
}

func convertXML(n *xmlquery.Node) *node {
	switch n.Type {
	case xmlquery.TextNode, xmlquery.CharDataNode:
		return &node{text: n.Data}
	case xmlquery.ElementNode:
	default:
		return nil
	}
	el := &node{tag: strings.ToLower(n.Data), attrs: make(map[string]string, len(n.Attr))}
	for _, a := range n.Attr {
		if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
			continue
		}
		el.attrs[strings.ToLower(a.Name.Local)] = a.Value
	}
	var inner strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if child := convertXML(c); child != nil {
			el.children = append(el.children, child)
		}
		if c.Type != xmlquery.CommentNode {
			inner.WriteString(c.OutputXML(true))
		}
	}
	el.inner = inner.String()
	return el
}
