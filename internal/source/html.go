package source

import (
	"context"
	"fmt"
	"html"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	tshtml "github.com/smacker/go-tree-sitter/html"

	"github.com/jward/stindex/internal/outline"
)

// HTMLParser reads HTML exports with tree-sitter's HTML grammar, which
// tolerates the unclosed paragraphs and stray end tags common in word
// processor output.
type HTMLParser struct{}

func NewHTMLParser() *HTMLParser { return &HTMLParser{} }

func (p *HTMLParser) Extensions() []string { return []string{".html", ".htm"} }

func (p *HTMLParser) Parse(ctx context.Context, content []byte, opts Options) ([]outline.Paragraph, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(tshtml.GetLanguage())
	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	defer tree.Close()

	root := &node{tag: "#document"}
	for i := 0; i < int(tree.RootNode().NamedChildCount()); i++ {
		if n := convertSitter(tree.RootNode().NamedChild(i), content); n != nil {
			root.children = append(root.children, n)
		}
	}
	return collect(root, opts), nil
}

// convertSitter maps a tree-sitter node onto the neutral tree. Doctype and
// comments are dropped; script and style elements keep only their tag so
// the walker can skip them.
func convertSitter(n *sitter.Node, src []byte) *node {
	switch n.Type() {
	case "element":
		return convertElement(n, src)
	case "script_element":
		return &node{tag: "script"}
	case "style_element":
		return &node{tag: "style"}
	case "text", "entity":
		return &node{text: html.UnescapeString(n.Content(src))}
	default:
		return nil
	}
}

func convertElement(n *sitter.Node, src []byte) *node {
	el := &node{attrs: make(map[string]string)}
	innerStart, innerEnd := n.EndByte(), n.EndByte()
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case "start_tag", "self_closing_tag":
			readTag(c, src, el)
			innerStart = c.EndByte()
		case "end_tag":
			innerEnd = c.StartByte()
		case "erroneous_end_tag":
		default:
			if child := convertSitter(c, src); child != nil {
				el.children = append(el.children, child)
			}
		}
	}
	if innerStart < innerEnd {
		el.inner = string(src[innerStart:innerEnd])
	}
	return el
}

func readTag(tag *sitter.Node, src []byte, el *node) {
	for i := 0; i < int(tag.NamedChildCount()); i++ {
		c := tag.NamedChild(i)
		switch c.Type() {
		case "tag_name":
			el.tag = strings.ToLower(c.Content(src))
		case "attribute":
			var name, value string
			for j := 0; j < int(c.NamedChildCount()); j++ {
				a := c.NamedChild(j)
				switch a.Type() {
				case "attribute_name":
					name = strings.ToLower(a.Content(src))
				case "attribute_value":
					value = a.Content(src)
				case "quoted_attribute_value":
					value = strings.Trim(a.Content(src), `"'`)
				}
			}
			if name != "" {
				el.attrs[name] = html.UnescapeString(value)
			}
		}
	}
}
