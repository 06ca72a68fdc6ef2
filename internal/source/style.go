package source

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jward/stindex/internal/outline"
	"github.com/jward/stindex/internal/scripture"
)

// node is the format-neutral element tree both markup parsers build. Text
// nodes have an empty tag.
type node struct {
	tag      string
	attrs    map[string]string
	text     string
	inner    string // inner markup, elements only
	children []*node
}

var blockTags = map[string]bool{
	"p": true, "div": true, "li": true, "blockquote": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

var skipTags = map[string]bool{"script": true, "style": true, "head": true, "title": true}

// textStyle is the style in effect at a point of the tree.
type textStyle struct {
	bold, italic, centered, large bool
}

// apply returns s as modified by entering element n.
func (s textStyle) apply(n *node, largePt float64) textStyle {
	switch n.tag {
	case "b", "strong":
		s.bold = true
	case "i", "em":
		s.italic = true
	case "center":
		s.centered = true
	case "h1", "h2", "h3":
		s.bold, s.large = true, true
	case "h4", "h5", "h6":
		s.bold = true
	}
	if strings.EqualFold(n.attrs["align"], "center") {
		s.centered = true
	}
	if css := n.attrs["style"]; css != "" {
		s = s.applyCSS(css, largePt)
	}
	return s
}

func (s textStyle) applyCSS(css string, largePt float64) textStyle {
	for _, decl := range strings.Split(css, ";") {
		prop, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		value = strings.ToLower(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), "!important")))
		switch prop {
		case "font-weight":
			switch value {
			case "bold", "bolder":
				s.bold = true
			case "normal", "lighter":
				s.bold = false
			default:
				if w, err := strconv.Atoi(value); err == nil {
					s.bold = w >= 600
				}
			}
		case "font-style":
			s.italic = value == "italic" || value == "oblique"
		case "text-align":
			s.centered = value == "center"
		case "font-size":
			if pt, ok := fontSizePt(value); ok {
				s.large = pt >= largePt
			}
		}
	}
	return s
}

// fontSizePt converts a CSS font-size to points.
func fontSizePt(value string) (float64, bool) {
	switch value {
	case "large":
		return 14, true
	case "x-large":
		return 18, true
	case "xx-large", "xxx-large":
		return 24, true
	case "medium":
		return 12, true
	case "small", "x-small", "xx-small", "smaller":
		return 10, true
	}
	units := []struct {
		suffix string
		factor float64
	}{{"pt", 1}, {"px", 0.75}, {"rem", 12}, {"em", 12}}
	for _, u := range units {
		if num, ok := strings.CutSuffix(value, u.suffix); ok {
			f, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
			if err != nil {
				return 0, false
			}
			return f * u.factor, true
		}
	}
	return 0, false
}

// collect walks the tree and emits one paragraph per block element that has
// no block descendants.
func collect(root *node, opts Options) []outline.Paragraph {
	var out []outline.Paragraph
	var walk func(n *node, st textStyle)
	walk = func(n *node, st textStyle) {
		if n.tag == "" || skipTags[n.tag] {
			return
		}
		st = st.apply(n, opts.largeFontPt())
		if blockTags[n.tag] && !hasBlockDescendant(n) {
			if p, ok := paragraph(n, st, opts); ok {
				out = append(out, p)
			}
			return
		}
		for _, c := range n.children {
			walk(c, st)
		}
	}
	walk(root, textStyle{})
	return out
}

func hasBlockDescendant(n *node) bool {
	for _, c := range n.children {
		if blockTags[c.tag] || hasBlockDescendant(c) {
			return true
		}
	}
	return false
}

// leadInRe matches a numbered lead-in followed by its title text.
var leadInRe = regexp.MustCompile(`^\d+\.\s+\S`)

// paragraph builds the paragraph for block element n. Bold and italic hold
// when every non-blank text run carries them. Bold also holds when the first
// run is bold and spans a numbered lead-in, as in "<b>1. Title.</b> Body".
func paragraph(n *node, st textStyle, opts Options) (outline.Paragraph, bool) {
	text := scripture.PlainText(n.inner)
	if text == "" {
		return outline.Paragraph{}, false
	}
	allBold, allItalic, runs := true, true, 0
	leadIn := false
	var runsOf func(c *node, rs textStyle)
	runsOf = func(c *node, rs textStyle) {
		if c.tag == "" {
			if strings.TrimSpace(c.text) == "" {
				return
			}
			if runs == 0 {
				leadIn = rs.bold && leadInRe.MatchString(strings.TrimSpace(c.text))
			}
			runs++
			allBold = allBold && rs.bold
			allItalic = allItalic && rs.italic
			return
		}
		if skipTags[c.tag] {
			return
		}
		rs = rs.apply(c, opts.largeFontPt())
		for _, gc := range c.children {
			runsOf(gc, rs)
		}
	}
	for _, c := range n.children {
		runsOf(c, st)
	}
	if runs == 0 {
		allBold, allItalic = st.bold, st.italic
	}
	return outline.Paragraph{
		Text: text,
		HTML: strings.TrimSpace(n.inner),
		Style: outline.Style{
			Bold:      allBold || leadIn,
			Italic:    allItalic,
			Centered:  st.centered,
			LargeFont: st.large,
		},
	}, true
}
