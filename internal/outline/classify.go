package outline

import (
	"html"
	"regexp"
	"strconv"
	"strings"
)

// Style is the minimal style descriptor of a source paragraph.
type Style struct {
	Bold      bool `json:"bold"`
	Italic    bool `json:"italic"`
	Centered  bool `json:"centered"`
	LargeFont bool `json:"largeFont"`
}

// Paragraph is one styled paragraph of the source document. Text is the
// visible plain text; HTML is the inner markup and may be empty, in which
// case the escaped text is used.
type Paragraph struct {
	Text  string `json:"text"`
	HTML  string `json:"html,omitempty"`
	Style Style  `json:"style"`
}

// Markup returns the paragraph's inner HTML.
func (p Paragraph) Markup() string {
	if p.HTML != "" {
		return p.HTML
	}
	return html.EscapeString(p.Text)
}

// Role is the structural role of a paragraph.
type Role int

const (
	Body Role = iota
	PartHeader
	ChapterHeader
	SectionHeader
	SubsectionHeader
	Noise
)

var roleNames = [...]string{"body", "part", "chapter", "section", "subsection", "noise"}

func (r Role) String() string {
	if int(r) < len(roleNames) {
		return roleNames[r]
	}
	return "role(" + strconv.Itoa(int(r)) + ")"
}

var (
	partRe       = regexp.MustCompile(`^Part\s+(\d+)$`)
	chapterRe    = regexp.MustCompile(`^Chapter\s+(\d+)$`)
	sectionRe    = regexp.MustCompile(`^([A-Z])\.\s+(.+)`)
	subsectionRe = regexp.MustCompile(`^(\d+)\.\s+(.+)`)
)

// DefaultPageMarker matches page-number markers embedded by the export, such
// as "[p. 123]", "[123]" or "{123}".
const DefaultPageMarker = `\[(?:p\.\s*)?\d+\]|\{\d+\}`

// Classifier assigns structural roles to paragraphs.
type Classifier struct {
	pageMarker *regexp.Regexp
}

// NewClassifier returns a classifier that strips markers matching
// pageMarker before matching. An empty pattern selects DefaultPageMarker.
func NewClassifier(pageMarker string) (*Classifier, error) {
	if pageMarker == "" {
		pageMarker = DefaultPageMarker
	}
	re, err := regexp.Compile(pageMarker)
	if err != nil {
		return nil, err
	}
	return &Classifier{pageMarker: re}, nil
}

// Clean strips page markers from a paragraph's text and markup.
func (c *Classifier) Clean(p Paragraph) Paragraph {
	p.Text = strings.Join(strings.Fields(c.pageMarker.ReplaceAllString(p.Text, " ")), " ")
	if p.HTML != "" {
		p.HTML = strings.TrimSpace(c.pageMarker.ReplaceAllString(p.HTML, ""))
	}
	return p
}

// Classify returns the role of a single cleaned paragraph. Rules are applied
// in priority order; the first that matches wins.
func (c *Classifier) Classify(p Paragraph) Role {
	text := p.Text
	s := p.Style
	switch {
	case s.Centered && partRe.MatchString(text):
		return PartHeader
	case s.Centered && chapterRe.MatchString(text):
		return ChapterHeader
	case s.Centered && s.Bold && sectionRe.MatchString(text):
		return SectionHeader
	case s.Bold && subsectionRe.MatchString(text):
		return SubsectionHeader
	case s.Centered && s.Bold:
		return Noise
	default:
		return Body
	}
}

// Token is a classified paragraph with its header fields filled in.
type Token struct {
	Role     Role
	Number   int    // part, chapter or subsection number
	Letter   string // section letter
	Title    string
	Subtitle string // chapter subtitle, if any
	Para     Paragraph
}

// Tokens classifies a paragraph stream. Part headers consume the following
// centered paragraph as their title. Chapter headers consume the following
// centered paragraph as their title and then one optional italic paragraph
// as their subtitle.
func (c *Classifier) Tokens(paras []Paragraph) []Token {
	cleaned := make([]Paragraph, len(paras))
	for i, p := range paras {
		cleaned[i] = c.Clean(p)
	}

	var tokens []Token
	for i := 0; i < len(cleaned); i++ {
		p := cleaned[i]
		role := c.Classify(p)
		tok := Token{Role: role, Para: p}

		switch role {
		case PartHeader:
			tok.Number = atoi(partRe.FindStringSubmatch(p.Text)[1])
			if title, ok := c.titleAt(cleaned, i+1); ok {
				tok.Title = title
				i++
			}
		case ChapterHeader:
			tok.Number = atoi(chapterRe.FindStringSubmatch(p.Text)[1])
			if title, ok := c.titleAt(cleaned, i+1); ok {
				tok.Title = title
				i++
				if i+1 < len(cleaned) {
					next := cleaned[i+1]
					if next.Style.Italic && !next.Style.Bold && next.Text != "" && c.Classify(next) == Body {
						tok.Subtitle = next.Text
						i++
					}
				}
			}
		case SectionHeader:
			m := sectionRe.FindStringSubmatch(p.Text)
			tok.Letter = m[1]
			tok.Title = strings.TrimSpace(m[2])
		case SubsectionHeader:
			m := subsectionRe.FindStringSubmatch(p.Text)
			tok.Number = atoi(m[1])
			tok.Title = firstSentence(m[2])
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// titleAt returns the text of paras[i] when it can serve as a header title:
// centered, non-empty and not itself a part, chapter or section header.
func (c *Classifier) titleAt(paras []Paragraph, i int) (string, bool) {
	if i >= len(paras) {
		return "", false
	}
	p := paras[i]
	if !p.Style.Centered || p.Text == "" {
		return "", false
	}
	switch c.Classify(p) {
	case PartHeader, ChapterHeader, SectionHeader, SubsectionHeader:
		return "", false
	}
	return p.Text, true
}

// firstSentence returns the text up to the first sentence-ending period,
// without the period.
func firstSentence(s string) string {
	s = strings.TrimSpace(s)
	for i := 0; i < len(s); i++ {
		if s[i] != '.' && s[i] != '?' && s[i] != '!' {
			continue
		}
		if i+1 == len(s) || s[i+1] == ' ' {
			if s[i] == '.' {
				return strings.TrimSpace(s[:i])
			}
			return strings.TrimSpace(s[:i+1])
		}
	}
	return s
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
