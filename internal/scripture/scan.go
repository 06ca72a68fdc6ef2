package scripture

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Scanner recognizes unmarked citations in HTML content and wraps them in
// canonical anchors. A Scanner is safe for concurrent use.
type Scanner struct {
	resolver *Resolver
	re       *regexp.Regexp
	radius   int
	logger   zerolog.Logger
}

// ScanOption configures a Scanner.
type ScanOption func(*Scanner)

// WithResolver sets the book resolver. Defaults to DefaultResolver().
func WithResolver(r *Resolver) ScanOption {
	return func(s *Scanner) { s.resolver = r }
}

// WithSnippetRadius sets the number of context characters kept on each side
// of a citation.
func WithSnippetRadius(n int) ScanOption {
	return func(s *Scanner) {
		if n > 0 {
			s.radius = n
		}
	}
}

// WithScanLogger sets the logger used for skipped citations.
func WithScanLogger(l zerolog.Logger) ScanOption {
	return func(s *Scanner) { s.logger = l }
}

// candidateRe finds anything shaped like a citation whether or not the book
// is known. It only feeds debug logging.
var candidateRe = regexp.MustCompile(`\b((?:[1-3]\s?)?[A-Za-z]+\.?)\s+\d{1,3}:\d{1,3}`)

// NewScanner builds a scanner whose alternation covers every free-text
// surface of the resolver, longest first.
func NewScanner(opts ...ScanOption) *Scanner {
	s := &Scanner{
		resolver: DefaultResolver(),
		radius:   DefaultSnippetRadius,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	surfaces := s.resolver.freeTextSurfaces()
	alts := make([]string, len(surfaces))
	for i, surface := range surfaces {
		alts[i] = strings.ReplaceAll(regexp.QuoteMeta(surface), " ", `\s*`)
	}
	s.re = regexp.MustCompile(`(?i)\b(` + strings.Join(alts, "|") + `)(?:\s|&nbsp;|\x{00A0})+(\d{1,3}):(\d{1,3})(?:\s*[-–]\s*(\d{1,3}))?(?:ff)?`)
	return s
}

type scanMatch struct {
	start, end int
	ref        Reference
}

// Link wraps every unmarked citation in content with a canonical anchor and
// returns the rewritten content together with the newly linked references in
// document order. Citations inside a tag or inside an existing canonical
// anchor are left untouched, so running Link on its own output is a no-op.
func (s *Scanner) Link(content string) (string, []Reference) {
	s.logSkipped(content)

	var matches []scanMatch
	for _, m := range s.re.FindAllStringSubmatchIndex(content, -1) {
		start, end := m[0], m[1]
		before := content[:start]
		if insideTag(before) || insideAnchor(before) {
			continue
		}

		bookText := content[m[2]:m[3]]
		code, ok := s.resolver.Resolve(bookText)
		if !ok {
			s.logger.Debug().Str("book", bookText).Msg("unresolved book alias")
			continue
		}
		chapter, _ := strconv.Atoi(content[m[4]:m[5]])
		verse, _ := strconv.Atoi(content[m[6]:m[7]])
		if chapter == 0 || verse == 0 {
			continue
		}
		ref := Reference{Book: code, Chapter: chapter, StartVerse: verse}
		if m[8] >= 0 {
			if end < len(content) && content[end] == ':' {
				// "3:16-4:2" crosses chapters; link only the start.
				end = m[7]
			} else {
				ev, _ := strconv.Atoi(content[m[8]:m[9]])
				ref.EndVerse = &ev
			}
		}
		ref = normalizeSpan(ref)
		ref.Text = PlainText(content[start:end])
		ref.Snippet = snippet(content, start, end, s.radius)
		matches = append(matches, scanMatch{start: start, end: end, ref: ref})
	}
	if len(matches) == 0 {
		return content, nil
	}

	// Splice from the end so earlier offsets stay valid.
	out := content
	for i := len(matches) - 1; i >= 0; i-- {
		m := matches[i]
		out = out[:m.start] + Anchor(m.ref, out[m.start:m.end]) + out[m.end:]
	}

	refs := make([]Reference, len(matches))
	for i, m := range matches {
		refs[i] = m.ref
	}
	return out, refs
}

func (s *Scanner) logSkipped(content string) {
	if s.logger.GetLevel() > zerolog.DebugLevel {
		return
	}
	for _, m := range candidateRe.FindAllStringSubmatch(content, -1) {
		book := m[1]
		code, ok := s.resolver.Resolve(book)
		switch {
		case !ok:
			s.logger.Debug().Str("book", book).Str("text", m[0]).Msg("skipping unknown book alias")
		case ambiguousFreeText[strings.ToLower(strings.TrimSuffix(book, "."))]:
			s.logger.Debug().Str("book", book).Str("code", code).Msg("skipping ambiguous book alias")
		}
	}
}

// insideTag reports whether the text ends inside an unclosed tag.
func insideTag(before string) bool {
	return strings.Count(before, "<") > strings.Count(before, ">")
}

var (
	anchorOpenRe  = regexp.MustCompile(`(?i)<a[\s>]`)
	anchorCloseRe = regexp.MustCompile(`(?i)</a\s*>`)
)

// insideAnchor reports whether the text ends inside any <a> element. Text
// that is already a link is never linked again.
func insideAnchor(before string) bool {
	opens := anchorOpenRe.FindAllStringIndex(before, -1)
	if len(opens) == 0 {
		return false
	}
	closes := anchorCloseRe.FindAllStringIndex(before, -1)
	if len(closes) == 0 {
		return true
	}
	return opens[len(opens)-1][0] > closes[len(closes)-1][0]
}
