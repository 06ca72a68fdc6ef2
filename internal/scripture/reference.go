package scripture

import (
	"fmt"
	"regexp"
	"strconv"
)

// Reference is one resolved citation: a canonical book, a chapter and a verse
// span. EndVerse is nil for single-verse citations.
type Reference struct {
	Book       string
	Chapter    int
	StartVerse int
	EndVerse   *int

	// Text is the visible citation text as it appeared in the content.
	Text string
	// Snippet is the plain text surrounding the citation.
	Snippet string
}

// Locator renders the structured location attribute, e.g. "ROM.8.28-30".
func (r Reference) Locator() string {
	if r.EndVerse != nil {
		return fmt.Sprintf("%s.%d.%d-%d", r.Book, r.Chapter, r.StartVerse, *r.EndVerse)
	}
	return fmt.Sprintf("%s.%d.%d", r.Book, r.Chapter, r.StartVerse)
}

// Key identifies the span independent of its surface text.
type Key struct {
	Book       string
	Chapter    int
	StartVerse int
	EndVerse   int // 0 when the reference has no end verse
}

// Key returns the identity of the referenced span.
func (r Reference) Key() Key {
	k := Key{Book: r.Book, Chapter: r.Chapter, StartVerse: r.StartVerse}
	if r.EndVerse != nil {
		k.EndVerse = *r.EndVerse
	}
	return k
}

var canonicalLocatorRe = regexp.MustCompile(`^([1-3A-Z][A-Z0-9]{2})\.(\d+)\.(\d+)(?:-(\d+))?$`)

// ParseLocator parses a canonical location attribute such as "ROM.8.28-30"
// or "1CO.13.4".
func ParseLocator(s string) (Reference, bool) {
	m := canonicalLocatorRe.FindStringSubmatch(s)
	if m == nil {
		return Reference{}, false
	}
	if _, ok := BookByCode(m[1]); !ok {
		return Reference{}, false
	}
	ref := Reference{Book: m[1]}
	ref.Chapter, _ = strconv.Atoi(m[2])
	ref.StartVerse, _ = strconv.Atoi(m[3])
	if m[4] != "" {
		end, _ := strconv.Atoi(m[4])
		ref.EndVerse = &end
	}
	return ref, true
}

// normalizeSpan drops an end verse that does not extend the citation.
func normalizeSpan(ref Reference) Reference {
	if ref.EndVerse != nil && *ref.EndVerse <= ref.StartVerse {
		ref.EndVerse = nil
	}
	return ref
}
