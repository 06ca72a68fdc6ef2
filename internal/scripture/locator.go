package scripture

import (
	"net/url"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// locatorGrammar is the participle grammar for the compact locators carried
// by export anchors.
// Examples: "Ro8.28-30", "1Co13.4", "Ge1.1-2.3", "Rom 8:28", "Ps23"
//
//nolint:govet // participle grammar tags are not standard struct tags
type locatorGrammar struct {
	Book    string      `@Book`
	Chapter int         `@Int`
	Verse   *int        `( ( "." | ":" ) @Int )?`
	End     *locatorEnd `( ( "-" | "–" ) @@ )?`
}

//nolint:govet // participle grammar tags are not standard struct tags
type locatorEnd struct {
	First  int  `@Int`
	Second *int `( ( "." | ":" ) @Int )?`
}

var locatorLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Book", Pattern: `(?:[123]\s?)?[A-Za-z]+(?:\s+(?:of\s+)?[A-Za-z]+)*\.?`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Punct", Pattern: `[.:\-–]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var locatorParser = participle.MustBuild[locatorGrammar](
	participle.Lexer(locatorLexer),
	participle.Elide("Whitespace"),
)

// ParseStructured parses a compact export locator into a Reference. It
// returns nil when the locator does not parse, names an unknown book, or
// cites a whole chapter without a verse; callers then keep the citation's
// visible text unlinked.
func ParseStructured(locator string, r *Resolver) *Reference {
	if r == nil {
		r = DefaultResolver()
	}
	locator = strings.TrimSpace(locator)
	if locator == "" {
		return nil
	}
	parsed, err := locatorParser.ParseString("", locator)
	if err != nil {
		return nil
	}
	code, ok := r.Resolve(parsed.Book)
	if !ok || parsed.Verse == nil || parsed.Chapter <= 0 || *parsed.Verse <= 0 {
		return nil
	}

	ref := Reference{Book: code, Chapter: parsed.Chapter, StartVerse: *parsed.Verse}
	if parsed.End != nil {
		switch {
		case parsed.End.Second == nil:
			end := parsed.End.First
			ref.EndVerse = &end
		case parsed.End.First == parsed.Chapter:
			end := *parsed.End.Second
			ref.EndVerse = &end
		}
	}
	ref = normalizeSpan(ref)
	return &ref
}

// LocatorFromHref extracts the compact locator from an export link such as
// "https://ref.ly/logosref/Bible.Ro8.28-30" or "https://ref.ly/Ro8.28;nasb".
// ok is false for links that are not Bible references.
func LocatorFromHref(href string) (string, bool) {
	i := strings.Index(href, "ref.ly/")
	if i < 0 {
		return "", false
	}
	rest := href[i+len("ref.ly/"):]
	rest = strings.TrimPrefix(rest, "logosref/")
	if j := strings.LastIndex(rest, "/"); j >= 0 {
		rest = rest[j+1:]
	}
	if j := strings.IndexAny(rest, ";?#"); j >= 0 {
		rest = rest[:j]
	}
	rest = strings.TrimPrefix(rest, "Bible.")
	if unescaped, err := url.PathUnescape(rest); err == nil {
		rest = unescaped
	}
	rest = strings.TrimSpace(rest)
	return rest, rest != ""
}
