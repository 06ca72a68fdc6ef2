package scripture

import (
	"sort"
	"strconv"
	"strings"
	"sync"
)

// ordinalWords maps every ordinal prefix spelling (lowercased) to its digit.
var ordinalWords = map[string]string{
	"1": "1", "1st": "1", "i": "1", "first": "1",
	"2": "2", "2nd": "2", "ii": "2", "second": "2",
	"3": "3", "3rd": "3", "iii": "3", "third": "3",
}

// ambiguousFreeText lists aliases that are also common English words. They
// resolve when handed to Resolve directly but are left out of the free-text
// scanner's alternation.
var ambiguousFreeText = map[string]bool{
	"is": true,
	"am": true,
	"so": true,
	"re": true,
	"ac": true,
}

// Resolver maps book spellings to canonical codes.
type Resolver struct {
	byKey    map[string]string
	surfaces []string // every surface spelling, longest first
}

var (
	defaultResolver     *Resolver
	defaultResolverOnce sync.Once
)

// DefaultResolver returns the shared resolver built from Books.
func DefaultResolver() *Resolver {
	defaultResolverOnce.Do(func() {
		defaultResolver = NewResolver(Books)
	})
	return defaultResolver
}

// NewResolver builds a resolver over the given book table.
func NewResolver(books []Book) *Resolver {
	r := &Resolver{byKey: make(map[string]string)}
	seen := make(map[string]bool)
	addSurface := func(s string) {
		if !seen[s] {
			seen[s] = true
			r.surfaces = append(r.surfaces, s)
		}
	}

	for _, b := range books {
		if b.Ordinal == 0 {
			for _, base := range append([]string{b.Name}, b.Abbrevs...) {
				r.byKey[normalizeAlias(base)] = b.Code
				addSurface(base)
				if base != b.Name {
					addSurface(base + ".")
				}
			}
			continue
		}

		digit := strconv.Itoa(b.Ordinal)
		for _, base := range append([]string{b.Stem}, b.Abbrevs...) {
			r.byKey[digit+normalizeAlias(base)] = b.Code
			variants := []string{base}
			if base != b.Stem {
				variants = append(variants, base+".")
			}
			for _, prefix := range ordinalPrefixes[b.Ordinal] {
				for _, v := range variants {
					addSurface(prefix + " " + v)
					if prefix == digit {
						addSurface(prefix + v)
					}
				}
			}
		}
	}

	sort.SliceStable(r.surfaces, func(i, j int) bool {
		if len(r.surfaces[i]) != len(r.surfaces[j]) {
			return len(r.surfaces[i]) > len(r.surfaces[j])
		}
		return r.surfaces[i] < r.surfaces[j]
	})
	return r
}

// Resolve returns the canonical code for a book token such as "Rom.",
// "1 Cor", "I Corinthians", "First John" or "1Co". ok is false when the token
// names no known book.
func (r *Resolver) Resolve(token string) (code string, ok bool) {
	key := normalizeAlias(token)
	if key == "" {
		return "", false
	}
	code, ok = r.byKey[key]
	return code, ok
}

// Surfaces returns every spelling the resolver knows, longest first.
func (r *Resolver) Surfaces() []string {
	out := make([]string, len(r.surfaces))
	copy(out, r.surfaces)
	return out
}

// freeTextSurfaces returns the spellings used by the free-text scanner.
func (r *Resolver) freeTextSurfaces() []string {
	var out []string
	for _, s := range r.surfaces {
		if ambiguousFreeText[strings.ToLower(strings.TrimSuffix(s, "."))] {
			continue
		}
		out = append(out, s)
	}
	return out
}

// normalizeAlias lowercases a token, drops periods, folds an ordinal prefix
// to its digit and removes the remaining whitespace.
func normalizeAlias(token string) string {
	token = strings.ToLower(strings.TrimSpace(token))
	token = strings.ReplaceAll(token, ".", " ")
	token = strings.ReplaceAll(token, "\u00a0", " ")
	fields := strings.Fields(token)
	if len(fields) == 0 {
		return ""
	}
	if len(fields) > 1 {
		if digit, ok := ordinalWords[fields[0]]; ok {
			return digit + strings.Join(fields[1:], "")
		}
	}
	return strings.Join(fields, "")
}
