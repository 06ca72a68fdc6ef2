// Package crossref detects "see chapter N" phrases in doctrine content and
// turns them into directed chapter-to-chapter edges.
package crossref

import (
	"regexp"
	"sort"
	"strconv"

	"github.com/jward/stindex/internal/scripture"
)

// RelationshipSeeAlso is the relationship type of every extracted edge.
const RelationshipSeeAlso = "see_also"

// DefaultMaxRange caps how many chapters a single "see chapters N-M" phrase
// may expand to.
const DefaultMaxRange = 20

var seeRe = regexp.MustCompile(`(?i)\bsee\s+(?:also\s+)?(?:chapters?|ch\.)\s*(\d+)(?:\s*[-–]\s*(\d+))?`)

// Edge is a directed reference from one chapter to another.
type Edge struct {
	Source int
	Target int
	Note   string // the phrase the edge was extracted from
}

// Extractor finds cross-references.
type Extractor struct {
	maxRange int
}

// New returns an extractor expanding ranges up to maxRange chapters. A
// non-positive maxRange selects DefaultMaxRange.
func New(maxRange int) *Extractor {
	if maxRange <= 0 {
		maxRange = DefaultMaxRange
	}
	return &Extractor{maxRange: maxRange}
}

// Targets returns the distinct chapters referenced from content, sorted,
// excluding source itself.
func (x *Extractor) Targets(source int, content string) []int {
	edges := x.Edges(source, content)
	out := make([]int, len(edges))
	for i, e := range edges {
		out[i] = e.Target
	}
	return out
}

// Edges returns one edge per distinct target chapter referenced from
// content, sorted by target. Self-references are dropped. The note of an
// edge is the first phrase that produced it.
func (x *Extractor) Edges(source int, content string) []Edge {
	text := scripture.PlainText(content)
	seen := make(map[int]bool)
	var edges []Edge
	for _, m := range seeRe.FindAllStringSubmatch(text, -1) {
		from, _ := strconv.Atoi(m[1])
		to := from
		if m[2] != "" {
			to, _ = strconv.Atoi(m[2])
		}
		if to < from {
			from, to = to, from
		}
		if to-from+1 > x.maxRange {
			to = from + x.maxRange - 1
		}
		for ch := from; ch <= to; ch++ {
			if ch <= 0 || ch == source || seen[ch] {
				continue
			}
			seen[ch] = true
			edges = append(edges, Edge{Source: source, Target: ch, Note: m[0]})
		}
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].Target < edges[j].Target })
	return edges
}
