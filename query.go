package stindex

import (
	"fmt"

	"github.com/jward/stindex/internal/outline"
	"github.com/jward/stindex/internal/scripture"
	"github.com/jward/stindex/internal/store"
)

// QueryBuilder provides read-only access to the index for the rest of the
// application: scripture reverse lookup, chapter relations, outline
// navigation and downstream link resolution.
type QueryBuilder struct {
	store    *store.Store
	resolver *scripture.Resolver
}

// NewQueryBuilder returns a QueryBuilder over an open store, for callers that
// read the index without an Engine.
func NewQueryBuilder(s *Store) *QueryBuilder {
	return &QueryBuilder{store: s, resolver: scripture.DefaultResolver()}
}

// ChapterRelations holds the see-also edges and tags of one chapter.
type ChapterRelations struct {
	Chapter  int               `json:"chapter"`
	Outgoing []*RelatedChapter `json:"outgoing"`
	Incoming []*RelatedChapter `json:"incoming"`
	Tags     []string          `json:"tags"`
}

// OutlineNode is an entry with its children, for tree rendering.
type OutlineNode struct {
	Entry    *Entry         `json:"entry"`
	Children []*OutlineNode `json:"children,omitempty"`
}

// EntriesForPassage returns the entries citing a passage containing the
// given verse, primary citations first. book may be a canonical code or any
// alias the resolver knows.
func (q *QueryBuilder) EntriesForPassage(book string, chapter, verse int) ([]PassageHit, error) {
	code := book
	if _, ok := scripture.BookByCode(book); !ok {
		var resolved bool
		if code, resolved = q.resolver.Resolve(book); !resolved {
			return nil, fmt.Errorf("entries for passage: unknown book %q", book)
		}
	}
	hits, err := q.store.EntriesForPassage(code, chapter, verse)
	if err != nil {
		return nil, fmt.Errorf("entries for passage: %w", err)
	}
	return hits, nil
}

// ReferencesForEntry returns the citations indexed for an entry.
func (q *QueryBuilder) ReferencesForEntry(entryID string, primaryOnly bool) ([]*ScriptureRef, error) {
	refs, err := q.store.ScriptureRefsByEntry(entryID, primaryOnly)
	if err != nil {
		return nil, fmt.Errorf("references for entry: %w", err)
	}
	return refs, nil
}

// RelatedChapters returns the outgoing and incoming see-also edges of a
// chapter together with its tags.
func (q *QueryBuilder) RelatedChapters(chapter int) (*ChapterRelations, error) {
	out, in, err := q.store.RelatedChapters(chapter)
	if err != nil {
		return nil, fmt.Errorf("related chapters: %w", err)
	}
	tags, err := q.store.ChapterTags(chapter)
	if err != nil {
		return nil, fmt.Errorf("related chapters: %w", err)
	}
	return &ChapterRelations{Chapter: chapter, Outgoing: out, Incoming: in, Tags: tags}, nil
}

// Children returns the children of parentID. An empty parentID returns the
// root entries (the parts).
func (q *QueryBuilder) Children(parentID string) ([]*Entry, error) {
	entries, err := q.store.ChildEntries(parentID)
	if err != nil {
		return nil, fmt.Errorf("children: %w", err)
	}
	return entries, nil
}

// Outline returns the whole outline as a forest rooted at the parts.
func (q *QueryBuilder) Outline() ([]*OutlineNode, error) {
	entries, err := q.store.AllEntries()
	if err != nil {
		return nil, fmt.Errorf("outline: %w", err)
	}

	nodes := make(map[string]*OutlineNode, len(entries))
	for _, e := range entries {
		nodes[e.ID] = &OutlineNode{Entry: e}
	}
	var roots []*OutlineNode
	for _, e := range entries {
		n := nodes[e.ID]
		if e.ParentID == nil {
			roots = append(roots, n)
			continue
		}
		parent, ok := nodes[*e.ParentID]
		if !ok {
			roots = append(roots, n)
			continue
		}
		parent.Children = append(parent.Children, n)
	}
	return roots, nil
}

// ResolveLink returns the entry a downstream link such as [[ST:Ch5:A.2]]
// points at, or nil when the outline has no such entry.
func (q *QueryBuilder) ResolveLink(link string) (*Entry, error) {
	l, err := outline.ParseLink(link)
	if err != nil {
		return nil, fmt.Errorf("resolve link: %w", err)
	}
	var section *string
	var subsection *int
	if l.Section != "" {
		section = &l.Section
	}
	if l.Subsection > 0 {
		subsection = &l.Subsection
	}
	e, err := q.store.EntryByLocation(l.Chapter, section, subsection)
	if err != nil {
		return nil, fmt.Errorf("resolve link: %w", err)
	}
	return e, nil
}

// RunSummaries returns the latest n persisted run summaries, newest first.
func (q *QueryBuilder) RunSummaries(n int) ([]*ImportRun, error) {
	runs, err := q.store.ImportRuns(n)
	if err != nil {
		return nil, fmt.Errorf("run summaries: %w", err)
	}
	return runs, nil
}

// Counts summarizes the persisted index.
func (q *QueryBuilder) Counts() (*Counts, error) {
	c, err := q.store.Counts()
	if err != nil {
		return nil, fmt.Errorf("counts: %w", err)
	}
	return c, nil
}
