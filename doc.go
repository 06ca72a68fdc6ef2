// Package stindex imports a systematic-theology reference work into a
// queryable four-level outline (Part, Chapter, Section, Subsection) and
// indexes the Bible citations and "see chapter" cross-references it contains.
//
// # Pipeline
//
// An import runs in three phases:
//
//  1. Parse: each source file (HTML, XHTML or JSON paragraph records) is
//     turned into a stream of styled paragraphs.
//
//  2. Structure: paragraphs are classified into headers and body text and
//     folded into the outline. Files are folded in path order, so a chapter
//     may continue across files.
//
//  3. Index: structured citation anchors are normalized, unmarked citations
//     are linked by the free-text scanner, and the resulting references,
//     chapter edges, chapter tags and summaries are buffered. The whole run
//     is committed in one transaction.
//
// A relink pass can be run later to link citations an import missed. It only
// touches text outside existing links, so it is safe to repeat. A summarize
// pass fills in the summaries of entries imported without them.
//
// # Usage
//
//	e, err := stindex.New("stindex.db", stindex.WithConfig(cfg))
//	if err != nil { ... }
//	defer e.Close()
//
//	sum, err := e.Import(ctx, "export/", stindex.ImportOptions{Clear: true})
//	sum, err = e.Relink(ctx, stindex.RelinkOptions{Backup: true})
//	sum, err = e.Summarize(ctx, stindex.SummarizeOptions{})
//
//	hits, err := e.Query().EntriesForPassage("ROM", 8, 28)
//
// # Query API
//
// The [QueryBuilder] returned by [Engine.Query] is read-only:
//
//   - [QueryBuilder.EntriesForPassage]: entries citing a verse.
//   - [QueryBuilder.ReferencesForEntry]: citations of one entry.
//   - [QueryBuilder.RelatedChapters]: see-also edges and tags of a chapter.
//   - [QueryBuilder.Children] and [QueryBuilder.Outline]: outline navigation.
//   - [QueryBuilder.ResolveLink]: resolves [[ST:Ch5:A.2]] style links.
//   - [QueryBuilder.RunSummaries]: persisted run summaries.
package stindex
