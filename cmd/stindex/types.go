package main

import (
	"fmt"
	"time"

	"github.com/jward/stindex"
)

// CLIResult is the top-level JSON envelope for all commands.
type CLIResult struct {
	Command    string `json:"command"`
	Results    any    `json:"results"`
	TotalCount *int   `json:"total_count,omitempty"`
	Error      string `json:"error,omitempty"`
}

// CLIEntry is a JSON-friendly doctrine entry without its body.
type CLIEntry struct {
	ID         string  `json:"id"`
	Type       string  `json:"type"`
	Title      string  `json:"title"`
	Link       string  `json:"link,omitempty"`
	Part       *int    `json:"part,omitempty"`
	Chapter    *int    `json:"chapter,omitempty"`
	Section    *string `json:"section,omitempty"`
	Subsection *int    `json:"subsection,omitempty"`
	ParentID   *string `json:"parent_id,omitempty"`
	Summary    *string `json:"summary,omitempty"`
	WordCount  int     `json:"word_count"`
}

// CLIReference is a JSON-friendly scripture index row.
type CLIReference struct {
	EntryID string `json:"entry_id"`
	Ref     string `json:"ref"`
	Primary bool   `json:"primary"`
	Snippet string `json:"snippet,omitempty"`
}

// CLIPassageHit is an entry citing the queried passage.
type CLIPassageHit struct {
	Entry     CLIEntry     `json:"entry"`
	Reference CLIReference `json:"reference"`
}

// CLIEdge is a JSON-friendly see-also edge.
type CLIEdge struct {
	Source int    `json:"source"`
	Target int    `json:"target"`
	Type   string `json:"type"`
	Note   string `json:"note,omitempty"`
}

// CLIRelated is a chapter's edges and tags.
type CLIRelated struct {
	Chapter  int       `json:"chapter"`
	Outgoing []CLIEdge `json:"outgoing"`
	Incoming []CLIEdge `json:"incoming"`
	Tags     []string  `json:"tags"`
}

// CLIOutlineNode is an outline entry with its children.
type CLIOutlineNode struct {
	CLIEntry
	Children []CLIOutlineNode `json:"children,omitempty"`
}

// CLIRun is a persisted run summary.
type CLIRun struct {
	ID              int64     `json:"id"`
	Kind            string    `json:"kind"`
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at"`
	DryRun          bool      `json:"dry_run"`
	Files           int       `json:"files"`
	Parts           int       `json:"parts"`
	Chapters        int       `json:"chapters"`
	Sections        int       `json:"sections"`
	Subsections     int       `json:"subsections"`
	ScriptureRefs   int       `json:"scripture_refs"`
	CrossRefs       int       `json:"cross_refs"`
	RelinkedEntries int       `json:"relinked_entries"`
}

// CLIRunSummary is the result of an import, relink or summarize command.
type CLIRunSummary struct {
	Kind            string         `json:"kind"`
	DryRun          bool           `json:"dry_run"`
	Files           int            `json:"files"`
	SkippedFiles    int            `json:"skipped_files"`
	Entries         map[string]int `json:"entries"`
	ScriptureRefs   int            `json:"scripture_refs"`
	CrossRefs       int            `json:"cross_refs"`
	RelinkedEntries int            `json:"relinked_entries"`
	Summarized      int            `json:"summarized"`
	Snapshot        string         `json:"snapshot,omitempty"`
	DurationMS      int64          `json:"duration_ms"`
}

// CLISnapshot describes a written or restored snapshot.
type CLISnapshot struct {
	Path   string `json:"path"`
	Digest string `json:"digest"`
	Size   int64  `json:"size,omitempty"`
	Target string `json:"target,omitempty"`
}

func entryToCLI(e *stindex.Entry) CLIEntry {
	return CLIEntry{
		ID:         e.ID,
		Type:       e.EntryType,
		Title:      e.Title,
		Link:       entryLink(e),
		Part:       e.PartNumber,
		Chapter:    e.ChapterNumber,
		Section:    e.SectionLetter,
		Subsection: e.SubsectionNumber,
		ParentID:   e.ParentID,
		Summary:    e.Summary,
		WordCount:  e.WordCount,
	}
}

// entryLink renders the [[ST:...]] link of a chapter, section or subsection.
func entryLink(e *stindex.Entry) string {
	if e.ChapterNumber == nil {
		return ""
	}
	switch e.EntryType {
	case "chapter":
		return fmt.Sprintf("[[ST:Ch%d]]", *e.ChapterNumber)
	case "section":
		return fmt.Sprintf("[[ST:Ch%d:%s]]", *e.ChapterNumber, deref(e.SectionLetter))
	case "subsection":
		if e.SubsectionNumber == nil {
			return ""
		}
		return fmt.Sprintf("[[ST:Ch%d:%s.%d]]", *e.ChapterNumber, deref(e.SectionLetter), *e.SubsectionNumber)
	default:
		return ""
	}
}

func refToCLI(r *stindex.ScriptureRef) CLIReference {
	ref := fmt.Sprintf("%s.%d.%d", r.Book, r.Chapter, r.StartVerse)
	if r.EndVerse != nil {
		ref += fmt.Sprintf("-%d", *r.EndVerse)
	}
	return CLIReference{
		EntryID: r.SystematicID,
		Ref:     ref,
		Primary: r.IsPrimary,
		Snippet: r.ContextSnippet,
	}
}

func edgesToCLI(edges []*stindex.RelatedChapter) []CLIEdge {
	out := make([]CLIEdge, 0, len(edges))
	for _, e := range edges {
		out = append(out, CLIEdge{
			Source: e.SourceChapter,
			Target: e.TargetChapter,
			Type:   e.RelationshipType,
			Note:   deref(e.Note),
		})
	}
	return out
}

func outlineToCLI(nodes []*stindex.OutlineNode) []CLIOutlineNode {
	out := make([]CLIOutlineNode, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, CLIOutlineNode{
			CLIEntry: entryToCLI(n.Entry),
			Children: outlineToCLI(n.Children),
		})
	}
	return out
}

func runToCLI(r *stindex.ImportRun) CLIRun {
	return CLIRun{
		ID:              r.ID,
		Kind:            r.Kind,
		StartedAt:       r.StartedAt,
		FinishedAt:      r.FinishedAt,
		DryRun:          r.DryRun,
		Files:           r.Files,
		Parts:           r.Parts,
		Chapters:        r.Chapters,
		Sections:        r.Sections,
		Subsections:     r.Subsections,
		ScriptureRefs:   r.ScriptureRefs,
		CrossRefs:       r.CrossRefs,
		RelinkedEntries: r.RelinkedEntries,
	}
}

func runSummaryToCLI(s *stindex.RunSummary) CLIRunSummary {
	out := CLIRunSummary{
		Kind:            s.Kind,
		DryRun:          s.DryRun,
		Files:           s.Files,
		SkippedFiles:    s.SkippedFiles,
		Entries:         s.Entries,
		ScriptureRefs:   s.ScriptureRefs,
		CrossRefs:       s.CrossRefs,
		RelinkedEntries: s.RelinkedEntries,
		Summarized:      s.Summarized,
		DurationMS:      s.Duration.Milliseconds(),
	}
	if s.Snapshot != nil {
		out.Snapshot = s.Snapshot.Path
	}
	return out
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
