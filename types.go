package stindex

import (
	"time"

	"github.com/jward/stindex/internal/backup"
	"github.com/jward/stindex/internal/store"
)

// Public type aliases for internal store types used in the QueryBuilder API.
// These are Go type aliases (=), identical to the internal types at compile
// time. External consumers use these names; no conversion is needed.

type Store = store.Store
type Entry = store.Entry
type ScriptureRef = store.ScriptureRef
type PassageHit = store.PassageHit
type RelatedChapter = store.RelatedChapter
type ImportRun = store.ImportRun
type Counts = store.Counts
type Snapshot = backup.Snapshot

// RunSummary reports what an import, relink or summarize run did. The
// scripture and cross-reference counts are the rows inserted, or for a dry
// run the rows that would be.
type RunSummary struct {
	Kind            string         `json:"kind"`
	DryRun          bool           `json:"dry_run"`
	Files           int            `json:"files"`
	SkippedFiles    int            `json:"skipped_files"`
	Entries         map[string]int `json:"entries"`
	ScriptureRefs   int            `json:"scripture_refs"`
	CrossRefs       int            `json:"cross_refs"`
	RelinkedEntries int            `json:"relinked_entries"`
	Summarized      int            `json:"summarized"`
	Snapshot        *Snapshot      `json:"snapshot,omitempty"`
	Duration        time.Duration  `json:"duration_ns"`
}

func (s *RunSummary) importRun(started time.Time) *store.ImportRun {
	return &store.ImportRun{
		Kind:            s.Kind,
		StartedAt:       started.UTC(),
		FinishedAt:      time.Now().UTC(),
		DryRun:          s.DryRun,
		Files:           s.Files,
		Parts:           s.Entries["part"],
		Chapters:        s.Entries["chapter"],
		Sections:        s.Entries["section"],
		Subsections:     s.Entries["subsection"],
		ScriptureRefs:   s.ScriptureRefs,
		CrossRefs:       s.CrossRefs,
		RelinkedEntries: s.RelinkedEntries,
	}
}

func (s *RunSummary) fields() map[string]any {
	return map[string]any{
		"files":            s.Files,
		"skipped_files":    s.SkippedFiles,
		"parts":            s.Entries["part"],
		"chapters":         s.Entries["chapter"],
		"sections":         s.Entries["section"],
		"subsections":      s.Entries["subsection"],
		"scripture_refs":   s.ScriptureRefs,
		"cross_refs":       s.CrossRefs,
		"relinked_entries": s.RelinkedEntries,
		"summarized":       s.Summarized,
	}
}
