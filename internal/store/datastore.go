package store

// DataStore is the write-side interface used by the import, relink and
// summarize passes. Both Store (direct SQLite) and Batch (in-memory
// buffering, one transaction at commit) implement it, so a pass does not
// know whether its writes are ever committed.
type DataStore interface {
	UpsertEntry(e *Entry) error
	UpdateEntryContent(u ContentUpdate) error
	UpdateEntrySummary(u SummaryUpdate) error
	InsertScriptureRef(ref *ScriptureRef) (bool, error)
	InsertRelatedChapter(rc *RelatedChapter) (bool, error)
	LinkChapterTag(ct ChapterTag) error

	// Natural-key lookup used to deduplicate parts.
	PartByNumber(number int) (*Entry, error)
}

// Compile-time check: *Store satisfies DataStore.
var _ DataStore = (*Store)(nil)
