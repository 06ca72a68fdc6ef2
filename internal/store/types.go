package store

import "time"

// Outline types

type Entry struct {
	ID               string
	EntryType        string
	PartNumber       *int
	ChapterNumber    *int
	SectionLetter    *string
	SubsectionNumber *int
	Title            string
	Content          string
	Summary          *string
	ParentID         *string
	SortOrder        int
	WordCount        int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ContentUpdate replaces the body of an existing entry.
type ContentUpdate struct {
	EntryID   string
	Content   string
	WordCount int
}

// SummaryUpdate sets the summary of an existing entry.
type SummaryUpdate struct {
	EntryID string
	Summary string
}

// Scripture index types

type ScriptureRef struct {
	ID             int64
	SystematicID   string
	Book           string
	Chapter        int
	StartVerse     int
	EndVerse       *int
	IsPrimary      bool
	ContextSnippet string
	CreatedAt      time.Time
}

// PassageHit is an entry citing a passage, with the citing index row.
type PassageHit struct {
	Entry *Entry
	Ref   *ScriptureRef
}

// Chapter graph types

type RelatedChapter struct {
	ID               int64
	SourceChapter    int
	TargetChapter    int
	RelationshipType string
	Note             *string
	CreatedAt        time.Time
}

type ChapterTag struct {
	ChapterNumber int
	Tag           string
}

// Bookkeeping types

type ImportSource struct {
	Path       string
	Hash       string
	Entries    int
	ImportedAt time.Time
}

type ImportRun struct {
	ID              int64
	Kind            string // "import" or "relink"
	StartedAt       time.Time
	FinishedAt      time.Time
	DryRun          bool
	Files           int
	Parts           int
	Chapters        int
	Sections        int
	Subsections     int
	ScriptureRefs   int
	CrossRefs       int
	RelinkedEntries int
}

// Counts summarizes the persisted index.
type Counts struct {
	Entries       map[string]int // by entry type
	ScriptureRefs int
	CrossRefs     int
	ChapterTags   int
}
