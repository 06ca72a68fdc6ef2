package store

import (
	"sync"
)

// Batch buffers the writes of one import or relink run in memory. Nothing
// touches the database until Store.CommitBatch writes the whole batch in a
// single transaction; a dry run simply never commits.
//
// Thread safety: the mutex protects slice appends and the dedup maps. Part
// lookups check the buffer first and then pass through to the underlying
// Store, which is safe for concurrent reads.
type Batch struct {
	store *Store // for read passthrough; may be nil
	mu    sync.Mutex

	// Clear deletes all outline, index, graph and source rows before the
	// buffered rows are written.
	Clear bool

	Entries         []Entry
	ContentUpdates  []ContentUpdate
	SummaryUpdates  []SummaryUpdate
	ScriptureRefs   []ScriptureRef
	RelatedChapters []RelatedChapter
	ChapterTags     []ChapterTag
	Sources         []ImportSource
	Metadata        map[string]string
	Run             *ImportRun

	refKeys  map[refKey]bool
	edgeKeys map[[2]int]bool
}

type refKey struct {
	entryID    string
	book       string
	chapter    int
	startVerse int
	endVerse   int
}

// Compile-time check: *Batch satisfies DataStore.
var _ DataStore = (*Batch)(nil)

// NewBatch creates a Batch backed by the given Store for read queries. s may
// be nil for batches that are only inspected, never committed.
func NewBatch(s *Store) *Batch {
	return &Batch{
		store:    s,
		Metadata: make(map[string]string),
		refKeys:  make(map[refKey]bool),
		edgeKeys: make(map[[2]int]bool),
	}
}

func (b *Batch) UpsertEntry(e *Entry) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.Entries {
		if b.Entries[i].ID == e.ID {
			b.Entries[i] = *e
			return nil
		}
	}
	b.Entries = append(b.Entries, *e)
	return nil
}

func (b *Batch) UpdateEntryContent(u ContentUpdate) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ContentUpdates = append(b.ContentUpdates, u)
	return nil
}

func (b *Batch) UpdateEntrySummary(u SummaryUpdate) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.SummaryUpdates = append(b.SummaryUpdates, u)
	return nil
}

// InsertScriptureRef buffers an index row. It reports false for a span
// already buffered for the same entry; spans already in the database are
// filtered at commit.
func (b *Batch) InsertScriptureRef(ref *ScriptureRef) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	k := refKey{entryID: ref.SystematicID, book: ref.Book, chapter: ref.Chapter, startVerse: ref.StartVerse}
	if ref.EndVerse != nil {
		k.endVerse = *ref.EndVerse
	}
	if b.refKeys[k] {
		return false, nil
	}
	b.refKeys[k] = true
	b.ScriptureRefs = append(b.ScriptureRefs, *ref)
	return true, nil
}

// InsertRelatedChapter buffers an edge, reporting false for a (source,
// target) pair already buffered.
func (b *Batch) InsertRelatedChapter(rc *RelatedChapter) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	k := [2]int{rc.SourceChapter, rc.TargetChapter}
	if b.edgeKeys[k] {
		return false, nil
	}
	b.edgeKeys[k] = true
	b.RelatedChapters = append(b.RelatedChapters, *rc)
	return true, nil
}

func (b *Batch) LinkChapterTag(ct ChapterTag) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, existing := range b.ChapterTags {
		if existing == ct {
			return nil
		}
	}
	b.ChapterTags = append(b.ChapterTags, ct)
	return nil
}

// AddSource records a source file to be marked as imported.
func (b *Batch) AddSource(src ImportSource) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Sources = append(b.Sources, src)
}

// SetMetadata buffers a metadata value.
func (b *Batch) SetMetadata(key, value string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Metadata[key] = value
}

// PartByNumber returns a buffered part with the given number, falling back
// to the underlying Store when the batch has none. With Clear set the store
// is not consulted, since its rows are about to be deleted.
func (b *Batch) PartByNumber(number int) (*Entry, error) {
	b.mu.Lock()
	for i := range b.Entries {
		e := &b.Entries[i]
		if e.EntryType == "part" && e.PartNumber != nil && *e.PartNumber == number {
			found := *e
			b.mu.Unlock()
			return &found, nil
		}
	}
	clearing := b.Clear
	b.mu.Unlock()
	if b.store == nil || clearing {
		return nil, nil
	}
	return b.store.PartByNumber(number)
}

// Empty reports whether the batch holds no writes.
func (b *Batch) Empty() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.Clear && len(b.Entries) == 0 && len(b.ContentUpdates) == 0 && len(b.SummaryUpdates) == 0 &&
		len(b.ScriptureRefs) == 0 && len(b.RelatedChapters) == 0 && len(b.ChapterTags) == 0 &&
		len(b.Sources) == 0 && len(b.Metadata) == 0 && b.Run == nil
}
