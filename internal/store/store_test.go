package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Migrate())
	t.Cleanup(func() { s.Close() })
	return s
}

func ptr[T any](v T) *T { return &v }

// insertTestEntry upserts an entry with minimal required fields.
func insertTestEntry(t *testing.T, s *Store, id, typ string, sort int, parentID *string) *Entry {
	t.Helper()
	e := &Entry{ID: id, EntryType: typ, Title: id, SortOrder: sort, ParentID: parentID}
	switch typ {
	case "part":
		e.PartNumber = ptr(sort)
	case "chapter", "section":
		e.ChapterNumber = ptr(1)
		if typ == "section" {
			e.SectionLetter = ptr("A")
		}
	case "subsection":
		e.ChapterNumber = ptr(1)
		e.SectionLetter = ptr("A")
		e.SubsectionNumber = ptr(1)
	}
	require.NoError(t, s.UpsertEntry(e))
	return e
}

// =============================================================================
// Schema & Lifecycle
// =============================================================================

func TestMigrate_AllTablesExist(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	expectedTables := []string{
		"doctrine_entries", "scripture_index", "related_chapters", "tags",
		"chapter_tags", "import_sources", "import_runs", "metadata",
	}
	for _, table := range expectedTables {
		var name string
		err := s.DB().QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
	}

	v, ok, err := s.Metadata("schema_version")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, SchemaVersion, v)
}

func TestMigrate_Idempotent(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	require.NoError(t, s.Migrate())
	require.NoError(t, s.Migrate())
}

func TestMigrate_SubsectionCheck(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	err := s.UpsertEntry(&Entry{ID: "bad", EntryType: "subsection", Title: "x", SortOrder: 1})
	assert.Error(t, err)
}

// =============================================================================
// Entries
// =============================================================================

func TestUpsertEntry_RoundTrip(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	part := insertTestEntry(t, s, "p1", "part", 1, nil)
	ch := &Entry{
		ID: "c1", EntryType: "chapter", PartNumber: ptr(1), ChapterNumber: ptr(1),
		Title: "The Word of God", Content: "<p>body</p>", Summary: ptr("subtitle"),
		ParentID: &part.ID, SortOrder: 2, WordCount: 1,
	}
	require.NoError(t, s.UpsertEntry(ch))

	got, err := s.EntryByID("c1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "chapter", got.EntryType)
	assert.Equal(t, 1, *got.ChapterNumber)
	assert.Equal(t, "The Word of God", got.Title)
	assert.Equal(t, "<p>body</p>", got.Content)
	assert.Equal(t, "subtitle", *got.Summary)
	assert.Equal(t, "p1", *got.ParentID)
	assert.Nil(t, got.SectionLetter)
	assert.False(t, got.CreatedAt.IsZero())

	missing, err := s.EntryByID("nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUpsertEntry_KeepsSummaryAndCreatedAt(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	e := &Entry{ID: "c1", EntryType: "chapter", ChapterNumber: ptr(1), Title: "Old", Summary: ptr("kept"), SortOrder: 1}
	require.NoError(t, s.UpsertEntry(e))
	first, err := s.EntryByID("c1")
	require.NoError(t, err)

	require.NoError(t, s.UpsertEntry(&Entry{ID: "c1", EntryType: "chapter", ChapterNumber: ptr(1), Title: "New", SortOrder: 1}))
	got, err := s.EntryByID("c1")
	require.NoError(t, err)
	assert.Equal(t, "New", got.Title)
	require.NotNil(t, got.Summary)
	assert.Equal(t, "kept", *got.Summary)
	assert.Equal(t, first.CreatedAt.Unix(), got.CreatedAt.Unix())
}

func TestPartByNumber(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	insertTestEntry(t, s, "p-two", "part", 2, nil)

	got, err := s.PartByNumber(2)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "p-two", got.ID)

	got, err = s.PartByNumber(3)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestChildEntries_SortOrder(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	p := insertTestEntry(t, s, "p1", "part", 1, nil)
	insertTestEntry(t, s, "b", "chapter", 3, &p.ID)
	insertTestEntry(t, s, "a", "chapter", 2, &p.ID)

	roots, err := s.ChildEntries("")
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Equal(t, "p1", roots[0].ID)

	kids, err := s.ChildEntries("p1")
	require.NoError(t, err)
	require.Len(t, kids, 2)
	assert.Equal(t, "a", kids[0].ID)
	assert.Equal(t, "b", kids[1].ID)
}

func TestEntryByLocation(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	p := insertTestEntry(t, s, "p1", "part", 1, nil)
	c := insertTestEntry(t, s, "c1", "chapter", 2, &p.ID)
	sec := insertTestEntry(t, s, "s1", "section", 3, &c.ID)
	insertTestEntry(t, s, "ss1", "subsection", 4, &sec.ID)

	got, err := s.EntryByLocation(1, nil, nil)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "c1", got.ID)

	got, err = s.EntryByLocation(1, ptr("A"), nil)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "s1", got.ID)

	got, err = s.EntryByLocation(1, ptr("A"), ptr(1))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "ss1", got.ID)

	got, err = s.EntryByLocation(9, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestEntriesForRelink_Filters(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	for i, ch := range []int{1, 1, 2, 2, 2} {
		require.NoError(t, s.UpsertEntry(&Entry{
			ID: string(rune('a' + i)), EntryType: "chapter", ChapterNumber: ptr(ch),
			Title: "t", Content: "<p>x</p>", SortOrder: i + 1,
		}))
	}
	require.NoError(t, s.UpsertEntry(&Entry{ID: "empty", EntryType: "chapter", ChapterNumber: ptr(2), Title: "t", SortOrder: 9}))

	all, err := s.EntriesForRelink(nil, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	two, err := s.EntriesForRelink(ptr(2), 0)
	require.NoError(t, err)
	assert.Len(t, two, 3)

	limited, err := s.EntriesForRelink(ptr(2), 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "c", limited[0].ID)
}

// =============================================================================
// Scripture index
// =============================================================================

func TestInsertScriptureRef_Dedup(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	insertTestEntry(t, s, "c1", "chapter", 1, nil)

	ref := &ScriptureRef{SystematicID: "c1", Book: "ROM", Chapter: 8, StartVerse: 28, EndVerse: ptr(30), IsPrimary: true}
	inserted, err := s.InsertScriptureRef(ref)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = s.InsertScriptureRef(&ScriptureRef{SystematicID: "c1", Book: "ROM", Chapter: 8, StartVerse: 28, EndVerse: ptr(30)})
	require.NoError(t, err)
	assert.False(t, inserted, "same span is ignored")

	// NULL end verses must collide too.
	inserted, err = s.InsertScriptureRef(&ScriptureRef{SystematicID: "c1", Book: "JHN", Chapter: 3, StartVerse: 16})
	require.NoError(t, err)
	assert.True(t, inserted)
	inserted, err = s.InsertScriptureRef(&ScriptureRef{SystematicID: "c1", Book: "JHN", Chapter: 3, StartVerse: 16})
	require.NoError(t, err)
	assert.False(t, inserted)

	n, err := s.CountScriptureRefs()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	primary, err := s.ScriptureRefsByEntry("c1", true)
	require.NoError(t, err)
	require.Len(t, primary, 1)
	assert.Equal(t, "ROM", primary[0].Book)
}

func TestInsertScriptureRef_PromotesPrimary(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	insertTestEntry(t, s, "c1", "chapter", 1, nil)

	inserted, err := s.InsertScriptureRef(&ScriptureRef{SystematicID: "c1", Book: "JHN", Chapter: 3, StartVerse: 16})
	require.NoError(t, err)
	require.True(t, inserted)

	inserted, err = s.InsertScriptureRef(&ScriptureRef{SystematicID: "c1", Book: "JHN", Chapter: 3, StartVerse: 16, IsPrimary: true})
	require.NoError(t, err)
	assert.False(t, inserted, "promotion is not a new row")

	primary, err := s.ScriptureRefsByEntry("c1", true)
	require.NoError(t, err)
	require.Len(t, primary, 1)
	assert.Equal(t, "JHN", primary[0].Book)

	// A later non-primary offer leaves the row primary.
	_, err = s.InsertScriptureRef(&ScriptureRef{SystematicID: "c1", Book: "JHN", Chapter: 3, StartVerse: 16})
	require.NoError(t, err)
	primary, err = s.ScriptureRefsByEntry("c1", true)
	require.NoError(t, err)
	assert.Len(t, primary, 1)

	n, err := s.CountScriptureRefs()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestEntriesForPassage(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	insertTestEntry(t, s, "c1", "chapter", 1, nil)
	insertTestEntry(t, s, "c2", "chapter", 2, nil)

	_, err := s.InsertScriptureRef(&ScriptureRef{SystematicID: "c2", Book: "ROM", Chapter: 8, StartVerse: 28, EndVerse: ptr(30), IsPrimary: true, ContextSnippet: "snippet"})
	require.NoError(t, err)
	_, err = s.InsertScriptureRef(&ScriptureRef{SystematicID: "c1", Book: "ROM", Chapter: 8, StartVerse: 29})
	require.NoError(t, err)
	_, err = s.InsertScriptureRef(&ScriptureRef{SystematicID: "c1", Book: "ROM", Chapter: 9, StartVerse: 29})
	require.NoError(t, err)

	hits, err := s.EntriesForPassage("ROM", 8, 29)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "c2", hits[0].Entry.ID, "primary first")
	assert.Equal(t, "snippet", hits[0].Ref.ContextSnippet)
	assert.Equal(t, "c1", hits[1].Entry.ID)

	hits, err = s.EntriesForPassage("ROM", 8, 31)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

// =============================================================================
// Chapter graph and tags
// =============================================================================

func TestRelatedChapters(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	for _, target := range []int{34, 32, 33, 32} {
		_, err := s.InsertRelatedChapter(&RelatedChapter{SourceChapter: 10, TargetChapter: target})
		require.NoError(t, err)
	}
	_, err := s.InsertRelatedChapter(&RelatedChapter{SourceChapter: 40, TargetChapter: 10, Note: ptr("see chapter 10")})
	require.NoError(t, err)

	out, in, err := s.RelatedChapters(10)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, 32, out[0].TargetChapter)
	assert.Equal(t, "see_also", out[0].RelationshipType)
	require.Len(t, in, 1)
	assert.Equal(t, 40, in[0].SourceChapter)
	assert.Equal(t, "see chapter 10", *in[0].Note)
}

func TestLinkChapterTag(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	require.NoError(t, s.LinkChapterTag(ChapterTag{ChapterNumber: 1, Tag: "bibliology"}))
	require.NoError(t, s.LinkChapterTag(ChapterTag{ChapterNumber: 1, Tag: "bibliology"}))
	require.NoError(t, s.LinkChapterTag(ChapterTag{ChapterNumber: 1, Tag: "authority"}))

	tags, err := s.ChapterTags(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"authority", "bibliology"}, tags)
}

// =============================================================================
// Bookkeeping
// =============================================================================

func TestImportRuns(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	require.NoError(t, s.InsertImportRun(&ImportRun{Kind: "import", Chapters: 3}))
	require.NoError(t, s.InsertImportRun(&ImportRun{Kind: "relink", RelinkedEntries: 2}))

	runs, err := s.ImportRuns(5)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "relink", runs[0].Kind)
	assert.Equal(t, 2, runs[0].RelinkedEntries)
	assert.Equal(t, 3, runs[1].Chapters)
}

func TestImportSourcePaths(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	paths, err := s.ImportSourcePaths()
	require.NoError(t, err)
	assert.Empty(t, paths)

	batch := NewBatch(s)
	batch.AddSource(ImportSource{Path: "/in/b.json", Hash: "h2"})
	batch.AddSource(ImportSource{Path: "/in/a.json", Hash: "h1"})
	_, err = s.CommitBatch(batch)
	require.NoError(t, err)

	paths, err = s.ImportSourcePaths()
	require.NoError(t, err)
	assert.Equal(t, []string{"/in/a.json", "/in/b.json"}, paths)
}

func TestMaxSortOrder(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	n, err := s.MaxSortOrder()
	require.NoError(t, err)
	assert.Zero(t, n)

	insertTestEntry(t, s, "p1", "part", 1, nil)
	insertTestEntry(t, s, "c1", "chapter", 7, ptr("p1"))
	n, err = s.MaxSortOrder()
	require.NoError(t, err)
	assert.Equal(t, 7, n)
}

func TestEntriesWithoutSummary(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	insertTestEntry(t, s, "p1", "part", 1, nil)
	insertTestEntry(t, s, "c1", "chapter", 2, ptr("p1"))
	require.NoError(t, s.UpdateEntrySummary(SummaryUpdate{EntryID: "p1", Summary: "done"}))

	entries, err := s.EntriesWithoutSummary()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "c1", entries[0].ID)
}

func TestHashBytes(t *testing.T) {
	t.Parallel()

	a := HashBytes([]byte("grudem"))
	assert.Len(t, a, 64)
	assert.Equal(t, a, HashBytes([]byte("grudem")))
	assert.NotEqual(t, a, HashBytes([]byte("berkhof")))

	path := filepath.Join(t.TempDir(), "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("grudem"), 0o644))
	fromFile, err := HashFile(path)
	require.NoError(t, err)
	assert.Equal(t, a, fromFile)
}
