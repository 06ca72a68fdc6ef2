package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/stindex"
	"github.com/jward/stindex/internal/backup"
)

func ptr[T any](v T) *T { return &v }

func TestEntryLink(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		entry *stindex.Entry
		want  string
	}{
		{"part", &stindex.Entry{EntryType: "part", PartNumber: ptr(1)}, ""},
		{"chapter", &stindex.Entry{EntryType: "chapter", ChapterNumber: ptr(32)}, "[[ST:Ch32]]"},
		{"section", &stindex.Entry{EntryType: "section", ChapterNumber: ptr(32), SectionLetter: ptr("B")}, "[[ST:Ch32:B]]"},
		{"subsection", &stindex.Entry{EntryType: "subsection", ChapterNumber: ptr(32), SectionLetter: ptr("B"), SubsectionNumber: ptr(3)}, "[[ST:Ch32:B.3]]"},
		{"subsection without number", &stindex.Entry{EntryType: "subsection", ChapterNumber: ptr(32), SectionLetter: ptr("B")}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, entryLink(tt.entry))
		})
	}
}

func TestParseIntArg(t *testing.T) {
	t.Parallel()

	n, err := parseIntArg("16", "verse")
	require.NoError(t, err)
	assert.Equal(t, 16, n)

	_, err = parseIntArg("abc", "verse")
	assert.ErrorContains(t, err, `invalid verse "abc"`)

	_, err = parseIntArg("0", "chapter")
	assert.ErrorContains(t, err, "must be positive")
}

func TestValidateFormat(t *testing.T) {
	t.Parallel()
	assert.NoError(t, validateFormat("json"))
	assert.NoError(t, validateFormat("text"))
	assert.ErrorContains(t, validateFormat("yaml"), "json or text")
}

func TestValidateLogFormat(t *testing.T) {
	t.Parallel()
	assert.NoError(t, validateLogFormat("console"))
	assert.NoError(t, validateLogFormat("json"))
	assert.Error(t, validateLogFormat("logfmt"))
}

func TestRunSummaryToCLI(t *testing.T) {
	t.Parallel()
	sum := &stindex.RunSummary{
		Kind:          "import",
		Files:         2,
		SkippedFiles:  1,
		Entries:       map[string]int{"chapter": 3},
		ScriptureRefs: 9,
		CrossRefs:     2,
		Snapshot:      &backup.Snapshot{Path: "/tmp/backups/x.db.xz"},
		Duration:      1500 * time.Millisecond,
	}
	got := runSummaryToCLI(sum)
	assert.Equal(t, "import", got.Kind)
	assert.Equal(t, 2, got.Files)
	assert.Equal(t, 1, got.SkippedFiles)
	assert.Equal(t, 3, got.Entries["chapter"])
	assert.Equal(t, "/tmp/backups/x.db.xz", got.Snapshot)
	assert.Equal(t, int64(1500), got.DurationMS)
}

func TestOutlineToCLI(t *testing.T) {
	t.Parallel()
	tree := []*stindex.OutlineNode{{
		Entry: &stindex.Entry{ID: "p1", EntryType: "part", PartNumber: ptr(1), Title: "The Doctrine of the Word"},
		Children: []*stindex.OutlineNode{{
			Entry: &stindex.Entry{ID: "c1", EntryType: "chapter", ChapterNumber: ptr(1), Title: "Introduction", ParentID: ptr("p1")},
		}},
	}}

	got := outlineToCLI(tree)
	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0].ID)
	require.Len(t, got[0].Children, 1)
	assert.Equal(t, "[[ST:Ch1]]", got[0].Children[0].Link)
	assert.Empty(t, got[0].Children[0].Children)
}

func TestOutputResultText_Outline(t *testing.T) {
	t.Parallel()
	nodes := []CLIOutlineNode{{
		CLIEntry: CLIEntry{Type: "chapter", Chapter: ptr(4), Title: "The Bible"},
		Children: []CLIOutlineNode{{
			CLIEntry: CLIEntry{Type: "section", Section: ptr("A"), Title: "Inspiration"},
			Children: []CLIOutlineNode{{
				CLIEntry: CLIEntry{Type: "subsection", Subsection: ptr(1), Title: "Meaning"},
			}},
		}},
	}}

	var buf bytes.Buffer
	require.NoError(t, outputResultText(&buf, CLIResult{Command: "outline", Results: nodes}))
	assert.Equal(t, "Chapter 4  The Bible\n  A.  Inspiration\n    1.  Meaning\n", buf.String())
}

func TestOutputResultText_RunSummary(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	err := outputResultText(&buf, CLIResult{Command: "relink", Results: CLIRunSummary{
		Kind:            "relink",
		DryRun:          true,
		Entries:         map[string]int{"section": 2},
		ScriptureRefs:   4,
		RelinkedEntries: 2,
	}})
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Relink (dry run)")
	assert.Contains(t, out, "Sections: 2")
	assert.Contains(t, out, "Relinked entries: 2")
	assert.NotContains(t, out, "Files:")
}

func TestOutputResultText_NoResults(t *testing.T) {
	t.Parallel()
	total := 0
	var buf bytes.Buffer
	require.NoError(t, outputResultText(&buf, CLIResult{Command: "passage", Results: []CLIPassageHit{}, TotalCount: &total}))
	assert.Contains(t, buf.String(), "No results")
}

func TestOutputResultText_UnsupportedType(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	err := outputResultText(&buf, CLIResult{Results: 42})
	assert.ErrorContains(t, err, "unsupported result type")
}

func TestOutputResultText_SummarizeRun(t *testing.T) {
	t.Parallel()
	sum := runSummaryToCLI(&stindex.RunSummary{Kind: "summarize", Entries: map[string]int{"part": 1}, Summarized: 1})
	assert.Equal(t, 1, sum.Summarized)

	var buf bytes.Buffer
	require.NoError(t, outputResultText(&buf, CLIResult{Command: "summarize", Results: sum}))
	out := buf.String()
	assert.Contains(t, out, "Summarize\n=========")
	assert.Contains(t, out, "Summarized: 1")
	assert.NotContains(t, out, "Scripture refs:")
}
