package stindex

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/stindex/internal/metrics"
	"github.com/jward/stindex/internal/outline"
)

// importUnsummarized imports one implicit part, an empty chapter and a
// section with body text, all without summaries.
func importUnsummarized(t *testing.T, e *Engine) {
	t.Helper()
	path := writeFixture(t, t.TempDir(), "st.json",
		centered("Chapter 1"),
		centeredBold("The Word of God"),
		centeredBold("A. The Authority of Scripture"),
		body("Scripture is God's word. It is true. It is clear."),
	)
	_, err := e.Import(context.Background(), path, ImportOptions{SkipSummary: true})
	require.NoError(t, err)
}

func TestSummarize_Backfill(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)
	importUnsummarized(t, e)
	ctx := context.Background()

	sum, err := e.Summarize(ctx, SummarizeOptions{})
	require.NoError(t, err)
	assert.Equal(t, "summarize", sum.Kind)
	assert.Equal(t, 2, sum.Summarized)
	assert.Equal(t, map[string]int{"part": 1, "section": 1}, sum.Entries)

	section, err := e.Store().EntryByID(outline.SectionID(1, "A"))
	require.NoError(t, err)
	require.NotNil(t, section.Summary)
	assert.Equal(t, "Scripture is God's word. It is true.", *section.Summary)

	part, err := e.Store().PartByNumber(1)
	require.NoError(t, err)
	require.NotNil(t, part.Summary)
	assert.Equal(t, "The Doctrine of the Word of God", *part.Summary)

	chapter, err := e.Store().EntryByID(outline.ChapterID(1))
	require.NoError(t, err)
	assert.Nil(t, chapter.Summary, "no body text, nothing emitted")

	runs, err := e.Store().ImportRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "summarize", runs[0].Kind)
}

func TestSummarize_NothingLeftCommitsNothing(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)
	importUnsummarized(t, e)
	ctx := context.Background()

	_, err := e.Summarize(ctx, SummarizeOptions{})
	require.NoError(t, err)
	sum, err := e.Summarize(ctx, SummarizeOptions{})
	require.NoError(t, err)
	assert.Zero(t, sum.Summarized)

	runs, err := e.Store().ImportRuns(10)
	require.NoError(t, err)
	assert.Len(t, runs, 2, "an empty pass records no run")
}

func TestSummarize_DryRun(t *testing.T) {
	t.Parallel()
	e := newTestEngine(t)
	importUnsummarized(t, e)

	sum, err := e.Summarize(context.Background(), SummarizeOptions{DryRun: true})
	require.NoError(t, err)
	assert.True(t, sum.DryRun)
	assert.Equal(t, 2, sum.Summarized)

	section, err := e.Store().EntryByID(outline.SectionID(1, "A"))
	require.NoError(t, err)
	assert.Nil(t, section.Summary)
	runs, err := e.Store().ImportRuns(10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestSummarize_Limit(t *testing.T) {
	t.Parallel()
	m := metrics.New()
	e := newTestEngine(t, WithMetrics(m))
	importUnsummarized(t, e)

	sum, err := e.Summarize(context.Background(), SummarizeOptions{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"part": 1}, sum.Entries)

	section, err := e.Store().EntryByID(outline.SectionID(1, "A"))
	require.NoError(t, err)
	assert.Nil(t, section.Summary)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("summarize", "ok")))
}
