package stindex

import (
	"context"
	"fmt"
	"time"

	"github.com/jward/stindex/internal/store"
)

// SummarizeOptions scopes one summary backfill.
type SummarizeOptions struct {
	// Limit caps the number of entries summarized, in outline order. Zero
	// means all.
	Limit int
	// DryRun runs the script and reports without committing.
	DryRun bool
}

// Summarize runs the summary script over stored entries that have no summary
// yet, such as those imported with SkipSummary. Entries the script emits
// nothing for are left unset.
func (e *Engine) Summarize(ctx context.Context, opts SummarizeOptions) (*RunSummary, error) {
	started := time.Now()
	sum, err := e.runSummarize(ctx, opts, started)
	e.metrics.ObserveRun("summarize", time.Since(started), err)
	if err != nil {
		return nil, err
	}
	return sum, nil
}

func (e *Engine) runSummarize(ctx context.Context, opts SummarizeOptions, started time.Time) (*RunSummary, error) {
	log := e.logger.With().Str("op", "summarize").Logger()

	entries, err := e.store.EntriesWithoutSummary()
	if err != nil {
		return nil, fmt.Errorf("stindex: summarize: %w", err)
	}
	if opts.Limit > 0 && len(entries) > opts.Limit {
		entries = entries[:opts.Limit]
	}

	sum := &RunSummary{Kind: "summarize", DryRun: opts.DryRun, Entries: make(map[string]int)}
	batch := store.NewBatch(e.store)
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ok, err := e.summarizeEntry(ctx, batch, entry)
		if err != nil {
			return nil, fmt.Errorf("stindex: summarize: entry %q: %w", entry.Title, err)
		}
		if ok {
			sum.Entries[entry.EntryType]++
			sum.Summarized++
		}
	}

	if opts.DryRun || batch.Empty() {
		sum.Duration = time.Since(started)
		log.Info().Int("scanned", len(entries)).Int("summarized", sum.Summarized).Bool("dry_run", opts.DryRun).Msg("nothing committed")
		return sum, nil
	}

	batch.Run = sum.importRun(started)
	stats, err := e.store.CommitBatch(batch)
	if err != nil {
		return nil, fmt.Errorf("stindex: summarize: %w", err)
	}
	sum.Summarized = stats.SummaryUpdates
	sum.Duration = time.Since(started)
	log.Info().Int("scanned", len(entries)).Int("summarized", sum.Summarized).Msg("summaries committed")
	return sum, nil
}

// summarizeEntry buffers the script's summary of entry to ds. It reports
// false when the script emits nothing.
func (e *Engine) summarizeEntry(ctx context.Context, ds store.DataStore, entry *store.Entry) (bool, error) {
	summary, err := e.summarize(ctx, entry)
	if err != nil || summary == "" {
		return false, err
	}
	if err := ds.UpdateEntrySummary(store.SummaryUpdate{EntryID: entry.ID, Summary: summary}); err != nil {
		return false, err
	}
	return true, nil
}
