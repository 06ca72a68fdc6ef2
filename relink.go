package stindex

import (
	"context"
	"fmt"
	"time"

	"github.com/jward/stindex/internal/backup"
	"github.com/jward/stindex/internal/outline"
	"github.com/jward/stindex/internal/store"
)

// RelinkOptions scopes one relink pass.
type RelinkOptions struct {
	// Chapter restricts the pass to entries of one chapter.
	Chapter *int
	// Limit caps the number of entries scanned, in sort order. Zero means all.
	Limit int
	// Backup writes a snapshot before anything is changed.
	Backup bool
	// BackupDir is where the snapshot goes; empty means next to the database.
	BackupDir string
	// DryRun reports what would be linked without committing.
	DryRun bool
}

// Relink scans stored entry content for citations an earlier import missed,
// wraps them in canonical anchors and indexes them as non-primary references.
// Already linked citations are skipped, so a second pass over the same store
// finds nothing.
func (e *Engine) Relink(ctx context.Context, opts RelinkOptions) (*RunSummary, error) {
	started := time.Now()
	sum, err := e.runRelink(ctx, opts, started)
	e.metrics.ObserveRun("relink", time.Since(started), err)
	if err != nil {
		return nil, err
	}
	e.metrics.AddIndexed("relink", sum.ScriptureRefs, 0, sum.RelinkedEntries)
	return sum, nil
}

func (e *Engine) runRelink(ctx context.Context, opts RelinkOptions, started time.Time) (*RunSummary, error) {
	log := e.logger.With().Str("op", "relink").Logger()

	entries, err := e.store.EntriesForRelink(opts.Chapter, opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("stindex: relink: %w", err)
	}

	sum := &RunSummary{Kind: "relink", DryRun: opts.DryRun, Entries: make(map[string]int)}
	if opts.Backup && !opts.DryRun {
		snap, err := backup.Create(ctx, e.store, opts.BackupDir)
		if err != nil {
			return nil, fmt.Errorf("stindex: relink: %w", err)
		}
		sum.Snapshot = snap
		log.Info().Str("snapshot", snap.Path).Msg("backup written")
	}

	batch := store.NewBatch(e.store)
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		refs, err := e.relinkEntry(batch, entry)
		if err != nil {
			return nil, fmt.Errorf("stindex: relink: %w", err)
		}
		if refs == 0 {
			continue
		}
		sum.Entries[entry.EntryType]++
		sum.RelinkedEntries++
		log.Debug().Str("entry", entry.ID).Str("title", entry.Title).Int("refs", refs).Msg("linked")
	}

	if opts.DryRun {
		preview, err := e.store.PreviewBatch(batch)
		if err != nil {
			return nil, fmt.Errorf("stindex: relink: %w", err)
		}
		sum.ScriptureRefs = preview.ScriptureRefs
		sum.Duration = time.Since(started)
		log.Info().Int("scanned", len(entries)).Fields(sum.fields()).Msg("dry run, nothing committed")
		return sum, nil
	}

	batch.Run = sum.importRun(started)
	stats, err := e.store.CommitBatch(batch)
	if err != nil {
		return nil, fmt.Errorf("stindex: relink: %w", err)
	}
	sum.ScriptureRefs = stats.ScriptureRefs
	sum.Duration = time.Since(started)
	log.Info().Int("scanned", len(entries)).Fields(sum.fields()).Msg("relink committed")
	return sum, nil
}

// relinkEntry links the bare citations of one stored entry and writes the new
// content and index rows to ds. It returns the number of citations linked.
func (e *Engine) relinkEntry(ds store.DataStore, entry *store.Entry) (int, error) {
	content, refs := e.scanner.Link(entry.Content)
	if len(refs) == 0 {
		return 0, nil
	}
	if err := ds.UpdateEntryContent(store.ContentUpdate{
		EntryID:   entry.ID,
		Content:   content,
		WordCount: outline.CountWords(content),
	}); err != nil {
		return 0, err
	}
	for _, ref := range refs {
		row := indexRow(entry.ID, ref)
		if _, err := ds.InsertScriptureRef(&row); err != nil {
			return 0, err
		}
	}
	return len(refs), nil
}
