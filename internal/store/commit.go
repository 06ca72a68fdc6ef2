package store

import (
	"fmt"
	"time"
)

// CommitStats counts the rows CommitBatch actually changed. Rows absorbed by
// INSERT OR IGNORE are not counted.
type CommitStats struct {
	Entries         int
	ContentUpdates  int
	SummaryUpdates  int
	ScriptureRefs   int
	RelatedChapters int
	ChapterTags     int
	Sources         int
}

// CommitBatch writes all buffered data from a Batch within a single
// transaction. Any failure rolls the whole batch back.
//
// Parts are deduplicated by natural key: when the database already holds a
// part with the same number under a different ID, the buffered part adopts
// the stored ID and every parent_id and systematic_id in the batch pointing
// at the buffered ID is rewritten using the remap table.
//
// Write order respects FK dependencies:
//  1. Clear (when requested)
//  2. Entries (document order, so parents precede children)
//  3. Content and summary updates
//  4. Scripture index rows (depend on entries)
//  5. Related chapters, chapter tags
//  6. Import sources, metadata, run summary
//
// The run summary's scripture and cross-reference counts are overwritten
// with the number of rows actually inserted.
func (s *Store) CommitBatch(batch *Batch) (*CommitStats, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("commit batch: begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	stats := &CommitStats{}

	// 1. Clear
	if batch.Clear {
		for _, q := range []string{
			"DELETE FROM scripture_index",
			"DELETE FROM related_chapters",
			"DELETE FROM chapter_tags",
			"DELETE FROM doctrine_entries",
			"DELETE FROM import_sources",
		} {
			if _, err := tx.Exec(q); err != nil {
				return nil, fmt.Errorf("commit batch: clear: %w", err)
			}
		}
	}

	// 2. Entries
	remap := make(map[string]string)
	for _, e := range batch.Entries {
		if e.EntryType == "part" && e.PartNumber != nil {
			existing, err := partByNumber(tx, *e.PartNumber)
			if err != nil {
				return nil, fmt.Errorf("commit batch: %w", err)
			}
			if existing != nil && existing.ID != e.ID {
				remap[e.ID] = existing.ID
				e.ID = existing.ID
				e.CreatedAt = existing.CreatedAt
			}
		}
		if e.ParentID != nil {
			if realID, ok := remap[*e.ParentID]; ok {
				e.ParentID = &realID
			}
		}
		if err := upsertEntry(tx, &e, now); err != nil {
			return nil, fmt.Errorf("commit batch: %w", err)
		}
		stats.Entries++
	}

	// 3. Content and summary updates
	for _, u := range batch.ContentUpdates {
		if realID, ok := remap[u.EntryID]; ok {
			u.EntryID = realID
		}
		changed, err := updateContent(tx, u, now)
		if err != nil {
			return nil, fmt.Errorf("commit batch: %w", err)
		}
		if changed {
			stats.ContentUpdates++
		}
	}
	for _, u := range batch.SummaryUpdates {
		if realID, ok := remap[u.EntryID]; ok {
			u.EntryID = realID
		}
		changed, err := updateSummary(tx, u, now)
		if err != nil {
			return nil, fmt.Errorf("commit batch: %w", err)
		}
		if changed {
			stats.SummaryUpdates++
		}
	}

	// 4. Scripture index
	for _, ref := range batch.ScriptureRefs {
		if realID, ok := remap[ref.SystematicID]; ok {
			ref.SystematicID = realID
		}
		inserted, err := insertScriptureRef(tx, &ref, now)
		if err != nil {
			return nil, fmt.Errorf("commit batch: %w", err)
		}
		if inserted {
			stats.ScriptureRefs++
		}
	}

	// 5. Chapter graph
	for _, rc := range batch.RelatedChapters {
		inserted, err := insertRelatedChapter(tx, &rc, now)
		if err != nil {
			return nil, fmt.Errorf("commit batch: %w", err)
		}
		if inserted {
			stats.RelatedChapters++
		}
	}
	for _, ct := range batch.ChapterTags {
		if err := linkChapterTag(tx, ct); err != nil {
			return nil, fmt.Errorf("commit batch: %w", err)
		}
		stats.ChapterTags++
	}

	// 6. Bookkeeping
	for _, src := range batch.Sources {
		if err := upsertImportSource(tx, &src, now); err != nil {
			return nil, fmt.Errorf("commit batch: %w", err)
		}
		stats.Sources++
	}
	for k, v := range batch.Metadata {
		if err := setMetadata(tx, k, v); err != nil {
			return nil, fmt.Errorf("commit batch: %w", err)
		}
	}
	if batch.Run != nil {
		batch.Run.ScriptureRefs = stats.ScriptureRefs
		batch.Run.CrossRefs = stats.RelatedChapters
		if err := insertImportRun(tx, batch.Run); err != nil {
			return nil, fmt.Errorf("commit batch: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit batch: commit: %w", err)
	}
	return stats, nil
}

// PreviewBatch counts what CommitBatch would write for batch without
// touching the database. Index rows and edges already stored are not
// counted, unless the batch clears the store first.
func (s *Store) PreviewBatch(batch *Batch) (*CommitStats, error) {
	stats := &CommitStats{
		Entries:        len(batch.Entries),
		ContentUpdates: len(batch.ContentUpdates),
		SummaryUpdates: len(batch.SummaryUpdates),
		ChapterTags:    len(batch.ChapterTags),
		Sources:        len(batch.Sources),
	}
	if batch.Clear {
		stats.ScriptureRefs = len(batch.ScriptureRefs)
		stats.RelatedChapters = len(batch.RelatedChapters)
		return stats, nil
	}
	for i := range batch.ScriptureRefs {
		exists, err := scriptureRefExists(s.db, &batch.ScriptureRefs[i])
		if err != nil {
			return nil, fmt.Errorf("preview batch: %w", err)
		}
		if !exists {
			stats.ScriptureRefs++
		}
	}
	for _, rc := range batch.RelatedChapters {
		exists, err := relatedChapterExists(s.db, rc.SourceChapter, rc.TargetChapter)
		if err != nil {
			return nil, fmt.Errorf("preview batch: %w", err)
		}
		if !exists {
			stats.RelatedChapters++
		}
	}
	return stats, nil
}
