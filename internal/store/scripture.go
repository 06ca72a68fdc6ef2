package store

import (
	"database/sql"
	"fmt"
	"time"
)

// --- Scripture index operations ---

// insertScriptureRef inserts an index row unless the same span is already
// indexed for the entry. A primary row upgrades an existing non-primary row
// for the span; a row is never demoted. inserted reports whether a new row
// was written.
func insertScriptureRef(x execer, ref *ScriptureRef, now time.Time) (inserted bool, err error) {
	if ref.CreatedAt.IsZero() {
		ref.CreatedAt = now
	}
	res, err := x.Exec(
		`INSERT OR IGNORE INTO scripture_index
			(systematic_id, book, chapter, start_verse, end_verse, is_primary, context_snippet, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ref.SystematicID, ref.Book, ref.Chapter, ref.StartVerse, ref.EndVerse, ref.IsPrimary,
		ref.ContextSnippet, ref.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert scripture ref %s %d:%d: %w", ref.Book, ref.Chapter, ref.StartVerse, err)
	}
	if affected(res) > 0 {
		return true, nil
	}
	if ref.IsPrimary {
		if _, err := x.Exec(
			`UPDATE scripture_index SET is_primary = TRUE
			 WHERE `+spanMatch+` AND NOT is_primary`,
			ref.SystematicID, ref.Book, ref.Chapter, ref.StartVerse, ref.EndVerse,
		); err != nil {
			return false, fmt.Errorf("promote scripture ref %s %d:%d: %w", ref.Book, ref.Chapter, ref.StartVerse, err)
		}
	}
	return false, nil
}

// spanMatch selects the index row of one span, matching idx_scripture_span.
const spanMatch = `systematic_id = ? AND book = ? AND chapter = ? AND start_verse = ?
	AND COALESCE(end_verse, 0) = COALESCE(?, 0)`

func scriptureRefExists(q querier, ref *ScriptureRef) (bool, error) {
	var one int
	err := q.QueryRow("SELECT 1 FROM scripture_index WHERE "+spanMatch+" LIMIT 1",
		ref.SystematicID, ref.Book, ref.Chapter, ref.StartVerse, ref.EndVerse).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("scripture ref exists: %w", err)
	}
	return true, nil
}

// InsertScriptureRef indexes a citation. Duplicate spans are ignored.
func (s *Store) InsertScriptureRef(ref *ScriptureRef) (bool, error) {
	return insertScriptureRef(s.db, ref, time.Now().UTC())
}

const scriptureColumns = `id, systematic_id, book, chapter, start_verse, end_verse, is_primary, context_snippet, created_at`

func scanScriptureRef(scanner interface{ Scan(...any) error }) (*ScriptureRef, error) {
	r := &ScriptureRef{}
	var snippet *string
	if err := scanner.Scan(&r.ID, &r.SystematicID, &r.Book, &r.Chapter, &r.StartVerse, &r.EndVerse,
		&r.IsPrimary, &snippet, &r.CreatedAt); err != nil {
		return nil, err
	}
	if snippet != nil {
		r.ContextSnippet = *snippet
	}
	return r, nil
}

// ScriptureRefsByEntry returns the index rows of one entry in insertion
// order, optionally only the primary ones.
func (s *Store) ScriptureRefsByEntry(entryID string, primaryOnly bool) ([]*ScriptureRef, error) {
	query := "SELECT " + scriptureColumns + " FROM scripture_index WHERE systematic_id = ?"
	if primaryOnly {
		query += " AND is_primary"
	}
	query += " ORDER BY id"
	rows, err := s.db.Query(query, entryID)
	if err != nil {
		return nil, fmt.Errorf("scripture refs by entry: %w", err)
	}
	defer rows.Close()
	var refs []*ScriptureRef
	for rows.Next() {
		r, err := scanScriptureRef(rows)
		if err != nil {
			return nil, fmt.Errorf("scan scripture ref: %w", err)
		}
		refs = append(refs, r)
	}
	return refs, rows.Err()
}

// EntriesForPassage returns the entries citing a passage that contains the
// given verse, primary citations first, then in document order.
func (s *Store) EntriesForPassage(book string, chapter, verse int) ([]PassageHit, error) {
	rows, err := s.db.Query(
		`SELECT `+prefixColumns("d", entryColumns)+`, `+prefixColumns("si", scriptureColumns)+`
		 FROM scripture_index si
		 JOIN doctrine_entries d ON d.id = si.systematic_id
		 WHERE si.book = ? AND si.chapter = ?
		   AND si.start_verse <= ? AND COALESCE(si.end_verse, si.start_verse) >= ?
		 ORDER BY si.is_primary DESC, d.sort_order, si.id`,
		book, chapter, verse, verse,
	)
	if err != nil {
		return nil, fmt.Errorf("entries for passage: %w", err)
	}
	defer rows.Close()

	var hits []PassageHit
	for rows.Next() {
		e := &Entry{}
		r := &ScriptureRef{}
		var snippet *string
		if err := rows.Scan(
			&e.ID, &e.EntryType, &e.PartNumber, &e.ChapterNumber, &e.SectionLetter, &e.SubsectionNumber,
			&e.Title, &e.Content, &e.Summary, &e.ParentID, &e.SortOrder, &e.WordCount, &e.CreatedAt, &e.UpdatedAt,
			&r.ID, &r.SystematicID, &r.Book, &r.Chapter, &r.StartVerse, &r.EndVerse, &r.IsPrimary, &snippet, &r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan passage hit: %w", err)
		}
		if snippet != nil {
			r.ContextSnippet = *snippet
		}
		hits = append(hits, PassageHit{Entry: e, Ref: r})
	}
	return hits, rows.Err()
}

// CountScriptureRefs returns the number of index rows.
func (s *Store) CountScriptureRefs() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM scripture_index").Scan(&n); err != nil {
		return 0, fmt.Errorf("count scripture refs: %w", err)
	}
	return n, nil
}
