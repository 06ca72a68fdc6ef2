package store

import (
	"database/sql"
	"fmt"
	"time"
)

// --- Doctrine entry operations ---

const entryColumns = `id, entry_type, part_number, chapter_number, section_letter, subsection_number,
	title, content, summary, parent_id, sort_order, word_count, created_at, updated_at`

func upsertEntry(x execer, e *Entry, now time.Time) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now
	_, err := x.Exec(
		`INSERT INTO doctrine_entries (`+entryColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			entry_type = excluded.entry_type,
			part_number = excluded.part_number,
			chapter_number = excluded.chapter_number,
			section_letter = excluded.section_letter,
			subsection_number = excluded.subsection_number,
			title = excluded.title,
			content = excluded.content,
			summary = COALESCE(excluded.summary, doctrine_entries.summary),
			parent_id = excluded.parent_id,
			sort_order = excluded.sort_order,
			word_count = excluded.word_count,
			updated_at = excluded.updated_at`,
		e.ID, e.EntryType, e.PartNumber, e.ChapterNumber, e.SectionLetter, e.SubsectionNumber,
		e.Title, e.Content, e.Summary, e.ParentID, e.SortOrder, e.WordCount, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert entry %s: %w", e.ID, err)
	}
	return nil
}

func updateContent(x execer, u ContentUpdate, now time.Time) (bool, error) {
	res, err := x.Exec(
		"UPDATE doctrine_entries SET content = ?, word_count = ?, updated_at = ? WHERE id = ?",
		u.Content, u.WordCount, now, u.EntryID,
	)
	if err != nil {
		return false, fmt.Errorf("update content %s: %w", u.EntryID, err)
	}
	return affected(res) > 0, nil
}

func updateSummary(x execer, u SummaryUpdate, now time.Time) (bool, error) {
	res, err := x.Exec(
		"UPDATE doctrine_entries SET summary = ?, updated_at = ? WHERE id = ?",
		u.Summary, now, u.EntryID,
	)
	if err != nil {
		return false, fmt.Errorf("update summary %s: %w", u.EntryID, err)
	}
	return affected(res) > 0, nil
}

// UpsertEntry inserts an entry or updates the existing row with the same ID.
// An existing summary is kept when e.Summary is nil.
func (s *Store) UpsertEntry(e *Entry) error {
	return upsertEntry(s.db, e, time.Now().UTC())
}

// UpdateEntryContent replaces an entry's content and word count.
func (s *Store) UpdateEntryContent(u ContentUpdate) error {
	_, err := updateContent(s.db, u, time.Now().UTC())
	return err
}

// UpdateEntrySummary sets an entry's summary.
func (s *Store) UpdateEntrySummary(u SummaryUpdate) error {
	_, err := updateSummary(s.db, u, time.Now().UTC())
	return err
}

func scanEntry(scanner interface{ Scan(...any) error }) (*Entry, error) {
	e := &Entry{}
	err := scanner.Scan(
		&e.ID, &e.EntryType, &e.PartNumber, &e.ChapterNumber, &e.SectionLetter, &e.SubsectionNumber,
		&e.Title, &e.Content, &e.Summary, &e.ParentID, &e.SortOrder, &e.WordCount, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func queryEntries(q querier, what, query string, args ...any) ([]*Entry, error) {
	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	defer rows.Close()
	var entries []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func queryEntry(q querier, what, query string, args ...any) (*Entry, error) {
	e, err := scanEntry(q.QueryRow(query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	return e, nil
}

func entryByID(q querier, id string) (*Entry, error) {
	return queryEntry(q, "entry by id",
		"SELECT "+entryColumns+" FROM doctrine_entries WHERE id = ?", id)
}

func partByNumber(q querier, number int) (*Entry, error) {
	return queryEntry(q, "part by number",
		"SELECT "+entryColumns+" FROM doctrine_entries WHERE entry_type = 'part' AND part_number = ?", number)
}

// EntryByID returns the entry with the given ID, or nil if none exists.
func (s *Store) EntryByID(id string) (*Entry, error) {
	return entryByID(s.db, id)
}

// PartByNumber looks a part up by its natural key (entry_type, part_number).
// Returns nil if no such part exists.
func (s *Store) PartByNumber(number int) (*Entry, error) {
	return partByNumber(s.db, number)
}

// EntryByLocation looks up a chapter, section or subsection by its natural
// key. section and subsection are nil to address a chapter or section.
func (s *Store) EntryByLocation(chapter int, section *string, subsection *int) (*Entry, error) {
	switch {
	case section == nil:
		return queryEntry(s.db, "entry by location",
			"SELECT "+entryColumns+" FROM doctrine_entries WHERE entry_type = 'chapter' AND chapter_number = ?",
			chapter)
	case subsection == nil:
		return queryEntry(s.db, "entry by location",
			"SELECT "+entryColumns+` FROM doctrine_entries
			 WHERE entry_type = 'section' AND chapter_number = ? AND section_letter = ?
			 ORDER BY sort_order LIMIT 1`,
			chapter, *section)
	default:
		return queryEntry(s.db, "entry by location",
			"SELECT "+entryColumns+` FROM doctrine_entries
			 WHERE entry_type = 'subsection' AND chapter_number = ? AND section_letter = ? AND subsection_number = ?
			 ORDER BY sort_order LIMIT 1`,
			chapter, *section, *subsection)
	}
}

// ChildEntries returns the children of parentID in sort order. An empty
// parentID selects the root entries.
func (s *Store) ChildEntries(parentID string) ([]*Entry, error) {
	if parentID == "" {
		return queryEntries(s.db, "root entries",
			"SELECT "+entryColumns+" FROM doctrine_entries WHERE parent_id IS NULL ORDER BY sort_order")
	}
	return queryEntries(s.db, "child entries",
		"SELECT "+entryColumns+" FROM doctrine_entries WHERE parent_id = ? ORDER BY sort_order", parentID)
}

// AllEntries returns every entry in document order.
func (s *Store) AllEntries() ([]*Entry, error) {
	return queryEntries(s.db, "all entries",
		"SELECT "+entryColumns+" FROM doctrine_entries ORDER BY sort_order")
}

// EntriesByIDs returns the entries with the given IDs in sort order.
func (s *Store) EntriesByIDs(ids []string) ([]*Entry, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return queryEntries(s.db, "entries by ids",
		"SELECT "+entryColumns+" FROM doctrine_entries WHERE id IN ("+placeholderList(len(ids))+") ORDER BY sort_order",
		stringsToArgs(ids)...)
}

// EntriesForRelink selects the entries a relink pass scans: all entries, or
// only those of one chapter, in sort order, optionally capped at limit rows.
func (s *Store) EntriesForRelink(chapter *int, limit int) ([]*Entry, error) {
	query := "SELECT " + entryColumns + " FROM doctrine_entries WHERE content != ''"
	var args []any
	if chapter != nil {
		query += " AND chapter_number = ?"
		args = append(args, *chapter)
	}
	query += " ORDER BY sort_order"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return queryEntries(s.db, "entries for relink", query, args...)
}

// EntriesWithoutSummary returns entries whose summary is unset.
func (s *Store) EntriesWithoutSummary() ([]*Entry, error) {
	return queryEntries(s.db, "entries without summary",
		"SELECT "+entryColumns+" FROM doctrine_entries WHERE summary IS NULL OR summary = '' ORDER BY sort_order")
}

// MaxSortOrder returns the highest sort_order in use, or zero for an empty
// outline.
func (s *Store) MaxSortOrder() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COALESCE(MAX(sort_order), 0) FROM doctrine_entries").Scan(&n); err != nil {
		return 0, fmt.Errorf("max sort order: %w", err)
	}
	return n, nil
}

// CountEntries returns the number of entries of each type.
func (s *Store) CountEntries() (map[string]int, error) {
	rows, err := s.db.Query("SELECT entry_type, COUNT(*) FROM doctrine_entries GROUP BY entry_type")
	if err != nil {
		return nil, fmt.Errorf("count entries: %w", err)
	}
	defer rows.Close()
	counts := make(map[string]int)
	for rows.Next() {
		var typ string
		var n int
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[typ] = n
	}
	return counts, rows.Err()
}
