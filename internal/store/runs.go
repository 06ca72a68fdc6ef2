package store

import (
	"database/sql"
	"fmt"
	"time"
)

// --- Import source operations ---

func upsertImportSource(x execer, src *ImportSource, now time.Time) error {
	if src.ImportedAt.IsZero() {
		src.ImportedAt = now
	}
	_, err := x.Exec(
		`INSERT INTO import_sources (path, hash, entries, imported_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET hash = excluded.hash, entries = excluded.entries, imported_at = excluded.imported_at`,
		src.Path, src.Hash, src.Entries, src.ImportedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert import source %s: %w", src.Path, err)
	}
	return nil
}

// ImportSourceByPath returns the recorded import of a source file, or nil.
func (s *Store) ImportSourceByPath(path string) (*ImportSource, error) {
	src := &ImportSource{}
	err := s.db.QueryRow(
		"SELECT path, hash, entries, imported_at FROM import_sources WHERE path = ?", path,
	).Scan(&src.Path, &src.Hash, &src.Entries, &src.ImportedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("import source by path: %w", err)
	}
	return src, nil
}

// ImportSourcePaths returns the path of every recorded source file, sorted.
func (s *Store) ImportSourcePaths() ([]string, error) {
	rows, err := s.db.Query("SELECT path FROM import_sources ORDER BY path")
	if err != nil {
		return nil, fmt.Errorf("import source paths: %w", err)
	}
	defer rows.Close()
	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan import source: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// --- Run summary operations ---

const runColumns = `id, kind, started_at, finished_at, dry_run, files, parts, chapters, sections,
	subsections, scripture_refs, cross_refs, relinked_entries`

func insertImportRun(x execer, r *ImportRun) error {
	res, err := x.Exec(
		`INSERT INTO import_runs (kind, started_at, finished_at, dry_run, files, parts, chapters, sections,
			subsections, scripture_refs, cross_refs, relinked_entries)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Kind, r.StartedAt, r.FinishedAt, r.DryRun, r.Files, r.Parts, r.Chapters, r.Sections,
		r.Subsections, r.ScriptureRefs, r.CrossRefs, r.RelinkedEntries,
	)
	if err != nil {
		return fmt.Errorf("insert import run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	r.ID = id
	return nil
}

// InsertImportRun persists a run summary.
func (s *Store) InsertImportRun(r *ImportRun) error {
	return insertImportRun(s.db, r)
}

// ImportRuns returns the most recent run summaries, newest first.
func (s *Store) ImportRuns(limit int) ([]*ImportRun, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query("SELECT "+runColumns+" FROM import_runs ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("import runs: %w", err)
	}
	defer rows.Close()
	var runs []*ImportRun
	for rows.Next() {
		r := &ImportRun{}
		if err := rows.Scan(&r.ID, &r.Kind, &r.StartedAt, &r.FinishedAt, &r.DryRun, &r.Files, &r.Parts,
			&r.Chapters, &r.Sections, &r.Subsections, &r.ScriptureRefs, &r.CrossRefs, &r.RelinkedEntries); err != nil {
			return nil, fmt.Errorf("scan import run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// --- Metadata ---

func setMetadata(x execer, key, value string) error {
	_, err := x.Exec(
		"INSERT INTO metadata (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set metadata %s: %w", key, err)
	}
	return nil
}

// SetMetadata stores a metadata value.
func (s *Store) SetMetadata(key, value string) error {
	return setMetadata(s.db, key, value)
}

// Metadata returns a metadata value and whether it was set.
func (s *Store) Metadata(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("metadata %s: %w", key, err)
	}
	return value, true, nil
}

// Counts summarizes the persisted index.
func (s *Store) Counts() (*Counts, error) {
	entries, err := s.CountEntries()
	if err != nil {
		return nil, err
	}
	refs, err := s.CountScriptureRefs()
	if err != nil {
		return nil, err
	}
	edges, err := s.CountRelatedChapters()
	if err != nil {
		return nil, err
	}
	tags, err := s.CountChapterTags()
	if err != nil {
		return nil, err
	}
	return &Counts{Entries: entries, ScriptureRefs: refs, CrossRefs: edges, ChapterTags: tags}, nil
}
