package store

import (
	"database/sql"
	"fmt"
)

// Store is the SQLite data access layer for the doctrine index.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens a SQLite database at dbPath with WAL mode and foreign keys
// enabled. The driver is chosen at build time (see driver_cgo.go and
// driver_purego.go).
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open(driverName, dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db, path: dbPath}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in transactions.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database file path the store was opened with.
func (s *Store) Path() string {
	return s.path
}

// Driver returns the name of the compiled-in SQLite driver ("cgo" or "purego").
func Driver() string {
	return driverType
}

// SchemaVersion is recorded in the metadata table by Migrate.
const SchemaVersion = "1"

// Migrate creates all tables and indexes. Idempotent.
func (s *Store) Migrate() error {
	if _, err := s.db.Exec(schemaDDL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := setMetadata(s.db, "schema_version", SchemaVersion); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
-- Outline

CREATE TABLE IF NOT EXISTS doctrine_entries (
  id                TEXT PRIMARY KEY,
  entry_type        TEXT NOT NULL CHECK (entry_type IN ('part', 'chapter', 'section', 'subsection')),
  part_number       INTEGER,
  chapter_number    INTEGER,
  section_letter    TEXT,
  subsection_number INTEGER,
  title             TEXT NOT NULL,
  content           TEXT NOT NULL DEFAULT '',
  summary           TEXT,
  parent_id         TEXT REFERENCES doctrine_entries(id) ON DELETE CASCADE,
  sort_order        INTEGER NOT NULL,
  word_count        INTEGER NOT NULL DEFAULT 0,
  created_at        TIMESTAMP NOT NULL,
  updated_at        TIMESTAMP NOT NULL,
  CHECK (entry_type != 'subsection' OR
         (chapter_number IS NOT NULL AND section_letter IS NOT NULL AND subsection_number IS NOT NULL))
);

-- Scripture reverse lookup

CREATE TABLE IF NOT EXISTS scripture_index (
  id              INTEGER PRIMARY KEY,
  systematic_id   TEXT NOT NULL REFERENCES doctrine_entries(id) ON DELETE CASCADE,
  book            TEXT NOT NULL,
  chapter         INTEGER NOT NULL,
  start_verse     INTEGER NOT NULL,
  end_verse       INTEGER,
  is_primary      BOOLEAN NOT NULL DEFAULT FALSE,
  context_snippet TEXT,
  created_at      TIMESTAMP NOT NULL
);

-- Chapter graph

CREATE TABLE IF NOT EXISTS related_chapters (
  id                INTEGER PRIMARY KEY,
  source_chapter    INTEGER NOT NULL,
  target_chapter    INTEGER NOT NULL,
  relationship_type TEXT NOT NULL DEFAULT 'see_also',
  note              TEXT,
  created_at        TIMESTAMP NOT NULL,
  UNIQUE (source_chapter, target_chapter)
);

CREATE TABLE IF NOT EXISTS tags (
  id   INTEGER PRIMARY KEY,
  name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS chapter_tags (
  chapter_number INTEGER NOT NULL,
  tag_id         INTEGER NOT NULL REFERENCES tags(id),
  PRIMARY KEY (chapter_number, tag_id)
);

-- Bookkeeping

CREATE TABLE IF NOT EXISTS import_sources (
  path        TEXT PRIMARY KEY,
  hash        TEXT NOT NULL,
  entries     INTEGER NOT NULL DEFAULT 0,
  imported_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS import_runs (
  id               INTEGER PRIMARY KEY,
  kind             TEXT NOT NULL,
  started_at       TIMESTAMP NOT NULL,
  finished_at      TIMESTAMP NOT NULL,
  dry_run          BOOLEAN NOT NULL DEFAULT FALSE,
  files            INTEGER NOT NULL DEFAULT 0,
  parts            INTEGER NOT NULL DEFAULT 0,
  chapters         INTEGER NOT NULL DEFAULT 0,
  sections         INTEGER NOT NULL DEFAULT 0,
  subsections      INTEGER NOT NULL DEFAULT 0,
  scripture_refs   INTEGER NOT NULL DEFAULT 0,
  cross_refs       INTEGER NOT NULL DEFAULT 0,
  relinked_entries INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS metadata (
  key   TEXT PRIMARY KEY,
  value TEXT NOT NULL
);

-- Indexes

CREATE UNIQUE INDEX IF NOT EXISTS idx_entries_part_number ON doctrine_entries(part_number) WHERE entry_type = 'part';
CREATE INDEX IF NOT EXISTS idx_entries_parent ON doctrine_entries(parent_id, sort_order);
CREATE INDEX IF NOT EXISTS idx_entries_chapter ON doctrine_entries(chapter_number);
CREATE INDEX IF NOT EXISTS idx_entries_sort ON doctrine_entries(sort_order);
CREATE UNIQUE INDEX IF NOT EXISTS idx_scripture_span ON scripture_index(systematic_id, book, chapter, start_verse, COALESCE(end_verse, 0));
CREATE INDEX IF NOT EXISTS idx_scripture_passage ON scripture_index(book, chapter, start_verse);
CREATE INDEX IF NOT EXISTS idx_related_target ON related_chapters(target_chapter);
`
