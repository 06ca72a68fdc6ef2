package store

import (
	"database/sql"
	"fmt"
	"time"
)

// --- Chapter graph operations ---

func insertRelatedChapter(x execer, rc *RelatedChapter, now time.Time) (bool, error) {
	if rc.CreatedAt.IsZero() {
		rc.CreatedAt = now
	}
	if rc.RelationshipType == "" {
		rc.RelationshipType = "see_also"
	}
	res, err := x.Exec(
		`INSERT OR IGNORE INTO related_chapters (source_chapter, target_chapter, relationship_type, note, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		rc.SourceChapter, rc.TargetChapter, rc.RelationshipType, rc.Note, rc.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert related chapter %d->%d: %w", rc.SourceChapter, rc.TargetChapter, err)
	}
	return affected(res) > 0, nil
}

func relatedChapterExists(q querier, source, target int) (bool, error) {
	var one int
	err := q.QueryRow("SELECT 1 FROM related_chapters WHERE source_chapter = ? AND target_chapter = ?",
		source, target).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("related chapter exists: %w", err)
	}
	return true, nil
}

// InsertRelatedChapter records a directed chapter edge. An edge that already
// exists for the (source, target) pair is ignored.
func (s *Store) InsertRelatedChapter(rc *RelatedChapter) (bool, error) {
	return insertRelatedChapter(s.db, rc, time.Now().UTC())
}

// RelatedChapters returns the edges touching chapter: outgoing edges first,
// then incoming, each ordered by the other chapter's number.
func (s *Store) RelatedChapters(chapter int) (outgoing, incoming []*RelatedChapter, err error) {
	outgoing, err = s.queryRelated(
		"SELECT id, source_chapter, target_chapter, relationship_type, note, created_at FROM related_chapters WHERE source_chapter = ? ORDER BY target_chapter",
		chapter)
	if err != nil {
		return nil, nil, err
	}
	incoming, err = s.queryRelated(
		"SELECT id, source_chapter, target_chapter, relationship_type, note, created_at FROM related_chapters WHERE target_chapter = ? ORDER BY source_chapter",
		chapter)
	if err != nil {
		return nil, nil, err
	}
	return outgoing, incoming, nil
}

func (s *Store) queryRelated(query string, args ...any) ([]*RelatedChapter, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("related chapters: %w", err)
	}
	defer rows.Close()
	var out []*RelatedChapter
	for rows.Next() {
		rc := &RelatedChapter{}
		if err := rows.Scan(&rc.ID, &rc.SourceChapter, &rc.TargetChapter, &rc.RelationshipType, &rc.Note, &rc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan related chapter: %w", err)
		}
		out = append(out, rc)
	}
	return out, rows.Err()
}

// CountRelatedChapters returns the number of chapter edges.
func (s *Store) CountRelatedChapters() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM related_chapters").Scan(&n); err != nil {
		return 0, fmt.Errorf("count related chapters: %w", err)
	}
	return n, nil
}

// --- Chapter tag operations ---

func linkChapterTag(x execer, ct ChapterTag) error {
	if _, err := x.Exec("INSERT OR IGNORE INTO tags (name) VALUES (?)", ct.Tag); err != nil {
		return fmt.Errorf("insert tag %q: %w", ct.Tag, err)
	}
	_, err := x.Exec(
		`INSERT OR IGNORE INTO chapter_tags (chapter_number, tag_id)
		 SELECT ?, id FROM tags WHERE name = ?`,
		ct.ChapterNumber, ct.Tag,
	)
	if err != nil {
		return fmt.Errorf("link chapter %d to tag %q: %w", ct.ChapterNumber, ct.Tag, err)
	}
	return nil
}

// LinkChapterTag links a chapter to a tag, creating the tag by name if needed.
func (s *Store) LinkChapterTag(ct ChapterTag) error {
	return linkChapterTag(s.db, ct)
}

// ChapterTags returns the tag names linked to a chapter, sorted.
func (s *Store) ChapterTags(chapter int) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT t.name FROM chapter_tags ct JOIN tags t ON t.id = ct.tag_id
		 WHERE ct.chapter_number = ? ORDER BY t.name`, chapter)
	if err != nil {
		return nil, fmt.Errorf("chapter tags: %w", err)
	}
	defer rows.Close()
	var tags []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, name)
	}
	return tags, rows.Err()
}

// CountChapterTags returns the number of chapter-tag links.
func (s *Store) CountChapterTags() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM chapter_tags").Scan(&n); err != nil {
		return 0, fmt.Errorf("count chapter tags: %w", err)
	}
	return n, nil
}
