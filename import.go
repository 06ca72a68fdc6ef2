package stindex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jward/stindex/internal/outline"
	"github.com/jward/stindex/internal/runtime"
	"github.com/jward/stindex/internal/scripture"
	"github.com/jward/stindex/internal/source"
	"github.com/jward/stindex/internal/store"
)

var (
	// ErrNoEntries is returned when the parsed input yields no outline entries.
	ErrNoEntries = errors.New("input yielded no doctrine entries")

	// ErrResumeWithClear is returned when Resume and Clear are both set.
	ErrResumeWithClear = errors.New("resume cannot be combined with clear")
)

// Metadata keys written by an import.
const (
	MetaSummaryScriptHash = "summary_script_hash"
	MetaLastImportAt      = "last_import_at"
)

// ImportOptions controls one import run.
type ImportOptions struct {
	// Clear deletes the existing outline, index and graph before writing.
	Clear bool
	// Resume skips files whose content hash matches their last import.
	Resume bool
	// SkipSummary disables the summary script for this run.
	SkipSummary bool
	// DryRun parses and reports without committing.
	DryRun bool
	// Include is the doublestar pattern used to expand a directory input.
	Include string
}

// Import parses input (a file or a directory), builds the outline, links
// citations and cross-references, and commits everything in one transaction.
func (e *Engine) Import(ctx context.Context, input string, opts ImportOptions) (*RunSummary, error) {
	started := time.Now()
	sum, err := e.runImport(ctx, input, opts, started)
	e.metrics.ObserveRun("import", time.Since(started), err)
	if err != nil {
		return nil, err
	}
	e.metrics.AddFiles(sum.Files)
	e.metrics.AddEntries(sum.Entries)
	e.metrics.AddIndexed("import", sum.ScriptureRefs, sum.CrossRefs, 0)
	return sum, nil
}

func (e *Engine) runImport(ctx context.Context, input string, opts ImportOptions, started time.Time) (*RunSummary, error) {
	if opts.Clear && opts.Resume {
		return nil, ErrResumeWithClear
	}
	log := e.logger.With().Str("op", "import").Str("input", input).Logger()

	include := opts.Include
	if include == "" {
		include = source.DefaultInclude
	}
	paths, err := e.sources.Discover(input, include)
	if err != nil {
		return nil, fmt.Errorf("stindex: import: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("stindex: import: no source files under %s matching %q", input, include)
	}

	files, err := e.parseFiles(ctx, paths, opts.Resume)
	if err != nil {
		return nil, fmt.Errorf("stindex: import: %w", err)
	}

	// Fold every file into one outline so a chapter may span files. Unchanged
	// files are folded too so positions match a full run; only the entries
	// changed files touch are rewritten.
	o := outline.NewOutline()
	var state outline.State
	touched := make(map[string]bool)
	batch := store.NewBatch(e.store)
	batch.Clear = opts.Clear

	sum := &RunSummary{Kind: "import", DryRun: opts.DryRun, Entries: make(map[string]int)}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		before := len(o.Entries)
		o, state = e.builder.Continue(o, state, e.classifier.Tokens(f.paras))
		ids := o.TakeTouched()
		if f.skipped {
			sum.SkippedFiles++
			log.Debug().Str("file", f.path).Msg("unchanged, skipped")
			continue
		}
		for _, id := range ids {
			touched[id] = true
		}
		batch.AddSource(store.ImportSource{Path: f.path, Hash: f.hash, Entries: len(o.Entries) - before})
		sum.Files++
		log.Debug().Str("file", f.path).Int("paragraphs", len(f.paras)).Int("entries", len(o.Entries)-before).Msg("parsed")
	}

	if sum.Files == 0 {
		log.Info().Int("skipped", sum.SkippedFiles).Msg("nothing to import")
		sum.Duration = time.Since(started)
		return sum, nil
	}
	if len(o.Entries) == 0 {
		return nil, fmt.Errorf("stindex: import %s: %w", input, ErrNoEntries)
	}

	pos, err := e.newPositioner(opts.Clear, paths)
	if err != nil {
		return nil, fmt.Errorf("stindex: import: %w", err)
	}
	w := &entryWriter{
		e:         e,
		ds:        batch,
		cleared:   opts.Clear,
		summaries: !opts.SkipSummary && e.cfg.SummaryEnabled(),
		parents:   make(map[string]string),
	}
	for _, entry := range o.Entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var stored *store.Entry
		if !opts.Clear {
			if stored, err = e.store.EntryByID(entry.ID); err != nil {
				return nil, fmt.Errorf("stindex: import: %w", err)
			}
		}
		resolved, err := w.resolvePart(entry)
		if err != nil {
			return nil, fmt.Errorf("stindex: import: %w", err)
		}
		if resolved || !pos.place(entry, stored, touched[entry.ID]) {
			continue
		}
		if err := w.write(ctx, entry, stored); err != nil {
			return nil, fmt.Errorf("stindex: import: entry %q: %w", entry.Title, err)
		}
		sum.Entries[string(entry.Type)]++
	}

	if h := e.runtime.ScriptsHash(); h != "" {
		batch.SetMetadata(MetaSummaryScriptHash, h)
	}
	batch.SetMetadata(MetaLastImportAt, started.UTC().Format(time.RFC3339))

	if opts.DryRun {
		preview, err := e.store.PreviewBatch(batch)
		if err != nil {
			return nil, fmt.Errorf("stindex: import: %w", err)
		}
		sum.ScriptureRefs = preview.ScriptureRefs
		sum.CrossRefs = preview.RelatedChapters
		sum.Duration = time.Since(started)
		log.Info().Fields(sum.fields()).Msg("dry run, nothing committed")
		return sum, nil
	}

	batch.Run = sum.importRun(started)
	stats, err := e.store.CommitBatch(batch)
	if err != nil {
		return nil, fmt.Errorf("stindex: import: %w", err)
	}
	sum.ScriptureRefs = stats.ScriptureRefs
	sum.CrossRefs = stats.RelatedChapters
	sum.Duration = time.Since(started)
	log.Info().Fields(sum.fields()).Msg("import committed")
	return sum, nil
}

// entryWriter links and buffers the outline entries of one import.
type entryWriter struct {
	e         *Engine
	ds        store.DataStore
	cleared   bool
	summaries bool

	// parents maps an implicit part that resolved to a stored row onto that
	// row's ID.
	parents map[string]string
}

// resolvePart reports whether entry is an implicit part that already exists
// in storage. The stored row is kept and children are reparented onto it.
func (w *entryWriter) resolvePart(entry *outline.Entry) (bool, error) {
	if entry.Type != outline.TypePart || !entry.Implicit || entry.PartNumber == nil || w.cleared {
		return false, nil
	}
	existing, err := w.ds.PartByNumber(*entry.PartNumber)
	if err != nil || existing == nil {
		return false, err
	}
	w.parents[entry.ID] = existing.ID
	return true, nil
}

// write buffers entry with its index rows, chapter edges, tags and summary.
func (w *entryWriter) write(ctx context.Context, entry *outline.Entry, stored *store.Entry) error {
	e := w.e
	content, _, err := scripture.NormalizeAnchors(entry.Content, e.resolver)
	if err != nil {
		return fmt.Errorf("normalize anchors: %w", err)
	}
	content, _ = e.scanner.Link(content)

	row := toStoreEntry(entry)
	row.Content = content
	row.WordCount = outline.CountWords(content)
	if row.ParentID != nil {
		if id, ok := w.parents[*row.ParentID]; ok {
			row.ParentID = &id
		}
	}

	if row.Summary == nil && w.summaries && !hasSummary(stored, w.cleared) {
		summary, err := e.summarize(ctx, row)
		if err != nil {
			return err
		}
		if summary != "" {
			row.Summary = &summary
		}
	}
	if err := w.ds.UpsertEntry(row); err != nil {
		return err
	}

	for _, ref := range e.primaryRefs(row.ID, content) {
		if _, err := w.ds.InsertScriptureRef(&ref); err != nil {
			return err
		}
	}

	if entry.Type != outline.TypeChapter || entry.ChapterNumber == nil {
		return nil
	}
	chapter := *entry.ChapterNumber
	for _, edge := range e.xref.Edges(chapter, content) {
		note := edge.Note
		if _, err := w.ds.InsertRelatedChapter(&store.RelatedChapter{
			SourceChapter:    edge.Source,
			TargetChapter:    edge.Target,
			RelationshipType: "see_also",
			Note:             &note,
		}); err != nil {
			return err
		}
	}
	for _, tag := range e.cfg.TagsForChapter(chapter) {
		if err := w.ds.LinkChapterTag(store.ChapterTag{ChapterNumber: chapter, Tag: tag}); err != nil {
			return err
		}
	}
	return nil
}

// hasSummary reports whether an earlier import already stored a summary
// that this run keeps.
func hasSummary(stored *store.Entry, cleared bool) bool {
	return !cleared && stored != nil && stored.Summary != nil && *stored.Summary != ""
}

// positioner decides which folded entries an import writes and with which
// sort_order.
type positioner struct {
	// full is set when the run folds every source the store has recorded, so
	// the folded positions describe the whole document.
	full bool
	// offset is the highest stored sort_order. A partial merge places new
	// entries after it.
	offset int
}

func (e *Engine) newPositioner(cleared bool, paths []string) (*positioner, error) {
	if cleared {
		return &positioner{full: true}, nil
	}
	known, err := e.store.ImportSourcePaths()
	if err != nil {
		return nil, err
	}
	folded := make(map[string]bool, len(paths))
	for _, p := range paths {
		folded[p] = true
	}
	for _, p := range known {
		if !folded[p] {
			offset, err := e.store.MaxSortOrder()
			if err != nil {
				return nil, err
			}
			return &positioner{offset: offset}, nil
		}
	}
	return &positioner{full: true}, nil
}

// place sets entry.SortOrder and reports whether the entry is written.
//
// On a full fold the folded positions are kept. Entries only unchanged files
// produced are written again when their stored position moved. On a partial
// merge stored entries keep their position and new ones follow every stored
// entry.
func (p *positioner) place(entry *outline.Entry, stored *store.Entry, touched bool) bool {
	if p.full {
		return touched || stored == nil || stored.SortOrder != entry.SortOrder
	}
	if !touched {
		return false
	}
	if stored != nil {
		entry.SortOrder = stored.SortOrder
	} else {
		entry.SortOrder += p.offset
	}
	return true
}

// primaryRefs returns the index rows for every canonical citation in
// content, in document order, one per distinct passage. The first
// PrimaryCutoff passages are primary.
func (e *Engine) primaryRefs(entryID, content string) []store.ScriptureRef {
	seen := make(map[scripture.Key]bool)
	var rows []store.ScriptureRef
	for _, ref := range scripture.Linked(content, e.cfg.Scripture.SnippetRadius) {
		if seen[ref.Key()] {
			continue
		}
		seen[ref.Key()] = true
		row := indexRow(entryID, ref)
		row.IsPrimary = len(rows) < e.cfg.Scripture.PrimaryCutoff
		rows = append(rows, row)
	}
	return rows
}

// summarize runs the summary script over one entry.
func (e *Engine) summarize(ctx context.Context, row *store.Entry) (string, error) {
	summary, err := e.summarizer.Summarize(ctx, runtime.SummaryInput{
		Title:     row.Title,
		EntryType: row.EntryType,
		HTML:      row.Content,
		WordCount: row.WordCount,
	})
	if err != nil {
		return "", fmt.Errorf("summary: %w", err)
	}
	return summary, nil
}

func indexRow(entryID string, ref scripture.Reference) store.ScriptureRef {
	return store.ScriptureRef{
		SystematicID:   entryID,
		Book:           ref.Book,
		Chapter:        ref.Chapter,
		StartVerse:     ref.StartVerse,
		EndVerse:       ref.EndVerse,
		ContextSnippet: ref.Snippet,
	}
}

func toStoreEntry(e *outline.Entry) *store.Entry {
	return &store.Entry{
		ID:               e.ID,
		EntryType:        string(e.Type),
		PartNumber:       e.PartNumber,
		ChapterNumber:    e.ChapterNumber,
		SectionLetter:    e.SectionLetter,
		SubsectionNumber: e.SubsectionNumber,
		Title:            e.Title,
		Content:          e.Content,
		Summary:          e.Summary,
		ParentID:         e.ParentID,
		SortOrder:        e.SortOrder,
		WordCount:        e.WordCount,
	}
}
