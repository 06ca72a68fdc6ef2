package stindex

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/jward/stindex/internal/outline"
	"github.com/jward/stindex/internal/source"
	"github.com/jward/stindex/internal/store"
)

// parsedFile is one source file after change detection and parsing.
type parsedFile struct {
	path    string
	hash    string
	skipped bool // unchanged since the last committed import (resume)
	paras   []outline.Paragraph
}

// parseFiles reads, hashes and parses paths. Results are returned in input
// order whatever the worker count. When resume is set, files whose hash
// matches their import_sources row are marked skipped. Skipped files are
// still parsed so the outline fold keeps every entry at its full-run position.
//
// Per-file errors are collected; the first one is wrapped into the returned
// error together with the error count.
func (e *Engine) parseFiles(ctx context.Context, paths []string, resume bool) ([]parsedFile, error) {
	results := make([]parsedFile, len(paths))
	errs := make([]error, len(paths))

	workers := min(e.parallel, len(paths))
	if workers < 2 {
		for i, path := range paths {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			results[i], errs[i] = e.parseFile(ctx, path, resume)
		}
		return results, joinParseErrors(errs)
	}

	workCh := make(chan int, len(paths))
	for i := range paths {
		workCh <- i
	}
	close(workCh)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range workCh {
				if err := ctx.Err(); err != nil {
					errs[i] = err
					continue
				}
				results[i], errs[i] = e.parseFile(ctx, paths[i], resume)
			}
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, joinParseErrors(errs)
}

func (e *Engine) parseFile(ctx context.Context, path string, resume bool) (parsedFile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return parsedFile{}, fmt.Errorf("read %s: %w", path, err)
	}
	pf := parsedFile{path: path, hash: store.HashBytes(content)}

	if resume {
		existing, err := e.store.ImportSourceByPath(path)
		if err != nil {
			return parsedFile{}, fmt.Errorf("lookup source %s: %w", path, err)
		}
		pf.skipped = existing != nil && existing.Hash == pf.hash
	}

	pf.paras, err = e.sources.Parse(ctx, path, content, source.Options{LargeFontPt: e.cfg.Structure.LargeFontPt})
	if err != nil {
		return parsedFile{}, err
	}
	return pf, nil
}

func joinParseErrors(errs []error) error {
	var failed []error
	for _, err := range errs {
		if err != nil {
			failed = append(failed, err)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("parse had %d error(s): %w", len(failed), failed[0])
	}
	return nil
}
