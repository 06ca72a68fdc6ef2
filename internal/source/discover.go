package source

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultInclude selects every supported export below a directory.
const DefaultInclude = "**/*.{htm,html,xhtml,xml,json,jsonl}"

// Discover expands an input path into the files to import. A file is
// returned as is; a directory is expanded with the include glob (relative
// to the directory) and sorted by path. Matches without a registered
// parser are dropped.
func (r *Registry) Discover(input, include string) ([]string, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("stat input: %w", err)
	}
	if !info.IsDir() {
		return []string{input}, nil
	}

	if include == "" {
		include = DefaultInclude
	}
	if !doublestar.ValidatePattern(include) {
		return nil, fmt.Errorf("invalid include pattern %q", include)
	}
	matches, err := doublestar.Glob(os.DirFS(input), include, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("glob error: %w", err)
	}

	files := make([]string, 0, len(matches))
	for _, m := range matches {
		if !r.Supports(m) {
			continue
		}
		files = append(files, filepath.Join(input, filepath.FromSlash(m)))
	}
	sort.Strings(files)
	return files, nil
}
