// Package source turns document exports into the styled paragraph stream
// consumed by the outline builder.
package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jward/stindex/internal/outline"
)

// ErrUnsupportedSource is returned for files no registered parser handles.
var ErrUnsupportedSource = errors.New("unsupported source format")

// DefaultLargeFontPt is the font size, in points, at or above which a
// paragraph counts as large.
const DefaultLargeFontPt = 14.0

// Options tune style detection.
type Options struct {
	LargeFontPt float64
}

func (o Options) largeFontPt() float64 {
	if o.LargeFontPt <= 0 {
		return DefaultLargeFontPt
	}
	return o.LargeFontPt
}

// Parser extracts paragraphs from one document format.
type Parser interface {
	Parse(ctx context.Context, content []byte, opts Options) ([]outline.Paragraph, error)
	// Extensions lists the lower-case file extensions handled, with the dot.
	Extensions() []string
}

// Registry maps file extensions to parsers.
type Registry struct {
	parsers map[string]Parser
}

// NewRegistry returns a registry holding the HTML, XHTML and JSON parsers.
func NewRegistry() *Registry {
	r := &Registry{parsers: make(map[string]Parser)}
	r.Register(NewHTMLParser())
	r.Register(NewXHTMLParser())
	r.Register(NewJSONParser())
	return r
}

// Register adds p for each of its extensions, replacing earlier parsers.
func (r *Registry) Register(p Parser) {
	for _, ext := range p.Extensions() {
		r.parsers[ext] = p
	}
}

// ForFile returns the parser for path's extension, or nil.
func (r *Registry) ForFile(path string) Parser {
	return r.parsers[strings.ToLower(filepath.Ext(path))]
}

// Supports reports whether path has a registered extension.
func (r *Registry) Supports(path string) bool {
	return r.ForFile(path) != nil
}

// Parse dispatches content to the parser registered for path.
func (r *Registry) Parse(ctx context.Context, path string, content []byte, opts Options) ([]outline.Paragraph, error) {
	p := r.ForFile(path)
	if p == nil {
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedSource)
	}
	paras, err := p.Parse(ctx, content, opts)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return paras, nil
}

// ReadFile reads and parses one file, returning its paragraphs and the raw
// bytes for hashing.
func (r *Registry) ReadFile(ctx context.Context, path string, opts Options) ([]outline.Paragraph, []byte, error) {
	if !r.Supports(path) {
		return nil, nil, fmt.Errorf("%s: %w", path, ErrUnsupportedSource)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	paras, err := r.Parse(ctx, path, content, opts)
	if err != nil {
		return nil, nil, err
	}
	return paras, content, nil
}
