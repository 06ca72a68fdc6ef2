package stindex

import (
	"fmt"
	"io/fs"

	"github.com/rs/zerolog"

	"github.com/jward/stindex/internal/config"
	"github.com/jward/stindex/internal/crossref"
	"github.com/jward/stindex/internal/metrics"
	"github.com/jward/stindex/internal/outline"
	"github.com/jward/stindex/internal/runtime"
	"github.com/jward/stindex/internal/scripture"
	"github.com/jward/stindex/internal/source"
	"github.com/jward/stindex/internal/store"
	"github.com/jward/stindex/scripts"
)

// Engine orchestrates the stindex pipeline: source discovery, paragraph
// classification, outline building, citation linking, cross-reference
// extraction, summary scripts, and query access.
type Engine struct {
	store   *store.Store
	cfg     *config.Config
	logger  zerolog.Logger
	metrics *metrics.Metrics

	sources    *source.Registry
	resolver   *scripture.Resolver
	scanner    *scripture.Scanner
	classifier *outline.Classifier
	builder    *outline.Builder
	xref       *crossref.Extractor

	scriptsDir string
	scriptsFS  fs.FS
	runtime    *runtime.Runtime
	summarizer *runtime.Summarizer

	// parallel is the number of parse workers. Values below 2 parse serially.
	parallel int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger. Defaults to zerolog.Nop().
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithConfig sets the configuration. Defaults to config.Default().
func WithConfig(cfg *config.Config) Option {
	return func(e *Engine) { e.cfg = cfg }
}

// WithMetrics records run metrics into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithScriptsDir loads summary scripts from dir on disk instead of the
// embedded defaults.
func WithScriptsDir(dir string) Option {
	return func(e *Engine) {
		e.scriptsDir = dir
		e.scriptsFS = nil
	}
}

// WithScriptsFS loads summary scripts from fsys. The embedded scripts.FS is
// used when neither this nor WithScriptsDir is given.
func WithScriptsFS(fsys fs.FS) Option {
	return func(e *Engine) {
		e.scriptsFS = fsys
		e.scriptsDir = ""
	}
}

// WithParallel parses source files with n workers. Outline building and the
// commit stay sequential, so results do not depend on n.
func WithParallel(n int) Option {
	return func(e *Engine) { e.parallel = n }
}

// New creates an Engine backed by a SQLite database at dbPath.
func New(dbPath string, opts ...Option) (*Engine, error) {
	e := &Engine{
		logger:    zerolog.Nop(),
		scriptsFS: scripts.FS,
		sources:   source.NewRegistry(),
		resolver:  scripture.DefaultResolver(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.cfg == nil {
		e.cfg = config.Default()
	}
	if e.cfg.Summary.ScriptsDir != "" && e.scriptsDir == "" && e.scriptsFS == nil {
		e.scriptsDir = e.cfg.Summary.ScriptsDir
	}
	if err := e.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("stindex: config: %w", err)
	}

	classifier, err := outline.NewClassifier(e.cfg.Structure.PageMarker)
	if err != nil {
		return nil, fmt.Errorf("stindex: page marker: %w", err)
	}
	e.classifier = classifier
	e.builder = outline.NewBuilder(e.cfg.OutlineParts(),
		outline.WithMinBodyChars(e.cfg.Structure.MinBodyChars),
		outline.WithBuilderLogger(e.logger.With().Str("component", "outline").Logger()),
	)
	e.scanner = scripture.NewScanner(
		scripture.WithResolver(e.resolver),
		scripture.WithSnippetRadius(e.cfg.Scripture.SnippetRadius),
		scripture.WithScanLogger(e.logger.With().Str("component", "scanner").Logger()),
	)
	e.xref = crossref.New(e.cfg.CrossRef.MaxRange)

	var rtOpts []runtime.RuntimeOption
	if e.scriptsFS != nil {
		rtOpts = append(rtOpts, runtime.WithRuntimeFS(e.scriptsFS))
	}
	rtOpts = append(rtOpts, runtime.WithRuntimeLogger(e.logger.With().Str("component", "script").Logger()))
	e.runtime = runtime.NewRuntime(e.scriptsDir, rtOpts...)
	e.summarizer = runtime.NewSummarizer(e.runtime, e.cfg.Summary.Sentences, e.cfg.Summary.MaxChars)

	s, err := store.NewStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("stindex: create store: %w", err)
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, fmt.Errorf("stindex: migrate: %w", err)
	}
	e.store = s
	return e, nil
}

// Close releases the Engine's database resources.
func (e *Engine) Close() error {
	return e.store.Close()
}

// Store returns the underlying Store for direct access.
func (e *Engine) Store() *Store {
	return e.store
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() *config.Config {
	return e.cfg
}

// Query returns a QueryBuilder over the engine's store.
func (e *Engine) Query() *QueryBuilder {
	return &QueryBuilder{store: e.store, resolver: e.resolver}
}

// ScriptsHash returns the BLAKE3 digest of the summary scripts in use.
func (e *Engine) ScriptsHash() string {
	return e.runtime.ScriptsHash()
}
