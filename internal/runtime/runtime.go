package runtime

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/risor-io/risor"
	"github.com/risor-io/risor/importer"
	"github.com/risor-io/risor/object"
	"github.com/rs/zerolog"
	"github.com/zeebo/blake3"
)

// Runtime embeds a Risor VM and provides text host functions to the
// summary scripts.
type Runtime struct {
	scriptsDir string
	fsys       fs.FS
	logger     zerolog.Logger
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithRuntimeFS loads scripts and resolves their imports from fsys. It
// takes precedence over the scripts directory.
func WithRuntimeFS(fsys fs.FS) RuntimeOption {
	return func(r *Runtime) {
		r.fsys = fsys
	}
}

// WithRuntimeLogger sets the logger behind the scripts' log object.
func WithRuntimeLogger(l zerolog.Logger) RuntimeOption {
	return func(r *Runtime) {
		r.logger = l
	}
}

// NewRuntime returns a Runtime reading scripts from scriptsDir unless an
// fs.FS option overrides it. Both may be empty for inline sources.
func NewRuntime(scriptsDir string, opts ...RuntimeOption) *Runtime {
	r := &Runtime{
		scriptsDir: scriptsDir,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunSource evaluates src with the host globals and extras layered on top.
func (r *Runtime) RunSource(ctx context.Context, src string, extraGlobals map[string]any) error {
	return r.eval(ctx, src, "<inline>", extraGlobals)
}

func (r *Runtime) eval(ctx context.Context, src, label string, extraGlobals map[string]any) error {
	globals := r.buildGlobals(extraGlobals)

	opts := make([]risor.Option, 0, len(globals)+1)
	names := make([]string, 0, len(globals))
	for name, val := range globals {
		opts = append(opts, risor.WithGlobal(name, val))
		names = append(names, name)
	}
	if fsys := r.source(); fsys != nil {
		opts = append(opts, risor.WithImporter(importer.NewFSImporter(importer.FSImporterOptions{
			GlobalNames: names,
			SourceFS:    fsys,
			Extensions:  []string{".risor"},
		})))
	}

	if _, err := risor.Eval(ctx, src, opts...); err != nil {
		return fmt.Errorf("runtime: script %s: %w", label, err)
	}
	return nil
}

// source is the filesystem scripts come from, or nil when none is set.
func (r *Runtime) source() fs.FS {
	switch {
	case r.fsys != nil:
		return r.fsys
	case r.scriptsDir != "":
		return os.DirFS(r.scriptsDir)
	default:
		return nil
	}
}

// LoadScript returns the text of the script at a slash-separated path
// relative to the script source.
func (r *Runtime) LoadScript(name string) (string, error) {
	fsys := r.source()
	if fsys == nil {
		return "", fmt.Errorf("runtime: no script source for %s", name)
	}
	name = strings.TrimPrefix(filepath.ToSlash(name), "/")
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return "", fmt.Errorf("runtime: loading script: %w", err)
	}
	return string(data), nil
}

// ScriptsHash returns the hex BLAKE3 digest of every .risor file the
// Runtime can load, walked in path order. Recorded with each import so a
// changed script is visible in the metadata.
func (r *Runtime) ScriptsHash() string {
	fsys := r.source()
	if fsys == nil {
		return ""
	}

	var paths []string
	fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && strings.HasSuffix(path, ".risor") {
			paths = append(paths, path)
		}
		return nil
	})
	sort.Strings(paths)

	h := blake3.New()
	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			continue
		}
		h.Write([]byte(p))
		h.Write([]byte{0})
		h.Write(data)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

func (r *Runtime) buildGlobals(extra map[string]any) map[string]any {
	globals := map[string]any{
		"first_sentences": makeFirstSentencesFn(),
		"truncate":        makeTruncateFn(),
		"strip_markdown":  makeStripMarkdownFn(),
		"log":             mustProxy(&logObject{logger: r.logger}),
	}
	for k, v := range extra {
		globals[k] = v
	}
	return globals
}

func mustProxy(v any) object.Object {
	p, err := object.NewProxy(v)
	if err != nil {
		panic(fmt.Sprintf("runtime: proxy %T: %v", v, err))
	}
	return p
}
