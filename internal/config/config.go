// Package config provides configuration loading and management for stindex.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/jward/stindex/internal/outline"
)

//go:embed default.yaml
var defaultYAML []byte

// Config represents the complete stindex configuration
type Config struct {
	Parts     []PartConfig    `yaml:"parts"`
	Structure StructureConfig `yaml:"structure"`
	Scripture ScriptureConfig `yaml:"scripture"`
	CrossRef  CrossRefConfig  `yaml:"crossref"`
	Summary   SummaryConfig   `yaml:"summary"`
	Store     StoreConfig     `yaml:"store"`
}

// PartConfig describes one part of the work: its title, the chapters it
// spans and the tags linked to those chapters.
type PartConfig struct {
	Number   int          `yaml:"number"`
	Title    string       `yaml:"title"`
	Chapters ChapterRange `yaml:"chapters"`
	Tags     []string     `yaml:"tags"`
}

// ChapterRange is an inclusive chapter range.
type ChapterRange struct {
	First int `yaml:"first"`
	Last  int `yaml:"last"`
}

// StructureConfig tunes paragraph classification and body aggregation
type StructureConfig struct {
	// MinBodyChars is the shortest plain-text body fragment kept
	MinBodyChars int `yaml:"min_body_chars"`
	// LargeFontPt is the size at which source text counts as large
	LargeFontPt float64 `yaml:"large_font_pt"`
	// PageMarker matches page-number markers stripped before classification
	PageMarker string `yaml:"page_marker"`
}

// ScriptureConfig tunes citation recognition
type ScriptureConfig struct {
	// PrimaryCutoff is how many distinct references per entry are primary
	PrimaryCutoff int `yaml:"primary_cutoff"`
	// SnippetRadius is the context kept on each side of a citation
	SnippetRadius int `yaml:"snippet_radius"`
}

// CrossRefConfig tunes "see chapter" extraction
type CrossRefConfig struct {
	MaxRange int `yaml:"max_range"`
}

// SummaryConfig configures the summary script
type SummaryConfig struct {
	Enabled    *bool  `yaml:"enabled"`
	ScriptsDir string `yaml:"scripts_dir"`
	Sentences  int    `yaml:"sentences"`
	MaxChars   int    `yaml:"max_chars"`
}

// StoreConfig is informational; the driver is chosen at build time
type StoreConfig struct {
	Driver string `yaml:"driver"`
}

// Default returns the embedded default configuration.
func Default() *Config {
	c, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("config: embedded default.yaml: %v", err))
	}
	return c
}

// Parse decodes a YAML document. Keys absent from the document are left at
// their zero value so the result can be merged over another config.
func Parse(data []byte) (*Config, error) {
	c := &Config{}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return c, nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Merge merges another config into this one (other takes precedence for
// non-zero values). A non-empty parts list replaces the whole table.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if len(other.Parts) > 0 {
		c.Parts = append([]PartConfig(nil), other.Parts...)
	}

	if other.Structure.MinBodyChars != 0 {
		c.Structure.MinBodyChars = other.Structure.MinBodyChars
	}
	if other.Structure.LargeFontPt != 0 {
		c.Structure.LargeFontPt = other.Structure.LargeFontPt
	}
	if other.Structure.PageMarker != "" {
		c.Structure.PageMarker = other.Structure.PageMarker
	}

	if other.Scripture.PrimaryCutoff != 0 {
		c.Scripture.PrimaryCutoff = other.Scripture.PrimaryCutoff
	}
	if other.Scripture.SnippetRadius != 0 {
		c.Scripture.SnippetRadius = other.Scripture.SnippetRadius
	}

	if other.CrossRef.MaxRange != 0 {
		c.CrossRef.MaxRange = other.CrossRef.MaxRange
	}

	if other.Summary.Enabled != nil {
		enabled := *other.Summary.Enabled
		c.Summary.Enabled = &enabled
	}
	if other.Summary.ScriptsDir != "" {
		c.Summary.ScriptsDir = other.Summary.ScriptsDir
	}
	if other.Summary.Sentences != 0 {
		c.Summary.Sentences = other.Summary.Sentences
	}
	if other.Summary.MaxChars != 0 {
		c.Summary.MaxChars = other.Summary.MaxChars
	}

	if other.Store.Driver != "" {
		c.Store.Driver = other.Store.Driver
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	seen := make(map[int]bool)
	ranges := make([]PartConfig, 0, len(c.Parts))
	for _, p := range c.Parts {
		if p.Number <= 0 {
			return fmt.Errorf("parts: number must be positive, got %d", p.Number)
		}
		if seen[p.Number] {
			return fmt.Errorf("parts: duplicate part %d", p.Number)
		}
		seen[p.Number] = true
		if p.Title == "" {
			return fmt.Errorf("parts: part %d needs a title", p.Number)
		}
		if p.Chapters.First <= 0 || p.Chapters.Last < p.Chapters.First {
			return fmt.Errorf("parts: part %d has invalid chapter range %d-%d", p.Number, p.Chapters.First, p.Chapters.Last)
		}
		ranges = append(ranges, p)
	}
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].Chapters.First < ranges[j].Chapters.First })
	for i := 1; i < len(ranges); i++ {
		if ranges[i].Chapters.First <= ranges[i-1].Chapters.Last {
			return fmt.Errorf("parts: chapter ranges of parts %d and %d overlap", ranges[i-1].Number, ranges[i].Number)
		}
	}

	if c.Structure.MinBodyChars < 0 {
		return fmt.Errorf("structure.min_body_chars must not be negative")
	}
	if c.Structure.LargeFontPt < 0 {
		return fmt.Errorf("structure.large_font_pt must not be negative")
	}
	if c.Structure.PageMarker != "" {
		if _, err := regexp.Compile(c.Structure.PageMarker); err != nil {
			return fmt.Errorf("structure.page_marker: %w", err)
		}
	}
	if c.Scripture.PrimaryCutoff < 0 {
		return fmt.Errorf("scripture.primary_cutoff must not be negative")
	}
	if c.Scripture.SnippetRadius < 0 {
		return fmt.Errorf("scripture.snippet_radius must not be negative")
	}
	if c.CrossRef.MaxRange < 0 {
		return fmt.Errorf("crossref.max_range must not be negative")
	}
	if c.Summary.Sentences < 0 || c.Summary.MaxChars < 0 {
		return fmt.Errorf("summary.sentences and summary.max_chars must not be negative")
	}
	switch c.Store.Driver {
	case "", "sqlite3", "sqlite":
	default:
		return fmt.Errorf("store.driver must be sqlite3 or sqlite, got %q", c.Store.Driver)
	}
	return nil
}

// SummaryEnabled reports whether summaries are generated on import.
func (c *Config) SummaryEnabled() bool {
	return c.Summary.Enabled == nil || *c.Summary.Enabled
}

// OutlineParts converts the parts table for the outline builder.
func (c *Config) OutlineParts() []outline.Part {
	parts := make([]outline.Part, 0, len(c.Parts))
	for _, p := range c.Parts {
		parts = append(parts, outline.Part{
			Number:       p.Number,
			Title:        p.Title,
			FirstChapter: p.Chapters.First,
			LastChapter:  p.Chapters.Last,
		})
	}
	return parts
}

// TagsForChapter returns the tags of the part containing chapter.
func (c *Config) TagsForChapter(chapter int) []string {
	for _, p := range c.Parts {
		if chapter >= p.Chapters.First && chapter <= p.Chapters.Last {
			return p.Tags
		}
	}
	return nil
}
