package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	t.Parallel()
	c := Default()
	require.NoError(t, c.Validate())

	require.Len(t, c.Parts, 7)
	assert.Equal(t, "The Doctrine of God", c.Parts[1].Title)
	assert.Equal(t, ChapterRange{First: 9, Last: 20}, c.Parts[1].Chapters)
	assert.Equal(t, 10, c.Structure.MinBodyChars)
	assert.Equal(t, 5, c.Scripture.PrimaryCutoff)
	assert.Equal(t, 60, c.Scripture.SnippetRadius)
	assert.Equal(t, 20, c.CrossRef.MaxRange)
	assert.True(t, c.SummaryEnabled())

	assert.Equal(t, []string{"christology", "pneumatology"}, c.TagsForChapter(27))
	assert.Nil(t, c.TagsForChapter(99))

	parts := c.OutlineParts()
	assert.Equal(t, 54, parts[6].FirstChapter)
	assert.Equal(t, 57, parts[6].LastChapter)
}

func TestMerge(t *testing.T) {
	t.Parallel()
	c := Default()
	off := false
	c.Merge(&Config{
		Parts:     []PartConfig{{Number: 1, Title: "Only", Chapters: ChapterRange{First: 1, Last: 3}}},
		Scripture: ScriptureConfig{PrimaryCutoff: 3},
		Summary:   SummaryConfig{Enabled: &off},
	})
	assert.Len(t, c.Parts, 1)
	assert.Equal(t, 3, c.Scripture.PrimaryCutoff)
	assert.Equal(t, 60, c.Scripture.SnippetRadius, "unset keys keep their value")
	assert.False(t, c.SummaryEnabled())

	c.Merge(nil)
	assert.Len(t, c.Parts, 1)
}

func TestValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{"duplicate part", func(c *Config) { c.Parts = append(c.Parts, c.Parts[0]) }, "duplicate part"},
		{"overlap", func(c *Config) { c.Parts[1].Chapters.First = 8 }, "overlap"},
		{"inverted range", func(c *Config) { c.Parts[0].Chapters = ChapterRange{First: 5, Last: 2} }, "invalid chapter range"},
		{"bad marker", func(c *Config) { c.Structure.PageMarker = "[" }, "page_marker"},
		{"negative cutoff", func(c *Config) { c.Scripture.PrimaryCutoff = -1 }, "primary_cutoff"},
		{"driver", func(c *Config) { c.Store.Driver = "postgres" }, "store.driver"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := Default()
			tt.mutate(c)
			assert.ErrorContains(t, c.Validate(), tt.errMsg)
		})
	}
}

func TestSaveAndLoadFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "cfg.yaml")
	c := Default()
	c.CrossRef.MaxRange = 7
	require.NoError(t, c.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 7, loaded.CrossRef.MaxRange)
	assert.Len(t, loaded.Parts, 7)

	_, err = LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoader_Precedence(t *testing.T) {
	t.Parallel()
	home := t.TempDir()
	project := t.TempDir()
	work := filepath.Join(project, "sub", "dir")
	require.NoError(t, os.MkdirAll(work, 0o755))

	userPath := filepath.Join(home, UserConfigDir, UserConfigFile)
	require.NoError(t, os.MkdirAll(filepath.Dir(userPath), 0o755))
	require.NoError(t, os.WriteFile(userPath, []byte("scripture:\n  primary_cutoff: 2\n  snippet_radius: 30\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(project, ProjectConfigFile), []byte("scripture:\n  primary_cutoff: 3\n"), 0o644))
	explicit := filepath.Join(t.TempDir(), "explicit.yaml")
	require.NoError(t, os.WriteFile(explicit, []byte("crossref:\n  max_range: 4\n"), 0o644))

	c, err := NewLoader(zerolog.Nop(), WithDirs(home, work), WithExplicitFile(explicit)).Load()
	require.NoError(t, err)
	assert.Equal(t, 3, c.Scripture.PrimaryCutoff, "project overrides user")
	assert.Equal(t, 30, c.Scripture.SnippetRadius, "user overrides default")
	assert.Equal(t, 4, c.CrossRef.MaxRange, "explicit file applies last")
}

func TestLoader_MissingExplicitFile(t *testing.T) {
	t.Parallel()
	_, err := NewLoader(zerolog.Nop(), WithDirs(t.TempDir(), t.TempDir()), WithExplicitFile("/nonexistent/stindex.yaml")).Load()
	assert.Error(t, err)
}

func TestLoader_InvalidResultRejected(t *testing.T) {
	t.Parallel()
	work := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(work, ProjectConfigFile), []byte("store:\n  driver: mysql\n"), 0o644))
	_, err := NewLoader(zerolog.Nop(), WithDirs(t.TempDir(), work)).Load()
	assert.ErrorContains(t, err, "store.driver")
}
