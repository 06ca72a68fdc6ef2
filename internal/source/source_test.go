package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/stindex/internal/outline"
)

const sampleHTML = `<html><head><title>Export</title><style>p { margin: 0 }</style></head><body>
<p style="text-align:center">Part 1</p>
<p align="center"><b>The Doctrine of the Word of God</b></p>
<p style="text-align:center; font-weight:bold">Chapter 1</p>
<h2 style="text-align:center">Introduction to Systematic Theology</h2>
<p><i>What is systematic theology?</i></p>
<p>God's Word &amp; <b>truth</b> matter.</p>
<script>var x = "<p>no</p>";</script>
</body></html>`

func TestHTMLParser_ParagraphsAndStyles(t *testing.T) {
	t.Parallel()
	paras, err := NewHTMLParser().Parse(context.Background(), []byte(sampleHTML), Options{})
	require.NoError(t, err)
	require.Len(t, paras, 6)

	assert.Equal(t, "Part 1", paras[0].Text)
	assert.Equal(t, outline.Style{Centered: true}, paras[0].Style)

	assert.Equal(t, "The Doctrine of the Word of God", paras[1].Text)
	assert.Equal(t, outline.Style{Bold: true, Centered: true}, paras[1].Style)

	assert.Equal(t, outline.Style{Bold: true, Centered: true}, paras[2].Style)
	assert.Equal(t, outline.Style{Bold: true, Centered: true, LargeFont: true}, paras[3].Style)
	assert.Equal(t, outline.Style{Italic: true}, paras[4].Style)

	assert.Equal(t, "God's Word & truth matter.", paras[5].Text)
	assert.False(t, paras[5].Style.Bold, "partially bold paragraphs are not bold")
	assert.Contains(t, paras[5].HTML, "<b>truth</b>")
}

func TestHTMLParser_ClassifiesIntoOutline(t *testing.T) {
	t.Parallel()
	paras, err := NewHTMLParser().Parse(context.Background(), []byte(sampleHTML), Options{})
	require.NoError(t, err)

	c, err := outline.NewClassifier("")
	require.NoError(t, err)
	tokens := c.Tokens(paras)
	require.NotEmpty(t, tokens)
	assert.Equal(t, outline.PartHeader, tokens[0].Role)
	assert.Equal(t, "The Doctrine of the Word of God", tokens[0].Title)
}

func TestHTMLParser_BoldLeadIn(t *testing.T) {
	t.Parallel()
	doc := `<html><body>
<p style="text-align:center">Chapter 1</p>
<p style="text-align:center"><b>The Word of God</b></p>
<p><b>1. All Words Are God's Words.</b> The Bible claims that all its words are God's words.</p>
<p><b>2.</b> A bare number is not a lead-in.</p>
<p>Plain <b>3. Bold later</b> is body.</p>
</body></html>`
	paras, err := NewHTMLParser().Parse(context.Background(), []byte(doc), Options{})
	require.NoError(t, err)
	require.Len(t, paras, 5)
	assert.True(t, paras[2].Style.Bold)
	assert.False(t, paras[3].Style.Bold)
	assert.False(t, paras[4].Style.Bold)

	c, err := outline.NewClassifier("")
	require.NoError(t, err)
	tokens := c.Tokens(paras)
	require.Len(t, tokens, 4)
	assert.Equal(t, outline.ChapterHeader, tokens[0].Role)
	assert.Equal(t, outline.SubsectionHeader, tokens[1].Role)
	assert.Equal(t, 1, tokens[1].Number)
	assert.Equal(t, "All Words Are God's Words", tokens[1].Title)
	assert.Contains(t, tokens[1].Para.HTML, "The Bible claims")
	assert.Equal(t, outline.Body, tokens[2].Role)
	assert.Equal(t, outline.Body, tokens[3].Role)
}

func TestXHTMLParser_InheritsBlockStyle(t *testing.T) {
	t.Parallel()
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml"><head><title>x</title></head><body>
<div style="text-align: center"><p><strong>A. Definition</strong></p></div>
<p>Body with <em>emphasis</em> here.</p>
<p style="font-size: 20px">Big</p>
</body></html>`
	paras, err := NewXHTMLParser().Parse(context.Background(), []byte(doc), Options{})
	require.NoError(t, err)
	require.Len(t, paras, 3)

	assert.Equal(t, "A. Definition", paras[0].Text)
	assert.Equal(t, outline.Style{Bold: true, Centered: true}, paras[0].Style)

	assert.Equal(t, "Body with emphasis here.", paras[1].Text)
	assert.False(t, paras[1].Style.Italic)
	assert.Contains(t, paras[1].HTML, "emphasis</em>")

	assert.True(t, paras[2].Style.LargeFont, "20px is 15pt")
}

func TestXHTMLParser_InvalidXML(t *testing.T) {
	t.Parallel()
	_, err := NewXHTMLParser().Parse(context.Background(), []byte("<p>unclosed"), Options{})
	assert.Error(t, err)
}

func TestJSONParser_Forms(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"array", `[{"text":"Part 1","centered":true},{"text":"","html":""},{"html":"<b>Chapter 1</b>"}]`, 2},
		{"object", `{"paragraphs":[{"text":"one"},{"text":"two"}]}`, 2},
		{"lines", "{\"text\":\"one\"}\n\n{\"text\":\"two\",\"bold\":true}\n", 2},
		{"single line", `{"text":"only"}`, 1},
		{"empty", "  ", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			paras, err := NewJSONParser().Parse(context.Background(), []byte(tt.content), Options{})
			require.NoError(t, err)
			assert.Len(t, paras, tt.want)
		})
	}
}

func TestJSONParser_TextFromHTML(t *testing.T) {
	t.Parallel()
	paras, err := NewJSONParser().Parse(context.Background(), []byte(`[{"html":"<b>Chapter 1</b>","centered":true,"bold":true}]`), Options{})
	require.NoError(t, err)
	require.Len(t, paras, 1)
	assert.Equal(t, "Chapter 1", paras[0].Text)
	assert.Equal(t, "<b>Chapter 1</b>", paras[0].Markup())
	assert.True(t, paras[0].Style.Bold)
}

func TestJSONParser_BadLine(t *testing.T) {
	t.Parallel()
	_, err := NewJSONParser().Parse(context.Background(), []byte("{\"text\":\"one\"}\n{oops\n"), Options{})
	assert.ErrorContains(t, err, "line 2")
}

func TestRegistry_Unsupported(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	_, err := r.Parse(context.Background(), "notes.docx", nil, Options{})
	assert.ErrorIs(t, err, ErrUnsupportedSource)
	assert.True(t, r.Supports("A.HTML"))
	assert.False(t, r.Supports("a.txt"))
}

func TestRegistry_ReadFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "export.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(`{"text":"hello world"}`), 0o644))

	paras, raw, err := NewRegistry().ReadFile(context.Background(), path, Options{})
	require.NoError(t, err)
	assert.Len(t, paras, 1)
	assert.Equal(t, `{"text":"hello world"}`, string(raw))

	_, _, err = NewRegistry().ReadFile(context.Background(), filepath.Join(t.TempDir(), "missing.html"), Options{})
	assert.Error(t, err)
}

func TestDiscover(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	for _, name := range []string{"b.html", "a/c.json", "notes.txt", "a/d.xhtml"} {
		full := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte("[]"), 0o644))
	}
	r := NewRegistry()

	files, err := r.Discover(dir, "")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a", "c.json"),
		filepath.Join(dir, "a", "d.xhtml"),
		filepath.Join(dir, "b.html"),
	}, files)

	files, err = r.Discover(dir, "*.html")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "b.html")}, files)

	files, err = r.Discover(filepath.Join(dir, "notes.txt"), "")
	require.NoError(t, err)
	assert.Len(t, files, 1, "explicit files are passed through")

	_, err = r.Discover(dir, "[")
	assert.Error(t, err)
}

func TestFontSizePt(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"16pt", 16, true},
		{"20px", 15, true},
		{"1.5em", 18, true},
		{"x-large", 18, true},
		{"big", 0, false},
	}
	for _, tt := range tests {
		got, ok := fontSizePt(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.InDelta(t, tt.want, got, 0.001, tt.in)
	}
}
