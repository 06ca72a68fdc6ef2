package scripture

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLink_FreeText(t *testing.T) {
	t.Parallel()
	s := NewScanner()

	out, refs := s.Link("See Rom. 8:28-30 and also 1 Cor. 13:4")

	require.Len(t, refs, 2)
	assert.Equal(t, "ROM.8.28-30", refs[0].Locator())
	assert.Equal(t, "1CO.13.4", refs[1].Locator())
	assert.Equal(t, "Rom. 8:28-30", refs[0].Text)
	assert.Equal(t, "1 Cor. 13:4", refs[1].Text)
	assert.Equal(t,
		`See <a class="scripture-ref" data-ref="ROM.8.28-30">Rom. 8:28-30</a> and also `+
			`<a class="scripture-ref" data-ref="1CO.13.4">1 Cor. 13:4</a>`,
		out)
}

func TestLink_Idempotent(t *testing.T) {
	t.Parallel()
	s := NewScanner()

	once, refs := s.Link("<p>Compare John 3:16 with Eph. 2:8–9ff.</p>")
	require.Len(t, refs, 2)
	assert.Equal(t, "EPH.2.8-9", refs[1].Locator())

	twice, again := s.Link(once)
	assert.Equal(t, once, twice)
	assert.Empty(t, again)
}

func TestLink_SkipsExistingAnchor(t *testing.T) {
	t.Parallel()
	s := NewScanner()

	content := `<p>As <a class="scripture-ref" data-ref="ROM.8.28-30">Rom. 8:28-30</a> says.</p>`
	out, refs := s.Link(content)

	assert.Equal(t, content, out)
	assert.Empty(t, refs)
}

func TestLink_SkipsOtherLinks(t *testing.T) {
	t.Parallel()
	s := NewScanner()

	content := `<p>Read <a href="http://x">John 3:16</a> or <A HREF="/notes"><b>Rom. 8:28</b></A>.</p>`
	out, refs := s.Link(content)
	assert.Equal(t, content, out)
	assert.Empty(t, refs)

	out, refs = s.Link(`<a href="http://x">notes</a> then John 3:16 <abbr>n.</abbr> Eph. 2:8`)
	require.Len(t, refs, 2, "text after a closed link or in other tags is linked")
	assert.Equal(t, 1, strings.Count(out, `<a href=`))
	assert.Equal(t, 2, strings.Count(out, `<a class="scripture-ref"`))
}

func TestLink_SkipsInsideTag(t *testing.T) {
	t.Parallel()
	s := NewScanner()

	content := `<span title="John 3:16">text</span>`
	out, refs := s.Link(content)

	assert.Equal(t, content, out)
	assert.Empty(t, refs)
}

func TestLink_LongestAliasWins(t *testing.T) {
	t.Parallel()
	s := NewScanner()

	_, refs := s.Link("Love one another (1 Jn 3:16).")
	require.Len(t, refs, 1)
	assert.Equal(t, "1JN", refs[0].Book)
	assert.Equal(t, 3, refs[0].Chapter)
	assert.Equal(t, 16, refs[0].StartVerse)
	assert.Nil(t, refs[0].EndVerse)
}

func TestLink_CrossChapterKeepsStart(t *testing.T) {
	t.Parallel()
	s := NewScanner()

	out, refs := s.Link("Read Gen. 1:1-2:3 first.")
	require.Len(t, refs, 1)
	assert.Equal(t, "GEN.1.1", refs[0].Locator())
	assert.Contains(t, out, `data-ref="GEN.1.1">Gen. 1:1</a>-2:3`)
}

func TestLink_AmbiguousWordsIgnored(t *testing.T) {
	t.Parallel()
	s := NewScanner()

	content := "The answer is 3:16 or so 4:2."
	out, refs := s.Link(content)
	assert.Equal(t, content, out)
	assert.Empty(t, refs)
}

func TestLink_Snippet(t *testing.T) {
	t.Parallel()
	s := NewScanner(WithSnippetRadius(12))

	_, refs := s.Link("<p>The divine <b>Word</b> of John 1:1 was with God from the beginning.</p>")
	require.Len(t, refs, 1)
	assert.Equal(t, "John 1:1", refs[0].Text)
	assert.Equal(t, "vine Word of John 1:1 was with God", refs[0].Snippet)
}

func TestRoundTrip_StructuredThenFreeText(t *testing.T) {
	t.Parallel()

	normalized, refs, err := NormalizeAnchors(
		`<p>See <a href="https://ref.ly/logosref/Bible.Ro8.28-30">Rom 8:28-30</a>.</p>`, nil)
	require.NoError(t, err)
	require.Len(t, refs, 1)

	out, again := NewScanner().Link(normalized)
	assert.Equal(t, normalized, out)
	assert.Empty(t, again)
}
