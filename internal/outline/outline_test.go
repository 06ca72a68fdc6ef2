package outline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testParts = []Part{
	{Number: 1, Title: "The Doctrine of the Word of God", FirstChapter: 1, LastChapter: 8},
	{Number: 2, Title: "The Doctrine of God", FirstChapter: 9, LastChapter: 20},
}

func centered(text string) Paragraph {
	return Paragraph{Text: text, Style: Style{Centered: true}}
}

func centeredBold(text string) Paragraph {
	return Paragraph{Text: text, Style: Style{Centered: true, Bold: true}}
}

func bold(text string) Paragraph {
	return Paragraph{Text: text, Style: Style{Bold: true}}
}

func body(text string) Paragraph {
	return Paragraph{Text: text}
}

func newTestClassifier(t *testing.T) *Classifier {
	t.Helper()
	c, err := NewClassifier("")
	require.NoError(t, err)
	return c
}

func build(t *testing.T, paras ...Paragraph) *Outline {
	t.Helper()
	tokens := newTestClassifier(t).Tokens(paras)
	o, _ := NewBuilder(testParts).Build(tokens)
	return o
}

func TestClassify_Priority(t *testing.T) {
	t.Parallel()
	c := newTestClassifier(t)

	tests := []struct {
		name string
		para Paragraph
		want Role
	}{
		{"part", centered("Part 3"), PartHeader},
		{"part not centered", body("Part 3"), Body},
		{"chapter", centered("Chapter 12"), ChapterHeader},
		{"chapter bold", centeredBold("Chapter 12"), ChapterHeader},
		{"section", centeredBold("B. The Necessity of Scripture"), SectionHeader},
		{"section not bold", centered("B. The Necessity of Scripture"), Body},
		{"subsection", bold("2. Scripture Is Clear."), SubsectionHeader},
		{"subsection centered", centeredBold("2. Scripture Is Clear."), SubsectionHeader},
		{"noise", centeredBold("QUESTIONS FOR PERSONAL APPLICATION"), Noise},
		{"body", body("The Bible is the Word of God."), Body},
		{"italic body", Paragraph{Text: "Why is it important?", Style: Style{Italic: true}}, Body},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, c.Classify(c.Clean(tt.para)))
		})
	}
}

func TestClassify_StripsPageMarkers(t *testing.T) {
	t.Parallel()
	c := newTestClassifier(t)

	p := c.Clean(centered("Chapter 4 [p. 73]"))
	assert.Equal(t, "Chapter 4", p.Text)
	assert.Equal(t, ChapterHeader, c.Classify(p))

	p = c.Clean(centered("{112} Part 2"))
	assert.Equal(t, PartHeader, c.Classify(p))
}

func TestTokens_Lookahead(t *testing.T) {
	t.Parallel()
	c := newTestClassifier(t)

	tokens := c.Tokens([]Paragraph{
		centered("Part 1"),
		centeredBold("The Doctrine of the Word of God"),
		centered("Chapter 1"),
		centeredBold("Introduction to Systematic Theology"),
		{Text: "What is systematic theology?", Style: Style{Italic: true}},
		body("Systematic theology is any study that answers the question."),
	})

	require.Len(t, tokens, 3)
	assert.Equal(t, PartHeader, tokens[0].Role)
	assert.Equal(t, 1, tokens[0].Number)
	assert.Equal(t, "The Doctrine of the Word of God", tokens[0].Title)
	assert.Equal(t, ChapterHeader, tokens[1].Role)
	assert.Equal(t, "Introduction to Systematic Theology", tokens[1].Title)
	assert.Equal(t, "What is systematic theology?", tokens[1].Subtitle)
	assert.Equal(t, Body, tokens[2].Role)
}

func TestBuild_Hierarchy(t *testing.T) {
	t.Parallel()

	o := build(t,
		centered("Part 1"),
		centeredBold("The Doctrine of the Word of God"),
		centered("Chapter 1"),
		centeredBold("The Word of God"),
		centeredBold("A. The Authority of Scripture"),
		bold("1. All Words Are God's Words."),
		body("In the beginning was the Word (John 1:1), and the Word was God."),
	)

	require.Len(t, o.Entries, 4)
	part, chapter, section, sub := o.Entries[0], o.Entries[1], o.Entries[2], o.Entries[3]

	assert.Equal(t, TypePart, part.Type)
	assert.Equal(t, 1, *part.PartNumber)
	assert.Equal(t, "The Doctrine of the Word of God", part.Title)
	assert.Nil(t, part.ParentID)

	assert.Equal(t, TypeChapter, chapter.Type)
	assert.Equal(t, "The Word of God", chapter.Title)
	assert.Equal(t, part.ID, *chapter.ParentID)

	assert.Equal(t, TypeSection, section.Type)
	assert.Equal(t, "A", *section.SectionLetter)
	assert.Equal(t, "The Authority of Scripture", section.Title)
	assert.Equal(t, chapter.ID, *section.ParentID)

	assert.Equal(t, TypeSubsection, sub.Type)
	assert.Equal(t, "All Words Are God's Words", sub.Title)
	assert.Equal(t, section.ID, *sub.ParentID)
	assert.Equal(t, 1, *sub.ChapterNumber)
	assert.Equal(t, "A", *sub.SectionLetter)
	assert.Equal(t, 1, *sub.SubsectionNumber)
	assert.Contains(t, sub.Content, "All Words Are God&#39;s Words.")
	assert.Contains(t, sub.Content, "John 1:1")
	assert.Equal(t, CountWords(sub.Content), sub.WordCount)

	for i := 1; i < len(o.Entries); i++ {
		assert.Greater(t, o.Entries[i].SortOrder, o.Entries[i-1].SortOrder)
	}
}

func TestBuild_ImplicitPartAndSubsectionWithoutSection(t *testing.T) {
	t.Parallel()

	o := build(t,
		centered("Chapter 9"),
		centeredBold("The Existence of God"),
		bold("1. Humanity's Inner Sense of God."),
		body("All persons everywhere have a deep, inner sense that God exists."),
	)

	require.Len(t, o.Entries, 3)
	part, chapter, sub := o.Entries[0], o.Entries[1], o.Entries[2]
	assert.Equal(t, PartID(2), part.ID)
	assert.Equal(t, "The Doctrine of God", part.Title)
	assert.Equal(t, part.ID, *chapter.ParentID)
	assert.Equal(t, 2, *chapter.PartNumber)
	assert.Equal(t, NoSectionLetter, *sub.SectionLetter)
	assert.Equal(t, chapter.ID, *sub.ParentID)
	assert.Equal(t, SubsectionID(9, NoSectionLetter, 1), sub.ID)
}

func TestBuild_BodyRules(t *testing.T) {
	t.Parallel()

	o := build(t,
		body("Preface text before any header is dropped entirely."),
		centered("Chapter 2"),
		centeredBold("The Word of God"),
		body("short"),
		centeredBold("BOILERPLATE MARKER"),
		body("This paragraph is long enough to be kept in the chapter."),
		centeredBold("A. Section Without Chapter Reset"),
	)

	counts := o.Count()
	assert.Equal(t, 1, counts[TypePart])
	assert.Equal(t, 1, counts[TypeChapter])
	assert.Equal(t, 1, counts[TypeSection])

	chapter, ok := o.Get(ChapterID(2))
	require.True(t, ok)
	assert.Equal(t, "<p>This paragraph is long enough to be kept in the chapter.</p>", chapter.Content)
	assert.Equal(t, 11, chapter.WordCount)
	assert.NotContains(t, chapter.Content, "Preface")
	assert.NotContains(t, chapter.Content, "BOILERPLATE")
}

func TestBuild_HeadersWithoutChapterAreBody(t *testing.T) {
	t.Parallel()

	o := build(t,
		centered("Part 1"),
		centeredBold("Title"),
		centeredBold("A. Premature Section Heading"),
		bold("1. Premature numbered heading."),
	)

	require.Len(t, o.Entries, 1)
	assert.Equal(t, TypePart, o.Entries[0].Type)
	assert.Contains(t, o.Entries[0].Content, "A. Premature Section Heading")
	assert.Contains(t, o.Entries[0].Content, "1. Premature numbered heading.")
}

func TestBuild_RepeatedPartIsDeduplicated(t *testing.T) {
	t.Parallel()

	o := build(t,
		centered("Chapter 1"),
		centeredBold("Introduction"),
		centered("Part 1"),
		centeredBold("The Doctrine of the Word of God"),
		centered("Chapter 2"),
		centeredBold("The Word of God"),
	)

	assert.Equal(t, 1, o.Count()[TypePart])
	assert.Equal(t, 2, o.Count()[TypeChapter])
}

func TestBuild_ImplicitPartIsMarked(t *testing.T) {
	t.Parallel()

	o := build(t,
		centered("Chapter 9"),
		centeredBold("The Existence of God"),
	)
	part, ok := o.Get(PartID(2))
	require.True(t, ok)
	assert.True(t, part.Implicit)

	o = build(t,
		centered("Chapter 1"),
		centeredBold("Introduction"),
		centered("Part 1"),
		centeredBold("A Title From The Document"),
	)
	part, ok = o.Get(PartID(1))
	require.True(t, ok)
	assert.False(t, part.Implicit, "a later part header claims the implicit part")
	assert.Equal(t, "A Title From The Document", part.Title)
}

func TestEffect_EntryID(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "c1", Effect{Kind: Create, Entry: Entry{ID: "c1"}}.EntryID())
	assert.Equal(t, "c2", Effect{Kind: Append, TargetID: "c2", HTML: "<p>x</p>"}.EntryID())
}

func TestFold_DoesNotMutateInput(t *testing.T) {
	t.Parallel()
	b := NewBuilder(testParts)

	start := State{}
	s1, effects := b.Fold(start, Token{Role: ChapterHeader, Number: 1, Title: "Intro"})
	assert.Equal(t, State{}, start)
	require.Len(t, effects, 2)
	assert.Equal(t, TypePart, effects[0].Entry.Type)
	assert.Equal(t, TypeChapter, effects[1].Entry.Type)

	s2, _ := b.Fold(s1, Token{Role: SectionHeader, Letter: "A", Title: "First"})
	assert.False(t, s1.Section.Open())
	assert.True(t, s2.Section.Open())
	assert.Equal(t, s1.Sort+1, s2.Sort)
}

func TestStableIDs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ChapterID(5), ChapterID(5))
	assert.NotEqual(t, ChapterID(5), ChapterID(6))
	assert.NotEqual(t, SectionID(5, "A"), SubsectionID(5, "A", 1))
	assert.Len(t, PartID(1), 36)
}

func TestParseLink(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Link
		id   string
		typ  EntryType
	}{
		{"[[ST:Ch5]]", Link{Chapter: 5}, ChapterID(5), TypeChapter},
		{"[[ST:Ch5:A]]", Link{Chapter: 5, Section: "A"}, SectionID(5, "A"), TypeSection},
		{"[[ST:Ch5:A.2]]", Link{Chapter: 5, Section: "A", Subsection: 2}, SubsectionID(5, "A", 2), TypeSubsection},
	}
	for _, tt := range tests {
		got, err := ParseLink(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, tt.id, got.EntryID())
		assert.Equal(t, tt.typ, got.EntryType())
		assert.Equal(t, tt.in, got.String())
	}

	for _, bad := range []string{"", "[[ST:5]]", "[[ST:Ch]]", "[[ST:Ch5:ab]]", "ST:Ch5"} {
		_, err := ParseLink(bad)
		assert.Error(t, err, bad)
	}
}

func TestLinkFor(t *testing.T) {
	t.Parallel()

	l, ok := LinkFor(Entry{Type: TypeSubsection, ChapterNumber: ptr(3), SectionLetter: ptr("B"), SubsectionNumber: ptr(4)})
	require.True(t, ok)
	assert.Equal(t, "[[ST:Ch3:B.4]]", l.String())

	_, ok = LinkFor(Entry{Type: TypePart, PartNumber: ptr(1)})
	assert.False(t, ok)
}
