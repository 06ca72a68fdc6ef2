// Package outline turns a stream of styled paragraphs into the four-level
// doctrine outline (Part, Chapter, Section, Subsection).
//
// Classification and structuring are separate steps. Classifier.Tokens turns
// paragraphs into header and body tokens, consuming header titles by
// lookahead. Builder.Fold is a pure transition over a small cursor State that
// yields Effects; Outline applies them and owns the resulting entries.
package outline

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/jward/stindex/internal/scripture"
)

// EntryType is the level of a doctrine entry in the outline.
type EntryType string

const (
	TypePart       EntryType = "part"
	TypeChapter    EntryType = "chapter"
	TypeSection    EntryType = "section"
	TypeSubsection EntryType = "subsection"
)

// NoSectionLetter is the section letter of a subsection that appears directly
// under a chapter with no open section.
const NoSectionLetter = "0"

// Entry is one node of the outline.
type Entry struct {
	ID               string
	Type             EntryType
	PartNumber       *int
	ChapterNumber    *int
	SectionLetter    *string
	SubsectionNumber *int
	Title            string
	Content          string
	Summary          *string
	ParentID         *string
	SortOrder        int
	WordCount        int

	// Implicit is set on a part created for a chapter that no part header
	// preceded. Its title comes from configuration rather than the document.
	Implicit bool
}

// idNamespace scopes the deterministic entry IDs.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:stindex:doctrine-entry"))

// PartID returns the stable ID of the part with the given number.
func PartID(part int) string {
	return naturalID("part", strconv.Itoa(part))
}

// ChapterID returns the stable ID of a chapter.
func ChapterID(chapter int) string {
	return naturalID("chapter", strconv.Itoa(chapter))
}

// SectionID returns the stable ID of a section within a chapter.
func SectionID(chapter int, letter string) string {
	return naturalID("section", strconv.Itoa(chapter), letter)
}

// SubsectionID returns the stable ID of a subsection.
func SubsectionID(chapter int, letter string, number int) string {
	return naturalID("subsection", strconv.Itoa(chapter), letter, strconv.Itoa(number))
}

func naturalID(parts ...string) string {
	return uuid.NewSHA1(idNamespace, []byte(strings.Join(parts, ":"))).String()
}

// CountWords returns the number of words in the visible text of an HTML body.
func CountWords(content string) int {
	return len(strings.Fields(scripture.PlainText(content)))
}
