package outline

import (
	"fmt"
	"regexp"
	"strconv"
)

// Link is a parsed downstream outline link: [[ST:Ch5]], [[ST:Ch5:A]] or
// [[ST:Ch5:A.2]].
type Link struct {
	Chapter    int
	Section    string // empty for chapter links
	Subsection int    // 0 unless the link names a subsection
}

var linkRe = regexp.MustCompile(`^\[\[ST:Ch(\d+)(?::([A-Z0-9])(?:\.(\d+))?)?\]\]$`)

// LinkPattern matches outline links embedded in free text.
var LinkPattern = regexp.MustCompile(`\[\[ST:Ch\d+(?::[A-Z0-9](?:\.\d+)?)?\]\]`)

// ParseLink parses an outline link.
func ParseLink(s string) (Link, error) {
	m := linkRe.FindStringSubmatch(s)
	if m == nil {
		return Link{}, fmt.Errorf("invalid outline link %q", s)
	}
	l := Link{Section: m[2]}
	l.Chapter, _ = strconv.Atoi(m[1])
	if m[3] != "" {
		l.Subsection, _ = strconv.Atoi(m[3])
	}
	return l, nil
}

// EntryID returns the ID of the entry the link points at.
func (l Link) EntryID() string {
	switch {
	case l.Subsection > 0:
		return SubsectionID(l.Chapter, l.Section, l.Subsection)
	case l.Section != "":
		return SectionID(l.Chapter, l.Section)
	default:
		return ChapterID(l.Chapter)
	}
}

// EntryType returns the level the link points at.
func (l Link) EntryType() EntryType {
	switch {
	case l.Subsection > 0:
		return TypeSubsection
	case l.Section != "":
		return TypeSection
	default:
		return TypeChapter
	}
}

// String renders the link in its canonical form.
func (l Link) String() string {
	switch {
	case l.Subsection > 0:
		return fmt.Sprintf("[[ST:Ch%d:%s.%d]]", l.Chapter, l.Section, l.Subsection)
	case l.Section != "":
		return fmt.Sprintf("[[ST:Ch%d:%s]]", l.Chapter, l.Section)
	default:
		return fmt.Sprintf("[[ST:Ch%d]]", l.Chapter)
	}
}

// LinkFor returns the outline link addressing e. ok is false for parts,
// which have no link form.
func LinkFor(e Entry) (Link, bool) {
	if e.ChapterNumber == nil || e.Type == TypePart {
		return Link{}, false
	}
	l := Link{Chapter: *e.ChapterNumber}
	if e.SectionLetter != nil && e.Type != TypeChapter {
		l.Section = *e.SectionLetter
	}
	if e.SubsectionNumber != nil && e.Type == TypeSubsection {
		l.Subsection = *e.SubsectionNumber
	}
	return l, true
}
