package outline

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jward/stindex/internal/scripture"
)

// Part describes a configured part of the document: its number, its title
// and the chapter range it spans.
type Part struct {
	Number       int
	Title        string
	FirstChapter int
	LastChapter  int
}

// Cursor identifies an open node of the outline.
type Cursor struct {
	ID     string
	Number int
	Letter string
}

// Open reports whether the cursor points at a node.
func (c Cursor) Open() bool { return c.ID != "" }

// State is the builder's position in the document. It is a plain value;
// Fold never mutates the state it is given.
type State struct {
	Part       Cursor
	Chapter    Cursor
	Section    Cursor
	Subsection Cursor
	Sort       int
}

// EffectKind distinguishes the two things a transition can do.
type EffectKind int

const (
	// Create adds an entry to the outline, or keeps the existing one when an
	// entry with the same ID was already created.
	Create EffectKind = iota
	// Append adds an HTML paragraph to an existing entry's content.
	Append
)

// Effect is one change to the outline produced by Fold.
type Effect struct {
	Kind     EffectKind
	Entry    Entry  // Create
	TargetID string // Append
	HTML     string // Append
}

// EntryID returns the ID of the entry the effect creates or extends.
func (e Effect) EntryID() string {
	if e.Kind == Append {
		return e.TargetID
	}
	return e.Entry.ID
}

// Builder folds classified tokens into outline effects.
type Builder struct {
	parts        []Part
	minBodyChars int
	logger       zerolog.Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithMinBodyChars sets the minimum plain-text length of a body fragment.
func WithMinBodyChars(n int) BuilderOption {
	return func(b *Builder) { b.minBodyChars = n }
}

// WithBuilderLogger sets the logger used for dropped paragraphs.
func WithBuilderLogger(l zerolog.Logger) BuilderOption {
	return func(b *Builder) { b.logger = l }
}

// NewBuilder returns a builder using the given part table to attach chapters
// that are not preceded by an explicit part header.
func NewBuilder(parts []Part, opts ...BuilderOption) *Builder {
	b := &Builder{
		parts:        parts,
		minBodyChars: 10,
		logger:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// partFor returns the configured part containing chapter.
func (b *Builder) partFor(chapter int) (Part, bool) {
	for _, p := range b.parts {
		if chapter >= p.FirstChapter && chapter <= p.LastChapter {
			return p, true
		}
	}
	return Part{}, false
}

func (b *Builder) partTitle(number int) string {
	for _, p := range b.parts {
		if p.Number == number && p.Title != "" {
			return p.Title
		}
	}
	return fmt.Sprintf("Part %d", number)
}

// Fold applies one token to the state and returns the next state and the
// effects to apply to the outline.
func (b *Builder) Fold(s State, tok Token) (State, []Effect) {
	switch tok.Role {
	case PartHeader:
		return b.foldPart(s, tok.Number, tok.Title, false)

	case ChapterHeader:
		var effects []Effect
		if p, ok := b.partFor(tok.Number); ok && s.Part.Number != p.Number {
			s, effects = b.foldPart(s, p.Number, "", true)
		}
		next := s
		next.Sort++
		next.Chapter = Cursor{ID: ChapterID(tok.Number), Number: tok.Number}
		next.Section, next.Subsection = Cursor{}, Cursor{}

		title := tok.Title
		if title == "" {
			title = fmt.Sprintf("Chapter %d", tok.Number)
		}
		e := Entry{
			ID:            next.Chapter.ID,
			Type:          TypeChapter,
			ChapterNumber: ptr(tok.Number),
			Title:         title,
			SortOrder:     next.Sort,
		}
		if s.Part.Open() {
			e.PartNumber = ptr(s.Part.Number)
			e.ParentID = ptr(s.Part.ID)
		}
		if tok.Subtitle != "" {
			e.Summary = ptr(tok.Subtitle)
		}
		return next, append(effects, Effect{Kind: Create, Entry: e})

	case SectionHeader:
		if !s.Chapter.Open() {
			return b.foldBody(s, tok)
		}
		next := s
		next.Sort++
		next.Section = Cursor{ID: SectionID(s.Chapter.Number, tok.Letter), Letter: tok.Letter}
		next.Subsection = Cursor{}
		e := Entry{
			ID:            next.Section.ID,
			Type:          TypeSection,
			ChapterNumber: ptr(s.Chapter.Number),
			SectionLetter: ptr(tok.Letter),
			Title:         tok.Title,
			ParentID:      ptr(s.Chapter.ID),
			SortOrder:     next.Sort,
		}
		b.setPart(&e, s)
		return next, []Effect{{Kind: Create, Entry: e}}

	case SubsectionHeader:
		if !s.Chapter.Open() {
			return b.foldBody(s, tok)
		}
		letter, parent := NoSectionLetter, s.Chapter.ID
		if s.Section.Open() {
			letter, parent = s.Section.Letter, s.Section.ID
		}
		next := s
		next.Sort++
		next.Subsection = Cursor{ID: SubsectionID(s.Chapter.Number, letter, tok.Number), Number: tok.Number, Letter: letter}
		content := "<p>" + tok.Para.Markup() + "</p>"
		e := Entry{
			ID:               next.Subsection.ID,
			Type:             TypeSubsection,
			ChapterNumber:    ptr(s.Chapter.Number),
			SectionLetter:    ptr(letter),
			SubsectionNumber: ptr(tok.Number),
			Title:            tok.Title,
			Content:          content,
			ParentID:         ptr(parent),
			SortOrder:        next.Sort,
			WordCount:        CountWords(content),
		}
		b.setPart(&e, s)
		return next, []Effect{{Kind: Create, Entry: e}}

	case Noise:
		b.logger.Debug().Str("text", tok.Para.Text).Msg("dropping noise paragraph")
		return s, nil

	default:
		return b.foldBody(s, tok)
	}
}

// foldPart opens a part. implicit marks a part opened for a chapter that no
// part header preceded.
func (b *Builder) foldPart(s State, number int, title string, implicit bool) (State, []Effect) {
	next := State{Sort: s.Sort + 1, Part: Cursor{ID: PartID(number), Number: number}}
	if title == "" {
		title = b.partTitle(number)
	}
	e := Entry{
		ID:         next.Part.ID,
		Type:       TypePart,
		PartNumber: ptr(number),
		Title:      title,
		SortOrder:  next.Sort,
		Implicit:   implicit,
	}
	return next, []Effect{{Kind: Create, Entry: e}}
}

func (b *Builder) foldBody(s State, tok Token) (State, []Effect) {
	target := deepest(s)
	if target == "" {
		b.logger.Debug().Str("text", tok.Para.Text).Msg("dropping body before first header")
		return s, nil
	}
	markup := tok.Para.Markup()
	if len([]rune(scripture.PlainText(markup))) < b.minBodyChars {
		return s, nil
	}
	return s, []Effect{{Kind: Append, TargetID: target, HTML: "<p>" + markup + "</p>"}}
}

func (b *Builder) setPart(e *Entry, s State) {
	if s.Part.Open() {
		e.PartNumber = ptr(s.Part.Number)
	}
}

func deepest(s State) string {
	switch {
	case s.Subsection.Open():
		return s.Subsection.ID
	case s.Section.Open():
		return s.Section.ID
	case s.Chapter.Open():
		return s.Chapter.ID
	default:
		return s.Part.ID
	}
}

// Outline is the ordered set of entries built from one document.
type Outline struct {
	Entries []*Entry
	byID    map[string]*Entry
	touched []string
}

// NewOutline returns an empty outline.
func NewOutline() *Outline {
	return &Outline{byID: make(map[string]*Entry)}
}

// Apply applies effects in order.
func (o *Outline) Apply(effects ...Effect) {
	for _, eff := range effects {
		if eff.Kind == Create || o.byID[eff.TargetID] != nil {
			o.touched = append(o.touched, eff.EntryID())
		}
		switch eff.Kind {
		case Create:
			if existing, ok := o.byID[eff.Entry.ID]; ok {
				if existing.Summary == nil && eff.Entry.Summary != nil {
					existing.Summary = eff.Entry.Summary
				}
				if existing.Implicit && !eff.Entry.Implicit {
					existing.Implicit = false
					existing.Title = eff.Entry.Title
				}
				continue
			}
			e := eff.Entry
			o.Entries = append(o.Entries, &e)
			o.byID[e.ID] = &e
		case Append:
			e, ok := o.byID[eff.TargetID]
			if !ok {
				continue
			}
			e.Content += eff.HTML
			e.WordCount += CountWords(eff.HTML)
		}
	}
}

// TakeTouched returns the IDs of the entries created or extended since the
// previous call, in application order, possibly with repeats.
func (o *Outline) TakeTouched() []string {
	ids := o.touched
	o.touched = nil
	return ids
}

// Get returns the entry with the given ID.
func (o *Outline) Get(id string) (*Entry, bool) {
	e, ok := o.byID[id]
	return e, ok
}

// Count returns the number of entries of each type.
func (o *Outline) Count() map[EntryType]int {
	counts := make(map[EntryType]int)
	for _, e := range o.Entries {
		counts[e.Type]++
	}
	return counts
}

// Build folds a token stream into an outline, starting from an empty state.
// The returned state is the cursor after the last token, so a following
// document can continue where this one stopped.
func (b *Builder) Build(tokens []Token) (*Outline, State) {
	return b.Continue(NewOutline(), State{}, tokens)
}

// Continue folds more tokens into an existing outline.
func (b *Builder) Continue(o *Outline, s State, tokens []Token) (*Outline, State) {
	for _, tok := range tokens {
		var effects []Effect
		s, effects = b.Fold(s, tok)
		o.Apply(effects...)
	}
	return o, s
}

func ptr[T any](v T) *T { return &v }
