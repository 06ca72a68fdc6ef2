package runtime

import (
	"context"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/risor-io/risor/object"
	"github.com/rs/zerolog"
)

// makeFirstSentencesFn creates the "first_sentences" host function.
//
// first_sentences(text, n) → string
func makeFirstSentencesFn() *object.Builtin {
	return object.NewBuiltin("first_sentences", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 2 {
			return object.NewArgsError("first_sentences", 2, len(args))
		}
		text, ok := args[0].(*object.String)
		if !ok {
			return object.Errorf("first_sentences: text must be a string, got %s", args[0].Type())
		}
		n, ok := args[1].(*object.Int)
		if !ok {
			return object.Errorf("first_sentences: n must be an int, got %s", args[1].Type())
		}
		return object.NewString(FirstSentences(text.Value(), int(n.Value())))
	})
}

// makeTruncateFn creates the "truncate" host function.
//
// truncate(text, max_chars) → string
func makeTruncateFn() *object.Builtin {
	return object.NewBuiltin("truncate", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 2 {
			return object.NewArgsError("truncate", 2, len(args))
		}
		text, ok := args[0].(*object.String)
		if !ok {
			return object.Errorf("truncate: text must be a string, got %s", args[0].Type())
		}
		n, ok := args[1].(*object.Int)
		if !ok {
			return object.Errorf("truncate: max_chars must be an int, got %s", args[1].Type())
		}
		return object.NewString(Truncate(text.Value(), int(n.Value())))
	})
}

// makeStripMarkdownFn creates "strip_markdown", which removes emphasis,
// heading and link syntax and collapses whitespace.
//
// strip_markdown(text) → string
func makeStripMarkdownFn() *object.Builtin {
	return object.NewBuiltin("strip_markdown", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("strip_markdown", 1, len(args))
		}
		text, ok := args[0].(*object.String)
		if !ok {
			return object.Errorf("strip_markdown: text must be a string, got %s", args[0].Type())
		}
		return object.NewString(StripMarkdown(text.Value()))
	})
}

// makeEmitFn creates "emit_summary", which hands the script's result back
// to Go. The last call wins.
//
// emit_summary(text)
func makeEmitFn(out *string) *object.Builtin {
	return object.NewBuiltin("emit_summary", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("emit_summary", 1, len(args))
		}
		switch v := args[0].(type) {
		case *object.String:
			*out = v.Value()
		case *object.NilType:
			*out = ""
		default:
			return object.Errorf("emit_summary: expected string, got %s", args[0].Type())
		}
		return object.Nil
	})
}

var (
	sentenceEnd = regexp.MustCompile(`[.!?]["'”’)]*(\s+|$)`)
	mdLink      = regexp.MustCompile(`!?\[([^\]]*)\]\([^)]*\)`)
	mdMarks     = regexp.MustCompile("(\\*\\*|__|[*_`])")
	mdHeading   = regexp.MustCompile(`(?m)^\s{0,3}(#{1,6}|>)\s*`)
)

// FirstSentences returns the first n sentences of text, whitespace
// collapsed. Text without sentence punctuation is returned whole.
func FirstSentences(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	if n <= 0 || text == "" {
		return ""
	}
	ends := sentenceEnd.FindAllStringIndex(text, n)
	if len(ends) < n {
		return text
	}
	return strings.TrimSpace(text[:ends[n-1][1]])
}

// Truncate shortens text to at most max runes, cutting at a word boundary
// when one exists and appending an ellipsis.
func Truncate(text string, max int) string {
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	cut := max - 1
	for i := cut; i > max/2; i-- {
		if unicode.IsSpace(runes[i]) {
			cut = i
			break
		}
	}
	return strings.TrimRightFunc(string(runes[:cut]), func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	}) + "…"
}

// StripMarkdown removes common Markdown syntax from text.
func StripMarkdown(text string) string {
	text = mdLink.ReplaceAllString(text, "$1")
	text = mdHeading.ReplaceAllString(text, "")
	text = mdMarks.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}

// logObject provides log.Info/Warn/Error methods for Risor scripts.
type logObject struct {
	logger zerolog.Logger
}

func (l *logObject) Info(msg string) {
	l.logger.Info().Str("source", "script").Msg(msg)
}

func (l *logObject) Warn(msg string) {
	l.logger.Warn().Str("source", "script").Msg(msg)
}

func (l *logObject) Error(msg string) {
	l.logger.Error().Str("source", "script").Msg(msg)
}
