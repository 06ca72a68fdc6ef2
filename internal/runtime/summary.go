package runtime

import (
	"context"
	"fmt"
	"strings"
	"sync"

	md "github.com/JohannesKaufmann/html-to-markdown"
)

// SummaryScriptPath is the summary script's path within the scripts source.
const SummaryScriptPath = "summary.risor"

// SummaryInput is what a summary script sees of one entry.
type SummaryInput struct {
	Title     string
	EntryType string
	HTML      string
	WordCount int
}

// Summarizer runs the summary script against entries. The script source is
// loaded once and evaluated per entry.
type Summarizer struct {
	rt           *Runtime
	converter    *md.Converter
	maxSentences int
	maxChars     int

	once   sync.Once
	source string
	err    error
}

// NewSummarizer creates a Summarizer. maxSentences and maxChars are exposed
// to the script as max_sentences and max_chars.
func NewSummarizer(rt *Runtime, maxSentences, maxChars int) *Summarizer {
	if maxSentences <= 0 {
		maxSentences = 2
	}
	if maxChars <= 0 {
		maxChars = 280
	}
	return &Summarizer{
		rt:           rt,
		converter:    md.NewConverter("", true, nil),
		maxSentences: maxSentences,
		maxChars:     maxChars,
	}
}

// Markdown converts an entry body to Markdown.
func (s *Summarizer) Markdown(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", nil
	}
	out, err := s.converter.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("runtime: html to markdown: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// Summarize returns the summary the script emits for in, or "" when it
// emits none.
func (s *Summarizer) Summarize(ctx context.Context, in SummaryInput) (string, error) {
	s.once.Do(func() {
		s.source, s.err = s.rt.LoadScript(SummaryScriptPath)
	})
	if s.err != nil {
		return "", s.err
	}

	markdown, err := s.Markdown(in.HTML)
	if err != nil {
		return "", err
	}

	var summary string
	globals := map[string]any{
		"title":         in.Title,
		"entry_type":    in.EntryType,
		"markdown":      markdown,
		"word_count":    in.WordCount,
		"max_sentences": s.maxSentences,
		"max_chars":     s.maxChars,
		"emit_summary":  makeEmitFn(&summary),
	}
	if err := s.rt.eval(ctx, s.source, SummaryScriptPath, globals); err != nil {
		return "", err
	}
	return strings.TrimSpace(summary), nil
}
