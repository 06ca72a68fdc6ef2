package source

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/jward/stindex/internal/outline"
	"github.com/jward/stindex/internal/scripture"
)

// record is one explicit paragraph of a JSON export.
type record struct {
	Text      string `json:"text"`
	HTML      string `json:"html"`
	Bold      bool   `json:"bold"`
	Italic    bool   `json:"italic"`
	Centered  bool   `json:"centered"`
	LargeFont bool   `json:"largeFont"`
}

func (r record) paragraph() (outline.Paragraph, bool) {
	text := r.Text
	if text == "" && r.HTML != "" {
		text = scripture.PlainText(r.HTML)
	}
	if text == "" {
		return outline.Paragraph{}, false
	}
	return outline.Paragraph{
		Text: text,
		HTML: r.HTML,
		Style: outline.Style{
			Bold:      r.Bold,
			Italic:    r.Italic,
			Centered:  r.Centered,
			LargeFont: r.LargeFont,
		},
	}, true
}

// JSONParser reads paragraph records. A .json file holds an array of
// records or an object with a "paragraphs" array; .jsonl holds one record
// per line.
type JSONParser struct{}

func NewJSONParser() *JSONParser { return &JSONParser{} }

func (p *JSONParser) Extensions() []string { return []string{".json", ".jsonl"} }

func (p *JSONParser) Parse(ctx context.Context, content []byte, _ Options) ([]outline.Paragraph, error) {
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) == 0 {
		return nil, nil
	}

	var records []record
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("decode records: %w", err)
		}
	case '{':
		var err error
		records, err = decodeObjectOrLines(trimmed)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("decode records: unexpected %q", trimmed[0])
	}

	out := make([]outline.Paragraph, 0, len(records))
	for i, r := range records {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if para, ok := r.paragraph(); ok {
			out = append(out, para)
		}
	}
	return out, nil
}

// decodeObjectOrLines handles both {"paragraphs": [...]} documents and
// JSON Lines input, which also starts with '{'.
func decodeObjectOrLines(content []byte) ([]record, error) {
	var doc struct {
		Paragraphs []record `json:"paragraphs"`
	}
	if err := json.Unmarshal(content, &doc); err == nil {
		if doc.Paragraphs != nil {
			return doc.Paragraphs, nil
		}
	}

	var records []record
	sc := bufio.NewScanner(bytes.NewReader(content))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		b := bytes.TrimSpace(sc.Bytes())
		if len(b) == 0 {
			continue
		}
		var r record
		if err := json.Unmarshal(b, &r); err != nil {
			return nil, fmt.Errorf("decode line %d: %w", line, err)
		}
		records = append(records, r)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan lines: %w", err)
	}
	return records, nil
}
