package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"
)

// outputResult marshals a CLIResult to stdout in the selected format.
func outputResult(result CLIResult) error {
	if flagFormat == "text" {
		return outputResultText(os.Stdout, result)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// outputError writes an error in the selected format and returns it so RunE
// can propagate it to Cobra. In JSON mode the error is written to stdout as a
// CLIResult envelope. In text mode it goes to stderr.
func outputError(command string, err error) error {
	errorHandled = true
	if flagFormat == "text" {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return err
	}
	result := CLIResult{
		Command: command,
		Error:   err.Error(),
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
	return err
}

// formatRunSummaryText prints the counts of a run.
func formatRunSummaryText(w io.Writer, s CLIRunSummary) {
	title := "Run"
	if s.Kind != "" {
		title = strings.ToUpper(s.Kind[:1]) + s.Kind[1:]
	}
	if s.DryRun {
		title += " (dry run)"
	}
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("=", len(title)))
	if s.Kind == "import" {
		fmt.Fprintf(w, "Files: %d (%d unchanged)\n", s.Files, s.SkippedFiles)
	}
	for _, typ := range []string{"part", "chapter", "section", "subsection"} {
		if n, ok := s.Entries[typ]; ok {
			fmt.Fprintf(w, "%ss: %d\n", strings.ToUpper(typ[:1])+typ[1:], n)
		}
	}
	switch s.Kind {
	case "import":
		fmt.Fprintf(w, "Scripture refs: %d\n", s.ScriptureRefs)
		fmt.Fprintf(w, "Cross refs: %d\n", s.CrossRefs)
	case "summarize":
		fmt.Fprintf(w, "Summarized: %d\n", s.Summarized)
	default:
		fmt.Fprintf(w, "Scripture refs: %d\n", s.ScriptureRefs)
		fmt.Fprintf(w, "Relinked entries: %d\n", s.RelinkedEntries)
	}
	if s.Snapshot != "" {
		fmt.Fprintf(w, "Snapshot: %s\n", s.Snapshot)
	}
}

// formatPassageHitsText formats passage hits as aligned columns.
func formatPassageHitsText(w io.Writer, hits []CLIPassageHit) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "REF\tPRIMARY\tLINK\tTITLE")
	for _, h := range hits {
		fmt.Fprintf(tw, "%s\t%t\t%s\t%s\n", h.Reference.Ref, h.Reference.Primary, linkOrID(h.Entry), h.Entry.Title)
	}
	tw.Flush()
}

// formatReferencesText formats citations as aligned columns.
func formatReferencesText(w io.Writer, refs []CLIReference) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "REF\tPRIMARY\tSNIPPET")
	for _, r := range refs {
		fmt.Fprintf(tw, "%s\t%t\t%s\n", r.Ref, r.Primary, r.Snippet)
	}
	tw.Flush()
}

func formatRelatedText(w io.Writer, rel CLIRelated) {
	fmt.Fprintf(w, "Chapter %d\n", rel.Chapter)
	if len(rel.Tags) > 0 {
		tags := append([]string(nil), rel.Tags...)
		sort.Strings(tags)
		fmt.Fprintf(w, "Tags: %s\n", strings.Join(tags, ", "))
	}
	for _, e := range rel.Outgoing {
		fmt.Fprintf(w, "  -> %d  %s\n", e.Target, e.Note)
	}
	for _, e := range rel.Incoming {
		fmt.Fprintf(w, "  <- %d  %s\n", e.Source, e.Note)
	}
}

// formatOutlineText prints the outline as an indented tree.
func formatOutlineText(w io.Writer, nodes []CLIOutlineNode, depth int) {
	for _, n := range nodes {
		fmt.Fprintf(w, "%s%s  %s\n", strings.Repeat("  ", depth), outlineLabel(n.CLIEntry), n.Title)
		formatOutlineText(w, n.Children, depth+1)
	}
}

func outlineLabel(e CLIEntry) string {
	switch {
	case e.Type == "part" && e.Part != nil:
		return fmt.Sprintf("Part %d", *e.Part)
	case e.Type == "chapter" && e.Chapter != nil:
		return fmt.Sprintf("Chapter %d", *e.Chapter)
	case e.Type == "section" && e.Section != nil:
		return *e.Section + "."
	case e.Type == "subsection" && e.Subsection != nil:
		return fmt.Sprintf("%d.", *e.Subsection)
	default:
		return e.Type
	}
}

func formatEntryText(w io.Writer, e CLIEntry) {
	fmt.Fprintf(w, "%s  %s\n", linkOrID(e), e.Title)
	fmt.Fprintf(w, "ID: %s\n", e.ID)
	fmt.Fprintf(w, "Type: %s\n", e.Type)
	fmt.Fprintf(w, "Words: %d\n", e.WordCount)
	if e.Summary != nil {
		fmt.Fprintf(w, "Summary: %s\n", *e.Summary)
	}
}

// formatRunsText formats persisted run summaries as aligned columns.
func formatRunsText(w io.Writer, runs []CLIRun) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tSTARTED\tDURATION\tFILES\tENTRIES\tREFS\tXREFS\tRELINKED")
	for _, r := range runs {
		kind := r.Kind
		if r.DryRun {
			kind += " (dry)"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\n",
			r.ID, kind, r.StartedAt.Format(time.RFC3339), r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond),
			r.Files, r.Parts+r.Chapters+r.Sections+r.Subsections, r.ScriptureRefs, r.CrossRefs, r.RelinkedEntries)
	}
	tw.Flush()
}

func formatSnapshotsText(w io.Writer, snaps []CLISnapshot) {
	for _, s := range snaps {
		line := s.Path
		if s.Digest != "" {
			line += "  " + s.Digest
		}
		if s.Target != "" {
			line += "  -> " + s.Target
		}
		fmt.Fprintln(w, line)
	}
}

func linkOrID(e CLIEntry) string {
	if e.Link != "" {
		return e.Link
	}
	return e.ID
}

// outputResultText dispatches to the appropriate text formatter based on the
// result type.
func outputResultText(w io.Writer, result CLIResult) error {
	switch v := result.Results.(type) {
	case CLIRunSummary:
		formatRunSummaryText(w, v)
	case []CLIPassageHit:
		formatPassageHitsText(w, v)
	case []CLIReference:
		formatReferencesText(w, v)
	case CLIRelated:
		formatRelatedText(w, v)
	case []CLIOutlineNode:
		formatOutlineText(w, v, 0)
	case CLIEntry:
		formatEntryText(w, v)
	case []CLIRun:
		formatRunsText(w, v)
	case CLISnapshot:
		formatSnapshotsText(w, []CLISnapshot{v})
	case []CLISnapshot:
		formatSnapshotsText(w, v)
	case nil:
		// No output for nil results.
	default:
		return fmt.Errorf("unsupported result type for text format: %T", v)
	}

	if result.TotalCount != nil && *result.TotalCount == 0 {
		fmt.Fprintln(w, "No results")
	}
	return nil
}

// validFormats lists accepted values for --format.
var validFormats = []string{"json", "text"}

// validateFormat checks that the --format flag value is recognized.
func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validFormats, " or "))
}
