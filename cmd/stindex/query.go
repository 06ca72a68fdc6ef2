package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jward/stindex"
)

var (
	flagPrimaryOnly bool
	flagRunsLimit   int
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query the outline and scripture index",
	Long:  "Run read-only queries against an imported database.",
}

func init() {
	queryCmd.AddCommand(passageCmd)
	queryCmd.AddCommand(refsCmd)
	queryCmd.AddCommand(relatedCmd)
	queryCmd.AddCommand(outlineCmd)
	queryCmd.AddCommand(linkCmd)
	queryCmd.AddCommand(runsCmd)
}

// --- Helpers ---

// openQuery opens the database and returns a QueryBuilder with a close func.
func openQuery() (*stindex.QueryBuilder, func(), error) {
	s, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	return stindex.NewQueryBuilder(s), func() { s.Close() }, nil
}

// parseIntArg parses a positional argument as a positive integer with a clear error.
func parseIntArg(value, name string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: must be a positive integer", name, value)
	}
	if n <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", name, value)
	}
	return n, nil
}

// --- passage ---

var passageCmd = &cobra.Command{
	Use:   "passage <book> <chapter> <verse>",
	Short: "Entries citing a verse",
	Long:  "Lists the doctrine entries whose citations include the verse, primary citations first. The book may be a canonical code (ROM) or an alias (Rom., Romans).",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		chapter, err := parseIntArg(args[1], "chapter")
		if err != nil {
			return outputError("passage", err)
		}
		verse, err := parseIntArg(args[2], "verse")
		if err != nil {
			return outputError("passage", err)
		}
		q, done, err := openQuery()
		if err != nil {
			return outputError("passage", err)
		}
		defer done()

		hits, err := q.EntriesForPassage(args[0], chapter, verse)
		if err != nil {
			return outputError("passage", err)
		}
		results := make([]CLIPassageHit, 0, len(hits))
		for _, h := range hits {
			results = append(results, CLIPassageHit{Entry: entryToCLI(h.Entry), Reference: refToCLI(h.Ref)})
		}
		total := len(results)
		return outputResult(CLIResult{Command: "passage", Results: results, TotalCount: &total})
	},
}

// --- refs ---

var refsCmd = &cobra.Command{
	Use:   "refs <entry-id>",
	Short: "Citations of an entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q, done, err := openQuery()
		if err != nil {
			return outputError("refs", err)
		}
		defer done()

		refs, err := q.ReferencesForEntry(args[0], flagPrimaryOnly)
		if err != nil {
			return outputError("refs", err)
		}
		results := make([]CLIReference, 0, len(refs))
		for _, r := range refs {
			results = append(results, refToCLI(r))
		}
		return outputResult(CLIResult{Command: "refs", Results: results})
	},
}

func init() {
	refsCmd.Flags().BoolVar(&flagPrimaryOnly, "primary", false, "only primary citations")
}

// --- related ---

var relatedCmd = &cobra.Command{
	Use:   "related <chapter>",
	Short: "See-also edges and tags of a chapter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		chapter, err := parseIntArg(args[0], "chapter")
		if err != nil {
			return outputError("related", err)
		}
		q, done, err := openQuery()
		if err != nil {
			return outputError("related", err)
		}
		defer done()

		rel, err := q.RelatedChapters(chapter)
		if err != nil {
			return outputError("related", err)
		}
		tags := rel.Tags
		if tags == nil {
			tags = []string{}
		}
		return outputResult(CLIResult{Command: "related", Results: CLIRelated{
			Chapter:  rel.Chapter,
			Outgoing: edgesToCLI(rel.Outgoing),
			Incoming: edgesToCLI(rel.Incoming),
			Tags:     tags,
		}})
	},
}

// --- outline ---

var outlineCmd = &cobra.Command{
	Use:   "outline",
	Short: "The outline tree",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		q, done, err := openQuery()
		if err != nil {
			return outputError("outline", err)
		}
		defer done()

		tree, err := q.Outline()
		if err != nil {
			return outputError("outline", err)
		}
		return outputResult(CLIResult{Command: "outline", Results: outlineToCLI(tree)})
	},
}

// --- link ---

var linkCmd = &cobra.Command{
	Use:   "link <[[ST:ChN:X.M]]>",
	Short: "Resolve an outline link",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q, done, err := openQuery()
		if err != nil {
			return outputError("link", err)
		}
		defer done()

		e, err := q.ResolveLink(args[0])
		if err != nil {
			return outputError("link", err)
		}
		if e == nil {
			return outputError("link", fmt.Errorf("no entry for %s", args[0]))
		}
		return outputResult(CLIResult{Command: "link", Results: entryToCLI(e)})
	},
}

// --- runs ---

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Recent import and relink runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		q, done, err := openQuery()
		if err != nil {
			return outputError("runs", err)
		}
		defer done()

		runs, err := q.RunSummaries(flagRunsLimit)
		if err != nil {
			return outputError("runs", err)
		}
		results := make([]CLIRun, 0, len(runs))
		for _, r := range runs {
			results = append(results, runToCLI(r))
		}
		return outputResult(CLIResult{Command: "runs", Results: results})
	},
}

func init() {
	runsCmd.Flags().IntVar(&flagRunsLimit, "limit", 10, "number of runs to show")
}
