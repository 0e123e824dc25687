// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/thesis-engine/internal/search"
	"github.com/pdiddy/thesis-engine/internal/session"
	"github.com/pdiddy/thesis-engine/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [keyword...]",
	Short: "Search PubMed and Crossref for references",
	Long: `Search queries Crossref, and PubMed first for health and medical fields,
for journal articles matching the keyword. Results are deduplicated by title,
filtered by publication year, and capped at --limit.

Use --output to save the results to a YAML file and --from to re-render a
saved file in another format without querying the providers again.
--remember stores the records in the session for citation checks.`,
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	from, _ := cmd.Flags().GetString("from")

	var out search.SearchOutput
	if from != "" {
		rf, err := search.ReadResultFile(from)
		if err != nil {
			return err
		}
		out = rf.Output()
	} else {
		q := queryFromFlags(cmd, args)
		res, err := search.New(cfg.Search, log).Run(cmd.Context(), q)
		if err != nil {
			return err
		}
		out = res
		for _, pe := range out.ProviderErrors {
			log.WithField("provider_error", pe).Warn("provider returned no results")
		}
	}

	if path, _ := cmd.Flags().GetString("output"); path != "" {
		if err := search.WriteResultFile(path, out); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Results written to %s\n", path)
	}

	if remember, _ := cmd.Flags().GetBool("remember"); remember {
		err := updateSession(cmd, func(_ context.Context, s *session.Session) error {
			s.Records = out.Records
			if s.Topic == "" {
				s.Topic = out.Query.Keyword
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	return writeSearchOutput(out, format, os.Stdout)
}

func queryFromFlags(cmd *cobra.Command, args []string) types.SearchQuery {
	field, _ := cmd.Flags().GetString("field")
	limit, _ := cmd.Flags().GetInt("limit")
	maxAge, _ := cmd.Flags().GetInt("max-age")
	oa, _ := cmd.Flags().GetBool("open-access")
	fulltext, _ := cmd.Flags().GetBool("fulltext")

	return types.SearchQuery{
		Field:          field,
		Keyword:        strings.Join(args, " "),
		Limit:          limit,
		MaxAgeYears:    maxAge,
		OpenAccessOnly: oa,
		FullTextOnly:   fulltext,
	}
}

func writeSearchOutput(out search.SearchOutput, format string, w io.Writer) error {
	switch strings.ToLower(format) {
	case "", "table":
		search.FormatTable(out, w)
		return nil
	case "json":
		return search.FormatJSON(out, w)
	case "csv":
		return search.FormatCSV(out, w)
	case "bibtex", "bib":
		return search.FormatBibTeX(out, w)
	case "csl", "csl-json":
		return search.FormatCSL(out, w)
	default:
		return fmt.Errorf("unknown format %q: use table, json, csv, bibtex, or csl", format)
	}
}

func init() {
	searchCmd.Flags().String("field", session.DefaultField, "field of study (health fields also query PubMed)")
	searchCmd.Flags().Int("limit", types.DefaultSearchLimit, "maximum number of results")
	searchCmd.Flags().Int("max-age", types.DefaultMaxAgeYears, "only include works published in the last N years")
	searchCmd.Flags().Bool("open-access", false, "only include records with a license")
	searchCmd.Flags().Bool("fulltext", false, "only include records with a full-text link")
	searchCmd.Flags().String("format", "table", "output format: table, json, csv, bibtex, csl")
	searchCmd.Flags().StringP("output", "o", "", "save results to a YAML result file")
	searchCmd.Flags().String("from", "", "render a saved result file instead of searching")
	searchCmd.Flags().Bool("remember", false, "store the records in the session")

	rootCmd.AddCommand(searchCmd)
}
