// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/thesis-engine/internal/corpus"
	"github.com/pdiddy/thesis-engine/internal/retrieve"
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve [query...]",
	Short: "Show the corpus passages that best match a query",
	Long: `Retrieve chunks the session corpus, or the PDFs given with --pdf, into
fixed-width passages, scores them by keyword overlap with the query, and
prints the best --top-k passages. This is the context a written section is
grounded on.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRetrieve,
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	topK, _ := cmd.Flags().GetInt("top-k")
	pdfs, _ := cmd.Flags().GetStringSlice("pdf")

	var text string
	if len(pdfs) > 0 {
		ex := &corpus.Extractor{Log: log}
		segs, err := ex.Extract(cmd.Context(), pdfs...)
		if err != nil {
			return err
		}
		var c corpus.Corpus
		c.AppendAll(segs)
		text = c.Text()
	} else {
		s, err := viewSession(cmd)
		if err != nil {
			return err
		}
		text = s.Corpus.Text()
	}

	passages := retrieve.Retrieve(strings.Join(args, " "), text, topK)
	if passages == "" {
		fmt.Fprintln(os.Stderr, "Corpus is empty or too short; ingest reference PDFs first.")
		return nil
	}
	fmt.Println(passages)
	return nil
}

func init() {
	retrieveCmd.Flags().Int("top-k", retrieve.DefaultTopK, "number of passages to return")
	retrieveCmd.Flags().StringSlice("pdf", nil, "search these PDFs instead of the session corpus")

	rootCmd.AddCommand(retrieveCmd)
}
