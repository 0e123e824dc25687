// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/thesis-engine/internal/corpus"
	"github.com/pdiddy/thesis-engine/internal/session"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file.pdf>...",
	Short: "Extract reference PDFs into the session corpus",
	Long: `Ingest extracts plain text from each PDF, at most --max-pages pages per
document, and appends it to the session corpus tagged with the file name.
Unreadable files are skipped with a warning; the command fails only when no
file yields text.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
	maxPages, _ := cmd.Flags().GetInt("max-pages")
	ex := &corpus.Extractor{MaxPages: maxPages, Log: log}

	return updateSession(cmd, func(ctx context.Context, s *session.Session) error {
		segs, err := ex.Extract(ctx, args...)
		if err != nil {
			return err
		}
		s.Corpus.AppendAll(segs)
		fmt.Printf("Ingested %d of %d document(s); corpus is %d characters.\n",
			len(segs), len(args), s.Corpus.Len())
		return nil
	})
}

func init() {
	ingestCmd.Flags().Int("max-pages", corpus.DefaultMaxPages, "pages read per document")

	rootCmd.AddCommand(ingestCmd)
}
