// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/thesis-engine/internal/acquire"
	"github.com/pdiddy/thesis-engine/internal/corpus"
	"github.com/pdiddy/thesis-engine/internal/httputil"
	"github.com/pdiddy/thesis-engine/internal/session"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [doi|url...]",
	Short: "Download open-access PDFs into the session corpus",
	Long: `Fetch resolves each DOI to an open-access PDF through OpenAlex (falling
back to the DOI resolver), downloads it, and appends its text to the session
corpus. URLs are downloaded as given. --records fetches every record stored
with "search --remember". Downloads are kept in --dir and reused.`,
	RunE: runFetch,
}

func runFetch(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("dir")
	fromRecords, _ := cmd.Flags().GetBool("records")
	maxPages, _ := cmd.Flags().GetInt("max-pages")

	f := &acquire.Fetcher{
		Client: &httputil.Client{
			Limiter:    httputil.NewLimiter(2),
			MaxRetries: cfg.Search.MaxRetries,
			UserAgent:  cfg.Search.UserAgent,
			Log:        log,
		},
		Extractor: &corpus.Extractor{MaxPages: maxPages, Log: log},
		Dir:       dir,
		Mailto:    cfg.Search.Email,
		Log:       log,
	}

	return updateSession(cmd, func(ctx context.Context, s *session.Session) error {
		ids := args
		if fromRecords {
			ids = append(ids, acquire.Identifiers(s.Records)...)
		}
		if len(ids) == 0 {
			return fmt.Errorf("nothing to fetch: give DOIs or URLs, or use --records after \"search --remember\"")
		}

		res := f.FetchAll(ctx, ids)
		for _, msg := range res.Failures {
			fmt.Printf("failed:  %s\n", msg)
		}
		s.Corpus.AppendAll(res.Segments)
		fmt.Printf("\nFetch summary: %d downloaded, %d cached, %d failed (total: %d); corpus is %d characters\n",
			res.Downloaded, res.Cached, res.Failed, res.Total(), s.Corpus.Len())
		if len(res.Segments) == 0 {
			return fmt.Errorf("no document could be fetched")
		}
		return nil
	})
}

func init() {
	fetchCmd.Flags().String("dir", "references", "directory that keeps downloaded PDFs (empty keeps none)")
	fetchCmd.Flags().Bool("records", false, "fetch the records stored in the session")
	fetchCmd.Flags().Int("max-pages", corpus.DefaultMaxPages, "pages read per document")

	rootCmd.AddCommand(fetchCmd)
}
