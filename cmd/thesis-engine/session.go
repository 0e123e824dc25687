// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/thesis-engine/internal/session"
	"github.com/pdiddy/thesis-engine/pkg/types"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect and edit the thesis session (show, set, reset)",
	Long: `Session manages the per-user workspace that holds the field, topic,
title, outlines, written chapters, and the reference corpus.`,
}

// --- show subcommand ---

var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print a summary of the session",
	RunE:  runSessionShow,
}

func runSessionShow(cmd *cobra.Command, args []string) error {
	s, err := viewSession(cmd)
	if err != nil {
		return err
	}
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}
	printSession(os.Stdout, s)
	return nil
}

func printSession(w io.Writer, s *session.Session) {
	user := s.User
	if user == "" {
		user = "default"
	}
	fmt.Fprintf(w, "User:     %s\n", user)
	fmt.Fprintf(w, "Field:    %s\n", s.Field)
	fmt.Fprintf(w, "Topic:    %s\n", s.Topic)
	fmt.Fprintf(w, "Title:    %s\n", s.Title)
	fmt.Fprintf(w, "Corpus:   %d characters from %d document(s)\n", s.Corpus.Len(), len(s.Corpus.Documents()))
	fmt.Fprintf(w, "Records:  %d\n", len(s.Records))
	if len(s.TitleOptions) > 0 {
		fmt.Fprintln(w, "\nTitle options:")
		for i, t := range s.TitleOptions {
			fmt.Fprintf(w, "  %d. %s\n", i+1, t)
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-6s  %-22s  %-8s  %s\n", "Ch", "Name", "Outline", "Written")
	fmt.Fprintln(w, strings.Repeat("-", 52))
	for _, ch := range types.Chapters {
		fmt.Fprintf(w, "%-6s  %-22s  %-8d  %d chars\n",
			ch, ch.Name(), len(s.Outlines[ch]), len([]rune(s.Chapters[ch])))
	}
}

// --- set subcommand ---

var sessionSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set the field, topic, title, or research data",
	Long: `Set updates session inputs. --title also accepts the number of one of the
suggested title options. --data-file reads research data from a file ("-"
for stdin).`,
	RunE: runSessionSet,
}

func runSessionSet(cmd *cobra.Command, args []string) error {
	return updateSession(cmd, func(_ context.Context, s *session.Session) error {
		flags := cmd.Flags()
		if flags.Changed("field") {
			s.Field, _ = flags.GetString("field")
		}
		if flags.Changed("topic") {
			s.Topic, _ = flags.GetString("topic")
		}
		if flags.Changed("title") {
			t, _ := flags.GetString("title")
			s.SetTitle(resolveTitle(s, t))
		}
		if flags.Changed("data") {
			s.ResearchData, _ = flags.GetString("data")
		}
		if flags.Changed("data-file") {
			path, _ := flags.GetString("data-file")
			data, err := readInput(path)
			if err != nil {
				return err
			}
			s.ResearchData = data
		}
		printSession(os.Stdout, s)
		return nil
	})
}

// resolveTitle maps "2" to the second title option; anything else is
// taken literally.
func resolveTitle(s *session.Session, t string) string {
	var n int
	if _, err := fmt.Sscanf(t, "%d", &n); err == nil && fmt.Sprint(n) == strings.TrimSpace(t) {
		if n >= 1 && n <= len(s.TitleOptions) {
			return s.TitleOptions[n-1]
		}
	}
	return t
}

func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

// --- reset subcommand ---

var sessionResetCmd = &cobra.Command{
	Use:   "reset [chapter]",
	Short: "Clear the session, or one chapter's outline and text",
	Long: `Reset with no argument deletes the whole session, corpus included. With a
chapter (bab1..bab5) it clears only that chapter's outline and text.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSessionReset,
}

func runSessionReset(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		ch, err := types.ParseChapter(args[0])
		if err != nil {
			return err
		}
		return updateSession(cmd, func(_ context.Context, s *session.Session) error {
			s.ResetChapter(ch)
			fmt.Printf("Cleared %s.\n", ch.Name())
			return nil
		})
	}

	ctx := cmd.Context()
	mgr, store, err := openSessions(ctx)
	if err != nil {
		return err
	}
	defer store.Close()
	if _, err := mgr.Reset(ctx, currentUser(cmd)); err != nil {
		return err
	}
	fmt.Println("Session cleared.")
	return nil
}

func init() {
	sessionShowCmd.Flags().Bool("json", false, "print the full session as JSON")

	sessionSetCmd.Flags().String("field", "", "field of study ("+strings.Join(types.Fields, ", ")+")")
	sessionSetCmd.Flags().String("topic", "", "research topic")
	sessionSetCmd.Flags().String("title", "", "thesis title, or the number of a suggested option")
	sessionSetCmd.Flags().String("data", "", "research data for the results chapter")
	sessionSetCmd.Flags().String("data-file", "", "read research data from a file (- for stdin)")

	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionSetCmd)
	sessionCmd.AddCommand(sessionResetCmd)
	rootCmd.AddCommand(sessionCmd)
}
