// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/thesis-engine/internal/draft"
	"github.com/pdiddy/thesis-engine/internal/session"
	"github.com/pdiddy/thesis-engine/pkg/types"
)

// --- titles subcommand ---

var titlesCmd = &cobra.Command{
	Use:   "titles",
	Short: "Suggest thesis titles for the session field and topic",
	Long: `Titles asks the model for three thesis titles and stores them as options.
Pick one with "session set --title N". --topic and --field update the
session before generating.`,
	RunE: runTitles,
}

func runTitles(cmd *cobra.Command, args []string) error {
	d, err := newDrafter()
	if err != nil {
		return err
	}
	return updateSession(cmd, func(ctx context.Context, s *session.Session) error {
		if cmd.Flags().Changed("field") {
			s.Field, _ = cmd.Flags().GetString("field")
		}
		if cmd.Flags().Changed("topic") {
			s.Topic, _ = cmd.Flags().GetString("topic")
		}
		titles, err := d.SuggestTitles(ctx, s)
		if err != nil {
			return err
		}
		printNumbered(titles)
		return nil
	})
}

// --- formulas subcommand ---

var formulasCmd = &cobra.Command{
	Use:   "formulas",
	Short: "Generate boolean search strings for the thesis title",
	Long: `Formulas asks the model for basic, synonym, and advanced boolean search
strings for the chosen title (or the topic when no title is set), ready to
paste into a database search.`,
	RunE: runFormulas,
}

func runFormulas(cmd *cobra.Command, args []string) error {
	d, err := newDrafter()
	if err != nil {
		return err
	}
	return updateSession(cmd, func(ctx context.Context, s *session.Session) error {
		formulas, err := d.SearchFormulas(ctx, s)
		if err != nil {
			return err
		}
		printNumbered(formulas)
		return nil
	})
}

// --- outline subcommand ---

var outlineCmd = &cobra.Command{
	Use:   "outline <chapter>",
	Short: "Generate the sub-section outline of a chapter",
	Long: `Outline asks the model for the sub-section headings of one chapter
(bab1..bab5) and stores them, replacing any previous outline.`,
	Args: cobra.ExactArgs(1),
	RunE: runOutline,
}

func runOutline(cmd *cobra.Command, args []string) error {
	ch, err := types.ParseChapter(args[0])
	if err != nil {
		return err
	}
	d, err := newDrafter()
	if err != nil {
		return err
	}
	return updateSession(cmd, func(ctx context.Context, s *session.Session) error {
		items, err := d.Outline(ctx, s, ch)
		if err != nil {
			return err
		}
		fmt.Println(ch.Name())
		printNumbered(items)
		return nil
	})
}

// --- write subcommand ---

var writeCmd = &cobra.Command{
	Use:   "write <chapter> [sub-section...]",
	Short: "Draft a sub-section of a chapter from the corpus",
	Long: `Write drafts one sub-section, grounded on the corpus passages most
relevant to it, and appends it to the chapter. With --all it drafts every
outline entry of the chapter in order, saving after each one so an
interrupted run keeps what was written.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWrite,
}

func runWrite(cmd *cobra.Command, args []string) error {
	ch, err := types.ParseChapter(args[0])
	if err != nil {
		return err
	}
	all, _ := cmd.Flags().GetBool("all")
	sub := strings.Join(args[1:], " ")
	if !all && strings.TrimSpace(sub) == "" {
		return fmt.Errorf("sub-section title required (or use --all)")
	}

	d, err := newDrafter()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	mgr, store, err := openSessions(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	s, err := mgr.Load(ctx, currentUser(cmd))
	if err != nil {
		return err
	}

	subs := []string{sub}
	if all {
		subs = s.Outlines[ch]
		if len(subs) == 0 {
			return fmt.Errorf("%s has no outline: run \"outline %s\" first", ch.Name(), ch)
		}
	}

	for i, sub := range subs {
		fmt.Fprintf(os.Stderr, "[%d/%d] %s\n", i+1, len(subs), sub)
		text, err := d.WriteSection(ctx, s, ch, sub)
		if err != nil {
			return fmt.Errorf("writing %q: %w", sub, err)
		}
		if err := mgr.Save(ctx, s); err != nil {
			return err
		}
		if !all {
			fmt.Println(text)
		}
	}
	if all {
		fmt.Printf("%s: %d characters\n", ch.Name(), len([]rune(s.Chapters[ch])))
	}
	return nil
}

// --- cite-check subcommand ---

var citeCheckCmd = &cobra.Command{
	Use:   "cite-check",
	Short: "List in-text citations with no matching search record",
	Long: `Cite-check extracts author-year citations from the written chapters and
reports those that match none of the records stored with "search
--remember". Numeric citations are flagged because the manuscript uses
author-year style.`,
	RunE: runCiteCheck,
}

func runCiteCheck(cmd *cobra.Command, args []string) error {
	s, err := viewSession(cmd)
	if err != nil {
		return err
	}
	text := draft.Manuscript(s)

	cites := draft.ExtractCitations(text)
	unmatched := draft.UnmatchedCitations(text, s.Records)
	fmt.Printf("%d citation(s), %d without a matching record\n", len(cites), len(unmatched))
	for _, c := range unmatched {
		fmt.Printf("  %s\n", c)
	}
	if draft.HasNumericCitations(text) {
		fmt.Println("warning: numeric citations such as [1] found; use author-year style")
	}
	return nil
}

func printNumbered(items []string) {
	for i, it := range items {
		fmt.Printf("%d. %s\n", i+1, it)
	}
}

func init() {
	titlesCmd.Flags().String("field", "", "set the field of study first")
	titlesCmd.Flags().String("topic", "", "set the research topic first")
	writeCmd.Flags().Bool("all", false, "write every outline entry of the chapter")

	rootCmd.AddCommand(titlesCmd)
	rootCmd.AddCommand(formulasCmd)
	rootCmd.AddCommand(outlineCmd)
	rootCmd.AddCommand(writeCmd)
	rootCmd.AddCommand(citeCheckCmd)
}
