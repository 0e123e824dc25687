// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/thesis-engine/internal/draft"
	"github.com/pdiddy/thesis-engine/internal/export"
	"github.com/pdiddy/thesis-engine/pkg/types"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the manuscript or one chapter as docx, pdf, or md",
	Long: `Export renders the drafted thesis, or a single chapter with --chapter,
to a document. Word output uses Times New Roman 12pt, 1.5 line spacing, and
justified paragraphs.`,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	formatName, _ := cmd.Flags().GetString("format")
	chapter, _ := cmd.Flags().GetString("chapter")
	out, _ := cmd.Flags().GetString("output")

	f, err := export.ParseFormat(formatName)
	if err != nil {
		return err
	}

	s, err := viewSession(cmd)
	if err != nil {
		return err
	}

	text := draft.Manuscript(s)
	name := "Tesis_Lengkap"
	if chapter != "" {
		ch, err := types.ParseChapter(chapter)
		if err != nil {
			return err
		}
		if strings.TrimSpace(s.Chapters[ch]) == "" {
			return fmt.Errorf("%s has no text yet", ch.Name())
		}
		text = draft.ChapterDocument(s, ch)
		name = strings.ToUpper(string(ch))
	} else if strings.TrimSpace(text) == "" {
		return fmt.Errorf("nothing to export: no title or chapters in the session")
	}

	data, err := export.Export(f, text)
	if err != nil {
		return err
	}
	if out == "" {
		out = name + f.Extension()
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %s (%d bytes)\n", out, len(data))
	return nil
}

func init() {
	exportCmd.Flags().String("format", string(export.FormatDOCX), "document format: docx, pdf, md")
	exportCmd.Flags().String("chapter", "", "export only this chapter (bab1..bab5)")
	exportCmd.Flags().StringP("output", "o", "", "output path (default: Tesis_Lengkap.<ext> or BABn.<ext>)")

	rootCmd.AddCommand(exportCmd)
}
