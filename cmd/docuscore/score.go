package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"docuscore-backend/internal/analyses"
	"docuscore-backend/internal/connectivity"
	"docuscore-backend/internal/export"
	"docuscore-backend/internal/extract"
	"docuscore-backend/internal/scoring"
)

type scoreOptions struct {
	online    bool
	exportDir string
	format    string
}

func newScoreCmd() *cobra.Command {
	var opts scoreOptions
	cmd := &cobra.Command{
		Use:   "score <file>...",
		Short: "Score local files and print the verdict",
		Long: `Score one or more .txt, .md, .json, .pdf or .docx files without the server.

Examples:
  docuscore score notes.txt
  docuscore score answer.docx --online --export ./reports --format yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(cmd.Context(), cmd.OutOrStdout(), args, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.online, "online", false, "Use the enhanced tier")
	cmd.Flags().StringVar(&opts.exportDir, "export", "", "Write a report per file into this directory")
	cmd.Flags().StringVar(&opts.format, "format", "json", "Report format (json|yaml)")
	return cmd
}

func runScore(ctx context.Context, out io.Writer, paths []string, opts scoreOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	format, err := export.ParseFormat(opts.format, export.FormatJSON)
	if err != nil {
		return err
	}
	svc := analyses.NewService(nil, nil, connectivity.Static(opts.online))

	for i, path := range paths {
		if i > 0 {
			fmt.Fprintln(out)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		name := filepath.Base(path)
		text, err := extract.ExtractTextFromBytes(ctx, data, "", name)
		if err != nil {
			return fmt.Errorf("extract %s: %w", name, err)
		}
		result, tier, err := svc.Analyze(ctx, text)
		if err != nil {
			return fmt.Errorf("score %s: %w", name, err)
		}
		printAnalysis(out, name, tier, result)

		if opts.exportDir != "" {
			target, err := export.WriteFile(opts.exportDir, name, result, format, time.Now().UTC())
			if err != nil {
				return fmt.Errorf("export %s: %w", name, err)
			}
			log.Info().Str("file", name).Str("report", target).Msg("report written")
			fmt.Fprintf(out, "report: %s\n", target)
		}
	}
	return nil
}

func printAnalysis(out io.Writer, name string, tier scoring.Tier, a scoring.Analysis) {
	fmt.Fprintf(out, "%s: %d (%s) [%s]\n", name, a.Score, a.Status, tier)
	printSection(out, "strengths", a.Strengths)
	printSection(out, "issues", a.Issues)
	printSection(out, "suggestions", a.Suggestions)
}

func printSection(out io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(out, "  %s:\n", title)
	for _, item := range items {
		fmt.Fprintf(out, "    - %s\n", strings.TrimSpace(item))
	}
}
