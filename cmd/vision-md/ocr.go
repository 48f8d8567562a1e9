// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/vision-md/internal/ocr"
	"github.com/pdiddy/vision-md/internal/output"
	"github.com/pdiddy/vision-md/internal/render"
	"github.com/pdiddy/vision-md/internal/vision"
)

var ocrCmd = &cobra.Command{
	Use:   "ocr <input.pdf>",
	Short: "Transcribe every page with the vision model",
	Long: `Ocr renders each selected page to a size-capped image and has the vision
model transcribe it verbatim as Markdown, inserting IMAGE: lines for
figures and charts. Pages are processed concurrently but the output is
always assembled in ascending page order. A page that fails after retries
is recorded as a labeled marker section; the run still succeeds.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := args[0]
		if _, err := os.Stat(input); err != nil {
			return fmt.Errorf("input PDF: %w", err)
		}

		cfg, err := pipelineConfig(cmd)
		if err != nil {
			return err
		}

		outPath, _ := cmd.Flags().GetString("output")
		if outPath == "" {
			outPath = defaultOCRPath(input)
		}
		start, _ := cmd.Flags().GetInt("start")
		end, _ := cmd.Flags().GetInt("end")
		noHeadings, _ := cmd.Flags().GetBool("no-page-headings")
		reportPath, _ := cmd.Flags().GetString("report")

		doc, err := render.Open(input)
		if err != nil {
			return err
		}
		defer doc.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		markdown, report, err := ocr.Run(ctx, doc, vision.NewClient(cfg.Vision), cfg, ocr.Options{
			Start:        start,
			End:          end,
			PageHeadings: !noHeadings,
		}, os.Stderr)
		if err != nil {
			return err
		}

		if err := output.WriteAtomic(outPath, []byte(withTrailingNewline(markdown))); err != nil {
			return err
		}

		report.Input = input
		report.Output = outPath
		if reportPath != "" {
			if err := writeReport(reportPath, report); err != nil {
				return err
			}
		}

		fmt.Fprintf(os.Stderr, "wrote %s (%d pages, %d failed, %d oversize)\n",
			outPath, len(report.Units), report.Failed(), report.Oversized())
		return nil
	},
}

// defaultOCRPath replaces the input's extension, whatever its case, with
// the _vision.md suffix.
func defaultOCRPath(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + "_vision.md"
}

func init() {
	ocrCmd.Flags().StringP("output", "o", "", "output .md file (default: <input stem>_vision.md)")
	ocrCmd.Flags().Int("start", 0, "start page (1-based, inclusive)")
	ocrCmd.Flags().Int("end", 0, "end page (1-based, inclusive)")
	ocrCmd.Flags().Bool("no-page-headings", false, "do not add '## Page N' headings")

	rootCmd.AddCommand(ocrCmd)
}
