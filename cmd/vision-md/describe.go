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

	"github.com/pdiddy/vision-md/internal/describe"
	"github.com/pdiddy/vision-md/internal/output"
	"github.com/pdiddy/vision-md/internal/vision"
)

var describeCmd = &cobra.Command{
	Use:   "describe <input.pdf>",
	Short: "Convert structurally and replace embedded images with descriptions",
	Long: `Describe converts the whole PDF to Markdown with a structural extractor,
then replaces every embedded image with a model-written description. Each
description call receives a bounded window of the text surrounding the
image so the model understands what it is looking at. All other Markdown
is emitted verbatim and in original order.`,
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
			outPath = defaultDescribePath(input)
		}
		reportPath, _ := cmd.Flags().GetString("report")

		fmt.Fprintf(os.Stderr, "extracting %s\n", input)
		doc, err := describe.FitzExtractor{}.Extract(input)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		markdown, report, err := describe.Run(ctx, doc, vision.NewClient(cfg.Vision), cfg, os.Stderr)
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

		fmt.Fprintf(os.Stderr, "wrote %s (%d images, %d failed)\n",
			outPath, len(report.Units), report.Failed())
		return nil
	},
}

// defaultDescribePath replaces the input's extension with .md, keeping the
// file alongside the input.
func defaultDescribePath(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".md"
}

// withTrailingNewline normalizes a document to exactly one trailing
// newline. Both pipelines write through this so their outputs agree.
func withTrailingNewline(markdown string) string {
	return strings.TrimRight(markdown, "\n") + "\n"
}

func init() {
	describeCmd.Flags().StringP("output", "o", "", "output .md file (default: <input stem>.md alongside the input)")

	rootCmd.AddCommand(describeCmd)
}
