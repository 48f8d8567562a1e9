// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package describe

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/pdiddy/vision-md/internal/vision"
	"github.com/pdiddy/vision-md/pkg/types"
)

// Run describes every embedded image in doc and returns the assembled
// Markdown plus the per-image report. Images are processed by a bounded
// worker pool; substitution happens in one sequential pass afterwards, so
// output order never depends on completion order. Under the default skip
// policy a failed description becomes a labeled marker; under abort the
// first failure cancels the run.
func Run(ctx context.Context, doc *Document, client vision.Describer, cfg types.PipelineConfig, w io.Writer) (string, types.RunReport, error) {
	positions := doc.Images()
	report := types.RunReport{Pipeline: "describe"}
	if len(positions) == 0 {
		fmt.Fprintln(w, "no embedded images found")
		return Assemble(doc, nil), report, nil
	}
	fmt.Fprintf(w, "describing %d embedded image(s)\n", len(positions))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type slot struct {
		text string
		err  error
	}
	slots := make([]slot, len(positions))

	tasks := make(chan int)
	var wg sync.WaitGroup

	workers := cfg.Workers
	if workers > len(positions) {
		workers = len(positions)
	}
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for off := range tasks {
				text, err := describeImage(ctx, doc, client, cfg, positions[off])
				if err != nil {
					fmt.Fprintf(w, "failed  image %d: %v\n", off+1, err)
					if cfg.OnError == types.FailureAbort {
						cancel()
					}
				} else {
					fmt.Fprintf(w, "image %d/%d described\n", off+1, len(positions))
				}
				slots[off] = slot{text: text, err: err}
			}
		}()
	}

	for off := range positions {
		select {
		case tasks <- off:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(tasks)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		if cfg.OnError == types.FailureAbort {
			for off := range slots {
				if slots[off].err != nil {
					return "", types.RunReport{}, fmt.Errorf("image %d: %w", off+1, slots[off].err)
				}
			}
		}
		return "", types.RunReport{}, err
	}

	descriptions := make(map[int]string, len(positions))
	report.Units = make([]types.UnitReport, 0, len(positions))
	for off, pos := range positions {
		unit := types.UnitReport{
			Index:        off,
			Status:       types.UnitDone,
			PayloadBytes: len(doc.Nodes[pos].ImageData),
		}
		if slots[off].err != nil {
			unit.Status = types.UnitFailed
			unit.Error = slots[off].err.Error()
		} else {
			descriptions[pos] = slots[off].text
		}
		report.Units = append(report.Units, unit)
	}

	return Assemble(doc, descriptions), report, nil
}

// describeImage resolves the context window for one placeholder and asks
// the model for a description.
func describeImage(ctx context.Context, doc *Document, client vision.Describer, cfg types.PipelineConfig, pos int) (string, error) {
	ic := BuildContext(doc, pos, cfg.Context)
	node := doc.Nodes[pos]
	return client.Describe(ctx, vision.Request{
		ImageData: node.ImageData,
		MIME:      node.ImageMIME,
		System:    vision.DescribeSystem,
		Prompt:    vision.DescribePrompt(ic.Prompt()),
		MaxTokens: cfg.Vision.ImageTokens,
	})
}
