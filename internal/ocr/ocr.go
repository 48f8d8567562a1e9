// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ocr implements the full-page transcription pipeline: render each
// selected page, cap its payload size, transcribe it with the vision model,
// and assemble the results in page order.
package ocr

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/pdiddy/vision-md/internal/encode"
	"github.com/pdiddy/vision-md/internal/render"
	"github.com/pdiddy/vision-md/internal/vision"
	"github.com/pdiddy/vision-md/pkg/types"
)

// Renderer provides page count and rendered pages. Satisfied by
// *render.Document; tests supply a synthetic implementation.
type Renderer interface {
	PageCount() int
	RenderPage(index, dpi int) (render.PageImage, error)
}

// Options selects pages and assembly behavior for one run.
type Options struct {
	// Start and End are 1-based inclusive page bounds; zero means the
	// document bound.
	Start, End int

	// PageHeadings inserts a "## Page N" heading before each page.
	PageHeadings bool
}

// Run executes the pipeline and returns the assembled Markdown document
// plus the per-page report. Pages are processed by a bounded worker pool
// but always assembled in ascending page order. A page failure is recorded
// as a labeled marker section unless cfg.OnError is abort, in which case
// the first failure cancels the remaining work and Run returns an error.
func Run(ctx context.Context, r Renderer, client vision.Describer, cfg types.PipelineConfig, opts Options, w io.Writer) (string, types.RunReport, error) {
	indices, err := render.NormalizeRange(opts.Start, opts.End, r.PageCount())
	if err != nil {
		return "", types.RunReport{}, err
	}
	fmt.Fprintf(w, "transcribing pages %d-%d of %d\n", indices[0]+1, indices[len(indices)-1]+1, r.PageCount())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// One result slot per page offset; each slot is written exactly once
	// by the worker that owns that offset.
	type slot struct {
		section Section
		report  types.UnitReport
		err     error
	}
	slots := make([]slot, len(indices))

	tasks := make(chan int)
	var wg sync.WaitGroup

	workers := cfg.Workers
	if workers > len(indices) {
		workers = len(indices)
	}
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for off := range tasks {
				pageNum := indices[off] + 1
				section, report, err := transcribePage(ctx, r, client, cfg, indices[off], w)
				if err != nil {
					fmt.Fprintf(w, "failed  page %d: %v\n", pageNum, err)
					report.Status = types.UnitFailed
					report.Error = err.Error()
					section = failedSection(pageNum)
					if cfg.OnError == types.FailureAbort {
						cancel()
					}
				}
				slots[off] = slot{section: section, report: report, err: err}
			}
		}()
	}

	for off := range indices {
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
		// Either a unit failure under the abort policy or an external
		// cancel; later slots may never have been processed.
		if cfg.OnError == types.FailureAbort {
			for off := range slots {
				if slots[off].err != nil {
					return "", types.RunReport{}, fmt.Errorf("page %d: %w", indices[off]+1, slots[off].err)
				}
			}
		}
		return "", types.RunReport{}, err
	}

	report := types.RunReport{Pipeline: "ocr", Units: make([]types.UnitReport, 0, len(indices))}
	sections := make([]Section, 0, len(indices))
	for off := range slots {
		sections = append(sections, slots[off].section)
		report.Units = append(report.Units, slots[off].report)
	}

	return Assemble(sections, opts.PageHeadings), report, nil
}

// transcribePage renders, encodes, and transcribes one page.
func transcribePage(ctx context.Context, r Renderer, client vision.Describer, cfg types.PipelineConfig, index int, w io.Writer) (Section, types.UnitReport, error) {
	pageNum := index + 1
	report := types.UnitReport{Index: pageNum, Status: types.UnitDone}

	img, err := r.RenderPage(index, cfg.Render.DPI)
	if err != nil {
		return Section{}, report, err
	}
	fmt.Fprintf(w, "page %d: rendered %dx%d px\n", pageNum, img.Width, img.Height)

	payload, err := encode.Image(img.Pixels, cfg.Encode)
	if err != nil {
		return Section{}, report, err
	}
	report.PayloadBytes = len(payload.Data)
	report.Quality = payload.Quality
	report.Width = payload.Width
	report.Height = payload.Height
	report.Oversize = payload.Oversize
	if payload.Oversize {
		fmt.Fprintf(w, "warning: page %d payload is %d bytes, over the %d byte ceiling at floor settings; sending best effort\n",
			pageNum, len(payload.Data), cfg.Encode.MaxBytes)
	}

	text, err := client.Describe(ctx, vision.Request{
		ImageData: payload.Data,
		MIME:      payload.MIME,
		System:    vision.TranscribeSystem,
		Prompt:    vision.TranscribePrompt(pageNum),
		MaxTokens: cfg.Vision.PageTokens,
	})
	if err != nil {
		return Section{}, report, err
	}
	fmt.Fprintf(w, "page %d: transcribed\n", pageNum)

	return Section{PageNum: pageNum, Markdown: NormalizeImagePrefixes(text)}, report, nil
}

// failedSection is the labeled marker for a page whose transcription
// failed. It keeps the page heading even when headings are suppressed so
// the gap stays visible downstream.
func failedSection(pageNum int) Section {
	return Section{
		PageNum:  pageNum,
		Markdown: "_Error extracting this page. Try lowering DPI or tokens and re-run._",
		Failed:   true,
	}
}
