// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ocr

import (
	"context"
	"fmt"
	"image"
	"io"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/vision-md/internal/render"
	"github.com/pdiddy/vision-md/internal/vision"
	"github.com/pdiddy/vision-md/pkg/types"
)

// fakeRenderer serves small blank pages without a real PDF.
type fakeRenderer struct {
	pages int
}

func (f fakeRenderer) PageCount() int { return f.pages }

func (f fakeRenderer) RenderPage(index, dpi int) (render.PageImage, error) {
	img := image.NewRGBA(image.Rect(0, 0, 40, 60))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	return render.PageImage{Index: index, Width: 40, Height: 60, Pixels: img}, nil
}

// fakeDescriber returns canned page text, optionally failing some pages,
// after a random delay so completion order differs from page order.
type fakeDescriber struct {
	mu      sync.Mutex
	calls   int
	failFor map[int]bool // keyed by 1-based page number parsed from the prompt
	jitter  time.Duration
}

func (f *fakeDescriber) Describe(ctx context.Context, req vision.Request) (string, error) {
	if f.jitter > 0 {
		time.Sleep(time.Duration(rand.Int63n(int64(f.jitter))))
	}
	var page int
	fmt.Sscanf(req.Prompt[strings.LastIndex(req.Prompt, "(Page "):], "(Page %d)", &page)

	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.failFor[page] {
		return "", fmt.Errorf("%w: boom", vision.ErrTranscriptionFailed)
	}
	return fmt.Sprintf("Content of page %d.", page), nil
}

func testPipelineConfig() types.PipelineConfig {
	cfg := types.DefaultPipelineConfig()
	cfg.Vision.Endpoint = "https://models.example.net"
	return cfg
}

func TestRunOrdersPagesRegardlessOfCompletion(t *testing.T) {
	client := &fakeDescriber{jitter: 5 * time.Millisecond}
	cfg := testPipelineConfig()
	cfg.Workers = 8

	doc, report, err := Run(context.Background(), fakeRenderer{pages: 6}, client, cfg, Options{PageHeadings: true}, io.Discard)
	require.NoError(t, err)
	require.Len(t, report.Units, 6)

	lastIdx := -1
	for p := 1; p <= 6; p++ {
		idx := strings.Index(doc, fmt.Sprintf("## Page %d", p))
		require.GreaterOrEqual(t, idx, 0, "page %d heading missing", p)
		assert.Greater(t, idx, lastIdx, "page %d out of order", p)
		lastIdx = idx
		assert.Contains(t, doc, fmt.Sprintf("Content of page %d.", p))
	}
}

func TestRunPageRange(t *testing.T) {
	client := &fakeDescriber{}
	cfg := testPipelineConfig()

	doc, report, err := Run(context.Background(), fakeRenderer{pages: 3}, client, cfg, Options{Start: 2, End: 3, PageHeadings: true}, io.Discard)
	require.NoError(t, err)

	assert.Len(t, report.Units, 2)
	assert.Contains(t, doc, "## Page 2")
	assert.Contains(t, doc, "## Page 3")
	assert.NotContains(t, doc, "## Page 1")
	assert.NotContains(t, doc, "Content of page 1.")
	assert.Equal(t, 2, client.calls)
}

func TestRunInvalidRange(t *testing.T) {
	_, _, err := Run(context.Background(), fakeRenderer{pages: 3}, &fakeDescriber{}, testPipelineConfig(), Options{Start: 3, End: 2}, io.Discard)
	assert.ErrorIs(t, err, render.ErrInvalidRange)
}

func TestRunFailedPageGetsMarker(t *testing.T) {
	client := &fakeDescriber{failFor: map[int]bool{2: true}}

	doc, report, err := Run(context.Background(), fakeRenderer{pages: 3}, client, testPipelineConfig(), Options{PageHeadings: true}, io.Discard)
	require.NoError(t, err, "a per-page failure must not fail the run")

	assert.Contains(t, doc, "Content of page 1.")
	assert.Contains(t, doc, "Content of page 3.")
	assert.Contains(t, doc, "## Page 2")
	assert.Contains(t, doc, "_Error extracting this page.")
	assert.NotContains(t, doc, "Content of page 2.")

	require.Len(t, report.Units, 3)
	assert.Equal(t, types.UnitFailed, report.Units[1].Status)
	assert.Equal(t, 1, report.Failed())
}

func TestRunFailureMarkerKeepsHeadingWithoutHeadings(t *testing.T) {
	client := &fakeDescriber{failFor: map[int]bool{1: true}}

	doc, _, err := Run(context.Background(), fakeRenderer{pages: 2}, client, testPipelineConfig(), Options{PageHeadings: false}, io.Discard)
	require.NoError(t, err)

	// The failed page stays labeled even though headings are suppressed.
	assert.Contains(t, doc, "## Page 1")
	assert.NotContains(t, doc, "## Page 2")
}

func TestRunAbortPolicy(t *testing.T) {
	client := &fakeDescriber{failFor: map[int]bool{2: true}}
	cfg := testPipelineConfig()
	cfg.OnError = types.FailureAbort

	_, _, err := Run(context.Background(), fakeRenderer{pages: 4}, client, cfg, Options{}, io.Discard)
	require.Error(t, err)
	assert.ErrorIs(t, err, vision.ErrTranscriptionFailed)
}

func TestRunHonorsCancellation(t *testing.T) {
	client := &fakeDescriber{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := Run(ctx, fakeRenderer{pages: 4}, client, testPipelineConfig(), Options{}, io.Discard)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNormalizeImagePrefixes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase", "image: a chart", "IMAGE: a chart"},
		{"mixed case with indent", "  Image:  a logo", "IMAGE: a logo"},
		{"already canonical", "IMAGE: a photo", "IMAGE: a photo"},
		{"not a prefix", "The image: is discussed", "The image: is discussed"},
		{
			"multi-line",
			"# Title\n\nimage: chart of sales\nbody text",
			"# Title\n\nIMAGE: chart of sales\nbody text",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeImagePrefixes(tt.in))
		})
	}
}

func TestAssemble(t *testing.T) {
	sections := []Section{
		{PageNum: 1, Markdown: "First."},
		{PageNum: 2, Markdown: "Second.\n\n\n\nWith gaps."},
	}

	withHeadings := Assemble(sections, true)
	assert.Equal(t, "## Page 1\n\nFirst.\n\n## Page 2\n\nSecond.\n\nWith gaps.", withHeadings)

	plain := Assemble(sections, false)
	assert.Equal(t, "First.\n\nSecond.\n\nWith gaps.", plain)
}
