// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestPDF assembles a minimal valid PDF with the given number of
// blank letter-size pages, computing the xref offsets as it goes.
func writeTestPDF(t *testing.T, pages int) string {
	t.Helper()

	var kids []string
	for i := 0; i < pages; i++ {
		kids = append(kids, fmt.Sprintf("%d 0 R", i+3))
	}

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), pages),
	}
	for i := 0; i < pages; i++ {
		objects = append(objects, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>")
	}

	var sb strings.Builder
	sb.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects)+1)
	for i, obj := range objects {
		offsets[i+1] = sb.Len()
		fmt.Fprintf(&sb, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xrefStart := sb.Len()
	fmt.Fprintf(&sb, "xref\n0 %d\n", len(objects)+1)
	sb.WriteString("0000000000 65535 f \n")
	for i := 1; i <= len(objects); i++ {
		fmt.Fprintf(&sb, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&sb, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xrefStart)

	path := filepath.Join(t.TempDir(), "test.pdf")
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0o644))
	return path
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.pdf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening PDF")
}

func TestDocumentPageCount(t *testing.T) {
	doc, err := Open(writeTestPDF(t, 3))
	require.NoError(t, err)
	defer doc.Close()

	assert.Equal(t, 3, doc.PageCount())
}

func TestRenderPage(t *testing.T) {
	doc, err := Open(writeTestPDF(t, 2))
	require.NoError(t, err)
	defer doc.Close()

	img, err := doc.RenderPage(1, 72)
	require.NoError(t, err)

	assert.Equal(t, 1, img.Index)
	// Letter at 72 DPI is 612x792 points rendered 1:1.
	assert.InDelta(t, 612, img.Width, 2)
	assert.InDelta(t, 792, img.Height, 2)
	require.NotNil(t, img.Pixels)
}

func TestRenderPageOutOfRange(t *testing.T) {
	doc, err := Open(writeTestPDF(t, 2))
	require.NoError(t, err)
	defer doc.Close()

	for _, idx := range []int{-1, 2, 99} {
		_, err := doc.RenderPage(idx, 72)
		assert.ErrorIs(t, err, ErrOutOfRange, "index %d", idx)
	}
}

func TestNormalizeRange(t *testing.T) {
	tests := []struct {
		name       string
		start, end int
		total      int
		want       []int
		wantErr    error
	}{
		{"whole document when unset", 0, 0, 3, []int{0, 1, 2}, nil},
		{"inclusive subrange", 2, 3, 3, []int{1, 2}, nil},
		{"single page", 2, 2, 3, []int{1}, nil},
		{"end clamped to total", 2, 99, 3, []int{1, 2}, nil},
		{"open end", 2, 0, 4, []int{1, 2, 3}, nil},
		{"start past end", 3, 2, 5, nil, ErrInvalidRange},
		{"start past total", 7, 0, 3, nil, ErrInvalidRange},
		{"empty document", 0, 0, 0, nil, ErrInvalidRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeRange(tt.start, tt.end, tt.total)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
