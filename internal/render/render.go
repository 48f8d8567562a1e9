// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render rasterizes PDF pages to bitmaps via MuPDF.
package render

import (
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/gen2brain/go-fitz"
)

var (
	// ErrOutOfRange reports a page index outside the document.
	ErrOutOfRange = errors.New("page index out of range")

	// ErrInvalidRange reports a page selection that matches no pages.
	ErrInvalidRange = errors.New("invalid page range")
)

// PageImage is one rendered page bitmap. It is handed to the encoder and
// not retained afterwards.
type PageImage struct {
	// Index is the 0-based source page index.
	Index int

	// Width and Height are the rendered pixel dimensions.
	Width, Height int

	// Pixels is the raw bitmap.
	Pixels *image.RGBA
}

// Document wraps an open PDF. Rendering methods serialize internally
// (go-fitz holds a lock per document), so a Document may be shared by
// concurrent workers.
type Document struct {
	doc  *fitz.Document
	path string
}

// Open opens the PDF at path. A missing or unreadable file is reported
// before MuPDF is involved so the caller gets a plain file error.
func Open(path string) (*Document, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("opening PDF %s: %w", path, err)
	}
	return &Document{doc: doc, path: path}, nil
}

// Close releases the underlying MuPDF document.
func (d *Document) Close() error {
	return d.doc.Close()
}

// PageCount returns the number of pages in the document.
func (d *Document) PageCount() int {
	return d.doc.NumPage()
}

// RenderPage rasterizes the page at the given 0-based index at dpi dots
// per inch.
func (d *Document) RenderPage(index, dpi int) (PageImage, error) {
	if index < 0 || index >= d.doc.NumPage() {
		return PageImage{}, fmt.Errorf("%w: page %d of %d", ErrOutOfRange, index, d.doc.NumPage())
	}
	img, err := d.doc.ImageDPI(index, float64(dpi))
	if err != nil {
		return PageImage{}, fmt.Errorf("rendering page %d: %w", index+1, err)
	}
	b := img.Bounds()
	return PageImage{
		Index:  index,
		Width:  b.Dx(),
		Height: b.Dy(),
		Pixels: img,
	}, nil
}

// HTML returns the page's content as HTML with embedded images, in
// reading order. Used by the structural extractor.
func (d *Document) HTML(index int) (string, error) {
	if index < 0 || index >= d.doc.NumPage() {
		return "", fmt.Errorf("%w: page %d of %d", ErrOutOfRange, index, d.doc.NumPage())
	}
	return d.doc.HTML(index, true)
}

// NormalizeRange converts a 1-based inclusive page selection into 0-based
// page indices. A zero start or end means "unset" and falls back to the
// document bound; bounds beyond the document are clamped. A selection that
// matches no pages is ErrInvalidRange.
func NormalizeRange(start, end, total int) ([]int, error) {
	s := 1
	if start > 0 {
		s = start
	}
	e := total
	if end > 0 && end < total {
		e = end
	}
	if total == 0 || s > e {
		return nil, fmt.Errorf("%w: start=%d end=%d (total=%d)", ErrInvalidRange, s, e, total)
	}
	indices := make([]int, 0, e-s+1)
	for i := s - 1; i < e; i++ {
		indices = append(indices, i)
	}
	return indices, nil
}
