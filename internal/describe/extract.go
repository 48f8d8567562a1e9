// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package describe

import (
	"fmt"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"

	"github.com/pdiddy/vision-md/internal/render"
)

// imageDataURIPattern matches Markdown images whose target is an embedded
// base64 data URI: ![alt](data:image/<type>;base64,<data>).
var imageDataURIPattern = regexp.MustCompile(
	`!\[[^\]]*\]\((data:image/([a-zA-Z0-9.+-]+);base64,([A-Za-z0-9+/=\r\n]+))\)`)

// Extractor converts a whole PDF into an ordered Document with embedded
// images preserved as placeholder nodes. Implemented by FitzExtractor;
// tests construct Documents directly.
type Extractor interface {
	Extract(path string) (*Document, error)
}

// FitzExtractor extracts page content as HTML via MuPDF and converts it to
// Markdown, keeping every embedded raster image inline as a data URI so
// reading order and image positions survive.
type FitzExtractor struct{}

// Extract implements Extractor.
func (FitzExtractor) Extract(path string) (*Document, error) {
	doc, err := render.Open(path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	conv := md.NewConverter("", true, nil)

	var sb strings.Builder
	for i := range doc.PageCount() {
		html, err := doc.HTML(i)
		if err != nil {
			return nil, fmt.Errorf("extracting page %d: %w", i+1, err)
		}
		text, err := conv.ConvertString(html)
		if err != nil {
			return nil, fmt.Errorf("converting page %d to markdown: %w", i+1, err)
		}
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}
	return Parse(sb.String()), nil
}
