// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ocr

import (
	"fmt"
	"regexp"
	"strings"
)

// Section is one page's transcription with its 1-based page number.
type Section struct {
	PageNum  int
	Markdown string
	Failed   bool
}

// imagePrefixPattern matches any case variant of a leading "image:" label.
var imagePrefixPattern = regexp.MustCompile(`^\s*(?:image|Image|IMAGE)\s*:\s*`)

// NormalizeImagePrefixes rewrites any "image:" line variant the model
// produced to a canonical "IMAGE: " prefix so downstream consumers can key
// on one form.
func NormalizeImagePrefixes(md string) string {
	lines := strings.Split(md, "\n")
	for i, line := range lines {
		if loc := imagePrefixPattern.FindString(line); loc != "" {
			lines[i] = "IMAGE: " + line[len(loc):]
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Assemble concatenates page sections in the order given, which callers
// guarantee is ascending page order. With headings enabled every section is
// prefixed by a "## Page N" heading; failed sections keep the heading
// either way so missing content stays visible. Runs of blank lines are
// collapsed.
func Assemble(sections []Section, headings bool) string {
	parts := make([]string, 0, len(sections))
	for _, s := range sections {
		body := strings.TrimSpace(s.Markdown)
		if headings || s.Failed {
			body = strings.TrimSpace(fmt.Sprintf("## Page %d\n\n%s", s.PageNum, body))
		}
		parts = append(parts, body)
	}
	doc := strings.TrimSpace(strings.Join(parts, "\n\n"))
	for strings.Contains(doc, "\n\n\n") {
		doc = strings.ReplaceAll(doc, "\n\n\n", "\n\n")
	}
	return doc
}
