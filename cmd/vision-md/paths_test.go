// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultOCRPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"report.pdf", "report_vision.md"},
		{"doc.PDF", "doc_vision.md"},
		{"dir/sub/paper.pdf", "dir/sub/paper_vision.md"},
		{"noext", "noext_vision.md"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, defaultOCRPath(tt.in), "input %q", tt.in)
	}
}

func TestDefaultDescribePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"report.pdf", "report.md"},
		{"doc.PDF", "doc.md"},
		{"dir/sub/paper.pdf", "dir/sub/paper.md"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, defaultDescribePath(tt.in), "input %q", tt.in)
	}
}

func TestWithTrailingNewline(t *testing.T) {
	assert.Equal(t, "# Doc\n", withTrailingNewline("# Doc"))
	assert.Equal(t, "# Doc\n", withTrailingNewline("# Doc\n"))
	assert.Equal(t, "# Doc\n", withTrailingNewline("# Doc\n\n\n"))
}
