// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package describe

import (
	"regexp"
	"strings"

	"github.com/pdiddy/vision-md/pkg/types"
)

// ImageContext is the bounded text surrounding one image placeholder. It
// is a pure function of the document, the position, and the caps: building
// it twice yields identical windows.
type ImageContext struct {
	// Position is the placeholder's node index in the document.
	Position int

	// Before is the preceding plain-text window.
	Before string

	// After is the following plain-text window.
	After string
}

// Prompt renders the context for the model, marking where the image sat
// between the two windows.
func (c ImageContext) Prompt() string {
	return strings.TrimSpace(c.Before + " [IMAGE LOCATION] " + c.After)
}

var (
	// imageRefPattern matches plain Markdown image references left in
	// text blocks (embedded data URIs are already separate nodes).
	imageRefPattern = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)

	whitespaceRun = regexp.MustCompile(`\s+`)
)

// BuildContext returns the bounded context for the image node at pos.
// Windows are measured in runes of rendered plain text; image nodes
// contribute nothing. When both windows together exceed the combined cap
// the preceding window is truncated first: the text after an image tends
// to caption it, so recency of the following window wins.
func BuildContext(doc *Document, pos int, cfg types.ContextConfig) ImageContext {
	before := gatherBack(doc.Nodes[:pos], cfg.BeforeChars)
	after := gatherForward(doc.Nodes[pos+1:], cfg.AfterChars)

	br, ar := []rune(before), []rune(after)
	if len(ar) > cfg.MaxChars {
		ar = ar[:cfg.MaxChars]
	}
	if len(br)+len(ar) > cfg.MaxChars {
		keep := cfg.MaxChars - len(ar)
		br = br[len(br)-keep:]
	}

	return ImageContext{Position: pos, Before: string(br), After: string(ar)}
}

// gatherBack accumulates plain text from nodes nearest-first until the cap
// is covered and returns the trailing cap runes in document order.
func gatherBack(nodes []Node, limit int) string {
	var parts []string
	size := 0
	for i := len(nodes) - 1; i >= 0 && size < limit; i-- {
		t := plainText(nodes[i])
		if t == "" {
			continue
		}
		parts = append([]string{t}, parts...)
		size += len([]rune(t)) + 1
	}
	r := []rune(strings.Join(parts, " "))
	if len(r) > limit {
		r = r[len(r)-limit:]
	}
	return string(r)
}

// gatherForward accumulates plain text from nodes in order until the cap
// is covered and returns the leading cap runes.
func gatherForward(nodes []Node, limit int) string {
	var parts []string
	size := 0
	for _, n := range nodes {
		if size >= limit {
			break
		}
		t := plainText(n)
		if t == "" {
			continue
		}
		parts = append(parts, t)
		size += len([]rune(t)) + 1
	}
	r := []rune(strings.Join(parts, " "))
	if len(r) > limit {
		r = r[:limit]
	}
	return string(r)
}

// plainText renders one node as compact context text. Image nodes are
// skipped entirely; plain image references inside text are collapsed to a
// short placeholder so no markup leaks into the prompt.
func plainText(n Node) string {
	if n.Kind == NodeImage {
		return ""
	}
	t := imageRefPattern.ReplaceAllString(n.Raw, "[ImageRef]")
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(t, " "))
}
