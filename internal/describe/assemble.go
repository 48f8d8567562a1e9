// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package describe

import "strings"

// failureMarker replaces an image whose description call failed. Never
// silently dropped: the reader sees that content is missing.
const failureMarker = "[description unavailable]"

// Assemble emits the final document. Every non-image node is written
// verbatim in original order; every image node is replaced in place by its
// description as a "> Image:" blockquote. descriptions maps node index to
// description text; an image position missing from the map, or mapped to
// an empty string, gets the labeled failure marker.
func Assemble(doc *Document, descriptions map[int]string) string {
	var sb strings.Builder
	for i, n := range doc.Nodes {
		if n.Kind != NodeImage {
			sb.WriteString(n.Raw)
			continue
		}
		desc := descriptions[i]
		if desc == "" {
			desc = failureMarker
		}
		sb.WriteString("> Image: ")
		sb.WriteString(desc)
		sb.WriteString("\n\n")
	}
	return sb.String()
}
