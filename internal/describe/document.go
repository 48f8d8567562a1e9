// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package describe implements the hybrid pipeline: structural PDF
// extraction, bounded context windows around each embedded image, and
// in-place substitution of images by model descriptions.
package describe

import (
	"encoding/base64"
	"strings"
)

// NodeKind tags one content node in an extracted document.
type NodeKind string

const (
	NodeText    NodeKind = "text"
	NodeHeading NodeKind = "heading"
	NodeTable   NodeKind = "table"
	NodeImage   NodeKind = "image"
)

// Node is one unit of extracted content. Non-image nodes carry their exact
// source Markdown in Raw; image nodes carry the decoded embedded bytes.
// Only image nodes are ever rewritten during assembly.
type Node struct {
	Kind NodeKind

	// Raw is the verbatim Markdown for non-image nodes, including any
	// trailing separators, so concatenating non-image Raw around the
	// image positions reproduces the source byte for byte.
	Raw string

	// ImageData and ImageMIME hold the embedded image for image nodes.
	ImageData []byte
	ImageMIME string
}

// Document is the ordered node sequence for one extracted PDF.
type Document struct {
	Nodes []Node
}

// Images returns the node indices of every image placeholder, in document
// order.
func (d *Document) Images() []int {
	var out []int
	for i, n := range d.Nodes {
		if n.Kind == NodeImage {
			out = append(out, i)
		}
	}
	return out
}

// Parse builds a Document from Markdown that embeds images as base64 data
// URIs. Text between images is split into block nodes at blank-line
// boundaries; each block keeps its separator so the split is lossless. A
// data URI that fails to decode stays in place as text.
func Parse(markdown string) *Document {
	var nodes []Node
	last := 0
	for _, m := range imageDataURIPattern.FindAllStringSubmatchIndex(markdown, -1) {
		nodes = append(nodes, blockNodes(markdown[last:m[0]])...)

		mime := "image/" + markdown[m[4]:m[5]]
		b64 := strings.NewReplacer("\r", "", "\n", "").Replace(markdown[m[6]:m[7]])
		data, err := base64.StdEncoding.DecodeString(b64)
		if err != nil {
			nodes = append(nodes, blockNodes(markdown[m[0]:m[1]])...)
		} else {
			nodes = append(nodes, Node{Kind: NodeImage, ImageData: data, ImageMIME: mime})
		}
		last = m[1]
	}
	nodes = append(nodes, blockNodes(markdown[last:])...)
	return &Document{Nodes: nodes}
}

// blockNodes splits a text segment into typed block nodes. Block
// boundaries fall after runs of blank lines; the separator stays attached
// to the preceding block so the segment reassembles exactly.
func blockNodes(segment string) []Node {
	if segment == "" {
		return nil
	}
	var nodes []Node
	start := 0
	for start < len(segment) {
		sep := strings.Index(segment[start:], "\n\n")
		var stop int
		if sep < 0 {
			stop = len(segment)
		} else {
			stop = start + sep + 2
			for stop < len(segment) && segment[stop] == '\n' {
				stop++
			}
		}
		raw := segment[start:stop]
		nodes = append(nodes, Node{Kind: classify(raw), Raw: raw})
		start = stop
	}
	return nodes
}

// classify tags a raw block by its leading syntax.
func classify(raw string) NodeKind {
	switch trimmed := strings.TrimSpace(raw); {
	case strings.HasPrefix(trimmed, "#"):
		return NodeHeading
	case strings.HasPrefix(trimmed, "|"):
		return NodeTable
	default:
		return NodeText
	}
}
