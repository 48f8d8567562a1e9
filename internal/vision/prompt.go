// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package vision

import "fmt"

// TranscribeSystem is the system prompt for full-page transcription.
const TranscribeSystem = "You are a meticulous OCR + visual-describer for document pages. " +
	"Produce ONLY valid Markdown for EACH page with these rules:\n" +
	"1) Transcribe all legible text VERBATIM in reading order (best effort).\n" +
	"2) Reconstruct structure: use #/##/### for headings when clear; bullet/numbered lists; " +
	"Markdown tables for obvious tables; blockquotes if present; bold/italic when shown.\n" +
	"3) For non-text visuals (charts/graphs/figures/logos/diagrams/photos/screenshots/equations), " +
	"add a standalone line starting with: 'IMAGE: ' followed by a concise but complete description " +
	"capturing labels, axes, numbers, legends, relationships, or main visual details.\n" +
	"4) Do NOT add meta commentary. Do NOT say 'the image shows' except on IMAGE: lines. " +
	"5) If text is partially unreadable, include best guess and mark unclear parts with [...]."

// DescribeSystem is the system prompt for embedded-image description.
const DescribeSystem = "You are a helpful assistant that looks at images and writes clear, " +
	"detailed descriptions of the content. " +
	"You will be provided with some surrounding context as well to better understand the image. " +
	"Just say what you see without saying 'the image contains' or similar phrases. " +
	"It is important that you capture all of the information that could be extracted from the image."

// TranscribePrompt returns the per-page user instruction. pageNum is the
// 1-based page number shown to the model.
func TranscribePrompt(pageNum int) string {
	return fmt.Sprintf("Convert this page to Markdown. Extract all text verbatim and "+
		"insert IMAGE: … lines for any visuals. Output ONLY the Markdown for this "+
		"single page. (Page %d)", pageNum)
}

// DescribePrompt returns the user text carrying the image's surrounding
// context window.
func DescribePrompt(surrounding string) string {
	return "Surrounding context: " + surrounding
}
