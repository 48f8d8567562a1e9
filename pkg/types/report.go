// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// UnitStatus indicates the outcome of one processed unit (a page in the
// full-OCR pipeline, an embedded image in the hybrid pipeline).
type UnitStatus string

const (
	UnitDone   UnitStatus = "done"
	UnitFailed UnitStatus = "failed"
)

// UnitReport records what happened to a single page or image.
type UnitReport struct {
	// Index is the unit's position: the 1-based page number for the
	// full-OCR pipeline, the 0-based image index for the hybrid one.
	Index int `json:"index" yaml:"index"`

	// Status is done or failed.
	Status UnitStatus `json:"status" yaml:"status"`

	// PayloadBytes is the encoded image size sent to the model.
	PayloadBytes int `json:"payload_bytes" yaml:"payload_bytes"`

	// Quality is the JPEG quality of the payload (0 for PNG payloads).
	Quality int `json:"quality,omitempty" yaml:"quality,omitempty"`

	// Width and Height are the final pixel dimensions of the payload.
	Width  int `json:"width,omitempty" yaml:"width,omitempty"`
	Height int `json:"height,omitempty" yaml:"height,omitempty"`

	// Oversize reports that the encoder could not meet the byte ceiling
	// even at floor quality and minimum resolution; the payload was sent
	// anyway at best-effort size.
	Oversize bool `json:"oversize,omitempty" yaml:"oversize,omitempty"`

	// Error holds the failure reason for failed units.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// RunReport is the optional YAML artifact describing one conversion run.
type RunReport struct {
	// Input is the source PDF path.
	Input string `json:"input" yaml:"input"`

	// Output is the destination Markdown path.
	Output string `json:"output" yaml:"output"`

	// Pipeline is "ocr" or "describe".
	Pipeline string `json:"pipeline" yaml:"pipeline"`

	// Units lists per-page or per-image outcomes in position order.
	Units []UnitReport `json:"units" yaml:"units"`
}

// Failed returns the number of failed units.
func (r RunReport) Failed() int {
	n := 0
	for _, u := range r.Units {
		if u.Status == UnitFailed {
			n++
		}
	}
	return n
}

// Oversized returns the number of units whose payload exceeded the ceiling.
func (r RunReport) Oversized() int {
	n := 0
	for _, u := range r.Units {
		if u.Oversize {
			n++
		}
	}
	return n
}
