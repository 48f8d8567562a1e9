// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the shared configuration and report types for the
// vision-md pipelines.
package types

import "fmt"

// FailurePolicy controls what happens when a single page or image fails
// after retries are exhausted.
type FailurePolicy string

const (
	// FailureSkip records a labeled marker for the failed unit and
	// continues with the remaining units.
	FailureSkip FailurePolicy = "skip"

	// FailureAbort cancels the whole run on the first unit failure.
	FailureAbort FailurePolicy = "abort"
)

// VisionConfig holds settings for the hosted vision model.
type VisionConfig struct {
	// Endpoint is the base URL of the hosted model API. Required.
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// Deployment is the model deployment name (default "gpt-4.1").
	Deployment string `json:"deployment" yaml:"deployment"`

	// APIVersion is the api-version query parameter sent with each
	// request (default "2024-02-01").
	APIVersion string `json:"api_version" yaml:"api_version"`

	// APIKey is the authentication key for the API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for transient API
	// failures (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// PageTokens caps the model output per transcribed page (default 3500).
	PageTokens int `json:"page_tokens" yaml:"page_tokens"`

	// ImageTokens caps the model output per image description (default 2000).
	ImageTokens int `json:"image_tokens" yaml:"image_tokens"`
}

// RenderConfig holds settings for page rasterization.
type RenderConfig struct {
	// DPI is the rendering density in dots per inch (default 280;
	// 260-320 is a good balance for dense text).
	DPI int `json:"dpi" yaml:"dpi"`
}

// EncodeConfig holds the adaptive image encoder knobs. Quality reduction is
// always exhausted before any downscale step: quality loss is visually
// cheaper than resolution loss for text-heavy pages.
type EncodeConfig struct {
	// MaxBytes is the hard payload ceiling per image (default 20 MiB).
	MaxBytes int `json:"max_bytes" yaml:"max_bytes"`

	// QualityStart is the first JPEG quality tried (default 85).
	QualityStart int `json:"quality_start" yaml:"quality_start"`

	// QualityStep is the fixed decrement between quality attempts (default 10).
	QualityStep int `json:"quality_step" yaml:"quality_step"`

	// QualityFloor is the lowest JPEG quality before downscaling (default 35).
	QualityFloor int `json:"quality_floor" yaml:"quality_floor"`

	// QualityReset is the quality the ladder restarts from after each
	// downscale (default 70).
	QualityReset int `json:"quality_reset" yaml:"quality_reset"`

	// MinEdgePx is the smallest pixel edge downscaling may produce
	// (default 720).
	MinEdgePx int `json:"min_edge_px" yaml:"min_edge_px"`
}

// ContextConfig bounds the text windows sent alongside an embedded image.
type ContextConfig struct {
	// BeforeChars caps the text window preceding the image (default 400).
	BeforeChars int `json:"before_chars" yaml:"before_chars"`

	// AfterChars caps the text window following the image (default 400).
	AfterChars int `json:"after_chars" yaml:"after_chars"`

	// MaxChars caps the combined context. When both windows together
	// exceed it, the preceding window is truncated first (default 1000).
	MaxChars int `json:"max_chars" yaml:"max_chars"`
}

// PipelineConfig groups the settings shared by both pipelines.
type PipelineConfig struct {
	Vision  VisionConfig  `json:"vision" yaml:"vision"`
	Render  RenderConfig  `json:"render" yaml:"render"`
	Encode  EncodeConfig  `json:"encode" yaml:"encode"`
	Context ContextConfig `json:"context" yaml:"context"`

	// Workers is the size of the bounded worker pool that issues model
	// calls (default 4). The model call is the latency-dominant step.
	Workers int `json:"workers" yaml:"workers"`

	// OnError selects the per-unit failure policy (default skip).
	OnError FailurePolicy `json:"on_error" yaml:"on_error"`
}

// DefaultPipelineConfig returns the documented defaults. Endpoint and
// APIKey have no default and must come from configuration.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Vision: VisionConfig{
			Deployment:  "gpt-4.1",
			APIVersion:  "2024-02-01",
			MaxRetries:  3,
			PageTokens:  3500,
			ImageTokens: 2000,
		},
		Render: RenderConfig{DPI: 280},
		Encode: EncodeConfig{
			MaxBytes:     20 * 1024 * 1024,
			QualityStart: 85,
			QualityStep:  10,
			QualityFloor: 35,
			QualityReset: 70,
			MinEdgePx:    720,
		},
		Context: ContextConfig{
			BeforeChars: 400,
			AfterChars:  400,
			MaxChars:    1000,
		},
		Workers: 4,
		OnError: FailureSkip,
	}
}

// Validate checks that every numeric setting is a positive integer and
// that required fields are present. It returns the first problem found.
func (c PipelineConfig) Validate() error {
	if c.Vision.Endpoint == "" {
		return fmt.Errorf("vision.endpoint is required (set PROJECT_ENDPOINT)")
	}
	positives := []struct {
		name  string
		value int
	}{
		{"vision.max_retries", c.Vision.MaxRetries},
		{"vision.page_tokens", c.Vision.PageTokens},
		{"vision.image_tokens", c.Vision.ImageTokens},
		{"render.dpi", c.Render.DPI},
		{"encode.max_bytes", c.Encode.MaxBytes},
		{"encode.quality_start", c.Encode.QualityStart},
		{"encode.quality_step", c.Encode.QualityStep},
		{"encode.quality_floor", c.Encode.QualityFloor},
		{"encode.quality_reset", c.Encode.QualityReset},
		{"encode.min_edge_px", c.Encode.MinEdgePx},
		{"context.before_chars", c.Context.BeforeChars},
		{"context.after_chars", c.Context.AfterChars},
		{"context.max_chars", c.Context.MaxChars},
		{"workers", c.Workers},
	}
	for _, p := range positives {
		if p.value <= 0 {
			return fmt.Errorf("%s must be a positive integer, got %d", p.name, p.value)
		}
	}
	if c.Encode.QualityFloor > c.Encode.QualityStart {
		return fmt.Errorf("encode.quality_floor (%d) exceeds encode.quality_start (%d)",
			c.Encode.QualityFloor, c.Encode.QualityStart)
	}
	if c.Encode.QualityReset < c.Encode.QualityFloor || c.Encode.QualityReset > c.Encode.QualityStart {
		return fmt.Errorf("encode.quality_reset (%d) must be between encode.quality_floor (%d) and encode.quality_start (%d)",
			c.Encode.QualityReset, c.Encode.QualityFloor, c.Encode.QualityStart)
	}
	switch c.OnError {
	case FailureSkip, FailureAbort:
	default:
		return fmt.Errorf("on_error must be %q or %q, got %q", FailureSkip, FailureAbort, c.OnError)
	}
	return nil
}
