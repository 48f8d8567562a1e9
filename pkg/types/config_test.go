// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() PipelineConfig {
	cfg := DefaultPipelineConfig()
	cfg.Vision.Endpoint = "https://models.example.net"
	return cfg
}

func TestDefaultsValidateWithEndpoint(t *testing.T) {
	cfg := DefaultPipelineConfig()
	require.Error(t, cfg.Validate())

	cfg.Vision.Endpoint = "https://models.example.net"
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*PipelineConfig)
		wantErr string
	}{
		{
			name:    "missing endpoint",
			mutate:  func(c *PipelineConfig) { c.Vision.Endpoint = "" },
			wantErr: "vision.endpoint is required",
		},
		{
			name:    "zero workers",
			mutate:  func(c *PipelineConfig) { c.Workers = 0 },
			wantErr: "workers must be a positive integer",
		},
		{
			name:    "negative dpi",
			mutate:  func(c *PipelineConfig) { c.Render.DPI = -1 },
			wantErr: "render.dpi must be a positive integer",
		},
		{
			name:    "zero page tokens",
			mutate:  func(c *PipelineConfig) { c.Vision.PageTokens = 0 },
			wantErr: "vision.page_tokens must be a positive integer",
		},
		{
			name:    "floor above start",
			mutate:  func(c *PipelineConfig) { c.Encode.QualityFloor = 90 },
			wantErr: "encode.quality_floor (90) exceeds encode.quality_start (85)",
		},
		{
			name:    "reset below floor",
			mutate:  func(c *PipelineConfig) { c.Encode.QualityReset = 20 },
			wantErr: "encode.quality_reset (20) must be between encode.quality_floor (35) and encode.quality_start (85)",
		},
		{
			name:    "reset above start",
			mutate:  func(c *PipelineConfig) { c.Encode.QualityReset = 90 },
			wantErr: "encode.quality_reset (90) must be between encode.quality_floor (35) and encode.quality_start (85)",
		},
		{
			name:    "zero context cap",
			mutate:  func(c *PipelineConfig) { c.Context.MaxChars = 0 },
			wantErr: "context.max_chars must be a positive integer",
		},
		{
			name:    "unknown failure policy",
			mutate:  func(c *PipelineConfig) { c.OnError = "retry" },
			wantErr: `on_error must be "skip" or "abort"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRunReportCounters(t *testing.T) {
	report := RunReport{Units: []UnitReport{
		{Index: 0, Status: UnitDone},
		{Index: 1, Status: UnitFailed, Error: "boom"},
		{Index: 2, Status: UnitDone, Oversize: true},
		{Index: 3, Status: UnitFailed, Error: "boom"},
	}}

	assert.Equal(t, 2, report.Failed())
	assert.Equal(t, 1, report.Oversized())
}
