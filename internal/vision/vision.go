// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package vision calls the hosted multimodal model that performs page
// transcription and image description.
package vision

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
	"github.com/openai/openai-go/v3/shared"

	"github.com/pdiddy/vision-md/pkg/types"
)

// ErrTranscriptionFailed reports that the model call did not produce text
// after the configured retries. Per-unit callers record it as a marker and
// continue; it never aborts a run on its own.
var ErrTranscriptionFailed = errors.New("transcription failed")

// Request is one image plus its textual grounding.
type Request struct {
	// ImageData is the encoded image payload.
	ImageData []byte

	// MIME is the payload's media type (e.g. "image/jpeg").
	MIME string

	// System is the system prompt for the call.
	System string

	// Prompt is the user text accompanying the image.
	Prompt string

	// MaxTokens bounds the model output for this call.
	MaxTokens int
}

// Describer abstracts the vision model so tests can supply a mock.
type Describer interface {
	// Describe sends one image and prompt to the model and returns the
	// produced text, or ErrTranscriptionFailed (wrapped) on exhausted
	// retries or empty output.
	Describe(ctx context.Context, req Request) (string, error)
}

// Client is the hosted-model Describer. Temperature is pinned to zero so
// repeated runs are as reproducible as the service allows.
type Client struct {
	api openai.Client
	cfg types.VisionConfig
}

// NewClient builds a Client from cfg. Transient HTTP failures are retried
// with backoff inside the SDK up to cfg.MaxRetries attempts.
func NewClient(cfg types.VisionConfig) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithBaseURL(cfg.Endpoint))
	}
	if cfg.APIVersion != "" {
		opts = append(opts, option.WithQueryAdd("api-version", cfg.APIVersion))
	}
	return &Client{api: openai.NewClient(opts...), cfg: cfg}
}

// Describe implements Describer against the Responses API.
func (c *Client) Describe(ctx context.Context, req Request) (string, error) {
	dataURL := "data:" + req.MIME + ";base64," +
		base64.StdEncoding.EncodeToString(req.ImageData)

	resp, err := c.api.Responses.New(ctx, responses.ResponseNewParams{
		Model:           shared.ChatModel(c.cfg.Deployment),
		Instructions:    openai.String(req.System),
		Temperature:     openai.Float(0),
		MaxOutputTokens: openai.Int(int64(req.MaxTokens)),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: responses.ResponseInputParam{
				responses.ResponseInputItemParamOfMessage(
					responses.ResponseInputMessageContentListParam{
						responses.ResponseInputContentParamOfInputText(req.Prompt),
						responses.ResponseInputContentUnionParam{
							OfInputImage: &responses.ResponseInputImageParam{
								ImageURL: openai.String(dataURL),
								Detail:   responses.ResponseInputImageDetailHigh,
							},
						},
					},
					"user",
				),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranscriptionFailed, err)
	}

	text := strings.TrimSpace(resp.OutputText())
	if text == "" {
		return "", fmt.Errorf("%w: model returned no text", ErrTranscriptionFailed)
	}
	return text, nil
}
