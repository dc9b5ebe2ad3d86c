// Package llm implements the extraction and summarization collaborators on
// top of the Gemini API. One client is constructed at process startup and
// injected into the report service.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/medlens/medlens/internal/domain/report"
	"github.com/medlens/medlens/internal/platform/metrics"
)

const defaultModel = "gemini-2.5-flash"

// Config holds LLM client settings.
type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client talks to the Gemini API. It implements report.Extractor and
// report.Summarizer.
type Client struct {
	genai   *genai.Client
	model   string
	timeout time.Duration
}

// New creates a Gemini-backed client.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("llm: api key is required")
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("llm: create client: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{genai: gc, model: model, timeout: timeout}, nil
}

// Extract asks the model to pull structured test records out of report text
// and/or an attached report image.
func (c *Client) Extract(ctx context.Context, in report.Input) (*report.Extraction, error) {
	parts := []*genai.Part{{Text: buildExtractionPrompt(in.Text)}}
	if len(in.Image) > 0 {
		mime := in.ImageMIME
		if mime == "" {
			mime = "image/png"
		}
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{Data: in.Image, MIMEType: mime},
		})
	}

	text, err := c.generate(ctx, "extract", parts)
	if err != nil {
		return nil, err
	}

	var ex report.Extraction
	if err := json.Unmarshal([]byte(stripFences(text)), &ex); err != nil {
		return nil, fmt.Errorf("decode extraction response: %w", err)
	}
	return &ex, nil
}

// Summarize asks the model for a patient-friendly, trend-aware narrative.
func (c *Client) Summarize(ctx context.Context, tests []report.TestRecord, patient *report.PatientDetails) (*report.Summary, error) {
	prompt, err := buildSummaryPrompt(tests, patient)
	if err != nil {
		return nil, err
	}

	text, err := c.generate(ctx, "summarize", []*genai.Part{{Text: prompt}})
	if err != nil {
		return nil, err
	}

	var sum report.Summary
	if err := json.Unmarshal([]byte(stripFences(text)), &sum); err != nil {
		return nil, fmt.Errorf("decode summary response: %w", err)
	}
	return &sum, nil
}

func (c *Client) generate(ctx context.Context, op string, parts []*genai.Part) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	result, err := c.genai.Models.GenerateContent(ctx, c.model,
		[]*genai.Content{{Parts: parts}},
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"})
	metrics.LLMDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.LLMCalls.WithLabelValues(op, "error").Inc()
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := result.Text()
	if text == "" {
		metrics.LLMCalls.WithLabelValues(op, "error").Inc()
		return "", errors.New("model returned empty response")
	}
	metrics.LLMCalls.WithLabelValues(op, "ok").Inc()
	return text, nil
}

// stripFences removes markdown code fences the model sometimes wraps around
// JSON output despite the response MIME type.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
