// Package generate implements the document-generation layer: the Gemini
// client, per-stage instructions, prompt construction with explicit
// truncation, and the parsing of structured or section-marked output.
package generate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"dossier/internal/config"
	"dossier/internal/logging"
)

// ErrNoContent is returned when the model reply carries no usable text.
// Fatal to the stage; the pipeline does not retry within a stage.
var ErrNoContent = fmt.Errorf("no textual content in response")

// GeminiClient implements types.LLMClient over the Google GenAI SDK.
// Streaming is buffered by the SDK into one final text, which is all the
// pipeline logic needs.
type GeminiClient struct {
	client          *genai.Client
	model           string
	timeout         time.Duration
	maxOutputTokens int32
	temperature     float32
}

// NewGeminiClient creates a Gemini generation client.
func NewGeminiClient(cfg config.LLMConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-2.5-pro"
	}

	return &GeminiClient{
		client:          client,
		model:           model,
		timeout:         cfg.TimeoutDuration(),
		maxOutputTokens: int32(cfg.MaxOutputTokens),
		temperature:     float32(cfg.Temperature),
	}, nil
}

// Model returns the configured model identifier.
func (c *GeminiClient) Model() string { return c.model }

// Complete sends a bare prompt.
func (c *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	return c.CompleteWithSystem(ctx, "", prompt)
}

// CompleteWithSystem sends a prompt with system instructions and returns the
// buffered text of the reply.
func (c *GeminiClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	timer := logging.StartTimer(logging.CategoryAPI, "CompleteWithSystem")
	defer timer.Stop()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	genCfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(c.temperature),
	}
	if c.maxOutputTokens > 0 {
		genCfg.MaxOutputTokens = c.maxOutputTokens
	}
	if systemPrompt != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	logging.API("%s: generate request (%d system chars, %d user chars)", c.model, len(systemPrompt), len(userPrompt))

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(userPrompt), genCfg)
	if err != nil {
		logging.APIError("%s: generate failed: %v", c.model, err)
		return "", fmt.Errorf("gemini generate failed: %w", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		logging.APIError("%s: empty response", c.model)
		return "", ErrNoContent
	}

	logging.API("%s: generate response (%d chars)", c.model, len(text))
	return text, nil
}
