// Package textgen wraps the Gemini API behind the narrow TextGenerator
// interface. Prompt construction lives with the callers; this client only
// ships text in and out.
package textgen

import (
	"context"
	"fmt"

	"github.com/prodscout/backend/internal/domain"
	"google.golang.org/genai"
)

const defaultModel = "gemini-2.0-flash"

// Client is a thin Gemini wrapper implementing domain.TextGenerator.
type Client struct {
	client *genai.Client
	model  string
}

// NewClient creates a Gemini-backed text generator. An empty API key returns
// ErrTextGenUnavailable so callers can wire the degraded path explicitly.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, domain.ErrTextGenUnavailable
	}
	if model == "" {
		model = defaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{client: client, model: model}, nil
}

// Generate sends the prompt and returns the concatenated response text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	temperature := float32(0.7)
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 1024,
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrTextGenUnavailable, err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: empty response", domain.ErrTextGenUnavailable)
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("%w: no content in response", domain.ErrTextGenUnavailable)
	}

	text := ""
	for _, part := range candidate.Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}

	return text, nil
}
