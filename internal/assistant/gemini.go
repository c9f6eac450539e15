package assistant

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

// Generator produces text for a payload.
type Generator interface {
	Generate(ctx context.Context, p Payload) (string, error)
}

// ErrNotConfigured is returned when no API key is set.
var ErrNotConfigured = errors.New("AI Error: API key not configured")

// ClientConfig points the client at a Gemini API deployment.
type ClientConfig struct {
	// BaseURL defaults to the public endpoint when empty.
	BaseURL    string
	APIVersion string
	APIKey     string
	Model      string
	Timeout    time.Duration
}

// Client calls generateContent through the Gemini SDK.
type Client struct {
	model string
	genai *genai.Client
}

// NewClient creates a client. Without an API key the client is built but
// every call fails with ErrNotConfigured.
func NewClient(ctx context.Context, cfg ClientConfig) (*Client, error) {
	c := &Client{model: cfg.Model}
	if cfg.APIKey == "" {
		return c, nil
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    cfg.BaseURL,
			APIVersion: cfg.APIVersion,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("assistant: create client: %w", err)
	}
	c.genai = gc
	return c, nil
}

// Generate implements Generator.
func (c *Client) Generate(ctx context.Context, p Payload) (string, error) {
	if c.genai == nil {
		return "", ErrNotConfigured
	}

	contents := make([]*genai.Content, 0, len(p.History)+1)
	for _, t := range p.History {
		contents = append(contents, textContent(t.Role, t.Text))
	}
	contents = append(contents, textContent(RoleUser, p.Prompt))

	config := &genai.GenerateContentConfig{}
	if p.SystemInstruction != "" {
		config.SystemInstruction = textContent(RoleUser, p.SystemInstruction)
	}
	if p.JSON {
		config.ResponseMIMEType = "application/json"
	}

	resp, err := c.genai.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("assistant: call model: %w", err)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("assistant: prompt blocked: %s", resp.PromptFeedback.BlockReason)
	}

	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part != nil && !part.Thought {
				b.WriteString(part.Text)
			}
		}
		if b.Len() > 0 {
			break
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", ErrNoResponse
	}
	return b.String(), nil
}

func textContent(role, text string) *genai.Content {
	return &genai.Content{Role: role, Parts: []*genai.Part{{Text: text}}}
}
