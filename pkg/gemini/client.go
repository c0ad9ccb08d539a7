package gemini

import (
	"context"
	"fmt"
	"time"

	"github.com/urbanflow/urbanflow-backend/logger"
	"google.golang.org/genai"
)

// ClientInterface defines the interface for generative backend operations.
type ClientInterface interface {
	GenerateJSON(ctx context.Context, systemInstruction, prompt string, schema *genai.Schema) (string, error)
}

type Client struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

const defaultTemperature float32 = 0.5

// NewClient creates a Gemini-backed client for structured generation.
func NewClient(ctx context.Context, apiKey, model string, timeout time.Duration) (*Client, error) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &Client{
		client:  c,
		model:   model,
		timeout: timeout,
	}, nil
}

// GenerateJSON sends a prompt constrained by a response schema and returns the
// model's raw textual output. Callers are responsible for fence stripping and
// schema validation of the returned text.
func (c *Client) GenerateJSON(ctx context.Context, systemInstruction, prompt string, schema *genai.Schema) (string, error) {
	log := logger.GetLogger()
	log.Debugw("Starting Gemini generation", "model", c.model, "promptLength", len(prompt))

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(defaultTemperature),
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	}
	if systemInstruction != "" {
		config.SystemInstruction = genai.NewContentFromText(systemInstruction, genai.RoleUser)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), config)
	if err != nil {
		log.Errorw("Gemini generation failed", "error", err)
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	txt := resp.Text()
	log.Debugw("Gemini response received", "responseLength", len(txt))
	if txt == "" {
		return "", fmt.Errorf("gemini returned an empty response")
	}

	return txt, nil
}
