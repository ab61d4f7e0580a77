// Package gemini provides a client for the Google Gemini API
package gemini

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/bobmcallan/daybrief/internal/common"
	"github.com/bobmcallan/daybrief/internal/interfaces"
	"github.com/bobmcallan/daybrief/internal/models"
)

const (
	DefaultModel   = "gemini-2.0-flash"
	DefaultTimeout = 45 * time.Second
)

// Client implements the InsightClient interface
type Client struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithModel sets the model to use
func WithModel(model string) ClientOption {
	return func(c *Client) {
		c.model = model
	}
}

// WithTimeout bounds each insight generation call
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Gemini client
func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := &Client{
		client:  genaiClient,
		model:   DefaultModel,
		timeout: DefaultTimeout,
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// GenerateInsights produces commentary for a report slot's dataset.
// The call is bounded by the configured timeout; on expiry the provider error
// is returned and callers degrade to a placeholder.
func (c *Client) GenerateInsights(ctx context.Context, dataset string, slot models.Slot) (string, error) {
	c.logger.Debug().Str("model", c.model).Str("slot", string(slot)).Msg("Generating insights")

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	prompt := buildInsightPrompt(dataset, slot)
	contents := genai.Text(prompt)

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate insights: %w", err)
	}

	return extractTextFromResponse(result)
}

// extractTextFromResponse extracts text from a generate content response
func extractTextFromResponse(result *genai.GenerateContentResponse) (string, error) {
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}

	text := ""
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}

	return text, nil
}

// buildInsightPrompt creates the commentary prompt from the plain numeric
// dataset. The dataset is never rendered markup.
func buildInsightPrompt(dataset string, slot models.Slot) string {
	return fmt.Sprintf(`You are a market analyst writing a short briefing for the %s report.

Below is today's watchlist data: per-category average percent changes with
per-ticker moves, market breadth, and the session's best and worst performers.

%s

Write 2-4 short paragraphs of commentary:
1. The overall tone of the session so far
2. Which categories are driving the move and any notable outliers
3. What to watch for the remainder of the trading day

Plain prose only, no headings or bullet lists. Do not repeat the raw numbers
table; reference only the figures that matter.`, slot.Label(), dataset)
}

// Ensure Client implements InsightClient
var _ interfaces.InsightClient = (*Client)(nil)
