package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/hashmap-kz/slackrep/internal/metrics"
)

const anthropicVersion = "2023-06-01"

// APIError is a structured error response from the Messages API.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("anthropic api: %d %s: %s", e.StatusCode, e.Type, e.Message)
}

type ClientOpts struct {
	APIURL    string
	APIKey    string
	Model     string
	MaxTokens int
}

// Client is a minimal Anthropic Messages API client: single-shot
// system+user completion, no streaming.
type Client struct {
	l         *slog.Logger
	rc        *resty.Client
	model     string
	maxTokens int
}

func NewClient(opts *ClientOpts) *Client {
	rc := resty.New()
	rc.SetBaseURL(opts.APIURL)
	rc.SetRetryCount(0)
	rc.SetTimeout(120 * time.Second)
	rc.SetHeader("x-api-key", opts.APIKey)
	rc.SetHeader("anthropic-version", anthropicVersion)

	return &Client{
		l:         slog.With(slog.String("component", "anthropic-client")),
		rc:        rc,
		model:     opts.Model,
		maxTokens: opts.MaxTokens,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	System    string        `json:"system,omitempty"`
	Messages  []chatMessage `json:"messages"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
	Usage   struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends a single system+user exchange and returns the first text
// content block of the response.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	req := &messagesRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    system,
		Messages: []chatMessage{
			{Role: "user", Content: user},
		},
	}

	metrics.LLMRequests.Inc()

	var out messagesResponse
	var apiErr errorResponse
	resp, err := c.rc.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		SetError(&apiErr).
		Post("/v1/messages")
	if err != nil {
		return "", fmt.Errorf("anthropic api: %w", err)
	}
	if resp.IsError() {
		return "", &APIError{
			StatusCode: resp.StatusCode(),
			Type:       apiErr.Error.Type,
			Message:    apiErr.Error.Message,
		}
	}

	metrics.LLMTokensUsed.WithLabelValues("input").Add(float64(out.Usage.InputTokens))
	metrics.LLMTokensUsed.WithLabelValues("output").Add(float64(out.Usage.OutputTokens))

	for _, block := range out.Content {
		if block.Type == "text" {
			c.l.Debug("completion received",
				slog.Int("input-tokens", out.Usage.InputTokens),
				slog.Int("output-tokens", out.Usage.OutputTokens),
			)
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("anthropic api: response contains no text content")
}
