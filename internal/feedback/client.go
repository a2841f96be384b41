package feedback

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/hashmap-kz/slackrep/internal/feedback/model"
	"github.com/hashmap-kz/slackrep/internal/feedback/service"
)

// Client fetches accumulated feedback from a remote feedback API
// (a slackrep instance running in feedback mode).
type Client struct {
	l  *slog.Logger
	rc *resty.Client
}

func NewClient(apiURL, token string) *Client {
	rc := resty.New()
	rc.SetBaseURL(apiURL)
	rc.SetRetryCount(0)
	rc.SetTimeout(10 * time.Second)
	if token != "" {
		rc.SetAuthToken(token)
	}
	return &Client{
		l:  slog.With(slog.String("component", "feedback-client")),
		rc: rc,
	}
}

func (c *Client) FetchAll(ctx context.Context) ([]model.Entry, error) {
	var entries []model.Entry
	resp, err := c.rc.R().
		SetContext(ctx).
		SetResult(&entries).
		Get("/api/v1/feedback")
	if err != nil {
		return nil, fmt.Errorf("fetch feedback: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch feedback: http status %d", resp.StatusCode())
	}
	c.l.Debug("accumulated feedback loaded", slog.Int("entries", len(entries)))
	return entries, nil
}

// FetchFormatted returns the entries in prompt line format.
func (c *Client) FetchFormatted(ctx context.Context) (string, error) {
	entries, err := c.FetchAll(ctx)
	if err != nil {
		return "", err
	}
	return model.FormatForPrompt(entries), nil
}

// LocalSource serves feedback straight from the in-process service, used
// when report and feedback run in the same daemon.
type LocalSource struct {
	Service service.FeedbackService
}

func (s *LocalSource) FetchFormatted(ctx context.Context) (string, error) {
	entries, err := s.Service.List(ctx)
	if err != nil {
		return "", err
	}
	return model.FormatForPrompt(entries), nil
}
