package slack

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/hashmap-kz/slackrep/internal/metrics"
)

// APIError is a Slack Web API "ok": false response.
type APIError struct {
	Method string
	Code   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("slack api %s: %s", e.Method, e.Code)
}

type apiResult interface {
	envelope() *apiEnvelope
}

func (e *apiEnvelope) envelope() *apiEnvelope { return e }

type ClientOpts struct {
	APIURL  string
	Token   string
	Limiter *rate.Limiter // optional outbound pacing
}

type Client struct {
	l       *slog.Logger
	rc      *resty.Client
	limiter *rate.Limiter

	mu        sync.Mutex
	userNames map[string]string
}

func NewClient(opts *ClientOpts) *Client {
	rc := resty.New()
	rc.SetBaseURL(opts.APIURL)
	rc.SetAuthToken(opts.Token)
	rc.SetRetryCount(0)
	rc.SetTimeout(30 * time.Second)

	limiter := opts.Limiter
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Limit(1), 3)
	}

	return &Client{
		l:         slog.With(slog.String("component", "slack-client")),
		rc:        rc,
		limiter:   limiter,
		userNames: make(map[string]string),
	}
}

func (c *Client) call(ctx context.Context, method string, prep func(r *resty.Request) *resty.Request, out apiResult) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	metrics.SlackAPICalls.WithLabelValues(method).Inc()

	resp, err := prep(c.rc.R().SetContext(ctx).SetResult(out)).Execute(methodVerb(method), "/"+method)
	if err != nil {
		metrics.SlackAPIErrors.Inc()
		return fmt.Errorf("slack api %s: %w", method, err)
	}

	// rate-limited: honor Retry-After once
	if resp.StatusCode() == 429 {
		delay := 5 * time.Second
		if ra, err := strconv.Atoi(resp.Header().Get("Retry-After")); err == nil && ra > 0 {
			delay = time.Duration(ra) * time.Second
		}
		c.l.Warn("slack rate limited, retrying",
			slog.String("method", method),
			slog.Duration("delay", delay),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		resp, err = prep(c.rc.R().SetContext(ctx).SetResult(out)).Execute(methodVerb(method), "/"+method)
		if err != nil {
			metrics.SlackAPIErrors.Inc()
			return fmt.Errorf("slack api %s: %w", method, err)
		}
	}

	if resp.IsError() {
		metrics.SlackAPIErrors.Inc()
		return fmt.Errorf("slack api %s: http status %d", method, resp.StatusCode())
	}
	if env := out.envelope(); !env.OK {
		metrics.SlackAPIErrors.Inc()
		return &APIError{Method: method, Code: env.Error}
	}
	return nil
}

// Slack accepts GET with query params for read methods and JSON for writes.
func methodVerb(method string) string {
	switch method {
	case "chat.postMessage", "views.open", "auth.test":
		return "POST"
	default:
		return "GET"
	}
}

// AuthTest returns the bot's own ID (bot_id, falling back to user_id).
func (c *Client) AuthTest(ctx context.Context) (string, error) {
	var out authTestResponse
	err := c.call(ctx, "auth.test", func(r *resty.Request) *resty.Request {
		return r
	}, &out)
	if err != nil {
		return "", err
	}
	if out.BotID != "" {
		return out.BotID, nil
	}
	return out.UserID, nil
}

type HistoryOpts struct {
	Channel string
	Oldest  string // slack ts, optional
	Latest  string // slack ts, optional
	Limit   int
}

// ConversationsHistory fetches every page of top-level channel messages in
// the given window.
func (c *Client) ConversationsHistory(ctx context.Context, opts *HistoryOpts) ([]Message, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 200
	}

	var messages []Message
	cursor := ""
	for {
		var out historyResponse
		err := c.call(ctx, "conversations.history", func(r *resty.Request) *resty.Request {
			r.SetQueryParam("channel", opts.Channel)
			r.SetQueryParam("limit", strconv.Itoa(limit))
			r.SetQueryParam("inclusive", "true")
			if opts.Oldest != "" {
				r.SetQueryParam("oldest", opts.Oldest)
			}
			if opts.Latest != "" {
				r.SetQueryParam("latest", opts.Latest)
			}
			if cursor != "" {
				r.SetQueryParam("cursor", cursor)
			}
			return r
		}, &out)
		if err != nil {
			return nil, err
		}

		messages = append(messages, out.Messages...)
		if !out.HasMore {
			break
		}
		cursor = out.Metadata.NextCursor
	}
	return messages, nil
}

// ConversationsReplies fetches every reply of a thread (the parent message
// duplicate is dropped).
func (c *Client) ConversationsReplies(ctx context.Context, opts *HistoryOpts, threadTS string) ([]Message, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 200
	}

	var replies []Message
	cursor := ""
	for {
		var out historyResponse
		err := c.call(ctx, "conversations.replies", func(r *resty.Request) *resty.Request {
			r.SetQueryParam("channel", opts.Channel)
			r.SetQueryParam("ts", threadTS)
			r.SetQueryParam("limit", strconv.Itoa(limit))
			if opts.Oldest != "" {
				r.SetQueryParam("oldest", opts.Oldest)
			}
			if opts.Latest != "" {
				r.SetQueryParam("latest", opts.Latest)
			}
			if cursor != "" {
				r.SetQueryParam("cursor", cursor)
			}
			return r
		}, &out)
		if err != nil {
			return nil, err
		}

		for _, m := range out.Messages {
			if m.TS == threadTS {
				continue
			}
			replies = append(replies, m)
		}
		if !out.HasMore {
			break
		}
		cursor = out.Metadata.NextCursor
	}
	return replies, nil
}

// UserDisplayName resolves a user ID to a display name, caching results.
// Lookup failures fall back to the raw ID.
func (c *Client) UserDisplayName(ctx context.Context, userID string) string {
	c.mu.Lock()
	if name, ok := c.userNames[userID]; ok {
		c.mu.Unlock()
		return name
	}
	c.mu.Unlock()

	var out userInfoResponse
	err := c.call(ctx, "users.info", func(r *resty.Request) *resty.Request {
		return r.SetQueryParam("user", userID)
	}, &out)

	name := userID
	if err != nil {
		c.l.Warn("user lookup failed", slog.String("user", userID), slog.Any("err", err))
	} else if out.User.Profile.DisplayName != "" {
		name = out.User.Profile.DisplayName
	} else if out.User.Profile.RealName != "" {
		name = out.User.Profile.RealName
	}

	c.mu.Lock()
	c.userNames[userID] = name
	c.mu.Unlock()
	return name
}

type PostMessageReq struct {
	Channel  string  `json:"channel"`
	Text     string  `json:"text"`
	ThreadTS string  `json:"thread_ts,omitempty"`
	Mrkdwn   bool    `json:"mrkdwn,omitempty"`
	Blocks   []Block `json:"blocks,omitempty"`
}

// PostMessage posts a message and returns its ts.
func (c *Client) PostMessage(ctx context.Context, req *PostMessageReq) (string, error) {
	var out postMessageResponse
	err := c.call(ctx, "chat.postMessage", func(r *resty.Request) *resty.Request {
		return r.SetBody(req)
	}, &out)
	if err != nil {
		return "", err
	}
	return out.TS, nil
}

type openViewReq struct {
	TriggerID string `json:"trigger_id"`
	View      *View  `json:"view"`
}

// OpenView opens a modal in response to an interaction trigger.
func (c *Client) OpenView(ctx context.Context, triggerID string, view *View) error {
	var out openViewResponse
	return c.call(ctx, "views.open", func(r *resty.Request) *resty.Request {
		return r.SetBody(&openViewReq{TriggerID: triggerID, View: view})
	}, &out)
}
