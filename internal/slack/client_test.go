package slack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(&ClientOpts{
		APIURL:  srv.URL,
		Token:   "xoxb-test",
		Limiter: rate.NewLimiter(rate.Inf, 1),
	})
}

func TestConversationsHistory_Pagination(t *testing.T) {
	calls := 0
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/conversations.history", r.URL.Path)
		require.Equal(t, "C123", r.URL.Query().Get("channel"))

		calls++
		w.Header().Set("Content-Type", "application/json")
		if calls == 1 {
			assert.Empty(t, r.URL.Query().Get("cursor"))
			_ = json.NewEncoder(w).Encode(map[string]any{
				"ok":                true,
				"messages":          []map[string]any{{"ts": "1.000100", "text": "first"}},
				"has_more":          true,
				"response_metadata": map[string]string{"next_cursor": "abc"},
			})
			return
		}
		assert.Equal(t, "abc", r.URL.Query().Get("cursor"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":       true,
			"messages": []map[string]any{{"ts": "2.000100", "text": "second"}},
			"has_more": false,
		})
	}))

	msgs, err := c.ConversationsHistory(context.Background(), &HistoryOpts{Channel: "C123"})
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].Text)
	assert.Equal(t, "second", msgs[1].Text)
	assert.Equal(t, 2, calls)
}

func TestConversationsReplies_DropsParent(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/conversations.replies", r.URL.Path)
		require.Equal(t, "1.000100", r.URL.Query().Get("ts"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok": true,
			"messages": []map[string]any{
				{"ts": "1.000100", "thread_ts": "1.000100", "text": "parent"},
				{"ts": "1.000200", "thread_ts": "1.000100", "text": "reply"},
			},
			"has_more": false,
		})
	}))

	replies, err := c.ConversationsReplies(context.Background(), &HistoryOpts{Channel: "C123"}, "1.000100")
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Equal(t, "reply", replies[0].Text)
}

func TestCall_APIError(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":    false,
			"error": "channel_not_found",
		})
	}))

	_, err := c.ConversationsHistory(context.Background(), &HistoryOpts{Channel: "C404"})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "channel_not_found", apiErr.Code)
	assert.Equal(t, "conversations.history", apiErr.Method)
}

func TestCall_RetryAfterRateLimit(t *testing.T) {
	calls := 0
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "ts": "9.000100"})
	}))

	ts, err := c.PostMessage(context.Background(), &PostMessageReq{Channel: "C123", Text: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "9.000100", ts)
	assert.Equal(t, 2, calls)
}

func TestUserDisplayName_CachesLookups(t *testing.T) {
	calls := 0
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users.info", r.URL.Path)
		calls++
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok": true,
			"user": map[string]any{
				"profile": map[string]any{"display_name": "jane"},
			},
		})
	}))

	assert.Equal(t, "jane", c.UserDisplayName(context.Background(), "U1"))
	assert.Equal(t, "jane", c.UserDisplayName(context.Background(), "U1"))
	assert.Equal(t, 1, calls)
}

func TestUserDisplayName_FallsBackToID(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": "user_not_found"})
	}))

	assert.Equal(t, "U404", c.UserDisplayName(context.Background(), "U404"))
}

func TestPostMessage_SendsBlocksInThread(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat.postMessage", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		var req PostMessageReq
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "1.000100", req.ThreadTS)
		require.Len(t, req.Blocks, 1)
		assert.Equal(t, "actions", req.Blocks[0].Type)
		assert.Equal(t, "feedback_button", req.Blocks[0].Elements[0].ActionID)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "ts": "2.000100"})
	}))

	ts, err := c.PostMessage(context.Background(), &PostMessageReq{
		Channel:  "C123",
		Text:     "leave feedback",
		ThreadTS: "1.000100",
		Blocks:   FeedbackButtonBlocks("feedback_button", "💬 피드백 하기"),
	})
	require.NoError(t, err)
	assert.Equal(t, "2.000100", ts)
}
