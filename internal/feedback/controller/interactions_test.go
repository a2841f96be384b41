package controller

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashmap-kz/slackrep/internal/feedback/model"
	"github.com/hashmap-kz/slackrep/internal/feedback/service"
	"github.com/hashmap-kz/slackrep/internal/feedback/store"
	"github.com/hashmap-kz/slackrep/internal/slack"
)

const testSigningSecret = "8f742231b10e8888abcd99yyyzzz85a5"

type fakeViews struct {
	triggerID string
	view      *slack.View
}

func (f *fakeViews) OpenView(_ context.Context, triggerID string, view *slack.View) error {
	f.triggerID = triggerID
	f.view = view
	return nil
}

func testInteractions(t *testing.T) (*InteractionsController, service.FeedbackService, *fakeViews) {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)

	svc := service.NewFeedbackService(&service.FeedbackServiceOpts{
		Store:    store.NewMemoryStore(),
		Timezone: loc,
	})
	views := &fakeViews{}
	c := NewInteractionsController(&InteractionsControllerOpts{
		Service:       svc,
		Views:         views,
		SigningSecret: testSigningSecret,
	})
	c.now = func() time.Time { return time.Unix(1708912345, 0) }
	return c, svc, views
}

func signedRequest(t *testing.T, c *InteractionsController, payload any) *http.Request {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	body := "payload=" + url.QueryEscape(string(raw))

	ts := strconv.FormatInt(c.now().Unix(), 10)
	mac := hmac.New(sha256.New, []byte(testSigningSecret))
	mac.Write([]byte("v0:" + ts + ":" + body))
	sig := "v0=" + hex.EncodeToString(mac.Sum(nil))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/slack/interactions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Slack-Request-Timestamp", ts)
	req.Header.Set("X-Slack-Signature", sig)
	return req
}

func TestInteractions_RejectsBadSignature(t *testing.T) {
	c, _, _ := testInteractions(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/slack/interactions", strings.NewReader("payload={}"))
	req.Header.Set("X-Slack-Request-Timestamp", "1708912345")
	req.Header.Set("X-Slack-Signature", "v0=deadbeef")

	rec := httptest.NewRecorder()
	c.Handler(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestInteractions_ButtonOpensModal(t *testing.T) {
	c, _, views := testInteractions(t)

	payload := map[string]any{
		"type":       "block_actions",
		"trigger_id": "trig-1",
		"actions":    []map[string]string{{"action_id": "feedback_button"}},
	}

	rec := httptest.NewRecorder()
	c.Handler(rec, signedRequest(t, c, payload))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "trig-1", views.triggerID)
	require.NotNil(t, views.view)
	assert.Equal(t, "feedback_modal", views.view.CallbackID)
	require.Len(t, views.view.Blocks, 2)
	assert.Equal(t, "static_select", views.view.Blocks[0].Element.Type)
	assert.Len(t, views.view.Blocks[0].Element.Options, 4)
}

func TestInteractions_ViewSubmissionStoresEntry(t *testing.T) {
	c, svc, _ := testInteractions(t)

	payload := map[string]any{
		"type": "view_submission",
		"user": map[string]string{"id": "U1", "name": "jane"},
		"view": map[string]any{
			"callback_id": "feedback_modal",
			"state": map[string]any{
				"values": map[string]any{
					"category_block": map[string]any{
						"category_select": map[string]any{
							"type":            "static_select",
							"selected_option": map[string]string{"value": "correction"},
						},
					},
					"feedback_block": map[string]any{
						"feedback_input": map[string]any{
							"type":  "plain_text_input",
							"value": "유입 건수는 10건이 맞음",
						},
					},
				},
			},
		},
	}

	rec := httptest.NewRecorder()
	c.Handler(rec, signedRequest(t, c, payload))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "clear", resp["response_action"])

	entries, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.CategoryCorrection, entries[0].Category)
	assert.Equal(t, "유입 건수는 10건이 맞음", entries[0].Text)
	assert.Equal(t, "jane", entries[0].User)
}

func TestInteractions_EmptySubmissionReturnsErrors(t *testing.T) {
	c, svc, _ := testInteractions(t)

	payload := map[string]any{
		"type": "view_submission",
		"user": map[string]string{"id": "U1"},
		"view": map[string]any{
			"callback_id": "feedback_modal",
			"state": map[string]any{
				"values": map[string]any{
					"category_block": map[string]any{
						"category_select": map[string]any{
							"selected_option": map[string]string{"value": "general"},
						},
					},
					"feedback_block": map[string]any{
						"feedback_input": map[string]any{"value": "   "},
					},
				},
			},
		},
	}

	rec := httptest.NewRecorder()
	c.Handler(rec, signedRequest(t, c, payload))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "errors", resp["response_action"])

	entries, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}
