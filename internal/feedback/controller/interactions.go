package controller

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/hashmap-kz/slackrep/internal/feedback/service"
	"github.com/hashmap-kz/slackrep/internal/shared/x/httpx"
	"github.com/hashmap-kz/slackrep/internal/slack"
)

const (
	feedbackButtonActionID = "feedback_button"
	feedbackModalCallback  = "feedback_modal"

	categoryBlockID  = "category_block"
	categoryActionID = "category_select"
	textBlockID      = "feedback_block"
	textActionID     = "feedback_input"
)

type ViewOpener interface {
	OpenView(ctx context.Context, triggerID string, view *slack.View) error
}

// InteractionsController handles Slack interactivity callbacks: the report
// feedback button opens a modal, the modal submission lands in the store.
type InteractionsController struct {
	l             *slog.Logger
	service       service.FeedbackService
	views         ViewOpener
	signingSecret string
	now           func() time.Time
}

type InteractionsControllerOpts struct {
	Service       service.FeedbackService
	Views         ViewOpener
	SigningSecret string
}

func NewInteractionsController(opts *InteractionsControllerOpts) *InteractionsController {
	return &InteractionsController{
		l:             slog.With(slog.String("component", "slack-interactions")),
		service:       opts.Service,
		views:         opts.Views,
		signingSecret: opts.SigningSecret,
		now:           time.Now,
	}
}

type interactionPayload struct {
	Type      string `json:"type"`
	TriggerID string `json:"trigger_id"`
	User      struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Name     string `json:"name"`
	} `json:"user"`
	Actions []struct {
		ActionID string `json:"action_id"`
	} `json:"actions"`
	View struct {
		CallbackID string `json:"callback_id"`
		State      struct {
			Values map[string]map[string]stateValue `json:"values"`
		} `json:"state"`
	} `json:"view"`
}

type stateValue struct {
	Type           string `json:"type"`
	Value          string `json:"value"`
	SelectedOption struct {
		Value string `json:"value"`
	} `json:"selected_option"`
}

func (c *InteractionsController) Handler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "cannot read body", http.StatusBadRequest)
		return
	}

	err = slack.VerifySignature(
		c.signingSecret,
		r.Header.Get("X-Slack-Request-Timestamp"),
		r.Header.Get("X-Slack-Signature"),
		body,
		c.now(),
	)
	if err != nil {
		c.l.Warn("interaction rejected", slog.Any("err", err))
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	form, err := url.ParseQuery(string(body))
	if err != nil {
		http.Error(w, "malformed form body", http.StatusBadRequest)
		return
	}

	var payload interactionPayload
	if err := json.Unmarshal([]byte(form.Get("payload")), &payload); err != nil {
		http.Error(w, "malformed payload", http.StatusBadRequest)
		return
	}

	switch payload.Type {
	case "block_actions":
		c.handleBlockActions(r.Context(), w, &payload)
	case "view_submission":
		c.handleViewSubmission(r.Context(), w, &payload)
	default:
		w.WriteHeader(http.StatusOK)
	}
}

func (c *InteractionsController) handleBlockActions(ctx context.Context, w http.ResponseWriter, payload *interactionPayload) {
	for _, action := range payload.Actions {
		if action.ActionID != feedbackButtonActionID {
			continue
		}
		if err := c.views.OpenView(ctx, payload.TriggerID, feedbackModal()); err != nil {
			c.l.Warn("modal open failed", slog.Any("err", err))
		}
		break
	}
	w.WriteHeader(http.StatusOK)
}

func (c *InteractionsController) handleViewSubmission(ctx context.Context, w http.ResponseWriter, payload *interactionPayload) {
	if payload.View.CallbackID != feedbackModalCallback {
		w.WriteHeader(http.StatusOK)
		return
	}

	user := payload.User.Name
	if user == "" {
		user = payload.User.Username
	}
	if user == "" {
		user = payload.User.ID
	}

	req := &service.AddRequest{
		Category: payload.View.State.Values[categoryBlockID][categoryActionID].SelectedOption.Value,
		Text:     payload.View.State.Values[textBlockID][textActionID].Value,
		User:     user,
	}

	if _, err := c.service.Add(ctx, req); err != nil {
		c.l.Warn("feedback submission rejected", slog.Any("err", err))
		httpx.WriteJSON(w, http.StatusOK, map[string]any{
			"response_action": "errors",
			"errors": map[string]string{
				textBlockID: "피드백 내용을 입력해주세요",
			},
		})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"response_action": "clear"})
}

func feedbackModal() *slack.View {
	options := []slack.Option{
		{Text: slack.PlainText("사실 오류 수정"), Value: "correction"},
		{Text: slack.PlainText("분류 기준 변경"), Value: "categorization"},
		{Text: slack.PlainText("포맷/형식 변경"), Value: "format"},
		{Text: slack.PlainText("기타 의견"), Value: "general"},
	}

	return &slack.View{
		Type:       "modal",
		CallbackID: feedbackModalCallback,
		Title:      slack.PlainText("리포트 피드백"),
		Submit:     slack.PlainText("제출"),
		Close:      slack.PlainText("취소"),
		Blocks: []slack.Block{
			{
				Type:    "input",
				BlockID: categoryBlockID,
				Label:   slack.PlainText("피드백 유형"),
				Element: &slack.BlockElement{
					Type:     "static_select",
					ActionID: categoryActionID,
					Options:  options,
				},
			},
			{
				Type:    "input",
				BlockID: textBlockID,
				Label:   slack.PlainText("피드백 내용"),
				Element: &slack.BlockElement{
					Type:      "plain_text_input",
					ActionID:  textActionID,
					Multiline: true,
				},
			},
		},
	}
}
