package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hashmap-kz/slackrep/internal/feedback/model"
	"github.com/hashmap-kz/slackrep/internal/feedback/store"
	"github.com/hashmap-kz/slackrep/internal/metrics"
)

type FeedbackService interface {
	List(ctx context.Context) ([]model.Entry, error)
	Add(ctx context.Context, req *AddRequest) (*model.Entry, error)
	Delete(ctx context.Context, id string) error
}

type AddRequest struct {
	Date     string `json:"date,omitempty"`
	Category string `json:"category"`
	Text     string `json:"text"`
	User     string `json:"user,omitempty"`
}

type feedbackSvc struct {
	l        *slog.Logger
	store    store.Store
	timezone *time.Location
}

var _ FeedbackService = &feedbackSvc{}

type FeedbackServiceOpts struct {
	Store    store.Store
	Timezone *time.Location
}

func NewFeedbackService(opts *FeedbackServiceOpts) FeedbackService {
	return &feedbackSvc{
		l:        slog.With(slog.String("component", "feedback-service")),
		store:    opts.Store,
		timezone: opts.Timezone,
	}
}

func (s *feedbackSvc) List(ctx context.Context) ([]model.Entry, error) {
	entries, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []model.Entry{}
	}
	return entries, nil
}

// Add stores a new entry, stamping id, date and created_at.
func (s *feedbackSvc) Add(ctx context.Context, req *AddRequest) (*model.Entry, error) {
	now := time.Now().In(s.timezone)

	date := strings.TrimSpace(req.Date)
	if date == "" {
		date = now.Format("2006-01-02")
	}

	entry := &model.Entry{
		ID:        uuid.New(),
		Date:      date,
		Category:  req.Category,
		Text:      strings.TrimSpace(req.Text),
		User:      req.User,
		CreatedAt: now,
	}
	if err := entry.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.Add(ctx, entry); err != nil {
		return nil, err
	}

	metrics.FeedbackEntries.Inc()
	s.l.Info("feedback stored",
		slog.String("id", entry.ID.String()),
		slog.String("category", entry.Category),
		slog.String("user", entry.User),
	)
	return entry, nil
}

func (s *feedbackSvc) Delete(ctx context.Context, id string) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid feedback id: %q", id)
	}
	if err := s.store.Delete(ctx, parsed); err != nil {
		return err
	}
	metrics.FeedbackEntries.Dec()
	s.l.Info("feedback deleted", slog.String("id", id))
	return nil
}
