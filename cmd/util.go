package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/time/rate"

	st "github.com/hashmap-kz/storecrypt/pkg/storage"

	"github.com/hashmap-kz/slackrep/config"
	"github.com/hashmap-kz/slackrep/internal/backup"
	"github.com/hashmap-kz/slackrep/internal/feedback"
	"github.com/hashmap-kz/slackrep/internal/feedback/store"
	"github.com/hashmap-kz/slackrep/internal/llm"
	"github.com/hashmap-kz/slackrep/internal/report"
	"github.com/hashmap-kz/slackrep/internal/shared"
	"github.com/hashmap-kz/slackrep/internal/slack"
)

// HTTP

func runHTTPServer(ctx context.Context, port int, router http.Handler) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           router,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		// Context was cancelled, shut down the HTTP server gracefully
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP server shutdown error", slog.Any("err", err))
		} else {
			slog.Debug("HTTP server shut down")
		}
	}()

	slog.Info("starting HTTP server", slog.String("addr", srv.Addr))

	// Start the server (blocking)
	err := srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err // real error
	}
	return nil
}

// Dependency wiring

func buildChatClient(cfg *config.Config) *slack.Client {
	// slack web api tier limits; ~1rps with small bursts
	return slack.NewClient(&slack.ClientOpts{
		APIURL:  cfg.Slack.APIURL,
		Token:   cfg.Slack.Token,
		Limiter: rate.NewLimiter(1, 3),
	})
}

func buildLLMClient(cfg *config.Config) *llm.Client {
	return llm.NewClient(&llm.ClientOpts{
		APIURL:    cfg.Anthropic.APIURL,
		APIKey:    cfg.Anthropic.APIKey,
		Model:     cfg.Anthropic.Model,
		MaxTokens: cfg.Anthropic.MaxTokens,
	})
}

func readGuide(cfg *config.Config) string {
	if cfg.Report.GuidePath == "" {
		return ""
	}
	data, err := os.ReadFile(cfg.Report.GuidePath)
	if err != nil {
		slog.Warn("cannot read report guide, continuing without it",
			slog.String("path", cfg.Report.GuidePath),
			slog.Any("err", err),
		)
		return ""
	}
	return string(data)
}

func buildFeedbackStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Feedback.Store.Name {
	case config.FeedbackStorePostgres:
		return store.NewPostgresStore(ctx, cfg.Feedback.Store.Postgres.ConnString)
	case config.FeedbackStoreMemory:
		return store.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown feedback store: %s", cfg.Feedback.Store.Name)
	}
}

func buildGenerator(cfg *config.Config, chat *slack.Client, src report.FeedbackSource) (*report.Generator, error) {
	var archive st.Storage
	if cfg.HasStorageConfigured() {
		stor, err := shared.SetupStorage(&shared.SetupStorageOpts{
			BaseDir: cfg.Main.Directory,
			SubPath: config.ReportsSubpath,
		})
		if err != nil {
			return nil, err
		}
		archive = stor
	}

	return report.NewGenerator(&report.GeneratorOpts{
		Chat:          chat,
		LLM:           buildLLMClient(cfg),
		Feedback:      src,
		Archive:       archive,
		Channel:       cfg.Report.ChannelID,
		Guide:         readGuide(cfg),
		Timezone:      cfg.Main.TimezoneParsed,
		ForceType:     cfg.Report.ForceType,
		WeeklyWeekday: time.Weekday(cfg.Report.WeeklyWeekday),
	}), nil
}

func buildBackupRunner(cfg *config.Config, chat *slack.Client) (*backup.Runner, *st.TransformingStorage, error) {
	stor, err := shared.SetupStorage(&shared.SetupStorageOpts{
		BaseDir: cfg.Main.Directory,
		SubPath: config.BackupsSubpath,
	})
	if err != nil {
		return nil, nil, err
	}
	runner := backup.NewRunner(&backup.RunnerOpts{
		Chat:       chat,
		Storage:    stor,
		Channel:    cfg.Report.ChannelID,
		Timezone:   cfg.Main.TimezoneParsed,
		WindowDays: cfg.Backup.WindowDays,
	})
	return runner, stor, nil
}

// feedbackSource picks where the report generator reads accumulated
// feedback from: the in-process service when both sides run in one
// daemon, the remote feedback API otherwise.
func feedbackSource(cfg *config.Config, svc *feedbackSide) report.FeedbackSource {
	if svc != nil && svc.Service != nil {
		return &feedback.LocalSource{Service: svc.Service}
	}
	if cfg.Feedback.Enable && cfg.Feedback.URL != "" {
		return feedback.NewClient(cfg.Feedback.URL, cfg.Feedback.Token)
	}
	return nil
}
