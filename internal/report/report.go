package report

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hashmap-kz/storecrypt/pkg/storage"

	"github.com/hashmap-kz/slackrep/config"
	"github.com/hashmap-kz/slackrep/internal/metrics"
	"github.com/hashmap-kz/slackrep/internal/slack"
)

type ChatClient interface {
	ConversationsHistory(ctx context.Context, opts *slack.HistoryOpts) ([]slack.Message, error)
	ConversationsReplies(ctx context.Context, opts *slack.HistoryOpts, threadTS string) ([]slack.Message, error)
	PostMessage(ctx context.Context, req *slack.PostMessageReq) (string, error)
}

type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// FeedbackSource supplies accumulated reviewer feedback already formatted
// for the prompt.
type FeedbackSource interface {
	FetchFormatted(ctx context.Context) (string, error)
}

type GeneratorOpts struct {
	Chat          ChatClient
	LLM           Completer
	Feedback      FeedbackSource  // optional
	Archive       storage.Storage // optional
	Channel       string
	Guide         string
	Timezone      *time.Location
	ForceType     string
	WeeklyWeekday time.Weekday
}

// Generator runs the full report pipeline: collect channel messages,
// merge accumulated feedback, generate via the model, post to Slack and
// archive the result.
type Generator struct {
	l    *slog.Logger
	opts *GeneratorOpts
}

func NewGenerator(opts *GeneratorOpts) *Generator {
	return &Generator{
		l:    slog.With(slog.String("component", "report-generator")),
		opts: opts,
	}
}

// Run produces and publishes one report for the given day. A window with no
// messages is not an error, the run is skipped.
func (g *Generator) Run(ctx context.Context, today time.Time) error {
	return g.RunType(ctx, today, g.opts.ForceType)
}

// RunType is Run with an explicit type override, used by the ad-hoc report
// endpoint and the one-shot CLI command.
func (g *Generator) RunType(ctx context.Context, today time.Time, force string) error {
	begin := time.Now()

	if force == "" {
		force = g.opts.ForceType
	}
	typ := DecideType(today, force, g.opts.WeeklyWeekday)
	start, end, label := Window(today.In(g.opts.Timezone), typ)

	g.l.Info("report run started",
		slog.String("type", string(typ)),
		slog.String("window", label),
	)

	feedbackText := ""
	if g.opts.Feedback != nil {
		var err error
		feedbackText, err = g.opts.Feedback.FetchFormatted(ctx)
		if err != nil {
			g.l.Warn("feedback fetch failed, continuing without it", slog.Any("err", err))
			feedbackText = ""
		}
	}

	msgs, err := g.collect(ctx, start, end)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		g.l.Info("no messages in window, skipping", slog.String("window", label))
		metrics.ReportRunsSkipped.WithLabelValues("no-messages").Inc()
		return nil
	}

	transcript := Transcript(msgs, g.opts.Timezone)
	g.l.Debug("transcript built",
		slog.Int("messages", len(msgs)),
		slog.Int("chars", len(transcript)),
	)

	text, err := g.opts.LLM.Complete(ctx,
		SystemPrompt(g.opts.Guide),
		UserPrompt(typ, label, transcript, feedbackText),
	)
	if err != nil {
		return fmt.Errorf("generate report: %w", err)
	}
	text = ToMrkdwn(text)

	reportTS, err := g.post(ctx, typ, label, text)
	if err != nil {
		return err
	}

	g.archive(ctx, label, typ, text)

	metrics.ReportsGenerated.WithLabelValues(string(typ)).Inc()
	metrics.ReportDuration.Observe(time.Since(begin).Seconds())
	g.l.Info("report published",
		slog.String("type", string(typ)),
		slog.String("window", label),
		slog.String("ts", reportTS),
	)
	return nil
}

// collect fetches top-level messages plus thread replies and orders them
// chronologically.
func (g *Generator) collect(ctx context.Context, start, end time.Time) ([]slack.Message, error) {
	opts := &slack.HistoryOpts{
		Channel: g.opts.Channel,
		Oldest:  slack.FormatTS(start),
		Latest:  slack.FormatTS(end),
	}

	top, err := g.opts.Chat.ConversationsHistory(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("collect messages: %w", err)
	}

	all := make([]slack.Message, 0, len(top))
	for _, m := range top {
		all = append(all, m)
		if m.ReplyCount == 0 {
			continue
		}
		replies, err := g.opts.Chat.ConversationsReplies(ctx, opts, m.TS)
		if err != nil {
			g.l.Warn("thread fetch failed", slog.String("ts", m.TS), slog.Any("err", err))
			continue
		}
		all = append(all, replies...)
	}

	SortByTS(all)
	return all, nil
}

func (g *Generator) post(ctx context.Context, typ Type, label, text string) (string, error) {
	typeLabel := "일간 리포트"
	if typ == TypeWeekly {
		typeLabel = "주간 리포트"
	}
	full := fmt.Sprintf("*%s*  |  %s\n───\n\n%s", typeLabel, label, text)

	reportTS, err := g.opts.Chat.PostMessage(ctx, &slack.PostMessageReq{
		Channel: g.opts.Channel,
		Text:    full,
		Mrkdwn:  true,
	})
	if err != nil {
		return "", fmt.Errorf("post report: %w", err)
	}

	// feedback button lives in the report's thread; losing it is not fatal
	_, err = g.opts.Chat.PostMessage(ctx, &slack.PostMessageReq{
		Channel:  g.opts.Channel,
		Text:     "피드백을 남겨주세요",
		ThreadTS: reportTS,
		Blocks:   slack.FeedbackButtonBlocks("feedback_button", "💬 피드백 하기"),
	})
	if err != nil {
		g.l.Warn("feedback button post failed", slog.Any("err", err))
	}
	return reportTS, nil
}

func (g *Generator) archive(ctx context.Context, label string, typ Type, text string) {
	if g.opts.Archive == nil {
		return
	}
	name := ArchiveName(label)
	content := fmt.Sprintf("# %s report %s\n\n%s\n", typ, label, text)
	if err := g.opts.Archive.Put(ctx, name, strings.NewReader(content)); err != nil {
		g.l.Warn("report archive failed", slog.String("name", name), slog.Any("err", err))
		return
	}
	g.l.Info("report archived", slog.String("name", name), slog.String("subpath", config.ReportsSubpath))
}
