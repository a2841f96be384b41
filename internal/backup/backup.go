package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/hashmap-kz/storecrypt/pkg/storage"

	"github.com/hashmap-kz/slackrep/internal/metrics/bkmetrics"
	"github.com/hashmap-kz/slackrep/internal/shared/x/strx"
	"github.com/hashmap-kz/slackrep/internal/slack"
)

type ChatClient interface {
	AuthTest(ctx context.Context) (string, error)
	ConversationsHistory(ctx context.Context, opts *slack.HistoryOpts) ([]slack.Message, error)
	ConversationsReplies(ctx context.Context, opts *slack.HistoryOpts, threadTS string) ([]slack.Message, error)
	UserDisplayName(ctx context.Context, userID string) string
}

// Message is the enriched, human-readable form a backup stores.
type Message struct {
	TS             string          `json:"ts"`
	Datetime       string          `json:"datetime"`
	Date           string          `json:"date"`
	Text           string          `json:"text"`
	IsThreadReply  bool            `json:"is_thread_reply"`
	ParentTS       string          `json:"parent_ts,omitempty"`
	UserID         string          `json:"user_id,omitempty"`
	UserName       string          `json:"user_name,omitempty"`
	IsBot          bool            `json:"is_bot,omitempty"`
	HasFiles       bool            `json:"has_files,omitempty"`
	FileNames      []string        `json:"file_names,omitempty"`
	HasAttachments bool            `json:"has_attachments,omitempty"`
	Reactions      []ReactionCount `json:"reactions,omitempty"`
}

type ReactionCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type Stats struct {
	WeeklyMessages    int `json:"weekly_messages"`
	LateThreadReplies int `json:"late_thread_replies"`
	TotalSeen         int `json:"total_seen"`
}

type Meta struct {
	Period      string `json:"period"`
	Start       string `json:"start"`
	End         string `json:"end"`
	GeneratedAt string `json:"generated_at"`
	ChannelID   string `json:"channel_id"`
	Stats       Stats  `json:"stats"`
}

// Document is one weekly backup object. SeenTS holds every ts observed in
// the wide fetch window; next week's run diffs against it to catch thread
// replies that landed on older parents.
type Document struct {
	Meta              Meta      `json:"meta"`
	WeeklyMessages    []Message `json:"weekly_messages"`
	LateThreadReplies []Message `json:"late_thread_replies"`
	SeenTS            []string  `json:"seen_ts"`
}

type RunnerOpts struct {
	Chat       ChatClient
	Storage    storage.Storage
	Channel    string
	Timezone   *time.Location
	WindowDays int
}

// Runner produces weekly channel backups.
type Runner struct {
	l    *slog.Logger
	opts *RunnerOpts
}

func NewRunner(opts *RunnerOpts) *Runner {
	return &Runner{
		l:    slog.With(slog.String("component", "backup-runner")),
		opts: opts,
	}
}

// WeeklyRange returns the backup period: previous Friday 00:00 through
// this Thursday 23:59:59.
func WeeklyRange(today time.Time) (start, end time.Time) {
	loc := today.Location()
	sinceFriday := (int(today.Weekday()) - int(time.Friday) + 7) % 7
	thisFriday := today.AddDate(0, 0, -sinceFriday)
	prevFriday := thisFriday.AddDate(0, 0, -7)
	thisThursday := thisFriday.AddDate(0, 0, -1)

	start = time.Date(prevFriday.Year(), prevFriday.Month(), prevFriday.Day(), 0, 0, 0, 0, loc)
	end = time.Date(thisThursday.Year(), thisThursday.Month(), thisThursday.Day(), 23, 59, 59, 0, loc)
	return start, end
}

// Run builds and stores one backup document for the week containing today.
func (r *Runner) Run(ctx context.Context, today time.Time) error {
	start, end := WeeklyRange(today.In(r.opts.Timezone))
	period := start.Format("2006-01-02") + " ~ " + end.Format("2006-01-02")
	r.l.Info("backup run started", slog.String("period", period))

	all, err := r.fetchAll(ctx, end)
	if err != nil {
		return err
	}

	prevSeen := r.loadPreviousSeen(ctx)

	botID, err := r.opts.Chat.AuthTest(ctx)
	if err != nil {
		r.l.Warn("auth.test failed, self-bot messages will not be filtered", slog.Any("err", err))
		botID = ""
	}

	var weekly, late []Message
	seen := make([]string, 0, len(all))
	for ts, m := range all {
		seen = append(seen, ts)

		if botID != "" && m.BotID == botID {
			continue
		}

		at, err := slack.ParseTS(ts)
		if err != nil {
			continue
		}
		enriched := r.enrich(ctx, &m, at)

		inRange := !at.Before(start) && !at.After(end)
		_, seenBefore := prevSeen[ts]

		switch {
		case inRange:
			weekly = append(weekly, enriched)
		case !seenBefore && enriched.IsThreadReply:
			late = append(late, enriched)
		}
	}

	sortByTS(weekly)
	sortByTS(late)
	strx.SortStringsDesc(seen)

	doc := &Document{
		Meta: Meta{
			Period:      period,
			Start:       start.Format(time.RFC3339),
			End:         end.Format(time.RFC3339),
			GeneratedAt: time.Now().In(r.opts.Timezone).Format(time.RFC3339),
			ChannelID:   r.opts.Channel,
			Stats: Stats{
				WeeklyMessages:    len(weekly),
				LateThreadReplies: len(late),
				TotalSeen:         len(seen),
			},
		},
		WeeklyMessages:    weekly,
		LateThreadReplies: late,
		SeenTS:            seen,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal backup: %w", err)
	}

	name := start.Format("2006-01-02") + ".json"
	if err := r.opts.Storage.Put(ctx, name, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("store backup %s: %w", name, err)
	}

	bkmetrics.M.AddBackupMessages(float64(len(weekly) + len(late)))
	bkmetrics.M.AddBackupBytesWritten(float64(len(data)))
	r.l.Info("backup stored",
		slog.String("name", name),
		slog.Int("weekly-messages", len(weekly)),
		slog.Int("late-thread-replies", len(late)),
		slog.Int("total-seen", len(seen)),
	)
	return nil
}

// fetchAll collects parents in a wide window plus every reply of their
// threads, keyed by ts.
func (r *Runner) fetchAll(ctx context.Context, end time.Time) (map[string]slack.Message, error) {
	wideStart := end.AddDate(0, 0, -r.opts.WindowDays)

	parents, err := r.opts.Chat.ConversationsHistory(ctx, &slack.HistoryOpts{
		Channel: r.opts.Channel,
		Oldest:  slack.FormatTS(wideStart),
		Latest:  slack.FormatTS(end),
	})
	if err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}

	all := make(map[string]slack.Message, len(parents))
	for _, m := range parents {
		all[m.TS] = m
		if m.ReplyCount == 0 {
			continue
		}
		// replies are fetched without a window: old threads may still grow
		replies, err := r.opts.Chat.ConversationsReplies(ctx, &slack.HistoryOpts{Channel: r.opts.Channel}, m.TS)
		if err != nil {
			r.l.Warn("thread fetch failed", slog.String("ts", m.TS), slog.Any("err", err))
			continue
		}
		for _, reply := range replies {
			all[reply.TS] = reply
		}
	}
	return all, nil
}

// loadPreviousSeen reads seen_ts from the newest parseable backup.
func (r *Runner) loadPreviousSeen(ctx context.Context) map[string]struct{} {
	seen := make(map[string]struct{})

	names, err := r.opts.Storage.List(ctx, "")
	if err != nil {
		r.l.Warn("backup listing failed, starting fresh", slog.Any("err", err))
		return seen
	}
	strx.SortStringsDesc(names)

	for _, name := range names {
		rc, err := r.opts.Storage.Get(ctx, name)
		if err != nil {
			continue
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			continue
		}

		var doc Document
		if err := json.Unmarshal(data, &doc); err != nil {
			continue
		}
		for _, ts := range doc.SeenTS {
			seen[ts] = struct{}{}
		}
		r.l.Debug("previous backup loaded",
			slog.String("name", name),
			slog.Int("seen-ts", len(seen)),
		)
		return seen
	}

	r.l.Info("no previous backup found, starting fresh")
	return seen
}

func (r *Runner) enrich(ctx context.Context, m *slack.Message, at time.Time) Message {
	local := at.In(r.opts.Timezone)
	out := Message{
		TS:            m.TS,
		Datetime:      local.Format("2006-01-02 15:04:05"),
		Date:          local.Format("2006-01-02"),
		Text:          m.Text,
		IsThreadReply: m.IsThreadReply(),
	}
	if out.IsThreadReply {
		out.ParentTS = m.ThreadTS
	}

	switch {
	case m.User != "":
		out.UserID = m.User
		out.UserName = r.opts.Chat.UserDisplayName(ctx, m.User)
	case m.BotID != "":
		out.IsBot = true
		out.UserName = m.Username
		if out.UserName == "" {
			out.UserName = "bot:" + m.BotID
		}
	}

	if len(m.Files) > 0 {
		out.HasFiles = true
		for _, f := range m.Files {
			out.FileNames = append(out.FileNames, f.Name)
		}
	}
	if len(m.Attachments) > 0 {
		out.HasAttachments = true
	}
	for _, reaction := range m.Reactions {
		out.Reactions = append(out.Reactions, ReactionCount{Name: reaction.Name, Count: reaction.Count})
	}
	return out
}

func sortByTS(msgs []Message) {
	sort.Slice(msgs, func(i, j int) bool {
		return slack.CompareTS(msgs[i].TS, msgs[j].TS) < 0
	})
}
