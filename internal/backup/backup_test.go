package backup

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashmap-kz/slackrep/internal/shared/mock"
	"github.com/hashmap-kz/slackrep/internal/slack"
)

type fakeChat struct {
	botID   string
	history []slack.Message
	replies map[string][]slack.Message
}

func (f *fakeChat) AuthTest(_ context.Context) (string, error) {
	return f.botID, nil
}

func (f *fakeChat) ConversationsHistory(_ context.Context, _ *slack.HistoryOpts) ([]slack.Message, error) {
	return f.history, nil
}

func (f *fakeChat) ConversationsReplies(_ context.Context, _ *slack.HistoryOpts, threadTS string) ([]slack.Message, error) {
	return f.replies[threadTS], nil
}

func (f *fakeChat) UserDisplayName(_ context.Context, userID string) string {
	if userID == "U1" {
		return "jane"
	}
	return userID
}

func TestWeeklyRange(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)

	tests := []struct {
		name      string
		today     time.Time
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "run on friday",
			today:     time.Date(2026, 2, 13, 10, 0, 0, 0, loc),
			wantStart: time.Date(2026, 2, 6, 0, 0, 0, 0, loc),
			wantEnd:   time.Date(2026, 2, 12, 23, 59, 59, 0, loc),
		},
		{
			name:      "run on monday",
			today:     time.Date(2026, 2, 9, 10, 0, 0, 0, loc),
			wantStart: time.Date(2026, 1, 30, 0, 0, 0, 0, loc),
			wantEnd:   time.Date(2026, 2, 5, 23, 59, 59, 0, loc),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := WeeklyRange(tt.today)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func TestRunner_Run(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)

	// period under test: 2026-02-06 00:00 ~ 2026-02-12 23:59:59
	inRangeTS := slack.FormatTS(time.Date(2026, 2, 10, 9, 30, 0, 0, loc))
	oldParentTS := slack.FormatTS(time.Date(2026, 1, 20, 9, 0, 0, 0, loc))
	oldSeenReplyTS := slack.FormatTS(time.Date(2026, 1, 21, 9, 0, 0, 0, loc))
	lateReplyTS := slack.FormatTS(time.Date(2026, 1, 25, 9, 0, 0, 0, loc))
	selfBotTS := slack.FormatTS(time.Date(2026, 2, 11, 9, 0, 0, 0, loc))

	chat := &fakeChat{
		botID: "B_SELF",
		history: []slack.Message{
			{TS: inRangeTS, User: "U1", Text: "신규 신청", Reactions: []slack.Reaction{{Name: "white_check_mark", Count: 2}}},
			{TS: oldParentTS, User: "U2", Text: "old parent", ReplyCount: 2},
			{TS: selfBotTS, BotID: "B_SELF", Text: "generated report"},
		},
		replies: map[string][]slack.Message{
			oldParentTS: {
				{TS: oldSeenReplyTS, ThreadTS: oldParentTS, User: "U2", Text: "seen before"},
				{TS: lateReplyTS, ThreadTS: oldParentTS, User: "U1", Text: "late reply"},
			},
		},
	}

	stor := mock.NewInMemoryStorage()

	// previous backup knows the old parent and its first reply
	prev, err := json.Marshal(&Document{SeenTS: []string{oldParentTS, oldSeenReplyTS}})
	require.NoError(t, err)
	stor.Files["2026-01-30.json"] = prev

	r := NewRunner(&RunnerOpts{
		Chat:       chat,
		Storage:    stor,
		Channel:    "C123",
		Timezone:   loc,
		WindowDays: 30,
	})

	friday := time.Date(2026, 2, 13, 10, 0, 0, 0, loc)
	require.NoError(t, r.Run(context.Background(), friday))

	data, ok := stor.Files["2026-02-06.json"]
	require.True(t, ok)

	var doc Document
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, "2026-02-06 ~ 2026-02-12", doc.Meta.Period)
	assert.Equal(t, "C123", doc.Meta.ChannelID)

	// in-range user message kept, self-bot message dropped
	require.Len(t, doc.WeeklyMessages, 1)
	weekly := doc.WeeklyMessages[0]
	assert.Equal(t, "신규 신청", weekly.Text)
	assert.Equal(t, "jane", weekly.UserName)
	assert.Equal(t, "2026-02-10", weekly.Date)
	require.Len(t, weekly.Reactions, 1)
	assert.Equal(t, 2, weekly.Reactions[0].Count)

	// only the unseen reply on the old parent is reported as late
	require.Len(t, doc.LateThreadReplies, 1)
	late := doc.LateThreadReplies[0]
	assert.Equal(t, "late reply", late.Text)
	assert.Equal(t, oldParentTS, late.ParentTS)
	assert.True(t, late.IsThreadReply)

	// every observed ts is carried forward, including the self-bot one
	assert.Len(t, doc.SeenTS, 5)
	assert.Equal(t, doc.Meta.Stats.TotalSeen, len(doc.SeenTS))
	assert.Equal(t, 1, doc.Meta.Stats.WeeklyMessages)
	assert.Equal(t, 1, doc.Meta.Stats.LateThreadReplies)
}

func TestRunner_Run_NoPreviousBackup(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)

	oldParentTS := slack.FormatTS(time.Date(2026, 1, 20, 9, 0, 0, 0, loc))
	replyTS := slack.FormatTS(time.Date(2026, 1, 21, 9, 0, 0, 0, loc))

	chat := &fakeChat{
		history: []slack.Message{
			{TS: oldParentTS, User: "U2", Text: "old parent", ReplyCount: 1},
		},
		replies: map[string][]slack.Message{
			oldParentTS: {
				{TS: replyTS, ThreadTS: oldParentTS, User: "U2", Text: "reply"},
			},
		},
	}
	stor := mock.NewInMemoryStorage()

	r := NewRunner(&RunnerOpts{
		Chat:       chat,
		Storage:    stor,
		Channel:    "C123",
		Timezone:   loc,
		WindowDays: 30,
	})

	friday := time.Date(2026, 2, 13, 10, 0, 0, 0, loc)
	require.NoError(t, r.Run(context.Background(), friday))

	var doc Document
	require.NoError(t, json.Unmarshal(stor.Files["2026-02-06.json"], &doc))

	// fresh start: out-of-range thread replies all count as late
	assert.Empty(t, doc.WeeklyMessages)
	require.Len(t, doc.LateThreadReplies, 1)
	assert.Equal(t, "reply", doc.LateThreadReplies[0].Text)
}
