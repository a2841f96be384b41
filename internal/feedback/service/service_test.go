package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashmap-kz/slackrep/internal/feedback/model"
	"github.com/hashmap-kz/slackrep/internal/feedback/store"
)

func testService(t *testing.T) FeedbackService {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)
	return NewFeedbackService(&FeedbackServiceOpts{
		Store:    store.NewMemoryStore(),
		Timezone: loc,
	})
}

func TestFeedbackService_Add(t *testing.T) {
	ctx := context.Background()
	svc := testService(t)

	entry, err := svc.Add(ctx, &AddRequest{
		Category: model.CategoryFormat,
		Text:     "  더 짧게  ",
		User:     "jane",
	})
	require.NoError(t, err)

	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", entry.ID.String())
	assert.Equal(t, "더 짧게", entry.Text)
	assert.NotEmpty(t, entry.Date)
	assert.False(t, entry.CreatedAt.IsZero())

	entries, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestFeedbackService_Add_KeepsExplicitDate(t *testing.T) {
	svc := testService(t)
	entry, err := svc.Add(context.Background(), &AddRequest{
		Date:     "2026-02-01",
		Category: model.CategoryGeneral,
		Text:     "ok",
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-02-01", entry.Date)
}

func TestFeedbackService_Add_RejectsInvalid(t *testing.T) {
	svc := testService(t)

	_, err := svc.Add(context.Background(), &AddRequest{Category: "praise", Text: "x"})
	assert.Error(t, err)

	_, err = svc.Add(context.Background(), &AddRequest{Category: model.CategoryGeneral, Text: "   "})
	assert.Error(t, err)
}

func TestFeedbackService_Delete(t *testing.T) {
	ctx := context.Background()
	svc := testService(t)

	entry, err := svc.Add(ctx, &AddRequest{Category: model.CategoryGeneral, Text: "ok"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, entry.ID.String()))

	entries, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFeedbackService_Delete_BadID(t *testing.T) {
	svc := testService(t)
	assert.Error(t, svc.Delete(context.Background(), "not-a-uuid"))
}

func TestFeedbackService_List_NeverNil(t *testing.T) {
	svc := testService(t)
	entries, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}
