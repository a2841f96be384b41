package retentionsuperv

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashmap-kz/slackrep/config"
	"github.com/hashmap-kz/slackrep/internal/shared/mock"
)

func TestFilterBackupsToDeleteTimeBased(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	names := []string{
		"2026-02-20.json",
		"2026-02-06.json",
		"2026-01-09.json",
		"2025-12-26.json",
		"garbage.txt",
	}

	tests := []struct {
		name       string
		keepPeriod time.Duration
		want       []string
	}{
		{
			name:       "keep one month",
			keepPeriod: 30 * 24 * time.Hour,
			want:       []string{"2025-12-26.json", "2026-01-09.json"},
		},
		{
			name:       "keep everything",
			keepPeriod: 365 * 24 * time.Hour,
			want:       []string{},
		},
		{
			name:       "keep nothing",
			keepPeriod: time.Hour,
			want:       []string{"2025-12-26.json", "2026-01-09.json", "2026-02-06.json", "2026-02-20.json"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := filterBackupsToDeleteTimeBased(names, tt.keepPeriod, now)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilterBackupsToDeleteCountBased(t *testing.T) {
	names := []string{
		"2026-02-06.json",
		"2026-02-20.json",
		"2026-01-09.json",
		"notes.md",
	}

	tests := []struct {
		name     string
		keepLast int
		want     []string
	}{
		{
			name:     "keep two newest",
			keepLast: 2,
			want:     []string{"2026-01-09.json"},
		},
		{
			name:     "keep more than exist",
			keepLast: 10,
			want:     nil,
		},
		{
			name:     "keep none",
			keepLast: 0,
			want:     []string{"2026-02-20.json", "2026-02-06.json", "2026-01-09.json"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := filterBackupsToDeleteCountBased(names, tt.keepLast)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRetentionSupervisor_RunOnce_CountBased(t *testing.T) {
	stor := mock.NewInMemoryStorage()
	stor.Files["2026-01-09.json"] = []byte("{}")
	stor.Files["2026-02-06.json"] = []byte("{}")
	stor.Files["2026-02-20.json"] = []byte("{}")

	cfg := &config.Config{}
	cfg.Retention.Type = config.RetentionTypeCount
	cfg.Retention.KeepCount = 2

	u := NewRetentionSupervisor(cfg, stor)
	require.NoError(t, u.RunOnce(context.Background()))

	assert.Len(t, stor.Files, 2)
	assert.NotContains(t, stor.Files, "2026-01-09.json")
}
