package retentionsuperv

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/hashmap-kz/storecrypt/pkg/storage"
	"github.com/robfig/cron/v3"

	"github.com/hashmap-kz/slackrep/config"
	"github.com/hashmap-kz/slackrep/internal/metrics/bkmetrics"
)

const backupNameLayout = "2006-01-02"

// RetentionSupervisor prunes old channel backups from the archive on a
// cron schedule, either by age or by count.
type RetentionSupervisor struct {
	l    *slog.Logger
	cfg  *config.Config
	stor storage.Storage
}

func NewRetentionSupervisor(cfg *config.Config, stor storage.Storage) *RetentionSupervisor {
	return &RetentionSupervisor{
		l:    slog.With(slog.String("component", "retention-supervisor")),
		cfg:  cfg,
		stor: stor,
	}
}

func (u *RetentionSupervisor) log() *slog.Logger {
	if u.l != nil {
		return u.l
	}
	return slog.With(slog.String("component", "retention-supervisor"))
}

// parseBackupName extracts the period start date from a backup object name
// like "2026-02-06.json".
func parseBackupName(name string) (time.Time, bool) {
	base, ok := strings.CutSuffix(name, ".json")
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(backupNameLayout, base)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// filterBackupsToDeleteTimeBased returns backup names older than keepPeriod.
// now: optional, if zero, uses time.Now().
func filterBackupsToDeleteTimeBased(names []string, keepPeriod time.Duration, now time.Time) []string {
	if now.IsZero() {
		now = time.Now()
	}
	cutoff := now.Add(-keepPeriod)

	toDelete := []string{}
	for _, name := range names {
		t, ok := parseBackupName(name)
		if !ok {
			// Skip invalid names
			continue
		}
		if t.Before(cutoff) {
			toDelete = append(toDelete, name)
		}
	}
	sort.Strings(toDelete)
	return toDelete
}

// filterBackupsToDeleteCountBased returns all backup names beyond the
// keepLast newest ones.
func filterBackupsToDeleteCountBased(names []string, keepLast int) []string {
	type nameWithTime struct {
		name string
		t    time.Time
	}

	parsed := make([]nameWithTime, 0, len(names))
	for _, name := range names {
		t, ok := parseBackupName(name)
		if !ok {
			continue
		}
		parsed = append(parsed, nameWithTime{name, t})
	}

	sort.Slice(parsed, func(i, j int) bool {
		return parsed[i].t.After(parsed[j].t) // newest first
	})

	if keepLast >= len(parsed) {
		return nil
	}

	toDelete := make([]string, 0, len(parsed))
	for _, entry := range parsed[keepLast:] {
		toDelete = append(toDelete, entry.name)
	}
	return toDelete
}

// RunOnce prunes once according to the configured strategy.
func (u *RetentionSupervisor) RunOnce(ctx context.Context) error {
	names, err := u.stor.List(ctx, "")
	if err != nil {
		return fmt.Errorf("list backups: %w", err)
	}

	var toDelete []string
	switch u.cfg.Retention.Type {
	case config.RetentionTypeTime:
		toDelete = filterBackupsToDeleteTimeBased(names, u.cfg.Retention.KeepPeriodParsed, time.Time{})
	case config.RetentionTypeCount:
		toDelete = filterBackupsToDeleteCountBased(names, u.cfg.Retention.KeepCount)
	default:
		return fmt.Errorf("unknown retention type: %s", u.cfg.Retention.Type)
	}

	if len(toDelete) == 0 {
		u.log().Debug("nothing to prune", slog.Int("backups", len(names)))
		return nil
	}

	for _, name := range toDelete {
		if err := u.stor.Delete(ctx, name); err != nil {
			return fmt.Errorf("delete backup %s: %w", name, err)
		}
		u.log().Info("backup pruned", slog.String("name", name))
	}

	bkmetrics.M.AddArchiveFilesDeleted(float64(len(toDelete)))
	return nil
}

// Run blocks until ctx is canceled, pruning on schedule.
func (u *RetentionSupervisor) Run(ctx context.Context) error {
	// POSIX compatible cron syntax: "* * * * *". Without support of seconds.
	c := cron.New(
		cron.WithParser(cron.NewParser(
			cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow,
		)),
		cron.WithLocation(u.cfg.Main.TimezoneParsed),
	)

	_, err := c.AddFunc(u.cfg.Retention.Cron, func() {
		u.log().Info("starting scheduled retention")
		if err := u.RunOnce(ctx); err != nil {
			u.log().Error("retention failed", slog.Any("err", err))
		}
	})
	if err != nil {
		return fmt.Errorf("retention cron %q: %w", u.cfg.Retention.Cron, err)
	}

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return ctx.Err()
}
