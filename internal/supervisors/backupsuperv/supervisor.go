package backupsuperv

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/hashmap-kz/slackrep/config"
	"github.com/hashmap-kz/slackrep/internal/backup"
)

// BackupSupervisor fires the weekly channel backup on its cron schedule.
type BackupSupervisor struct {
	l      *slog.Logger
	cfg    *config.Config
	runner *backup.Runner
}

func NewBackupSupervisor(cfg *config.Config, runner *backup.Runner) *BackupSupervisor {
	return &BackupSupervisor{
		l:      slog.With(slog.String("component", "backup-supervisor")),
		cfg:    cfg,
		runner: runner,
	}
}

func (u *BackupSupervisor) log() *slog.Logger {
	if u.l != nil {
		return u.l
	}
	return slog.With(slog.String("component", "backup-supervisor"))
}

// RunOnce executes one backup run for today. Backups are not gated on
// business days: skipping a run would lose a whole week of history.
func (u *BackupSupervisor) RunOnce(ctx context.Context) error {
	today := time.Now().In(u.cfg.Main.TimezoneParsed)
	return u.runner.Run(ctx, today)
}

// Run blocks until ctx is canceled, firing scheduled backup runs.
func (u *BackupSupervisor) Run(ctx context.Context) error {
	// POSIX compatible cron syntax: "* * * * *". Without support of seconds.
	c := cron.New(
		cron.WithParser(cron.NewParser(
			cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow,
		)),
		cron.WithLocation(u.cfg.Main.TimezoneParsed),
	)

	_, err := c.AddFunc(u.cfg.Backup.Cron, func() {
		u.log().Info("starting scheduled backup")
		if err := u.RunOnce(ctx); err != nil {
			u.log().Error("scheduled backup failed", slog.Any("err", err))
		}
	})
	if err != nil {
		return fmt.Errorf("backup cron %q: %w", u.cfg.Backup.Cron, err)
	}

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return ctx.Err()
}
