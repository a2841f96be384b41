package reportsuperv

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/hashmap-kz/slackrep/config"
	"github.com/hashmap-kz/slackrep/internal/calendar"
	"github.com/hashmap-kz/slackrep/internal/metrics"
	"github.com/hashmap-kz/slackrep/internal/report"
)

// ReportSupervisor fires the report pipeline on its cron schedule,
// skipping weekends and holidays.
type ReportSupervisor struct {
	l   *slog.Logger
	cfg *config.Config
	gen *report.Generator
	cal *calendar.Calendar

	now func() time.Time // test-settable
}

func NewReportSupervisor(cfg *config.Config, gen *report.Generator, cal *calendar.Calendar) *ReportSupervisor {
	return &ReportSupervisor{
		l:   slog.With(slog.String("component", "report-supervisor")),
		cfg: cfg,
		gen: gen,
		cal: cal,
		now: time.Now,
	}
}

func (u *ReportSupervisor) log() *slog.Logger {
	if u.l != nil {
		return u.l
	}
	return slog.With(slog.String("component", "report-supervisor"))
}

// RunOnce executes one gated report run for today.
func (u *ReportSupervisor) RunOnce(ctx context.Context) error {
	return u.RunOnceType(ctx, "")
}

// RunOnceType executes one gated run with an explicit type override.
// The holiday/business-day gate is unconditional: reports are for the
// channel's working days only.
func (u *ReportSupervisor) RunOnceType(ctx context.Context, force string) error {
	today := u.now().In(u.cfg.Main.TimezoneParsed)

	if name, ok := u.cal.Holiday(today); ok {
		u.log().Info("holiday, skipping report", slog.String("holiday", name))
		metrics.ReportRunsSkipped.WithLabelValues("holiday").Inc()
		return nil
	}
	if !u.cal.IsBusinessDay(today) {
		u.log().Info("not a business day, skipping report")
		metrics.ReportRunsSkipped.WithLabelValues("non-business-day").Inc()
		return nil
	}
	return u.gen.RunType(ctx, today, force)
}

// Run blocks until ctx is canceled, firing scheduled report runs.
func (u *ReportSupervisor) Run(ctx context.Context) error {
	// POSIX compatible cron syntax: "* * * * *". Without support of seconds.
	c := cron.New(
		cron.WithParser(cron.NewParser(
			cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow,
		)),
		cron.WithLocation(u.cfg.Main.TimezoneParsed),
	)

	_, err := c.AddFunc(u.cfg.Report.Cron, func() {
		u.log().Info("starting scheduled report")
		if err := u.RunOnce(ctx); err != nil {
			u.log().Error("scheduled report failed", slog.Any("err", err))
		}
	})
	if err != nil {
		return fmt.Errorf("report cron %q: %w", u.cfg.Report.Cron, err)
	}

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return ctx.Err()
}
