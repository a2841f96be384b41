package cmd

import (
	"context"
	"fmt"

	"github.com/hashmap-kz/slackrep/config"
	"github.com/hashmap-kz/slackrep/internal/calendar"
	"github.com/hashmap-kz/slackrep/internal/supervisors/reportsuperv"
)

// RunReportOnce generates and posts a single report. Used by CI-style
// setups that prefer an external scheduler over the daemon.
func RunReportOnce(ctx context.Context, cfg *config.Config, forceType string) error {
	if forceType != "" {
		switch forceType {
		case config.ReportTypeAuto, config.ReportTypeDaily, config.ReportTypeWeekly:
			cfg.Report.ForceType = forceType
		default:
			return fmt.Errorf("unknown report type: %s", forceType)
		}
	}

	chat := buildChatClient(cfg)
	gen, err := buildGenerator(cfg, chat, feedbackSource(cfg, nil))
	if err != nil {
		return err
	}
	cal, err := calendar.New(cfg.Report.ExtraHolidays)
	if err != nil {
		return err
	}
	return reportsuperv.NewReportSupervisor(cfg, gen, cal).RunOnce(ctx)
}
