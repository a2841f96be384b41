package cmd

import (
	"context"
	"log"
	"log/slog"
	"os/signal"
	"sync"
	"syscall"

	"github.com/grafana/dskit/services"

	"github.com/hashmap-kz/slackrep/config"
	"github.com/hashmap-kz/slackrep/internal/calendar"
	fbcontroller "github.com/hashmap-kz/slackrep/internal/feedback/controller"
	fbservice "github.com/hashmap-kz/slackrep/internal/feedback/service"
	"github.com/hashmap-kz/slackrep/internal/feedback/store"
	"github.com/hashmap-kz/slackrep/internal/jobq"
	"github.com/hashmap-kz/slackrep/internal/metrics/bkmetrics"
	"github.com/hashmap-kz/slackrep/internal/modes/reportmode"
	"github.com/hashmap-kz/slackrep/internal/supervisors/backupsuperv"
	"github.com/hashmap-kz/slackrep/internal/supervisors/reportsuperv"
	"github.com/hashmap-kz/slackrep/internal/supervisors/retentionsuperv"
	"github.com/hashmap-kz/slackrep/internal/wrk"
)

type DaemonModeOpts struct {
	Mode    string
	Verbose bool
}

// feedbackSide groups the components of the feedback API, present in
// feedback and all modes.
type feedbackSide struct {
	Store        store.Store
	Service      fbservice.FeedbackService
	Interactions *fbcontroller.InteractionsController
}

func RunDaemonMode(opts *DaemonModeOpts) {
	cfg := config.Cfg()

	// setup context
	ctx, cancel := context.WithCancel(context.Background())
	ctx, signalCancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()
	defer cancel()

	// print options
	slog.LogAttrs(ctx, slog.LevelInfo, "opts", slog.Any("opts", opts))

	runReports := opts.Mode == config.ModeReport || opts.Mode == config.ModeAll
	runFeedback := opts.Mode == config.ModeFeedback || opts.Mode == config.ModeAll

	// metrics
	if cfg.Metrics.Enable {
		bkmetrics.InitPromMetrics(ctx)
	}

	chat := buildChatClient(cfg)

	// feedback side (store, service, slack interactions)
	var fb *feedbackSide
	if runFeedback {
		fbStore, err := buildFeedbackStore(ctx, cfg)
		if err != nil {
			//nolint:gocritic
			log.Fatal(err)
		}
		defer fbStore.Close()

		fb = &feedbackSide{
			Store: fbStore,
			Service: fbservice.NewFeedbackService(&fbservice.FeedbackServiceOpts{
				Store:    fbStore,
				Timezone: cfg.Main.TimezoneParsed,
			}),
		}
		if cfg.Slack.SigningSecret != "" {
			fb.Interactions = fbcontroller.NewInteractionsController(&fbcontroller.InteractionsControllerOpts{
				Service:       fb.Service,
				Views:         chat,
				SigningSecret: cfg.Slack.SigningSecret,
			})
		} else {
			slog.Warn("slack signing secret is not set, interaction endpoint disabled")
		}
	}

	// report side (scheduler workers)
	var reportSup *reportsuperv.ReportSupervisor
	var backupSup *backupsuperv.BackupSupervisor
	var workers []*wrk.WorkerController
	if runReports {
		cal, err := calendar.New(cfg.Report.ExtraHolidays)
		if err != nil {
			log.Fatal(err)
		}
		gen, err := buildGenerator(cfg, chat, feedbackSource(cfg, fb))
		if err != nil {
			log.Fatal(err)
		}
		reportSup = reportsuperv.NewReportSupervisor(cfg, gen, cal)
		workers = append(workers, wrk.NewWorkerController(ctx, "report-supervisor", reportSup.Run))

		if cfg.Backup.Enable {
			runner, backupStor, err := buildBackupRunner(cfg, chat)
			if err != nil {
				log.Fatal(err)
			}
			backupSup = backupsuperv.NewBackupSupervisor(cfg, runner)
			workers = append(workers, wrk.NewWorkerController(ctx, "backup-supervisor", backupSup.Run))

			if cfg.Retention.Enable {
				retentionSup := retentionsuperv.NewRetentionSupervisor(cfg, backupStor)
				workers = append(workers, wrk.NewWorkerController(ctx, "retention-supervisor", retentionSup.Run))
			}
		}
	}

	// job queue for on-demand runs triggered over the API
	jobQueue := jobq.NewJobQueue(4)
	jobQueue.Start(ctx)

	// scheduler pipeline (no-op when there are no workers)
	pipeline := reportmode.NewPipelineService(workers)
	if err := services.StartAndAwaitRunning(ctx, pipeline); err != nil {
		log.Fatal(err)
	}

	// Use WaitGroup to wait for all goroutines to finish
	var wg sync.WaitGroup

	// HTTP server
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				slog.Error("http server panicked",
					slog.Any("panic", r),
					slog.String("goroutine", "http-server"),
				)
			}
		}()

		handlers := reportmode.Init(&reportmode.HandlerOpts{
			Mode:             opts.Mode,
			Verbose:          opts.Verbose,
			JobQueue:         jobQueue,
			Pipeline:         pipeline,
			ReportSupervisor: reportSup,
			BackupSupervisor: backupSup,
			Workers:          workers,
			FeedbackService:  serviceOrNil(fb),
			Interactions:     interactionsOrNil(fb),
		})
		if err := runHTTPServer(ctx, cfg.Main.ListenPort, handlers); err != nil {
			slog.Error("http server failed", slog.Any("err", err))
			cancel()
		}
	}()

	// Wait for signal (context cancellation)
	<-ctx.Done()
	slog.Info("shutting down, waiting for goroutines...")

	pipeline.StopAsync()
	_ = pipeline.AwaitTerminated(context.Background())

	// Wait for all goroutines to finish
	wg.Wait()
	slog.Info("all components shut down cleanly")
}

func serviceOrNil(fb *feedbackSide) fbservice.FeedbackService {
	if fb == nil {
		return nil
	}
	return fb.Service
}

func interactionsOrNil(fb *feedbackSide) *fbcontroller.InteractionsController {
	if fb == nil {
		return nil
	}
	return fb.Interactions
}
