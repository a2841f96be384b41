package reportmode

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/hashmap-kz/slackrep/config"
	fbcontroller "github.com/hashmap-kz/slackrep/internal/feedback/controller"
	"github.com/hashmap-kz/slackrep/internal/feedback/service"
	"github.com/hashmap-kz/slackrep/internal/jobq"
	"github.com/hashmap-kz/slackrep/internal/shared"
	"github.com/hashmap-kz/slackrep/internal/shared/middleware"
	"github.com/hashmap-kz/slackrep/internal/shared/x/httpx"
	"github.com/hashmap-kz/slackrep/internal/supervisors/backupsuperv"
	"github.com/hashmap-kz/slackrep/internal/supervisors/reportsuperv"
	"github.com/hashmap-kz/slackrep/internal/wrk"
)

type HandlerOpts struct {
	Mode     string
	Verbose  bool
	JobQueue *jobq.JobQueue
	Pipeline *PipelineService

	ReportSupervisor *reportsuperv.ReportSupervisor // nil in feedback-only mode
	BackupSupervisor *backupsuperv.BackupSupervisor // nil unless backups enabled
	Workers          []*wrk.WorkerController

	FeedbackService service.FeedbackService              // nil unless feedback api enabled
	Interactions    *fbcontroller.InteractionsController // nil unless signing secret set
}

var statusOk = map[string]string{
	"status": "ok",
}

func Init(opts *HandlerOpts) http.Handler {
	cfg := config.Cfg()
	l := slog.With("component", "daemon-api")

	svc := NewService(&ServiceOpts{
		Mode:     opts.Mode,
		Workers:  opts.Workers,
		Pipeline: opts.Pipeline,
	})
	ctrl := NewController(svc)

	// init middlewares
	loggingMiddleware := middleware.LoggingMiddleware{
		Logger:  l,
		Verbose: opts.Verbose,
	}
	rateLimitMiddleware := middleware.RateLimiterMiddleware{Limiter: rate.NewLimiter(5, 10)}

	baseChain := []middleware.Middleware{
		middleware.SafeHandlerMiddleware,
		loggingMiddleware.Middleware,
		rateLimitMiddleware.Middleware,
	}

	// bearer auth guards everything except healthz and the Slack callback
	// (which is authenticated by its signature)
	secureChain := middleware.Chain(baseChain...)
	if cfg.Feedback.Token != "" {
		authMiddleware := middleware.AuthMiddleware{Token: cfg.Feedback.Token}
		secureChain = middleware.Chain(append(baseChain, authMiddleware.Middleware)...)
	}
	sigChain := middleware.Chain(baseChain...)

	// Init handlers
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mux.Handle("/status", secureChain(http.HandlerFunc(ctrl.StatusHandler)))

	// on-demand runs go through the job queue so they never overlap
	if opts.ReportSupervisor != nil && opts.JobQueue != nil {
		mux.Handle("POST /api/v1/report", secureChain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// optional body: {"type": "daily"|"weekly"}
			var req struct {
				Type string `json:"type"`
			}
			if r.ContentLength > 0 {
				if err := httpx.ReadJSON(r, &req); err != nil {
					httpx.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
					return
				}
			}
			switch req.Type {
			case "", config.ReportTypeAuto, config.ReportTypeDaily, config.ReportTypeWeekly:
			default:
				httpx.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown report type: " + req.Type})
				return
			}

			err := opts.JobQueue.Submit("report-run", func(ctx context.Context) {
				if err := opts.ReportSupervisor.RunOnceType(ctx, req.Type); err != nil {
					l.Error("on-demand report failed", slog.Any("err", err))
				}
			})
			if err != nil {
				if errors.Is(err, jobq.ErrJobQueueFull) {
					httpx.WriteJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
					return
				}
				httpx.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
				return
			}
			httpx.WriteJSON(w, http.StatusAccepted, map[string]string{"status": "scheduled"})
		})))
	}

	if opts.BackupSupervisor != nil && opts.JobQueue != nil {
		mux.Handle("POST /api/v1/backup", secureChain(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			err := opts.JobQueue.Submit("backup-run", func(ctx context.Context) {
				if err := opts.BackupSupervisor.RunOnce(ctx); err != nil {
					l.Error("on-demand backup failed", slog.Any("err", err))
				}
			})
			if err != nil {
				if errors.Is(err, jobq.ErrJobQueueFull) {
					httpx.WriteJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
					return
				}
				httpx.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
				return
			}
			httpx.WriteJSON(w, http.StatusAccepted, map[string]string{"status": "scheduled"})
		})))
	}

	// feedback API
	if opts.FeedbackService != nil {
		fb := fbcontroller.NewController(opts.FeedbackService)
		mux.Handle("GET /api/v1/feedback", secureChain(http.HandlerFunc(fb.ListHandler)))
		mux.Handle("POST /api/v1/feedback", secureChain(http.HandlerFunc(fb.AddHandler)))
		mux.Handle("DELETE /api/v1/feedback/{id}", secureChain(http.HandlerFunc(fb.DeleteHandler)))
	}
	if opts.Interactions != nil {
		mux.Handle("POST /api/v1/slack/interactions", sigChain(http.HandlerFunc(opts.Interactions.Handler)))
	}

	// worker control endpoints
	for _, worker := range opts.Workers {
		w := worker
		mux.HandleFunc("POST /api/v1/daemons/"+w.Name()+"/start", func(rw http.ResponseWriter, _ *http.Request) {
			w.Start()
			httpx.WriteJSON(rw, http.StatusOK, map[string]string{"status": w.Status()})
		})
		mux.HandleFunc("POST /api/v1/daemons/"+w.Name()+"/stop", func(rw http.ResponseWriter, _ *http.Request) {
			w.Stop()
			httpx.WriteJSON(rw, http.StatusOK, statusOk)
		})
	}

	if len(opts.Workers) > 0 && opts.Pipeline != nil {
		// start/stop all goes through the pipeline control channel
		mux.HandleFunc("POST /api/v1/daemons/start", func(rw http.ResponseWriter, _ *http.Request) {
			opts.Pipeline.Resume()
			httpx.WriteJSON(rw, http.StatusOK, statusOk)
		})
		mux.HandleFunc("POST /api/v1/daemons/stop", func(rw http.ResponseWriter, _ *http.Request) {
			opts.Pipeline.Pause()
			httpx.WriteJSON(rw, http.StatusOK, statusOk)
		})
		mux.HandleFunc("GET /api/v1/daemons/status", func(rw http.ResponseWriter, _ *http.Request) {
			resp := make(map[string]string, len(opts.Workers))
			for _, w := range opts.Workers {
				resp[w.Name()] = w.Status()
			}
			httpx.WriteJSON(rw, http.StatusOK, resp)
		})
	}

	shared.InitOptionalHandlers(cfg, mux, l)
	return mux
}
