package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Report pipeline
	ReportsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "slackrep_reports_generated_total",
		Help: "Total number of reports generated, partitioned by report type.",
	}, []string{"type"})

	ReportRunsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "slackrep_report_runs_skipped_total",
		Help: "Report runs skipped, partitioned by reason (holiday, non-business-day, no-messages).",
	}, []string{"reason"})

	ReportDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "slackrep_report_duration_seconds",
		Help:    "Duration of a full report run (collect, generate, post).",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
	})

	// Slack Web API
	SlackAPICalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "slackrep_slack_api_calls_total",
		Help: "Slack Web API calls, partitioned by method.",
	}, []string{"method"})

	SlackAPIErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slackrep_slack_api_errors_total",
		Help: "Slack Web API calls that returned ok:false or a transport error.",
	})

	// Anthropic API
	LLMRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slackrep_llm_requests_total",
		Help: "Requests sent to the Anthropic Messages API.",
	})

	LLMTokensUsed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "slackrep_llm_tokens_used_total",
		Help: "Tokens reported by the Anthropic API, partitioned by kind (input/output).",
	}, []string{"kind"})

	// Feedback
	FeedbackEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slackrep_feedback_entries",
		Help: "Number of accumulated feedback entries in the store.",
	})
)
