package bkmetrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var M bkMetrics = &bkMetricsNoop{}

type bkMetrics interface {
	AddBackupMessages(float64)
	AddBackupBytesWritten(float64)
	AddArchiveFilesDeleted(float64)
}

// noop

type bkMetricsNoop struct{}

var _ bkMetrics = &bkMetricsNoop{}

func (p bkMetricsNoop) AddBackupMessages(_ float64)      {}
func (p bkMetricsNoop) AddBackupBytesWritten(_ float64)  {}
func (p bkMetricsNoop) AddArchiveFilesDeleted(_ float64) {}

// prom

type bkMetricsProm struct {
	backupMessages      prometheus.Counter
	backupBytesWritten  prometheus.Counter
	archiveFilesDeleted prometheus.Counter
}

var _ bkMetrics = &bkMetricsProm{}

func InitPromMetrics(_ context.Context) {
	// Unregister default prometheus collectors so we don't collect a bunch of pointless metrics
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prometheus.Unregister(collectors.NewGoCollector())

	M = &bkMetricsProm{
		backupMessages: promauto.NewCounter(prometheus.CounterOpts{
			Name: "slackrep_backup_messages_total",
			Help: "Total number of channel messages written to backups.",
		}),
		backupBytesWritten: promauto.NewCounter(prometheus.CounterOpts{
			Name: "slackrep_backup_bytes_written_total",
			Help: "Total number of backup bytes written to storage.",
		}),
		archiveFilesDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "slackrep_archive_files_deleted_total",
			Help: "Total number of archive files deleted by retention.",
		}),
	}
}

func (p *bkMetricsProm) AddBackupMessages(f float64) {
	p.backupMessages.Add(f)
}

func (p *bkMetricsProm) AddBackupBytesWritten(f float64) {
	p.backupBytesWritten.Add(f)
}

func (p *bkMetricsProm) AddArchiveFilesDeleted(f float64) {
	p.archiveFilesDeleted.Add(f)
}
