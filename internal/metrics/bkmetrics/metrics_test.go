package bkmetrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitPromMetrics_ReplacesNoop(t *testing.T) {
	_, noop := M.(*bkMetricsNoop)
	assert.True(t, noop)

	InitPromMetrics(context.Background())

	_, prom := M.(*bkMetricsProm)
	assert.True(t, prom)

	// registered counters accept adds
	M.AddBackupMessages(3)
	M.AddBackupBytesWritten(1024)
	M.AddArchiveFilesDeleted(1)
}
