package base

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/ajitpratap0/tablelink/pkg/metrics"
)

// ProgressReporter tracks rows moved by one read or write and reports them
// to the log and the throughput metrics when the transfer ends.
type ProgressReporter struct {
	logger    *zap.Logger
	tracker   *metrics.ThroughputTracker
	path      string
	direction string

	processed int64
	startTime time.Time
	finished  int32
}

// NewProgressReporter creates a new progress reporter
func NewProgressReporter(logger *zap.Logger, format, direction, path string) *ProgressReporter {
	return &ProgressReporter{
		logger:    logger,
		tracker:   metrics.NewThroughputTracker(format, direction),
		path:      path,
		direction: direction,
		startTime: time.Now(),
	}
}

// IncrementProcessed adds count rows.
func (pr *ProgressReporter) IncrementProcessed(count int64) {
	atomic.AddInt64(&pr.processed, count)
	pr.tracker.Increment(count)
}

// Processed returns the rows counted so far.
func (pr *ProgressReporter) Processed() int64 {
	return atomic.LoadInt64(&pr.processed)
}

// GetElapsedTime returns time since start
func (pr *ProgressReporter) GetElapsedTime() time.Duration {
	return time.Since(pr.startTime)
}

// Finish publishes the final counts. Only the first call has an effect.
func (pr *ProgressReporter) Finish(err error) {
	if !atomic.CompareAndSwapInt32(&pr.finished, 0, 1) {
		return
	}

	rate := pr.tracker.GetAndReset()
	fields := []zap.Field{
		zap.String("path", pr.path),
		zap.String("direction", pr.direction),
		zap.Int64("rows", pr.Processed()),
		zap.Duration("elapsed", pr.GetElapsedTime()),
		zap.Float64("rows_per_sec", rate),
	}
	if err != nil {
		pr.logger.Warn("transfer failed", append(fields, zap.Error(err))...)
		return
	}
	pr.logger.Debug("transfer complete", fields...)
}
