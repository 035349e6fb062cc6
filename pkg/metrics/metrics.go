// Package metrics exposes Prometheus instrumentation for link runs.
//
// # Basic Usage
//
//	timer := metrics.NewTimer("merge")
//	merged := merge(dst, src)
//	timer.ObservePhase()
//
//	metrics.RowsLinked.WithLabelValues(metrics.ResultMatched).Add(float64(matched))
//
// All metrics register with the default Prometheus registry on import, so
// Handler serves them without further wiring.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Label values shared by callers.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"

	ResultMatched   = "matched"
	ResultUnmatched = "unmatched"

	DirectionRead  = "read"
	DirectionWrite = "write"
)

var (
	// LinksTotal counts link runs.
	// Labels: mode (automatic/manual), status (success/failure)
	LinksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tablelink_links_total",
			Help: "Total number of link operations",
		},
		[]string{"mode", "status"},
	)

	// LinkErrors counts failed runs by error type.
	//
	// Example:
	//	metrics.LinkErrors.WithLabelValues(string(errors.TypeOf(err))).Inc()
	LinkErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tablelink_link_errors_total",
			Help: "Total number of failed link operations by error type",
		},
		[]string{"kind"},
	)

	// RowsLinked counts destination rows by whether a source row matched.
	RowsLinked = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tablelink_rows_linked_total",
			Help: "Destination rows processed by the merge, by match result",
		},
		[]string{"result"},
	)

	// RowsTransferred counts rows read from or written to files.
	// Labels: format (csv/xlsx), direction (read/write)
	RowsTransferred = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tablelink_rows_transferred_total",
			Help: "Rows read from or written to tabular files",
		},
		[]string{"format", "direction"},
	)

	// Throughput is the row rate of the most recent file transfer.
	Throughput = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tablelink_throughput_rows_per_second",
			Help: "Row rate of the most recent file transfer",
		},
		[]string{"format", "direction"},
	)

	// PhaseDuration tracks time spent per phase in seconds.
	// Labels: phase (load/validate/merge/write/total)
	PhaseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tablelink_phase_duration_seconds",
			Help:    "Duration of link phases in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 60},
		},
		[]string{"phase"},
	)

	// ColumnsAdded tracks how many columns each link appends.
	ColumnsAdded = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tablelink_columns_added",
			Help:    "Number of columns appended to the destination per link",
			Buckets: []float64{0, 1, 2, 4, 8, 16, 32, 64},
		},
	)

	// ActiveLinks is the number of link runs in flight.
	ActiveLinks = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tablelink_active_links",
			Help: "Number of link operations in progress",
		},
	)
)

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer provides a simple timing mechanism for measuring operation durations.
// It captures the start time on creation and calculates elapsed time on stop.
type Timer struct {
	start time.Time
	name  string
}

// NewTimer creates a new timer named after the phase it measures.
func NewTimer(name string) *Timer {
	return &Timer{
		start: time.Now(),
		name:  name,
	}
}

// Stop returns the elapsed duration since creation. The timer can be stopped
// multiple times.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}

// ObservePhase records the elapsed time in PhaseDuration under the timer's
// name and returns it.
func (t *Timer) ObservePhase() time.Duration {
	d := t.Stop()
	PhaseDuration.WithLabelValues(t.name).Observe(d.Seconds())
	return d
}

// ThroughputTracker tracks rows per second for one file transfer.
// Thread-safe for concurrent use.
type ThroughputTracker struct {
	mu        sync.Mutex
	count     int64
	lastReset time.Time
	format    string
	direction string
}

// NewThroughputTracker creates a tracker labelled with format and direction.
//
// Example:
//
//	tracker := metrics.NewThroughputTracker("csv", metrics.DirectionRead)
//	for _, rec := range records {
//	    tracker.Increment(1)
//	}
//	rate := tracker.GetAndReset()
func NewThroughputTracker(format, direction string) *ThroughputTracker {
	return &ThroughputTracker{
		lastReset: time.Now(),
		format:    format,
		direction: direction,
	}
}

// Increment adds n to the row count.
func (t *ThroughputTracker) Increment(n int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.count += n
}

// Count returns the rows counted since the last reset.
func (t *ThroughputTracker) Count() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}

// GetAndReset calculates the current throughput (rows/second), updates the
// Prometheus metrics, resets the counter and returns the throughput.
func (t *ThroughputTracker) GetAndReset() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	RowsTransferred.WithLabelValues(t.format, t.direction).Add(float64(t.count))

	elapsed := time.Since(t.lastReset).Seconds()
	var throughput float64
	if elapsed > 0 {
		throughput = float64(t.count) / elapsed
	}
	Throughput.WithLabelValues(t.format, t.direction).Set(throughput)

	t.count = 0
	t.lastReset = time.Now()
	return throughput
}
