package link

import (
	"time"

	"github.com/ajitpratap0/tablelink/pkg/tabular"
)

// Result is the outcome of a successful link.
type Result struct {
	LinkID  string
	Dataset *tabular.Dataset
	Mode    KeyMode
	Binding KeyBinding
	// Key is the unified join key name
	Key string
	// Projection is the key followed by the copied columns
	Projection []string
	// Added lists the copied non-key columns
	Added []string
	Stats Stats
	// Output is the written path; empty for dry runs
	Output   string
	DryRun   bool
	Duration time.Duration
}

// Report is the serialisable summary of a Result.
type Report struct {
	LinkID         string     `json:"link_id"`
	Source         string     `json:"source"`
	Destination    string     `json:"destination"`
	Output         string     `json:"output,omitempty"`
	DryRun         bool       `json:"dry_run"`
	Mode           KeyMode    `json:"mode"`
	Key            KeyBinding `json:"key"`
	Projection     []string   `json:"projection"`
	Added          []string   `json:"added"`
	Columns        []string   `json:"columns"`
	Stats          Stats      `json:"stats"`
	DurationMillis int64      `json:"duration_ms"`
}

// Report summarises r for req.
func (r *Result) Report(req Request) Report {
	return Report{
		LinkID:         r.LinkID,
		Source:         req.Source.Path,
		Destination:    req.Destination.Path,
		Output:         r.Output,
		DryRun:         r.DryRun,
		Mode:           r.Mode,
		Key:            r.Binding,
		Projection:     r.Projection,
		Added:          r.Added,
		Columns:        r.Dataset.Columns,
		Stats:          r.Stats,
		DurationMillis: r.Duration.Milliseconds(),
	}
}
