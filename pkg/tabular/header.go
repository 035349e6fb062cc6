package tabular

import (
	"strconv"
	"strings"

	"github.com/ajitpratap0/tablelink/pkg/errors"
)

// DefaultPreviewRows is the number of data rows loaded for a preview.
const DefaultPreviewRows = 5

// HeaderOptions controls how raw header cells become column names.
type HeaderOptions struct {
	// TrimSpace strips surrounding whitespace from every header cell.
	TrimSpace bool
}

// NormalizeHeader turns raw header cells into unique column names.
// Blank cells become "Unnamed: <index>"; repeats get ".1", ".2", ... suffixes.
func NormalizeHeader(raw []string, opts HeaderOptions) []string {
	out := make([]string, len(raw))
	used := make(map[string]struct{}, len(raw))
	counts := make(map[string]int, len(raw))

	for i, name := range raw {
		if opts.TrimSpace {
			name = strings.TrimSpace(name)
		}
		if strings.TrimSpace(name) == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}

		candidate := name
		for {
			if _, dup := used[candidate]; !dup {
				break
			}
			counts[name]++
			candidate = name + "." + strconv.Itoa(counts[name])
		}
		used[candidate] = struct{}{}
		out[i] = candidate
	}
	return out
}

// ParseSkipRows parses a header-offset field. Zero is valid.
func ParseSkipRows(s string) (int, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, errors.New(errors.ErrorTypeSourceRead, "rows to skip must not be empty and must be a whole number")
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrorTypeSourceRead, "rows to skip must be a whole number").
			WithDetail("value", s)
	}
	if n < 0 {
		return 0, errors.Newf(errors.ErrorTypeSourceRead, "rows to skip must not be negative, got %d", n)
	}
	return n, nil
}

// Frame describes which part of a raw table becomes the dataset.
type Frame struct {
	// Skip is the number of leading physical rows discarded before the
	// header, blank rows included.
	Skip int
	// MaxRows limits the data rows kept; zero or negative keeps all of them.
	MaxRows int
	Header  HeaderOptions
}

// FromRaw builds a dataset from raw records, one per physical row: Skip
// records are dropped, then rows without any cell are ignored, then the
// first remaining record is the header and the rest are data rows.
func FromRaw(name string, records [][]string, frame Frame) (*Dataset, error) {
	if frame.Skip < 0 {
		return nil, errors.Newf(errors.ErrorTypeSourceRead, "rows to skip must not be negative, got %d", frame.Skip).
			WithDetail("origin", name)
	}
	if frame.Skip >= len(records) {
		return nil, errors.Newf(errors.ErrorTypeSourceRead,
			"%s has %d rows; skipping %d leaves no header row", name, len(records), frame.Skip).
			WithDetail("origin", name)
	}

	records = dropEmpty(records[frame.Skip:])
	if len(records) == 0 {
		return nil, errors.Newf(errors.ErrorTypeSourceRead, "%s has no columns after skipping %d rows", name, frame.Skip).
			WithDetail("origin", name)
	}

	ds := FromRecords(name, NormalizeHeader(records[0], frame.Header), records[1:])
	if frame.MaxRows > 0 {
		ds = ds.Head(frame.MaxRows)
	}
	return ds, nil
}

func dropEmpty(records [][]string) [][]string {
	out := records[:0:0]
	for _, rec := range records {
		if len(rec) > 0 {
			out = append(out, rec)
		}
	}
	return out
}
