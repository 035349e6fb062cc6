// Package core defines the contracts between the link engine and the
// readers and writers of tabular files.
package core

import (
	"context"

	"github.com/ajitpratap0/tablelink/pkg/tabular"
)

// ConnectorType represents the type of connector
type ConnectorType string

const (
	ConnectorTypeSource      ConnectorType = "source"
	ConnectorTypeDestination ConnectorType = "destination"
)

// Format identifies a tabular file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Origin locates a tabular file and carries the options needed to parse it.
type Origin struct {
	Path string
	// Sheet selects a workbook sheet; empty means the first one
	Sheet string
	// Encoding of delimited text; empty means UTF-8
	Encoding string
	// Delimiter of delimited text; zero picks the format default
	Delimiter rune
}

// String returns the origin's path.
func (o Origin) String() string {
	return o.Path
}

// Source loads datasets. Implementations are read-only and safe to reuse.
type Source interface {
	Format() Format

	// LoadPreview discards skipRows leading rows, takes the next row as the
	// header and returns at most maxRows data rows.
	LoadPreview(ctx context.Context, origin Origin, skipRows, maxRows int) (*tabular.Dataset, error)

	// LoadFull is LoadPreview without a row limit.
	LoadFull(ctx context.Context, origin Origin, skipRows int) (*tabular.Dataset, error)
}

// Destination persists datasets.
type Destination interface {
	Format() Format

	// Extension is the canonical file extension, including the dot.
	Extension() string

	// Write renders ds completely and then replaces path with it. A failed
	// write leaves no file behind.
	Write(ctx context.Context, ds *tabular.Dataset, path string) error
}
