// Package csv writes datasets as delimited text.
package csv

import (
	"context"
	"encoding/csv"
	"io"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ajitpratap0/tablelink/pkg/compression"
	"github.com/ajitpratap0/tablelink/pkg/config"
	"github.com/ajitpratap0/tablelink/pkg/connector/base"
	"github.com/ajitpratap0/tablelink/pkg/connector/core"
	"github.com/ajitpratap0/tablelink/pkg/connector/registry"
	csvsource "github.com/ajitpratap0/tablelink/pkg/connector/sources/csv"
	"github.com/ajitpratap0/tablelink/pkg/errors"
	"github.com/ajitpratap0/tablelink/pkg/metrics"
	"github.com/ajitpratap0/tablelink/pkg/tabular"
)

const flushEvery = 1024

func init() {
	_ = registry.RegisterDestination(core.FormatCSV, NewCSVDestination)
	_ = registry.RegisterExtensions(core.FormatCSV, ".csv", ".tsv", ".txt")

	_ = registry.RegisterConnectorInfo(&registry.ConnectorInfo{
		Name:        "csv",
		Type:        string(core.ConnectorTypeDestination),
		Description: "Delimited text writer with atomic replace and optional compression",
		Extensions:  []string{".csv", ".tsv", ".txt"},
		Capabilities: []string{
			"atomic_write",
			"gzip",
			"zstd",
			"lz4",
		},
	})
}

// CSVDestination writes UTF-8 delimited text with a header row.
type CSVDestination struct {
	*base.BaseConnector
}

// NewCSVDestination creates a CSV destination
func NewCSVDestination(cfg config.FormatConfig) (core.Destination, error) {
	return &CSVDestination{
		BaseConnector: base.NewBaseConnector("csv", core.ConnectorTypeDestination, core.FormatCSV, cfg),
	}, nil
}

// Extension returns ".csv".
func (d *CSVDestination) Extension() string {
	return ".csv"
}

// Write renders ds to path. Null cells are written as empty fields.
func (d *CSVDestination) Write(ctx context.Context, ds *tabular.Dataset, path string) (err error) {
	if ds == nil {
		return errors.New(errors.ErrorTypeWrite, "nothing to write")
	}

	log := d.LoggerFor(ctx).With(zap.String("path", path))
	progress := d.NewProgressReporter(ctx, metrics.DirectionWrite, path)
	defer func() { progress.Finish(err) }()

	alg := compression.AlgorithmFromPath(path)
	level := compression.Level(d.GetConfig().CompressionLevel)
	comma := csvsource.Delimiter(core.Origin{Path: path})

	err = base.WriteFileAtomic(path, func(w io.Writer) error {
		cw, err := compression.NewWriter(w, alg, level)
		if err != nil {
			return err
		}

		writer := csv.NewWriter(cw)
		writer.Comma = comma

		if err := writer.Write(ds.Columns); err != nil {
			return err
		}

		record := make([]string, ds.Width())
		for i, row := range ds.Rows {
			if i%flushEvery == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			for j := range record {
				record[j] = ""
				if j < len(row) {
					record[j] = row[j].String()
				}
			}
			if err := writer.Write(record); err != nil {
				return err
			}
			progress.IncrementProcessed(1)
		}

		writer.Flush()
		if err := writer.Error(); err != nil {
			return err
		}
		return cw.Close()
	})
	if err != nil {
		return err
	}

	log.Info("csv written",
		zap.String("file", filepath.Base(path)),
		zap.Int("rows", ds.Len()),
		zap.Int("columns", ds.Width()))
	return nil
}
