// Package csv reads delimited text files into datasets.
package csv

import (
	"bufio"
	"context"
	"encoding/csv"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/ajitpratap0/tablelink/pkg/compression"
	"github.com/ajitpratap0/tablelink/pkg/config"
	"github.com/ajitpratap0/tablelink/pkg/connector/base"
	"github.com/ajitpratap0/tablelink/pkg/connector/core"
	"github.com/ajitpratap0/tablelink/pkg/connector/registry"
	"github.com/ajitpratap0/tablelink/pkg/errors"
	"github.com/ajitpratap0/tablelink/pkg/metrics"
	"github.com/ajitpratap0/tablelink/pkg/tabular"
)

// rows between cancellation checks
const checkEvery = 1024

func init() {
	_ = registry.RegisterSource(core.FormatCSV, NewCSVSource)
	_ = registry.RegisterExtensions(core.FormatCSV, ".csv", ".tsv", ".txt")

	_ = registry.RegisterConnectorInfo(&registry.ConnectorInfo{
		Name:        "csv",
		Type:        string(core.ConnectorTypeSource),
		Description: "Delimited text reader with encoding and compression detection",
		Extensions:  []string{".csv", ".tsv", ".txt"},
		Capabilities: []string{
			"header_offset",
			"preview",
			"custom_delimiter",
			"text_encodings",
			"gzip",
			"zstd",
			"lz4",
		},
	})
}

// CSVSource reads delimited text. It holds no per-file state.
type CSVSource struct {
	*base.BaseConnector
}

// NewCSVSource creates a CSV source
func NewCSVSource(cfg config.FormatConfig) (core.Source, error) {
	return &CSVSource{
		BaseConnector: base.NewBaseConnector("csv", core.ConnectorTypeSource, core.FormatCSV, cfg),
	}, nil
}

// LoadPreview reads the header and at most maxRows data rows. A non-positive
// maxRows uses the configured preview size.
func (s *CSVSource) LoadPreview(ctx context.Context, origin core.Origin, skipRows, maxRows int) (*tabular.Dataset, error) {
	if maxRows <= 0 {
		maxRows = s.GetConfig().PreviewRows
	}
	return s.load(ctx, origin, skipRows, maxRows)
}

// LoadFull reads every data row.
func (s *CSVSource) LoadFull(ctx context.Context, origin core.Origin, skipRows int) (*tabular.Dataset, error) {
	return s.load(ctx, origin, skipRows, 0)
}

func (s *CSVSource) load(ctx context.Context, origin core.Origin, skipRows, maxRows int) (ds *tabular.Dataset, err error) {
	log := s.LoggerFor(ctx).With(zap.String("path", origin.Path))
	log.Debug("loading csv",
		zap.Int("skip_rows", skipRows),
		zap.Int("max_rows", maxRows),
		zap.String("encoding", origin.Encoding))

	progress := s.NewProgressReporter(ctx, metrics.DirectionRead, origin.Path)
	defer func() { progress.Finish(err) }()

	if skipRows < 0 {
		return nil, errors.Newf(errors.ErrorTypeSourceRead, "rows to skip must not be negative, got %d", skipRows)
	}

	f, err := os.Open(origin.Path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeSourceRead, "cannot open "+filepath.Base(origin.Path)).
			WithDetail("path", origin.Path)
	}
	defer f.Close()

	decompressed, err := compression.NewReader(f, compression.AlgorithmFromPath(origin.Path))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeSourceRead, "cannot decompress "+filepath.Base(origin.Path)).
			WithDetail("path", origin.Path)
	}
	defer decompressed.Close()

	text, err := tabular.DecodeReader(decompressed, origin.Encoding)
	if err != nil {
		return nil, err
	}

	// encoding/csv hides blank lines, so the skipped region is discarded
	// line by line first. Each discarded line stands in as an empty record.
	buffered := bufio.NewReader(text)
	skipped, err := skipLines(buffered, skipRows)
	if err != nil {
		return nil, wrapReadError(err, origin.Path)
	}
	records := make([][]string, skipped)

	reader := csv.NewReader(buffered)
	reader.Comma = Delimiter(origin)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	// header plus skipped rows plus the requested body
	limit := 0
	if maxRows > 0 {
		limit = skipRows + 1 + maxRows
	}

	for {
		if len(records)%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if limit > 0 && len(records) >= limit {
			break
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, wrapReadError(err, origin.Path)
		}
		records = append(records, record)
	}

	ds, err = tabular.FromRaw(filepath.Base(origin.Path), records, tabular.Frame{
		Skip:    skipRows,
		MaxRows: maxRows,
		Header:  tabular.HeaderOptions{TrimSpace: s.GetConfig().TrimHeaders},
	})
	if err != nil {
		return nil, err
	}
	progress.IncrementProcessed(int64(ds.Len()))

	log.Debug("csv loaded", zap.Int("columns", ds.Width()), zap.Int("rows", ds.Len()))
	return ds, nil
}

// skipLines discards up to n physical lines of r and reports how many it
// found. A final line without a newline still counts.
func skipLines(r *bufio.Reader, n int) (int, error) {
	for i := 0; i < n; i++ {
		line, err := r.ReadString('\n')
		if err == io.EOF {
			if line != "" {
				return i + 1, nil
			}
			return i, nil
		}
		if err != nil {
			return i, err
		}
	}
	return n, nil
}

// Delimiter returns the field separator for origin: its explicit delimiter,
// a tab for .tsv files, or a comma.
func Delimiter(origin core.Origin) rune {
	if origin.Delimiter != 0 {
		return origin.Delimiter
	}
	ext := strings.ToLower(filepath.Ext(compression.StripSuffix(origin.Path)))
	if ext == ".tsv" {
		return '\t'
	}
	return ','
}

func wrapReadError(err error, path string) error {
	var parseErr *csv.ParseError
	if stderrors.As(err, &parseErr) {
		return errors.Wrap(err, errors.ErrorTypeSourceRead, "malformed CSV in "+filepath.Base(path)).
			WithDetail("path", path).
			WithDetail("line", parseErr.Line)
	}
	return errors.Wrap(err, errors.ErrorTypeSourceRead, "cannot read "+filepath.Base(path)).
		WithDetail("path", path)
}
