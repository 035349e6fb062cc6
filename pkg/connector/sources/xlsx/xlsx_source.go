// Package xlsx reads Excel workbooks into datasets.
package xlsx

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
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

const checkEvery = 1024

func init() {
	_ = registry.RegisterSource(core.FormatXLSX, NewXLSXSource)
	_ = registry.RegisterExtensions(core.FormatXLSX, ".xlsx", ".xlsm")
	registry.RegisterUnsupported(".xls", "legacy .xls workbooks are not supported; save the file as .xlsx")

	_ = registry.RegisterConnectorInfo(&registry.ConnectorInfo{
		Name:        "xlsx",
		Type:        string(core.ConnectorTypeSource),
		Description: "Excel workbook reader (first sheet unless one is named)",
		Extensions:  []string{".xlsx", ".xlsm"},
		Capabilities: []string{
			"header_offset",
			"preview",
			"sheet_selection",
		},
	})
}

// XLSXSource reads one sheet of a workbook.
type XLSXSource struct {
	*base.BaseConnector
}

// NewXLSXSource creates a workbook source
func NewXLSXSource(cfg config.FormatConfig) (core.Source, error) {
	return &XLSXSource{
		BaseConnector: base.NewBaseConnector("xlsx", core.ConnectorTypeSource, core.FormatXLSX, cfg),
	}, nil
}

// LoadPreview reads the header and at most maxRows data rows. A non-positive
// maxRows uses the configured preview size.
func (s *XLSXSource) LoadPreview(ctx context.Context, origin core.Origin, skipRows, maxRows int) (*tabular.Dataset, error) {
	if maxRows <= 0 {
		maxRows = s.GetConfig().PreviewRows
	}
	return s.load(ctx, origin, skipRows, maxRows)
}

// LoadFull reads every data row.
func (s *XLSXSource) LoadFull(ctx context.Context, origin core.Origin, skipRows int) (*tabular.Dataset, error) {
	return s.load(ctx, origin, skipRows, 0)
}

// Sheets lists the sheet names of the workbook at path.
func Sheets(path string) ([]string, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.GetSheetList(), nil
}

func (s *XLSXSource) load(ctx context.Context, origin core.Origin, skipRows, maxRows int) (ds *tabular.Dataset, err error) {
	log := s.LoggerFor(ctx).With(zap.String("path", origin.Path))

	progress := s.NewProgressReporter(ctx, metrics.DirectionRead, origin.Path)
	defer func() { progress.Finish(err) }()

	if skipRows < 0 {
		return nil, errors.Newf(errors.ErrorTypeSourceRead, "rows to skip must not be negative, got %d", skipRows)
	}

	f, err := open(origin.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet, err := resolveSheet(f, origin)
	if err != nil {
		return nil, err
	}
	log.Debug("loading workbook",
		zap.String("sheet", sheet),
		zap.Int("skip_rows", skipRows),
		zap.Int("max_rows", maxRows))

	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeSourceRead, "cannot read sheet "+sheet).
			WithDetail("path", origin.Path)
	}
	defer rows.Close()

	// header plus the requested body, counted after the skipped region
	limit := 0
	if maxRows > 0 {
		limit = 1 + maxRows
	}

	// Every sheet row is kept, blank ones included, so the skip counts
	// physical rows. FromRaw drops the blank ones after skipping.
	var records [][]string
	kept := 0
	for n := 0; rows.Next(); n++ {
		if n%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		cols, err := rows.Columns()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeSourceRead, "cannot read sheet "+sheet).
				WithDetail("path", origin.Path).
				WithDetail("row", n+1)
		}
		records = append(records, cols)
		if n >= skipRows && len(cols) > 0 {
			kept++
		}
		if limit > 0 && kept >= limit {
			break
		}
	}
	if err := rows.Error(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeSourceRead, "cannot read sheet "+sheet).
			WithDetail("path", origin.Path)
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

	log.Debug("workbook loaded", zap.Int("columns", ds.Width()), zap.Int("rows", ds.Len()))
	return ds, nil
}

func open(path string) (*excelize.File, error) {
	alg := compression.AlgorithmFromPath(path)
	if alg == compression.None {
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeSourceRead, "cannot open workbook "+filepath.Base(path)).
				WithDetail("path", path)
		}
		return f, nil
	}

	// excelize reads the whole archive into memory, so the workbook is
	// decompressed in one piece.
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeSourceRead, "cannot open "+filepath.Base(path)).
			WithDetail("path", path)
	}
	plain, err := compression.Decompress(raw, alg)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeSourceRead, "cannot decompress "+filepath.Base(path)).
			WithDetail("path", path)
	}

	f, err := excelize.OpenReader(bytes.NewReader(plain))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeSourceRead, "cannot open workbook "+filepath.Base(path)).
			WithDetail("path", path)
	}
	return f, nil
}

func resolveSheet(f *excelize.File, origin core.Origin) (string, error) {
	if origin.Sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return "", errors.Newf(errors.ErrorTypeSourceRead, "%s has no sheets", filepath.Base(origin.Path))
		}
		return sheets[0], nil
	}

	idx, err := f.GetSheetIndex(origin.Sheet)
	if err != nil || idx < 0 {
		return "", errors.Newf(errors.ErrorTypeSourceRead, "%s has no sheet named %q", filepath.Base(origin.Path), origin.Sheet).
			WithDetail("sheets", f.GetSheetList())
	}
	return origin.Sheet, nil
}
