// Package xlsx writes datasets as Excel workbooks.
package xlsx

import (
	"context"
	"io"
	"path/filepath"
	"strconv"
	"strings"

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

// MaxRows is the worksheet row limit, header included.
const MaxRows = 1048576

const checkEvery = 1024

func init() {
	_ = registry.RegisterDestination(core.FormatXLSX, NewXLSXDestination)
	_ = registry.RegisterExtensions(core.FormatXLSX, ".xlsx", ".xlsm")
	registry.RegisterUnsupported(".xls", "legacy .xls workbooks are not supported; save the file as .xlsx")

	_ = registry.RegisterConnectorInfo(&registry.ConnectorInfo{
		Name:        "xlsx",
		Type:        string(core.ConnectorTypeDestination),
		Description: "Excel workbook writer using a streaming sheet writer",
		Extensions:  []string{".xlsx", ".xlsm"},
		Capabilities: []string{
			"atomic_write",
			"numeric_cells",
		},
	})
}

// XLSXDestination writes a single-sheet workbook.
type XLSXDestination struct {
	*base.BaseConnector
}

// NewXLSXDestination creates a workbook destination
func NewXLSXDestination(cfg config.FormatConfig) (core.Destination, error) {
	return &XLSXDestination{
		BaseConnector: base.NewBaseConnector("xlsx", core.ConnectorTypeDestination, core.FormatXLSX, cfg),
	}, nil
}

// Extension returns ".xlsx".
func (d *XLSXDestination) Extension() string {
	return ".xlsx"
}

// Write renders ds to a workbook at path. Cells holding canonical numbers
// are stored as numbers; null cells are left empty.
func (d *XLSXDestination) Write(ctx context.Context, ds *tabular.Dataset, path string) (err error) {
	if ds == nil {
		return errors.New(errors.ErrorTypeWrite, "nothing to write")
	}
	if ds.Len()+1 > MaxRows {
		return errors.Newf(errors.ErrorTypeWrite, "%d rows exceed the worksheet limit of %d", ds.Len(), MaxRows-1).
			WithDetail("path", path)
	}

	log := d.LoggerFor(ctx).With(zap.String("path", path))
	progress := d.NewProgressReporter(ctx, metrics.DirectionWrite, path)
	defer func() { progress.Finish(err) }()

	f := excelize.NewFile()
	defer f.Close()

	sheet := d.GetConfig().SheetName
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return errors.Wrap(err, errors.ErrorTypeWrite, "invalid sheet name "+sheet)
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeWrite, "cannot create sheet writer")
	}

	header := make([]interface{}, len(ds.Columns))
	for i, name := range ds.Columns {
		header[i] = name
	}
	if err := sw.SetRow("A1", header); err != nil {
		return errors.Wrap(err, errors.ErrorTypeWrite, "cannot write header row")
	}

	cells := make([]interface{}, ds.Width())
	for i, row := range ds.Rows {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		for j := range cells {
			cells[j] = nil
			if j < len(row) {
				cells[j] = CellValue(row[j])
			}
		}
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.Wrap(err, errors.ErrorTypeWrite, "cannot address row")
		}
		if err := sw.SetRow(axis, cells); err != nil {
			return errors.Wrap(err, errors.ErrorTypeWrite, "cannot write row").WithDetail("row", i+2)
		}
		progress.IncrementProcessed(1)
	}
	if err := sw.Flush(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeWrite, "cannot finish sheet")
	}

	alg := compression.AlgorithmFromPath(path)
	level := compression.Level(d.GetConfig().CompressionLevel)
	err = base.WriteFileAtomic(path, func(w io.Writer) error {
		cw, err := compression.NewWriter(w, alg, level)
		if err != nil {
			return err
		}
		if _, err := f.WriteTo(cw); err != nil {
			return err
		}
		return cw.Close()
	})
	if err != nil {
		return err
	}

	log.Info("workbook written",
		zap.String("file", filepath.Base(path)),
		zap.String("sheet", sheet),
		zap.Int("rows", ds.Len()),
		zap.Int("columns", ds.Width()))
	return nil
}

// CellValue converts a dataset value to a workbook cell value. Text that
// reads back unchanged as a number becomes a number, so "42" and "1.5" are
// numeric while "007", "1e3" and "+1" stay text.
func CellValue(v tabular.Value) interface{} {
	if !v.Valid {
		return nil
	}
	s := v.Text
	if s == "" || strings.TrimSpace(s) != s {
		return s
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && strconv.FormatInt(n, 10) == s {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && strconv.FormatFloat(f, 'f', -1, 64) == s {
		return f
	}
	return s
}
