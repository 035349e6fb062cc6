// Package tablelink enriches one table with columns from another.
//
// Given a source and a destination table, tablelink copies the chosen source
// columns into the destination by matching rows on a key column. It is a
// left join: every destination row is kept, in order, and rows without a
// matching source row get empty cells in the copied columns.
//
// # Key modes
//
// In automatic mode the key is a column name present in both tables. In
// manual mode a source key column is paired with a differently named
// destination key column; the source column is renamed before the merge so
// the result carries a single key column under the destination's name.
//
// # Formats
//
// CSV files (.csv, .tsv, .txt, optionally compressed as .gz, .zst or .lz4)
// and Excel workbooks (.xlsx, .xlsm) can be read. Results are written as CSV
// when the destination is delimited text and as .xlsx otherwise. Legacy
// .xls workbooks are rejected with an explanation.
//
// # Quick Start
//
//	import (
//	    "context"
//
//	    "github.com/ajitpratap0/tablelink/pkg/connector/core"
//	    "github.com/ajitpratap0/tablelink/pkg/link"
//	)
//
//	engine := link.NewEngine()
//	res, err := engine.Link(context.Background(), link.Request{
//	    Source:      core.Origin{Path: "orders.csv"},
//	    Destination: core.Origin{Path: "customers.xlsx"},
//	    Key:         "customer_id",
//	    Columns:     []string{"total", "status"},
//	    Output:      "customers_linked.xlsx",
//	})
//
// The tablelink command wraps the same engine:
//
//	tablelink link orders.csv customers.xlsx --key customer_id --columns total,status
//
// # Package Structure
//
//   - pkg/link: key resolution, column projection, validation and the merge
//   - pkg/tabular: the in-memory dataset, header normalisation and encodings
//   - pkg/connector: CSV and Excel readers and writers behind a registry
//   - pkg/config: YAML link configuration
//   - pkg/errors: typed errors, one type per failure kind
//   - pkg/logger, pkg/metrics, pkg/observability: zap logging, Prometheus
//     metrics and OpenTelemetry tracing
//   - pkg/compression, pkg/json: compressed files and JSON reports
package tablelink
