// Package connector groups the file readers and writers used by the link
// engine.
//
// # Architecture Overview
//
// The connector package is organized into several sub-packages:
//
//   - core: Defines the Source and Destination interfaces and the Origin
//     value that locates a file (path, sheet, text encoding, delimiter).
//
//   - base: Provides BaseConnector, which every reader and writer embeds for
//     its name, format settings and context-aware logger, plus progress
//     reporting and atomic file replacement.
//
//   - sources: CSV (csv, tsv, txt) and Excel (xlsx, xlsm) readers. Compressed
//     CSV input (.gz, .zst, .lz4) is decompressed transparently.
//
//   - destinations: CSV and Excel writers, plus the output naming rules.
//
//   - registry: Maps formats to factories and file extensions to formats.
//     Connectors self-register during initialization.
//
// # Example Usage
//
// Loading a file through the registry:
//
//	src, err := registry.GetRegistry().SourceForPath("customers.csv", config.DefaultFormatConfig())
//	if err != nil {
//		return err
//	}
//	ds, err := src.LoadFull(ctx, core.Origin{Path: "customers.csv"}, 0)
//
// Importing the sources and destinations packages registers every built-in
// connector:
//
//	import (
//		_ "github.com/ajitpratap0/tablelink/pkg/connector/destinations"
//		_ "github.com/ajitpratap0/tablelink/pkg/connector/sources"
//	)
//
// # Errors
//
// Readers report every failure as an errors.ErrorTypeSourceRead error and
// writers as errors.ErrorTypeWrite, so callers can show one message per
// failure. A writer never leaves a partial output file behind.
package connector
