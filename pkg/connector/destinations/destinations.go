// Package destinations registers the result writers and derives output
// file names.
package destinations

import (
	"path/filepath"
	"strings"

	"github.com/ajitpratap0/tablelink/pkg/compression"
	"github.com/ajitpratap0/tablelink/pkg/config"
	"github.com/ajitpratap0/tablelink/pkg/connector/core"
	"github.com/ajitpratap0/tablelink/pkg/connector/registry"
	"github.com/ajitpratap0/tablelink/pkg/errors"

	// Import all destination connectors to trigger init() registration
	_ "github.com/ajitpratap0/tablelink/pkg/connector/destinations/csv"
	_ "github.com/ajitpratap0/tablelink/pkg/connector/destinations/xlsx"
)

// LinkedSuffix is appended to the destination's stem in suggested names.
const LinkedSuffix = "_linked"

// ForPath returns the writer for path's format.
func ForPath(path string, cfg config.FormatConfig) (core.Destination, error) {
	dst, err := registry.GetRegistry().DestinationForPath(path, cfg)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeWrite, "cannot write "+filepath.Base(path))
	}
	return dst, nil
}

// OutputExtension is the extension a result derived from destination gets:
// delimited text keeps its extension and compression suffix, every
// workbook becomes ".xlsx".
func OutputExtension(destination core.Origin) string {
	suffix := compression.Suffix(destination.Path)
	inner := compression.StripSuffix(destination.Path)
	ext := filepath.Ext(inner)

	format, err := registry.FormatForPath(inner)
	if err == nil && format == core.FormatCSV {
		return ext + suffix
	}
	return ".xlsx"
}

// SuggestName returns "<dir>/<stem>_linked<ext>" for destination.
func SuggestName(destination core.Origin) string {
	inner := compression.StripSuffix(destination.Path)
	stem := strings.TrimSuffix(filepath.Base(inner), filepath.Ext(inner))
	return filepath.Join(filepath.Dir(destination.Path), stem+LinkedSuffix+OutputExtension(destination))
}

// ResolveOutputPath validates the chosen output name. A name without a
// recognised tabular extension gets the destination's output extension.
func ResolveOutputPath(chosen string, destination core.Origin) (string, error) {
	chosen = strings.TrimSpace(chosen)
	if chosen == "" {
		return "", errors.New(errors.ErrorTypeWrite, "no output file was chosen")
	}
	if registry.GetRegistry().IsTabularPath(chosen) {
		return chosen, nil
	}
	return chosen + OutputExtension(destination), nil
}
