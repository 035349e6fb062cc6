// Package sources registers the file readers and resolves them by path.
package sources

import (
	"path/filepath"

	"github.com/ajitpratap0/tablelink/pkg/config"
	"github.com/ajitpratap0/tablelink/pkg/connector/core"
	"github.com/ajitpratap0/tablelink/pkg/connector/registry"
	"github.com/ajitpratap0/tablelink/pkg/errors"

	// Import all source connectors to trigger init() registration
	_ "github.com/ajitpratap0/tablelink/pkg/connector/sources/csv"
	_ "github.com/ajitpratap0/tablelink/pkg/connector/sources/xlsx"
)

// ForPath returns the reader for path's format.
func ForPath(path string, cfg config.FormatConfig) (core.Source, error) {
	src, err := registry.GetRegistry().SourceForPath(path, cfg)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeSourceRead, "cannot read "+filepath.Base(path))
	}
	return src, nil
}
