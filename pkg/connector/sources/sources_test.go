package sources

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/tablelink/pkg/config"
	"github.com/ajitpratap0/tablelink/pkg/connector/core"
	"github.com/ajitpratap0/tablelink/pkg/errors"
)

func TestForPath(t *testing.T) {
	tests := map[string]core.Format{
		"a.csv":      core.FormatCSV,
		"a.tsv":      core.FormatCSV,
		"a.csv.lz4":  core.FormatCSV,
		"a.xlsx":     core.FormatXLSX,
		"dir/a.XLSM": core.FormatXLSX,
	}
	for path, want := range tests {
		src, err := ForPath(path, config.DefaultFormatConfig())
		require.NoError(t, err, path)
		assert.Equal(t, want, src.Format(), path)
	}

	for _, path := range []string{"a.xls", "a.parquet", "noext"} {
		_, err := ForPath(path, config.DefaultFormatConfig())
		require.Error(t, err, path)
		assert.ErrorIs(t, err, errors.ErrSourceRead, path)
	}
}
