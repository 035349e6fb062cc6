package csv

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/tablelink/pkg/compression"
	"github.com/ajitpratap0/tablelink/pkg/config"
	"github.com/ajitpratap0/tablelink/pkg/errors"
	"github.com/ajitpratap0/tablelink/pkg/tabular"
	"github.com/ajitpratap0/tablelink/pkg/testutil"
)

func sample() *tabular.Dataset {
	ds := tabular.New("linked", "id", "name", "email")
	ds.Append("1", "Ana, Jr.", "ana@x")
	ds.Append("2", "", "")
	return ds
}

func TestWriteCSV(t *testing.T) {
	dst, err := NewCSVDestination(config.FormatConfig{})
	require.NoError(t, err)
	assert.Equal(t, ".csv", dst.Extension())

	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, dst.Write(context.Background(), sample(), path))

	assert.Equal(t, [][]string{
		{"id", "name", "email"},
		{"1", "Ana, Jr.", "ana@x"},
		{"2", "", ""},
	}, testutil.ReadCSV(t, path))
}

func TestWriteTSVAndCompressed(t *testing.T) {
	dir := t.TempDir()
	dst, err := NewCSVDestination(config.FormatConfig{})
	require.NoError(t, err)

	tsv := filepath.Join(dir, "out.tsv")
	require.NoError(t, dst.Write(context.Background(), sample(), tsv))
	raw, err := os.ReadFile(tsv)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "id\tname\temail\n")

	gz := filepath.Join(dir, "out.csv.gz")
	require.NoError(t, dst.Write(context.Background(), sample(), gz))
	raw, err = os.ReadFile(gz)
	require.NoError(t, err)
	plain, err := compression.Decompress(raw, compression.Gzip)
	require.NoError(t, err)
	assert.Equal(t, "id,name,email\n1,\"Ana, Jr.\",ana@x\n2,,\n", string(plain))
}

func TestWriteFailures(t *testing.T) {
	dst, err := NewCSVDestination(config.FormatConfig{})
	require.NoError(t, err)

	err = dst.Write(context.Background(), sample(), filepath.Join(t.TempDir(), "missing", "out.csv"))
	assert.ErrorIs(t, err, errors.ErrWrite)

	err = dst.Write(context.Background(), nil, filepath.Join(t.TempDir(), "out.csv"))
	assert.ErrorIs(t, err, errors.ErrWrite)

	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = dst.Write(ctx, sample(), filepath.Join(dir, "out.csv"))
	require.Error(t, err)
	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries, "cancelled write leaves no file")
}
