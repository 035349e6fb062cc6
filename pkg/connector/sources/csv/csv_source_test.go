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
	"github.com/ajitpratap0/tablelink/pkg/connector/core"
	"github.com/ajitpratap0/tablelink/pkg/errors"
	"github.com/ajitpratap0/tablelink/pkg/tabular"
	"github.com/ajitpratap0/tablelink/pkg/testutil"
)

func newSource(t *testing.T, cfg config.FormatConfig) core.Source {
	t.Helper()
	src, err := NewCSVSource(cfg)
	require.NoError(t, err)
	return src
}

func TestLoadFull(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "customers.csv", "id,name,email\n1,Ana,ana@x\n2,,bo@x\n3,Cy\n")

	ds, err := newSource(t, config.FormatConfig{}).LoadFull(context.Background(), core.Origin{Path: path}, 0)
	require.NoError(t, err)

	assert.Equal(t, "customers.csv", ds.Name)
	assert.Equal(t, []string{"id", "name", "email"}, ds.Columns)
	require.Equal(t, 3, ds.Len())
	assert.Equal(t, tabular.Null, ds.Rows[1][1], "empty field loads as null")
	assert.Equal(t, tabular.Null, ds.Rows[2][2], "short row is padded")
}

func TestLoadWithHeaderOffset(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "report.csv", "Quarterly export\n\nGenerated by finance\nid,total\n1,10\n2,20\n")

	ds, err := newSource(t, config.FormatConfig{}).LoadFull(context.Background(), core.Origin{Path: path}, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "total"}, ds.Columns)
	assert.Equal(t, [][]string{{"1", "10"}, {"2", "20"}}, ds.Strings())

	// the blank second line is one of the skipped rows
	ds, err = newSource(t, config.FormatConfig{}).LoadFull(context.Background(), core.Origin{Path: path}, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"Generated by finance"}, ds.Columns)

	// a blank line right after the skipped region is not taken as the header
	ds, err = newSource(t, config.FormatConfig{}).LoadFull(context.Background(), core.Origin{Path: path}, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Generated by finance"}, ds.Columns)

	preview, err := newSource(t, config.FormatConfig{}).LoadPreview(context.Background(), core.Origin{Path: path}, 3, 1)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"1", "10"}}, preview.Strings())

	noNewline := testutil.WriteFile(t, dir, "short.csv", "title\nid,total")
	ds, err = newSource(t, config.FormatConfig{}).LoadFull(context.Background(), core.Origin{Path: noNewline}, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "total"}, ds.Columns)
	assert.Equal(t, 0, ds.Len())

	_, err = newSource(t, config.FormatConfig{}).LoadFull(context.Background(), core.Origin{Path: noNewline}, 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrSourceRead)

	_, err = newSource(t, config.FormatConfig{}).LoadFull(context.Background(), core.Origin{Path: path}, 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrSourceRead)
}

func TestLoadPreview(t *testing.T) {
	dir := t.TempDir()
	records := [][]string{{"id"}}
	for i := 0; i < 20; i++ {
		records = append(records, []string{string(rune('a' + i))})
	}
	path := testutil.WriteCSV(t, dir, "big.csv", records)

	src := newSource(t, config.FormatConfig{})
	ds, err := src.LoadPreview(context.Background(), core.Origin{Path: path}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, tabular.DefaultPreviewRows, ds.Len())

	ds, err = src.LoadPreview(context.Background(), core.Origin{Path: path}, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, "a", ds.Rows[0][0].String())
}

func TestLoadHeaderNormalization(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "dup.csv", " id ,,id\n1,2,3\n")

	ds, err := newSource(t, config.FormatConfig{}).LoadFull(context.Background(), core.Origin{Path: path}, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{" id ", "Unnamed: 1", "id"}, ds.Columns)

	ds, err = newSource(t, config.FormatConfig{TrimHeaders: true}).LoadFull(context.Background(), core.Origin{Path: path}, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "Unnamed: 1", "id.1"}, ds.Columns)
}

func TestLoadDelimitersAndEncodings(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	src := newSource(t, config.FormatConfig{})

	tsv := testutil.WriteFile(t, dir, "data.tsv", "id\tname\n1\tAna\n")
	ds, err := src.LoadFull(ctx, core.Origin{Path: tsv}, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, ds.Columns)

	semi := testutil.WriteFile(t, dir, "semi.csv", "id;name\n1;Ana\n")
	ds, err = src.LoadFull(ctx, core.Origin{Path: semi, Delimiter: ';'}, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, ds.Columns)

	bom := testutil.WriteFile(t, dir, "bom.csv", "\ufeffid,name\n1,Ana\n")
	ds, err = src.LoadFull(ctx, core.Origin{Path: bom}, 0)
	require.NoError(t, err)
	assert.Equal(t, "id", ds.Columns[0])

	latin := filepath.Join(dir, "latin.csv")
	require.NoError(t, os.WriteFile(latin, []byte("id,city\n1,S\xe3o Paulo\n"), 0o644))
	ds, err = src.LoadFull(ctx, core.Origin{Path: latin, Encoding: "latin1"}, 0)
	require.NoError(t, err)
	assert.Equal(t, "São Paulo", ds.Rows[0][1].String())
}

func TestLoadCompressed(t *testing.T) {
	dir := t.TempDir()
	for _, ext := range []string{".gz", ".zst", ".lz4"} {
		t.Run(ext, func(t *testing.T) {
			data := testutil.Compress(t, []byte("id,name\n1,Ana\n2,Bo\n"), compression.AlgorithmFromPath(ext))
			path := filepath.Join(dir, "data.csv"+ext)
			require.NoError(t, os.WriteFile(path, data, 0o644))

			ds, err := newSource(t, config.FormatConfig{}).LoadFull(context.Background(), core.Origin{Path: path}, 0)
			require.NoError(t, err)
			assert.Equal(t, 2, ds.Len())
		})
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	src := newSource(t, config.FormatConfig{})

	_, err := src.LoadFull(ctx, core.Origin{Path: filepath.Join(dir, "missing.csv")}, 0)
	assert.ErrorIs(t, err, errors.ErrSourceRead)

	empty := testutil.WriteFile(t, dir, "empty.csv", "")
	_, err = src.LoadFull(ctx, core.Origin{Path: empty}, 0)
	assert.ErrorIs(t, err, errors.ErrSourceRead)

	notGzip := testutil.WriteFile(t, dir, "plain.csv.gz", "id\n1\n")
	_, err = src.LoadFull(ctx, core.Origin{Path: notGzip}, 0)
	assert.ErrorIs(t, err, errors.ErrSourceRead)

	ok := testutil.WriteFile(t, dir, "ok.csv", "id\n1\n")
	_, err = src.LoadFull(ctx, core.Origin{Path: ok, Encoding: "klingon"}, 0)
	assert.ErrorIs(t, err, errors.ErrSourceRead)

	_, err = src.LoadFull(ctx, core.Origin{Path: ok}, -1)
	assert.ErrorIs(t, err, errors.ErrSourceRead)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = src.LoadFull(cancelled, core.Origin{Path: ok}, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDelimiter(t *testing.T) {
	assert.Equal(t, ',', Delimiter(core.Origin{Path: "a.csv"}))
	assert.Equal(t, '\t', Delimiter(core.Origin{Path: "a.TSV.gz"}))
	assert.Equal(t, '|', Delimiter(core.Origin{Path: "a.tsv", Delimiter: '|'}))
}
