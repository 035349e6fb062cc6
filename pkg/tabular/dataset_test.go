package tabular

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/tablelink/pkg/errors"
)

func TestFromRecordsPadsAndTruncates(t *testing.T) {
	ds := FromRecords("t", []string{"id", "name"}, [][]string{
		{"1"},
		{"2", "B", "extra"},
		{"3", ""},
	})

	require.Equal(t, 3, ds.Len())
	assert.Equal(t, Row{Text("1"), Null}, ds.Rows[0])
	assert.Equal(t, Row{Text("2"), Text("B")}, ds.Rows[1])
	assert.Equal(t, Row{Text("3"), Null}, ds.Rows[2])
}

func TestColumnHelpers(t *testing.T) {
	ds := FromRecords("t", []string{"id", "name"}, [][]string{{"1", "A"}, {"2", "B"}})

	assert.Equal(t, 1, ds.ColumnIndex("name"))
	assert.Equal(t, -1, ds.ColumnIndex("age"))
	assert.True(t, ds.HasColumn("id"))
	assert.Equal(t, map[string]struct{}{"id": {}, "name": {}}, ds.ColumnSet())
}

func TestRenameAndDrop(t *testing.T) {
	ds := FromRecords("t", []string{"cust_id", "email", "client_id"}, [][]string{{"1", "a@x", "9"}})

	require.Error(t, ds.RenameColumn("cust_id", "client_id"))
	require.Error(t, ds.RenameColumn("missing", "x"))

	ds.DropColumn("client_id")
	require.NoError(t, ds.RenameColumn("cust_id", "client_id"))
	assert.Equal(t, []string{"client_id", "email"}, ds.Columns)
	assert.Equal(t, Row{Text("1"), Text("a@x")}, ds.Rows[0])

	ds.DropColumn("nope")
	assert.Equal(t, 2, ds.Width())
}

func TestSelectAndClone(t *testing.T) {
	ds := FromRecords("t", []string{"a", "b", "c"}, [][]string{{"1", "2", "3"}})

	sel, err := ds.Select([]string{"c", "a"})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, sel.Columns)
	assert.Equal(t, [][]string{{"3", "1"}}, sel.Strings())

	_, err = ds.Select([]string{"z"})
	require.Error(t, err)

	cp := ds.Clone()
	cp.Rows[0][0] = Text("changed")
	assert.Equal(t, "1", ds.Rows[0][0].String())
	assert.False(t, ds.Equal(cp))
	assert.True(t, ds.Equal(ds.Clone()))
}

func TestHead(t *testing.T) {
	ds := FromRecords("t", []string{"a"}, [][]string{{"1"}, {"2"}, {"3"}})
	assert.Equal(t, 2, ds.Head(2).Len())
	assert.Equal(t, 3, ds.Head(10).Len())
	assert.Equal(t, 3, ds.Head(-1).Len())
}

func TestNormalizeHeader(t *testing.T) {
	got := NormalizeHeader([]string{"id", "", "id", " name ", "id", "id.1"}, HeaderOptions{})
	assert.Equal(t, []string{"id", "Unnamed: 1", "id.1", " name ", "id.2", "id.1.1"}, got)

	trimmed := NormalizeHeader([]string{" name ", "name"}, HeaderOptions{TrimSpace: true})
	assert.Equal(t, []string{"name", "name.1"}, trimmed)
}

func TestParseSkipRows(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"0", 0, false},
		{" 3 ", 3, false},
		{"", 0, true},
		{"two", 0, true},
		{"1.5", 0, true},
		{"-1", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSkipRows(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsType(err, errors.ErrorTypeSourceRead))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromRaw(t *testing.T) {
	raw := [][]string{
		{"Report generated 2024-01-01"},
		{},
		{"id", "name"},
		{"1", "A"},
		{"2", "B"},
		{"3", "C"},
	}

	ds, err := FromRaw("r.csv", raw, Frame{Skip: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, ds.Columns)
	assert.Equal(t, 3, ds.Len())

	// the blank row counts towards the skip, so skipping past it lands on
	// the data and not the header
	ds, err = FromRaw("r.csv", raw, Frame{Skip: 3})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "A"}, ds.Columns)

	// blank rows after the skipped region are ignored
	ds, err = FromRaw("r.csv", raw, Frame{Skip: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, ds.Columns)

	preview, err := FromRaw("r.csv", raw, Frame{Skip: 2, MaxRows: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, preview.Len())

	_, err = FromRaw("r.csv", raw, Frame{Skip: 6})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeSourceRead))

	_, err = FromRaw("r.csv", raw, Frame{Skip: -1})
	require.Error(t, err)

	_, err = FromRaw("empty.csv", nil, Frame{})
	require.Error(t, err)

	_, err = FromRaw("blank.csv", [][]string{{"title"}, {}, nil}, Frame{Skip: 1})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeSourceRead))
}
