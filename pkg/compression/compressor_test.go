package compression

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlgorithmFromPath(t *testing.T) {
	tests := map[string]Algorithm{
		"orders.csv":         None,
		"orders.csv.gz":      Gzip,
		"orders.CSV.GZ":      Gzip,
		"dir/orders.csv.zst": Zstd,
		"orders.csv.lz4":     LZ4,
		"book.xlsx":          None,
	}
	for path, want := range tests {
		assert.Equal(t, want, AlgorithmFromPath(path), path)
	}
}

func TestStripSuffix(t *testing.T) {
	assert.Equal(t, "dir/orders.csv", StripSuffix("dir/orders.csv.gz"))
	assert.Equal(t, "orders.csv", StripSuffix("orders.csv"))
	assert.Equal(t, ".GZ", Suffix("orders.csv.GZ"))
	assert.Equal(t, "", Suffix("orders.csv"))
}

func TestRoundTrip(t *testing.T) {
	data := []byte(strings.Repeat("id,name,email\n1,Ana,ana@example.com\n", 200))

	for _, alg := range []Algorithm{None, Gzip, Zstd, LZ4} {
		for _, level := range []Level{Fastest, Default, Best} {
			var buf bytes.Buffer
			w, err := NewWriter(&buf, alg, level)
			require.NoError(t, err, "%s/%d", alg, level)
			_, err = w.Write(data)
			require.NoError(t, err)
			require.NoError(t, w.Close())
			compressed := buf.Bytes()
			if alg != None {
				assert.Less(t, len(compressed), len(data), "%s should shrink repetitive CSV", alg)
			}

			out, err := Decompress(compressed, alg)
			require.NoError(t, err)
			assert.True(t, bytes.Equal(data, out), "%s/%d round trip", alg, level)
		}
	}
}

func TestUnsupportedAlgorithm(t *testing.T) {
	_, err := NewReader(bytes.NewReader(nil), Algorithm("brotli"))
	require.Error(t, err)
	_, err = NewWriter(&bytes.Buffer{}, Algorithm("brotli"), Default)
	require.Error(t, err)
}

func TestCorruptGzip(t *testing.T) {
	_, err := Decompress([]byte("definitely not gzip"), Gzip)
	require.Error(t, err)
}
