package tabular

import (
	"io"
	"sort"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ajitpratap0/tablelink/pkg/errors"
)

var encodings = map[string]encoding.Encoding{
	"utf-8":        unicode.UTF8,
	"utf8":         unicode.UTF8,
	"utf-16":       unicode.UTF16(unicode.LittleEndian, unicode.UseBOM),
	"latin1":       charmap.ISO8859_1,
	"iso-8859-1":   charmap.ISO8859_1,
	"iso-8859-15":  charmap.ISO8859_15,
	"windows-1252": charmap.Windows1252,
	"cp1252":       charmap.Windows1252,
}

// KnownEncoding reports whether name is a supported text encoding.
// The empty name means UTF-8.
func KnownEncoding(name string) bool {
	if name == "" {
		return true
	}
	_, ok := encodings[strings.ToLower(name)]
	return ok
}

// Encodings lists the supported encoding names.
func Encodings() []string {
	out := make([]string, 0, len(encodings))
	for name := range encodings {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// DecodeReader returns a reader producing UTF-8 from r, which is encoded as
// name. A leading UTF-8 byte order mark is always dropped.
func DecodeReader(r io.Reader, name string) (io.Reader, error) {
	enc := encoding.Encoding(unicode.UTF8)
	if name != "" {
		var ok bool
		enc, ok = encodings[strings.ToLower(name)]
		if !ok {
			return nil, errors.Newf(errors.ErrorTypeSourceRead, "unsupported text encoding %q", name)
		}
	}
	return transform.NewReader(r, unicode.BOMOverride(enc.NewDecoder())), nil
}
