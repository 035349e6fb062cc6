package link

import (
	"strings"

	"github.com/ajitpratap0/tablelink/pkg/errors"
	"github.com/ajitpratap0/tablelink/pkg/tabular"
)

// MatchOptions control how key values are compared. They never change the
// values written to the result.
type MatchOptions struct {
	TrimSpace       bool `json:"trim_space"`
	CaseInsensitive bool `json:"case_insensitive"`
}

func (m MatchOptions) normalize(s string) string {
	if m.TrimSpace {
		s = strings.TrimSpace(s)
	}
	if m.CaseInsensitive {
		s = strings.ToLower(s)
	}
	return s
}

// matchKey returns the comparable form of v and false for keys that can
// never match: nulls and values that normalise to nothing.
func (m MatchOptions) matchKey(v tabular.Value) (string, bool) {
	if !v.Valid {
		return "", false
	}
	k := m.normalize(v.Text)
	return k, k != ""
}

// CollisionPolicy decides what happens when a projected column already
// exists in the destination.
type CollisionPolicy string

const (
	// CollisionOverwrite lets matched source values replace destination
	// values; unmatched rows keep theirs.
	CollisionOverwrite CollisionPolicy = "overwrite"
	// CollisionReject fails the link with a ColumnConflict error.
	CollisionReject CollisionPolicy = "reject"
)

// ParseCollisionPolicy parses a policy name. The empty string means overwrite.
func ParseCollisionPolicy(s string) (CollisionPolicy, error) {
	switch CollisionPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", CollisionOverwrite:
		return CollisionOverwrite, nil
	case CollisionReject:
		return CollisionReject, nil
	}
	return "", errors.Newf(errors.ErrorTypeConfig, "unknown collision policy %q; use %q or %q", s, CollisionOverwrite, CollisionReject)
}

// Stats summarises a merge.
type Stats struct {
	// Rows equals the destination row count
	Rows int `json:"rows"`
	// ColumnsAdded counts the non-key projected columns
	ColumnsAdded int `json:"columns_added"`
	// Matched counts destination rows that found a source row
	Matched int `json:"matched"`
	// Unmatched counts destination rows left without source values
	Unmatched int `json:"unmatched"`
	// DuplicateSourceKeys counts source rows ignored because an earlier
	// row had the same key
	DuplicateSourceKeys int `json:"duplicate_source_keys"`
	// Overwritten counts destination cells replaced by source values
	Overwritten int `json:"overwritten"`
}

// Merge left-joins the projected source columns onto dst by key. projection
// must start with key, and every projected column must exist in src and key
// in dst. Destination columns keep their order and position; projected
// columns missing from dst are appended in projection order. Neither input
// is modified.
func Merge(dst, src *tabular.Dataset, projection []string, match MatchOptions) (*tabular.Dataset, Stats) {
	key := projection[0]
	incoming := projection[1:]

	srcKey := src.ColumnIndex(key)
	srcCols := make([]int, len(incoming))
	for i, name := range incoming {
		srcCols[i] = src.ColumnIndex(name)
	}

	stats := Stats{Rows: dst.Len(), ColumnsAdded: len(incoming)}

	// first occurrence wins
	index := make(map[string]int, src.Len())
	for i, row := range src.Rows {
		k, ok := match.matchKey(row[srcKey])
		if !ok {
			continue
		}
		if _, dup := index[k]; dup {
			stats.DuplicateSourceKeys++
			continue
		}
		index[k] = i
	}

	columns := append([]string(nil), dst.Columns...)
	targets := make([]int, len(incoming))
	existing := make([]bool, len(incoming))
	for i, name := range incoming {
		if at := dst.ColumnIndex(name); at >= 0 {
			targets[i] = at
			existing[i] = true
			continue
		}
		targets[i] = len(columns)
		columns = append(columns, name)
	}

	out := &tabular.Dataset{
		Name:    dst.Name,
		Columns: columns,
		Rows:    make([]tabular.Row, dst.Len()),
	}

	dstKey := dst.ColumnIndex(key)
	for r, row := range dst.Rows {
		merged := make(tabular.Row, len(columns))
		copy(merged, row)
		for j := len(row); j < len(columns); j++ {
			merged[j] = tabular.Null
		}

		k, ok := match.matchKey(row[dstKey])
		var srcRow int
		if ok {
			srcRow, ok = index[k]
		}
		if !ok {
			stats.Unmatched++
			out.Rows[r] = merged
			continue
		}

		stats.Matched++
		from := src.Rows[srcRow]
		for i, c := range srcCols {
			if existing[i] {
				stats.Overwritten++
			}
			merged[targets[i]] = from[c]
		}
		out.Rows[r] = merged
	}

	return out, stats
}
