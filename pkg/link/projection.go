package link

import (
	"github.com/ajitpratap0/tablelink/pkg/errors"
)

// Project returns key followed by the distinct selected columns other than
// key, in selection order. Column existence is not checked here.
func Project(selection []string, key string) ([]string, error) {
	if len(selection) == 0 {
		return nil, errors.New(errors.ErrorTypeEmptySelection, "no columns were selected to copy")
	}

	out := make([]string, 0, len(selection)+1)
	out = append(out, key)
	seen := map[string]struct{}{key: {}}
	for _, name := range selection {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out, nil
}

// Selection is an ordered set of column names.
// The zero value is an empty selection ready to use.
type Selection struct {
	order []string
	index map[string]struct{}
}

// NewSelection returns a selection holding columns.
func NewSelection(columns ...string) *Selection {
	s := &Selection{}
	s.Add(columns...)
	return s
}

// Add appends columns not already selected.
func (s *Selection) Add(columns ...string) {
	if s.index == nil {
		s.index = make(map[string]struct{})
	}
	for _, c := range columns {
		if _, ok := s.index[c]; ok {
			continue
		}
		s.index[c] = struct{}{}
		s.order = append(s.order, c)
	}
}

// Remove deselects columns.
func (s *Selection) Remove(columns ...string) {
	for _, c := range columns {
		if _, ok := s.index[c]; !ok {
			continue
		}
		delete(s.index, c)
		for i, name := range s.order {
			if name == c {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
}

// All replaces the selection with columns.
func (s *Selection) All(columns []string) {
	s.Clear()
	s.Add(columns...)
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.order = nil
	s.index = nil
}

// Contains reports whether column is selected.
func (s *Selection) Contains(column string) bool {
	_, ok := s.index[column]
	return ok
}

// Len returns the number of selected columns.
func (s *Selection) Len() int {
	return len(s.order)
}

// Columns returns a copy of the selected columns in insertion order.
func (s *Selection) Columns() []string {
	return append([]string(nil), s.order...)
}
