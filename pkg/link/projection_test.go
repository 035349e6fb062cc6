package link

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/tablelink/pkg/errors"
)

func TestProject(t *testing.T) {
	tests := []struct {
		name      string
		selection []string
		key       string
		want      []string
	}{
		{"key absent", []string{"email", "age"}, "id", []string{"id", "email", "age"}},
		{"key selected", []string{"email", "id", "age"}, "id", []string{"id", "email", "age"}},
		{"duplicates", []string{"age", "email", "age", "id", "id"}, "id", []string{"id", "age", "email"}},
		{"only key", []string{"id"}, "id", []string{"id"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Project(tt.selection, tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProjectEmpty(t *testing.T) {
	_, err := Project(nil, "id")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrEmptySelection)

	_, err = Project([]string{}, "id")
	assert.ErrorIs(t, err, errors.ErrEmptySelection)
}

func TestProjectProperties(t *testing.T) {
	names := []string{"id", "a", "b", "c", "d"}
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 300; i++ {
		selection := make([]string, 1+rng.Intn(8))
		for j := range selection {
			selection[j] = names[rng.Intn(len(names))]
		}
		key := names[rng.Intn(len(names))]

		got, err := Project(selection, key)
		require.NoError(t, err)

		assert.Equal(t, key, got[0])
		seen := map[string]bool{}
		for _, c := range got {
			assert.False(t, seen[c], "duplicate %q in %v", c, got)
			seen[c] = true
		}

		distinct := map[string]bool{}
		for _, c := range selection {
			if c != key {
				distinct[c] = true
			}
		}
		assert.Len(t, got, 1+len(distinct))
	}
}

func TestSelection(t *testing.T) {
	var s Selection
	s.Add("email", "age", "email")
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []string{"email", "age"}, s.Columns())
	assert.True(t, s.Contains("age"))

	s.Remove("email", "missing")
	assert.Equal(t, []string{"age"}, s.Columns())

	s.All([]string{"id", "name", "tier"})
	assert.Equal(t, []string{"id", "name", "tier"}, s.Columns())

	s.Clear()
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.Contains("id"))

	cols := NewSelection("x", "y").Columns()
	cols[0] = "changed"
	assert.Equal(t, []string{"x", "y"}, NewSelection("x", "y").Columns())
}
