package link

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/tablelink/pkg/config"
	"github.com/ajitpratap0/tablelink/pkg/errors"
)

func TestRequestFromConfig(t *testing.T) {
	cfg := config.NewLinkConfig()
	cfg.Source = config.OriginConfig{Path: "in/orders.tsv", Skip: 2, Delimiter: "tab", Encoding: "latin1"}
	cfg.Destination = config.OriginConfig{Path: filepath.Join("in", "customers.csv.gz")}
	cfg.Key = config.KeyConfig{Mode: "Manual", Source: "cust_id", Destination: "client_id", Name: "ignored"}
	cfg.Columns = []string{"total", "status"}
	cfg.Match = config.MatchConfig{TrimSpace: true, IgnoreCase: true}
	cfg.OnCollision = "reject"

	req, err := RequestFromConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, KeyModeManual, req.Mode)
	assert.Equal(t, "", req.Key)
	assert.Equal(t, KeyBinding{SourceKey: "cust_id", DestinationKey: "client_id"}, req.Binding())
	assert.Equal(t, '\t', req.Source.Delimiter)
	assert.Equal(t, rune(0), req.Destination.Delimiter)
	assert.Equal(t, "latin1", req.Source.Encoding)
	assert.Equal(t, 2, req.SourceSkip)
	assert.Equal(t, CollisionReject, req.Collisions)
	assert.Equal(t, MatchOptions{TrimSpace: true, CaseInsensitive: true}, req.Match)
	assert.Equal(t, filepath.Join("in", "customers_linked.csv.gz"), req.Output)

	cfg.Columns[0] = "changed"
	assert.Equal(t, "total", req.Columns[0], "columns are copied")
}

func TestRequestFromConfigAutomatic(t *testing.T) {
	cfg := config.NewLinkConfig()
	cfg.Source.Path = "a.csv"
	cfg.Destination.Path = "b.xlsx"
	cfg.Key.Name = "id"
	cfg.Output = "out"

	req, err := RequestFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, KeyModeAutomatic, req.Mode)
	assert.Equal(t, KeyBinding{SourceKey: "id", DestinationKey: "id"}, req.Binding())
	assert.Equal(t, "out", req.Output)
	assert.Equal(t, CollisionOverwrite, req.Collisions)
}

func TestRequestFromConfigInvalid(t *testing.T) {
	cfg := config.NewLinkConfig()
	cfg.Key.Mode = "fuzzy"
	_, err := RequestFromConfig(cfg)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))

	cfg = config.NewLinkConfig()
	cfg.Source.Delimiter = "::"
	_, err = RequestFromConfig(cfg)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}
