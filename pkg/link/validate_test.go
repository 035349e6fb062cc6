package link

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/tablelink/pkg/connector/core"
	"github.com/ajitpratap0/tablelink/pkg/errors"
)

func validRequest() Request {
	return Request{
		Source:      core.Origin{Path: "orders.csv"},
		Destination: core.Origin{Path: "customers.xlsx"},
		Mode:        KeyModeAutomatic,
		Key:         "id",
		Columns:     []string{"total"},
		Output:      "customers_linked.xlsx",
	}
}

func TestPreflight(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Request)
		want   errors.ErrorType
	}{
		{"no source", func(r *Request) { r.Source.Path = " " }, errors.ErrorTypeSourceRead},
		{"no destination", func(r *Request) { r.Destination.Path = "" }, errors.ErrorTypeSourceRead},
		{"negative skip", func(r *Request) { r.DestinationSkip = -1 }, errors.ErrorTypeSourceRead},
		{"legacy workbook", func(r *Request) { r.Source.Path = "old.xls" }, errors.ErrorTypeSourceRead},
		{"unknown format", func(r *Request) { r.Destination.Path = "notes.pdf" }, errors.ErrorTypeSourceRead},
		{"no automatic key", func(r *Request) { r.Key = "" }, errors.ErrorTypeMissingKeySelection},
		{"manual source key missing", func(r *Request) {
			r.Mode = KeyModeManual
			r.DestinationKey = "client_id"
		}, errors.ErrorTypeMissingKeySelection},
		{"unknown mode", func(r *Request) { r.Mode = "fuzzy" }, errors.ErrorTypeConfig},
		{"empty selection", func(r *Request) { r.Columns = nil }, errors.ErrorTypeEmptySelection},
		{"unknown policy", func(r *Request) { r.Collisions = "merge" }, errors.ErrorTypeConfig},
		{"no output", func(r *Request) { r.Output = "" }, errors.ErrorTypeWrite},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)
			err := Preflight(req)
			require.Error(t, err)
			assert.Equal(t, tt.want, errors.TypeOf(err), err.Error())
		})
	}
}

func TestPreflightAccepts(t *testing.T) {
	require.NoError(t, Preflight(validRequest()))

	req := validRequest()
	req.Output = ""
	req.DryRun = true
	assert.NoError(t, Preflight(req), "dry runs need no output")

	req = validRequest()
	req.Mode = KeyModeManual
	req.Key = ""
	req.SourceKey, req.DestinationKey = "cust_id", "client_id"
	req.Source.Path = "orders.tsv.gz"
	assert.NoError(t, Preflight(req))
}

func TestCheckSchema(t *testing.T) {
	dst := dataset([]string{"id", "name", "email"})
	src := dataset([]string{"id", "email", "tier"})
	binding := KeyBinding{SourceKey: "id", DestinationKey: "id"}

	require.NoError(t, CheckSchema(src, dst, binding, []string{"id", "email", "tier"}, CollisionOverwrite))

	err := CheckSchema(src, dst, binding, []string{"id", "tier", "phone", "fax"}, CollisionOverwrite)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeColumnNotFound))
	assert.Contains(t, err.Error(), "phone, fax")

	err = CheckSchema(src, dst, binding, []string{"id", "email", "tier"}, CollisionReject)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeColumnConflict))
	assert.Contains(t, err.Error(), "email")

	require.NoError(t, CheckSchema(src, dst, binding, []string{"id", "tier"}, CollisionReject))
}

func TestCheckSchemaMissingKey(t *testing.T) {
	binding := KeyBinding{SourceKey: "cust_id", DestinationKey: "client_id"}

	err := CheckSchema(dataset([]string{"client_id"}), dataset([]string{"id"}), binding, []string{"client_id"}, CollisionOverwrite)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeKeyNotFound))
	assert.Contains(t, err.Error(), "destination")

	err = CheckSchema(dataset([]string{"id"}), dataset([]string{"client_id"}), binding, []string{"client_id"}, CollisionOverwrite)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeKeyNotFound))
	assert.Contains(t, err.Error(), "cust_id")
}
