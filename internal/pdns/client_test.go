package pdns

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdnsweb/internal/model"
)

func TestZoneID(t *testing.T) {
	assert.Equal(t, "example.com.", ZoneID("example.com."))
	assert.Equal(t, "=2E", ZoneID("."), "the root zone has a special URL form")
}

func TestClientSendsAPIKey(t *testing.T) {
	var gotKey, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-Key")
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode([]model.Zone{})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret")
	_, err := c.ListZones(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, "/api/v1/servers/localhost/zones", gotPath)
}

func TestClientSetsContentTypeOnWrites(t *testing.T) {
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret")
	err := c.CreateZone(context.Background(), model.ZoneCreate{Name: "x.org.", Kind: "Native"})

	require.NoError(t, err)
	assert.Equal(t, "application/json", gotContentType)
}

func TestClientReturnsAPIErrorWithBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "Could not find domain"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret")
	_, err := c.GetZone(context.Background(), "missing.org.")

	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Contains(t, apiErr.Error(), "status 404")
	assert.Contains(t, apiErr.Error(), "Could not find domain")
}

func TestClientTrimsTrailingSlashInBaseURL(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode([]model.StatItem{})
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "secret")
	_, err := c.Statistics(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "/api/v1/servers/localhost/statistics", gotPath)
}
