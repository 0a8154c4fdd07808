// ===== internal/api/client_test.go =====
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"welcome/internal/config"
)

const meBody = `{
	"summary": "Ada's phone on Wi-Fi",
	"known": true,
	"active_ids": ["aa:bb:cc:dd:ee:ff"],
	"known_active_ids": ["aa:bb:cc:dd:ee:ff"],
	"network": {"id": "wifi", "display_name": "Wi-Fi"},
	"device": {"known": true, "ids": ["d1"], "display_name": "Phone", "type": "phone", "tracker": false, "personal": true},
	"person": {"known": true, "id": "p1", "display_name": "Ada"},
	"role": {"id": "resident", "display_name": "Resident"},
	"metadata": {"ip": "10.0.0.5"}
}`

func testConfig(t *testing.T, serverURL string) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.ServerURL = serverURL
	cfg.CookieFile = filepath.Join(t.TempDir(), "cookies.json")
	cfg.CacheDir = filepath.Join(t.TempDir(), "cache")
	return cfg
}

func TestMeParsesConnection(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/me", r.URL.Path)
		w.Write([]byte(meBody))
	}))
	defer ts.Close()

	client, err := NewClient(testConfig(t, ts.URL))
	require.NoError(t, err)

	conn, err := client.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "wifi", conn.Network.ID)
	assert.Equal(t, "Ada", conn.Person.DisplayName)
	assert.Equal(t, DeviceTypePhone, conn.Device.Type)
}

func TestMemoization(t *testing.T) {
	var requests atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Write([]byte(`[]`))
	}))
	defer ts.Close()

	client, err := NewClient(testConfig(t, ts.URL))
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := client.Homes(ctx)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), requests.Load(), "one GET per resource per run")
}

func TestMemoizationOfFailures(t *testing.T) {
	var requests atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	client, err := NewClient(testConfig(t, ts.URL))
	require.NoError(t, err)

	ctx := context.Background()
	_, err1 := client.ConnectedPeople(ctx)
	_, err2 := client.ConnectedPeople(ctx)
	require.Error(t, err1)
	assert.Equal(t, err1, err2)
	assert.Equal(t, int32(1), requests.Load())
}

func TestTransportErrorOnStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	client, err := NewClient(testConfig(t, ts.URL))
	require.NoError(t, err)

	_, err = client.Me(context.Background())
	require.Error(t, err)

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, http.StatusInternalServerError, transportErr.Status)
}

func TestTransportErrorOnConnectionRefused(t *testing.T) {
	// Grab a port that nothing is listening on
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	client, err := NewClient(testConfig(t, url))
	require.NoError(t, err)

	_, err = client.Me(context.Background())
	require.Error(t, err)

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Zero(t, transportErr.Status)
}

func TestSchemaErrorOnMalformedJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not` + "\x00"))
	}))
	defer ts.Close()

	client, err := NewClient(testConfig(t, ts.URL))
	require.NoError(t, err)

	_, err = client.Me(context.Background())
	require.Error(t, err)

	var schemaErr *SchemaError
	assert.True(t, errors.As(err, &schemaErr))
}

func TestSchemaErrorOnMissingRequiredField(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Home without an id
		w.Write([]byte(`[{"display_name": "Casa"}]`))
	}))
	defer ts.Close()

	client, err := NewClient(testConfig(t, ts.URL))
	require.NoError(t, err)

	_, err = client.Homes(context.Background())
	require.Error(t, err)

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "id", schemaErr.Field)
}

func TestEmptyListIsNotAnError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer ts.Close()

	client, err := NewClient(testConfig(t, ts.URL))
	require.NoError(t, err)

	people, err := client.ConnectedPeople(context.Background())
	require.NoError(t, err)
	assert.Empty(t, people)
}

func TestUnknownPersonSkipsRequest(t *testing.T) {
	var requests atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Write([]byte(`[]`))
	}))
	defer ts.Close()

	client, err := NewClient(testConfig(t, ts.URL))
	require.NoError(t, err)

	conns, err := client.PersonConnections(context.Background(), &Person{ID: "p1", DisplayName: "Ghost"})
	require.NoError(t, err)
	assert.Empty(t, conns)
	assert.Zero(t, requests.Load())

	_, err = client.DeviceConnections(context.Background(), &Device{DisplayName: "Mystery"})
	require.NoError(t, err)
	assert.Zero(t, requests.Load())
}

func TestCookiesPersistAcrossClients(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("session"); err == nil {
			assert.Equal(t, "abc123", c.Value)
			w.Header().Set("X-Had-Cookie", "1")
		}
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc123", Path: "/"})
		w.Write([]byte(meBody))
	}))
	defer ts.Close()

	cfg := testConfig(t, ts.URL)

	first, err := NewClient(cfg)
	require.NoError(t, err)
	_, err = first.Me(context.Background())
	require.NoError(t, err)

	// The cookie file exists and holds the session cookie
	data, err := os.ReadFile(cfg.CookieFile)
	require.NoError(t, err)
	var stored []map[string]string
	require.NoError(t, json.Unmarshal(data, &stored))
	require.Len(t, stored, 1)
	assert.Equal(t, "session", stored[0]["name"])

	// A fresh client sends the persisted cookie on its first request
	second, err := NewClient(cfg)
	require.NoError(t, err)
	_, err = second.Me(context.Background())
	require.NoError(t, err)
}

func TestPrefetchWarmsAllCollections(t *testing.T) {
	var requests atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Write([]byte(`[]`))
	}))
	defer ts.Close()

	client, err := NewClient(testConfig(t, ts.URL))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, client.Prefetch(ctx))
	assert.Equal(t, int32(3), requests.Load())

	// Fetches after prefetch hit the memos
	_, err = client.Homes(ctx)
	require.NoError(t, err)
	_, err = client.ConnectedPeople(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(3), requests.Load())
}
