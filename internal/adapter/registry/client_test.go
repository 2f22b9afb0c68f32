package registry

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heatwise/wetbulb-etl/internal/config"
	"github.com/heatwise/wetbulb-etl/internal/observability"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	cfg := &config.Config{
		RegistryURL:     baseURL,
		RegistryToken:   "test-token",
		RegistryTimeout: 2 * time.Second,
	}
	return NewClient(cfg, testLogger(), observability.NewMetricsForTesting())
}

func TestClient_Lookup(t *testing.T) {
	t.Run("known station", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/stations/KSEA", r.URL.Path)
			assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"KSEA","name":"Seattle-Tacoma Intl","lat":47.449,"lon":-122.309,"elevation_m":132.9}`))
		}))
		defer srv.Close()

		info, err := newTestClient(t, srv.URL).Lookup(context.Background(), "KSEA")
		require.NoError(t, err)
		assert.Equal(t, "Seattle-Tacoma Intl", info.Name)
		assert.InDelta(t, 47.449, info.Lat, 0.0001)
		assert.InDelta(t, -122.309, info.Lon, 0.0001)
		assert.InDelta(t, 132.9, info.Elevation, 0.01)
	})

	t.Run("unknown station returns empty info", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		info, err := newTestClient(t, srv.URL).Lookup(context.Background(), "XXXX")
		require.NoError(t, err)
		assert.Empty(t, info.Name)
	})

	t.Run("server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		_, err := newTestClient(t, srv.URL).Lookup(context.Background(), "KSEA")
		assert.ErrorContains(t, err, "status 500")
	})

	t.Run("malformed response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}))
		defer srv.Close()

		_, err := newTestClient(t, srv.URL).Lookup(context.Background(), "KSEA")
		assert.ErrorContains(t, err, "decode registry response")
	})

	t.Run("station id is path escaped", func(t *testing.T) {
		var gotPath string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.EscapedPath()
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		_, err := newTestClient(t, srv.URL).Lookup(context.Background(), "bad/id")
		require.NoError(t, err)
		assert.Equal(t, "/v1/stations/bad%2Fid", gotPath)
	})
}

func TestClient_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	for i := 0; i < 5; i++ {
		_, err := client.Lookup(context.Background(), "KSEA")
		require.Error(t, err)
	}

	// Breaker is open now: the next lookup fails fast without hitting the server.
	_, err := client.Lookup(context.Background(), "KSEA")
	require.Error(t, err)
	assert.Equal(t, 5, calls)
}
