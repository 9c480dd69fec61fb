package openmeteo

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/balloon-drift-service/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func testMetrics() *observability.Metrics {
	return observability.NewMetricsForTesting()
}

func testClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		metrics:    testMetrics(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestClient_Wind_ReadsLastEntry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "45.1235", q.Get("latitude"))
		assert.Equal(t, "-122.5000", q.Get("longitude"))
		assert.Contains(t, q.Get("hourly"), "wind_speed_700hPa")
		assert.Contains(t, q.Get("hourly"), "wind_direction_500hPa")

		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{
			"hourly": {
				"time": ["2024-04-26T11:00", "2024-04-26T12:00"],
				"wind_speed_700hPa": [10.0, 22.5],
				"wind_direction_700hPa": [180, 270],
				"wind_speed_500hPa": [30.0, 41.0],
				"wind_direction_500hPa": [200, 260]
			}
		}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	sample, err := c.Wind(context.Background(), 45.12346, -122.5)
	require.NoError(t, err)

	require.NotNil(t, sample.Wind700)
	assert.Equal(t, 22.5, *sample.Wind700)
	assert.Equal(t, 270.0, *sample.Dir700)
	assert.Equal(t, 41.0, *sample.Wind500)
	assert.Equal(t, 260.0, *sample.Dir500)
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.WindRequests.WithLabelValues("success")), 0)
}

func TestClient_Wind_MissingSeries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{"hourly":{"wind_speed_700hPa":[5.0],"wind_direction_700hPa":[],"wind_speed_500hPa":[null]}}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	sample, err := c.Wind(context.Background(), 0, 0)
	require.NoError(t, err)

	require.NotNil(t, sample.Wind700)
	assert.Equal(t, 5.0, *sample.Wind700)
	assert.Nil(t, sample.Dir700)
	assert.Nil(t, sample.Wind500)
	assert.Nil(t, sample.Dir500)
}

func TestClient_Wind_NoHourlyBlock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	sample, err := c.Wind(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.True(t, sample.IsEmpty())
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.WindRequests.WithLabelValues("empty")), 0)
}

func TestClient_Wind_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":true,"reason":"Too many requests"}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.Wind(context.Background(), 0, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.WindRequests.WithLabelValues("error")), 0)
}

func TestClient_Wind_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"hourly":`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Wind(context.Background(), 0, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestClient_Wind_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	c.httpClient.Timeout = 50 * time.Millisecond

	_, err := c.Wind(context.Background(), 0, 0)
	require.Error(t, err)
}
