package httpadapter_test

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/balloon-drift-service/internal/adapter/httpadapter"
	"github.com/couchcryptid/balloon-drift-service/internal/domain"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, time.April, 26, 12, 0, 0, 0, time.UTC)

type mockService struct {
	readyErr error
	snap     *domain.Snapshot
	triggers int
}

func (m *mockService) CheckReadiness(_ context.Context) error { return m.readyErr }
func (m *mockService) Current() *domain.Snapshot              { return m.snap }
func (m *mockService) Trigger() bool {
	m.triggers++
	return m.triggers == 1
}

func testSnapshot() *domain.Snapshot {
	now := testNow.Unix()
	risk := 37
	alpha := domain.NewTrajectory("alpha", []domain.Point{
		{Lat: 10, Lon: 20, TS: now - 3*3600},
		{Lat: 10.5, Lon: 20, TS: now - 2*3600},
		{Lat: 11, Lon: 20, TS: now},
	}, testNow)
	alpha.Risk = &risk
	bravo := domain.NewTrajectory("bravo", []domain.Point{{Lat: -5, Lon: 100, TS: now - 7200}}, testNow)
	return &domain.Snapshot{
		CycleID:      "cycle-1",
		BuiltAt:      testNow,
		Stats:        domain.IngestStats{RawRows: 5, KeptRows: 4, ObjectCount: 2},
		Trajectories: []domain.Trajectory{alpha, bravo},
	}
}

func newTestServer(svc *mockService, extra ...httpadapter.Route) *httpadapter.Server {
	return httpadapter.NewServer(":0", svc, slog.New(slog.NewTextHandler(io.Discard, nil)), extra...)
}

func serve(t *testing.T, srv *httpadapter.Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := serve(t, newTestServer(&mockService{}), http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := serve(t, newTestServer(&mockService{}), http.MethodGet, "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := serve(t, newTestServer(&mockService{readyErr: errors.New("no snapshot")}), http.MethodGet, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := serve(t, newTestServer(&mockService{}), http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestTrajectories_NotPublishedYet(t *testing.T) {
	srv := newTestServer(&mockService{})
	for _, target := range []string{"/api/trajectories", "/api/trajectories/alpha", "/api/window", "/api/export.csv"} {
		rec := serve(t, srv, http.MethodGet, target)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, target)
	}
}

func TestTrajectories_ReturnsSnapshot(t *testing.T) {
	rec := serve(t, newTestServer(&mockService{snap: testSnapshot()}), http.MethodGet, "/api/trajectories")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var body domain.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "cycle-1", body.CycleID)
	assert.Equal(t, domain.IngestStats{RawRows: 5, KeptRows: 4, ObjectCount: 2}, body.Stats)
	require.Len(t, body.Trajectories, 2)
	assert.Equal(t, "alpha", body.Trajectories[0].ID)
	assert.Equal(t, 37, *body.Trajectories[0].Risk)
}

func TestTrajectory_ByID(t *testing.T) {
	srv := newTestServer(&mockService{snap: testSnapshot()})

	rec := serve(t, srv, http.MethodGet, "/api/trajectories/bravo")
	require.Equal(t, http.StatusOK, rec.Code)
	var traj domain.Trajectory
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &traj))
	assert.Equal(t, "bravo", traj.ID)
	assert.Nil(t, traj.DriftKmh)

	rec = serve(t, srv, http.MethodGet, "/api/trajectories/zulu")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWindow_ExplicitCutoff(t *testing.T) {
	srv := newTestServer(&mockService{snap: testSnapshot()})
	cutoff := testNow.Unix() - 2*3600

	rec := serve(t, srv, http.MethodGet, "/api/window?cutoff="+strconv.FormatInt(cutoff, 10))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Cutoff       int64                       `json:"cutoff"`
		Trajectories []domain.WindowedTrajectory `json:"trajectories"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, cutoff, body.Cutoff)
	require.Len(t, body.Trajectories, 2)
	assert.Len(t, body.Trajectories[0].Points, 2)
	assert.NotNil(t, body.Trajectories[0].SpeedKmh)
	assert.Len(t, body.Trajectories[1].Points, 1)
	assert.Nil(t, body.Trajectories[1].SpeedKmh)
}

func TestWindow_HoursUsesClock(t *testing.T) {
	domain.SetClock(clockwork.NewFakeClockAt(testNow))
	t.Cleanup(func() { domain.SetClock(nil) })

	rec := serve(t, newTestServer(&mockService{snap: testSnapshot()}), http.MethodGet, "/api/window?hours=1")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Cutoff       int64                       `json:"cutoff"`
		Trajectories []domain.WindowedTrajectory `json:"trajectories"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, testNow.Unix()-3600, body.Cutoff)
	assert.Len(t, body.Trajectories[0].Points, 1)
	assert.Empty(t, body.Trajectories[1].Points)
	assert.True(t, body.Trajectories[1].Stale, "full-history staleness is retained")
}

func TestWindow_InvalidParams(t *testing.T) {
	srv := newTestServer(&mockService{snap: testSnapshot()})
	for _, target := range []string{"/api/window?cutoff=soon", "/api/window?hours=-2", "/api/window?hours=x"} {
		rec := serve(t, srv, http.MethodGet, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestExportCSV(t *testing.T) {
	srv := newTestServer(&mockService{snap: testSnapshot()})

	rec := serve(t, srv, http.MethodGet, "/api/export.csv")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))

	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, domain.ExportHeader, records[0])
	assert.Equal(t, "alpha", records[1][0])
	assert.Equal(t, "11.00000", records[1][1])
	assert.Equal(t, "37", records[1][5])
	assert.Equal(t, []string{"bravo", "-5.00000", "100.00000", "", "", "", "true"}, records[2])
}

func TestExportCSV_SelectedIDs(t *testing.T) {
	srv := newTestServer(&mockService{snap: testSnapshot()})

	rec := serve(t, srv, http.MethodGet, "/api/export.csv?ids=bravo,%20zulu")
	require.Equal(t, http.StatusOK, rec.Code)

	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "bravo", records[1][0])
}

func TestRefresh(t *testing.T) {
	svc := &mockService{}
	srv := newTestServer(svc)

	rec := serve(t, srv, http.MethodPost, "/api/refresh")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.JSONEq(t, `{"queued":true}`, rec.Body.String())

	rec = serve(t, srv, http.MethodPost, "/api/refresh")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.JSONEq(t, `{"queued":false}`, rec.Body.String())

	rec = serve(t, srv, http.MethodGet, "/api/refresh")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestExtraRoutesMounted(t *testing.T) {
	relay := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	srv := newTestServer(&mockService{}, httpadapter.Route{Pattern: "/treasure/", Handler: relay})

	rec := serve(t, srv, http.MethodGet, "/treasure/00.json")
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
