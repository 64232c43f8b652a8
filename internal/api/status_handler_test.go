package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vigilsys/vigil/internal/tasks"
)

type stubSupervisor struct{ snap tasks.DrainSnapshot }

func (s *stubSupervisor) LastDrain() tasks.DrainSnapshot { return s.snap }

type stubReporter struct{ status tasks.RuntimeStatus }

func (s *stubReporter) LastStatus() tasks.RuntimeStatus { return s.status }

type stubWatchdog struct{ ages map[string]time.Duration }

func (s *stubWatchdog) PetAges() map[string]time.Duration { return s.ages }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func newTestHandler() (*StatusHandler, uuid.UUID) {
	runID := uuid.New()
	h := NewStatusHandler(
		&stubSupervisor{snap: tasks.DrainSnapshot{
			At:      time.Now(),
			Signals: []string{"consumer_dequeue_ok"},
			Totals:  map[string]uint64{"consumer_dequeue_ok": 7},
		}},
		&stubReporter{status: tasks.RuntimeStatus{
			Cores:          4,
			RuntimeVersion: "go1.24.2",
			CollectedAt:    time.Now(),
		}},
		&stubWatchdog{ages: map[string]time.Duration{
			"producer": 120 * time.Millisecond,
			"consumer": 80 * time.Millisecond,
		}},
		runID,
		testLogger(),
	)
	return h, runID
}

func TestHealthEndpoint(t *testing.T) {
	h, _ := newTestHandler()
	srv := httptest.NewServer(h.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStatusEndpoint(t *testing.T) {
	h, runID := newTestHandler()
	srv := httptest.NewServer(h.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/status")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var body StatusResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.Equal(t, runID.String(), body.RunID)
	assert.Equal(t, 4, body.Runtime.Cores)
	assert.Equal(t, []string{"consumer_dequeue_ok"}, body.LastDrain.Signals)
	assert.Equal(t, uint64(7), body.LastDrain.Totals["consumer_dequeue_ok"])
	assert.Equal(t, int64(120), body.PetAgesMS["producer"])
	assert.Equal(t, int64(80), body.PetAgesMS["consumer"])
	assert.GreaterOrEqual(t, body.UptimeMS, int64(0))
}

func TestStatusUnknownRouteReturns404(t *testing.T) {
	h, _ := newTestHandler()
	srv := httptest.NewServer(h.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/nope")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
