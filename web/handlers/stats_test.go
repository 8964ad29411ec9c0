package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kinsync/kinsync/internal/ingest"
	"github.com/kinsync/kinsync/internal/match"
	"github.com/kinsync/kinsync/pkg/types"
)

// fakeRelay reports canned breaker health.
type fakeRelay struct {
	state   string
	metrics ingest.CircuitBreakerMetrics
}

func (f *fakeRelay) BreakerState() string                          { return f.state }
func (f *fakeRelay) BreakerMetrics() ingest.CircuitBreakerMetrics { return f.metrics }

func TestGetStats(t *testing.T) {
	store := newMockRosterStore()
	store.persons["per:p1"] = &types.Person{ID: "per:p1", Name: "Sarah"}
	store.persons["per:p2"] = &types.Person{ID: "per:p2", Name: "Mike"}
	store.tasks["tsk:t1"] = &types.Task{ID: "tsk:t1", Title: "Grocery shopping"}

	resolver := match.NewResolver(match.DefaultConfig())
	relay := &fakeRelay{
		state:   "closed",
		metrics: ingest.CircuitBreakerMetrics{TotalRequests: 7, TotalSuccesses: 6, TotalFailures: 1},
	}
	handler := NewStatsHandler(store, resolver, relay)

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	w := httptest.NewRecorder()
	handler.GetStats(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (%s)", w.Code, http.StatusOK, w.Body.String())
	}

	var resp StatsResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Persons != 2 {
		t.Errorf("persons = %d, want 2", resp.Persons)
	}
	if resp.Tasks != 1 {
		t.Errorf("tasks = %d, want 1", resp.Tasks)
	}
	if !resp.Relay.Configured || resp.Relay.BreakerState != "closed" {
		t.Errorf("relay stats = %+v, want configured and closed", resp.Relay)
	}
	if resp.Relay.TotalRequests != 7 {
		t.Errorf("relay total requests = %d, want 7", resp.Relay.TotalRequests)
	}
}

func TestGetStats_NoRelay(t *testing.T) {
	store := newMockRosterStore()
	handler := NewStatsHandler(store, match.NewResolver(match.DefaultConfig()), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	w := httptest.NewRecorder()
	handler.GetStats(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp StatsResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Relay.Configured {
		t.Error("relay should report unconfigured when no client is wired")
	}
}

func TestGetStats_StoreError(t *testing.T) {
	store := newMockRosterStore()
	store.personsErr = errTest
	handler := NewStatsHandler(store, match.NewResolver(match.DefaultConfig()), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	w := httptest.NewRecorder()
	handler.GetStats(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
}
