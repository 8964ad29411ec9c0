package handlers

import (
	"net/http"

	"github.com/kinsync/kinsync/internal/ingest"
	"github.com/kinsync/kinsync/internal/match"
	"github.com/kinsync/kinsync/internal/storage"
)

// RelayStatsGetter reports the relay client's circuit breaker health.
// *ingest.Client implements it.
type RelayStatsGetter interface {
	BreakerState() string
	BreakerMetrics() ingest.CircuitBreakerMetrics
}

// StatsHandler handles statistics endpoint requests.
type StatsHandler struct {
	store    storage.RosterStore
	resolver *match.Resolver
	relay    RelayStatsGetter
}

// NewStatsHandler creates a new StatsHandler instance. relay may be nil when
// no mention relay is configured.
func NewStatsHandler(store storage.RosterStore, resolver *match.Resolver, relay RelayStatsGetter) *StatsHandler {
	return &StatsHandler{
		store:    store,
		resolver: resolver,
		relay:    relay,
	}
}

// GetStats handles GET /api/stats - returns system statistics.
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	persons, err := h.store.ListPersons(ctx, storage.ListOptions{Limit: 1})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to count persons", err)
		return
	}
	tasks, err := h.store.ListTasks(ctx, storage.ListOptions{Limit: 1})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to count tasks", err)
		return
	}

	stats := StatsResponse{
		Persons: persons.Total,
		Tasks:   tasks.Total,
	}
	if h.resolver != nil {
		stats.PersonAliases = h.resolver.PersonAliasCount()
		stats.TaskAliases = h.resolver.TaskAliasCount()
	}
	if h.relay != nil {
		metrics := h.relay.BreakerMetrics()
		stats.Relay = RelayStats{
			Configured:     true,
			BreakerState:   h.relay.BreakerState(),
			TotalRequests:  metrics.TotalRequests,
			TotalSuccesses: metrics.TotalSuccesses,
			TotalFailures:  metrics.TotalFailures,
		}
	}

	respondJSON(w, http.StatusOK, stats)
}
