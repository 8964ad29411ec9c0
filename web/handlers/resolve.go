package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/kinsync/kinsync/internal/match"
	"github.com/kinsync/kinsync/internal/storage"
)

// ResolveHandlers exposes the resolution cascade over HTTP. Each request loads
// the current pool from the store so matches always reflect the live roster.
type ResolveHandlers struct {
	store    storage.RosterStore
	resolver *match.Resolver
}

// NewResolveHandlers creates a new ResolveHandlers instance.
func NewResolveHandlers(store storage.RosterStore, resolver *match.Resolver) *ResolveHandlers {
	return &ResolveHandlers{
		store:    store,
		resolver: resolver,
	}
}

// ResolvePerson handles POST /api/resolve/person - resolve a free-form mention
// against the person roster.
func (h *ResolveHandlers) ResolvePerson(w http.ResponseWriter, r *http.Request) {
	var req ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse request body", err)
		return
	}
	if req.Mention == "" {
		respondError(w, http.StatusBadRequest, "mention is required", nil)
		return
	}

	pool, err := h.store.AllPersons(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load persons", err)
		return
	}

	result := h.resolver.ResolvePerson(req.Mention, pool, match.Context{CreatedBy: req.Context.CreatedBy})
	respondJSON(w, http.StatusOK, result)
}

// ResolveTask handles POST /api/resolve/task - resolve a free-form mention
// against the task pool.
func (h *ResolveHandlers) ResolveTask(w http.ResponseWriter, r *http.Request) {
	var req ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse request body", err)
		return
	}
	if req.Mention == "" {
		respondError(w, http.StatusBadRequest, "mention is required", nil)
		return
	}

	pool, err := h.store.AllTasks(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load tasks", err)
		return
	}

	result := h.resolver.ResolveTask(req.Mention, pool, match.Context{CreatedBy: req.Context.CreatedBy})
	respondJSON(w, http.StatusOK, result)
}
