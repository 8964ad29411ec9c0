package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kinsync/kinsync/internal/match"
	"github.com/kinsync/kinsync/internal/storage"
	"github.com/kinsync/kinsync/pkg/types"
)

// Broadcaster pushes scan progress to connected clients. The WebSocket hub
// implements it; a nil Broadcaster disables progress events.
type Broadcaster interface {
	Broadcast(message interface{})
}

// ScanEvent is pushed over the WebSocket while a duplicate scan runs.
type ScanEvent struct {
	Type    string `json:"type"` // "scan_started" or "scan_completed"
	Kind    string `json:"kind"` // "persons" or "tasks"
	Scanned int    `json:"scanned,omitempty"`
	Pairs   int    `json:"pairs,omitempty"`
}

// DuplicateHandlers exposes duplicate scanning and merge application.
type DuplicateHandlers struct {
	store    storage.RosterStore
	detector *match.Detector
	hub      Broadcaster
}

// NewDuplicateHandlers creates a new DuplicateHandlers instance.
// hub may be nil.
func NewDuplicateHandlers(store storage.RosterStore, detector *match.Detector, hub Broadcaster) *DuplicateHandlers {
	return &DuplicateHandlers{
		store:    store,
		detector: detector,
		hub:      hub,
	}
}

// ScanPersons handles POST /api/duplicates/persons - scan the person roster
// for likely duplicates.
func (h *DuplicateHandlers) ScanPersons(w http.ResponseWriter, r *http.Request) {
	pool, err := h.store.AllPersons(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load persons", err)
		return
	}

	h.broadcast(ScanEvent{Type: "scan_started", Kind: "persons", Scanned: len(pool)})
	pairs := h.detector.FindDuplicatePersons(pool)
	h.broadcast(ScanEvent{Type: "scan_completed", Kind: "persons", Scanned: len(pool), Pairs: len(pairs)})

	respondJSON(w, http.StatusOK, ScanResponse[*types.Person]{
		Pairs:   pairs,
		Scanned: len(pool),
	})
}

// ScanTasks handles POST /api/duplicates/tasks - scan the task pool for
// likely duplicates.
func (h *DuplicateHandlers) ScanTasks(w http.ResponseWriter, r *http.Request) {
	pool, err := h.store.AllTasks(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load tasks", err)
		return
	}

	h.broadcast(ScanEvent{Type: "scan_started", Kind: "tasks", Scanned: len(pool)})
	pairs := h.detector.FindDuplicateTasks(pool)
	h.broadcast(ScanEvent{Type: "scan_completed", Kind: "tasks", Scanned: len(pool), Pairs: len(pairs)})

	respondJSON(w, http.StatusOK, ScanResponse[*types.Task]{
		Pairs:   pairs,
		Scanned: len(pool),
	})
}

// MergePerson handles POST /api/persons/{id}/merge - fold a duplicate person
// into the primary named by the path. The merged record keeps the primary's
// populated fields and fills gaps from the duplicate; task references to the
// duplicate are rewritten before it is deleted.
func (h *DuplicateHandlers) MergePerson(w http.ResponseWriter, r *http.Request) {
	primaryID := extractID(r, "id")
	if primaryID == "" {
		respondError(w, http.StatusBadRequest, "person ID is required", nil)
		return
	}

	var req MergeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse request body", err)
		return
	}
	if req.DuplicateID == "" {
		respondError(w, http.StatusBadRequest, "duplicate_id is required", nil)
		return
	}
	if req.DuplicateID == primaryID {
		respondError(w, http.StatusBadRequest, "cannot merge a person into itself", nil)
		return
	}

	primary, err := h.store.GetPerson(r.Context(), primaryID)
	if err != nil {
		respondPersonLookupError(w, err)
		return
	}
	duplicate, err := h.store.GetPerson(r.Context(), req.DuplicateID)
	if err != nil {
		respondPersonLookupError(w, err)
		return
	}

	merged, changed := match.MergePersons(primary, duplicate)
	if err := h.store.ApplyPersonMerge(r.Context(), merged, duplicate.ID); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to apply merge", err)
		return
	}

	respondJSON(w, http.StatusOK, MergeResponse{
		Merged:  merged,
		Changed: changed,
		Deleted: duplicate.ID,
	})
}

// MergeTask handles POST /api/tasks/{id}/merge - fold a duplicate task into
// the primary named by the path.
func (h *DuplicateHandlers) MergeTask(w http.ResponseWriter, r *http.Request) {
	primaryID := extractID(r, "id")
	if primaryID == "" {
		respondError(w, http.StatusBadRequest, "task ID is required", nil)
		return
	}

	var req MergeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse request body", err)
		return
	}
	if req.DuplicateID == "" {
		respondError(w, http.StatusBadRequest, "duplicate_id is required", nil)
		return
	}
	if req.DuplicateID == primaryID {
		respondError(w, http.StatusBadRequest, "cannot merge a task into itself", nil)
		return
	}

	primary, err := h.store.GetTask(r.Context(), primaryID)
	if err != nil {
		respondTaskLookupError(w, err)
		return
	}
	duplicate, err := h.store.GetTask(r.Context(), req.DuplicateID)
	if err != nil {
		respondTaskLookupError(w, err)
		return
	}

	merged, changed := match.MergeTasks(primary, duplicate)
	if err := h.store.ApplyTaskMerge(r.Context(), merged, duplicate.ID); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to apply merge", err)
		return
	}

	respondJSON(w, http.StatusOK, MergeResponse{
		Merged:  merged,
		Changed: changed,
		Deleted: duplicate.ID,
	})
}

func (h *DuplicateHandlers) broadcast(event ScanEvent) {
	if h.hub != nil {
		h.hub.Broadcast(event)
	}
}

func respondPersonLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "person not found", err)
		return
	}
	respondError(w, http.StatusInternalServerError, "failed to get person", err)
}

func respondTaskLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "task not found", err)
		return
	}
	respondError(w, http.StatusInternalServerError, "failed to get task", err)
}
