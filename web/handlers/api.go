package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/kinsync/kinsync/internal/config"
	"github.com/kinsync/kinsync/internal/storage"
	"github.com/kinsync/kinsync/pkg/types"
)

// APIHandlers contains HTTP handlers for the roster REST API.
type APIHandlers struct {
	store  storage.RosterStore
	config *config.Config
}

// NewAPIHandlers creates a new APIHandlers instance.
func NewAPIHandlers(store storage.RosterStore, cfg *config.Config) *APIHandlers {
	return &APIHandlers{
		store:  store,
		config: cfg,
	}
}

// ListPersons handles GET /api/persons - list persons with pagination and filtering.
func (h *APIHandlers) ListPersons(w http.ResponseWriter, r *http.Request) {
	opts := storage.ListOptions{
		Page:        parseInt(r.URL.Query().Get("page"), 1),
		Limit:       parseInt(r.URL.Query().Get("limit"), 50),
		SortBy:      r.URL.Query().Get("sort_by"),
		SortOrder:   r.URL.Query().Get("sort_order"),
		Role:        r.URL.Query().Get("role"),
		OnlyParents: r.URL.Query().Get("only_parents") == "true",
	}
	opts.Normalize()

	result, err := h.store.ListPersons(r.Context(), opts)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list persons", err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// GetPerson handles GET /api/persons/{id} - get a single person by ID.
func (h *APIHandlers) GetPerson(w http.ResponseWriter, r *http.Request) {
	id := extractID(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "person ID is required", nil)
		return
	}

	person, err := h.store.GetPerson(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "person not found", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to get person", err)
		return
	}
	respondJSON(w, http.StatusOK, person)
}

// CreatePerson handles POST /api/persons - create a new person.
func (h *APIHandlers) CreatePerson(w http.ResponseWriter, r *http.Request) {
	var person types.Person
	if err := json.NewDecoder(r.Body).Decode(&person); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse request body", err)
		return
	}
	if person.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required", nil)
		return
	}
	if person.ID == "" {
		person.ID = generateID("per")
	}

	if err := h.store.StorePerson(r.Context(), &person); err != nil {
		if errors.Is(err, storage.ErrInvalidInput) {
			respondError(w, http.StatusBadRequest, "invalid person", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to store person", err)
		return
	}
	respondJSON(w, http.StatusCreated, person)
}

// UpdatePerson handles PUT /api/persons/{id} - update an existing person.
func (h *APIHandlers) UpdatePerson(w http.ResponseWriter, r *http.Request) {
	id := extractID(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "person ID is required", nil)
		return
	}

	// The record must already exist; StorePerson alone would silently create it.
	if _, err := h.store.GetPerson(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "person not found", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to get person", err)
		return
	}

	var person types.Person
	if err := json.NewDecoder(r.Body).Decode(&person); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse request body", err)
		return
	}
	person.ID = id

	if err := h.store.StorePerson(r.Context(), &person); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update person", err)
		return
	}
	respondJSON(w, http.StatusOK, person)
}

// DeletePerson handles DELETE /api/persons/{id}.
func (h *APIHandlers) DeletePerson(w http.ResponseWriter, r *http.Request) {
	id := extractID(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "person ID is required", nil)
		return
	}

	if err := h.store.DeletePerson(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "person not found", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to delete person", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListTasks handles GET /api/tasks - list tasks with pagination and filtering.
func (h *APIHandlers) ListTasks(w http.ResponseWriter, r *http.Request) {
	opts := storage.ListOptions{
		Page:           parseInt(r.URL.Query().Get("page"), 1),
		Limit:          parseInt(r.URL.Query().Get("limit"), 50),
		SortBy:         r.URL.Query().Get("sort_by"),
		SortOrder:      r.URL.Query().Get("sort_order"),
		AssignedTo:     r.URL.Query().Get("assigned_to"),
		CreatedBy:      r.URL.Query().Get("created_by"),
		FairPlayCardID: r.URL.Query().Get("fair_play_card_id"),
	}
	opts.Normalize()

	result, err := h.store.ListTasks(r.Context(), opts)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list tasks", err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// GetTask handles GET /api/tasks/{id} - get a single task by ID.
func (h *APIHandlers) GetTask(w http.ResponseWriter, r *http.Request) {
	id := extractID(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "task ID is required", nil)
		return
	}

	task, err := h.store.GetTask(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "task not found", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to get task", err)
		return
	}
	respondJSON(w, http.StatusOK, task)
}

// CreateTask handles POST /api/tasks - create a new task.
func (h *APIHandlers) CreateTask(w http.ResponseWriter, r *http.Request) {
	var task types.Task
	if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse request body", err)
		return
	}
	if task.Title == "" {
		respondError(w, http.StatusBadRequest, "title is required", nil)
		return
	}
	if task.ID == "" {
		task.ID = generateID("tsk")
	}

	if err := h.store.StoreTask(r.Context(), &task); err != nil {
		if errors.Is(err, storage.ErrInvalidInput) {
			respondError(w, http.StatusBadRequest, "invalid task", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to store task", err)
		return
	}
	respondJSON(w, http.StatusCreated, task)
}

// UpdateTask handles PUT /api/tasks/{id} - update an existing task.
func (h *APIHandlers) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id := extractID(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "task ID is required", nil)
		return
	}

	if _, err := h.store.GetTask(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "task not found", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to get task", err)
		return
	}

	var task types.Task
	if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse request body", err)
		return
	}
	task.ID = id

	if err := h.store.StoreTask(r.Context(), &task); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update task", err)
		return
	}
	respondJSON(w, http.StatusOK, task)
}

// DeleteTask handles DELETE /api/tasks/{id}.
func (h *APIHandlers) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id := extractID(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "task ID is required", nil)
		return
	}

	if err := h.store.DeleteTask(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "task not found", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to delete task", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Helper functions

// extractID extracts a path parameter from the request.
func extractID(r *http.Request, key string) string {
	return r.PathValue(key)
}

// parseInt parses an integer from a string, returning defaultValue if parsing fails.
func parseInt(s string, defaultValue int) int {
	if s == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return val
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers already sent; nothing more we can do for this response.
		fmt.Printf("failed to encode JSON response: %v\n", err)
	}
}

// respondError writes an error response with the given status code.
func respondError(w http.ResponseWriter, statusCode int, message string, err error) {
	errResp := ErrorResponse{
		Error: message,
		Code:  http.StatusText(statusCode),
	}

	if err != nil {
		errResp.Details = map[string]interface{}{
			"error": err.Error(),
		}
	}

	respondJSON(w, statusCode, errResp)
}

// generateID generates a unique roster ID in the format prefix:uuid.
func generateID(prefix string) string {
	// Short UUID (8 chars) keeps IDs readable in logs and URLs.
	shortUUID := uuid.New().String()[:8]
	return fmt.Sprintf("%s:%s", prefix, shortUUID)
}
