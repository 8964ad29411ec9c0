package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kinsync/kinsync/internal/match"
	"github.com/kinsync/kinsync/pkg/types"
)

func TestResolvePerson_RoleMention(t *testing.T) {
	store := newMockRosterStore()
	store.persons["per:p1"] = &types.Person{ID: "per:p1", Name: "Sarah Johnson", Role: types.RoleMother, IsParent: true}
	store.persons["per:p2"] = &types.Person{ID: "per:p2", Name: "Mike Johnson", Role: types.RoleFather, IsParent: true}
	h := NewResolveHandlers(store, match.NewResolver(match.DefaultConfig()))

	req := httptest.NewRequest(http.MethodPost, "/api/resolve/person", strings.NewReader(`{"mention":"Mom"}`))
	w := httptest.NewRecorder()
	h.ResolvePerson(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (%s)", w.Code, http.StatusOK, w.Body.String())
	}

	var result types.PersonMatch
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Person == nil || result.Person.ID != "per:p1" {
		t.Errorf("resolved %+v, want per:p1", result.Person)
	}
	if result.Method != types.MethodRole {
		t.Errorf("method = %q, want %q", result.Method, types.MethodRole)
	}
}

func TestResolvePerson_NoMatch(t *testing.T) {
	store := newMockRosterStore()
	store.persons["per:p1"] = &types.Person{ID: "per:p1", Name: "Sarah Johnson"}
	h := NewResolveHandlers(store, match.NewResolver(match.DefaultConfig()))

	req := httptest.NewRequest(http.MethodPost, "/api/resolve/person", strings.NewReader(`{"mention":"Zebediah Quartermain"}`))
	w := httptest.NewRecorder()
	h.ResolvePerson(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var result types.PersonMatch
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Person != nil {
		t.Errorf("unexpected match: %+v", result.Person)
	}
	if result.Method != types.MethodNoMatch {
		t.Errorf("method = %q, want %q", result.Method, types.MethodNoMatch)
	}
}

func TestResolvePerson_RequiresMention(t *testing.T) {
	h := NewResolveHandlers(newMockRosterStore(), match.NewResolver(match.DefaultConfig()))

	req := httptest.NewRequest(http.MethodPost, "/api/resolve/person", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	h.ResolvePerson(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestResolveTask_ExactTitle(t *testing.T) {
	store := newMockRosterStore()
	store.tasks["tsk:t1"] = &types.Task{ID: "tsk:t1", Title: "Grocery shopping"}
	h := NewResolveHandlers(store, match.NewResolver(match.DefaultConfig()))

	req := httptest.NewRequest(http.MethodPost, "/api/resolve/task", strings.NewReader(`{"mention":"grocery shopping"}`))
	w := httptest.NewRecorder()
	h.ResolveTask(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (%s)", w.Code, http.StatusOK, w.Body.String())
	}

	var result types.TaskMatch
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Task == nil || result.Task.ID != "tsk:t1" {
		t.Errorf("resolved %+v, want tsk:t1", result.Task)
	}
	if result.Method != types.MethodExactTitle {
		t.Errorf("method = %q, want %q", result.Method, types.MethodExactTitle)
	}
	if result.Confidence != 1.0 {
		t.Errorf("confidence = %v, want 1.0", result.Confidence)
	}
}

func TestResolveTask_NewTask(t *testing.T) {
	store := newMockRosterStore()
	store.tasks["tsk:t1"] = &types.Task{ID: "tsk:t1", Title: "Clean the garage"}
	h := NewResolveHandlers(store, match.NewResolver(match.DefaultConfig()))

	req := httptest.NewRequest(http.MethodPost, "/api/resolve/task", strings.NewReader(`{"mention":"schedule dentist appointment"}`))
	w := httptest.NewRecorder()
	h.ResolveTask(w, req)

	var result types.TaskMatch
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !result.IsNew {
		t.Errorf("expected a new-task signal, got %+v", result)
	}
}
