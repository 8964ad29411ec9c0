package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchMentions(t *testing.T) {
	var gotAuth, gotCursor string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotCursor = r.URL.Query().Get("cursor")
		json.NewEncoder(w).Encode(mentionsResponse{
			Mentions: []Mention{
				{ID: "m1", Kind: MentionKindPerson, Text: "Mom"},
				{ID: "m2", Kind: MentionKindTask, Text: "grocery shopping"},
			},
			NextCursor: "c2",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "tok", 100, 10)
	mentions, next, err := client.FetchMentions(context.Background(), "c1")
	if err != nil {
		t.Fatalf("FetchMentions: %v", err)
	}

	if gotAuth != "Bearer tok" {
		t.Errorf("Authorization = %q, want bearer token", gotAuth)
	}
	if gotCursor != "c1" {
		t.Errorf("cursor = %q, want c1", gotCursor)
	}
	if len(mentions) != 2 || mentions[0].ID != "m1" || mentions[1].Kind != MentionKindTask {
		t.Errorf("unexpected batch: %+v", mentions)
	}
	if next != "c2" {
		t.Errorf("next cursor = %q, want c2", next)
	}
}

func TestFetchMentions_KeepsCursorOnEmptyNext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(mentionsResponse{})
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 100, 10)
	_, next, err := client.FetchMentions(context.Background(), "c7")
	if err != nil {
		t.Fatalf("FetchMentions: %v", err)
	}
	if next != "c7" {
		t.Errorf("next cursor = %q, want preserved c7", next)
	}
}

func TestFetchMentions_BreakerTrips(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 1000, 1000)

	// Three consecutive failures trip the circuit.
	for i := 0; i < 3; i++ {
		if _, _, err := client.FetchMentions(context.Background(), ""); err == nil {
			t.Fatalf("call %d: expected error", i)
		}
	}
	if client.BreakerState() != "open" {
		t.Fatalf("breaker state = %q, want open", client.BreakerState())
	}

	hitsBefore := hits
	_, _, err := client.FetchMentions(context.Background(), "")
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("err = %v, want ErrCircuitOpen", err)
	}
	if hits != hitsBefore {
		t.Errorf("open circuit still reached the relay (%d -> %d hits)", hitsBefore, hits)
	}
}

func TestAckMentions(t *testing.T) {
	var gotIDs []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/mentions/ack" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var payload map[string][]string
		json.NewDecoder(r.Body).Decode(&payload)
		gotIDs = payload["ids"]
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 100, 10)
	if err := client.AckMentions(context.Background(), []string{"m1", "m2"}); err != nil {
		t.Fatalf("AckMentions: %v", err)
	}
	if len(gotIDs) != 2 || gotIDs[0] != "m1" {
		t.Errorf("acked IDs = %v, want [m1 m2]", gotIDs)
	}
}

func TestAckMentions_EmptyIsNoop(t *testing.T) {
	client := NewClient("http://relay.invalid", "", 100, 10)
	if err := client.AckMentions(context.Background(), nil); err != nil {
		t.Errorf("empty ack: %v", err)
	}
}
