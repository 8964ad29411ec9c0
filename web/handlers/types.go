package handlers

import (
	"github.com/kinsync/kinsync/pkg/types"
)

// ErrorResponse is the standard error response format for the API.
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ResolveRequest is the request format for the resolve endpoints.
// Mention is the raw text as the user typed it; Context.CreatedBy optionally
// names the roster person whose record the mention appeared in.
type ResolveRequest struct {
	Mention string         `json:"mention"`
	Context ResolveContext `json:"context"`
}

// ResolveContext carries circumstances around a mention that the cascade can
// use when text alone is inconclusive.
type ResolveContext struct {
	CreatedBy string `json:"created_by,omitempty"`
}

// MergeRequest is the request format for the merge endpoints. The path names
// the primary record; DuplicateID names the record folded into it.
type MergeRequest struct {
	DuplicateID string `json:"duplicate_id"`
}

// MergeResponse reports the outcome of an applied merge.
type MergeResponse struct {
	Merged  interface{} `json:"merged"`
	Changed bool        `json:"changed"`
	Deleted string      `json:"deleted"`
}

// ScanResponse is the response format for the duplicate scan endpoints.
type ScanResponse[E any] struct {
	Pairs   []types.DuplicatePair[E] `json:"pairs"`
	Scanned int                      `json:"scanned"`
}

// RelayStats reports the health of the mention relay client.
type RelayStats struct {
	Configured     bool   `json:"configured"`
	BreakerState   string `json:"breaker_state,omitempty"`
	TotalRequests  uint64 `json:"total_requests,omitempty"`
	TotalSuccesses uint64 `json:"total_successes,omitempty"`
	TotalFailures  uint64 `json:"total_failures,omitempty"`
}

// StatsResponse is the response format for GET /api/stats.
type StatsResponse struct {
	Persons       int        `json:"persons"`
	Tasks         int        `json:"tasks"`
	PersonAliases int        `json:"person_aliases"`
	TaskAliases   int        `json:"task_aliases"`
	Relay         RelayStats `json:"relay"`
}
