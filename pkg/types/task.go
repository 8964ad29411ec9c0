package types

import "time"

// Task represents a shared household task or chore.
// Title and Description are free text; AssignedTo references a Person ID and
// FairPlayCardID groups related tasks by household-responsibility category.
type Task struct {
	ID             string     `json:"id"`                          // Unique identifier (format: tsk:slug)
	Title          string     `json:"title,omitempty"`             // Canonical label
	Description    string     `json:"description,omitempty"`       // Free-text detail
	AssignedTo     string     `json:"assigned_to,omitempty"`       // Person ID of the assignee
	DueDate        *time.Time `json:"due_date,omitempty"`          // When the task is due
	FairPlayCardID string     `json:"fair_play_card_id,omitempty"` // Responsibility category grouping
	CreatedBy      string     `json:"created_by,omitempty"`        // Person ID of the creator

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
