package types

import "time"

// Family role identifiers used by the role-based resolution heuristic.
// Roles are free-form strings in storage; these constants cover the values
// the matching engine understands.
const (
	RoleMother             = "mother"
	RoleFather             = "father"
	RolePrimaryCaregiver   = "primary_caregiver"
	RoleSecondaryCaregiver = "secondary_caregiver"
)

// Person represents a family member in the roster.
// All fields except ID are optional; the matching engine only reads the
// fields that are present and never mutates a candidate.
type Person struct {
	ID       string `json:"id"`                  // Unique identifier (format: per:slug)
	Name     string `json:"name,omitempty"`      // Display name
	Email    string `json:"email,omitempty"`     // Email address
	Role     string `json:"role,omitempty"`      // Family role (see Role constants)
	IsParent bool   `json:"is_parent,omitempty"` // Whether this person is a parent/guardian

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
