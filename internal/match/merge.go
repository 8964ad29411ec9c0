package match

import (
	"time"

	"github.com/kinsync/kinsync/pkg/types"
)

// MergePersons folds a duplicate person into a primary one: the primary's
// populated fields always win, and its empty fields are filled from the
// duplicate. Identity and audit fields are never copied. Neither input is
// mutated; the merged copy and whether anything changed are returned.
//
// Applying the merge (rewriting references to the duplicate, deleting it) is
// the storage layer's responsibility.
func MergePersons(primary, duplicate *types.Person) (*types.Person, bool) {
	merged := *primary
	changed := false

	if merged.Name == "" && duplicate.Name != "" {
		merged.Name = duplicate.Name
		changed = true
	}
	if merged.Email == "" && duplicate.Email != "" {
		merged.Email = duplicate.Email
		changed = true
	}
	if merged.Role == "" && duplicate.Role != "" {
		merged.Role = duplicate.Role
		changed = true
	}
	if !merged.IsParent && duplicate.IsParent {
		merged.IsParent = true
		changed = true
	}

	if changed {
		merged.UpdatedAt = time.Now()
	}
	return &merged, changed
}

// MergeTasks is the task counterpart of MergePersons.
func MergeTasks(primary, duplicate *types.Task) (*types.Task, bool) {
	merged := *primary
	changed := false

	if merged.Title == "" && duplicate.Title != "" {
		merged.Title = duplicate.Title
		changed = true
	}
	if merged.Description == "" && duplicate.Description != "" {
		merged.Description = duplicate.Description
		changed = true
	}
	if merged.AssignedTo == "" && duplicate.AssignedTo != "" {
		merged.AssignedTo = duplicate.AssignedTo
		changed = true
	}
	if merged.DueDate == nil && duplicate.DueDate != nil {
		due := *duplicate.DueDate
		merged.DueDate = &due
		changed = true
	}
	if merged.FairPlayCardID == "" && duplicate.FairPlayCardID != "" {
		merged.FairPlayCardID = duplicate.FairPlayCardID
		changed = true
	}
	if merged.CreatedBy == "" && duplicate.CreatedBy != "" {
		merged.CreatedBy = duplicate.CreatedBy
		changed = true
	}

	if changed {
		merged.UpdatedAt = time.Now()
	}
	return &merged, changed
}
