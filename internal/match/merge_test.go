package match

import (
	"testing"
	"time"

	"github.com/kinsync/kinsync/pkg/types"
)

// TestMergePersons_PrimaryWins verifies populated primary fields are never
// overwritten by the duplicate.
func TestMergePersons_PrimaryWins(t *testing.T) {
	primary := &types.Person{ID: "p1", Name: "Sarah Johnson", Email: "sarah.j@email.com", Role: types.RoleMother}
	duplicate := &types.Person{ID: "p2", Name: "Sara Johnson", Email: "other@email.com", Role: types.RolePrimaryCaregiver}

	merged, changed := MergePersons(primary, duplicate)
	if changed {
		t.Error("merge reported a change with nothing to fill")
	}
	if merged.Name != "Sarah Johnson" || merged.Email != "sarah.j@email.com" || merged.Role != types.RoleMother {
		t.Errorf("primary fields overwritten: %+v", merged)
	}
	if merged.ID != "p1" {
		t.Errorf("merged ID = %q, want p1", merged.ID)
	}
}

// TestMergePersons_FillsEmptyFields verifies empty primary fields are filled
// from the duplicate and the timestamp is touched.
func TestMergePersons_FillsEmptyFields(t *testing.T) {
	primary := &types.Person{ID: "p1", Name: "Sarah Johnson"}
	duplicate := &types.Person{ID: "p2", Email: "sarah.j@email.com", Role: types.RoleMother, IsParent: true}

	merged, changed := MergePersons(primary, duplicate)
	if !changed {
		t.Fatal("expected change to be reported")
	}
	if merged.Email != "sarah.j@email.com" || merged.Role != types.RoleMother || !merged.IsParent {
		t.Errorf("fields not filled: %+v", merged)
	}
	if merged.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not touched on change")
	}
}

// TestMergePersons_NoMutation verifies neither input is modified.
func TestMergePersons_NoMutation(t *testing.T) {
	primary := &types.Person{ID: "p1", Name: "Sarah Johnson"}
	duplicate := &types.Person{ID: "p2", Email: "sarah.j@email.com"}

	MergePersons(primary, duplicate)

	if primary.Email != "" {
		t.Errorf("primary mutated: %+v", primary)
	}
	if duplicate.Name != "" {
		t.Errorf("duplicate mutated: %+v", duplicate)
	}
}

// TestMergeTasks_FillsEmptyFields verifies task merging fills the due date by
// value and the remaining empty fields from the duplicate.
func TestMergeTasks_FillsEmptyFields(t *testing.T) {
	due := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	primary := &types.Task{ID: "t1", Title: "Grocery shopping"}
	duplicate := &types.Task{
		ID:             "t2",
		Description:    "Buy milk and eggs",
		AssignedTo:     "per:sarah",
		DueDate:        &due,
		FairPlayCardID: "fp-12",
		CreatedBy:      "per:mike",
	}

	merged, changed := MergeTasks(primary, duplicate)
	if !changed {
		t.Fatal("expected change to be reported")
	}
	if merged.Description != "Buy milk and eggs" || merged.AssignedTo != "per:sarah" ||
		merged.FairPlayCardID != "fp-12" || merged.CreatedBy != "per:mike" {
		t.Errorf("fields not filled: %+v", merged)
	}
	if merged.DueDate == nil || !merged.DueDate.Equal(due) {
		t.Fatalf("due date not filled: %v", merged.DueDate)
	}
	if merged.DueDate == duplicate.DueDate {
		t.Error("due date aliases the duplicate's pointer")
	}
	if merged.Title != "Grocery shopping" {
		t.Errorf("title = %q, want primary's", merged.Title)
	}
}

// TestMergeTasks_NoChange verifies a fully-populated primary absorbs nothing.
func TestMergeTasks_NoChange(t *testing.T) {
	due := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	primary := &types.Task{
		ID: "t1", Title: "Grocery shopping", Description: "Buy milk",
		AssignedTo: "per:sarah", DueDate: &due, FairPlayCardID: "fp-12", CreatedBy: "per:mike",
	}
	duplicate := &types.Task{ID: "t2", Title: "Groceries", Description: "Other"}

	merged, changed := MergeTasks(primary, duplicate)
	if changed {
		t.Error("merge reported a change with nothing to fill")
	}
	if merged.Title != "Grocery shopping" || merged.Description != "Buy milk" {
		t.Errorf("primary fields overwritten: %+v", merged)
	}
}
