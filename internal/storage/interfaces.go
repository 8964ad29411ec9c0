// Package storage provides composable storage interfaces for the KinSync roster.
//
// The storage layer is designed with small, focused interfaces that can be
// implemented independently and composed as needed. Resolution and duplicate
// detection operate on in-memory pools loaded through these interfaces; merge
// application is the one write path with cross-entity semantics and lives
// here so it can run transactionally.
package storage

import (
	"context"

	"github.com/kinsync/kinsync/pkg/types"
)

// PersonStore provides CRUD operations and pagination for roster persons.
type PersonStore interface {
	// StorePerson creates or updates a person (upsert semantics). A missing
	// ID is generated.
	StorePerson(ctx context.Context, person *types.Person) error

	// GetPerson retrieves a person by ID.
	// Returns ErrNotFound if the person doesn't exist.
	GetPerson(ctx context.Context, id string) (*types.Person, error)

	// ListPersons retrieves persons with pagination and filtering.
	ListPersons(ctx context.Context, opts ListOptions) (*PaginatedResult[types.Person], error)

	// AllPersons loads the full person pool for resolution and duplicate
	// scans. Family rosters are small, so loading everything is cheap.
	AllPersons(ctx context.Context) ([]*types.Person, error)

	// DeletePerson removes a person by ID.
	// Returns ErrNotFound if the person doesn't exist.
	DeletePerson(ctx context.Context, id string) error

	// ApplyPersonMerge atomically applies a planned merge: the merged record
	// replaces the primary, task references to the duplicate are rewritten to
	// the primary, and the duplicate is deleted. Returns ErrNotFound if
	// either person doesn't exist.
	ApplyPersonMerge(ctx context.Context, merged *types.Person, duplicateID string) error
}

// TaskStore provides CRUD operations and pagination for roster tasks.
type TaskStore interface {
	// StoreTask creates or updates a task (upsert semantics). A missing ID is
	// generated.
	StoreTask(ctx context.Context, task *types.Task) error

	// GetTask retrieves a task by ID.
	// Returns ErrNotFound if the task doesn't exist.
	GetTask(ctx context.Context, id string) (*types.Task, error)

	// ListTasks retrieves tasks with pagination and filtering.
	ListTasks(ctx context.Context, opts ListOptions) (*PaginatedResult[types.Task], error)

	// AllTasks loads the full task pool for resolution and duplicate scans.
	AllTasks(ctx context.Context) ([]*types.Task, error)

	// DeleteTask removes a task by ID.
	// Returns ErrNotFound if the task doesn't exist.
	DeleteTask(ctx context.Context, id string) error

	// ApplyTaskMerge atomically applies a planned merge: the merged record
	// replaces the primary and the duplicate is deleted. Returns ErrNotFound
	// if either task doesn't exist.
	ApplyTaskMerge(ctx context.Context, merged *types.Task, duplicateID string) error
}

// RosterStore combines person and task storage behind one backend.
type RosterStore interface {
	PersonStore
	TaskStore

	// Close releases any resources held by the store.
	Close() error
}

// BlockingIndex narrows duplicate-scan candidate pools using name embeddings.
// Pairwise scanning is quadratic, so large rosters first retrieve the nearest
// neighbors of each record and only score those pairs. Implementations may be
// unavailable (e.g. pgvector not installed); callers fall back to full scans.
type BlockingIndex interface {
	// StoreNameVector stores or replaces the embedding for an entity's
	// normalized name. Kind distinguishes person and task namespaces.
	StoreNameVector(ctx context.Context, kind, id string, vector []float32) error

	// NearestNeighbors returns up to limit entity IDs of the same kind
	// closest to the given vector, nearest first.
	NearestNeighbors(ctx context.Context, kind string, vector []float32, limit int) ([]string, error)

	// DeleteNameVector removes an entity's embedding.
	// Returns ErrNotFound if no embedding exists.
	DeleteNameVector(ctx context.Context, kind, id string) error
}
