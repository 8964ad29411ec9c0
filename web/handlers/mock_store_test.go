package handlers

import (
	"context"
	"errors"
	"sort"

	"github.com/kinsync/kinsync/internal/storage"
	"github.com/kinsync/kinsync/pkg/types"
)

var errTest = errors.New("store unavailable")

// mockRosterStore implements storage.RosterStore in memory for handler tests.
// Filters and sorting are ignored; items come back in ID order so assertions
// are deterministic.
type mockRosterStore struct {
	persons map[string]*types.Person
	tasks   map[string]*types.Task

	personsErr error
	tasksErr   error

	personMerges []string // duplicate IDs passed to ApplyPersonMerge
	taskMerges   []string
}

func newMockRosterStore() *mockRosterStore {
	return &mockRosterStore{
		persons: make(map[string]*types.Person),
		tasks:   make(map[string]*types.Task),
	}
}

func (m *mockRosterStore) StorePerson(ctx context.Context, person *types.Person) error {
	if m.personsErr != nil {
		return m.personsErr
	}
	if person.ID == "" || person.Name == "" {
		return storage.ErrInvalidInput
	}
	clone := *person
	m.persons[person.ID] = &clone
	return nil
}

func (m *mockRosterStore) GetPerson(ctx context.Context, id string) (*types.Person, error) {
	if m.personsErr != nil {
		return nil, m.personsErr
	}
	person, ok := m.persons[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	clone := *person
	return &clone, nil
}

func (m *mockRosterStore) ListPersons(ctx context.Context, opts storage.ListOptions) (*storage.PaginatedResult[types.Person], error) {
	if m.personsErr != nil {
		return nil, m.personsErr
	}
	all, _ := m.AllPersons(ctx)
	items := make([]types.Person, 0, len(all))
	for _, p := range all {
		items = append(items, *p)
	}
	return &storage.PaginatedResult[types.Person]{
		Items:    items,
		Total:    len(items),
		Page:     opts.Page,
		PageSize: opts.Limit,
	}, nil
}

func (m *mockRosterStore) AllPersons(ctx context.Context) ([]*types.Person, error) {
	if m.personsErr != nil {
		return nil, m.personsErr
	}
	out := make([]*types.Person, 0, len(m.persons))
	for _, p := range m.persons {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockRosterStore) DeletePerson(ctx context.Context, id string) error {
	if m.personsErr != nil {
		return m.personsErr
	}
	if _, ok := m.persons[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.persons, id)
	return nil
}

func (m *mockRosterStore) ApplyPersonMerge(ctx context.Context, merged *types.Person, duplicateID string) error {
	if m.personsErr != nil {
		return m.personsErr
	}
	if _, ok := m.persons[merged.ID]; !ok {
		return storage.ErrNotFound
	}
	if _, ok := m.persons[duplicateID]; !ok {
		return storage.ErrNotFound
	}
	clone := *merged
	m.persons[merged.ID] = &clone
	delete(m.persons, duplicateID)
	m.personMerges = append(m.personMerges, duplicateID)
	return nil
}

func (m *mockRosterStore) StoreTask(ctx context.Context, task *types.Task) error {
	if m.tasksErr != nil {
		return m.tasksErr
	}
	if task.ID == "" || task.Title == "" {
		return storage.ErrInvalidInput
	}
	clone := *task
	m.tasks[task.ID] = &clone
	return nil
}

func (m *mockRosterStore) GetTask(ctx context.Context, id string) (*types.Task, error) {
	if m.tasksErr != nil {
		return nil, m.tasksErr
	}
	task, ok := m.tasks[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	clone := *task
	return &clone, nil
}

func (m *mockRosterStore) ListTasks(ctx context.Context, opts storage.ListOptions) (*storage.PaginatedResult[types.Task], error) {
	if m.tasksErr != nil {
		return nil, m.tasksErr
	}
	all, _ := m.AllTasks(ctx)
	items := make([]types.Task, 0, len(all))
	for _, t := range all {
		items = append(items, *t)
	}
	return &storage.PaginatedResult[types.Task]{
		Items:    items,
		Total:    len(items),
		Page:     opts.Page,
		PageSize: opts.Limit,
	}, nil
}

func (m *mockRosterStore) AllTasks(ctx context.Context) ([]*types.Task, error) {
	if m.tasksErr != nil {
		return nil, m.tasksErr
	}
	out := make([]*types.Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockRosterStore) DeleteTask(ctx context.Context, id string) error {
	if m.tasksErr != nil {
		return m.tasksErr
	}
	if _, ok := m.tasks[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.tasks, id)
	return nil
}

func (m *mockRosterStore) ApplyTaskMerge(ctx context.Context, merged *types.Task, duplicateID string) error {
	if m.tasksErr != nil {
		return m.tasksErr
	}
	if _, ok := m.tasks[merged.ID]; !ok {
		return storage.ErrNotFound
	}
	if _, ok := m.tasks[duplicateID]; !ok {
		return storage.ErrNotFound
	}
	clone := *merged
	m.tasks[merged.ID] = &clone
	delete(m.tasks, duplicateID)
	m.taskMerges = append(m.taskMerges, duplicateID)
	return nil
}

func (m *mockRosterStore) Close() error { return nil }
