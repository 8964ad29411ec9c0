// Package sqlite provides a SQLite implementation of the roster store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/kinsync/kinsync/internal/storage"
	"github.com/kinsync/kinsync/pkg/types"
)

// RosterStore implements storage.RosterStore using SQLite.
type RosterStore struct {
	db *sql.DB
}

// NewRosterStore opens a SQLite database, configures WAL mode, and creates
// the schema.
func NewRosterStore(dsn string) (*RosterStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to open database: %w", err)
	}

	// SQLite only supports one concurrent writer. A single open connection
	// serialises writes and avoids SQLITE_BUSY errors under concurrent load.
	// WAL mode allows concurrent readers to proceed without blocking the writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite: failed to apply %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to create schema: %w", err)
	}

	return &RosterStore{db: db}, nil
}

// RunMigrations applies all pending database migrations from the given
// directory, for deployments that manage schema changes outside the embedded
// Schema constant.
func (s *RosterStore) RunMigrations(migrationsDir string) error {
	mgr, err := storage.NewMigrationManager(s.db, migrationsDir)
	if err != nil {
		return fmt.Errorf("sqlite: failed to create migration manager: %w", err)
	}
	if err := mgr.Up(); err != nil {
		return fmt.Errorf("sqlite: failed to run migrations: %w", err)
	}
	return nil
}

// Close releases any resources held by the store.
func (s *RosterStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// StorePerson creates or updates a person (upsert semantics). A missing ID is
// generated.
func (s *RosterStore) StorePerson(ctx context.Context, person *types.Person) error {
	if person == nil {
		return storage.ErrInvalidInput
	}
	if person.Name == "" && person.Email == "" {
		return fmt.Errorf("%w: person needs a name or an email", storage.ErrInvalidInput)
	}

	if person.ID == "" {
		person.ID = uuid.NewString()
	}
	now := time.Now()
	if person.CreatedAt.IsZero() {
		person.CreatedAt = now
	}
	person.UpdatedAt = now

	query := `
		INSERT INTO persons (id, name, email, role, is_parent, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			role = excluded.role,
			is_parent = excluded.is_parent,
			updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		person.ID, person.Name, person.Email, person.Role, person.IsParent,
		person.CreatedAt, person.UpdatedAt)
	if err != nil {
		return fmt.Errorf("sqlite: failed to store person: %w", err)
	}
	return nil
}

// GetPerson retrieves a person by ID.
func (s *RosterStore) GetPerson(ctx context.Context, id string) (*types.Person, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: person ID is required", storage.ErrInvalidInput)
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, role, is_parent, created_at, updated_at
		FROM persons WHERE id = ?
	`, id)
	return scanPerson(row)
}

// ListPersons retrieves persons with pagination and filtering.
func (s *RosterStore) ListPersons(ctx context.Context, opts storage.ListOptions) (*storage.PaginatedResult[types.Person], error) {
	opts.Normalize()

	where := "1=1"
	args := []any{}
	if opts.Role != "" {
		where += " AND role = ?"
		args = append(args, opts.Role)
	}
	if opts.OnlyParents {
		where += " AND is_parent = 1"
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM persons WHERE "+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("sqlite: failed to count persons: %w", err)
	}

	// SortBy is whitelist-validated by Normalize, safe to interpolate.
	query := fmt.Sprintf(`
		SELECT id, name, email, role, is_parent, created_at, updated_at
		FROM persons WHERE %s ORDER BY %s %s LIMIT ? OFFSET ?
	`, where, opts.SortBy, opts.SortOrder)
	rows, err := s.db.QueryContext(ctx, query, append(args, opts.Limit, opts.Offset())...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to list persons: %w", err)
	}
	defer rows.Close()

	var items []types.Person
	for rows.Next() {
		p, err := scanPersonRows(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: failed to iterate persons: %w", err)
	}

	return &storage.PaginatedResult[types.Person]{
		Items:    items,
		Total:    total,
		Page:     opts.Page,
		PageSize: opts.Limit,
		HasMore:  opts.Offset()+len(items) < total,
	}, nil
}

// AllPersons loads the full person pool for resolution and duplicate scans.
func (s *RosterStore) AllPersons(ctx context.Context) ([]*types.Person, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, role, is_parent, created_at, updated_at
		FROM persons ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to load persons: %w", err)
	}
	defer rows.Close()

	var pool []*types.Person
	for rows.Next() {
		p, err := scanPersonRows(rows)
		if err != nil {
			return nil, err
		}
		pool = append(pool, p)
	}
	return pool, rows.Err()
}

// DeletePerson removes a person by ID.
func (s *RosterStore) DeletePerson(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: person ID is required", storage.ErrInvalidInput)
	}
	result, err := s.db.ExecContext(ctx, "DELETE FROM persons WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("sqlite: failed to delete person: %w", err)
	}
	return requireAffected(result)
}

// ApplyPersonMerge atomically applies a planned merge: the merged record
// replaces the primary, task references to the duplicate are rewritten to the
// primary, and the duplicate is deleted.
func (s *RosterStore) ApplyPersonMerge(ctx context.Context, merged *types.Person, duplicateID string) error {
	if merged == nil || merged.ID == "" || duplicateID == "" {
		return fmt.Errorf("%w: merged person and duplicate ID are required", storage.ErrInvalidInput)
	}
	if merged.ID == duplicateID {
		return fmt.Errorf("%w: cannot merge a person into itself", storage.ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: failed to begin merge transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE persons SET name = ?, email = ?, role = ?, is_parent = ?, updated_at = ?
		WHERE id = ?
	`, merged.Name, merged.Email, merged.Role, merged.IsParent, time.Now(), merged.ID)
	if err != nil {
		return fmt.Errorf("sqlite: failed to update merged person: %w", err)
	}
	if err := requireAffected(result); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE tasks SET assigned_to = ? WHERE assigned_to = ?", merged.ID, duplicateID); err != nil {
		return fmt.Errorf("sqlite: failed to reassign tasks: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE tasks SET created_by = ? WHERE created_by = ?", merged.ID, duplicateID); err != nil {
		return fmt.Errorf("sqlite: failed to rewrite task creators: %w", err)
	}

	result, err = tx.ExecContext(ctx, "DELETE FROM persons WHERE id = ?", duplicateID)
	if err != nil {
		return fmt.Errorf("sqlite: failed to delete duplicate person: %w", err)
	}
	if err := requireAffected(result); err != nil {
		return err
	}

	return tx.Commit()
}

// StoreTask creates or updates a task (upsert semantics). A missing ID is
// generated.
func (s *RosterStore) StoreTask(ctx context.Context, task *types.Task) error {
	if task == nil {
		return storage.ErrInvalidInput
	}
	if task.Title == "" {
		return fmt.Errorf("%w: task title is required", storage.ErrInvalidInput)
	}

	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	now := time.Now()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	task.UpdatedAt = now

	query := `
		INSERT INTO tasks (id, title, description, assigned_to, due_date, fair_play_card_id, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			assigned_to = excluded.assigned_to,
			due_date = excluded.due_date,
			fair_play_card_id = excluded.fair_play_card_id,
			created_by = excluded.created_by,
			updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		task.ID, task.Title, task.Description, task.AssignedTo, nullableTime(task.DueDate),
		task.FairPlayCardID, task.CreatedBy, task.CreatedAt, task.UpdatedAt)
	if err != nil {
		return fmt.Errorf("sqlite: failed to store task: %w", err)
	}
	return nil
}

// GetTask retrieves a task by ID.
func (s *RosterStore) GetTask(ctx context.Context, id string) (*types.Task, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: task ID is required", storage.ErrInvalidInput)
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, assigned_to, due_date, fair_play_card_id, created_by, created_at, updated_at
		FROM tasks WHERE id = ?
	`, id)
	return scanTask(row)
}

// ListTasks retrieves tasks with pagination and filtering.
func (s *RosterStore) ListTasks(ctx context.Context, opts storage.ListOptions) (*storage.PaginatedResult[types.Task], error) {
	opts.Normalize()

	where := "1=1"
	args := []any{}
	if opts.AssignedTo != "" {
		where += " AND assigned_to = ?"
		args = append(args, opts.AssignedTo)
	}
	if opts.CreatedBy != "" {
		where += " AND created_by = ?"
		args = append(args, opts.CreatedBy)
	}
	if opts.FairPlayCardID != "" {
		where += " AND fair_play_card_id = ?"
		args = append(args, opts.FairPlayCardID)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tasks WHERE "+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("sqlite: failed to count tasks: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, title, description, assigned_to, due_date, fair_play_card_id, created_by, created_at, updated_at
		FROM tasks WHERE %s ORDER BY %s %s LIMIT ? OFFSET ?
	`, where, opts.SortBy, opts.SortOrder)
	rows, err := s.db.QueryContext(ctx, query, append(args, opts.Limit, opts.Offset())...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to list tasks: %w", err)
	}
	defer rows.Close()

	var items []types.Task
	for rows.Next() {
		t, err := scanTaskRows(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: failed to iterate tasks: %w", err)
	}

	return &storage.PaginatedResult[types.Task]{
		Items:    items,
		Total:    total,
		Page:     opts.Page,
		PageSize: opts.Limit,
		HasMore:  opts.Offset()+len(items) < total,
	}, nil
}

// AllTasks loads the full task pool for resolution and duplicate scans.
func (s *RosterStore) AllTasks(ctx context.Context) ([]*types.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, assigned_to, due_date, fair_play_card_id, created_by, created_at, updated_at
		FROM tasks ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to load tasks: %w", err)
	}
	defer rows.Close()

	var pool []*types.Task
	for rows.Next() {
		t, err := scanTaskRows(rows)
		if err != nil {
			return nil, err
		}
		pool = append(pool, t)
	}
	return pool, rows.Err()
}

// DeleteTask removes a task by ID.
func (s *RosterStore) DeleteTask(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: task ID is required", storage.ErrInvalidInput)
	}
	result, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("sqlite: failed to delete task: %w", err)
	}
	return requireAffected(result)
}

// ApplyTaskMerge atomically applies a planned merge: the merged record
// replaces the primary and the duplicate is deleted.
func (s *RosterStore) ApplyTaskMerge(ctx context.Context, merged *types.Task, duplicateID string) error {
	if merged == nil || merged.ID == "" || duplicateID == "" {
		return fmt.Errorf("%w: merged task and duplicate ID are required", storage.ErrInvalidInput)
	}
	if merged.ID == duplicateID {
		return fmt.Errorf("%w: cannot merge a task into itself", storage.ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: failed to begin merge transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE tasks SET title = ?, description = ?, assigned_to = ?, due_date = ?,
			fair_play_card_id = ?, created_by = ?, updated_at = ?
		WHERE id = ?
	`, merged.Title, merged.Description, merged.AssignedTo, nullableTime(merged.DueDate),
		merged.FairPlayCardID, merged.CreatedBy, time.Now(), merged.ID)
	if err != nil {
		return fmt.Errorf("sqlite: failed to update merged task: %w", err)
	}
	if err := requireAffected(result); err != nil {
		return err
	}

	result, err = tx.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", duplicateID)
	if err != nil {
		return fmt.Errorf("sqlite: failed to delete duplicate task: %w", err)
	}
	if err := requireAffected(result); err != nil {
		return err
	}

	return tx.Commit()
}

// scanner abstracts sql.Row and sql.Rows for the shared scan helpers.
type scanner interface {
	Scan(dest ...any) error
}

func scanPerson(row *sql.Row) (*types.Person, error) {
	p, err := scanPersonRows(row)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	return p, err
}

func scanPersonRows(sc scanner) (*types.Person, error) {
	var p types.Person
	err := sc.Scan(&p.ID, &p.Name, &p.Email, &p.Role, &p.IsParent, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("sqlite: failed to scan person: %w", err)
	}
	return &p, nil
}

func scanTask(row *sql.Row) (*types.Task, error) {
	t, err := scanTaskRows(row)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	return t, err
}

func scanTaskRows(sc scanner) (*types.Task, error) {
	var t types.Task
	var due sql.NullTime
	err := sc.Scan(&t.ID, &t.Title, &t.Description, &t.AssignedTo, &due,
		&t.FairPlayCardID, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("sqlite: failed to scan task: %w", err)
	}
	if due.Valid {
		t.DueDate = &due.Time
	}
	return &t, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: failed to check rows affected: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}
