package postgres

import (
	"context"
	"database/sql"
	"fmt"

	pgvector "github.com/pgvector/pgvector-go"

	"github.com/kinsync/kinsync/internal/storage"
)

// BlockingIndex implements storage.BlockingIndex using pgvector. Name
// embeddings are stored per entity and queried by cosine distance, narrowing
// duplicate-scan candidate pools from the whole roster to the nearest
// neighbors of each record.
type BlockingIndex struct {
	db *sql.DB
}

// Entity kinds accepted by the blocking index.
const (
	KindPerson = "person"
	KindTask   = "task"
)

// NewBlockingIndex creates a blocking index over the given connection. The
// caller is responsible for having applied MigrationPgvector; use
// RosterStore.PgvectorAvailable to check.
func NewBlockingIndex(db *sql.DB) *BlockingIndex {
	return &BlockingIndex{db: db}
}

// StoreNameVector stores or replaces the embedding for an entity's normalized
// name.
func (b *BlockingIndex) StoreNameVector(ctx context.Context, kind, id string, vector []float32) error {
	if kind == "" || id == "" {
		return fmt.Errorf("%w: kind and entity ID are required", storage.ErrInvalidInput)
	}
	if len(vector) == 0 {
		return fmt.Errorf("%w: vector cannot be empty", storage.ErrInvalidInput)
	}

	query := `
		INSERT INTO name_vectors (kind, entity_id, vector)
		VALUES ($1, $2, $3)
		ON CONFLICT(kind, entity_id) DO UPDATE SET
			vector = excluded.vector,
			updated_at = NOW()
	`
	if _, err := b.db.ExecContext(ctx, query, kind, id, pgvector.NewVector(vector)); err != nil {
		return fmt.Errorf("postgres: failed to store name vector: %w", err)
	}
	return nil
}

// NearestNeighbors returns up to limit entity IDs of the given kind closest
// to the query vector, nearest first.
func (b *BlockingIndex) NearestNeighbors(ctx context.Context, kind string, vector []float32, limit int) ([]string, error) {
	if kind == "" {
		return nil, fmt.Errorf("%w: kind is required", storage.ErrInvalidInput)
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: vector cannot be empty", storage.ErrInvalidInput)
	}
	if limit < 1 {
		limit = 10
	}

	query := `
		SELECT entity_id
		FROM name_vectors
		WHERE kind = $1
		ORDER BY vector <=> $2
		LIMIT $3
	`
	rows, err := b.db.QueryContext(ctx, query, kind, pgvector.NewVector(vector), limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query nearest neighbors: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan neighbor: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeleteNameVector removes an entity's embedding.
func (b *BlockingIndex) DeleteNameVector(ctx context.Context, kind, id string) error {
	if kind == "" || id == "" {
		return fmt.Errorf("%w: kind and entity ID are required", storage.ErrInvalidInput)
	}

	result, err := b.db.ExecContext(ctx, "DELETE FROM name_vectors WHERE kind = $1 AND entity_id = $2", kind, id)
	if err != nil {
		return fmt.Errorf("postgres: failed to delete name vector: %w", err)
	}
	return requireAffected(result)
}
