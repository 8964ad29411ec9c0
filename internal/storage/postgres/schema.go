package postgres

// Schema is the base PostgreSQL schema for the roster store. All statements
// are idempotent so the schema can be applied on every startup.
const Schema = `
CREATE TABLE IF NOT EXISTS persons (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	role TEXT NOT NULL DEFAULT '',
	is_parent BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_persons_email ON persons(email);
CREATE INDEX IF NOT EXISTS idx_persons_role ON persons(role);

CREATE TABLE IF NOT EXISTS tasks (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	assigned_to TEXT NOT NULL DEFAULT '',
	due_date TIMESTAMPTZ,
	fair_play_card_id TEXT NOT NULL DEFAULT '',
	created_by TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tasks_assigned_to ON tasks(assigned_to);
CREATE INDEX IF NOT EXISTS idx_tasks_fair_play_card ON tasks(fair_play_card_id);
CREATE INDEX IF NOT EXISTS idx_tasks_due_date ON tasks(due_date);
`

// MigrationPgvector adds the name-embedding table used by the blocking index.
// Applied only when the pgvector extension is available.
const MigrationPgvector = `
CREATE TABLE IF NOT EXISTS name_vectors (
	kind TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	vector vector(384) NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (kind, entity_id)
);

CREATE INDEX IF NOT EXISTS idx_name_vectors_cosine
	ON name_vectors USING hnsw (vector vector_cosine_ops);
`
