// Package database stores documents in Postgres.
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/matt-dz/recetario/internal/docstore"
)

const uniqueViolation = "23505"

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id TEXT NOT NULL,
	body JSONB NOT NULL,
	seq BIGSERIAL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (collection, id)
);
CREATE INDEX IF NOT EXISTS documents_collection_seq_idx ON documents (collection, seq);
CREATE INDEX IF NOT EXISTS documents_body_idx ON documents USING GIN (body jsonb_path_ops);
`

// Pool is the subset of pgxpool.Pool used by Database.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Database struct {
	pool Pool
}

var _ docstore.Store = (*Database)(nil)

func New(pool Pool) *Database {
	return &Database{pool: pool}
}

// Connect opens a connection pool and ensures the schema exists.
func Connect(ctx context.Context, connString string) (*Database, *pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, nil, fmt.Errorf("creating database pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("pinging database: %w", err)
	}

	db := New(pool)
	if err := db.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("initializing database: %w", err)
	}
	return db, pool, nil
}

// EnsureSchema applies the documents schema. It is safe to call on every start.
func (d *Database) EnsureSchema(ctx context.Context) error {
	if _, err := d.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("applying database schema: %w", err)
	}
	return nil
}

func (d *Database) Create(ctx context.Context, collection, id string, body []byte) error {
	_, err := d.pool.Exec(ctx,
		`INSERT INTO documents (collection, id, body) VALUES ($1, $2, $3::jsonb)`,
		collection, id, string(body))
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s/%s: %w", collection, id, docstore.ErrConflict)
	} else if err != nil {
		return fmt.Errorf("inserting %s document: %w", collection, err)
	}
	return nil
}

func (d *Database) Get(ctx context.Context, collection, id string) ([]byte, error) {
	var body []byte
	err := d.pool.QueryRow(ctx,
		`SELECT body FROM documents WHERE collection = $1 AND id = $2`,
		collection, id).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s/%s: %w", collection, id, docstore.ErrNotFound)
	} else if err != nil {
		return nil, fmt.Errorf("selecting %s document: %w", collection, err)
	}
	return body, nil
}

func (d *Database) List(ctx context.Context, collection string) ([][]byte, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT body FROM documents WHERE collection = $1 ORDER BY seq`,
		collection)
	if err != nil {
		return nil, fmt.Errorf("listing %s documents: %w", collection, err)
	}
	return collectBodies(rows)
}

func (d *Database) Update(ctx context.Context, collection, id string, body []byte) error {
	tag, err := d.pool.Exec(ctx,
		`UPDATE documents SET body = $3::jsonb WHERE collection = $1 AND id = $2`,
		collection, id, string(body))
	if err != nil {
		return fmt.Errorf("updating %s document: %w", collection, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s/%s: %w", collection, id, docstore.ErrNotFound)
	}
	return nil
}

func (d *Database) Delete(ctx context.Context, collection, id string) error {
	if _, err := d.pool.Exec(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`,
		collection, id); err != nil {
		return fmt.Errorf("deleting %s document: %w", collection, err)
	}
	return nil
}

func (d *Database) Query(ctx context.Context, collection, field string, value any) ([][]byte, error) {
	filter, err := json.Marshal(map[string]any{field: value})
	if err != nil {
		return nil, fmt.Errorf("encoding filter: %w", err)
	}
	rows, err := d.pool.Query(ctx,
		`SELECT body FROM documents WHERE collection = $1 AND body @> $2::jsonb ORDER BY seq`,
		collection, string(filter))
	if err != nil {
		return nil, fmt.Errorf("querying %s documents: %w", collection, err)
	}
	return collectBodies(rows)
}

func collectBodies(rows pgx.Rows) ([][]byte, error) {
	bodies, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) ([]byte, error) {
		var body []byte
		err := row.Scan(&body)
		return body, err
	})
	if err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}
	if bodies == nil {
		bodies = [][]byte{}
	}
	return bodies, nil
}
