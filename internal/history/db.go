// Package history is the optional Postgres-backed archive of finished
// games (SPEC_FULL.md §9): spec.md itself specifies no persisted runtime
// state beyond the SSH host key and user key database, but a social game
// with a post-game-results report is an obvious candidate to keep a
// record of past games for, and the teacher repo's internal/db already
// shows the pgx/goose idiom this follows.
package history

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a pgx connection pool for the game-history archive.
type DB struct {
	pool *pgxpool.Pool
}

// New connects to PostgreSQL and returns a DB handle.
func New(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to history database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging history database: %w", err)
	}
	return &DB{pool: pool}, nil
}

// Close closes the underlying connection pool.
func (d *DB) Close() {
	d.pool.Close()
}

// Pool returns the underlying pgx pool, for goose migrations.
func (d *DB) Pool() *pgxpool.Pool {
	return d.pool
}
