// Package repository archives finished games in Postgres. The archive is
// optional: the simulator runs entirely in memory and only writes here once
// a game reaches a terminal state.
package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// DB wraps the pgx connection pool.
type DB struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewDB connects to Postgres and verifies the connection.
func NewDB(ctx context.Context, dsn string, logger *zap.Logger) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &DB{pool: pool, logger: logger}, nil
}

// Close releases the pool.
func (db *DB) Close() {
	db.pool.Close()
}

// Migrate creates the archive tables if they do not exist yet.
func (db *DB) Migrate(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS games (
    id          TEXT PRIMARY KEY,
    turns       INTEGER NOT NULL,
    max_turns   INTEGER NOT NULL,
    finished_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS game_players (
    game_id TEXT NOT NULL REFERENCES games(id),
    name    TEXT NOT NULL,
    status  TEXT NOT NULL,
    stars   INTEGER NOT NULL,
    cards   INTEGER NOT NULL,
    money   BIGINT NOT NULL,
    PRIMARY KEY (game_id, name)
);
CREATE TABLE IF NOT EXISTS game_transcripts (
    game_id TEXT NOT NULL REFERENCES games(id),
    seq     INTEGER NOT NULL,
    turn    INTEGER NOT NULL,
    player  TEXT NOT NULL,
    message TEXT NOT NULL,
    PRIMARY KEY (game_id, seq)
);`
	if _, err := db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply archive schema: %w", err)
	}
	db.logger.Info("archive schema ready")
	return nil
}
