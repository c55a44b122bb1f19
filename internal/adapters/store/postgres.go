// Package store archives room snapshots in Postgres.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dkeye/CommentClash/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrGameNotFound = errors.New("game not found")

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() { s.pool.Close() }

const upsertGame = `
INSERT INTO games (code, state, snapshot, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (code) DO UPDATE
SET state = EXCLUDED.state, snapshot = EXCLUDED.snapshot, updated_at = EXCLUDED.updated_at`

// SaveGame upserts the latest snapshot of a room; the newest write wins.
func (s *PostgresStore) SaveGame(ctx context.Context, room *domain.Room) error {
	doc, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("encode game %s: %w", room.Code, err)
	}
	if _, err := s.pool.Exec(ctx, upsertGame, string(room.Code), string(room.State), doc); err != nil {
		return fmt.Errorf("save game %s: %w", room.Code, err)
	}
	return nil
}

func (s *PostgresStore) LoadGame(ctx context.Context, code domain.RoomCode) (*domain.Room, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx, "SELECT snapshot FROM games WHERE code = $1", string(code)).Scan(&doc)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return nil, ErrGameNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return nil, err
	case err != nil:
		return nil, fmt.Errorf("load game %s: %w", code, err)
	}
	var room domain.Room
	if err := json.Unmarshal(doc, &room); err != nil {
		return nil, fmt.Errorf("decode game %s: %w", code, err)
	}
	return &room, nil
}

// Noop stands in when no database is configured.
type Noop struct{}

func (Noop) SaveGame(context.Context, *domain.Room) error { return nil }

func (Noop) LoadGame(context.Context, domain.RoomCode) (*domain.Room, error) {
	return nil, ErrGameNotFound
}
