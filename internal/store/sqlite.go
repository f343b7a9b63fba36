package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"octane-arena/internal/domain"

	"github.com/rs/zerolog"
)

// SQLiteStore keeps each record as a JSON doc keyed by id, one table per
// collection. Save rewrites the whole snapshot in a single transaction so
// a reader never observes half of one save and half of another.
type SQLiteStore struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewSQLiteStore(db *sql.DB, logger zerolog.Logger) *SQLiteStore {
	return &SQLiteStore{db: db, logger: logger}
}

func (s *SQLiteStore) Load(ctx context.Context) (*Snapshot, error) {
	snap := Empty()

	if err := s.loadDocs(ctx, "SELECT id, doc FROM players", func(id, doc string) error {
		var p domain.Player
		if err := json.Unmarshal([]byte(doc), &p); err != nil {
			return fmt.Errorf("player %s: %w", id, err)
		}
		snap.Players[domain.PlayerID(id)] = p
		return nil
	}); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSnapshotUnavailable, err)
	}

	if err := s.loadDocs(ctx, "SELECT id, doc FROM matches", func(id, doc string) error {
		var m domain.Match
		if err := json.Unmarshal([]byte(doc), &m); err != nil {
			return fmt.Errorf("match %s: %w", id, err)
		}
		snap.Matches[id] = m
		return nil
	}); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSnapshotUnavailable, err)
	}

	if err := s.loadDocs(ctx, "SELECT key, doc FROM queues", func(key, doc string) error {
		var q QueueState
		if err := json.Unmarshal([]byte(doc), &q); err != nil {
			return fmt.Errorf("queue %s: %w", key, err)
		}
		snap.Queues = append(snap.Queues, q)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSnapshotUnavailable, err)
	}

	s.logger.Info().
		Int("players", len(snap.Players)).
		Int("matches", len(snap.Matches)).
		Int("queues", len(snap.Queues)).
		Msg("snapshot loaded")
	return snap, nil
}

func (s *SQLiteStore) loadDocs(ctx context.Context, query string, visit func(id, doc string) error) error {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id, doc string
		if err := rows.Scan(&id, &doc); err != nil {
			return err
		}
		if err := visit(id, doc); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (s *SQLiteStore) Save(ctx context.Context, snap *Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"players", "matches", "queues"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for id, p := range snap.Players {
		if err := insertDoc(ctx, tx, "INSERT INTO players (id, doc) VALUES (?, ?)", string(id), p); err != nil {
			return fmt.Errorf("save player %s: %w", id, err)
		}
	}
	for id, m := range snap.Matches {
		if err := insertDoc(ctx, tx, "INSERT INTO matches (id, doc) VALUES (?, ?)", id, m); err != nil {
			return fmt.Errorf("save match %s: %w", id, err)
		}
	}
	for _, q := range snap.Queues {
		if err := insertDoc(ctx, tx, "INSERT INTO queues (key, doc) VALUES (?, ?)", q.Key.String(), q); err != nil {
			return fmt.Errorf("save queue %s: %w", q.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}

	s.logger.Debug().
		Int("players", len(snap.Players)).
		Int("matches", len(snap.Matches)).
		Int("queues", len(snap.Queues)).
		Msg("snapshot saved")
	return nil
}

func insertDoc(ctx context.Context, tx *sql.Tx, query, id string, v any) error {
	doc, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, query, id, string(doc))
	return err
}
