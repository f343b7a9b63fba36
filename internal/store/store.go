// Package store persists point-in-time snapshots of the matchmaking state.
// The snapshot is a data contract, not a byte-level format: flat keyed
// collections of player and match records plus queue contents.
package store

import (
	"context"

	"octane-arena/internal/domain"
)

// QueueState is one queue's snapshot entry.
type QueueState struct {
	Key     domain.QueueKey   `json:"key"`
	Players []domain.PlayerID `json:"players"`
}

// Snapshot is the full persisted state. Fields absent on load default to
// empty collections; they never fail the load.
type Snapshot struct {
	Players map[domain.PlayerID]domain.Player `json:"players"`
	Matches map[string]domain.Match           `json:"matches"`
	Queues  []QueueState                      `json:"queues"`
}

// Empty returns a usable zero snapshot.
func Empty() *Snapshot {
	return &Snapshot{
		Players: make(map[domain.PlayerID]domain.Player),
		Matches: make(map[string]domain.Match),
	}
}

// Store loads and saves snapshots. Save replaces whatever was persisted
// before; Load of a never-written store yields an empty snapshot.
type Store interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snap *Snapshot) error
}
