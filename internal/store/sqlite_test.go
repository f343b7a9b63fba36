package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"octane-arena/internal/config"
	"octane-arena/internal/database"
	"octane-arena/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	cfg := &config.Config{DBPath: filepath.Join(t.TempDir(), "arena.db")}
	db, err := database.New(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSQLiteStore(db, zerolog.Nop())
}

func TestLoadFromFreshDatabase(t *testing.T) {
	s := newTestStore(t)
	snap, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Players)
	assert.Empty(t, snap.Matches)
	assert.Empty(t, snap.Queues)
}

func TestSaveLoadRoundtrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	created := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	snap := &Snapshot{
		Players: map[domain.PlayerID]domain.Player{
			"alice": {
				ID:          "alice",
				DisplayName: "Alice",
				Platform:    "Steam",
				Region:      "NA-East",
				Rating:      1016,
				Rank:        "Platinum I",
				Stats:       domain.Stats{Wins: 1},
				History: []domain.HistoryEntry{{
					MatchID:  "match_abc123def456",
					Result:   "win",
					Mode:     "Soccar",
					Map:      "DFH Stadium",
					TeamSize: 1,
					Region:   "NA-East",
					PlayedAt: created,
				}},
				RegisteredAt: created,
				Seq:          1,
			},
		},
		Matches: map[string]domain.Match{
			"match_abc123def456": {
				ID:           "match_abc123def456",
				Mode:         "Soccar",
				Map:          "DFH Stadium",
				Region:       "NA-East",
				TeamSize:     1,
				Participants: []domain.PlayerID{"alice", "bob"},
				Status:       domain.MatchCompleted,
				CreatedAt:    created,
				RoomName:     "OS4821",
				RoomCode:     "317",
			},
		},
		Queues: []QueueState{{
			Key:     domain.QueueKey{Region: "EU", Mode: "Hoops", TeamSize: 2},
			Players: []domain.PlayerID{"carol", "dave"},
		}},
	}

	require.NoError(t, s.Save(ctx, snap))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)

	alice, ok := loaded.Players["alice"]
	require.True(t, ok)
	assert.Equal(t, 1016, alice.Rating)
	assert.Equal(t, "Platinum I", alice.Rank)
	require.Len(t, alice.History, 1)
	assert.Equal(t, "match_abc123def456", alice.History[0].MatchID)
	assert.True(t, alice.RegisteredAt.Equal(created))

	m, ok := loaded.Matches["match_abc123def456"]
	require.True(t, ok)
	assert.Equal(t, domain.MatchCompleted, m.Status)
	assert.Equal(t, []domain.PlayerID{"alice", "bob"}, m.Participants)
	assert.Equal(t, "OS4821", m.RoomName)

	require.Len(t, loaded.Queues, 1)
	assert.Equal(t, domain.QueueKey{Region: "EU", Mode: "Hoops", TeamSize: 2}, loaded.Queues[0].Key)
	assert.Equal(t, []domain.PlayerID{"carol", "dave"}, loaded.Queues[0].Players)
}

func TestSaveReplacesPreviousSnapshot(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first := Empty()
	first.Players["alice"] = domain.Player{ID: "alice", Rating: 1000}
	first.Players["bob"] = domain.Player{ID: "bob", Rating: 1000}
	require.NoError(t, s.Save(ctx, first))

	second := Empty()
	second.Players["carol"] = domain.Player{ID: "carol", Rating: 1200}
	require.NoError(t, s.Save(ctx, second))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, loaded.Players, 1)
	_, ok := loaded.Players["carol"]
	assert.True(t, ok)
}

func TestLoadCorruptDocReportsUnavailable(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.db.ExecContext(ctx, "INSERT INTO players (id, doc) VALUES (?, ?)", "alice", "{not json")
	require.NoError(t, err)

	_, err = s.Load(ctx)
	assert.ErrorIs(t, err, domain.ErrSnapshotUnavailable)
}
