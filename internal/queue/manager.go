// Package queue owns the per-(region, mode, team size) waiting lists.
// Queue contents are player ids only; profile state stays in the registry.
package queue

import (
	"sync"

	"octane-arena/internal/domain"

	"github.com/rs/zerolog"
)

// FormedGroup is a full set of players drained from one saturated queue,
// in FIFO order.
type FormedGroup struct {
	Key     domain.QueueKey
	Players []domain.PlayerID
}

// Manager serializes every queue mutation and drain behind one mutex.
// Queues are small; correctness beats parallelism here, so a single lock
// covers the whole structure and a player can never be drained into a
// match while being re-enqueued elsewhere.
type Manager struct {
	mu     sync.Mutex
	queues map[domain.QueueKey][]domain.PlayerID
	logger zerolog.Logger
}

func NewManager(logger zerolog.Logger) *Manager {
	return &Manager{
		queues: make(map[domain.QueueKey][]domain.PlayerID),
		logger: logger,
	}
}

// Enqueue places the player at the tail of the target queue. The player is
// first removed from every queue, even if not currently waiting, so an id
// appears in at most one queue system-wide.
func (m *Manager) Enqueue(id domain.PlayerID, key domain.QueueKey) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.removeLocked(id)
	m.queues[key] = append(m.queues[key], id)

	depth := len(m.queues[key])
	m.logger.Debug().
		Str("player_id", string(id)).
		Str("queue", key.String()).
		Int("depth", depth).
		Msg("player enqueued")
	return depth
}

// Leave removes the player from whichever queue holds them and reports
// whether a removal happened.
func (m *Manager) Leave(id domain.PlayerID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := m.removeLocked(id)
	if removed {
		m.logger.Debug().Str("player_id", string(id)).Msg("player left queue")
	}
	return removed
}

func (m *Manager) removeLocked(id domain.PlayerID) bool {
	removed := false
	for key, waiting := range m.queues {
		for i, queued := range waiting {
			if queued == id {
				m.queues[key] = append(waiting[:i], waiting[i+1:]...)
				removed = true
				break
			}
		}
		// drop empty entries so lookups never grow the map
		if len(m.queues[key]) == 0 {
			delete(m.queues, key)
		}
	}
	return removed
}

// SnapshotCounts returns a copy of the current queue depths.
func (m *Manager) SnapshotCounts() map[domain.QueueKey]int {
	m.mu.Lock()
	defer m.mu.Unlock()

	counts := make(map[domain.QueueKey]int, len(m.queues))
	for key, waiting := range m.queues {
		counts[key] = len(waiting)
	}
	return counts
}

// DrainSaturated removes full groups from the head of every saturated
// queue. Each group holds exactly the required player count for its key's
// team size; a queue holding two matches' worth yields two groups, and any
// remainder below saturation stays put for the next cycle.
func (m *Manager) DrainSaturated() []FormedGroup {
	m.mu.Lock()
	defer m.mu.Unlock()

	var groups []FormedGroup
	for key, waiting := range m.queues {
		needed := key.TeamSize.PlayersNeeded()
		for len(waiting) >= needed {
			selected := make([]domain.PlayerID, needed)
			copy(selected, waiting[:needed])
			waiting = waiting[needed:]
			groups = append(groups, FormedGroup{Key: key, Players: selected})
		}
		if len(waiting) == 0 {
			delete(m.queues, key)
		} else {
			m.queues[key] = waiting
		}
	}

	if len(groups) > 0 {
		m.logger.Info().Int("groups", len(groups)).Msg("drained saturated queues")
	}
	return groups
}

// Export copies the full queue contents for snapshotting.
func (m *Manager) Export() map[domain.QueueKey][]domain.PlayerID {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[domain.QueueKey][]domain.PlayerID, len(m.queues))
	for key, waiting := range m.queues {
		ids := make([]domain.PlayerID, len(waiting))
		copy(ids, waiting)
		out[key] = ids
	}
	return out
}

// Import replaces queue contents from a snapshot. The one-queue invariant
// is re-enforced on the way in: a player id found in more than one queue
// keeps only its first placement.
func (m *Manager) Import(queues map[domain.QueueKey][]domain.PlayerID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.queues = make(map[domain.QueueKey][]domain.PlayerID, len(queues))
	seen := make(map[domain.PlayerID]struct{})
	for key, waiting := range queues {
		var ids []domain.PlayerID
		for _, id := range waiting {
			if _, dup := seen[id]; dup {
				m.logger.Warn().
					Str("player_id", string(id)).
					Str("queue", key.String()).
					Msg("dropping duplicate queue entry from snapshot")
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
		if len(ids) > 0 {
			m.queues[key] = ids
		}
	}
}
