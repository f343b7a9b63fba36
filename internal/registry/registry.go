// Package registry is the single source of truth for player profiles:
// rating, derived rank, cumulative stats and the match history log.
package registry

import (
	"slices"
	"sort"
	"sync"
	"time"

	"octane-arena/internal/domain"
	"octane-arena/internal/rating"

	"github.com/rs/zerolog"
)

// Profile is the caller-supplied part of a registration; everything else
// (rating, rank, stats, history) starts at the fixed baseline.
type Profile struct {
	DisplayName string
	Platform    string
	Region      domain.Region
}

// Registry owns the player map. One RWMutex serializes all mutation, which
// also serializes per-player rating updates; reads hand out copies so no
// caller can mutate owned state.
type Registry struct {
	mu      sync.RWMutex
	players map[domain.PlayerID]*domain.Player
	nextSeq uint64
	logger  zerolog.Logger
}

func New(logger zerolog.Logger) *Registry {
	return &Registry{
		players: make(map[domain.PlayerID]*domain.Player),
		logger:  logger,
	}
}

// Register links a new profile. The id must not already be registered.
func (r *Registry) Register(id domain.PlayerID, profile Profile) (domain.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.players[id]; exists {
		return domain.Player{}, domain.ErrAlreadyRegistered
	}

	p := &domain.Player{
		ID:           id,
		DisplayName:  profile.DisplayName,
		Platform:     profile.Platform,
		Region:       profile.Region,
		Rating:       rating.Baseline,
		Rank:         rating.RankFor(rating.Baseline),
		RegisteredAt: time.Now().UTC(),
		Seq:          r.nextSeq,
	}
	r.nextSeq++
	r.players[id] = p

	r.logger.Info().
		Str("player_id", string(id)).
		Str("display_name", profile.DisplayName).
		Str("region", string(profile.Region)).
		Int("rating", p.Rating).
		Msg("player registered")
	return clone(p), nil
}

// Get returns a copy of the player record, if registered.
func (r *Registry) Get(id domain.PlayerID) (domain.Player, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.players[id]
	if !ok {
		return domain.Player{}, false
	}
	return clone(p), true
}

// RecordMatchOutcome applies the rating update for one concluded match and
// appends the history entry. Unknown ids fail with ErrNotRegistered so a
// dropped result is visible to the caller instead of silently vanishing.
func (r *Registry) RecordMatchOutcome(id domain.PlayerID, entry domain.HistoryEntry, won bool, opponentAvg int) (domain.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players[id]
	if !ok {
		return domain.Player{}, domain.ErrNotRegistered
	}

	newRating, delta := rating.ApplyResult(p.Rating, opponentAvg, won)
	p.Rating = newRating
	p.Rank = rating.RankFor(newRating)
	if won {
		p.Stats.Wins++
	} else {
		p.Stats.Losses++
	}
	p.History = append(p.History, entry)

	r.logger.Info().
		Str("player_id", string(id)).
		Str("match_id", entry.MatchID).
		Bool("won", won).
		Int("delta", delta).
		Int("rating", p.Rating).
		Str("rank", p.Rank).
		Msg("match outcome recorded")
	return clone(p), nil
}

// AddStats bumps the cumulative goal/assist/save counters.
func (r *Registry) AddStats(id domain.PlayerID, goals, assists, saves int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players[id]
	if !ok {
		return domain.ErrNotRegistered
	}
	p.Stats.Goals += goals
	p.Stats.Assists += assists
	p.Stats.Saves += saves
	return nil
}

// Leaderboard returns the top n players by rating, ties broken by
// registration order so the ordering is stable across calls.
func (r *Registry) Leaderboard(n int) []domain.Player {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ranked := make([]domain.Player, 0, len(r.players))
	for _, p := range r.players {
		ranked = append(ranked, clone(p))
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Rating != ranked[j].Rating {
			return ranked[i].Rating > ranked[j].Rating
		}
		return ranked[i].Seq < ranked[j].Seq
	})
	if n > 0 && n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

// Export copies every record for snapshotting.
func (r *Registry) Export() map[domain.PlayerID]domain.Player {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[domain.PlayerID]domain.Player, len(r.players))
	for id, p := range r.players {
		out[id] = clone(p)
	}
	return out
}

// Import replaces the player set from a snapshot. The next registration
// sequence resumes past the highest imported one.
func (r *Registry) Import(players map[domain.PlayerID]domain.Player) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.players = make(map[domain.PlayerID]*domain.Player, len(players))
	r.nextSeq = 0
	for id, p := range players {
		p := p
		p.History = slices.Clone(p.History)
		// rank is derived state; recompute so it can never drift from the
		// tier table in a snapshot written by an older build
		p.Rank = rating.RankFor(p.Rating)
		r.players[id] = &p
		if p.Seq >= r.nextSeq {
			r.nextSeq = p.Seq + 1
		}
	}
}

func clone(p *domain.Player) domain.Player {
	out := *p
	out.History = slices.Clone(p.History)
	return out
}
