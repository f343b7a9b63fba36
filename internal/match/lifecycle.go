// Package match owns Match records from creation through result reporting.
// It is the only writer of match status.
package match

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"octane-arena/internal/domain"
	"octane-arena/internal/registry"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

const matchIDLength = 12

// CreateParams carries everything fixed at match creation. Participant
// order is preserved: the first TeamSize ids are team A, the rest team B.
type CreateParams struct {
	Region       domain.Region
	Mode         domain.Mode
	TeamSize     domain.TeamSize
	Participants []domain.PlayerID
	Map          string
	RoomName     string
	RoomCode     string
}

// Lifecycle advances matches through Active -> Completed. A match is born
// Active; there is no separate forming state and no cancellation path.
type Lifecycle struct {
	mu      sync.Mutex
	matches map[string]*domain.Match
	players *registry.Registry
	logger  zerolog.Logger
}

func NewLifecycle(players *registry.Registry, logger zerolog.Logger) *Lifecycle {
	return &Lifecycle{
		matches: make(map[string]*domain.Match),
		players: players,
		logger:  logger,
	}
}

// Create allocates a match in Active status. The participant count must be
// exactly two full teams.
func (l *Lifecycle) Create(params CreateParams) (domain.Match, error) {
	if got, want := len(params.Participants), params.TeamSize.PlayersNeeded(); got != want {
		return domain.Match{}, fmt.Errorf("match needs %d participants for %s, got %d", want, params.TeamSize, got)
	}

	suffix, err := gonanoid.Generate("0123456789abcdefghijklmnopqrstuvwxyz", matchIDLength)
	if err != nil {
		return domain.Match{}, fmt.Errorf("generate match id: %w", err)
	}

	m := &domain.Match{
		ID:           "match_" + suffix,
		Mode:         params.Mode,
		Map:          params.Map,
		Region:       params.Region,
		TeamSize:     params.TeamSize,
		Participants: slices.Clone(params.Participants),
		Status:       domain.MatchActive,
		CreatedAt:    time.Now().UTC(),
		RoomName:     params.RoomName,
		RoomCode:     params.RoomCode,
	}

	l.mu.Lock()
	l.matches[m.ID] = m
	l.mu.Unlock()

	l.logger.Info().
		Str("match_id", m.ID).
		Str("mode", string(m.Mode)).
		Str("map", m.Map).
		Str("region", string(m.Region)).
		Str("team_size", m.TeamSize.String()).
		Msg("match created")
	return cloneMatch(m), nil
}

// Get returns a copy of the match, if it exists.
func (l *Lifecycle) Get(id string) (domain.Match, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.matches[id]
	if !ok {
		return domain.Match{}, false
	}
	return cloneMatch(m), true
}

// ReportResult applies the outcome of a match exactly once. A repeat report
// fails with ErrAlreadyCompleted and changes nothing; the Active->Completed
// transition is checked and made under the lifecycle lock.
//
// Each participant's rating update references the opposing team's average
// current rating. A participant no longer in the registry is skipped with a
// warning; if a whole team has no resolvable members, the opposing side's
// updates are skipped too, since there is no average to score against.
func (l *Lifecycle) ReportResult(id string, winner domain.Team) (domain.Match, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.matches[id]
	if !ok {
		return domain.Match{}, domain.ErrUnknownMatch
	}
	if m.Status == domain.MatchCompleted {
		return domain.Match{}, domain.ErrAlreadyCompleted
	}

	teamA, teamB := m.TeamAIDs(), m.TeamBIDs()
	avgA, errA := l.teamAverage(teamA)
	avgB, errB := l.teamAverage(teamB)

	playedAt := time.Now().UTC()
	l.applyTeamOutcome(m, teamA, winner == domain.TeamA, avgB, errB, playedAt)
	l.applyTeamOutcome(m, teamB, winner == domain.TeamB, avgA, errA, playedAt)

	m.Status = domain.MatchCompleted

	l.logger.Info().
		Str("match_id", m.ID).
		Str("winner", string(winner)).
		Msg("match completed")
	return cloneMatch(m), nil
}

// teamAverage is the mean current rating of the team's registered members,
// truncated to an integer before it enters the rating formula. An odd sum
// rounds down: opponents at 1001 and 1000 average to 1000, not 1000.5.
func (l *Lifecycle) teamAverage(team []domain.PlayerID) (int, error) {
	sum, count := 0, 0
	for _, id := range team {
		if p, ok := l.players.Get(id); ok {
			sum += p.Rating
			count++
		}
	}
	if count == 0 {
		return 0, domain.ErrEmptyTeamAverage
	}
	return sum / count, nil
}

func (l *Lifecycle) applyTeamOutcome(m *domain.Match, team []domain.PlayerID, won bool, opponentAvg int, opponentErr error, playedAt time.Time) {
	if opponentErr != nil {
		l.logger.Warn().
			Err(opponentErr).
			Str("match_id", m.ID).
			Msg("skipping rating updates, opposing team unresolvable")
		return
	}

	result := "loss"
	if won {
		result = "win"
	}
	entry := domain.HistoryEntry{
		MatchID:  m.ID,
		Result:   result,
		Mode:     m.Mode,
		Map:      m.Map,
		TeamSize: m.TeamSize,
		Region:   m.Region,
		PlayedAt: playedAt,
	}

	for _, id := range team {
		if _, err := l.players.RecordMatchOutcome(id, entry, won, opponentAvg); err != nil {
			// a missing teammate must not block the rest of the roster
			l.logger.Warn().
				Err(err).
				Str("match_id", m.ID).
				Str("player_id", string(id)).
				Msg("skipping rating update for unresolvable participant")
		}
	}
}

// All returns copies of every match record, in no particular order.
func (l *Lifecycle) All() []domain.Match {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]domain.Match, 0, len(l.matches))
	for _, m := range l.matches {
		out = append(out, cloneMatch(m))
	}
	return out
}

// DueForReminder lists Active matches older than grace that have not been
// reminded yet. Callers mark each match after a successful dispatch so a
// stale match is nagged once, not on every sweep.
func (l *Lifecycle) DueForReminder(grace time.Duration) []domain.Match {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().UTC().Add(-grace)
	var due []domain.Match
	for _, m := range l.matches {
		if m.Status == domain.MatchActive && !m.Reminded && m.CreatedAt.Before(cutoff) {
			due = append(due, cloneMatch(m))
		}
	}
	return due
}

// MarkReminded records that a reminder went out for the match.
func (l *Lifecycle) MarkReminded(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if m, ok := l.matches[id]; ok {
		m.Reminded = true
	}
}

// Export copies every match record for snapshotting.
func (l *Lifecycle) Export() map[string]domain.Match {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make(map[string]domain.Match, len(l.matches))
	for id, m := range l.matches {
		out[id] = cloneMatch(m)
	}
	return out
}

// Import replaces the match set from a snapshot.
func (l *Lifecycle) Import(matches map[string]domain.Match) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.matches = make(map[string]*domain.Match, len(matches))
	for id, m := range matches {
		m := m
		m.Participants = slices.Clone(m.Participants)
		l.matches[id] = &m
	}
}

func cloneMatch(m *domain.Match) domain.Match {
	out := *m
	out.Participants = slices.Clone(m.Participants)
	return out
}
