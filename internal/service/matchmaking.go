// Package service composes the registry, queues, match lifecycle, rating
// math and the outbound boundaries into the operations the command layer
// and the scheduler call.
package service

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"octane-arena/internal/config"
	"octane-arena/internal/constants"
	"octane-arena/internal/domain"
	"octane-arena/internal/match"
	"octane-arena/internal/notify"
	"octane-arena/internal/queue"
	"octane-arena/internal/registry"
	"octane-arena/internal/store"

	pie "github.com/elliotchance/pie/v2"
	"github.com/rs/zerolog"
)

type Matchmaking struct {
	players    *registry.Registry
	queues     *queue.Manager
	matches    *match.Lifecycle
	dispatcher notify.Dispatcher
	snapshots  store.Store
	cfg        *config.Config
	logger     zerolog.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewMatchmaking(
	players *registry.Registry,
	queues *queue.Manager,
	matches *match.Lifecycle,
	dispatcher notify.Dispatcher,
	snapshots store.Store,
	cfg *config.Config,
	rng *rand.Rand,
	logger zerolog.Logger,
) *Matchmaking {
	return &Matchmaking{
		players:    players,
		queues:     queues,
		matches:    matches,
		dispatcher: dispatcher,
		snapshots:  snapshots,
		cfg:        cfg,
		rng:        rng,
		logger:     logger,
	}
}

// RegisterPlayer links a new profile at the baseline rating.
func (s *Matchmaking) RegisterPlayer(ctx context.Context, id domain.PlayerID, profile registry.Profile) (domain.Player, error) {
	return s.players.Register(id, profile)
}

// Profile returns the player with history capped to the most recent
// entries for display; stored history is untouched.
func (s *Matchmaking) Profile(ctx context.Context, id domain.PlayerID) (domain.Player, error) {
	p, ok := s.players.Get(id)
	if !ok {
		return domain.Player{}, domain.ErrNotRegistered
	}
	if len(p.History) > constants.HistoryDisplayLimit {
		p.History = p.History[len(p.History)-constants.HistoryDisplayLimit:]
	}
	return p, nil
}

// Leaderboard returns the top n players by rating; n <= 0 uses the
// default cut.
func (s *Matchmaking) Leaderboard(ctx context.Context, n int) []domain.Player {
	if n <= 0 {
		n = constants.LeaderboardDefault
	}
	return s.players.Leaderboard(n)
}

// QueueSnapshot reports current queue depths.
func (s *Matchmaking) QueueSnapshot(ctx context.Context) map[domain.QueueKey]int {
	return s.queues.SnapshotCounts()
}

// Enqueue puts a registered player into the given queue, moving them out
// of any queue they were already waiting in. Returns the queue depth after
// the join.
func (s *Matchmaking) Enqueue(ctx context.Context, id domain.PlayerID, key domain.QueueKey) (int, error) {
	if _, ok := s.players.Get(id); !ok {
		return 0, domain.ErrNotRegistered
	}
	if key.TeamSize <= 0 {
		return 0, fmt.Errorf("invalid team size %d", key.TeamSize)
	}
	return s.queues.Enqueue(id, key), nil
}

// Leave removes the player from whichever queue holds them.
func (s *Matchmaking) Leave(ctx context.Context, id domain.PlayerID) bool {
	return s.queues.Leave(id)
}

// StatLine is one player's reported contribution in a concluded match.
type StatLine struct {
	PlayerID domain.PlayerID
	Goals    int
	Assists  int
	Saves    int
}

// ReportResult concludes a match and applies rating changes exactly once.
// Stat lines are applied after the result lands; a line for an unknown
// player is logged and skipped without failing the report.
func (s *Matchmaking) ReportResult(ctx context.Context, matchID string, winner domain.Team, stats []StatLine) (domain.Match, error) {
	if winner != domain.TeamA && winner != domain.TeamB {
		return domain.Match{}, fmt.Errorf("invalid winning team %q", winner)
	}

	m, err := s.matches.ReportResult(matchID, winner)
	if err != nil {
		return domain.Match{}, err
	}

	for _, line := range stats {
		if err := s.players.AddStats(line.PlayerID, line.Goals, line.Assists, line.Saves); err != nil {
			s.logger.Warn().
				Err(err).
				Str("match_id", matchID).
				Str("player_id", string(line.PlayerID)).
				Msg("skipping stat line for unresolvable player")
		}
	}
	return m, nil
}

// Match looks up a single match record.
func (s *Matchmaking) Match(ctx context.Context, matchID string) (domain.Match, error) {
	m, ok := s.matches.Get(matchID)
	if !ok {
		return domain.Match{}, domain.ErrUnknownMatch
	}
	return m, nil
}

// Matches lists match records, newest first. An empty status matches all.
func (s *Matchmaking) Matches(ctx context.Context, status domain.MatchStatus) []domain.Match {
	all := s.matches.All()
	if status != "" {
		all = pie.Filter(all, func(m domain.Match) bool { return m.Status == status })
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})
	return all
}

// FormMatches drains every saturated queue and creates a match per formed
// group. One group's failure never blocks the others, and a notification
// failure never rolls back an already created match.
func (s *Matchmaking) FormMatches(ctx context.Context) int {
	groups := s.queues.DrainSaturated()
	if len(groups) == 0 {
		return 0
	}

	var created []domain.Match
	for _, group := range groups {
		m, err := s.matches.Create(match.CreateParams{
			Region:       group.Key.Region,
			Mode:         group.Key.Mode,
			TeamSize:     group.Key.TeamSize,
			Participants: group.Players,
			Map:          s.pickMap(group.Key.Mode),
			RoomName:     s.roomName(),
			RoomCode:     s.roomCode(),
		})
		if err != nil {
			s.logger.Error().
				Err(err).
				Str("queue", group.Key.String()).
				Msg("failed to create match for formed group")
			continue
		}
		created = append(created, m)

		if err := s.dispatcher.Dispatch(ctx, m.Participants, notify.MatchFound(m)); err != nil {
			s.logger.Warn().
				Err(err).
				Str("match_id", m.ID).
				Msg("match-found notification failed, match stays active")
		}
	}

	if len(created) > 0 {
		s.logger.Info().
			Strs("match_ids", pie.Map(created, func(m domain.Match) string { return m.ID })).
			Msg("matches formed")
	}
	return len(created)
}

// RemindStaleMatches nags participants of matches still Active past the
// grace period, at most once per match.
func (s *Matchmaking) RemindStaleMatches(ctx context.Context) int {
	due := s.matches.DueForReminder(s.cfg.ReminderGrace)
	for _, m := range due {
		if err := s.dispatcher.Dispatch(ctx, m.Participants, notify.MatchReminder(m)); err != nil {
			s.logger.Warn().Err(err).Str("match_id", m.ID).Msg("reminder notification failed")
		}
		s.matches.MarkReminded(m.ID)
	}
	return len(due)
}

// LoadState restores players, matches and queues from the snapshot store.
// An unavailable snapshot degrades to an empty state instead of failing
// startup.
func (s *Matchmaking) LoadState(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	snap, err := s.snapshots.Load(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("snapshot load failed, starting with empty state")
		snap = store.Empty()
	}

	s.players.Import(snap.Players)
	s.matches.Import(snap.Matches)

	queues := make(map[domain.QueueKey][]domain.PlayerID, len(snap.Queues))
	for _, q := range snap.Queues {
		queues[q.Key] = q.Players
	}
	s.queues.Import(queues)
}

// SaveState persists the current state. Persistence is best effort; the
// error is returned for logging but committed in-memory state is already
// authoritative.
func (s *Matchmaking) SaveState(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	snap := &store.Snapshot{
		Players: s.players.Export(),
		Matches: s.matches.Export(),
	}
	for key, waiting := range s.queues.Export() {
		snap.Queues = append(snap.Queues, store.QueueState{Key: key, Players: waiting})
	}

	if err := s.snapshots.Save(ctx, snap); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (s *Matchmaking) pickMap(mode domain.Mode) string {
	pool := domain.MapPool[mode]
	if len(pool) == 0 {
		return domain.DefaultMap
	}
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return pool[s.rng.Intn(len(pool))]
}

// roomName follows the community's room convention: the OS tag plus a
// 4-digit number. Unguessable enough to dodge casual collisions, nothing
// more.
func (s *Matchmaking) roomName() string {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return fmt.Sprintf("OS%d", 1000+s.rng.Intn(9000))
}

func (s *Matchmaking) roomCode() string {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return fmt.Sprintf("%d", 100+s.rng.Intn(900))
}
