package match

import (
	"testing"
	"time"

	"octane-arena/internal/domain"
	"octane-arena/internal/registry"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFixture(t *testing.T, ids ...domain.PlayerID) (*Lifecycle, *registry.Registry) {
	t.Helper()
	players := registry.New(zerolog.Nop())
	for _, id := range ids {
		_, err := players.Register(id, registry.Profile{
			DisplayName: string(id),
			Platform:    "Steam",
			Region:      "NA-East",
		})
		require.NoError(t, err)
	}
	return NewLifecycle(players, zerolog.Nop()), players
}

func duelParams(a, b domain.PlayerID) CreateParams {
	return CreateParams{
		Region:       "NA-East",
		Mode:         "Soccar",
		TeamSize:     1,
		Participants: []domain.PlayerID{a, b},
		Map:          "DFH Stadium",
		RoomName:     "OS1234",
		RoomCode:     "567",
	}
}

func TestCreate(t *testing.T) {
	l, _ := newFixture(t, "alice", "bob")

	m, err := l.Create(duelParams("alice", "bob"))
	require.NoError(t, err)

	assert.NotEmpty(t, m.ID)
	assert.Equal(t, domain.MatchActive, m.Status)
	assert.Equal(t, []domain.PlayerID{"alice"}, m.TeamAIDs())
	assert.Equal(t, []domain.PlayerID{"bob"}, m.TeamBIDs())
	assert.False(t, m.CreatedAt.IsZero())
}

func TestCreateRejectsWrongParticipantCount(t *testing.T) {
	l, _ := newFixture(t)

	params := duelParams("alice", "bob")
	params.Participants = []domain.PlayerID{"alice"}
	_, err := l.Create(params)
	assert.Error(t, err)
}

func TestReportResultEvenDuel(t *testing.T) {
	l, players := newFixture(t, "alice", "bob")
	m, err := l.Create(duelParams("alice", "bob"))
	require.NoError(t, err)

	completed, err := l.ReportResult(m.ID, domain.TeamA)
	require.NoError(t, err)
	assert.Equal(t, domain.MatchCompleted, completed.Status)

	alice, _ := players.Get("alice")
	bob, _ := players.Get("bob")
	assert.Equal(t, 1016, alice.Rating)
	assert.Equal(t, 984, bob.Rating)
	assert.Equal(t, 1, alice.Stats.Wins)
	assert.Equal(t, 1, bob.Stats.Losses)

	require.Len(t, alice.History, 1)
	assert.Equal(t, m.ID, alice.History[0].MatchID)
	assert.Equal(t, "win", alice.History[0].Result)
	require.Len(t, bob.History, 1)
	assert.Equal(t, "loss", bob.History[0].Result)
}

func TestReportResultUnknownMatch(t *testing.T) {
	l, _ := newFixture(t)
	_, err := l.ReportResult("match_nope", domain.TeamA)
	assert.ErrorIs(t, err, domain.ErrUnknownMatch)
}

func TestReportResultIsIdempotent(t *testing.T) {
	l, players := newFixture(t, "alice", "bob")
	m, err := l.Create(duelParams("alice", "bob"))
	require.NoError(t, err)

	_, err = l.ReportResult(m.ID, domain.TeamA)
	require.NoError(t, err)

	_, err = l.ReportResult(m.ID, domain.TeamB)
	assert.ErrorIs(t, err, domain.ErrAlreadyCompleted)

	// deltas applied exactly once
	alice, _ := players.Get("alice")
	bob, _ := players.Get("bob")
	assert.Equal(t, 1016, alice.Rating)
	assert.Equal(t, 984, bob.Rating)
	assert.Len(t, alice.History, 1)
}

func TestReportResultSkipsUnresolvableParticipant(t *testing.T) {
	// 2v2 where one of team B's players never registered
	l, players := newFixture(t, "a1", "a2", "b1")
	m, err := l.Create(CreateParams{
		Region:       "EU",
		Mode:         "Hoops",
		TeamSize:     2,
		Participants: []domain.PlayerID{"a1", "a2", "b1", "ghost"},
		Map:          "Dunk House",
	})
	require.NoError(t, err)

	_, err = l.ReportResult(m.ID, domain.TeamA)
	require.NoError(t, err)

	// registered players all got their update
	a1, _ := players.Get("a1")
	b1, _ := players.Get("b1")
	assert.Equal(t, 1016, a1.Rating)
	assert.Equal(t, 984, b1.Rating)

	_, ok := players.Get("ghost")
	assert.False(t, ok)
}

func TestReportResultEmptyTeamSkipsOpposingUpdate(t *testing.T) {
	// nobody on team B resolves: team A has no average to score against,
	// but the report still completes
	l, players := newFixture(t, "a1")
	m, err := l.Create(CreateParams{
		Region:       "NA-East",
		Mode:         "Soccar",
		TeamSize:     1,
		Participants: []domain.PlayerID{"a1", "ghost"},
		Map:          "DFH Stadium",
	})
	require.NoError(t, err)

	completed, err := l.ReportResult(m.ID, domain.TeamA)
	require.NoError(t, err)
	assert.Equal(t, domain.MatchCompleted, completed.Status)

	a1, _ := players.Get("a1")
	assert.Equal(t, 1000, a1.Rating)
	assert.Empty(t, a1.History)
}

func TestReportResultTruncatesTeamAverage(t *testing.T) {
	// team B averages 1000 (2001/2 rounds down), so each team A player
	// loses the full even-match 16; a 1000.5 mean would only cost 15
	players := registry.New(zerolog.Nop())
	players.Import(map[domain.PlayerID]domain.Player{
		"a1": {ID: "a1", Rating: 1000},
		"a2": {ID: "a2", Rating: 1000},
		"b1": {ID: "b1", Rating: 1001},
		"b2": {ID: "b2", Rating: 1000},
	})
	l := NewLifecycle(players, zerolog.Nop())

	m, err := l.Create(CreateParams{
		Region:       "NA-East",
		Mode:         "Soccar",
		TeamSize:     2,
		Participants: []domain.PlayerID{"a1", "a2", "b1", "b2"},
		Map:          "DFH Stadium",
	})
	require.NoError(t, err)

	_, err = l.ReportResult(m.ID, domain.TeamB)
	require.NoError(t, err)

	a1, _ := players.Get("a1")
	a2, _ := players.Get("a2")
	assert.Equal(t, 984, a1.Rating)
	assert.Equal(t, 984, a2.Rating)
}

func TestDueForReminder(t *testing.T) {
	l, _ := newFixture(t, "alice", "bob")
	m, err := l.Create(duelParams("alice", "bob"))
	require.NoError(t, err)

	// fresh match is not due
	assert.Empty(t, l.DueForReminder(20*time.Minute))

	// with zero grace everything Active is due
	due := l.DueForReminder(0)
	require.Len(t, due, 1)
	assert.Equal(t, m.ID, due[0].ID)

	// once marked, the sweep stays quiet
	l.MarkReminded(m.ID)
	assert.Empty(t, l.DueForReminder(0))
}

func TestDueForReminderIgnoresCompleted(t *testing.T) {
	l, _ := newFixture(t, "alice", "bob")
	m, err := l.Create(duelParams("alice", "bob"))
	require.NoError(t, err)

	_, err = l.ReportResult(m.ID, domain.TeamB)
	require.NoError(t, err)

	assert.Empty(t, l.DueForReminder(0))
}

func TestExportImportRoundTrip(t *testing.T) {
	l, players := newFixture(t, "alice", "bob")
	m, err := l.Create(duelParams("alice", "bob"))
	require.NoError(t, err)

	fresh := NewLifecycle(players, zerolog.Nop())
	fresh.Import(l.Export())

	got, ok := fresh.Get(m.ID)
	require.True(t, ok)
	assert.Equal(t, m.Participants, got.Participants)
	assert.Equal(t, domain.MatchActive, got.Status)
}
