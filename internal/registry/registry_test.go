package registry

import (
	"testing"
	"time"

	"octane-arena/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry() *Registry {
	return New(zerolog.Nop())
}

func testProfile(name string) Profile {
	return Profile{DisplayName: name, Platform: "Steam", Region: "NA-East"}
}

func TestRegisterBaseline(t *testing.T) {
	r := newTestRegistry()

	p, err := r.Register("alice", testProfile("AliceRL"))
	require.NoError(t, err)

	assert.Equal(t, 1000, p.Rating)
	assert.Equal(t, "Platinum I", p.Rank)
	assert.Equal(t, domain.Stats{}, p.Stats)
	assert.Empty(t, p.History)
}

func TestRegisterDuplicate(t *testing.T) {
	r := newTestRegistry()

	_, err := r.Register("alice", testProfile("AliceRL"))
	require.NoError(t, err)

	_, err = r.Register("alice", testProfile("AliceAgain"))
	assert.ErrorIs(t, err, domain.ErrAlreadyRegistered)
}

func TestGetUnknown(t *testing.T) {
	r := newTestRegistry()
	_, ok := r.Get("ghost")
	assert.False(t, ok)
}

func TestRecordMatchOutcome(t *testing.T) {
	r := newTestRegistry()
	_, err := r.Register("alice", testProfile("AliceRL"))
	require.NoError(t, err)

	entry := domain.HistoryEntry{
		MatchID:  "match_1",
		Result:   "win",
		Mode:     "Soccar",
		Map:      "DFH Stadium",
		TeamSize: 1,
		Region:   "NA-East",
		PlayedAt: time.Now().UTC(),
	}
	p, err := r.RecordMatchOutcome("alice", entry, true, 1000)
	require.NoError(t, err)

	assert.Equal(t, 1016, p.Rating)
	assert.Equal(t, "Platinum I", p.Rank)
	assert.Equal(t, 1, p.Stats.Wins)
	assert.Equal(t, 0, p.Stats.Losses)
	require.Len(t, p.History, 1)
	assert.Equal(t, "match_1", p.History[0].MatchID)
}

func TestRecordMatchOutcomeUnregistered(t *testing.T) {
	r := newTestRegistry()
	_, err := r.RecordMatchOutcome("ghost", domain.HistoryEntry{}, true, 1000)
	assert.ErrorIs(t, err, domain.ErrNotRegistered)
}

func TestRankTracksRating(t *testing.T) {
	r := newTestRegistry()
	_, err := r.Register("alice", testProfile("AliceRL"))
	require.NoError(t, err)

	// lose enough to drop a tier: rank must always follow the table
	var p domain.Player
	for i := 0; i < 5; i++ {
		var err error
		p, err = r.RecordMatchOutcome("alice", domain.HistoryEntry{Result: "loss"}, false, 1200)
		require.NoError(t, err)
	}
	assert.Less(t, p.Rating, 1000)
	assert.Equal(t, "Gold III", p.Rank)
}

func TestLeaderboardOrderAndTieBreak(t *testing.T) {
	r := newTestRegistry()
	for _, id := range []domain.PlayerID{"a", "b", "c"} {
		_, err := r.Register(id, testProfile(string(id)))
		require.NoError(t, err)
	}
	// b wins once -> 1016, a and c stay tied at 1000
	_, err := r.RecordMatchOutcome("b", domain.HistoryEntry{Result: "win"}, true, 1000)
	require.NoError(t, err)

	top := r.Leaderboard(10)
	require.Len(t, top, 3)
	assert.Equal(t, domain.PlayerID("b"), top[0].ID)
	// tie broken by registration order
	assert.Equal(t, domain.PlayerID("a"), top[1].ID)
	assert.Equal(t, domain.PlayerID("c"), top[2].ID)

	top = r.Leaderboard(2)
	assert.Len(t, top, 2)
}

func TestExportImportRoundTrip(t *testing.T) {
	r := newTestRegistry()
	_, err := r.Register("alice", testProfile("AliceRL"))
	require.NoError(t, err)
	_, err = r.RecordMatchOutcome("alice", domain.HistoryEntry{MatchID: "m1", Result: "win"}, true, 1000)
	require.NoError(t, err)

	exported := r.Export()

	fresh := newTestRegistry()
	fresh.Import(exported)

	p, ok := fresh.Get("alice")
	require.True(t, ok)
	assert.Equal(t, 1016, p.Rating)
	assert.Len(t, p.History, 1)

	// sequence resumes, keeping tie-breaks stable for new registrations
	p2, err := fresh.Register("bob", testProfile("BobRL"))
	require.NoError(t, err)
	assert.Greater(t, p2.Seq, p.Seq)
}

func TestGetReturnsCopy(t *testing.T) {
	r := newTestRegistry()
	_, err := r.Register("alice", testProfile("AliceRL"))
	require.NoError(t, err)
	_, err = r.RecordMatchOutcome("alice", domain.HistoryEntry{MatchID: "m1"}, true, 1000)
	require.NoError(t, err)

	p, _ := r.Get("alice")
	p.History[0].MatchID = "tampered"
	p.Rating = 9999

	again, _ := r.Get("alice")
	assert.Equal(t, "m1", again.History[0].MatchID)
	assert.Equal(t, 1016, again.Rating)
}
