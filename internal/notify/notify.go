// Package notify is the outbound boundary toward the chat platform.
// Delivery is best effort: a failed recipient is logged and skipped, and no
// dispatch failure ever reaches back into match or queue state.
package notify

import (
	"context"

	"octane-arena/internal/domain"

	"github.com/rs/zerolog"
)

type Kind string

const (
	KindMatchFound    Kind = "match_found"
	KindMatchReminder Kind = "match_reminder"
)

// Payload is the structured message delivered to each matched player.
type Payload struct {
	Kind         Kind              `json:"kind"`
	MatchID      string            `json:"match_id"`
	Mode         domain.Mode       `json:"mode"`
	Map          string            `json:"map"`
	Region       domain.Region     `json:"region"`
	TeamSize     string            `json:"team_size"`
	TeamA        []domain.PlayerID `json:"team_a"`
	TeamB        []domain.PlayerID `json:"team_b"`
	RoomName     string            `json:"room_name"`
	RoomCode     string            `json:"room_code"`
	Instructions string            `json:"instructions"`
}

const (
	foundInstructions    = "Create a private match with the room details, play it out, then report the result."
	reminderInstructions = "This match is still open. Finish it and report the result."
)

// MatchFound builds the payload announcing a freshly formed match.
func MatchFound(m domain.Match) Payload {
	return payloadFor(KindMatchFound, m, foundInstructions)
}

// MatchReminder builds the nag payload for a stale Active match.
func MatchReminder(m domain.Match) Payload {
	return payloadFor(KindMatchReminder, m, reminderInstructions)
}

func payloadFor(kind Kind, m domain.Match, instructions string) Payload {
	return Payload{
		Kind:         kind,
		MatchID:      m.ID,
		Mode:         m.Mode,
		Map:          m.Map,
		Region:       m.Region,
		TeamSize:     m.TeamSize.String(),
		TeamA:        m.TeamAIDs(),
		TeamB:        m.TeamBIDs(),
		RoomName:     m.RoomName,
		RoomCode:     m.RoomCode,
		Instructions: instructions,
	}
}

// Dispatcher delivers a payload to a set of players. Implementations must
// tolerate per-recipient failure without aborting the batch.
type Dispatcher interface {
	Dispatch(ctx context.Context, recipients []domain.PlayerID, payload Payload) error
}

// LogDispatcher is the default sink when no webhook is configured; it just
// records what would have been sent.
type LogDispatcher struct {
	logger zerolog.Logger
}

func NewLogDispatcher(logger zerolog.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

func (d *LogDispatcher) Dispatch(_ context.Context, recipients []domain.PlayerID, payload Payload) error {
	d.logger.Info().
		Str("kind", string(payload.Kind)).
		Str("match_id", payload.MatchID).
		Int("recipients", len(recipients)).
		Str("room_name", payload.RoomName).
		Msg("notification dispatched (log only)")
	return nil
}
