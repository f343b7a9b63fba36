package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PlayerID is the opaque stable identity a player links their profile under.
type PlayerID string

type Region string

type Mode string

// TeamSize is the number of players per side. The human-facing "2v2" label
// is derived, never parsed back out of stored data.
type TeamSize int

func (t TeamSize) String() string {
	return fmt.Sprintf("%dv%d", int(t), int(t))
}

// PlayersNeeded is the participant count required to form a full match.
func (t TeamSize) PlayersNeeded() int {
	return int(t) * 2
}

// ParseTeamSize accepts labels like "1v1", "2v2", "10v10".
func ParseTeamSize(label string) (TeamSize, error) {
	head, tail, ok := strings.Cut(label, "v")
	if !ok || head != tail {
		return 0, fmt.Errorf("invalid team size label %q", label)
	}
	n, err := strconv.Atoi(head)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid team size label %q", label)
	}
	return TeamSize(n), nil
}

// QueueKey identifies one waiting list. Comparable, usable as a map key.
type QueueKey struct {
	Region   Region   `json:"region"`
	Mode     Mode     `json:"mode"`
	TeamSize TeamSize `json:"team_size"`
}

func (k QueueKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.Region, k.Mode, k.TeamSize)
}

type Stats struct {
	Wins    int `json:"wins"`
	Losses  int `json:"losses"`
	Goals   int `json:"goals"`
	Assists int `json:"assists"`
	Saves   int `json:"saves"`
}

// HistoryEntry is one line of a player's match log.
type HistoryEntry struct {
	MatchID  string    `json:"match_id"`
	Result   string    `json:"result"` // "win" or "loss"
	Mode     Mode      `json:"mode"`
	Map      string    `json:"map"`
	TeamSize TeamSize  `json:"team_size"`
	Region   Region    `json:"region"`
	PlayedAt time.Time `json:"played_at"`
}

// Player is the registry-owned profile record. Rank is always the tier
// derived from Rating; it is recomputed on every rating change, never set
// independently.
type Player struct {
	ID           PlayerID       `json:"id"`
	DisplayName  string         `json:"display_name"`
	Platform     string         `json:"platform"`
	Region       Region         `json:"region"`
	Rating       int            `json:"rating"`
	Rank         string         `json:"rank"`
	Stats        Stats          `json:"stats"`
	History      []HistoryEntry `json:"history"`
	RegisteredAt time.Time      `json:"registered_at"`

	// Seq is the registration order, used as the deterministic leaderboard
	// tie-break.
	Seq uint64 `json:"seq"`
}

type MatchStatus string

const (
	MatchActive    MatchStatus = "Active"
	MatchCompleted MatchStatus = "Completed"
)

// Team designates one side of a match for result reporting.
type Team string

const (
	TeamA Team = "A"
	TeamB Team = "B"
)

// Match is owned by the lifecycle component; only it writes Status.
// Participants hold team A in the first TeamSize slots and team B in the
// rest; the split is fixed at creation.
type Match struct {
	ID           string      `json:"id"`
	Mode         Mode        `json:"mode"`
	Map          string      `json:"map"`
	Region       Region      `json:"region"`
	TeamSize     TeamSize    `json:"team_size"`
	Participants []PlayerID  `json:"participants"`
	Status       MatchStatus `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
	RoomName     string      `json:"room_name"`
	RoomCode     string      `json:"room_code"`
	Reminded     bool        `json:"reminded"`
}

func (m Match) TeamAIDs() []PlayerID {
	return m.Participants[:int(m.TeamSize)]
}

func (m Match) TeamBIDs() []PlayerID {
	return m.Participants[int(m.TeamSize):]
}
