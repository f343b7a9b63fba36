package constants

import "time"

const (
	DefaultFormationInterval = 30 * time.Second
	DefaultReminderInterval  = 1 * time.Minute
	DefaultReminderGrace     = 20 * time.Minute
	DefaultSnapshotInterval  = 1 * time.Hour
)

const (
	TickTimeout     = 10 * time.Second
	RequestTimeout  = 30 * time.Second
	DatabaseTimeout = 5 * time.Second
	ShutdownTimeout = 5 * time.Second
)

const (
	DBMaxOpenConns    = 10
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	// HistoryDisplayLimit caps how much match history a profile query
	// returns; stored history is never trimmed.
	HistoryDisplayLimit = 10

	LeaderboardDefault = 10
)
