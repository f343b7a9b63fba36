package domain

import "errors"

var (
	ErrAlreadyRegistered   = errors.New("player already registered")
	ErrNotRegistered       = errors.New("player not registered")
	ErrUnknownMatch        = errors.New("unknown match")
	ErrAlreadyCompleted    = errors.New("match already completed")
	ErrEmptyTeamAverage    = errors.New("team has no resolvable players")
	ErrSnapshotUnavailable = errors.New("snapshot unavailable")
)
