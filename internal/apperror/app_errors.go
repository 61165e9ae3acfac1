package apperror

import "errors"

var (
	ErrGameInProgress   = errors.New("game is still in progress")
	ErrSnapshotNotFound = errors.New("snapshot not found")
	ErrUnknownResult    = errors.New("unknown game result")
	ErrUnknownLine      = errors.New("unknown line")
	ErrUnknownBackend   = errors.New("unknown storage backend")
	ErrInvalidSnapshot  = errors.New("invalid snapshot")
)
