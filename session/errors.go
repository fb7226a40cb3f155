package session

import "errors"

// Sentinel errors for store operations.
var (
	ErrNotFound         = errors.New("session not found")
	ErrStatusRegression = errors.New("session already done")
	ErrInvalidSession   = errors.New("invalid session")
	ErrUnknownBackend   = errors.New("unknown session backend")
	ErrLoadFailed       = errors.New("load failed")
	ErrSaveFailed       = errors.New("save failed")
)
