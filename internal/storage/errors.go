package storage

import "plenum/pkg/sentinel"

// Store-level sentinels stay aliases of the shared sentinels so callers can
// match with errors.Is regardless of which layer produced them.
var (
	ErrNotFound      = sentinel.ErrNotFound
	ErrDuplicateVote = sentinel.ErrDuplicateVote
	ErrConflict      = sentinel.ErrConflict
)
