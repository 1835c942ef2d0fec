package sentinel

import "errors"

// Sentinel errors for infrastructure and protocol facts. Stores and services
// return these (optionally wrapped) so callers can translate them into wire
// responses without string matching.
//
// These represent factual states, not validation failures:
// - ErrNotFound: entity does not exist in store (a normal optional result for
//   session and user lookups)
// - ErrDuplicateVote: a vote for the same (user, issue) pair already exists
// - ErrConflict: unique constraint hit (e.g. username already taken)
// - ErrInvalidArgument: caller input rejected before any store round trip
var (
	ErrNotFound        = errors.New("not found")
	ErrDuplicateVote   = errors.New("duplicate vote")
	ErrConflict        = errors.New("conflict")
	ErrInvalidArgument = errors.New("invalid argument")
)
