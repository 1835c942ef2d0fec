package storage

import (
	"context"

	"plenum/internal/domain"
)

// Stores are interface-driven so services stay testable against the in-memory
// implementations while production wires PostgreSQL (and Redis for sessions)
// without rewiring business code.

type UserStore interface {
	// Create persists a new user. Returns ErrConflict when the username is
	// already taken.
	Create(ctx context.Context, user domain.User) error
	FindByUsername(ctx context.Context, username string) (domain.User, error)
	FindByID(ctx context.Context, id string) (domain.User, error)
}

type SessionStore interface {
	Save(ctx context.Context, session domain.Session) error
	FindByID(ctx context.Context, id string) (domain.Session, error)
}

type IssueStore interface {
	// CreateWithAlternatives inserts the issue and all of its alternatives
	// as one atomic unit: either every row lands or none do.
	CreateWithAlternatives(ctx context.Context, issue domain.Issue, alternatives []domain.Alternative) error
	// Active returns the most recently created issue. ErrNotFound when the
	// store holds no issues at all.
	Active(ctx context.Context) (domain.Issue, error)
	FindByID(ctx context.Context, id string) (domain.Issue, error)
	List(ctx context.Context) ([]domain.Issue, error)
	SetState(ctx context.Context, id string, state domain.IssueState) error
	// AlternativesForIssue preserves insertion order.
	AlternativesForIssue(ctx context.Context, issueID string) ([]domain.Alternative, error)
}

type VoteStore interface {
	// Add performs the check-then-insert for the (user, issue) uniqueness
	// invariant as one linearizable step. Returns ErrDuplicateVote when a
	// vote for the pair already exists; no write occurs in that case.
	Add(ctx context.Context, vote domain.Vote) (domain.Vote, error)
	ListByIssue(ctx context.Context, issueID string) ([]domain.Vote, error)
}
