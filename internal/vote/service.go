package vote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"plenum/internal/audit"
	"plenum/internal/domain"
	"plenum/internal/platform/metrics"
	"plenum/internal/storage"
	"plenum/pkg/sentinel"
)

// ErrMissingField rejects votes that do not name a user, issue, and
// alternative.
var ErrMissingField = fmt.Errorf("vote requires user, issue, and alternative: %w", sentinel.ErrInvalidArgument)

// Service is the vote ledger. The uniqueness invariant itself lives in the
// store's atomic check-then-insert; the service adds identity, metrics, and
// the audit trail.
type Service struct {
	votes   storage.VoteStore
	audit   *audit.Service
	metrics *metrics.Metrics
	log     *slog.Logger
}

func NewService(votes storage.VoteStore, auditSvc *audit.Service, m *metrics.Metrics, log *slog.Logger) *Service {
	return &Service{votes: votes, audit: auditSvc, metrics: m, log: log}
}

// Add records one vote for (userID, issueID). Returns
// sentinel.ErrDuplicateVote when the user already voted on the issue; no
// write occurs in that case.
func (s *Service) Add(ctx context.Context, userID, issueID, alternativeID string) (domain.Vote, error) {
	if userID == "" || issueID == "" || alternativeID == "" {
		return domain.Vote{}, ErrMissingField
	}
	vote := domain.Vote{
		ID:            uuid.NewString(),
		AlternativeID: alternativeID,
		IssueID:       issueID,
		UserID:        userID,
	}
	added, err := s.votes.Add(ctx, vote)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateVote) {
			s.metrics.VotesDuplicate.Inc()
			return domain.Vote{}, err
		}
		return domain.Vote{}, fmt.Errorf("add vote: %w", err)
	}
	s.metrics.VotesAccepted.Inc()
	s.audit.Record(audit.Event{Type: audit.EventVoteCast, Actor: userID, Subject: added.ID})
	s.log.Debug("vote accepted", "vote_id", added.ID, "issue_id", issueID)
	return added, nil
}

// ForIssue returns all votes recorded against issueID.
func (s *Service) ForIssue(ctx context.Context, issueID string) ([]domain.Vote, error) {
	return s.votes.ListByIssue(ctx, issueID)
}
