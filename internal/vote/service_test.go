package vote_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"plenum/internal/audit"
	"plenum/internal/platform/metrics"
	"plenum/internal/storage"
	"plenum/internal/vote"
	"plenum/pkg/sentinel"
)

type VoteServiceSuite struct {
	suite.Suite
	svc *vote.Service
	ctx context.Context
}

func TestVoteServiceSuite(t *testing.T) {
	suite.Run(t, new(VoteServiceSuite))
}

func (s *VoteServiceSuite) SetupTest() {
	s.ctx = context.Background()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New(prometheus.NewRegistry())
	auditSvc := audit.NewService(16, log, m)
	s.svc = vote.NewService(storage.NewInMemoryVoteStore(), auditSvc, m, log)
}

func (s *VoteServiceSuite) TestAddAssignsID() {
	userID, issueID, altID := uuid.NewString(), uuid.NewString(), uuid.NewString()

	added, err := s.svc.Add(s.ctx, userID, issueID, altID)
	s.Require().NoError(err)
	s.NotEmpty(added.ID)
	s.Equal(altID, added.AlternativeID)

	votes, err := s.svc.ForIssue(s.ctx, issueID)
	s.Require().NoError(err)
	s.Len(votes, 1)
}

func (s *VoteServiceSuite) TestAddRejectsSecondVote() {
	userID, issueID := uuid.NewString(), uuid.NewString()

	_, err := s.svc.Add(s.ctx, userID, issueID, uuid.NewString())
	s.Require().NoError(err)

	// Switching alternatives does not help; the user already voted on the
	// issue.
	_, err = s.svc.Add(s.ctx, userID, issueID, uuid.NewString())
	s.ErrorIs(err, sentinel.ErrDuplicateVote)

	votes, err := s.svc.ForIssue(s.ctx, issueID)
	s.Require().NoError(err)
	s.Len(votes, 1)
}

func (s *VoteServiceSuite) TestAddAllowsDifferentIssues() {
	userID := uuid.NewString()

	_, err := s.svc.Add(s.ctx, userID, uuid.NewString(), uuid.NewString())
	s.Require().NoError(err)
	_, err = s.svc.Add(s.ctx, userID, uuid.NewString(), uuid.NewString())
	s.NoError(err)
}

func (s *VoteServiceSuite) TestAddRequiresAllFields() {
	_, err := s.svc.Add(s.ctx, "", uuid.NewString(), uuid.NewString())
	s.ErrorIs(err, sentinel.ErrInvalidArgument)

	_, err = s.svc.Add(s.ctx, uuid.NewString(), "", uuid.NewString())
	s.ErrorIs(err, sentinel.ErrInvalidArgument)

	_, err = s.svc.Add(s.ctx, uuid.NewString(), uuid.NewString(), "")
	s.ErrorIs(err, sentinel.ErrInvalidArgument)
}
