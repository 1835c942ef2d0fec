package issue_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"plenum/internal/audit"
	"plenum/internal/domain"
	"plenum/internal/issue"
	"plenum/internal/platform/metrics"
	"plenum/internal/storage"
	"plenum/internal/vote"
	"plenum/pkg/sentinel"
)

type IssueServiceSuite struct {
	suite.Suite
	svc   *issue.Service
	votes *vote.Service
	ctx   context.Context
}

func TestIssueServiceSuite(t *testing.T) {
	suite.Run(t, new(IssueServiceSuite))
}

func (s *IssueServiceSuite) SetupTest() {
	s.ctx = context.Background()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New(prometheus.NewRegistry())
	auditSvc := audit.NewService(16, log, m)
	voteStore := storage.NewInMemoryVoteStore()
	s.svc = issue.NewService(storage.NewInMemoryIssueStore(), voteStore, auditSvc, log)
	s.votes = vote.NewService(voteStore, auditSvc, m, log)
}

func (s *IssueServiceSuite) TestActiveEmpty() {
	snap, err := s.svc.Active(s.ctx)
	s.Require().NoError(err)
	s.Nil(snap)
}

func (s *IssueServiceSuite) TestCreateAppliesDefaults() {
	snap, err := s.svc.Create(s.ctx, domain.NewIssue{
		Title:        "  Adopt the proposal?  ",
		Alternatives: []string{"Yes", "No"},
	})
	s.Require().NoError(err)
	s.Equal("Adopt the proposal?", snap.Issue.Title)
	s.Equal(domain.IssueStateNotStarted, snap.Issue.State)
	s.Equal(issue.DefaultMaxVoters, snap.Issue.MaxVoters)
	s.Require().Len(snap.Alternatives, 2)
	s.Equal("Yes", snap.Alternatives[0].Title)
	s.Equal("No", snap.Alternatives[1].Title)
	s.Empty(snap.Votes)
}

func (s *IssueServiceSuite) TestCreateRequiresTitle() {
	_, err := s.svc.Create(s.ctx, domain.NewIssue{Alternatives: []string{"Yes"}})
	s.ErrorIs(err, sentinel.ErrInvalidArgument)
}

func (s *IssueServiceSuite) TestActiveIsMostRecent() {
	_, err := s.svc.Create(s.ctx, domain.NewIssue{Title: "First"})
	s.Require().NoError(err)
	second, err := s.svc.Create(s.ctx, domain.NewIssue{Title: "Second"})
	s.Require().NoError(err)

	active, err := s.svc.Active(s.ctx)
	s.Require().NoError(err)
	s.Require().NotNil(active)
	s.Equal(second.Issue.ID, active.Issue.ID)
}

func (s *IssueServiceSuite) TestSnapshotIncludesVotes() {
	snap, err := s.svc.Create(s.ctx, domain.NewIssue{
		Title:        "Referendum",
		Alternatives: []string{"Yes", "No"},
	})
	s.Require().NoError(err)

	_, err = s.votes.Add(s.ctx, uuid.NewString(), snap.Issue.ID, snap.Alternatives[0].ID)
	s.Require().NoError(err)
	_, err = s.votes.Add(s.ctx, uuid.NewString(), snap.Issue.ID, snap.Alternatives[1].ID)
	s.Require().NoError(err)

	active, err := s.svc.Active(s.ctx)
	s.Require().NoError(err)
	s.Require().NotNil(active)
	s.Len(active.Votes, 2)
}

func (s *IssueServiceSuite) TestSetState() {
	snap, err := s.svc.Create(s.ctx, domain.NewIssue{Title: "Referendum"})
	s.Require().NoError(err)

	updated, err := s.svc.SetState(s.ctx, snap.Issue.ID, domain.IssueStateInProgress)
	s.Require().NoError(err)
	s.Equal(domain.IssueStateInProgress, updated.Issue.State)
}

func (s *IssueServiceSuite) TestSetStateValidation() {
	snap, err := s.svc.Create(s.ctx, domain.NewIssue{Title: "Referendum"})
	s.Require().NoError(err)

	_, err = s.svc.SetState(s.ctx, snap.Issue.ID, domain.IssueState("paused"))
	s.ErrorIs(err, sentinel.ErrInvalidArgument)

	_, err = s.svc.SetState(s.ctx, uuid.NewString(), domain.IssueStateFinished)
	s.ErrorIs(err, storage.ErrNotFound)
}

func (s *IssueServiceSuite) TestListAllInCreationOrder() {
	for _, title := range []string{"First", "Second", "Third"} {
		_, err := s.svc.Create(s.ctx, domain.NewIssue{Title: title})
		s.Require().NoError(err)
	}

	all, err := s.svc.ListAll(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal("First", all[0].Issue.Title)
	s.Equal("Third", all[2].Issue.Title)
}
