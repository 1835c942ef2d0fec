package issue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"plenum/internal/audit"
	"plenum/internal/domain"
	"plenum/internal/storage"
	"plenum/pkg/sentinel"
)

// DefaultMaxVoters is the fallback when an issue is created without one.
const DefaultMaxVoters = 10

var (
	ErrMissingTitle = fmt.Errorf("issue requires a title: %w", sentinel.ErrInvalidArgument)
	ErrUnknownState = fmt.Errorf("unknown issue state: %w", sentinel.ErrInvalidArgument)
)

// Service is the issue aggregator: it assembles an issue, its alternatives,
// and its votes into one consistent snapshot, and owns issue creation.
type Service struct {
	issues storage.IssueStore
	votes  storage.VoteStore
	audit  *audit.Service
	log    *slog.Logger
}

func NewService(issues storage.IssueStore, votes storage.VoteStore, auditSvc *audit.Service, log *slog.Logger) *Service {
	return &Service{issues: issues, votes: votes, audit: auditSvc, log: log}
}

// Active returns the active issue as a snapshot, or nil (no error) when no
// issue exists yet. Absence is a normal state for a fresh deployment.
func (s *Service) Active(ctx context.Context) (*domain.IssueSnapshot, error) {
	issue, err := s.issues.Active(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load active issue: %w", err)
	}
	return s.snapshot(ctx, issue)
}

// ListAll returns snapshots for every issue in creation order.
func (s *Service) ListAll(ctx context.Context) ([]domain.IssueSnapshot, error) {
	issues, err := s.issues.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}
	snapshots := make([]domain.IssueSnapshot, 0, len(issues))
	for _, issue := range issues {
		snap, err := s.snapshot(ctx, issue)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, *snap)
	}
	return snapshots, nil
}

// Create persists the issue and all its alternatives as one atomic unit.
// State defaults to NotStarted and max voters to DefaultMaxVoters.
func (s *Service) Create(ctx context.Context, spec domain.NewIssue) (*domain.IssueSnapshot, error) {
	title := strings.TrimSpace(spec.Title)
	if title == "" {
		return nil, ErrMissingTitle
	}
	maxVoters := spec.MaxVoters
	if maxVoters <= 0 {
		maxVoters = DefaultMaxVoters
	}
	issue := domain.Issue{
		ID:               uuid.NewString(),
		Title:            title,
		Description:      spec.Description,
		State:            domain.IssueStateNotStarted,
		MaxVoters:        maxVoters,
		ShowDistribution: spec.ShowDistribution,
	}
	alternatives := make([]domain.Alternative, 0, len(spec.Alternatives))
	for _, altTitle := range spec.Alternatives {
		alternatives = append(alternatives, domain.Alternative{
			ID:      uuid.NewString(),
			IssueID: issue.ID,
			Title:   altTitle,
		})
	}
	if err := s.issues.CreateWithAlternatives(ctx, issue, alternatives); err != nil {
		return nil, fmt.Errorf("create issue: %w", err)
	}
	s.audit.Record(audit.Event{Type: audit.EventIssueCreated, Subject: issue.ID})
	s.log.Info("issue created", "issue_id", issue.ID, "title", issue.Title)
	return &domain.IssueSnapshot{Issue: issue, Alternatives: alternatives, Votes: []domain.Vote{}}, nil
}

// SetState applies an explicit lifecycle transition requested by a trusted
// caller and returns the refreshed snapshot. Only state values are validated;
// ordering between states is not enforced.
func (s *Service) SetState(ctx context.Context, issueID string, state domain.IssueState) (*domain.IssueSnapshot, error) {
	if !domain.ValidIssueState(state) {
		return nil, ErrUnknownState
	}
	if err := s.issues.SetState(ctx, issueID, state); err != nil {
		return nil, err
	}
	issue, err := s.issues.FindByID(ctx, issueID)
	if err != nil {
		return nil, err
	}
	return s.snapshot(ctx, issue)
}

// snapshot composes the three reads (issue, alternatives, votes). The reads
// are not transactional; the result is an eventually-consistent view, which
// is fine everywhere except the vote write path.
func (s *Service) snapshot(ctx context.Context, issue domain.Issue) (*domain.IssueSnapshot, error) {
	alternatives, err := s.issues.AlternativesForIssue(ctx, issue.ID)
	if err != nil {
		return nil, fmt.Errorf("load alternatives: %w", err)
	}
	votes, err := s.votes.ListByIssue(ctx, issue.ID)
	if err != nil {
		return nil, fmt.Errorf("load votes: %w", err)
	}
	return &domain.IssueSnapshot{Issue: issue, Alternatives: alternatives, Votes: votes}, nil
}
