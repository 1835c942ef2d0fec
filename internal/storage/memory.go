package storage

import (
	"context"
	"sync"

	"plenum/internal/domain"
)

// In-memory stores back unit tests and the zero-config dev mode. They
// intentionally favor clarity over performance.

type InMemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]domain.User // keyed by id
}

func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{users: make(map[string]domain.User)}
}

func (s *InMemoryUserStore) Create(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == user.Username {
			return ErrConflict
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *InMemoryUserStore) FindByUsername(_ context.Context, username string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Username == username {
			return user, nil
		}
	}
	return domain.User{}, ErrNotFound
}

func (s *InMemoryUserStore) FindByID(_ context.Context, id string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if user, ok := s.users[id]; ok {
		return user, nil
	}
	return domain.User{}, ErrNotFound
}

type InMemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
}

func NewInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{sessions: make(map[string]domain.Session)}
}

func (s *InMemorySessionStore) Save(_ context.Context, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return nil
}

func (s *InMemorySessionStore) FindByID(_ context.Context, id string) (domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if session, ok := s.sessions[id]; ok {
		return session, nil
	}
	return domain.Session{}, ErrNotFound
}

type InMemoryIssueStore struct {
	mu           sync.RWMutex
	issues       []domain.Issue                  // creation order, last is active
	alternatives map[string][]domain.Alternative // issue id -> insertion order
}

func NewInMemoryIssueStore() *InMemoryIssueStore {
	return &InMemoryIssueStore{alternatives: make(map[string][]domain.Alternative)}
}

func (s *InMemoryIssueStore) CreateWithAlternatives(_ context.Context, issue domain.Issue, alternatives []domain.Alternative) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issues = append(s.issues, issue)
	s.alternatives[issue.ID] = append([]domain.Alternative(nil), alternatives...)
	return nil
}

func (s *InMemoryIssueStore) Active(_ context.Context) (domain.Issue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.issues) == 0 {
		return domain.Issue{}, ErrNotFound
	}
	return s.issues[len(s.issues)-1], nil
}

func (s *InMemoryIssueStore) FindByID(_ context.Context, id string) (domain.Issue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, issue := range s.issues {
		if issue.ID == id {
			return issue, nil
		}
	}
	return domain.Issue{}, ErrNotFound
}

func (s *InMemoryIssueStore) List(_ context.Context) ([]domain.Issue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Issue(nil), s.issues...), nil
}

func (s *InMemoryIssueStore) SetState(_ context.Context, id string, state domain.IssueState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.issues {
		if s.issues[i].ID == id {
			s.issues[i].State = state
			return nil
		}
	}
	return ErrNotFound
}

func (s *InMemoryIssueStore) AlternativesForIssue(_ context.Context, issueID string) ([]domain.Alternative, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Alternative(nil), s.alternatives[issueID]...), nil
}

type InMemoryVoteStore struct {
	mu    sync.Mutex
	votes []domain.Vote
}

func NewInMemoryVoteStore() *InMemoryVoteStore {
	return &InMemoryVoteStore{}
}

// Add holds the store lock across the check and the append so the pair is
// atomic, the same guarantee the SQL transaction gives.
func (s *InMemoryVoteStore) Add(_ context.Context, vote domain.Vote) (domain.Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.votes {
		if existing.UserID == vote.UserID && existing.IssueID == vote.IssueID {
			return domain.Vote{}, ErrDuplicateVote
		}
	}
	s.votes = append(s.votes, vote)
	return vote, nil
}

func (s *InMemoryVoteStore) ListByIssue(_ context.Context, issueID string) ([]domain.Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Vote, 0)
	for _, vote := range s.votes {
		if vote.IssueID == issueID {
			out = append(out, vote)
		}
	}
	return out, nil
}
