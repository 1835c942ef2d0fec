package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"plenum/internal/audit"
	"plenum/internal/domain"
	"plenum/internal/storage"
	"plenum/pkg/sentinel"
)

// ErrInvalidUsername rejects empty or whitespace-only usernames before any
// store round trip.
var ErrInvalidUsername = fmt.Errorf("username is required: %w", sentinel.ErrInvalidArgument)

// Service owns user identity and the reconnect credential. Login is a lookup
// (unknown usernames do not auto-register); Register always creates. Both
// mint a fresh session, which is the sole reconnect credential, so the token
// comes from uuid v4 (crypto/rand-backed).
type Service struct {
	users    storage.UserStore
	sessions storage.SessionStore
	audit    *audit.Service
	log      *slog.Logger
}

func NewService(users storage.UserStore, sessions storage.SessionStore, auditSvc *audit.Service, log *slog.Logger) *Service {
	return &Service{users: users, sessions: sessions, audit: auditSvc, log: log}
}

// Create mints a new opaque session token bound to userID and persists it.
func (s *Service) Create(ctx context.Context, userID string) (domain.Session, error) {
	session := domain.Session{ID: uuid.NewString(), UserID: userID}
	if err := s.sessions.Save(ctx, session); err != nil {
		return domain.Session{}, fmt.Errorf("save session: %w", err)
	}
	return session, nil
}

// Find is an exact token lookup. sentinel.ErrNotFound is the normal outcome
// for stale or forged tokens, not a failure.
func (s *Service) Find(ctx context.Context, sessionID string) (domain.Session, error) {
	return s.sessions.FindByID(ctx, sessionID)
}

// Login resolves an existing username and mints a session for it. Unknown
// usernames surface storage.ErrNotFound.
func (s *Service) Login(ctx context.Context, username string) (domain.User, domain.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return domain.User{}, domain.Session{}, ErrInvalidUsername
	}
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return domain.User{}, domain.Session{}, err
	}
	session, err := s.Create(ctx, user.ID)
	if err != nil {
		return domain.User{}, domain.Session{}, err
	}
	s.audit.Record(audit.Event{Type: audit.EventUserLogin, Actor: user.ID, Subject: session.ID})
	return user, session, nil
}

// Register creates the user (unique username) and mints a session.
func (s *Service) Register(ctx context.Context, username string) (domain.User, domain.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return domain.User{}, domain.Session{}, ErrInvalidUsername
	}
	user := domain.User{ID: uuid.NewString(), Username: username}
	if err := s.users.Create(ctx, user); err != nil {
		return domain.User{}, domain.Session{}, err
	}
	session, err := s.Create(ctx, user.ID)
	if err != nil {
		return domain.User{}, domain.Session{}, err
	}
	s.audit.Record(audit.Event{Type: audit.EventUserRegistered, Actor: user.ID, Subject: session.ID})
	return user, session, nil
}

// Reconnect re-associates a connection with the user bound to sessionID. The
// original session is reused; no new token is minted.
func (s *Service) Reconnect(ctx context.Context, sessionID string) (domain.User, domain.Session, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return domain.User{}, domain.Session{}, err
	}
	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		// A session pointing at a missing user is a store inconsistency,
		// not a stale token.
		s.log.Error("session references unknown user", "session_id", session.ID, "user_id", session.UserID)
		return domain.User{}, domain.Session{}, err
	}
	s.audit.Record(audit.Event{Type: audit.EventSessionReconnect, Actor: user.ID, Subject: session.ID})
	return user, session, nil
}
