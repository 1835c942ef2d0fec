package realtime

import (
	"context"
	"errors"
	"log/slog"

	"plenum/internal/domain"
	"plenum/internal/platform/metrics"
	"plenum/pkg/sentinel"
)

// Error codes carried on error replies.
const (
	CodeDecodeError        = "decode_error"
	CodeNotAuthenticated   = "not_authenticated"
	CodeDuplicateVote      = "duplicate_vote"
	CodeUnknownUser        = "unknown_user"
	CodeUnknownSession     = "unknown_session"
	CodeUsernameTaken      = "username_taken"
	CodeInvalidRequest     = "invalid_request"
	CodeBackendUnavailable = "backend_unavailable"
)

// IssueService is the aggregator surface the actor needs.
type IssueService interface {
	Active(ctx context.Context) (*domain.IssueSnapshot, error)
	ListAll(ctx context.Context) ([]domain.IssueSnapshot, error)
	Create(ctx context.Context, spec domain.NewIssue) (*domain.IssueSnapshot, error)
}

// VoteService is the ledger surface the actor needs.
type VoteService interface {
	Add(ctx context.Context, userID, issueID, alternativeID string) (domain.Vote, error)
}

// IdentityService is the login/registration/reconnect surface the actor needs.
type IdentityService interface {
	Login(ctx context.Context, username string) (domain.User, domain.Session, error)
	Register(ctx context.Context, username string) (domain.User, domain.Session, error)
	Reconnect(ctx context.Context, sessionID string) (domain.User, domain.Session, error)
}

// Services bundles the shared components injected into every actor.
type Services struct {
	Issues   IssueService
	Votes    VoteService
	Identity IdentityService
}

// ClientSession is the per-connection state machine. The transport's read
// loop feeds it one message at a time, so handlers run strictly in arrival
// order and the identity fields need no locking. Anonymous until a login,
// registration, or reconnect succeeds.
type ClientSession struct {
	client   *Client
	hub      *Hub
	services Services
	metrics  *metrics.Metrics
	log      *slog.Logger

	user    *domain.User
	session *domain.Session
}

func NewClientSession(client *Client, hub *Hub, services Services, m *metrics.Metrics, log *slog.Logger) *ClientSession {
	return &ClientSession{
		client:   client,
		hub:      hub,
		services: services,
		metrics:  m,
		log:      log.With("conn_id", client.ID),
	}
}

// Identified reports whether the connection has an authenticated user.
func (cs *ClientSession) Identified() bool {
	return cs.user != nil
}

// OnConnect registers the connection with the hub and delivers the active
// issue. No issue yet is a normal state; the client simply gets nothing
// until one is created.
func (cs *ClientSession) OnConnect(ctx context.Context) {
	cs.hub.Register(cs.client)
	snapshot, err := cs.services.Issues.Active(ctx)
	if err != nil {
		cs.log.Error("load active issue on connect", "err", err)
		cs.reply(NewErrorEvent(CodeBackendUnavailable, "could not load active issue"))
		return
	}
	if snapshot != nil {
		cs.reply(NewIssueEvent(*snapshot))
	}
}

// OnDisconnect removes the connection from the broadcast set.
func (cs *ClientSession) OnDisconnect() {
	cs.hub.Unregister(cs.client)
	cs.client.Close()
}

// Handle decodes and dispatches one inbound frame. Malformed frames are
// answered with a decode error and the connection stays open.
func (cs *ClientSession) Handle(ctx context.Context, raw []byte) {
	msg, err := DecodeIncoming(raw)
	if err != nil {
		cs.metrics.DecodeFailures.Inc()
		cs.log.Warn("malformed message", "err", err)
		cs.reply(NewErrorEvent(CodeDecodeError, "malformed message"))
		return
	}
	cs.metrics.MessagesDecoded.Inc()

	switch m := msg.(type) {
	case LoginMessage:
		cs.handleLogin(ctx, m)
	case RegistrationMessage:
		cs.handleRegistration(ctx, m)
	case ReconnectMessage:
		cs.handleReconnect(ctx, m)
	case VoteMessage:
		cs.handleVote(ctx, m)
	case IssueCreateMessage:
		cs.handleIssueCreate(ctx, m)
	case ListAllIssuesMessage:
		cs.handleListAllIssues(ctx)
	}
}

func (cs *ClientSession) handleLogin(ctx context.Context, msg LoginMessage) {
	user, session, err := cs.services.Identity.Login(ctx, msg.Username)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			cs.reply(NewErrorEvent(CodeUnknownUser, "unknown username"))
			return
		}
		cs.failBackend("login", err)
		return
	}
	cs.identify(user, session)
	cs.log.Info("login", "user_id", user.ID)
}

func (cs *ClientSession) handleRegistration(ctx context.Context, msg RegistrationMessage) {
	user, session, err := cs.services.Identity.Register(ctx, msg.Username)
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			cs.reply(NewErrorEvent(CodeUsernameTaken, "username already taken"))
			return
		}
		cs.failBackend("registration", err)
		return
	}
	cs.identify(user, session)
	cs.log.Info("registration", "user_id", user.ID)
}

func (cs *ClientSession) handleReconnect(ctx context.Context, msg ReconnectMessage) {
	user, session, err := cs.services.Identity.Reconnect(ctx, msg.SessionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			// Stale or forged token: stay anonymous. The client gets an
			// explicit error but never a client event.
			cs.log.Info("reconnect with unknown session")
			cs.reply(NewErrorEvent(CodeUnknownSession, "unknown session"))
			return
		}
		cs.failBackend("reconnect", err)
		return
	}
	cs.identify(user, session)
	cs.log.Info("reconnect", "user_id", user.ID)
}

func (cs *ClientSession) handleVote(ctx context.Context, msg VoteMessage) {
	// Identified connections vote as themselves. The anonymous fallback
	// trusts the client-supplied user id; it exists for unauthenticated
	// test clients and is not an authentication mechanism.
	userID := msg.UserID
	if cs.Identified() {
		userID = cs.user.ID
	}
	if userID == "" {
		cs.reply(NewErrorEvent(CodeNotAuthenticated, "vote requires an identity"))
		return
	}
	vote, err := cs.services.Votes.Add(ctx, userID, msg.IssueID, msg.AlternativeID)
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrDuplicateVote):
			cs.reply(NewErrorEvent(CodeDuplicateVote, "already voted on this issue"))
		case isValidation(err):
			cs.reply(NewErrorEvent(CodeInvalidRequest, err.Error()))
		default:
			cs.failBackend("vote", err)
		}
		return
	}
	cs.hub.Broadcast(NewVoteEvent(vote))
}

func (cs *ClientSession) handleIssueCreate(ctx context.Context, msg IssueCreateMessage) {
	if !cs.Identified() {
		cs.reply(NewErrorEvent(CodeNotAuthenticated, "issue_create requires login"))
		return
	}
	snapshot, err := cs.services.Issues.Create(ctx, domain.NewIssue{
		Title:            msg.Issue.Title,
		Description:      msg.Issue.Description,
		Alternatives:     msg.Issue.Alternatives,
		MaxVoters:        msg.Issue.MaxVoters,
		ShowDistribution: msg.Issue.ShowDistribution,
	})
	if err != nil {
		if isValidation(err) {
			cs.reply(NewErrorEvent(CodeInvalidRequest, err.Error()))
			return
		}
		cs.failBackend("issue_create", err)
		return
	}
	// The result goes back to the creator only; other clients learn about
	// the issue when its state is set.
	cs.reply(NewIssueEvent(*snapshot))
}

func (cs *ClientSession) handleListAllIssues(ctx context.Context) {
	if !cs.Identified() {
		cs.reply(NewErrorEvent(CodeNotAuthenticated, "list_all_issues requires login"))
		return
	}
	snapshots, err := cs.services.Issues.ListAll(ctx)
	if err != nil {
		cs.failBackend("list_all_issues", err)
		return
	}
	cs.reply(NewAllIssuesEvent(snapshots))
}

func (cs *ClientSession) identify(user domain.User, session domain.Session) {
	cs.user = &user
	cs.session = &session
	cs.reply(NewClientEvent(session, user))
}

func (cs *ClientSession) reply(event any) {
	cs.hub.Unicast(cs.client, event)
}

func (cs *ClientSession) failBackend(op string, err error) {
	cs.log.Error("backend failure", "op", op, "err", err)
	cs.reply(NewErrorEvent(CodeBackendUnavailable, "temporary backend failure"))
}

// isValidation distinguishes caller mistakes from backend faults so they map
// to invalid_request instead of backend_unavailable.
func isValidation(err error) bool {
	return errors.Is(err, sentinel.ErrInvalidArgument)
}
