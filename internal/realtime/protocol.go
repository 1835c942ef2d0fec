package realtime

import (
	"encoding/json"
	"fmt"

	"plenum/internal/domain"
)

// Wire protocol: JSON messages tagged by a "type" discriminator in both
// directions. Shapes are pinned by the protocol tests; changing a field name
// here is a protocol change.

// Client -> server message types.
const (
	TypeLogin         = "login"
	TypeRegistration  = "registration"
	TypeReconnect     = "reconnect"
	TypeVote          = "vote"
	TypeIssueCreate   = "issue_create"
	TypeListAllIssues = "list_all_issues"
)

// Server -> client message types.
const (
	TypeIssue     = "issue"
	TypeClient    = "client"
	TypeAllIssues = "all_issues"
	TypeError     = "error"
)

type LoginMessage struct {
	Username string `json:"username"`
}

type RegistrationMessage struct {
	Username string `json:"username"`
}

type ReconnectMessage struct {
	SessionID string `json:"session_id"`
}

// VoteMessage carries an optional client-supplied user id, used only when the
// connection is anonymous. That path is untrusted by design; see the session
// actor.
type VoteMessage struct {
	AlternativeID string `json:"alternative_id"`
	IssueID       string `json:"issue_id"`
	UserID        string `json:"user_id,omitempty"`
}

type IssueCreateMessage struct {
	Issue IssueSpec `json:"issue"`
}

type IssueSpec struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Alternatives     []string `json:"alternatives"`
	MaxVoters        int      `json:"max_voters,omitempty"`
	ShowDistribution bool     `json:"show_distribution"`
}

type ListAllIssuesMessage struct{}

// DecodeIncoming parses one inbound frame into its typed message. Unknown or
// missing type tags and malformed payloads are decode errors; the caller logs
// them and keeps the connection open.
func DecodeIncoming(raw []byte) (any, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	switch envelope.Type {
	case TypeLogin:
		var msg LoginMessage
		return msg, json.Unmarshal(raw, &msg)
	case TypeRegistration:
		var msg RegistrationMessage
		return msg, json.Unmarshal(raw, &msg)
	case TypeReconnect:
		var msg ReconnectMessage
		return msg, json.Unmarshal(raw, &msg)
	case TypeVote:
		var msg VoteMessage
		return msg, json.Unmarshal(raw, &msg)
	case TypeIssueCreate:
		var msg IssueCreateMessage
		return msg, json.Unmarshal(raw, &msg)
	case TypeListAllIssues:
		return ListAllIssuesMessage{}, nil
	default:
		return nil, fmt.Errorf("unknown message type %q", envelope.Type)
	}
}

// AlternativeBody mirrors domain.Alternative on the wire.
type AlternativeBody struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// VoteBody mirrors domain.Vote on the wire.
type VoteBody struct {
	ID            string `json:"id"`
	AlternativeID string `json:"alternative_id"`
	UserID        string `json:"user_id"`
}

// IssueBody is the snapshot shape shared by the issue event and all_issues.
type IssueBody struct {
	ID               string            `json:"id"`
	Title            string            `json:"title"`
	Description      string            `json:"description"`
	State            string            `json:"state"`
	Alternatives     []AlternativeBody `json:"alternatives"`
	Votes            []VoteBody        `json:"votes"`
	MaxVoters        int               `json:"max_voters"`
	ShowDistribution bool              `json:"show_distribution"`
}

type IssueEvent struct {
	Type string `json:"type"`
	IssueBody
}

type VoteEvent struct {
	Type          string `json:"type"`
	ID            string `json:"id"`
	AlternativeID string `json:"alternative_id"`
	UserID        string `json:"user_id"`
}

// ClientEvent confirms an identity. ID is the session token the client keeps
// for reconnects.
type ClientEvent struct {
	Type     string `json:"type"`
	ID       string `json:"id"`
	Username string `json:"username"`
}

type AllIssuesEvent struct {
	Type   string      `json:"type"`
	Issues []IssueBody `json:"issues"`
}

type ErrorEvent struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func newIssueBody(snapshot domain.IssueSnapshot) IssueBody {
	alternatives := make([]AlternativeBody, 0, len(snapshot.Alternatives))
	for _, alt := range snapshot.Alternatives {
		alternatives = append(alternatives, AlternativeBody{ID: alt.ID, Title: alt.Title})
	}
	votes := make([]VoteBody, 0, len(snapshot.Votes))
	for _, vote := range snapshot.Votes {
		votes = append(votes, VoteBody{ID: vote.ID, AlternativeID: vote.AlternativeID, UserID: vote.UserID})
	}
	return IssueBody{
		ID:               snapshot.ID,
		Title:            snapshot.Title,
		Description:      snapshot.Description,
		State:            string(snapshot.State),
		Alternatives:     alternatives,
		Votes:            votes,
		MaxVoters:        snapshot.MaxVoters,
		ShowDistribution: snapshot.ShowDistribution,
	}
}

// NewIssueEvent builds the issue event sent on connect and whenever the
// active issue should be redelivered.
func NewIssueEvent(snapshot domain.IssueSnapshot) IssueEvent {
	return IssueEvent{Type: TypeIssue, IssueBody: newIssueBody(snapshot)}
}

// NewVoteEvent builds the event broadcast for every accepted vote.
func NewVoteEvent(vote domain.Vote) VoteEvent {
	return VoteEvent{Type: TypeVote, ID: vote.ID, AlternativeID: vote.AlternativeID, UserID: vote.UserID}
}

// NewClientEvent builds the identity confirmation for a connection.
func NewClientEvent(session domain.Session, user domain.User) ClientEvent {
	return ClientEvent{Type: TypeClient, ID: session.ID, Username: user.Username}
}

// NewAllIssuesEvent builds the list_all_issues response.
func NewAllIssuesEvent(snapshots []domain.IssueSnapshot) AllIssuesEvent {
	issues := make([]IssueBody, 0, len(snapshots))
	for _, snapshot := range snapshots {
		issues = append(issues, newIssueBody(snapshot))
	}
	return AllIssuesEvent{Type: TypeAllIssues, Issues: issues}
}

// NewErrorEvent builds an explicit failure reply. Every rejected request gets
// one, so clients can tell a rejection from a dropped frame.
func NewErrorEvent(code, message string) ErrorEvent {
	return ErrorEvent{Type: TypeError, Code: code, Message: message}
}
