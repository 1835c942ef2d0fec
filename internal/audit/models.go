package audit

import "time"

// Event types recorded by the coordinator.
const (
	EventUserRegistered   = "user_registered"
	EventUserLogin        = "user_login"
	EventSessionReconnect = "session_reconnect"
	EventVoteCast         = "vote_cast"
	EventIssueCreated     = "issue_created"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Type       string
	Actor      string // user id where known, empty for anonymous paths
	Subject    string // the entity acted on (issue id, session id, vote id)
	OccurredAt time.Time
}
