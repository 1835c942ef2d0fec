package domain

// IssueState is the lifecycle state of an issue. Transitions are driven by
// explicit state-set requests from a trusted caller; ordering is not enforced
// beyond rejecting unknown states.
type IssueState string

const (
	IssueStateNotStarted     IssueState = "notstarted"
	IssueStateInProgress     IssueState = "inprogress"
	IssueStateVotingFinished IssueState = "votingfinished"
	IssueStateFinished       IssueState = "finished"
)

// ValidIssueState reports whether s is one of the known lifecycle states.
func ValidIssueState(s IssueState) bool {
	switch s {
	case IssueStateNotStarted, IssueStateInProgress, IssueStateVotingFinished, IssueStateFinished:
		return true
	}
	return false
}

// Issue is a poll under vote. Exactly one issue is considered active at a
// time; see IssueStore.Active for the selection rule.
type Issue struct {
	ID               string
	Title            string
	Description      string
	State            IssueState
	MaxVoters        int
	ShowDistribution bool
}

// Alternative is one selectable option within an issue. Immutable once
// created and owned by exactly one issue.
type Alternative struct {
	ID      string
	IssueID string
	Title   string
}

// IssueSnapshot is an issue with its alternatives and votes composed into one
// immutable read. Alternatives preserve insertion order.
type IssueSnapshot struct {
	Issue
	Alternatives []Alternative
	Votes        []Vote
}

// NewIssue describes an issue to be created together with its alternatives.
type NewIssue struct {
	Title            string
	Description      string
	Alternatives     []string
	MaxVoters        int
	ShowDistribution bool
}
