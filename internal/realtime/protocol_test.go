package realtime

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plenum/internal/domain"
)

func TestDecodeIncoming(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want any
	}{
		{
			name: "login",
			raw:  `{"type":"login","username":"alice"}`,
			want: LoginMessage{Username: "alice"},
		},
		{
			name: "registration",
			raw:  `{"type":"registration","username":"bob"}`,
			want: RegistrationMessage{Username: "bob"},
		},
		{
			name: "reconnect",
			raw:  `{"type":"reconnect","session_id":"token-1"}`,
			want: ReconnectMessage{SessionID: "token-1"},
		},
		{
			name: "vote",
			raw:  `{"type":"vote","alternative_id":"a1","issue_id":"i1","user_id":"u1"}`,
			want: VoteMessage{AlternativeID: "a1", IssueID: "i1", UserID: "u1"},
		},
		{
			name: "vote without user id",
			raw:  `{"type":"vote","alternative_id":"a1","issue_id":"i1"}`,
			want: VoteMessage{AlternativeID: "a1", IssueID: "i1"},
		},
		{
			name: "issue_create",
			raw:  `{"type":"issue_create","issue":{"title":"Referendum","description":"d","alternatives":["Yes","No"],"max_voters":5,"show_distribution":true}}`,
			want: IssueCreateMessage{Issue: IssueSpec{
				Title:            "Referendum",
				Description:      "d",
				Alternatives:     []string{"Yes", "No"},
				MaxVoters:        5,
				ShowDistribution: true,
			}},
		},
		{
			name: "list_all_issues",
			raw:  `{"type":"list_all_issues"}`,
			want: ListAllIssuesMessage{},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DecodeIncoming([]byte(tc.raw))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDecodeIncomingRejectsUnknownType(t *testing.T) {
	_, err := DecodeIncoming([]byte(`{"type":"shutdown"}`))
	require.Error(t, err)

	_, err = DecodeIncoming([]byte(`{"username":"alice"}`))
	require.Error(t, err)
}

func TestDecodeIncomingRejectsMalformedJSON(t *testing.T) {
	_, err := DecodeIncoming([]byte(`{"type":`))
	require.Error(t, err)
}

func TestIssueEventShape(t *testing.T) {
	snapshot := domain.IssueSnapshot{
		Issue: domain.Issue{
			ID:          "i1",
			Title:       "Referendum",
			Description: "Adopt the proposal",
			State:       domain.IssueStateInProgress,
			MaxVoters:   10,
		},
		Alternatives: []domain.Alternative{
			{ID: "a1", IssueID: "i1", Title: "Yes"},
			{ID: "a2", IssueID: "i1", Title: "No"},
		},
		Votes: []domain.Vote{
			{ID: "v1", AlternativeID: "a1", IssueID: "i1", UserID: "u1"},
		},
	}

	raw, err := json.Marshal(NewIssueEvent(snapshot))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "issue",
		"id": "i1",
		"title": "Referendum",
		"description": "Adopt the proposal",
		"state": "inprogress",
		"alternatives": [
			{"id": "a1", "title": "Yes"},
			{"id": "a2", "title": "No"}
		],
		"votes": [
			{"id": "v1", "alternative_id": "a1", "user_id": "u1"}
		],
		"max_voters": 10,
		"show_distribution": false
	}`, string(raw))
}

func TestVoteEventShape(t *testing.T) {
	vote := domain.Vote{ID: "v1", AlternativeID: "a1", IssueID: "i1", UserID: "u1"}
	raw, err := json.Marshal(NewVoteEvent(vote))
	require.NoError(t, err)
	// The issue id is deliberately absent; clients correlate through the
	// alternative.
	assert.JSONEq(t, `{"type":"vote","id":"v1","alternative_id":"a1","user_id":"u1"}`, string(raw))
}

func TestClientEventShape(t *testing.T) {
	event := NewClientEvent(domain.Session{ID: "s1", UserID: "u1"}, domain.User{ID: "u1", Username: "alice"})
	raw, err := json.Marshal(event)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"client","id":"s1","username":"alice"}`, string(raw))
}

func TestAllIssuesEventShape(t *testing.T) {
	event := NewAllIssuesEvent([]domain.IssueSnapshot{
		{Issue: domain.Issue{ID: "i1", Title: "First", State: domain.IssueStateFinished}},
	})
	raw, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded struct {
		Type   string `json:"type"`
		Issues []struct {
			ID    string `json:"id"`
			State string `json:"state"`
		} `json:"issues"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "all_issues", decoded.Type)
	require.Len(t, decoded.Issues, 1)
	assert.Equal(t, "i1", decoded.Issues[0].ID)
	assert.Equal(t, "finished", decoded.Issues[0].State)
}

func TestErrorEventShape(t *testing.T) {
	raw, err := json.Marshal(NewErrorEvent(CodeDuplicateVote, "already voted on this issue"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"error","code":"duplicate_vote","message":"already voted on this issue"}`, string(raw))
}
