package domain

// Vote records one user's choice on an issue. Append-only; at most one vote
// may exist per (user, issue) pair, enforced transactionally at write time.
type Vote struct {
	ID            string
	AlternativeID string
	IssueID       string
	UserID        string
}
