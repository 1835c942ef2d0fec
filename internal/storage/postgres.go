package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"plenum/internal/domain"
)

// PostgreSQL stores are pure I/O; business rules live in the services. Rows
// map 1:1 to domain structs, no ORM.

const (
	pqUniqueViolation      = "23505"
	pqSerializationFailure = "40001"
)

type PostgresUserStore struct {
	db *sql.DB
}

func NewPostgresUserStore(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

func (s *PostgresUserStore) Create(ctx context.Context, user domain.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username) VALUES ($1, $2)`,
		user.ID, user.Username,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return ErrConflict
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *PostgresUserStore) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, username FROM users WHERE username = $1`, username))
}

func (s *PostgresUserStore) FindByID(ctx context.Context, id string) (domain.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, username FROM users WHERE id = $1`, id))
}

func (s *PostgresUserStore) scanUser(row *sql.Row) (domain.User, error) {
	var user domain.User
	if err := row.Scan(&user.ID, &user.Username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, fmt.Errorf("scan user: %w", err)
	}
	return user, nil
}

type PostgresSessionStore struct {
	db *sql.DB
}

func NewPostgresSessionStore(db *sql.DB) *PostgresSessionStore {
	return &PostgresSessionStore{db: db}
}

func (s *PostgresSessionStore) Save(ctx context.Context, session domain.Session) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id) VALUES ($1, $2)`,
		session.ID, session.UserID,
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *PostgresSessionStore) FindByID(ctx context.Context, id string) (domain.Session, error) {
	var session domain.Session
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id FROM sessions WHERE id = $1`, id,
	).Scan(&session.ID, &session.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Session{}, ErrNotFound
		}
		return domain.Session{}, fmt.Errorf("find session: %w", err)
	}
	return session, nil
}

type PostgresIssueStore struct {
	db *sql.DB
}

func NewPostgresIssueStore(db *sql.DB) *PostgresIssueStore {
	return &PostgresIssueStore{db: db}
}

func (s *PostgresIssueStore) CreateWithAlternatives(ctx context.Context, issue domain.Issue, alternatives []domain.Alternative) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create issue: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO issues (id, title, description, state, max_voters, show_distribution)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		issue.ID, issue.Title, issue.Description, string(issue.State), issue.MaxVoters, issue.ShowDistribution,
	)
	if err != nil {
		return fmt.Errorf("insert issue: %w", err)
	}
	for _, alt := range alternatives {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO alternatives (id, issue_id, title) VALUES ($1, $2, $3)`,
			alt.ID, alt.IssueID, alt.Title,
		)
		if err != nil {
			return fmt.Errorf("insert alternative: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create issue: %w", err)
	}
	return nil
}

const issueColumns = `id, title, description, state, max_voters, show_distribution`

func (s *PostgresIssueStore) Active(ctx context.Context) (domain.Issue, error) {
	return s.scanIssue(s.db.QueryRowContext(ctx,
		`SELECT `+issueColumns+` FROM issues ORDER BY created_at DESC, seq DESC LIMIT 1`))
}

func (s *PostgresIssueStore) FindByID(ctx context.Context, id string) (domain.Issue, error) {
	return s.scanIssue(s.db.QueryRowContext(ctx,
		`SELECT `+issueColumns+` FROM issues WHERE id = $1`, id))
}

func (s *PostgresIssueStore) List(ctx context.Context) ([]domain.Issue, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+issueColumns+` FROM issues ORDER BY created_at ASC, seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}
	defer rows.Close()

	var issues []domain.Issue
	for rows.Next() {
		var issue domain.Issue
		var state string
		if err := rows.Scan(&issue.ID, &issue.Title, &issue.Description, &state, &issue.MaxVoters, &issue.ShowDistribution); err != nil {
			return nil, fmt.Errorf("scan issue: %w", err)
		}
		issue.State = domain.IssueState(state)
		issues = append(issues, issue)
	}
	return issues, rows.Err()
}

func (s *PostgresIssueStore) SetState(ctx context.Context, id string, state domain.IssueState) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE issues SET state = $2 WHERE id = $1`, id, string(state))
	if err != nil {
		return fmt.Errorf("set issue state: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresIssueStore) AlternativesForIssue(ctx context.Context, issueID string) ([]domain.Alternative, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, issue_id, title FROM alternatives WHERE issue_id = $1 ORDER BY seq ASC`, issueID)
	if err != nil {
		return nil, fmt.Errorf("list alternatives: %w", err)
	}
	defer rows.Close()

	alternatives := make([]domain.Alternative, 0)
	for rows.Next() {
		var alt domain.Alternative
		if err := rows.Scan(&alt.ID, &alt.IssueID, &alt.Title); err != nil {
			return nil, fmt.Errorf("scan alternative: %w", err)
		}
		alternatives = append(alternatives, alt)
	}
	return alternatives, rows.Err()
}

func (s *PostgresIssueStore) scanIssue(row *sql.Row) (domain.Issue, error) {
	var issue domain.Issue
	var state string
	err := row.Scan(&issue.ID, &issue.Title, &issue.Description, &state, &issue.MaxVoters, &issue.ShowDistribution)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Issue{}, ErrNotFound
		}
		return domain.Issue{}, fmt.Errorf("scan issue: %w", err)
	}
	issue.State = domain.IssueState(state)
	return issue, nil
}

type PostgresVoteStore struct {
	db *sql.DB
}

func NewPostgresVoteStore(db *sql.DB) *PostgresVoteStore {
	return &PostgresVoteStore{db: db}
}

// Add runs the duplicate check and the insert in one serializable
// transaction. The UNIQUE (issue_id, user_id) constraint is the backstop for
// writers racing on the same pair; serialization retries are bounded because
// the second attempt always observes the winner's row.
func (s *PostgresVoteStore) Add(ctx context.Context, vote domain.Vote) (domain.Vote, error) {
	const maxAttempts = 3
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		inserted, err := s.addOnce(ctx, vote)
		if err == nil {
			return inserted, nil
		}
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case pqUniqueViolation:
				return domain.Vote{}, ErrDuplicateVote
			case pqSerializationFailure:
				lastErr = err
				continue
			}
		}
		return domain.Vote{}, err
	}
	return domain.Vote{}, fmt.Errorf("add vote: retries exhausted: %w", lastErr)
}

func (s *PostgresVoteStore) addOnce(ctx context.Context, vote domain.Vote) (domain.Vote, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return domain.Vote{}, fmt.Errorf("begin add vote: %w", err)
	}
	defer tx.Rollback()

	var existing string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM votes WHERE user_id = $1 AND issue_id = $2`,
		vote.UserID, vote.IssueID,
	).Scan(&existing)
	switch {
	case err == nil:
		return domain.Vote{}, ErrDuplicateVote
	case !errors.Is(err, sql.ErrNoRows):
		return domain.Vote{}, fmt.Errorf("check existing vote: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO votes (id, alternative_id, issue_id, user_id) VALUES ($1, $2, $3, $4)`,
		vote.ID, vote.AlternativeID, vote.IssueID, vote.UserID,
	)
	if err != nil {
		return domain.Vote{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Vote{}, err
	}
	return vote, nil
}

func (s *PostgresVoteStore) ListByIssue(ctx context.Context, issueID string) ([]domain.Vote, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, alternative_id, issue_id, user_id FROM votes WHERE issue_id = $1 ORDER BY seq ASC`, issueID)
	if err != nil {
		return nil, fmt.Errorf("list votes: %w", err)
	}
	defer rows.Close()

	votes := make([]domain.Vote, 0)
	for rows.Next() {
		var vote domain.Vote
		if err := rows.Scan(&vote.ID, &vote.AlternativeID, &vote.IssueID, &vote.UserID); err != nil {
			return nil, fmt.Errorf("scan vote: %w", err)
		}
		votes = append(votes, vote)
	}
	return votes, rows.Err()
}
