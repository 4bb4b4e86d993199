package submsrvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgSubmRepo struct {
	pool *pgxpool.Pool
}

func NewPgSubmRepo(pool *pgxpool.Pool) *pgSubmRepo {
	return &pgSubmRepo{pool: pool}
}

func (r *pgSubmRepo) Store(ctx context.Context, subm Submission) error {
	query := `
		INSERT INTO submissions (
			uuid, user_uuid, problem_shortid, contest_uuid, lang_shortid, code,
			state, testcases, retry_count, error_reason, accepted,
			created_at, last_transition_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	testcases, err := json.Marshal(subm.Testcases)
	if err != nil {
		return fmt.Errorf("failed to marshal testcase results: %w", err)
	}
	_, err = r.pool.Exec(ctx, query,
		subm.UUID,
		subm.UserID,
		subm.ProblemID,
		subm.ContestID,
		subm.LangID,
		subm.Code,
		string(subm.State),
		testcases,
		subm.RetryCount,
		subm.ErrorReason,
		subm.Accepted(),
		subm.CreatedAt,
		subm.LastTransitionAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert submission: %w", err)
	}
	return nil
}

func (r *pgSubmRepo) Update(ctx context.Context, subm Submission) error {
	query := `
		UPDATE submissions
		SET state = $1, testcases = $2, retry_count = $3, error_reason = $4,
			accepted = $5, last_transition_at = $6
		WHERE uuid = $7
	`
	testcases, err := json.Marshal(subm.Testcases)
	if err != nil {
		return fmt.Errorf("failed to marshal testcase results: %w", err)
	}
	_, err = r.pool.Exec(ctx, query,
		string(subm.State),
		testcases,
		subm.RetryCount,
		subm.ErrorReason,
		subm.Accepted(),
		subm.LastTransitionAt,
		subm.UUID,
	)
	if err != nil {
		return fmt.Errorf("failed to update submission: %w", err)
	}
	return nil
}

const submSelectColumns = `
	uuid, user_uuid, problem_shortid, contest_uuid, lang_shortid, code,
	state, testcases, retry_count, error_reason, created_at, last_transition_at
`

func (r *pgSubmRepo) Get(ctx context.Context, id uuid.UUID) (*Submission, error) {
	query := `SELECT ` + submSelectColumns + ` FROM submissions WHERE uuid = $1`
	row := r.pool.QueryRow(ctx, query, id)
	subm, err := scanSubm(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query submission: %w", err)
	}
	return subm, nil
}

func (r *pgSubmRepo) List(ctx context.Context, limit int, offset int) ([]Submission, error) {
	query := `
		SELECT ` + submSelectColumns + `
		FROM submissions
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	defer rows.Close()

	var subms []Submission
	for rows.Next() {
		subm, err := scanSubm(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		subms = append(subms, *subm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating submissions: %w", err)
	}
	return subms, nil
}

func (r *pgSubmRepo) UserStats(ctx context.Context, since time.Time, problemIDs []string) ([]UserSubmStats, error) {
	query := `
		SELECT user_uuid,
			COUNT(*),
			COUNT(*) FILTER (WHERE accepted),
			COUNT(DISTINCT problem_shortid) FILTER (WHERE accepted),
			MAX(created_at)
		FROM submissions
		WHERE created_at >= $1
			AND (cardinality($2::text[]) = 0 OR problem_shortid = ANY($2))
		GROUP BY user_uuid
	`
	if problemIDs == nil {
		problemIDs = []string{}
	}
	rows, err := r.pool.Query(ctx, query, since, problemIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query user stats: %w", err)
	}
	defer rows.Close()

	var stats []UserSubmStats
	for rows.Next() {
		var st UserSubmStats
		err := rows.Scan(&st.UserID, &st.TotalSubmissions,
			&st.AcceptedSubmissions, &st.ProblemsSolved, &st.LastActive)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user stats: %w", err)
		}
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user stats: %w", err)
	}
	return stats, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubm(row rowScanner) (*Submission, error) {
	var subm Submission
	var state string
	var testcases []byte
	err := row.Scan(
		&subm.UUID,
		&subm.UserID,
		&subm.ProblemID,
		&subm.ContestID,
		&subm.LangID,
		&subm.Code,
		&state,
		&testcases,
		&subm.RetryCount,
		&subm.ErrorReason,
		&subm.CreatedAt,
		&subm.LastTransitionAt,
	)
	if err != nil {
		return nil, err
	}
	subm.State = SubmState(state)
	if err := json.Unmarshal(testcases, &subm.Testcases); err != nil {
		return nil, fmt.Errorf("failed to unmarshal testcase results: %w", err)
	}
	return &subm, nil
}
