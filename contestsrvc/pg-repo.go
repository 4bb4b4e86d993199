package contestsrvc

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgContestRepo struct {
	pool *pgxpool.Pool
}

func NewPgContestRepo(pool *pgxpool.Pool) *pgContestRepo {
	return &pgContestRepo{pool: pool}
}

func (r *pgContestRepo) StoreContest(ctx context.Context, contest Contest) error {
	query := `
		INSERT INTO contests (uuid, name, start_at, end_at, rating_computed)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (uuid) DO UPDATE
		SET name = EXCLUDED.name,
			start_at = EXCLUDED.start_at,
			end_at = EXCLUDED.end_at
	`
	_, err := r.pool.Exec(ctx, query,
		contest.ID, contest.Name, contest.StartAt, contest.EndAt, contest.RatingComputed)
	if err != nil {
		return fmt.Errorf("failed to store contest: %w", err)
	}
	return nil
}

func (r *pgContestRepo) GetContest(ctx context.Context, id uuid.UUID) (*Contest, error) {
	query := `
		SELECT uuid, name, start_at, end_at, rating_computed
		FROM contests
		WHERE uuid = $1
	`
	var c Contest
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.StartAt, &c.EndAt, &c.RatingComputed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query contest: %w", err)
	}
	return &c, nil
}

func (r *pgContestRepo) ListContests(ctx context.Context) ([]Contest, error) {
	query := `
		SELECT uuid, name, start_at, end_at, rating_computed
		FROM contests
		ORDER BY start_at
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query contests: %w", err)
	}
	defer rows.Close()

	var contests []Contest
	for rows.Next() {
		var c Contest
		if err := rows.Scan(&c.ID, &c.Name, &c.StartAt, &c.EndAt, &c.RatingComputed); err != nil {
			return nil, fmt.Errorf("failed to scan contest: %w", err)
		}
		contests = append(contests, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contests: %w", err)
	}
	return contests, nil
}

// ApplyScore merges one finalized attempt. The upsert keeps points
// monotonic and moves last_improved_at only when the attempt improved
// the score.
func (r *pgContestRepo) ApplyScore(ctx context.Context, attempt ProblemScore) error {
	query := `
		INSERT INTO contest_scores
			(contest_uuid, user_uuid, problem_shortid, points, attempts, last_improved_at)
		VALUES ($1, $2, $3, $4, 1, $5)
		ON CONFLICT (contest_uuid, user_uuid, problem_shortid) DO UPDATE
		SET attempts = contest_scores.attempts + 1,
			points = GREATEST(contest_scores.points, EXCLUDED.points),
			last_improved_at = CASE
				WHEN EXCLUDED.points > contest_scores.points THEN EXCLUDED.last_improved_at
				ELSE contest_scores.last_improved_at
			END
	`
	_, err := r.pool.Exec(ctx, query,
		attempt.ContestID, attempt.UserID, attempt.ProblemID,
		attempt.Points, attempt.LastImprovedAt)
	if err != nil {
		return fmt.Errorf("failed to apply contest score: %w", err)
	}
	return nil
}

func (r *pgContestRepo) ListScores(ctx context.Context, contestID uuid.UUID) ([]ProblemScore, error) {
	query := `
		SELECT contest_uuid, user_uuid, problem_shortid, points, attempts, last_improved_at
		FROM contest_scores
		WHERE contest_uuid = $1
	`
	rows, err := r.pool.Query(ctx, query, contestID)
	if err != nil {
		return nil, fmt.Errorf("failed to query contest scores: %w", err)
	}
	defer rows.Close()

	var scores []ProblemScore
	for rows.Next() {
		var s ProblemScore
		err := rows.Scan(&s.ContestID, &s.UserID, &s.ProblemID,
			&s.Points, &s.Attempts, &s.LastImprovedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contest score: %w", err)
		}
		scores = append(scores, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contest scores: %w", err)
	}
	return scores, nil
}

// MarkRatingComputed flips the contest's rating flag. The WHERE clause
// makes it a compare-and-set: concurrent closers race on the row and the
// affected-row count tells exactly one of them it won.
func (r *pgContestRepo) MarkRatingComputed(ctx context.Context, contestID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE contests SET rating_computed = true
		WHERE uuid = $1 AND rating_computed = false
	`, contestID)
	if err != nil {
		return false, fmt.Errorf("failed to mark contest rating computed: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ResetRatingComputed reopens the flag after a failed rating run so a
// later close attempt can retry.
func (r *pgContestRepo) ResetRatingComputed(ctx context.Context, contestID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE contests SET rating_computed = false WHERE uuid = $1
	`, contestID)
	if err != nil {
		return fmt.Errorf("failed to reset contest rating flag: %w", err)
	}
	return nil
}
