package ratingsrvc

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgRatingRepo struct {
	pool *pgxpool.Pool
}

func NewPgRatingRepo(pool *pgxpool.Pool) *pgRatingRepo {
	return &pgRatingRepo{pool: pool}
}

func (r *pgRatingRepo) Get(ctx context.Context, userID uuid.UUID) (*RatingRecord, error) {
	query := `
		SELECT user_uuid, rating, contests_played, rating_reached_at
		FROM rating_records
		WHERE user_uuid = $1
	`
	var rec RatingRecord
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&rec.UserID, &rec.Rating, &rec.ContestsPlayed, &rec.RatingReachedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query rating record: %w", err)
	}

	historyQuery := `
		SELECT contest_uuid, delta, resulting_rating, created_at
		FROM rating_history
		WHERE user_uuid = $1
		ORDER BY created_at
	`
	rows, err := r.pool.Query(ctx, historyQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rating history: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var e RatingHistoryEntry
		if err := rows.Scan(&e.ContestID, &e.Delta, &e.ResultingRating, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan rating history entry: %w", err)
		}
		rec.History = append(rec.History, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rating history: %w", err)
	}
	return &rec, nil
}

func (r *pgRatingRepo) List(ctx context.Context) ([]RatingRecord, error) {
	query := `
		SELECT user_uuid, rating, contests_played, rating_reached_at
		FROM rating_records
		ORDER BY user_uuid
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query rating records: %w", err)
	}
	defer rows.Close()

	var records []RatingRecord
	for rows.Next() {
		var rec RatingRecord
		err := rows.Scan(&rec.UserID, &rec.Rating, &rec.ContestsPlayed, &rec.RatingReachedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rating record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rating records: %w", err)
	}
	return records, nil
}

// Save applies a rating change transactionally. The history insert is the
// idempotency guard: a (user, contest) pair that already exists means the
// change was applied before and the whole save is a no-op.
func (r *pgRatingRepo) Save(ctx context.Context, rec RatingRecord) error {
	if len(rec.History) == 0 {
		return fmt.Errorf("rating record save requires a history entry")
	}
	newest := rec.History[len(rec.History)-1]

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		INSERT INTO rating_history (user_uuid, contest_uuid, delta, resulting_rating, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_uuid, contest_uuid) DO NOTHING
	`, rec.UserID, newest.ContestID, newest.Delta, newest.ResultingRating, newest.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert rating history entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// already applied for this contest
		return nil
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO rating_records (user_uuid, rating, contests_played, rating_reached_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_uuid) DO UPDATE
		SET rating = EXCLUDED.rating,
			contests_played = EXCLUDED.contests_played,
			rating_reached_at = EXCLUDED.rating_reached_at
	`, rec.UserID, rec.Rating, rec.ContestsPlayed, rec.RatingReachedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert rating record: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit rating change: %w", err)
	}
	return nil
}
