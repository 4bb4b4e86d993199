package ratingsrvc

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/algoarena/backend/conf"
	"github.com/google/uuid"
)

type Repo interface {
	// Get returns nil when the user has no rating record yet.
	Get(ctx context.Context, userID uuid.UUID) (*RatingRecord, error)
	// List returns every rating record, history omitted.
	List(ctx context.Context) ([]RatingRecord, error)
	// Save upserts the record; the last history entry is new. Saving the
	// same (user, contest) pair twice is a no-op, which makes contest
	// recomputation after a crash idempotent.
	Save(ctx context.Context, rec RatingRecord) error
}

type RatingSrvc struct {
	logger *slog.Logger
	cfg    conf.RatingConfig
	repo   Repo

	now func() time.Time
}

func NewRatingSrvc(cfg conf.RatingConfig, repo Repo) *RatingSrvc {
	return &RatingSrvc{
		logger: slog.Default().With("module", "rating"),
		cfg:    cfg,
		repo:   repo,
		now:    time.Now,
	}
}

// ApplyContestResults computes and persists rating changes for a closed
// contest. The caller guarantees it runs at most once per contest; the
// repo additionally ignores duplicate (user, contest) history entries so
// a crash-resume replay cannot double-apply.
func (s *RatingSrvc) ApplyContestResults(
	ctx context.Context,
	contestID uuid.UUID,
	field []Participant,
) ([]RatingChange, error) {
	changes := ComputeChanges(s.cfg, field)
	now := s.now()

	for i, change := range changes {
		prior := field[i]
		rec, err := s.repo.Get(ctx, change.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to load rating record: %w", err)
		}
		if rec == nil {
			rec = &RatingRecord{
				UserID: change.UserID,
				Rating: s.cfg.InitialRating,
			}
		}

		// the timestamp breaks leaderboard ties, so it only moves when
		// the rating value itself does
		if rec.Rating != change.NewRating {
			rec.Rating = change.NewRating
			rec.RatingReachedAt = now
		}
		rec.ContestsPlayed++
		rec.History = append(rec.History, RatingHistoryEntry{
			ContestID:       contestID,
			Delta:           change.Delta,
			ResultingRating: change.NewRating,
			CreatedAt:       now,
		})

		if err := s.repo.Save(ctx, *rec); err != nil {
			return nil, fmt.Errorf("failed to save rating record: %w", err)
		}

		s.logger.Info("rating applied",
			"user", change.UserID, "contest", contestID,
			"rank", prior.Rank, "delta", change.Delta, "rating", change.NewRating)
	}
	return changes, nil
}

// GetUserRating returns the user's rating record, defaulting to the
// initial rating for users who never played a rated contest.
func (s *RatingSrvc) GetUserRating(ctx context.Context, userID uuid.UUID) (*RatingRecord, error) {
	rec, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rating record: %w", err)
	}
	if rec == nil {
		return &RatingRecord{
			UserID: userID,
			Rating: s.cfg.InitialRating,
		}, nil
	}
	return rec, nil
}

// ListRatings exposes every rating record for leaderboard population.
func (s *RatingSrvc) ListRatings(ctx context.Context) ([]RatingRecord, error) {
	return s.repo.List(ctx)
}

// InitialRating is the rating assigned to users without a record.
func (s *RatingSrvc) InitialRating() int {
	return s.cfg.InitialRating
}
