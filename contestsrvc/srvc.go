package contestsrvc

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/algoarena/backend/problemsrvc"
	"github.com/algoarena/backend/ratingsrvc"
	"github.com/algoarena/backend/submsrvc"
)

type Repo interface {
	StoreContest(ctx context.Context, contest Contest) error
	// GetContest returns nil when the contest does not exist.
	GetContest(ctx context.Context, id uuid.UUID) (*Contest, error)
	ListContests(ctx context.Context) ([]Contest, error)
	ApplyScore(ctx context.Context, attempt ProblemScore) error
	ListScores(ctx context.Context, contestID uuid.UUID) ([]ProblemScore, error)
	// MarkRatingComputed returns true for exactly one caller per contest.
	MarkRatingComputed(ctx context.Context, contestID uuid.UUID) (bool, error)
	ResetRatingComputed(ctx context.Context, contestID uuid.UUID) error
}

type ratingApplier interface {
	ApplyContestResults(ctx context.Context, contestID uuid.UUID,
		field []ratingsrvc.Participant) ([]ratingsrvc.RatingChange, error)
	GetUserRating(ctx context.Context, userID uuid.UUID) (*ratingsrvc.RatingRecord, error)
}

// ScoringCoordinator consumes finalized submissions, keeps per-problem
// contest scores current, and drives the one-shot rating computation
// when a contest closes.
type ScoringCoordinator struct {
	logger   *slog.Logger
	repo     Repo
	problems problemsrvc.Store
	ratings  ratingApplier

	// onChange fires after any score or rating write, wired to the
	// leaderboard refresh batcher. May be nil in tests.
	onChange func()

	now func() time.Time
}

func NewScoringCoordinator(
	repo Repo,
	problems problemsrvc.Store,
	ratings ratingApplier,
) *ScoringCoordinator {
	return &ScoringCoordinator{
		logger:   slog.Default().With("module", "contest"),
		repo:     repo,
		problems: problems,
		ratings:  ratings,
		now:      time.Now,
	}
}

// SetChangeHook registers the callback fired after every scoring or
// rating write.
func (c *ScoringCoordinator) SetChangeHook(fn func()) {
	c.onChange = fn
}

func (c *ScoringCoordinator) CreateContest(ctx context.Context, name string, startAt, endAt time.Time) (*Contest, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate contest id: %w", err)
	}
	contest := Contest{ID: id, Name: name, StartAt: startAt, EndAt: endAt}
	if err := c.repo.StoreContest(ctx, contest); err != nil {
		return nil, err
	}
	c.logger.Info("contest created", "contest", id, "name", name, "ends", endAt)
	return &contest, nil
}

func (c *ScoringCoordinator) GetContest(ctx context.Context, id uuid.UUID) (*Contest, error) {
	contest, err := c.repo.GetContest(ctx, id)
	if err != nil {
		return nil, err
	}
	if contest == nil {
		return nil, ErrContestNotFound()
	}
	return contest, nil
}

func (c *ScoringCoordinator) ListContests(ctx context.Context) ([]Contest, error) {
	return c.repo.ListContests(ctx)
}

// Run consumes the tracker's finalized-submission stream until the
// context is cancelled.
func (c *ScoringCoordinator) Run(ctx context.Context, events <-chan submsrvc.Finalized) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := c.HandleFinalized(ctx, ev.Subm); err != nil {
				c.logger.Error("failed to score finalized submission",
					"subm", ev.Subm.UUID, "error", err)
			}
		}
	}
}

// HandleFinalized scores one finalized submission. Submissions outside
// any contest, or landing after the contest window, are ignored.
func (c *ScoringCoordinator) HandleFinalized(ctx context.Context, subm submsrvc.Submission) error {
	if subm.ContestID == nil {
		return nil
	}
	contestID := *subm.ContestID

	contest, err := c.repo.GetContest(ctx, contestID)
	if err != nil {
		return err
	}
	if contest == nil {
		c.logger.Warn("finalized submission references unknown contest",
			"subm", subm.UUID, "contest", contestID)
		return nil
	}
	if subm.CreatedAt.Before(contest.StartAt) || subm.CreatedAt.After(contest.EndAt) {
		c.logger.Warn("submission outside contest window ignored",
			"subm", subm.UUID, "contest", contestID)
		return nil
	}

	points, err := c.attemptPoints(ctx, subm)
	if err != nil {
		return err
	}

	err = c.repo.ApplyScore(ctx, ProblemScore{
		ContestID:      contestID,
		UserID:         subm.UserID,
		ProblemID:      subm.ProblemID,
		Points:         points,
		LastImprovedAt: subm.LastTransitionAt,
	})
	if err != nil {
		return err
	}

	c.logger.Info("contest score applied",
		"contest", contestID, "user", subm.UserID,
		"problem", subm.ProblemID, "points", points)
	c.notifyChange()
	return nil
}

// attemptPoints scores one attempt as the passed fraction of testcases
// times the problem's maximum, rounded down. Failed submissions score
// zero but still count as an attempt.
func (c *ScoringCoordinator) attemptPoints(ctx context.Context, subm submsrvc.Submission) (int, error) {
	if subm.State != submsrvc.StateCompleted || len(subm.Testcases) == 0 {
		return 0, nil
	}
	prob, err := c.problems.Get(ctx, subm.ProblemID)
	if err != nil {
		return 0, fmt.Errorf("failed to load problem for scoring: %w", err)
	}
	passed := subm.AcceptedCount()
	return passed * prob.MaxPoints / len(subm.Testcases), nil
}

// Standings returns the contest's current ranking. Ordering is total
// points descending, then earliest time the final total was reached,
// then fewer attempts, then user id as the deterministic last resort.
func (c *ScoringCoordinator) Standings(ctx context.Context, contestID uuid.UUID) ([]Standing, error) {
	scores, err := c.repo.ListScores(ctx, contestID)
	if err != nil {
		return nil, err
	}

	byUser := make(map[uuid.UUID]*Standing)
	for _, s := range scores {
		st, ok := byUser[s.UserID]
		if !ok {
			st = &Standing{UserID: s.UserID}
			byUser[s.UserID] = st
		}
		st.TotalPoints += s.Points
		st.Attempts += s.Attempts
		if s.LastImprovedAt.After(st.LastImprovedAt) {
			st.LastImprovedAt = s.LastImprovedAt
		}
	}

	standings := make([]Standing, 0, len(byUser))
	for _, st := range byUser {
		standings = append(standings, *st)
	}
	sort.Slice(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.TotalPoints != b.TotalPoints {
			return a.TotalPoints > b.TotalPoints
		}
		if !a.LastImprovedAt.Equal(b.LastImprovedAt) {
			return a.LastImprovedAt.Before(b.LastImprovedAt)
		}
		if a.Attempts != b.Attempts {
			return a.Attempts < b.Attempts
		}
		return a.UserID.String() < b.UserID.String()
	})
	for i := range standings {
		standings[i].Rank = i + 1
	}
	return standings, nil
}

// CloseContest computes final standings and applies rating changes.
// Exactly one concurrent caller wins the flag compare-and-set; the rest
// get ErrContestAlreadyClosed.
func (c *ScoringCoordinator) CloseContest(ctx context.Context, contestID uuid.UUID) ([]ratingsrvc.RatingChange, error) {
	contest, err := c.repo.GetContest(ctx, contestID)
	if err != nil {
		return nil, err
	}
	if contest == nil {
		return nil, ErrContestNotFound()
	}
	if c.now().Before(contest.EndAt) {
		return nil, ErrContestStillRunning()
	}

	won, err := c.repo.MarkRatingComputed(ctx, contestID)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, ErrContestAlreadyClosed()
	}

	changes, err := c.applyRatings(ctx, contestID)
	if err != nil {
		// reopen the flag so a later close can retry; the rating repo
		// ignores duplicate (user, contest) writes, which makes the
		// partial first run harmless
		if resetErr := c.repo.ResetRatingComputed(ctx, contestID); resetErr != nil {
			c.logger.Error("failed to reopen contest after rating failure",
				"contest", contestID, "error", resetErr)
		}
		return nil, err
	}

	c.logger.Info("contest closed", "contest", contestID, "participants", len(changes))
	c.notifyChange()
	return changes, nil
}

func (c *ScoringCoordinator) applyRatings(ctx context.Context, contestID uuid.UUID) ([]ratingsrvc.RatingChange, error) {
	standings, err := c.Standings(ctx, contestID)
	if err != nil {
		return nil, err
	}

	field := make([]ratingsrvc.Participant, 0, len(standings))
	for _, st := range standings {
		rec, err := c.ratings.GetUserRating(ctx, st.UserID)
		if err != nil {
			return nil, err
		}
		field = append(field, ratingsrvc.Participant{
			UserID:        st.UserID,
			Rank:          st.Rank,
			PriorRating:   rec.Rating,
			PriorContests: rec.ContestsPlayed,
		})
	}

	return c.ratings.ApplyContestResults(ctx, contestID, field)
}

func (c *ScoringCoordinator) notifyChange() {
	if c.onChange != nil {
		c.onChange()
	}
}
