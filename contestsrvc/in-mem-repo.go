package contestsrvc

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type scoreKey struct {
	contestID uuid.UUID
	userID    uuid.UUID
	problemID string
}

type inMemRepo struct {
	mu       sync.Mutex
	contests map[uuid.UUID]Contest
	scores   map[scoreKey]ProblemScore
}

func NewInMemRepo() *inMemRepo {
	return &inMemRepo{
		contests: make(map[uuid.UUID]Contest),
		scores:   make(map[scoreKey]ProblemScore),
	}
}

func (r *inMemRepo) StoreContest(ctx context.Context, contest Contest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contests[contest.ID] = contest
	return nil
}

func (r *inMemRepo) GetContest(ctx context.Context, id uuid.UUID) (*Contest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.contests[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (r *inMemRepo) ListContests(ctx context.Context) ([]Contest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make([]Contest, 0, len(r.contests))
	for _, c := range r.contests {
		res = append(res, c)
	}
	return res, nil
}

// ApplyScore merges one finalized attempt into the stored triple. Points
// follow best-of-attempts semantics and never decrease.
func (r *inMemRepo) ApplyScore(ctx context.Context, attempt ProblemScore) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := scoreKey{attempt.ContestID, attempt.UserID, attempt.ProblemID}
	existing, ok := r.scores[key]
	if !ok {
		attempt.Attempts = 1
		r.scores[key] = attempt
		return nil
	}

	existing.Attempts++
	if attempt.Points > existing.Points {
		existing.Points = attempt.Points
		existing.LastImprovedAt = attempt.LastImprovedAt
	}
	r.scores[key] = existing
	return nil
}

func (r *inMemRepo) ListScores(ctx context.Context, contestID uuid.UUID) ([]ProblemScore, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []ProblemScore
	for key, score := range r.scores {
		if key.contestID == contestID {
			res = append(res, score)
		}
	}
	return res, nil
}

// MarkRatingComputed is the compare-and-set on the contest's rating flag.
// It returns true for exactly one caller per contest.
func (r *inMemRepo) MarkRatingComputed(ctx context.Context, contestID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contests[contestID]
	if !ok {
		return false, ErrContestNotFound()
	}
	if c.RatingComputed {
		return false, nil
	}
	c.RatingComputed = true
	r.contests[contestID] = c
	return true, nil
}

func (r *inMemRepo) ResetRatingComputed(ctx context.Context, contestID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.contests[contestID]; ok {
		c.RatingComputed = false
		r.contests[contestID] = c
	}
	return nil
}
