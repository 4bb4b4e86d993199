package submsrvc

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type inMemRepo struct {
	mu    sync.RWMutex
	subms map[uuid.UUID]Submission
}

func NewInMemRepo() *inMemRepo {
	return &inMemRepo{
		subms: make(map[uuid.UUID]Submission),
	}
}

func (r *inMemRepo) Store(ctx context.Context, subm Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subms[subm.UUID] = cloneSubm(subm)
	return nil
}

func (r *inMemRepo) Update(ctx context.Context, subm Submission) error {
	return r.Store(ctx, subm)
}

func (r *inMemRepo) Get(ctx context.Context, id uuid.UUID) (*Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if subm, ok := r.subms[id]; ok {
		subm = cloneSubm(subm)
		return &subm, nil
	}
	return nil, nil
}

func (r *inMemRepo) List(ctx context.Context, limit int, offset int) ([]Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	subms := make([]Submission, 0, len(r.subms))
	for _, subm := range r.subms {
		subms = append(subms, cloneSubm(subm))
	}
	sort.Slice(subms, func(i, j int) bool {
		return subms[i].CreatedAt.After(subms[j].CreatedAt)
	})

	if offset >= len(subms) {
		return nil, nil
	}
	subms = subms[offset:]
	if limit > 0 && limit < len(subms) {
		subms = subms[:limit]
	}
	return subms, nil
}

func (r *inMemRepo) UserStats(ctx context.Context, since time.Time, problemIDs []string) ([]UserSubmStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var wanted map[string]bool
	if len(problemIDs) > 0 {
		wanted = make(map[string]bool, len(problemIDs))
		for _, id := range problemIDs {
			wanted[id] = true
		}
	}

	byUser := make(map[uuid.UUID]*UserSubmStats)
	solved := make(map[uuid.UUID]map[string]bool)
	for _, subm := range r.subms {
		if !since.IsZero() && subm.CreatedAt.Before(since) {
			continue
		}
		if wanted != nil && !wanted[subm.ProblemID] {
			continue
		}
		stats, ok := byUser[subm.UserID]
		if !ok {
			stats = &UserSubmStats{UserID: subm.UserID}
			byUser[subm.UserID] = stats
			solved[subm.UserID] = make(map[string]bool)
		}
		stats.TotalSubmissions++
		if subm.Accepted() {
			stats.AcceptedSubmissions++
			solved[subm.UserID][subm.ProblemID] = true
		}
		if subm.CreatedAt.After(stats.LastActive) {
			stats.LastActive = subm.CreatedAt
		}
	}

	res := make([]UserSubmStats, 0, len(byUser))
	for userID, stats := range byUser {
		stats.ProblemsSolved = len(solved[userID])
		res = append(res, *stats)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].UserID.String() < res[j].UserID.String()
	})
	return res, nil
}
