package ratingsrvc

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

type inMemRepo struct {
	mu      sync.RWMutex
	records map[uuid.UUID]RatingRecord
}

func NewInMemRepo() *inMemRepo {
	return &inMemRepo{
		records: make(map[uuid.UUID]RatingRecord),
	}
}

func (r *inMemRepo) Get(ctx context.Context, userID uuid.UUID) (*RatingRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if rec, ok := r.records[userID]; ok {
		rec.History = append([]RatingHistoryEntry(nil), rec.History...)
		return &rec, nil
	}
	return nil, nil
}

func (r *inMemRepo) List(ctx context.Context) ([]RatingRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]RatingRecord, 0, len(r.records))
	for _, rec := range r.records {
		rec.History = nil
		res = append(res, rec)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].UserID.String() < res[j].UserID.String()
	})
	return res, nil
}

func (r *inMemRepo) Save(ctx context.Context, rec RatingRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(rec.History) > 0 {
		newest := rec.History[len(rec.History)-1]
		if existing, ok := r.records[rec.UserID]; ok {
			for _, e := range existing.History {
				if e.ContestID == newest.ContestID {
					// already applied for this contest
					return nil
				}
			}
		}
	}

	rec.History = append([]RatingHistoryEntry(nil), rec.History...)
	r.records[rec.UserID] = rec
	return nil
}
