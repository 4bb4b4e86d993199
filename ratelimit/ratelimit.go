package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
)

// Limiter gates submission creation per user. TryAcquire returns true and
// records the attempt when the user still has capacity in the trailing
// window, false otherwise. Implementations are safe for concurrent use.
type Limiter interface {
	TryAcquire(ctx context.Context, userID uuid.UUID) (bool, error)
}

// MemLimiter is a process-local sliding-window limiter. State resets on
// restart; that is accepted policy, not a durability bug.
type MemLimiter struct {
	limit   int
	window  time.Duration
	windows *xsync.MapOf[uuid.UUID, *userWindow]

	now func() time.Time // swapped out in tests
}

type userWindow struct {
	mu     sync.Mutex
	stamps []time.Time
}

func NewMemLimiter(limit int, window time.Duration) *MemLimiter {
	return &MemLimiter{
		limit:   limit,
		window:  window,
		windows: xsync.NewMapOf[uuid.UUID, *userWindow](),
		now:     time.Now,
	}
}

func (l *MemLimiter) TryAcquire(ctx context.Context, userID uuid.UUID) (bool, error) {
	w, _ := l.windows.LoadOrStore(userID, &userWindow{})

	w.mu.Lock()
	defer w.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	// lazily prune timestamps that slid out of the window
	kept := w.stamps[:0]
	for _, t := range w.stamps {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	w.stamps = kept

	if len(w.stamps) >= l.limit {
		return false, nil
	}
	w.stamps = append(w.stamps, now)
	return true, nil
}
