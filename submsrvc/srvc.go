package submsrvc

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/algoarena/backend/conf"
	"github.com/algoarena/backend/evalsrvc"
	"github.com/algoarena/backend/problemsrvc"
	"github.com/algoarena/backend/ratelimit"
	"github.com/algoarena/backend/testsrvc"
	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
)

type dispatcher interface {
	Dispatch(ctx context.Context, req evalsrvc.Request) (string, error)
}

type Repo interface {
	Store(ctx context.Context, subm Submission) error
	Update(ctx context.Context, subm Submission) error
	Get(ctx context.Context, id uuid.UUID) (*Submission, error)
	List(ctx context.Context, limit int, offset int) ([]Submission, error)
	UserStats(ctx context.Context, since time.Time, problemIDs []string) ([]UserSubmStats, error)
}

// SubmTracker owns the submission state machine. A submission lives in the
// in-flight map from creation until its terminal transition, at which point
// it is persisted, announced to finalized-event subscribers and dropped
// from the map. All transitions for one submission are serialized by the
// per-submission mutex; independent submissions proceed in parallel.
type SubmTracker struct {
	logger *slog.Logger
	cfg    conf.SubmissionsConfig

	judge    dispatcher
	problems problemsrvc.Store
	limiter  ratelimit.Limiter
	repo     Repo
	tests    *testsrvc.TestFileStore // nil means inline-only dispatch payloads

	live *xsync.MapOf[uuid.UUID, *liveSubm]

	finalizedSubs []chan Finalized
	listenerLock  sync.Mutex

	now func() time.Time // swapped out in tests
}

type liveSubm struct {
	mu          sync.Mutex
	subm        Submission
	prob        problemsrvc.Problem
	lastEventAt time.Time
}

func NewSubmTracker(
	cfg conf.SubmissionsConfig,
	judge dispatcher,
	problems problemsrvc.Store,
	limiter ratelimit.Limiter,
	repo Repo,
) *SubmTracker {
	return &SubmTracker{
		logger:   slog.Default().With("module", "subm"),
		cfg:      cfg,
		judge:    judge,
		problems: problems,
		limiter:  limiter,
		repo:     repo,
		live:     xsync.NewMapOf[uuid.UUID, *liveSubm](),
		now:      time.Now,
	}
}

// SetTestFileStore enables presigned-URL testcase references in dispatch
// payloads for testcases whose blobs live in S3.
func (s *SubmTracker) SetTestFileStore(tests *testsrvc.TestFileStore) {
	s.tests = tests
}

func (s *SubmTracker) GetSubm(ctx context.Context, id uuid.UUID) (*Submission, error) {
	if ls, ok := s.live.Load(id); ok {
		ls.mu.Lock()
		subm := cloneSubm(ls.subm)
		ls.mu.Unlock()
		return &subm, nil
	}
	subm, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if subm == nil {
		return nil, ErrSubmissionNotFound()
	}
	return subm, nil
}

func (s *SubmTracker) ListSubms(ctx context.Context, limit int, offset int) ([]Submission, error) {
	return s.repo.List(ctx, limit, offset)
}

// UserStats exposes per-user submission aggregates for leaderboard
// population. Zero `since` means all time; an empty problem set means
// every problem.
func (s *SubmTracker) UserStats(ctx context.Context, since time.Time, problemIDs []string) ([]UserSubmStats, error) {
	return s.repo.UserStats(ctx, since, problemIDs)
}

// ListenFinalized subscribes to terminal-transition events. The channel is
// buffered; a subscriber that stops draining loses events rather than
// blocking the tracker.
func (s *SubmTracker) ListenFinalized() <-chan Finalized {
	s.listenerLock.Lock()
	defer s.listenerLock.Unlock()
	ch := make(chan Finalized, 1024)
	s.finalizedSubs = append(s.finalizedSubs, ch)
	return ch
}

func (s *SubmTracker) broadcastFinalized(subm Submission) {
	s.listenerLock.Lock()
	defer s.listenerLock.Unlock()
	for _, ch := range s.finalizedSubs {
		select {
		case ch <- Finalized{Subm: subm}:
		default:
			s.logger.Warn("finalized subscriber is not keeping up, dropping event",
				"subm", subm.UUID)
		}
	}
}

func cloneSubm(subm Submission) Submission {
	tcs := make([]TestcaseResult, len(subm.Testcases))
	copy(tcs, subm.Testcases)
	subm.Testcases = tcs
	return subm
}
