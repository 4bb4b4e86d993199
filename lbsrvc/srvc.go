package lbsrvc

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/algoarena/backend/conf"
	"github.com/algoarena/backend/problemsrvc"
	"github.com/algoarena/backend/ratingsrvc"
	"github.com/algoarena/backend/submsrvc"
)

type ratingSource interface {
	ListRatings(ctx context.Context) ([]ratingsrvc.RatingRecord, error)
	InitialRating() int
}

type statsSource interface {
	UserStats(ctx context.Context, since time.Time, problemIDs []string) ([]submsrvc.UserSubmStats, error)
}

type snapshot struct {
	entries []Entry
	builtAt time.Time
}

// LbSrvc serves ranked leaderboard pages from cached snapshots. Readers
// never block on a refresh: they see the previous snapshot until the
// rebuilt one lands in the cache. Refresh signals within the update
// interval coalesce into one recomputation pass.
type LbSrvc struct {
	logger   *slog.Logger
	cfg      conf.LeaderboardConfig
	ratings  ratingSource
	stats    statsSource
	problems problemsrvc.Store

	snapshots *cache.Cache
	group     singleflight.Group
	refreshCh chan struct{}

	now func() time.Time
}

func NewLbSrvc(
	cfg conf.LeaderboardConfig,
	ratings ratingSource,
	stats statsSource,
	problems problemsrvc.Store,
) *LbSrvc {
	return &LbSrvc{
		logger:    slog.Default().With("module", "leaderboard"),
		cfg:       cfg,
		ratings:   ratings,
		stats:     stats,
		problems:  problems,
		snapshots: cache.New(cfg.CacheTTL(), cfg.CacheTTL()),
		refreshCh: make(chan struct{}, 1),
		now:       time.Now,
	}
}

// RequestRefresh signals that source data changed. Never blocks; the
// buffered channel doubles as the pending-refresh flag.
func (s *LbSrvc) RequestRefresh() {
	select {
	case s.refreshCh <- struct{}{}:
	default:
	}
}

// StartRefreshing runs the coalescing refresh loop until the context is
// cancelled. A burst of signals produces a single rebuild after the
// update interval has passed.
func (s *LbSrvc) StartRefreshing(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.refreshCh:
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.cfg.UpdateInterval()):
		}
		// drop signals that arrived during the coalescing window
		select {
		case <-s.refreshCh:
		default:
		}

		s.rebuild(ctx)
	}
}

// rebuild invalidates every cached snapshot and warms the default one.
// Filtered variants are rebuilt lazily on their next read.
func (s *LbSrvc) rebuild(ctx context.Context) {
	s.snapshots.Flush()
	if _, err := s.snapshotFor(ctx, Filter{TimeRange: TimeRangeAll}); err != nil {
		s.logger.Error("leaderboard rebuild failed", "error", err)
	}
}

// GetPage returns one page of the ranked leaderboard for the filter.
// Page numbers are 1-based; page sizes are clamped to the configured
// maximum.
func (s *LbSrvc) GetPage(ctx context.Context, pageNumber int, pageSize int, filter Filter) (*Page, error) {
	filter = filter.normalized()
	if !filter.valid() {
		return nil, ErrInvalidTimeRange()
	}
	if pageNumber < 1 {
		pageNumber = 1
	}
	if pageSize <= 0 {
		pageSize = s.cfg.DefaultPageSize
	}
	if pageSize > s.cfg.MaxPageSize {
		pageSize = s.cfg.MaxPageSize
	}

	snap, err := s.snapshotFor(ctx, filter)
	if err != nil {
		return nil, err
	}

	start := (pageNumber - 1) * pageSize
	end := start + pageSize
	if start > len(snap.entries) {
		start = len(snap.entries)
	}
	if end > len(snap.entries) {
		end = len(snap.entries)
	}

	return &Page{
		Entries:     snap.entries[start:end],
		TotalCount:  len(snap.entries),
		PageNumber:  pageNumber,
		PageSize:    pageSize,
		LastUpdated: snap.builtAt,
	}, nil
}

// snapshotFor returns the cached snapshot for the filter, building it
// at most once across concurrent callers.
func (s *LbSrvc) snapshotFor(ctx context.Context, filter Filter) (*snapshot, error) {
	key := filter.key()
	if v, ok := s.snapshots.Get(key); ok {
		return v.(*snapshot), nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		if v, ok := s.snapshots.Get(key); ok {
			return v, nil
		}
		snap, err := s.build(ctx, filter)
		if err != nil {
			return nil, err
		}
		s.snapshots.SetDefault(key, snap)
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*snapshot), nil
}

func (s *LbSrvc) build(ctx context.Context, filter Filter) (*snapshot, error) {
	now := s.now()

	var since time.Time
	switch filter.TimeRange {
	case TimeRangeWeek:
		since = now.Add(-7 * 24 * time.Hour)
	case TimeRangeMonth:
		since = now.Add(-30 * 24 * time.Hour)
	}

	var problemIDs []string
	if filter.Category != "" {
		probs, err := s.problems.List(ctx)
		if err != nil {
			return nil, err
		}
		for _, p := range probs {
			if p.Category == filter.Category {
				problemIDs = append(problemIDs, p.ID)
			}
		}
		if len(problemIDs) == 0 {
			return &snapshot{builtAt: now}, nil
		}
	}

	stats, err := s.stats.UserStats(ctx, since, problemIDs)
	if err != nil {
		return nil, err
	}
	records, err := s.ratings.ListRatings(ctx)
	if err != nil {
		return nil, err
	}

	recByUser := make(map[uuid.UUID]ratingsrvc.RatingRecord, len(records))
	for _, rec := range records {
		recByUser[rec.UserID] = rec
	}

	entries := make([]Entry, 0, len(stats))
	seen := make(map[uuid.UUID]bool, len(stats))
	for _, st := range stats {
		seen[st.UserID] = true
		entries = append(entries, s.entryFor(st, recByUser[st.UserID]))
	}

	// an unfiltered leaderboard also lists rated users who never
	// submitted in the current dataset; filtered views rank only the
	// users active inside the filter
	if filter.TimeRange == TimeRangeAll && filter.Category == "" {
		for _, rec := range records {
			if !seen[rec.UserID] {
				entries = append(entries, s.entryFor(submsrvc.UserSubmStats{UserID: rec.UserID}, rec))
			}
		}
	}

	sortEntries(entries)
	for i := range entries {
		entries[i].Rank = i + 1
	}

	s.logger.Debug("leaderboard snapshot built",
		"filter", filter.key(), "entries", len(entries))
	return &snapshot{entries: entries, builtAt: now}, nil
}

func (s *LbSrvc) entryFor(st submsrvc.UserSubmStats, rec ratingsrvc.RatingRecord) Entry {
	rating := rec.Rating
	if rec.UserID == uuid.Nil {
		rating = s.ratings.InitialRating()
	}
	acceptance := 0.0
	if st.TotalSubmissions > 0 {
		acceptance = float64(st.AcceptedSubmissions) / float64(st.TotalSubmissions)
	}
	return Entry{
		UserID:           st.UserID,
		Rating:           rating,
		ProblemsSolved:   st.ProblemsSolved,
		ContestsAttended: rec.ContestsPlayed,
		TotalSubmissions: st.TotalSubmissions,
		AcceptanceRate:   acceptance,
		LastActive:       st.LastActive,
		ratingReachedAt:  rec.RatingReachedAt,
	}
}

// sortEntries orders by rating, then problems solved, then who reached
// the rating first, then user id. Fully deterministic for any input.
func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Rating != b.Rating {
			return a.Rating > b.Rating
		}
		if a.ProblemsSolved != b.ProblemsSolved {
			return a.ProblemsSolved > b.ProblemsSolved
		}
		if !a.ratingReachedAt.Equal(b.ratingReachedAt) {
			// a zero timestamp means the rating was never earned in a
			// contest; earned ratings win the tie
			if a.ratingReachedAt.IsZero() {
				return false
			}
			if b.ratingReachedAt.IsZero() {
				return true
			}
			return a.ratingReachedAt.Before(b.ratingReachedAt)
		}
		return a.UserID.String() < b.UserID.String()
	})
}
