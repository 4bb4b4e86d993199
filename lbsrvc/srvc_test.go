package lbsrvc

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/algoarena/backend/conf"
	"github.com/algoarena/backend/evalsrvc"
	"github.com/algoarena/backend/problemsrvc"
	"github.com/algoarena/backend/ratingsrvc"
	"github.com/algoarena/backend/submsrvc"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

type fixture struct {
	lb       *LbSrvc
	ratings  *ratingsrvc.RatingSrvc
	submRepo interface {
		Store(ctx context.Context, subm submsrvc.Submission) error
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	submRepo := submsrvc.NewInMemRepo()
	ratings := ratingsrvc.NewRatingSrvc(conf.Default().Rating, ratingsrvc.NewInMemRepo())
	problems := problemsrvc.NewInMemStore([]problemsrvc.Problem{
		{ID: "two-sum", Category: "arrays", MaxPoints: 100},
		{ID: "dijkstra", Category: "graphs", MaxPoints: 100},
	})
	lb := NewLbSrvc(conf.Default().Leaderboard, ratings, submRepo, problems)
	lb.now = func() time.Time { return testNow }
	return &fixture{lb: lb, ratings: ratings, submRepo: submRepo}
}

// storeAccepted records one fully accepted submission for the user.
func (f *fixture) storeAccepted(t *testing.T, userID uuid.UUID, problemID string, at time.Time) {
	t.Helper()
	err := f.submRepo.Store(context.Background(), submsrvc.Submission{
		UUID:      uuid.Must(uuid.NewV7()),
		UserID:    userID,
		ProblemID: problemID,
		LangID:    "go1.22",
		State:     submsrvc.StateCompleted,
		Testcases: []submsrvc.TestcaseResult{
			{Index: 0, Status: evalsrvc.StatusAccepted},
		},
		CreatedAt:        at,
		LastTransitionAt: at,
	})
	require.NoError(t, err)
}

func (f *fixture) storeRejected(t *testing.T, userID uuid.UUID, problemID string, at time.Time) {
	t.Helper()
	err := f.submRepo.Store(context.Background(), submsrvc.Submission{
		UUID:      uuid.Must(uuid.NewV7()),
		UserID:    userID,
		ProblemID: problemID,
		LangID:    "go1.22",
		State:     submsrvc.StateCompleted,
		Testcases: []submsrvc.TestcaseResult{
			{Index: 0, Status: evalsrvc.StatusWrongAnswer},
		},
		CreatedAt:        at,
		LastTransitionAt: at,
	})
	require.NoError(t, err)
}

// rate pushes the user through a single-participant contest so they end
// up with a persisted rating record.
func (f *fixture) rate(t *testing.T, userID uuid.UUID, priorRating int) int {
	t.Helper()
	changes, err := f.ratings.ApplyContestResults(context.Background(), uuid.Must(uuid.NewV7()),
		[]ratingsrvc.Participant{{UserID: userID, Rank: 1, PriorRating: priorRating}})
	require.NoError(t, err)
	return changes[0].NewRating
}

func TestOrderingIsDeterministic(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	strong := uuid.Must(uuid.NewV7())
	weak := uuid.Must(uuid.NewV7())
	f.rate(t, strong, 1800)
	f.rate(t, weak, 1400)
	f.storeAccepted(t, strong, "two-sum", testNow.Add(-time.Hour))
	f.storeAccepted(t, weak, "two-sum", testNow.Add(-time.Hour))

	page, err := f.lb.GetPage(ctx, 1, 10, Filter{})
	require.NoError(t, err)
	require.Len(t, page.Entries, 2)
	require.Equal(t, strong, page.Entries[0].UserID)
	require.Equal(t, 1, page.Entries[0].Rank)
	require.Equal(t, weak, page.Entries[1].UserID)
	require.Equal(t, 2, page.Entries[1].Rank)
}

func TestProblemsSolvedBreaksRatingTie(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	solver := uuid.Must(uuid.NewV7())
	idler := uuid.Must(uuid.NewV7())
	f.storeAccepted(t, solver, "two-sum", testNow.Add(-time.Hour))
	f.storeAccepted(t, solver, "dijkstra", testNow.Add(-time.Hour))
	f.storeAccepted(t, idler, "two-sum", testNow.Add(-time.Hour))

	// both sit at the initial rating, so problems solved decides
	page, err := f.lb.GetPage(ctx, 1, 10, Filter{})
	require.NoError(t, err)
	require.Len(t, page.Entries, 2)
	require.Equal(t, solver, page.Entries[0].UserID)
	require.Equal(t, 2, page.Entries[0].ProblemsSolved)
}

func TestAggregatesOnEntries(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	user := uuid.Must(uuid.NewV7())
	f.storeAccepted(t, user, "two-sum", testNow.Add(-2*time.Hour))
	f.storeRejected(t, user, "dijkstra", testNow.Add(-time.Hour))

	page, err := f.lb.GetPage(ctx, 1, 10, Filter{})
	require.NoError(t, err)
	require.Len(t, page.Entries, 1)
	e := page.Entries[0]
	require.Equal(t, 2, e.TotalSubmissions)
	require.Equal(t, 1, e.ProblemsSolved)
	require.InDelta(t, 0.5, e.AcceptanceRate, 1e-9)
	require.Equal(t, testNow.Add(-time.Hour), e.LastActive)
}

func TestPagination(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for i := 0; i < 5; i++ {
		f.storeAccepted(t, uuid.Must(uuid.NewV7()), "two-sum", testNow.Add(-time.Hour))
	}

	first, err := f.lb.GetPage(ctx, 1, 2, Filter{})
	require.NoError(t, err)
	require.Len(t, first.Entries, 2)
	require.Equal(t, 5, first.TotalCount)
	require.Equal(t, 1, first.Entries[0].Rank)
	require.Equal(t, 2, first.Entries[1].Rank)

	last, err := f.lb.GetPage(ctx, 3, 2, Filter{})
	require.NoError(t, err)
	require.Len(t, last.Entries, 1)
	require.Equal(t, 5, last.Entries[0].Rank)

	beyond, err := f.lb.GetPage(ctx, 9, 2, Filter{})
	require.NoError(t, err)
	require.Empty(t, beyond.Entries)
	require.Equal(t, 5, beyond.TotalCount)
}

func TestPageSizeClampedToMax(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	page, err := f.lb.GetPage(ctx, 1, 100000, Filter{})
	require.NoError(t, err)
	require.Equal(t, conf.Default().Leaderboard.MaxPageSize, page.PageSize)
}

func TestInvalidTimeRangeRejected(t *testing.T) {
	f := newFixture(t)
	_, err := f.lb.GetPage(context.Background(), 1, 10, Filter{TimeRange: "fortnight"})
	require.Error(t, err)
}

func TestCategoryFilterReranksPopulation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	grapher := uuid.Must(uuid.NewV7())
	arrayist := uuid.Must(uuid.NewV7())
	f.rate(t, arrayist, 1900)
	f.storeAccepted(t, arrayist, "two-sum", testNow.Add(-time.Hour))
	f.storeAccepted(t, grapher, "dijkstra", testNow.Add(-time.Hour))

	page, err := f.lb.GetPage(ctx, 1, 10, Filter{Category: "graphs"})
	require.NoError(t, err)
	require.Len(t, page.Entries, 1)
	// rank reflects the filtered population, not the global ladder
	require.Equal(t, grapher, page.Entries[0].UserID)
	require.Equal(t, 1, page.Entries[0].Rank)
}

func TestUnknownCategoryYieldsEmptyBoard(t *testing.T) {
	f := newFixture(t)
	f.storeAccepted(t, uuid.Must(uuid.NewV7()), "two-sum", testNow.Add(-time.Hour))

	page, err := f.lb.GetPage(context.Background(), 1, 10, Filter{Category: "geometry"})
	require.NoError(t, err)
	require.Empty(t, page.Entries)
	require.Equal(t, 0, page.TotalCount)
}

func TestWeekFilterExcludesOldActivity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	recent := uuid.Must(uuid.NewV7())
	dormant := uuid.Must(uuid.NewV7())
	f.storeAccepted(t, recent, "two-sum", testNow.Add(-24*time.Hour))
	f.storeAccepted(t, dormant, "two-sum", testNow.Add(-30*24*time.Hour))

	week, err := f.lb.GetPage(ctx, 1, 10, Filter{TimeRange: TimeRangeWeek})
	require.NoError(t, err)
	require.Len(t, week.Entries, 1)
	require.Equal(t, recent, week.Entries[0].UserID)

	all, err := f.lb.GetPage(ctx, 1, 10, Filter{})
	require.NoError(t, err)
	require.Len(t, all.Entries, 2)
}

func TestSnapshotServedUntilRefresh(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.storeAccepted(t, uuid.Must(uuid.NewV7()), "two-sum", testNow.Add(-time.Hour))
	page, err := f.lb.GetPage(ctx, 1, 10, Filter{})
	require.NoError(t, err)
	require.Equal(t, 1, page.TotalCount)

	// new data lands but the cached snapshot keeps serving
	f.storeAccepted(t, uuid.Must(uuid.NewV7()), "two-sum", testNow.Add(-time.Minute))
	stale, err := f.lb.GetPage(ctx, 1, 10, Filter{})
	require.NoError(t, err)
	require.Equal(t, 1, stale.TotalCount)

	f.lb.rebuild(ctx)
	fresh, err := f.lb.GetPage(ctx, 1, 10, Filter{})
	require.NoError(t, err)
	require.Equal(t, 2, fresh.TotalCount)
}

func TestRefreshSignalsCoalesce(t *testing.T) {
	f := newFixture(t)
	cfg := conf.Default().Leaderboard
	cfg.UpdateIntervalMs = 10
	f.lb.cfg = cfg

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go f.lb.StartRefreshing(ctx)

	f.storeAccepted(t, uuid.Must(uuid.NewV7()), "two-sum", testNow.Add(-time.Hour))
	for i := 0; i < 20; i++ {
		f.lb.RequestRefresh()
	}

	require.Eventually(t, func() bool {
		page, err := f.lb.GetPage(ctx, 1, 10, Filter{})
		return err == nil && page.TotalCount == 1
	}, time.Second, 10*time.Millisecond)
}
