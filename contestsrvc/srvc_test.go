package contestsrvc

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/algoarena/backend/conf"
	"github.com/algoarena/backend/evalsrvc"
	"github.com/algoarena/backend/problemsrvc"
	"github.com/algoarena/backend/ratingsrvc"
	"github.com/algoarena/backend/srvcerror"
	"github.com/algoarena/backend/submsrvc"
)

var testStart = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func newTestCoordinator(t *testing.T) (*ScoringCoordinator, *inMemRepo) {
	t.Helper()
	repo := NewInMemRepo()
	problems := problemsrvc.NewInMemStore([]problemsrvc.Problem{
		{ID: "two-sum", Title: "Two Sum", Category: "arrays", MaxPoints: 100, CpuMs: 1000, MemKiB: 262144},
	})
	ratings := ratingsrvc.NewRatingSrvc(conf.Default().Rating, ratingsrvc.NewInMemRepo())
	coord := NewScoringCoordinator(repo, problems, ratings)
	coord.now = func() time.Time { return testStart.Add(3 * time.Hour) }
	return coord, repo
}

func openContest(t *testing.T, coord *ScoringCoordinator) *Contest {
	t.Helper()
	contest, err := coord.CreateContest(context.Background(), "weekly round", testStart, testStart.Add(2*time.Hour))
	require.NoError(t, err)
	return contest
}

// finalizedSubm builds a completed contest submission where the first
// `passed` of `total` testcases passed.
func finalizedSubm(userID uuid.UUID, contestID uuid.UUID, passed, total int, at time.Time) submsrvc.Submission {
	tcs := make([]submsrvc.TestcaseResult, 0, total)
	for i := 0; i < total; i++ {
		status := evalsrvc.StatusWrongAnswer
		if i < passed {
			status = evalsrvc.StatusAccepted
		}
		tcs = append(tcs, submsrvc.TestcaseResult{Index: i, Status: status})
	}
	return submsrvc.Submission{
		UUID:             uuid.Must(uuid.NewV7()),
		UserID:           userID,
		ProblemID:        "two-sum",
		ContestID:        &contestID,
		LangID:           "go1.22",
		State:            submsrvc.StateCompleted,
		Testcases:        tcs,
		CreatedAt:        at,
		LastTransitionAt: at,
	}
}

func errCode(t *testing.T, err error) string {
	t.Helper()
	var se *srvcerror.Error
	require.ErrorAs(t, err, &se)
	return se.ErrorCode()
}

func TestPointsFollowBestOfAttempts(t *testing.T) {
	ctx := context.Background()
	coord, repo := newTestCoordinator(t)
	contest := openContest(t, coord)
	user := uuid.Must(uuid.NewV7())

	// 3 of 5 passed scores 60 of 100 points
	first := finalizedSubm(user, contest.ID, 3, 5, testStart.Add(10*time.Minute))
	require.NoError(t, coord.HandleFinalized(ctx, first))

	// a later worse attempt, 9 of 20 = 45 points, must not lower the score
	worse := finalizedSubm(user, contest.ID, 9, 20, testStart.Add(20*time.Minute))
	require.NoError(t, coord.HandleFinalized(ctx, worse))

	scores, err := repo.ListScores(ctx, contest.ID)
	require.NoError(t, err)
	require.Len(t, scores, 1)
	require.Equal(t, 60, scores[0].Points)
	require.Equal(t, 2, scores[0].Attempts)
	require.Equal(t, testStart.Add(10*time.Minute), scores[0].LastImprovedAt)
}

func TestImprovedAttemptRaisesPointsAndTimestamp(t *testing.T) {
	ctx := context.Background()
	coord, repo := newTestCoordinator(t)
	contest := openContest(t, coord)
	user := uuid.Must(uuid.NewV7())

	require.NoError(t, coord.HandleFinalized(ctx,
		finalizedSubm(user, contest.ID, 2, 5, testStart.Add(10*time.Minute))))
	require.NoError(t, coord.HandleFinalized(ctx,
		finalizedSubm(user, contest.ID, 5, 5, testStart.Add(30*time.Minute))))

	scores, err := repo.ListScores(ctx, contest.ID)
	require.NoError(t, err)
	require.Len(t, scores, 1)
	require.Equal(t, 100, scores[0].Points)
	require.Equal(t, testStart.Add(30*time.Minute), scores[0].LastImprovedAt)
}

func TestNonContestSubmissionIgnored(t *testing.T) {
	ctx := context.Background()
	coord, repo := newTestCoordinator(t)
	contest := openContest(t, coord)

	subm := finalizedSubm(uuid.Must(uuid.NewV7()), contest.ID, 5, 5, testStart.Add(time.Minute))
	subm.ContestID = nil
	require.NoError(t, coord.HandleFinalized(ctx, subm))

	scores, err := repo.ListScores(ctx, contest.ID)
	require.NoError(t, err)
	require.Empty(t, scores)
}

func TestSubmissionOutsideWindowIgnored(t *testing.T) {
	ctx := context.Background()
	coord, repo := newTestCoordinator(t)
	contest := openContest(t, coord)

	late := finalizedSubm(uuid.Must(uuid.NewV7()), contest.ID, 5, 5, contest.EndAt.Add(time.Minute))
	require.NoError(t, coord.HandleFinalized(ctx, late))

	scores, err := repo.ListScores(ctx, contest.ID)
	require.NoError(t, err)
	require.Empty(t, scores)
}

func TestFailedSubmissionScoresZeroButCountsAttempt(t *testing.T) {
	ctx := context.Background()
	coord, repo := newTestCoordinator(t)
	contest := openContest(t, coord)
	user := uuid.Must(uuid.NewV7())

	failed := finalizedSubm(user, contest.ID, 0, 5, testStart.Add(time.Minute))
	failed.State = submsrvc.StateFailed
	require.NoError(t, coord.HandleFinalized(ctx, failed))

	scores, err := repo.ListScores(ctx, contest.ID)
	require.NoError(t, err)
	require.Len(t, scores, 1)
	require.Equal(t, 0, scores[0].Points)
	require.Equal(t, 1, scores[0].Attempts)
}

func TestStandingsOrderAndTieBreaks(t *testing.T) {
	ctx := context.Background()
	coord, _ := newTestCoordinator(t)
	contest := openContest(t, coord)

	leader := uuid.Must(uuid.NewV7())
	fastTied := uuid.Must(uuid.NewV7())
	slowTied := uuid.Must(uuid.NewV7())

	require.NoError(t, coord.HandleFinalized(ctx,
		finalizedSubm(leader, contest.ID, 5, 5, testStart.Add(40*time.Minute))))
	// same score, fastTied reached it earlier than slowTied
	require.NoError(t, coord.HandleFinalized(ctx,
		finalizedSubm(fastTied, contest.ID, 3, 5, testStart.Add(10*time.Minute))))
	require.NoError(t, coord.HandleFinalized(ctx,
		finalizedSubm(slowTied, contest.ID, 3, 5, testStart.Add(20*time.Minute))))

	standings, err := coord.Standings(ctx, contest.ID)
	require.NoError(t, err)
	require.Len(t, standings, 3)
	require.Equal(t, leader, standings[0].UserID)
	require.Equal(t, 1, standings[0].Rank)
	require.Equal(t, fastTied, standings[1].UserID)
	require.Equal(t, 2, standings[1].Rank)
	require.Equal(t, slowTied, standings[2].UserID)
	require.Equal(t, 3, standings[2].Rank)
}

func TestCloseContestAppliesRatings(t *testing.T) {
	ctx := context.Background()
	coord, _ := newTestCoordinator(t)
	contest := openContest(t, coord)

	winner := uuid.Must(uuid.NewV7())
	loser := uuid.Must(uuid.NewV7())
	require.NoError(t, coord.HandleFinalized(ctx,
		finalizedSubm(winner, contest.ID, 5, 5, testStart.Add(10*time.Minute))))
	require.NoError(t, coord.HandleFinalized(ctx,
		finalizedSubm(loser, contest.ID, 1, 5, testStart.Add(15*time.Minute))))

	changes, err := coord.CloseContest(ctx, contest.ID)
	require.NoError(t, err)
	require.Len(t, changes, 2)
	require.Equal(t, winner, changes[0].UserID)
	require.Greater(t, changes[0].Delta, 0)
	require.Less(t, changes[1].Delta, 0)

	stored, err := coord.GetContest(ctx, contest.ID)
	require.NoError(t, err)
	require.True(t, stored.RatingComputed)
}

func TestCloseContestBeforeEndRejected(t *testing.T) {
	ctx := context.Background()
	coord, _ := newTestCoordinator(t)
	contest := openContest(t, coord)
	coord.now = func() time.Time { return testStart.Add(time.Hour) }

	_, err := coord.CloseContest(ctx, contest.ID)
	require.Error(t, err)
	require.Equal(t, ErrCodeContestStillRunning, errCode(t, err))
}

func TestCloseUnknownContest(t *testing.T) {
	coord, _ := newTestCoordinator(t)
	_, err := coord.CloseContest(context.Background(), uuid.Must(uuid.NewV7()))
	require.Error(t, err)
	require.Equal(t, ErrCodeContestNotFound, errCode(t, err))
}

func TestConcurrentCloseHasExactlyOneWinner(t *testing.T) {
	ctx := context.Background()
	ratingRepo := ratingsrvc.NewInMemRepo()
	repo := NewInMemRepo()
	problems := problemsrvc.NewInMemStore([]problemsrvc.Problem{
		{ID: "two-sum", MaxPoints: 100},
	})
	ratings := ratingsrvc.NewRatingSrvc(conf.Default().Rating, ratingRepo)
	coord := NewScoringCoordinator(repo, problems, ratings)
	coord.now = func() time.Time { return testStart.Add(3 * time.Hour) }

	contest := openContest(t, coord)
	user := uuid.Must(uuid.NewV7())
	require.NoError(t, coord.HandleFinalized(ctx,
		finalizedSubm(user, contest.ID, 5, 5, testStart.Add(time.Minute))))

	const closers = 16
	var wg sync.WaitGroup
	wins := make(chan struct{}, closers)
	for i := 0; i < closers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := coord.CloseContest(ctx, contest.ID); err == nil {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	won := 0
	for range wins {
		won++
	}
	require.Equal(t, 1, won)

	rec, err := ratings.GetUserRating(ctx, user)
	require.NoError(t, err)
	require.Len(t, rec.History, 1)
}
