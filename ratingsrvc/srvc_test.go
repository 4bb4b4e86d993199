package ratingsrvc

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/algoarena/backend/conf"
)

func newTestSrvc(t *testing.T) *RatingSrvc {
	t.Helper()
	srvc := NewRatingSrvc(conf.Default().Rating, NewInMemRepo())
	srvc.now = func() time.Time {
		return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	}
	return srvc
}

func TestApplyContestResultsPersistsHistory(t *testing.T) {
	ctx := context.Background()
	srvc := newTestSrvc(t)
	contestID := uuid.Must(uuid.NewV7())

	field := equalField(20, 1500, 8)
	changes, err := srvc.ApplyContestResults(ctx, contestID, field)
	require.NoError(t, err)
	require.Len(t, changes, 20)

	rec, err := srvc.GetUserRating(ctx, field[0].UserID)
	require.NoError(t, err)
	require.Equal(t, 1524, rec.Rating)
	require.Equal(t, 1, rec.ContestsPlayed)
	require.Len(t, rec.History, 1)
	require.Equal(t, contestID, rec.History[0].ContestID)
	require.Equal(t, 24, rec.History[0].Delta)
	require.Equal(t, 1524, rec.History[0].ResultingRating)
}

func TestApplyContestResultsIsIdempotentPerContest(t *testing.T) {
	ctx := context.Background()
	srvc := newTestSrvc(t)
	contestID := uuid.Must(uuid.NewV7())
	field := equalField(4, 1500, 0)

	_, err := srvc.ApplyContestResults(ctx, contestID, field)
	require.NoError(t, err)

	// A crash-resume replay of the same contest must not move ratings a
	// second time.
	_, err = srvc.ApplyContestResults(ctx, contestID, field)
	require.NoError(t, err)

	rec, err := srvc.GetUserRating(ctx, field[0].UserID)
	require.NoError(t, err)
	require.Equal(t, 1, rec.ContestsPlayed)
	require.Len(t, rec.History, 1)
}

func TestSecondContestBuildsOnFirst(t *testing.T) {
	ctx := context.Background()
	srvc := newTestSrvc(t)
	field := equalField(2, 1500, 0)

	_, err := srvc.ApplyContestResults(ctx, uuid.Must(uuid.NewV7()), field)
	require.NoError(t, err)

	first, err := srvc.GetUserRating(ctx, field[0].UserID)
	require.NoError(t, err)

	// Same pairing again under a new contest: the prior ratings in the
	// field come from the coordinator, so feed the updated ones through.
	field[0].PriorRating = first.Rating
	field[0].PriorContests = first.ContestsPlayed
	second, err := srvc.GetUserRating(ctx, field[1].UserID)
	require.NoError(t, err)
	field[1].PriorRating = second.Rating
	field[1].PriorContests = second.ContestsPlayed

	_, err = srvc.ApplyContestResults(ctx, uuid.Must(uuid.NewV7()), field)
	require.NoError(t, err)

	rec, err := srvc.GetUserRating(ctx, field[0].UserID)
	require.NoError(t, err)
	require.Equal(t, 2, rec.ContestsPlayed)
	require.Len(t, rec.History, 2)
	require.Equal(t, rec.History[1].ResultingRating, rec.Rating)
}

func TestReachedAtMovesOnlyWithTheRating(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemRepo()
	firstAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	srvc := NewRatingSrvc(conf.Default().Rating, repo)
	srvc.now = func() time.Time { return firstAt }

	field := equalField(2, 1500, 0)
	_, err := srvc.ApplyContestResults(ctx, uuid.Must(uuid.NewV7()), field)
	require.NoError(t, err)

	rec, err := srvc.GetUserRating(ctx, field[0].UserID)
	require.NoError(t, err)
	require.Equal(t, firstAt, rec.RatingReachedAt)

	// A later contest whose deltas clamp to zero leaves the rating value
	// alone, so the tie-break timestamp must not move either.
	frozen := conf.Default().Rating
	frozen.MaxRatingChange = 0
	clamped := NewRatingSrvc(frozen, repo)
	clamped.now = func() time.Time { return firstAt.Add(24 * time.Hour) }

	field[0].PriorRating = rec.Rating
	field[0].PriorContests = rec.ContestsPlayed
	_, err = clamped.ApplyContestResults(ctx, uuid.Must(uuid.NewV7()), field)
	require.NoError(t, err)

	rec, err = srvc.GetUserRating(ctx, field[0].UserID)
	require.NoError(t, err)
	require.Equal(t, 2, rec.ContestsPlayed)
	require.Equal(t, firstAt, rec.RatingReachedAt,
		"an unchanged rating keeps its original reached-at time")
}

func TestGetUserRatingDefaultsForUnknownUser(t *testing.T) {
	ctx := context.Background()
	srvc := newTestSrvc(t)
	userID := uuid.Must(uuid.NewV7())

	rec, err := srvc.GetUserRating(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, userID, rec.UserID)
	require.Equal(t, 1500, rec.Rating)
	require.Equal(t, 0, rec.ContestsPlayed)
	require.Empty(t, rec.History)
}

func TestListRatingsCoversAllParticipants(t *testing.T) {
	ctx := context.Background()
	srvc := newTestSrvc(t)
	field := equalField(5, 1500, 0)

	_, err := srvc.ApplyContestResults(ctx, uuid.Must(uuid.NewV7()), field)
	require.NoError(t, err)

	records, err := srvc.ListRatings(ctx)
	require.NoError(t, err)
	require.Len(t, records, 5)
}
