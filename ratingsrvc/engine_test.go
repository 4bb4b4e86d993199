package ratingsrvc

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/algoarena/backend/conf"
)

// equalField builds a ranked field of n participants who all share the
// same prior rating, so every pairwise expectation is exactly 0.5.
func equalField(n int, rating int, priorContests int) []Participant {
	field := make([]Participant, 0, n)
	for i := 0; i < n; i++ {
		field = append(field, Participant{
			UserID:        uuid.Must(uuid.NewV7()),
			Rank:          i + 1,
			PriorRating:   rating,
			PriorContests: priorContests,
		})
	}
	return field
}

func TestWinnerOfEqualFieldGainsWithBonus(t *testing.T) {
	cfg := conf.Default().Rating

	// 8 prior contests keeps the provisional K of 40. First of 20 against
	// equals means expected 0.5 and actual 1.0, so the raw delta is 20,
	// and rank 1 sits inside the top-10% tier: 20 * 1.2 = 24.
	field := equalField(20, 1500, 8)
	changes := ComputeChanges(cfg, field)
	require.Len(t, changes, 20)

	winner := changes[0]
	require.Equal(t, field[0].UserID, winner.UserID)
	require.Equal(t, 40.0, winner.KFactor)
	require.InDelta(t, 0.5, winner.ExpectedScore, 1e-9)
	require.Equal(t, 1.0, winner.ActualScore)
	require.Equal(t, 24, winner.Delta)
	require.Equal(t, 1524, winner.NewRating)
}

func TestBonusTiersAreCeilingInclusive(t *testing.T) {
	cfg := conf.Default().Rating
	field := equalField(20, 1500, 8)
	changes := ComputeChanges(cfg, field)

	// ceil(0.10*20)=2 and ceil(0.25*20)=5.
	// rank 2: actual 18/19, raw 40*(18/19-0.5), x1.2
	require.Equal(t, 21, changes[1].Delta)
	// rank 5: actual 15/19, x1.1
	require.Equal(t, 13, changes[4].Delta)
	// rank 6: actual 14/19, no bonus
	require.Equal(t, 9, changes[5].Delta)
	// rank 20: actual 0, no bonus, full loss
	require.Equal(t, -20, changes[19].Delta)
	require.Equal(t, 1480, changes[19].NewRating)
}

func TestKFactorTiers(t *testing.T) {
	cfg := conf.Default().Rating
	for _, tc := range []struct {
		priorContests int
		want          float64
	}{
		{priorContests: 0, want: 40},
		{priorContests: 5, want: 40},
		{priorContests: 9, want: 40},
		{priorContests: 10, want: 30},
		{priorContests: 15, want: 30},
		{priorContests: 29, want: 30},
		{priorContests: 30, want: 20},
		{priorContests: 35, want: 20},
	} {
		t.Run(fmt.Sprintf("%d-contests", tc.priorContests), func(t *testing.T) {
			require.Equal(t, tc.want, kFactor(cfg, tc.priorContests))
		})
	}
}

func TestDeltaClampedToConfiguredMax(t *testing.T) {
	cfg := conf.Default().Rating
	cfg.MaxRatingChange = 10

	field := equalField(2, 1500, 0)
	changes := ComputeChanges(cfg, field)

	// Unclamped the winner would gain 40*0.5*1.2 = 24 and the loser would
	// drop 20.
	require.Equal(t, 10, changes[0].Delta)
	require.Equal(t, -10, changes[1].Delta)
}

func TestRatingNeverDropsBelowZero(t *testing.T) {
	cfg := conf.Default().Rating
	field := equalField(2, 5, 0)
	changes := ComputeChanges(cfg, field)

	require.Equal(t, 0, changes[1].NewRating)
}

func TestFieldOfOne(t *testing.T) {
	cfg := conf.Default().Rating
	field := equalField(1, 1500, 0)
	changes := ComputeChanges(cfg, field)
	require.Len(t, changes, 1)

	// Nobody to compare against: expected defaults to 0.5, actual to 1.0.
	require.InDelta(t, 0.5, changes[0].ExpectedScore, 1e-9)
	require.Equal(t, 1.0, changes[0].ActualScore)
	require.Equal(t, 24, changes[0].Delta)
}

func TestEmptyFieldIsNoop(t *testing.T) {
	require.Nil(t, ComputeChanges(conf.Default().Rating, nil))
}

func TestHigherRatedOpponentRaisesUpsetReward(t *testing.T) {
	cfg := conf.Default().Rating
	underdog := Participant{UserID: uuid.Must(uuid.NewV7()), Rank: 1, PriorRating: 1200, PriorContests: 50}
	favorite := Participant{UserID: uuid.Must(uuid.NewV7()), Rank: 2, PriorRating: 1800, PriorContests: 50}
	changes := ComputeChanges(cfg, []Participant{underdog, favorite})

	// The underdog's expectation against a +600 opponent is well under
	// 0.5, so the upset pays more than a win over an equal would.
	require.Less(t, changes[0].ExpectedScore, 0.1)
	require.Greater(t, changes[0].Delta, 20)
	require.Less(t, changes[1].Delta, 0)
}
