package ratingsrvc

import (
	"time"

	"github.com/google/uuid"
)

// RatingRecord is a user's global rating state. Mutated only by the
// rating engine, exactly once per user per closed contest.
type RatingRecord struct {
	UserID          uuid.UUID
	Rating          int
	ContestsPlayed  int
	RatingReachedAt time.Time // when the current rating value was reached
	History         []RatingHistoryEntry
}

type RatingHistoryEntry struct {
	ContestID       uuid.UUID
	Delta           int
	ResultingRating int
	CreatedAt       time.Time
}

// Participant is one ranked contest finisher handed to the engine.
// Ranks are 1-based and unique; ties are broken by the coordinator
// before the field reaches the engine.
type Participant struct {
	UserID        uuid.UUID
	Rank          int
	PriorRating   int
	PriorContests int
}

// RatingChange is the engine's outcome for one participant.
type RatingChange struct {
	UserID        uuid.UUID
	Delta         int
	NewRating     int
	KFactor       float64
	ExpectedScore float64
	ActualScore   float64
}
