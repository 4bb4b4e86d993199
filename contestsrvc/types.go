package contestsrvc

import (
	"time"

	"github.com/google/uuid"
)

type Contest struct {
	ID      uuid.UUID
	Name    string
	StartAt time.Time
	EndAt   time.Time

	// RatingComputed flips to true exactly once, when the first close
	// attempt wins the compare-and-set.
	RatingComputed bool
}

// ProblemScore is the best-of-attempts score for one (contest, user,
// problem) triple. Points only ever increase; Attempts counts every
// finalized submission for the triple.
type ProblemScore struct {
	ContestID uuid.UUID
	UserID    uuid.UUID
	ProblemID string

	Points         int
	Attempts       int
	LastImprovedAt time.Time
}

// Standing is one row of a contest's final ranking.
type Standing struct {
	Rank        int
	UserID      uuid.UUID
	TotalPoints int

	// LastImprovedAt is the latest moment any of the user's problem
	// scores improved, i.e. when they reached their final total.
	LastImprovedAt time.Time
	Attempts       int
}
