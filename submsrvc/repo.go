package submsrvc

import (
	"time"

	"github.com/google/uuid"
)

// UserSubmStats is the per-user submission aggregate that feeds the
// leaderboard: totals, acceptance and recency.
type UserSubmStats struct {
	UserID              uuid.UUID
	TotalSubmissions    int
	AcceptedSubmissions int
	ProblemsSolved      int // distinct problems with at least one accepted submission
	LastActive          time.Time
}
