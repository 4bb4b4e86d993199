package lbsrvc

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type TimeRange string

const (
	TimeRangeAll   TimeRange = "all"
	TimeRangeWeek  TimeRange = "week"
	TimeRangeMonth TimeRange = "month"
)

// Filter subsets the ranking universe before ranks are assigned, so
// rank numbers always reflect the filtered population.
type Filter struct {
	TimeRange TimeRange
	Category  string
}

func (f Filter) normalized() Filter {
	if f.TimeRange == "" {
		f.TimeRange = TimeRangeAll
	}
	return f
}

func (f Filter) valid() bool {
	switch f.TimeRange {
	case TimeRangeAll, TimeRangeWeek, TimeRangeMonth:
		return true
	}
	return false
}

// key identifies the cached snapshot for this filter.
func (f Filter) key() string {
	return fmt.Sprintf("%s|%s", f.TimeRange, f.Category)
}

// Entry is one leaderboard row. Always recomputed from rating records
// and submission aggregates, never mutated in place.
type Entry struct {
	Rank             int       `json:"rank"`
	UserID           uuid.UUID `json:"user_id"`
	Rating           int       `json:"rating"`
	ProblemsSolved   int       `json:"problems_solved"`
	ContestsAttended int       `json:"contests_attended"`
	TotalSubmissions int       `json:"total_submissions"`
	AcceptanceRate   float64   `json:"acceptance_rate"`
	LastActive       time.Time `json:"last_active"`

	ratingReachedAt time.Time
}

type Page struct {
	Entries     []Entry   `json:"entries"`
	TotalCount  int       `json:"total_count"`
	PageNumber  int       `json:"page_number"`
	PageSize    int       `json:"page_size"`
	LastUpdated time.Time `json:"last_updated"`
}
