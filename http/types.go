package http

import (
	"time"

	"github.com/algoarena/backend/contestsrvc"
	"github.com/algoarena/backend/ratingsrvc"
	"github.com/algoarena/backend/submsrvc"
)

type testcaseResult struct {
	Index  int    `json:"index"`
	Status string `json:"status"`
	CpuMs  int64  `json:"cpu_ms"`
	MemKiB int64  `json:"mem_kib"`
}

type submission struct {
	ID          string           `json:"id"`
	UserID      string           `json:"user_id"`
	ProblemID   string           `json:"problem_id"`
	ContestID   *string          `json:"contest_id,omitempty"`
	Language    string           `json:"language"`
	State       string           `json:"state"`
	Testcases   []testcaseResult `json:"testcases"`
	ErrorReason *string          `json:"error_reason,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

func mapSubm(s submsrvc.Submission) submission {
	res := submission{
		ID:          s.UUID.String(),
		UserID:      s.UserID.String(),
		ProblemID:   s.ProblemID,
		Language:    s.LangID,
		State:       string(s.State),
		Testcases:   make([]testcaseResult, 0, len(s.Testcases)),
		ErrorReason: s.ErrorReason,
		CreatedAt:   s.CreatedAt,
	}
	if s.ContestID != nil {
		cid := s.ContestID.String()
		res.ContestID = &cid
	}
	for _, tc := range s.Testcases {
		res.Testcases = append(res.Testcases, testcaseResult{
			Index:  tc.Index,
			Status: string(tc.Status),
			CpuMs:  tc.CpuMs,
			MemKiB: tc.MemKiB,
		})
	}
	return res
}

type contest struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	StartAt        time.Time `json:"start_at"`
	EndAt          time.Time `json:"end_at"`
	RatingComputed bool      `json:"rating_computed"`
}

func mapContest(c contestsrvc.Contest) contest {
	return contest{
		ID:             c.ID.String(),
		Name:           c.Name,
		StartAt:        c.StartAt,
		EndAt:          c.EndAt,
		RatingComputed: c.RatingComputed,
	}
}

type standing struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"user_id"`
	TotalPoints int    `json:"total_points"`
	Attempts    int    `json:"attempts"`
}

func mapStanding(s contestsrvc.Standing) standing {
	return standing{
		Rank:        s.Rank,
		UserID:      s.UserID.String(),
		TotalPoints: s.TotalPoints,
		Attempts:    s.Attempts,
	}
}

type ratingHistoryEntry struct {
	ContestID       string    `json:"contest_id"`
	Delta           int       `json:"delta"`
	ResultingRating int       `json:"resulting_rating"`
	CreatedAt       time.Time `json:"created_at"`
}

type userRating struct {
	UserID         string               `json:"user_id"`
	Rating         int                  `json:"rating"`
	ContestsPlayed int                  `json:"contests_played"`
	History        []ratingHistoryEntry `json:"history"`
}

func mapRating(rec ratingsrvc.RatingRecord) userRating {
	res := userRating{
		UserID:         rec.UserID.String(),
		Rating:         rec.Rating,
		ContestsPlayed: rec.ContestsPlayed,
		History:        make([]ratingHistoryEntry, 0, len(rec.History)),
	}
	for _, e := range rec.History {
		res.History = append(res.History, ratingHistoryEntry{
			ContestID:       e.ContestID.String(),
			Delta:           e.Delta,
			ResultingRating: e.ResultingRating,
			CreatedAt:       e.CreatedAt,
		})
	}
	return res
}
