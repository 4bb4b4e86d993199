package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/algoarena/backend/contestsrvc"
	"github.com/algoarena/backend/httpjson"
)

func (s *HttpServer) createContest(w http.ResponseWriter, r *http.Request) {
	type createContestRequest struct {
		Name    string    `json:"name"`
		StartAt time.Time `json:"start_at"`
		EndAt   time.Time `json:"end_at"`
	}

	var req createContestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if req.Name == "" || !req.EndAt.After(req.StartAt) {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	res, err := s.contests.CreateContest(r.Context(), req.Name, req.StartAt, req.EndAt)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	httpjson.WriteSuccessJsonStatus(w, mapContest(*res), http.StatusCreated)
}

func (s *HttpServer) getContest(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "contestId"))
	if err != nil {
		s.handleError(w, r, contestsrvc.ErrContestNotFound())
		return
	}

	res, err := s.contests.GetContest(r.Context(), id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	httpjson.WriteSuccessJson(w, mapContest(*res))
}

func (s *HttpServer) listContests(w http.ResponseWriter, r *http.Request) {
	contests, err := s.contests.ListContests(r.Context())
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	res := make([]contest, 0, len(contests))
	for _, c := range contests {
		res = append(res, mapContest(c))
	}
	httpjson.WriteSuccessJson(w, res)
}

func (s *HttpServer) getContestStandings(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "contestId"))
	if err != nil {
		s.handleError(w, r, contestsrvc.ErrContestNotFound())
		return
	}

	standings, err := s.contests.Standings(r.Context(), id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	res := make([]standing, 0, len(standings))
	for _, st := range standings {
		res = append(res, mapStanding(st))
	}
	httpjson.WriteSuccessJson(w, res)
}

func (s *HttpServer) closeContest(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "contestId"))
	if err != nil {
		s.handleError(w, r, contestsrvc.ErrContestNotFound())
		return
	}

	type ratingChange struct {
		UserID    string `json:"user_id"`
		Delta     int    `json:"delta"`
		NewRating int    `json:"new_rating"`
	}

	changes, err := s.contests.CloseContest(r.Context(), id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	res := make([]ratingChange, 0, len(changes))
	for _, c := range changes {
		res = append(res, ratingChange{
			UserID:    c.UserID.String(),
			Delta:     c.Delta,
			NewRating: c.NewRating,
		})
	}
	httpjson.WriteSuccessJson(w, res)
}
