package http

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/algoarena/backend/httpjson"
	"github.com/algoarena/backend/submsrvc"
)

func (s *HttpServer) createSubmission(w http.ResponseWriter, r *http.Request) {
	type createSubmissionRequest struct {
		Code      string  `json:"code"`
		Language  string  `json:"language"`
		ProblemID string  `json:"problem_id"`
		ContestID *string `json:"contest_id,omitempty"`
	}

	var req createSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	userID, ok := userIDFromContext(r.Context())
	if !ok {
		s.handleError(w, r, errUnauthorized())
		return
	}

	var contestID *uuid.UUID
	if req.ContestID != nil {
		cid, err := uuid.Parse(*req.ContestID)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		contestID = &cid
	}

	subm, err := s.tracker.CreateSubmission(r.Context(), submsrvc.CreateSubmissionParams{
		UserID:    userID,
		ProblemID: req.ProblemID,
		ContestID: contestID,
		LangID:    req.Language,
		Code:      req.Code,
	})
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	httpjson.WriteSuccessJsonStatus(w, mapSubm(*subm), http.StatusCreated)
}
