package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/algoarena/backend/httpjson"
	"github.com/algoarena/backend/submsrvc"
)

func (s *HttpServer) getSubmission(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "submId"))
	if err != nil {
		s.handleError(w, r, submsrvc.ErrSubmissionNotFound())
		return
	}

	subm, err := s.tracker.GetSubm(r.Context(), id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	httpjson.WriteSuccessJson(w, mapSubm(*subm))
}
