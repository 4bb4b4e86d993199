package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/algoarena/backend/httpjson"
	"github.com/algoarena/backend/srvcerror"
)

func (s *HttpServer) getUserRating(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		s.handleError(w, r, srvcerror.New(
			"invalid_user_id",
			"the user id is not a valid uuid",
		).SetHttpStatusCode(http.StatusBadRequest))
		return
	}

	rec, err := s.ratings.GetUserRating(r.Context(), id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	httpjson.WriteSuccessJson(w, mapRating(*rec))
}
