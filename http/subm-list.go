package http

import (
	"net/http"
	"strconv"

	"github.com/algoarena/backend/httpjson"
)

const maxSubmListLimit = 200

func (s *HttpServer) listSubmissions(w http.ResponseWriter, r *http.Request) {
	limit := 30
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxSubmListLimit {
		limit = maxSubmListLimit
	}

	offset := 0
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			offset = n
		}
	}

	subms, err := s.tracker.ListSubms(r.Context(), limit, offset)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	res := make([]submission, 0, len(subms))
	for _, subm := range subms {
		res = append(res, mapSubm(subm))
	}
	httpjson.WriteSuccessJson(w, res)
}
