package http

import (
	"net/http"
	"strconv"

	"github.com/algoarena/backend/httpjson"
	"github.com/algoarena/backend/lbsrvc"
)

func (s *HttpServer) getLeaderboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page := 1
	if v := q.Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	pageSize := 0
	if v := q.Get("page_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			pageSize = n
		}
	}

	filter := lbsrvc.Filter{
		TimeRange: lbsrvc.TimeRange(q.Get("time_range")),
		Category:  q.Get("category"),
	}

	res, err := s.lb.GetPage(r.Context(), page, pageSize, filter)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	httpjson.WriteSuccessJson(w, res)
}
