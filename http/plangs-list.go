package http

import (
	"net/http"

	"github.com/algoarena/backend/httpjson"
	"github.com/algoarena/backend/planglist"
)

func (s *HttpServer) listProgrammingLanguages(w http.ResponseWriter, r *http.Request) {
	type programmingLang struct {
		ID       string `json:"id"`
		FullName string `json:"full_name"`
	}

	langs := planglist.ListProgrammingLanguages()
	res := make([]programmingLang, 0, len(langs))
	for _, l := range langs {
		res = append(res, programmingLang{ID: l.ID, FullName: l.FullName})
	}
	httpjson.WriteSuccessJson(w, res)
}
