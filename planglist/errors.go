package planglist

import (
	"net/http"

	"github.com/algoarena/backend/srvcerror"
)

const ErrCodeInvalidProgLang = "invalid_programming_language"

func ErrInvalidProgLang() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeInvalidProgLang,
		"invalid programming language",
	).SetHttpStatusCode(http.StatusBadRequest)
}
