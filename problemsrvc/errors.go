package problemsrvc

import (
	"net/http"

	"github.com/algoarena/backend/srvcerror"
)

const ErrCodeProblemNotFound = "problem_not_found"

func ErrProblemNotFound() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeProblemNotFound,
		"the requested problem was not found",
	).SetHttpStatusCode(http.StatusNotFound)
}
