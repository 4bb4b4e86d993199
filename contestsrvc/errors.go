package contestsrvc

import (
	"net/http"

	"github.com/algoarena/backend/srvcerror"
)

const ErrCodeContestNotFound = "contest_not_found"

func ErrContestNotFound() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeContestNotFound,
		"the requested contest was not found",
	).SetHttpStatusCode(http.StatusNotFound)
}

const ErrCodeContestAlreadyClosed = "contest_already_closed"

func ErrContestAlreadyClosed() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeContestAlreadyClosed,
		"contest ratings have already been computed",
	).SetHttpStatusCode(http.StatusConflict)
}

const ErrCodeContestStillRunning = "contest_still_running"

func ErrContestStillRunning() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeContestStillRunning,
		"the contest has not ended yet",
	).SetHttpStatusCode(http.StatusConflict)
}
