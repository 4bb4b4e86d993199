package submsrvc

import (
	"fmt"
	"net/http"

	"github.com/algoarena/backend/srvcerror"
)

const ErrCodeRateLimitExceeded = "rate_limit_exceeded"

func ErrRateLimitExceeded() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeRateLimitExceeded,
		"too many submissions, please wait a minute",
	).SetHttpStatusCode(http.StatusTooManyRequests)
}

const ErrCodeSubmissionNotFound = "submission_not_found"

func ErrSubmissionNotFound() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeSubmissionNotFound,
		"the requested submission was not found",
	).SetHttpStatusCode(http.StatusNotFound)
}

const ErrCodeSubmissionTooLong = "submission_too_long"

func ErrSubmissionTooLong(maxKB int) *srvcerror.Error {
	return srvcerror.New(
		ErrCodeSubmissionTooLong,
		fmt.Sprintf("submission code is too long, the maximum is %d KB", maxKB),
	).SetHttpStatusCode(http.StatusBadRequest)
}

func ErrInternalSE() *srvcerror.Error {
	return srvcerror.ErrInternalSE()
}
