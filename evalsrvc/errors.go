package evalsrvc

import (
	"net/http"

	"github.com/algoarena/backend/srvcerror"
)

const ErrCodeDispatchFailed = "judge_dispatch_failed"

func ErrDispatchFailed() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeDispatchFailed,
		"failed to hand the submission to the judge",
	).SetHttpStatusCode(http.StatusServiceUnavailable)
}
