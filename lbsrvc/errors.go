package lbsrvc

import (
	"net/http"

	"github.com/algoarena/backend/srvcerror"
)

const ErrCodeInvalidTimeRange = "invalid_time_range"

func ErrInvalidTimeRange() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeInvalidTimeRange,
		"time range must be one of: all, week, month",
	).SetHttpStatusCode(http.StatusBadRequest)
}
