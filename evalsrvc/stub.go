package evalsrvc

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// StubJudge is an in-process judge used by tests and local development.
// It accepts dispatches and judges every testcase with a configurable
// status, delivering verdicts asynchronously like the real queue would.
type StubJudge struct {
	mu       sync.Mutex
	listener Listener

	// FailDispatches makes the next N Dispatch calls fail.
	FailDispatches int
	// Silent accepts dispatches but never delivers verdicts.
	Silent bool
	// Judge decides the status per testcase index; nil means all accepted.
	Judge func(req Request, idx int) TestcaseStatus
	// Delay between consecutive verdict deliveries.
	Delay time.Duration
}

func NewStubJudge() *StubJudge {
	return &StubJudge{}
}

func (j *StubJudge) SetListener(l Listener) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.listener = l
}

func (j *StubJudge) Dispatch(ctx context.Context, req Request) (string, error) {
	j.mu.Lock()
	if j.FailDispatches > 0 {
		j.FailDispatches--
		j.mu.Unlock()
		return "", ErrDispatchFailed()
	}
	silent := j.Silent
	judge := j.Judge
	delay := j.Delay
	listener := j.listener
	j.mu.Unlock()

	handle := uuid.NewString()
	if silent || listener == nil {
		return handle, nil
	}

	go func() {
		for i := range req.Tests {
			if delay > 0 {
				time.Sleep(delay)
			}
			status := StatusAccepted
			if judge != nil {
				status = judge(req, i)
			}
			listener.OnVerdict(TestcaseVerdict{
				SubmID: req.SubmID,
				Index:  i,
				Status: status,
			})
		}
	}()
	return handle, nil
}
