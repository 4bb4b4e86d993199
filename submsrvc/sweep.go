package submsrvc

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// StartSweeping runs the stalled-submission sweep on a fixed period until
// the context is cancelled.
func (s *SubmTracker) StartSweeping(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.SweepInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepStalled(ctx)
		}
	}
}

// SweepStalled finds in-flight submissions that have not seen a judge
// event within the stall timeout and remediates them: re-dispatch while
// the retry budget lasts, terminal failure after. A verdict landing
// mid-sweep wins — the stall check runs under the per-submission lock, so
// a fresh lastEventAt makes the sweep skip that submission. Returns the
// ids it remediated.
func (s *SubmTracker) SweepStalled(ctx context.Context) []uuid.UUID {
	var remediated []uuid.UUID

	s.live.Range(func(id uuid.UUID, ls *liveSubm) bool {
		ls.mu.Lock()
		defer ls.mu.Unlock()

		if ls.subm.State.IsTerminal() {
			return true
		}
		if s.now().Sub(ls.lastEventAt) < s.cfg.StalledTimeout() {
			return true
		}

		if ls.subm.RetryCount >= s.cfg.MaxRetries {
			s.logger.Warn("stalled submission out of retries",
				"subm", id, "state", ls.subm.State)
			s.failLocked(ls, "submission stalled, retries exhausted")
			remediated = append(remediated, id)
			return true
		}

		// a stall counts against the retry budget like a dispatch failure
		ls.subm.RetryCount++
		s.logger.Warn("stalled submission, re-dispatching",
			"subm", id, "retry_count", ls.subm.RetryCount)
		s.resetForRetryLocked(ls)
		if err := s.dispatchLocked(ctx, ls); err != nil {
			s.logger.Warn("re-dispatch of stalled submission failed",
				"subm", id, "error", err)
			if ls.subm.RetryCount >= s.cfg.MaxRetries {
				s.failLocked(ls, "dispatch exhausted")
			}
		}
		remediated = append(remediated, id)
		return true
	})

	return remediated
}

// resetForRetryLocked restarts the judging round: the judge will report
// every testcase again under the same indices, so partial results from
// the stalled round are discarded. This is the one place the state moves
// back to submitted. The caller holds ls.mu.
func (s *SubmTracker) resetForRetryLocked(ls *liveSubm) {
	for i := range ls.subm.Testcases {
		ls.subm.Testcases[i] = TestcaseResult{Index: i}
	}
	if ls.subm.State == StateProcessing {
		ls.subm.State = StateSubmitted
		ls.subm.LastTransitionAt = s.now()
	}
	ls.lastEventAt = s.now()
}
