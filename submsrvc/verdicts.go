package submsrvc

import (
	"github.com/algoarena/backend/evalsrvc"
)

// OnVerdict implements evalsrvc.Listener. Verdicts may arrive out of
// order and duplicated; recording is idempotent per testcase index and
// verdicts for terminal submissions are dropped.
func (s *SubmTracker) OnVerdict(v evalsrvc.TestcaseVerdict) {
	ls, ok := s.live.Load(v.SubmID)
	if !ok {
		s.logger.Info("verdict for unknown or finalized submission ignored",
			"subm", v.SubmID, "testcase", v.Index)
		return
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.subm.State.IsTerminal() {
		s.logger.Info("verdict for terminal submission ignored",
			"subm", v.SubmID, "testcase", v.Index)
		return
	}
	if v.Index < 0 || v.Index >= len(ls.subm.Testcases) {
		s.logger.Warn("verdict testcase index out of range",
			"subm", v.SubmID, "testcase", v.Index)
		return
	}

	ls.lastEventAt = s.now()

	// dispatch raced the judge: the queue accepted the request even though
	// the send reported a failure on our side
	if ls.subm.State == StateCreated {
		s.transitionLocked(ls, StateSubmitted)
	}
	if ls.subm.State == StateSubmitted {
		s.transitionLocked(ls, StateProcessing)
	}

	if !v.Status.IsTerminal() {
		return
	}
	if ls.subm.Testcases[v.Index].Status.IsTerminal() {
		s.logger.Info("duplicate verdict ignored",
			"subm", v.SubmID, "testcase", v.Index)
		return
	}

	ls.subm.Testcases[v.Index] = TestcaseResult{
		Index:  v.Index,
		Status: v.Status,
		CpuMs:  v.CpuMs,
		MemKiB: v.MemKiB,
		Stdout: v.Stdout,
		Stderr: v.Stderr,
	}

	if ls.subm.JudgedCount() == len(ls.subm.Testcases) {
		s.transitionLocked(ls, StateCompleted)
	}
}

// OnJudgeError implements evalsrvc.Listener. A judge-reported fatal error
// is unrecoverable: no retry, straight to failed.
func (s *SubmTracker) OnJudgeError(e evalsrvc.JudgeError) {
	ls, ok := s.live.Load(e.SubmID)
	if !ok {
		s.logger.Info("judge error for unknown or finalized submission ignored",
			"subm", e.SubmID)
		return
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.subm.State.IsTerminal() {
		return
	}
	s.failLocked(ls, "judge error: "+e.Message)
}
