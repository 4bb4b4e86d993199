package submsrvc

import (
	"context"
	"time"
)

var validNext = map[SubmState][]SubmState{
	StateCreated:    {StateSubmitted, StateFailed},
	StateSubmitted:  {StateProcessing, StateFailed},
	StateProcessing: {StateCompleted, StateFailed},
}

func canTransition(from SubmState, to SubmState) bool {
	for _, next := range validNext[from] {
		if next == to {
			return true
		}
	}
	return false
}

// transitionLocked advances the state machine. The caller holds ls.mu.
// Invalid transitions are logged and dropped rather than applied; the
// state machine never moves backward or skips a stage.
func (s *SubmTracker) transitionLocked(ls *liveSubm, to SubmState) {
	from := ls.subm.State
	if !canTransition(from, to) {
		s.logger.Error("invalid submission state transition ignored",
			"subm", ls.subm.UUID, "from", from, "to", to)
		return
	}
	ls.subm.State = to
	ls.subm.LastTransitionAt = s.now()
	s.logger.Info("submission state transition",
		"subm", ls.subm.UUID, "from", from, "to", to)

	if to.IsTerminal() {
		s.finalizeLocked(ls)
	}
}

// failLocked moves the submission to its terminal failed state with a
// user-visible reason. The caller holds ls.mu.
func (s *SubmTracker) failLocked(ls *liveSubm, reason string) {
	ls.subm.ErrorReason = &reason
	s.transitionLocked(ls, StateFailed)
}

// finalizeLocked persists the terminal submission, emits the finalized
// event and retires the in-flight entry. Late verdicts for this submission
// no longer find a live entry and are ignored.
func (s *SubmTracker) finalizeLocked(ls *liveSubm) {
	subm := cloneSubm(ls.subm)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.repo.Update(ctx, subm); err != nil {
		s.logger.Error("failed to persist finalized submission",
			"subm", subm.UUID, "error", err)
	}

	s.live.Delete(subm.UUID)
	s.broadcastFinalized(subm)
}
