package submsrvc

import (
	"context"
	"fmt"
	"time"

	"github.com/algoarena/backend/evalsrvc"
	"github.com/algoarena/backend/planglist"
	"github.com/algoarena/backend/problemsrvc"
	"github.com/google/uuid"
)

type CreateSubmissionParams struct {
	UserID    uuid.UUID
	ProblemID string
	ContestID *uuid.UUID
	LangID    string
	Code      string
}

// CreateSubmission gates the request through the rate limiter, records the
// submission and hands it to the judge. A dispatch failure is not a user
// error: the submission stays in created state and the stalled sweep
// retries it until the retry budget runs out.
func (s *SubmTracker) CreateSubmission(ctx context.Context, p CreateSubmissionParams) (*Submission, error) {
	allowed, err := s.limiter.TryAcquire(ctx, p.UserID)
	if err != nil {
		// a broken limiter backend must not take submissions down with it
		s.logger.Warn("rate limiter check failed, allowing", "error", err)
		allowed = true
	}
	if !allowed {
		return nil, ErrRateLimitExceeded()
	}

	if len(p.Code) > s.cfg.MaxSubmCodeLengthKB*1024 {
		return nil, ErrSubmissionTooLong(s.cfg.MaxSubmCodeLengthKB)
	}
	if _, err := planglist.GetProgrammingLanguageById(p.LangID); err != nil {
		return nil, err
	}

	prob, err := s.problems.Get(ctx, p.ProblemID)
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID: %w", err)
	}

	now := s.now()
	testcases := make([]TestcaseResult, len(prob.Tests))
	for i := range testcases {
		testcases[i].Index = i
	}
	subm := Submission{
		UUID:             id,
		UserID:           p.UserID,
		ProblemID:        p.ProblemID,
		ContestID:        p.ContestID,
		LangID:           p.LangID,
		Code:             p.Code,
		State:            StateCreated,
		Testcases:        testcases,
		CreatedAt:        now,
		LastTransitionAt: now,
	}

	if err := s.repo.Store(ctx, subm); err != nil {
		return nil, ErrInternalSE().SetDebug(err)
	}

	ls := &liveSubm{subm: subm, prob: *prob, lastEventAt: now}
	s.live.Store(id, ls)

	ls.mu.Lock()
	if err := s.dispatchLocked(ctx, ls); err != nil {
		ls.subm.RetryCount++
		s.logger.Warn("judge dispatch failed",
			"subm", ls.subm.UUID, "retry_count", ls.subm.RetryCount, "error", err)
		if ls.subm.RetryCount >= s.cfg.MaxRetries {
			s.failLocked(ls, "dispatch exhausted")
		}
	}
	ls.mu.Unlock()

	res, err := s.GetSubm(ctx, id)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// dispatchLocked hands the submission to the judge. On success the
// submission advances to submitted; retry bookkeeping on failure is the
// caller's responsibility. The caller holds ls.mu.
func (s *SubmTracker) dispatchLocked(ctx context.Context, ls *liveSubm) error {
	if ls.subm.State.IsTerminal() {
		return nil
	}

	req := evalsrvc.Request{
		SubmID: ls.subm.UUID,
		Code:   ls.subm.Code,
		LangID: ls.subm.LangID,
		Tests:  s.evalReqTests(ctx, ls.prob),
		CpuMs:  ls.prob.CpuMs,
		MemKiB: ls.prob.MemKiB,
	}

	if _, err := s.judge.Dispatch(ctx, req); err != nil {
		return err
	}

	ls.lastEventAt = s.now()
	if ls.subm.State == StateCreated {
		s.transitionLocked(ls, StateSubmitted)
	}
	return nil
}

func (s *SubmTracker) evalReqTests(ctx context.Context, prob problemsrvc.Problem) []evalsrvc.TestFile {
	tests := make([]evalsrvc.TestFile, len(prob.Tests))
	for i, t := range prob.Tests {
		tests[i] = evalsrvc.TestFile{
			InSha256:   t.InSha256,
			AnsSha256:  t.AnsSha256,
			InContent:  t.InContent,
			AnsContent: t.AnsContent,
		}
		if s.tests == nil {
			continue
		}
		if t.InContent == nil && t.InSha256 != "" {
			url, err := s.tests.PresignedURL(ctx, t.InSha256, 10*time.Minute)
			if err != nil {
				s.logger.Error("failed to presign test input url", "error", err)
			} else {
				tests[i].InUrl = &url
			}
		}
		if t.AnsContent == nil && t.AnsSha256 != "" {
			url, err := s.tests.PresignedURL(ctx, t.AnsSha256, 10*time.Minute)
			if err != nil {
				s.logger.Error("failed to presign test answer url", "error", err)
			} else {
				tests[i].AnsUrl = &url
			}
		}
	}
	return tests
}
