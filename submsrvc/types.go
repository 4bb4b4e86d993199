package submsrvc

import (
	"time"

	"github.com/algoarena/backend/evalsrvc"
	"github.com/google/uuid"
)

// SubmState is the lifecycle stage of a submission. Transitions only move
// forward along created -> submitted -> processing -> completed|failed.
type SubmState string

const (
	StateCreated    SubmState = "created"
	StateSubmitted  SubmState = "submitted"
	StateProcessing SubmState = "processing"
	StateCompleted  SubmState = "completed"
	StateFailed     SubmState = "failed"
)

func (s SubmState) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed
}

// TestcaseResult holds the judged outcome of one testcase. Status is empty
// while the verdict is still pending.
type TestcaseResult struct {
	Index  int                     `json:"index"`
	Status evalsrvc.TestcaseStatus `json:"status"`
	CpuMs  int64                   `json:"cpu_ms"`
	MemKiB int64                   `json:"mem_kib"`
	Stdout string                  `json:"stdout"`
	Stderr string                  `json:"stderr"`
}

type Submission struct {
	UUID      uuid.UUID
	UserID    uuid.UUID
	ProblemID string
	ContestID *uuid.UUID
	LangID    string
	Code      string

	State       SubmState
	Testcases   []TestcaseResult
	RetryCount  int
	ErrorReason *string

	CreatedAt        time.Time
	LastTransitionAt time.Time
}

// JudgedCount returns how many testcases carry a terminal verdict.
func (s *Submission) JudgedCount() int {
	n := 0
	for _, tc := range s.Testcases {
		if tc.Status.IsTerminal() {
			n++
		}
	}
	return n
}

// AcceptedCount returns how many testcases the submission passed.
func (s *Submission) AcceptedCount() int {
	n := 0
	for _, tc := range s.Testcases {
		if tc.Status == evalsrvc.StatusAccepted {
			n++
		}
	}
	return n
}

// Accepted reports whether every testcase passed.
func (s *Submission) Accepted() bool {
	return s.State == StateCompleted &&
		len(s.Testcases) > 0 &&
		s.AcceptedCount() == len(s.Testcases)
}

// Finalized is emitted exactly once per submission, on its terminal
// transition. Consumed by the contest scoring coordinator and the
// leaderboard cache.
type Finalized struct {
	Subm Submission
}
