package evalsrvc

import "github.com/google/uuid"

// TestcaseStatus is the terminal per-testcase judgment reported by the judge.
type TestcaseStatus string

const (
	StatusAccepted      TestcaseStatus = "accepted"
	StatusWrongAnswer   TestcaseStatus = "wrong_answer"
	StatusTimeLimit     TestcaseStatus = "time_limit_exceeded"
	StatusMemoryLimit   TestcaseStatus = "memory_limit_exceeded"
	StatusRuntimeError  TestcaseStatus = "runtime_error"
	StatusCompileError  TestcaseStatus = "compile_error"
	StatusInternalError TestcaseStatus = "internal_error"
)

// IsTerminal reports whether the status is a final judgment for a testcase.
// Every status the judge currently emits is terminal; the method exists so
// a future partial/progress status does not silently complete submissions.
func (s TestcaseStatus) IsTerminal() bool {
	switch s {
	case StatusAccepted, StatusWrongAnswer, StatusTimeLimit,
		StatusMemoryLimit, StatusRuntimeError, StatusCompileError,
		StatusInternalError:
		return true
	}
	return false
}

// TestcaseVerdict is one judged testcase. Deliveries may arrive out of
// order and duplicated; consumers must be idempotent per (SubmID, Index).
type TestcaseVerdict struct {
	SubmID uuid.UUID
	Index  int
	Status TestcaseStatus
	Stdout string
	Stderr string
	CpuMs  int64
	MemKiB int64
}

// JudgeError is a fatal judge-side failure for the whole submission.
type JudgeError struct {
	SubmID  uuid.UUID
	Message string
}

// Listener consumes judge output. Implemented by the submission tracker.
type Listener interface {
	OnVerdict(v TestcaseVerdict)
	OnJudgeError(e JudgeError)
}
