package problemsrvc

import (
	"context"
	"sync"
)

// Problem is the subset of the problem record the scoring engine needs:
// judge limits, testcase references and contest point worth. Problem
// authoring lives elsewhere; this service only reads.
type Problem struct {
	ID        string // short id, e.g. "two-sum"
	Title     string
	Category  string
	MaxPoints int
	CpuMs     int
	MemKiB    int
	Tests     []TestRef
}

// TestRef points at one testcase. Small tests carry content inline;
// larger ones are content-addressed blobs in the test file store.
type TestRef struct {
	InSha256   string
	AnsSha256  string
	InContent  *string
	AnsContent *string
}

type Store interface {
	Get(ctx context.Context, id string) (*Problem, error)
	List(ctx context.Context) ([]Problem, error)
}

type inMemStore struct {
	mu       sync.RWMutex
	problems map[string]Problem
}

func NewInMemStore(problems []Problem) Store {
	m := make(map[string]Problem, len(problems))
	for _, p := range problems {
		m[p.ID] = p
	}
	return &inMemStore{problems: m}
}

func (s *inMemStore) Get(ctx context.Context, id string) (*Problem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.problems[id]; ok {
		return &p, nil
	}
	return nil, ErrProblemNotFound()
}

func (s *inMemStore) List(ctx context.Context) ([]Problem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]Problem, 0, len(s.problems))
	for _, p := range s.problems {
		res = append(res, p)
	}
	return res, nil
}
