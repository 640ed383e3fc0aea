package storage

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/lehigh-university-libraries/pubdatecheck/internal/report"
)

type RunStore struct {
	runs map[string]*report.Run
	mu   sync.RWMutex
}

func New() *RunStore {
	return &RunStore{
		runs: make(map[string]*report.Run),
	}
}

// Add stores a run under its ID, assigning one when it has none.
func (s *RunStore) Add(run *report.Run) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	s.runs[run.ID] = run
	return run.ID
}

func (s *RunStore) Get(id string) (*report.Run, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, exists := s.runs[id]
	return run, exists
}

// List returns all runs ordered by timestamp, then batch.
func (s *RunStore) List() []*report.Run {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*report.Run, 0, len(s.runs))
	for _, v := range s.runs {
		result = append(result, v)
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.Config.Timestamp != b.Config.Timestamp {
			return a.Config.Timestamp < b.Config.Timestamp
		}
		if a.Batch.ID != b.Batch.ID {
			return a.Batch.ID < b.Batch.ID
		}
		return a.ID < b.ID
	})
	return result
}

func (s *RunStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.runs, id)
}

func (s *RunStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs)
}
