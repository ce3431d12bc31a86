// Package assessment drives the assessment lifecycle: evidence submission,
// scoring, low-confidence review, and re-scoring.
package assessment

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/toyinlola/complyscore/pkg/interfaces"
)

// ErrRunNotFound is returned when a run ID is not in the store.
var ErrRunNotFound = errors.New("assessment: run not found")

// Store keeps assessment runs in memory, keyed by run ID. Runs are retained
// for audit regardless of outcome; there is no delete.
type Store struct {
	mu   sync.RWMutex
	runs map[string]*interfaces.AssessmentRun
}

// NewStore creates an empty run store.
func NewStore() *Store {
	return &Store{runs: make(map[string]*interfaces.AssessmentRun)}
}

// Put inserts or replaces a run.
func (s *Store) Put(run *interfaces.AssessmentRun) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run
}

// Get returns the run with the given ID.
func (s *Store) Get(id string) (*interfaces.AssessmentRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, nil
}

// List returns all runs ordered by creation time, oldest first.
func (s *Store) List() []*interfaces.AssessmentRun {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*interfaces.AssessmentRun, 0, len(s.runs))
	for _, run := range s.runs {
		out = append(out, run)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// SaveFile writes a run as indented JSON so a review session can resume it
// later from disk.
func SaveFile(path string, run *interfaces.AssessmentRun) error {
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("assessment: encoding run %s: %w", run.ID, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("assessment: writing run state %s: %w", path, err)
	}
	return nil
}

// LoadFile reads a run previously written by SaveFile.
func LoadFile(path string) (*interfaces.AssessmentRun, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("assessment: reading run state %s: %w", path, err)
	}

	var run interfaces.AssessmentRun
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("assessment: parsing run state %s: %w", path, err)
	}
	if run.ID == "" {
		return nil, fmt.Errorf("assessment: run state %s has no run ID", path)
	}
	return &run, nil
}
