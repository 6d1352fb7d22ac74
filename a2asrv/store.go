package a2asrv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/davidvonthenen/a2a-simple/a2a"
)

// ErrTaskNotFound signals that a task id is unknown to the store.
var ErrTaskNotFound = errors.New("task not found")

// TaskStore persists task snapshots between protocol calls so tasks/get and
// follow-up messages can observe prior state. Implementations must be safe
// for concurrent use.
type TaskStore interface {
	// Save stores a snapshot of the task, replacing any previous snapshot.
	Save(ctx context.Context, task *a2a.Task) error

	// Get returns the stored snapshot for the id or ErrTaskNotFound.
	Get(ctx context.Context, taskID string) (*a2a.Task, error)
}

// InMemoryTaskStore is a volatile TaskStore keeping snapshots in a process
// local map. Snapshots are cloned on both Save and Get so callers can mutate
// their copy freely.
type InMemoryTaskStore struct {
	mu    sync.RWMutex
	tasks map[string]*a2a.Task
}

// NewInMemoryTaskStore constructs an empty in-memory task store.
func NewInMemoryTaskStore() *InMemoryTaskStore {
	return &InMemoryTaskStore{tasks: make(map[string]*a2a.Task)}
}

// Save stores a clone of the task snapshot.
func (s *InMemoryTaskStore) Save(_ context.Context, task *a2a.Task) error {
	cloned, err := cloneTask(task)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[task.ID] = cloned

	return nil
}

// Get returns a clone of the stored snapshot or ErrTaskNotFound.
func (s *InMemoryTaskStore) Get(_ context.Context, taskID string) (*a2a.Task, error) {
	s.mu.RLock()
	task, ok := s.tasks[taskID]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("task %q: %w", taskID, ErrTaskNotFound)
	}

	return cloneTask(task)
}

// cloneTask deep copies a task through its wire representation. Tasks are
// small (a handful of messages and artifacts) so the round trip is cheap.
func cloneTask(task *a2a.Task) (*a2a.Task, error) {
	data, err := json.Marshal(task)
	if err != nil {
		return nil, fmt.Errorf("clone task %s: %w", task.ID, err)
	}

	var cloned a2a.Task
	if err := json.Unmarshal(data, &cloned); err != nil {
		return nil, fmt.Errorf("clone task %s: %w", task.ID, err)
	}

	return &cloned, nil
}

var _ TaskStore = (*InMemoryTaskStore)(nil)
