package session

import (
	"sync"

	"github.com/davidvonthenen/a2a-simple/model"
)

// Store persists per-context conversation history. Implementations must be
// safe for concurrent use.
type Store interface {
	// History returns the recorded turns for the context, oldest first.
	History(contextID string) ([]model.Content, error)

	// Append records additional turns at the end of the context's history.
	Append(contextID string, turns ...model.Content) error

	// Clear removes all recorded turns for the context.
	Clear(contextID string) error
}

// InMemoryStoreOptions configures optional InMemoryStore behavior.
type InMemoryStoreOptions struct {
	// MaxTurns bounds the number of retained turns per context. When the
	// bound is exceeded the oldest turns are discarded. Zero means unbounded.
	MaxTurns int
}

// InMemoryStore is a volatile Store implementation keeping transcripts in a
// process local map. It is safe for concurrent access and best suited for
// tests or ephemeral demo servers. Returned histories are cloned to prevent
// external mutation of internal state.
type InMemoryStore struct {
	mu       sync.RWMutex
	maxTurns int
	turns    map[string][]model.Content
}

// NewInMemoryStore constructs an empty in-memory history store.
func NewInMemoryStore(optFns ...func(o *InMemoryStoreOptions)) *InMemoryStore {
	opts := InMemoryStoreOptions{}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &InMemoryStore{
		maxTurns: opts.MaxTurns,
		turns:    make(map[string][]model.Content),
	}
}

// History returns a snapshot of the context's transcript, oldest first.
func (s *InMemoryStore) History(contextID string) ([]model.Content, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneTurns(s.turns[contextID]), nil
}

// Append records turns at the end of the context's transcript, trimming the
// oldest entries when a MaxTurns bound is configured.
func (s *InMemoryStore) Append(contextID string, turns ...model.Content) error {
	if len(turns) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	updated := append(s.turns[contextID], cloneTurns(turns)...)
	if s.maxTurns > 0 && len(updated) > s.maxTurns {
		updated = updated[len(updated)-s.maxTurns:]
	}
	s.turns[contextID] = updated

	return nil
}

// Clear removes the context's transcript entirely.
func (s *InMemoryStore) Clear(contextID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.turns, contextID)
	return nil
}

// cloneTurns copies the turn slice and each turn's part slice so callers can
// mutate their view without affecting the store.
func cloneTurns(turns []model.Content) []model.Content {
	if len(turns) == 0 {
		return nil
	}
	cloned := make([]model.Content, len(turns))
	for i, turn := range turns {
		parts := make([]model.Part, len(turn.Parts))
		copy(parts, turn.Parts)
		cloned[i] = model.Content{Role: turn.Role, Parts: parts}
	}
	return cloned
}

var _ Store = (*InMemoryStore)(nil)
