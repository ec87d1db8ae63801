package orchestrator

import (
	"sync"
	"time"

	"github.com/felixgeelhaar/planforge/pkg/planforge/types"
)

// State is the per-task-hash enhancement record. Phase statuses move
// pending → enhancing → {enhanced | enhancement_failed} and never back.
type State struct {
	TaskHash  string
	Plan      *types.Plan
	Analysis  *types.TaskAnalysis
	Phases    map[int]types.PhaseStatus
	Enhanced  map[int]*types.EnhancedPhase
	Progress  types.Progress
	Complete  bool
	CreatedAt time.Time
}

// newState registers a fresh record with every phase pending.
func newState(taskHash string, plan *types.Plan, analysis *types.TaskAnalysis, now time.Time) *State {
	phases := make(map[int]types.PhaseStatus, len(plan.Phases))
	for i := range plan.Phases {
		phases[i] = types.PhaseStatusPending
	}
	return &State{
		TaskHash:  taskHash,
		Plan:      plan,
		Analysis:  analysis,
		Phases:    phases,
		Enhanced:  make(map[int]*types.EnhancedPhase),
		Progress:  types.Progress{Current: 0, Total: len(plan.Phases)},
		CreatedAt: now,
	}
}

// snapshot copies the mutable fields so callers can read freely while
// background enhancement keeps mutating the original.
func (s *State) snapshot() *types.StatusSnapshot {
	phases := make(map[int]types.PhaseStatus, len(s.Phases))
	for i, status := range s.Phases {
		phases[i] = status
	}
	enhanced := make(map[int]*types.EnhancedPhase, len(s.Enhanced))
	for i, e := range s.Enhanced {
		enhanced[i] = e
	}
	return &types.StatusSnapshot{
		TaskHash:   s.TaskHash,
		Plan:       s.Plan,
		Analysis:   s.Analysis,
		Phases:     phases,
		Enhanced:   enhanced,
		Progress:   s.Progress,
		IsComplete: s.Complete,
	}
}

// StateStore holds enhancement state keyed by task hash. Implementations
// serialize all access; Update runs its mutation under the store lock.
type StateStore interface {
	Register(state *State)
	Update(taskHash string, mutate func(*State)) bool
	Snapshot(taskHash string) (*types.StatusSnapshot, bool)
	Sweep(maxAge time.Duration) int
	Len() int
}

// MemoryStore is the default in-process StateStore.
type MemoryStore struct {
	mu     sync.Mutex
	states map[string]*State
	clock  func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		states: make(map[string]*State),
		clock:  time.Now,
	}
}

// Register implements StateStore. Re-registering a hash replaces the record:
// a regenerated plan starts its enhancement lifecycle over.
func (m *MemoryStore) Register(state *State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[state.TaskHash] = state
}

// Update implements StateStore.
func (m *MemoryStore) Update(taskHash string, mutate func(*State)) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.states[taskHash]
	if !ok {
		return false
	}
	mutate(state)
	return true
}

// Snapshot implements StateStore.
func (m *MemoryStore) Snapshot(taskHash string) (*types.StatusSnapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.states[taskHash]
	if !ok {
		return nil, false
	}
	return state.snapshot(), true
}

// Sweep implements StateStore: removes every record older than maxAge and
// returns the number removed.
func (m *MemoryStore) Sweep(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.clock().Add(-maxAge)
	removed := 0
	for hash, state := range m.states {
		if state.CreatedAt.Before(cutoff) {
			delete(m.states, hash)
			removed++
		}
	}
	return removed
}

// Len implements StateStore.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.states)
}
