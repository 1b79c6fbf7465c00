package genstate

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Observer is notified of every successful state transition, outside the
// Manager's mutex.
type Observer interface {
	OnStateChange(state GenerationState)
}

// Manager holds the single shared mutable resource in the pipeline: the
// current GenerationState, swapped atomically under mu and broadcast to
// observers after the lock is released so a slow observer never blocks
// the next transition.
type Manager struct {
	mu        sync.Mutex
	current   GenerationState
	observers []Observer
}

// NewManager starts a Manager in Idle.
func NewManager(observers ...Observer) *Manager {
	return &Manager{
		current:   GenerationState{RunID: uuid.New(), Status: Idle, Timestamp: time.Now()},
		observers: observers,
	}
}

// Current returns the currently held state. Safe to call from any
// goroutine, including the UI/request thread, while the pipeline thread
// mutates state concurrently.
func (m *Manager) Current() GenerationState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Transition validates that `to` is legal from the current status, applies
// fields, swaps the held state under the lock, then notifies observers
// outside it, preserving the order transitions were requested in.
func (m *Manager) Transition(to Status, fields func(*GenerationState)) (GenerationState, error) {
	m.mu.Lock()
	if !IsLegalTransition(m.current.Status, to) {
		from := m.current.Status
		m.mu.Unlock()
		return GenerationState{}, &ErrIllegalTransition{From: from, To: to}
	}

	next := m.current.withStatus(to, time.Now())
	if fields != nil {
		fields(&next)
	}
	m.current = next
	observers := m.observers
	m.mu.Unlock()

	for _, obs := range observers {
		obs.OnStateChange(next)
	}
	return next, nil
}

// Fail is a convenience wrapper for Transition(Error, ...) that records
// the originating error message. Error is terminal: no further
// transitions are legal afterward.
func (m *Manager) Fail(message string) (GenerationState, error) {
	return m.Transition(Error, func(s *GenerationState) {
		s.Error = message
	})
}
