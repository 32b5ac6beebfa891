// Package workflow models the user-mode scan flow as an explicit state
// machine: scan a unit, confirm or cancel the suggested transition, or
// drop into a manual override. Each session is a small value with a
// well-defined state, instead of a loose bag of UI booleans, so invalid
// combinations cannot be represented.
package workflow

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/laurenmk/stockdock/internal/model"
)

// State is the scan workflow state.
type State string

const (
	// StateAwaitingAction: a unit was scanned and the operator is
	// choosing between the normal-cycle transition, cancel, or override.
	StateAwaitingAction State = "awaiting_action"
	// StateManualOverride: the operator opened the manual status picker.
	StateManualOverride State = "manual_override"
)

// Session is one scan workflow instance. A session always references the
// unit it was created from; it is discarded, never reused, once the
// transition is applied or cancelled.
type Session struct {
	ID        string     `json:"id"`
	State     State      `json:"state"`
	ItemCode  string     `json:"item_code"`
	Slot      int        `json:"slot"`
	Scanned   model.Unit `json:"scanned"`
	CreatedAt time.Time  `json:"created_at"`
}

// Suggested returns the normal-cycle target status for the scanned unit.
func (s *Session) Suggested() string {
	return model.NextUnitStatus(s.Scanned.Status)
}

// RequestOverride moves the session into the manual override state.
func (s *Session) RequestOverride() error {
	if s.State != StateAwaitingAction {
		return fmt.Errorf("cannot open override from state %q", s.State)
	}
	s.State = StateManualOverride
	return nil
}

// TargetFor validates a requested transition against the session state.
// In the awaiting state only the suggested normal-cycle status may be
// applied; in the override state any valid status may.
func (s *Session) TargetFor(requested string) (string, error) {
	if requested == "" {
		requested = s.Suggested()
	}
	if !model.ValidUnitStatus(requested) {
		return "", fmt.Errorf("invalid status %q", requested)
	}
	if s.State == StateAwaitingAction && requested != s.Suggested() {
		return "", fmt.Errorf("status %q requires manual override (suggested: %q)", requested, s.Suggested())
	}
	return requested, nil
}

// sessionTTL bounds how long an abandoned confirmation dialog lingers.
const sessionTTL = 15 * time.Minute

// Registry holds live scan sessions in memory. Abandoning a session has
// no side effects; it simply expires.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry returns an empty session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Begin creates a session for a freshly scanned unit.
func (r *Registry) Begin(unit model.Unit) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		State:     StateAwaitingAction,
		ItemCode:  unit.ItemCode,
		Slot:      unit.Slot,
		Scanned:   unit,
		CreatedAt: time.Now(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepLocked()
	r.sessions[s.ID] = s
	return s
}

// Get returns a live session by ID, or nil.
func (r *Registry) Get(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.sessions[id]
	if s == nil || time.Since(s.CreatedAt) > sessionTTL {
		delete(r.sessions, id)
		return nil
	}
	return s
}

// End removes a session (after a completed transition or a cancel).
func (r *Registry) End(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// sweepLocked drops expired sessions. Caller holds the lock.
func (r *Registry) sweepLocked() {
	for id, s := range r.sessions {
		if time.Since(s.CreatedAt) > sessionTTL {
			delete(r.sessions, id)
		}
	}
}
