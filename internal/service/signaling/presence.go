package signaling

import (
	"time"

	"github.com/google/uuid"

	"conquest-backend/internal/domain"
)

// PresenceRegistry is the in-memory map from participant id to connectivity
// and call state. It is owned exclusively by the engine; the engine's mutex
// serializes all access, so the registry itself holds no lock.
type PresenceRegistry struct {
	entries map[uuid.UUID]*domain.PresenceEntry
	now     func() time.Time

	// onStateChange fires after a state transition, with the updated entry.
	// Set by the engine to emit STATE_CHANGED events.
	onStateChange func(e *domain.PresenceEntry)
}

// NewPresenceRegistry creates an empty registry.
func NewPresenceRegistry(now func() time.Time) *PresenceRegistry {
	return &PresenceRegistry{
		entries: make(map[uuid.UUID]*domain.PresenceEntry),
		now:     now,
	}
}

// Get returns the presence entry for a participant, if present.
func (r *PresenceRegistry) Get(participantID uuid.UUID) (*domain.PresenceEntry, bool) {
	e, ok := r.entries[participantID]
	return e, ok
}

// Register binds a participant to a connection. If the participant already
// has a live entry its connection id is overwritten and the previous entry
// is returned so the caller can notify the stale connection; mid-call state
// survives a reconnect. Fresh registrations start IDLE.
func (r *PresenceRegistry) Register(participantID, connectionID uuid.UUID) (entry *domain.PresenceEntry, prev *domain.PresenceEntry) {
	if e, ok := r.entries[participantID]; ok {
		old := *e
		e.ConnectionID = connectionID
		if !e.State.InCall() {
			r.setState(e, domain.StateIdle, uuid.Nil, uuid.Nil, true)
		} else {
			r.notify(e)
		}
		return e, &old
	}

	e := &domain.PresenceEntry{
		ParticipantID:     participantID,
		ConnectionID:      connectionID,
		State:             domain.StateIdle,
		LastStateChangeAt: r.now(),
	}
	r.entries[participantID] = e
	r.notify(e)
	return e, nil
}

// SetState moves a participant to a new call state. Idle clears peer and
// call id so the presence invariant holds by construction. STATE_CHANGED
// fires only when the state actually changed.
func (r *PresenceRegistry) SetState(participantID uuid.UUID, state domain.ParticipantState, peerID, callID uuid.UUID) {
	e, ok := r.entries[participantID]
	if !ok {
		return
	}
	r.setState(e, state, peerID, callID, false)
}

// Reset forces a participant back to IDLE, clearing peer and call id.
func (r *PresenceRegistry) Reset(participantID uuid.UUID) {
	r.SetState(participantID, domain.StateIdle, uuid.Nil, uuid.Nil)
}

// Remove deletes a participant's entry. Used on disconnect.
func (r *PresenceRegistry) Remove(participantID uuid.UUID) {
	delete(r.entries, participantID)
}

// Len returns the number of online participants.
func (r *PresenceRegistry) Len() int {
	return len(r.entries)
}

func (r *PresenceRegistry) setState(e *domain.PresenceEntry, state domain.ParticipantState, peerID, callID uuid.UUID, forceNotify bool) {
	changed := e.State != state
	e.State = state
	if state == domain.StateIdle || state == domain.StateOffline {
		e.PeerID = uuid.Nil
		e.CallID = uuid.Nil
	} else {
		e.PeerID = peerID
		e.CallID = callID
	}
	if changed {
		e.LastStateChangeAt = r.now()
	}
	if changed || forceNotify {
		r.notify(e)
	}
}

func (r *PresenceRegistry) notify(e *domain.PresenceEntry) {
	if r.onStateChange != nil {
		r.onStateChange(e)
	}
}
