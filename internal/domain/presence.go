package domain

import (
	"time"

	"github.com/google/uuid"
)

// ParticipantState is the in-memory call state of an online participant.
type ParticipantState string

const (
	StateOffline   ParticipantState = "offline"
	StateIdle      ParticipantState = "idle"
	StateCalling   ParticipantState = "calling"
	StateRinging   ParticipantState = "ringing"
	StateConnected ParticipantState = "connected"
)

// InCall reports whether the state belongs to an in-flight or active call.
func (s ParticipantState) InCall() bool {
	switch s {
	case StateCalling, StateRinging, StateConnected:
		return true
	}
	return false
}

// PresenceEntry is the live record of a participant's connectivity and call
// state. Invariant: state != idle implies PeerID and CallID are both set,
// and vice versa.
type PresenceEntry struct {
	ParticipantID     uuid.UUID        `json:"participant_id"`
	ConnectionID      uuid.UUID        `json:"connection_id"`
	State             ParticipantState `json:"state"`
	PeerID            uuid.UUID        `json:"peer_id,omitempty"`
	CallID            uuid.UUID        `json:"call_id,omitempty"`
	LastStateChangeAt time.Time        `json:"last_state_change_at"`
}
