package domain

import (
	"time"

	"github.com/google/uuid"
)

// Client event types (connection -> engine)
const (
	EventRegister = "register"
	EventCall     = "call"
	EventAccept   = "accept"
	EventReject   = "reject"
	EventCancel   = "cancel"
	EventMessage  = "message"
	EventHangup   = "hangup"
)

// Server event types (engine -> connection)
const (
	EventRinging          = "ringing"
	EventBusy             = "busy"
	EventConnected        = "connected"
	EventDisconnected     = "disconnected"
	EventStateChanged     = "state_changed"
	EventJammed           = "jammed"
	EventError            = "error"
	EventDuplicateSession = "duplicate_session"
)

// Busy reasons carried on BUSY events.
const (
	BusyReasonOffline = "offline"
	BusyReasonBusy    = "busy"
)

// ClientEvent is an inbound protocol event from a websocket connection.
type ClientEvent struct {
	Type          string    `json:"type"`
	ParticipantID uuid.UUID `json:"participant_id,omitempty"` // register only
	TargetID      uuid.UUID `json:"target_id,omitempty"`      // call, cancel, message
	CallerID      uuid.UUID `json:"caller_id,omitempty"`      // accept, reject
	Text          string    `json:"text,omitempty"`           // message
	MessageType   string    `json:"message_type,omitempty"`   // message, defaults to text
	Reason        string    `json:"reason,omitempty"`         // hangup
}

// ServerEvent is an outbound protocol event addressed to one participant.
type ServerEvent struct {
	Type          string           `json:"type"`
	CallID        uuid.UUID        `json:"call_id,omitempty"`
	ParticipantID uuid.UUID        `json:"participant_id,omitempty"` // state_changed
	PeerID        uuid.UUID        `json:"peer_id,omitempty"`
	PeerName      string           `json:"peer_name,omitempty"`
	TargetID      uuid.UUID        `json:"target_id,omitempty"` // busy
	State         ParticipantState `json:"state,omitempty"`     // state_changed
	Reason        string           `json:"reason,omitempty"`    // busy, disconnected
	SenderID      uuid.UUID        `json:"sender_id,omitempty"` // message
	Text          string           `json:"text,omitempty"`
	MessageType   string           `json:"message_type,omitempty"`
	IsSelf        bool             `json:"is_self,omitempty"` // message echo
	Code          string           `json:"code,omitempty"`    // error
	Message       string           `json:"message,omitempty"` // human-readable text
	Timestamp     time.Time        `json:"timestamp"`
}
