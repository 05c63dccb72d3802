package domain

import (
	"time"

	"github.com/google/uuid"
)

// CallStatus is the lifecycle status of a call session.
type CallStatus string

const (
	// CallStatusCalling indicates the call is ringing and waiting on the receiver
	CallStatusCalling CallStatus = "calling"

	// CallStatusConnected indicates both participants accepted and can exchange messages
	CallStatusConnected CallStatus = "connected"

	// Terminal statuses. A session reaches exactly one of these, exactly once.
	CallStatusEnded    CallStatus = "ended"
	CallStatusRejected CallStatus = "rejected"
	CallStatusMissed   CallStatus = "missed"
	CallStatusJammed   CallStatus = "jammed"
)

// Terminal reports whether the status is a terminal outcome.
func (s CallStatus) Terminal() bool {
	switch s {
	case CallStatusEnded, CallStatusRejected, CallStatusMissed, CallStatusJammed:
		return true
	}
	return false
}

// End reasons recorded on terminal transitions.
const (
	EndReasonHangup    = "hangup"
	EndReasonRejected  = "rejected"
	EndReasonCancelled = "cancelled"
	EndReasonTimeout   = "timeout"
	EndReasonLogout    = "logout"
	EndReasonJamming   = "jamming"
)

// Message types within a call transcript.
const (
	MessageTypeText   = "text"
	MessageTypeEmoji  = "emoji"
	MessageTypeSystem = "system"
)

// CallSession is the persisted record of one call attempt, from the initial
// ring to a terminal outcome. It is owned by the signaling engine until it
// turns terminal, after which it is read-only history.
type CallSession struct {
	CallID      uuid.UUID      `json:"call_id"`
	CallerID    uuid.UUID      `json:"caller_id"`
	ReceiverID  uuid.UUID      `json:"receiver_id"`
	Status      CallStatus     `json:"status"`
	StartedAt   time.Time      `json:"started_at"`
	ConnectedAt *time.Time     `json:"connected_at,omitempty"`
	EndedAt     *time.Time     `json:"ended_at,omitempty"`
	EndReason   string         `json:"end_reason,omitempty"`
	Messages    []*CallMessage `json:"messages"`
}

// CallMessage is one entry in a call transcript. System entries mark
// lifecycle events and carry uuid.Nil as the sender.
type CallMessage struct {
	CallID    uuid.UUID `json:"call_id"`
	Seq       int       `json:"seq"`
	SenderID  uuid.UUID `json:"sender_id,omitempty"`
	Text      string    `json:"text"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

// DurationSeconds returns the connected duration, or 0 if the call never
// connected or has not ended yet.
func (c *CallSession) DurationSeconds() int {
	if c.ConnectedAt == nil || c.EndedAt == nil {
		return 0
	}
	return int(c.EndedAt.Sub(*c.ConnectedAt).Seconds())
}

// Clone returns a copy safe to hand to background writers. Message entries
// are shared but immutable once appended.
func (c *CallSession) Clone() *CallSession {
	cp := *c
	cp.Messages = make([]*CallMessage, len(c.Messages))
	copy(cp.Messages, c.Messages)
	return &cp
}

// PeerOf returns the other participant of the session, or uuid.Nil if the
// given participant is not part of it.
func (c *CallSession) PeerOf(participantID uuid.UUID) uuid.UUID {
	switch participantID {
	case c.CallerID:
		return c.ReceiverID
	case c.ReceiverID:
		return c.CallerID
	}
	return uuid.Nil
}
