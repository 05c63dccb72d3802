package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCallStatusTerminal(t *testing.T) {
	assert.False(t, CallStatusCalling.Terminal())
	assert.False(t, CallStatusConnected.Terminal())
	assert.True(t, CallStatusEnded.Terminal())
	assert.True(t, CallStatusRejected.Terminal())
	assert.True(t, CallStatusMissed.Terminal())
	assert.True(t, CallStatusJammed.Terminal())
}

func TestDurationSeconds(t *testing.T) {
	connected := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	ended := connected.Add(95 * time.Second)

	s := &CallSession{ConnectedAt: &connected, EndedAt: &ended}
	assert.Equal(t, 95, s.DurationSeconds())

	// Never connected
	missed := &CallSession{EndedAt: &ended}
	assert.Equal(t, 0, missed.DurationSeconds())
}

func TestPeerOf(t *testing.T) {
	caller, receiver := uuid.New(), uuid.New()
	s := &CallSession{CallerID: caller, ReceiverID: receiver}

	assert.Equal(t, receiver, s.PeerOf(caller))
	assert.Equal(t, caller, s.PeerOf(receiver))
	assert.Equal(t, uuid.Nil, s.PeerOf(uuid.New()))
}

func TestCloneIsolatesMessages(t *testing.T) {
	s := &CallSession{
		CallID:   uuid.New(),
		Messages: []*CallMessage{{Seq: 1, Type: MessageTypeSystem}},
	}

	cp := s.Clone()
	s.Messages = append(s.Messages, &CallMessage{Seq: 2})

	assert.Len(t, cp.Messages, 1)
	assert.Len(t, s.Messages, 2)
}
