package signaling

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conquest-backend/internal/domain"
)

func TestPresenceRegisterFreshIsIdle(t *testing.T) {
	r := NewPresenceRegistry(time.Now)
	pid, conn := uuid.New(), uuid.New()

	entry, prev := r.Register(pid, conn)

	assert.Nil(t, prev)
	assert.Equal(t, domain.StateIdle, entry.State)
	assert.Equal(t, conn, entry.ConnectionID)
	assert.Equal(t, 1, r.Len())
}

func TestPresenceRegisterRemapsConnection(t *testing.T) {
	r := NewPresenceRegistry(time.Now)
	pid := uuid.New()
	oldConn, newConn := uuid.New(), uuid.New()

	r.Register(pid, oldConn)
	entry, prev := r.Register(pid, newConn)

	require.NotNil(t, prev)
	assert.Equal(t, oldConn, prev.ConnectionID)
	assert.Equal(t, newConn, entry.ConnectionID)
	assert.Equal(t, 1, r.Len())
}

func TestPresenceRegisterPreservesCallState(t *testing.T) {
	r := NewPresenceRegistry(time.Now)
	pid, peer, callID := uuid.New(), uuid.New(), uuid.New()

	r.Register(pid, uuid.New())
	r.SetState(pid, domain.StateConnected, peer, callID)

	entry, _ := r.Register(pid, uuid.New())

	assert.Equal(t, domain.StateConnected, entry.State)
	assert.Equal(t, peer, entry.PeerID)
	assert.Equal(t, callID, entry.CallID)
}

func TestPresenceIdleClearsPeerAndCall(t *testing.T) {
	r := NewPresenceRegistry(time.Now)
	pid := uuid.New()

	r.Register(pid, uuid.New())
	r.SetState(pid, domain.StateRinging, uuid.New(), uuid.New())
	r.Reset(pid)

	entry, ok := r.Get(pid)
	require.True(t, ok)
	assert.Equal(t, domain.StateIdle, entry.State)
	assert.Equal(t, uuid.Nil, entry.PeerID)
	assert.Equal(t, uuid.Nil, entry.CallID)
}

func TestPresenceNotifyOnlyOnChange(t *testing.T) {
	r := NewPresenceRegistry(time.Now)
	pid := uuid.New()
	r.Register(pid, uuid.New())

	var notified int
	r.onStateChange = func(e *domain.PresenceEntry) { notified++ }

	r.SetState(pid, domain.StateCalling, uuid.New(), uuid.New())
	assert.Equal(t, 1, notified)

	r.Reset(pid)
	assert.Equal(t, 2, notified)

	// Already idle, no transition
	r.Reset(pid)
	assert.Equal(t, 2, notified)
}

func TestPresenceRemove(t *testing.T) {
	r := NewPresenceRegistry(time.Now)
	pid := uuid.New()

	r.Register(pid, uuid.New())
	r.Remove(pid)

	_, ok := r.Get(pid)
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len())
}
