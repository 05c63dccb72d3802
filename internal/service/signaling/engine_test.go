package signaling

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conquest-backend/internal/domain"
	apperrors "conquest-backend/pkg/errors"
)

type fakeSender struct {
	mu     sync.Mutex
	events map[uuid.UUID][]*domain.ServerEvent
}

func newFakeSender() *fakeSender {
	return &fakeSender{events: make(map[uuid.UUID][]*domain.ServerEvent)}
}

func (s *fakeSender) Send(connectionID uuid.UUID, event *domain.ServerEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[connectionID] = append(s.events[connectionID], event)
	return nil
}

func (s *fakeSender) eventsFor(connectionID uuid.UUID) []*domain.ServerEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*domain.ServerEvent(nil), s.events[connectionID]...)
}

func (s *fakeSender) lastOfType(connectionID uuid.UUID, eventType string) *domain.ServerEvent {
	events := s.eventsFor(connectionID)
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Type == eventType {
			return events[i]
		}
	}
	return nil
}

type fakeTimer struct {
	fn        func()
	cancelled bool
}

type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (s *fakeScheduler) After(d time.Duration, fn func()) CancelFunc {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{fn: fn}
	s.timers = append(s.timers, t)
	return func() {
		s.mu.Lock()
		t.cancelled = true
		s.mu.Unlock()
	}
}

// fire runs the most recently armed timer, like a wall-clock expiry.
func (s *fakeScheduler) fire(t *testing.T) {
	t.Helper()
	s.mu.Lock()
	require.NotEmpty(t, s.timers, "no timer armed")
	timer := s.timers[len(s.timers)-1]
	s.mu.Unlock()
	timer.fn()
}

func (s *fakeScheduler) lastCancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.timers) == 0 {
		return false
	}
	return s.timers[len(s.timers)-1].cancelled
}

type storeOp struct {
	name   string
	msg    *domain.CallMessage
	status domain.CallStatus
}

type memStore struct {
	mu  sync.Mutex
	ops []storeOp
}

func (s *memStore) record(op storeOp) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops = append(s.ops, op)
	return nil
}

func (s *memStore) CreateSession(ctx context.Context, session *domain.CallSession) error {
	return s.record(storeOp{name: "create"})
}

func (s *memStore) MarkConnected(ctx context.Context, session *domain.CallSession) error {
	return s.record(storeOp{name: "connected"})
}

func (s *memStore) AppendMessage(ctx context.Context, message *domain.CallMessage) error {
	return s.record(storeOp{name: "append", msg: message})
}

func (s *memStore) FinishSession(ctx context.Context, session *domain.CallSession) error {
	return s.record(storeOp{name: "finish", status: session.Status})
}

func (s *memStore) finishStatuses() []domain.CallStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	var statuses []domain.CallStatus
	for _, op := range s.ops {
		if op.name == "finish" {
			statuses = append(statuses, op.status)
		}
	}
	return statuses
}

func (s *memStore) opNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, len(s.ops))
	for i, op := range s.ops {
		names[i] = op.name
	}
	return names
}

func (s *memStore) messages() []*domain.CallMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	var msgs []*domain.CallMessage
	for _, op := range s.ops {
		if op.msg != nil {
			msgs = append(msgs, op.msg)
		}
	}
	return msgs
}

type testRig struct {
	engine *Engine
	sender *fakeSender
	sched  *fakeScheduler
	store  *memStore
}

func newTestRig(t *testing.T) *testRig {
	t.Helper()
	sender := newFakeSender()
	sched := &fakeScheduler{}
	store := &memStore{}
	engine := NewEngine(Config{
		Sender:    sender,
		Scheduler: sched,
		Store:     store,
	})
	t.Cleanup(engine.Close)
	return &testRig{engine: engine, sender: sender, sched: sched, store: store}
}

func (r *testRig) register(t *testing.T) (uuid.UUID, uuid.UUID) {
	t.Helper()
	pid, conn := uuid.New(), uuid.New()
	r.engine.Register(context.Background(), pid, conn)
	return pid, conn
}

// startCall registers two participants and puts them in calling/ringing.
func (r *testRig) startCall(t *testing.T) (callerID, callerConn, targetID, targetConn uuid.UUID) {
	t.Helper()
	callerID, callerConn = r.register(t)
	targetID, targetConn = r.register(t)
	appErr := r.engine.Call(context.Background(), callerID, targetID)
	require.Nil(t, appErr)
	return
}

// connectCall takes two participants all the way to connected.
func (r *testRig) connectCall(t *testing.T) (callerID, callerConn, targetID, targetConn uuid.UUID) {
	t.Helper()
	callerID, callerConn, targetID, targetConn = r.startCall(t)
	appErr := r.engine.Accept(context.Background(), targetID, callerID)
	require.Nil(t, appErr)
	return
}

func TestRegisterStartsIdle(t *testing.T) {
	rig := newTestRig(t)
	_, conn := rig.register(t)

	ev := rig.sender.lastOfType(conn, domain.EventStateChanged)
	require.NotNil(t, ev)
	assert.Equal(t, domain.StateIdle, ev.State)
}

func TestRegisterDuplicateNotifiesOldConnection(t *testing.T) {
	rig := newTestRig(t)
	pid, oldConn := rig.register(t)

	newConn := uuid.New()
	rig.engine.Register(context.Background(), pid, newConn)

	dup := rig.sender.lastOfType(oldConn, domain.EventDuplicateSession)
	require.NotNil(t, dup)
	assert.Equal(t, string(apperrors.ErrCodeDuplicateSession), dup.Code)

	// New connection owns the participant now
	assert.NotNil(t, rig.sender.lastOfType(newConn, domain.EventStateChanged))
}

func TestRegisterDuplicateKeepsCallAlive(t *testing.T) {
	rig := newTestRig(t)
	callerID, _, targetID, targetConn := rig.connectCall(t)

	// Caller re-registers from a new connection mid-call
	newConn := uuid.New()
	rig.engine.Register(context.Background(), callerID, newConn)

	// Still connected: relay from the peer reaches the new connection
	appErr := rig.engine.Relay(context.Background(), targetID, callerID, "still there?", domain.MessageTypeText)
	require.Nil(t, appErr)

	msg := rig.sender.lastOfType(newConn, domain.EventMessage)
	require.NotNil(t, msg)
	assert.Equal(t, "still there?", msg.Text)
	assert.NotNil(t, rig.sender.lastOfType(targetConn, domain.EventMessage))
}

func TestCallRingsTarget(t *testing.T) {
	rig := newTestRig(t)
	callerID, callerConn, _, targetConn := rig.startCall(t)

	ringing := rig.sender.lastOfType(targetConn, domain.EventRinging)
	require.NotNil(t, ringing)
	assert.Equal(t, callerID, ringing.PeerID)
	assert.Equal(t, callerID.String(), ringing.PeerName)
	assert.NotEqual(t, uuid.Nil, ringing.CallID)

	callerState := rig.sender.lastOfType(callerConn, domain.EventStateChanged)
	require.NotNil(t, callerState)
	assert.Equal(t, domain.StateCalling, callerState.State)

	targetState := rig.sender.lastOfType(targetConn, domain.EventStateChanged)
	require.NotNil(t, targetState)
	assert.Equal(t, domain.StateRinging, targetState.State)
}

func TestCallOfflineTargetIsBusy(t *testing.T) {
	rig := newTestRig(t)
	callerID, callerConn := rig.register(t)

	appErr := rig.engine.Call(context.Background(), callerID, uuid.New())
	require.Nil(t, appErr)

	busy := rig.sender.lastOfType(callerConn, domain.EventBusy)
	require.NotNil(t, busy)
	assert.Equal(t, domain.BusyReasonOffline, busy.Reason)

	// Caller stays idle, free to call someone else
	state := rig.sender.lastOfType(callerConn, domain.EventStateChanged)
	assert.Equal(t, domain.StateIdle, state.State)
}

func TestCallBusyTarget(t *testing.T) {
	rig := newTestRig(t)
	_, _, targetID, _ := rig.connectCall(t)

	thirdID, thirdConn := rig.register(t)
	appErr := rig.engine.Call(context.Background(), thirdID, targetID)
	require.Nil(t, appErr)

	busy := rig.sender.lastOfType(thirdConn, domain.EventBusy)
	require.NotNil(t, busy)
	assert.Equal(t, domain.BusyReasonBusy, busy.Reason)
}

func TestCallSelfRejected(t *testing.T) {
	rig := newTestRig(t)
	pid, _ := rig.register(t)

	appErr := rig.engine.Call(context.Background(), pid, pid)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrCodeSelfCall, appErr.Code)
}

func TestCallWhileBusyRejected(t *testing.T) {
	rig := newTestRig(t)
	callerID, _, _, _ := rig.startCall(t)

	appErr := rig.engine.Call(context.Background(), callerID, uuid.New())
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrCodeCallerBusy, appErr.Code)
}

func TestCallWhileRingingRejected(t *testing.T) {
	rig := newTestRig(t)
	_, _, targetID, _ := rig.startCall(t)
	thirdID, _ := rig.register(t)

	// The ringing callee tries to start a call of their own
	appErr := rig.engine.Call(context.Background(), targetID, thirdID)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrCodeCallerBusy, appErr.Code)
}

func TestCallUnregisteredCaller(t *testing.T) {
	rig := newTestRig(t)

	appErr := rig.engine.Call(context.Background(), uuid.New(), uuid.New())
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrCodeNotRegistered, appErr.Code)
}

func TestAcceptConnectsBothSides(t *testing.T) {
	rig := newTestRig(t)
	callerID, callerConn, targetID, targetConn := rig.startCall(t)

	appErr := rig.engine.Accept(context.Background(), targetID, callerID)
	require.Nil(t, appErr)

	callerEv := rig.sender.lastOfType(callerConn, domain.EventConnected)
	require.NotNil(t, callerEv)
	assert.Equal(t, targetID, callerEv.PeerID)

	targetEv := rig.sender.lastOfType(targetConn, domain.EventConnected)
	require.NotNil(t, targetEv)
	assert.Equal(t, callerID, targetEv.PeerID)

	assert.True(t, rig.sched.lastCancelled(), "ring timer should be retired")
}

func TestAcceptWrongCallerRejected(t *testing.T) {
	rig := newTestRig(t)
	_, _, targetID, _ := rig.startCall(t)

	appErr := rig.engine.Accept(context.Background(), targetID, uuid.New())
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrCodeInvalidState, appErr.Code)
}

func TestAcceptWithoutRingingCall(t *testing.T) {
	rig := newTestRig(t)
	pid, _ := rig.register(t)

	appErr := rig.engine.Accept(context.Background(), pid, uuid.New())
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrCodeInvalidState, appErr.Code)
}

func TestRejectEndsRinging(t *testing.T) {
	rig := newTestRig(t)
	callerID, callerConn, targetID, targetConn := rig.startCall(t)

	appErr := rig.engine.Reject(context.Background(), targetID, callerID)
	require.Nil(t, appErr)

	disc := rig.sender.lastOfType(callerConn, domain.EventDisconnected)
	require.NotNil(t, disc)
	assert.Equal(t, domain.EndReasonRejected, disc.Reason)

	// Both back to idle
	assert.Equal(t, domain.StateIdle, rig.sender.lastOfType(callerConn, domain.EventStateChanged).State)
	assert.Equal(t, domain.StateIdle, rig.sender.lastOfType(targetConn, domain.EventStateChanged).State)
}

func TestCancelEndsRinging(t *testing.T) {
	rig := newTestRig(t)
	callerID, _, targetID, targetConn := rig.startCall(t)

	appErr := rig.engine.Cancel(context.Background(), callerID, targetID)
	require.Nil(t, appErr)

	disc := rig.sender.lastOfType(targetConn, domain.EventDisconnected)
	require.NotNil(t, disc)
	assert.Equal(t, domain.EndReasonCancelled, disc.Reason)
}

func TestRingTimeout(t *testing.T) {
	rig := newTestRig(t)
	_, callerConn, _, targetConn := rig.startCall(t)

	rig.sched.fire(t)

	callerDisc := rig.sender.lastOfType(callerConn, domain.EventDisconnected)
	require.NotNil(t, callerDisc)
	assert.Equal(t, domain.EndReasonTimeout, callerDisc.Reason)

	targetDisc := rig.sender.lastOfType(targetConn, domain.EventDisconnected)
	require.NotNil(t, targetDisc)
	assert.Equal(t, domain.EndReasonTimeout, targetDisc.Reason)
}

func TestTimeoutAfterRejectIsNoop(t *testing.T) {
	rig := newTestRig(t)
	callerID, callerConn, targetID, _ := rig.startCall(t)

	appErr := rig.engine.Reject(context.Background(), targetID, callerID)
	require.Nil(t, appErr)

	before := len(rig.sender.eventsFor(callerConn))
	rig.sched.fire(t)
	assert.Equal(t, before, len(rig.sender.eventsFor(callerConn)), "late timer fire must not emit")
}

func TestAcceptAfterTimeoutRejected(t *testing.T) {
	rig := newTestRig(t)
	callerID, _, targetID, _ := rig.startCall(t)

	rig.sched.fire(t)

	appErr := rig.engine.Accept(context.Background(), targetID, callerID)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrCodeInvalidState, appErr.Code)
}

func TestRelayDeliversAndEchoes(t *testing.T) {
	rig := newTestRig(t)
	callerID, callerConn, targetID, targetConn := rig.connectCall(t)

	appErr := rig.engine.Relay(context.Background(), callerID, targetID, "attack at dawn", domain.MessageTypeText)
	require.Nil(t, appErr)

	delivered := rig.sender.lastOfType(targetConn, domain.EventMessage)
	require.NotNil(t, delivered)
	assert.Equal(t, "attack at dawn", delivered.Text)
	assert.Equal(t, callerID, delivered.SenderID)
	assert.False(t, delivered.IsSelf)

	echo := rig.sender.lastOfType(callerConn, domain.EventMessage)
	require.NotNil(t, echo)
	assert.Equal(t, "attack at dawn", echo.Text)
	assert.True(t, echo.IsSelf)
}

func TestRelayDefaultsToText(t *testing.T) {
	rig := newTestRig(t)
	callerID, _, targetID, targetConn := rig.connectCall(t)

	appErr := rig.engine.Relay(context.Background(), callerID, targetID, "gg", "")
	require.Nil(t, appErr)

	delivered := rig.sender.lastOfType(targetConn, domain.EventMessage)
	require.NotNil(t, delivered)
	assert.Equal(t, domain.MessageTypeText, delivered.MessageType)
}

func TestRelayValidation(t *testing.T) {
	rig := newTestRig(t)
	callerID, _, targetID, _ := rig.connectCall(t)

	appErr := rig.engine.Relay(context.Background(), callerID, targetID, "", domain.MessageTypeText)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrCodeValidation, appErr.Code)

	appErr = rig.engine.Relay(context.Background(), callerID, targetID, strings.Repeat("a", 2001), domain.MessageTypeText)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrCodeValidation, appErr.Code)

	appErr = rig.engine.Relay(context.Background(), callerID, targetID, "hi", "system")
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrCodeInvalidInput, appErr.Code)
}

func TestRelayWhileRingingRejected(t *testing.T) {
	rig := newTestRig(t)
	callerID, _, targetID, _ := rig.startCall(t)

	appErr := rig.engine.Relay(context.Background(), callerID, targetID, "too soon", domain.MessageTypeText)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrCodeNotConnected, appErr.Code)
}

func TestRelayToNonPeerRejected(t *testing.T) {
	rig := newTestRig(t)
	callerID, _, _, _ := rig.connectCall(t)
	otherID, _ := rig.register(t)

	appErr := rig.engine.Relay(context.Background(), callerID, otherID, "psst", domain.MessageTypeText)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrCodeNotConnected, appErr.Code)
}

func TestHangupEndsCall(t *testing.T) {
	rig := newTestRig(t)
	callerID, callerConn, _, targetConn := rig.connectCall(t)

	appErr := rig.engine.Hangup(context.Background(), callerID, "")
	require.Nil(t, appErr)

	disc := rig.sender.lastOfType(targetConn, domain.EventDisconnected)
	require.NotNil(t, disc)
	assert.Equal(t, domain.EndReasonHangup, disc.Reason)

	assert.Equal(t, domain.StateIdle, rig.sender.lastOfType(callerConn, domain.EventStateChanged).State)
	assert.Equal(t, domain.StateIdle, rig.sender.lastOfType(targetConn, domain.EventStateChanged).State)
}

func TestHangupCannotForgeJamming(t *testing.T) {
	rig := newTestRig(t)
	callerID, _, _, targetConn := rig.connectCall(t)

	appErr := rig.engine.Hangup(context.Background(), callerID, domain.EndReasonJamming)
	require.Nil(t, appErr)

	disc := rig.sender.lastOfType(targetConn, domain.EventDisconnected)
	require.NotNil(t, disc)
	assert.Equal(t, domain.EndReasonHangup, disc.Reason)
}

func TestHangupWhileCallingEndsSession(t *testing.T) {
	rig := newTestRig(t)
	callerID, _, _, targetConn := rig.startCall(t)

	appErr := rig.engine.Hangup(context.Background(), callerID, "")
	require.Nil(t, appErr)

	disc := rig.sender.lastOfType(targetConn, domain.EventDisconnected)
	require.NotNil(t, disc)
	assert.Equal(t, domain.EndReasonHangup, disc.Reason)

	rig.engine.Close()
	require.Len(t, rig.store.finishStatuses(), 1)
	assert.Equal(t, domain.CallStatusEnded, rig.store.finishStatuses()[0])
}

func TestHangupWithoutCallRejected(t *testing.T) {
	rig := newTestRig(t)
	pid, _ := rig.register(t)

	appErr := rig.engine.Hangup(context.Background(), pid, "")
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrCodeInvalidState, appErr.Code)
}

func TestJamTerminatesCall(t *testing.T) {
	rig := newTestRig(t)
	callerID, callerConn, _, targetConn := rig.connectCall(t)

	appErr := rig.engine.Jam(context.Background(), callerID)
	require.Nil(t, appErr)

	jammed := rig.sender.lastOfType(callerConn, domain.EventJammed)
	require.NotNil(t, jammed)

	disc := rig.sender.lastOfType(targetConn, domain.EventDisconnected)
	require.NotNil(t, disc)
	assert.Equal(t, domain.EndReasonJamming, disc.Reason)
}

func TestJamIdleParticipantRejected(t *testing.T) {
	rig := newTestRig(t)
	pid, _ := rig.register(t)

	appErr := rig.engine.Jam(context.Background(), pid)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrCodeInvalidState, appErr.Code)
}

func TestDisconnectMidCallHangsUp(t *testing.T) {
	rig := newTestRig(t)
	callerID, callerConn, _, targetConn := rig.connectCall(t)

	rig.engine.Disconnect(context.Background(), callerID, callerConn)

	disc := rig.sender.lastOfType(targetConn, domain.EventDisconnected)
	require.NotNil(t, disc)
	assert.Equal(t, domain.EndReasonLogout, disc.Reason)

	// Caller is gone; calling them reports offline
	thirdID, thirdConn := rig.register(t)
	appErr := rig.engine.Call(context.Background(), thirdID, callerID)
	require.Nil(t, appErr)
	busy := rig.sender.lastOfType(thirdConn, domain.EventBusy)
	require.NotNil(t, busy)
	assert.Equal(t, domain.BusyReasonOffline, busy.Reason)
}

func TestDisconnectStaleConnectionIgnored(t *testing.T) {
	rig := newTestRig(t)
	callerID, oldConn, targetID, targetConn := rig.connectCall(t)

	// Caller reconnects, then the old socket's close arrives late
	newConn := uuid.New()
	rig.engine.Register(context.Background(), callerID, newConn)
	rig.engine.Disconnect(context.Background(), callerID, oldConn)

	// Call survives
	appErr := rig.engine.Relay(context.Background(), targetID, callerID, "ping", domain.MessageTypeText)
	require.Nil(t, appErr)
	assert.NotNil(t, rig.sender.lastOfType(targetConn, domain.EventMessage))
}

func TestTranscriptWriteOrder(t *testing.T) {
	rig := newTestRig(t)
	callerID, _, targetID, _ := rig.connectCall(t)

	require.Nil(t, rig.engine.Relay(context.Background(), callerID, targetID, "one", domain.MessageTypeText))
	require.Nil(t, rig.engine.Relay(context.Background(), targetID, callerID, "two", domain.MessageTypeEmoji))
	require.Nil(t, rig.engine.Hangup(context.Background(), callerID, ""))

	rig.engine.Close()

	assert.Equal(t,
		[]string{"create", "append", "append", "connected", "append", "append", "append", "finish"},
		rig.store.opNames())

	msgs := rig.store.messages()
	require.Len(t, msgs, 5)
	for i, msg := range msgs {
		assert.Equal(t, i+1, msg.Seq)
	}
	assert.Equal(t, domain.MessageTypeSystem, msgs[0].Type)
	assert.Equal(t, "one", msgs[2].Text)
	assert.Equal(t, domain.MessageTypeEmoji, msgs[3].Type)
	assert.Equal(t, domain.MessageTypeSystem, msgs[4].Type)
}

func TestFullCallRoundTrip(t *testing.T) {
	rig := newTestRig(t)
	callerID, callerConn, targetID, targetConn := rig.startCall(t)

	require.Nil(t, rig.engine.Accept(context.Background(), targetID, callerID))
	require.Nil(t, rig.engine.Relay(context.Background(), callerID, targetID, "truce?", domain.MessageTypeText))
	require.Nil(t, rig.engine.Relay(context.Background(), targetID, callerID, "never", domain.MessageTypeText))
	require.Nil(t, rig.engine.Hangup(context.Background(), targetID, ""))

	// Caller saw ring state, connect, both messages, then disconnect
	var types []string
	for _, ev := range rig.sender.eventsFor(callerConn) {
		types = append(types, ev.Type)
	}
	assert.Equal(t, []string{
		domain.EventStateChanged, // idle on register
		domain.EventStateChanged, // calling
		domain.EventStateChanged, // connected
		domain.EventConnected,
		domain.EventMessage,      // echo of "truce?"
		domain.EventMessage,      // "never"
		domain.EventDisconnected,
		domain.EventStateChanged, // idle again
	}, types)

	// Both participants are free to call again
	require.Nil(t, rig.engine.Call(context.Background(), targetID, callerID))
	assert.NotNil(t, rig.sender.lastOfType(callerConn, domain.EventRinging))
	_ = targetConn
}
