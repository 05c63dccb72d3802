package signaling

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"conquest-backend/internal/domain"
	"conquest-backend/pkg/constants"
	apperrors "conquest-backend/pkg/errors"
	"conquest-backend/pkg/logger"
	"conquest-backend/pkg/metrics"
)

// Sender delivers a server event to a specific connection. A "connection
// not found" error means best-effort delivery failed; it must never be
// treated as a reason to mutate presence state.
type Sender interface {
	Send(connectionID uuid.UUID, event *domain.ServerEvent) error
}

// NameResolver maps a participant id to a display name. Lookups are an
// external collaborator concern; failures fall back to the raw id.
type NameResolver interface {
	ResolveDisplayName(ctx context.Context, participantID uuid.UUID) (string, error)
}

// PresenceMirror reflects online/offline and call state into a shared
// directory for the rest of the game backend. Writes are best-effort and
// never read back for transition decisions.
type PresenceMirror interface {
	SetOnline(ctx context.Context, participantID uuid.UUID) error
	SetOffline(ctx context.Context, participantID uuid.UUID) error
	SetCallState(ctx context.Context, participantID uuid.UUID, state domain.ParticipantState) error
}

// Archiver stores the full transcript of a terminal session.
type Archiver interface {
	Archive(ctx context.Context, session *domain.CallSession) error
}

// Notifier reaches participants who have no live connection, or who just
// missed a call, through an out-of-band channel.
type Notifier interface {
	NotifyMissedCall(ctx context.Context, calleeID, callerID uuid.UUID, callerName string, callID uuid.UUID) error
}

// Config assembles the engine's collaborators. Sender is required; every
// other collaborator is optional and simply skipped when nil.
type Config struct {
	Sender      Sender
	Scheduler   Scheduler
	Store       SessionStore
	Archiver    Archiver
	Names       NameResolver
	Mirror      PresenceMirror
	Notifier    Notifier
	Metrics     *metrics.Metrics
	RingTimeout time.Duration
	Clock       func() time.Time
}

// Engine is the call signaling state machine. It owns the presence
// registry, the in-flight session table and the per-call timer table; one
// mutex serializes every inbound event (including timer fires), so each
// transition runs to completion before the next is observed.
type Engine struct {
	mu sync.Mutex

	presence *PresenceRegistry
	sessions map[uuid.UUID]*domain.CallSession
	timers   map[uuid.UUID]CancelFunc

	sender    Sender
	sched     Scheduler
	store     SessionStore
	persister *Persister
	archiver  Archiver
	names     NameResolver
	mirror    PresenceMirror
	notifier  Notifier
	metrics   *metrics.Metrics

	ringTimeout time.Duration
	now         func() time.Time
}

// NewEngine creates an engine instance. Multiple independent engines can
// coexist in one process; all shared state is instance-owned.
func NewEngine(cfg Config) *Engine {
	if cfg.Scheduler == nil {
		cfg.Scheduler = NewScheduler()
	}
	if cfg.RingTimeout <= 0 {
		cfg.RingTimeout = constants.RingTimeout
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	e := &Engine{
		sessions:    make(map[uuid.UUID]*domain.CallSession),
		timers:      make(map[uuid.UUID]CancelFunc),
		sender:      cfg.Sender,
		sched:       cfg.Scheduler,
		store:       cfg.Store,
		archiver:    cfg.Archiver,
		names:       cfg.Names,
		mirror:      cfg.Mirror,
		notifier:    cfg.Notifier,
		metrics:     cfg.Metrics,
		ringTimeout: cfg.RingTimeout,
		now:         cfg.Clock,
	}

	e.presence = NewPresenceRegistry(e.now)
	e.presence.onStateChange = func(entry *domain.PresenceEntry) {
		e.emit(entry.ConnectionID, &domain.ServerEvent{
			Type:          domain.EventStateChanged,
			ParticipantID: entry.ParticipantID,
			State:         entry.State,
			PeerID:        entry.PeerID,
		})
	}

	if cfg.Store != nil {
		e.persister = NewPersister(1024, cfg.Metrics)
	}

	return e
}

// Close drains pending transcript writes. Pending ring timers are left to
// fire into a no-op.
func (e *Engine) Close() {
	if e.persister != nil {
		e.persister.Close()
	}
}

// Register binds a participant to a connection. A participant registering
// from a second connection gets the mapping overwritten; the stale
// connection is notified but not closed (transport decides what to do).
func (e *Engine) Register(ctx context.Context, participantID, connectionID uuid.UUID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, prev := e.presence.Register(participantID, connectionID)

	if prev != nil && prev.ConnectionID != connectionID {
		dup := apperrors.DuplicateSessionError()
		e.emit(prev.ConnectionID, &domain.ServerEvent{
			Type:    domain.EventDuplicateSession,
			Code:    string(dup.Code),
			Message: dup.Message,
		})
		logger.Info("Duplicate registration, connection remapped",
			zap.String("participant_id", participantID.String()),
			zap.String("old_connection_id", prev.ConnectionID.String()),
			zap.String("connection_id", connectionID.String()))
	}

	e.mirrorAsync(func(ctx context.Context, m PresenceMirror) error {
		return m.SetOnline(ctx, participantID)
	})

	logger.Debug("Participant registered",
		zap.String("participant_id", participantID.String()),
		zap.String("state", string(entry.State)))
}

// Call starts a call attempt from caller to target. Offline or busy targets
// produce a BUSY event, which is a negotiated outcome, not an error.
func (e *Engine) Call(ctx context.Context, callerID, targetID uuid.UUID) *apperrors.AppError {
	if callerID == targetID {
		return e.reject(apperrors.SelfCallError())
	}

	// Resolved outside the lock; a slow lookup must not stall the engine.
	callerName := e.resolveName(ctx, callerID)

	e.mu.Lock()
	defer e.mu.Unlock()

	caller, ok := e.presence.Get(callerID)
	if !ok {
		return e.reject(apperrors.NotRegisteredError())
	}
	if caller.State != domain.StateIdle {
		return e.reject(apperrors.CallerBusyError())
	}

	target, ok := e.presence.Get(targetID)
	if !ok || target.State == domain.StateOffline {
		e.emit(caller.ConnectionID, &domain.ServerEvent{
			Type:     domain.EventBusy,
			TargetID: targetID,
			Reason:   domain.BusyReasonOffline,
			Message:  "Participant is offline",
		})
		e.notifyMissedAsync(targetID, callerID, callerName, uuid.Nil)
		return nil
	}
	if target.State != domain.StateIdle {
		e.emit(caller.ConnectionID, &domain.ServerEvent{
			Type:     domain.EventBusy,
			TargetID: targetID,
			Reason:   domain.BusyReasonBusy,
			Message:  "Participant is in another call",
		})
		return nil
	}

	session := &domain.CallSession{
		CallID:     uuid.New(),
		CallerID:   callerID,
		ReceiverID: targetID,
		Status:     domain.CallStatusCalling,
		StartedAt:  e.now(),
	}
	e.sessions[session.CallID] = session
	e.persistCreate(session)
	e.appendSystem(session, "call started")

	e.presence.SetState(callerID, domain.StateCalling, targetID, session.CallID)
	e.presence.SetState(targetID, domain.StateRinging, callerID, session.CallID)
	e.mirrorCallState(callerID, domain.StateCalling)
	e.mirrorCallState(targetID, domain.StateRinging)

	callID := session.CallID
	e.timers[callID] = e.sched.After(e.ringTimeout, func() {
		e.handleTimeout(callID)
	})

	e.emit(target.ConnectionID, &domain.ServerEvent{
		Type:     domain.EventRinging,
		CallID:   session.CallID,
		PeerID:   callerID,
		PeerName: callerName,
	})

	if e.metrics != nil {
		e.metrics.CallStarted()
	}
	logger.Info("Call started",
		zap.String("call_id", session.CallID.String()),
		zap.String("caller_id", callerID.String()),
		zap.String("receiver_id", targetID.String()))
	return nil
}

// Accept connects a ringing call.
func (e *Engine) Accept(ctx context.Context, receiverID, callerID uuid.UUID) *apperrors.AppError {
	receiverName := e.resolveName(ctx, receiverID)
	callerName := e.resolveName(ctx, callerID)

	e.mu.Lock()
	defer e.mu.Unlock()

	receiver, ok := e.presence.Get(receiverID)
	if !ok {
		return e.reject(apperrors.NotRegisteredError())
	}
	if receiver.State != domain.StateRinging {
		return e.reject(apperrors.InvalidStateError("No ringing call to accept"))
	}
	if receiver.PeerID != callerID {
		return e.reject(apperrors.InvalidStateError("Ringing call is from a different caller"))
	}
	session, ok := e.sessions[receiver.CallID]
	if !ok {
		return e.reject(apperrors.NoSessionError())
	}

	// Retire the timer before touching presence so a racing fire hits the
	// precondition re-check and becomes a no-op.
	e.retireTimer(session.CallID)

	connectedAt := e.now()
	session.Status = domain.CallStatusConnected
	session.ConnectedAt = &connectedAt
	e.appendSystem(session, "call connected")
	e.persistConnected(session)

	e.presence.SetState(callerID, domain.StateConnected, receiverID, session.CallID)
	e.presence.SetState(receiverID, domain.StateConnected, callerID, session.CallID)
	e.mirrorCallState(callerID, domain.StateConnected)
	e.mirrorCallState(receiverID, domain.StateConnected)

	e.emitTo(callerID, &domain.ServerEvent{
		Type:     domain.EventConnected,
		CallID:   session.CallID,
		PeerID:   receiverID,
		PeerName: receiverName,
	})
	e.emitTo(receiverID, &domain.ServerEvent{
		Type:     domain.EventConnected,
		CallID:   session.CallID,
		PeerID:   callerID,
		PeerName: callerName,
	})

	logger.Info("Call connected",
		zap.String("call_id", session.CallID.String()))
	return nil
}

// Reject declines a ringing call; the session terminates as rejected.
func (e *Engine) Reject(ctx context.Context, receiverID, callerID uuid.UUID) *apperrors.AppError {
	e.mu.Lock()
	defer e.mu.Unlock()

	receiver, ok := e.presence.Get(receiverID)
	if !ok {
		return e.reject(apperrors.NotRegisteredError())
	}
	if receiver.State != domain.StateRinging || receiver.PeerID != callerID {
		return e.reject(apperrors.InvalidStateError("No ringing call to reject"))
	}
	session, ok := e.sessions[receiver.CallID]
	if !ok {
		return e.reject(apperrors.NoSessionError())
	}

	e.emitTo(callerID, &domain.ServerEvent{
		Type:    domain.EventDisconnected,
		CallID:  session.CallID,
		Reason:  domain.EndReasonRejected,
		Message: "Call rejected",
	})
	e.finish(session, domain.CallStatusRejected, domain.EndReasonRejected)
	return nil
}

// Cancel withdraws an outgoing call before the receiver responds; the
// session terminates as missed with reason cancelled.
func (e *Engine) Cancel(ctx context.Context, callerID, targetID uuid.UUID) *apperrors.AppError {
	e.mu.Lock()
	defer e.mu.Unlock()

	caller, ok := e.presence.Get(callerID)
	if !ok {
		return e.reject(apperrors.NotRegisteredError())
	}
	if caller.State != domain.StateCalling || caller.PeerID != targetID {
		return e.reject(apperrors.InvalidStateError("No outgoing call to cancel"))
	}
	session, ok := e.sessions[caller.CallID]
	if !ok {
		return e.reject(apperrors.NoSessionError())
	}

	e.emitTo(targetID, &domain.ServerEvent{
		Type:    domain.EventDisconnected,
		CallID:  session.CallID,
		Reason:  domain.EndReasonCancelled,
		Message: "Call cancelled by caller",
	})
	e.finish(session, domain.CallStatusMissed, domain.EndReasonCancelled)
	return nil
}

// Relay forwards an in-call message to the peer and echoes it back to the
// sender. The message is appended to the transcript before delivery, in the
// same synchronous transition.
func (e *Engine) Relay(ctx context.Context, senderID, targetID uuid.UUID, text, msgType string) *apperrors.AppError {
	if msgType == "" {
		msgType = domain.MessageTypeText
	}
	if msgType != domain.MessageTypeText && msgType != domain.MessageTypeEmoji {
		return e.reject(apperrors.InvalidInputError("Unsupported message type"))
	}
	if text == "" || len(text) > constants.MaxMessageLength {
		return e.reject(apperrors.ValidationError("Message must be 1-2000 characters"))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	sender, ok := e.presence.Get(senderID)
	if !ok {
		return e.reject(apperrors.NotRegisteredError())
	}
	if sender.State != domain.StateConnected || sender.PeerID != targetID {
		return e.reject(apperrors.NotConnectedError())
	}
	session, ok := e.sessions[sender.CallID]
	if !ok {
		return e.reject(apperrors.NoSessionError())
	}

	msg := e.appendUserMessage(session, senderID, text, msgType)

	e.emitTo(targetID, &domain.ServerEvent{
		Type:        domain.EventMessage,
		CallID:      session.CallID,
		SenderID:    senderID,
		Text:        msg.Text,
		MessageType: msg.Type,
	})
	e.emitTo(senderID, &domain.ServerEvent{
		Type:        domain.EventMessage,
		CallID:      session.CallID,
		SenderID:    senderID,
		Text:        msg.Text,
		MessageType: msg.Type,
		IsSelf:      true,
	})

	if e.metrics != nil {
		e.metrics.RecordRelayedMessage(msg.Type)
	}
	return nil
}

// Hangup ends the participant's current call from any in-call state. The
// jamming reason is privileged and not accepted from participants.
func (e *Engine) Hangup(ctx context.Context, participantID uuid.UUID, reason string) *apperrors.AppError {
	if reason == "" || reason == domain.EndReasonJamming {
		reason = domain.EndReasonHangup
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hangupLocked(participantID, reason)
}

// Jam forcibly terminates a participant's active call. Triggered by
// external game systems, never by either participant.
func (e *Engine) Jam(ctx context.Context, participantID uuid.UUID) *apperrors.AppError {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, ok := e.presence.Get(participantID)
	if !ok {
		return apperrors.NotRegisteredError()
	}
	if !entry.State.InCall() {
		return apperrors.InvalidStateError("Participant is not in a call")
	}
	session, ok := e.sessions[entry.CallID]
	if !ok {
		return apperrors.NoSessionError()
	}

	peerID := session.PeerOf(participantID)
	e.emitTo(participantID, &domain.ServerEvent{
		Type:    domain.EventJammed,
		CallID:  session.CallID,
		Message: "Call jammed by outside interference",
	})
	e.emitTo(peerID, &domain.ServerEvent{
		Type:    domain.EventDisconnected,
		CallID:  session.CallID,
		Reason:  domain.EndReasonJamming,
		Message: "Call jammed by outside interference",
	})
	e.finish(session, domain.CallStatusJammed, domain.EndReasonJamming)

	logger.Info("Call jammed",
		zap.String("call_id", session.CallID.String()),
		zap.String("participant_id", participantID.String()))
	return nil
}

// Disconnect handles a dropped connection. A hangup with reason logout is
// synthesized first if the participant was mid-call, then the presence
// entry is removed. Stale connection ids (superseded by a re-registration)
// are ignored.
func (e *Engine) Disconnect(ctx context.Context, participantID, connectionID uuid.UUID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, ok := e.presence.Get(participantID)
	if !ok {
		return
	}
	if entry.ConnectionID != connectionID {
		logger.Debug("Ignoring disconnect from superseded connection",
			zap.String("participant_id", participantID.String()),
			zap.String("connection_id", connectionID.String()))
		return
	}

	if entry.State.InCall() {
		e.hangupLocked(participantID, domain.EndReasonLogout)
	}

	e.presence.Remove(participantID)
	e.mirrorAsync(func(ctx context.Context, m PresenceMirror) error {
		return m.SetOffline(ctx, participantID)
	})

	logger.Debug("Participant disconnected",
		zap.String("participant_id", participantID.String()))
}

// handleTimeout fires when a ring timer expires. The precondition re-check
// under the engine lock makes a racing ACCEPT/REJECT/CANCEL win cleanly:
// once the session left the calling status this is a no-op.
func (e *Engine) handleTimeout(callID uuid.UUID) {
	var notifyMissed func()

	e.mu.Lock()
	session, ok := e.sessions[callID]
	if !ok || session.Status != domain.CallStatusCalling {
		e.mu.Unlock()
		return
	}

	e.emitTo(session.CallerID, &domain.ServerEvent{
		Type:    domain.EventDisconnected,
		CallID:  session.CallID,
		Reason:  domain.EndReasonTimeout,
		Message: "Call timed out",
	})
	e.emitTo(session.ReceiverID, &domain.ServerEvent{
		Type:    domain.EventDisconnected,
		CallID:  session.CallID,
		Reason:  domain.EndReasonTimeout,
		Message: "Missed call",
	})
	e.finish(session, domain.CallStatusMissed, domain.EndReasonTimeout)

	callerID, receiverID := session.CallerID, session.ReceiverID
	notifyMissed = func() {
		ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultTimeout)
		defer cancel()
		name := e.resolveName(ctx, callerID)
		e.notifyMissedAsync(receiverID, callerID, name, callID)
	}
	e.mu.Unlock()

	logger.Info("Call timed out", zap.String("call_id", callID.String()))
	notifyMissed()
}

func (e *Engine) hangupLocked(participantID uuid.UUID, reason string) *apperrors.AppError {
	entry, ok := e.presence.Get(participantID)
	if !ok {
		return e.reject(apperrors.NotRegisteredError())
	}
	if !entry.State.InCall() {
		return e.reject(apperrors.InvalidStateError("Not in a call"))
	}
	session, ok := e.sessions[entry.CallID]
	if !ok {
		return e.reject(apperrors.NoSessionError())
	}

	peerID := session.PeerOf(participantID)
	e.emitTo(peerID, &domain.ServerEvent{
		Type:    domain.EventDisconnected,
		CallID:  session.CallID,
		Reason:  reason,
		Message: disconnectMessage(reason),
	})
	e.finish(session, domain.CallStatusEnded, reason)

	logger.Info("Call hung up",
		zap.String("call_id", session.CallID.String()),
		zap.String("participant_id", participantID.String()),
		zap.String("reason", reason))
	return nil
}

// finish drives the single terminal transition of a session: timer retired,
// status stamped, system transcript entry appended, both participants back
// to IDLE. Calling it on an already-terminal session is a no-op.
func (e *Engine) finish(session *domain.CallSession, status domain.CallStatus, reason string) {
	if session.Status.Terminal() {
		return
	}

	e.retireTimer(session.CallID)

	endedAt := e.now()
	session.Status = status
	session.EndedAt = &endedAt
	session.EndReason = reason
	e.appendSystem(session, terminalSystemText(status))
	delete(e.sessions, session.CallID)

	for _, id := range []uuid.UUID{session.CallerID, session.ReceiverID} {
		if entry, ok := e.presence.Get(id); ok && entry.CallID == session.CallID {
			e.presence.Reset(id)
			e.mirrorCallState(id, domain.StateIdle)
		}
	}

	e.persistFinish(session)
	e.archiveAsync(session)

	if e.metrics != nil {
		e.metrics.CallFinished(string(status), time.Duration(session.DurationSeconds())*time.Second)
	}
}

// retireTimer cancels and forgets a call's ring timer. Idempotent.
func (e *Engine) retireTimer(callID uuid.UUID) {
	if cancel, ok := e.timers[callID]; ok {
		cancel()
		delete(e.timers, callID)
	}
}

func (e *Engine) appendSystem(session *domain.CallSession, text string) {
	msg := &domain.CallMessage{
		CallID:    session.CallID,
		Seq:       len(session.Messages) + 1,
		Text:      text,
		Type:      domain.MessageTypeSystem,
		CreatedAt: e.now(),
	}
	session.Messages = append(session.Messages, msg)
	e.persistMessage(msg)
}

func (e *Engine) appendUserMessage(session *domain.CallSession, senderID uuid.UUID, text, msgType string) *domain.CallMessage {
	msg := &domain.CallMessage{
		CallID:    session.CallID,
		Seq:       len(session.Messages) + 1,
		SenderID:  senderID,
		Text:      text,
		Type:      msgType,
		CreatedAt: e.now(),
	}
	session.Messages = append(session.Messages, msg)
	e.persistMessage(msg)
	return msg
}

func (e *Engine) persistCreate(session *domain.CallSession) {
	if e.persister == nil {
		return
	}
	snapshot := session.Clone()
	e.persister.Enqueue("create_session", func(ctx context.Context) error {
		return e.store.CreateSession(ctx, snapshot)
	})
}

func (e *Engine) persistConnected(session *domain.CallSession) {
	if e.persister == nil {
		return
	}
	snapshot := session.Clone()
	e.persister.Enqueue("mark_connected", func(ctx context.Context) error {
		return e.store.MarkConnected(ctx, snapshot)
	})
}

func (e *Engine) persistMessage(msg *domain.CallMessage) {
	if e.persister == nil {
		return
	}
	e.persister.Enqueue("append_message", func(ctx context.Context) error {
		return e.store.AppendMessage(ctx, msg)
	})
}

func (e *Engine) persistFinish(session *domain.CallSession) {
	if e.persister == nil {
		return
	}
	snapshot := session.Clone()
	e.persister.Enqueue("finish_session", func(ctx context.Context) error {
		return e.store.FinishSession(ctx, snapshot)
	})
}

func (e *Engine) archiveAsync(session *domain.CallSession) {
	if e.archiver == nil {
		return
	}
	snapshot := session.Clone()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultTimeout)
		defer cancel()
		if err := e.archiver.Archive(ctx, snapshot); err != nil {
			logger.Warn("Transcript archive failed",
				zap.String("call_id", snapshot.CallID.String()),
				zap.Error(err))
		}
	}()
}

func (e *Engine) mirrorAsync(op func(ctx context.Context, m PresenceMirror) error) {
	if e.mirror == nil {
		return
	}
	m := e.mirror
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultTimeout)
		defer cancel()
		if err := op(ctx, m); err != nil {
			logger.Warn("Presence mirror write failed", zap.Error(err))
		}
	}()
}

func (e *Engine) mirrorCallState(participantID uuid.UUID, state domain.ParticipantState) {
	e.mirrorAsync(func(ctx context.Context, m PresenceMirror) error {
		return m.SetCallState(ctx, participantID, state)
	})
}

func (e *Engine) notifyMissedAsync(calleeID, callerID uuid.UUID, callerName string, callID uuid.UUID) {
	if e.notifier == nil {
		return
	}
	n := e.notifier
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultTimeout)
		defer cancel()
		if err := n.NotifyMissedCall(ctx, calleeID, callerID, callerName, callID); err != nil {
			logger.Warn("Missed-call notification failed",
				zap.String("callee_id", calleeID.String()),
				zap.Error(err))
		}
	}()
}

// emit sends an event to a connection. Delivery failure is logged and
// otherwise ignored; local state never depends on it.
func (e *Engine) emit(connectionID uuid.UUID, ev *domain.ServerEvent) {
	ev.Timestamp = e.now()
	if err := e.sender.Send(connectionID, ev); err != nil {
		logger.Debug("Event delivery failed",
			zap.String("connection_id", connectionID.String()),
			zap.String("event", ev.Type),
			zap.Error(err))
	}
	if e.metrics != nil {
		e.metrics.RecordEvent("out", ev.Type)
	}
}

// emitTo addresses an event to a participant's current connection, if any.
func (e *Engine) emitTo(participantID uuid.UUID, ev *domain.ServerEvent) {
	entry, ok := e.presence.Get(participantID)
	if !ok {
		return
	}
	e.emit(entry.ConnectionID, ev)
}

func (e *Engine) reject(appErr *apperrors.AppError) *apperrors.AppError {
	if e.metrics != nil {
		e.metrics.RecordProtocolError(string(appErr.Code))
	}
	return appErr
}

func (e *Engine) resolveName(ctx context.Context, participantID uuid.UUID) string {
	if e.names == nil {
		return participantID.String()
	}
	name, err := e.names.ResolveDisplayName(ctx, participantID)
	if err != nil || name == "" {
		return participantID.String()
	}
	return name
}

func terminalSystemText(status domain.CallStatus) string {
	switch status {
	case domain.CallStatusRejected:
		return "call rejected"
	case domain.CallStatusMissed:
		return "call missed"
	case domain.CallStatusJammed:
		return "call jammed"
	default:
		return "call ended"
	}
}

func disconnectMessage(reason string) string {
	switch reason {
	case domain.EndReasonLogout:
		return "Peer disconnected"
	case domain.EndReasonCancelled:
		return "Call cancelled by caller"
	default:
		return "Peer hung up"
	}
}
