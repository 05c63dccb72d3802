package signaling

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"conquest-backend/internal/domain"
	"conquest-backend/pkg/constants"
	"conquest-backend/pkg/logger"
	"conquest-backend/pkg/metrics"
)

// SessionStore persists call sessions and transcript messages. Exactly four
// writes per call lifecycle: create on CALL, mark connected on ACCEPT,
// append per message, finish on the terminal transition.
type SessionStore interface {
	CreateSession(ctx context.Context, session *domain.CallSession) error
	MarkConnected(ctx context.Context, session *domain.CallSession) error
	AppendMessage(ctx context.Context, message *domain.CallMessage) error
	FinishSession(ctx context.Context, session *domain.CallSession) error
}

type persistOp struct {
	name string
	run  func(ctx context.Context) error
}

// Persister executes store writes on a single background goroutine so a
// slow store never blocks the signaling path while per-call write order is
// preserved. Failures are logged, never surfaced to participants.
type Persister struct {
	ops     chan persistOp
	wg      sync.WaitGroup
	closed  bool
	mu      sync.Mutex
	metrics *metrics.Metrics
}

// NewPersister creates a persister and starts its worker goroutine.
func NewPersister(buffer int, m *metrics.Metrics) *Persister {
	p := &Persister{
		ops:     make(chan persistOp, buffer),
		metrics: m,
	}
	p.wg.Add(1)
	go p.run()
	return p
}

func (p *Persister) run() {
	defer p.wg.Done()
	for op := range p.ops {
		ctx, cancel := context.WithTimeout(context.Background(), constants.PersistTimeout)
		if err := op.run(ctx); err != nil {
			logger.Warn("Transcript write failed",
				zap.String("op", op.name),
				zap.Error(err))
			if p.metrics != nil {
				p.metrics.RecordPersistenceError(op.name)
			}
		}
		cancel()
	}
}

// Enqueue queues one write. If the queue is full the write is dropped and
// logged; durability is best-effort.
func (p *Persister) Enqueue(name string, run func(ctx context.Context) error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	select {
	case p.ops <- persistOp{name: name, run: run}:
	default:
		logger.Warn("Transcript write dropped, queue full", zap.String("op", name))
		if p.metrics != nil {
			p.metrics.RecordPersistenceError(name)
		}
	}
}

// Close drains queued writes and stops the worker.
func (p *Persister) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.ops)
	p.mu.Unlock()
	p.wg.Wait()
}
