package repository

import (
	"context"

	"conquest-backend/internal/domain"
	"conquest-backend/internal/repository/cassandra"
	"conquest-backend/internal/repository/cockroach"
)

// CallStore combines the session record in CockroachDB with the transcript
// log in Cassandra. Either backend may be nil when the service runs in
// limited mode; the corresponding writes are skipped.
type CallStore struct {
	calls       *cockroach.CallRepository
	transcripts *cassandra.TranscriptRepository
}

// NewCallStore creates a call store over the given backends.
func NewCallStore(calls *cockroach.CallRepository, transcripts *cassandra.TranscriptRepository) *CallStore {
	return &CallStore{
		calls:       calls,
		transcripts: transcripts,
	}
}

// CreateSession records a new call session at ring time.
func (s *CallStore) CreateSession(ctx context.Context, session *domain.CallSession) error {
	if s.calls == nil {
		return nil
	}
	return s.calls.Create(ctx, session)
}

// MarkConnected records the connected transition.
func (s *CallStore) MarkConnected(ctx context.Context, session *domain.CallSession) error {
	if s.calls == nil {
		return nil
	}
	return s.calls.MarkConnected(ctx, session)
}

// AppendMessage appends one transcript entry.
func (s *CallStore) AppendMessage(ctx context.Context, message *domain.CallMessage) error {
	if s.transcripts == nil {
		return nil
	}
	return s.transcripts.Append(message)
}

// FinishSession records the terminal outcome.
func (s *CallStore) FinishSession(ctx context.Context, session *domain.CallSession) error {
	if s.calls == nil {
		return nil
	}
	return s.calls.Finish(ctx, session)
}
