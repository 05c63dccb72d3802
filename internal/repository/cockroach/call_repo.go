package cockroach

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"conquest-backend/internal/domain"
)

// CallRepository handles call session records
type CallRepository struct {
	pool *pgxpool.Pool
}

// NewCallRepository creates a new call repository
func NewCallRepository(pool *pgxpool.Pool) *CallRepository {
	return &CallRepository{pool: pool}
}

// Create inserts a new call session record at ring time
func (r *CallRepository) Create(ctx context.Context, session *domain.CallSession) error {
	query := `
		INSERT INTO call_sessions (
			call_id, caller_id, receiver_id, status, started_at
		) VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		session.CallID,
		session.CallerID,
		session.ReceiverID,
		session.Status,
		session.StartedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create call session: %w", err)
	}

	return nil
}

// MarkConnected records the connected transition
func (r *CallRepository) MarkConnected(ctx context.Context, session *domain.CallSession) error {
	query := `
		UPDATE call_sessions
		SET status = $2, connected_at = $3
		WHERE call_id = $1
	`

	_, err := r.pool.Exec(ctx, query, session.CallID, session.Status, session.ConnectedAt)
	if err != nil {
		return fmt.Errorf("failed to mark call connected: %w", err)
	}

	return nil
}

// Finish records the terminal outcome of a session
func (r *CallRepository) Finish(ctx context.Context, session *domain.CallSession) error {
	query := `
		UPDATE call_sessions
		SET status = $2,
		    end_reason = $3,
		    ended_at = $4,
		    duration = $5
		WHERE call_id = $1
	`

	_, err := r.pool.Exec(ctx, query,
		session.CallID,
		session.Status,
		session.EndReason,
		session.EndedAt,
		session.DurationSeconds(),
	)

	if err != nil {
		return fmt.Errorf("failed to finish call session: %w", err)
	}

	return nil
}

// GetByID retrieves a call session by ID
func (r *CallRepository) GetByID(ctx context.Context, callID uuid.UUID) (*domain.CallSession, error) {
	query := `
		SELECT call_id, caller_id, receiver_id, status, started_at,
		       connected_at, ended_at, end_reason
		FROM call_sessions
		WHERE call_id = $1
	`

	session := &domain.CallSession{}
	var endReason *string
	err := r.pool.QueryRow(ctx, query, callID).Scan(
		&session.CallID,
		&session.CallerID,
		&session.ReceiverID,
		&session.Status,
		&session.StartedAt,
		&session.ConnectedAt,
		&session.EndedAt,
		&endReason,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("call session not found")
		}
		return nil, fmt.Errorf("failed to get call session: %w", err)
	}

	if endReason != nil {
		session.EndReason = *endReason
	}
	return session, nil
}

// GetParticipantCalls retrieves call history for a participant, most recent
// first
func (r *CallRepository) GetParticipantCalls(ctx context.Context, participantID uuid.UUID, limit, offset int) ([]*domain.CallSession, error) {
	query := `
		SELECT call_id, caller_id, receiver_id, status, started_at,
		       connected_at, ended_at, end_reason
		FROM call_sessions
		WHERE caller_id = $1 OR receiver_id = $1
		ORDER BY started_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, participantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get participant calls: %w", err)
	}
	defer rows.Close()

	var sessions []*domain.CallSession
	for rows.Next() {
		session := &domain.CallSession{}
		var endReason *string
		err := rows.Scan(
			&session.CallID,
			&session.CallerID,
			&session.ReceiverID,
			&session.Status,
			&session.StartedAt,
			&session.ConnectedAt,
			&session.EndedAt,
			&endReason,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan call session: %w", err)
		}
		if endReason != nil {
			session.EndReason = *endReason
		}
		sessions = append(sessions, session)
	}

	return sessions, nil
}
