package cassandra

import (
	"fmt"

	"github.com/gocql/gocql"
	"github.com/google/uuid"

	"conquest-backend/internal/domain"
)

// TranscriptRepository stores call transcripts in Cassandra. Each call's
// transcript is one partition, clustered by message sequence, so appends and
// full-transcript reads stay single-partition.
type TranscriptRepository struct {
	session *gocql.Session
}

// NewTranscriptRepository creates a new TranscriptRepository
func NewTranscriptRepository(session *gocql.Session) *TranscriptRepository {
	return &TranscriptRepository{session: session}
}

// Append inserts one transcript entry
func (r *TranscriptRepository) Append(message *domain.CallMessage) error {
	query := `
		INSERT INTO call_transcripts (
			call_id, seq, sender_id, content, message_type, created_at
		) VALUES (?, ?, ?, ?, ?, ?)
	`

	err := r.session.Query(query,
		message.CallID,
		message.Seq,
		message.SenderID,
		message.Text,
		message.Type,
		message.CreatedAt,
	).Exec()

	if err != nil {
		return fmt.Errorf("failed to append transcript entry: %w", err)
	}

	return nil
}

// GetTranscript retrieves a call's full transcript in sequence order
func (r *TranscriptRepository) GetTranscript(callID uuid.UUID) ([]*domain.CallMessage, error) {
	query := `
		SELECT call_id, seq, sender_id, content, message_type, created_at
		FROM call_transcripts
		WHERE call_id = ?
		ORDER BY seq ASC
	`

	iter := r.session.Query(query, callID).Iter()

	var messages []*domain.CallMessage
	for {
		message := &domain.CallMessage{}
		if !iter.Scan(
			&message.CallID,
			&message.Seq,
			&message.SenderID,
			&message.Text,
			&message.Type,
			&message.CreatedAt,
		) {
			break
		}
		messages = append(messages, message)
	}

	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("failed to fetch transcript: %w", err)
	}

	return messages, nil
}

// CountEntries counts transcript entries for a call
func (r *TranscriptRepository) CountEntries(callID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM call_transcripts WHERE call_id = ?`

	var count int
	err := r.session.Query(query, callID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transcript entries: %w", err)
	}

	return count, nil
}
