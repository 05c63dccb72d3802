package redis

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"conquest-backend/internal/database"
	"conquest-backend/internal/domain"
	"conquest-backend/pkg/constants"
)

// PresenceRepository mirrors participant presence into Redis so other game
// services can read availability without talking to the signaling engine.
// All writes go through the degraded-mode wrapper; a Redis outage makes the
// mirror stale, never the engine wrong.
type PresenceRepository struct {
	client *database.RedisClient
}

// NewPresenceRepository creates a new PresenceRepository
func NewPresenceRepository(client *database.RedisClient) *PresenceRepository {
	return &PresenceRepository{client: client}
}

// SetOnline marks a participant online with an idle call state
func (r *PresenceRepository) SetOnline(ctx context.Context, participantID uuid.UUID) error {
	key := fmt.Sprintf("presence:%s", participantID)

	// TTL guards against entries orphaned by a crashed signaling node
	err := r.client.SafeSet(ctx, key, string(domain.StateIdle), constants.PresenceTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to set participant online: %w", err)
	}

	err = r.client.SafeSAdd(ctx, "presence:online", participantID.String()).Err()
	if err != nil {
		return fmt.Errorf("failed to add to online set: %w", err)
	}

	return nil
}

// SetOffline removes a participant from the mirror
func (r *PresenceRepository) SetOffline(ctx context.Context, participantID uuid.UUID) error {
	key := fmt.Sprintf("presence:%s", participantID)

	err := r.client.SafeDel(ctx, key).Err()
	if err != nil {
		return fmt.Errorf("failed to delete presence: %w", err)
	}

	err = r.client.SafeSRem(ctx, "presence:online", participantID.String()).Err()
	if err != nil {
		return fmt.Errorf("failed to remove from online set: %w", err)
	}

	return nil
}

// SetCallState updates a participant's mirrored call state
func (r *PresenceRepository) SetCallState(ctx context.Context, participantID uuid.UUID, state domain.ParticipantState) error {
	key := fmt.Sprintf("presence:%s", participantID)

	err := r.client.SafeSet(ctx, key, string(state), constants.PresenceTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to set call state: %w", err)
	}

	return nil
}

// GetOnlineParticipants retrieves the mirrored set of online participant ids
func (r *PresenceRepository) GetOnlineParticipants(ctx context.Context) ([]uuid.UUID, error) {
	idStrs, err := r.client.SafeSMembers(ctx, "presence:online").Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get online participants: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(idStrs))
	for _, idStr := range idStrs {
		id, err := uuid.Parse(idStr)
		if err != nil {
			continue // Skip invalid UUIDs
		}
		ids = append(ids, id)
	}

	return ids, nil
}

// GetOnlineCount returns the mirrored number of online participants
func (r *PresenceRepository) GetOnlineCount(ctx context.Context) (int64, error) {
	count, err := r.client.SafeSCard(ctx, "presence:online").Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count online participants: %w", err)
	}
	return count, nil
}

// IsDegraded returns true if Redis is in degraded mode
func (r *PresenceRepository) IsDegraded() bool {
	return r.client.IsDegraded()
}
