package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"conquest-backend/internal/database"
	"conquest-backend/pkg/constants"
	"conquest-backend/pkg/logger"
	"conquest-backend/pkg/push"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// PushTokenRepository handles push notification token storage in Redis
type PushTokenRepository struct {
	client *database.RedisClient
}

// NewPushTokenRepository creates a new push token repository
func NewPushTokenRepository(client *database.RedisClient) *PushTokenRepository {
	return &PushTokenRepository{client: client}
}

// Store stores a push notification token
func (r *PushTokenRepository) Store(ctx context.Context, token *push.Token) error {
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}

	now := time.Now().Unix()
	if token.CreatedAt == 0 {
		token.CreatedAt = now
	}
	token.UpdatedAt = now

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	// Key format: push:token:{token}
	tokenKey := fmt.Sprintf("push:token:%s", token.Token)
	if err := r.client.SafeSet(ctx, tokenKey, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}

	// Key format: push:participant:{participantID}:tokens
	participantKey := fmt.Sprintf("push:participant:%s:tokens", token.ParticipantID)
	if err := r.client.SafeSAdd(ctx, participantKey, token.Token).Err(); err != nil {
		return fmt.Errorf("failed to add token to participant set: %w", err)
	}

	if err := r.client.SafeExpire(ctx, participantKey, constants.PushTokenExpiry).Err(); err != nil {
		logger.Warn("Failed to set expiration on participant tokens set",
			zap.String("participant_id", token.ParticipantID.String()),
			zap.Error(err))
	}

	logger.Debug("Push token stored",
		zap.String("token_id", token.ID.String()),
		zap.String("participant_id", token.ParticipantID.String()),
		zap.String("token_type", string(token.Type)))

	return nil
}

// GetByToken retrieves a token by its value
func (r *PushTokenRepository) GetByToken(ctx context.Context, tokenStr string) (*push.Token, error) {
	tokenKey := fmt.Sprintf("push:token:%s", tokenStr)
	data, err := r.client.SafeGet(ctx, tokenKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Token not found
		}
		return nil, fmt.Errorf("failed to get token: %w", err)
	}

	var token push.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token: %w", err)
	}

	return &token, nil
}

// GetByParticipantID retrieves all tokens for a participant
func (r *PushTokenRepository) GetByParticipantID(ctx context.Context, participantID uuid.UUID) ([]*push.Token, error) {
	participantKey := fmt.Sprintf("push:participant:%s:tokens", participantID)
	tokens, err := r.client.SafeSMembers(ctx, participantKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get participant tokens: %w", err)
	}

	var result []*push.Token
	for _, tokenStr := range tokens {
		token, err := r.GetByToken(ctx, tokenStr)
		if err != nil {
			logger.Warn("Failed to get token",
				zap.String("participant_id", participantID.String()),
				zap.Error(err))
			continue
		}
		if token != nil {
			result = append(result, token)
		}
	}

	return result, nil
}

// Update updates an existing token
func (r *PushTokenRepository) Update(ctx context.Context, token *push.Token) error {
	token.UpdatedAt = time.Now().Unix()

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	tokenKey := fmt.Sprintf("push:token:%s", token.Token)
	if err := r.client.SafeSet(ctx, tokenKey, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to update token: %w", err)
	}

	return nil
}

// DeleteByParticipantID removes all tokens for a participant
func (r *PushTokenRepository) DeleteByParticipantID(ctx context.Context, participantID uuid.UUID) error {
	participantKey := fmt.Sprintf("push:participant:%s:tokens", participantID)
	tokens, err := r.client.SafeSMembers(ctx, participantKey).Result()
	if err != nil {
		return fmt.Errorf("failed to get participant tokens: %w", err)
	}

	for _, tokenStr := range tokens {
		tokenKey := fmt.Sprintf("push:token:%s", tokenStr)
		if err := r.client.SafeDel(ctx, tokenKey).Err(); err != nil {
			logger.Warn("Failed to delete token",
				zap.String("participant_id", participantID.String()),
				zap.Error(err))
		}
	}

	if err := r.client.SafeDel(ctx, participantKey).Err(); err != nil {
		return fmt.Errorf("failed to delete participant tokens set: %w", err)
	}

	logger.Debug("All push tokens deleted for participant",
		zap.String("participant_id", participantID.String()),
		zap.Int("count", len(tokens)))

	return nil
}

// MarkInactive marks a token as inactive by its value
func (r *PushTokenRepository) MarkInactive(ctx context.Context, tokenStr string) error {
	token, err := r.GetByToken(ctx, tokenStr)
	if err != nil {
		return err
	}
	if token == nil {
		return nil // Token not found
	}

	token.Active = false
	if err := r.Update(ctx, token); err != nil {
		return err
	}

	logger.Debug("Push token marked as inactive",
		zap.String("token_id", token.ID.String()),
		zap.String("participant_id", token.ParticipantID.String()))

	return nil
}
