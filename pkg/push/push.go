package push

import (
	"context"
	"fmt"

	"conquest-backend/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Provider defines interface for sending push notifications
type Provider interface {
	Send(ctx context.Context, notification *Notification, tokens []string) (*SendResult, error)
}

// SendResult contains the result of a push notification send operation
type SendResult struct {
	SuccessCount  int
	FailureCount  int
	InvalidTokens []string
	Errors        []error
}

// Notification represents a push notification
type Notification struct {
	Title    string            `json:"title"`
	Body     string            `json:"body"`
	Data     map[string]string `json:"data,omitempty"`
	Priority string            `json:"priority,omitempty"` // high, normal, low
	Sound    string            `json:"sound,omitempty"`
	Badge    *int              `json:"badge,omitempty"`
	Category string            `json:"category,omitempty"`
}

// TokenType represents the type of push notification token
type TokenType string

const (
	TokenTypeFCM  TokenType = "fcm"  // Firebase Cloud Messaging
	TokenTypeAPNs TokenType = "apns" // Apple Push Notification Service
)

// Token represents a push notification token for a participant
type Token struct {
	ID            uuid.UUID `json:"id"`
	ParticipantID uuid.UUID `json:"participant_id"`
	Token         string    `json:"token"`
	Type          TokenType `json:"type"`
	DeviceID      string    `json:"device_id,omitempty"`
	Platform      string    `json:"platform,omitempty"` // ios, android
	Active        bool      `json:"active"`
	CreatedAt     int64     `json:"created_at"`
	UpdatedAt     int64     `json:"updated_at"`
}

// TokenRepository defines interface for storing and retrieving push tokens
type TokenRepository interface {
	Store(ctx context.Context, token *Token) error
	GetByParticipantID(ctx context.Context, participantID uuid.UUID) ([]*Token, error)
	GetByToken(ctx context.Context, token string) (*Token, error)
	Update(ctx context.Context, token *Token) error
	DeleteByParticipantID(ctx context.Context, participantID uuid.UUID) error
	MarkInactive(ctx context.Context, tokenStr string) error
}

// Service sends call-related notifications to participants who are not
// connected, or who just missed a call.
type Service struct {
	provider Provider
	repo     TokenRepository
}

// NewService creates a new push notification service
func NewService(provider Provider, repo TokenRepository) *Service {
	return &Service{
		provider: provider,
		repo:     repo,
	}
}

// RegisterToken registers a push notification token for a participant
func (s *Service) RegisterToken(ctx context.Context, token *Token) error {
	existing, err := s.repo.GetByToken(ctx, token.Token)
	if err == nil && existing != nil {
		existing.Active = true
		existing.UpdatedAt = token.UpdatedAt
		existing.DeviceID = token.DeviceID
		existing.Platform = token.Platform
		return s.repo.Update(ctx, existing)
	}

	return s.repo.Store(ctx, token)
}

// UnregisterAllTokens removes all tokens for a participant
func (s *Service) UnregisterAllTokens(ctx context.Context, participantID uuid.UUID) error {
	return s.repo.DeleteByParticipantID(ctx, participantID)
}

// NotifyMissedCall tells a participant they missed a call. callID may be
// Nil when the attempt never produced a session (callee was offline).
func (s *Service) NotifyMissedCall(ctx context.Context, calleeID, callerID uuid.UUID, callerName string, callID uuid.UUID) error {
	notification := &Notification{
		Title:    "Missed Call",
		Body:     fmt.Sprintf("You missed a call from %s", callerName),
		Priority: "high",
		Sound:    "default",
		Category: "MISSED_CALL",
		Data: map[string]string{
			"type":        "missed_call",
			"caller_id":   callerID.String(),
			"caller_name": callerName,
		},
	}
	if callID != uuid.Nil {
		notification.Data["call_id"] = callID.String()
	}

	tokens, err := s.activeTokens(ctx, calleeID)
	if err != nil {
		return err
	}
	if len(tokens) == 0 {
		logger.Debug("No active push tokens for callee",
			zap.String("callee_id", calleeID.String()))
		return nil
	}

	result, err := s.provider.Send(ctx, notification, tokens)
	if err != nil {
		logger.Error("Failed to send missed call notification",
			zap.String("callee_id", calleeID.String()),
			zap.Int("token_count", len(tokens)),
			zap.Error(err))
		return fmt.Errorf("failed to send missed call notification: %w", err)
	}

	logger.Info("Missed call notification sent",
		zap.String("callee_id", calleeID.String()),
		zap.Int("success_count", result.SuccessCount),
		zap.Int("failure_count", result.FailureCount))

	if len(result.InvalidTokens) > 0 {
		s.handleInvalidTokens(ctx, result.InvalidTokens)
	}

	return nil
}

func (s *Service) activeTokens(ctx context.Context, participantID uuid.UUID) ([]string, error) {
	tokens, err := s.repo.GetByParticipantID(ctx, participantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get push tokens: %w", err)
	}

	var active []string
	for _, token := range tokens {
		if token.Active {
			active = append(active, token.Token)
		}
	}
	return active, nil
}

// handleInvalidTokens marks invalid tokens as inactive
func (s *Service) handleInvalidTokens(ctx context.Context, invalidTokens []string) {
	for _, tokenStr := range invalidTokens {
		if err := s.repo.MarkInactive(ctx, tokenStr); err != nil {
			logger.Warn("Failed to mark token as inactive", zap.Error(err))
		}
	}
}

// MockProvider is a mock implementation for development/testing
type MockProvider struct {
	NotificationsSent int
}

// Send implements Provider interface
func (m *MockProvider) Send(ctx context.Context, notification *Notification, tokens []string) (*SendResult, error) {
	m.NotificationsSent++

	logger.Debug("MockProvider: Sending notification",
		zap.String("title", notification.Title),
		zap.String("body", notification.Body),
		zap.Int("token_count", len(tokens)))

	return &SendResult{
		SuccessCount: len(tokens),
	}, nil
}
