package push

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"conquest-backend/pkg/logger"
	"conquest-backend/pkg/push"
)

// Handler manages push notification tokens for call participants. Identity
// is asserted by the game gateway in front of this service, so the
// participant id rides in the request itself.
type Handler struct {
	pushService *push.Service
}

// NewHandler creates a new push token handler
func NewHandler(pushService *push.Service) *Handler {
	return &Handler{pushService: pushService}
}

// RegisterTokenRequest represents a request to register a push token
type RegisterTokenRequest struct {
	ParticipantID uuid.UUID      `json:"participant_id" binding:"required"`
	Token         string         `json:"token" binding:"required"`
	Type          push.TokenType `json:"type" binding:"required,oneof=fcm apns"`
	DeviceID      string         `json:"device_id"`
	Platform      string         `json:"platform"` // ios, android
}

// RegisterToken registers a device token so the participant can receive
// missed-call notifications while offline.
func (h *Handler) RegisterToken(c *gin.Context) {
	var req RegisterTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Platform != "" && req.Platform != "ios" && req.Platform != "android" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid platform. Must be 'ios' or 'android'"})
		return
	}

	now := time.Now().Unix()
	token := &push.Token{
		ID:            uuid.New(),
		ParticipantID: req.ParticipantID,
		Token:         req.Token,
		Type:          req.Type,
		DeviceID:      req.DeviceID,
		Platform:      req.Platform,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := h.pushService.RegisterToken(c.Request.Context(), token); err != nil {
		logger.Error("Failed to register push token",
			zap.String("participant_id", req.ParticipantID.String()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register token"})
		return
	}

	logger.Info("Push token registered",
		zap.String("participant_id", req.ParticipantID.String()),
		zap.String("token_type", string(req.Type)),
		zap.String("platform", req.Platform))

	c.JSON(http.StatusOK, gin.H{
		"message":  "Token registered successfully",
		"token_id": token.ID,
	})
}

// UnregisterAllTokens removes every token for a participant, typically when
// they opt out of call notifications or delete their account.
func (h *Handler) UnregisterAllTokens(c *gin.Context) {
	participantID, err := uuid.Parse(c.Param("participant_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid participant_id"})
		return
	}

	if err := h.pushService.UnregisterAllTokens(c.Request.Context(), participantID); err != nil {
		logger.Error("Failed to unregister push tokens",
			zap.String("participant_id", participantID.String()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unregister tokens"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "All tokens unregistered successfully"})
}
