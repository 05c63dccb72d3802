package domain

import (
	"time"

	"github.com/google/uuid"
)

// Player is the game profile the signaling layer reads display names from.
// Profile lifecycle is owned elsewhere in the backend.
type Player struct {
	PlayerID    uuid.UUID `json:"player_id"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}
