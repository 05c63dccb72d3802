package cockroach

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"conquest-backend/internal/domain"
)

// PlayerRepository handles player profile lookups
type PlayerRepository struct {
	pool *pgxpool.Pool
}

// NewPlayerRepository creates a new player repository
func NewPlayerRepository(pool *pgxpool.Pool) *PlayerRepository {
	return &PlayerRepository{pool: pool}
}

// ResolveDisplayName returns the player's display name, or an error when the
// player is unknown. Callers fall back to the raw id on error.
func (r *PlayerRepository) ResolveDisplayName(ctx context.Context, playerID uuid.UUID) (string, error) {
	query := `
		SELECT display_name
		FROM players
		WHERE player_id = $1
	`

	var name string
	err := r.pool.QueryRow(ctx, query, playerID).Scan(&name)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", fmt.Errorf("player not found")
		}
		return "", fmt.Errorf("failed to resolve display name: %w", err)
	}

	return name, nil
}

// GetByID retrieves a player profile
func (r *PlayerRepository) GetByID(ctx context.Context, playerID uuid.UUID) (*domain.Player, error) {
	query := `
		SELECT player_id, display_name, created_at
		FROM players
		WHERE player_id = $1
	`

	player := &domain.Player{}
	err := r.pool.QueryRow(ctx, query, playerID).Scan(
		&player.PlayerID,
		&player.DisplayName,
		&player.CreatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("player not found")
		}
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	return player, nil
}
