package bowlingservice

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the bowling game operations.
type Service interface {
	// StartGame opens an empty game for a player.
	StartGame(ctx context.Context, player string) (*GameInfo, error)

	// RecordRoll appends one roll to a stored game.
	RecordRoll(ctx context.Context, gameID uuid.UUID, pins int) (*GameInfo, error)

	// GetGame returns a stored game with its frame card.
	GetGame(ctx context.Context, gameID uuid.UUID) (*GameInfo, error)

	// ListGames returns stored games, most recent first.
	ListGames(ctx context.Context, player string, limit int) ([]GameInfo, error)

	// ScoreRolls scores a roll sequence without storing it.
	ScoreRolls(ctx context.Context, rolls []int) (*GameInfo, error)

	// ImportScorecard parses an uploaded scorecard and stores it as a new game.
	ImportScorecard(ctx context.Context, player, filename string, data []byte) (*GameInfo, error)
}
