package bowlingdb

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository defines the contract for game persistence. A nil db argument
// uses the repository's default connection.
type Repository interface {
	// Create inserts a new game.
	Create(ctx context.Context, db bun.IDB, game *Game) error

	// GetByUUID retrieves a game by its UUID.
	GetByUUID(ctx context.Context, db bun.IDB, gameID uuid.UUID) (*Game, error)

	// GetForUpdate retrieves a game and locks its row until the surrounding
	// transaction ends.
	GetForUpdate(ctx context.Context, db bun.IDB, gameID uuid.UUID) (*Game, error)

	// UpdateRolls stores a game's ledger together with its derived score.
	UpdateRolls(ctx context.Context, db bun.IDB, game *Game) error

	// ListByPlayer returns a player's games, most recent first. An empty
	// player lists every game.
	ListByPlayer(ctx context.Context, db bun.IDB, player string, limit int) ([]Game, error)
}
