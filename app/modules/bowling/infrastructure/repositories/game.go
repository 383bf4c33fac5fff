package bowlingdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new game repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

// Create inserts a new game.
func (r *Impl) Create(ctx context.Context, db bun.IDB, game *Game) error {
	db = r.resolveDB(db)
	now := time.Now().UTC()
	game.CreatedAt = now
	game.UpdatedAt = now
	if _, err := db.NewInsert().Model(game).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert game: %w", err)
	}
	return nil
}

// GetByUUID retrieves a game by its UUID.
func (r *Impl) GetByUUID(ctx context.Context, db bun.IDB, gameID uuid.UUID) (*Game, error) {
	db = r.resolveDB(db)
	game := new(Game)
	err := db.NewSelect().
		Model(game).
		Where("uuid = ?", gameID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get game by UUID: %w", err)
	}
	return game, nil
}

// GetForUpdate retrieves a game with a row lock.
func (r *Impl) GetForUpdate(ctx context.Context, db bun.IDB, gameID uuid.UUID) (*Game, error) {
	db = r.resolveDB(db)
	game := new(Game)
	err := db.NewSelect().
		Model(game).
		Where("uuid = ?", gameID).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock game: %w", err)
	}
	return game, nil
}

// UpdateRolls stores a game's ledger and derived fields.
func (r *Impl) UpdateRolls(ctx context.Context, db bun.IDB, game *Game) error {
	db = r.resolveDB(db)
	game.UpdatedAt = time.Now().UTC()
	result, err := db.NewUpdate().
		Model(game).
		Column("rolls", "score", "complete", "updated_at").
		Where("uuid = ?", game.UUID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update game rolls: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

// ListByPlayer returns games ordered by creation time, newest first.
func (r *Impl) ListByPlayer(ctx context.Context, db bun.IDB, player string, limit int) ([]Game, error) {
	db = r.resolveDB(db)
	var games []Game
	q := db.NewSelect().
		Model(&games).
		OrderExpr("created_at DESC").
		Limit(limit)
	if player != "" {
		q = q.Where("player = ?", player)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	return games, nil
}
