package bowlingdb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Game is the persisted roll ledger of one game. Score and Complete are
// denormalized from Rolls on every write so games can be listed without
// replaying them.
type Game struct {
	bun.BaseModel `bun:"table:bowling_games,alias:bg"`

	UUID      uuid.UUID `bun:"uuid,pk,type:uuid"`
	Player    string    `bun:"player,notnull"`
	Rolls     []int     `bun:"rolls,array,notnull"`
	Score     int       `bun:"score,notnull,default:0"`
	Complete  bool      `bun:"complete,notnull,default:false"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

var _ bun.BeforeInsertHook = (*Game)(nil)

func (g *Game) BeforeInsert(ctx context.Context, _ *bun.InsertQuery) error {
	if g.UUID == uuid.Nil {
		g.UUID = uuid.New()
	}
	if g.Rolls == nil {
		g.Rolls = []int{}
	}
	return nil
}
