package bowlingmigrations

import (
	"context"
	"fmt"

	bowlingdb "github.com/Black-And-White-Club/bowling-bot/app/modules/bowling/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating bowling_games table...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.NewCreateTable().Model((*bowlingdb.Game)(nil)).IfNotExists().Exec(ctx); err != nil {
				return fmt.Errorf("failed to create bowling_games table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE INDEX IF NOT EXISTS idx_bowling_games_player_created
				ON bowling_games(player, created_at DESC);
			`); err != nil {
				return fmt.Errorf("failed to add index to bowling_games: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				ALTER TABLE bowling_games
				ADD CONSTRAINT bowling_games_rolls_len CHECK (cardinality(rolls) <= 21);
			`); err != nil {
				return fmt.Errorf("failed to add rolls constraint: %w", err)
			}

			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping bowling_games table...")

		if _, err := db.NewDropTable().Model((*bowlingdb.Game)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}
		return nil
	})
}
