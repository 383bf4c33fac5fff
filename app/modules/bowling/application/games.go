package bowlingservice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	bowlingevents "github.com/Black-And-White-Club/bowling-bot/app/modules/bowling/events"
	bowlingdb "github.com/Black-And-White-Club/bowling-bot/app/modules/bowling/infrastructure/repositories"
	"github.com/Black-And-White-Club/bowling-bot/pkg/bowling"
	"github.com/Black-And-White-Club/frolf-bot-shared/utils/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type gameResult = results.OperationResult[*GameInfo, error]

// StartGame opens an empty game for a player.
func (s *BowlingService) StartGame(ctx context.Context, player string) (*GameInfo, error) {
	player = strings.TrimSpace(player)
	info, err := unwrap(withTelemetry(s, ctx, "StartGame", player, func(ctx context.Context) (gameResult, error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (gameResult, error) {
			return s.startGameLogic(ctx, db, player)
		})
	}))
	if err != nil {
		return nil, err
	}

	s.metrics.RecordGameStarted(ctx)
	s.publish(ctx, bowlingevents.GameStartedV1, bowlingevents.GameStartedPayloadV1{
		GameID: info.ID,
		Player: info.Player,
	})
	return info, nil
}

func (s *BowlingService) startGameLogic(ctx context.Context, db bun.IDB, player string) (gameResult, error) {
	if player == "" {
		return results.FailureResult[*GameInfo, error](ErrInvalidPlayer), nil
	}

	row := &bowlingdb.Game{UUID: uuid.New(), Player: player, Rolls: []int{}}
	if err := s.repo.Create(ctx, db, row); err != nil {
		return gameResult{}, fmt.Errorf("failed to create game: %w", err)
	}
	return results.SuccessResult[*GameInfo, error](newGameInfo(row, bowling.NewGame())), nil
}

// RecordRoll appends one roll to a stored game. Engine rejections are
// returned as ErrInvalidPinCount or ErrFrameOverflow and leave the game
// unchanged.
func (s *BowlingService) RecordRoll(ctx context.Context, gameID uuid.UUID, pins int) (*GameInfo, error) {
	info, err := unwrap(withTelemetry(s, ctx, "RecordRoll", gameID.String(), func(ctx context.Context) (gameResult, error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (gameResult, error) {
			return s.recordRollLogic(ctx, db, gameID, pins)
		})
	}))
	if err != nil {
		if reason := RejectionReason(err); reason != "" {
			s.metrics.RecordRollRejected(ctx, reason)
		}
		return nil, err
	}

	s.metrics.RecordRollRecorded(ctx, pins)
	s.publish(ctx, bowlingevents.RollRecordedV1, bowlingevents.RollRecordedPayloadV1{
		GameID:       info.ID,
		Player:       info.Player,
		Pins:         pins,
		Frame:        info.LastRollFrame(),
		Score:        info.Score,
		Complete:     info.Complete,
		PinsStanding: info.PinsStanding,
	})
	if info.Complete {
		s.metrics.RecordGameCompleted(ctx, info.Score)
		s.publish(ctx, bowlingevents.GameCompletedV1, bowlingevents.GameCompletedPayloadV1{
			GameID: info.ID,
			Player: info.Player,
			Rolls:  info.Rolls,
			Score:  info.Score,
		})
	}
	return info, nil
}

func (s *BowlingService) recordRollLogic(ctx context.Context, db bun.IDB, gameID uuid.UUID, pins int) (gameResult, error) {
	row, err := s.repo.GetForUpdate(ctx, db, gameID)
	if err != nil {
		if errors.Is(err, bowlingdb.ErrNotFound) {
			return results.FailureResult[*GameInfo, error](ErrGameNotFound), nil
		}
		return gameResult{}, fmt.Errorf("failed to load game: %w", err)
	}

	game, err := bowling.Replay(row.Rolls)
	if err != nil {
		return gameResult{}, fmt.Errorf("stored rolls for game %s are invalid: %w", gameID, err)
	}
	if err := game.Record(pins); err != nil {
		return results.FailureResult[*GameInfo, error](err), nil
	}

	row.Rolls = game.Rolls()
	row.Score = game.Score()
	row.Complete = game.IsComplete()
	if err := s.repo.UpdateRolls(ctx, db, row); err != nil {
		return gameResult{}, fmt.Errorf("failed to store roll: %w", err)
	}
	return results.SuccessResult[*GameInfo, error](newGameInfo(row, game)), nil
}

// GetGame returns a stored game with its frame card.
func (s *BowlingService) GetGame(ctx context.Context, gameID uuid.UUID) (*GameInfo, error) {
	return unwrap(withTelemetry(s, ctx, "GetGame", gameID.String(), func(ctx context.Context) (gameResult, error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (gameResult, error) {
			row, err := s.repo.GetByUUID(ctx, db, gameID)
			if err != nil {
				if errors.Is(err, bowlingdb.ErrNotFound) {
					return results.FailureResult[*GameInfo, error](ErrGameNotFound), nil
				}
				return gameResult{}, fmt.Errorf("failed to get game: %w", err)
			}
			return infoFromRow(row)
		})
	}))
}

// ListGames returns stored games, most recent first. A non-positive limit
// uses the configured default; limits are capped.
func (s *BowlingService) ListGames(ctx context.Context, player string, limit int) ([]GameInfo, error) {
	player = strings.TrimSpace(player)
	if limit <= 0 {
		limit = s.defaultLimit
	}
	limit = min(limit, maxListLimit)

	type listResult = results.OperationResult[[]GameInfo, error]
	return unwrap(withTelemetry(s, ctx, "ListGames", player, func(ctx context.Context) (listResult, error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (listResult, error) {
			rows, err := s.repo.ListByPlayer(ctx, db, player, limit)
			if err != nil {
				return listResult{}, fmt.Errorf("failed to list games: %w", err)
			}
			games := make([]GameInfo, 0, len(rows))
			for i := range rows {
				res, err := infoFromRow(&rows[i])
				if err != nil {
					return listResult{}, err
				}
				games = append(games, **res.Success)
			}
			return results.SuccessResult[[]GameInfo, error](games), nil
		})
	}))
}

// ScoreRolls scores a roll sequence without storing it. The first rejected
// roll fails the whole sequence.
func (s *BowlingService) ScoreRolls(ctx context.Context, rolls []int) (*GameInfo, error) {
	return unwrap(withTelemetry(s, ctx, "ScoreRolls", fmt.Sprintf("%d rolls", len(rolls)), func(ctx context.Context) (gameResult, error) {
		game, err := bowling.Replay(rolls)
		if err != nil {
			return results.FailureResult[*GameInfo, error](err), nil
		}
		return results.SuccessResult[*GameInfo, error](newGameInfo(nil, game)), nil
	}))
}

// ImportScorecard parses an uploaded scorecard and stores it as a new game.
// The player argument wins over a player named on the card.
func (s *BowlingService) ImportScorecard(ctx context.Context, player, filename string, data []byte) (*GameInfo, error) {
	info, err := unwrap(withTelemetry(s, ctx, "ImportScorecard", filename, func(ctx context.Context) (gameResult, error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (gameResult, error) {
			return s.importScorecardLogic(ctx, db, player, filename, data)
		})
	}))
	if err != nil {
		return nil, err
	}

	s.metrics.RecordGameStarted(ctx)
	s.publish(ctx, bowlingevents.GameStartedV1, bowlingevents.GameStartedPayloadV1{
		GameID: info.ID,
		Player: info.Player,
	})
	if info.Complete {
		s.metrics.RecordGameCompleted(ctx, info.Score)
		s.publish(ctx, bowlingevents.GameCompletedV1, bowlingevents.GameCompletedPayloadV1{
			GameID: info.ID,
			Player: info.Player,
			Rolls:  info.Rolls,
			Score:  info.Score,
		})
	}
	return info, nil
}

func (s *BowlingService) importScorecardLogic(ctx context.Context, db bun.IDB, player, filename string, data []byte) (gameResult, error) {
	parser, err := s.parsers.GetParser(filename)
	if err != nil {
		return results.FailureResult[*GameInfo, error](fmt.Errorf("%w: %w", ErrInvalidScorecard, err)), nil
	}
	card, err := parser.Parse(data)
	if err != nil {
		return results.FailureResult[*GameInfo, error](fmt.Errorf("%w: %w", ErrInvalidScorecard, err)), nil
	}

	if p := strings.TrimSpace(player); p != "" {
		card.Player = p
	}
	if card.Player == "" {
		return results.FailureResult[*GameInfo, error](ErrInvalidPlayer), nil
	}

	game, err := bowling.Replay(card.Rolls)
	if err != nil {
		return results.FailureResult[*GameInfo, error](fmt.Errorf("%w: %w", ErrInvalidScorecard, err)), nil
	}

	row := &bowlingdb.Game{
		UUID:     uuid.New(),
		Player:   card.Player,
		Rolls:    game.Rolls(),
		Score:    game.Score(),
		Complete: game.IsComplete(),
	}
	if err := s.repo.Create(ctx, db, row); err != nil {
		return gameResult{}, fmt.Errorf("failed to create game: %w", err)
	}
	return results.SuccessResult[*GameInfo, error](newGameInfo(row, game)), nil
}

func infoFromRow(row *bowlingdb.Game) (gameResult, error) {
	game, err := bowling.Replay(row.Rolls)
	if err != nil {
		return gameResult{}, fmt.Errorf("stored rolls for game %s are invalid: %w", row.UUID, err)
	}
	return results.SuccessResult[*GameInfo, error](newGameInfo(row, game)), nil
}

// RejectionReason maps a roll error to its event reason, or "" when the
// error is not a rejection.
func RejectionReason(err error) string {
	switch {
	case errors.Is(err, bowling.ErrInvalidPinCount):
		return bowlingevents.ReasonInvalidPinCount
	case errors.Is(err, bowling.ErrFrameOverflow):
		return bowlingevents.ReasonFrameOverflow
	case errors.Is(err, ErrGameNotFound):
		return bowlingevents.ReasonGameNotFound
	}
	return ""
}
