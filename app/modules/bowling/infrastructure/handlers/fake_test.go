package bowlinghandlers

import (
	"context"

	bowlingservice "github.com/Black-And-White-Club/bowling-bot/app/modules/bowling/application"
	"github.com/google/uuid"
)

// ------------------------
// Fake Bowling Service
// ------------------------

type FakeBowlingService struct {
	trace []string

	StartGameFunc       func(ctx context.Context, player string) (*bowlingservice.GameInfo, error)
	RecordRollFunc      func(ctx context.Context, gameID uuid.UUID, pins int) (*bowlingservice.GameInfo, error)
	GetGameFunc         func(ctx context.Context, gameID uuid.UUID) (*bowlingservice.GameInfo, error)
	ListGamesFunc       func(ctx context.Context, player string, limit int) ([]bowlingservice.GameInfo, error)
	ScoreRollsFunc      func(ctx context.Context, rolls []int) (*bowlingservice.GameInfo, error)
	ImportScorecardFunc func(ctx context.Context, player, filename string, data []byte) (*bowlingservice.GameInfo, error)
}

func NewFakeBowlingService() *FakeBowlingService {
	return &FakeBowlingService{trace: []string{}}
}

func (f *FakeBowlingService) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeBowlingService) StartGame(ctx context.Context, player string) (*bowlingservice.GameInfo, error) {
	f.record("StartGame")
	if f.StartGameFunc != nil {
		return f.StartGameFunc(ctx, player)
	}
	return &bowlingservice.GameInfo{ID: uuid.New(), Player: player}, nil
}

func (f *FakeBowlingService) RecordRoll(ctx context.Context, gameID uuid.UUID, pins int) (*bowlingservice.GameInfo, error) {
	f.record("RecordRoll")
	if f.RecordRollFunc != nil {
		return f.RecordRollFunc(ctx, gameID, pins)
	}
	return &bowlingservice.GameInfo{ID: gameID, Rolls: []int{pins}, Score: pins}, nil
}

func (f *FakeBowlingService) GetGame(ctx context.Context, gameID uuid.UUID) (*bowlingservice.GameInfo, error) {
	f.record("GetGame")
	if f.GetGameFunc != nil {
		return f.GetGameFunc(ctx, gameID)
	}
	return nil, bowlingservice.ErrGameNotFound
}

func (f *FakeBowlingService) ListGames(ctx context.Context, player string, limit int) ([]bowlingservice.GameInfo, error) {
	f.record("ListGames")
	if f.ListGamesFunc != nil {
		return f.ListGamesFunc(ctx, player, limit)
	}
	return []bowlingservice.GameInfo{}, nil
}

func (f *FakeBowlingService) ScoreRolls(ctx context.Context, rolls []int) (*bowlingservice.GameInfo, error) {
	f.record("ScoreRolls")
	if f.ScoreRollsFunc != nil {
		return f.ScoreRollsFunc(ctx, rolls)
	}
	return &bowlingservice.GameInfo{Rolls: rolls}, nil
}

func (f *FakeBowlingService) ImportScorecard(ctx context.Context, player, filename string, data []byte) (*bowlingservice.GameInfo, error) {
	f.record("ImportScorecard")
	if f.ImportScorecardFunc != nil {
		return f.ImportScorecardFunc(ctx, player, filename, data)
	}
	return &bowlingservice.GameInfo{ID: uuid.New(), Player: player}, nil
}

func (f *FakeBowlingService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ bowlingservice.Service = (*FakeBowlingService)(nil)
