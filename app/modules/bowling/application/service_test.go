package bowlingservice

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	bowlingevents "github.com/Black-And-White-Club/bowling-bot/app/modules/bowling/events"
	bowlingmetrics "github.com/Black-And-White-Club/bowling-bot/app/modules/bowling/infrastructure/metrics"
	bowlingdb "github.com/Black-And-White-Club/bowling-bot/app/modules/bowling/infrastructure/repositories"
	"github.com/Black-And-White-Club/bowling-bot/pkg/bowling"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace/noop"
)

var mixedRolls = []int{10, 7, 3, 9, 0, 10, 0, 8, 8, 2, 0, 6, 10, 10, 10, 8, 1}

func newTestService(repo *FakeGameRepo, pub *FakePublisher) *BowlingService {
	return NewBowlingService(
		repo,
		pub,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		bowlingmetrics.NewNoop(),
		noop.NewTracerProvider().Tracer("test"),
		nil,
	)
}

func seedGame(repo *FakeGameRepo, rolls ...int) uuid.UUID {
	id := uuid.New()
	repo.Put(bowlingdb.Game{UUID: id, Player: gofakeit.Name(), Rolls: rolls})
	return id
}

func TestStartGame(t *testing.T) {
	tests := []struct {
		name      string
		player    string
		setupRepo func(*FakeGameRepo)
		wantErr   error
		wantInfra bool
	}{
		{name: "happy path", player: gofakeit.Name()},
		{name: "blank player", player: "   ", wantErr: ErrInvalidPlayer},
		{
			name:   "database error",
			player: gofakeit.Name(),
			setupRepo: func(f *FakeGameRepo) {
				f.CreateFunc = func(ctx context.Context, db bun.IDB, game *bowlingdb.Game) error {
					return errors.New("connection refused")
				}
			},
			wantInfra: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewFakeGameRepo()
			if tt.setupRepo != nil {
				tt.setupRepo(repo)
			}
			pub := NewFakePublisher()
			svc := newTestService(repo, pub)

			info, err := svc.StartGame(context.Background(), tt.player)
			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, pub.Topics())
				return
			case tt.wantInfra:
				require.Error(t, err)
				assert.Contains(t, err.Error(), "StartGame")
				assert.Empty(t, pub.Topics())
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.player, info.Player)
			assert.NotEqual(t, uuid.Nil, info.ID)
			assert.Empty(t, info.Rolls)
			assert.Len(t, info.Frames, bowling.FramesPerGame)
			assert.Equal(t, 1, info.CurrentFrame)
			assert.Equal(t, bowling.MaxPins, info.PinsStanding)
			assert.False(t, info.Complete)

			started, ok := decode[bowlingevents.GameStartedPayloadV1](pub, bowlingevents.GameStartedV1, 0)
			require.True(t, ok)
			assert.Equal(t, info.ID, started.GameID)
			assert.Equal(t, tt.player, started.Player)
		})
	}
}

func TestRecordRoll(t *testing.T) {
	loadErr := errors.New("connection reset")

	tests := []struct {
		name       string
		stored     []int
		missing    bool
		pins       int
		setupRepo  func(*FakeGameRepo)
		wantErr    error
		wantReason string
		wantInfra  bool
		wantRolls  []int
		wantScore  int
		wantFrame  int
	}{
		{name: "first roll", stored: []int{}, pins: 7, wantRolls: []int{7}, wantScore: 7, wantFrame: 1},
		{name: "spare closes frame", stored: []int{7}, pins: 3, wantRolls: []int{7, 3}, wantScore: 10, wantFrame: 1},
		{name: "strike bonus", stored: []int{10, 3}, pins: 4, wantRolls: []int{10, 3, 4}, wantScore: 24, wantFrame: 2},
		{name: "negative pins", stored: []int{}, pins: -1, wantErr: bowling.ErrInvalidPinCount, wantReason: bowlingevents.ReasonInvalidPinCount},
		{name: "too many pins", stored: []int{}, pins: 11, wantErr: bowling.ErrInvalidPinCount, wantReason: bowlingevents.ReasonInvalidPinCount},
		{name: "frame overflow", stored: []int{3}, pins: 8, wantErr: bowling.ErrFrameOverflow, wantReason: bowlingevents.ReasonFrameOverflow},
		{name: "completed game", stored: repeatRolls(20, 0), pins: 0, wantErr: bowling.ErrFrameOverflow, wantReason: bowlingevents.ReasonFrameOverflow},
		{name: "unknown game", missing: true, pins: 5, wantErr: ErrGameNotFound, wantReason: bowlingevents.ReasonGameNotFound},
		{
			name:   "load error",
			stored: []int{},
			pins:   5,
			setupRepo: func(f *FakeGameRepo) {
				f.GetForUpdateFunc = func(ctx context.Context, db bun.IDB, gameID uuid.UUID) (*bowlingdb.Game, error) {
					return nil, loadErr
				}
			},
			wantInfra: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewFakeGameRepo()
			if tt.setupRepo != nil {
				tt.setupRepo(repo)
			}
			gameID := uuid.New()
			if !tt.missing {
				gameID = seedGame(repo, tt.stored...)
			}
			pub := NewFakePublisher()
			svc := newTestService(repo, pub)

			info, err := svc.RecordRoll(context.Background(), gameID, tt.pins)
			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, info)
				assert.Equal(t, tt.wantReason, RejectionReason(err))
				assert.NotContains(t, repo.Trace(), "UpdateRolls")
				if !tt.missing {
					stored, _ := repo.Stored(gameID)
					assert.Equal(t, tt.stored, stored.Rolls)
				}
				assert.Empty(t, pub.Topics())
				return
			case tt.wantInfra:
				require.ErrorIs(t, err, loadErr)
				assert.Empty(t, RejectionReason(err))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantRolls, info.Rolls)
			assert.Equal(t, tt.wantScore, info.Score)
			assert.Equal(t, []string{"GetForUpdate", "UpdateRolls"}, repo.Trace())

			stored, ok := repo.Stored(gameID)
			require.True(t, ok)
			assert.Equal(t, tt.wantRolls, stored.Rolls)
			assert.Equal(t, tt.wantScore, stored.Score)

			recorded, ok := decode[bowlingevents.RollRecordedPayloadV1](pub, bowlingevents.RollRecordedV1, 0)
			require.True(t, ok)
			assert.Equal(t, gameID, recorded.GameID)
			assert.Equal(t, tt.pins, recorded.Pins)
			assert.Equal(t, tt.wantFrame, recorded.Frame)
			assert.Equal(t, tt.wantScore, recorded.Score)
			assert.Empty(t, pub.Messages(bowlingevents.GameCompletedV1))
		})
	}
}

func TestRecordRoll_PerfectGame(t *testing.T) {
	repo := NewFakeGameRepo()
	pub := NewFakePublisher()
	svc := newTestService(repo, pub)
	ctx := context.Background()

	info, err := svc.StartGame(ctx, gofakeit.Name())
	require.NoError(t, err)

	for i := 0; i < 12; i++ {
		info, err = svc.RecordRoll(ctx, info.ID, 10)
		require.NoError(t, err)
	}

	assert.Equal(t, 300, info.Score)
	assert.True(t, info.Complete)
	assert.Equal(t, PerfectGameMessage, info.Message)
	assert.Zero(t, info.PinsStanding)
	assert.Len(t, pub.Messages(bowlingevents.RollRecordedV1), 12)

	last, ok := decode[bowlingevents.RollRecordedPayloadV1](pub, bowlingevents.RollRecordedV1, 11)
	require.True(t, ok)
	assert.Equal(t, 10, last.Frame)
	assert.True(t, last.Complete)

	completed, ok := decode[bowlingevents.GameCompletedPayloadV1](pub, bowlingevents.GameCompletedV1, 0)
	require.True(t, ok)
	assert.Equal(t, 300, completed.Score)
	assert.Len(t, pub.Messages(bowlingevents.GameCompletedV1), 1)

	_, err = svc.RecordRoll(ctx, info.ID, 0)
	require.ErrorIs(t, err, bowling.ErrFrameOverflow)
}

func TestRecordRoll_GutterGameMessage(t *testing.T) {
	repo := NewFakeGameRepo()
	svc := newTestService(repo, NewFakePublisher())
	gameID := seedGame(repo, repeatRolls(19, 0)...)

	info, err := svc.RecordRoll(context.Background(), gameID, 0)
	require.NoError(t, err)
	assert.True(t, info.Complete)
	assert.Equal(t, GutterGameMessage, info.Message)
}

func TestRecordRoll_PublishFailureKeepsRoll(t *testing.T) {
	repo := NewFakeGameRepo()
	pub := NewFakePublisher()
	pub.PublishFunc = func(topic string, msgs ...*message.Message) error {
		return errors.New("broker down")
	}
	svc := newTestService(repo, pub)
	gameID := seedGame(repo)

	info, err := svc.RecordRoll(context.Background(), gameID, 6)
	require.NoError(t, err)
	assert.Equal(t, []int{6}, info.Rolls)

	stored, _ := repo.Stored(gameID)
	assert.Equal(t, []int{6}, stored.Rolls)
}

func TestRecordRoll_PropagatesCorrelationID(t *testing.T) {
	repo := NewFakeGameRepo()
	pub := NewFakePublisher()
	svc := newTestService(repo, pub)
	gameID := seedGame(repo)

	ctx := bowlingevents.WithCorrelationID(context.Background(), "corr-123")
	_, err := svc.RecordRoll(ctx, gameID, 4)
	require.NoError(t, err)

	msgs := pub.Messages(bowlingevents.RollRecordedV1)
	require.Len(t, msgs, 1)
	assert.Equal(t, "corr-123", middleware.MessageCorrelationID(msgs[0]))
}

func TestRecordRoll_NilPublisher(t *testing.T) {
	repo := NewFakeGameRepo()
	svc := NewBowlingService(repo, nil, nil, nil, nil, nil)
	gameID := seedGame(repo)

	info, err := svc.RecordRoll(context.Background(), gameID, 9)
	require.NoError(t, err)
	assert.Equal(t, 9, info.Score)
}

func TestGetGame(t *testing.T) {
	repo := NewFakeGameRepo()
	svc := newTestService(repo, NewFakePublisher())
	gameID := seedGame(repo, mixedRolls...)

	info, err := svc.GetGame(context.Background(), gameID)
	require.NoError(t, err)
	assert.Equal(t, 167, info.Score)
	assert.True(t, info.Complete)
	assert.Equal(t, 167, info.Frames[9].Total)
	assert.Equal(t, []string{"X", "8", "1"}, info.Frames[9].Marks)
	assert.Empty(t, info.Message)

	_, err = svc.GetGame(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrGameNotFound)
}

func TestGetGame_CorruptLedger(t *testing.T) {
	repo := NewFakeGameRepo()
	svc := newTestService(repo, NewFakePublisher())
	gameID := seedGame(repo, 7, 7)

	_, err := svc.GetGame(context.Background(), gameID)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrGameNotFound)
}

func TestListGames(t *testing.T) {
	t.Run("most recent first with player filter", func(t *testing.T) {
		repo := NewFakeGameRepo()
		svc := newTestService(repo, NewFakePublisher())
		ctx := context.Background()

		first, err := svc.StartGame(ctx, "Alice")
		require.NoError(t, err)
		_, err = svc.StartGame(ctx, "Bob")
		require.NoError(t, err)
		second, err := svc.StartGame(ctx, "Alice")
		require.NoError(t, err)

		games, err := svc.ListGames(ctx, "Alice", 0)
		require.NoError(t, err)
		require.Len(t, games, 2)
		assert.Equal(t, second.ID, games[0].ID)
		assert.Equal(t, first.ID, games[1].ID)

		all, err := svc.ListGames(ctx, "", 0)
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("limits", func(t *testing.T) {
		tests := []struct {
			name      string
			opts      []Option
			limit     int
			wantLimit int
		}{
			{name: "default", limit: 0, wantLimit: defaultListLimit},
			{name: "configured default", opts: []Option{WithDefaultListLimit(5)}, limit: -3, wantLimit: 5},
			{name: "explicit", limit: 7, wantLimit: 7},
			{name: "capped", limit: 5000, wantLimit: maxListLimit},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				repo := NewFakeGameRepo()
				var gotLimit int
				repo.ListByPlayerFunc = func(ctx context.Context, db bun.IDB, player string, limit int) ([]bowlingdb.Game, error) {
					gotLimit = limit
					return nil, nil
				}
				svc := NewBowlingService(repo, nil, nil, nil, nil, nil, tt.opts...)

				games, err := svc.ListGames(context.Background(), "", tt.limit)
				require.NoError(t, err)
				assert.Empty(t, games)
				assert.Equal(t, tt.wantLimit, gotLimit)
			})
		}
	})
}

func TestScoreRolls(t *testing.T) {
	svc := newTestService(NewFakeGameRepo(), NewFakePublisher())
	ctx := context.Background()

	info, err := svc.ScoreRolls(ctx, mixedRolls)
	require.NoError(t, err)
	assert.Equal(t, 167, info.Score)
	assert.Equal(t, uuid.Nil, info.ID)

	totals := make([]int, 0, len(info.Frames))
	for _, f := range info.Frames {
		totals = append(totals, f.Total)
	}
	assert.Equal(t, []int{20, 39, 48, 66, 74, 84, 90, 120, 148, 167}, totals)

	info, err = svc.ScoreRolls(ctx, []int{10, 3})
	require.NoError(t, err)
	assert.Equal(t, 16, info.Score)
	assert.False(t, info.Frames[0].Resolved)

	_, err = svc.ScoreRolls(ctx, []int{3, 3, 12})
	require.ErrorIs(t, err, bowling.ErrInvalidPinCount)

	_, err = svc.ScoreRolls(ctx, []int{6, 6})
	require.ErrorIs(t, err, bowling.ErrFrameOverflow)
}

func TestImportScorecard(t *testing.T) {
	const card = "Player,Carol\nFrame,R1,R2,R3\n1,X\n2,7,/\n3,9,-\n4,X\n5,-,8\n6,8,/\n7,-,6\n8,X\n9,X\n10,X,8,1\n"

	tests := []struct {
		name       string
		player     string
		filename   string
		data       string
		wantPlayer string
		wantErr    error
	}{
		{name: "player from card", filename: "card.csv", data: card, wantPlayer: "Carol"},
		{name: "player argument wins", player: "Dave", filename: "card.csv", data: card, wantPlayer: "Dave"},
		{name: "unsupported extension", filename: "card.txt", data: card, wantErr: ErrInvalidScorecard},
		{name: "malformed card", filename: "card.csv", data: "nothing here", wantErr: ErrInvalidScorecard},
		{name: "no player anywhere", filename: "card.csv", data: "Frame,R1,R2\n1,3,4\n", wantErr: ErrInvalidPlayer},
		{name: "impossible frame", player: "Eve", filename: "card.csv", data: "Frame,R1,R2\n1,9,9\n", wantErr: ErrInvalidScorecard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewFakeGameRepo()
			pub := NewFakePublisher()
			svc := newTestService(repo, pub)

			info, err := svc.ImportScorecard(context.Background(), tt.player, tt.filename, []byte(tt.data))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.NotContains(t, repo.Trace(), "Create")
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantPlayer, info.Player)
			assert.Equal(t, mixedRolls, info.Rolls)
			assert.Equal(t, 167, info.Score)

			stored, ok := repo.Stored(info.ID)
			require.True(t, ok)
			assert.Equal(t, 167, stored.Score)
			assert.True(t, stored.Complete)
			assert.Len(t, pub.Messages(bowlingevents.GameStartedV1), 1)
			assert.Len(t, pub.Messages(bowlingevents.GameCompletedV1), 1)
		})
	}
}

func repeatRolls(n, pins int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = pins
	}
	return out
}
