package bowlingservice

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	bowlingdb "github.com/Black-And-White-Club/bowling-bot/app/modules/bowling/infrastructure/repositories"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Game Repo
// ------------------------

// FakeGameRepo keeps games in memory unless a Func override is set.
type FakeGameRepo struct {
	mu    sync.Mutex
	trace []string
	games map[uuid.UUID]bowlingdb.Game
	order []uuid.UUID

	CreateFunc       func(ctx context.Context, db bun.IDB, game *bowlingdb.Game) error
	GetByUUIDFunc    func(ctx context.Context, db bun.IDB, gameID uuid.UUID) (*bowlingdb.Game, error)
	GetForUpdateFunc func(ctx context.Context, db bun.IDB, gameID uuid.UUID) (*bowlingdb.Game, error)
	UpdateRollsFunc  func(ctx context.Context, db bun.IDB, game *bowlingdb.Game) error
	ListByPlayerFunc func(ctx context.Context, db bun.IDB, player string, limit int) ([]bowlingdb.Game, error)
}

func NewFakeGameRepo() *FakeGameRepo {
	return &FakeGameRepo{
		trace: []string{},
		games: make(map[uuid.UUID]bowlingdb.Game),
	}
}

func (f *FakeGameRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeGameRepo) Create(ctx context.Context, db bun.IDB, game *bowlingdb.Game) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Create")
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, db, game)
	}
	f.games[game.UUID] = copyGame(*game)
	f.order = append(f.order, game.UUID)
	return nil
}

func (f *FakeGameRepo) GetByUUID(ctx context.Context, db bun.IDB, gameID uuid.UUID) (*bowlingdb.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetByUUID")
	if f.GetByUUIDFunc != nil {
		return f.GetByUUIDFunc(ctx, db, gameID)
	}
	return f.load(gameID)
}

func (f *FakeGameRepo) GetForUpdate(ctx context.Context, db bun.IDB, gameID uuid.UUID) (*bowlingdb.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetForUpdate")
	if f.GetForUpdateFunc != nil {
		return f.GetForUpdateFunc(ctx, db, gameID)
	}
	return f.load(gameID)
}

func (f *FakeGameRepo) UpdateRolls(ctx context.Context, db bun.IDB, game *bowlingdb.Game) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateRolls")
	if f.UpdateRollsFunc != nil {
		return f.UpdateRollsFunc(ctx, db, game)
	}
	if _, ok := f.games[game.UUID]; !ok {
		return bowlingdb.ErrNoRowsAffected
	}
	f.games[game.UUID] = copyGame(*game)
	return nil
}

func (f *FakeGameRepo) ListByPlayer(ctx context.Context, db bun.IDB, player string, limit int) ([]bowlingdb.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListByPlayer")
	if f.ListByPlayerFunc != nil {
		return f.ListByPlayerFunc(ctx, db, player, limit)
	}
	var out []bowlingdb.Game
	for i := len(f.order) - 1; i >= 0 && len(out) < limit; i-- {
		game := f.games[f.order[i]]
		if player == "" || game.Player == player {
			out = append(out, copyGame(game))
		}
	}
	return out, nil
}

func (f *FakeGameRepo) load(gameID uuid.UUID) (*bowlingdb.Game, error) {
	game, ok := f.games[gameID]
	if !ok {
		return nil, bowlingdb.ErrNotFound
	}
	out := copyGame(game)
	return &out, nil
}

// Put stores a game directly.
func (f *FakeGameRepo) Put(game bowlingdb.Game) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.games[game.UUID] = copyGame(game)
	f.order = append(f.order, game.UUID)
}

// Stored returns a copy of a stored game.
func (f *FakeGameRepo) Stored(gameID uuid.UUID) (bowlingdb.Game, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	game, ok := f.games[gameID]
	return copyGame(game), ok
}

func (f *FakeGameRepo) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func copyGame(g bowlingdb.Game) bowlingdb.Game {
	g.Rolls = append([]int{}, g.Rolls...)
	return g
}

var _ bowlingdb.Repository = (*FakeGameRepo)(nil)

// ------------------------
// Fake Publisher
// ------------------------

type FakePublisher struct {
	mu       sync.Mutex
	messages map[string][]*message.Message

	PublishFunc func(topic string, msgs ...*message.Message) error
}

func NewFakePublisher() *FakePublisher {
	return &FakePublisher{messages: make(map[string][]*message.Message)}
}

func (p *FakePublisher) Publish(topic string, msgs ...*message.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.PublishFunc != nil {
		return p.PublishFunc(topic, msgs...)
	}
	p.messages[topic] = append(p.messages[topic], msgs...)
	return nil
}

func (p *FakePublisher) Close() error { return nil }

func (p *FakePublisher) Messages(topic string) []*message.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*message.Message{}, p.messages[topic]...)
}

func (p *FakePublisher) Topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var topics []string
	for topic := range p.messages {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	return topics
}

// decode unmarshals the payload of the n-th message on topic.
func decode[T any](p *FakePublisher, topic string, n int) (T, bool) {
	var out T
	msgs := p.Messages(topic)
	if n >= len(msgs) {
		return out, false
	}
	if err := json.Unmarshal(msgs[n].Payload, &out); err != nil {
		return out, false
	}
	return out, true
}

var _ message.Publisher = (*FakePublisher)(nil)
