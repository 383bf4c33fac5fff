package bowlingservice

import (
	"time"

	bowlingdb "github.com/Black-And-White-Club/bowling-bot/app/modules/bowling/infrastructure/repositories"
	"github.com/Black-And-White-Club/bowling-bot/pkg/bowling"
	"github.com/google/uuid"
)

const (
	PerfectGameMessage = "PERFECT GAME!"
	GutterGameMessage  = "Gutter game. Better luck next time!"
)

// FrameInfo is one row of the frame card.
type FrameInfo struct {
	Number   int      `json:"number"`
	Marks    []string `json:"marks"`
	Rolls    []int    `json:"rolls"`
	Score    int      `json:"score"`
	Total    int      `json:"total"`
	Resolved bool     `json:"resolved"`
}

// GameInfo is the read model returned by every service operation.
type GameInfo struct {
	ID           uuid.UUID   `json:"id"`
	Player       string      `json:"player,omitempty"`
	Rolls        []int       `json:"rolls"`
	Frames       []FrameInfo `json:"frames"`
	Score        int         `json:"score"`
	Complete     bool        `json:"complete"`
	CurrentFrame int         `json:"current_frame,omitempty"`
	PinsStanding int         `json:"pins_standing"`
	Message      string      `json:"message,omitempty"`
	CreatedAt    time.Time   `json:"created_at,omitzero"`
	UpdatedAt    time.Time   `json:"updated_at,omitzero"`
}

// LastRollFrame returns the number of the frame holding the most recent
// roll, or 0 before the first roll.
func (g *GameInfo) LastRollFrame() int {
	for i := len(g.Frames) - 1; i >= 0; i-- {
		if len(g.Frames[i].Rolls) > 0 {
			return g.Frames[i].Number
		}
	}
	return 0
}

// newGameInfo builds the read model from an engine game. row may be nil for
// unsaved games.
func newGameInfo(row *bowlingdb.Game, game *bowling.Game) *GameInfo {
	frames := game.Frames()
	info := &GameInfo{
		Rolls:        game.Rolls(),
		Frames:       make([]FrameInfo, len(frames)),
		Score:        game.Score(),
		Complete:     game.IsComplete(),
		CurrentFrame: game.CurrentFrame(),
		PinsStanding: game.PinsStanding(),
	}
	for i, f := range frames {
		info.Frames[i] = FrameInfo{
			Number:   f.Number,
			Marks:    f.Marks(),
			Rolls:    f.Rolls,
			Score:    f.Score,
			Total:    f.Total,
			Resolved: f.Resolved,
		}
	}
	if info.Complete {
		switch info.Score {
		case bowling.MaxPins * 3 * bowling.FramesPerGame:
			info.Message = PerfectGameMessage
		case 0:
			info.Message = GutterGameMessage
		}
	}
	if row != nil {
		info.ID = row.UUID
		info.Player = row.Player
		info.CreatedAt = row.CreatedAt
		info.UpdatedAt = row.UpdatedAt
	}
	return info
}
