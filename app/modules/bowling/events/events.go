package bowlingevents

import (
	"context"

	"github.com/google/uuid"
)

// Stream name shared by every bowling subject.
const BowlingStreamName = "bowling"

// Versioned bowling subjects.
const (
	GameStartedV1   = "bowling.game.started.v1"
	GameCompletedV1 = "bowling.game.completed.v1"

	RollRequestedV1 = "bowling.roll.requested.v1"
	RollRecordedV1  = "bowling.roll.recorded.v1"
	RollRejectedV1  = "bowling.roll.rejected.v1"
)

// Rejection reasons carried by RollRejectedPayloadV1.
const (
	ReasonInvalidPinCount = "invalid_pin_count"
	ReasonFrameOverflow   = "frame_overflow"
	ReasonGameNotFound    = "game_not_found"
	ReasonInvalidRequest  = "invalid_request"
)

// GameStartedPayloadV1 is published when a game is created.
type GameStartedPayloadV1 struct {
	GameID uuid.UUID `json:"game_id"`
	Player string    `json:"player"`
}

// GameCompletedPayloadV1 is published once, when the tenth frame closes.
type GameCompletedPayloadV1 struct {
	GameID uuid.UUID `json:"game_id"`
	Player string    `json:"player"`
	Rolls  []int     `json:"rolls"`
	Score  int       `json:"score"`
}

// RollRequestedPayloadV1 asks the bowling module to record a roll.
type RollRequestedPayloadV1 struct {
	GameID uuid.UUID `json:"game_id"`
	Pins   int       `json:"pins"`
}

// RollRecordedPayloadV1 is published after a roll has been stored.
type RollRecordedPayloadV1 struct {
	GameID       uuid.UUID `json:"game_id"`
	Player       string    `json:"player"`
	Pins         int       `json:"pins"`
	Frame        int       `json:"frame"`
	Score        int       `json:"score"`
	Complete     bool      `json:"complete"`
	PinsStanding int       `json:"pins_standing"`
}

// RollRejectedPayloadV1 answers a RollRequestedPayloadV1 that was refused.
type RollRejectedPayloadV1 struct {
	GameID uuid.UUID `json:"game_id"`
	Pins   int       `json:"pins"`
	Reason string    `json:"reason"`
	Error  string    `json:"error"`
}

type correlationIDKey struct{}

// WithCorrelationID stores the correlation ID that outgoing events inherit.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, id)
}

// CorrelationIDFromContext returns the correlation ID stored by
// WithCorrelationID, or an empty string.
func CorrelationIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(correlationIDKey{}).(string)
	return id
}
