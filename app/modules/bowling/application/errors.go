package bowlingservice

import "errors"

var (
	ErrGameNotFound     = errors.New("game not found")
	ErrInvalidPlayer    = errors.New("player name is required")
	ErrInvalidScorecard = errors.New("invalid scorecard")
)
