package bowling

import "errors"

// Validation errors returned by Record. Returned errors wrap these sentinels,
// so callers should match with errors.Is.
var (
	// ErrInvalidPinCount indicates a roll outside [0, 10].
	ErrInvalidPinCount = errors.New("invalid pin count")

	// ErrFrameOverflow indicates a roll that knocks down more pins than are
	// standing, or any roll after the game is complete.
	ErrFrameOverflow = errors.New("frame overflow")
)
