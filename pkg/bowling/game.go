package bowling

import "fmt"

const (
	// FramesPerGame is the number of ordinal frames in a game.
	FramesPerGame = 10
	// MaxPins is the number of pins in a full rack.
	MaxPins = 10
	// MaxRolls is the longest possible ledger: nine two-roll frames plus a
	// three-roll tenth frame.
	MaxRolls = 21
)

// Game is the append-only roll ledger of one player's game. Frames and
// scores are derived from the ledger on demand and never stored.
//
// A Game is not safe for concurrent use.
type Game struct {
	rolls []int
}

// NewGame returns an empty game.
func NewGame() *Game {
	return &Game{rolls: make([]int, 0, MaxRolls)}
}

// Replay records rolls in order and returns the resulting game. It stops at
// the first rejected roll and reports its position.
func Replay(rolls []int) (*Game, error) {
	g := NewGame()
	for i, pins := range rolls {
		if err := g.Record(pins); err != nil {
			return nil, fmt.Errorf("roll %d: %w", i+1, err)
		}
	}
	return g, nil
}

// Record appends a roll to the ledger. The ledger is unchanged when the roll
// is rejected.
func (g *Game) Record(pins int) error {
	if pins < 0 || pins > MaxPins {
		return fmt.Errorf("%w: %d is outside [0, %d]", ErrInvalidPinCount, pins, MaxPins)
	}

	pos := g.position()
	if pos.complete {
		return fmt.Errorf("%w: game is complete", ErrFrameOverflow)
	}
	if pins > pos.standing {
		return fmt.Errorf("%w: %d pins rolled with %d standing in frame %d",
			ErrFrameOverflow, pins, pos.standing, pos.frame)
	}

	g.rolls = append(g.rolls, pins)
	return nil
}

// Score returns the total score. Bonus rolls that have not been thrown yet
// count as zero, so an in-progress game yields a lower bound.
func (g *Game) Score() int {
	total := 0
	g.walk(func(_, _, _, score int) {
		total += score
	})
	return total
}

// IsComplete reports whether the tenth frame has closed.
func (g *Game) IsComplete() bool {
	return g.position().complete
}

// Rolls returns a copy of the ledger.
func (g *Game) Rolls() []int {
	out := make([]int, len(g.rolls))
	copy(out, g.rolls)
	return out
}

// CurrentFrame returns the 1-based frame the next roll belongs to. A
// complete game reports the final frame.
func (g *Game) CurrentFrame() int {
	return g.position().frame
}

// PinsStanding returns how many pins the next roll can knock down, or zero
// once the game is complete.
func (g *Game) PinsStanding() int {
	return g.position().standing
}

// at reads a roll, treating rolls not yet thrown as zero.
func (g *Game) at(i int) int {
	if i < 0 || i >= len(g.rolls) {
		return 0
	}
	return g.rolls[i]
}

// walk visits the ten frames in order with each frame's ordinal, the index of
// its first roll, the number of ledger slots it spans (one for a strike, two
// otherwise) and its score including bonus. Score and Frames are both built
// on this walk.
func (g *Game) walk(visit func(frame, start, width, score int)) {
	i := 0
	for frame := 1; frame <= FramesPerGame; frame++ {
		switch {
		case g.at(i) == MaxPins:
			visit(frame, i, 1, MaxPins+g.at(i+1)+g.at(i+2))
			i++
		case g.at(i)+g.at(i+1) == MaxPins:
			visit(frame, i, 2, MaxPins+g.at(i+2))
			i += 2
		default:
			visit(frame, i, 2, g.at(i)+g.at(i+1))
			i += 2
		}
	}
}

// position locates the frame that the next roll falls into.
type position struct {
	frame    int
	start    int
	standing int
	complete bool
}

func (g *Game) position() position {
	i := 0
	for frame := 1; frame < FramesPerGame; frame++ {
		switch {
		case i >= len(g.rolls):
			return position{frame: frame, start: i, standing: MaxPins}
		case g.rolls[i] == MaxPins:
			i++
		case i+1 >= len(g.rolls):
			return position{frame: frame, start: i, standing: MaxPins - g.rolls[i]}
		default:
			i += 2
		}
	}

	tenth := g.rolls[i:]
	if tenthClosed(tenth) {
		return position{frame: FramesPerGame, start: i, complete: true}
	}
	return position{frame: FramesPerGame, start: i, standing: tenthStanding(tenth)}
}

// tenthClosed reports whether the tenth frame accepts no more rolls. It stays
// open for a third roll only after a strike or a spare.
func tenthClosed(rolls []int) bool {
	switch {
	case len(rolls) < 2:
		return false
	case len(rolls) >= 3:
		return true
	default:
		return rolls[0]+rolls[1] < MaxPins
	}
}

// tenthStanding returns the pins standing for the next roll of the tenth
// frame. The rack is reset whenever it is cleared.
func tenthStanding(rolls []int) int {
	standing := MaxPins
	for _, pins := range rolls {
		standing -= pins
		if standing == 0 {
			standing = MaxPins
		}
	}
	return standing
}
