package bowling

import "strconv"

// Frame is a read-only view of one ordinal frame.
type Frame struct {
	Number int
	// Rolls holds the rolls thrown in this frame so far.
	Rolls []int
	// Score is the frame value including bonus, with unthrown rolls as zero.
	Score int
	// Total is the running total through this frame.
	Total int
	// Resolved is true once every roll the score depends on has been thrown.
	Resolved bool
}

// IsStrike reports whether the frame opened with all ten pins.
func (f Frame) IsStrike() bool {
	return len(f.Rolls) > 0 && f.Rolls[0] == MaxPins
}

// IsSpare reports whether the first two rolls cleared the rack without a strike.
func (f Frame) IsSpare() bool {
	return len(f.Rolls) > 1 && !f.IsStrike() && f.Rolls[0]+f.Rolls[1] == MaxPins
}

// Marks renders each roll in scorecard notation: X for a strike, / for a
// spare, - for a miss, digits otherwise.
func (f Frame) Marks() []string {
	marks := make([]string, 0, len(f.Rolls))
	standing, fresh := MaxPins, true
	for _, pins := range f.Rolls {
		switch {
		case fresh && pins == MaxPins:
			marks = append(marks, "X")
		case !fresh && pins == standing:
			marks = append(marks, "/")
		case pins == 0:
			marks = append(marks, "-")
		default:
			marks = append(marks, strconv.Itoa(pins))
		}
		standing -= pins
		fresh = false
		if standing == 0 {
			standing, fresh = MaxPins, true
		}
	}
	return marks
}

// Frames returns the ten frames of the game. Frames not yet started have no
// rolls and a zero score. The final frame's Total always equals Score().
func (g *Game) Frames() []Frame {
	frames := make([]Frame, 0, FramesPerGame)
	total := 0
	g.walk(func(number, start, width, score int) {
		total += score

		end := start + width
		if number == FramesPerGame {
			end = len(g.rolls)
		}
		frames = append(frames, Frame{
			Number:   number,
			Rolls:    g.slice(start, end),
			Score:    score,
			Total:    total,
			Resolved: g.resolved(start, width),
		})
	})
	return frames
}

// resolved reports whether the rolls backing a frame's score exist. Strikes
// and spares need the roll two slots past the frame start, open frames need
// their second roll.
func (g *Game) resolved(start, width int) bool {
	needed := start + 1
	if width == 1 || g.at(start)+g.at(start+1) == MaxPins {
		needed = start + 2
	}
	return needed < len(g.rolls)
}

func (g *Game) slice(start, end int) []int {
	if start > len(g.rolls) {
		start = len(g.rolls)
	}
	if end > len(g.rolls) {
		end = len(g.rolls)
	}
	out := make([]int, end-start)
	copy(out, g.rolls[start:end])
	return out
}
