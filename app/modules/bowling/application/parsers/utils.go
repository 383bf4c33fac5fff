package parsers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Black-And-White-Club/bowling-bot/pkg/bowling"
)

// parseRecords reads a frame table:
//
//	Player,Alice
//	Frame,R1,R2,R3
//	1,X
//	2,7,/
//	...
//	10,X,8,1
//
// The player row is optional. Frames with an empty first roll are skipped,
// and the second cell of a strike frame before the tenth is ignored.
func parseRecords(records [][]string) (*Scorecard, error) {
	card := &Scorecard{Rolls: []int{}}

	headerIdx := -1
	for i, record := range records {
		first := normalize(cell(record, 0))
		switch first {
		case "player", "name":
			card.Player = strings.TrimSpace(cell(record, 1))
		case "frame":
			headerIdx = i
		}
		if headerIdx >= 0 {
			break
		}
	}
	if headerIdx < 0 {
		return nil, fmt.Errorf("no frame header row found")
	}

	seen := make(map[int]bool)
	frames := make([][]string, bowling.FramesPerGame)
	for i, record := range records[headerIdx+1:] {
		line := headerIdx + i + 2
		label := strings.TrimSpace(cell(record, 0))
		if label == "" {
			continue
		}
		number, err := strconv.Atoi(label)
		if err != nil || number < 1 || number > bowling.FramesPerGame {
			return nil, fmt.Errorf("invalid frame number %q at line %d", label, line)
		}
		if seen[number] {
			return nil, fmt.Errorf("duplicate frame %d at line %d", number, line)
		}
		seen[number] = true
		frames[number-1] = trimCells(record[1:])
	}

	for i, cells := range frames {
		rolls, err := frameRolls(i+1, cells)
		if err != nil {
			return nil, err
		}
		card.Rolls = append(card.Rolls, rolls...)
	}
	return card, nil
}

// frameRolls converts one frame's cells to pin counts. Marks are resolved
// against the pins standing within the frame.
func frameRolls(number int, cells []string) ([]int, error) {
	if len(cells) == 0 || cells[0] == "" {
		return nil, nil
	}

	limit := 2
	if number == bowling.FramesPerGame {
		limit = 3
	}

	var rolls []int
	standing := bowling.MaxPins
	for i := 0; i < limit && i < len(cells); i++ {
		token := cells[i]
		if token == "" {
			break
		}
		pins, err := parseMark(token, standing)
		if err != nil {
			return nil, fmt.Errorf("frame %d roll %d: %w", number, i+1, err)
		}
		rolls = append(rolls, pins)

		if number < bowling.FramesPerGame && pins == bowling.MaxPins && i == 0 {
			break
		}
		standing -= pins
		if standing <= 0 {
			standing = bowling.MaxPins
		}
	}
	return rolls, nil
}

// parseMark converts a scorecard cell to a pin count.
func parseMark(token string, standing int) (int, error) {
	switch strings.ToUpper(token) {
	case "X":
		return bowling.MaxPins, nil
	case "/":
		if standing == bowling.MaxPins {
			return 0, fmt.Errorf("spare mark on a full rack")
		}
		return standing, nil
	case "-":
		return 0, nil
	}
	pins, err := strconv.Atoi(token)
	if err != nil {
		return 0, fmt.Errorf("invalid mark %q", token)
	}
	return pins, nil
}

func cell(record []string, idx int) string {
	if idx < len(record) {
		return record[idx]
	}
	return ""
}

func trimCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.TrimSpace(c)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSuffix(strings.TrimSpace(s), ":"))
}
