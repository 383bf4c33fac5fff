package bowlingservice

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const scorecardSheet = "Scorecard"

// ExportScorecard writes a game's frame card as an XLSX workbook. The layout
// is the one ImportScorecard reads back.
func ExportScorecard(info *GameInfo) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), scorecardSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	rows := [][]interface{}{
		{"Player", info.Player},
		{"Frame", "R1", "R2", "R3", "Score", "Total"},
	}
	for _, frame := range info.Frames {
		row := []interface{}{frame.Number, "", "", ""}
		for i, mark := range frame.Marks {
			row[i+1] = mark
		}
		if len(frame.Rolls) > 0 {
			row = append(row, frame.Score, frame.Total)
		}
		rows = append(rows, row)
	}

	for idx, row := range rows {
		axis, err := excelize.CoordinatesToCellName(1, idx+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(scorecardSheet, axis, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", idx+1, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
