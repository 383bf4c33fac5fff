package bowlingservice

import (
	"bytes"
	"fmt"

	"github.com/Black-And-White-Club/bowling-bot/pkg/bowling"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ChartPalette holds the colors used by RenderScoreChart.
type ChartPalette struct {
	Background drawing.Color
	Text       drawing.Color
	Line       drawing.Color
	Accent     drawing.Color
}

// DefaultChartPalette is a dark lane theme.
var DefaultChartPalette = ChartPalette{
	Background: drawing.ColorFromHex("1b1f24"),
	Text:       drawing.ColorFromHex("e6e6e6"),
	Line:       drawing.ColorFromHex("3fa7d6"),
	Accent:     drawing.ColorFromHex("f2c14e"),
}

// RenderScoreChart produces a PNG line chart of running totals per frame.
// Only frames with at least one roll are plotted.
func RenderScoreChart(info *GameInfo, palette ChartPalette) ([]byte, error) {
	var xValues, yValues []float64
	for _, frame := range info.Frames {
		if len(frame.Rolls) == 0 {
			break
		}
		xValues = append(xValues, float64(frame.Number))
		yValues = append(yValues, float64(frame.Total))
	}
	if len(xValues) == 0 {
		return renderNoRollsPlaceholder(palette)
	}
	// A single point cannot form a line range.
	if len(xValues) == 1 {
		xValues = append([]float64{0}, xValues...)
		yValues = append([]float64{0}, yValues...)
	}

	title := fmt.Sprintf("%s: %d", info.Player, info.Score)
	if info.Player == "" {
		title = fmt.Sprintf("Score: %d", info.Score)
	}

	graph := chart.Chart{
		Title:      title,
		TitleStyle: chart.Style{FontColor: palette.Text},
		Width:      800,
		Height:     400,
		Background: chart.Style{FillColor: palette.Background},
		Canvas:     chart.Style{FillColor: palette.Background},
		XAxis: chart.XAxis{
			Name:  "Frame",
			Style: chart.Style{FontColor: palette.Text},
			Range: &chart.ContinuousRange{Min: 0, Max: bowling.FramesPerGame},
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%.0f", v)
			},
		},
		YAxis: chart.YAxis{
			Name:  "Total",
			Style: chart.Style{FontColor: palette.Text},
			Range: &chart.ContinuousRange{Min: 0, Max: float64(bowling.MaxPins * 3 * bowling.FramesPerGame)},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Running total",
				XValues: xValues,
				YValues: yValues,
				Style: chart.Style{
					StrokeColor: palette.Line,
					StrokeWidth: 2,
					DotWidth:    4,
					DotColor:    palette.Accent,
				},
			},
		},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	return buffer.Bytes(), nil
}

func renderNoRollsPlaceholder(palette ChartPalette) ([]byte, error) {
	const msg = "No rolls yet"

	graph := chart.Chart{
		Width:      400,
		Height:     200,
		Background: chart.Style{FillColor: palette.Background},
		Canvas:     chart.Style{FillColor: palette.Background},
		XAxis:      chart.XAxis{Style: chart.Style{Hidden: true}},
		YAxis:      chart.YAxis{Style: chart.Style{Hidden: true}},
		Series: []chart.Series{
			chart.ContinuousSeries{
				XValues: []float64{0, 1},
				YValues: []float64{0, 0},
				Style:   chart.Style{Hidden: true},
			},
		},
		Elements: []chart.Renderable{
			func(r chart.Renderer, cb chart.Box, _ chart.Style) {
				r.SetFontColor(palette.Text)
				r.SetFontSize(12.0)
				tb := r.MeasureText(msg)
				x := (cb.Width() - tb.Width()) / 2
				y := (cb.Height() + tb.Height()) / 2
				r.Text(msg, x, y)
			},
		},
	}
	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	return buffer.Bytes(), nil
}
