package returns

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/stockreturns/stockreturns/internal/models"
)

// RenderValueChart renders a PNG line chart of the holding's value over the
// period: start value, value after each corporate action, final value.
// Returns raw PNG bytes.
func RenderValueChart(symbol string, points []models.ValuePoint) ([]byte, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("need at least 2 data points, got %d", len(points))
	}

	xValues := make([]time.Time, len(points))
	yValues := make([]float64, len(points))
	for i, p := range points {
		xValues[i] = p.Date
		yValues[i] = p.Value
	}

	valueSeries := chart.TimeSeries{
		Name: symbol,
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("6366f1"), // indigo-500
			StrokeWidth: 2.5,
			FillColor:   drawing.ColorFromHex("6366f1").WithAlpha(40),
		},
		XValues: xValues,
		YValues: yValues,
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("%s Holding Value", symbol),
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 06")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					if f >= 1000 {
						return fmt.Sprintf("%.0fk", f/1000)
					}
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		Series: []chart.Series{
			valueSeries,
		},
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}
